package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/tmdb-resolver/state"
)

const testToken = "test-token"

var testConfiguration = map[string]any{
	"images": map[string]any{
		"base_url":        "http://image.tmdb.org/t/p/",
		"secure_base_url": "https://image.tmdb.org/t/p/",
		"poster_sizes":    []string{"w92", "w154", "w185", "w342", "w500", "w780", "original"},
	},
	"change_keys": []string{},
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// newTestClient starts a fake TMDB serving the API under /3 and the web host under /
func newTestClient(t *testing.T, mux *http.ServeMux, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	opts = append([]Option{
		WithAPIURL(server.URL + "/3"),
		WithWebURL(server.URL),
	}, opts...)
	client, err := NewClient(testToken, state.NewMemory(InitialState()), zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	_, err := NewClient("", state.NewMemory(InitialState()), logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")

	_, err = NewClient(testToken, nil, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage is required")

	client, err := NewClient(testToken, state.NewMemory(InitialState()), logger,
		WithTimeout(5*time.Second), WithCoverWidth(342), WithCanonicalCacheSize(0))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 342, client.coverWidth)
	assert.Nil(t, client.canonical)
	assert.Equal(t, DefaultAPIURL, client.apiURL)
}

func TestClient_GetMovieByID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/3/movie/615665", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":           615665,
			"title":        "Holidate",
			"release_date": "2020-10-28",
			"vote_average": 6.789,
			"vote_count":   1500,
			"imdb_id":      "tt9866072",
		})
	})
	mux.HandleFunc("/3/movie/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{
			"status_code":    34,
			"status_message": "The resource you requested could not be found.",
		})
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	movie, err := client.GetMovieByID(ctx, 615665)
	require.NoError(t, err)
	assert.Equal(t, int64(615665), movie.ID)
	assert.Equal(t, "tt9866072", movie.ImdbID)

	record := movie.ToModel()
	assert.Equal(t, "615665", record.ID)
	assert.Equal(t, "Holidate", record.Title)
	assert.Equal(t, 2020, record.Year)
	require.NotNil(t, record.Rating)
	assert.Equal(t, "6.8", *record.Rating)

	_, err = client.GetMovieByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsRequest(err))
}

func TestClient_GetMovieByIMDbID(t *testing.T) {
	var results []map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/3/find/tt9866072", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "imdb_id", r.URL.Query().Get("external_source"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"movie_results": results,
			"tv_results":    []any{},
		})
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	t.Run("no results", func(t *testing.T) {
		results = []map[string]any{}
		_, err := client.GetMovieByIMDbID(ctx, "tt9866072")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("single result", func(t *testing.T) {
		results = []map[string]any{{"id": 615665, "title": "Holidate", "release_date": "2020-10-28"}}
		movie, err := client.GetMovieByIMDbID(ctx, "tt9866072")
		require.NoError(t, err)
		assert.Equal(t, int64(615665), movie.ID)
		assert.Equal(t, "tt9866072", movie.ImdbID)
	})

	t.Run("several results keep upstream order", func(t *testing.T) {
		results = []map[string]any{
			{"id": 2, "title": "Second", "vote_average": 1.0},
			{"id": 1, "title": "First", "vote_average": 9.0},
		}
		movie, err := client.GetMovieByIMDbID(ctx, "tt9866072")
		require.NoError(t, err)
		assert.Equal(t, int64(2), movie.ID)
	})
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantIO     bool
		wantStatus int
	}{
		{"unauthorized", http.StatusUnauthorized, false, 401},
		{"bad request", http.StatusBadRequest, false, 400},
		{"too many requests", http.StatusTooManyRequests, false, 429},
		{"internal server error", http.StatusInternalServerError, true, 500},
		{"service unavailable", http.StatusServiceUnavailable, true, 503},
		{"not modified", http.StatusNotModified, false, 304},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/3/movie/603", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"status_message":"nope"}`))
			})
			client := newTestClient(t, mux)

			_, err := client.GetMovieByID(context.Background(), 603)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrNotFound)
			assert.Equal(t, tt.wantIO, IsIO(err))
			assert.Equal(t, !tt.wantIO, IsRequest(err))

			var tErr *Error
			require.ErrorAs(t, err, &tErr)
			assert.Equal(t, tt.wantStatus, tErr.StatusCode)
			if tt.status >= 400 && tt.status < 500 {
				assert.Contains(t, tErr.Body, "nope")
			}
		})
	}
}

func TestClient_ErrorBodyIsTruncated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/3/movie/603", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(strings.Repeat("x", 10*maxErrorBody)))
	})
	client := newTestClient(t, mux)

	_, err := client.GetMovieByID(context.Background(), 603)
	var tErr *Error
	require.ErrorAs(t, err, &tErr)
	assert.Len(t, tErr.Body, maxErrorBody)
}

func TestClient_OversizedResponseIsRequestError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/3/movie/603", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":603,"title":"` + strings.Repeat("x", maxResponseBody) + `"}`))
	})
	client := newTestClient(t, mux)

	_, err := client.GetMovieByID(context.Background(), 603)
	require.Error(t, err)
	assert.True(t, IsRequest(err))
}

func TestClient_InvalidJSONIsRequestError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/3/movie/603", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})
	client := newTestClient(t, mux)

	_, err := client.GetMovieByID(context.Background(), 603)
	assert.True(t, IsRequest(err))
}

func TestClient_TransportFailureIsIOError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	apiURL := server.URL
	server.Close()

	client, err := NewClient(testToken, state.NewMemory(InitialState()), zerolog.Nop(), WithAPIURL(apiURL))
	require.NoError(t, err)

	_, err = client.GetMovieByID(context.Background(), 603)
	require.Error(t, err)
	assert.True(t, IsIO(err))
	assert.False(t, IsRequest(err))
}

func TestClient_CancelledRequestIsIOError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/3/movie/603", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	client := newTestClient(t, mux)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetMovieByID(ctx, 603)
	require.Error(t, err)
	assert.True(t, IsIO(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func posterHandler(t *testing.T, posters []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en,de,null", r.URL.Query().Get("include_image_language"))
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 615665, "posters": posters})
	}
}

func TestClient_GetCoverMetadata(t *testing.T) {
	var configCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/3/configuration", func(w http.ResponseWriter, r *http.Request) {
		configCalls.Add(1)
		writeJSON(t, w, http.StatusOK, testConfiguration)
	})
	mux.HandleFunc("/3/movie/615665/images", posterHandler(t, []map[string]any{
		{"file_path": "/low.jpg", "iso_639_1": "en", "vote_average": 5.2, "width": 1000, "aspect_ratio": 0.667},
		{"file_path": "/best.jpg", "iso_639_1": "de", "vote_average": 5.8, "width": 2000, "aspect_ratio": 0.7},
		{"file_path": "/tie.jpg", "iso_639_1": nil, "vote_average": 5.8, "width": 2000, "aspect_ratio": 0.667},
	}))
	mux.HandleFunc("/3/movie/2/images", posterHandler(t, []map[string]any{}))
	client := newTestClient(t, mux, WithCoverWidth(480))
	ctx := context.Background()

	cover, err := client.GetCoverMetadata(ctx, 615665)
	require.NoError(t, err)
	require.NotNil(t, cover)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/best.jpg", cover.URL)
	assert.Equal(t, 0.7, cover.Ratio)

	_, err = client.GetCoverMetadata(ctx, 615665)
	require.NoError(t, err)
	assert.Equal(t, int32(1), configCalls.Load())

	cover, err = client.GetCoverMetadata(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, cover)
}

func TestClient_GetCoverMetadata_InvalidSizes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/3/configuration", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"images": map[string]any{
				"secure_base_url": "https://image.tmdb.org/t/p/",
				"poster_sizes":    []string{"w92", "huge"},
			},
		})
	})
	mux.HandleFunc("/3/movie/603/images", posterHandler(t, []map[string]any{
		{"file_path": "/a.jpg", "iso_639_1": "en", "width": 1000},
	}))
	client := newTestClient(t, mux)

	_, err := client.GetCoverMetadata(context.Background(), 603)
	var sizeErr *SizeError
	require.ErrorAs(t, err, &sizeErr)
	assert.False(t, IsIO(err))
	assert.False(t, IsRequest(err))
}

func TestClient_GetCoverMetadata_ConfigurationUnavailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/3/configuration", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/3/movie/603/images", posterHandler(t, []map[string]any{
		{"file_path": "/a.jpg", "iso_639_1": "en", "width": 1000},
	}))
	client := newTestClient(t, mux)

	_, err := client.GetCoverMetadata(context.Background(), 603)
	assert.True(t, IsIO(err))

	cached, err := client.ConfigCache().storage.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cached.APIConfig)
}

func TestClient_ResolveCanonicalURL(t *testing.T) {
	var headCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/615665", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		headCalls.Add(1)
		w.Header().Set("Location", "/movie/615665-holidate")
		w.WriteHeader(http.StatusMovedPermanently)
	})
	mux.HandleFunc("/movie/603", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/movie/604", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	got := client.ResolveCanonicalURL(ctx, 615665)
	assert.Equal(t, client.webURL+"/movie/615665-holidate", got)

	got = client.ResolveCanonicalURL(ctx, 615665)
	assert.Equal(t, client.webURL+"/movie/615665-holidate", got)
	assert.Equal(t, int32(1), headCalls.Load())

	assert.Equal(t, client.webURL+"/movie/603", client.ResolveCanonicalURL(ctx, 603))
	assert.Equal(t, client.webURL+"/movie/604", client.ResolveCanonicalURL(ctx, 604))
}

func TestClient_ResolveCanonicalURL_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	webURL := server.URL
	server.Close()

	client, err := NewClient(testToken, state.NewMemory(InitialState()), zerolog.Nop(), WithWebURL(webURL))
	require.NoError(t, err)

	assert.Equal(t, webURL+"/movie/615665", client.ResolveCanonicalURL(context.Background(), 615665))
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func (o *recordingObserver) ObserveUpstream(endpoint, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[endpoint] = append(o.outcomes[endpoint], outcome)
}

func TestClient_Observer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/3/movie/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/3/movie/2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/3/movie/3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 3})
	})
	observer := &recordingObserver{outcomes: map[string][]string{}}
	client := newTestClient(t, mux, WithObserver(observer))
	ctx := context.Background()

	_, _ = client.GetMovieByID(ctx, 1)
	_, _ = client.GetMovieByID(ctx, 2)
	_, _ = client.GetMovieByID(ctx, 3)

	assert.Equal(t, []string{"not_found", "io", "ok"}, observer.outcomes["movie"])
}

func TestClient_TestConnection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/3/configuration", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(t, w, http.StatusUnauthorized, map[string]any{"status_message": "Invalid API key"})
			return
		}
		writeJSON(t, w, http.StatusOK, testConfiguration)
	})

	client := newTestClient(t, mux)
	require.NoError(t, client.TestConnection(context.Background()))
}
