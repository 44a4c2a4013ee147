package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/s0up4200/tmdb-resolver/model"
	"github.com/s0up4200/tmdb-resolver/state"
)

// Client represents a TMDB API client
type Client struct {
	apiURL     string
	webURL     string
	coverWidth int
	httpClient *http.Client
	webClient  *http.Client
	configs    *ConfigCache
	canonical  *lru.Cache[int64, string]
	observer   RequestObserver
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client. The storage backs the image
// configuration cache and is owned by the caller.
func NewClient(apiToken string, storage state.Storage[State], logger zerolog.Logger, opts ...Option) (*Client, error) {
	if apiToken == "" {
		return nil, fmt.Errorf("TMDB API token is required")
	}
	if storage == nil {
		return nil, fmt.Errorf("state storage is required")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	base := baseTransport(options.transport)
	client := &Client{
		apiURL:     strings.TrimRight(options.apiURL, "/"),
		webURL:     strings.TrimRight(options.webURL, "/"),
		coverWidth: options.coverWidth,
		httpClient: &http.Client{
			Timeout:   options.timeout,
			Transport: &bearerTransport{token: apiToken, base: base},
		},
		webClient: &http.Client{
			Timeout:   options.timeout,
			Transport: base,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		observer: options.observer,
		logger:   logger,
	}
	client.configs = NewConfigCache(storage, client, logger)

	if options.canonicalCacheSize > 0 {
		canonical, err := lru.New[int64, string](options.canonicalCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create canonical URL cache: %w", err)
		}
		client.canonical = canonical
	}

	return client, nil
}

// ConfigCache returns the image configuration cache of the client
func (c *Client) ConfigCache() *ConfigCache {
	return c.configs
}

func (c *Client) observe(endpoint, outcome string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstream(endpoint, outcome, time.Since(start))
	}
}

func outcomeOf(err error) string {
	var tErr *Error
	if errors.As(err, &tErr) {
		if tErr.IsNotFound() {
			return "not_found"
		}
		return tErr.Kind.String()
	}
	if err != nil {
		return "error"
	}
	return "ok"
}

// doRequest performs an authenticated GET and decodes the JSON response into dest
func (c *Client) doRequest(ctx context.Context, endpoint, label string, params url.Values, dest any) (err error) {
	start := time.Now()
	defer func() { c.observe(label, outcomeOf(err), start) }()

	reqURL := c.apiURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return &Error{Kind: KindRequest, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("endpoint", endpoint).Msg("Making TMDB API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ioError("request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return ioError("failed to read response body", err)
	}

	if err := classify(resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return &Error{
			Kind:       KindRequest,
			StatusCode: resp.StatusCode,
			Message:    "failed to parse response",
			Err:        err,
		}
	}
	return nil
}

// GetMovieByID fetches a movie by its TMDB ID. Returns ErrNotFound if TMDB
// does not know the ID.
func (c *Client) GetMovieByID(ctx context.Context, id int64) (*Movie, error) {
	var movie Movie
	err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), "movie", nil, &movie)
	if err != nil {
		var tErr *Error
		if errors.As(err, &tErr) && tErr.IsNotFound() {
			return nil, fmt.Errorf("tmdb movie %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &movie, nil
}

// GetMovieByIMDbID looks up a movie by its IMDb ID. If TMDB maps the ID to
// several movies the first one is returned.
func (c *Client) GetMovieByIMDbID(ctx context.Context, imdbID string) (*Movie, error) {
	params := url.Values{}
	params.Set("external_source", "imdb_id")

	var results FindResults
	err := c.doRequest(ctx, "/find/"+url.PathEscape(imdbID), "find", params, &results)
	if err != nil {
		return nil, err
	}

	switch n := len(results.MovieResults); {
	case n == 0:
		return nil, fmt.Errorf("imdb title %s: %w", imdbID, ErrNotFound)
	case n > 1:
		c.logger.Warn().
			Str("imdb_id", imdbID).
			Int("results", n).
			Msg("Received more than one movie for IMDb ID, using the first")
	}

	movie := results.MovieResults[0]
	if movie.ImdbID == "" {
		movie.ImdbID = imdbID
	}
	return &movie, nil
}

// GetImages fetches the posters of a movie in the accepted languages
func (c *Client) GetImages(ctx context.Context, id int64) (*ImagesResponse, error) {
	params := url.Values{}
	params.Set("include_image_language", languageParam())

	var images ImagesResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d/images", id), "images", params, &images); err != nil {
		return nil, err
	}
	return &images, nil
}

// GetCoverMetadata selects the best rated poster of a movie and builds its
// image URL. Returns nil if the movie has no poster in an accepted language.
func (c *Client) GetCoverMetadata(ctx context.Context, id int64) (*model.Cover, error) {
	images, err := c.GetImages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get images for movie %d: %w", id, err)
	}

	poster, ok := bestPoster(images.Posters)
	if !ok {
		c.logger.Debug().Int64("tmdb_id", id).Msg("No poster available")
		return nil, nil
	}

	cfg, err := c.configs.GetOrFetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get image configuration: %w", err)
	}

	size, err := SelectSize(cfg.PosterSizes, c.coverWidth, poster.Width)
	if err != nil {
		return nil, fmt.Errorf("failed to select cover size for movie %d: %w", id, err)
	}

	return &model.Cover{
		URL:   BuildImageURL(cfg.SecureBaseURL, size, poster.FilePath),
		Ratio: poster.AspectRatio,
	}, nil
}

// GetConfiguration fetches the global TMDB configuration without caching
func (c *Client) GetConfiguration(ctx context.Context) (*Configuration, error) {
	var cfg Configuration
	if err := c.doRequest(ctx, "/configuration", "configuration", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TestConnection verifies the API token by fetching the configuration
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.GetConfiguration(ctx)
	return err
}

// MovieURL returns the public TMDB page of a movie as requested before redirects
func (c *Client) MovieURL(id int64) string {
	return fmt.Sprintf("%s/movie/%d", c.webURL, id)
}

// ResolveCanonicalURL asks the TMDB web host for the human readable page of a
// movie. It never fails: without a redirect, or on any request error, the
// requested URL is returned.
func (c *Client) ResolveCanonicalURL(ctx context.Context, id int64) string {
	if c.canonical != nil {
		if cached, ok := c.canonical.Get(id); ok {
			return cached
		}
	}

	start := time.Now()
	requestURL := c.MovieURL(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, requestURL, http.NoBody)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", requestURL).Msg("Failed to create canonical URL request")
		c.observe("canonical", "fallback", start)
		return requestURL
	}

	resp, err := c.webClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", requestURL).Msg("Failed to resolve canonical URL")
		c.observe("canonical", "fallback", start)
		return requestURL
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	location, err := resp.Location()
	if resp.StatusCode < 300 || resp.StatusCode >= 400 || err != nil {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("url", requestURL).
			Msg("TMDB did not redirect to a canonical URL")
		c.observe("canonical", "fallback", start)
		return requestURL
	}

	canonical := location.String()
	if c.canonical != nil {
		c.canonical.Add(id, canonical)
	}
	c.observe("canonical", "ok", start)
	return canonical
}
