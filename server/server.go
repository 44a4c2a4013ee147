// Package server exposes the resolver over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/s0up4200/tmdb-resolver/model"
	"github.com/s0up4200/tmdb-resolver/resolver"
	"github.com/s0up4200/tmdb-resolver/tmdb"
)

const maxRequestBody = 64 << 10

// MovieResolver is the part of the resolver the server uses
type MovieResolver interface {
	ResolveByLink(ctx context.Context, link string) (*model.Movie, error)
	ResolveByID(ctx context.Context, id string, source model.Source) (*model.Movie, error)
}

// Config holds the listener settings
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP front-end
type Server struct {
	config   Config
	resolver MovieResolver
	metrics  *Metrics
	logger   zerolog.Logger
	server   *http.Server
}

type byLinkRequest struct {
	TMDBURL string `json:"tmdbUrl"`
	URL     string `json:"url"`
}

type byIDRequest struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// NewServer creates the HTTP server. gatherer serves /metrics.
func NewServer(config Config, r MovieResolver, metrics *Metrics, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	s := &Server{
		config:   config,
		resolver: r,
		metrics:  metrics,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /by_link", s.handleByLink)
	mux.HandleFunc("POST /by_id", s.handleByID)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")

	go func() {
		<-ctx.Done()
		s.logger.Info().Msg("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("Failed to shutdown HTTP server gracefully")
		}
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

func (s *Server) handleByLink(w http.ResponseWriter, r *http.Request) {
	var req byLinkRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}

	link := req.TMDBURL
	if link == "" {
		link = req.URL
	}
	if link == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "tmdbUrl is required"})
		return
	}

	start := time.Now()
	movie, err := s.resolver.ResolveByLink(r.Context(), link)
	s.respond(w, "link", start, movie, err)
}

func (s *Server) handleByID(w http.ResponseWriter, r *http.Request) {
	var req byIDRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}

	source, err := model.ParseSource(req.Source)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	}

	start := time.Now()
	movie, err := s.resolver.ResolveByID(r.Context(), req.ID, source)
	s.respond(w, "id", start, movie, err)
}

func (s *Server) respond(w http.ResponseWriter, kind string, start time.Time, movie *model.Movie, err error) {
	status, outcome := classify(err)
	if s.metrics != nil {
		s.metrics.RecordResolution(kind, outcome, time.Since(start))
	}

	if err != nil {
		detail := err.Error()
		switch {
		case status == http.StatusServiceUnavailable:
			s.logger.Error().Err(err).Str("kind", kind).Msg("Resolution failed")
			detail = "upstream service unavailable"
		case status >= http.StatusInternalServerError:
			s.logger.Error().Err(err).Str("kind", kind).Msg("Resolution failed")
			sentry.CaptureException(err)
			detail = "internal server error"
		default:
			s.logger.Debug().Err(err).Str("kind", kind).Msg("Resolution rejected")
		}
		writeJSON(w, status, errorResponse{Detail: detail})
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

// classify maps a resolver outcome to an HTTP status and a metric label
func classify(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, "ok"
	case errors.Is(err, resolver.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, resolver.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case tmdb.IsIO(err):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "error"
	}
}

func decode(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
