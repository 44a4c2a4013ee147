// Package resolver turns movie links and identifiers into enriched movie records.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/tmdb-resolver/model"
	"github.com/s0up4200/tmdb-resolver/reference"
	"github.com/s0up4200/tmdb-resolver/tmdb"
)

// Outcomes besides success. TMDB failures are passed through as *tmdb.Error.
var (
	// ErrNotFound indicates the catalog has no movie for the reference
	ErrNotFound = errors.New("movie not found")
	// ErrInvalidInput indicates the link or identifier is not a supported reference
	ErrInvalidInput = errors.New("invalid movie reference")
)

// Deps holds everything the resolver needs
type Deps struct {
	API    tmdb.API
	Parser *reference.Parser
	Logger zerolog.Logger
}

// Resolver resolves movie references against TMDB
type Resolver struct {
	api    tmdb.API
	parser *reference.Parser
	logger zerolog.Logger
}

// New creates a resolver from its dependencies
func New(deps Deps) *Resolver {
	parser := deps.Parser
	if parser == nil {
		parser = reference.NewParser(deps.Logger)
	}
	return &Resolver{
		api:    deps.API,
		parser: parser,
		logger: deps.Logger,
	}
}

// ResolveByLink resolves a themoviedb.org or imdb.com link
func (r *Resolver) ResolveByLink(ctx context.Context, link string) (*model.Movie, error) {
	ref, ok := r.parser.Parse(link)
	if !ok {
		return nil, fmt.Errorf("%w: link (%s) is not a TMDB movie or IMDb title link", ErrInvalidInput, link)
	}
	return r.Resolve(ctx, ref)
}

// ResolveByID resolves a bare identifier of the given source
func (r *Resolver) ResolveByID(ctx context.Context, id string, source model.Source) (*model.Movie, error) {
	ref, err := parseID(strings.TrimSpace(id), source)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, ref)
}

func parseID(id string, source model.Source) (model.Reference, error) {
	switch source {
	case model.SourceTMDB:
		tmdbID, err := strconv.ParseInt(id, 10, 64)
		if err != nil || tmdbID < 0 {
			return model.Reference{}, fmt.Errorf("%w: '%s' is not a TMDB movie ID", ErrInvalidInput, id)
		}
		return model.TMDBReference(tmdbID), nil
	case model.SourceIMDb:
		if !reference.ValidIMDbID(id) {
			return model.Reference{}, fmt.Errorf("%w: '%s' is not an IMDb ID", ErrInvalidInput, id)
		}
		return model.IMDbReference(id), nil
	default:
		return model.Reference{}, fmt.Errorf("%w: unsupported source %s", ErrInvalidInput, source)
	}
}

// Resolve looks up the movie and adds cover and links
func (r *Resolver) Resolve(ctx context.Context, ref model.Reference) (*model.Movie, error) {
	movie, err := r.lookup(ctx, ref)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up %s: %w", ref, err)
	}

	var (
		cover     *model.Cover
		canonical string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cover, err = r.api.GetCoverMetadata(gctx, movie.ID)
		return err
	})
	g.Go(func() error {
		canonical = r.api.ResolveCanonicalURL(gctx, movie.ID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to get cover for %s: %w", ref, err)
	}

	var imdbURL *string
	switch {
	case ref.Source() == model.SourceIMDb:
		u := model.IMDbTitleURL(ref.IMDbID())
		imdbURL = &u
	case movie.ImdbID != "":
		u := model.IMDbTitleURL(movie.ImdbID)
		imdbURL = &u
	}

	record := movie.ToModel().WithCover(cover).WithLinks(canonical, imdbURL)

	r.logger.Info().
		Str("ref", ref.String()).
		Str("title", record.Title).
		Int("year", record.Year).
		Bool("cover", cover != nil).
		Msg("Resolved movie")
	return &record, nil
}

func (r *Resolver) lookup(ctx context.Context, ref model.Reference) (*tmdb.Movie, error) {
	if ref.Source() == model.SourceIMDb {
		return r.api.GetMovieByIMDbID(ctx, ref.IMDbID())
	}
	return r.api.GetMovieByID(ctx, ref.TMDBID())
}
