package tmdb

import (
	"context"

	"github.com/s0up4200/tmdb-resolver/model"
)

// API defines the TMDB operations the resolver depends on
type API interface {
	// GetMovieByID fetches a movie by its TMDB ID
	GetMovieByID(ctx context.Context, id int64) (*Movie, error)

	// GetMovieByIMDbID maps an IMDb ID to a TMDB movie
	GetMovieByIMDbID(ctx context.Context, imdbID string) (*Movie, error)

	// GetCoverMetadata selects the cover image of a movie
	GetCoverMetadata(ctx context.Context, id int64) (*model.Cover, error)

	// ResolveCanonicalURL returns the public page of a movie, best effort
	ResolveCanonicalURL(ctx context.Context, id int64) string
}

var _ API = (*Client)(nil)
