package tmdb

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/s0up4200/tmdb-resolver/state"
)

// ConfigurationFetcher fetches the global TMDB configuration
type ConfigurationFetcher interface {
	GetConfiguration(ctx context.Context) (*Configuration, error)
}

// ConfigCache keeps the TMDB image configuration for the lifetime of the
// process. Concurrent callers may fetch redundantly; they store the same value.
type ConfigCache struct {
	storage state.Storage[State]
	fetcher ConfigurationFetcher
	logger  zerolog.Logger
}

// NewConfigCache creates a cache on top of the given storage
func NewConfigCache(storage state.Storage[State], fetcher ConfigurationFetcher, logger zerolog.Logger) *ConfigCache {
	return &ConfigCache{
		storage: storage,
		fetcher: fetcher,
		logger:  logger,
	}
}

// GetOrFetch returns the cached image configuration, fetching it on first use
func (c *ConfigCache) GetOrFetch(ctx context.Context) (*ImageConfiguration, error) {
	current, err := c.storage.Load(ctx)
	if err != nil {
		return nil, ioError("failed to load cached configuration", err)
	}
	if current.APIConfig != nil {
		return current.APIConfig, nil
	}

	cfg, err := c.fetcher.GetConfiguration(ctx)
	if err != nil {
		return nil, err
	}

	images := cfg.Images.clone()
	if err := c.storage.Store(ctx, State{APIConfig: images}); err != nil {
		// The fetched value is still valid for this caller
		c.logger.Warn().Err(err).Msg("Failed to cache TMDB configuration")
		return images, nil
	}

	c.logger.Debug().
		Strs("poster_sizes", images.PosterSizes).
		Msg("Cached TMDB image configuration")
	return images, nil
}

// Reset drops the cached configuration so the next GetOrFetch fetches again
func (c *ConfigCache) Reset(ctx context.Context) error {
	return c.storage.Store(ctx, InitialState())
}

// Close closes the underlying storage
func (c *ConfigCache) Close() error {
	return c.storage.Close()
}
