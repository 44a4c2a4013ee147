package tmdb

import (
	"net/http"
	"time"
)

const (
	// DefaultAPIURL is the TMDB v3 API endpoint
	DefaultAPIURL = "https://api.themoviedb.org/3"
	// DefaultWebURL is the public TMDB web host
	DefaultWebURL = "https://www.themoviedb.org"
	// DefaultTimeout bounds every single upstream request
	DefaultTimeout = 10 * time.Second
	// DefaultCoverWidth is the target width in pixels for cover images
	DefaultCoverWidth = 500
	// DefaultCanonicalCacheSize is the number of canonical URLs remembered
	DefaultCanonicalCacheSize = 1024
)

// RequestObserver is notified about every upstream request
type RequestObserver interface {
	ObserveUpstream(endpoint, outcome string, elapsed time.Duration)
}

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	apiURL             string
	webURL             string
	timeout            time.Duration
	coverWidth         int
	canonicalCacheSize int
	transport          http.RoundTripper
	observer           RequestObserver
}

func defaultOptions() clientOptions {
	return clientOptions{
		apiURL:             DefaultAPIURL,
		webURL:             DefaultWebURL,
		timeout:            DefaultTimeout,
		coverWidth:         DefaultCoverWidth,
		canonicalCacheSize: DefaultCanonicalCacheSize,
	}
}

// WithAPIURL overrides the TMDB API endpoint.
func WithAPIURL(apiURL string) Option {
	return func(o *clientOptions) {
		o.apiURL = apiURL
	}
}

// WithWebURL overrides the public TMDB web host used for canonical URLs.
func WithWebURL(webURL string) Option {
	return func(o *clientOptions) {
		o.webURL = webURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithCoverWidth sets the desired cover width in pixels.
func WithCoverWidth(width int) Option {
	return func(o *clientOptions) {
		if width > 0 {
			o.coverWidth = width
		}
	}
}

// WithCanonicalCacheSize sets how many canonical URLs are remembered.
// Zero disables the cache.
func WithCanonicalCacheSize(size int) Option {
	return func(o *clientOptions) {
		if size >= 0 {
			o.canonicalCacheSize = size
		}
	}
}

// WithTransport sets the base transport for both API and web requests.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = transport
	}
}

// WithObserver registers a RequestObserver.
func WithObserver(observer RequestObserver) Option {
	return func(o *clientOptions) {
		o.observer = observer
	}
}
