// Package tmdb provides a client for The Movie Database (TMDB) v3 API.
//
// The client resolves movies by TMDB ID or IMDb ID, selects cover images and
// resolves the canonical, human readable movie page on the TMDB web host.
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	storage := state.NewMemory(tmdb.InitialState())
//	client, err := tmdb.NewClient(
//		"your-api-token",
//		storage,
//		logger,
//		tmdb.WithTimeout(10*time.Second),
//		tmdb.WithCoverWidth(500),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	movie, err := client.GetMovieByID(ctx, 615665)
//
// # Image configuration
//
// Cover URLs need the image base URL and the available poster sizes from
// /configuration. The ConfigCache fetches them once and keeps them in the
// injected state.Storage until Reset is called.
//
// # Error Handling
//
// Every failed call returns an *Error of one of two kinds:
//
//   - KindIO: transport failures, cancellation, timeouts and 5xx responses
//   - KindRequest: 4xx responses and anything else that is not a success
//
// Movie lookups report unknown IDs with ErrNotFound instead:
//
//	movie, err := client.GetMovieByID(ctx, id)
//	switch {
//	case errors.Is(err, tmdb.ErrNotFound):
//		// no such movie
//	case tmdb.IsIO(err):
//		// TMDB unavailable
//	}
//
// ResolveCanonicalURL never fails and falls back to the requested URL.
package tmdb
