// Package model holds the records shared between the parser, the TMDB client
// and the resolver.
package model

import "fmt"

// Source identifies the catalog a movie identifier belongs to
type Source int

const (
	// SourceTMDB is the primary catalog (themoviedb.org numeric IDs)
	SourceTMDB Source = iota
	// SourceIMDb is the cross-reference catalog (imdb.com tt-IDs)
	SourceIMDb
)

// String returns the string representation of a Source
func (s Source) String() string {
	switch s {
	case SourceTMDB:
		return "tmdb"
	case SourceIMDb:
		return "imdb"
	default:
		return "unknown"
	}
}

// ParseSource maps a source name to a Source. An empty name means SourceTMDB.
func ParseSource(name string) (Source, error) {
	switch name {
	case "", "tmdb":
		return SourceTMDB, nil
	case "imdb":
		return SourceIMDb, nil
	default:
		return SourceTMDB, fmt.Errorf("unknown source: %s", name)
	}
}

// Reference is a parsed movie identifier tied to the catalog it came from.
// Construct it with TMDBReference or IMDbReference.
type Reference struct {
	source Source
	tmdbID int64
	imdbID string
}

// TMDBReference creates a reference to a primary catalog movie
func TMDBReference(id int64) Reference {
	return Reference{source: SourceTMDB, tmdbID: id}
}

// IMDbReference creates a reference to a cross-reference catalog title
func IMDbReference(id string) Reference {
	return Reference{source: SourceIMDb, imdbID: id}
}

// Source returns the catalog of the reference
func (r Reference) Source() Source {
	return r.source
}

// TMDBID returns the numeric ID. Only meaningful for SourceTMDB.
func (r Reference) TMDBID() int64 {
	return r.tmdbID
}

// IMDbID returns the tt-ID. Only meaningful for SourceIMDb.
func (r Reference) IMDbID() string {
	return r.imdbID
}

// ID returns the identifier as it would appear in a catalog URL
func (r Reference) ID() string {
	if r.source == SourceIMDb {
		return r.imdbID
	}
	return fmt.Sprintf("%d", r.tmdbID)
}

// String implements fmt.Stringer
func (r Reference) String() string {
	return r.source.String() + ":" + r.ID()
}

// Cover describes the selected poster image of a movie
type Cover struct {
	URL   string  `json:"url"`
	Ratio float64 `json:"ratio"`
}

// Movie is a resolved movie. The URL fields are only set on records returned
// by the resolver.
type Movie struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Year    int     `json:"year"`
	Rating  *string `json:"rating"`
	Cover   *Cover  `json:"cover"`
	TMDBURL string  `json:"tmdbUrl,omitempty"`
	IMDbURL *string `json:"imdbUrl,omitempty"`
}

// WithCover returns a copy of the movie with the given cover
func (m Movie) WithCover(cover *Cover) Movie {
	m.Cover = cover
	return m
}

// WithLinks returns a copy of the movie with the canonical and cross-reference URLs set
func (m Movie) WithLinks(tmdbURL string, imdbURL *string) Movie {
	m.TMDBURL = tmdbURL
	m.IMDbURL = imdbURL
	return m
}

// IMDbTitleURL builds the public cross-reference URL for a tt-ID
func IMDbTitleURL(imdbID string) string {
	return "https://www.imdb.com/title/" + imdbID + "/"
}
