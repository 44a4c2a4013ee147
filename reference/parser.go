// Package reference extracts movie identifiers from catalog links.
package reference

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/tmdb-resolver/model"
)

var (
	imdbPathPattern = regexp.MustCompile(`/(tt\d+)`)
	imdbIDPattern   = regexp.MustCompile(`^tt\d+$`)
)

// Parser recognizes themoviedb.org movie pages and imdb.com title pages
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a new link parser
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse extracts a reference from a link. The TMDB pattern is tried first.
// ok is false if neither catalog pattern matched.
func (p *Parser) Parse(link string) (ref model.Reference, ok bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		p.logger.Debug().Err(err).Str("link", link).Msg("Unparseable link")
		return model.Reference{}, false
	}

	if id, ok := p.tmdbID(u); ok {
		return model.TMDBReference(id), true
	}
	if id, ok := p.imdbID(u); ok {
		return model.IMDbReference(id), true
	}
	return model.Reference{}, false
}

func (p *Parser) tmdbID(u *url.URL) (int64, bool) {
	if !matchHost(u, "themoviedb.org") {
		p.logger.Debug().Str("host", u.Host).Msg("Not a TMDB host")
		return 0, false
	}

	segments := strings.Split(u.Path, "/")
	if len(segments) != 3 {
		p.logger.Debug().Str("path", u.Path).Msg("Invalid TMDB path")
		return 0, false
	}
	if segments[0] != "" || segments[1] != "movie" {
		p.logger.Debug().Str("path", u.Path).Msg("Non-movie TMDB URL")
		return 0, false
	}

	prefix, _, _ := strings.Cut(segments[2], "-")
	id, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || id < 0 {
		p.logger.Debug().Str("slug", segments[2]).Msg("Non-integer TMDB movie ID")
		return 0, false
	}
	return id, true
}

func (p *Parser) imdbID(u *url.URL) (string, bool) {
	if !matchHost(u, "imdb.com") {
		p.logger.Debug().Str("host", u.Host).Msg("Not an IMDb host")
		return "", false
	}

	match := imdbPathPattern.FindStringSubmatch(u.Path)
	if match == nil {
		p.logger.Debug().Str("path", u.Path).Msg("Could not extract IMDb ID")
		return "", false
	}
	return match[1], true
}

// matchHost accepts the bare domain and its www. form
func matchHost(u *url.URL, domain string) bool {
	host := strings.ToLower(u.Hostname())
	return host == domain || host == "www."+domain
}

// ValidIMDbID reports whether id is a bare tt-ID
func ValidIMDbID(id string) bool {
	return imdbIDPattern.MatchString(id)
}
