package tmdb

import (
	"fmt"
	"time"

	"github.com/s0up4200/tmdb-resolver/model"
)

// Movie is the TMDB movie record as returned by /movie/{id} and /find/{id}.
// ImdbID is only populated by /movie/{id}.
type Movie struct {
	ID               int64   `json:"id"`
	Adult            bool    `json:"adult"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       string  `json:"poster_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	ImdbID           string  `json:"imdb_id,omitempty"`
}

// Year returns the release year, or 0 if the release date is unknown
func (m *Movie) Year() int {
	released, err := time.Parse("2006-01-02", m.ReleaseDate)
	if err != nil {
		return 0
	}
	return released.Year()
}

// Rating returns the vote average with one decimal, or nil if nobody voted
func (m *Movie) Rating() *string {
	if m.VoteCount == 0 {
		return nil
	}
	rating := fmt.Sprintf("%.1f", m.VoteAverage)
	return &rating
}

// ToModel converts a TMDB movie to the shared movie record without cover or links
func (m *Movie) ToModel() model.Movie {
	return model.Movie{
		ID:     fmt.Sprintf("%d", m.ID),
		Title:  m.Title,
		Year:   m.Year(),
		Rating: m.Rating(),
	}
}

// FindResults is the response of /find/{external_id}
type FindResults struct {
	MovieResults []Movie `json:"movie_results"`
}

// Image is a single entry of /movie/{id}/images
type Image struct {
	AspectRatio float64 `json:"aspect_ratio"`
	FilePath    string  `json:"file_path"`
	Height      int     `json:"height"`
	Width       int     `json:"width"`
	Language    *string `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// ImagesResponse is the response of /movie/{id}/images
type ImagesResponse struct {
	ID      int64   `json:"id"`
	Posters []Image `json:"posters"`
}

// ImageConfiguration describes where and in which sizes TMDB serves images
type ImageConfiguration struct {
	BaseURL       string   `json:"base_url"`
	SecureBaseURL string   `json:"secure_base_url"`
	PosterSizes   []string `json:"poster_sizes"`
	BackdropSizes []string `json:"backdrop_sizes"`
	LogoSizes     []string `json:"logo_sizes"`
	ProfileSizes  []string `json:"profile_sizes"`
	StillSizes    []string `json:"still_sizes"`
}

func (c ImageConfiguration) clone() *ImageConfiguration {
	c.PosterSizes = append([]string(nil), c.PosterSizes...)
	c.BackdropSizes = append([]string(nil), c.BackdropSizes...)
	c.LogoSizes = append([]string(nil), c.LogoSizes...)
	c.ProfileSizes = append([]string(nil), c.ProfileSizes...)
	c.StillSizes = append([]string(nil), c.StillSizes...)
	return &c
}

// Configuration is the response of /configuration
type Configuration struct {
	Images     ImageConfiguration `json:"images"`
	ChangeKeys []string           `json:"change_keys"`
}

// State is the process state kept by the ConfigCache
type State struct {
	APIConfig *ImageConfiguration `json:"api_config"`
}

// InitialState returns the state before the configuration was fetched
func InitialState() State {
	return State{APIConfig: nil}
}
