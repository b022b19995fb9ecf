// Package catalog is the data-access core of the movie catalog: it turns
// catalog queries into upstream calls, caches the results and maps them to
// the domain model.
package catalog

import (
	"slices"
	"time"
)

// UnknownGenre is the name given to genre ids missing from the genre table.
const UnknownGenre = "Unknown"

const imageBaseURL = "https://image.tmdb.org/t/p/"

// Genre is an id/name pair from the genre catalog.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieSummary is a movie as listed in paginated results.
type MovieSummary struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	OriginalTitle    string     `json:"original_title"`
	Overview         string     `json:"overview"`
	PosterPath       string     `json:"poster_path"`
	BackdropPath     string     `json:"backdrop_path"`
	Rating           float64    `json:"rating"` // 0-10
	VoteCount        int        `json:"vote_count"`
	ReleaseDate      *time.Time `json:"release_date"` // nil when unknown
	Genres           []Genre    `json:"genres"`
	Popularity       float64    `json:"popularity"`
	OriginalLanguage string     `json:"original_language"`
	Adult            bool       `json:"adult"`
}

// Year returns the release year, or 0 when there is no release date.
func (m *MovieSummary) Year() int {
	if m.ReleaseDate == nil {
		return 0
	}
	return m.ReleaseDate.Year()
}

// PosterURL returns the full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original
func (m *MovieSummary) PosterURL(size string) string {
	return imageURL(size, m.PosterPath)
}

// BackdropURL returns the full backdrop image URL.
// Size can be: w300, w780, w1280, original
func (m *MovieSummary) BackdropURL(size string) string {
	return imageURL(size, m.BackdropPath)
}

func imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + size + path
}

func (m MovieSummary) clone() MovieSummary {
	if m.ReleaseDate != nil {
		d := *m.ReleaseDate
		m.ReleaseDate = &d
	}
	m.Genres = slices.Clone(m.Genres)
	return m
}

// CastMember is one billed performer. Order is the billing position.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path"`
}

// CrewMember is one crew credit.
type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

// MovieDetail is a single movie with production data and credits.
type MovieDetail struct {
	MovieSummary
	Status  string       `json:"status"`
	Runtime int          `json:"runtime"` // minutes
	Cast    []CastMember `json:"cast"`    // billing order
	Crew    []CrewMember `json:"crew"`
}

// Clone returns a copy that shares no mutable state with d.
func (d *MovieDetail) Clone() *MovieDetail {
	c := *d
	c.MovieSummary = d.MovieSummary.clone()
	c.Cast = slices.Clone(d.Cast)
	c.Crew = slices.Clone(d.Crew)
	return &c
}

// Page is one page of a paginated upstream result. Page numbers are 1-based.
type Page[T any] struct {
	Page         int `json:"page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
	Results      []T `json:"results"`
}

// clone copies p, copying each result with item.
func (p *Page[T]) clone(item func(T) T) *Page[T] {
	c := *p
	c.Results = make([]T, len(p.Results))
	for i, r := range p.Results {
		c.Results[i] = item(r)
	}
	return &c
}

func cloneSummaries(p *Page[MovieSummary]) *Page[MovieSummary] {
	return p.clone(MovieSummary.clone)
}
