package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmunix/marquee/internal/tmdb"
)

const releaseDateLayout = "2006-01-02"

var errMapping = errors.New("unmappable payload")

// GenreTable maps genre ids to names. The zero value resolves every id to
// UnknownGenre.
type GenreTable map[int]string

// Resolve returns the name for id, or UnknownGenre.
func (t GenreTable) Resolve(id int) string {
	if name, ok := t[id]; ok {
		return name
	}
	return UnknownGenre
}

// mapSummary converts a list item, resolving its genre ids through genres.
func mapSummary(w tmdb.ListMovie, genres GenreTable) MovieSummary {
	s := mapCore(w.MovieCore)
	s.Genres = make([]Genre, 0, len(w.GenreIDs))
	for _, id := range w.GenreIDs {
		s.Genres = append(s.Genres, Genre{ID: id, Name: genres.Resolve(id)})
	}
	return s
}

// mapDetail converts a detail response using its embedded genres and
// credits. Missing credits become empty lists.
func mapDetail(w tmdb.MovieDetails) MovieDetail {
	d := MovieDetail{
		MovieSummary: mapCore(w.MovieCore),
		Status:       w.Status,
		Runtime:      w.Runtime,
		Cast:         []CastMember{},
		Crew:         []CrewMember{},
	}
	d.Genres = mapGenres(w.Genres)

	if w.Credits != nil {
		for _, c := range w.Credits.Cast {
			d.Cast = append(d.Cast, CastMember{
				ID:          c.ID,
				Name:        c.Name,
				Character:   c.Character,
				Order:       c.Order,
				ProfilePath: c.ProfilePath,
			})
		}
		for _, c := range w.Credits.Crew {
			d.Crew = append(d.Crew, CrewMember{
				ID:          c.ID,
				Name:        c.Name,
				Job:         c.Job,
				Department:  c.Department,
				ProfilePath: c.ProfilePath,
			})
		}
	}
	return d
}

// mapCore fills the fields common to summaries and details.
func mapCore(c tmdb.MovieCore) MovieSummary {
	return MovieSummary{
		ID:               c.ID,
		Title:            c.Title,
		OriginalTitle:    c.OriginalTitle,
		Overview:         c.Overview,
		PosterPath:       c.PosterPath,
		BackdropPath:     c.BackdropPath,
		Rating:           c.VoteAverage,
		VoteCount:        c.VoteCount,
		ReleaseDate:      parseReleaseDate(c.ReleaseDate),
		Genres:           []Genre{},
		Popularity:       c.Popularity,
		OriginalLanguage: c.OriginalLanguage,
		Adult:            c.Adult,
	}
}

func mapGenres(ws []tmdb.Genre) []Genre {
	genres := make([]Genre, 0, len(ws))
	for _, g := range ws {
		genres = append(genres, Genre{ID: g.ID, Name: g.Name})
	}
	return genres
}

// mapPage converts a list response. Items without an id are a contract
// violation.
func mapPage(w tmdb.MovieList, genres GenreTable) (*Page[MovieSummary], error) {
	page := &Page[MovieSummary]{
		Page:         w.Page,
		TotalPages:   w.TotalPages,
		TotalResults: w.TotalResults,
		Results:      make([]MovieSummary, 0, len(w.Results)),
	}
	for i, item := range w.Results {
		if item.ID <= 0 {
			return nil, fmt.Errorf("%w: result %d has no id", errMapping, i)
		}
		page.Results = append(page.Results, mapSummary(item, genres))
	}
	return page, nil
}

// parseReleaseDate returns nil for empty or unparsable dates.
func parseReleaseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(releaseDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
