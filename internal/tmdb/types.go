// Package tmdb provides a client for The Movie Database API.
package tmdb

// MovieCore holds the fields shared by list items and detail responses.
type MovieCore struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`   // "/abc123.jpg", may be null
	BackdropPath     string  `json:"backdrop_path"` // may be null
	ReleaseDate      string  `json:"release_date"`  // "2024-03-01", may be empty
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language"` // ISO 639-1
	Adult            bool    `json:"adult"`
}

// ListMovie is a movie as it appears in paginated list endpoints.
// Genres are given by id only.
type ListMovie struct {
	MovieCore
	GenreIDs []int `json:"genre_ids"`
}

// MovieList is a page of movies from popular, top_rated, search and discover.
type MovieList struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []ListMovie `json:"results"`
}

// MovieDetails is the single-movie response, optionally with embedded credits.
type MovieDetails struct {
	MovieCore
	Genres  []Genre  `json:"genres"`
	Status  string   `json:"status"`  // "Released", "In Production", ...
	Runtime int      `json:"runtime"` // minutes, may be null
	Credits *Credits `json:"credits,omitempty"`
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the response of genre/movie/list.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// Credits wraps cast and crew arrays.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember is a single billed performer.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path"`
}

// CrewMember is a single crew credit.
type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

// errorBody is the payload TMDB sends with non-2xx responses.
type errorBody struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
