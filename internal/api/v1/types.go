package v1

import "github.com/vmunix/marquee/internal/catalog"

const (
	posterSize   = "w500"
	backdropSize = "w1280"
	dateLayout   = "2006-01-02"
)

// movieResponse is the API representation of a movie summary.
type movieResponse struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	OriginalTitle    string          `json:"original_title"`
	Overview         string          `json:"overview"`
	Year             int             `json:"year,omitempty"`
	ReleaseDate      string          `json:"release_date,omitempty"`
	Rating           float64         `json:"rating"`
	VoteCount        int             `json:"vote_count"`
	Popularity       float64         `json:"popularity"`
	OriginalLanguage string          `json:"original_language"`
	Adult            bool            `json:"adult"`
	Genres           []genreResponse `json:"genres"`
	PosterPath       string          `json:"poster_path"`
	PosterURL        string          `json:"poster_url,omitempty"`
	BackdropPath     string          `json:"backdrop_path"`
	BackdropURL      string          `json:"backdrop_url,omitempty"`
}

type genreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// listMoviesResponse is the response for the paginated movie endpoints.
type listMoviesResponse struct {
	Page         int             `json:"page"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
	Results      []movieResponse `json:"results"`
}

type castResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path,omitempty"`
}

type crewResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// movieDetailResponse is the response for GET /movies/{id}.
type movieDetailResponse struct {
	movieResponse
	Status  string         `json:"status"`
	Runtime int            `json:"runtime"`
	Cast    []castResponse `json:"cast"`
	Crew    []crewResponse `json:"crew"`
}

type listGenresResponse struct {
	Genres []genreResponse `json:"genres"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func movieToResponse(m *catalog.MovieSummary) movieResponse {
	resp := movieResponse{
		ID:               m.ID,
		Title:            m.Title,
		OriginalTitle:    m.OriginalTitle,
		Overview:         m.Overview,
		Year:             m.Year(),
		Rating:           m.Rating,
		VoteCount:        m.VoteCount,
		Popularity:       m.Popularity,
		OriginalLanguage: m.OriginalLanguage,
		Adult:            m.Adult,
		Genres:           genresToResponse(m.Genres),
		PosterPath:       m.PosterPath,
		PosterURL:        m.PosterURL(posterSize),
		BackdropPath:     m.BackdropPath,
		BackdropURL:      m.BackdropURL(backdropSize),
	}
	if m.ReleaseDate != nil {
		resp.ReleaseDate = m.ReleaseDate.Format(dateLayout)
	}
	return resp
}

func pageToResponse(p *catalog.Page[catalog.MovieSummary]) listMoviesResponse {
	resp := listMoviesResponse{
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
		Results:      make([]movieResponse, 0, len(p.Results)),
	}
	for i := range p.Results {
		resp.Results = append(resp.Results, movieToResponse(&p.Results[i]))
	}
	return resp
}

func detailToResponse(d *catalog.MovieDetail) movieDetailResponse {
	resp := movieDetailResponse{
		movieResponse: movieToResponse(&d.MovieSummary),
		Status:        d.Status,
		Runtime:       d.Runtime,
		Cast:          make([]castResponse, 0, len(d.Cast)),
		Crew:          make([]crewResponse, 0, len(d.Crew)),
	}
	for _, c := range d.Cast {
		resp.Cast = append(resp.Cast, castResponse(c))
	}
	for _, c := range d.Crew {
		resp.Crew = append(resp.Crew, crewResponse(c))
	}
	return resp
}

func genresToResponse(genres []catalog.Genre) []genreResponse {
	resp := make([]genreResponse, 0, len(genres))
	for _, g := range genres {
		resp = append(resp, genreResponse(g))
	}
	return resp
}
