// Package v1 implements the REST API over the movie catalog.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vmunix/marquee/internal/catalog"
	"github.com/vmunix/marquee/internal/resilience"
)

// statusClientClosedRequest is the de facto code for a request the client
// abandoned.
const statusClientClosedRequest = 499

// Server is the v1 API server.
type Server struct {
	deps ServerDeps
	log  *slog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingDependency, err)
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, log: log.With("component", "api")}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Movies
	mux.HandleFunc("GET /api/v1/movies/popular", s.listPopular)
	mux.HandleFunc("GET /api/v1/movies/top-rated", s.listTopRated)
	mux.HandleFunc("GET /api/v1/movies/search", s.searchMovies)
	mux.HandleFunc("GET /api/v1/movies/{id}", s.getMovie)

	// Genres
	mux.HandleFunc("GET /api/v1/genres", s.listGenres)

	// System
	mux.HandleFunc("GET /api/v1/health", s.health)
}

// Handler returns the routed API wrapped in rate limiting and request
// logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var h http.Handler = mux
	if s.deps.Limiter != nil {
		h = rateLimit(h, s.deps.Limiter)
	}
	return logRequests(h, s.log)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeCatalogError translates a catalog failure into a response.
func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidArgument):
		var ce *catalog.Error
		msg := err.Error()
		if errors.As(err, &ce) {
			msg = ce.Err.Error()
		}
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", msg)
	case errors.Is(err, catalog.ErrCanceled):
		s.log.Debug("request canceled", "path", r.URL.Path, "error", err)
		writeError(w, statusClientClosedRequest, "CANCELED", "request canceled")
	case errors.Is(err, resilience.ErrTimeout):
		s.log.Error("upstream timeout", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "movie provider timed out")
	case errors.Is(err, catalog.ErrContract):
		s.log.Error("upstream contract violation", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_CONTRACT", "movie provider returned an unexpected response")
	default:
		s.log.Error("upstream failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "movie provider unavailable")
	}
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryInt extracts an optional integer from the query string.
func queryInt(r *http.Request, name string, defaultVal int) (int, error) {
	val := strings.TrimSpace(r.URL.Query().Get(name))
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return i, nil
}

// queryFloat extracts an optional number from the query string.
func queryFloat(r *http.Request, name string) (float64, error) {
	val := strings.TrimSpace(r.URL.Query().Get(name))
	if val == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return f, nil
}

func (s *Server) listPopular(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	result, err := s.deps.Catalog.Popular(r.Context(), page)
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(result))
}

func (s *Server) listTopRated(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	result, err := s.deps.Catalog.TopRated(r.Context(), page)
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(result))
}

func (s *Server) searchMovies(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	if name := strings.TrimSpace(r.URL.Query().Get("genre")); name != "" {
		if q.GenreID != 0 {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "genre and genre_id are mutually exclusive")
			return
		}
		genre, ok, err := s.deps.Catalog.GenreByName(r.Context(), name)
		if err != nil {
			s.writeCatalogError(w, r, err)
			return
		}
		if !ok {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", fmt.Sprintf("unknown genre %q", name))
			return
		}
		q.GenreID = genre.ID
	}

	result, err := s.deps.Catalog.Search(r.Context(), q)
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(result))
}

func parseSearchQuery(r *http.Request) (catalog.SearchQuery, error) {
	params := r.URL.Query()
	q := catalog.SearchQuery{
		Query:    params.Get("query"),
		Language: params.Get("language"),
		SortBy:   params.Get("sort_by"),
	}

	var err error
	if q.Page, err = queryInt(r, "page", 1); err != nil {
		return q, err
	}
	if q.Year, err = queryInt(r, "year", 0); err != nil {
		return q, err
	}
	if q.GenreID, err = queryInt(r, "genre_id", 0); err != nil {
		return q, err
	}
	if q.MinRating, err = queryFloat(r, "min_rating"); err != nil {
		return q, err
	}
	return q, nil
}

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "movie id must be a positive integer")
		return
	}

	movie, found, err := s.deps.Catalog.Movie(r.Context(), id)
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("movie %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, detailToResponse(movie))
}

func (s *Server) listGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.deps.Catalog.Genres(r.Context())
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listGenresResponse{Genres: genresToResponse(genres)})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.deps.Version})
}
