package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/marquee/internal/api/v1/mocks"
	"github.com/vmunix/marquee/internal/catalog"
	"github.com/vmunix/marquee/internal/resilience"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*Server, *mocks.MockCatalog) {
	t.Helper()
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	srv, err := New(ServerDeps{Catalog: cat, Logger: testLogger(), Version: "test"})
	require.NoError(t, err)
	return srv, cat
}

func serve(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func samplePage() *catalog.Page[catalog.MovieSummary] {
	date := time.Date(1999, 3, 30, 0, 0, 0, 0, time.UTC)
	return &catalog.Page[catalog.MovieSummary]{
		Page:         1,
		TotalPages:   3,
		TotalResults: 42,
		Results: []catalog.MovieSummary{{
			ID:          603,
			Title:       "The Matrix",
			PosterPath:  "/matrix.jpg",
			Rating:      8.2,
			ReleaseDate: &date,
			Genres:      []catalog.Genre{{ID: 28, Name: "Action"}},
		}},
	}
}

func TestNew_RequiresCatalog(t *testing.T) {
	_, err := New(ServerDeps{})
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestListPopular(t *testing.T) {
	srv, cat := newTestServer(t)
	cat.EXPECT().Popular(gomock.Any(), 2).Return(samplePage(), nil)

	w := serve(t, srv, "/api/v1/movies/popular?page=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp listMoviesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 42, resp.TotalResults)
	require.Len(t, resp.Results, 1)
	m := resp.Results[0]
	assert.Equal(t, int64(603), m.ID)
	assert.Equal(t, 1999, m.Year)
	assert.Equal(t, "1999-03-30", m.ReleaseDate)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", m.PosterURL)
	assert.Empty(t, m.BackdropURL)
	assert.Equal(t, []genreResponse{{ID: 28, Name: "Action"}}, m.Genres)
}

func TestListPopular_DefaultPage(t *testing.T) {
	srv, cat := newTestServer(t)
	cat.EXPECT().Popular(gomock.Any(), 1).Return(samplePage(), nil)

	w := serve(t, srv, "/api/v1/movies/popular")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListPopular_BadPage(t *testing.T) {
	srv, _ := newTestServer(t)

	w := serve(t, srv, "/api/v1/movies/popular?page=two")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, w).Code)
}

func TestListTopRated(t *testing.T) {
	srv, cat := newTestServer(t)
	cat.EXPECT().TopRated(gomock.Any(), 1).Return(samplePage(), nil)

	w := serve(t, srv, "/api/v1/movies/top-rated")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchMovies(t *testing.T) {
	srv, cat := newTestServer(t)
	cat.EXPECT().
		Search(gomock.Any(), catalog.SearchQuery{
			Query:     "matrix",
			Year:      1999,
			Language:  "en-US",
			SortBy:    "popularity.desc",
			MinRating: 7.5,
			GenreID:   28,
			Page:      2,
		}).
		Return(samplePage(), nil)

	w := serve(t, srv, "/api/v1/movies/search?query=matrix&year=1999&language=en-US&sort_by=popularity.desc&min_rating=7.5&genre_id=28&page=2")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchMovies_GenreName(t *testing.T) {
	srv, cat := newTestServer(t)
	cat.EXPECT().GenreByName(gomock.Any(), "science fiction").Return(catalog.Genre{ID: 878, Name: "Science Fiction"}, true, nil)
	cat.EXPECT().Search(gomock.Any(), catalog.SearchQuery{GenreID: 878, Page: 1}).Return(samplePage(), nil)

	w := serve(t, srv, "/api/v1/movies/search?genre=science+fiction")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchMovies_UnknownGenreName(t *testing.T) {
	srv, cat := newTestServer(t)
	cat.EXPECT().GenreByName(gomock.Any(), "musicals").Return(catalog.Genre{}, false, nil)

	w := serve(t, srv, "/api/v1/movies/search?genre=musicals")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "musicals")
}

func TestSearchMovies_BadParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"year", "/api/v1/movies/search?year=nineteen"},
		{"min_rating", "/api/v1/movies/search?min_rating=high"},
		{"genre_id", "/api/v1/movies/search?genre_id=x"},
		{"page", "/api/v1/movies/search?page=1.5"},
		{"both genres", "/api/v1/movies/search?genre_id=28&genre=action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			w := serve(t, srv, tt.target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, w).Code)
		})
	}
}

func TestGetMovie(t *testing.T) {
	srv, cat := newTestServer(t)
	cat.EXPECT().Movie(gomock.Any(), int64(550)).Return(&catalog.MovieDetail{
		MovieSummary: catalog.MovieSummary{ID: 550, Title: "Fight Club", Genres: []catalog.Genre{{ID: 18, Name: "Drama"}}},
		Status:       "Released",
		Runtime:      139,
		Cast:         []catalog.CastMember{{ID: 819, Name: "Edward Norton", Character: "The Narrator"}},
		Crew:         []catalog.CrewMember{{ID: 7467, Name: "David Fincher", Job: "Director", Department: "Directing"}},
	}, true, nil)

	w := serve(t, srv, "/api/v1/movies/550")
	require.Equal(t, http.StatusOK, w.Code)

	var resp movieDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(550), resp.ID)
	assert.Equal(t, "Fight Club", resp.Title)
	assert.Equal(t, 139, resp.Runtime)
	require.Len(t, resp.Cast, 1)
	assert.Equal(t, "The Narrator", resp.Cast[0].Character)
	require.Len(t, resp.Crew, 1)
	assert.Equal(t, "Director", resp.Crew[0].Job)
	assert.Empty(t, resp.ReleaseDate)
}

func TestGetMovie_NotFound(t *testing.T) {
	srv, cat := newTestServer(t)
	cat.EXPECT().Movie(gomock.Any(), int64(999)).Return(nil, false, nil)

	w := serve(t, srv, "/api/v1/movies/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)
}

func TestGetMovie_BadID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-5"} {
		t.Run(id, func(t *testing.T) {
			srv, _ := newTestServer(t)
			w := serve(t, srv, "/api/v1/movies/"+id)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListGenres(t *testing.T) {
	srv, cat := newTestServer(t)
	cat.EXPECT().Genres(gomock.Any()).Return([]catalog.Genre{{ID: 28, Name: "Action"}, {ID: 18, Name: "Drama"}}, nil)

	w := serve(t, srv, "/api/v1/genres")
	require.Equal(t, http.StatusOK, w.Code)

	var resp listGenresResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []genreResponse{{28, "Action"}, {18, "Drama"}}, resp.Genres)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	w := serve(t, srv, "/api/v1/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
}

func TestWriteCatalogError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{
			name:     "invalid argument",
			err:      &catalog.Error{Op: "popular", Kind: catalog.ErrInvalidArgument, Err: errors.New("page 0 out of range 1-500")},
			wantCode: http.StatusBadRequest,
			wantErr:  "INVALID_ARGUMENT",
		},
		{
			name:     "canceled",
			err:      &catalog.Error{Op: "popular", Kind: catalog.ErrCanceled, Err: context.Canceled},
			wantCode: statusClientClosedRequest,
			wantErr:  "CANCELED",
		},
		{
			name:     "timeout",
			err:      &catalog.Error{Op: "popular", Kind: catalog.ErrUpstream, Err: fmt.Errorf("%w after 10s", resilience.ErrTimeout)},
			wantCode: http.StatusGatewayTimeout,
			wantErr:  "UPSTREAM_TIMEOUT",
		},
		{
			name:     "contract",
			err:      &catalog.Error{Op: "popular", Kind: catalog.ErrContract, Err: errors.New("bad json")},
			wantCode: http.StatusBadGateway,
			wantErr:  "UPSTREAM_CONTRACT",
		},
		{
			name:     "upstream",
			err:      &catalog.Error{Op: "popular", Kind: catalog.ErrUpstream, Err: errors.New("connection refused")},
			wantCode: http.StatusBadGateway,
			wantErr:  "UPSTREAM_ERROR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, cat := newTestServer(t)
			cat.EXPECT().Popular(gomock.Any(), 1).Return(nil, tt.err)

			w := serve(t, srv, "/api/v1/movies/popular")
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, w).Code)
		})
	}
}

func TestWriteCatalogError_InvalidMessage(t *testing.T) {
	srv, cat := newTestServer(t)
	cat.EXPECT().Popular(gomock.Any(), 501).
		Return(nil, &catalog.Error{Op: "popular", Kind: catalog.ErrInvalidArgument, Err: errors.New("page 501 out of range 1-500")})

	w := serve(t, srv, "/api/v1/movies/popular?page=501")
	assert.Equal(t, "page 501 out of range 1-500", decodeError(t, w).Error)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	w := serve(t, srv, "/api/v1/shows")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
