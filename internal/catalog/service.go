package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/vmunix/marquee/internal/cache"
	"github.com/vmunix/marquee/internal/resilience"
	"github.com/vmunix/marquee/internal/tmdb"
)

// DefaultTTL is how long popular, top-rated, search and detail responses
// stay cached.
const DefaultTTL = 15 * time.Minute

// MaxPage is the highest page the upstream will serve.
const MaxPage = 500

// Upstream endpoints.
const (
	endpointPopular  = "movie/popular"
	endpointTopRated = "movie/top_rated"
	endpointSearch   = "search/movie"
	endpointDiscover = "discover/movie"
	endpointGenres   = "genre/movie/list"
	endpointMovie    = "movie/%d"
)

// Search filter bounds.
const (
	MinYear   = 1870
	MaxYear   = 2100
	MaxRating = 10
)

// SortOptions are the orderings the discover endpoint accepts.
var SortOptions = []string{
	"popularity.asc", "popularity.desc",
	"vote_average.asc", "vote_average.desc",
	"vote_count.asc", "vote_count.desc",
	"primary_release_date.asc", "primary_release_date.desc",
	"revenue.asc", "revenue.desc",
	"original_title.asc", "original_title.desc",
	"title.asc", "title.desc",
}

//go:generate mockgen -source=service.go -destination=mocks/mock_upstream.go -package=mocks

// Upstream performs one decoded GET against the movie provider.
// *tmdb.Client satisfies it.
type Upstream interface {
	Get(ctx context.Context, endpoint string, params url.Values, out any) error
}

// SearchQuery selects movies by free text or by filters. Zero values mean
// "not set".
type SearchQuery struct {
	Query     string
	Year      int
	Language  string
	SortBy    string
	MinRating float64
	GenreID   int
	Page      int
}

// normalize returns q with the free-text query in NFC form and its
// whitespace collapsed.
func (q SearchQuery) normalize() SearchQuery {
	q.Query = strings.Join(strings.Fields(norm.NFC.String(q.Query)), " ")
	q.Language = strings.TrimSpace(q.Language)
	q.SortBy = strings.TrimSpace(q.SortBy)
	return q
}

func (q SearchQuery) validate() error {
	if err := checkPage("search", q.Page); err != nil {
		return err
	}
	if q.Year != 0 && (q.Year < MinYear || q.Year > MaxYear) {
		return invalid("search", "year %d out of range %d-%d", q.Year, MinYear, MaxYear)
	}
	if q.MinRating < 0 || q.MinRating > MaxRating {
		return invalid("search", "min rating %g out of range 0-%d", q.MinRating, MaxRating)
	}
	if q.GenreID < 0 {
		return invalid("search", "genre id %d must be positive", q.GenreID)
	}
	if q.SortBy != "" && !slices.Contains(SortOptions, q.SortBy) {
		return invalid("search", "unsupported sort %q", q.SortBy)
	}
	return nil
}

// IgnoredFilters names the filters a text search does not forward. It is
// empty for discover queries.
func (q SearchQuery) IgnoredFilters() []string {
	if q.normalize().Query == "" {
		return nil
	}
	var ignored []string
	if q.SortBy != "" {
		ignored = append(ignored, "sort_by")
	}
	if q.MinRating > 0 {
		ignored = append(ignored, "min_rating")
	}
	if q.GenreID > 0 {
		ignored = append(ignored, "genre_id")
	}
	return ignored
}

// route picks the endpoint and the parameters to forward. Text search only
// understands year and language; the remaining filters apply to discover.
func (q SearchQuery) route() (string, url.Values) {
	params := url.Values{}
	if q.Year != 0 {
		params.Set("primary_release_year", strconv.Itoa(q.Year))
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	params.Set("page", strconv.Itoa(q.Page))

	if q.Query != "" {
		params.Set("query", q.Query)
		return endpointSearch, params
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.MinRating > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(q.MinRating, 'f', -1, 64))
	}
	if q.GenreID > 0 {
		params.Set("with_genres", strconv.Itoa(q.GenreID))
	}
	return endpointDiscover, params
}

// Service answers catalog queries from the cache or the upstream.
type Service struct {
	upstream Upstream
	cache    *cache.Cache[any]
	genres   *GenreLookup
	group    singleflight.Group
	log      *slog.Logger

	mu      sync.Mutex
	waiters map[string]int // callers waiting on each shared fetch
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the response cache. Its TTL applies to every response
// except the genre catalog.
func WithCache(c *cache.Cache[any]) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithGenreLookup sets the genre catalog cache.
func WithGenreLookup(g *GenreLookup) Option {
	return func(s *Service) {
		s.genres = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService creates a Service over upstream.
func NewService(upstream Upstream, opts ...Option) *Service {
	s := &Service{upstream: upstream, waiters: make(map[string]int)}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New[any](DefaultTTL, nil)
	}
	if s.genres == nil {
		s.genres = NewGenreLookup(DefaultGenreTTL, nil)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "catalog")
	return s
}

// Cache returns the response cache.
func (s *Service) Cache() *cache.Cache[any] {
	return s.cache
}

// GenreLookup returns the genre catalog cache.
func (s *Service) GenreLookup() *GenreLookup {
	return s.genres
}

// Popular returns one page of currently popular movies.
func (s *Service) Popular(ctx context.Context, page int) (*Page[MovieSummary], error) {
	if err := checkPage("popular", page); err != nil {
		return nil, err
	}
	return s.list(ctx, "popular", endpointPopular, pageParams(page))
}

// TopRated returns one page of the highest rated movies.
func (s *Service) TopRated(ctx context.Context, page int) (*Page[MovieSummary], error) {
	if err := checkPage("top_rated", page); err != nil {
		return nil, err
	}
	return s.list(ctx, "top_rated", endpointTopRated, pageParams(page))
}

// Search runs a text search when q.Query is non-empty and a filtered
// discover otherwise.
func (s *Service) Search(ctx context.Context, q SearchQuery) (*Page[MovieSummary], error) {
	q = q.normalize()
	if err := q.validate(); err != nil {
		return nil, err
	}
	if ignored := q.IgnoredFilters(); len(ignored) > 0 {
		s.log.Debug("filters ignored by text search", "query", q.Query, "filters", ignored)
	}
	endpoint, params := q.route()
	return s.list(ctx, "search", endpoint, params)
}

// Movie returns a single movie with credits. A movie the upstream does not
// know is reported as (nil, false, nil).
func (s *Service) Movie(ctx context.Context, id int64) (*MovieDetail, bool, error) {
	const op = "movie"
	if id < 1 {
		return nil, false, invalid(op, "movie id %d must be positive", id)
	}

	endpoint := fmt.Sprintf(endpointMovie, id)
	params := url.Values{"append_to_response": {"credits"}}

	v, err := s.load(ctx, endpoint, params, func(ctx context.Context) (any, bool, error) {
		var w tmdb.MovieDetails
		if err := s.upstream.Get(ctx, endpoint, params, &w); err != nil {
			return nil, false, err
		}
		if w.ID <= 0 {
			return nil, false, fmt.Errorf("%w: movie %d has no id", errMapping, id)
		}
		d := mapDetail(w)
		return &d, true, nil
	})
	if errors.Is(err, tmdb.ErrNotFound) {
		s.log.Debug("movie not found", "id", id)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify(op, err)
	}
	return v.(*MovieDetail).Clone(), true, nil
}

// Genres returns the full genre catalog, warming the genre lookup.
func (s *Service) Genres(ctx context.Context) ([]Genre, error) {
	if err := s.WarmGenres(ctx); err != nil {
		return nil, err
	}
	list, _ := s.genres.List()
	return slices.Clone(list), nil
}

// GenreByName resolves a genre name to its catalog entry. The second
// result is false when nothing matches closely enough.
func (s *Service) GenreByName(ctx context.Context, name string) (Genre, bool, error) {
	if err := s.WarmGenres(ctx); err != nil {
		return Genre{}, false, err
	}
	g, ok := s.genres.Match(name)
	return g, ok, nil
}

// WarmGenres loads the genre catalog unless it is already cached.
func (s *Service) WarmGenres(ctx context.Context) error {
	if _, ok := s.genres.List(); ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return classify("genres", err)
	}

	_, err := s.share(ctx, genresKey, func(ctx context.Context) (any, error) {
		var w tmdb.GenreList
		if err := s.upstream.Get(ctx, endpointGenres, nil, &w); err != nil {
			return nil, err
		}
		list := mapGenres(w.Genres)
		s.genres.Store(list)
		s.log.Debug("genres warmed", "count", len(list))
		return list, nil
	})
	if err != nil {
		return classify("genres", err)
	}
	return nil
}

// genreTable warms the genre lookup and returns its table. Failures other
// than cancellation fall back to the last catalog seen, or to an empty
// table so ids resolve to UnknownGenre. The bool is false in that last
// case.
func (s *Service) genreTable(ctx context.Context) (GenreTable, bool, error) {
	err := s.WarmGenres(ctx)
	if errors.Is(err, ErrCanceled) {
		return nil, false, err
	}
	table, warmed := s.genres.Table()
	if err != nil {
		s.log.Warn("genre catalog unavailable", "error", err, "stale", warmed)
	}
	return table, warmed, nil
}

// list serves paginated list endpoints. A page mapped before the genre
// catalog was ever loaded is returned but not cached.
func (s *Service) list(ctx context.Context, op, endpoint string, params url.Values) (*Page[MovieSummary], error) {
	v, err := s.load(ctx, endpoint, params, func(ctx context.Context) (any, bool, error) {
		genres, warmed, err := s.genreTable(ctx)
		if err != nil {
			return nil, false, err
		}
		var w tmdb.MovieList
		if err := s.upstream.Get(ctx, endpoint, params, &w); err != nil {
			return nil, false, err
		}
		page, err := mapPage(w, genres)
		if err != nil {
			return nil, false, err
		}
		return page, warmed, nil
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return cloneSummaries(v.(*Page[MovieSummary])), nil
}

// load returns the cached value for endpoint and params, or fetches and
// returns it, caching it when fetch reports it cacheable. The returned value
// is shared and must be cloned before it leaves the package.
func (s *Service) load(ctx context.Context, endpoint string, params url.Values, fetch func(context.Context) (any, bool, error)) (any, error) {
	key := cache.Key(endpoint, params)
	if v, ok := s.cache.Get(key); ok {
		s.log.Debug("cache hit", "key", key)
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.log.Debug("cache miss", "key", key)

	return s.share(ctx, key, func(ctx context.Context) (any, error) {
		v, cacheable, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			s.cache.Set(key, v)
		} else {
			s.log.Debug("response not cached", "key", key)
		}
		return v, nil
	})
}

// share runs fetch once for all concurrent callers of key. The fetch is
// detached from the caller's cancellation so an abandoned call still warms
// the cache; each caller stops waiting when its own ctx is done. Once no
// caller is left waiting, the fetch makes no further retry attempts.
func (s *Service) share(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	s.join(key)
	defer s.leave(key)

	detached := resilience.WithRetryGate(context.WithoutCancel(ctx), func() bool {
		return s.waiting(key)
	})
	ch := s.group.DoChan(key, func() (any, error) {
		return fetch(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.log.Debug("shared upstream call", "key", key)
		}
		return r.Val, r.Err
	}
}

func (s *Service) join(key string) {
	s.mu.Lock()
	s.waiters[key]++
	s.mu.Unlock()
}

func (s *Service) leave(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waiters[key]--; s.waiters[key] <= 0 {
		delete(s.waiters, key)
	}
}

func (s *Service) waiting(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters[key] > 0
}

func checkPage(op string, page int) error {
	if page < 1 || page > MaxPage {
		return invalid(op, "page %d out of range 1-%d", page, MaxPage)
	}
	return nil
}

func pageParams(page int) url.Values {
	return url.Values{"page": {strconv.Itoa(page)}}
}
