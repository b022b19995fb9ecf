package catalog

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hbollon/go-edlib"

	"github.com/vmunix/marquee/internal/cache"
)

// DefaultGenreTTL is how long the genre catalog stays warm.
const DefaultGenreTTL = 24 * time.Hour

const (
	genresKey = endpointGenres

	// minGenreSimilarity is the Jaro-Winkler score a fuzzy name match needs.
	minGenreSimilarity = 0.85
)

type genreSnapshot struct {
	list  []Genre
	table GenreTable
}

// GenreLookup holds the full genre catalog under its own long TTL. It never
// fetches anything itself; Service warms it. Once warmed, ids keep resolving
// against the most recent catalog even after it expires.
type GenreLookup struct {
	cache *cache.Cache[genreSnapshot]
	last  atomic.Pointer[genreSnapshot]
}

// NewGenreLookup creates an empty lookup. A nil clock means time.Now.
func NewGenreLookup(ttl time.Duration, clock cache.Clock) *GenreLookup {
	if ttl <= 0 {
		ttl = DefaultGenreTTL
	}
	return &GenreLookup{cache: cache.New[genreSnapshot](ttl, clock)}
}

// Store replaces the cached catalog.
func (g *GenreLookup) Store(list []Genre) {
	snap := genreSnapshot{
		list:  slices.Clone(list),
		table: make(GenreTable, len(list)),
	}
	for _, genre := range list {
		snap.table[genre.ID] = genre.Name
	}
	g.cache.Set(genresKey, snap)
	g.last.Store(&snap)
}

// List returns the cached catalog, or false when cold or expired. A false
// result means the catalog is due for a refresh.
func (g *GenreLookup) List() ([]Genre, bool) {
	snap, ok := g.cache.Get(genresKey)
	if !ok {
		return nil, false
	}
	return snap.list, true
}

// Table returns the id to name table of the most recent catalog, expired
// or not. It is empty and false until the first Store.
func (g *GenreLookup) Table() (GenreTable, bool) {
	if snap, ok := g.cache.Get(genresKey); ok {
		return snap.table, true
	}
	if snap := g.last.Load(); snap != nil {
		return snap.table, true
	}
	return GenreTable{}, false
}

// Resolve returns the name for id, or UnknownGenre.
func (g *GenreLookup) Resolve(id int) string {
	table, _ := g.Table()
	return table.Resolve(id)
}

// Match finds the genre whose name best matches name: an exact
// case-insensitive match first, then the closest Jaro-Winkler match.
func (g *GenreLookup) Match(name string) (Genre, bool) {
	list, ok := g.List()
	if !ok {
		return Genre{}, false
	}
	return matchGenre(list, name)
}

func matchGenre(list []Genre, name string) (Genre, bool) {
	needle := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if needle == "" {
		return Genre{}, false
	}

	for _, genre := range list {
		if strings.EqualFold(genre.Name, needle) {
			return genre, true
		}
	}

	var best Genre
	var bestScore float32
	for _, genre := range list {
		score := edlib.JaroWinklerSimilarity(needle, strings.ToLower(genre.Name))
		if score > bestScore {
			best, bestScore = genre, score
		}
	}
	if bestScore < minGenreSimilarity {
		return Genre{}, false
	}
	return best, true
}

// Run prunes the expired catalog every interval until ctx is done.
func (g *GenreLookup) Run(ctx context.Context, interval time.Duration) error {
	return g.cache.Run(ctx, interval)
}
