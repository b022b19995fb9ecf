package v1

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vmunix/marquee/internal/catalog"
)

//go:generate mockgen -source=deps.go -destination=mocks/mock_catalog.go -package=mocks

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Catalog defines the movie catalog queries the API serves.
// *catalog.Service satisfies it.
type Catalog interface {
	Popular(ctx context.Context, page int) (*catalog.Page[catalog.MovieSummary], error)
	TopRated(ctx context.Context, page int) (*catalog.Page[catalog.MovieSummary], error)
	Search(ctx context.Context, q catalog.SearchQuery) (*catalog.Page[catalog.MovieSummary], error)
	Movie(ctx context.Context, id int64) (*catalog.MovieDetail, bool, error)
	Genres(ctx context.Context) ([]catalog.Genre, error)
	GenreByName(ctx context.Context, name string) (catalog.Genre, bool, error)
}

// ServerDeps contains all dependencies for the API server.
type ServerDeps struct {
	// Required
	Catalog Catalog

	// Optional
	Logger  *slog.Logger  // nil uses slog.Default()
	Limiter *IPRateLimiter // nil disables per-client rate limiting
	Version string
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Catalog == nil {
		return errors.New("catalog is required")
	}
	return nil
}
