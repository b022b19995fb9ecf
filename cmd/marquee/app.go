package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vmunix/marquee/internal/cache"
	"github.com/vmunix/marquee/internal/catalog"
	"github.com/vmunix/marquee/internal/config"
	"github.com/vmunix/marquee/internal/tmdb"
)

// app is the wired catalog stack shared by every command.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	catalog *catalog.Service
	closer  io.Closer
}

// loadApp loads configuration and builds the catalog service. Logs go to
// stderr so command output stays clean.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, _, err := config.LoadAuto(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, closer := newLogger(cfg.Log, cmd.ErrOrStderr())
	return &app{
		cfg:     cfg,
		log:     logger,
		catalog: newCatalog(cfg, logger),
		closer:  closer,
	}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

func newCatalog(cfg *config.Config, logger *slog.Logger) *catalog.Service {
	client := tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithRateLimit(cfg.TMDB.RequestsPerSecond),
		tmdb.WithLogger(logger),
	)
	return catalog.NewService(client,
		catalog.WithCache(cache.New[any](cfg.Cache.TTL(), nil)),
		catalog.WithGenreLookup(catalog.NewGenreLookup(cfg.Cache.GenreTTL(), nil)),
		catalog.WithLogger(logger),
	)
}
