package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	v1 "github.com/vmunix/marquee/internal/api/v1"
	"github.com/vmunix/marquee/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServeCmd,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var limiter *v1.IPRateLimiter
	if a.cfg.Server.RateLimit > 0 {
		limiter = v1.NewIPRateLimiter(a.cfg.Server.RateLimit, a.cfg.Server.RateBurst)
	}

	api, err := v1.New(v1.ServerDeps{
		Catalog: a.catalog,
		Logger:  a.log,
		Limiter: limiter,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	ctx := cmd.Context()

	warmGenres(ctx, a)

	prune := a.cfg.Cache.PruneInterval()
	tasks := []server.Task{
		{Name: "cache-janitor", Run: func(ctx context.Context) error {
			return a.catalog.Cache().Run(ctx, prune)
		}},
		{Name: "genre-janitor", Run: func(ctx context.Context) error {
			return a.catalog.GenreLookup().Run(ctx, prune)
		}},
	}
	if limiter != nil {
		tasks = append(tasks, server.Task{Name: "limiter-janitor", Run: limiter.Run})
	}

	a.log.Info("starting marquee",
		"version", version,
		"addr", a.cfg.Server.Addr(),
		"tmdb", a.cfg.TMDB.BaseURL,
		"cache_ttl", a.cfg.Cache.TTL(),
		"genre_ttl", a.cfg.Cache.GenreTTL(),
	)

	runner := server.NewRunner(server.Config{Addr: a.cfg.Server.Addr()}, api.Handler(), a.log, tasks...)
	return runner.Run(ctx)
}

// genreWarmTimeout bounds the startup genre fetch so a slow provider does
// not hold up the listener. List endpoints warm genres on demand anyway.
var genreWarmTimeout = 5 * time.Second

func warmGenres(ctx context.Context, a *app) {
	ctx, cancel := context.WithTimeout(ctx, genreWarmTimeout)
	defer cancel()
	if err := a.catalog.WarmGenres(ctx); err != nil {
		a.log.Warn("genre warm-up failed", "error", err)
	}
}
