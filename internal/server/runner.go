// Package server runs the HTTP API and its background upkeep as one unit.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout bounds graceful HTTP shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// Config for the server runner.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Task is a background job that runs until its context is done. Returning
// nil on cancellation is a clean exit.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner manages the HTTP server and background tasks.
type Runner struct {
	config  Config
	handler http.Handler
	tasks   []Task
	logger  *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(cfg Config, handler http.Handler, logger *slog.Logger, tasks ...Task) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Runner{
		config:  cfg,
		handler: handler,
		tasks:   tasks,
		logger:  logger.With("component", "server"),
	}
}

// Run listens on the configured address and serves until ctx is canceled
// or a component fails.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.config.Addr, err)
	}
	return r.Serve(ctx, ln)
}

// Serve is Run on an existing listener. The listener is closed on return.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		r.logger.Info("shutting down")

		// Graceful HTTP shutdown
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	for _, task := range r.tasks {
		g.Go(func() error {
			r.logger.Debug("task started", "task", task.Name)
			if err := task.Run(gctx); err != nil {
				return fmt.Errorf("%s: %w", task.Name, err)
			}
			r.logger.Debug("task stopped", "task", task.Name)
			return nil
		})
	}

	return g.Wait()
}
