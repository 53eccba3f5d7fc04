// Package app provides the top-level application lifecycle for the
// portfolio tracker. It wires stores, caches, providers, and services
// together and runs the HTTP server alongside the background snapshot
// and archival loops.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"folioscope/internal/config"
	"folioscope/internal/server"
	"folioscope/internal/server/handler"
)

// shutdownGrace is how long in-flight requests get to finish once the
// run context is cancelled.
const shutdownGrace = 10 * time.Second

// App is the root application object. It owns the configuration,
// logger, and a list of cleanup functions called in reverse order on
// shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the
// HTTP server and background loops, and blocks until the context is
// cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Portfolio: handler.NewPortfolioHandler(deps.Portfolio, a.logger),
		Accounts:  handler.NewAccountHandler(deps.Accounts, a.logger),
		Manual:    handler.NewManualPositionHandler(deps.Manual, a.logger),
		Prices:    handler.NewPriceHandler(deps.Crypto, deps.Stocks, a.logger),
		Snapshots: handler.NewSnapshotHandler(deps.Snapshots, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, deps.Hub, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := deps.Hub.Run(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if interval := a.cfg.Portfolio.RefreshInterval.Duration; interval > 0 {
		g.Go(func() error {
			return a.refreshLoop(ctx, deps, interval)
		})
	}

	if interval := a.cfg.Snapshots.Interval.Duration; interval > 0 {
		g.Go(func() error {
			return a.snapshotLoop(ctx, deps, interval)
		})
	}

	if interval := a.cfg.Snapshots.ArchiveInterval.Duration; interval > 0 && a.cfg.S3.Enabled {
		g.Go(func() error {
			return a.archiveLoop(ctx, deps, interval)
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// refreshLoop re-runs the aggregation on a fixed interval so the view
// cache is warm when the next request lands and connected WebSocket
// clients get pushed the fresh totals. It goes through Refresh, not a
// forced GetPortfolio: provider and price caches keep their TTLs, and
// the full cache drop stays a user-triggered operation.
func (a *App) refreshLoop(ctx context.Context, deps *Dependencies, interval time.Duration) error {
	a.logger.InfoContext(ctx, "background refresh enabled",
		slog.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := deps.Portfolio.Refresh(ctx); err != nil {
				a.logger.ErrorContext(ctx, "background refresh failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// snapshotLoop records a portfolio snapshot on a fixed interval.
// Failures are logged and retried on the next tick.
func (a *App) snapshotLoop(ctx context.Context, deps *Dependencies, interval time.Duration) error {
	a.logger.InfoContext(ctx, "automatic snapshots enabled",
		slog.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := deps.Snapshots.Take(ctx); err != nil {
				a.logger.ErrorContext(ctx, "scheduled snapshot failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// archiveLoop moves snapshots past the retention window to object
// storage on a fixed interval.
func (a *App) archiveLoop(ctx context.Context, deps *Dependencies, interval time.Duration) error {
	retention := time.Duration(a.cfg.Snapshots.RetentionDays) * 24 * time.Hour
	a.logger.InfoContext(ctx, "snapshot archival enabled",
		slog.Duration("interval", interval),
		slog.Int("retention_days", a.cfg.Snapshots.RetentionDays),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			moved, err := deps.Snapshots.Archive(ctx, retention)
			if err != nil {
				a.logger.ErrorContext(ctx, "snapshot archival failed",
					slog.String("error", err.Error()),
				)
				continue
			}
			if moved > 0 {
				a.logger.InfoContext(ctx, "snapshot archival complete",
					slog.Int("moved", moved),
				)
			}
		}
	}
}

// Close tears down all resources in reverse registration order. It is
// safe to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
