/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the cash-flow planner server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, TOML, .env, environment, flags)
  2. Initialize SQLite store (runs migrations)
  3. Build the planner and load the last saved state
  4. Seed a scenario when nothing was saved yet (optional)
  5. Run HTTP server and autosave scheduler until a signal arrives

COMMAND-LINE FLAGS:
  -config  TOML config file (default: planner.toml, optional)
  -port    HTTP server port, overrides config
  -db      SQLite database path, overrides config

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the autosave scheduler, which saves pending changes
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/planner.db"

  # Run on different port, seeding a demo on first start
  PLANNER_SEED=transfer-demo ./server -port=3000

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/warp/cashflow-planner/api"
	"github.com/warp/cashflow-planner/config"
	"github.com/warp/cashflow-planner/planner"
	"github.com/warp/cashflow-planner/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	configPath := flag.String("config", "planner.toml", "TOML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.LogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Initialize planner
	p := planner.New(planner.DefaultState(),
		planner.WithLogger(logger.With("component", "planner")),
		planner.WithPersister(store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := api.NewHandler(p, logger.With("component", "api"))
	if err := loadState(ctx, p, handler, cfg, logger); err != nil {
		return err
	}

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	autosave := api.NewAutosaveScheduler(p, logger.With("component", "autosave"))
	autosave.Enabled = cfg.Autosave.Enabled
	autosave.CheckInterval = cfg.Autosave.Interval.Duration

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", "addr", "http://localhost"+cfg.Addr(), "db", cfg.Storage.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		autosave.Start()
		<-gctx.Done()

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)

		autosave.Stop()
		if err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// loadState restores the last save, or seeds the configured scenario on a
// fresh database.
func loadState(ctx context.Context, p *planner.Planner, h *api.Handler, cfg config.Config, logger *slog.Logger) error {
	err := p.Load(ctx)
	switch {
	case err == nil:
		logger.Info("state loaded", "version", p.Version())
		return nil
	case !errors.Is(err, planner.ErrNoSavedState):
		return fmt.Errorf("failed to load state: %w", err)
	}

	if cfg.Seed.Scenario == "" {
		logger.Info("no saved state, starting from defaults")
		return nil
	}
	if err := h.Seed(ctx, cfg.Seed.Scenario); err != nil {
		return fmt.Errorf("failed to seed scenario %s: %w", cfg.Seed.Scenario, err)
	}
	logger.Info("no saved state, seeded scenario", "scenario", cfg.Seed.Scenario)
	return nil
}
