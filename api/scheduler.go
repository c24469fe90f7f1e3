/*
scheduler.go - Automated state autosave

PURPOSE:
  Periodically persists the planner state when it changed since the last
  save. Mutations only bump the planner's version; this loop is what turns
  them into durable saves.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Compares planner.Version() with the last saved version
  - Skips the save when nothing changed
  - Saves one last time on Stop so a graceful shutdown loses nothing

CONFIGURATION:
  - CheckInterval: How often to check (default: 30 seconds)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewAutosaveScheduler(p, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: SaveState endpoint (manual save)
  - planner/planner.go: Save, Version
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/cashflow-planner/planner"
)

// AutosaveScheduler saves the planner state whenever its version moved.
type AutosaveScheduler struct {
	Planner       *planner.Planner
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker    *time.Ticker
	stop      chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	lastSaved uint64
	running   bool
}

// NewAutosaveScheduler creates a new scheduler. The planner's current
// version counts as already saved.
func NewAutosaveScheduler(p *planner.Planner, logger *slog.Logger) *AutosaveScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutosaveScheduler{
		Planner:       p,
		Logger:        logger,
		CheckInterval: 30 * time.Second,
		Enabled:       true,
		lastSaved:     p.Version(),
	}
}

// Start begins the scheduler.
func (as *AutosaveScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		as.Logger.Info("autosave disabled, not starting")
		return
	}
	if as.running {
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.stop = make(chan struct{})
	as.running = true
	as.wg.Add(1)

	go as.run(as.ticker, as.stop)

	as.Logger.Info("autosave started", "interval", as.CheckInterval)
}

// Stop stops the scheduler and flushes pending changes.
func (as *AutosaveScheduler) Stop() {
	as.mu.Lock()
	if !as.running {
		as.mu.Unlock()
		return
	}
	as.ticker.Stop()
	close(as.stop)
	as.running = false
	as.mu.Unlock()

	as.wg.Wait()
	as.RunNow(context.Background())
	as.Logger.Info("autosave stopped")
}

func (as *AutosaveScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer as.wg.Done()

	for {
		select {
		case <-ticker.C:
			as.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow saves immediately if the state changed. Reports whether it saved.
func (as *AutosaveScheduler) RunNow(ctx context.Context) bool {
	current := as.Planner.Version()

	as.mu.Lock()
	defer as.mu.Unlock()

	if current == as.lastSaved {
		return false
	}

	saved, err := as.Planner.Save(ctx)
	if err != nil {
		as.Logger.Error("autosave failed", "version", current, "err", err)
		return false
	}
	as.lastSaved = saved
	as.Logger.Debug("autosaved", "version", saved)
	return true
}

// LastSavedVersion returns the version of the last successful save.
func (as *AutosaveScheduler) LastSavedVersion() uint64 {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.lastSaved
}
