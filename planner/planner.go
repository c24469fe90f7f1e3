/*
planner.go - The state owner and public library surface

PURPOSE:
  Planner holds the pools, the recurring configuration and the simulated
  event store behind one lock, and exposes every mutation and read the
  presentation layer needs. Reads are recomputed from current state on every
  call: recurring events are regenerated, simulations are queried, and the
  projector folds both into snapshots.

CONCURRENCY:
  A single mutex guards everything. Projections depend on a consistent view
  of pools, configuration and simulations together, so every mutating or
  range-computing call takes the lock for its whole duration.

VERSIONING:
  Version() increases on every mutation. The autosave scheduler compares it
  against the last saved version to decide whether a save is needed.

IDEMPOTENCE:
  Update and remove on an unknown id are no-ops. Removing an id twice
  leaves the same state as removing it once.

EXAMPLE:
  p := planner.New(planner.DefaultState(), planner.WithLogger(logger))
  _, err := p.AddSimulatedTransaction(ctx, engine.SimulatedTransactionInput{
      Name:   "Rent",
      Amount: engine.NewMoney(1800),
      Dates:  []engine.Date{engine.NewDate(2025, time.February, 5)},
      Type:   engine.Debit,
      Source: engine.SourceChecking,
  })
  snaps, err := p.Balances(ctx, p.DefaultDashboardRange(engine.Today()))

SEE ALSO:
  - state.go: State and Snapshot
  - persist.go: Persister collaborator
  - recurring/schedule.go: Recurring event generation
  - engine/projection.go: Ledger projection
*/
package planner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/cashflow-planner/engine"
	"github.com/warp/cashflow-planner/engine/store"
	"github.com/warp/cashflow-planner/recurring"
)

// =============================================================================
// PLANNER
// =============================================================================

type Planner struct {
	mu        sync.Mutex
	state     State
	sims      engine.SimulationStore
	persister Persister
	projector engine.Projector
	logger    *slog.Logger
	newID     func() string
	version   uint64
}

type Option func(*Planner)

func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

func WithPersister(ps Persister) Option {
	return func(p *Planner) { p.persister = ps }
}

// WithStore replaces the in-memory simulation store.
func WithStore(s engine.SimulationStore) Option {
	return func(p *Planner) { p.sims = s }
}

// WithIDGenerator overrides uuid generation, for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(p *Planner) { p.newID = fn }
}

// New returns a planner seeded with initial. The state is copied.
func New(initial State, opts ...Option) *Planner {
	p := &Planner{
		state:  initial.Clone(),
		sims:   store.NewMemory(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// mutatedLocked records a state change. Caller holds p.mu.
func (p *Planner) mutatedLocked(msg string, args ...any) {
	p.version++
	p.logger.Debug(msg, append(args, "version", p.version)...)
}

func (p *Planner) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

// =============================================================================
// POOLS
// =============================================================================

func (p *Planner) UpdateCheckingBalance(balance decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Checking = engine.CheckingAccount{Balance: balance}
	p.mutatedLocked("checking updated", "balance", balance.String())
}

func (p *Planner) AddCaixinha(name string, balance decimal.Decimal) engine.Caixinha {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := engine.Caixinha{ID: p.newID(), Name: name, Balance: balance}
	p.state.Caixinhas = append(p.state.Caixinhas, c)
	p.mutatedLocked("caixinha added", "id", c.ID, "name", name)
	return c
}

// UpdateCaixinha replaces name and balance. Unknown ids are ignored.
func (p *Planner) UpdateCaixinha(id, name string, balance decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.state.Caixinhas {
		if p.state.Caixinhas[i].ID == id {
			p.state.Caixinhas[i] = engine.Caixinha{ID: id, Name: name, Balance: balance}
			p.mutatedLocked("caixinha updated", "id", id)
			return
		}
	}
}

func (p *Planner) RemoveCaixinha(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, c := range p.state.Caixinhas {
		if c.ID == id {
			p.state.Caixinhas = append(p.state.Caixinhas[:i:i], p.state.Caixinhas[i+1:]...)
			p.mutatedLocked("caixinha removed", "id", id)
			return
		}
	}
}

// =============================================================================
// VOUCHERS
// =============================================================================

func (p *Planner) AddVoucher(label string, balance decimal.Decimal, day engine.CreditDay, standard decimal.Decimal) (engine.Voucher, error) {
	if standard.IsNegative() {
		return engine.Voucher{}, &engine.ValidationError{Field: "standard amount", Err: engine.ErrNegativeAmount}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	v := engine.Voucher{ID: p.newID(), Label: label, Balance: balance, CreditDay: day, StandardAmount: standard}
	p.state.Vouchers = append(p.state.Vouchers, v)
	p.mutatedLocked("voucher added", "id", v.ID, "label", label)
	return v, nil
}

// UpdateVoucher replaces balance, credit day and standard amount, keeping
// the label. Unknown ids are ignored.
func (p *Planner) UpdateVoucher(id string, balance decimal.Decimal, day engine.CreditDay, standard decimal.Decimal) error {
	if standard.IsNegative() {
		return &engine.ValidationError{Field: "standard amount", Err: engine.ErrNegativeAmount}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.state.Vouchers {
		if p.state.Vouchers[i].ID == id {
			v := &p.state.Vouchers[i]
			v.Balance = balance
			v.CreditDay = day
			v.StandardAmount = standard
			p.mutatedLocked("voucher updated", "id", id)
			return nil
		}
	}
	return nil
}

func (p *Planner) RemoveVoucher(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, v := range p.state.Vouchers {
		if v.ID == id {
			p.state.Vouchers = append(p.state.Vouchers[:i:i], p.state.Vouchers[i+1:]...)
			p.mutatedLocked("voucher removed", "id", id)
			return
		}
	}
}

// =============================================================================
// RECURRING CONFIGURATION
// =============================================================================

func (p *Planner) UpdateSalary(cfg engine.SalaryConfig) error {
	if cfg.Amount.IsNegative() {
		return &engine.ValidationError{Field: "salary amount", Err: engine.ErrNegativeAmount}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Salary = cfg
	p.mutatedLocked("salary updated", "amount", cfg.Amount.String(), "day", cfg.DayOfMonth)
	return nil
}

func (p *Planner) UpdateCreditCard(cfg engine.CreditCardConfig) error {
	if cfg.NextInvoiceAmount.IsNegative() {
		return &engine.ValidationError{Field: "next invoice amount", Err: engine.ErrNegativeAmount}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Card = cfg
	p.mutatedLocked("credit card updated", "invoice", cfg.NextInvoiceAmount.String(), "day", cfg.ClosingDay)
	return nil
}

// =============================================================================
// SIMULATIONS
// =============================================================================

// AddSimulatedTransaction validates in and stores one event per date.
// Returns the created events, ascending by date.
func (p *Planner) AddSimulatedTransaction(ctx context.Context, in engine.SimulatedTransactionInput) ([]engine.TransactionEvent, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	events := in.Expand(func() engine.EventID { return engine.EventID(p.newID()) })
	if err := p.sims.Add(ctx, events...); err != nil {
		return nil, fmt.Errorf("failed to store simulation: %w", err)
	}
	p.mutatedLocked("simulation added", "name", in.Name, "events", len(events))
	return events, nil
}

// RemoveSimulatedTransaction deletes one event. Unknown ids are ignored.
func (p *Planner) RemoveSimulatedTransaction(ctx context.Context, id engine.EventID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.sims.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove simulation %s: %w", id, err)
	}
	p.mutatedLocked("simulation removed", "id", id)
	return nil
}

func (p *Planner) ClearSimulatedTransactions(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.sims.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear simulations: %w", err)
	}
	p.mutatedLocked("simulations cleared")
	return nil
}

// =============================================================================
// READS
// =============================================================================

func (p *Planner) generatorLocked() *recurring.Generator {
	return recurring.Standard(p.state.Salary, p.state.Card, p.state.Vouchers)
}

// UpcomingStandardTransactions lists the recurring events inside r.
func (p *Planner) UpcomingStandardTransactions(r engine.Range) []engine.TransactionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generatorLocked().Events(r)
}

func (p *Planner) FutureSimulations(ctx context.Context, r engine.Range) ([]engine.TransactionEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sims.Query(ctx, r)
}

func (p *Planner) AllSimulatedTransactions(ctx context.Context) ([]engine.TransactionEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sims.All(ctx)
}

// Events is every recurring and simulated event inside r, merged by date.
func (p *Planner) Events(ctx context.Context, r engine.Range) ([]engine.TransactionEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eventsLocked(ctx, r)
}

func (p *Planner) eventsLocked(ctx context.Context, r engine.Range) ([]engine.TransactionEvent, error) {
	sims, err := p.sims.Query(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulations: %w", err)
	}
	return engine.Merge(p.generatorLocked().Events(r), sims), nil
}

// Balances projects one snapshot per day of r from current pool values.
func (p *Planner) Balances(ctx context.Context, r engine.Range) ([]engine.BalanceSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balancesLocked(ctx, r)
}

func (p *Planner) balancesLocked(ctx context.Context, r engine.Range) ([]engine.BalanceSnapshot, error) {
	if r.IsEmpty() {
		return []engine.BalanceSnapshot{}, nil
	}
	events, err := p.eventsLocked(ctx, r)
	if err != nil {
		return nil, err
	}
	return p.projector.Project(r, events, p.state.Opening()), nil
}

func (p *Planner) DashboardInsights(ctx context.Context, r engine.Range, focus engine.Focus) ([]engine.DashboardInsight, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snaps, err := p.balancesLocked(ctx, r)
	if err != nil {
		return nil, err
	}
	return engine.Insights(snaps, focus), nil
}

func (p *Planner) Variations(ctx context.Context, r engine.Range, metric engine.Metric) ([]engine.VariationPoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snaps, err := p.balancesLocked(ctx, r)
	if err != nil {
		return nil, err
	}
	return engine.VariationSeries(snaps, metric), nil
}

// NextSalaryDate is the weekend-adjusted payday on or after from.
func (p *Planner) NextSalaryDate(from engine.Date) engine.Date {
	p.mu.Lock()
	defer p.mu.Unlock()
	return recurring.SalarySchedule{Config: p.state.Salary}.NextDate(from)
}

// DefaultDashboardRange runs from today to the day before the next payday,
// never ending before today.
func (p *Planner) DefaultDashboardRange(today engine.Date) engine.Range {
	end := p.NextSalaryDate(today).AddDays(-1)
	return engine.NewRange(today, engine.MaxDate(today, end))
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// State returns a copy of the pools and configuration.
func (p *Planner) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// Export returns the full state including simulations.
func (p *Planner) Export(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exportLocked(ctx)
}

func (p *Planner) exportLocked(ctx context.Context) (Snapshot, error) {
	sims, err := p.sims.All(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read simulations: %w", err)
	}
	return Snapshot{State: p.state.Clone(), Simulations: sims}, nil
}

// Restore replaces the full state with snap.
func (p *Planner) Restore(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.sims.Replace(ctx, snap.Simulations); err != nil {
		return fmt.Errorf("failed to restore simulations: %w", err)
	}
	p.state = snap.State.Clone()
	p.mutatedLocked("state restored", "caixinhas", len(snap.Caixinhas), "vouchers", len(snap.Vouchers), "simulations", len(snap.Simulations))
	return nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Save hands a consistent snapshot to the persister and returns the version
// that was saved.
func (p *Planner) Save(ctx context.Context) (uint64, error) {
	if p.persister == nil {
		return 0, ErrNoPersister
	}

	p.mu.Lock()
	snap, err := p.exportLocked(ctx)
	version := p.version
	p.mu.Unlock()
	if err != nil {
		return 0, err
	}

	if err := p.persister.SaveState(ctx, snap); err != nil {
		return 0, fmt.Errorf("failed to save state: %w", err)
	}
	p.logger.Info("state saved", "version", version, "simulations", len(snap.Simulations))
	return version, nil
}

// Load restores the last saved state. Returns ErrNoSavedState when the
// persister has nothing yet; the current state is then left untouched.
func (p *Planner) Load(ctx context.Context) error {
	if p.persister == nil {
		return ErrNoPersister
	}
	snap, err := p.persister.LoadState(ctx)
	if err != nil {
		return err
	}
	if err := p.Restore(ctx, *snap); err != nil {
		return err
	}
	p.logger.Info("state loaded", "caixinhas", len(snap.Caixinhas), "vouchers", len(snap.Vouchers))
	return nil
}
