/*
Package sqlite provides a SQLite-backed planner.Persister.

PURPOSE:
  Saves and loads the whole planner state (pools, vouchers, salary, card
  and simulated events) as one unit. There are no partial saves: every
  SaveState replaces all tables inside a single SQL transaction.

KEY TABLES:
  checking, salary, credit_card: Singletons pinned to id = 1
  caixinhas, vouchers:           Ordered by position, as the user created them
  simulated_events:              Stored simulations, ordered by position
  state_saves:                   One audit row per save

ATOMICITY:
  SaveState deletes and rewrites every table in one transaction. A failed
  save leaves the previous state intact.

MIGRATIONS:
  Schema is managed by golang-migrate with embedded, versioned SQL files
  (migrations/). They run on their own connection before the store opens
  its pool, so the database must be a file. ":memory:" is rejected.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, WAL journal for readers during a save.

USAGE:
  store, err := sqlite.New("./data/planner.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  p := planner.New(planner.DefaultState(), planner.WithPersister(store))
  if err := p.Load(ctx); err != nil && !errors.Is(err, planner.ErrNoSavedState) {
      log.Fatal(err)
  }

SEE ALSO:
  - planner/persist.go: Persister interface
  - migrate.go: Migration runner
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/cashflow-planner/engine"
	"github.com/warp/cashflow-planner/planner"
)

var ErrMemoryDatabase = errors.New("sqlite store needs a database file, not :memory:")

// Store implements planner.Persister using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ planner.Persister = (*Store)(nil)

// New opens (creating if needed) the database at dbPath and migrates it.
func New(dbPath string) (*Store, error) {
	if dbPath == "" || dbPath == ":memory:" {
		return nil, ErrMemoryDatabase
	}
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"

	if err := RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SAVE
// =============================================================================

// SaveState replaces the stored state with snap atomically.
func (s *Store) SaveState(ctx context.Context, snap planner.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"checking", "caixinhas", "vouchers", "salary", "credit_card", "simulated_events"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := saveSingletons(ctx, tx, snap.State); err != nil {
		return err
	}
	if err := saveCaixinhas(ctx, tx, snap.Caixinhas); err != nil {
		return err
	}
	if err := saveVouchers(ctx, tx, snap.Vouchers); err != nil {
		return err
	}
	if err := saveSimulations(ctx, tx, snap.Simulations); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO state_saves (saved_at, caixinhas, vouchers, simulations) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), len(snap.Caixinhas), len(snap.Vouchers), len(snap.Simulations),
	)
	if err != nil {
		return fmt.Errorf("failed to record save: %w", err)
	}

	return tx.Commit()
}

func saveSingletons(ctx context.Context, db execer, st planner.State) error {
	if _, err := db.ExecContext(ctx,
		`INSERT INTO checking (id, balance) VALUES (1, ?)`,
		st.Checking.Balance.String(),
	); err != nil {
		return fmt.Errorf("failed to save checking: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO salary (id, amount, day_of_month) VALUES (1, ?, ?)`,
		st.Salary.Amount.String(), st.Salary.DayOfMonth,
	); err != nil {
		return fmt.Errorf("failed to save salary: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO credit_card (id, next_invoice_amount, closing_day) VALUES (1, ?, ?)`,
		st.Card.NextInvoiceAmount.String(), st.Card.ClosingDay,
	); err != nil {
		return fmt.Errorf("failed to save credit card: %w", err)
	}
	return nil
}

func saveCaixinhas(ctx context.Context, db execer, cs []engine.Caixinha) error {
	for i, c := range cs {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO caixinhas (id, name, balance, position) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.Balance.String(), i,
		); err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: caixinha %s", planner.ErrDuplicateID, c.ID)
			}
			return fmt.Errorf("failed to save caixinha %s: %w", c.ID, err)
		}
	}
	return nil
}

func saveVouchers(ctx context.Context, db execer, vs []engine.Voucher) error {
	for i, v := range vs {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO vouchers (id, label, balance, credit_day, standard_amount, position) VALUES (?, ?, ?, ?, ?, ?)`,
			v.ID, v.Label, v.Balance.String(), int(v.CreditDay), v.StandardAmount.String(), i,
		); err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: voucher %s", planner.ErrDuplicateID, v.ID)
			}
			return fmt.Errorf("failed to save voucher %s: %w", v.ID, err)
		}
	}
	return nil
}

func saveSimulations(ctx context.Context, db execer, events []engine.TransactionEvent) error {
	for i, ev := range events {
		var dest sql.NullString
		if ev.Destination != nil {
			dest = sql.NullString{String: string(*ev.Destination), Valid: true}
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO simulated_events (id, name, amount, event_date, tx_type, source, destination, kind, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(ev.ID), ev.Name, ev.Amount.String(), ev.Date.String(),
			string(ev.Type), string(ev.Source), dest, string(ev.Kind), i,
		); err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: simulation %s", planner.ErrDuplicateID, ev.ID)
			}
			return fmt.Errorf("failed to save simulation %s: %w", ev.ID, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// LoadState returns the last saved state, or planner.ErrNoSavedState.
func (s *Store) LoadState(ctx context.Context) (*planner.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var saves int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM state_saves`).Scan(&saves); err != nil {
		return nil, fmt.Errorf("failed to count saves: %w", err)
	}
	if saves == 0 {
		return nil, planner.ErrNoSavedState
	}

	snap := &planner.Snapshot{}
	if err := s.loadSingletons(ctx, &snap.State); err != nil {
		return nil, err
	}

	var err error
	if snap.Caixinhas, err = s.loadCaixinhas(ctx); err != nil {
		return nil, err
	}
	if snap.Vouchers, err = s.loadVouchers(ctx); err != nil {
		return nil, err
	}
	if snap.Simulations, err = s.loadSimulations(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) loadSingletons(ctx context.Context, st *planner.State) error {
	var checking, salary, invoice string
	if err := s.db.QueryRowContext(ctx, `SELECT balance FROM checking WHERE id = 1`).Scan(&checking); err != nil {
		return fmt.Errorf("failed to load checking: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT amount, day_of_month FROM salary WHERE id = 1`,
	).Scan(&salary, &st.Salary.DayOfMonth); err != nil {
		return fmt.Errorf("failed to load salary: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT next_invoice_amount, closing_day FROM credit_card WHERE id = 1`,
	).Scan(&invoice, &st.Card.ClosingDay); err != nil {
		return fmt.Errorf("failed to load credit card: %w", err)
	}

	var err error
	if st.Checking.Balance, err = parseAmount("checking balance", checking); err != nil {
		return err
	}
	if st.Salary.Amount, err = parseAmount("salary amount", salary); err != nil {
		return err
	}
	if st.Card.NextInvoiceAmount, err = parseAmount("next invoice amount", invoice); err != nil {
		return err
	}
	return nil
}

func (s *Store) loadCaixinhas(ctx context.Context) ([]engine.Caixinha, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, balance FROM caixinhas ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query caixinhas: %w", err)
	}
	defer rows.Close()

	var out []engine.Caixinha
	for rows.Next() {
		var c engine.Caixinha
		var balance string
		if err := rows.Scan(&c.ID, &c.Name, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan caixinha: %w", err)
		}
		if c.Balance, err = parseAmount("caixinha "+c.ID+" balance", balance); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) loadVouchers(ctx context.Context) ([]engine.Voucher, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, balance, credit_day, standard_amount FROM vouchers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vouchers: %w", err)
	}
	defer rows.Close()

	var out []engine.Voucher
	for rows.Next() {
		var v engine.Voucher
		var balance, standard string
		var day int
		if err := rows.Scan(&v.ID, &v.Label, &balance, &day, &standard); err != nil {
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		if v.Balance, err = parseAmount("voucher "+v.ID+" balance", balance); err != nil {
			return nil, err
		}
		if v.StandardAmount, err = parseAmount("voucher "+v.ID+" standard amount", standard); err != nil {
			return nil, err
		}
		v.CreditDay = engine.CreditDay(day)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) loadSimulations(ctx context.Context) ([]engine.TransactionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, amount, event_date, tx_type, source, destination, kind
		FROM simulated_events
		ORDER BY event_date ASC, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulations: %w", err)
	}
	defer rows.Close()

	var out []engine.TransactionEvent
	for rows.Next() {
		ev, err := scanSimulation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanSimulation(rows *sql.Rows) (engine.TransactionEvent, error) {
	var (
		ev          engine.TransactionEvent
		id          string
		amount      string
		eventDate   string
		txType      string
		source      string
		destination sql.NullString
		kind        string
	)

	if err := rows.Scan(&id, &ev.Name, &amount, &eventDate, &txType, &source, &destination, &kind); err != nil {
		return ev, fmt.Errorf("failed to scan simulation: %w", err)
	}

	d, err := engine.ParseDate(eventDate)
	if err != nil {
		return ev, fmt.Errorf("simulation %s: %w", id, err)
	}

	ev.ID = engine.EventID(id)
	if ev.Amount, err = parseAmount("simulation "+id+" amount", amount); err != nil {
		return ev, err
	}
	ev.Date = d
	ev.Type = engine.TransactionType(txType)
	ev.Source = engine.AccountSource(source)
	ev.Kind = engine.EventKind(kind)
	if destination.Valid {
		dest := engine.AccountSource(destination.String)
		ev.Destination = &dest
	}
	return ev, nil
}

// =============================================================================
// SAVE HISTORY
// =============================================================================

// SaveRecord is one row of the save audit log.
type SaveRecord struct {
	ID          int64
	SavedAt     time.Time
	Caixinhas   int
	Vouchers    int
	Simulations int
}

// History returns the most recent saves, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]SaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, saved_at, caixinhas, vouchers, simulations
		FROM state_saves
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query saves: %w", err)
	}
	defer rows.Close()

	var out []SaveRecord
	for rows.Next() {
		var r SaveRecord
		var savedAt string
		if err := rows.Scan(&r.ID, &savedAt, &r.Caixinhas, &r.Vouchers, &r.Simulations); err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		if r.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
			return nil, fmt.Errorf("failed to parse saved_at of save %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data, including the save history.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"simulated_events", "vouchers", "caixinhas", "checking", "salary", "credit_card", "state_saves"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// parseAmount parses a stored decimal column.
func parseAmount(column, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s %q: %w", column, value, err)
	}
	return d, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
