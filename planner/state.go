package planner

import (
	"fmt"

	"github.com/warp/cashflow-planner/engine"
)

// =============================================================================
// STATE - Everything the projection depends on, besides simulations
// =============================================================================

// State is the explicit planner state: pools plus recurring configuration.
// Values returned from the Planner are copies; mutating them has no effect.
type State struct {
	Checking  engine.CheckingAccount
	Caixinhas []engine.Caixinha
	Vouchers  []engine.Voucher
	Salary    engine.SalaryConfig
	Card      engine.CreditCardConfig
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	out := s
	out.Caixinhas = append([]engine.Caixinha{}, s.Caixinhas...)
	out.Vouchers = append([]engine.Voucher{}, s.Vouchers...)
	return out
}

// Opening is the starting point of every projection.
func (s State) Opening() engine.Balances {
	return engine.OpeningBalances(s.Checking, s.Caixinhas, s.Vouchers, s.Card)
}

// Validate checks id uniqueness and non-negative recurring amounts.
func (s State) Validate() error {
	seen := make(map[string]bool, len(s.Caixinhas))
	for _, c := range s.Caixinhas {
		if c.ID == "" || seen[c.ID] {
			return fmt.Errorf("%w: caixinha %q", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = true
	}
	seen = make(map[string]bool, len(s.Vouchers))
	for _, v := range s.Vouchers {
		if v.ID == "" || seen[v.ID] {
			return fmt.Errorf("%w: voucher %q", ErrDuplicateID, v.ID)
		}
		seen[v.ID] = true
		if v.StandardAmount.IsNegative() {
			return &engine.ValidationError{Field: "voucher standard amount", Err: engine.ErrNegativeAmount}
		}
	}
	if s.Salary.Amount.IsNegative() {
		return &engine.ValidationError{Field: "salary amount", Err: engine.ErrNegativeAmount}
	}
	if s.Card.NextInvoiceAmount.IsNegative() {
		return &engine.ValidationError{Field: "next invoice amount", Err: engine.ErrNegativeAmount}
	}
	return nil
}

// =============================================================================
// SNAPSHOT - Full serializable state, the unit of persistence
// =============================================================================

// Snapshot is the full state plus every simulated event. It is what a
// Persister saves and loads, always as a whole.
type Snapshot struct {
	State
	Simulations []engine.TransactionEvent
}

func (s Snapshot) Validate() error {
	if err := s.State.Validate(); err != nil {
		return err
	}
	seen := make(map[engine.EventID]bool, len(s.Simulations))
	for _, ev := range s.Simulations {
		if seen[ev.ID] {
			return fmt.Errorf("%w: simulation %q", ErrDuplicateID, ev.ID)
		}
		seen[ev.ID] = true
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("simulation %q: %w", ev.ID, err)
		}
	}
	return nil
}
