/*
Package factory provides JSON to Go plan conversion.

PURPOSE:
  Converts JSON plan documents into planner.Snapshot values and back. A plan
  is the whole planner state: pools, recurring configuration and simulated
  events. The CLI reads plans from disk, the API's scenarios are defined as
  plans, and a plan can be exported from a running planner.

JSON SCHEMA:
  {
    "checking": {"balance": "2500.00"},
    "caixinhas": [
      {"id": "c1", "name": "Emergency", "balance": "8000"}
    ],
    "vouchers": [
      {"label": "Vale Refeição", "balance": "465.08",
       "credit_day": "default", "standard_amount": "1173.26"}
    ],
    "salary": {"amount": "5943.48", "day_of_month": 25},
    "credit_card": {"next_invoice_amount": "1200", "closing_day": 10},
    "simulations": [
      {"name": "Rent", "amount": "1800", "dates": ["2025-02-05", "2025-03-05"],
       "type": "DEBIT", "source": "CHECKING"},
      {"name": "Save", "amount": "300", "date": "2025-02-06",
       "type": "DEBIT", "source": "CHECKING", "destination": "SAVINGS_POOL"}
    ]
  }

KEY FEATURES:
  - Amounts accept JSON strings or numbers (decimal, no float rounding)
  - credit_day accepts "default" or an integer day
  - Missing ids are generated (uuid)
  - A simulation with several dates expands into one event per date
  - Every simulation is validated like a planner input

USAGE:
  f := factory.NewPlanFactory()
  snap, err := f.ParsePlan(jsonStr)
  p := planner.New(snap.State)
  err = p.Restore(ctx, *snap)

SEE ALSO:
  - planner/state.go: Snapshot type
  - api/scenarios.go: Scenarios defined as plans
  - cmd/planner: Reads plan files
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/cashflow-planner/engine"
	"github.com/warp/cashflow-planner/planner"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of a full plan.
type PlanJSON struct {
	Checking    CheckingJSON     `json:"checking"`
	Caixinhas   []CaixinhaJSON   `json:"caixinhas"`
	Vouchers    []VoucherJSON    `json:"vouchers"`
	Salary      SalaryJSON       `json:"salary"`
	CreditCard  CreditCardJSON   `json:"credit_card"`
	Simulations []SimulationJSON `json:"simulations"`
}

type CheckingJSON struct {
	Balance decimal.Decimal `json:"balance"`
}

type CaixinhaJSON struct {
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type VoucherJSON struct {
	ID             string           `json:"id,omitempty"`
	Label          string           `json:"label"`
	Balance        decimal.Decimal  `json:"balance"`
	CreditDay      engine.CreditDay `json:"credit_day"`
	StandardAmount decimal.Decimal  `json:"standard_amount"`
}

type SalaryJSON struct {
	Amount     decimal.Decimal `json:"amount"`
	DayOfMonth int             `json:"day_of_month"`
}

type CreditCardJSON struct {
	NextInvoiceAmount decimal.Decimal `json:"next_invoice_amount"`
	ClosingDay        int             `json:"closing_day"`
}

// SimulationJSON is either one stored event (id + date) or an input to
// expand (dates). Exported plans always use the first form.
type SimulationJSON struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Date        *engine.Date    `json:"date,omitempty"`
	Dates       []engine.Date   `json:"dates,omitempty"`
	Type        string          `json:"type"`
	Source      string          `json:"source"`
	Destination string          `json:"destination,omitempty"`
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

// PlanFactory converts JSON plans to planner snapshots.
type PlanFactory struct {
	newID func() string
}

// NewPlanFactory creates a plan factory generating uuid ids.
func NewPlanFactory() *PlanFactory {
	return &PlanFactory{newID: uuid.NewString}
}

// ParsePlan parses a JSON plan string.
func (f *PlanFactory) ParsePlan(jsonStr string) (*planner.Snapshot, error) {
	var pj PlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// ReadPlanFile loads and parses a plan from disk.
func (f *PlanFactory) ReadPlanFile(path string) (*planner.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan %s: %w", path, err)
	}
	return f.ParsePlan(string(data))
}

// FromJSON converts a PlanJSON to a validated snapshot.
func (f *PlanFactory) FromJSON(pj PlanJSON) (*planner.Snapshot, error) {
	snap := &planner.Snapshot{
		State: planner.State{
			Checking: engine.CheckingAccount{Balance: pj.Checking.Balance},
			Salary:   engine.SalaryConfig{Amount: pj.Salary.Amount, DayOfMonth: pj.Salary.DayOfMonth},
			Card: engine.CreditCardConfig{
				NextInvoiceAmount: pj.CreditCard.NextInvoiceAmount,
				ClosingDay:        pj.CreditCard.ClosingDay,
			},
		},
	}

	for _, cj := range pj.Caixinhas {
		snap.Caixinhas = append(snap.Caixinhas, engine.Caixinha{
			ID:      f.idOr(cj.ID),
			Name:    cj.Name,
			Balance: cj.Balance,
		})
	}

	for _, vj := range pj.Vouchers {
		snap.Vouchers = append(snap.Vouchers, engine.Voucher{
			ID:             f.idOr(vj.ID),
			Label:          vj.Label,
			Balance:        vj.Balance,
			CreditDay:      vj.CreditDay,
			StandardAmount: vj.StandardAmount,
		})
	}

	for i, sj := range pj.Simulations {
		events, err := f.parseSimulation(sj)
		if err != nil {
			return nil, fmt.Errorf("simulation %d (%s): %w", i, sj.Name, err)
		}
		snap.Simulations = append(snap.Simulations, events...)
	}
	engine.SortEvents(snap.Simulations)

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return snap, nil
}

func (f *PlanFactory) idOr(id string) string {
	if id != "" {
		return id
	}
	return f.newID()
}

func (f *PlanFactory) parseSimulation(sj SimulationJSON) ([]engine.TransactionEvent, error) {
	tt, err := engine.ParseTransactionType(sj.Type)
	if err != nil {
		return nil, err
	}
	src, err := engine.ParseAccountSource(sj.Source)
	if err != nil {
		return nil, err
	}

	in := engine.SimulatedTransactionInput{
		Name:   sj.Name,
		Amount: sj.Amount,
		Dates:  sj.Dates,
		Type:   tt,
		Source: src,
	}
	if sj.Date != nil {
		in.Dates = append([]engine.Date{*sj.Date}, in.Dates...)
	}
	if sj.Destination != "" {
		dest, err := engine.ParseAccountSource(sj.Destination)
		if err != nil {
			return nil, err
		}
		in.Destination = &dest
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// A given id only makes sense for a single stored event
	if sj.ID != "" && len(engine.UniqueSortedDates(in.Dates)) == 1 {
		return in.Expand(func() engine.EventID { return engine.EventID(sj.ID) }), nil
	}
	return in.Expand(func() engine.EventID { return engine.EventID(f.newID()) }), nil
}

// ToJSON converts a snapshot to its JSON form.
func (f *PlanFactory) ToJSON(snap planner.Snapshot) PlanJSON {
	pj := PlanJSON{
		Checking:    CheckingJSON{Balance: snap.Checking.Balance},
		Caixinhas:   []CaixinhaJSON{},
		Vouchers:    []VoucherJSON{},
		Salary:      SalaryJSON{Amount: snap.Salary.Amount, DayOfMonth: snap.Salary.DayOfMonth},
		CreditCard:  CreditCardJSON{NextInvoiceAmount: snap.Card.NextInvoiceAmount, ClosingDay: snap.Card.ClosingDay},
		Simulations: []SimulationJSON{},
	}

	for _, c := range snap.Caixinhas {
		pj.Caixinhas = append(pj.Caixinhas, CaixinhaJSON{ID: c.ID, Name: c.Name, Balance: c.Balance})
	}
	for _, v := range snap.Vouchers {
		pj.Vouchers = append(pj.Vouchers, VoucherJSON{
			ID:             v.ID,
			Label:          v.Label,
			Balance:        v.Balance,
			CreditDay:      v.CreditDay,
			StandardAmount: v.StandardAmount,
		})
	}
	for _, ev := range snap.Simulations {
		d := ev.Date
		sj := SimulationJSON{
			ID:     string(ev.ID),
			Name:   ev.Name,
			Amount: ev.Amount,
			Date:   &d,
			Type:   string(ev.Type),
			Source: string(ev.Source),
		}
		if ev.Destination != nil {
			sj.Destination = string(*ev.Destination)
		}
		pj.Simulations = append(pj.Simulations, sj)
	}
	return pj
}

// MarshalPlan renders snap as indented JSON.
func (f *PlanFactory) MarshalPlan(snap planner.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(f.ToJSON(snap), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}
	return data, nil
}

// WritePlanFile writes snap to path.
func (f *PlanFactory) WritePlanFile(path string, snap planner.Snapshot) error {
	data, err := f.MarshalPlan(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write plan %s: %w", path, err)
	}
	return nil
}
