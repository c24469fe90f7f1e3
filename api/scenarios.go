/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built plans that replace the planner state with realistic
  data for demos. Each scenario is a JSON plan document (factory/plan.go),
  rendered relative to today so its simulations always land in the default
  dashboard range.

AVAILABLE SCENARIOS:
  default:        Default vouchers and salary, no savings, no simulations
  transfer-demo:  Checking moves 200 into a caixinha; total stays put
  card-cycle:     Card charges pile up before the invoice settles them
  voucher-month:  Custom and default voucher credit days side by side

HOW SCENARIOS WORK:
 1. Render the plan JSON for today
 2. Parse it via factory (ids generated, simulations expanded)
 3. Restore the planner from the parsed snapshot

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "transfer-demo"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add a plan function to 'scenarioPlans'

NOTE:
  Loading a scenario replaces the whole state, simulations included.

SEE ALSO:
  - handlers.go: Router-facing handlers
  - factory/plan.go: Plan JSON schema
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/warp/cashflow-planner/engine"
	"github.com/warp/cashflow-planner/planner"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var ErrUnknownScenario = errors.New("unknown scenario")

var scenarios = []ScenarioDTO{
	{
		ID:          "default",
		Name:        "Default",
		Description: "Meal and food vouchers, salary on the 25th, nothing simulated",
	},
	{
		ID:          "transfer-demo",
		Name:        "Transfer to Savings",
		Description: "Checking 1000 moves 200 into a caixinha; the total does not change",
	},
	{
		ID:          "card-cycle",
		Name:        "Credit Card Cycle",
		Description: "Card charges raise the debt until the invoice is paid from checking",
	},
	{
		ID:          "voucher-month",
		Name:        "Voucher Month",
		Description: "One voucher on the default credit day, one on a fixed day",
	},
}

// scenarioPlans renders each scenario's plan for a given today.
var scenarioPlans = map[string]func(today engine.Date) string{
	"transfer-demo": transferDemoPlan,
	"card-cycle":    cardCyclePlan,
	"voucher-month": voucherMonthPlan,
}

type scenarioState struct {
	mu      sync.Mutex
	current string
}

func (s *scenarioState) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *scenarioState) set(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenarios.get()
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces the planner state with a scenario's plan.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.Seed(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, ErrUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		h.fail(w, r, "Failed to load scenario", err)
		return
	}
	h.GetState(w, r)
}

// Seed restores the planner from a scenario's plan.
func (h *Handler) Seed(ctx context.Context, id string) error {
	snap, err := h.scenarioSnapshot(id)
	if err != nil {
		return err
	}
	if err := h.Planner.Restore(ctx, *snap); err != nil {
		return err
	}

	h.scenarios.set(id)
	h.Logger.Info("scenario loaded", "scenario", id, "simulations", len(snap.Simulations))
	return nil
}

func (h *Handler) scenarioSnapshot(id string) (*planner.Snapshot, error) {
	if id == "default" {
		return &planner.Snapshot{State: planner.DefaultState()}, nil
	}
	plan, ok := scenarioPlans[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}
	return h.Factory.ParsePlan(plan(h.Today()))
}

// =============================================================================
// SCENARIO PLANS
// =============================================================================

func transferDemoPlan(today engine.Date) string {
	return fmt.Sprintf(`{
  "checking": {"balance": "1000"},
  "caixinhas": [{"name": "Emergency", "balance": "0"}],
  "salary": {"amount": "0", "day_of_month": 1},
  "credit_card": {"next_invoice_amount": "0", "closing_day": 1},
  "simulations": [
    {"name": "Move to savings", "amount": "200", "date": %q,
     "type": "DEBIT", "source": "CHECKING", "destination": "SAVINGS_POOL"}
  ]
}`, today.AddDays(1))
}

func cardCyclePlan(today engine.Date) string {
	closing := today.AddDays(10)
	return fmt.Sprintf(`{
  "checking": {"balance": "4200"},
  "salary": {"amount": "5943.48", "day_of_month": 25},
  "credit_card": {"next_invoice_amount": "850", "closing_day": %d},
  "simulations": [
    {"name": "Groceries", "amount": "320.50", "dates": [%q, %q],
     "type": "DEBIT", "source": "CREDIT_CARD"},
    {"name": "Refund", "amount": "45", "date": %q,
     "type": "CREDIT", "source": "CREDIT_CARD"}
  ]
}`, closing.Day(), today.AddDays(2), today.AddDays(5), today.AddDays(6))
}

func voucherMonthPlan(today engine.Date) string {
	return fmt.Sprintf(`{
  "checking": {"balance": "1500"},
  "vouchers": [
    {"label": "Vale Refeição", "balance": "120", "credit_day": "default", "standard_amount": "1173.26"},
    {"label": "Vale Alimentação", "balance": "80", "credit_day": %d, "standard_amount": "924.47"}
  ],
  "salary": {"amount": "5943.48", "day_of_month": 25},
  "credit_card": {"next_invoice_amount": "0", "closing_day": 25},
  "simulations": [
    {"name": "Lunch", "amount": "35", "dates": [%q, %q, %q],
     "type": "DEBIT", "source": "VOUCHER"}
  ]
}`, today.AddDays(3).Day(), today.AddDays(1), today.AddDays(2), today.AddDays(3))
}
