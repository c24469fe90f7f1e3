/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Default range and range parsing
- Simulations through the REST surface (transfer, validation errors)
- Insights, variations, upcoming recurring events
- Scenarios and manual save
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/cashflow-planner/api"
	"github.com/warp/cashflow-planner/engine"
	"github.com/warp/cashflow-planner/planner"
	"github.com/warp/cashflow-planner/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// today is a Wednesday; the salary on the 25th (a Thursday) makes the
// default range 2024-01-10 .. 2024-01-24.
var today = engine.NewDate(2024, time.January, 10)

func testState() planner.State {
	return planner.State{
		Checking: engine.CheckingAccount{Balance: engine.NewMoney(1000)},
		Salary:   engine.SalaryConfig{Amount: engine.NewMoney(5000), DayOfMonth: 25},
		Card:     engine.CreditCardConfig{NextInvoiceAmount: decimal.Zero, ClosingDay: 10},
	}
}

func newTestRouter(t *testing.T, opts ...planner.Option) (*chi.Mux, *planner.Planner) {
	t.Helper()
	p := planner.New(testState(), opts...)
	h := api.NewHandler(p, nil)
	h.Today = func() engine.Date { return today }
	return api.NewRouter(h, nil), p
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, engine.MustParseDecimal(want).Equal(got), "want %s, got %s", want, got)
}

// =============================================================================
// RANGES
// =============================================================================

func TestDefaultRange(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/range/default", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rng := decodeBody[api.RangeDTO](t, rec)
	assert.Equal(t, today, rng.From)
	assert.Equal(t, engine.NewDate(2024, time.January, 24), rng.To)
}

func TestBalances_DefaultsToDashboardRange(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	snaps := decodeBody[[]api.BalanceDTO](t, rec)
	require.Len(t, snaps, 15)
	assert.Equal(t, today, snaps[0].Date)
	assert.Equal(t, engine.NewDate(2024, time.January, 24), snaps[14].Date)
}

func TestBalances_InvalidDate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/balances?from=10/01/2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	errResp := decodeBody[api.ErrorResponse](t, rec)
	assert.Contains(t, errResp.Error, "from")
	assert.NotEmpty(t, errResp.Details)
}

func TestBalances_InvertedRangeIsEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/balances?from=2024-01-20&to=2024-01-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]api.BalanceDTO](t, rec))
}

// =============================================================================
// SIMULATIONS
// =============================================================================

func TestSimulation_TransferIntoCaixinha(t *testing.T) {
	// GIVEN: Checking 1000 and an empty caixinha
	// WHEN: Posting a 200 transfer from checking into savings on the 15th
	// THEN: From the 15th on checking is 800, savings 200, total 1000

	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/caixinhas", map[string]any{"name": "Emergency", "balance": "0"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/simulations", map[string]any{
		"name":        "Save",
		"amount":      "200",
		"dates":       []string{"2024-01-15"},
		"type":        "debit",
		"source":      "checking",
		"destination": "savings_pool",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	events := decodeBody[[]api.EventDTO](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, "SAVINGS_POOL", events[0].Destination)

	rec = do(t, router, http.MethodGet, "/api/balances?from=2024-01-14&to=2024-01-16", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snaps := decodeBody[[]api.BalanceDTO](t, rec)
	require.Len(t, snaps, 3)

	assertMoney(t, "1000", snaps[0].Checking)
	assertMoney(t, "800", snaps[1].Checking)
	assertMoney(t, "200", snaps[1].SavingsTotal)
	assertMoney(t, "1000", snaps[1].Total)
	assertMoney(t, "1000", snaps[2].NetWorth)
}

func TestSimulation_SelectionsExpandToDays(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/simulations", map[string]any{
		"name":   "Lunch",
		"amount": 30,
		"type":   "DEBIT",
		"source": "CHECKING",
		"selections": []map[string]any{
			{"start": "2024-01-12", "end": "2024-01-14"},
			{"start": "2024-01-13"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody[[]api.EventDTO](t, rec), 3, "overlapping selections are deduplicated")

	rec = do(t, router, http.MethodGet, "/api/simulations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]api.EventDTO](t, rec), 3)

	rec = do(t, router, http.MethodGet, "/api/simulations?from=2024-01-13&to=2024-01-13", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]api.EventDTO](t, rec), 1)
}

func TestSimulation_ValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"credit with destination", map[string]any{
			"name": "x", "amount": "10", "dates": []string{"2024-01-12"},
			"type": "CREDIT", "source": "CHECKING", "destination": "VOUCHER"}},
		{"same source and destination", map[string]any{
			"name": "x", "amount": "10", "dates": []string{"2024-01-12"},
			"type": "DEBIT", "source": "CHECKING", "destination": "CHECKING"}},
		{"negative amount", map[string]any{
			"name": "x", "amount": "-10", "dates": []string{"2024-01-12"},
			"type": "DEBIT", "source": "CHECKING"}},
		{"no dates", map[string]any{
			"name": "x", "amount": "10", "type": "DEBIT", "source": "CHECKING"}},
		{"unknown source", map[string]any{
			"name": "x", "amount": "10", "dates": []string{"2024-01-12"},
			"type": "DEBIT", "source": "BANK"}},
		{"selection without start", map[string]any{
			"name": "x", "amount": "10", "selections": []map[string]string{{"end": "2024-01-05"}},
			"type": "DEBIT", "source": "CHECKING"}},
		{"selection too long", map[string]any{
			"name": "x", "amount": "10", "selections": []map[string]string{{"start": "2024-01-01", "end": "2099-12-31"}},
			"type": "DEBIT", "source": "CHECKING"}},
		{"zero date", map[string]any{
			"name": "x", "amount": "10", "dates": []string{"0001-01-01"},
			"type": "DEBIT", "source": "CHECKING"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/simulations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, router, http.MethodGet, "/api/simulations", nil)
	assert.Empty(t, decodeBody[[]api.EventDTO](t, rec), "rejected inputs store nothing")
}

func TestSimulation_RemoveAndClear(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/simulations", map[string]any{
		"name": "Gym", "amount": "90", "dates": []string{"2024-01-12", "2024-01-19"},
		"type": "DEBIT", "source": "CHECKING",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	events := decodeBody[[]api.EventDTO](t, rec)
	require.Len(t, events, 2)

	rec = do(t, router, http.MethodDelete, "/api/simulations/"+string(events[0].ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodDelete, "/api/simulations/unknown", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "unknown ids are a no-op")

	rec = do(t, router, http.MethodGet, "/api/simulations", nil)
	assert.Len(t, decodeBody[[]api.EventDTO](t, rec), 1)

	rec = do(t, router, http.MethodDelete, "/api/simulations", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodGet, "/api/simulations", nil)
	assert.Empty(t, decodeBody[[]api.EventDTO](t, rec))
}

// =============================================================================
// STATE AND CONFIGURATION
// =============================================================================

func TestVoucherLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/vouchers", map[string]any{
		"label": "Vale Refeição", "balance": "100", "credit_day": "default", "standard_amount": "1173.26",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	v := decodeBody[api.VoucherDTO](t, rec)
	assert.True(t, v.CreditDay.IsDefault())

	rec = do(t, router, http.MethodPut, "/api/vouchers/"+v.ID, map[string]any{
		"balance": "150", "credit_day": 7, "standard_amount": "1000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[api.StateDTO](t, rec)
	require.Len(t, st.Vouchers, 1)
	assert.Equal(t, "Vale Refeição", st.Vouchers[0].Label, "label is kept")
	assert.Equal(t, engine.CreditDay(7), st.Vouchers[0].CreditDay)
	assertMoney(t, "150", st.VoucherTotal)

	rec = do(t, router, http.MethodPut, "/api/vouchers/"+v.ID, map[string]any{
		"balance": "150", "credit_day": 7, "standard_amount": "-1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/vouchers/"+v.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	st = decodeBody[api.StateDTO](t, do(t, router, http.MethodGet, "/api/state", nil))
	assert.Empty(t, st.Vouchers)
}

func TestUpdateSalaryAndNextPayday(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/salary", map[string]any{"amount": "5943.48", "day_of_month": 25})
	require.Equal(t, http.StatusOK, rec.Code)

	// 2024-02-25 is a Sunday, so the payday moves back to Friday the 23rd
	rec = do(t, router, http.MethodGet, "/api/salary/next?from=2024-01-26", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	next := decodeBody[api.NextSalaryDTO](t, rec)
	assert.Equal(t, engine.NewDate(2024, time.February, 23), next.Date)

	rec = do(t, router, http.MethodPut, "/api/salary", map[string]any{"amount": "-1", "day_of_month": 25})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCheckingAndCard(t *testing.T) {
	router, p := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/checking", map[string]any{"balance": 2500.5})
	require.Equal(t, http.StatusOK, rec.Code)
	assertMoney(t, "2500.5", decodeBody[api.StateDTO](t, rec).Checking)

	rec = do(t, router, http.MethodPut, "/api/credit-card", map[string]any{"next_invoice_amount": "700", "closing_day": 15})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15, p.State().Card.ClosingDay)

	rec = do(t, router, http.MethodPut, "/api/checking", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// RECURRING EVENTS AND INSIGHTS
// =============================================================================

func TestUpcomingTransactions(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/transactions/upcoming?from=2024-01-01&to=2024-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	events := decodeBody[[]api.EventDTO](t, rec)
	require.Len(t, events, 1, "no card payment without an invoice")
	assert.Equal(t, "salary", events[0].Kind)
	assert.Equal(t, engine.NewDate(2024, time.January, 25), events[0].Date)
	assert.Equal(t, engine.EventID("salary-2024-01-25"), events[0].ID)
}

func TestListTransactions_MergesRecurringAndSimulated(t *testing.T) {
	// GIVEN: A simulation on the 12th and salary on the 25th
	// WHEN: Listing all transactions for January
	// THEN: Both appear, ordered by date

	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/simulations", map[string]any{
		"name": "Gym", "amount": "90", "dates": []string{"2024-01-12"},
		"type": "DEBIT", "source": "CHECKING",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/transactions?from=2024-01-01&to=2024-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	events := decodeBody[[]api.EventDTO](t, rec)
	require.Len(t, events, 2)
	assert.Equal(t, "simulated", events[0].Kind)
	assert.Equal(t, engine.NewDate(2024, time.January, 12), events[0].Date)
	assert.Equal(t, "salary", events[1].Kind)
}

func TestInsights(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/insights?from=2024-01-20&to=2024-01-31&focus=accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	insights := decodeBody[[]api.InsightDTO](t, rec)
	require.Len(t, insights, 3)
	assert.Equal(t, "Total", insights[0].Label)
	assertMoney(t, "1000", insights[0].StartValue)
	assertMoney(t, "6000", insights[0].EndValue)
	assertMoney(t, "500", insights[0].Variation)

	rec = do(t, router, http.MethodGet, "/api/insights?focus=everything", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVariations(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/variations?from=2024-01-24&to=2024-01-25&metric=checking", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	points := decodeBody[[]api.VariationDTO](t, rec)
	require.Len(t, points, 2)
	assertMoney(t, "0", points[0].VsPrevious)
	assertMoney(t, "500", points[1].VsInitial)

	rec = do(t, router, http.MethodGet, "/api/variations?metric=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SCENARIOS AND PERSISTENCE
// =============================================================================

func TestLoadScenario_TransferDemo(t *testing.T) {
	// GIVEN: The transfer demo scenario
	// WHEN: Loading it and projecting today and tomorrow
	// THEN: Tomorrow checking is 800 and the caixinha holds 200

	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "transfer-demo"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	current := decodeBody[api.ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "transfer-demo", current.ID)

	rec = do(t, router, http.MethodGet, "/api/balances?from=2024-01-10&to=2024-01-11", nil)
	snaps := decodeBody[[]api.BalanceDTO](t, rec)
	require.Len(t, snaps, 2)
	assertMoney(t, "1000", snaps[0].Checking)
	assertMoney(t, "800", snaps[1].Checking)
	assertMoney(t, "200", snaps[1].SavingsTotal)
}

func TestLoadScenario_AllScenariosLoad(t *testing.T) {
	router, _ := newTestRouter(t)

	list := decodeBody[[]api.ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios", nil))
	require.NotEmpty(t, list)
	for _, s := range list {
		rec := do(t, router, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: s.ID})
		assert.Equal(t, http.StatusOK, rec.Code, "%s: %s", s.ID, rec.Body.String())
	}

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveState(t *testing.T) {
	ctx := context.Background()

	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/state/save", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "no persister configured")

	store, err := sqlite.New(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	defer store.Close()

	router, p := newTestRouter(t, planner.WithPersister(store))
	p.UpdateCheckingBalance(engine.NewMoney(4321))

	rec = do(t, router, http.MethodPost, "/api/state/save", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, p.Version(), decodeBody[api.SaveResponse](t, rec).Version)

	snap, err := store.LoadState(ctx)
	require.NoError(t, err)
	assertMoney(t, "4321", snap.Checking.Balance)
}
