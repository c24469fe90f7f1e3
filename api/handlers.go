/*
handlers.go - HTTP API handlers for the cash-flow planner

PURPOSE:
  Exposes the planner facade via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to planner.Planner.

ENDPOINTS:
  State:
    GET    /api/state                     Pools, configuration and totals
    POST   /api/state/save                Persist the full state now
    PUT    /api/checking                  Set checking balance

  Savings pools:
    POST   /api/caixinhas                 Add caixinha
    PUT    /api/caixinhas/{id}            Update caixinha
    DELETE /api/caixinhas/{id}            Remove caixinha

  Vouchers:
    POST   /api/vouchers                  Add voucher
    PUT    /api/vouchers/{id}             Update voucher
    DELETE /api/vouchers/{id}             Remove voucher

  Recurring configuration:
    PUT    /api/salary                    Set salary amount and day
    GET    /api/salary/next?from=         Next weekend-adjusted payday
    PUT    /api/credit-card               Set next invoice and closing day

  Events:
    GET    /api/transactions?from=&to=    Recurring and simulated events, merged
    GET    /api/transactions/upcoming     Recurring events in range
    GET    /api/simulations               Stored simulations (optionally in range)
    POST   /api/simulations               Add simulation (one event per date)
    DELETE /api/simulations/{id}          Remove one simulated event
    DELETE /api/simulations               Clear all simulations

  Projections:
    GET    /api/balances?from=&to=        Daily balance snapshots
    GET    /api/insights?from=&to=&focus= Dashboard insights
    GET    /api/variations?...&metric=    Daily variation series
    GET    /api/range/default             Default dashboard range

RANGES:
  Missing from/to fall back to the default dashboard range (today until the
  day before the next payday). An inverted range yields empty results.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 409: No persister configured
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/cashflow-planner/engine"
	"github.com/warp/cashflow-planner/factory"
	"github.com/warp/cashflow-planner/planner"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Planner *planner.Planner
	Factory *factory.PlanFactory
	Logger  *slog.Logger

	// Today is the reference date for default ranges; replaceable in tests.
	Today func() engine.Date

	scenarios *scenarioState
}

// NewHandler creates a new handler around p.
func NewHandler(p *planner.Planner, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		Planner:   p,
		Factory:   factory.NewPlanFactory(),
		Logger:    logger,
		Today:     engine.Today,
		scenarios: &scenarioState{},
	}
}

// =============================================================================
// STATE HANDLERS
// =============================================================================

// GetState returns pools, configuration and derived totals.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStateDTO(h.Planner.State(), h.Planner.Version()))
}

// SaveState persists the full state.
// POST /api/state/save
func (h *Handler) SaveState(w http.ResponseWriter, r *http.Request) {
	version, err := h.Planner.Save(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Version: version})
}

// UpdateChecking sets the checking balance.
// PUT /api/checking
func (h *Handler) UpdateChecking(w http.ResponseWriter, r *http.Request) {
	var req UpdateCheckingRequest
	if !decode(w, r, &req) {
		return
	}
	h.Planner.UpdateCheckingBalance(req.Balance)
	h.GetState(w, r)
}

// =============================================================================
// CAIXINHA HANDLERS
// =============================================================================

// CreateCaixinha adds a savings pool.
// POST /api/caixinhas
func (h *Handler) CreateCaixinha(w http.ResponseWriter, r *http.Request) {
	var req CaixinhaRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	c := h.Planner.AddCaixinha(req.Name, req.Balance)
	writeJSON(w, http.StatusCreated, toCaixinhaDTO(c))
}

// UpdateCaixinha replaces name and balance. Unknown ids are a no-op.
// PUT /api/caixinhas/{id}
func (h *Handler) UpdateCaixinha(w http.ResponseWriter, r *http.Request) {
	var req CaixinhaRequest
	if !decode(w, r, &req) {
		return
	}
	h.Planner.UpdateCaixinha(chi.URLParam(r, "id"), req.Name, req.Balance)
	h.GetState(w, r)
}

// DeleteCaixinha removes a savings pool.
// DELETE /api/caixinhas/{id}
func (h *Handler) DeleteCaixinha(w http.ResponseWriter, r *http.Request) {
	h.Planner.RemoveCaixinha(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// VOUCHER HANDLERS
// =============================================================================

// CreateVoucher adds a meal/food voucher.
// POST /api/vouchers
func (h *Handler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	var req CreateVoucherRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required", nil)
		return
	}
	v, err := h.Planner.AddVoucher(req.Label, req.Balance, req.CreditDay, req.StandardAmount)
	if err != nil {
		h.fail(w, r, "Failed to add voucher", err)
		return
	}
	writeJSON(w, http.StatusCreated, toVoucherDTO(v))
}

// UpdateVoucher replaces balance, credit day and standard amount.
// PUT /api/vouchers/{id}
func (h *Handler) UpdateVoucher(w http.ResponseWriter, r *http.Request) {
	var req UpdateVoucherRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Planner.UpdateVoucher(chi.URLParam(r, "id"), req.Balance, req.CreditDay, req.StandardAmount); err != nil {
		h.fail(w, r, "Failed to update voucher", err)
		return
	}
	h.GetState(w, r)
}

// DeleteVoucher removes a voucher.
// DELETE /api/vouchers/{id}
func (h *Handler) DeleteVoucher(w http.ResponseWriter, r *http.Request) {
	h.Planner.RemoveVoucher(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RECURRING CONFIGURATION
// =============================================================================

// UpdateSalary sets salary amount and day.
// PUT /api/salary
func (h *Handler) UpdateSalary(w http.ResponseWriter, r *http.Request) {
	var req SalaryDTO
	if !decode(w, r, &req) {
		return
	}
	if err := h.Planner.UpdateSalary(engine.SalaryConfig{Amount: req.Amount, DayOfMonth: req.DayOfMonth}); err != nil {
		h.fail(w, r, "Failed to update salary", err)
		return
	}
	h.GetState(w, r)
}

// NextSalary returns the next payday on or after ?from (default today).
// GET /api/salary/next
func (h *Handler) NextSalary(w http.ResponseWriter, r *http.Request) {
	from := h.Today()
	if s := r.URL.Query().Get("from"); s != "" {
		d, err := engine.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		from = d
	}
	writeJSON(w, http.StatusOK, NextSalaryDTO{From: from, Date: h.Planner.NextSalaryDate(from)})
}

// UpdateCreditCard sets the next invoice and closing day.
// PUT /api/credit-card
func (h *Handler) UpdateCreditCard(w http.ResponseWriter, r *http.Request) {
	var req CreditCardDTO
	if !decode(w, r, &req) {
		return
	}
	cfg := engine.CreditCardConfig{NextInvoiceAmount: req.NextInvoiceAmount, ClosingDay: req.ClosingDay}
	if err := h.Planner.UpdateCreditCard(cfg); err != nil {
		h.fail(w, r, "Failed to update credit card", err)
		return
	}
	h.GetState(w, r)
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

// UpcomingTransactions lists recurring events in range.
// GET /api/transactions/upcoming
func (h *Handler) UpcomingTransactions(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(h.Planner.UpcomingStandardTransactions(rng)))
}

// ListTransactions lists every event the projection applies in range.
// GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	events, err := h.Planner.Events(r.Context(), rng)
	if err != nil {
		h.fail(w, r, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// ListSimulations lists stored simulations, all of them when no range is given.
// GET /api/simulations
func (h *Handler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		events []engine.TransactionEvent
		err    error
	)
	if q.Get("from") == "" && q.Get("to") == "" {
		events, err = h.Planner.AllSimulatedTransactions(r.Context())
	} else {
		rng, ok := h.parseRange(w, r)
		if !ok {
			return
		}
		events, err = h.Planner.FutureSimulations(r.Context(), rng)
	}
	if err != nil {
		h.fail(w, r, "Failed to list simulations", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// CreateSimulation adds one simulated event per selected date.
// POST /api/simulations
func (h *Handler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req AddSimulationRequest
	if !decode(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid simulation", err)
		return
	}
	events, err := h.Planner.AddSimulatedTransaction(r.Context(), in)
	if err != nil {
		h.fail(w, r, "Failed to add simulation", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTOs(events))
}

// DeleteSimulation removes one simulated event. Unknown ids are a no-op.
// DELETE /api/simulations/{id}
func (h *Handler) DeleteSimulation(w http.ResponseWriter, r *http.Request) {
	id := engine.EventID(chi.URLParam(r, "id"))
	if err := h.Planner.RemoveSimulatedTransaction(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to remove simulation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearSimulations removes every simulated event.
// DELETE /api/simulations
func (h *Handler) ClearSimulations(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.ClearSimulatedTransactions(r.Context()); err != nil {
		h.fail(w, r, "Failed to clear simulations", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PROJECTION HANDLERS
// =============================================================================

// GetBalances returns one snapshot per day in range.
// GET /api/balances
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	snaps, err := h.Planner.Balances(r.Context(), rng)
	if err != nil {
		h.fail(w, r, "Failed to project balances", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTOs(snaps))
}

// GetInsights returns the dashboard insights for a focus.
// GET /api/insights
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	focus, err := engine.ParseFocus(r.URL.Query().Get("focus"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid focus", err)
		return
	}
	insights, err := h.Planner.DashboardInsights(r.Context(), rng, focus)
	if err != nil {
		h.fail(w, r, "Failed to compute insights", err)
		return
	}
	writeJSON(w, http.StatusOK, toInsightDTOs(insights))
}

// GetVariations returns the daily variation series of one metric.
// GET /api/variations
func (h *Handler) GetVariations(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	metric, err := engine.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid metric", err)
		return
	}
	points, err := h.Planner.Variations(r.Context(), rng, metric)
	if err != nil {
		h.fail(w, r, "Failed to compute variations", err)
		return
	}
	writeJSON(w, http.StatusOK, toVariationDTOs(points))
}

// DefaultRange returns the default dashboard range for today.
// GET /api/range/default
func (h *Handler) DefaultRange(w http.ResponseWriter, r *http.Request) {
	rng := h.Planner.DefaultDashboardRange(h.Today())
	writeJSON(w, http.StatusOK, RangeDTO{From: rng.Start, To: rng.End})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseRange reads ?from and ?to, filling whichever is missing from the
// default dashboard range. Writes a 400 and returns false on a bad date.
func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (engine.Range, bool) {
	q := r.URL.Query()
	rng := h.Planner.DefaultDashboardRange(h.Today())

	if s := q.Get("from"); s != "" {
		d, err := engine.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return engine.Range{}, false
		}
		rng.Start = d
	}
	if s := q.Get("to"); s != "" {
		d, err := engine.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return engine.Range{}, false
		}
		rng.End = d
	}
	return rng, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// fail maps err to a status and logs server-side failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(message, "path", r.URL.Path, "err", err)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, engine.ErrNegativeAmount),
		errors.Is(err, engine.ErrCreditWithDestination),
		errors.Is(err, engine.ErrSameSourceAndDestination),
		errors.Is(err, engine.ErrNoDates),
		errors.Is(err, engine.ErrUnknownSource),
		errors.Is(err, engine.ErrUnknownTransactionType),
		errors.Is(err, engine.ErrInvalidDate),
		errors.Is(err, planner.ErrDuplicateID):
		return http.StatusBadRequest
	case errors.Is(err, planner.ErrNoPersister):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
