/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine types carry no
  JSON tags; these types are the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS AND DATES:
  Amounts are decimal strings in responses and accept strings or numbers in
  requests. Dates are "YYYY-MM-DD".

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/plan.go: Plan documents used by scenarios
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/cashflow-planner/engine"
	"github.com/warp/cashflow-planner/planner"
)

// =============================================================================
// STATE
// =============================================================================

type CaixinhaDTO struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type VoucherDTO struct {
	ID             string           `json:"id"`
	Label          string           `json:"label"`
	Balance        decimal.Decimal  `json:"balance"`
	CreditDay      engine.CreditDay `json:"credit_day"`
	StandardAmount decimal.Decimal  `json:"standard_amount"`
}

type SalaryDTO struct {
	Amount     decimal.Decimal `json:"amount"`
	DayOfMonth int             `json:"day_of_month"`
}

type CreditCardDTO struct {
	NextInvoiceAmount decimal.Decimal `json:"next_invoice_amount"`
	ClosingDay        int             `json:"closing_day"`
}

// StateDTO is the full planner state plus derived totals.
type StateDTO struct {
	Checking     decimal.Decimal `json:"checking"`
	Caixinhas    []CaixinhaDTO   `json:"caixinhas"`
	Vouchers     []VoucherDTO    `json:"vouchers"`
	Salary       SalaryDTO       `json:"salary"`
	CreditCard   CreditCardDTO   `json:"credit_card"`
	SavingsTotal decimal.Decimal `json:"savings_total"`
	VoucherTotal decimal.Decimal `json:"voucher_total"`
	Version      uint64          `json:"version"`
}

func toStateDTO(st planner.State, version uint64) StateDTO {
	dto := StateDTO{
		Checking:     st.Checking.Balance,
		Caixinhas:    make([]CaixinhaDTO, 0, len(st.Caixinhas)),
		Vouchers:     make([]VoucherDTO, 0, len(st.Vouchers)),
		Salary:       SalaryDTO{Amount: st.Salary.Amount, DayOfMonth: st.Salary.DayOfMonth},
		CreditCard:   CreditCardDTO{NextInvoiceAmount: st.Card.NextInvoiceAmount, ClosingDay: st.Card.ClosingDay},
		SavingsTotal: engine.SumCaixinhas(st.Caixinhas),
		VoucherTotal: engine.SumVouchers(st.Vouchers),
		Version:      version,
	}
	for _, c := range st.Caixinhas {
		dto.Caixinhas = append(dto.Caixinhas, toCaixinhaDTO(c))
	}
	for _, v := range st.Vouchers {
		dto.Vouchers = append(dto.Vouchers, toVoucherDTO(v))
	}
	return dto
}

func toCaixinhaDTO(c engine.Caixinha) CaixinhaDTO {
	return CaixinhaDTO{ID: c.ID, Name: c.Name, Balance: c.Balance}
}

func toVoucherDTO(v engine.Voucher) VoucherDTO {
	return VoucherDTO{
		ID:             v.ID,
		Label:          v.Label,
		Balance:        v.Balance,
		CreditDay:      v.CreditDay,
		StandardAmount: v.StandardAmount,
	}
}

// =============================================================================
// REQUESTS
// =============================================================================

type UpdateCheckingRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

type CaixinhaRequest struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type CreateVoucherRequest struct {
	Label          string           `json:"label"`
	Balance        decimal.Decimal  `json:"balance"`
	CreditDay      engine.CreditDay `json:"credit_day"`
	StandardAmount decimal.Decimal  `json:"standard_amount"`
}

type UpdateVoucherRequest struct {
	Balance        decimal.Decimal  `json:"balance"`
	CreditDay      engine.CreditDay `json:"credit_day"`
	StandardAmount decimal.Decimal  `json:"standard_amount"`
}

// SelectionDTO is a single day (end omitted) or an inclusive span. Start is
// required.
type SelectionDTO struct {
	Start engine.Date  `json:"start"`
	End   *engine.Date `json:"end,omitempty"`
}

// AddSimulationRequest accepts explicit dates, selections, or both.
type AddSimulationRequest struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Dates       []engine.Date   `json:"dates,omitempty"`
	Selections  []SelectionDTO  `json:"selections,omitempty"`
	Type        string          `json:"type"`
	Source      string          `json:"source"`
	Destination string          `json:"destination,omitempty"`
}

// toInput parses enums and flattens selections. Engine validation runs later.
func (req AddSimulationRequest) toInput() (engine.SimulatedTransactionInput, error) {
	tt, err := engine.ParseTransactionType(req.Type)
	if err != nil {
		return engine.SimulatedTransactionInput{}, err
	}
	src, err := engine.ParseAccountSource(req.Source)
	if err != nil {
		return engine.SimulatedTransactionInput{}, err
	}

	in := engine.SimulatedTransactionInput{
		Name:   req.Name,
		Amount: req.Amount,
		Dates:  append([]engine.Date{}, req.Dates...),
		Type:   tt,
		Source: src,
	}
	if len(req.Selections) > 0 {
		sels := make([]engine.DateSelection, len(req.Selections))
		for i, s := range req.Selections {
			sels[i] = engine.DateSelection{Start: s.Start, End: s.End}
		}
		dates, err := engine.ExpandSelections(sels)
		if err != nil {
			return engine.SimulatedTransactionInput{}, err
		}
		in.Dates = append(in.Dates, dates...)
	}
	if req.Destination != "" {
		dest, err := engine.ParseAccountSource(req.Destination)
		if err != nil {
			return engine.SimulatedTransactionInput{}, err
		}
		in.Destination = &dest
	}
	return in, nil
}

// =============================================================================
// EVENTS AND PROJECTIONS
// =============================================================================

type EventDTO struct {
	ID          engine.EventID  `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Date        engine.Date     `json:"date"`
	Type        string          `json:"type"`
	Source      string          `json:"source"`
	Destination string          `json:"destination,omitempty"`
	Kind        string          `json:"kind"`
}

func toEventDTOs(events []engine.TransactionEvent) []EventDTO {
	out := make([]EventDTO, 0, len(events))
	for _, ev := range events {
		dto := EventDTO{
			ID:     ev.ID,
			Name:   ev.Name,
			Amount: ev.Amount,
			Date:   ev.Date,
			Type:   string(ev.Type),
			Source: string(ev.Source),
			Kind:   string(ev.Kind),
		}
		if ev.Destination != nil {
			dto.Destination = string(*ev.Destination)
		}
		out = append(out, dto)
	}
	return out
}

type BalanceDTO struct {
	Date         engine.Date     `json:"date"`
	Checking     decimal.Decimal `json:"checking"`
	SavingsTotal decimal.Decimal `json:"savings_total"`
	VoucherTotal decimal.Decimal `json:"voucher_total"`
	CardDebt     decimal.Decimal `json:"card_debt"`
	Total        decimal.Decimal `json:"total"`
	NetWorth     decimal.Decimal `json:"net_worth"`
}

func toBalanceDTOs(snaps []engine.BalanceSnapshot) []BalanceDTO {
	out := make([]BalanceDTO, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, BalanceDTO{
			Date:         s.Date,
			Checking:     s.Checking,
			SavingsTotal: s.SavingsTotal,
			VoucherTotal: s.VoucherTotal,
			CardDebt:     s.CardDebt,
			Total:        s.AccountsTotal(),
			NetWorth:     s.NetWorth(),
		})
	}
	return out
}

type InsightDTO struct {
	Label      string          `json:"label"`
	Metric     string          `json:"metric"`
	StartValue decimal.Decimal `json:"start_value"`
	EndValue   decimal.Decimal `json:"end_value"`
	Delta      decimal.Decimal `json:"delta"`
	Variation  decimal.Decimal `json:"variation"`
}

func toInsightDTOs(insights []engine.DashboardInsight) []InsightDTO {
	out := make([]InsightDTO, 0, len(insights))
	for _, in := range insights {
		out = append(out, InsightDTO{
			Label:      in.Label,
			Metric:     string(in.Metric),
			StartValue: in.StartValue,
			EndValue:   in.EndValue,
			Delta:      in.Delta(),
			Variation:  in.Variation(),
		})
	}
	return out
}

type VariationDTO struct {
	Date       engine.Date     `json:"date"`
	Value      decimal.Decimal `json:"value"`
	VsInitial  decimal.Decimal `json:"vs_initial"`
	VsPrevious decimal.Decimal `json:"vs_previous"`
}

func toVariationDTOs(points []engine.VariationPoint) []VariationDTO {
	out := make([]VariationDTO, 0, len(points))
	for _, p := range points {
		out = append(out, VariationDTO{Date: p.Date, Value: p.Value, VsInitial: p.VsInitial, VsPrevious: p.VsPrevious})
	}
	return out
}

type RangeDTO struct {
	From engine.Date `json:"from"`
	To   engine.Date `json:"to"`
}

type NextSalaryDTO struct {
	From engine.Date `json:"from"`
	Date engine.Date `json:"date"`
}

type SaveResponse struct {
	Version uint64 `json:"version"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the error body for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
