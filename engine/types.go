/*
Package engine provides the core scheduling and projection engine.

PURPOSE:
  This package contains the value types and algorithms that turn a set of
  money pools plus a list of dated events into a day-by-day ledger. Recurring
  schedules (salary, card payment, vouchers) live in the recurring package;
  the state owner lives in the planner package. Everything here is pure.

KEY CONCEPTS IN THIS FILE (types.go):
  - AccountSource: Which money pool an event touches
  - TransactionEvent: An immutable dated movement of money
  - EventKind: Explicit tag for events with special settlement rules
  - SimulatedTransactionInput: A creation request expanding to many events
  - Balances / BalanceSnapshot: The four running pool values

DESIGN PRINCIPLES:
  1. Immutability: Events are never modified, only removed and re-added
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Direction by type: Amounts are never negative, TransactionType carries sign
  4. Explicit tags: Settlement behavior keys off EventKind, never ids or names

USAGE:
  ev := engine.TransactionEvent{
      ID:     "salary-2025-01-24",
      Name:   "Salary",
      Amount: engine.NewMoney(5000),
      Date:   engine.NewDate(2025, time.January, 24),
      Type:   engine.Credit,
      Source: engine.SourceChecking,
      Kind:   engine.KindSalary,
  }

SEE ALSO:
  - time.go: Date (day-granularity calendar date)
  - calendar.go: Month-day and business-day rules
  - projection.go: Folding events into snapshots
  - insight.go: Period deltas and variation
*/
package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

// NewMoney builds a decimal amount from a float literal.
func NewMoney(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// MustParseDecimal parses a decimal literal and panics on malformed input.
// Stored or user-supplied amounts go through decimal.NewFromString.
func MustParseDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EventID string

// =============================================================================
// ACCOUNT SOURCE - Which pool an event reads from or writes to
// =============================================================================

type AccountSource string

const (
	SourceChecking    AccountSource = "CHECKING"
	SourceSavingsPool AccountSource = "SAVINGS_POOL"
	SourceVoucher     AccountSource = "VOUCHER"
	SourceCreditCard  AccountSource = "CREDIT_CARD"
)

// Valid reports whether s is one of the four known pools.
func (s AccountSource) Valid() bool {
	switch s {
	case SourceChecking, SourceSavingsPool, SourceVoucher, SourceCreditCard:
		return true
	}
	return false
}

// ParseAccountSource accepts the canonical names case-insensitively.
func ParseAccountSource(s string) (AccountSource, error) {
	src := AccountSource(strings.ToUpper(strings.TrimSpace(s)))
	if !src.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
	return src, nil
}

// =============================================================================
// TRANSACTION TYPE
// =============================================================================

type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

func (t TransactionType) Valid() bool { return t == Debit || t == Credit }

// ParseTransactionType accepts "debit" / "credit" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	tt := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !tt.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTransactionType, s)
	}
	return tt, nil
}

// =============================================================================
// EVENT KIND - Discriminates events with their own settlement rules
// =============================================================================

type EventKind string

const (
	KindSalary        EventKind = "salary"
	KindCardPayment   EventKind = "card_payment"
	KindVoucherCredit EventKind = "voucher_credit"
	KindSimulated     EventKind = "simulated"
)

// IsRecurring is true for events recomputed from configuration.
func (k EventKind) IsRecurring() bool {
	return k == KindSalary || k == KindCardPayment || k == KindVoucherCredit
}

// =============================================================================
// TRANSACTION EVENT - Immutable dated movement of money
// =============================================================================

// TransactionEvent moves Amount out of or into Source on Date.
// When Destination is set (DEBIT only), the amount simultaneously lands in
// Destination instead of leaving the system.
type TransactionEvent struct {
	ID          EventID
	Name        string
	Amount      decimal.Decimal
	Date        Date
	Type        TransactionType
	Source      AccountSource
	Destination *AccountSource
	Kind        EventKind
}

// IsTransfer reports whether the event moves money between two pools.
func (e TransactionEvent) IsTransfer() bool {
	return e.Destination != nil && e.Type == Debit
}

// Validate applies the simulated input rules to a single stored event.
// Recurring kinds are rejected; those events are never stored.
func (e TransactionEvent) Validate() error {
	if e.Kind.IsRecurring() {
		return &ValidationError{Field: "kind", Err: fmt.Errorf("%w: %q", ErrRecurringKind, e.Kind)}
	}
	return SimulatedTransactionInput{
		Name:        e.Name,
		Amount:      e.Amount,
		Dates:       []Date{e.Date},
		Type:        e.Type,
		Source:      e.Source,
		Destination: e.Destination,
	}.Validate()
}

// SignedAmount is +Amount for credits, -Amount for debits.
func (e TransactionEvent) SignedAmount() decimal.Decimal {
	if e.Type == Credit {
		return e.Amount
	}
	return e.Amount.Neg()
}

// =============================================================================
// SIMULATED INPUT - Creation request for one-off or multi-date events
// =============================================================================

// SimulatedTransactionInput expands into one TransactionEvent per date.
type SimulatedTransactionInput struct {
	Name        string
	Amount      decimal.Decimal
	Dates       []Date
	Type        TransactionType
	Source      AccountSource
	Destination *AccountSource
}

// Validate enforces the construction-time invariants of a simulation.
// A destination is only meaningful for DEBIT events.
func (in SimulatedTransactionInput) Validate() error {
	if in.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Err: ErrNegativeAmount}
	}
	if !in.Type.Valid() {
		return &ValidationError{Field: "type", Err: fmt.Errorf("%w: %q", ErrUnknownTransactionType, in.Type)}
	}
	if !in.Source.Valid() {
		return &ValidationError{Field: "source", Err: fmt.Errorf("%w: %q", ErrUnknownSource, in.Source)}
	}
	if len(in.Dates) == 0 {
		return &ValidationError{Field: "dates", Err: ErrNoDates}
	}
	for _, d := range in.Dates {
		if d.IsZero() {
			return &ValidationError{Field: "dates", Err: ErrMissingDate}
		}
	}
	if in.Destination != nil {
		if in.Type == Credit {
			return &ValidationError{Field: "destination", Err: ErrCreditWithDestination}
		}
		if !in.Destination.Valid() {
			return &ValidationError{Field: "destination", Err: fmt.Errorf("%w: %q", ErrUnknownSource, *in.Destination)}
		}
		if *in.Destination == in.Source {
			return &ValidationError{Field: "destination", Err: ErrSameSourceAndDestination}
		}
	}
	return nil
}

// Expand builds one event per distinct date, ascending, using newID for ids.
// The caller is expected to have run Validate.
func (in SimulatedTransactionInput) Expand(newID func() EventID) []TransactionEvent {
	dates := UniqueSortedDates(in.Dates)
	events := make([]TransactionEvent, 0, len(dates))
	for _, d := range dates {
		var dest *AccountSource
		if in.Destination != nil {
			v := *in.Destination
			dest = &v
		}
		events = append(events, TransactionEvent{
			ID:          newID(),
			Name:        in.Name,
			Amount:      in.Amount,
			Date:        d,
			Type:        in.Type,
			Source:      in.Source,
			Destination: dest,
			Kind:        KindSimulated,
		})
	}
	return events
}

// =============================================================================
// BALANCES - The four tracked pools
// =============================================================================

// Balances holds the four running values at the end of a day.
//
// CardDebt is the positive amount owed on the card. The card pool's signed
// value is -CardDebt, so charges raise CardDebt and payments into the card
// lower it.
type Balances struct {
	Checking     decimal.Decimal
	SavingsTotal decimal.Decimal
	VoucherTotal decimal.Decimal
	CardDebt     decimal.Decimal
}

// NetWorth is checking + savings + vouchers - card debt.
func (b Balances) NetWorth() decimal.Decimal {
	return b.Checking.Add(b.SavingsTotal).Add(b.VoucherTotal).Sub(b.CardDebt)
}

// AccountsTotal is checking + savings, the "Total" dashboard figure.
func (b Balances) AccountsTotal() decimal.Decimal {
	return b.Checking.Add(b.SavingsTotal)
}

// BalanceSnapshot is the state of every pool as of the end of Date.
type BalanceSnapshot struct {
	Date Date
	Balances
}

// =============================================================================
// CREDIT DAY - Voucher crediting day with a "default" sentinel
// =============================================================================

// CreditDay is a day of month (1-31). The zero value means "default",
// i.e. the penultimate business day of the month.
type CreditDay int

const DefaultCreditDay CreditDay = 0

func (c CreditDay) IsDefault() bool { return c <= 0 }

func (c CreditDay) String() string {
	if c.IsDefault() {
		return "default"
	}
	return strconv.Itoa(int(c))
}

// ParseCreditDay accepts "default", "" or an integer day.
func ParseCreditDay(s string) (CreditDay, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "default" {
		return DefaultCreditDay, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 31 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return CreditDay(n), nil
}

func (c CreditDay) MarshalJSON() ([]byte, error) {
	if c.IsDefault() {
		return []byte(`"default"`), nil
	}
	return []byte(strconv.Itoa(int(c))), nil
}

func (c *CreditDay) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 || n > 31 {
			return fmt.Errorf("%w: %d", ErrInvalidDay, n)
		}
		*c = CreditDay(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDay, string(data))
	}
	parsed, err := ParseCreditDay(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
