/*
Package recurring materializes the events that repeat every month.

PURPOSE:
  Turns the salary, credit-card and voucher configuration into concrete
  TransactionEvents for a date range. Recurring events are never stored:
  they are recomputed from configuration on every read, so updating the
  salary or a voucher immediately changes every future projection.

SCHEDULES:
  SalarySchedule:
    - One CREDIT to CHECKING on the configured day, moved back to Friday
      when it lands on a weekend
    - Id "salary-<date>"

  CardPaymentSchedule:
    - One DEBIT from CHECKING on the closing day, not weekend-adjusted
    - Only when the next invoice is above zero
    - Kind card_payment, which settles the card debt to zero
    - Id "card-<date>"

  VoucherSchedule:
    - One CREDIT to VOUCHER per voucher per month
    - Default day: second-to-last business day of the month
    - Custom day: next occurrence of the day, not weekend-adjusted
    - Id "voucher-<voucherID>-<date>"

WINDOW:
  Every schedule looks forward from range.Start only: salary, card and
  custom-day vouchers emit at most one event per call. Default-day vouchers
  look at the start month and the following one, so a range spanning a month
  boundary can see two credits. Long ranges do not repeat monthly.

IDENTITY:
  Ids are deterministic. The same occurrence always gets the same id,
  however many times it is recomputed.

SEE ALSO:
  - engine/calendar.go: Date rules used here
  - planner/planner.go: Builds the Generator from current state
*/
package recurring

import (
	"fmt"

	"github.com/warp/cashflow-planner/engine"
)

// =============================================================================
// SCHEDULE - Interface for recurring event sources
// =============================================================================

// Schedule generates the recurring events that fall inside a range.
type Schedule interface {
	Events(r engine.Range) []engine.TransactionEvent
}

// eventID builds the deterministic id of a recurring occurrence.
func eventID(prefix string, d engine.Date) engine.EventID {
	return engine.EventID(fmt.Sprintf("%s-%s", prefix, d))
}

// =============================================================================
// GENERATOR - Composes schedules
// =============================================================================

// Generator concatenates the events of its schedules and sorts them by date.
// Events on the same day keep schedule order.
type Generator struct {
	Schedules []Schedule
}

func NewGenerator(schedules ...Schedule) *Generator {
	return &Generator{Schedules: schedules}
}

func (g *Generator) Events(r engine.Range) []engine.TransactionEvent {
	events := []engine.TransactionEvent{}
	if r.IsEmpty() {
		return events
	}
	for _, s := range g.Schedules {
		events = append(events, s.Events(r)...)
	}
	engine.SortEvents(events)
	return events
}

// Standard builds the generator for the three built-in schedules.
func Standard(salary engine.SalaryConfig, card engine.CreditCardConfig, vouchers []engine.Voucher) *Generator {
	return NewGenerator(
		SalarySchedule{Config: salary},
		CardPaymentSchedule{Config: card},
		VoucherSchedule{Vouchers: vouchers},
	)
}
