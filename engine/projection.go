/*
projection.go - Day-by-day ledger projection

PURPOSE:
  Folds a list of dated events into one BalanceSnapshot per calendar day of a
  range. The projector is pure: it never looks at the clock, never stores
  anything and never fails.

KEY INSIGHT:
  Opening balances are the values as of "now". Events are read only for the
  days of the range; the first snapshot already includes the first day's
  events. An inverted range has no days and yields no snapshots.

SETTLEMENT RULES:
  Source leg:
    CREDIT adds Amount to the source pool's signed value, DEBIT subtracts it.

  Destination leg (DEBIT with a destination):
    Amount is added to the destination pool's signed value. The two legs
    together leave net worth unchanged.

  Card pool:
    The signed value of CREDIT_CARD is -CardDebt. A charge on the card raises
    the debt; a payment or transfer into the card lowers it.

  Card payment:
    After its legs are applied, an event of kind card_payment resets CardDebt
    to zero. The invoice is settled in full, whatever the invoice amount was.

EXAMPLE:
  var p engine.Projector
  snaps := p.Project(january, events, engine.Balances{Checking: engine.NewMoney(1000)})
  last := snaps[len(snaps)-1]

SEE ALSO:
  - types.go: Balances, BalanceSnapshot
  - insight.go: Aggregating snapshots into dashboard figures
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROJECTOR
// =============================================================================

type Projector struct{}

// Project returns one snapshot per day of r, carrying balances forward.
func (Projector) Project(r Range, events []TransactionEvent, opening Balances) []BalanceSnapshot {
	if r.IsEmpty() {
		return []BalanceSnapshot{}
	}

	byDate := GroupByDate(events)
	snapshots := make([]BalanceSnapshot, 0, r.Len())
	running := opening

	for _, day := range r.Days() {
		for _, ev := range byDate[day] {
			running = Apply(running, ev)
		}
		snapshots = append(snapshots, BalanceSnapshot{Date: day, Balances: running})
	}
	return snapshots
}

// Apply settles one event against b.
func Apply(b Balances, ev TransactionEvent) Balances {
	b = b.adjust(ev.Source, ev.SignedAmount())
	if ev.IsTransfer() {
		b = b.adjust(*ev.Destination, ev.Amount)
	}
	if ev.Kind == KindCardPayment {
		b.CardDebt = decimal.Zero
	}
	return b
}

// adjust adds delta to the signed value of pool.
func (b Balances) adjust(pool AccountSource, delta decimal.Decimal) Balances {
	switch pool {
	case SourceChecking:
		b.Checking = b.Checking.Add(delta)
	case SourceSavingsPool:
		b.SavingsTotal = b.SavingsTotal.Add(delta)
	case SourceVoucher:
		b.VoucherTotal = b.VoucherTotal.Add(delta)
	case SourceCreditCard:
		b.CardDebt = b.CardDebt.Sub(delta)
	}
	return b
}

// =============================================================================
// EVENT HELPERS
// =============================================================================

// GroupByDate buckets events per day, preserving input order within a day.
func GroupByDate(events []TransactionEvent) map[Date][]TransactionEvent {
	out := make(map[Date][]TransactionEvent)
	for _, ev := range events {
		out[ev.Date] = append(out[ev.Date], ev)
	}
	return out
}

// SortEvents orders events ascending by date. Ties keep their input order.
func SortEvents(events []TransactionEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}

// FilterRange keeps the events whose date falls within r.
func FilterRange(events []TransactionEvent, r Range) []TransactionEvent {
	out := make([]TransactionEvent, 0, len(events))
	for _, ev := range events {
		if r.Contains(ev.Date) {
			out = append(out, ev)
		}
	}
	return out
}

// Merge concatenates event lists and sorts the result by date. Recurring
// events passed first stay ahead of simulations on the same day.
func Merge(lists ...[]TransactionEvent) []TransactionEvent {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	out := make([]TransactionEvent, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	SortEvents(out)
	return out
}
