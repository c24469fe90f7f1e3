package recurring

import (
	"github.com/warp/cashflow-planner/engine"
)

// VoucherSchedule credits every voucher its standard amount once a month.
type VoucherSchedule struct {
	Vouchers []engine.Voucher
}

func (s VoucherSchedule) Events(r engine.Range) []engine.TransactionEvent {
	if r.IsEmpty() {
		return nil
	}
	var events []engine.TransactionEvent
	for _, v := range s.Vouchers {
		for _, d := range CreditDates(v, r) {
			events = append(events, engine.TransactionEvent{
				ID:     eventID("voucher-"+v.ID, d),
				Name:   v.Label,
				Amount: v.StandardAmount,
				Date:   d,
				Type:   engine.Credit,
				Source: engine.SourceVoucher,
				Kind:   engine.KindVoucherCredit,
			})
		}
	}
	return events
}

// CreditDates lists the days inside r on which v is credited.
//
// A default-day voucher is checked against the start month and the month
// after it. A custom-day voucher resolves its next occurrence once.
func CreditDates(v engine.Voucher, r engine.Range) []engine.Date {
	if v.CreditDay.IsDefault() {
		var out []engine.Date
		month := r.Start.FirstOfMonth()
		for _, m := range []engine.Date{month, month.AddMonths(1)} {
			if d := engine.SecondToLastBusinessDay(m); r.Contains(d) {
				out = append(out, d)
			}
		}
		return out
	}

	d := engine.NextOccurrenceOfDay(int(v.CreditDay), r.Start)
	if r.Contains(d) {
		return []engine.Date{d}
	}
	return nil
}
