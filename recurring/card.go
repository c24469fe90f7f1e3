package recurring

import (
	"github.com/warp/cashflow-planner/engine"
)

const CardPaymentName = "Credit card invoice"

// CardPaymentSchedule pays the next invoice from checking on the closing
// day. An invoice of zero (or less) produces no event.
type CardPaymentSchedule struct {
	Config engine.CreditCardConfig
}

func (s CardPaymentSchedule) Events(r engine.Range) []engine.TransactionEvent {
	if r.IsEmpty() || !s.Config.NextInvoiceAmount.IsPositive() {
		return nil
	}
	due := engine.NextOccurrenceOfDay(s.Config.ClosingDay, r.Start)
	if !r.Contains(due) {
		return nil
	}
	return []engine.TransactionEvent{{
		ID:     eventID("card", due),
		Name:   CardPaymentName,
		Amount: s.Config.NextInvoiceAmount,
		Date:   due,
		Type:   engine.Debit,
		Source: engine.SourceChecking,
		Kind:   engine.KindCardPayment,
	}}
}
