package recurring

import (
	"github.com/warp/cashflow-planner/engine"
)

// SalaryName is the display name of salary events.
const SalaryName = "Salary"

// SalarySchedule credits checking once a month.
type SalarySchedule struct {
	Config engine.SalaryConfig
}

// NextDate is the payday on or after from, weekend-adjusted. The adjusted
// date can fall before from when from is itself a weekend payday.
func (s SalarySchedule) NextDate(from engine.Date) engine.Date {
	return engine.AdjustForWeekend(engine.NextOccurrenceOfDay(s.Config.DayOfMonth, from))
}

func (s SalarySchedule) Events(r engine.Range) []engine.TransactionEvent {
	if r.IsEmpty() {
		return nil
	}
	payday := s.NextDate(r.Start)
	if !r.Contains(payday) {
		return nil
	}
	return []engine.TransactionEvent{{
		ID:     eventID("salary", payday),
		Name:   SalaryName,
		Amount: s.Config.Amount,
		Date:   payday,
		Type:   engine.Credit,
		Source: engine.SourceChecking,
		Kind:   engine.KindSalary,
	}}
}
