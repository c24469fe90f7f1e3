package engine

import "time"

// =============================================================================
// CALENDAR RULES - Month-day resolution and business-day adjustment
// =============================================================================
//
// All recurring dates derive from three rules:
//
//   NextOccurrenceOfDay     "the 31st" in a 30-day month is the 30th
//   AdjustForWeekend        Saturday and Sunday both fall back to Friday
//   SecondToLastBusinessDay voucher default crediting day
//
// None of them know about holidays.

// NextOccurrenceOfDay returns the first date on or after from whose day of
// month is day, clamped to the month's length. Days below 1 clamp to 1.
func NextOccurrenceOfDay(day int, from Date) Date {
	if day < 1 {
		day = 1
	}
	candidate := clampedDay(from.FirstOfMonth(), day)
	if candidate.AfterOrEqual(from) {
		return candidate
	}
	return clampedDay(from.FirstOfMonth().AddMonths(1), day)
}

func clampedDay(monthStart Date, day int) Date {
	if last := monthStart.DaysInMonth(); day > last {
		day = last
	}
	return NewDate(monthStart.Year(), monthStart.Month(), day)
}

// AdjustForWeekend moves a weekend date back to the preceding Friday.
// Weekdays are returned unchanged.
func AdjustForWeekend(d Date) Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(-2)
	}
	return d
}

// SecondToLastBusinessDay returns the penultimate weekday of the month
// containing monthStart.
func SecondToLastBusinessDay(monthStart Date) Date {
	current := monthStart.LastOfMonth()
	seen := 0
	for {
		if current.IsBusinessDay() {
			seen++
			if seen == 2 {
				return current
			}
		}
		current = current.AddDays(-1)
	}
}
