package engine

import "fmt"

// =============================================================================
// RANGE - Inclusive calendar window every query is evaluated over
// =============================================================================

// Range is the inclusive window [Start, End]. A range whose End is before
// its Start is empty: it contains no days and projects to no snapshots.
type Range struct {
	Start Date
	End   Date
}

func NewRange(start, end Date) Range { return Range{Start: start, End: end} }

// Contains returns true if d is within [Start, End]
func (r Range) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

func (r Range) IsEmpty() bool { return r.End.Before(r.Start) }

// Len is the number of days in the range, zero when inverted.
func (r Range) Len() int {
	if r.IsEmpty() {
		return 0
	}
	return DaysBetween(r.Start, r.End) + 1
}

// Days returns every day in the range, ascending.
func (r Range) Days() []Date {
	days := make([]Date, 0, r.Len())
	for current := r.Start; current.BeforeOrEqual(r.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (r Range) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// MonthRange covers the whole calendar month of d.
func MonthRange(d Date) Range {
	return Range{Start: d.FirstOfMonth(), End: d.LastOfMonth()}
}

// =============================================================================
// DATE SELECTION - Single day or inclusive span picked for a simulation
// =============================================================================

// DateSelection is either a single day (End nil) or an inclusive span.
type DateSelection struct {
	Start Date
	End   *Date
}

func SingleDay(d Date) DateSelection { return DateSelection{Start: d} }

func Span(start, end Date) DateSelection {
	e := end
	return DateSelection{Start: start, End: &e}
}

// MaxSelectionDays bounds the number of days a single span may expand to.
const MaxSelectionDays = 366 * 5

// Validate rejects a missing start or end and spans over MaxSelectionDays.
func (s DateSelection) Validate() error {
	if s.Start.IsZero() {
		return &ValidationError{Field: "selection start", Err: ErrMissingDate}
	}
	if s.End == nil {
		return nil
	}
	if s.End.IsZero() {
		return &ValidationError{Field: "selection end", Err: ErrMissingDate}
	}
	days := DaysBetween(s.Start, *s.End)
	if days < 0 {
		days = -days
	}
	if days+1 > MaxSelectionDays {
		return &ValidationError{Field: "selection", Err: fmt.Errorf("%w: %d days, max %d", ErrSelectionTooLong, days+1, MaxSelectionDays)}
	}
	return nil
}

// Dates expands the selection into its days. Spans given backwards are
// normalised so the earlier date comes first.
func (s DateSelection) Dates() []Date {
	if s.End == nil {
		return []Date{s.Start}
	}
	start, end := s.Start, *s.End
	if end.Before(start) {
		start, end = end, start
	}
	return Range{Start: start, End: end}.Days()
}

// ExpandSelections validates selections and flattens them into distinct
// ascending dates.
func ExpandSelections(selections []DateSelection) ([]Date, error) {
	var all []Date
	for i, s := range selections {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("selection %d: %w", i, err)
		}
		all = append(all, s.Dates()...)
	}
	return UniqueSortedDates(all), nil
}
