package engine

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date (no time of day, always UTC)
// =============================================================================

const DateLayout = "2006-01-02"

// Date is a calendar day. The zero value is the zero time.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now()) }

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// AddMonths moves n months keeping the day, letting time.Time normalise
// overflow. Use FirstOfMonth first when the day must not spill over.
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) Time() time.Time       { return d.t }
func (d Date) IsZero() bool          { return d.t.IsZero() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) IsBusinessDay() bool { return !d.IsWeekend() }

// DaysInMonth is the number of days of d's month.
func (d Date) DaysInMonth() int { return d.LastOfMonth().Day() }

func (d Date) FirstOfMonth() Date { return NewDate(d.Year(), d.Month(), 1) }

func (d Date) LastOfMonth() Date {
	return Date{t: time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

func (d Date) String() string { return d.t.Format(DateLayout) }

// =============================================================================
// SERIALIZATION
// =============================================================================

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DaysBetween is the signed number of days from -> to.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// UniqueSortedDates returns the distinct dates of in, ascending.
func UniqueSortedDates(in []Date) []Date {
	seen := make(map[Date]bool, len(in))
	out := make([]Date, 0, len(in))
	for _, d := range in {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
