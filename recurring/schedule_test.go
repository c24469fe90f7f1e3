package recurring_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/cashflow-planner/engine"
	"github.com/warp/cashflow-planner/recurring"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(y int, m time.Month, d int) engine.Date { return engine.NewDate(y, m, d) }

func money(v float64) decimal.Decimal { return engine.NewMoney(v) }

func span(from, to engine.Date) engine.Range { return engine.NewRange(from, to) }

func january2024() engine.Range {
	return span(date(2024, time.January, 1), date(2024, time.January, 31))
}

func dates(events []engine.TransactionEvent) []engine.Date {
	out := make([]engine.Date, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Date)
	}
	return out
}

// =============================================================================
// SALARY
// =============================================================================

func TestSalary_OneCreditInMonth(t *testing.T) {
	// GIVEN: Salary 5000 on the 5th
	// WHEN: Generating January 2024 (the 5th is a Friday)
	// THEN: Exactly one CREDIT to CHECKING on 2024-01-05

	s := recurring.SalarySchedule{Config: engine.SalaryConfig{Amount: money(5000), DayOfMonth: 5}}

	events := s.Events(january2024())

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, engine.EventID("salary-2024-01-05"), ev.ID)
	assert.Equal(t, date(2024, time.January, 5), ev.Date)
	assert.Equal(t, engine.Credit, ev.Type)
	assert.Equal(t, engine.SourceChecking, ev.Source)
	assert.Equal(t, engine.KindSalary, ev.Kind)
	assert.Nil(t, ev.Destination)
	assert.True(t, money(5000).Equal(ev.Amount))
}

func TestSalary_WeekendMovesToFriday(t *testing.T) {
	// 2024-01-06 is a Saturday, 2024-03-10 is a Sunday
	saturday := recurring.SalarySchedule{Config: engine.SalaryConfig{Amount: money(1), DayOfMonth: 6}}
	sunday := recurring.SalarySchedule{Config: engine.SalaryConfig{Amount: money(1), DayOfMonth: 10}}

	assert.Equal(t, []engine.Date{date(2024, time.January, 5)}, dates(saturday.Events(january2024())))
	assert.Equal(t, []engine.Date{date(2024, time.March, 8)},
		dates(sunday.Events(span(date(2024, time.March, 1), date(2024, time.March, 31)))))
}

func TestSalary_LooksForwardFromStartOnly(t *testing.T) {
	s := recurring.SalarySchedule{Config: engine.SalaryConfig{Amount: money(1), DayOfMonth: 5}}

	// Payday already passed, next is Feb 5, out of range
	assert.Empty(t, s.Events(span(date(2024, time.January, 10), date(2024, time.January, 31))))

	// A three-month range still yields a single payday
	assert.Len(t, s.Events(span(date(2024, time.January, 1), date(2024, time.March, 31))), 1)
}

func TestSalary_NextDate(t *testing.T) {
	s := recurring.SalarySchedule{Config: engine.SalaryConfig{Amount: money(1), DayOfMonth: 25}}

	assert.Equal(t, date(2024, time.January, 25), s.NextDate(date(2024, time.January, 1)))
	assert.Equal(t, date(2024, time.February, 23), s.NextDate(date(2024, time.January, 26)), "feb 25 2024 is sunday")
}

func TestSalary_InvertedRange(t *testing.T) {
	s := recurring.SalarySchedule{Config: engine.SalaryConfig{Amount: money(1), DayOfMonth: 5}}
	assert.Empty(t, s.Events(span(date(2024, time.January, 31), date(2024, time.January, 1))))
}

// =============================================================================
// CREDIT CARD
// =============================================================================

func TestCardPayment_DebitOnClosingDay(t *testing.T) {
	s := recurring.CardPaymentSchedule{Config: engine.CreditCardConfig{NextInvoiceAmount: money(1500), ClosingDay: 27}}

	events := s.Events(january2024())

	// Jan 27 2024 is a Saturday: card payments are not weekend-adjusted
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, engine.EventID("card-2024-01-27"), ev.ID)
	assert.Equal(t, date(2024, time.January, 27), ev.Date)
	assert.Equal(t, engine.Debit, ev.Type)
	assert.Equal(t, engine.SourceChecking, ev.Source)
	assert.Equal(t, engine.KindCardPayment, ev.Kind)
}

func TestCardPayment_ZeroInvoiceEmitsNothing(t *testing.T) {
	s := recurring.CardPaymentSchedule{Config: engine.CreditCardConfig{NextInvoiceAmount: decimal.Zero, ClosingDay: 10}}
	assert.Empty(t, s.Events(january2024()))
}

// =============================================================================
// VOUCHERS
// =============================================================================

func TestVoucher_DefaultDayInFebruary(t *testing.T) {
	// GIVEN: A default-day voucher
	// WHEN: Generating February of a non-leap year
	// THEN: The 27th when the month ends on a weekday; when the 28th is a
	//       Saturday the last weekday is the 27th, so the credit is the 26th

	v := engine.Voucher{ID: "v1", Label: "Meal", StandardAmount: money(900), CreditDay: engine.DefaultCreditDay}
	s := recurring.VoucherSchedule{Vouchers: []engine.Voucher{v}}

	feb2023 := s.Events(engine.MonthRange(date(2023, time.February, 1)))
	feb2026 := s.Events(engine.MonthRange(date(2026, time.February, 1)))

	assert.Equal(t, []engine.Date{date(2023, time.February, 27)}, dates(feb2023))
	assert.Equal(t, []engine.Date{date(2026, time.February, 26)}, dates(feb2026))
	require.Len(t, feb2026, 1)
	assert.Equal(t, engine.EventID("voucher-v1-2026-02-26"), feb2026[0].ID)
	assert.Equal(t, engine.SourceVoucher, feb2026[0].Source)
	assert.Equal(t, engine.KindVoucherCredit, feb2026[0].Kind)
	assert.Equal(t, "Meal", feb2026[0].Name)
}

func TestVoucher_DefaultDayScansTwoMonths(t *testing.T) {
	v := engine.Voucher{ID: "v1", Label: "Meal", StandardAmount: money(900)}
	s := recurring.VoucherSchedule{Vouchers: []engine.Voucher{v}}

	// Jan 30 2024 and Feb 28 2024 are the penultimate weekdays
	got := s.Events(span(date(2024, time.January, 15), date(2024, time.March, 10)))
	assert.Equal(t, []engine.Date{date(2024, time.January, 30), date(2024, time.February, 28)}, dates(got))

	// A range covering a third month does not reach it
	got = s.Events(span(date(2024, time.January, 15), date(2024, time.April, 30)))
	assert.Len(t, got, 2)
}

func TestVoucher_CustomDayOnce(t *testing.T) {
	// Feb 10 2024 is a Saturday: custom days are not weekend-adjusted
	v := engine.Voucher{ID: "v2", Label: "Food", StandardAmount: money(700), CreditDay: 10}
	s := recurring.VoucherSchedule{Vouchers: []engine.Voucher{v}}

	got := s.Events(span(date(2024, time.January, 15), date(2024, time.March, 31)))

	assert.Equal(t, []engine.Date{date(2024, time.February, 10)}, dates(got))
}

func TestVoucher_MultipleVouchers(t *testing.T) {
	s := recurring.VoucherSchedule{Vouchers: []engine.Voucher{
		{ID: "a", Label: "A", StandardAmount: money(1)},
		{ID: "b", Label: "B", StandardAmount: money(2), CreditDay: 3},
	}}

	got := s.Events(january2024())

	require.Len(t, got, 2)
	assert.Equal(t, engine.EventID("voucher-a-2024-01-30"), got[0].ID)
	assert.Equal(t, engine.EventID("voucher-b-2024-01-03"), got[1].ID)
}

// =============================================================================
// GENERATOR
// =============================================================================

func TestGenerator_SortedAndStable(t *testing.T) {
	// GIVEN: Salary and card both on the 25th, a voucher on the 30th and one on the 3rd
	g := recurring.Standard(
		engine.SalaryConfig{Amount: money(5000), DayOfMonth: 25},
		engine.CreditCardConfig{NextInvoiceAmount: money(800), ClosingDay: 25},
		[]engine.Voucher{
			{ID: "meal", Label: "Meal", StandardAmount: money(900)},
			{ID: "food", Label: "Food", StandardAmount: money(700), CreditDay: 3},
		},
	)

	events := g.Events(january2024())

	ids := make([]engine.EventID, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []engine.EventID{
		"voucher-food-2024-01-03",
		"salary-2024-01-25",
		"card-2024-01-25",
		"voucher-meal-2024-01-30",
	}, ids)
}

func TestGenerator_DeterministicIDs(t *testing.T) {
	g := recurring.Standard(
		engine.SalaryConfig{Amount: money(5000), DayOfMonth: 5},
		engine.CreditCardConfig{NextInvoiceAmount: money(800), ClosingDay: 10},
		[]engine.Voucher{{ID: "meal", Label: "Meal", StandardAmount: money(900)}},
	)

	first := g.Events(january2024())
	second := g.Events(january2024())

	assert.Equal(t, first, second)
}

func TestGenerator_EmptyRange(t *testing.T) {
	g := recurring.Standard(engine.SalaryConfig{DayOfMonth: 5}, engine.CreditCardConfig{}, nil)

	got := g.Events(span(date(2024, time.January, 31), date(2024, time.January, 1)))

	assert.NotNil(t, got)
	assert.Empty(t, got)
}
