package engine_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/cashflow-planner/engine"
)

func validInput() engine.SimulatedTransactionInput {
	return engine.SimulatedTransactionInput{
		Name:   "Groceries",
		Amount: money(80),
		Dates:  []engine.Date{date(2024, time.January, 5)},
		Type:   engine.Debit,
		Source: engine.SourceChecking,
	}
}

func TestSimulatedInput_Validate(t *testing.T) {
	savings := engine.SourceSavingsPool
	checking := engine.SourceChecking
	bogus := engine.AccountSource("BROKERAGE")

	tests := []struct {
		name   string
		mutate func(*engine.SimulatedTransactionInput)
		want   error
	}{
		{"valid debit", func(*engine.SimulatedTransactionInput) {}, nil},
		{"valid transfer", func(in *engine.SimulatedTransactionInput) { in.Destination = &savings }, nil},
		{"zero amount is allowed", func(in *engine.SimulatedTransactionInput) { in.Amount = money(0) }, nil},
		{"negative amount", func(in *engine.SimulatedTransactionInput) { in.Amount = money(-1) }, engine.ErrNegativeAmount},
		{"no dates", func(in *engine.SimulatedTransactionInput) { in.Dates = nil }, engine.ErrNoDates},
		{"credit with destination", func(in *engine.SimulatedTransactionInput) {
			in.Type = engine.Credit
			in.Destination = &savings
		}, engine.ErrCreditWithDestination},
		{"same source and destination", func(in *engine.SimulatedTransactionInput) { in.Destination = &checking }, engine.ErrSameSourceAndDestination},
		{"unknown source", func(in *engine.SimulatedTransactionInput) { in.Source = bogus }, engine.ErrUnknownSource},
		{"unknown destination", func(in *engine.SimulatedTransactionInput) { in.Destination = &bogus }, engine.ErrUnknownSource},
		{"unknown type", func(in *engine.SimulatedTransactionInput) { in.Type = "REFUND" }, engine.ErrUnknownTransactionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := in.Validate()

			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			var verr *engine.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestSimulatedInput_ExpandDedupesAndSorts(t *testing.T) {
	savings := engine.SourceSavingsPool
	in := validInput()
	in.Destination = &savings
	in.Dates = []engine.Date{
		date(2024, time.March, 3),
		date(2024, time.January, 5),
		date(2024, time.March, 3),
	}

	n := 0
	events := in.Expand(func() engine.EventID {
		n++
		return engine.EventID(fmt.Sprintf("sim-%d", n))
	})

	require.Len(t, events, 2)
	assert.Equal(t, date(2024, time.January, 5), events[0].Date)
	assert.Equal(t, date(2024, time.March, 3), events[1].Date)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	for _, ev := range events {
		assert.Equal(t, engine.KindSimulated, ev.Kind)
		require.NotNil(t, ev.Destination)
		assert.Equal(t, engine.SourceSavingsPool, *ev.Destination)
	}
	// Destinations are copied per event
	assert.NotSame(t, events[0].Destination, events[1].Destination)
}

func TestCreditDay_JSON(t *testing.T) {
	var days []engine.CreditDay
	require.NoError(t, json.Unmarshal([]byte(`["default", 10, 0, "15"]`), &days))
	assert.Equal(t, []engine.CreditDay{engine.DefaultCreditDay, 10, engine.DefaultCreditDay, 15}, days)

	out, err := json.Marshal([]engine.CreditDay{engine.DefaultCreditDay, 7})
	require.NoError(t, err)
	assert.JSONEq(t, `["default", 7]`, string(out))

	var bad engine.CreditDay
	assert.ErrorIs(t, json.Unmarshal([]byte(`40`), &bad), engine.ErrInvalidDay)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"soon"`), &bad), engine.ErrInvalidDay)
}

func TestParseEnums(t *testing.T) {
	src, err := engine.ParseAccountSource("savings_pool")
	require.NoError(t, err)
	assert.Equal(t, engine.SourceSavingsPool, src)

	_, err = engine.ParseAccountSource("wallet")
	assert.ErrorIs(t, err, engine.ErrUnknownSource)

	tt, err := engine.ParseTransactionType("credit")
	require.NoError(t, err)
	assert.Equal(t, engine.Credit, tt)
}

func TestDateSelection_Expand(t *testing.T) {
	// GIVEN: A 3-day span, a single day inside it, and a backwards span
	// THEN: Dates are flattened, deduplicated and ascending

	selections := []engine.DateSelection{
		engine.Span(date(2024, time.January, 10), date(2024, time.January, 12)),
		engine.SingleDay(date(2024, time.January, 11)),
		engine.Span(date(2024, time.January, 2), date(2024, time.January, 1)),
	}

	got, err := engine.ExpandSelections(selections)
	require.NoError(t, err)

	assert.Equal(t, []engine.Date{
		date(2024, time.January, 1),
		date(2024, time.January, 2),
		date(2024, time.January, 10),
		date(2024, time.January, 11),
		date(2024, time.January, 12),
	}, got)
}

func TestDateSelection_Rejected(t *testing.T) {
	// GIVEN: Selections with a missing start, a zero end, and an oversized span
	// THEN: Each is rejected as a validation error before expanding

	jan5 := date(2024, time.January, 5)
	tests := []struct {
		name string
		sel  engine.DateSelection
		want error
	}{
		{"missing start", engine.DateSelection{End: &jan5}, engine.ErrMissingDate},
		{"zero end", engine.Span(jan5, engine.Date{}), engine.ErrMissingDate},
		{"too long", engine.Span(jan5, jan5.AddDays(engine.MaxSelectionDays)), engine.ErrSelectionTooLong},
		{"too long backwards", engine.Span(jan5, jan5.AddDays(-engine.MaxSelectionDays)), engine.ErrSelectionTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := engine.ExpandSelections([]engine.DateSelection{tt.sel})
			assert.ErrorIs(t, err, tt.want)
			var verr *engine.ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Nil(t, dates)
		})
	}

	// The longest allowed span expands fully
	dates, err := engine.ExpandSelections([]engine.DateSelection{
		engine.Span(jan5, jan5.AddDays(engine.MaxSelectionDays-1)),
	})
	require.NoError(t, err)
	assert.Len(t, dates, engine.MaxSelectionDays)
}

func TestSimulatedInput_ZeroDateRejected(t *testing.T) {
	in := engine.SimulatedTransactionInput{
		Name:   "Rent",
		Amount: engine.NewMoney(100),
		Dates:  []engine.Date{date(2024, time.January, 5), {}},
		Type:   engine.Debit,
		Source: engine.SourceChecking,
	}
	assert.ErrorIs(t, in.Validate(), engine.ErrMissingDate)
}

func TestTransactionEvent_Validate(t *testing.T) {
	// GIVEN: A valid simulated transfer and corrupted variants of it
	// THEN: Only the valid event passes

	savings := engine.SourceSavingsPool
	valid := engine.TransactionEvent{
		ID: "e1", Name: "Save", Amount: engine.NewMoney(200),
		Date: date(2024, time.January, 15), Type: engine.Debit,
		Source: engine.SourceChecking, Destination: &savings, Kind: engine.KindSimulated,
	}
	require.NoError(t, valid.Validate())

	badType := valid
	badType.Type = "WITHDRAW"
	assert.ErrorIs(t, badType.Validate(), engine.ErrUnknownTransactionType)

	badSource := valid
	badSource.Source = "BROKERAGE"
	assert.ErrorIs(t, badSource.Validate(), engine.ErrUnknownSource)

	credit := valid
	credit.Type = engine.Credit
	assert.ErrorIs(t, credit.Validate(), engine.ErrCreditWithDestination)

	recurring := valid
	recurring.Destination = nil
	recurring.Kind = engine.KindSalary
	assert.ErrorIs(t, recurring.Validate(), engine.ErrRecurringKind)

	noDate := valid
	noDate.Date = engine.Date{}
	assert.ErrorIs(t, noDate.Validate(), engine.ErrMissingDate)
}

func TestMustParseDecimal_PanicsOnMalformed(t *testing.T) {
	assert.True(t, engine.MustParseDecimal("12.50").Equal(engine.NewMoney(12.5)))
	assert.Panics(t, func() { engine.MustParseDecimal("2.500,10") })
}

func TestRange_Basics(t *testing.T) {
	r := january2024()

	assert.Equal(t, 31, r.Len())
	assert.True(t, r.Contains(date(2024, time.January, 31)))
	assert.False(t, r.Contains(date(2024, time.February, 1)))

	inverted := engine.NewRange(r.End, r.Start)
	assert.True(t, inverted.IsEmpty())
	assert.Zero(t, inverted.Len())
	assert.Empty(t, inverted.Days())
}
