package planner

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/cashflow-planner/engine"
)

// DefaultState is the state a fresh install starts from: an empty checking
// account, no caixinhas, the two benefit vouchers credited on the default
// day, salary on the 25th and no card debt.
func DefaultState() State {
	return State{
		Checking: engine.CheckingAccount{Balance: decimal.Zero},
		Vouchers: []engine.Voucher{
			{
				ID:             uuid.NewString(),
				Label:          "Vale Refeição",
				Balance:        engine.MustParseDecimal("465.08"),
				CreditDay:      engine.DefaultCreditDay,
				StandardAmount: engine.MustParseDecimal("1173.26"),
			},
			{
				ID:             uuid.NewString(),
				Label:          "Vale Alimentação",
				Balance:        engine.MustParseDecimal("752.31"),
				CreditDay:      engine.DefaultCreditDay,
				StandardAmount: engine.MustParseDecimal("924.47"),
			},
		},
		Salary: engine.SalaryConfig{Amount: engine.MustParseDecimal("5943.48"), DayOfMonth: 25},
		Card:   engine.CreditCardConfig{NextInvoiceAmount: decimal.Zero, ClosingDay: 25},
	}
}
