package engine

import "github.com/shopspring/decimal"

// =============================================================================
// MONEY POOLS - Caller-owned account records
// =============================================================================

type CheckingAccount struct {
	Balance decimal.Decimal
}

// Caixinha is a named savings sub-account. All caixinhas together form the
// SAVINGS_POOL source.
type Caixinha struct {
	ID      string
	Name    string
	Balance decimal.Decimal
}

// Voucher is a prepaid benefit card credited StandardAmount once a month.
type Voucher struct {
	ID             string
	Label          string
	Balance        decimal.Decimal
	CreditDay      CreditDay
	StandardAmount decimal.Decimal
}

// =============================================================================
// SINGLETON CONFIGURATION - Replaced wholesale on update
// =============================================================================

type SalaryConfig struct {
	Amount     decimal.Decimal
	DayOfMonth int
}

// CreditCardConfig holds the amount of the next invoice and the day it is
// paid from checking.
type CreditCardConfig struct {
	NextInvoiceAmount decimal.Decimal
	ClosingDay        int
}

// =============================================================================
// AGGREGATION
// =============================================================================

func SumCaixinhas(cs []Caixinha) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cs {
		total = total.Add(c.Balance)
	}
	return total
}

func SumVouchers(vs []Voucher) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vs {
		total = total.Add(v.Balance)
	}
	return total
}

// OpeningBalances is where every projection starts from: the current pool
// values, with the card owing its next invoice.
func OpeningBalances(checking CheckingAccount, caixinhas []Caixinha, vouchers []Voucher, card CreditCardConfig) Balances {
	return Balances{
		Checking:     checking.Balance,
		SavingsTotal: SumCaixinhas(caixinhas),
		VoucherTotal: SumVouchers(vouchers),
		CardDebt:     card.NextInvoiceAmount,
	}
}
