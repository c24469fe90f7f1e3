package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// METRICS - Named projections of a snapshot onto one number
// =============================================================================

type Metric string

const (
	MetricTotal    Metric = "total" // checking + savings
	MetricChecking Metric = "checking"
	MetricSavings  Metric = "savings"
	MetricVouchers Metric = "vouchers"
	MetricCardDebt Metric = "card_debt"
	MetricNetWorth Metric = "net_worth"
)

var metricLabels = map[Metric]string{
	MetricTotal:    "Total",
	MetricChecking: "Checking",
	MetricSavings:  "Savings",
	MetricVouchers: "Vouchers",
	MetricCardDebt: "Card debt",
	MetricNetWorth: "Net worth",
}

func (m Metric) Label() string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return string(m)
}

// ParseMetric accepts a metric name; empty means total.
func ParseMetric(s string) (Metric, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MetricTotal, nil
	}
	m := Metric(s)
	if _, ok := metricLabels[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return m, nil
}

// Value extracts the metric from a snapshot.
func (m Metric) Value(s BalanceSnapshot) decimal.Decimal {
	switch m {
	case MetricTotal:
		return s.AccountsTotal()
	case MetricChecking:
		return s.Checking
	case MetricSavings:
		return s.SavingsTotal
	case MetricVouchers:
		return s.VoucherTotal
	case MetricCardDebt:
		return s.CardDebt
	case MetricNetWorth:
		return s.NetWorth()
	}
	return decimal.Zero
}

// =============================================================================
// FOCUS - Which metrics a dashboard tab shows, in display order
// =============================================================================

type Focus string

const (
	FocusAccounts Focus = "accounts"
	FocusVouchers Focus = "vouchers"
	FocusAll      Focus = "all"
)

func (f Focus) Metrics() []Metric {
	switch f {
	case FocusAccounts:
		return []Metric{MetricTotal, MetricChecking, MetricSavings}
	case FocusVouchers:
		return []Metric{MetricVouchers}
	default:
		return []Metric{MetricTotal, MetricChecking, MetricSavings, MetricVouchers}
	}
}

// ParseFocus accepts a focus name; empty means all.
func ParseFocus(s string) (Focus, error) {
	switch f := Focus(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FocusAll, nil
	case FocusAccounts, FocusVouchers, FocusAll:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFocus, s)
}

// =============================================================================
// DASHBOARD INSIGHT - First vs last snapshot of one metric
// =============================================================================

type DashboardInsight struct {
	Label      string
	Metric     Metric
	StartValue decimal.Decimal
	EndValue   decimal.Decimal
}

func (i DashboardInsight) Delta() decimal.Decimal {
	return i.EndValue.Sub(i.StartValue)
}

// Variation is the percentage change from start to end, zero when the
// start value is zero.
func (i DashboardInsight) Variation() decimal.Decimal {
	return PercentageChange(i.StartValue, i.EndValue)
}

// PercentageChange is (to-from)/from*100, or zero when from is zero.
func PercentageChange(from, to decimal.Decimal) decimal.Decimal {
	if from.IsZero() {
		return decimal.Zero
	}
	return to.Sub(from).Div(from).Mul(decimal.NewFromInt(100))
}

// Insights compares the first and last snapshot for each metric of focus.
func Insights(snapshots []BalanceSnapshot, focus Focus) []DashboardInsight {
	if len(snapshots) == 0 {
		return []DashboardInsight{}
	}
	first, last := snapshots[0], snapshots[len(snapshots)-1]

	metrics := focus.Metrics()
	out := make([]DashboardInsight, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, DashboardInsight{
			Label:      m.Label(),
			Metric:     m,
			StartValue: m.Value(first),
			EndValue:   m.Value(last),
		})
	}
	return out
}

// =============================================================================
// VARIATION SERIES - Per-day change for charting
// =============================================================================

type VariationPoint struct {
	Date       Date
	Value      decimal.Decimal
	VsInitial  decimal.Decimal
	VsPrevious decimal.Decimal
}

// VariationSeries reports, for every snapshot, the metric's percentage change
// against the first day and against the previous day. The first point's
// VsPrevious is zero.
func VariationSeries(snapshots []BalanceSnapshot, metric Metric) []VariationPoint {
	out := make([]VariationPoint, 0, len(snapshots))
	if len(snapshots) == 0 {
		return out
	}
	initial := metric.Value(snapshots[0])
	previous := initial
	for _, s := range snapshots {
		v := metric.Value(s)
		out = append(out, VariationPoint{
			Date:       s.Date,
			Value:      v,
			VsInitial:  PercentageChange(initial, v),
			VsPrevious: PercentageChange(previous, v),
		})
		previous = v
	}
	return out
}
