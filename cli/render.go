// Package cli renders planner projections as terminal tables.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/warp/cashflow-planner/engine"
)

// Theme colors
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorRed       = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	gainStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	lossStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. The first column is left-aligned,
// the others right-aligned.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], false) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], i > 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")
	return b.String()
}

// pad pads s to w display columns.
func pad(s string, w int, right bool) string {
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatMoney renders an amount with two decimals and comma separators,
// e.g. -1234.5 -> "-1,234.50".
func FormatMoney(d decimal.Decimal) string {
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")

	var groups []string
	for len(whole) > 3 {
		groups = append([]string{whole[len(whole)-3:]}, groups...)
		whole = whole[:len(whole)-3]
	}
	groups = append([]string{whole}, groups...)

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + strings.Join(groups, ",") + "." + frac
}

// FormatPercent renders a percentage with one decimal and an explicit sign.
func FormatPercent(p decimal.Decimal) string {
	s := p.StringFixed(1) + "%"
	if p.IsPositive() {
		return "+" + s
	}
	return s
}

func signed(d decimal.Decimal, text string) string {
	switch {
	case d.IsPositive():
		return gainStyle.Render(text)
	case d.IsNegative():
		return lossStyle.Render(text)
	default:
		return mutedStyle.Render(text)
	}
}

// =============================================================================
// PLANNER TABLES
// =============================================================================

// BalancesTable renders one row per projected day.
func BalancesTable(snaps []engine.BalanceSnapshot) string {
	t := Table{
		Title:   "Daily balances",
		Headers: []string{"Date", "Checking", "Savings", "Vouchers", "Card debt", "Total", "Net worth"},
	}
	for _, s := range snaps {
		t.Rows = append(t.Rows, []string{
			s.Date.String(),
			FormatMoney(s.Checking),
			FormatMoney(s.SavingsTotal),
			FormatMoney(s.VoucherTotal),
			FormatMoney(s.CardDebt),
			FormatMoney(s.AccountsTotal()),
			FormatMoney(s.NetWorth()),
		})
	}
	return RenderTable(t)
}

// EventsTable renders recurring or simulated events.
func EventsTable(title string, events []engine.TransactionEvent) string {
	t := Table{
		Title:   title,
		Headers: []string{"Date", "Name", "Type", "From", "To", "Amount"},
	}
	for _, ev := range events {
		dest := "-"
		if ev.Destination != nil {
			dest = string(*ev.Destination)
		}
		t.Rows = append(t.Rows, []string{
			ev.Date.String(),
			ev.Name,
			string(ev.Type),
			string(ev.Source),
			dest,
			FormatMoney(ev.SignedAmount()),
		})
	}
	return RenderTable(t)
}

// InsightsTable renders start, end, delta and variation per metric.
func InsightsTable(insights []engine.DashboardInsight) string {
	t := Table{
		Title:   "Insights",
		Headers: []string{"Metric", "Start", "End", "Change", "Variation"},
	}
	for _, in := range insights {
		t.Rows = append(t.Rows, []string{
			in.Label,
			FormatMoney(in.StartValue),
			FormatMoney(in.EndValue),
			signed(in.Delta(), FormatMoney(in.Delta())),
			signed(in.Variation(), FormatPercent(in.Variation())),
		})
	}
	return RenderTable(t)
}

// Summary is a one-line description of a range.
func Summary(r engine.Range) string {
	return mutedStyle.Render(fmt.Sprintf("%s to %s (%d days)", r.Start, r.End, r.Len()))
}
