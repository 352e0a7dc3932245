package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	"fintrack/internal/models"
)

const topSpendingLimit = 5

func renderSummary(w io.Writer, s analytics.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Balance\t%s\n", formatMoney(s.Balance))
	fmt.Fprintf(tw, "Income\t%s\t%s\n", s.IncomeSum.StringFixed(2), formatTrend(s.Trend.Income))
	fmt.Fprintf(tw, "Expenses\t%s\t%s\n", s.ExpenseSum.StringFixed(2), formatTrend(s.Trend.Expense))
	top := s.TopCategory
	if top == "" {
		top = "-"
	}
	fmt.Fprintf(tw, "Top category\t%s\n", top)
	_ = tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent transactions")
	if len(s.Recent) == 0 {
		fmt.Fprintln(w, "  no transactions yet")
	} else {
		renderList(w, s.Recent)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top spending categories")
	if len(s.TopCategories) == 0 {
		fmt.Fprintln(w, "  no expenses yet")
		return
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, share := range s.TopCategories {
		if i == topSpendingLimit {
			break
		}
		fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\t%s\n", share.Category, share.Amount.StringFixed(2), share.Percentage, bar(share.Percentage))
	}
	_ = tw.Flush()
}

func renderList(w io.Writer, txs []models.Transaction) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tCATEGORY\tAMOUNT\tID")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			tx.Timestamp().Format("2006-01-02"),
			tx.Description,
			tx.Category,
			formatMoney(tx.Signed()),
			tx.ID,
		)
	}
	_ = tw.Flush()
}

// formatMoney renders a signed amount with two decimals, e.g. -20.00.
func formatMoney(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func formatTrend(pct float64) string {
	switch {
	case pct > 0:
		return fmt.Sprintf("up %.1f%% vs last month", pct)
	case pct < 0:
		return fmt.Sprintf("down %.1f%% vs last month", -pct)
	default:
		return "flat vs last month"
	}
}

// bar draws a 20-cell gauge for a percentage.
func bar(pct float64) string {
	filled := int(pct/5 + 0.5)
	if filled > 20 {
		filled = 20
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", 20-filled)
}
