// Package analytics derives dashboard statistics from a set of transactions.
// Everything here is a pure function of its inputs and is recomputed from
// the full set on every call.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// RecentLimit is the number of transactions reported in Summary.Recent.
const RecentLimit = 5

var hundred = decimal.NewFromInt(100)

// CategoryShare is the expense total of one category and its share of all
// expenses, in percent.
type CategoryShare struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// Trend holds month-over-month percentage changes.
type Trend struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Summary is the aggregate view of a transaction set.
type Summary struct {
	TotalCount        int                        `json:"total_count"`
	IncomeSum         decimal.Decimal            `json:"income_sum"`
	ExpenseSum        decimal.Decimal            `json:"expense_sum"`
	Balance           decimal.Decimal            `json:"balance"`
	CategoryBreakdown map[string]decimal.Decimal `json:"category_breakdown"`
	TopCategories     []CategoryShare            `json:"top_categories"`
	TopCategory       string                     `json:"top_category"`
	Recent            []models.Transaction       `json:"recent"`
	Trend             Trend                      `json:"trend"`
}

// Summarize aggregates txs. Calendar months are evaluated in now's location.
// The input slice is not modified.
func Summarize(txs []models.Transaction, now time.Time) Summary {
	s := Summary{
		TotalCount:        len(txs),
		IncomeSum:         decimal.Zero,
		ExpenseSum:        decimal.Zero,
		Balance:           decimal.Zero,
		CategoryBreakdown: map[string]decimal.Decimal{},
		TopCategories:     []CategoryShare{},
		Recent:            []models.Transaction{},
	}

	var order []string
	for i := range txs {
		tx := &txs[i]
		switch tx.Type {
		case models.TransactionTypeIncome:
			s.IncomeSum = s.IncomeSum.Add(tx.Amount)
		case models.TransactionTypeExpense:
			s.ExpenseSum = s.ExpenseSum.Add(tx.Amount)
			key := strings.ToLower(tx.Category)
			sum, seen := s.CategoryBreakdown[key]
			if !seen {
				order = append(order, key)
			}
			s.CategoryBreakdown[key] = sum.Add(tx.Amount)
		}
	}
	s.Balance = s.IncomeSum.Sub(s.ExpenseSum)

	s.TopCategories = rankCategories(order, s.CategoryBreakdown, s.ExpenseSum)
	if len(s.TopCategories) > 0 {
		s.TopCategory = s.TopCategories[0].Category
	}

	s.Recent = Recent(txs, RecentLimit)
	s.Trend = MonthlyTrend(txs, now)
	return s
}

// rankCategories orders categories by amount, largest first. Categories
// with equal amounts keep the order in which they were first seen.
func rankCategories(order []string, breakdown map[string]decimal.Decimal, total decimal.Decimal) []CategoryShare {
	shares := make([]CategoryShare, 0, len(order))
	for _, name := range order {
		amount := breakdown[name]
		share := CategoryShare{Category: name, Amount: amount}
		if total.IsPositive() {
			share.Percentage = amount.Div(total).Mul(hundred).InexactFloat64()
		}
		shares = append(shares, share)
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount.GreaterThan(shares[j].Amount)
	})
	return shares
}

// Recent returns up to n transactions, most recent first.
func Recent(txs []models.Transaction, n int) []models.Transaction {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp().After(sorted[j].Timestamp())
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// MonthlyTrend compares the sums of the calendar month containing now with
// the month before it, separately for income and expenses.
func MonthlyTrend(txs []models.Transaction, now time.Time) Trend {
	loc := now.Location()
	curYear, curMonth := now.Year(), now.Month()
	prevYear, prevMonth := curYear, curMonth-1
	if curMonth == time.January {
		prevYear, prevMonth = curYear-1, time.December
	}

	var curIncome, prevIncome, curExpense, prevExpense decimal.Decimal
	for i := range txs {
		tx := &txs[i]
		ts := tx.Timestamp().In(loc)
		var current bool
		switch {
		case ts.Year() == curYear && ts.Month() == curMonth:
			current = true
		case ts.Year() == prevYear && ts.Month() == prevMonth:
			current = false
		default:
			continue
		}

		switch tx.Type {
		case models.TransactionTypeIncome:
			if current {
				curIncome = curIncome.Add(tx.Amount)
			} else {
				prevIncome = prevIncome.Add(tx.Amount)
			}
		case models.TransactionTypeExpense:
			if current {
				curExpense = curExpense.Add(tx.Amount)
			} else {
				prevExpense = prevExpense.Add(tx.Amount)
			}
		}
	}

	return Trend{
		Income:  PercentChange(prevIncome, curIncome),
		Expense: PercentChange(prevExpense, curExpense),
	}
}

// PercentChange returns the change from previous to current in percent.
// A rise from nothing counts as 100%; no activity in either month is 0%.
func PercentChange(previous, current decimal.Decimal) float64 {
	switch {
	case previous.IsPositive():
		return current.Sub(previous).Div(previous).Mul(hundred).InexactFloat64()
	case current.IsPositive():
		return 100
	default:
		return 0
	}
}
