// Package insights derives the month-level figures a client shows next to an
// expense list: totals, category shares, a linear projection, the budget
// comparison and short textual hints. Everything here is pure computation over
// records already fetched from the API.
package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendlog/internal/models"
)

// warningRatio is the share of the budget above which spending is flagged.
var warningRatio = decimal.NewFromFloat(0.8)

var hundred = decimal.NewFromInt(100)

// Summary is the headline figures for a set of expenses.
type Summary struct {
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// CategoryShare is one category's slice of a month's spending.
type CategoryShare struct {
	Category   models.Category `json:"category"`
	Total      float64         `json:"total"`
	Percentage float64         `json:"percentage"`
}

// Projection extrapolates the spending so far linearly to the end of the month.
type Projection struct {
	DayOfMonth     int     `json:"dayOfMonth"`
	DaysInMonth    int     `json:"daysInMonth"`
	DailyAverage   float64 `json:"dailyAverage"`
	ProjectedTotal float64 `json:"projectedTotal"`
	MonthProgress  float64 `json:"monthProgress"`
}

// BudgetStatus classifies spending against the monthly budget.
type BudgetStatus string

const (
	BudgetUnset   BudgetStatus = "unset"
	BudgetOK      BudgetStatus = "ok"
	BudgetWarning BudgetStatus = "warning"
	BudgetOver    BudgetStatus = "over"
)

// BudgetComparison relates the month's spending to the user's budget.
// Progress is PercentageUsed clamped to [0, 100] for progress bars.
type BudgetComparison struct {
	Budget         float64      `json:"budget"`
	Spent          float64      `json:"spent"`
	Remaining      float64      `json:"remaining"`
	PercentageUsed float64      `json:"percentageUsed"`
	Progress       float64      `json:"progress"`
	OverBudget     bool         `json:"overBudget"`
	Status         BudgetStatus `json:"status"`
}

// Level is the severity of an Insight.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelTip     Level = "tip"
)

// Insight is a single human-readable hint.
type Insight struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// FilterByMonth returns the expenses dated inside the given calendar month (UTC).
func FilterByMonth(expenses []models.Expense, year int, month time.Month) []models.Expense {
	start, end := models.MonthRange(year, month)
	out := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if !e.ExpenseDate.Before(start) && e.ExpenseDate.Before(end) {
			out = append(out, e)
		}
	}
	return out
}

func sum(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total
}

// Summarize computes total, count and average amount. The average is 0 for an
// empty list.
func Summarize(expenses []models.Expense) Summary {
	total := sum(expenses)
	s := Summary{Total: total.InexactFloat64(), Count: len(expenses)}
	if s.Count > 0 {
		s.Average = total.Div(decimal.NewFromInt(int64(s.Count))).InexactFloat64()
	}
	return s
}

// CategoryBreakdown groups expenses by category, ordered by total descending
// then category name. Percentages are shares of the overall total and are all
// 0 when the total is 0.
func CategoryBreakdown(expenses []models.Expense) []CategoryShare {
	totals := make(map[models.Category]decimal.Decimal)
	overall := decimal.Zero
	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		totals[e.Category] = totals[e.Category].Add(amount)
		overall = overall.Add(amount)
	}

	shares := make([]CategoryShare, 0, len(totals))
	for category, total := range totals {
		share := CategoryShare{Category: category, Total: total.InexactFloat64()}
		if !overall.IsZero() {
			share.Percentage = total.Div(overall).Mul(hundred).Round(2).InexactFloat64()
		}
		shares = append(shares, share)
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Total != shares[j].Total {
			return shares[i].Total > shares[j].Total
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

// Project extrapolates spent to the end of the month. It only applies when
// (year, month) is the month containing now; otherwise ok is false.
func Project(now time.Time, year int, month time.Month, spent float64) (Projection, bool) {
	now = now.UTC()
	if now.Year() != year || now.Month() != month {
		return Projection{}, false
	}
	day := now.Day()
	if day <= 0 {
		return Projection{}, false
	}

	days := models.DaysIn(year, month)
	daily := decimal.NewFromFloat(spent).Div(decimal.NewFromInt(int64(day)))
	return Projection{
		DayOfMonth:     day,
		DaysInMonth:    days,
		DailyAverage:   daily.InexactFloat64(),
		ProjectedTotal: daily.Mul(decimal.NewFromInt(int64(days))).InexactFloat64(),
		MonthProgress:  decimal.NewFromInt(int64(day)).Div(decimal.NewFromInt(int64(days))).Mul(hundred).InexactFloat64(),
	}, true
}

// CompareBudget relates spent to budget. A budget of 0 or less counts as unset:
// the percentage stays 0 and the spending is never over budget.
func CompareBudget(spent, budget float64) BudgetComparison {
	s := decimal.NewFromFloat(spent)
	b := decimal.NewFromFloat(budget)

	cmp := BudgetComparison{
		Budget:    budget,
		Spent:     spent,
		Remaining: b.Sub(s).InexactFloat64(),
		Status:    BudgetUnset,
	}
	if !b.IsPositive() {
		cmp.Remaining = 0
		return cmp
	}

	pct := s.Div(b).Mul(hundred)
	cmp.PercentageUsed = pct.Round(2).InexactFloat64()
	cmp.Progress = decimal.Min(decimal.Max(pct, decimal.Zero), hundred).Round(2).InexactFloat64()
	cmp.OverBudget = s.GreaterThan(b)

	switch {
	case cmp.OverBudget:
		cmp.Status = BudgetOver
	case s.GreaterThan(b.Mul(warningRatio)):
		cmp.Status = BudgetWarning
	default:
		cmp.Status = BudgetOK
	}
	return cmp
}

// Insights turns a month's expenses and budget comparison into hints.
func Insights(expenses []models.Expense, budget BudgetComparison) []Insight {
	var out []Insight

	switch budget.Status {
	case BudgetUnset:
		out = append(out, Insight{LevelInfo, "Set a monthly budget to get better spending insights."})
	case BudgetOver:
		out = append(out, Insight{LevelError, "You have exceeded your monthly budget. Consider reviewing your non-essential expenses."})
	case BudgetWarning:
		out = append(out, Insight{LevelWarning, "You've used over 80% of your budget. Slow down on discretionary spending."})
	case BudgetOK:
		out = append(out, Insight{LevelSuccess, "You're well within your budget limits this month."})
	}

	if breakdown := CategoryBreakdown(expenses); len(breakdown) > 0 {
		out = append(out, Insight{LevelTip, fmt.Sprintf("Your highest spending is on %q. Is there a way to optimize this?", breakdown[0].Category)})
	}
	return out
}
