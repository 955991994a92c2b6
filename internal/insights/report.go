package insights

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"spendlog/internal/models"
)

// Report is everything a client shows for one month.
type Report struct {
	Year       int              `json:"year"`
	Month      time.Month       `json:"month"`
	Summary    Summary          `json:"summary"`
	Categories []CategoryShare  `json:"categories"`
	Projection *Projection      `json:"projection,omitempty"`
	Budget     BudgetComparison `json:"budget"`
	Insights   []Insight        `json:"insights"`
}

// BuildReport filters expenses to (year, month) and derives every metric for
// that month. now decides whether a projection applies.
func BuildReport(expenses []models.Expense, monthlyBudget float64, year int, month time.Month, now time.Time) Report {
	monthly := FilterByMonth(expenses, year, month)
	summary := Summarize(monthly)
	budget := CompareBudget(summary.Total, monthlyBudget)

	r := Report{
		Year:       year,
		Month:      month,
		Summary:    summary,
		Categories: CategoryBreakdown(monthly),
		Budget:     budget,
		Insights:   Insights(monthly, budget),
	}
	if p, ok := Project(now, year, month, summary.Total); ok {
		r.Projection = &p
	}
	return r
}

// Render writes r as plain text.
func (r Report) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s %d\n\n", r.Month, r.Year)
	fmt.Fprintf(tw, "Total spent\t%.2f\n", r.Summary.Total)
	fmt.Fprintf(tw, "Expenses\t%d\n", r.Summary.Count)
	fmt.Fprintf(tw, "Average\t%.2f\n", r.Summary.Average)

	if r.Budget.Status != BudgetUnset {
		fmt.Fprintf(tw, "Budget\t%.2f (%.0f%% used, %.2f remaining)\n", r.Budget.Budget, r.Budget.PercentageUsed, r.Budget.Remaining)
	}
	if r.Projection != nil {
		fmt.Fprintf(tw, "Projected\t%.2f (day %d of %d)\n", r.Projection.ProjectedTotal, r.Projection.DayOfMonth, r.Projection.DaysInMonth)
	}

	if len(r.Categories) > 0 {
		fmt.Fprintln(tw, "\nCategory\tTotal\tShare")
		for _, c := range r.Categories {
			fmt.Fprintf(tw, "%s\t%.2f\t%.1f%%\n", c.Category, c.Total, c.Percentage)
		}
	}

	if len(r.Insights) > 0 {
		fmt.Fprintln(tw)
		for _, in := range r.Insights {
			fmt.Fprintf(tw, "[%s] %s\n", in.Level, in.Text)
		}
	}
	return tw.Flush()
}
