package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "spendlog/internal/errors"
	"spendlog/internal/models"
	"spendlog/internal/store"
)

// TrendMonths is the number of calendar months covered by the spending trend,
// including the current one.
const TrendMonths = 6

// analyticsService computes per-user spending aggregations.
type analyticsService struct {
	expenses *store.Store[models.Expense]
	now      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB) AnalyticsServicer {
	return &analyticsService{expenses: store.New[models.Expense](db), now: time.Now}
}

func validateMonth(year int, month time.Month) error {
	if month < time.January || month > time.December {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "year is out of range")
	}
	return nil
}

// MonthlyTotal sums the user's expenses dated within the given month. It is 0
// when nothing matches.
func (s *analyticsService) MonthlyTotal(ctx context.Context, userID string, year int, month time.Month) (float64, error) {
	if err := validateMonth(year, month); err != nil {
		return 0, err
	}

	start, end := models.MonthRange(year, month)
	var total float64
	err := s.expenses.Aggregate(ctx, &total, func(q *gorm.DB) *gorm.DB {
		return q.Select("COALESCE(SUM(amount), 0)").
			Where("user_id = ? AND expense_date >= ? AND expense_date < ?", userID, start, end)
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// CategorySummary sums the user's expenses per category, largest first.
// Categories without expenses are omitted.
func (s *analyticsService) CategorySummary(ctx context.Context, userID string) ([]CategoryTotal, error) {
	totals := []CategoryTotal{}
	err := s.expenses.Aggregate(ctx, &totals, func(q *gorm.DB) *gorm.DB {
		return q.Select("category, SUM(amount) AS total_spent").
			Where("user_id = ?", userID).
			Group("category").
			Order("total_spent DESC, category ASC")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return totals, nil
}

// SpendingTrend sums the user's expenses per calendar month over the current
// month and the five before it, oldest first. Months without expenses are omitted.
func (s *analyticsService) SpendingTrend(ctx context.Context, userID string) ([]MonthTotal, error) {
	now := s.now().UTC()
	current, next := models.MonthRange(now.Year(), now.Month())
	start := current.AddDate(0, -(TrendMonths - 1), 0)

	yearExpr, monthExpr := periodColumns(s.expenses.Dialect())
	trend := []MonthTotal{}
	err := s.expenses.Aggregate(ctx, &trend, func(q *gorm.DB) *gorm.DB {
		return q.Select(yearExpr+" AS year, "+monthExpr+" AS month, SUM(amount) AS total").
			Where("user_id = ? AND expense_date >= ? AND expense_date < ?", userID, start, next).
			Group("year, month").
			Order("year ASC, month ASC")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return trend, nil
}

// Dashboard runs the monthly total, category summary and trend concurrently.
func (s *analyticsService) Dashboard(ctx context.Context, userID string, year int, month time.Month) (*Dashboard, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}

	result := &Dashboard{Year: year, Month: int(month)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.MonthlyTotal(gctx, userID, year, month)
		result.Total = total
		return err
	})
	g.Go(func() error {
		categories, err := s.CategorySummary(gctx, userID)
		result.Categories = categories
		return err
	})
	g.Go(func() error {
		trend, err := s.SpendingTrend(gctx, userID)
		result.Trend = trend
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// periodColumns returns SQL expressions extracting the calendar year and
// month of expense_date for the given dialect.
func periodColumns(dialect string) (string, string) {
	if dialect == "postgres" {
		return "CAST(EXTRACT(YEAR FROM expense_date AT TIME ZONE 'UTC') AS INTEGER)", "CAST(EXTRACT(MONTH FROM expense_date AT TIME ZONE 'UTC') AS INTEGER)"
	}
	return "CAST(strftime('%Y', expense_date) AS INTEGER)", "CAST(strftime('%m', expense_date) AS INTEGER)"
}
