package services

import (
	"context"
	"time"

	"spendlog/internal/models"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateMonthlyBudget(ctx context.Context, id string, budget float64) (*models.User, error)
	DeleteAccount(ctx context.Context, id string) error
}

// ExpenseUpdate carries the fields of a partial expense update. Nil fields
// are left untouched.
type ExpenseUpdate struct {
	Title       *string
	Amount      *float64
	Category    *models.Category
	ExpenseDate *time.Time
}

// IsEmpty reports whether the update changes nothing.
func (u ExpenseUpdate) IsEmpty() bool {
	return u.Title == nil && u.Amount == nil && u.Category == nil && u.ExpenseDate == nil
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, userID, title string, amount float64, category models.Category, date time.Time) (*models.Expense, error)
	GetUserExpenses(ctx context.Context, userID string) ([]models.Expense, error)
	GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, update ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
}

// CategoryTotal is the summed spending of one category.
type CategoryTotal struct {
	Category   models.Category `json:"category"`
	TotalSpent float64         `json:"totalSpent"`
}

// MonthTotal is the summed spending of one calendar month.
type MonthTotal struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Total float64 `json:"total"`
}

// Dashboard bundles the aggregations shown on the overview screen.
type Dashboard struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Total      float64         `json:"total"`
	Categories []CategoryTotal `json:"categories"`
	Trend      []MonthTotal    `json:"trend"`
}

// AnalyticsServicer defines the contract for spending aggregations.
type AnalyticsServicer interface {
	MonthlyTotal(ctx context.Context, userID string, year int, month time.Month) (float64, error)
	CategorySummary(ctx context.Context, userID string) ([]CategoryTotal, error)
	SpendingTrend(ctx context.Context, userID string) ([]MonthTotal, error)
	Dashboard(ctx context.Context, userID string, year int, month time.Month) (*Dashboard, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
