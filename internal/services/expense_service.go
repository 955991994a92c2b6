package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "spendlog/internal/errors"
	"spendlog/internal/models"
	"spendlog/internal/store"
	"spendlog/internal/uuid"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	expenses *store.Store[models.Expense]
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{expenses: store.New[models.Expense](db)}
}

func validateAmount(amount float64) error {
	if amount < models.MinExpenseAmount {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be at least 1")
	}
	return nil
}

func validateCategory(category models.Category) error {
	if !category.IsValid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category must be one of Food, Travel, Rent, Shopping, Other")
	}
	return nil
}

// CreateExpense records a new expense owned by userID.
func (s *expenseService) CreateExpense(ctx context.Context, userID, title string, amount float64, category models.Category, date time.Time) (*models.Expense, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expenseDate is required")
	}

	expense := &models.Expense{
		UserID:      userID,
		Title:       title,
		Amount:      amount,
		Category:    category,
		ExpenseDate: models.NormalizeDate(date),
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// GetUserExpenses lists the user's expenses, most recent expense date first.
func (s *expenseService) GetUserExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	expenses, err := s.expenses.Find(ctx, store.Filter{"user_id": userID}, "expense_date DESC, created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// GetExpenseByID loads an expense and checks that userID owns it.
func (s *expenseService) GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	id, err := uuid.Parse(expenseID)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid expense id")
	}

	expense, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expense.UserID != userID {
		return nil, apperrors.ErrExpenseForbidden
	}
	return expense, nil
}

// UpdateExpense applies a partial update to an expense owned by userID.
func (s *expenseService) UpdateExpense(ctx context.Context, userID, expenseID string, update ExpenseUpdate) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return expense, nil
	}

	fields := map[string]interface{}{}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title must not be empty")
		}
		fields["title"] = title
	}
	if update.Amount != nil {
		if err := validateAmount(*update.Amount); err != nil {
			return nil, err
		}
		fields["amount"] = *update.Amount
	}
	if update.Category != nil {
		if err := validateCategory(*update.Category); err != nil {
			return nil, err
		}
		fields["category"] = *update.Category
	}
	if update.ExpenseDate != nil {
		if update.ExpenseDate.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expenseDate must not be empty")
		}
		fields["expense_date"] = models.NormalizeDate(*update.ExpenseDate)
	}

	if err := s.expenses.Update(ctx, expense, fields); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// DeleteExpense removes an expense owned by userID.
func (s *expenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	expense, err := s.GetExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.expenses.DeleteByID(ctx, expense.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
