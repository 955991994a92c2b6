package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "spendlog/internal/errors"
	"spendlog/internal/models"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
	return appErr
}

// AssertAppErrorIs checks err against a sentinel by code and HTTP status.
func AssertAppErrorIs(t *testing.T, err error, sentinel *apperrors.AppError) {
	t.Helper()

	appErr := AssertAppError(t, err, sentinel.Code)
	if appErr.StatusCode != sentinel.StatusCode {
		t.Errorf("expected status %d for %s, got %d", sentinel.StatusCode, sentinel.Code, appErr.StatusCode)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertExpenseAmount reloads an expense and checks its stored amount.
func AssertExpenseAmount(t *testing.T, db *gorm.DB, expenseID string, want float64) {
	t.Helper()

	var stored models.Expense
	if err := db.First(&stored, "id = ?", expenseID).Error; err != nil {
		t.Fatalf("failed to reload expense %s: %v", expenseID, err)
	}
	if stored.Amount != want {
		t.Errorf("expected stored amount %v, got %v", want, stored.Amount)
	}
}
