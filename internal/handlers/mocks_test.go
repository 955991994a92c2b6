package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"spendlog/internal/middleware"
	"spendlog/internal/models"
	"spendlog/internal/services"
	"spendlog/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	registerFn            func(ctx context.Context, name, email, password string) (*models.User, error)
	attemptLoginFn        func(ctx context.Context, email, password string) (*models.User, error)
	getUserByIDFn         func(ctx context.Context, id string) (*models.User, error)
	updateMonthlyBudgetFn func(ctx context.Context, id string, budget float64) (*models.User, error)
	deleteAccountFn       func(ctx context.Context, id string) error
}

func (m *mockUserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(ctx, email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) UpdateMonthlyBudget(ctx context.Context, id string, budget float64) (*models.User, error) {
	if m.updateMonthlyBudgetFn != nil {
		return m.updateMonthlyBudgetFn(ctx, id, budget)
	}
	return &models.User{MonthlyBudget: budget}, nil
}

func (m *mockUserService) DeleteAccount(ctx context.Context, id string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(ctx, id)
	}
	return nil
}

type mockExpenseService struct {
	createExpenseFn   func(ctx context.Context, userID, title string, amount float64, category models.Category, date time.Time) (*models.Expense, error)
	getUserExpensesFn func(ctx context.Context, userID string) ([]models.Expense, error)
	getExpenseByIDFn  func(ctx context.Context, userID, expenseID string) (*models.Expense, error)
	updateExpenseFn   func(ctx context.Context, userID, expenseID string, update services.ExpenseUpdate) (*models.Expense, error)
	deleteExpenseFn   func(ctx context.Context, userID, expenseID string) error
}

func (m *mockExpenseService) CreateExpense(ctx context.Context, userID, title string, amount float64, category models.Category, date time.Time) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(ctx, userID, title, amount, category, date)
	}
	return &models.Expense{UserID: userID, Title: title, Amount: amount, Category: category, ExpenseDate: date}, nil
}

func (m *mockExpenseService) GetUserExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	if m.getUserExpensesFn != nil {
		return m.getUserExpensesFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockExpenseService) GetExpenseByID(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(ctx, userID, expenseID)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}, UserID: userID}, nil
}

func (m *mockExpenseService) UpdateExpense(ctx context.Context, userID, expenseID string, update services.ExpenseUpdate) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(ctx, userID, expenseID, update)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}, UserID: userID}, nil
}

func (m *mockExpenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(ctx, userID, expenseID)
	}
	return nil
}

type mockAnalyticsService struct {
	monthlyTotalFn    func(ctx context.Context, userID string, year int, month time.Month) (float64, error)
	categorySummaryFn func(ctx context.Context, userID string) ([]services.CategoryTotal, error)
	spendingTrendFn   func(ctx context.Context, userID string) ([]services.MonthTotal, error)
	dashboardFn       func(ctx context.Context, userID string, year int, month time.Month) (*services.Dashboard, error)
}

func (m *mockAnalyticsService) MonthlyTotal(ctx context.Context, userID string, year int, month time.Month) (float64, error) {
	if m.monthlyTotalFn != nil {
		return m.monthlyTotalFn(ctx, userID, year, month)
	}
	return 0, nil
}

func (m *mockAnalyticsService) CategorySummary(ctx context.Context, userID string) ([]services.CategoryTotal, error) {
	if m.categorySummaryFn != nil {
		return m.categorySummaryFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockAnalyticsService) SpendingTrend(ctx context.Context, userID string) ([]services.MonthTotal, error) {
	if m.spendingTrendFn != nil {
		return m.spendingTrendFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockAnalyticsService) Dashboard(ctx context.Context, userID string, year int, month time.Month) (*services.Dashboard, error) {
	if m.dashboardFn != nil {
		return m.dashboardFn(ctx, userID, year, month)
	}
	return &services.Dashboard{Year: year, Month: int(month)}, nil
}

type auditEntry struct {
	userID, action, resourceType, resourceID string
}

type mockAuditService struct {
	entries []auditEntry
}

func (m *mockAuditService) Log(_ context.Context, userID, action, resourceType, resourceID, _ string, _ map[string]interface{}) {
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID})
}

// --- test helpers ---

const (
	testUserID    = "0190a5c8-0000-7000-8000-000000000001"
	testExpenseID = "0190a5c8-0000-7000-8000-0000000000e1"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func parseJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var result []interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
