package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spendlog/internal/auth"
	"spendlog/internal/logger"
	"spendlog/internal/models"
	"spendlog/internal/testutil"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	router := NewRouter(Deps{
		DB:     db,
		Tokens: auth.NewTokenManager("integration-secret", time.Hour),
		Hasher: auth.NewPasswordHasher(bcrypt.MinCost),
	})
	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func parseJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, name, email, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":%q}`, name, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// createExpense creates an expense and returns its ID.
func (app *testApp) createExpense(t *testing.T, token, title string, amount float64, category, date string) string {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"amount":%v,"category":%q,"expenseDate":%q}`, title, amount, category, date)
	rec := app.request("POST", "/api/v1/expenses", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(string)
}

func TestExampleScenario(t *testing.T) {
	app := setupApp(t)

	token, _ := app.registerUser(t, "Ann", "a@x.com", "secret")
	if token == "" {
		t.Fatal("expected token")
	}

	app.createExpense(t, token, "Coffee", 5, "Food", "2024-03-01")

	rec := app.request("GET", "/api/v1/expenses/monthly?year=2024&month=3", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("monthly total: %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != `{"total":5}` {
		t.Errorf("expected {\"total\":5}, got %s", got)
	}

	// Same query again with no writes in between.
	again := app.request("GET", "/api/v1/expenses/monthly?year=2024&month=3", "", token)
	if again.Body.String() != rec.Body.String() {
		t.Errorf("expected identical repeated result, got %s then %s", rec.Body.String(), again.Body.String())
	}

	rec = app.request("GET", "/api/v1/expenses/category-summary", "", token)
	if got := rec.Body.String(); got != `[{"category":"Food","totalSpent":5}]` {
		t.Errorf("unexpected category summary %s", got)
	}

	for _, query := range []string{"year=2024&month=13", "year=2024&month=0", "year=0&month=3"} {
		rec = app.request("GET", "/api/v1/expenses/monthly?"+query, "", token)
		if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_INPUT" {
			t.Errorf("%s: expected 400 INVALID_INPUT, got %d %s", query, rec.Code, rec.Body.String())
		}
	}
}

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "Bob", "bob@x.com", "hunter22")

	t.Run("login succeeds", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/auth/login", `{"email":"bob@x.com","password":"hunter22"}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		token := parseJSON(t, rec)["token"].(string)

		rec = app.request("GET", "/api/v1/users/me", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected profile, got %d", rec.Code)
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["email"] != "bob@x.com" || user["monthlyBudget"] != float64(0) {
			t.Errorf("unexpected profile %v", user)
		}
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		wrong := app.request("POST", "/api/v1/auth/login", `{"email":"bob@x.com","password":"nope"}`, "")
		unknown := app.request("POST", "/api/v1/auth/login", `{"email":"who@x.com","password":"nope"}`, "")
		if wrong.Code != http.StatusBadRequest || unknown.Code != http.StatusBadRequest {
			t.Fatalf("expected 400s, got %d and %d", wrong.Code, unknown.Code)
		}
		if wrong.Body.String() != unknown.Body.String() {
			t.Errorf("expected identical bodies, got %s vs %s", wrong.Body.String(), unknown.Body.String())
		}
	})

	t.Run("duplicate email is 409", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/auth/register", `{"name":"Bob2","email":"BOB@x.com","password":"x"}`, "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		if code := errorCode(t, rec); code != "DUPLICATE_EMAIL" {
			t.Errorf("expected DUPLICATE_EMAIL, got %s", code)
		}
	})

	t.Run("overlong password is a validation error", func(t *testing.T) {
		body := fmt.Sprintf(`{"name":"Ann","email":"long@x.com","password":%q}`, strings.Repeat("a", 100))
		rec := app.request("POST", "/api/v1/auth/register", body, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		if code := errorCode(t, rec); code != "INVALID_INPUT" {
			t.Errorf("expected INVALID_INPUT, got %s", code)
		}
	})

	t.Run("multibyte password over 72 bytes is a validation error", func(t *testing.T) {
		body := fmt.Sprintf(`{"name":"Ann","email":"wide@x.com","password":%q}`, strings.Repeat("é", 40))
		rec := app.request("POST", "/api/v1/auth/register", body, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("protected routes require a token", func(t *testing.T) {
		for _, path := range []string{"/api/v1/users/me", "/api/v1/expenses", "/api/v1/expenses/trends"} {
			rec := app.request("GET", path, "", "")
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("%s: expected 401, got %d", path, rec.Code)
			}
		}
		rec := app.request("GET", "/api/v1/expenses", "", "garbage")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for garbage token, got %d", rec.Code)
		}
	})
}

func TestExpenseFlow_Ownership(t *testing.T) {
	app := setupApp(t)
	ownerToken, _ := app.registerUser(t, "Owner", "owner@x.com", "pw")
	otherToken, _ := app.registerUser(t, "Other", "other@x.com", "pw")

	id := app.createExpense(t, ownerToken, "Groceries", 42, "Food", "2024-04-02")

	rec := app.request("PUT", "/api/v1/expenses/"+id, `{"amount":1}`, otherToken)
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "EXPENSE_FORBIDDEN" {
		t.Fatalf("expected 401 EXPENSE_FORBIDDEN, got %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("DELETE", "/api/v1/expenses/"+id, "", otherToken)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/expenses/"+id, "", ownerToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if amount := parseJSON(t, rec)["amount"]; amount != float64(42) {
		t.Errorf("expected untouched amount 42, got %v", amount)
	}

	other := app.request("GET", "/api/v1/expenses", "", otherToken)
	if list := parseJSONArray(t, other); len(list) != 0 {
		t.Errorf("expected other user's list to be empty, got %d", len(list))
	}

	rec = app.request("PUT", "/api/v1/expenses/"+id, `{"title":"Weekly groceries"}`, ownerToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)
	if updated["title"] != "Weekly groceries" || updated["amount"] != float64(42) || updated["category"] != "Food" {
		t.Errorf("partial update changed other fields: %v", updated)
	}

	rec = app.request("PUT", "/api/v1/expenses/"+id, `{"amount":0}`, ownerToken)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for zero amount, got %d", rec.Code)
	}

	rec = app.request("DELETE", "/api/v1/expenses/"+id, "", ownerToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = app.request("DELETE", "/api/v1/expenses/"+id, "", ownerToken)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
	rec = app.request("GET", "/api/v1/expenses/not-a-uuid", "", ownerToken)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestExpenseFlow_ListOrder(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "Lister", "list@x.com", "pw")

	app.createExpense(t, token, "Old", 1, "Other", "2024-01-01")
	app.createExpense(t, token, "New", 2, "Other", "2024-05-01")
	app.createExpense(t, token, "Mid", 3, "Other", "2024-03-01")

	list := parseJSONArray(t, app.request("GET", "/api/v1/expenses", "", token))
	if len(list) != 3 {
		t.Fatalf("expected 3, got %d", len(list))
	}
	got := []string{list[0]["title"].(string), list[1]["title"].(string), list[2]["title"].(string)}
	if strings.Join(got, ",") != "New,Mid,Old" {
		t.Errorf("expected New,Mid,Old, got %v", got)
	}
}

func TestAccountDeletion_CascadesExpenses(t *testing.T) {
	app := setupApp(t)
	token, userID := app.registerUser(t, "Leaver", "leave@x.com", "pw")
	for i := 0; i < 3; i++ {
		app.createExpense(t, token, fmt.Sprintf("E%d", i), 10, "Shopping", "2024-02-10")
	}

	rec := app.request("DELETE", "/api/v1/users/me", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var count int64
	app.DB.Model(&models.Expense{}).Where("user_id = ?", userID).Count(&count)
	if count != 0 {
		t.Errorf("expected no expenses left, got %d", count)
	}

	// The token is still cryptographically valid; the account behind it is gone.
	rec = app.request("GET", "/api/v1/expenses", "", token)
	if list := parseJSONArray(t, rec); len(list) != 0 {
		t.Errorf("expected empty list after deletion, got %d", len(list))
	}
	rec = app.request("GET", "/api/v1/users/me", "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for deleted profile, got %d", rec.Code)
	}
}

func TestBudgetAndDashboard(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "Planner", "plan@x.com", "pw")

	rec := app.request("PUT", "/api/v1/users/me/budget", `{"monthlyBudget":400}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["monthlyBudget"]; got != float64(400) {
		t.Errorf("expected 400, got %v", got)
	}

	now := time.Now().UTC()
	today := now.Format(models.DateLayout)
	app.createExpense(t, token, "Dinner", 30, "Food", today)
	app.createExpense(t, token, "Train", 20, "Travel", today)

	rec = app.request("GET", "/api/v1/expenses/dashboard", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	dash := parseJSON(t, rec)
	if dash["total"] != float64(50) {
		t.Errorf("expected total 50, got %v", dash["total"])
	}
	if cats := dash["categories"].([]interface{}); len(cats) != 2 {
		t.Errorf("expected 2 categories, got %d", len(cats))
	}
	trend := dash["trend"].([]interface{})
	if len(trend) != 1 {
		t.Fatalf("expected one trend bucket, got %v", trend)
	}
	bucket := trend[0].(map[string]interface{})
	if bucket["year"] != float64(now.Year()) || bucket["month"] != float64(now.Month()) || bucket["total"] != float64(50) {
		t.Errorf("unexpected bucket %v", bucket)
	}

	rec = app.request("GET", "/api/v1/expenses/trends", "", token)
	if len(parseJSONArray(t, rec)) != 1 {
		t.Errorf("expected one trend bucket, got %s", rec.Body.String())
	}
}

func TestHealthAndDocs(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/health", "", "")
	if rec.Code != http.StatusOK || parseJSON(t, rec)["status"] != "ok" {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/swagger/doc.json", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/expenses/monthly") {
		t.Errorf("expected swagger document, got %d", rec.Code)
	}
}

func TestWithCORS(t *testing.T) {
	app := setupApp(t)
	handler := WithCORS(app.Router, []string{"http://app.test"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/expenses", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://app.test" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for unknown origin, got %q", got)
	}
}
