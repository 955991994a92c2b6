// Package client provides a typed HTTP client for the Spendlog API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"spendlog/internal/models"
	"spendlog/internal/services"
)

// Session is an authenticated identity. It is passed to every protected call
// instead of being stored on the Client, so one Client can serve many users.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// APIError is a non-2xx response decoded from the API error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("spendlog api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("spendlog api: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// ExpenseInput is the body for creating an expense. ExpenseDate is YYYY-MM-DD
// or RFC 3339.
type ExpenseInput struct {
	Title       string          `json:"title"`
	Amount      float64         `json:"amount"`
	Category    models.Category `json:"category"`
	ExpenseDate string          `json:"expenseDate"`
}

// ExpenseChanges is a partial update; nil fields are left untouched.
type ExpenseChanges struct {
	Title       *string          `json:"title,omitempty"`
	Amount      *float64         `json:"amount,omitempty"`
	Category    *models.Category `json:"category,omitempty"`
	ExpenseDate *string          `json:"expenseDate,omitempty"`
}

// Client communicates with the Spendlog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", "", body, &s)
	return s, err
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", body, &s)
	return s, err
}

// Profile fetches the session user's current profile.
func (c *Client) Profile(ctx context.Context, s Session) (*models.User, error) {
	var result struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", s.Token, nil, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// SetMonthlyBudget replaces the user's monthly budget and returns the stored value.
func (c *Client) SetMonthlyBudget(ctx context.Context, s Session, budget float64) (float64, error) {
	var result struct {
		MonthlyBudget float64 `json:"monthlyBudget"`
	}
	body := map[string]float64{"monthlyBudget": budget}
	if err := c.do(ctx, http.MethodPut, "/api/v1/users/me/budget", s.Token, body, &result); err != nil {
		return 0, err
	}
	return result.MonthlyBudget, nil
}

// DeleteAccount removes the user and all of their expenses.
func (c *Client) DeleteAccount(ctx context.Context, s Session) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/users/me", s.Token, nil, nil)
}

// CreateExpense records a new expense.
func (c *Client) CreateExpense(ctx context.Context, s Session, in ExpenseInput) (*models.Expense, error) {
	var e models.Expense
	if err := c.do(ctx, http.MethodPost, "/api/v1/expenses", s.Token, in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Expenses lists every expense of the session user, most recent first.
func (c *Client) Expenses(ctx context.Context, s Session) ([]models.Expense, error) {
	var list []models.Expense
	if err := c.do(ctx, http.MethodGet, "/api/v1/expenses", s.Token, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Expense fetches one expense by id.
func (c *Client) Expense(ctx context.Context, s Session, id string) (*models.Expense, error) {
	var e models.Expense
	if err := c.do(ctx, http.MethodGet, "/api/v1/expenses/"+url.PathEscape(id), s.Token, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateExpense applies a partial update and returns the stored record.
func (c *Client) UpdateExpense(ctx context.Context, s Session, id string, changes ExpenseChanges) (*models.Expense, error) {
	var e models.Expense
	if err := c.do(ctx, http.MethodPut, "/api/v1/expenses/"+url.PathEscape(id), s.Token, changes, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteExpense removes one expense.
func (c *Client) DeleteExpense(ctx context.Context, s Session, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/expenses/"+url.PathEscape(id), s.Token, nil, nil)
}

// MonthlyTotal returns the sum of the user's expenses in the given month.
func (c *Client) MonthlyTotal(ctx context.Context, s Session, year, month int) (float64, error) {
	var result struct {
		Total float64 `json:"total"`
	}
	path := "/api/v1/expenses/monthly?" + monthQuery(year, month)
	if err := c.do(ctx, http.MethodGet, path, s.Token, nil, &result); err != nil {
		return 0, err
	}
	return result.Total, nil
}

// CategorySummary returns per-category totals over all of the user's expenses.
func (c *Client) CategorySummary(ctx context.Context, s Session) ([]services.CategoryTotal, error) {
	var result []services.CategoryTotal
	if err := c.do(ctx, http.MethodGet, "/api/v1/expenses/category-summary", s.Token, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SpendingTrend returns monthly totals for the last six months, oldest first.
func (c *Client) SpendingTrend(ctx context.Context, s Session) ([]services.MonthTotal, error) {
	var result []services.MonthTotal
	if err := c.do(ctx, http.MethodGet, "/api/v1/expenses/trends", s.Token, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Dashboard returns the combined month view. Zero year and month select the
// current month on the server.
func (c *Client) Dashboard(ctx context.Context, s Session, year, month int) (*services.Dashboard, error) {
	path := "/api/v1/expenses/dashboard"
	if year != 0 && month != 0 {
		path += "?" + monthQuery(year, month)
	}
	var d services.Dashboard
	if err := c.do(ctx, http.MethodGet, path, s.Token, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func monthQuery(year, month int) string {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	return q.Encode()
}

// do sends one request and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
