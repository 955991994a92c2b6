package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"spendlog/internal/auth"
	apperrors "spendlog/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "middleware-test-secret"

func newTestRouter(tokens *auth.TokenManager) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogging(), Recovery(), ErrorHandler())
	protected := r.Group("/", AuthMiddleware(tokens))
	protected.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString(UserIDKey)})
	})
	r.GET("/boom", func(c *gin.Context) {
		panic("database exploded")
	})
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	})
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrExpenseNotFound)
	})
	return r
}

func serve(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error body: %v\nbody: %s", err, rec.Body.String())
	}
	return body.Error.Code, body.Error.Message
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	r := newTestRouter(tokens)

	t.Run("valid token sets user id", func(t *testing.T) {
		token, err := tokens.Issue("user-1")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		rec := serve(r, "/me", "Bearer "+token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var body map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["userId"] != "user-1" {
			t.Errorf("expected user-1, got %q", body["userId"])
		}
	})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(r, "/me", tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if code, _ := errorBody(t, rec); code != "UNAUTHORIZED" {
				t.Errorf("expected UNAUTHORIZED, got %s", code)
			}
		})
	}

	t.Run("token signed with another secret", func(t *testing.T) {
		foreign, _ := auth.NewTokenManager("other-secret", time.Hour).Issue("user-1")
		rec := serve(r, "/me", "Bearer "+foreign)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestErrorHandler(t *testing.T) {
	r := newTestRouter(auth.NewTokenManager(testSecret, time.Hour))

	t.Run("app error keeps its status", func(t *testing.T) {
		rec := serve(r, "/missing", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if code, _ := errorBody(t, rec); code != "EXPENSE_NOT_FOUND" {
			t.Errorf("expected EXPENSE_NOT_FOUND, got %s", code)
		}
	})

	t.Run("unexpected error hides detail", func(t *testing.T) {
		rec := serve(r, "/fail", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		code, msg := errorBody(t, rec)
		if code != "INTERNAL_ERROR" || msg != apperrors.ErrInternalServer.Message {
			t.Errorf("expected stable internal error, got %s %q", code, msg)
		}
	})
}

func TestRecovery(t *testing.T) {
	r := newTestRouter(auth.NewTokenManager(testSecret, time.Hour))

	rec := serve(r, "/boom", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	code, msg := errorBody(t, rec)
	if code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", code)
	}
	if msg == "database exploded" {
		t.Error("panic value leaked to the client")
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	r := newTestRouter(auth.NewTokenManager(testSecret, time.Hour))

	rec := serve(r, "/missing", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("X-Request-ID", "0190a5c8-1b2c-7d3e-8f40-123456789abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "0190a5c8-1b2c-7d3e-8f40-123456789abc" {
		t.Errorf("expected incoming request id reused, got %s", got)
	}
}
