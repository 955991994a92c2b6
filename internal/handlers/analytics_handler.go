package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendlog/internal/errors"
	"spendlog/internal/services"
)

// AnalyticsHandler serves the spending aggregations.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// MonthlyTotalResponse is the summed spending of one month.
type MonthlyTotalResponse struct {
	Total float64 `json:"total"`
}

// GetMonthlyTotal returns the user's total for a calendar month.
// @Summary     Monthly total
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int true "Year"
// @Param       month query int true "Month (1-12)"
// @Success     200 {object} MonthlyTotalResponse "Total spent"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/monthly [get]
func (h *AnalyticsHandler) GetMonthlyTotal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, month, err := monthParams(c, true)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.analyticsService.MonthlyTotal(c.Request.Context(), userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MonthlyTotalResponse{Total: total})
}

// GetCategorySummary returns the user's all-time spending per category.
// @Summary     Category summary
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.CategoryTotal "Totals per category, largest first"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/category-summary [get]
func (h *AnalyticsHandler) GetCategorySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.analyticsService.CategorySummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if summary == nil {
		summary = []services.CategoryTotal{}
	}

	c.JSON(http.StatusOK, summary)
}

// GetSpendingTrend returns per-month totals for the last six months.
// @Summary     Spending trend
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.MonthTotal "Totals per month, oldest first"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/trends [get]
func (h *AnalyticsHandler) GetSpendingTrend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	trend, err := h.analyticsService.SpendingTrend(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if trend == nil {
		trend = []services.MonthTotal{}
	}

	c.JSON(http.StatusOK, trend)
}

// GetDashboard returns the monthly total, category summary and trend in one call.
// @Summary     Dashboard
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Year (defaults to the current month)"
// @Param       month query int false "Month (1-12)"
// @Success     200 {object} services.Dashboard "Dashboard aggregates"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	year, month, err := monthParams(c, false)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.analyticsService.Dashboard(c.Request.Context(), userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// monthParams reads year and month query parameters. When required is false
// a missing pair defaults to the current UTC month. Range checks are left to
// the analytics service.
func monthParams(c *gin.Context, required bool) (int, time.Month, error) {
	var q struct {
		Year  *int `form:"year"`
		Month *int `form:"month"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		return 0, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "year and month must be integers")
	}
	if q.Year == nil || q.Month == nil {
		if required || q.Year != nil || q.Month != nil {
			return 0, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "year and month are required")
		}
		now := time.Now().UTC()
		return now.Year(), now.Month(), nil
	}
	return *q.Year, time.Month(*q.Month), nil
}
