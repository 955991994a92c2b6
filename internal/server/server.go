// Package server assembles the HTTP API: services, handlers, middleware and routes.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"spendlog/internal/auth"
	_ "spendlog/internal/docs" // swagger docs
	"spendlog/internal/handlers"
	"spendlog/internal/middleware"
	"spendlog/internal/services"
	"spendlog/internal/validator"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	DB     *gorm.DB
	Tokens *auth.TokenManager
	Hasher *auth.PasswordHasher
}

// NewRouter wires services and handlers onto a Gin engine.
func NewRouter(deps Deps) *gin.Engine {
	validator.Register()

	db := deps.DB
	userService := services.NewUserService(db, deps.Hasher)
	expenseService := services.NewExpenseService(db)
	analyticsService := services.NewAnalyticsService(db)
	auditService := services.NewAuditService(db)

	authHandler := handlers.NewAuthHandler(userService, auditService, deps.Tokens)
	userHandler := handlers.NewUserHandler(userService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	router := gin.New()
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	authRoutes := v1.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))

	me := protected.Group("/users/me")
	me.GET("", userHandler.GetProfile)
	me.PUT("/budget", userHandler.UpdateBudget)
	me.DELETE("", userHandler.DeleteAccount)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/monthly", analyticsHandler.GetMonthlyTotal)
	expenses.GET("/category-summary", analyticsHandler.GetCategorySummary)
	expenses.GET("/trends", analyticsHandler.GetSpendingTrend)
	expenses.GET("/dashboard", analyticsHandler.GetDashboard)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	return router
}

// WithCORS wraps handler with CORS headers for the given origins. A "*"
// entry allows any origin without credentials.
func WithCORS(handler http.Handler, allowedOrigins []string) http.Handler {
	allowCredentials := true
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowCredentials = false
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           600,
	}).Handler(handler)
}

// NewHTTPServer returns an http.Server with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
