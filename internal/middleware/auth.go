package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"spendlog/internal/auth"
	apperrors "spendlog/internal/errors"
)

// UserIDKey is the Gin context key holding the authenticated user ID.
const UserIDKey = "userID"

// AuthMiddleware verifies the bearer token and sets the user ID in the context.
// Requests without a valid token are aborted before any handler runs.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			c.Abort()
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			_ = c.Error(apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			c.Abort()
			return
		}

		userID, err := tokens.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			_ = c.Error(apperrors.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
