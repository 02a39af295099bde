package middleware

import (
	"net/http"

	"pptx-quiz-service/internal/auth"

	"github.com/gin-gonic/gin"
)

// TokenVerifier resolves a bearer token to an account. Implemented by
// auth.IdentityClient; a stub implementation is used in tests.
type TokenVerifier interface {
	VerifyIDToken(token string) (*auth.AccountInfo, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth rejects the request with 401 before any processing unless the
// Authorization header carries a token the identity provider accepts.
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		tokenString := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "unauthorized",
				"message":    "Authentication token is required",
			})
			c.Abort()
			return
		}

		account, err := a.verifier.VerifyIDToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "invalid_token",
				"message":    "Token verification failed",
				"details":    gin.H{"error": err.Error()},
			})
			c.Abort()
			return
		}

		// Store account info in context
		c.Set("user_id", account.LocalID)
		c.Set("user_email", account.Email)

		c.Next()
	})
}

// Helper function to get user ID from context
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// CORSPreflightHandler answers OPTIONS preflight on authenticated endpoints
// with permissive headers, before auth runs.
func CORSPreflightHandler() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		if c.Request.Method == "OPTIONS" {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "POST,OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin,Content-Type,Accept,Authorization")
			c.Header("Access-Control-Max-Age", "3600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
