package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gpa-transcript-api/internal/middleware"
	"github.com/noah-isme/gpa-transcript-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// userIDFromContext returns the identity every record store call is scoped to.
func userIDFromContext(c *gin.Context) (string, bool) {
	if id := c.GetString(middleware.ContextUserIDKey); id != "" {
		return id, true
	}
	if claims := claimsFromContext(c); claims != nil && claims.UserID != "" {
		return claims.UserID, true
	}
	return "", false
}
