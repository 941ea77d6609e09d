package middleware

import (
	"net/http"
	"strings"

	"mercato-backend/models"
	"mercato-backend/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and places the caller identity
// (uid, email, name, role claim) into the request context. Every callable
// operation sits behind it; anonymous calls get an unauthenticated error
// before any handler logic runs.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You must be logged in.", "code": "unauthenticated"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format", "code": "unauthenticated"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "code": "unauthenticated"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UID)
		c.Set("user_email", claims.Email)
		c.Set("user_name", claims.Name)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// AdminMiddleware requires the caller's role claim to be Admin.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can perform this action.", "code": "permission-denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}
