package handlers

import (
	"errors"
	"net/http"

	"mercato-backend/identity"
	"mercato-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	Identity identity.Service
}

// Login verifies credentials against the identity service and issues the
// JWT the other operations authenticate with. Account creation and role
// assignment happen through the admin operations, not here.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err), "code": "invalid-argument"})
		return
	}

	id, err := h.Identity.LookupByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "code": "unauthenticated"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed", "code": "internal"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(id.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials", "code": "unauthenticated"})
		return
	}

	token, err := utils.GenerateToken(id.UID, id.Email, id.Name, id.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token", "code": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"uid":   id.UID,
			"email": id.Email,
			"name":  id.Name,
			"role":  id.Role,
		},
	})
}

// GetProfile returns the caller's identity as seen by the middleware.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uid":   c.GetString("user_id"),
		"email": c.GetString("user_email"),
		"name":  c.GetString("user_name"),
		"role":  c.GetString("user_role"),
	})
}
