package handlers

import (
	"net/http"

	"mercato-backend/logger"
	"mercato-backend/utils"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	// Send delegates to the SMTP transport. Tests swap it out.
	Send func(to, subject, htmlBody string) error
}

func NewEmailHandler() *EmailHandler {
	return &EmailHandler{Send: utils.SendEmail}
}

// SendOrderEmail sends a supplier order email on behalf of the caller.
// Transport failures are logged and surfaced as an internal error, never
// echoed back verbatim.
func (h *EmailHandler) SendOrderEmail(c *gin.Context) {
	var req struct {
		RecipientEmail string `json:"recipientEmail" binding:"required,email"`
		Subject        string `json:"subject" binding:"required"`
		Body           string `json:"body" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err), "code": "invalid-argument"})
		return
	}

	if err := h.Send(req.RecipientEmail, req.Subject, req.Body); err != nil {
		log := logger.WithComponent("email")
		log.Error().Err(err).Str("to", req.RecipientEmail).Msg("sending email failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error sending email.", "code": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent successfully!"})
}
