package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"mercato-backend/identity"
	"mercato-backend/logger"
	"mercato-backend/models"
	"mercato-backend/store"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Identity identity.Service
	Store    store.Store
}

var validRoles = map[string]bool{
	models.RoleAdmin:        true,
	models.RoleKitchenStaff: true,
	models.RoleFrontOfHouse: true,
	models.RoleStaff:        true,
}

// SetUserRole sets the role claim on the target identity and mirrors the
// same value into the target's profile document. The two writes are
// sequential and non-transactional, as in the system this replaces: if the
// mirror write fails after the claim was set, identity and profile disagree
// until the next successful call. Admin only; the route's middleware
// rejects other callers before any mutation.
func (h *UserHandler) SetUserRole(c *gin.Context) {
	var req struct {
		UID     string `json:"uid"`
		NewRole string `json:"newRole"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || req.UID == "" || req.NewRole == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": `The function must be called with "uid" and "newRole" arguments.`,
			"code":  "invalid-argument",
		})
		return
	}
	if !validRoles[req.NewRole] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role: " + req.NewRole, "code": "invalid-argument"})
		return
	}

	log := logger.WithComponent("roles")
	ctx := c.Request.Context()

	if err := h.Identity.SetRoleClaim(ctx, req.UID, req.NewRole); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No such user.", "code": "invalid-argument"})
			return
		}
		log.Error().Err(err).Str("uid", req.UID).Msg("setting role claim failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to set custom role.", "code": "internal"})
		return
	}

	mirror := store.SetMerge(models.UserPath(req.UID), map[string]any{"role": req.NewRole})
	if err := h.Store.BatchWrite(ctx, []store.Write{mirror}); err != nil {
		// Claim is already set and is not rolled back; see DESIGN.md.
		log.Error().Err(err).Str("uid", req.UID).Msg("mirroring role to profile failed after claim was set")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to set custom role.", "code": "internal"})
		return
	}

	msg := fmt.Sprintf("Success! User %s has been given the role of %s.", req.UID, req.NewRole)
	log.Info().Str("uid", req.UID).Str("role", req.NewRole).Msg("role updated")
	c.JSON(http.StatusOK, gin.H{"result": msg})
}

// DeleteUser removes the target's identity, profile document and
// notifications. Admin only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'uid' is required.", "code": "invalid-argument"})
		return
	}

	log := logger.WithComponent("roles")
	ctx := c.Request.Context()

	if err := h.Identity.Delete(ctx, uid); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No such user.", "code": "invalid-argument"})
			return
		}
		log.Error().Err(err).Str("uid", uid).Msg("deleting identity failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to delete user.", "code": "internal"})
		return
	}

	writes := []store.Write{store.Delete(models.UserPath(uid))}
	notifications, err := h.Store.Documents(ctx, models.NotificationsCollection(uid))
	if err == nil {
		for _, n := range notifications {
			writes = append(writes, store.Delete(n.Path))
		}
	}
	if err := h.Store.BatchWrite(ctx, writes); err != nil {
		log.Error().Err(err).Str("uid", uid).Msg("deleting profile documents failed after identity was removed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to delete user.", "code": "internal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": fmt.Sprintf("User %s deleted.", uid)})
}
