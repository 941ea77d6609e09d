package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mercato-backend/logger"
	"mercato-backend/models"
	"mercato-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ListHandler struct {
	Store store.Store
}

// GenerateLists builds the daily task list for a date: it clears every
// previously generated prep task and stock requisition for that date, then
// recreates the set from the selected dishes' template tasks and the floor
// checklist, committing everything as one all-or-nothing batch.
//
// Re-running for the same date fully supersedes the prior task set. There
// is no per-date mutual exclusion: two concurrent calls for one date can
// interleave their reads and commits and end up merging their task sets.
// Serialize generation per date key if stronger guarantees are ever needed.
func (h *ListHandler) GenerateLists(c *gin.Context) {
	var req struct {
		DateString       string   `json:"dateString"`
		SelectedDishRefs []string `json:"selectedDishRefs"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "invalid-argument"})
		return
	}
	if req.DateString == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "The function must be called with a 'dateString'.",
			"code":  "invalid-argument",
		})
		return
	}

	log := logger.WithComponent("generate-lists")
	ctx := c.Request.Context()
	now := time.Now().UTC()
	listPath := models.DailyListPath(req.DateString)

	createdBy := c.GetString("user_name")
	if createdBy == "" {
		createdBy = "Unknown User"
	}

	var writes []store.Write

	// Clear existing tasks for that day to prevent duplicates.
	for _, sub := range []string{models.SubPrepTasks, models.SubStockRequisitions} {
		old, err := h.Store.Documents(ctx, listPath+"/"+sub)
		if err != nil {
			log.Error().Err(err).Str("date", req.DateString).Msg("enumerating existing tasks failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate lists.", "code": "internal"})
			return
		}
		for _, doc := range old {
			writes = append(writes, store.Delete(doc.Path))
		}
	}

	// The root daily list document; merge so unrelated fields survive.
	writes = append(writes, store.SetMerge(listPath, map[string]any{
		"date":      req.DateString,
		"createdAt": now,
		"createdBy": createdBy,
	}))

	// Tasks from the selected dishes, in selection order. Unknown or
	// deleted dish refs are skipped, not errors.
	for _, ref := range req.SelectedDishRefs {
		dishPath := ref
		if !strings.Contains(ref, "/") {
			dishPath = models.ColDishes + "/" + ref
		}

		dish, err := h.Store.Get(ctx, dishPath)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("dish", dishPath).Msg("reading dish failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate lists.", "code": "internal"})
			return
		}
		dishName, _ := dish.Data["dishName"].(string)

		templates, err := h.Store.Documents(ctx, dishPath+"/"+models.SubPrepTasks)
		if err != nil {
			log.Error().Err(err).Str("dish", dishPath).Msg("reading dish templates failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate lists.", "code": "internal"})
			return
		}
		for _, tmpl := range templates {
			target := models.SubPrepTasks
			if isStock, _ := tmpl.Data["isStockRequisition"].(bool); isStock {
				target = models.SubStockRequisitions
			}

			data := make(map[string]any, len(tmpl.Data)+3)
			for k, v := range tmpl.Data {
				data[k] = v
			}
			data["dishName"] = dishName
			data["isCompleted"] = false
			data["createdAt"] = now

			path := fmt.Sprintf("%s/%s/%s", listPath, target, uuid.NewString())
			writes = append(writes, store.Set(path, data))
		}
	}

	// Tasks from the floor/bar checklist, independent of the selection.
	floorItems, err := h.Store.Documents(ctx, models.ColFloorChecklist, store.OrderBy("order"))
	if err != nil {
		log.Error().Err(err).Msg("reading floor checklist failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate lists.", "code": "internal"})
		return
	}
	for _, item := range floorItems {
		name, _ := item.Data["name"].(string)
		path := fmt.Sprintf("%s/%s/%s", listPath, models.SubPrepTasks, uuid.NewString())
		writes = append(writes, store.Set(path, map[string]any{
			"taskName":    name,
			"isCompleted": false,
			"createdAt":   now,
			"note":        "",
			"dishName":    "Bar",
			"category":    "Bar",
		}))
	}

	if err := h.Store.BatchWrite(ctx, writes); err != nil {
		log.Error().Err(err).Str("date", req.DateString).Msg("batch commit failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate lists.", "code": "internal"})
		return
	}

	log.Info().Str("date", req.DateString).Int("dishes", len(req.SelectedDishRefs)).Msg("generated daily lists")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Lists generated successfully."})
}
