package actionitems

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"radar-backend/internal/shared/server/respond"
)

// Handler serves action-item reads and the completion toggle.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches action-item routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analyses/:id/action-items", h.listItems)
	rg.PATCH("/action-items/:id", h.toggleItem)
}

func (h *Handler) listItems(c *gin.Context) {
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}
	items, err := h.Repo.ListByAnalysis(c.Request.Context(), analysisID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list action items", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"items":      items,
		"completion": CompletionBySection(items),
	})
}

func (h *Handler) toggleItem(c *gin.Context) {
	itemID := c.Param("id")
	if itemID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "item id is required", nil)
		return
	}
	var body struct {
		Completed *bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Completed == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "completed boolean is required", nil)
		return
	}
	if err := h.Repo.SetCompleted(c.Request.Context(), itemID, *body.Completed); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "action item not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update action item", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"id": itemID, "completed": *body.Completed})
}
