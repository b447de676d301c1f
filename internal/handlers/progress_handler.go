package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/practice-service/internal/services"
	"github.com/prepflow/practice-service/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetOverview returns the practice dashboard: totals, accuracy and a per-type
// breakdown.
func (h *ProgressHandler) GetOverview(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}
	h.LogRequest(c, "Getting progress overview")

	overview, err := h.progressService.Overview(c.Request.Context(), uid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetRecentSubmissions returns the caller's latest answers.
func (h *ProgressHandler) GetRecentSubmissions(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	submissions, total, err := h.progressService.RecentSubmissions(c.Request.Context(), uid, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"total":       total,
	})
}
