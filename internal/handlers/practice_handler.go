package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/practice-service/internal/services"
	"github.com/prepflow/practice-service/internal/utils"
)

// PracticeHandler exposes the per-user practice session: one question at a
// time, selections, submit and explicit advance.
type PracticeHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewPracticeHandler(sessionService services.SessionService, logger utils.Logger) *PracticeHandler {
	return &PracticeHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// StartSession begins (or restarts) the caller's practice session on the next
// unanswered question.
func (h *PracticeHandler) StartSession(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}
	h.LogRequest(c, "Starting practice session")

	view, err := h.sessionService.Start(c.Request.Context(), uid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetSession returns the current session snapshot.
func (h *PracticeHandler) GetSession(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	view, err := h.sessionService.Get(c.Request.Context(), uid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SelectOption records a single-choice selection for the displayed question.
func (h *PracticeHandler) SelectOption(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	var req struct {
		OptionID string `json:"option_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.sessionService.Select(c.Request.Context(), uid, req.OptionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SelectCell records a grid or two-part cell selection.
func (h *PracticeHandler) SelectCell(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	var req struct {
		RowIndex    int `json:"row_index"`
		ColumnIndex int `json:"column_index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.sessionService.SelectGrid(c.Request.Context(), uid, req.RowIndex, req.ColumnIndex)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SubmitAnswer grades and persists the pending answer. Within a composite the
// session moves to the next sub-question; otherwise it waits for Advance.
func (h *PracticeHandler) SubmitAnswer(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}
	h.LogRequest(c, "Submitting answer")

	view, err := h.sessionService.Submit(c.Request.Context(), uid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Advance moves to the next question after a submit.
func (h *PracticeHandler) Advance(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	view, err := h.sessionService.Advance(c.Request.Context(), uid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PracticeHandler) PauseTimer(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	view, err := h.sessionService.Pause(c.Request.Context(), uid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PracticeHandler) ResumeTimer(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	view, err := h.sessionService.Resume(c.Request.Context(), uid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// EndSession tears down the caller's session and its timer.
func (h *PracticeHandler) EndSession(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}
	h.LogRequest(c, "Ending practice session")

	h.sessionService.Close(uid)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session ended"})
}
