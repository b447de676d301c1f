package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/practice-service/internal/services"
	"github.com/prepflow/practice-service/internal/utils"
)

type AIHandler struct {
	BaseHandler
	aiService services.AIService
}

func NewAIHandler(aiService services.AIService, logger utils.Logger) *AIHandler {
	return &AIHandler{
		BaseHandler: NewBaseHandler(logger),
		aiService:   aiService,
	}
}

// Chat sends one tutor-chat turn and returns the assistant's reply.
func (h *AIHandler) Chat(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Tutor chat message")

	reply, err := h.aiService.TutorChat(c.Request.Context(), uid, req.Message)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// ChatHistory returns the caller's recent chat turns in chronological order.
func (h *AIHandler) ChatHistory(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	limit := parseIntQuery(c, "limit", 0)
	messages, err := h.aiService.ChatHistory(c.Request.Context(), uid, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GenerateStudyPlan creates and stores a plan from onboarding inputs.
func (h *AIHandler) GenerateStudyPlan(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	var req services.StudyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Generating study plan", "target_score", req.TargetScore)

	plan, err := h.aiService.GenerateStudyPlan(c.Request.Context(), uid, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetStudyPlan returns the caller's most recent plan.
func (h *AIHandler) GetStudyPlan(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	plan, err := h.aiService.LatestStudyPlan(c.Request.Context(), uid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// AnalyzeQuestion returns a worked explanation for one bank question.
func (h *AIHandler) AnalyzeQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Analyzing question", "question_id", id)

	analysis, err := h.aiService.AnalyzeQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}
