package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
	"github.com/prepflow/practice-service/internal/services"
	"github.com/prepflow/practice-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	importExport    services.ImportExportService
	validator       *utils.Validator
}

func NewQuestionHandler(
	questionService services.QuestionService,
	importExport services.ImportExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		importExport:    importExport,
		validator:       validator,
	}
}

// CreateQuestion creates a new bank question
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.questionService.Create(c.Request.Context(), &question); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves one question with its sub-questions. The answer key
// never leaves the service.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Getting question", "question_id", id)

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// GetRenderedQuestion returns the display-ready projection of one question:
// passage sources grouped by tab index and every block rendered to a node tree.
func (h *QuestionHandler) GetRenderedQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Rendering question", "question_id", id)

	rendered, err := h.questionService.GetRendered(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rendered)
}

// ListQuestions returns a paginated bank listing annotated with the caller's
// progress.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	uid := requireUserID(c)
	if uid == "" {
		return
	}

	filters := h.parseQuestionFilters(c)
	if !filters.ProgressFilter.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid progress filter",
			Details: string(filters.ProgressFilter),
		})
		return
	}

	h.LogRequest(c, "Listing questions", "page", filters.Page)

	summaries, total, err := h.questionService.List(c.Request.Context(), uid, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": summaries,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Updating question", "question_id", id)

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	question.ID = id

	if err := h.questionService.Update(c.Request.Context(), &question); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// GetTypeCounts returns the bank size per question type.
func (h *QuestionHandler) GetTypeCounts(c *gin.Context) {
	counts, err := h.questionService.CountByType(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// ImportQuestions accepts a CSV or Excel upload of single questions.
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	h.LogRequest(c, "Importing questions")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	result, err := h.importExport.ImportQuestionsFromFile(c.Request.Context(), file, header.Filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportQuestions streams the requested questions as CSV or an Excel workbook.
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	var req struct {
		QuestionIDs []uint `json:"question_ids" validate:"required,min=1"`
		Format      string `json:"format" validate:"omitempty,oneof=csv xlsx"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Exporting questions", "count", len(req.QuestionIDs), "format", req.Format)

	switch req.Format {
	case "", "csv":
		data, err := h.importExport.ExportQuestionsToCSV(c.Request.Context(), req.QuestionIDs)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="questions.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "xlsx":
		data, err := h.importExport.ExportQuestionsToExcel(c.Request.Context(), req.QuestionIDs)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="questions.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	}
}

func (h *QuestionHandler) parseQuestionFilters(c *gin.Context) repositories.QuestionFilters {
	filters := repositories.QuestionFilters{
		Page:           parseIntQuery(c, "page", 1),
		PageSize:       parseIntQuery(c, "page_size", 20),
		MinDifficulty:  parseIntQuery(c, "min_difficulty", 0),
		MaxDifficulty:  parseIntQuery(c, "max_difficulty", 0),
		ProgressFilter: repositories.ProgressFilter(c.Query("progress")),
		SortBy:         c.Query("sort_by"),
		SortOrder:      c.Query("sort_order"),
	}

	if types := c.Query("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filters.Types = append(filters.Types, models.QuestionType(t))
			}
		}
	}
	if tags := c.Query("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filters.Tags = append(filters.Tags, t)
			}
		}
	}
	return filters
}
