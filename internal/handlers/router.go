package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/prepflow/practice-service/internal/services"
	"github.com/prepflow/practice-service/internal/utils"
)

type HandlerManager struct {
	questionHandler *QuestionHandler
	practiceHandler *PracticeHandler
	progressHandler *ProgressHandler
	aiHandler       *AIHandler
	billingHandler  *BillingHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		questionHandler: NewQuestionHandler(serviceManager.Question(), serviceManager.ImportExport(), validator, logger),
		practiceHandler: NewPracticeHandler(serviceManager.Session(), logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), logger),
		aiHandler:       NewAIHandler(serviceManager.AI(), logger),
		billingHandler:  NewBillingHandler(serviceManager.Billing(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(UserIDMiddleware())

	v1 := router.Group("/api/v1")
	{
		// Question bank routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/counts", hm.questionHandler.GetTypeCounts)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.GET("/:id/rendered", hm.questionHandler.GetRenderedQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
			questions.GET("/:id/analysis", hm.aiHandler.AnalyzeQuestion)

			questions.POST("/import", hm.questionHandler.ImportQuestions)
			questions.POST("/export", hm.questionHandler.ExportQuestions)
		}

		// Practice session routes
		practice := v1.Group("/practice")
		{
			practice.POST("/session", hm.practiceHandler.StartSession)
			practice.GET("/session", hm.practiceHandler.GetSession)
			practice.DELETE("/session", hm.practiceHandler.EndSession)
			practice.POST("/session/select", hm.practiceHandler.SelectOption)
			practice.POST("/session/select-cell", hm.practiceHandler.SelectCell)
			practice.POST("/session/submit", hm.practiceHandler.SubmitAnswer)
			practice.POST("/session/advance", hm.practiceHandler.Advance)
			practice.POST("/session/pause", hm.practiceHandler.PauseTimer)
			practice.POST("/session/resume", hm.practiceHandler.ResumeTimer)
		}

		// Progress routes
		progress := v1.Group("/progress")
		{
			progress.GET("/overview", hm.progressHandler.GetOverview)
			progress.GET("/submissions", hm.progressHandler.GetRecentSubmissions)
		}

		// Assistant routes
		assistant := v1.Group("/assistant")
		{
			assistant.POST("/chat", hm.aiHandler.Chat)
			assistant.GET("/chat/history", hm.aiHandler.ChatHistory)
			assistant.POST("/study-plan", hm.aiHandler.GenerateStudyPlan)
			assistant.GET("/study-plan", hm.aiHandler.GetStudyPlan)
		}

		// Billing routes
		billing := v1.Group("/billing")
		{
			billing.GET("/plans", hm.billingHandler.ListPlans)
			billing.POST("/plans/:plan_id/checkout", hm.billingHandler.StartCheckout)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "practice-service",
		})
	})
}
