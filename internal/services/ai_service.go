package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prepflow/practice-service/internal/content"
	"github.com/prepflow/practice-service/internal/llm"
	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
	"github.com/prepflow/practice-service/internal/utils"
)

const (
	chatHistoryWindow = 20
	tutorSystemPrompt = "You are a GMAT tutor. Answer concisely, explain reasoning " +
		"step by step, and never reveal answer keys for questions the student has " +
		"not attempted."
)

// StudyPlanRequest captures the onboarding inputs a plan is generated from.
type StudyPlanRequest struct {
	TargetScore int        `json:"target_score" validate:"required,min=200,max=805"`
	WeeklyHours int        `json:"weekly_hours" validate:"required,min=1,max=80"`
	ExamDate    *time.Time `json:"exam_date,omitempty"`
}

// AIService wraps the chat-completion provider: tutor chat with persisted
// history, study-plan generation, and per-question explanations.
type AIService interface {
	TutorChat(ctx context.Context, userID, message string) (*models.ChatMessage, error)
	ChatHistory(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error)
	GenerateStudyPlan(ctx context.Context, userID string, req *StudyPlanRequest) (*models.StudyPlan, error)
	LatestStudyPlan(ctx context.Context, userID string) (*models.StudyPlan, error)
	AnalyzeQuestion(ctx context.Context, questionID uint) (string, error)
}

type aiService struct {
	repo      repositories.Repository
	completer llm.ChatCompleter
	logger    utils.Logger
	validator *utils.Validator
}

func NewAIService(repo repositories.Repository, completer llm.ChatCompleter, logger utils.Logger, validator *utils.Validator) AIService {
	return &aiService{
		repo:      repo,
		completer: completer,
		logger:    logger,
		validator: validator,
	}
}

// TutorChat stores the user's turn, sends the recent window plus the system
// prompt to the provider, stores and returns the reply. The user turn is
// persisted even when the provider fails, so history stays truthful.
func (s *aiService) TutorChat(ctx context.Context, userID, message string) (*models.ChatMessage, error) {
	if userID == "" || strings.TrimSpace(message) == "" {
		return nil, ErrValidationFailed
	}

	userTurn := &models.ChatMessage{
		UserID:  userID,
		Role:    models.RoleUser,
		Content: message,
	}
	if err := s.repo.Chat().Create(ctx, userTurn); err != nil {
		s.logger.LogError(err, "failed to persist chat message", "user_id", userID)
		return nil, err
	}

	history, err := s.repo.Chat().GetRecent(ctx, userID, chatHistoryWindow)
	if err != nil {
		s.logger.LogError(err, "failed to load chat history", "user_id", userID)
		return nil, err
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: "system", Content: tutorSystemPrompt})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
	}

	reply, err := s.completer.Complete(ctx, messages)
	if err != nil {
		s.logger.LogError(err, "chat completion failed", "user_id", userID)
		return nil, ErrChatUnavailable
	}

	assistantTurn := &models.ChatMessage{
		UserID:  userID,
		Role:    models.RoleAssistant,
		Content: reply,
	}
	if err := s.repo.Chat().Create(ctx, assistantTurn); err != nil {
		s.logger.LogError(err, "failed to persist chat reply", "user_id", userID)
		return nil, err
	}
	return assistantTurn, nil
}

func (s *aiService) ChatHistory(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error) {
	if userID == "" {
		return nil, ErrValidationFailed
	}
	if limit <= 0 || limit > 200 {
		limit = chatHistoryWindow
	}
	return s.repo.Chat().GetRecent(ctx, userID, limit)
}

func (s *aiService) GenerateStudyPlan(ctx context.Context, userID string, req *StudyPlanRequest) (*models.StudyPlan, error) {
	if userID == "" {
		return nil, ErrValidationFailed
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Create a GMAT study plan. Target score: %d. Available time: %d hours per week.",
		req.TargetScore, req.WeeklyHours)
	if req.ExamDate != nil {
		prompt += fmt.Sprintf(" Exam date: %s.", req.ExamDate.Format("2006-01-02"))
	}
	prompt += " Break the plan into weekly blocks by question type and include review milestones."

	text, err := s.completer.Complete(ctx, []llm.Message{
		{Role: "system", Content: tutorSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		s.logger.LogError(err, "study plan generation failed", "user_id", userID)
		return nil, ErrChatUnavailable
	}

	plan := &models.StudyPlan{
		UserID:      userID,
		TargetScore: req.TargetScore,
		WeeklyHours: req.WeeklyHours,
		ExamDate:    req.ExamDate,
		Plan:        text,
	}
	if err := s.repo.StudyPlan().Create(ctx, plan); err != nil {
		s.logger.LogError(err, "failed to persist study plan", "user_id", userID)
		return nil, err
	}
	s.logger.Info("study plan generated", "user_id", userID, "target_score", req.TargetScore)
	return plan, nil
}

func (s *aiService) LatestStudyPlan(ctx context.Context, userID string) (*models.StudyPlan, error) {
	if userID == "" {
		return nil, ErrValidationFailed
	}
	plan, err := s.repo.StudyPlan().GetLatest(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return plan, nil
}

// AnalyzeQuestion asks the provider for a worked explanation of a question.
// The prompt is built from the stored content blocks; option labels are
// included but the answer key is not.
func (s *aiService) AnalyzeQuestion(ctx context.Context, questionID uint) (string, error) {
	q, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrQuestionNotFound
		}
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Explain how to solve this %s question.\n\n", q.Type)

	if passage, err := q.PassageBlocks(); err == nil && len(passage) > 0 {
		b.WriteString("Passage:\n")
		writeBlockText(&b, passage)
		b.WriteString("\n")
	}

	blocks, err := q.ContentBlocks()
	if err != nil {
		return "", fmt.Errorf("decode question content: %w", err)
	}
	b.WriteString("Question:\n")
	writeBlockText(&b, blocks)

	if opts, err := q.OptionList(); err == nil && len(opts) > 0 {
		b.WriteString("\nOptions:\n")
		for _, opt := range opts {
			fmt.Fprintf(&b, "%s. ", opt.ID)
			writeBlockText(&b, opt.Blocks)
		}
	}

	text, err := s.completer.Complete(ctx, []llm.Message{
		{Role: "system", Content: tutorSystemPrompt},
		{Role: "user", Content: b.String()},
	})
	if err != nil {
		s.logger.LogError(err, "question analysis failed", "question_id", questionID)
		return "", ErrChatUnavailable
	}
	return text, nil
}

// writeBlockText flattens content blocks to plain text for prompting.
func writeBlockText(b *strings.Builder, blocks []content.Block) {
	for _, blk := range blocks {
		if blk.Text != "" {
			b.WriteString(blk.Text)
			b.WriteString("\n")
		}
		for _, item := range blk.Items {
			b.WriteString("- ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	}
}
