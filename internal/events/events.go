package events

import (
	"time"

	"github.com/prepflow/practice-service/internal/models"
)

type EventType string

const (
	EventAnswerSubmitted   EventType = "practice.answer_submitted"
	EventStudyPlanCreated  EventType = "practice.study_plan_created"
	EventQuestionExhausted EventType = "practice.question_bank_exhausted"
)

// SubmissionEvent announces one graded answer for downstream consumers
// (progress dashboards, adaptive sequencing, notifications).
type SubmissionEvent struct {
	ID           string              `json:"id"`
	Type         EventType           `json:"type"`
	UserID       string              `json:"user_id"`
	QuestionID   uint                `json:"question_id"`
	QuestionType models.QuestionType `json:"question_type"`
	IsCorrect    bool                `json:"is_correct"`
	TimeTaken    int                 `json:"time_taken"`
	Timestamp    time.Time           `json:"timestamp"`
	Source       string              `json:"source"`
	Version      string              `json:"version"`
}
