package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/prepflow/practice-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

// QuestionFilters narrows a bank listing. Pagination is offset based:
// skip = (Page-1) * PageSize.
type QuestionFilters struct {
	Types          []models.QuestionType `json:"types"`
	Tags           []string              `json:"tags"`
	MinDifficulty  int                   `json:"min_difficulty"`
	MaxDifficulty  int                   `json:"max_difficulty"`
	ProgressFilter ProgressFilter        `json:"progress_filter"`
	Page           int                   `json:"page"`
	PageSize       int                   `json:"page_size"`
	SortBy         string                `json:"sort_by"`    // "id", "difficulty", "created_at"
	SortOrder      string                `json:"sort_order"` // "asc", "desc"
}

// ProgressFilter restricts a listing by the requesting user's history.
type ProgressFilter string

const (
	ProgressAll         ProgressFilter = "all"
	ProgressAttempted   ProgressFilter = "attempted"
	ProgressUnattempted ProgressFilter = "unattempted"
	ProgressCorrect     ProgressFilter = "correct"
	ProgressIncorrect   ProgressFilter = "incorrect"
)

func (f ProgressFilter) Valid() bool {
	switch f {
	case "", ProgressAll, ProgressAttempted, ProgressUnattempted, ProgressCorrect, ProgressIncorrect:
		return true
	}
	return false
}

type SubmissionFilters struct {
	QuestionID *uint               `json:"question_id"`
	Type       *models.QuestionType `json:"type"`
	IsCorrect  *bool               `json:"is_correct"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	// List returns summaries of top-level questions annotated with userID's
	// progress, plus the unpaginated total.
	List(ctx context.Context, userID string, filters QuestionFilters) ([]*models.QuestionSummary, int64, error)

	// NextUnanswered returns the first top-level question userID has not
	// submitted an answer for, or nil when the bank is exhausted.
	NextUnanswered(ctx context.Context, userID string) (*models.Question, error)

	CountByType(ctx context.Context) (map[models.QuestionType]int64, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByUser(ctx context.Context, userID string, filters SubmissionFilters) ([]*models.Submission, int64, error)
	HasSubmission(ctx context.Context, userID string, questionID uint) (bool, error)

	// TypeProgress aggregates attempted/correct counts per question type.
	TypeProgress(ctx context.Context, userID string) ([]models.TypeProgress, error)
}

type ChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	GetRecent(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error)
}

type StudyPlanRepository interface {
	Create(ctx context.Context, plan *models.StudyPlan) error
	GetLatest(ctx context.Context, userID string) (*models.StudyPlan, error)
}

type PlanRepository interface {
	ListActive(ctx context.Context) ([]*models.Plan, error)
	GetByID(ctx context.Context, id uint) (*models.Plan, error)
}

// Repository bundles domain repositories behind one handle.
type Repository interface {
	Question() QuestionRepository
	Submission() SubmissionRepository
	Chat() ChatRepository
	StudyPlan() StudyPlanRepository
	Plan() PlanRepository

	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err is the storage layer's missing-record
// condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
