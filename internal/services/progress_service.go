package services

import (
	"context"

	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
	"github.com/prepflow/practice-service/internal/utils"
)

// TypeBreakdown is one dashboard row: a question type with the bank size and
// the user's attempt history against it.
type TypeBreakdown struct {
	Type      models.QuestionType `json:"type"`
	Total     int64               `json:"total"`
	Attempted int                 `json:"attempted"`
	Correct   int                 `json:"correct"`
}

// ProgressOverview is the practice dashboard payload.
type ProgressOverview struct {
	TotalQuestions int64           `json:"total_questions"`
	TotalAttempted int             `json:"total_attempted"`
	TotalCorrect   int             `json:"total_correct"`
	Accuracy       float64         `json:"accuracy"`
	ByType         []TypeBreakdown `json:"by_type"`
}

type ProgressService interface {
	Overview(ctx context.Context, userID string) (*ProgressOverview, error)
	RecentSubmissions(ctx context.Context, userID string, limit int) ([]*models.Submission, int64, error)
}

type progressService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewProgressService(repo repositories.Repository, logger utils.Logger) ProgressService {
	return &progressService{repo: repo, logger: logger}
}

// Overview joins bank counts per type with the user's per-type attempt stats.
// Types with no questions in the bank are omitted even if old submissions
// reference them.
func (s *progressService) Overview(ctx context.Context, userID string) (*ProgressOverview, error) {
	if userID == "" {
		return nil, ErrValidationFailed
	}

	counts, err := s.repo.Question().CountByType(ctx)
	if err != nil {
		s.logger.LogError(err, "failed to count questions by type")
		return nil, err
	}

	progress, err := s.repo.Submission().TypeProgress(ctx, userID)
	if err != nil {
		s.logger.LogError(err, "failed to aggregate user progress", "user_id", userID)
		return nil, err
	}

	byType := make(map[models.QuestionType]models.TypeProgress, len(progress))
	for _, p := range progress {
		byType[p.Type] = p
	}

	overview := &ProgressOverview{}
	for _, t := range models.AllQuestionTypes {
		total, ok := counts[t]
		if !ok || total == 0 {
			continue
		}
		row := TypeBreakdown{Type: t, Total: total}
		if p, ok := byType[t]; ok {
			row.Attempted = p.Attempted
			row.Correct = p.Correct
		}
		overview.TotalQuestions += total
		overview.TotalAttempted += row.Attempted
		overview.TotalCorrect += row.Correct
		overview.ByType = append(overview.ByType, row)
	}

	if overview.TotalAttempted > 0 {
		overview.Accuracy = float64(overview.TotalCorrect) / float64(overview.TotalAttempted)
	}
	return overview, nil
}

func (s *progressService) RecentSubmissions(ctx context.Context, userID string, limit int) ([]*models.Submission, int64, error) {
	if userID == "" {
		return nil, 0, ErrValidationFailed
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.Submission().GetByUser(ctx, userID, repositories.SubmissionFilters{Limit: limit})
}
