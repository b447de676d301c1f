package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s SubmissionPostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	var submissions []*models.Submission
	var total int64

	query := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("submissions.user_id = ?", userID)

	if filters.QuestionID != nil {
		query = query.Where("submissions.question_id = ?", *filters.QuestionID)
	}
	if filters.IsCorrect != nil {
		query = query.Where("submissions.is_correct = ?", *filters.IsCorrect)
	}
	if filters.Type != nil {
		query = query.Joins("JOIN questions ON questions.id = submissions.question_id").
			Where("questions.type = ?", *filters.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("submissions.created_at DESC").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (s SubmissionPostgreSQL) HasSubmission(ctx context.Context, userID string, questionID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s SubmissionPostgreSQL) TypeProgress(ctx context.Context, userID string) ([]models.TypeProgress, error) {
	var rows []models.TypeProgress
	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Joins("JOIN questions ON questions.id = submissions.question_id").
		Where("submissions.user_id = ?", userID).
		Select("questions.type AS type, " +
			"COUNT(DISTINCT submissions.question_id) AS attempted, " +
			"COUNT(DISTINCT submissions.question_id) FILTER (WHERE submissions.is_correct) AS correct").
		Group("questions.type").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
