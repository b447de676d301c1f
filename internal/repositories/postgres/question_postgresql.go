package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Preload("SubQuestions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_index ASC")
		}).
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Save(question).Error
}

func (q QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Question{}, id).Error
}

func (q QuestionPostgreSQL) List(ctx context.Context, userID string, filters repositories.QuestionFilters) ([]*models.QuestionSummary, int64, error) {
	var total int64

	query := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("parent_id IS NULL")
	query = q.applyFilters(query, userID, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.applyPaginationAndSort(query, filters)

	var rows []struct {
		models.Question
		Attempted bool
		Correct   bool
	}
	if err := query.
		Select("questions.*, "+
			"EXISTS (SELECT 1 FROM submissions s WHERE s.question_id = questions.id AND s.user_id = ?) AS attempted, "+
			"EXISTS (SELECT 1 FROM submissions s WHERE s.question_id = questions.id AND s.user_id = ? AND s.is_correct) AS correct",
			userID, userID).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	summaries := make([]*models.QuestionSummary, len(rows))
	for i, row := range rows {
		summaries[i] = &models.QuestionSummary{
			ID:         row.ID,
			Kind:       row.Kind,
			Type:       row.Type,
			Tags:       row.Tags,
			Difficulty: row.Difficulty,
			Attempted:  row.Attempted,
			Correct:    row.Correct,
		}
	}

	return summaries, total, nil
}

func (q QuestionPostgreSQL) NextUnanswered(ctx context.Context, userID string) (*models.Question, error) {
	var question models.Question
	err := q.db.WithContext(ctx).
		Where("parent_id IS NULL").
		Where("NOT EXISTS (SELECT 1 FROM submissions s WHERE s.question_id = questions.id AND s.user_id = ?)", userID).
		Where("NOT EXISTS (SELECT 1 FROM questions sub JOIN submissions ss ON ss.question_id = sub.id "+
			"WHERE sub.parent_id = questions.id AND ss.user_id = ?)", userID).
		Order("id ASC").
		Preload("SubQuestions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_index ASC")
		}).
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

func (q QuestionPostgreSQL) CountByType(ctx context.Context) (map[models.QuestionType]int64, error) {
	var rows []struct {
		Type  models.QuestionType
		Count int64
	}
	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("parent_id IS NULL").
		Select("type, COUNT(*) AS count").
		Group("type").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.QuestionType]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

func (q QuestionPostgreSQL) applyFilters(query *gorm.DB, userID string, filters repositories.QuestionFilters) *gorm.DB {
	if len(filters.Types) > 0 {
		query = query.Where("type IN ?", filters.Types)
	}
	for _, tag := range filters.Tags {
		encoded, err := json.Marshal([]string{tag})
		if err != nil {
			continue
		}
		query = query.Where("tags @> ?", string(encoded))
	}
	if filters.MinDifficulty > 0 {
		query = query.Where("difficulty >= ?", filters.MinDifficulty)
	}
	if filters.MaxDifficulty > 0 {
		query = query.Where("difficulty <= ?", filters.MaxDifficulty)
	}

	switch filters.ProgressFilter {
	case repositories.ProgressAttempted:
		query = query.Where("EXISTS (SELECT 1 FROM submissions s WHERE s.question_id = questions.id AND s.user_id = ?)", userID)
	case repositories.ProgressUnattempted:
		query = query.Where("NOT EXISTS (SELECT 1 FROM submissions s WHERE s.question_id = questions.id AND s.user_id = ?)", userID)
	case repositories.ProgressCorrect:
		query = query.Where("EXISTS (SELECT 1 FROM submissions s WHERE s.question_id = questions.id AND s.user_id = ? AND s.is_correct)", userID)
	case repositories.ProgressIncorrect:
		query = query.Where("EXISTS (SELECT 1 FROM submissions s WHERE s.question_id = questions.id AND s.user_id = ? AND NOT s.is_correct)", userID)
	}

	return query
}

func (q QuestionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "difficulty", "created_at", "id":
	default:
		sortBy = "id"
	}
	order := "ASC"
	if filters.SortOrder == "desc" {
		order = "DESC"
	}
	query = query.Order(fmt.Sprintf("questions.%s %s", sortBy, order))

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
