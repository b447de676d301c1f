package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
)

type ChatPostgreSQL struct {
	db *gorm.DB
}

func NewChatPostgreSQL(db *gorm.DB) repositories.ChatRepository {
	return &ChatPostgreSQL{db: db}
}

func (c ChatPostgreSQL) Create(ctx context.Context, message *models.ChatMessage) error {
	return c.db.WithContext(ctx).Create(message).Error
}

// GetRecent returns the last limit messages in chronological order.
func (c ChatPostgreSQL) GetRecent(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	if err := c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

type StudyPlanPostgreSQL struct {
	db *gorm.DB
}

func NewStudyPlanPostgreSQL(db *gorm.DB) repositories.StudyPlanRepository {
	return &StudyPlanPostgreSQL{db: db}
}

func (s StudyPlanPostgreSQL) Create(ctx context.Context, plan *models.StudyPlan) error {
	return s.db.WithContext(ctx).Create(plan).Error
}

func (s StudyPlanPostgreSQL) GetLatest(ctx context.Context, userID string) (*models.StudyPlan, error) {
	var plan models.StudyPlan
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

type PlanPostgreSQL struct {
	db *gorm.DB
}

func NewPlanPostgreSQL(db *gorm.DB) repositories.PlanRepository {
	return &PlanPostgreSQL{db: db}
}

func (p PlanPostgreSQL) ListActive(ctx context.Context) ([]*models.Plan, error) {
	var plans []*models.Plan
	if err := p.db.WithContext(ctx).
		Where("active = true").
		Order("price_cents ASC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (p PlanPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := p.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}
