package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepflow/practice-service/internal/repositories"
)

// Repository is the Postgres-backed bundle of domain repositories.
type Repository struct {
	db *gorm.DB

	question   repositories.QuestionRepository
	submission repositories.SubmissionRepository
	chat       repositories.ChatRepository
	studyPlan  repositories.StudyPlanRepository
	plan       repositories.PlanRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:         db,
		question:   NewQuestionPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
		chat:       NewChatPostgreSQL(db),
		studyPlan:  NewStudyPlanPostgreSQL(db),
		plan:       NewPlanPostgreSQL(db),
	}
}

func (r *Repository) Question() repositories.QuestionRepository     { return r.question }
func (r *Repository) Submission() repositories.SubmissionRepository { return r.submission }
func (r *Repository) Chat() repositories.ChatRepository             { return r.chat }
func (r *Repository) StudyPlan() repositories.StudyPlanRepository   { return r.studyPlan }
func (r *Repository) Plan() repositories.PlanRepository             { return r.plan }

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
