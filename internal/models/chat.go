package models

import "time"

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of the tutor chat, persisted so replies can carry
// conversation history.
type ChatMessage struct {
	ID      uint     `json:"id" gorm:"primaryKey"`
	UserID  string   `json:"user_id" gorm:"not null;size:64;index" validate:"required"`
	Role    ChatRole `json:"role" gorm:"not null;size:16" validate:"required,oneof=user assistant"`
	Content string   `json:"content" gorm:"type:text;not null" validate:"required"`

	CreatedAt time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// StudyPlan is a generated preparation plan for one user.
type StudyPlan struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"not null;size:64;index" validate:"required"`
	TargetScore int        `json:"target_score" validate:"required,min=200,max=805"`
	WeeklyHours int        `json:"weekly_hours" validate:"required,min=1,max=80"`
	ExamDate    *time.Time `json:"exam_date,omitempty"`
	Plan        string     `json:"plan" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StudyPlan) TableName() string {
	return "study_plans"
}
