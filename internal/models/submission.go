package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Submission records one graded answer to one (sub-)question.
type Submission struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	UserID     string `json:"user_id" gorm:"not null;size:64;index" validate:"required"`
	QuestionID uint   `json:"question_id" gorm:"not null;index" validate:"required"`

	SelectedOption *string        `json:"selected_option,omitempty" gorm:"size:8"`
	SelectedPairs  datatypes.JSON `json:"selected_pairs,omitempty" gorm:"type:jsonb"`

	IsCorrect bool `json:"is_correct"`
	TimeTaken int  `json:"time_taken" gorm:"default:0"` // seconds

	CreatedAt time.Time `json:"created_at"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}

func (Submission) TableName() string {
	return "submissions"
}

// Pairs decodes the selected coordinate payload.
func (s *Submission) Pairs() ([]CellCoordinate, error) {
	if len(s.SelectedPairs) == 0 {
		return nil, nil
	}
	var pairs []CellCoordinate
	if err := json.Unmarshal(s.SelectedPairs, &pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}

// SetPairs encodes the selected coordinate payload.
func (s *Submission) SetPairs(pairs []CellCoordinate) error {
	if pairs == nil {
		s.SelectedPairs = nil
		return nil
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return err
	}
	s.SelectedPairs = data
	return nil
}

// TypeProgress aggregates a user's submissions for one question type.
type TypeProgress struct {
	Type      QuestionType `json:"type"`
	Attempted int          `json:"attempted"`
	Correct   int          `json:"correct"`
}
