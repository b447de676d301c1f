package utils

import (
	"fmt"

	"github.com/prepflow/practice-service/internal/models"
)

// QuestionValidator checks that a question's payload shape matches its type
// before it is stored. Struct-tag validation covers the scalar fields; this
// covers the cross-field rules.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates one bank item, including composite linkage.
func (v *QuestionValidator) ValidateQuestion(q *models.Question) error {
	if !q.Type.Valid() {
		return fmt.Errorf("unsupported question type: %s", q.Type)
	}

	if q.IsComposite() {
		return v.validateComposite(q)
	}
	return v.validateSingle(q)
}

func (v *QuestionValidator) validateSingle(q *models.Question) error {
	key, err := q.Key()
	if err != nil {
		return fmt.Errorf("invalid answer key payload: %w", err)
	}

	switch q.Type {
	case models.TwoPartAnalysis:
		if len(key.SelectedPairs) != 2 {
			return fmt.Errorf("two-part answer key must have exactly 2 coordinates, got %d", len(key.SelectedPairs))
		}
		if key.SelectedPairs[0].ColumnIndex == key.SelectedPairs[1].ColumnIndex {
			return fmt.Errorf("two-part answer key coordinates must use distinct columns")
		}
	case models.DataSufficiency, models.TableAnalysis:
		if len(key.SelectedPairs) != 1 {
			return fmt.Errorf("grid answer key must have exactly 1 coordinate, got %d", len(key.SelectedPairs))
		}
	default:
		opts, err := q.OptionList()
		if err != nil {
			return fmt.Errorf("invalid options payload: %w", err)
		}
		if len(opts) < 2 {
			return fmt.Errorf("single-choice question must have at least 2 options")
		}
		if key.CorrectOptionID == nil {
			return fmt.Errorf("single-choice question requires a correct option id")
		}
		if err := v.validateOptionRef(opts, *key.CorrectOptionID); err != nil {
			return err
		}
	}

	return nil
}

func (v *QuestionValidator) validateComposite(q *models.Question) error {
	if q.Type != models.ReadingComprehension && q.Type != models.MultiSourceReasoning {
		return fmt.Errorf("composite questions must be reading-comprehension or multi-source-reasoning, got %s", q.Type)
	}
	if len(q.SubQuestions) == 0 {
		return fmt.Errorf("composite question must have at least one sub-question")
	}
	blocks, err := q.PassageBlocks()
	if err != nil {
		return fmt.Errorf("invalid passage payload: %w", err)
	}
	if len(blocks) == 0 {
		return fmt.Errorf("composite question must have a passage")
	}

	for i := range q.SubQuestions {
		sub := &q.SubQuestions[i]
		if sub.IsComposite() {
			return fmt.Errorf("sub-question %d: nesting composites is not allowed", i+1)
		}
		if err := v.validateSingle(sub); err != nil {
			return fmt.Errorf("sub-question %d: %w", i+1, err)
		}
	}
	return nil
}

func (v *QuestionValidator) validateOptionRef(opts []models.Option, id string) error {
	seen := make(map[string]bool, len(opts))
	for _, opt := range opts {
		if seen[opt.ID] {
			return fmt.Errorf("duplicate option id %q", opt.ID)
		}
		seen[opt.ID] = true
	}
	if !seen[id] {
		return fmt.Errorf("correct option id %q is not in the option list", id)
	}
	return nil
}
