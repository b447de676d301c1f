package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepflow/practice-service/internal/content"
)

type QuestionKind string

const (
	KindSingle    QuestionKind = "single"
	KindComposite QuestionKind = "composite"
)

type QuestionType string

const (
	ProblemSolving         QuestionType = "problem-solving"
	DataSufficiency        QuestionType = "data-sufficiency"
	CriticalReasoning      QuestionType = "critical-reasoning"
	ReadingComprehension   QuestionType = "reading-comprehension"
	TableAnalysis          QuestionType = "table-analysis"
	GraphicsInterpretation QuestionType = "graphics-interpretation"
	TwoPartAnalysis        QuestionType = "two-part-analysis"
	MultiSourceReasoning   QuestionType = "multi-source-reasoning"
)

// AllQuestionTypes is the closed set of recognized categories.
var AllQuestionTypes = []QuestionType{
	ProblemSolving,
	DataSufficiency,
	CriticalReasoning,
	ReadingComprehension,
	TableAnalysis,
	GraphicsInterpretation,
	TwoPartAnalysis,
	MultiSourceReasoning,
}

func (t QuestionType) Valid() bool {
	for _, vt := range AllQuestionTypes {
		if t == vt {
			return true
		}
	}
	return false
}

// CellCoordinate addresses one cell in a two-part or grid answer control.
type CellCoordinate struct {
	RowIndex    int `json:"row_index"`
	ColumnIndex int `json:"column_index"`
}

// Option is one answer choice. ID is a short label ("A".."E") unique within
// the question's option list.
type Option struct {
	ID     string          `json:"id"`
	Blocks []content.Block `json:"blocks"`
}

// AnswerKey is the stored correct answer. Exactly one field group is set
// depending on the question type: CorrectOptionID for single-choice types,
// SelectedPairs for two-part and grid types.
type AnswerKey struct {
	CorrectOptionID *string          `json:"correct_option_id,omitempty"`
	SelectedPairs   []CellCoordinate `json:"selected_pairs,omitempty"`
}

// Question is one bank item. A composite question (kind=composite) carries a
// shared passage and ordered sub-questions; sub-questions reference their
// parent through ParentID and are themselves stored as single questions.
type Question struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	Kind QuestionKind `json:"kind" gorm:"default:single;index" validate:"omitempty,oneof=single composite"`
	Type QuestionType `json:"type" gorm:"not null;index" validate:"required,question_type"`

	// JSONB payloads: []content.Block, []Option, AnswerKey, []string.
	Content   datatypes.JSON `json:"content" gorm:"type:jsonb"`
	Options   datatypes.JSON `json:"options" gorm:"type:jsonb"`
	AnswerKey datatypes.JSON `json:"-" gorm:"type:jsonb"`
	Passage   datatypes.JSON `json:"passage,omitempty" gorm:"type:jsonb"`

	Tags        datatypes.JSONSlice[string] `json:"tags" gorm:"type:jsonb"`
	Difficulty  int                         `json:"difficulty" gorm:"not null;index" validate:"required,min=1,max=7"`
	Explanation *string                     `json:"explanation,omitempty" gorm:"type:text"`

	// Composite linkage. SubIndex orders sub-questions within their parent.
	ParentID     *uint      `json:"-" gorm:"index"`
	SubIndex     int        `json:"-" gorm:"default:0"`
	SubQuestions []Question `json:"subquestions,omitempty" gorm:"foreignKey:ParentID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// IsComposite reports whether the question is a passage plus sub-questions.
func (q *Question) IsComposite() bool {
	return q.Kind == KindComposite
}

// ContentBlocks decodes the content payload. A nil payload yields an empty
// slice.
func (q *Question) ContentBlocks() ([]content.Block, error) {
	return decodeBlocks(q.Content)
}

// PassageBlocks decodes the shared passage payload of a composite question.
func (q *Question) PassageBlocks() ([]content.Block, error) {
	return decodeBlocks(q.Passage)
}

// OptionList decodes the option payload.
func (q *Question) OptionList() ([]Option, error) {
	if len(q.Options) == 0 {
		return []Option{}, nil
	}
	var opts []Option
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// Key decodes the stored answer key.
func (q *Question) Key() (*AnswerKey, error) {
	if len(q.AnswerKey) == 0 {
		return &AnswerKey{}, nil
	}
	var key AnswerKey
	if err := json.Unmarshal(q.AnswerKey, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// SetContent encodes blocks into the content payload.
func (q *Question) SetContent(blocks []content.Block) error {
	data, err := json.Marshal(blocks)
	if err != nil {
		return err
	}
	q.Content = data
	return nil
}

// SetOptions encodes the option payload.
func (q *Question) SetOptions(opts []Option) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = data
	return nil
}

// SetKey encodes the answer key payload.
func (q *Question) SetKey(key AnswerKey) error {
	data, err := json.Marshal(key)
	if err != nil {
		return err
	}
	q.AnswerKey = data
	return nil
}

func decodeBlocks(payload datatypes.JSON) ([]content.Block, error) {
	if len(payload) == 0 {
		return []content.Block{}, nil
	}
	var blocks []content.Block
	if err := json.Unmarshal(payload, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// QuestionSummary is the bank-listing projection of a question, annotated with
// the requesting user's progress.
type QuestionSummary struct {
	ID         uint         `json:"id"`
	Kind       QuestionKind `json:"kind"`
	Type       QuestionType `json:"type"`
	Tags       []string     `json:"tags"`
	Difficulty int          `json:"difficulty"`
	Attempted  bool         `json:"attempted"`
	Correct    bool         `json:"correct"`
}
