package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/practice-service/internal/content"
	"github.com/prepflow/practice-service/internal/models"
)

func optPtr(s string) *string { return &s }

func buildSingle(t *testing.T, qType models.QuestionType, opts []models.Option, key models.AnswerKey) *models.Question {
	t.Helper()
	q := &models.Question{Kind: models.KindSingle, Type: qType, Difficulty: 3}
	require.NoError(t, q.SetOptions(opts))
	require.NoError(t, q.SetKey(key))
	return q
}

func twoOptions() []models.Option {
	return []models.Option{
		{ID: "A", Blocks: []content.Block{{Kind: content.KindParagraph, Text: "first"}}},
		{ID: "B", Blocks: []content.Block{{Kind: content.KindParagraph, Text: "second"}}},
	}
}

func TestQuestionValidator_Single(t *testing.T) {
	v := NewQuestionValidator()

	tests := []struct {
		name     string
		question *models.Question
		wantErr  string
	}{
		{
			name:     "valid single choice",
			question: buildSingle(t, models.ProblemSolving, twoOptions(), models.AnswerKey{CorrectOptionID: optPtr("A")}),
		},
		{
			name:     "too few options",
			question: buildSingle(t, models.ProblemSolving, twoOptions()[:1], models.AnswerKey{CorrectOptionID: optPtr("A")}),
			wantErr:  "at least 2 options",
		},
		{
			name:     "missing key",
			question: buildSingle(t, models.ProblemSolving, twoOptions(), models.AnswerKey{}),
			wantErr:  "correct option id",
		},
		{
			name:     "dangling correct id",
			question: buildSingle(t, models.ProblemSolving, twoOptions(), models.AnswerKey{CorrectOptionID: optPtr("E")}),
			wantErr:  "not in the option list",
		},
		{
			name: "duplicate option ids",
			question: buildSingle(t, models.ProblemSolving, []models.Option{
				{ID: "A"}, {ID: "A"},
			}, models.AnswerKey{CorrectOptionID: optPtr("A")}),
			wantErr: "duplicate option id",
		},
		{
			name: "valid two part",
			question: buildSingle(t, models.TwoPartAnalysis, nil, models.AnswerKey{SelectedPairs: []models.CellCoordinate{
				{RowIndex: 0, ColumnIndex: 0}, {RowIndex: 2, ColumnIndex: 1},
			}}),
		},
		{
			name: "two part same column",
			question: buildSingle(t, models.TwoPartAnalysis, nil, models.AnswerKey{SelectedPairs: []models.CellCoordinate{
				{RowIndex: 0, ColumnIndex: 0}, {RowIndex: 2, ColumnIndex: 0},
			}}),
			wantErr: "distinct columns",
		},
		{
			name: "two part wrong arity",
			question: buildSingle(t, models.TwoPartAnalysis, nil, models.AnswerKey{SelectedPairs: []models.CellCoordinate{
				{RowIndex: 0, ColumnIndex: 0},
			}}),
			wantErr: "exactly 2",
		},
		{
			name: "valid grid",
			question: buildSingle(t, models.DataSufficiency, nil, models.AnswerKey{SelectedPairs: []models.CellCoordinate{
				{RowIndex: 1, ColumnIndex: 0},
			}}),
		},
		{
			name:     "grid without key",
			question: buildSingle(t, models.TableAnalysis, nil, models.AnswerKey{}),
			wantErr:  "exactly 1",
		},
		{
			name:     "unknown type",
			question: &models.Question{Kind: models.KindSingle, Type: "essay"},
			wantErr:  "unsupported question type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateQuestion(tt.question)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestQuestionValidator_Composite(t *testing.T) {
	v := NewQuestionValidator()

	passage, err := json.Marshal([]content.Block{{Kind: content.KindParagraph, Text: "passage"}})
	require.NoError(t, err)

	sub := buildSingle(t, models.ReadingComprehension, twoOptions(), models.AnswerKey{CorrectOptionID: optPtr("A")})

	valid := &models.Question{
		Kind:         models.KindComposite,
		Type:         models.ReadingComprehension,
		Passage:      passage,
		SubQuestions: []models.Question{*sub},
	}
	assert.NoError(t, v.ValidateQuestion(valid))

	t.Run("wrong type", func(t *testing.T) {
		q := *valid
		q.Type = models.ProblemSolving
		assert.ErrorContains(t, v.ValidateQuestion(&q), "reading-comprehension or multi-source-reasoning")
	})

	t.Run("no passage", func(t *testing.T) {
		q := *valid
		q.Passage = nil
		assert.ErrorContains(t, v.ValidateQuestion(&q), "passage")
	})

	t.Run("no sub-questions", func(t *testing.T) {
		q := *valid
		q.SubQuestions = nil
		assert.ErrorContains(t, v.ValidateQuestion(&q), "at least one sub-question")
	})

	t.Run("nested composite", func(t *testing.T) {
		nested := *sub
		nested.Kind = models.KindComposite
		q := *valid
		q.SubQuestions = []models.Question{nested}
		assert.ErrorContains(t, v.ValidateQuestion(&q), "nesting")
	})

	t.Run("invalid sub-question", func(t *testing.T) {
		bad := buildSingle(t, models.ReadingComprehension, twoOptions(), models.AnswerKey{})
		q := *valid
		q.SubQuestions = []models.Question{*bad}
		assert.ErrorContains(t, v.ValidateQuestion(&q), "sub-question 1")
	})
}
