package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/utils"
)

const importCSV = `type,question_text,option a,option b,option c,correct_answer,difficulty,tags,explanation
problem-solving,What is 2+2?,3,4,5,B,2,"arithmetic,basics",Two plus two is four.
critical-reasoning,Which weakens the argument?,Premise A,Premise B,,A,5,logic,
`

func newImportExportService(repo *MockRepository) ImportExportService {
	questions := newQuestionService(repo, newMemoryCache())
	return NewImportExportService(repo, questions, utils.NewDevelopmentLogger())
}

func TestImportExport_CSVImport(t *testing.T) {
	repo := newMockRepository()
	svc := newImportExportService(repo)

	repo.questionRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

	result, err := svc.ImportQuestionsFromCSV(context.Background(), strings.NewReader(importCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Zero(t, result.ErrorCount)
	require.Len(t, result.Questions, 2)

	q := result.Questions[0]
	assert.Equal(t, models.ProblemSolving, q.Type)
	assert.Equal(t, models.KindSingle, q.Kind)
	assert.Equal(t, 2, q.Difficulty)
	assert.Equal(t, []string{"arithmetic", "basics"}, []string(q.Tags))
	require.NotNil(t, q.Explanation)

	opts, err := q.OptionList()
	require.NoError(t, err)
	require.Len(t, opts, 3)
	assert.Equal(t, "A", opts[0].ID)

	key, err := q.Key()
	require.NoError(t, err)
	require.NotNil(t, key.CorrectOptionID)
	assert.Equal(t, "B", *key.CorrectOptionID)

	repo.questionRepo.AssertExpectations(t)
}

func TestImportExport_RowErrorsCollected(t *testing.T) {
	repo := newMockRepository()
	svc := newImportExportService(repo)

	csv := `type,question_text,option a,option b,correct_answer,difficulty
bogus-type,Q1,x,y,A,3
problem-solving,,x,y,A,3
problem-solving,Q3,x,,A,3
problem-solving,Q4,x,y,Z,3
problem-solving,Q5,x,y,A,11
two-part-analysis,Q6,x,y,A,3
problem-solving,Q7,x,y,B,3
`
	repo.questionRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := svc.ImportQuestionsFromCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 7, result.TotalRows)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 6, result.ErrorCount)
	require.Len(t, result.Errors, 6)

	// Row numbers are 1-based and account for the header row.
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, "type", result.Errors[0].Column)
	repo.questionRepo.AssertExpectations(t)
}

func TestImportExport_MissingRequiredColumn(t *testing.T) {
	svc := newImportExportService(newMockRepository())

	csv := "question_text,option a\nQ1,x\n"
	_, err := svc.ImportQuestionsFromCSV(context.Background(), strings.NewReader(csv))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestImportExport_CSVRoundTrip(t *testing.T) {
	repo := newMockRepository()
	svc := newImportExportService(repo)

	q := validSingleQuestion(t)
	q.ID = 9
	repo.questionRepo.On("GetByID", mock.Anything, uint(9)).Return(q, nil)

	data, err := svc.ExportQuestionsToCSV(context.Background(), []uint{9})
	require.NoError(t, err)

	out := string(data)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Correct Answer")
	assert.Contains(t, lines[1], "problem-solving")
	assert.Contains(t, lines[1], "If x > 2...")
	assert.Contains(t, lines[1], "B")
}

func TestImportExport_ExportSkipsMissingQuestions(t *testing.T) {
	repo := newMockRepository()
	svc := newImportExportService(repo)

	q := validSingleQuestion(t)
	q.ID = 1
	repo.questionRepo.On("GetByID", mock.Anything, uint(1)).Return(q, nil)
	repo.questionRepo.On("GetByID", mock.Anything, uint(2)).Return(nil, gorm.ErrRecordNotFound)

	data, err := svc.ExportQuestionsToCSV(context.Background(), []uint{1, 2})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2) // header + one row
}

func TestImportExport_ExcelRoundTrip(t *testing.T) {
	repo := newMockRepository()
	svc := newImportExportService(repo)

	q := validSingleQuestion(t)
	q.ID = 3
	repo.questionRepo.On("GetByID", mock.Anything, uint(3)).Return(q, nil)
	repo.questionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	workbook, err := svc.ExportQuestionsToExcel(context.Background(), []uint{3})
	require.NoError(t, err)
	require.NotEmpty(t, workbook)

	// The data lands on the first and only sheet; import reads the first
	// sheet, so a leftover default sheet would break the round trip.
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Questions"}, f.GetSheetList())

	// The exported workbook imports cleanly.
	result, err := svc.ImportQuestionsFromExcel(context.Background(), strings.NewReader(string(workbook)))
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Zero(t, result.ErrorCount)
}

func TestImportExport_UnsupportedExtension(t *testing.T) {
	svc := newImportExportService(newMockRepository())

	_, err := svc.ImportQuestionsFromFile(context.Background(), nil, "questions.pdf")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
