package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/prepflow/practice-service/internal/content"
	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
	"github.com/prepflow/practice-service/internal/utils"
)

// RowError reports one rejected row of an imported file.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

type ImportResult struct {
	TotalRows    int                `json:"total_rows"`
	SuccessCount int                `json:"success_count"`
	ErrorCount   int                `json:"error_count"`
	Errors       []RowError         `json:"errors,omitempty"`
	Questions    []*models.Question `json:"questions,omitempty"`
}

// ImportExportService moves bank questions in and out of flat files. The flat
// format carries single option-keyed questions only; composite and grid-style
// items are authored through the question API.
type ImportExportService interface {
	ImportQuestionsFromFile(ctx context.Context, file multipart.File, filename string) (*ImportResult, error)
	ImportQuestionsFromCSV(ctx context.Context, reader io.Reader) (*ImportResult, error)
	ImportQuestionsFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error)

	ExportQuestionsToCSV(ctx context.Context, questionIDs []uint) ([]byte, error)
	ExportQuestionsToExcel(ctx context.Context, questionIDs []uint) ([]byte, error)
}

type importExportService struct {
	repo      repositories.Repository
	questions QuestionService
	logger    utils.Logger
}

func NewImportExportService(repo repositories.Repository, questions QuestionService, logger utils.Logger) ImportExportService {
	return &importExportService{repo: repo, questions: questions, logger: logger}
}

var exportHeaders = []string{
	"Type", "Question Text", "Option A", "Option B", "Option C", "Option D", "Option E",
	"Correct Answer", "Difficulty", "Tags", "Explanation",
}

var requiredImportColumns = []string{"type", "question_text", "correct_answer"}

// ===== IMPORT =====

func (s *importExportService) ImportQuestionsFromFile(ctx context.Context, file multipart.File, filename string) (*ImportResult, error) {
	s.logger.Info("starting question import", "filename", filename)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return s.ImportQuestionsFromCSV(ctx, file)
	case ".xlsx", ".xls":
		return s.ImportQuestionsFromExcel(ctx, file)
	default:
		return nil, fmt.Errorf("%w: unsupported file format %q", ErrValidationFailed, ext)
	}
}

func (s *importExportService) ImportQuestionsFromCSV(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return s.importRows(ctx, records)
}

func (s *importExportService) ImportQuestionsFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrValidationFailed)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook rows: %w", err)
	}
	return s.importRows(ctx, rows)
}

func (s *importExportService) importRows(ctx context.Context, rows [][]string) (*ImportResult, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: file must have a header row and at least one data row", ErrValidationFailed)
	}

	// Header names are matched case-insensitively with spaces folded to
	// underscores, so exported files import back without editing.
	headerMap := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		headerMap[key] = i
	}
	for _, col := range requiredImportColumns {
		if _, ok := headerMap[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrValidationFailed, col)
		}
	}

	result := &ImportResult{TotalRows: len(rows) - 1}
	for i, row := range rows[1:] {
		q, rowErrs := s.parseRow(row, headerMap, i+2)
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			result.ErrorCount++
			continue
		}
		// Creating through the question service keeps imports under the same
		// validation and cache invalidation as API authoring.
		if err := s.questions.Create(ctx, q); err != nil {
			return nil, fmt.Errorf("failed to save imported question: %w", err)
		}
		result.Questions = append(result.Questions, q)
		result.SuccessCount++
	}

	s.logger.Info("question import completed",
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)
	return result, nil
}

func (s *importExportService) parseRow(record []string, headerMap map[string]int, rowNum int) (*models.Question, []RowError) {
	var errs []RowError

	getColumn := func(name string) string {
		if idx, ok := headerMap[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	qType := models.QuestionType(strings.ToLower(getColumn("type")))
	if !qType.Valid() {
		errs = append(errs, RowError{Row: rowNum, Column: "type",
			Message: "unrecognized question type", Value: string(qType)})
		return nil, errs
	}
	switch qType {
	case models.TwoPartAnalysis, models.DataSufficiency, models.TableAnalysis,
		models.MultiSourceReasoning, models.ReadingComprehension:
		errs = append(errs, RowError{Row: rowNum, Column: "type",
			Message: "type not supported by flat-file import", Value: string(qType)})
		return nil, errs
	}

	text := getColumn("question_text")
	if text == "" {
		errs = append(errs, RowError{Row: rowNum, Column: "question_text", Message: "required field"})
		return nil, errs
	}

	var options []models.Option
	for i, col := range []string{"option_a", "option_b", "option_c", "option_d", "option_e"} {
		if optText := getColumn(col); optText != "" {
			options = append(options, models.Option{
				ID:     string(rune('A' + i)),
				Blocks: []content.Block{{Kind: content.KindParagraph, Text: optText}},
			})
		}
	}
	if len(options) < 2 {
		errs = append(errs, RowError{Row: rowNum, Column: "options", Message: "must have at least 2 options"})
		return nil, errs
	}

	correct := strings.ToUpper(getColumn("correct_answer"))
	valid := false
	for _, opt := range options {
		if opt.ID == correct {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, RowError{Row: rowNum, Column: "correct_answer",
			Message: "must name one of the provided options", Value: correct})
		return nil, errs
	}

	difficulty := 4
	if d := getColumn("difficulty"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 || n > 7 {
			errs = append(errs, RowError{Row: rowNum, Column: "difficulty",
				Message: "must be an integer between 1 and 7", Value: d})
			return nil, errs
		}
		difficulty = n
	}

	var tags []string
	if t := getColumn("tags"); t != "" {
		for _, tag := range strings.Split(t, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	var explanation *string
	if e := getColumn("explanation"); e != "" {
		explanation = &e
	}

	q := &models.Question{
		Kind:        models.KindSingle,
		Type:        qType,
		Tags:        datatypes.NewJSONSlice(tags),
		Difficulty:  difficulty,
		Explanation: explanation,
	}
	if err := q.SetContent([]content.Block{{Kind: content.KindParagraph, Text: text}}); err != nil {
		errs = append(errs, RowError{Row: rowNum, Column: "question_text", Message: "failed to encode content"})
		return nil, errs
	}
	if err := q.SetOptions(options); err != nil {
		errs = append(errs, RowError{Row: rowNum, Column: "options", Message: "failed to encode options"})
		return nil, errs
	}
	if err := q.SetKey(models.AnswerKey{CorrectOptionID: &correct}); err != nil {
		errs = append(errs, RowError{Row: rowNum, Column: "correct_answer", Message: "failed to encode answer key"})
		return nil, errs
	}
	return q, nil
}

// ===== EXPORT =====

func (s *importExportService) ExportQuestionsToCSV(ctx context.Context, questionIDs []uint) ([]byte, error) {
	questions, err := s.questionsForExport(ctx, questionIDs)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, q := range questions {
		if err := writer.Write(s.questionToRow(q)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) ExportQuestionsToExcel(ctx context.Context, questionIDs []uint) ([]byte, error) {
	questions, err := s.questionsForExport(ctx, questionIDs)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Questions"
	// Rename the default sheet rather than adding one: import reads the first
	// sheet, and a leftover empty Sheet1 would make exports non-reimportable.
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}
	for rowIdx, q := range questions {
		for colIdx, value := range s.questionToRow(q) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// questionsForExport loads the requested questions, silently skipping ids that
// no longer exist.
func (s *importExportService) questionsForExport(ctx context.Context, questionIDs []uint) ([]*models.Question, error) {
	questions := make([]*models.Question, 0, len(questionIDs))
	for _, id := range questionIDs {
		q, err := s.repo.Question().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				continue
			}
			return nil, fmt.Errorf("failed to get question %d: %w", id, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (s *importExportService) questionToRow(q *models.Question) []string {
	row := make([]string, len(exportHeaders))
	row[0] = string(q.Type)

	if blocks, err := q.ContentBlocks(); err == nil {
		var parts []string
		for _, b := range blocks {
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
		row[1] = strings.Join(parts, "\n")
	}

	if opts, err := q.OptionList(); err == nil {
		for i, opt := range opts {
			if i >= 5 {
				break
			}
			var parts []string
			for _, b := range opt.Blocks {
				if b.Text != "" {
					parts = append(parts, b.Text)
				}
			}
			row[2+i] = strings.Join(parts, "\n")
		}
	}

	if key, err := q.Key(); err == nil && key.CorrectOptionID != nil {
		row[7] = *key.CorrectOptionID
	}
	row[8] = strconv.Itoa(q.Difficulty)
	row[9] = strings.Join(q.Tags, ",")
	if q.Explanation != nil {
		row[10] = *q.Explanation
	}
	return row
}
