package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prepflow/practice-service/internal/cache"
	"github.com/prepflow/practice-service/internal/content"
	"github.com/prepflow/practice-service/internal/fetch"
	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
	"github.com/prepflow/practice-service/internal/utils"
)

const summaryCacheTTL = 5 * time.Minute

// summaryInvalidateWindow coalesces cache invalidations from rapid authoring
// writes into one pattern delete.
const summaryInvalidateWindow = 100 * time.Millisecond

// QuestionService serves the question bank: single-question fetches, the
// filtered summary listing behind the bank page, and authoring operations.
type QuestionService interface {
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetRendered(ctx context.Context, id uint) (*RenderedQuestion, error)
	List(ctx context.Context, userID string, filters repositories.QuestionFilters) ([]*models.QuestionSummary, int64, error)
	Create(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
	CountByType(ctx context.Context) (map[models.QuestionType]int64, error)
	Close()
}

// RenderedSource is one passage tab rendered to neutral node trees.
type RenderedSource struct {
	Index int             `json:"index"`
	Nodes []*content.Node `json:"nodes"`
}

type RenderedOption struct {
	ID    string          `json:"id"`
	Nodes []*content.Node `json:"nodes"`
}

// RenderedQuestion is the display-ready projection of one question: passage
// sources grouped by tab index, content and options rendered to node trees.
// The answer key is never part of it.
type RenderedQuestion struct {
	ID           uint                `json:"id"`
	Kind         models.QuestionKind `json:"kind"`
	Type         models.QuestionType `json:"type"`
	Difficulty   int                 `json:"difficulty"`
	Tabbed       bool                `json:"tabbed"`
	Sources      []RenderedSource    `json:"sources,omitempty"`
	Content      []*content.Node     `json:"content"`
	Options      []RenderedOption    `json:"options,omitempty"`
	SubQuestions []*RenderedQuestion `json:"subquestions,omitempty"`
}

type questionService struct {
	repo       repositories.Repository
	cache      cache.CacheService
	logger     utils.Logger
	validator  *utils.Validator
	qvalidate  *utils.QuestionValidator
	invalidate *fetch.Debouncer
}

func NewQuestionService(repo repositories.Repository, cacheService cache.CacheService, logger utils.Logger, validator *utils.Validator) QuestionService {
	return &questionService{
		repo:       repo,
		cache:      cacheService,
		logger:     logger,
		validator:  validator,
		qvalidate:  utils.NewQuestionValidator(),
		invalidate: fetch.NewDebouncer(summaryInvalidateWindow),
	}
}

func (s *questionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) GetRendered(ctx context.Context, id uint) (*RenderedQuestion, error) {
	question, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rendered, err := renderQuestion(question)
	if err != nil {
		return nil, fmt.Errorf("failed to render question %d: %w", id, err)
	}
	return rendered, nil
}

func renderQuestion(q *models.Question) (*RenderedQuestion, error) {
	rendered := &RenderedQuestion{
		ID:         q.ID,
		Kind:       q.Kind,
		Type:       q.Type,
		Difficulty: q.Difficulty,
	}

	passage, err := q.PassageBlocks()
	if err != nil {
		return nil, err
	}
	sources := content.Group(passage)
	rendered.Tabbed = content.IsTabbedDisplay(string(q.Type), len(sources))
	for _, src := range sources {
		rendered.Sources = append(rendered.Sources, RenderedSource{
			Index: src.Index,
			Nodes: renderBlocks(src.Blocks),
		})
	}

	blocks, err := q.ContentBlocks()
	if err != nil {
		return nil, err
	}
	rendered.Content = renderBlocks(blocks)

	options, err := q.OptionList()
	if err != nil {
		return nil, err
	}
	for _, opt := range options {
		rendered.Options = append(rendered.Options, RenderedOption{
			ID:    opt.ID,
			Nodes: renderBlocks(opt.Blocks),
		})
	}

	for i := range q.SubQuestions {
		sub, err := renderQuestion(&q.SubQuestions[i])
		if err != nil {
			return nil, err
		}
		rendered.SubQuestions = append(rendered.SubQuestions, sub)
	}
	return rendered, nil
}

func renderBlocks(blocks []content.Block) []*content.Node {
	nodes := make([]*content.Node, 0, len(blocks))
	for _, b := range blocks {
		nodes = append(nodes, content.Render(b))
	}
	return nodes
}

type cachedSummaries struct {
	Summaries []*models.QuestionSummary `json:"summaries"`
	Total     int64                     `json:"total"`
}

func (s *questionService) List(ctx context.Context, userID string, filters repositories.QuestionFilters) ([]*models.QuestionSummary, int64, error) {
	if !filters.ProgressFilter.Valid() {
		return nil, 0, ErrValidationFailed
	}

	key := summaryCacheKey(userID, filters)
	var cached cachedSummaries
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached.Summaries, cached.Total, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("summary cache read failed", "error", err)
	}

	summaries, total, err := s.repo.Question().List(ctx, userID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	if err := s.cache.Set(ctx, key, cachedSummaries{Summaries: summaries, Total: total}, summaryCacheTTL); err != nil {
		s.logger.Warn("summary cache write failed", "error", err)
	}

	return summaries, total, nil
}

func (s *questionService) Create(ctx context.Context, question *models.Question) error {
	if err := s.validator.Validate(question); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	if err := s.qvalidate.ValidateQuestion(question); err != nil {
		return fmt.Errorf("%w: %s", ErrQuestionInvalidContent, err)
	}

	for i := range question.SubQuestions {
		question.SubQuestions[i].SubIndex = i
		question.SubQuestions[i].Kind = models.KindSingle
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	s.invalidateSummaries(ctx)
	s.logger.Info("question created", "question_id", question.ID, "type", question.Type)
	return nil
}

func (s *questionService) Update(ctx context.Context, question *models.Question) error {
	if err := s.validator.Validate(question); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}
	if err := s.qvalidate.ValidateQuestion(question); err != nil {
		return fmt.Errorf("%w: %s", ErrQuestionInvalidContent, err)
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to update question: %w", err)
	}

	s.invalidateSummaries(ctx)
	return nil
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	s.invalidateSummaries(ctx)
	return nil
}

func (s *questionService) CountByType(ctx context.Context) (map[models.QuestionType]int64, error) {
	return s.repo.Question().CountByType(ctx)
}

// invalidateSummaries drops every cached listing. Invalidation is debounced:
// a burst of writes, such as a flat-file import creating one question per row,
// collapses into a single pattern delete after the quiet window.
func (s *questionService) invalidateSummaries(ctx context.Context) {
	s.invalidate.Trigger(func() {
		if err := s.cache.DeletePattern(context.Background(), "questions:summaries:*"); err != nil {
			s.logger.Warn("summary cache invalidation failed", "error", err)
		}
	})
}

// Close cancels any pending cache invalidation; called on shutdown.
func (s *questionService) Close() {
	s.invalidate.Stop()
}

func summaryCacheKey(userID string, filters repositories.QuestionFilters) string {
	payload, _ := json.Marshal(struct {
		UserID  string
		Filters repositories.QuestionFilters
	}{userID, filters})
	sum := sha256.Sum256(payload)
	return "questions:summaries:" + hex.EncodeToString(sum[:16])
}
