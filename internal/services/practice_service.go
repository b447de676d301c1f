package services

import (
	"context"
	"fmt"

	"github.com/prepflow/practice-service/internal/events"
	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/repositories"
	"github.com/prepflow/practice-service/internal/session"
	"github.com/prepflow/practice-service/internal/utils"
)

// PracticeService is the submission gateway: it grades an answer against the
// stored key, persists the submission, publishes the result event and hands
// back the next unanswered question (nil when the bank is exhausted).
type PracticeService interface {
	session.Gateway

	NextQuestion(ctx context.Context, userID string) (*models.Question, error)
}

type practiceService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
}

func NewPracticeService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, validator *utils.Validator) PracticeService {
	return &practiceService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *practiceService) SubmitAnswer(ctx context.Context, req *session.SubmitRequest) (*models.Question, error) {
	if req.UserID == "" || req.QuestionID == 0 {
		return nil, ErrValidationFailed
	}

	question, err := s.repo.Question().GetByID(ctx, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	isCorrect, err := s.grade(question, req)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		UserID:         req.UserID,
		QuestionID:     req.QuestionID,
		SelectedOption: req.SelectedOption,
		IsCorrect:      isCorrect,
		TimeTaken:      req.TimeTaken,
	}
	if err := submission.SetPairs(req.SelectedPairs); err != nil {
		return nil, fmt.Errorf("failed to encode selected pairs: %w", err)
	}

	if err := s.repo.Submission().Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	s.logger.Info("answer submitted",
		"user_id", req.UserID,
		"question_id", req.QuestionID,
		"is_correct", isCorrect,
		"time_taken", req.TimeTaken)

	if err := s.publisher.PublishSubmissionEvent(ctx, &events.SubmissionEvent{
		Type:         events.EventAnswerSubmitted,
		UserID:       req.UserID,
		QuestionID:   req.QuestionID,
		QuestionType: question.Type,
		IsCorrect:    isCorrect,
		TimeTaken:    req.TimeTaken,
	}); err != nil {
		// Event delivery is best effort; the submission is already stored.
		s.logger.Warn("failed to publish submission event", "error", err)
	}

	return s.NextQuestion(ctx, req.UserID)
}

func (s *practiceService) NextQuestion(ctx context.Context, userID string) (*models.Question, error) {
	next, err := s.repo.Question().NextUnanswered(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find next question: %w", err)
	}
	return next, nil
}

// grade compares the submitted answer to the stored key. Shape mismatches are
// rejected; they indicate a client bug, not a wrong answer.
func (s *practiceService) grade(question *models.Question, req *session.SubmitRequest) (bool, error) {
	key, err := question.Key()
	if err != nil {
		return false, fmt.Errorf("failed to decode answer key: %w", err)
	}

	switch session.ModeFor(question.Type) {
	case session.ModeSingleChoice:
		if req.SelectedOption == nil {
			return false, ErrAnswerShapeInvalid
		}
		return key.CorrectOptionID != nil && *req.SelectedOption == *key.CorrectOptionID, nil

	case session.ModeTwoPart:
		if len(req.SelectedPairs) != 2 {
			return false, ErrAnswerShapeInvalid
		}
		return pairsMatch(req.SelectedPairs, key.SelectedPairs), nil

	case session.ModeGrid:
		if len(req.SelectedPairs) != 1 {
			return false, ErrAnswerShapeInvalid
		}
		return pairsMatch(req.SelectedPairs, key.SelectedPairs), nil

	default:
		return false, ErrQuestionInvalidType
	}
}

// pairsMatch compares coordinate sets order-insensitively.
func pairsMatch(got, want []models.CellCoordinate) bool {
	if len(got) != len(want) {
		return false
	}
	matched := make([]bool, len(want))
outer:
	for _, g := range got {
		for i, w := range want {
			if !matched[i] && g == w {
				matched[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}
