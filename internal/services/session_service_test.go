package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/session"
	"github.com/prepflow/practice-service/internal/utils"
)

func newSessionService(repo *MockRepository) SessionService {
	practice := newPracticeService(repo, &capturePublisher{})
	return NewSessionService(practice, utils.NewDevelopmentLogger())
}

func TestSessionService_GetWithoutStart(t *testing.T) {
	svc := newSessionService(newMockRepository())

	_, err := svc.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_StartOnExhaustedBank(t *testing.T) {
	repo := newMockRepository()
	svc := newSessionService(repo)

	repo.questionRepo.On("NextUnanswered", mock.Anything, "u1").Return(nil, nil)

	_, err := svc.Start(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrSessionExhausted)
}

func TestSessionService_FullSingleChoiceFlow(t *testing.T) {
	repo := newMockRepository()
	svc := newSessionService(repo)
	defer svc.CloseAll()

	q1 := gradedQuestion(t, 1, models.ProblemSolving, models.AnswerKey{CorrectOptionID: strPtr("A")})

	repo.questionRepo.On("NextUnanswered", mock.Anything, "u1").Return(q1, nil).Once()

	view, err := svc.Start(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, uint(1), view.QuestionID)
	assert.Equal(t, session.StateDisplaying, view.State)
	assert.False(t, view.Ready)

	view, err = svc.Select(context.Background(), "u1", "A")
	require.NoError(t, err)
	assert.True(t, view.Ready)
	require.NotNil(t, view.Selected)
	assert.Equal(t, "A", *view.Selected)

	repo.questionRepo.On("GetByID", mock.Anything, uint(1)).Return(q1, nil)
	repo.submissionRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Submission) bool {
		return s.IsCorrect
	})).Return(nil)
	repo.questionRepo.On("NextUnanswered", mock.Anything, "u1").Return(nil, nil)

	view, err = svc.Submit(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, session.StateAwaitingAdvance, view.State)
	assert.False(t, view.HasNext)

	// Advancing with no next question ends the session gracefully.
	view, err = svc.Advance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, session.StateExhausted, view.State)
}

func TestSessionService_SubmitWithoutAnswer(t *testing.T) {
	repo := newMockRepository()
	svc := newSessionService(repo)
	defer svc.CloseAll()

	q1 := gradedQuestion(t, 1, models.ProblemSolving, models.AnswerKey{CorrectOptionID: strPtr("A")})
	repo.questionRepo.On("NextUnanswered", mock.Anything, "u1").Return(q1, nil).Once()

	_, err := svc.Start(context.Background(), "u1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "u1")
	assert.ErrorIs(t, err, session.ErrAnswerIncomplete)
	repo.submissionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSessionService_PauseAndResume(t *testing.T) {
	repo := newMockRepository()
	svc := newSessionService(repo)
	defer svc.CloseAll()

	q1 := gradedQuestion(t, 1, models.ProblemSolving, models.AnswerKey{CorrectOptionID: strPtr("A")})
	repo.questionRepo.On("NextUnanswered", mock.Anything, "u1").Return(q1, nil).Once()

	_, err := svc.Start(context.Background(), "u1")
	require.NoError(t, err)

	_, err = svc.Pause(context.Background(), "u1")
	require.NoError(t, err)

	_, err = svc.Resume(context.Background(), "u1")
	require.NoError(t, err)
}

func TestSessionService_CloseEndsSession(t *testing.T) {
	repo := newMockRepository()
	svc := newSessionService(repo)

	q1 := gradedQuestion(t, 1, models.ProblemSolving, models.AnswerKey{CorrectOptionID: strPtr("A")})
	repo.questionRepo.On("NextUnanswered", mock.Anything, "u1").Return(q1, nil).Once()

	_, err := svc.Start(context.Background(), "u1")
	require.NoError(t, err)

	svc.Close("u1")
	_, err = svc.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Closing an unknown user is a no-op.
	assert.NotPanics(t, func() { svc.Close("nobody") })
}

func TestSessionService_StartReplacesExistingSession(t *testing.T) {
	repo := newMockRepository()
	svc := newSessionService(repo)
	defer svc.CloseAll()

	q1 := gradedQuestion(t, 1, models.ProblemSolving, models.AnswerKey{CorrectOptionID: strPtr("A")})
	q2 := gradedQuestion(t, 2, models.CriticalReasoning, models.AnswerKey{CorrectOptionID: strPtr("B")})

	repo.questionRepo.On("NextUnanswered", mock.Anything, "u1").Return(q1, nil).Once()
	repo.questionRepo.On("NextUnanswered", mock.Anything, "u1").Return(q2, nil).Once()

	_, err := svc.Start(context.Background(), "u1")
	require.NoError(t, err)

	view, err := svc.Start(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, uint(2), view.QuestionID)
}

func TestSessionService_StaleStartDiscarded(t *testing.T) {
	repo := newMockRepository()
	svc := newSessionService(repo)
	defer svc.CloseAll()

	q1 := gradedQuestion(t, 1, models.ProblemSolving, models.AnswerKey{CorrectOptionID: strPtr("A")})
	q2 := gradedQuestion(t, 2, models.CriticalReasoning, models.AnswerKey{CorrectOptionID: strPtr("B")})

	started := make(chan struct{})
	release := make(chan struct{})
	repo.questionRepo.On("NextUnanswered", mock.Anything, "u1").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(q1, nil).Once()
	repo.questionRepo.On("NextUnanswered", mock.Anything, "u1").Return(q2, nil).Once()

	type startResult struct {
		view *SessionView
		err  error
	}
	slow := make(chan startResult, 1)
	go func() {
		view, err := svc.Start(context.Background(), "u1")
		slow <- startResult{view, err}
	}()

	// The slow Start is stuck in its bank fetch; a second Start wins the race.
	<-started
	view, err := svc.Start(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, uint(2), view.QuestionID)

	close(release)
	result := <-slow
	require.NoError(t, result.err)
	assert.Equal(t, uint(2), result.view.QuestionID)

	current, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, uint(2), current.QuestionID)
}
