package services

import (
	"context"
	"errors"
	"sync"

	"github.com/prepflow/practice-service/internal/fetch"
	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/session"
	"github.com/prepflow/practice-service/internal/utils"
)

// SessionView is the client-facing snapshot of a practice session.
type SessionView struct {
	QuestionID  uint                    `json:"question_id,omitempty"`
	Kind        models.QuestionKind     `json:"kind,omitempty"`
	SubIndex    int                     `json:"sub_index"`
	SubCount    int                     `json:"sub_count"`
	State       session.State           `json:"state"`
	Elapsed     int                     `json:"elapsed"`
	Ready       bool                    `json:"ready"`
	HasNext     bool                    `json:"has_next"`
	Current     *models.Question        `json:"current,omitempty"`
	Selected    *string                 `json:"selected_option,omitempty"`
	Pairs       []models.CellCoordinate `json:"selected_pairs,omitempty"`
}

// SessionService holds one live practice session per user: a question
// controller fed from the bank through the submission gateway. Sessions are
// in-memory; closing one cancels its timer.
type SessionService interface {
	Start(ctx context.Context, userID string) (*SessionView, error)
	Get(ctx context.Context, userID string) (*SessionView, error)
	Select(ctx context.Context, userID, optionID string) (*SessionView, error)
	SelectGrid(ctx context.Context, userID string, row, col int) (*SessionView, error)
	Submit(ctx context.Context, userID string) (*SessionView, error)
	Advance(ctx context.Context, userID string) (*SessionView, error)
	Pause(ctx context.Context, userID string) (*SessionView, error)
	Resume(ctx context.Context, userID string) (*SessionView, error)
	Close(userID string)
	CloseAll()
}

type sessionService struct {
	practice PracticeService
	logger   utils.Logger

	mu       sync.Mutex
	sessions map[string]*session.Controller
	// guards drop the result of a Start superseded by a newer Start for the
	// same user while its bank fetch was still in flight.
	guards map[string]*fetch.Guard
}

func NewSessionService(practice PracticeService, logger utils.Logger) SessionService {
	return &sessionService{
		practice: practice,
		logger:   logger,
		sessions: make(map[string]*session.Controller),
		guards:   make(map[string]*fetch.Guard),
	}
}

func (s *sessionService) guard(userID string) *fetch.Guard {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guards[userID]
	if !ok {
		g = &fetch.Guard{}
		s.guards[userID] = g
	}
	return g
}

func (s *sessionService) Start(ctx context.Context, userID string) (*SessionView, error) {
	if userID == "" {
		return nil, ErrValidationFailed
	}

	token := s.guard(userID).Begin()

	next, err := s.practice.NextQuestion(ctx, userID)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, ErrSessionExhausted
	}

	ctrl := session.NewController(userID, s.practice, s.logger)
	if err := ctrl.Load(next); err != nil {
		return nil, err
	}

	installed := s.guard(userID).Apply(token, func() {
		// The tracker outlives the request; it stops when the session closes.
		ctrl.Start(context.Background())

		s.mu.Lock()
		if old, ok := s.sessions[userID]; ok {
			old.Close()
		}
		s.sessions[userID] = ctrl
		s.mu.Unlock()
	})
	if !installed {
		// A newer Start won while our fetch was in flight; its session stays.
		s.logger.Info("stale session start discarded", "user_id", userID, "question_id", next.ID)
		return s.Get(ctx, userID)
	}

	s.logger.Info("practice session started", "user_id", userID, "question_id", next.ID)
	return s.view(ctrl), nil
}

func (s *sessionService) Get(ctx context.Context, userID string) (*SessionView, error) {
	ctrl, err := s.controller(userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctrl), nil
}

func (s *sessionService) Select(ctx context.Context, userID, optionID string) (*SessionView, error) {
	ctrl, err := s.controller(userID)
	if err != nil {
		return nil, err
	}
	ctrl.Collector().Select(optionID)
	return s.view(ctrl), nil
}

func (s *sessionService) SelectGrid(ctx context.Context, userID string, row, col int) (*SessionView, error) {
	ctrl, err := s.controller(userID)
	if err != nil {
		return nil, err
	}
	ctrl.Collector().SelectGrid(row, col)
	return s.view(ctrl), nil
}

func (s *sessionService) Submit(ctx context.Context, userID string) (*SessionView, error) {
	ctrl, err := s.controller(userID)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Submit(ctx); err != nil {
		return nil, err
	}
	return s.view(ctrl), nil
}

func (s *sessionService) Advance(ctx context.Context, userID string) (*SessionView, error) {
	ctrl, err := s.controller(userID)
	if err != nil {
		return nil, err
	}
	if _, err := ctrl.Advance(); err != nil {
		if errors.Is(err, session.ErrSessionExhausted) {
			s.logger.Info("question bank exhausted", "user_id", userID)
			return s.view(ctrl), nil
		}
		return nil, err
	}
	return s.view(ctrl), nil
}

func (s *sessionService) Pause(ctx context.Context, userID string) (*SessionView, error) {
	ctrl, err := s.controller(userID)
	if err != nil {
		return nil, err
	}
	ctrl.Tracker().Pause()
	return s.view(ctrl), nil
}

func (s *sessionService) Resume(ctx context.Context, userID string) (*SessionView, error) {
	ctrl, err := s.controller(userID)
	if err != nil {
		return nil, err
	}
	ctrl.Tracker().Resume()
	return s.view(ctrl), nil
}

// Close tears down a user's session and its tick source.
func (s *sessionService) Close(userID string) {
	s.mu.Lock()
	ctrl, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if ok {
		ctrl.Close()
	}
}

// CloseAll tears down every live session; called on shutdown.
func (s *sessionService) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session.Controller)
	s.mu.Unlock()

	for _, ctrl := range sessions {
		ctrl.Close()
	}
}

func (s *sessionService) controller(userID string) (*session.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ctrl, nil
}

func (s *sessionService) view(ctrl *session.Controller) *SessionView {
	view := &SessionView{
		SubIndex: ctrl.SubIndex(),
		State:    ctrl.State(),
		Elapsed:  ctrl.Tracker().Elapsed(),
		HasNext:  ctrl.HasNext(),
	}

	if q := ctrl.Question(); q != nil {
		view.QuestionID = q.ID
		view.Kind = q.Kind
		view.SubCount = 1
		if q.IsComposite() {
			view.SubCount = len(q.SubQuestions)
		}
	}

	if cur, err := ctrl.CurrentSubQuestion(); err == nil {
		view.Current = cur
	} else if !errors.Is(err, session.ErrNoQuestionLoaded) {
		// Out-of-range here means a sequencing bug; make it visible.
		s.logger.Error("invariant violation reading current sub-question", "error", err)
	}

	if c := ctrl.Collector(); c != nil {
		view.Ready = c.Ready()
		view.Selected = c.SelectedOption()
		view.Pairs = c.Pairs()
	}

	return view
}
