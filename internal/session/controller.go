package session

import (
	"context"
	"errors"
	"sync"

	"github.com/prepflow/practice-service/internal/models"
	"github.com/prepflow/practice-service/internal/utils"
)

// State of the controller's question lifecycle.
type State string

const (
	StateLoading         State = "loading"
	StateDisplaying      State = "displaying"
	StateAwaitingAdvance State = "awaiting_advance"
	StateExhausted       State = "exhausted"
)

var (
	ErrNoQuestionLoaded = errors.New("no question loaded")
	ErrAlreadySubmitted = errors.New("question already submitted")
	ErrNotSubmitted     = errors.New("question not yet submitted")
	ErrAnswerIncomplete = errors.New("answer is incomplete")
	ErrSessionExhausted = errors.New("no more questions available")

	// ErrSubIndexOutOfRange indicates a sequencing bug: the sub-question
	// index passed the end of the composite. It is never clamped silently.
	ErrSubIndexOutOfRange = errors.New("sub-question index out of range")
)

// SubmitRequest is the payload handed to the gateway for one answered
// (sub-)question.
type SubmitRequest struct {
	UserID         string                  `json:"user_id"`
	QuestionID     uint                    `json:"question_id"`
	SelectedOption *string                 `json:"selected_option,omitempty"`
	SelectedPairs  []models.CellCoordinate `json:"selected_pairs,omitempty"`
	TimeTaken      int                     `json:"time_taken"`
}

// Gateway is the network boundary that accepts an answer and returns the next
// top-level question, or nil when the bank is exhausted.
type Gateway interface {
	SubmitAnswer(ctx context.Context, req *SubmitRequest) (*models.Question, error)
}

// Controller orchestrates one logical question at a time: a standalone item
// or a composite of passage plus ordered sub-questions. It owns the
// sub-question index, the pending answer collector and the elapsed-time
// tracker. All collaborators are injected. One controller is shared by every
// request of a user's session, so the mutable fields are guarded; Submit holds
// the lock across the gateway call, serializing a user's requests.
type Controller struct {
	userID  string
	gateway Gateway
	logger  utils.Logger
	tracker *Tracker

	mu        sync.Mutex
	question  *models.Question
	subIndex  int
	collector *Collector
	state     State

	next       *models.Question
	nextLoaded bool
}

func NewController(userID string, gateway Gateway, logger utils.Logger) *Controller {
	return &Controller{
		userID:  userID,
		gateway: gateway,
		logger:  logger,
		tracker: NewTracker(),
		state:   StateLoading,
	}
}

// Start launches the elapsed-time tracker. The tracker stops when ctx is
// cancelled or Close is called.
func (c *Controller) Start(ctx context.Context) {
	c.tracker.Start(ctx)
}

// Close tears down the tracker's tick source.
func (c *Controller) Close() {
	c.tracker.Stop()
}

// Load installs a new question: the sub-question index, pending answer,
// submitted flag and timer are all reset, for composite and single kinds
// alike.
func (c *Controller) Load(q *models.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(q)
}

func (c *Controller) load(q *models.Question) error {
	if q == nil {
		return ErrNoQuestionLoaded
	}

	c.question = q
	c.subIndex = 0
	c.next = nil
	c.nextLoaded = false
	c.state = StateDisplaying
	c.tracker.Reset()

	cur, err := c.currentSubQuestion()
	if err != nil {
		return err
	}
	c.collector = NewCollector(ModeFor(cur.Type))

	c.logger.Debug("question loaded",
		"question_id", q.ID,
		"kind", q.Kind,
		"type", q.Type)
	return nil
}

// CurrentSubQuestion returns the displayed item: the question itself for
// single kinds, otherwise the sub-question at the current index.
func (c *Controller) CurrentSubQuestion() (*models.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSubQuestion()
}

func (c *Controller) currentSubQuestion() (*models.Question, error) {
	if c.question == nil {
		return nil, ErrNoQuestionLoaded
	}
	if !c.question.IsComposite() {
		return c.question, nil
	}
	if c.subIndex >= len(c.question.SubQuestions) {
		return nil, ErrSubIndexOutOfRange
	}
	return &c.question.SubQuestions[c.subIndex], nil
}

// Collector exposes the pending answer for the displayed sub-question. The
// collector pointer is swapped on load and sub-question advance, so reads go
// through the lock; the collector itself carries its own.
func (c *Controller) Collector() *Collector {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collector
}

// Tracker exposes the elapsed-time stopwatch.
func (c *Controller) Tracker() *Tracker {
	return c.tracker
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SubIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subIndex
}

func (c *Controller) Submitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateAwaitingAdvance
}

func (c *Controller) Exhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateExhausted
}

func (c *Controller) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextLoaded && c.next != nil
}

// Question returns the loaded top-level question, or nil.
func (c *Controller) Question() *models.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.question
}

// Submit sends the pending answer through the gateway. Within a composite it
// advances to the next sub-question, resetting the collector but letting time
// accrue; on the final sub-question it stores the gateway's next-question
// reference and waits for an explicit Advance. A gateway failure leaves the
// state untouched so the caller may retry.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateAwaitingAdvance || c.state == StateExhausted {
		return ErrAlreadySubmitted
	}

	cur, err := c.currentSubQuestion()
	if err != nil {
		return err
	}

	// Invalid answer shapes are rejected locally; no network call happens.
	if !c.collector.Ready() {
		return ErrAnswerIncomplete
	}

	req := &SubmitRequest{
		UserID:         c.userID,
		QuestionID:     cur.ID,
		SelectedOption: c.collector.SelectedOption(),
		SelectedPairs:  c.collector.Pairs(),
		TimeTaken:      c.tracker.Elapsed(),
	}

	next, err := c.gateway.SubmitAnswer(ctx, req)
	if err != nil {
		c.logger.LogError(err, "answer submission failed",
			"question_id", cur.ID,
			"sub_index", c.subIndex)
		return err
	}
	c.collector.MarkSubmitted()

	if c.question.IsComposite() && c.subIndex+1 < len(c.question.SubQuestions) {
		c.subIndex++
		sub := &c.question.SubQuestions[c.subIndex]
		c.collector = NewCollector(ModeFor(sub.Type))
		// The timer keeps running: time accrues across sub-questions of
		// one composite item.
		c.state = StateDisplaying
		return nil
	}

	c.next = next
	c.nextLoaded = true
	c.state = StateAwaitingAdvance
	return nil
}

// Advance moves to the stored next question, or reports exhaustion when the
// gateway returned none. It never auto-fires after Submit; the caller decides
// when to move on.
func (c *Controller) Advance() (*models.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.nextLoaded {
		return nil, ErrNotSubmitted
	}
	if c.next == nil {
		c.state = StateExhausted
		return nil, ErrSessionExhausted
	}

	next := c.next
	if err := c.load(next); err != nil {
		return nil, err
	}
	return next, nil
}
