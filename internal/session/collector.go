package session

import (
	"sync"

	"github.com/prepflow/practice-service/internal/models"
)

// AnswerMode selects the collection semantics for a question's answer control.
type AnswerMode string

const (
	// ModeSingleChoice holds at most one selected option id.
	ModeSingleChoice AnswerMode = "single_choice"
	// ModeTwoPart holds one coordinate per column; exactly two columns are
	// required for submission.
	ModeTwoPart AnswerMode = "two_part"
	// ModeGrid holds a single row/column pair, pre-selected at {0,0}.
	ModeGrid AnswerMode = "grid"
)

// ModeFor maps a question type to its answer-collection mode.
func ModeFor(t models.QuestionType) AnswerMode {
	switch t {
	case models.TwoPartAnalysis:
		return ModeTwoPart
	case models.DataSufficiency, models.TableAnalysis:
		return ModeGrid
	default:
		return ModeSingleChoice
	}
}

// Collector tracks the pending answer for the currently displayed
// sub-question. All operations are in-memory; nothing touches remote state
// until the controller submits.
type Collector struct {
	mu sync.Mutex

	mode           AnswerMode
	selectedOption *string
	pairs          []models.CellCoordinate
	submitted      bool
}

// NewCollector creates an empty collector for the given mode. Grid mode
// starts with the {0,0} cell pre-selected.
func NewCollector(mode AnswerMode) *Collector {
	c := &Collector{mode: mode}
	if mode == ModeGrid {
		c.pairs = []models.CellCoordinate{{RowIndex: 0, ColumnIndex: 0}}
	}
	return c
}

func (c *Collector) Mode() AnswerMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Select records a single-choice selection. It is a no-op once the question
// has been submitted, and in non-single-choice modes.
func (c *Collector) Select(optionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitted || c.mode != ModeSingleChoice {
		return
	}
	c.selectedOption = &optionID
}

// SelectGrid records a coordinate selection. In two-part mode an existing
// entry sharing the column is replaced and the new entry appended, preserving
// the order of unrelated entries. In grid mode the single pair is replaced.
func (c *Collector) SelectGrid(row, col int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitted {
		return
	}

	coord := models.CellCoordinate{RowIndex: row, ColumnIndex: col}
	switch c.mode {
	case ModeTwoPart:
		kept := c.pairs[:0]
		for _, p := range c.pairs {
			if p.ColumnIndex != col {
				kept = append(kept, p)
			}
		}
		c.pairs = append(kept, coord)
	case ModeGrid:
		c.pairs = []models.CellCoordinate{coord}
	}
}

// Ready reports whether the pending answer is complete enough to submit.
func (c *Collector) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.mode {
	case ModeSingleChoice:
		return c.selectedOption != nil
	case ModeTwoPart:
		return len(c.pairs) == 2
	case ModeGrid:
		return len(c.pairs) == 1
	default:
		return false
	}
}

// SelectedOption returns the pending single-choice selection, if any.
func (c *Collector) SelectedOption() *string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedOption == nil {
		return nil
	}
	id := *c.selectedOption
	return &id
}

// Pairs returns a copy of the pending coordinate selections.
func (c *Collector) Pairs() []models.CellCoordinate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pairs == nil {
		return nil
	}
	out := make([]models.CellCoordinate, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// MarkSubmitted freezes the collector; further selections are ignored.
func (c *Collector) MarkSubmitted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitted = true
}

func (c *Collector) Submitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted
}
