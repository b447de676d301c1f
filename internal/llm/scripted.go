package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ScriptedCompleter replays a fixed sequence of replies with an optional
// per-reply delay. It backs the onboarding chat when no provider is
// configured, and tests. After the script runs out, the final reply repeats.
type ScriptedCompleter struct {
	mu      sync.Mutex
	replies []string
	delay   time.Duration
	idx     int
}

func NewScriptedCompleter(replies []string, delay time.Duration) *ScriptedCompleter {
	return &ScriptedCompleter{replies: replies, delay: delay}
}

// DefaultOnboardingScript is the canned exchange shown to new users before a
// provider key is configured.
var DefaultOnboardingScript = []string{
	"Hi! I'm your GMAT prep assistant. What score are you aiming for?",
	"Great goal. How many hours per week can you study?",
	"Got it. I'll put together a study plan. Head to your dashboard to see it, or ask me anything about the exam.",
	"You can practice questions from the question bank at any time. Good luck!",
}

func (s *ScriptedCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	s.mu.Lock()
	if len(s.replies) == 0 {
		s.mu.Unlock()
		return "", fmt.Errorf("no scripted replies configured")
	}
	reply := s.replies[s.idx]
	if s.idx < len(s.replies)-1 {
		s.idx++
	}
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return reply, nil
}
