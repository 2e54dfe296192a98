// Package ask drives the AI question-answering flow: it submits a free-text
// question to the remote AI service and exposes the structured answer along
// with loading and error state.
package ask

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/selahproject/selah/internal/api"
	"github.com/selahproject/selah/internal/favorites"
)

// Phase is the Q&A flow state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseAnswered
	PhaseFailed
)

// Controller mediates between the UI and the AI service.
type Controller struct {
	mu sync.Mutex
	ai api.Asker

	phase    Phase
	question string
	answer   *api.Answer
	errMsg   string
}

// New builds a Q&A controller over the given AI client.
func New(ai api.Asker) *Controller {
	return &Controller{ai: ai}
}

// Snapshot is a copy of the Q&A state for rendering.
type Snapshot struct {
	Phase    Phase
	Question string
	Answer   *api.Answer
	ErrMsg   string
}

// Snapshot returns a defensive copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{Phase: c.phase, Question: c.question, ErrMsg: c.errMsg}
	if c.answer != nil {
		a := *c.answer
		snap.Answer = &a
	}
	return snap
}

// Ask submits the question. A failure is recoverable: the error message is
// kept for display and retry is manual re-submission.
func (c *Controller) Ask(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("ask: empty question")
	}

	c.mu.Lock()
	c.phase = PhaseLoading
	c.question = question
	c.answer = nil
	c.errMsg = ""
	c.mu.Unlock()

	answer, err := c.ai.Ask(ctx, question)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.phase = PhaseFailed
		c.errMsg = "the answer could not be fetched, please try again"
		return fmt.Errorf("ask: %w", err)
	}
	c.phase = PhaseAnswered
	c.answer = answer
	return nil
}

// HasAnswer reports whether an answer is available to display. The answer
// view redirects back to the ask flow when this is false.
func (c *Controller) HasAnswer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseAnswered && c.answer != nil
}

// SaveTo persists the current answer into the favorites store.
func (c *Controller) SaveTo(fav *favorites.Store) {
	c.mu.Lock()
	answer := c.answer
	c.mu.Unlock()
	if answer != nil {
		fav.AddConversation(*answer)
	}
}

// Reset returns the flow to idle, discarding any answer.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseIdle
	c.question = ""
	c.answer = nil
	c.errMsg = ""
}

// Conversations lists past saved exchanges from the AI service.
func (c *Controller) Conversations(ctx context.Context) ([]api.Conversation, error) {
	return c.ai.Conversations(ctx)
}
