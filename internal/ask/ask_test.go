package ask

import (
	"context"
	"errors"
	"testing"

	"github.com/selahproject/selah/internal/api"
	"github.com/selahproject/selah/internal/favorites"
)

type fakeAsker struct {
	answer *api.Answer
	err    error
	asked  []string
}

func (f *fakeAsker) Ask(ctx context.Context, question string) (*api.Answer, error) {
	f.asked = append(f.asked, question)
	return f.answer, f.err
}

func (f *fakeAsker) Conversations(ctx context.Context) ([]api.Conversation, error) {
	return []api.Conversation{{ID: 1, Question: "past question"}}, nil
}

func TestController_AskSuccess(t *testing.T) {
	ai := &fakeAsker{answer: &api.Answer{Question: "What is grace?", Summary: "unmerited favor"}}
	c := New(ai)

	if err := c.Ask(context.Background(), "  What is grace?  "); err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if len(ai.asked) != 1 || ai.asked[0] != "What is grace?" {
		t.Fatalf("asked = %v, want trimmed question", ai.asked)
	}

	snap := c.Snapshot()
	if snap.Phase != PhaseAnswered || snap.Answer == nil || snap.Answer.Summary != "unmerited favor" {
		t.Fatalf("snapshot = %#v", snap)
	}
	if !c.HasAnswer() {
		t.Fatal("HasAnswer = false after success")
	}
}

func TestController_AskEmptyQuestion(t *testing.T) {
	ai := &fakeAsker{}
	c := New(ai)

	if err := c.Ask(context.Background(), "   "); err == nil {
		t.Fatal("blank question accepted")
	}
	if len(ai.asked) != 0 {
		t.Fatal("blank question reached the API")
	}
}

func TestController_AskFailureIsRecoverable(t *testing.T) {
	ai := &fakeAsker{err: errors.New("service down")}
	c := New(ai)

	if err := c.Ask(context.Background(), "why?"); err == nil {
		t.Fatal("Ask swallowed the error")
	}
	snap := c.Snapshot()
	if snap.Phase != PhaseFailed || snap.ErrMsg == "" {
		t.Fatalf("snapshot after failure = %#v, want failed phase with message", snap)
	}
	if c.HasAnswer() {
		t.Fatal("HasAnswer = true after failure")
	}

	// A retry succeeds and clears the failure.
	ai.err = nil
	ai.answer = &api.Answer{Question: "why?", Summary: "because"}
	if err := c.Ask(context.Background(), "why?"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if snap = c.Snapshot(); snap.Phase != PhaseAnswered || snap.ErrMsg != "" {
		t.Fatalf("snapshot after retry = %#v", snap)
	}
}

func TestController_SaveToFavorites(t *testing.T) {
	ai := &fakeAsker{answer: &api.Answer{Question: "q", Summary: "s"}}
	c := New(ai)
	fav := favorites.Open(t.TempDir())

	// Saving before any answer is a no-op.
	c.SaveTo(fav)
	if len(fav.Conversations()) != 0 {
		t.Fatal("save without answer stored something")
	}

	if err := c.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	c.SaveTo(fav)
	if !fav.IsConversationSaved("q") {
		t.Fatal("answer not saved to favorites")
	}
}

func TestController_Reset(t *testing.T) {
	ai := &fakeAsker{answer: &api.Answer{Question: "q", Summary: "s"}}
	c := New(ai)
	if err := c.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	c.Reset()
	snap := c.Snapshot()
	if snap.Phase != PhaseIdle || snap.Answer != nil || snap.Question != "" {
		t.Fatalf("snapshot after reset = %#v", snap)
	}
}
