package favorites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/selahproject/selah/internal/api"
)

func TestStore_VerseDedupAndRemoval(t *testing.T) {
	s := Open(t.TempDir())

	v := api.Verse{ID: 1, Number: 1, Text: "In the beginning", BookName: "Genesis"}
	s.AddVerse(v)
	s.AddVerse(v)
	s.AddVerse(api.Verse{ID: 2, Number: 2, Text: "And the earth"})

	if got := s.Verses(); len(got) != 2 {
		t.Fatalf("Verses() = %d entries, want 2 (duplicate ignored)", len(got))
	}
	if !s.IsVerseSaved(1) {
		t.Fatal("IsVerseSaved(1) = false, want true")
	}

	s.RemoveVerse(1)
	if s.IsVerseSaved(1) {
		t.Fatal("IsVerseSaved(1) = true after removal")
	}
	if got := s.Verses(); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("Verses() = %#v, want only verse 2", got)
	}
}

func TestStore_ConversationDedupByQuestion(t *testing.T) {
	s := Open(t.TempDir())

	a := api.Answer{Question: "What is grace?", Summary: "first"}
	s.AddConversation(a)
	s.AddConversation(api.Answer{Question: "What is grace?", Summary: "second"})

	got := s.Conversations()
	if len(got) != 1 {
		t.Fatalf("Conversations() = %d entries, want 1", len(got))
	}
	if got[0].Summary != "first" {
		t.Fatalf("Summary = %q, want the first save kept", got[0].Summary)
	}
	if !s.IsConversationSaved("What is grace?") {
		t.Fatal("IsConversationSaved = false, want true")
	}

	s.RemoveConversation("What is grace?")
	if len(s.Conversations()) != 0 {
		t.Fatal("conversation not removed")
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir)
	s.AddVerse(api.Verse{ID: 3, Text: "Jesus wept", BookName: "John"})
	s.AddConversation(api.Answer{Question: "Why did Jesus weep?"})

	reopened := Open(dir)
	if !reopened.IsVerseSaved(3) {
		t.Fatal("saved verse lost across reopen")
	}
	if !reopened.IsConversationSaved("Why did Jesus weep?") {
		t.Fatal("saved conversation lost across reopen")
	}
}

func TestOpen_CorruptFileResetsOnlyThatCollection(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, versesFileName), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, conversationsFileName), []byte(`[{"question":"kept"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Open(dir)
	if len(s.Verses()) != 0 {
		t.Fatalf("Verses() = %#v, want empty after corrupt file", s.Verses())
	}
	if !s.IsConversationSaved("kept") {
		t.Fatal("valid conversations file was not loaded")
	}
}
