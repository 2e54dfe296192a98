package annot

import (
	"os"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "annotations.json")
	return Open(NewFilePersister(path)), path
}

func TestStore_HighlightLifecycle(t *testing.T) {
	s, _ := openTemp(t)

	h1 := s.AddHighlight(10, 1, 100, ColorYellow, "")
	h2 := s.AddHighlight(11, 1, 100, ColorGreen, "love this")

	all := s.Highlights()
	if len(all) != 2 || all[0].ID != h1.ID || all[1].ID != h2.ID {
		t.Fatalf("Highlights() = %#v, want [h1 h2] in creation order", all)
	}

	s.UpdateHighlightColor(h1.ID, ColorPink)
	s.UpdateHighlightNote(h1.ID, "updated")
	got := s.HighlightsForVerse(10)
	if len(got) != 1 || got[0].Color != ColorPink || got[0].Note != "updated" {
		t.Fatalf("HighlightsForVerse(10) = %#v, want pink with updated note", got)
	}

	// Mutating an absent id is a no-op, not an error.
	s.UpdateHighlightColor("missing", ColorBlue)
	s.RemoveHighlight("missing")
	if len(s.Highlights()) != 2 {
		t.Fatalf("store changed by no-op mutations")
	}

	s.RemoveHighlight(h2.ID)
	if chapter := s.HighlightsForChapter(1, 100); len(chapter) != 1 {
		t.Fatalf("HighlightsForChapter = %#v, want only h1", chapter)
	}
}

func TestStore_MultipleHighlightsPerVerse(t *testing.T) {
	s, _ := openTemp(t)

	first := s.AddHighlight(5, 1, 100, ColorYellow, "")
	s.AddHighlight(5, 1, 100, ColorBlue, "")

	got := s.HighlightsForVerse(5)
	if len(got) != 2 {
		t.Fatalf("HighlightsForVerse(5) = %d entries, want 2", len(got))
	}
	if got[0].ID != first.ID {
		t.Fatalf("first highlight = %q, want creation order preserved", got[0].ID)
	}
}

func TestStore_ToggleBookmark(t *testing.T) {
	s, _ := openTemp(t)
	params := BookmarkParams{
		VerseID: 7, BookID: 1, ChapterID: 100,
		BookName: "Genesis", ChapterNumber: 3, VerseNumber: 7,
	}

	s.ToggleBookmark(params)
	if !s.IsBookmarked(7) {
		t.Fatal("IsBookmarked(7) = false after first toggle, want true")
	}

	// A second toggle on the same verse removes, never duplicates.
	s.ToggleBookmark(params)
	if s.IsBookmarked(7) {
		t.Fatal("IsBookmarked(7) = true after second toggle, want false")
	}
	if len(s.Bookmarks()) != 0 {
		t.Fatalf("Bookmarks() = %#v, want empty", s.Bookmarks())
	}
}

func TestStore_MarkChapterCompleteIdempotent(t *testing.T) {
	s, _ := openTemp(t)

	s.MarkChapterComplete(1, "Genesis", 1, 50)
	s.MarkChapterComplete(1, "Genesis", 2, 50)
	s.MarkChapterComplete(1, "Genesis", 2, 50)

	p, ok := s.ReadingProgress(1)
	if !ok {
		t.Fatal("ReadingProgress(1) missing after completion")
	}
	if len(p.CompletedChapters) != 2 || p.CompletedChapters[0] != 1 || p.CompletedChapters[1] != 2 {
		t.Fatalf("CompletedChapters = %v, want [1 2]", p.CompletedChapters)
	}
	if p.LastReadChapter != 2 {
		t.Fatalf("LastReadChapter = %d, want 2", p.LastReadChapter)
	}
}

func TestStore_UpdateLastReadKeepsCompleted(t *testing.T) {
	s, _ := openTemp(t)

	s.MarkChapterComplete(1, "Genesis", 1, 50)
	s.UpdateLastRead(1, "Genesis", 4, 12, 50)

	p, _ := s.ReadingProgress(1)
	if len(p.CompletedChapters) != 1 || p.CompletedChapters[0] != 1 {
		t.Fatalf("CompletedChapters = %v, want [1] untouched by UpdateLastRead", p.CompletedChapters)
	}
	if p.LastReadChapter != 4 || p.LastReadVerse != 12 {
		t.Fatalf("last read = %d:%d, want 4:12", p.LastReadChapter, p.LastReadVerse)
	}
}

func TestStore_OverallProgressExactCompletion(t *testing.T) {
	s, _ := openTemp(t)

	// A three-chapter book with two chapters done is started, not completed.
	s.MarkChapterComplete(1, "2 John", 1, 3)
	s.MarkChapterComplete(1, "2 John", 2, 3)
	// A one-chapter book fully done.
	s.MarkChapterComplete(2, "Jude", 1, 1)

	overall := s.OverallProgress()
	if overall.BooksStarted != 2 {
		t.Fatalf("BooksStarted = %d, want 2", overall.BooksStarted)
	}
	if overall.BooksCompleted != 1 {
		t.Fatalf("BooksCompleted = %d, want 1", overall.BooksCompleted)
	}
	if overall.ChaptersRead != 3 {
		t.Fatalf("ChaptersRead = %d, want 3", overall.ChaptersRead)
	}
}

func TestStore_AudioRate(t *testing.T) {
	s, _ := openTemp(t)
	if rate := s.AudioRate(); rate != 1 {
		t.Fatalf("default AudioRate = %v, want 1", rate)
	}
	s.SetAudioRate(1.5)
	if rate := s.AudioRate(); rate != 1.5 {
		t.Fatalf("AudioRate = %v, want 1.5", rate)
	}
	s.SetAudioRate(0)
	if rate := s.AudioRate(); rate != 1.5 {
		t.Fatalf("AudioRate = %v after invalid set, want 1.5", rate)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.json")
	s := Open(NewFilePersister(path))

	h := s.AddHighlight(10, 1, 100, ColorGreen, "note")
	s.ToggleBookmark(BookmarkParams{VerseID: 11, BookID: 1, ChapterID: 100, BookName: "Genesis", ChapterNumber: 1, VerseNumber: 11})
	s.MarkChapterComplete(1, "Genesis", 1, 50)
	s.SetAudioRate(1.25)

	reopened := Open(NewFilePersister(path))
	if got := reopened.Highlights(); len(got) != 1 || got[0].ID != h.ID || got[0].Note != "note" {
		t.Fatalf("reopened highlights = %#v, want the saved one", got)
	}
	if !reopened.IsBookmarked(11) {
		t.Fatal("reopened store lost the bookmark")
	}
	p, ok := reopened.ReadingProgress(1)
	if !ok || len(p.CompletedChapters) != 1 {
		t.Fatalf("reopened progress = %#v ok=%v, want chapter 1 complete", p, ok)
	}
	if reopened.AudioRate() != 1.25 {
		t.Fatalf("reopened AudioRate = %v, want 1.25", reopened.AudioRate())
	}
}

func TestStore_SubscribeFiresOnMutation(t *testing.T) {
	s, _ := openTemp(t)
	calls := 0
	s.Subscribe(func() { calls++ })

	s.AddHighlight(1, 1, 1, ColorYellow, "")
	s.SetAudioRate(2)
	if calls != 2 {
		t.Fatalf("subscriber ran %d times, want 2", calls)
	}
}

func TestFilePersister_CorruptSectionResetsOnlyThatSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.json")
	payload := `{
		"highlights": "not an array",
		"bookmarks": [{"id":"b1","verseId":9,"bookId":1,"chapterId":100,"bookName":"Genesis","chapterNumber":1,"verseNumber":9}],
		"readingProgress": {"1": {"bookId":1,"bookName":"Genesis","totalChapters":50,"completedChapters":[1]}},
		"audioRate": 1.75
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := NewFilePersister(path).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if snap.Highlights != nil {
		t.Fatalf("Highlights = %#v, want reset to nil", snap.Highlights)
	}
	if len(snap.Bookmarks) != 1 || snap.Bookmarks[0].ID != "b1" {
		t.Fatalf("Bookmarks = %#v, want the valid one kept", snap.Bookmarks)
	}
	if p, ok := snap.Progress[1]; !ok || len(p.CompletedChapters) != 1 {
		t.Fatalf("Progress = %#v, want book 1 kept", snap.Progress)
	}
	if snap.AudioRate != 1.75 {
		t.Fatalf("AudioRate = %v, want 1.75", snap.AudioRate)
	}
}

func TestFilePersister_WholeDocumentCorruptYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.json")
	if err := os.WriteFile(path, []byte("{{{"), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := NewFilePersister(path).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(snap.Highlights) != 0 || len(snap.Bookmarks) != 0 || len(snap.Progress) != 0 {
		t.Fatalf("corrupt document did not reset: %#v", snap)
	}
	if snap.AudioRate != 1 {
		t.Fatalf("AudioRate = %v, want default 1", snap.AudioRate)
	}
}

func TestFilePersister_MissingFileYieldsDefaults(t *testing.T) {
	snap, err := NewFilePersister(filepath.Join(t.TempDir(), "nope.json")).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if snap.AudioRate != 1 || snap.Progress == nil {
		t.Fatalf("defaults not applied: %#v", snap)
	}
}
