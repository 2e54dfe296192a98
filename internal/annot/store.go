// Package annot is the single source of truth for reader annotations:
// highlights, bookmarks, per-book reading progress, and the narration rate
// preference. Every mutation persists synchronously through the injected
// Persister before returning, so a reload always observes the last write.
package annot

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns all annotation state. Safe for concurrent use.
//
// Store-level operations never fail on missing ids: removing or updating an
// absent entry is a no-op. Persistence failures are logged, not surfaced;
// the in-memory state stays authoritative for the rest of the process.
type Store struct {
	mu      sync.RWMutex
	persist Persister
	snap    Snapshot
	subs    []func()

	now   func() time.Time
	newID func() string
}

// Open loads the store through the given persister. A missing or corrupted
// payload falls back to empty defaults rather than failing startup.
func Open(p Persister) *Store {
	s := &Store{
		persist: p,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	snap, err := p.Load()
	if err != nil {
		log.Printf("annot: load failed, starting empty: %v", err)
		snap = defaultSnapshot()
	}
	if snap.Progress == nil {
		snap.Progress = make(map[int]Progress)
	}
	if snap.AudioRate <= 0 {
		snap.AudioRate = 1
	}
	s.snap = snap
	return s
}

// Subscribe registers fn to run after every committed mutation. Callbacks run
// synchronously on the mutating goroutine and must not call back into the
// store.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// commitLocked persists the current snapshot and notifies subscribers.
func (s *Store) commitLocked() {
	if err := s.persist.Save(s.snap); err != nil {
		log.Printf("annot: save failed: %v", err)
	}
	for _, fn := range s.subs {
		fn()
	}
}

// ─── Highlights ───

// AddHighlight appends a new highlight. It does not check for an existing
// highlight on the same verse; that check belongs to the caller.
func (s *Store) AddHighlight(verseID, bookID, chapterID int, color Color, note string) Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := Highlight{
		ID:        s.newID(),
		VerseID:   verseID,
		BookID:    bookID,
		ChapterID: chapterID,
		Color:     color,
		Note:      note,
		CreatedAt: s.now(),
	}
	s.snap.Highlights = append(s.snap.Highlights, h)
	s.commitLocked()
	return h
}

// RemoveHighlight deletes the highlight with the given id, if present.
func (s *Store) RemoveHighlight(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.snap.Highlights[:0]
	for _, h := range s.snap.Highlights {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	if len(kept) == len(s.snap.Highlights) {
		return
	}
	s.snap.Highlights = kept
	s.commitLocked()
}

// UpdateHighlightColor changes the color of an existing highlight in place.
func (s *Store) UpdateHighlightColor(id string, color Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Highlights {
		if s.snap.Highlights[i].ID == id {
			s.snap.Highlights[i].Color = color
			s.commitLocked()
			return
		}
	}
}

// UpdateHighlightNote changes the note of an existing highlight in place.
func (s *Store) UpdateHighlightNote(id, note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Highlights {
		if s.snap.Highlights[i].ID == id {
			s.snap.Highlights[i].Note = note
			s.commitLocked()
			return
		}
	}
}

// HighlightsForVerse returns the highlights on a verse in creation order.
func (s *Store) HighlightsForVerse(verseID int) []Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Highlight
	for _, h := range s.snap.Highlights {
		if h.VerseID == verseID {
			out = append(out, h)
		}
	}
	return out
}

// HighlightsForChapter returns the highlights within one chapter.
func (s *Store) HighlightsForChapter(bookID, chapterID int) []Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Highlight
	for _, h := range s.snap.Highlights {
		if h.BookID == bookID && h.ChapterID == chapterID {
			out = append(out, h)
		}
	}
	return out
}

// Highlights returns all highlights in creation order.
func (s *Store) Highlights() []Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Highlight, len(s.snap.Highlights))
	copy(out, s.snap.Highlights)
	return out
}

// ─── Bookmarks ───

// AddBookmark appends a new bookmark. Use ToggleBookmark for the one-per-verse
// behavior the UI relies on.
func (s *Store) AddBookmark(params BookmarkParams) Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBookmarkLocked(params)
}

func (s *Store) addBookmarkLocked(params BookmarkParams) Bookmark {
	b := Bookmark{
		ID:            s.newID(),
		VerseID:       params.VerseID,
		BookID:        params.BookID,
		ChapterID:     params.ChapterID,
		BookName:      params.BookName,
		ChapterNumber: params.ChapterNumber,
		VerseNumber:   params.VerseNumber,
		Note:          params.Note,
		CreatedAt:     s.now(),
	}
	s.snap.Bookmarks = append(s.snap.Bookmarks, b)
	s.commitLocked()
	return b
}

// RemoveBookmark deletes the bookmark with the given id, if present.
func (s *Store) RemoveBookmark(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeBookmarkLocked(id)
}

func (s *Store) removeBookmarkLocked(id string) {
	kept := s.snap.Bookmarks[:0]
	for _, b := range s.snap.Bookmarks {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(s.snap.Bookmarks) {
		return
	}
	s.snap.Bookmarks = kept
	s.commitLocked()
}

// IsBookmarked reports whether any bookmark points at the verse.
func (s *Store) IsBookmarked(verseID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.snap.Bookmarks {
		if b.VerseID == verseID {
			return true
		}
	}
	return false
}

// ToggleBookmark removes the existing bookmark for the verse if one exists,
// otherwise creates one. This toggle is the sole duplicate prevention for
// bookmarks.
func (s *Store) ToggleBookmark(params BookmarkParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.snap.Bookmarks {
		if b.VerseID == params.VerseID {
			s.removeBookmarkLocked(b.ID)
			return
		}
	}
	s.addBookmarkLocked(params)
}

// Bookmarks returns all bookmarks in creation order.
func (s *Store) Bookmarks() []Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Bookmark, len(s.snap.Bookmarks))
	copy(out, s.snap.Bookmarks)
	return out
}

// ─── Reading progress ───

func (s *Store) progressLocked(bookID int, bookName string, totalChapters int) Progress {
	if p, ok := s.snap.Progress[bookID]; ok {
		return p
	}
	return Progress{
		BookID:        bookID,
		BookName:      bookName,
		TotalChapters: totalChapters,
		LastReadAt:    s.now(),
	}
}

// MarkChapterComplete records a chapter as finished. Idempotent: a chapter
// number is added to the completed set at most once. Always refreshes
// LastReadChapter and LastReadAt, and creates the progress record on the
// first call for a book.
func (s *Store) MarkChapterComplete(bookID int, bookName string, chapterNumber, totalChapters int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.progressLocked(bookID, bookName, totalChapters)
	seen := false
	for _, ch := range p.CompletedChapters {
		if ch == chapterNumber {
			seen = true
			break
		}
	}
	if !seen {
		p.CompletedChapters = append(p.CompletedChapters, chapterNumber)
	}
	p.LastReadChapter = chapterNumber
	p.LastReadAt = s.now()
	s.snap.Progress[bookID] = p
	s.commitLocked()
}

// UpdateLastRead overwrites the last-read position for a book. It never
// touches CompletedChapters, so it cannot clobber MarkChapterComplete.
func (s *Store) UpdateLastRead(bookID int, bookName string, chapterNumber, verseNumber, totalChapters int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.progressLocked(bookID, bookName, totalChapters)
	p.LastReadChapter = chapterNumber
	p.LastReadVerse = verseNumber
	p.LastReadAt = s.now()
	s.snap.Progress[bookID] = p
	s.commitLocked()
}

// ReadingProgress returns the progress record for a book.
func (s *Store) ReadingProgress(bookID int) (Progress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.snap.Progress[bookID]
	if ok {
		p.CompletedChapters = append([]int(nil), p.CompletedChapters...)
	}
	return p, ok
}

// AllProgress returns every progress record.
func (s *Store) AllProgress() []Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Progress, 0, len(s.snap.Progress))
	for _, p := range s.snap.Progress {
		p.CompletedChapters = append([]int(nil), p.CompletedChapters...)
		out = append(out, p)
	}
	return out
}

// OverallProgress aggregates progress across all books. A book counts as
// completed only when its completed-chapter count equals TotalChapters
// exactly.
func (s *Store) OverallProgress() OverallProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out OverallProgress
	for _, p := range s.snap.Progress {
		out.BooksStarted++
		out.ChaptersRead += len(p.CompletedChapters)
		if p.Completed() {
			out.BooksCompleted++
		}
	}
	return out
}

// ─── Audio preference ───

// AudioRate returns the narration rate preference.
func (s *Store) AudioRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.AudioRate
}

// SetAudioRate stores the narration rate preference.
func (s *Store) SetAudioRate(rate float64) {
	if rate <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.AudioRate = rate
	s.commitLocked()
}
