// Package reader orchestrates the scripture reading flow: the three-stage
// navigation machine over books, chapters, and verses, and the wiring of user
// annotation actions to the annotation store and playback sequencer.
package reader

import (
	"context"
	"fmt"
	"sync"

	"github.com/selahproject/selah/internal/annot"
	"github.com/selahproject/selah/internal/api"
	"github.com/selahproject/selah/internal/speech"
)

// Stage is the reader's navigation level.
type Stage int

const (
	StageBooks Stage = iota
	StageChapters
	StageReading
)

// HighlightEdit is the in-progress highlight buffer opened when a verse is
// selected in highlight mode. Discarded on navigation.
type HighlightEdit struct {
	Verse      api.Verse
	ExistingID string
	Color      annot.Color
	Note       string
}

// Controller owns the reader's transient navigation state. Loaded lists and
// the selection are discarded on back-navigation; durable state lives in the
// annotation store.
type Controller struct {
	mu      sync.Mutex
	content api.ContentSource
	store   *annot.Store
	seq     *speech.Sequencer

	stage    Stage
	books    []api.Book
	book     *api.Book
	chapters []api.Chapter
	chapter  *api.Chapter
	verses   []api.Verse

	loading bool
	loadErr string

	highlightMode bool
	edit          *HighlightEdit
}

// New builds a reader controller over the given collaborators.
func New(content api.ContentSource, store *annot.Store, seq *speech.Sequencer) *Controller {
	return &Controller{
		content: content,
		store:   store,
		seq:     seq,
	}
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Stage         Stage
	Books         []api.Book
	Book          *api.Book
	Chapters      []api.Chapter
	Chapter       *api.Chapter
	Verses        []api.Verse
	Loading       bool
	LoadErr       string
	HighlightMode bool
	Edit          *HighlightEdit
}

// Snapshot returns a defensive copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		Stage:         c.stage,
		Books:         append([]api.Book(nil), c.books...),
		Chapters:      append([]api.Chapter(nil), c.chapters...),
		Verses:        append([]api.Verse(nil), c.verses...),
		Loading:       c.loading,
		LoadErr:       c.loadErr,
		HighlightMode: c.highlightMode,
	}
	if c.book != nil {
		b := *c.book
		snap.Book = &b
	}
	if c.chapter != nil {
		ch := *c.chapter
		snap.Chapter = &ch
	}
	if c.edit != nil {
		e := *c.edit
		snap.Edit = &e
	}
	return snap
}

func (c *Controller) beginLoad() {
	c.mu.Lock()
	c.loading = true
	c.loadErr = ""
	c.mu.Unlock()
}

// LoadBooks fetches the book list. On failure the list stays empty and the
// error is kept for display; the view is never left broken.
func (c *Controller) LoadBooks(ctx context.Context) error {
	c.beginLoad()
	books, err := c.content.Books(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.loadErr = "could not load books"
		return fmt.Errorf("load books: %w", err)
	}
	c.books = books
	return nil
}

// OpenBook loads the book's chapters and advances to the chapter stage.
func (c *Controller) OpenBook(ctx context.Context, book api.Book) error {
	c.beginLoad()
	chapters, err := c.content.Chapters(ctx, book.ID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.loadErr = "could not load chapters"
		return fmt.Errorf("load chapters: %w", err)
	}
	b := book
	c.book = &b
	c.chapters = chapters
	c.stage = StageChapters
	return nil
}

// OpenChapter loads the chapter's verses, refreshes the sequencer's verse
// list, and advances to the reading stage.
func (c *Controller) OpenChapter(ctx context.Context, chapter api.Chapter) error {
	c.mu.Lock()
	if c.book == nil {
		c.mu.Unlock()
		return fmt.Errorf("open chapter: no book selected")
	}
	bookID := c.book.ID
	c.mu.Unlock()

	c.beginLoad()
	verses, err := c.content.Verses(ctx, bookID, chapter.ID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.loadErr = "could not load verses"
		return fmt.Errorf("load verses: %w", err)
	}
	ch := chapter
	c.chapter = &ch
	c.verses = verses
	c.stage = StageReading
	c.edit = nil

	texts := make([]string, len(verses))
	for i, v := range verses {
		texts[i] = v.Text
	}
	c.seq.SetVerses(texts)
	return nil
}

// Back steps up one navigation level. Leaving the reading stage stops
// playback and discards the loaded verses; leaving the chapter stage discards
// the chapters.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.stage {
	case StageReading:
		c.seq.Stop()
		c.verses = nil
		c.chapter = nil
		c.edit = nil
		c.stage = StageChapters
	case StageChapters:
		c.chapters = nil
		c.book = nil
		c.stage = StageBooks
	}
}

// StepChapter moves to the adjacent chapter within the loaded chapter list,
// staying in the reading stage. No-op at either end of the book.
func (c *Controller) StepChapter(ctx context.Context, delta int) error {
	c.mu.Lock()
	if c.stage != StageReading || c.chapter == nil {
		c.mu.Unlock()
		return nil
	}
	idx := -1
	for i, ch := range c.chapters {
		if ch.ID == c.chapter.ID {
			idx = i
			break
		}
	}
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(c.chapters) {
		c.mu.Unlock()
		return nil
	}
	next := c.chapters[target]
	c.mu.Unlock()
	return c.OpenChapter(ctx, next)
}

// DeepLink reproduces manual navigation for external entry parameters: it
// resolves the book by id (loading books first when needed), opens it, and
// when chapterNumber is positive opens that chapter too.
func (c *Controller) DeepLink(ctx context.Context, bookID, chapterNumber int) error {
	c.mu.Lock()
	books := c.books
	c.mu.Unlock()
	if len(books) == 0 {
		if err := c.LoadBooks(ctx); err != nil {
			return err
		}
		c.mu.Lock()
		books = c.books
		c.mu.Unlock()
	}

	var book *api.Book
	for i := range books {
		if books[i].ID == bookID {
			book = &books[i]
			break
		}
	}
	if book == nil {
		return fmt.Errorf("deep link: unknown book %d", bookID)
	}
	if err := c.OpenBook(ctx, *book); err != nil {
		return err
	}
	if chapterNumber <= 0 {
		return nil
	}

	c.mu.Lock()
	var chapter *api.Chapter
	for i := range c.chapters {
		if c.chapters[i].Number == chapterNumber {
			chapter = &c.chapters[i]
			break
		}
	}
	c.mu.Unlock()
	if chapter == nil {
		return fmt.Errorf("deep link: book %d has no chapter %d", bookID, chapterNumber)
	}
	return c.OpenChapter(ctx, *chapter)
}

// ─── Annotation actions ───

// ToggleHighlightMode flips the controller-local highlight mode. Turning the
// mode off discards any open edit buffer.
func (c *Controller) ToggleHighlightMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.highlightMode = !c.highlightMode
	if !c.highlightMode {
		c.edit = nil
	}
}

// SelectVerse opens the highlight edit buffer for a verse, pre-populated from
// the first existing highlight on it. Only meaningful in highlight mode while
// reading.
func (c *Controller) SelectVerse(v api.Verse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.highlightMode || c.stage != StageReading {
		return
	}
	edit := &HighlightEdit{Verse: v, Color: annot.ColorYellow}
	if existing := c.store.HighlightsForVerse(v.ID); len(existing) > 0 {
		edit.ExistingID = existing[0].ID
		edit.Color = existing[0].Color
		edit.Note = existing[0].Note
	}
	c.edit = edit
}

// SetEditColor changes the color in the open edit buffer.
func (c *Controller) SetEditColor(color annot.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit != nil && color.Valid() {
		c.edit.Color = color
	}
}

// SetEditNote changes the note in the open edit buffer.
func (c *Controller) SetEditNote(note string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit != nil {
		c.edit.Note = note
	}
}

// ConfirmHighlight commits the open edit buffer: when a highlight already
// exists for the verse its color is updated (and its note, when one was
// entered); otherwise a new highlight is created.
func (c *Controller) ConfirmHighlight() {
	c.mu.Lock()
	edit := c.edit
	c.edit = nil
	book, chapter := c.book, c.chapter
	c.mu.Unlock()
	if edit == nil || book == nil || chapter == nil {
		return
	}
	if existing := c.store.HighlightsForVerse(edit.Verse.ID); len(existing) > 0 {
		c.store.UpdateHighlightColor(existing[0].ID, edit.Color)
		if edit.Note != "" {
			c.store.UpdateHighlightNote(existing[0].ID, edit.Note)
		}
		return
	}
	c.store.AddHighlight(edit.Verse.ID, book.ID, chapter.ID, edit.Color, edit.Note)
}

// DeleteHighlight removes the highlight the edit buffer was opened on.
func (c *Controller) DeleteHighlight() {
	c.mu.Lock()
	edit := c.edit
	c.edit = nil
	c.mu.Unlock()
	if edit == nil || edit.ExistingID == "" {
		return
	}
	c.store.RemoveHighlight(edit.ExistingID)
}

// CancelEdit discards the open edit buffer.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = nil
}

// ToggleBookmark toggles the bookmark on a verse; no confirmation step.
func (c *Controller) ToggleBookmark(v api.Verse) {
	c.mu.Lock()
	book, chapter := c.book, c.chapter
	c.mu.Unlock()
	if book == nil || chapter == nil {
		return
	}
	c.store.ToggleBookmark(annot.BookmarkParams{
		VerseID:       v.ID,
		BookID:        book.ID,
		ChapterID:     chapter.ID,
		BookName:      book.Name,
		ChapterNumber: chapter.Number,
		VerseNumber:   v.Number,
	})
}

// TrackVerse records the verse as the last-read position for the current
// book and chapter. Called when a verse comes into focus.
func (c *Controller) TrackVerse(v api.Verse) {
	c.mu.Lock()
	book, chapter := c.book, c.chapter
	c.mu.Unlock()
	if book == nil || chapter == nil {
		return
	}
	c.store.UpdateLastRead(book.ID, book.Name, chapter.Number, v.Number, book.ChapterCount)
}

// CompleteChapter marks the current chapter as finished.
func (c *Controller) CompleteChapter() {
	c.mu.Lock()
	book, chapter := c.book, c.chapter
	c.mu.Unlock()
	if book == nil || chapter == nil {
		return
	}
	c.store.MarkChapterComplete(book.ID, book.Name, chapter.Number, book.ChapterCount)
}
