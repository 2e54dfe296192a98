package annot

import "time"

// Color is a highlight color. The palette is fixed.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPink   Color = "pink"
	ColorOrange Color = "orange"
)

// Colors lists the palette in display order.
var Colors = []Color{ColorYellow, ColorGreen, ColorBlue, ColorPink, ColorOrange}

// Valid reports whether c is one of the palette colors.
func (c Color) Valid() bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// Highlight is a color-coded, optionally annotated marker on a single verse.
// Identity is the generated ID, not the verse: the store allows several
// highlights on one verse and callers conventionally use the first.
type Highlight struct {
	ID        string    `json:"id"`
	VerseID   int       `json:"verseId"`
	BookID    int       `json:"bookId"`
	ChapterID int       `json:"chapterId"`
	Color     Color     `json:"color"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bookmark is a saved pointer to a verse. At most one exists per verse,
// enforced by ToggleBookmark.
type Bookmark struct {
	ID            string    `json:"id"`
	VerseID       int       `json:"verseId"`
	BookID        int       `json:"bookId"`
	ChapterID     int       `json:"chapterId"`
	BookName      string    `json:"bookName"`
	ChapterNumber int       `json:"chapterNumber"`
	VerseNumber   int       `json:"verseNumber"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// BookmarkParams carries the caller-supplied fields of a bookmark.
type BookmarkParams struct {
	VerseID       int
	BookID        int
	ChapterID     int
	BookName      string
	ChapterNumber int
	VerseNumber   int
	Note          string
}

// Progress records, per book, which chapters were completed and where
// reading last stopped.
type Progress struct {
	BookID            int       `json:"bookId"`
	BookName          string    `json:"bookName"`
	TotalChapters     int       `json:"totalChapters"`
	CompletedChapters []int     `json:"completedChapters"`
	LastReadChapter   int       `json:"lastReadChapter"`
	LastReadVerse     int       `json:"lastReadVerse"`
	LastReadAt        time.Time `json:"lastReadAt"`
}

// Completed reports whether every chapter of the book has been marked done.
func (p Progress) Completed() bool {
	return p.TotalChapters > 0 && len(p.CompletedChapters) == p.TotalChapters
}

// OverallProgress aggregates reading progress across books.
type OverallProgress struct {
	BooksStarted   int
	BooksCompleted int
	ChaptersRead   int
}

// Snapshot is the full persisted state of the store: one document under one
// storage namespace.
type Snapshot struct {
	Highlights []Highlight      `json:"highlights"`
	Bookmarks  []Bookmark       `json:"bookmarks"`
	Progress   map[int]Progress `json:"readingProgress"`
	AudioRate  float64          `json:"audioRate"`
}

func defaultSnapshot() Snapshot {
	return Snapshot{
		Progress:  make(map[int]Progress),
		AudioRate: 1,
	}
}
