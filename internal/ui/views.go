package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/selahproject/selah/internal/annot"
	"github.com/selahproject/selah/internal/api"
	"github.com/selahproject/selah/internal/ask"
	"github.com/selahproject/selah/internal/reader"
	"github.com/selahproject/selah/internal/speech"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var body string
	switch m.currentView {
	case ViewLogin:
		body = m.loginView()
	case ViewRegister:
		body = m.registerView()
	case ViewHome:
		body = m.homeView()
	case ViewReader:
		body = m.readerView()
	case ViewAsk:
		body = m.askView()
	case ViewAnswer:
		body = m.answerView()
	case ViewSearch:
		body = m.searchView()
	case ViewFavorites:
		body = m.favoritesView()
	case ViewAnnotations:
		body = m.annotationsView()
	case ViewProfile:
		body = m.profileView()
	}

	var b strings.Builder
	b.WriteString(body)
	if m.errMsg != "" {
		b.WriteString("\n" + m.styles.DangerText.Render(m.errMsg))
	} else if m.status != "" {
		b.WriteString("\n" + m.styles.SuccessText.Render(m.status))
	}
	return b.String()
}

func (m Model) title(text string) string {
	return m.styles.Title.Render("selah · " + text)
}

func (m Model) footer(hints string) string {
	return m.styles.Footer.Render(hints)
}

func (m Model) spinnerLine(text string) string {
	return m.spin.View() + " " + m.styles.MutedText.Render(text)
}

// ─── Auth ───

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(m.title("sign in") + "\n\n")
	b.WriteString(m.authField("email", m.authInputs[0], m.authFocus == 0))
	b.WriteString(m.authField("password", m.authInputs[1], m.authFocus == 1))
	if m.authErr != "" {
		b.WriteString("\n" + m.styles.DangerText.Render(m.authErr) + "\n")
	}
	if m.busy {
		b.WriteString("\n" + m.spinnerLine("signing in") + "\n")
	}
	b.WriteString("\n" + m.footer("tab: next field • enter: sign in • ctrl+r: create account • ctrl+c: quit"))
	return b.String()
}

func (m Model) registerView() string {
	var b strings.Builder
	b.WriteString(m.title("create account") + "\n\n")
	b.WriteString(m.authField("email", m.authInputs[0], m.authFocus == 0))
	b.WriteString(m.authField("first name", m.authInputs[2], m.authFocus == 2))
	b.WriteString(m.authField("password", m.authInputs[1], m.authFocus == 1))
	if m.authErr != "" {
		b.WriteString("\n" + m.styles.DangerText.Render(m.authErr) + "\n")
	}
	if m.busy {
		b.WriteString("\n" + m.spinnerLine("creating account") + "\n")
	}
	b.WriteString("\n" + m.footer("tab: next field • enter: create • esc: back to sign in"))
	return b.String()
}

func (m Model) authField(label string, input interface{ View() string }, focused bool) string {
	style := m.styles.MutedText
	if focused {
		style = m.styles.AccentText
	}
	return fmt.Sprintf("  %s\n  %s\n\n", style.Render(label), input.View())
}

// ─── Home ───

func (m Model) homeView() string {
	var b strings.Builder
	b.WriteString(m.title("home") + "\n")
	if user := m.sess.User(); user != nil && user.FirstName != "" {
		b.WriteString(m.styles.MutedText.Render("  welcome back, "+user.FirstName) + "\n")
	}
	b.WriteString("\n")

	if m.verseOfDay != nil {
		card := m.styles.Text.Render(wrap(m.verseOfDay.Text, 68)) + "\n" +
			m.styles.AccentText.Render("— "+verseReference(*m.verseOfDay))
		b.WriteString(m.styles.Box.Render(card) + "\n\n")
	}

	for i, item := range m.menuItems() {
		line := "  " + item.label
		if i == m.menuCursor {
			line = m.styles.Selected.Render("▸ " + item.label)
		}
		b.WriteString(line + "\n")
	}

	if target, ok := mostRecentProgress(m.store.AllProgress()); ok {
		b.WriteString("\n" + m.styles.FaintText.Render(
			fmt.Sprintf("  last read: %s %d", target.BookName, target.LastReadChapter)) + "\n")
	}

	b.WriteString("\n" + m.footer("j/k: move • enter: open • T: theme • q: quit"))
	return b.String()
}

// ─── Reader ───

func (m Model) readerView() string {
	snap := m.reader.Snapshot()
	if m.busy {
		return m.title("reader") + "\n\n  " + m.spinnerLine("loading") + "\n"
	}
	switch snap.Stage {
	case reader.StageBooks:
		return m.booksView(snap)
	case reader.StageChapters:
		return m.chaptersView(snap)
	default:
		return m.readingView(snap)
	}
}

func (m Model) booksView(snap reader.Snapshot) string {
	var b strings.Builder
	b.WriteString(m.title("books") + "\n\n")
	if len(snap.Books) == 0 {
		b.WriteString(m.styles.MutedText.Render("  no books loaded") + "\n")
	}
	start, end := viewport(m.cursor, len(snap.Books), m.listHeight())
	for i := start; i < end; i++ {
		book := snap.Books[i]
		label := fmt.Sprintf("%-24s %s", book.Name, m.bookProgressBadge(book))
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("▸ "+label) + "\n")
		} else {
			b.WriteString("  " + m.styles.Text.Render(label) + "\n")
		}
	}
	b.WriteString("\n" + m.footer("j/k: move • enter: open • r: reload • esc: home"))
	return b.String()
}

func (m Model) bookProgressBadge(book api.Book) string {
	p, ok := m.store.ReadingProgress(book.ID)
	if !ok {
		return ""
	}
	if p.Completed() {
		return m.styles.SuccessText.Render("✓")
	}
	return m.styles.FaintText.Render(fmt.Sprintf("%d/%d", len(p.CompletedChapters), book.ChapterCount))
}

func (m Model) chaptersView(snap reader.Snapshot) string {
	var b strings.Builder
	name := "chapters"
	if snap.Book != nil {
		name = snap.Book.Name
	}
	b.WriteString(m.title(name) + "\n\n")

	var completed map[int]bool
	if snap.Book != nil {
		if p, ok := m.store.ReadingProgress(snap.Book.ID); ok {
			completed = make(map[int]bool, len(p.CompletedChapters))
			for _, n := range p.CompletedChapters {
				completed[n] = true
			}
		}
	}

	start, end := viewport(m.cursor, len(snap.Chapters), m.listHeight())
	for i := start; i < end; i++ {
		ch := snap.Chapters[i]
		label := fmt.Sprintf("chapter %d", ch.Number)
		if completed[ch.Number] {
			label += " " + m.styles.SuccessText.Render("✓")
		}
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("▸ "+label) + "\n")
		} else {
			b.WriteString("  " + m.styles.Text.Render(label) + "\n")
		}
	}
	b.WriteString("\n" + m.footer("j/k: move • enter: read • esc: back"))
	return b.String()
}

func (m Model) readingView(snap reader.Snapshot) string {
	var b strings.Builder
	heading := "reading"
	if snap.Book != nil && snap.Chapter != nil {
		heading = fmt.Sprintf("%s %d", snap.Book.Name, snap.Chapter.Number)
	}
	b.WriteString(m.title(heading))
	b.WriteString("  " + m.playbackBadge() + "\n")
	if snap.HighlightMode {
		b.WriteString(m.styles.WarningText.Render("  highlight mode — enter on a verse to edit") + "\n")
	}
	b.WriteString("\n")

	start, end := viewport(m.cursor, len(snap.Verses), m.listHeight())
	for i := start; i < end; i++ {
		b.WriteString(m.verseLine(snap, i) + "\n")
	}

	if snap.Edit != nil {
		b.WriteString("\n" + m.highlightEditor(*snap.Edit) + "\n")
		b.WriteString(m.footer("←/→: color • enter: save • ctrl+d: delete • esc: cancel"))
		return b.String()
	}

	b.WriteString("\n" + m.footer(
		"space: play/pause • n/p: verse • [/]: chapter • +/-: speed • v: voice\n" +
			" h: highlight • b: bookmark • c: complete • f: save • esc: back"))
	return b.String()
}

func (m Model) verseLine(snap reader.Snapshot, i int) string {
	v := snap.Verses[i]
	marker := " "
	if len(m.store.HighlightsForVerse(v.ID)) > 0 {
		marker = HighlightSwatch(m.store.HighlightsForVerse(v.ID)[0].Color)
	}
	if m.store.IsBookmarked(v.ID) {
		marker += m.styles.AccentText.Render("♦")
	} else {
		marker += " "
	}

	text := fmt.Sprintf("%d  %s", v.Number, wrap(v.Text, m.textWidth()))
	status := m.seq.Status()
	switch {
	case i == m.cursor:
		return marker + m.styles.Selected.Render(" "+text)
	case status.State == speech.StatePlaying && i == status.Index:
		return marker + m.styles.AccentText.Render(" "+text)
	default:
		return marker + m.styles.Text.Render(" "+text)
	}
}

func (m Model) playbackBadge() string {
	status := m.seq.Status()
	switch status.State {
	case speech.StatePlaying:
		return m.styles.SuccessText.Render(fmt.Sprintf("▶ %.2gx", status.Rate))
	case speech.StatePaused:
		return m.styles.WarningText.Render(fmt.Sprintf("⏸ %.2gx", status.Rate))
	default:
		return m.styles.FaintText.Render("■")
	}
}

func (m Model) highlightEditor(edit reader.HighlightEdit) string {
	var swatches []string
	for _, c := range annot.Colors {
		swatch := HighlightSwatch(c)
		if c == edit.Color {
			swatch = "[" + swatch + "]"
		} else {
			swatch = " " + swatch + " "
		}
		swatches = append(swatches, swatch)
	}
	action := "new highlight"
	if edit.ExistingID != "" {
		action = "edit highlight"
	}
	content := m.styles.AccentText.Render(action) + "  " +
		strings.Join(swatches, "") + "\n" +
		m.noteInput.View()
	return m.styles.Box.Render(content)
}

// ─── Q&A ───

func (m Model) askView() string {
	var b strings.Builder
	b.WriteString(m.title("ask") + "\n\n")
	b.WriteString("  " + m.styles.MutedText.Render("ask a question, receive scripture-grounded guidance") + "\n\n")
	b.WriteString("  " + m.questionInput.View() + "\n")
	snap := m.askCtl.Snapshot()
	if snap.ErrMsg != "" {
		b.WriteString("\n  " + m.styles.DangerText.Render(snap.ErrMsg) + "\n")
	}
	if m.busy {
		b.WriteString("\n  " + m.spinnerLine("searching the scriptures") + "\n")
	}
	b.WriteString("\n" + m.footer("enter: ask • esc: home"))
	return b.String()
}

func (m Model) answerView() string {
	snap := m.askCtl.Snapshot()
	if snap.Phase != ask.PhaseAnswered || snap.Answer == nil {
		return m.askView()
	}
	a := snap.Answer

	var b strings.Builder
	b.WriteString(m.title("answer") + "\n\n")
	b.WriteString("  " + m.styles.AccentText.Render(a.Question) + "\n\n")
	b.WriteString(m.answerSection("summary", a.Summary))
	if len(a.Verses) > 0 {
		b.WriteString("  " + m.styles.WarningText.Render("verses") + "\n")
		for _, v := range a.Verses {
			b.WriteString("    " + m.styles.Text.Render(wrap(v.Text, m.textWidth())) + "\n")
			b.WriteString("    " + m.styles.FaintText.Render("— "+v.Reference) + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(m.answerSection("explanation", a.Explanation))
	b.WriteString(m.answerSection("application", a.Application))
	b.WriteString(m.answerSection("prayer", a.Prayer))
	b.WriteString(m.footer("s: save • n: new question • esc: back"))
	return b.String()
}

func (m Model) answerSection(label, text string) string {
	if text == "" {
		return ""
	}
	return "  " + m.styles.WarningText.Render(label) + "\n" +
		"    " + m.styles.Text.Render(wrap(text, m.textWidth())) + "\n\n"
}

// ─── Search ───

func (m Model) searchView() string {
	var b strings.Builder
	b.WriteString(m.title("search") + "\n\n")
	b.WriteString("  " + m.searchInput.View() + "\n\n")
	if m.busy {
		b.WriteString("  " + m.spinnerLine("searching") + "\n")
	}
	if m.searchRes != nil {
		b.WriteString("  " + m.styles.MutedText.Render(
			fmt.Sprintf("%d result(s) for %q", m.searchRes.Count, m.searchRes.Query)) + "\n\n")
		start, end := viewport(m.cursor, len(m.searchRes.Results), m.listHeight())
		for i := start; i < end; i++ {
			v := m.searchRes.Results[i]
			line := verseReference(v) + "  " + wrap(v.Text, m.textWidth())
			if i == m.cursor {
				b.WriteString(m.styles.Selected.Render("▸ "+line) + "\n")
			} else {
				b.WriteString("  " + m.styles.Text.Render(line) + "\n")
			}
		}
	}
	b.WriteString("\n" + m.footer("enter: search • up/down: move • ctrl+s: save verse • esc: home"))
	return b.String()
}

// ─── Favorites ───

var favTabs = []string{"verses", "saved answers", "history"}

func (m Model) favoritesView() string {
	var b strings.Builder
	b.WriteString(m.title("favorites") + "\n\n")
	b.WriteString(m.tabBar(favTabs, m.favTab) + "\n\n")

	switch m.favTab {
	case 0:
		verses := m.fav.Verses()
		if len(verses) == 0 {
			b.WriteString(m.styles.MutedText.Render("  no saved verses") + "\n")
		}
		start, end := viewport(m.cursor, len(verses), m.listHeight())
		for i := start; i < end; i++ {
			v := verses[i]
			line := verseReference(v) + "  " + wrap(v.Text, m.textWidth())
			if i == m.cursor {
				b.WriteString(m.styles.Selected.Render("▸ "+line) + "\n")
			} else {
				b.WriteString("  " + m.styles.Text.Render(line) + "\n")
			}
		}
	case 1:
		answers := m.fav.Conversations()
		if len(answers) == 0 {
			b.WriteString(m.styles.MutedText.Render("  no saved answers") + "\n")
		}
		for i, a := range answers {
			if i == m.cursor {
				b.WriteString(m.styles.Selected.Render("▸ "+a.Question) + "\n")
			} else {
				b.WriteString("  " + m.styles.Text.Render(a.Question) + "\n")
			}
		}
		if m.cursor < len(answers) {
			a := answers[m.cursor]
			b.WriteString("\n" + m.styles.Box.Render(
				m.styles.Text.Render(wrap(a.Summary, m.textWidth()))) + "\n")
		}
	case 2:
		if m.busy {
			b.WriteString("  " + m.spinnerLine("loading history") + "\n")
		}
		if len(m.conversations) == 0 && !m.busy {
			b.WriteString(m.styles.MutedText.Render("  no past conversations") + "\n")
		}
		for i, conv := range m.conversations {
			line := conv.Question
			if conv.CreatedAt != "" {
				line += "  " + m.styles.FaintText.Render(conv.CreatedAt)
			}
			if i == m.cursor {
				b.WriteString(m.styles.Selected.Render("▸ "+line) + "\n")
			} else {
				b.WriteString("  " + m.styles.Text.Render(line) + "\n")
			}
		}
	}

	hints := "tab: switch • j/k: move • esc: home"
	if m.favTab < 2 {
		hints = "tab: switch • j/k: move • d: remove • esc: home"
	}
	b.WriteString("\n" + m.footer(hints))
	return b.String()
}

// ─── Annotations ───

var annTabs = []string{"highlights", "bookmarks"}

func (m Model) annotationsView() string {
	var b strings.Builder
	b.WriteString(m.title("annotations") + "\n\n")
	b.WriteString(m.tabBar(annTabs, m.annTab) + "\n\n")

	if m.annTab == 0 {
		highlights := m.store.Highlights()
		if len(highlights) == 0 {
			b.WriteString(m.styles.MutedText.Render("  no highlights yet") + "\n")
		}
		start, end := viewport(m.cursor, len(highlights), m.listHeight())
		for i := start; i < end; i++ {
			h := highlights[i]
			line := HighlightSwatch(h.Color) + " " + fmt.Sprintf("verse %d", h.VerseID)
			if h.Note != "" {
				line += "  " + m.styles.FaintText.Render(h.Note)
			}
			if i == m.cursor {
				b.WriteString(m.styles.Selected.Render("▸") + " " + line + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
		b.WriteString("\n" + m.footer("tab: switch • j/k: move • d: remove • esc: home"))
		return b.String()
	}

	bookmarks := m.store.Bookmarks()
	if len(bookmarks) == 0 {
		b.WriteString(m.styles.MutedText.Render("  no bookmarks yet") + "\n")
	}
	start, end := viewport(m.cursor, len(bookmarks), m.listHeight())
	for i := start; i < end; i++ {
		bm := bookmarks[i]
		line := fmt.Sprintf("%s %d:%d", bm.BookName, bm.ChapterNumber, bm.VerseNumber)
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString("  " + m.styles.Text.Render(line) + "\n")
		}
	}
	b.WriteString("\n" + m.footer("tab: switch • j/k: move • enter: open • d: remove • esc: home"))
	return b.String()
}

// ─── Profile ───

func (m Model) profileView() string {
	var b strings.Builder
	b.WriteString(m.title("profile") + "\n\n")
	if user := m.sess.User(); user != nil {
		b.WriteString("  " + m.styles.Text.Render(user.FirstName) + "\n")
		b.WriteString("  " + m.styles.MutedText.Render(user.Email) + "\n")
		if user.DateJoined != "" {
			b.WriteString("  " + m.styles.FaintText.Render("joined "+user.DateJoined) + "\n")
		}
	}

	overall := m.store.OverallProgress()
	stats := fmt.Sprintf("books started: %d\nbooks completed: %d\nchapters read: %d",
		overall.BooksStarted, overall.BooksCompleted, overall.ChaptersRead)
	b.WriteString("\n" + m.styles.Box.Render(m.styles.Text.Render(stats)) + "\n")

	if all := m.store.AllProgress(); len(all) > 0 {
		b.WriteString("\n")
		for _, p := range all {
			badge := fmt.Sprintf("%d/%d", len(p.CompletedChapters), p.TotalChapters)
			if p.Completed() {
				badge = m.styles.SuccessText.Render("complete")
			}
			b.WriteString("  " + m.styles.Text.Render(fmt.Sprintf("%-24s %s", p.BookName, badge)) + "\n")
		}
	}

	b.WriteString("\n" + m.footer("L: sign out • esc: home"))
	return b.String()
}

// ─── Helpers ───

func (m Model) tabBar(tabs []string, active int) string {
	parts := make([]string, len(tabs))
	for i, t := range tabs {
		if i == active {
			parts[i] = m.styles.AccentText.Bold(true).Render("[" + t + "]")
		} else {
			parts[i] = m.styles.FaintText.Render(" " + t + " ")
		}
	}
	return "  " + lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// listHeight is how many list rows fit between the header and the footer.
func (m Model) listHeight() int {
	h := m.height - 8
	if h < 5 {
		h = 5
	}
	return h
}

func (m Model) textWidth() int {
	w := m.width - 12
	if w < 20 {
		w = 20
	}
	return w
}

// viewport returns the half-open window of a list that keeps cursor visible.
func viewport(cursor, total, height int) (int, int) {
	if total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

func verseReference(v api.Verse) string {
	if v.Reference != "" {
		return v.Reference
	}
	if v.BookName != "" {
		return fmt.Sprintf("%s %d", v.BookName, v.Number)
	}
	return fmt.Sprintf("verse %d", v.Number)
}

// wrap folds text at word boundaries to the given width.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			b.WriteString(line + "\n")
			line = w
			continue
		}
		line += " " + w
	}
	b.WriteString(line)
	return b.String()
}
