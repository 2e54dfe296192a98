package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/selahproject/selah/internal/annot"
	"github.com/selahproject/selah/internal/api"
	"github.com/selahproject/selah/internal/config"
	"github.com/selahproject/selah/internal/reader"
)

// narration rate steps offered by the +/- keys.
var rateSteps = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 1.75, 2.0}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Theme cycling is global except while typing into a field.
	if msg.String() == "T" && !m.typing() {
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.styles = m.theme.Styles()
		m.cfg.Theme = m.theme.Name
		_ = config.Save(m.configPath, m.cfg)
		return m, nil
	}

	m.errMsg = ""
	m.status = ""

	switch m.currentView {
	case ViewLogin:
		return m.handleLoginKey(msg)
	case ViewRegister:
		return m.handleRegisterKey(msg)
	case ViewHome:
		return m.handleHomeKey(msg)
	case ViewReader:
		return m.handleReaderKey(msg)
	case ViewAsk:
		return m.handleAskKey(msg)
	case ViewAnswer:
		return m.handleAnswerKey(msg)
	case ViewSearch:
		return m.handleSearchKey(msg)
	case ViewFavorites:
		return m.handleFavoritesKey(msg)
	case ViewAnnotations:
		return m.handleAnnotationsKey(msg)
	case ViewProfile:
		return m.handleProfileKey(msg)
	}
	return m, nil
}

// typing reports whether a text field currently receives keystrokes.
func (m Model) typing() bool {
	switch m.currentView {
	case ViewLogin, ViewRegister, ViewAsk, ViewSearch:
		return true
	case ViewReader:
		return m.reader.Snapshot().Edit != nil
	}
	return false
}

// ─── Auth ───

// authOrder lists the authInputs indices in display order for the view.
func (m Model) authOrder() []int {
	if m.currentView == ViewRegister {
		return []int{0, 2, 1} // email, first name, password
	}
	return []int{0, 1} // email, password
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		m.currentView = ViewRegister
		m.authErr = ""
		m.resetAuthInputs()
		return m, nil
	case "tab", "shift+tab", "up", "down":
		return m.cycleAuthFocus(msg.String()), nil
	case "enter":
		email := m.authInputs[0].Value()
		password := m.authInputs[1].Value()
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.loginCmd(email, password))
	}
	return m.updateAuthInput(msg)
}

func (m Model) handleRegisterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentView = ViewLogin
		m.authErr = ""
		m.resetAuthInputs()
		return m, nil
	case "tab", "shift+tab", "up", "down":
		return m.cycleAuthFocus(msg.String()), nil
	case "enter":
		email := m.authInputs[0].Value()
		password := m.authInputs[1].Value()
		firstName := m.authInputs[2].Value()
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.registerCmd(email, firstName, password))
	}
	return m.updateAuthInput(msg)
}

func (m Model) cycleAuthFocus(key string) Model {
	order := m.authOrder()
	pos := 0
	for i, idx := range order {
		if idx == m.authFocus {
			pos = i
			break
		}
	}
	if key == "shift+tab" || key == "up" {
		pos = (pos - 1 + len(order)) % len(order)
	} else {
		pos = (pos + 1) % len(order)
	}
	m.authFocus = order[pos]
	for i := range m.authInputs {
		if i == m.authFocus {
			m.authInputs[i].Focus()
		} else {
			m.authInputs[i].Blur()
		}
	}
	return m
}

func (m Model) updateAuthInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	return m, cmd
}

// ─── Home ───

type menuItem struct {
	label string
	view  View
}

func (m Model) menuItems() []menuItem {
	return []menuItem{
		{"Continue reading", ViewReader},
		{"Read the Bible", ViewReader},
		{"Ask a question", ViewAsk},
		{"Search verses", ViewSearch},
		{"Favorites", ViewFavorites},
		{"Highlights & bookmarks", ViewAnnotations},
		{"Profile & progress", ViewProfile},
	}
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.menuItems()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.menuCursor < len(items)-1 {
			m.menuCursor++
		}
	case "k", "up":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "enter":
		return m.openMenuItem(m.menuCursor)
	}
	return m, nil
}

func (m Model) openMenuItem(idx int) (tea.Model, tea.Cmd) {
	switch idx {
	case 0: // Continue reading at the most recent last-read position.
		target, ok := mostRecentProgress(m.store.AllProgress())
		if !ok {
			m.status = "no reading progress yet"
			return m, nil
		}
		m.currentView = ViewReader
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.deepLinkCmd(target.BookID, target.LastReadChapter))
	case 1:
		m.currentView = ViewReader
		m.cursor = 0
		if len(m.reader.Snapshot().Books) == 0 {
			m.busy = true
			return m, tea.Batch(m.spin.Tick, m.loadBooksCmd())
		}
		return m, nil
	case 2:
		m.currentView = ViewAsk
		m.questionInput.Focus()
		return m, nil
	case 3:
		m.currentView = ViewSearch
		m.searchInput.Focus()
		return m, nil
	case 4:
		m.currentView = ViewFavorites
		m.favTab = 0
		m.cursor = 0
		return m, nil
	case 5:
		m.currentView = ViewAnnotations
		m.annTab = 0
		m.cursor = 0
		return m, nil
	case 6:
		m.currentView = ViewProfile
		return m, nil
	}
	return m, nil
}

func mostRecentProgress(all []annot.Progress) (annot.Progress, bool) {
	var best annot.Progress
	found := false
	for _, p := range all {
		if p.LastReadChapter == 0 {
			continue
		}
		if !found || p.LastReadAt.After(best.LastReadAt) {
			best = p
			found = true
		}
	}
	return best, found
}

// ─── Reader ───

func (m Model) handleReaderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.reader.Snapshot()
	if snap.Edit != nil {
		return m.handleHighlightEditKey(msg, snap)
	}

	switch snap.Stage {
	case reader.StageBooks:
		return m.handleBooksKey(msg, snap)
	case reader.StageChapters:
		return m.handleChaptersKey(msg, snap)
	case reader.StageReading:
		return m.handleReadingKey(msg, snap)
	}
	return m, nil
}

func (m Model) handleBooksKey(msg tea.KeyMsg, snap reader.Snapshot) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentView = ViewHome
	case "j", "down":
		if m.cursor < len(snap.Books)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.loadBooksCmd())
	case "enter":
		if m.cursor < len(snap.Books) {
			m.busy = true
			return m, tea.Batch(m.spin.Tick, m.openBookCmd(snap.Books[m.cursor]))
		}
	}
	return m, nil
}

func (m Model) handleChaptersKey(msg tea.KeyMsg, snap reader.Snapshot) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.reader.Back()
		m.cursor = 0
	case "j", "down":
		if m.cursor < len(snap.Chapters)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(snap.Chapters) {
			m.busy = true
			return m, tea.Batch(m.spin.Tick, m.openChapterCmd(snap.Chapters[m.cursor]))
		}
	}
	return m, nil
}

func (m Model) handleReadingKey(msg tea.KeyMsg, snap reader.Snapshot) (tea.Model, tea.Cmd) {
	verse, hasVerse := verseAt(snap, m.cursor)
	switch msg.String() {
	case "esc":
		m.reader.Back()
		m.cursor = 0
	case "j", "down":
		if m.cursor < len(snap.Verses)-1 {
			m.cursor++
			if v, ok := verseAt(snap, m.cursor); ok {
				m.reader.TrackVerse(v)
			}
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			if v, ok := verseAt(snap, m.cursor); ok {
				m.reader.TrackVerse(v)
			}
		}
	case " ":
		m.seq.TogglePlay()
	case "n":
		m.seq.Next()
	case "p":
		m.seq.Prev()
	case "]":
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.stepChapterCmd(1))
	case "[":
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.stepChapterCmd(-1))
	case "+", "=":
		m.seq.SetRate(stepRate(m.store.AudioRate(), 1))
	case "-":
		m.seq.SetRate(stepRate(m.store.AudioRate(), -1))
	case "v":
		m.cycleVoice()
	case "h":
		m.reader.ToggleHighlightMode()
	case "enter":
		if snap.HighlightMode && hasVerse {
			m.reader.SelectVerse(verse)
			if edit := m.reader.Snapshot().Edit; edit != nil {
				m.noteInput.SetValue(edit.Note)
				m.noteInput.Focus()
			}
			return m, textinput.Blink
		}
	case "b":
		if hasVerse {
			m.reader.ToggleBookmark(verse)
		}
	case "c":
		m.reader.CompleteChapter()
		m.status = "chapter marked complete"
	case "f":
		if hasVerse {
			m.saveVerse(verse, snap)
			m.status = "verse saved to favorites"
		}
	}
	return m, nil
}

func (m *Model) saveVerse(v api.Verse, snap reader.Snapshot) {
	if v.BookName == "" && snap.Book != nil {
		v.BookName = snap.Book.Name
	}
	m.fav.AddVerse(v)
}

func (m Model) handleHighlightEditKey(msg tea.KeyMsg, snap reader.Snapshot) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.reader.CancelEdit()
		m.noteInput.Blur()
		return m, nil
	case "left", "right":
		m.reader.SetEditColor(cycleColor(snap.Edit.Color, msg.String() == "right"))
		return m, nil
	case "ctrl+d":
		m.reader.DeleteHighlight()
		m.noteInput.Blur()
		m.status = "highlight removed"
		return m, nil
	case "enter":
		m.reader.SetEditNote(m.noteInput.Value())
		m.reader.ConfirmHighlight()
		m.noteInput.Blur()
		m.noteInput.SetValue("")
		m.status = "highlight saved"
		return m, nil
	}
	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}

func cycleColor(current annot.Color, forward bool) annot.Color {
	idx := 0
	for i, c := range annot.Colors {
		if c == current {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(annot.Colors)
	} else {
		idx = (idx - 1 + len(annot.Colors)) % len(annot.Colors)
	}
	return annot.Colors[idx]
}

func verseAt(snap reader.Snapshot, idx int) (api.Verse, bool) {
	if idx < 0 || idx >= len(snap.Verses) {
		return api.Verse{}, false
	}
	return snap.Verses[idx], true
}

func stepRate(current float64, direction int) float64 {
	idx := 0
	for i, r := range rateSteps {
		if current >= r {
			idx = i
		}
	}
	idx += direction
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rateSteps) {
		idx = len(rateSteps) - 1
	}
	return rateSteps[idx]
}

func (m *Model) cycleVoice() {
	status := m.seq.Status()
	if len(status.Voices) == 0 {
		return
	}
	idx := 0
	for i, v := range status.Voices {
		if v.ID == status.Voice.ID {
			idx = (i + 1) % len(status.Voices)
			break
		}
	}
	m.seq.SetVoice(status.Voices[idx])
	m.status = "voice: " + status.Voices[idx].Name
}

// ─── Q&A ───

func (m Model) handleAskKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentView = ViewHome
		m.questionInput.Blur()
		return m, nil
	case "enter":
		question := m.questionInput.Value()
		if question == "" {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.askCmd(question))
	}
	var cmd tea.Cmd
	m.questionInput, cmd = m.questionInput.Update(msg)
	return m, cmd
}

func (m Model) handleAnswerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentView = ViewAsk
		m.questionInput.Focus()
	case "s":
		m.askCtl.SaveTo(m.fav)
		m.status = "answer saved to favorites"
	case "n":
		m.askCtl.Reset()
		m.questionInput.SetValue("")
		m.questionInput.Focus()
		m.currentView = ViewAsk
	}
	return m, nil
}

// ─── Search ───

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentView = ViewHome
		m.searchInput.Blur()
		m.searchRes = nil
		return m, nil
	case "enter":
		query := m.searchInput.Value()
		if query == "" {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.searchCmd(query))
	case "down":
		if m.searchRes != nil && m.cursor < len(m.searchRes.Results)-1 {
			m.cursor++
		}
		return m, nil
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "ctrl+s":
		if m.searchRes != nil && m.cursor < len(m.searchRes.Results) {
			m.fav.AddVerse(m.searchRes.Results[m.cursor])
			m.status = "verse saved to favorites"
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// ─── Favorites ───

func (m Model) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentView = ViewHome
	case "tab":
		m.favTab = (m.favTab + 1) % 3
		m.cursor = 0
		if m.favTab == 2 && len(m.conversations) == 0 {
			m.busy = true
			return m, tea.Batch(m.spin.Tick, m.conversationsCmd())
		}
	case "j", "down":
		if m.cursor < m.favListLen()-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "d":
		m.removeFavorite()
	}
	return m, nil
}

func (m Model) favListLen() int {
	switch m.favTab {
	case 0:
		return len(m.fav.Verses())
	case 1:
		return len(m.fav.Conversations())
	default:
		return len(m.conversations)
	}
}

func (m *Model) removeFavorite() {
	switch m.favTab {
	case 0:
		verses := m.fav.Verses()
		if m.cursor < len(verses) {
			m.fav.RemoveVerse(verses[m.cursor].ID)
		}
	case 1:
		conversations := m.fav.Conversations()
		if m.cursor < len(conversations) {
			m.fav.RemoveConversation(conversations[m.cursor].Question)
		}
	}
	if m.cursor > 0 && m.cursor >= m.favListLen() {
		m.cursor--
	}
}

// ─── Annotations ───

func (m Model) handleAnnotationsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentView = ViewHome
	case "tab":
		m.annTab = (m.annTab + 1) % 2
		m.cursor = 0
	case "j", "down":
		if m.cursor < m.annListLen()-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "d":
		m.removeAnnotation()
	case "enter":
		// Jump from a bookmark straight into its chapter.
		if m.annTab == 1 {
			bookmarks := m.store.Bookmarks()
			if m.cursor < len(bookmarks) {
				b := bookmarks[m.cursor]
				m.currentView = ViewReader
				m.busy = true
				return m, tea.Batch(m.spin.Tick, m.deepLinkCmd(b.BookID, b.ChapterNumber))
			}
		}
	}
	return m, nil
}

func (m Model) annListLen() int {
	if m.annTab == 0 {
		return len(m.store.Highlights())
	}
	return len(m.store.Bookmarks())
}

func (m *Model) removeAnnotation() {
	if m.annTab == 0 {
		highlights := m.store.Highlights()
		if m.cursor < len(highlights) {
			m.store.RemoveHighlight(highlights[m.cursor].ID)
		}
	} else {
		bookmarks := m.store.Bookmarks()
		if m.cursor < len(bookmarks) {
			m.store.RemoveBookmark(bookmarks[m.cursor].ID)
		}
	}
	if m.cursor > 0 && m.cursor >= m.annListLen() {
		m.cursor--
	}
}

// ─── Profile ───

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.currentView = ViewHome
	case "L":
		m.sess.Logout()
		m.currentView = ViewLogin
		m.resetAuthInputs()
	}
	return m, nil
}
