package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/selahproject/selah/internal/api"
	"github.com/selahproject/selah/internal/speech"
)

// Messages

type readerUpdatedMsg struct{}

type authDoneMsg struct{ err error }

type askDoneMsg struct{ err error }

type searchDoneMsg struct {
	res api.SearchResult
	err error
}

type conversationsMsg struct {
	list []api.Conversation
	err  error
}

type verseOfDayMsg struct{ verse *api.Verse }

type speechEventMsg struct{}

// Commands

func waitSpeechCmd(seq *speech.Sequencer) tea.Cmd {
	if seq == nil {
		return nil
	}
	events := seq.Events()
	return func() tea.Msg {
		<-events
		return speechEventMsg{}
	}
}

func (m Model) loadBooksCmd() tea.Cmd {
	ctx, r := m.ctx, m.reader
	return func() tea.Msg {
		_ = r.LoadBooks(ctx)
		return readerUpdatedMsg{}
	}
}

func (m Model) openBookCmd(book api.Book) tea.Cmd {
	ctx, r := m.ctx, m.reader
	return func() tea.Msg {
		_ = r.OpenBook(ctx, book)
		return readerUpdatedMsg{}
	}
}

func (m Model) openChapterCmd(chapter api.Chapter) tea.Cmd {
	ctx, r := m.ctx, m.reader
	return func() tea.Msg {
		_ = r.OpenChapter(ctx, chapter)
		return readerUpdatedMsg{}
	}
}

func (m Model) stepChapterCmd(delta int) tea.Cmd {
	ctx, r := m.ctx, m.reader
	return func() tea.Msg {
		_ = r.StepChapter(ctx, delta)
		return readerUpdatedMsg{}
	}
}

func (m Model) deepLinkCmd(bookID, chapterNumber int) tea.Cmd {
	ctx, r := m.ctx, m.reader
	return func() tea.Msg {
		_ = r.DeepLink(ctx, bookID, chapterNumber)
		return readerUpdatedMsg{}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return authDoneMsg{err: sess.Login(ctx, email, password)}
	}
}

func (m Model) registerCmd(email, firstName, password string) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return authDoneMsg{err: sess.Register(ctx, email, firstName, password)}
	}
}

func (m Model) askCmd(question string) tea.Cmd {
	ctx, c := m.ctx, m.askCtl
	return func() tea.Msg {
		return askDoneMsg{err: c.Ask(ctx, question)}
	}
}

func (m Model) searchCmd(query string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		res, err := client.Search(ctx, query)
		return searchDoneMsg{res: res, err: err}
	}
}

func (m Model) conversationsCmd() tea.Cmd {
	ctx, c := m.ctx, m.askCtl
	return func() tea.Msg {
		list, err := c.Conversations(ctx)
		return conversationsMsg{list: list, err: err}
	}
}

func (m Model) verseOfDayCmd() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		verse, err := client.RandomVerse(ctx)
		if err != nil {
			// The home view simply renders without a verse of the day.
			return verseOfDayMsg{}
		}
		return verseOfDayMsg{verse: verse}
	}
}
