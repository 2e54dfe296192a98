// Package ui provides the Bubble Tea terminal interface for selah.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/selahproject/selah/internal/annot"
	"github.com/selahproject/selah/internal/api"
	"github.com/selahproject/selah/internal/ask"
	"github.com/selahproject/selah/internal/config"
	"github.com/selahproject/selah/internal/favorites"
	"github.com/selahproject/selah/internal/reader"
	"github.com/selahproject/selah/internal/session"
	"github.com/selahproject/selah/internal/speech"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewHome
	ViewReader
	ViewAsk
	ViewAnswer
	ViewSearch
	ViewFavorites
	ViewAnnotations
	ViewProfile
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Client     *api.Client
	Session    *session.Session
	Store      *annot.Store
	Favorites  *favorites.Store
	Reader     *reader.Controller
	Ask        *ask.Controller
	Sequencer  *speech.Sequencer
	ThemeName  string
	Config     config.Config
	ConfigPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx        context.Context
	client     *api.Client
	sess       *session.Session
	store      *annot.Store
	fav        *favorites.Store
	reader     *reader.Controller
	askCtl     *ask.Controller
	seq        *speech.Sequencer
	cfg        config.Config
	configPath string

	theme       Theme
	styles      Styles
	currentView View
	width       int
	height      int
	ready       bool

	// Auth forms: email/password (+ first name when registering).
	authInputs []textinput.Model
	authFocus  int
	authErr    string

	busy bool
	spin spinner.Model

	// Home
	menuCursor int
	verseOfDay *api.Verse

	// Reader: selection within the current stage's list.
	cursor    int
	noteInput textinput.Model

	// Q&A and search
	questionInput textinput.Model
	searchInput   textinput.Model
	searchRes     *api.SearchResult

	// Favorites / annotations tabs
	favTab        int
	annTab        int
	conversations []api.Conversation

	status string
	errMsg string
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	theme := GetTheme(opts.ThemeName)

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()
	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128
	firstName := textinput.New()
	firstName.Placeholder = "first name"
	firstName.CharLimit = 50

	question := textinput.New()
	question.Placeholder = "ask a question about faith, scripture, or life"
	question.CharLimit = 500

	search := textinput.New()
	search.Placeholder = "search verses"
	search.CharLimit = 200

	note := textinput.New()
	note.Placeholder = "note (optional)"
	note.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	view := ViewLogin
	if opts.Session != nil && opts.Session.Authenticated() {
		view = ViewHome
	}

	return Model{
		ctx:           ctx,
		client:        opts.Client,
		sess:          opts.Session,
		store:         opts.Store,
		fav:           opts.Favorites,
		reader:        opts.Reader,
		askCtl:        opts.Ask,
		seq:           opts.Sequencer,
		cfg:           opts.Config,
		configPath:    opts.ConfigPath,
		theme:         theme,
		styles:        theme.Styles(),
		currentView:   view,
		authInputs:    []textinput.Model{email, password, firstName},
		questionInput: question,
		searchInput:   search,
		noteInput:     note,
		spin:          sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		textinput.Blink,
		waitSpeechCmd(m.seq),
	}
	if m.currentView == ViewHome {
		cmds = append(cmds, m.verseOfDayCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case readerUpdatedMsg:
		m.busy = false
		m.cursor = 0
		snap := m.reader.Snapshot()
		if snap.LoadErr != "" {
			m.errMsg = snap.LoadErr
		}
		return m, nil

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.authErr = authErrorText(msg.err)
			return m, nil
		}
		m.authErr = ""
		m.resetAuthInputs()
		m.currentView = ViewHome
		cmds := []tea.Cmd{m.verseOfDayCmd()}
		if len(m.reader.Snapshot().Books) == 0 {
			cmds = append(cmds, m.loadBooksCmd())
		}
		return m, tea.Batch(cmds...)

	case askDoneMsg:
		m.busy = false
		if msg.err != nil {
			// The controller keeps the user-facing text; stay on the form.
			return m, nil
		}
		m.currentView = ViewAnswer
		return m, nil

	case searchDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = "search failed, please try again"
			return m, nil
		}
		res := msg.res
		m.searchRes = &res
		m.cursor = 0
		return m, nil

	case conversationsMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = "could not load conversation history"
			return m, nil
		}
		m.conversations = msg.list
		return m, nil

	case verseOfDayMsg:
		m.verseOfDay = msg.verse
		return m, nil

	case speechEventMsg:
		return m.handleSpeechEvent()
	}

	return m, nil
}

// handleSpeechEvent follows sequencer transitions: while narration plays, the
// selection tracks the spoken verse and the reading position advances.
func (m Model) handleSpeechEvent() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitSpeechCmd(m.seq)}
	status := m.seq.Status()
	if m.currentView == ViewReader && status.State == speech.StatePlaying {
		snap := m.reader.Snapshot()
		if snap.Stage == reader.StageReading && status.Index < len(snap.Verses) {
			m.cursor = status.Index
			m.reader.TrackVerse(snap.Verses[status.Index])
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) resetAuthInputs() {
	for i := range m.authInputs {
		m.authInputs[i].SetValue("")
		m.authInputs[i].Blur()
	}
	m.authInputs[0].Focus()
	m.authFocus = 0
}

func authErrorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
