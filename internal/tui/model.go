package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/logger"
	"github.com/existflow/kawai/internal/model"
	"github.com/existflow/kawai/internal/session"
)

// Section is a sidebar entry
type Section int

const (
	SectionNotes Section = iota
	SectionLinks
	SectionReminders
	SectionCalendar
)

var sections = []Section{SectionNotes, SectionLinks, SectionReminders, SectionCalendar}

func (s Section) String() string {
	switch s {
	case SectionNotes:
		return "Notes"
	case SectionLinks:
		return "Links"
	case SectionReminders:
		return "Reminders"
	case SectionCalendar:
		return "Calendar"
	default:
		return "?"
	}
}

// Pane represents which pane is focused
type Pane int

const (
	PaneSidebar Pane = iota
	PaneList
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddNote
	ModeEditNote
	ModeFilter
	ModeConfirmDelete
	ModeHelp
)

// Backend is the API surface the dashboard uses
type Backend interface {
	ListNotes(ctx context.Context, search string) []model.Note
	ListReminders(ctx context.Context, search string) []model.Reminder
	CreateNote(ctx context.Context, n api.NewNote) (*model.Note, error)
	UpdateNote(ctx context.Context, id, content string) error
	DeleteNote(ctx context.Context, id string) error
	DeleteLink(ctx context.Context, id string) error
	DeleteReminder(ctx context.Context, id string) error
}

// Sessions is the session store surface the dashboard uses
type Sessions interface {
	Current() session.State
	Logout(ctx context.Context) error
	Subscribe(fn func(session.State)) (cancel func())
}

// Model is the main TUI model
type Model struct {
	backend  Backend
	sessions Sessions

	notes     []model.Note
	links     []model.Link
	reminders []model.Reminder
	loading   int

	// Session changes from this or another process
	sessionCh   chan session.State
	unsubscribe func()
	user        model.User
	loggedOut   bool

	// UI state
	width      int
	height     int
	pane       Pane
	mode       Mode
	secCursor  int
	itemCursor int

	input      textinput.Model
	filterText string
	message    string
}

// NewModel creates a new TUI model
func NewModel(backend Backend, sessions Sessions) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Write a note..."
	ti.CharLimit = 1024
	ti.Width = 50

	m := Model{
		backend:   backend,
		sessions:  sessions,
		pane:      PaneSidebar,
		mode:      ModeNormal,
		input:     ti,
		sessionCh: make(chan session.State, 1),
	}

	st := sessions.Current()
	m.user = st.User
	m.loggedOut = !st.Authenticated

	ch := m.sessionCh
	m.unsubscribe = sessions.Subscribe(func(st session.State) {
		// Keep only the latest state.
		select {
		case <-ch:
		default:
		}
		ch <- st
	})
	return m
}

// Close unregisters the session subscription
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Model) section() Section {
	return sections[m.secCursor]
}

// itemCount returns the number of rows in the current section
func (m *Model) itemCount() int {
	switch m.section() {
	case SectionNotes:
		return len(m.notes)
	case SectionLinks:
		return len(m.links)
	case SectionReminders, SectionCalendar:
		return len(m.reminders)
	}
	return 0
}

func (m *Model) currentNote() *model.Note {
	if m.section() == SectionNotes && m.itemCursor < len(m.notes) {
		return &m.notes[m.itemCursor]
	}
	return nil
}

func (m *Model) clampCursor() {
	if n := m.itemCount(); m.itemCursor >= n {
		m.itemCursor = max(n-1, 0)
	}
}
