package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/logger"
	"github.com/existflow/kawai/internal/model"
	"github.com/existflow/kawai/internal/session"
)

// requestTimeout bounds every backend call made from the UI
const requestTimeout = 30 * time.Second

// tickMsg is sent every second for the clock
type tickMsg time.Time

type notesMsg []model.Note

type remindersMsg []model.Reminder

// sessionMsg is sent when the session changes, possibly in another process
type sessionMsg session.State

// doneMsg reports a finished mutation
type doneMsg struct {
	action string
	err    error
}

// Init starts the clock, the first load and the session listener
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.loadCmd(), m.waitForSession())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForSession listens for session changes
func (m Model) waitForSession() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		return sessionMsg(<-ch)
	}
}

// loadCmd fetches notes and reminders concurrently
func (m *Model) loadCmd() tea.Cmd {
	if m.loggedOut {
		return nil
	}
	m.loading = 2
	backend, search := m.backend, m.filterText
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return notesMsg(backend.ListNotes(ctx, search))
		},
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return remindersMsg(backend.ListReminders(ctx, search))
		},
	)
}

// mutateCmd runs fn in the background and reports the outcome
func mutateCmd(action string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return doneMsg{action: action, err: fn(ctx)}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tickCmd()

	case notesMsg:
		m.notes = msg
		m.links = api.DeriveLinks(m.notes)
		m.loading--
		m.clampCursor()
		return m, nil

	case remindersMsg:
		m.reminders = msg
		m.loading--
		m.clampCursor()
		return m, nil

	case sessionMsg:
		st := session.State(msg)
		m.user = st.User
		if !st.Authenticated {
			m.loggedOut = true
			m.notes, m.links, m.reminders = nil, nil, nil
			m.message = "Logged out. Run 'kawai auth magic <link>' to log in again."
			return m, m.waitForSession()
		}
		m.loggedOut = false
		m.message = "Session changed, reloading"
		return m, tea.Batch(m.loadCmd(), m.waitForSession())

	case doneMsg:
		if msg.err != nil {
			logger.Warn("TUI action failed", logger.F("action", msg.action), logger.F("error", msg.err))
			m.message = msg.action + " failed: " + msg.err.Error()
			return m, nil
		}
		m.message = msg.action + " done"
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddNote, ModeEditNote, ModeFilter:
			return m.updateInput(msg)
		case ModeConfirmDelete:
			return m.updateConfirm(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneSidebar {
			m.pane = PaneList
		} else {
			m.pane = PaneSidebar
		}

	case key.Matches(msg, keys.Left):
		m.pane = PaneSidebar

	case key.Matches(msg, keys.Right), key.Matches(msg, keys.Enter):
		m.pane = PaneList

	case key.Matches(msg, keys.Up):
		m.handleUp()

	case key.Matches(msg, keys.Down):
		m.handleDown()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Refresh):
		m.message = "Refreshing..."
		return m, m.loadCmd()

	case key.Matches(msg, keys.Logout):
		return m.handleLogout()

	case m.loggedOut:
		m.message = "Not logged in"

	case key.Matches(msg, keys.Add):
		return m.startInput(ModeAddNote, "")

	case key.Matches(msg, keys.Edit):
		if n := m.currentNote(); n != nil {
			return m.startInput(ModeEditNote, n.Content)
		}

	case key.Matches(msg, keys.Filter):
		return m.startInput(ModeFilter, m.filterText)

	case key.Matches(msg, keys.Delete):
		if m.pane == PaneList && m.itemCount() > 0 && m.section() != SectionCalendar {
			m.mode = ModeConfirmDelete
			m.message = m.deletePrompt()
		}

	case key.Matches(msg, keys.Escape):
		if m.filterText != "" {
			m.filterText = ""
			return m, m.loadCmd()
		}
		m.message = ""
	}

	return m, nil
}

func (m *Model) handleUp() {
	if m.pane == PaneSidebar {
		if m.secCursor > 0 {
			m.secCursor--
			m.itemCursor = 0
		}
		return
	}
	if m.itemCursor > 0 {
		m.itemCursor--
	}
}

func (m *Model) handleDown() {
	if m.pane == PaneSidebar {
		if m.secCursor < len(sections)-1 {
			m.secCursor++
			m.itemCursor = 0
		}
		return
	}
	if m.itemCursor < m.itemCount()-1 {
		m.itemCursor++
	}
}

func (m Model) handleLogout() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := m.sessions.Logout(ctx); err != nil {
		m.message = "Logout failed: " + err.Error()
		return m, nil
	}
	logger.Info("Logged out from TUI")
	return m, tea.Quit
}

func (m Model) startInput(mode Mode, value string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	switch mode {
	case ModeFilter:
		m.input.Placeholder = "Search..."
	default:
		m.input.Placeholder = "Write a note..."
	}
	return m, m.input.Focus()
}

// deletePrompt explains what a delete in the current section removes
func (m *Model) deletePrompt() string {
	switch m.section() {
	case SectionLinks:
		return "Delete this link? Its source note is deleted too. (y/N)"
	case SectionReminders:
		return "Delete this reminder? (y/N)"
	default:
		return "Delete this note? (y/N)"
	}
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	if !key.Matches(msg, keys.Confirm) {
		m.message = "Cancelled"
		return m, nil
	}
	return m, m.deleteCmd()
}

// deleteCmd deletes the selected item of the current section
func (m *Model) deleteCmd() tea.Cmd {
	b := m.backend
	switch m.section() {
	case SectionNotes:
		id := m.notes[m.itemCursor].ID
		return mutateCmd("Delete note", func(ctx context.Context) error { return b.DeleteNote(ctx, id) })
	case SectionLinks:
		id := m.links[m.itemCursor].ID
		return mutateCmd("Delete link", func(ctx context.Context) error { return b.DeleteLink(ctx, id) })
	case SectionReminders:
		id := m.reminders[m.itemCursor].ID
		return mutateCmd("Delete reminder", func(ctx context.Context) error { return b.DeleteReminder(ctx, id) })
	}
	return nil
}

// updateInput handles the note editor and the search prompt
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		value := m.input.Value()
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()
		m.input.SetValue("")

		b := m.backend
		switch mode {
		case ModeFilter:
			m.filterText = value
			m.itemCursor = 0
			return m, m.loadCmd()
		case ModeAddNote:
			if value == "" {
				return m, nil
			}
			return m, mutateCmd("Add note", func(ctx context.Context) error {
				_, err := b.CreateNote(ctx, api.NewNote{Content: value})
				return err
			})
		case ModeEditNote:
			n := m.currentNote()
			if n == nil || value == "" {
				return m, nil
			}
			id := n.ID
			return m, mutateCmd("Edit note", func(ctx context.Context) error { return b.UpdateNote(ctx, id, value) })
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
