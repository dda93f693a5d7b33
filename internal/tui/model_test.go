package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/model"
	"github.com/existflow/kawai/internal/session"
)

type fakeBackend struct {
	mu        sync.Mutex
	notes     []model.Note
	reminders []model.Reminder
	created   []string
	updated   map[string]string
	deleted   []string
}

func (f *fakeBackend) ListNotes(context.Context, string) []model.Note { return f.notes }

func (f *fakeBackend) ListReminders(context.Context, string) []model.Reminder { return f.reminders }

func (f *fakeBackend) CreateNote(_ context.Context, n api.NewNote) (*model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, n.Content)
	return &model.Note{ID: "new", Content: n.Content}, nil
}

func (f *fakeBackend) UpdateNote(_ context.Context, id, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = map[string]string{}
	}
	f.updated[id] = content
	return nil
}

func (f *fakeBackend) DeleteNote(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "note:"+id)
	return nil
}

func (f *fakeBackend) DeleteLink(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "link:"+id)
	return nil
}

func (f *fakeBackend) DeleteReminder(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "reminder:"+id)
	return nil
}

func loggedInStore(t *testing.T) *session.Store {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"phone": "6281234567890"}).SignedString([]byte("k"))
	require.NoError(t, err)

	s := session.NewStore(session.NewMemoryStorage())
	require.NoError(t, s.Login(context.Background(), model.User{Name: "Budi", PhoneNumber: "6281234567890"}, raw))
	return s
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	var next tea.Model = m
	for _, msg := range msgs {
		next, cmd = next.(Model).Update(msg)
	}
	return next.(Model), cmd
}

func fixture(t *testing.T) (Model, *fakeBackend, *session.Store) {
	b := &fakeBackend{
		notes: []model.Note{
			{ID: "n1", Content: "groceries"},
			{ID: "n2", Content: "read https://go.dev/doc later"},
		},
		reminders: []model.Reminder{
			{ID: "r1", Title: "dentist", ScheduledTime: time.Now().Add(time.Hour), Status: model.ReminderPending},
		},
	}
	s := loggedInStore(t)
	m := NewModel(b, s)
	t.Cleanup(m.Close)

	m, _ = press(t, m,
		tea.WindowSizeMsg{Width: 100, Height: 30},
		notesMsg(b.notes),
		remindersMsg(b.reminders),
	)
	return m, b, s
}

func TestModel_LoadDerivesLinks(t *testing.T) {
	m, _, _ := fixture(t)

	require.Len(t, m.links, 1)
	assert.Equal(t, "https://go.dev/doc", m.links[0].URL)
	assert.Equal(t, "n2", m.links[0].NoteID)

	view := m.View()
	assert.Contains(t, view, "Budi")
	assert.Contains(t, view, "groceries")
}

func TestModel_DeleteNeedsConfirmation(t *testing.T) {
	m, b, _ := fixture(t)

	// Cancel with any key other than y.
	m, _ = press(t, m, runes("l"), runes("d"))
	assert.Equal(t, ModeConfirmDelete, m.mode)
	m, cmd := press(t, m, runes("n"))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Nil(t, cmd)
	assert.Empty(t, b.deleted)

	m, cmd = press(t, m, runes("j"), runes("d"), runes("y"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, doneMsg{action: "Delete note"}, msg)
	assert.Equal(t, []string{"note:n2"}, b.deleted)

	m, cmd = press(t, m, msg)
	assert.Equal(t, "Delete note done", m.message)
	assert.NotNil(t, cmd, "a finished mutation reloads")
}

func TestModel_DeleteLinkFromLinksSection(t *testing.T) {
	m, b, _ := fixture(t)

	m, _ = press(t, m, runes("j"))
	require.Equal(t, SectionLinks, m.section())

	m, _ = press(t, m, runes("l"), runes("d"))
	assert.Contains(t, m.message, "source note")
	_, cmd := press(t, m, runes("y"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"link:" + m.links[0].ID}, b.deleted)
}

func TestModel_CalendarIsReadOnly(t *testing.T) {
	m, _, _ := fixture(t)

	m, _ = press(t, m, runes("j"), runes("j"), runes("j"), runes("l"), runes("d"))
	assert.Equal(t, SectionCalendar, m.section())
	assert.Equal(t, ModeNormal, m.mode)
	assert.Contains(t, m.View(), "dentist")
}

func TestModel_AddNote(t *testing.T) {
	m, b, _ := fixture(t)

	m, _ = press(t, m, runes("a"))
	require.Equal(t, ModeAddNote, m.mode)
	m, _ = press(t, m, runes("b"), runes("u"), runes("y"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeNormal, m.mode)
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"buy"}, b.created)
}

func TestModel_EditNote(t *testing.T) {
	m, b, _ := fixture(t)

	m, _ = press(t, m, runes("l"), runes("e"))
	require.Equal(t, ModeEditNote, m.mode)
	assert.Equal(t, "groceries", m.input.Value())

	m, _ = press(t, m, runes("!"))
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "groceries!", b.updated["n1"])
}

func TestModel_SessionLossClearsData(t *testing.T) {
	m, _, s := fixture(t)

	require.NoError(t, s.Logout(context.Background()))
	msg := m.waitForSession()()

	m, _ = press(t, m, msg)
	assert.True(t, m.loggedOut)
	assert.Empty(t, m.notes)
	assert.Contains(t, m.View(), "not logged in")

	m, cmd := press(t, m, runes("a"))
	assert.Equal(t, ModeNormal, m.mode)
	assert.Nil(t, cmd)
}

func TestModel_LogoutKeyQuits(t *testing.T) {
	m, _, s := fixture(t)

	_, cmd := press(t, m, runes("L"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.False(t, s.Current().Authenticated)
}
