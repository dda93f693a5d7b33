package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/model"
)

const sidebarWidth = 22

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderList())

	switch m.mode {
	case ModeAddNote, ModeEditNote:
		main = m.place(m.renderModal())
	case ModeConfirmDelete:
		main = m.place(ConfirmStyle.Render(m.message + "\n\n" + HelpStyle.Render("y:delete  any key:cancel")))
	case ModeHelp:
		main = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) place(s string) string {
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, s,
		lipgloss.WithWhitespaceChars(" "))
}

func (m Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Kawai") + "\n")
	name := m.user.Name
	if m.loggedOut {
		name = "not logged in"
	}
	b.WriteString(HelpStyle.Render(truncate(name, sidebarWidth-4)) + "\n")
	b.WriteString(HelpStyle.Render(time.Now().Format("15:04:05")) + "\n")
	b.WriteString(divider.Render(strings.Repeat("─", 17)) + "\n\n")

	for i, sec := range sections {
		cursor := "  "
		style := ItemStyle
		if i == m.secCursor {
			cursor = "❯ "
			if m.pane == PaneSidebar {
				style = ItemSelectedStyle
			}
		}
		line := fmt.Sprintf("%s%-10s %3d", cursor, sec, m.count(sec))
		b.WriteString(style.Render(line) + "\n")
	}

	return SidebarStyle.Width(sidebarWidth).Height(m.height - 2).Render(b.String())
}

func (m Model) count(sec Section) int {
	switch sec {
	case SectionNotes:
		return len(m.notes)
	case SectionLinks:
		return len(m.links)
	case SectionReminders:
		return len(m.reminders)
	case SectionCalendar:
		return len(api.Calendar(m.reminders))
	}
	return 0
}

func (m Model) renderList() string {
	width := m.width - sidebarWidth - 2
	var b strings.Builder

	header := m.section().String()
	if m.filterText != "" {
		header += fmt.Sprintf(" matching %q", m.filterText)
	}
	b.WriteString(HeaderStyle.Render(header) + "\n")
	b.WriteString(divider.Render(strings.Repeat("─", max(width-4, 0))) + "\n\n")

	switch {
	case m.loggedOut:
		b.WriteString(HelpStyle.Render("  Log in with a magic link from the WhatsApp bot."))
	case m.loading > 0 && m.itemCount() == 0:
		b.WriteString(HelpStyle.Render("  Loading..."))
	default:
		switch m.section() {
		case SectionNotes:
			m.renderNotes(&b, width)
		case SectionLinks:
			m.renderLinks(&b, width)
		case SectionReminders:
			m.renderReminders(&b, width)
		case SectionCalendar:
			m.renderCalendar(&b, width)
		}
	}

	return ListStyle.Width(width).Height(m.height - 2).Render(b.String())
}

// row renders one selectable line
func (m Model) row(i int, text string) string {
	if i == m.itemCursor && m.pane == PaneList {
		return ItemSelectedStyle.Render("❯ "+text) + "\n"
	}
	return ItemStyle.Render("  "+text) + "\n"
}

func (m Model) renderNotes(b *strings.Builder, width int) {
	if len(m.notes) == 0 {
		b.WriteString(HelpStyle.Render("  No notes. Press 'a' to add one."))
		return
	}
	for i, n := range m.notes {
		when := ""
		if !n.CreatedAt.IsZero() {
			when = n.CreatedAt.Local().Format("02 Jan")
		}
		b.WriteString(m.row(i, fmt.Sprintf("%-*s %s", max(width-16, 10), truncate(n.Content, max(width-16, 10)), HelpStyle.Render(when))))
	}
}

func (m Model) renderLinks(b *strings.Builder, width int) {
	if len(m.links) == 0 {
		b.WriteString(HelpStyle.Render("  No links. Notes containing a URL show up here."))
		return
	}
	for i, l := range m.links {
		b.WriteString(m.row(i, URLStyle.Render(truncate(l.URL, max(width-8, 10)))))
		if l.Title != "" && l.Title != l.URL {
			b.WriteString(HelpStyle.Render("    "+truncate(l.Title, max(width-8, 10))) + "\n")
		}
	}
}

func (m Model) renderReminders(b *strings.Builder, width int) {
	if len(m.reminders) == 0 {
		b.WriteString(HelpStyle.Render("  No reminders. Ask the bot to remind you of something."))
		return
	}
	now := time.Now()
	for i, r := range m.reminders {
		b.WriteString(m.row(i, m.reminderLine(r, now, width, "02 Jan 15:04")))
	}
}

func (m Model) reminderLine(r model.Reminder, now time.Time, width int, layout string) string {
	when := "unscheduled"
	if !r.ScheduledTime.IsZero() {
		when = r.ScheduledTime.Local().Format(layout)
	}
	title := truncate(r.Title, max(width-32, 10))
	badge := ReminderBadge(r.Status, r.IsOverdue(now), r.IsDue(now))
	if r.Status == model.ReminderSent {
		title = SentStyle.Render(title)
	}
	return fmt.Sprintf("%-12s %s %s", when, title, badge)
}

func (m Model) renderCalendar(b *strings.Builder, width int) {
	days := api.Calendar(m.reminders)
	if len(days) == 0 {
		b.WriteString(HelpStyle.Render("  Nothing scheduled."))
		return
	}
	now := time.Now()
	for _, d := range days {
		b.WriteString(HeaderStyle.Render(d.Day.Format("Mon 02 Jan 2006")) + "\n")
		for _, r := range d.Reminders {
			b.WriteString("  " + m.reminderLine(r, now, width, "15:04") + "\n")
		}
		b.WriteString("\n")
	}
}

func (m Model) renderStatusBar() string {
	if m.mode == ModeFilter {
		return StatusBarStyle.Width(m.width).Render("/" + m.input.View())
	}

	help := "/:search  a:add  e:edit  d:del  r:refresh  ?:help  q:quit  L:logout"
	if m.message != "" {
		help = m.message
	} else if m.filterText != "" {
		help = fmt.Sprintf("/%s  Esc:clear", m.filterText)
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderModal() string {
	title := "Add Note"
	if m.mode == ModeEditNote {
		title = "Edit Note"
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")
	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Navigation              │
│  ──────────              │
│  j/↓    Move down        │
│  k/↑    Move up          │
│  h/l    Switch pane      │
│  Tab    Switch pane      │
│                          │
│  Actions                 │
│  ───────                 │
│  a      Add note         │
│  e      Edit note        │
│  d      Delete           │
│  /      Search           │
│  r      Refresh          │
│                          │
│  Other                   │
│  ─────                   │
│  L      Logout           │
│  ?      Toggle help      │
│  q      Quit             │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	return m.place(help)
}
