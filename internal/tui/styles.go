package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Reminder colors
	Overdue = lipgloss.Color("#FF6B6B") // Red
	DueSoon = lipgloss.Color("#FFE66D") // Yellow
	Sent    = lipgloss.Color("#95E1A3") // Green
	LinkURL = lipgloss.Color("#7AA2F7") // Blue

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Danger    = lipgloss.Color("#FF5555")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	SidebarStyle = lipgloss.NewStyle().
			Width(20).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	ListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	SentStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	URLStyle     = lipgloss.NewStyle().Foreground(LinkURL).Underline(true)
	OverdueStyle = lipgloss.NewStyle().Foreground(Overdue).Bold(true)
	DueStyle     = lipgloss.NewStyle().Foreground(DueSoon)
	DoneStyle    = lipgloss.NewStyle().Foreground(Sent)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	ConfirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Danger).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	divider = lipgloss.NewStyle().Foreground(Border)
)

// ReminderBadge renders the state of a reminder relative to now
func ReminderBadge(status string, overdue, due bool) string {
	switch {
	case status == "sent":
		return DoneStyle.Render("sent")
	case overdue:
		return OverdueStyle.Render("overdue")
	case due:
		return DueStyle.Render("today")
	default:
		return HelpStyle.Render(status)
	}
}
