package model

import "time"

// Note types written by the bot
const (
	NoteText  = "text"
	NoteMixed = "mixed"
)

// Note is a saved WhatsApp message
type Note struct {
	ID        string    `json:"id"`
	UserPhone string    `json:"user_phone"`
	Original  string    `json:"original,omitempty"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Link is a read-only projection of a Note that contains a URL.
// ID and NoteID are both the parent note id, so deleting a Link deletes its Note.
type Link struct {
	ID          string    `json:"id"`
	NoteID      string    `json:"note_id"`
	UserPhone   string    `json:"user_phone"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	NoteContent string    `json:"note_content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary is the personal dashboard aggregate
type Summary struct {
	NoteCount     int    `json:"note_count"`
	LinkCount     int    `json:"link_count"`
	ReminderCount int    `json:"reminder_count"`
	RecentNotes   []Note `json:"recent_notes"`
}

// ChatMessage is one entry of the legacy chat history
type ChatMessage struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}
