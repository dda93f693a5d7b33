package model

import "time"

// Reminder statuses
const (
	ReminderPending = "pending"
	ReminderSent    = "sent"
)

// Reminder is a scheduled WhatsApp notification
type Reminder struct {
	ID            string    `json:"id"`
	UserPhone     string    `json:"user_phone"`
	Title         string    `json:"title"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// ReminderUpdate carries the editable fields of a reminder
type ReminderUpdate struct {
	Title         string     `json:"title,omitempty"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	Status        string     `json:"status,omitempty"`
}

// IsDue returns true if the reminder fires today or already passed
func (r *Reminder) IsDue(now time.Time) bool {
	if r.ScheduledTime.IsZero() {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return r.ScheduledTime.Before(today.Add(24 * time.Hour))
}

// IsOverdue returns true if a pending reminder is past its scheduled time
func (r *Reminder) IsOverdue(now time.Time) bool {
	if r.ScheduledTime.IsZero() || r.Status == ReminderSent {
		return false
	}
	return r.ScheduledTime.Before(now)
}

// Day returns the local calendar day the reminder falls on
func (r *Reminder) Day() time.Time {
	t := r.ScheduledTime.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
