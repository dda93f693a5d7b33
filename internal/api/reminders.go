package api

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/existflow/kawai/internal/model"
)

// ListReminders returns the user's reminders. It never fails.
func (c *Client) ListReminders(ctx context.Context, search string) []model.Reminder {
	path := "/api/dashboard/reminders"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	body, err := c.get(ctx, path)
	if err != nil {
		c.readFailed("reminders", err)
		return []model.Reminder{}
	}
	items, err := extractList(body, "reminders")
	if err != nil {
		c.readFailed("reminders", err)
		return []model.Reminder{}
	}
	return decodeAll(items, reminderFromDoc)
}

// UpdateReminder changes a reminder's title, time or status
func (c *Client) UpdateReminder(ctx context.Context, id string, u model.ReminderUpdate) error {
	if err := validID(id); err != nil {
		return err
	}
	_, err := c.mutate(ctx, http.MethodPut, "/api/reminders/"+url.PathEscape(id), u)
	return err
}

// DeleteReminder deletes a reminder
func (c *Client) DeleteReminder(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	_, err := c.mutate(ctx, http.MethodDelete, "/api/reminders/"+url.PathEscape(id), nil)
	return err
}

// CalendarDay is one day of the reminder calendar
type CalendarDay struct {
	Day       time.Time        `json:"day"`
	Reminders []model.Reminder `json:"reminders"`
}

// Calendar groups reminders by local day, earliest first. Reminders without
// a scheduled time are left out.
func Calendar(reminders []model.Reminder) []CalendarDay {
	byDay := make(map[time.Time][]model.Reminder)
	for _, r := range reminders {
		if r.ScheduledTime.IsZero() {
			continue
		}
		day := r.Day()
		byDay[day] = append(byDay[day], r)
	}

	days := make([]CalendarDay, 0, len(byDay))
	for day, rs := range byDay {
		sort.Slice(rs, func(i, j int) bool { return rs[i].ScheduledTime.Before(rs[j].ScheduledTime) })
		days = append(days, CalendarDay{Day: day, Reminders: rs})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days
}
