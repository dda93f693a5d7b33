package api

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/existflow/kawai/internal/model"
)

const recentNotes = 5

// Summary fetches notes and reminders concurrently and joins them.
// Either side degrades to empty on its own failure.
func (c *Client) Summary(ctx context.Context) model.Summary {
	var (
		notes     []model.Note
		reminders []model.Reminder
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		notes = c.ListNotes(gctx, "")
		return nil
	})
	g.Go(func() error {
		reminders = c.ListReminders(gctx, "")
		return nil
	})
	_ = g.Wait()

	return Summarize(notes, reminders)
}

// Summarize builds the dashboard aggregate from already fetched lists
func Summarize(notes []model.Note, reminders []model.Reminder) model.Summary {
	recent := make([]model.Note, len(notes))
	copy(recent, notes)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > recentNotes {
		recent = recent[:recentNotes]
	}

	return model.Summary{
		NoteCount:     len(notes),
		LinkCount:     len(DeriveLinks(notes)),
		ReminderCount: len(reminders),
		RecentNotes:   recent,
	}
}
