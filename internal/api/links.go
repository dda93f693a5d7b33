package api

import (
	"context"
	"regexp"
	"strings"

	"github.com/existflow/kawai/internal/model"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// DeriveLinks projects notes into links. A note qualifies when its type is
// mixed or its content contains an http(s) URL; the first URL in the content
// becomes the link. Notes without a URL produce nothing.
//
// The backend has no link resource of its own: a link's ID and NoteID are the
// parent note's id, and DeleteLink deletes that note.
func DeriveLinks(notes []model.Note) []model.Link {
	links := make([]model.Link, 0)
	for _, n := range notes {
		if n.Type != model.NoteMixed &&
			!strings.Contains(n.Content, "http://") && !strings.Contains(n.Content, "https://") {
			continue
		}
		u := urlPattern.FindString(n.Content)
		if u == "" {
			continue
		}
		links = append(links, model.Link{
			ID:          n.ID,
			NoteID:      n.ID,
			UserPhone:   n.UserPhone,
			URL:         u,
			NoteContent: n.Content,
			CreatedAt:   n.CreatedAt,
		})
	}
	return links
}

// ListLinks returns the links derived from the user's notes
func (c *Client) ListLinks(ctx context.Context, search string) []model.Link {
	return DeriveLinks(c.ListNotes(ctx, search))
}

// DeleteLink deletes the note the link was derived from.
func (c *Client) DeleteLink(ctx context.Context, id string) error {
	return c.DeleteNote(ctx, id)
}
