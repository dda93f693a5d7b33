package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/existflow/kawai/internal/model"
)

// NewNote is the body of a note creation request
type NewNote struct {
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

// ListNotes returns the user's notes, optionally filtered by search.
// It never fails; any problem yields an empty slice.
func (c *Client) ListNotes(ctx context.Context, search string) []model.Note {
	path := "/api/dashboard/notes"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	body, err := c.get(ctx, path)
	if err != nil {
		c.readFailed("notes", err)
		return []model.Note{}
	}
	items, err := extractList(body, "notes")
	if err != nil {
		c.readFailed("notes", err)
		return []model.Note{}
	}
	return decodeAll(items, noteFromDoc)
}

// CreateNote saves a new note. The returned note is whatever the backend
// echoed back, or the request itself when it echoed nothing usable.
func (c *Client) CreateNote(ctx context.Context, n NewNote) (*model.Note, error) {
	if n.Type == "" {
		n.Type = model.NoteText
	}
	body, err := c.mutate(ctx, http.MethodPost, "/api/notes", n)
	if err != nil {
		return nil, err
	}

	note := model.Note{Content: n.Content, Type: n.Type}
	if raw, err := extractObject(body, "data", "note"); err == nil {
		if d, err := decodeDoc(raw); err == nil {
			if echoed := noteFromDoc(d); echoed.ID != "" {
				note = echoed
			}
		}
	}
	return &note, nil
}

// NoteDetail fetches a single note
func (c *Client) NoteDetail(ctx context.Context, id string) (*model.Note, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	body, err := c.mutate(ctx, http.MethodGet, "/api/notes/detail/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	raw, err := extractObject(body, "data", "note")
	if err != nil {
		return nil, &APIError{Message: FallbackMessage, Err: err}
	}
	d, err := decodeDoc(raw)
	if err != nil {
		return nil, &APIError{Message: FallbackMessage, Err: err}
	}
	note := noteFromDoc(d)
	if note.ID == "" {
		note.ID = id
	}
	return &note, nil
}

// UpdateNote replaces a note's content
func (c *Client) UpdateNote(ctx context.Context, id, content string) error {
	if err := validID(id); err != nil {
		return err
	}
	_, err := c.mutate(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(id), map[string]string{"content": content})
	return err
}

// DeleteNote deletes a note, and with it any link derived from it
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	_, err := c.mutate(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil)
	return err
}
