package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kawai/internal/model"
)

func TestScenario_NoteLinkDelete(t *testing.T) {
	ctx := context.Background()
	backend, srv := newFakeBackend(t)
	c := NewClient(srv.URL, staticToken("tok"))

	created, err := c.CreateNote(ctx, NewNote{Content: "Meeting notes https://docs.example/1", Type: model.NoteMixed})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	notes := c.ListNotes(ctx, "")
	require.Len(t, notes, 1)
	assert.Equal(t, created.ID, notes[0].ID)

	links := c.ListLinks(ctx, "")
	require.Len(t, links, 1)
	assert.Equal(t, notes[0].ID, links[0].NoteID)
	assert.Equal(t, "https://docs.example/1", links[0].URL)

	require.NoError(t, c.DeleteLink(ctx, links[0].ID))
	assert.Equal(t, []string{notes[0].ID}, backend.deletes)

	assert.Empty(t, c.ListNotes(ctx, ""))

	// Deleting again reaches the backend, which reports the note gone.
	err = c.DeleteLink(ctx, links[0].ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Note not found", apiErr.Message)
}
