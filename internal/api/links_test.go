package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kawai/internal/model"
)

func TestDeriveLinks(t *testing.T) {
	notes := []model.Note{
		{ID: "n1", Type: model.NoteText, Content: "buy milk"},
		{ID: "n2", Type: model.NoteText, Content: "see https://x.test/a and https://x.test/b"},
		{ID: "n3", Type: model.NoteMixed, Content: "mixed but no url"},
		{ID: "n4", Type: model.NoteMixed, Content: "http://plain.test/p?q=1\nnext line", UserPhone: "628"},
	}

	links := DeriveLinks(notes)
	require.Len(t, links, 2)

	assert.Equal(t, "https://x.test/a", links[0].URL)
	assert.Equal(t, "n2", links[0].ID)
	assert.Equal(t, "n2", links[0].NoteID)

	assert.Equal(t, "http://plain.test/p?q=1", links[1].URL)
	assert.Equal(t, "628", links[1].UserPhone)
	assert.Equal(t, notes[3].Content, links[1].NoteContent)
}

func TestDeriveLinks_EmptyInput(t *testing.T) {
	links := DeriveLinks(nil)
	assert.NotNil(t, links)
	assert.Empty(t, links)
}
