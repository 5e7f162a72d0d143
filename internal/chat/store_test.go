package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/models"
)

func TestStoreAppendKeepsInsertionOrder(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Append(models.Message{ID: "1", Content: "a", Sender: models.SenderUser}))
	require.NoError(t, s.Append(models.Message{ID: "2", Content: "b", Sender: models.SenderSystem}))
	require.NoError(t, s.Append(models.Message{ID: "3", Content: "c", Sender: models.SenderUser}))

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "1", msgs[0].ID)
	assert.Equal(t, "2", msgs[1].ID)
	assert.Equal(t, "3", msgs[2].ID)
}

func TestStoreAppendRejectsEmpty(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.Append(models.Message{Content: "  \n"}), ErrEmptyMessage)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Append(models.Message{Attachments: []string{"manual.pdf"}}))
	assert.Equal(t, 1, s.Len())
}

func TestStoreMarkTrailingState(t *testing.T) {
	s := NewStore()
	assert.False(t, s.MarkTrailingState(models.StateLoading, ""))

	require.NoError(t, s.Append(models.Message{Content: "q", Sender: models.SenderUser}))
	assert.False(t, s.MarkTrailingState(models.StateLoading, ""), "user messages are never marked")

	require.NoError(t, s.Append(models.Message{Content: "a", Sender: models.SenderSystem}))
	require.True(t, s.MarkTrailingState(models.StateError, "boom"))
	last := s.Messages()[1]
	assert.Equal(t, models.StateError, last.State)
	assert.Equal(t, "boom", last.ErrorMessage)

	require.True(t, s.MarkTrailingState(models.StateDefault, "ignored"))
	last = s.Messages()[1]
	assert.Equal(t, models.StateDefault, last.State)
	assert.Empty(t, last.ErrorMessage)
	assert.Equal(t, models.StateDefault, s.Messages()[0].State)
}

func TestStoreSnapshotsAreCopies(t *testing.T) {
	s := NewStore(models.Message{Content: "a", Sender: models.SenderSystem, Sources: []models.Source{{Title: "t"}}})
	msgs := s.Messages()
	msgs[0].Content = "changed"
	msgs[0].Sources[0].Title = "changed"

	again := s.Messages()
	assert.Equal(t, "a", again[0].Content)
	assert.Equal(t, "t", again[0].Sources[0].Title)
}

func TestStoreReset(t *testing.T) {
	s := NewStore(models.Message{Content: "a"}, models.Message{Content: "b"})
	s.Reset()
	assert.Empty(t, s.Messages())
}
