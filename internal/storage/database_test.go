package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/models"
)

func openTestDB(t *testing.T) *Database {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "nested", "conversations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoadConversation(t *testing.T) {
	db := openTestDB(t)
	ts := time.Date(2023, 3, 24, 12, 30, 0, 0, time.UTC)

	// identical timestamps must not change the order messages come back in
	msgs := []models.Message{
		{ID: "msg1", Sender: models.SenderUser, Content: "RAGシステムの構築方法について教えてください", Timestamp: ts, Attachments: []string{"notes.pdf"}},
		{ID: "msg2", Sender: models.SenderSystem, Content: "RAGシステムは主に以下のコンポーネントで構成されます", Timestamp: ts, Sources: []models.Source{
			{Title: "RAG システム入門", URL: "https://example.com/rag-introduction", Snippet: "..."},
			{Title: "ベクトルデータベース比較", URL: "https://example.com/vector-db-comparison", Snippet: "..."},
		}},
		{ID: "msg3", Sender: models.SenderUser, Content: "ありがとう", Timestamp: ts},
	}
	summary := models.Summary{ID: "conv1", Name: "プロジェクトについての質問", LastMessage: "ありがとう", Timestamp: ts}

	require.NoError(t, db.SaveConversation(summary, msgs))

	convs, err := db.LoadConversations()
	require.NoError(t, err)
	require.Len(t, convs, 1)

	got := convs[0]
	assert.Equal(t, "conv1", got.ID)
	assert.Equal(t, "プロジェクトについての質問", got.Name)
	assert.Equal(t, "ありがとう", got.LastMessage)
	assert.True(t, ts.Equal(got.Timestamp))

	require.Len(t, got.Messages, 3)
	assert.Equal(t, "msg1", got.Messages[0].ID)
	assert.Equal(t, "msg2", got.Messages[1].ID)
	assert.Equal(t, "msg3", got.Messages[2].ID)
	assert.Equal(t, []string{"notes.pdf"}, got.Messages[0].Attachments)
	assert.Equal(t, models.SenderSystem, got.Messages[1].Sender)
	assert.Equal(t, msgs[1].Sources, got.Messages[1].Sources)
	assert.Nil(t, got.Messages[2].Sources)
}

func TestSaveReplacesMessages(t *testing.T) {
	db := openTestDB(t)
	summary := models.Summary{ID: "conv1", Name: "t", Timestamp: time.Now()}

	require.NoError(t, db.SaveConversation(summary, []models.Message{
		{ID: "a", Sender: models.SenderUser, Content: "one", Timestamp: time.Now()},
	}))
	require.NoError(t, db.SaveConversation(summary, nil))

	convs, err := db.LoadConversations()
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Empty(t, convs[0].Messages)
}

func TestLoadConversationsMostRecentFirst(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2023, 3, 22, 9, 20, 0, 0, time.UTC)

	require.NoError(t, db.SaveConversation(models.Summary{ID: "conv3", Name: "データベース連携について", Timestamp: base}, nil))
	require.NoError(t, db.SaveConversation(models.Summary{ID: "conv1", Name: "プロジェクトについての質問", Timestamp: base.Add(48 * time.Hour)}, nil))
	require.NoError(t, db.SaveConversation(models.Summary{ID: "conv2", Name: "ドキュメント検索の質問", Timestamp: base.Add(24 * time.Hour)}, nil))

	convs, err := db.LoadConversations()
	require.NoError(t, err)
	require.Len(t, convs, 3)
	assert.Equal(t, "conv1", convs[0].ID)
	assert.Equal(t, "conv2", convs[1].ID)
	assert.Equal(t, "conv3", convs[2].ID)
}
