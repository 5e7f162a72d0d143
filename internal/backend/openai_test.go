package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/models"
)

func newTestOpenAI(t *testing.T, h http.HandlerFunc) *OpenAIClient {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewOpenAIClientWithConfig(cfg, openai.GPT3Dot5Turbo, 100)
}

func TestOpenAIClientSend(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"hello"}}]}`))
	})

	resp, err := c.Send(context.Background(), Request{
		Content:     "hi",
		Attachments: []Attachment{{Name: "notes.md", ContentType: "text/markdown", Data: []byte("abc")}},
		History: []models.Message{
			{Sender: models.SenderUser, Content: "earlier"},
			{Sender: models.SenderSystem, Content: "answer"},
			{Sender: models.SenderUser, Content: "hi"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Empty(t, resp.Sources)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, got.Messages[2].Role)
	assert.Contains(t, got.Messages[3].Content, "notes.md (text/markdown, 3 bytes)")
}

func TestOpenAIClientNoChoices(t *testing.T) {
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Send(context.Background(), Request{Content: "hi"})
	require.Error(t, err)
	assert.Equal(t, "no response from API", err.Error())
}

func TestOpenAIClientAPIError(t *testing.T) {
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	})

	_, err := c.Send(context.Background(), Request{Content: "hi"})
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusTooManyRequests, be.Status)
	assert.Equal(t, "rate limited", be.Message)
}
