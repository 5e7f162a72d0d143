package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/backend"
	"ragchat/internal/models"
)

func TestPipelineSubmitSuccess(t *testing.T) {
	store := NewStore()
	client := replyWith("answer", models.Source{Title: "Doc", URL: "https://example.com/doc", Snippet: "..."})
	p := NewPipeline("conv_1", store, client)

	out, ok := p.Submit(context.Background(), "  X  ", nil)
	require.True(t, ok)
	require.NoError(t, out.Err)
	require.NotNil(t, out.Reply)

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	assert.Equal(t, "X", msgs[0].Content)
	assert.Equal(t, models.SenderSystem, msgs[1].Sender)
	assert.Equal(t, "answer", msgs[1].Content)
	require.Len(t, msgs[1].Sources, 1)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)

	assert.False(t, p.InFlight())
	assert.NoError(t, p.Err())

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "conv_1", calls[0].ConversationID)
	assert.Equal(t, "X", calls[0].Content)
	require.Len(t, calls[0].History, 1, "history is sent including the new user message")
}

func TestPipelineRejectsEmptyInput(t *testing.T) {
	store := NewStore()
	client := replyWith("unused")
	p := NewPipeline("conv_1", store, client)

	_, ok := p.Submit(context.Background(), "   ", nil)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, client.Calls())
}

func TestPipelineAttachmentOnly(t *testing.T) {
	store := NewStore()
	client := replyWith("got your file")
	p := NewPipeline("conv_1", store, client)

	atts := []backend.Attachment{{Name: "manual.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}}
	out, ok := p.Submit(context.Background(), "", atts)
	require.True(t, ok)
	require.NoError(t, out.Err)

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{"manual.pdf"}, msgs[0].Attachments)
	assert.Equal(t, atts, client.Calls()[0].Attachments)
}

func TestPipelineFailureSetsErrorWithoutSystemMessage(t *testing.T) {
	store := NewStore()
	client := &fakeClient{err: &backend.Error{Status: 500, Message: "回答の生成中にエラーが発生しました。"}}
	p := NewPipeline("conv_1", store, client)

	out, ok := p.Submit(context.Background(), "hello", nil)
	require.True(t, ok)
	require.Error(t, out.Err)
	assert.Nil(t, out.Reply)

	msgs := store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	require.Error(t, p.Err())
	assert.Equal(t, "回答の生成中にエラーが発生しました。", p.Err().Error())
	assert.False(t, p.InFlight())

	// next submit clears the banner
	client.err = nil
	client.resp = &backend.Response{Content: "ok"}
	out, ok = p.Submit(context.Background(), "again", nil)
	require.True(t, ok)
	require.NoError(t, out.Err)
	assert.NoError(t, p.Err())
}

func TestPipelineEmptyReplyIsAnError(t *testing.T) {
	store := NewStore()
	p := NewPipeline("conv_1", store, replyWith(""))

	out, ok := p.Submit(context.Background(), "hello", nil)
	require.True(t, ok)
	require.Error(t, out.Err)
	assert.Equal(t, 1, store.Len())
}

func TestPipelineAtMostOneInFlight(t *testing.T) {
	store := NewStore()
	client := replyWith("answer")
	client.gate = make(chan struct{})
	p := NewPipeline("conv_1", store, client)

	first, ok := p.Begin("one", nil)
	require.True(t, ok)
	assert.True(t, p.InFlight())

	_, ok = p.Begin("two", nil)
	assert.False(t, ok, "second submit while one is pending is a no-op")
	assert.Equal(t, 1, store.Len())

	done := make(chan Outcome)
	go func() { done <- first.Await(context.Background()) }()
	close(client.gate)
	out := <-done
	require.NoError(t, out.Err)

	_, ok = p.Begin("three", nil)
	assert.True(t, ok)
}

func TestPipelineConcurrentBegin(t *testing.T) {
	store := NewStore()
	client := replyWith("answer")
	client.gate = make(chan struct{})
	p := NewPipeline("conv_1", store, client)

	var accepted int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := p.Begin("hi", nil); ok {
				atomic.AddInt32(&accepted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted)
	assert.Equal(t, 1, store.Len())
	close(client.gate)
}

func TestPipelineTimeout(t *testing.T) {
	store := NewStore()
	client := replyWith("too late")
	client.gate = make(chan struct{})
	defer close(client.gate)

	p := NewPipeline("conv_1", store, client)
	p.timeout = 20 * time.Millisecond

	out, ok := p.Submit(context.Background(), "hello", nil)
	require.True(t, ok)
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "timed out")
	assert.False(t, p.InFlight(), "a timed out send must not block the conversation")
	assert.Equal(t, 1, store.Len())
}

func TestSubmissionAwaitIsIdempotent(t *testing.T) {
	store := NewStore()
	client := replyWith("answer")
	p := NewPipeline("conv_1", store, client)

	sub, ok := p.Begin("hello", nil)
	require.True(t, ok)
	first := sub.Await(context.Background())
	second := sub.Await(context.Background())

	assert.Equal(t, first.Reply.ID, second.Reply.ID)
	assert.Len(t, client.Calls(), 1)
	assert.Equal(t, 2, store.Len())
}

func TestPipelineCallsOnSettled(t *testing.T) {
	store := NewStore()
	p := NewPipeline("conv_1", store, &fakeClient{err: errors.New("down")})

	var got Outcome
	p.onSettled = func(o Outcome) { got = o }

	_, ok := p.Submit(context.Background(), "hello", nil)
	require.True(t, ok)
	assert.Equal(t, "conv_1", got.ConversationID)
	assert.EqualError(t, got.Err, "down")
	assert.Equal(t, "hello", got.User.Content)
}
