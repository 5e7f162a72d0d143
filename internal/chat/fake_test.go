package chat

import (
	"context"
	"sync"

	"ragchat/internal/backend"
	"ragchat/internal/models"
)

type fakeClient struct {
	mu    sync.Mutex
	calls []backend.Request

	// gate, when set, holds every Send until it is closed or ctx ends.
	gate chan struct{}
	resp *backend.Response
	err  error
}

func replyWith(content string, sources ...models.Source) *fakeClient {
	return &fakeClient{resp: &backend.Response{Content: content, Sources: sources}}
}

func (f *fakeClient) Send(ctx context.Context, req backend.Request) (*backend.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	r := *f.resp
	return &r, nil
}

func (f *fakeClient) Calls() []backend.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.Request(nil), f.calls...)
}

type memArchive struct {
	mu    sync.Mutex
	saved map[string][]models.Message
	convs []models.Conversation
}

func (a *memArchive) SaveConversation(s models.Summary, msgs []models.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saved == nil {
		a.saved = map[string][]models.Message{}
	}
	a.saved[s.ID] = msgs
	return nil
}

func (a *memArchive) LoadConversations() ([]models.Conversation, error) {
	return a.convs, nil
}
