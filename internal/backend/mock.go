package backend

import (
	"context"
	"fmt"
	"time"

	"ragchat/internal/models"
)

// MockClient is the offline demo responder.
type MockClient struct {
	Delay time.Duration
}

func NewMockClient(delay time.Duration) *MockClient {
	return &MockClient{Delay: delay}
}

func (m *MockClient) Send(ctx context.Context, req Request) (*Response, error) {
	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	return &Response{
		Content: fmt.Sprintf("「%s」についての回答をRAGシステムから生成します。これはデモ用のモック応答です。"+
			"実際のアプリケーションでは、この部分でAPIを呼び出してRAG処理（検索と生成）を行います。", req.Content),
		Sources: []models.Source{
			{
				Title:   "サンプルドキュメント",
				URL:     "https://example.com/sample",
				Snippet: "これはサンプルの引用テキストです...",
			},
		},
	}, nil
}
