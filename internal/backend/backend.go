// Package backend implements the send operation the chat controller
// consumes: one request carrying the user's message and attachments, one
// response carrying the generated answer and its citations.
package backend

import (
	"context"
	"fmt"
	"net/http"

	"ragchat/internal/models"
)

// Attachment is a file passed through to the backend untouched.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type Request struct {
	ConversationID string
	Content        string
	Attachments    []Attachment
	// History is the conversation so far, ending with the message being sent.
	History []models.Message
}

type Response struct {
	Content string
	Sources []models.Source
}

// Client performs the send operation. Implementations must honour ctx.
type Client interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// Error is a backend failure with a human-readable message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return "backend error"
}
