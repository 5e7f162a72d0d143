package chat

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"ragchat/internal/models"
)

var ErrEmptyMessage = errors.New("message has neither content nor attachments")

// Store is the ordered, append-only history of one conversation. Entries
// keep insertion order; timestamps are never used for ordering.
type Store struct {
	mu       sync.Mutex
	messages []models.Message
}

func NewStore(initial ...models.Message) *Store {
	s := &Store{}
	for _, m := range initial {
		s.messages = append(s.messages, m.Clone())
	}
	return s
}

// Append adds m at the tail.
func (s *Store) Append(m models.Message) error {
	if strings.TrimSpace(m.Content) == "" && len(m.Attachments) == 0 {
		return ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m.Clone())
	return nil
}

// MarkTrailingState sets the state of the last message, but only when it is
// a system message. It reports whether anything changed.
func (s *Store) MarkTrailingState(state models.MessageState, errorMessage string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return false
	}
	last := &s.messages[len(s.messages)-1]
	if last.Sender != models.SenderSystem {
		return false
	}
	last.State = state
	if state == models.StateError {
		last.ErrorMessage = errorMessage
	} else {
		last.ErrorMessage = ""
	}
	return true
}

// Reset drops every message at once.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Messages returns a copy of the history.
func (s *Store) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Clone()
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
