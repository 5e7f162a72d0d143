package models

import (
	"fmt"
	"time"
)

// Sender identifies who produced a message
type Sender int

const (
	SenderUser Sender = iota
	SenderSystem
)

func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderSystem:
		return "system"
	}
	return fmt.Sprintf("Sender(%d)", int(s))
}

// ParseSender maps the stored/wire form back to a Sender
func ParseSender(s string) (Sender, error) {
	switch s {
	case "user":
		return SenderUser, nil
	case "system":
		return SenderSystem, nil
	}
	return 0, fmt.Errorf("unknown sender %q", s)
}

// MessageState is the display state of a message. Loading and Error only
// ever apply to a trailing system message.
type MessageState int

const (
	StateDefault MessageState = iota
	StateLoading
	StateError
)

func (s MessageState) String() string {
	switch s {
	case StateDefault:
		return "default"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("MessageState(%d)", int(s))
}

// Source is a citation attached to a system message
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Message represents a single chat message
type Message struct {
	ID        string
	Content   string
	Sender    Sender
	Timestamp time.Time
	Sources   []Source
	// Attachments names the files sent along with a user message.
	Attachments []string
	State       MessageState
	// ErrorMessage is set together with StateError.
	ErrorMessage string
}

// Clone returns a copy that shares no slices with m.
func (m Message) Clone() Message {
	if m.Sources != nil {
		m.Sources = append([]Source(nil), m.Sources...)
	}
	if m.Attachments != nil {
		m.Attachments = append([]string(nil), m.Attachments...)
	}
	return m
}
