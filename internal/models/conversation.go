package models

import (
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
)

const (
	// DefaultTitle is used until the first successful submission.
	DefaultTitle = "New conversation"

	titleLimit   = 30
	previewLimit = 50
)

// Summary is the sidebar view of one conversation. Selected is computed from
// the registry's selected id when the snapshot is taken.
type Summary struct {
	ID          string
	Name        string
	LastMessage string
	Timestamp   time.Time
	Selected    bool
}

// FilterValue implements list.Item interface for the conversation list
func (c Summary) FilterValue() string { return c.Name }

// Title implements list.Item interface for the conversation list
func (c Summary) Title() string {
	if c.Selected {
		return "● " + c.Name
	}
	return c.Name
}

// Description implements list.Item interface for the conversation list
func (c Summary) Description() string {
	if c.LastMessage == "" {
		return c.Timestamp.Format("2006/01/02 15:04")
	}
	return Truncate(c.LastMessage, previewLimit)
}

var _ list.Item = Summary{}

// Conversation is a summary together with its full history, as archived.
type Conversation struct {
	Summary
	Messages []Message
}

// TitleFrom derives a conversation title from a user message.
func TitleFrom(content string) string {
	return Truncate(content, titleLimit)
}

// Truncate cuts s to limit runes and appends an ellipsis when it had to cut.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
