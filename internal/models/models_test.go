package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFrom(t *testing.T) {
	assert.Equal(t, "RAGとは何ですか？", TitleFrom("RAGとは何ですか？"))

	long := strings.Repeat("あ", 31)
	got := TitleFrom(long)
	assert.Equal(t, strings.Repeat("あ", 30)+"...", got)

	exact := strings.Repeat("x", 30)
	assert.Equal(t, exact, TitleFrom(exact))
}

func TestSenderRoundTrip(t *testing.T) {
	for _, s := range []Sender{SenderUser, SenderSystem} {
		parsed, err := ParseSender(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseSender("assistant")
	assert.Error(t, err)
}

func TestSummaryListItem(t *testing.T) {
	s := Summary{Name: "Docs", LastMessage: strings.Repeat("b", 60)}
	assert.Equal(t, "Docs", s.Title())
	assert.Equal(t, strings.Repeat("b", 50)+"...", s.Description())

	s.Selected = true
	assert.Equal(t, "● Docs", s.Title())
	assert.Equal(t, "Docs", s.FilterValue())
}

func TestMessageClone(t *testing.T) {
	m := Message{Sources: []Source{{Title: "a"}}}
	c := m.Clone()
	c.Sources[0].Title = "b"
	assert.Equal(t, "a", m.Sources[0].Title)
}
