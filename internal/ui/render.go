package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"ragchat/internal/models"
)

func welcomeText() string {
	var content strings.Builder
	content.WriteString("Welcome to the RAG Chat Interface!\n")
	content.WriteString("Start typing to begin a conversation.\n\n")
	content.WriteString(HelpStyle.Render("Controls:\n"))
	content.WriteString(HelpStyle.Render("• Tab - Switch between sidebar and chat\n"))
	content.WriteString(HelpStyle.Render("• Ctrl+N - New conversation\n"))
	content.WriteString(HelpStyle.Render("• Enter - Send message / Select conversation\n"))
	content.WriteString(HelpStyle.Render("• Ctrl+R - Reset conversation\n"))
	content.WriteString(HelpStyle.Render("• Ctrl+C / Esc - Quit\n\n"))
	return content.String()
}

// renderTranscript draws messages top to bottom. spinner is shown in front
// of a loading placeholder; md may be nil to print replies as plain text.
func renderTranscript(msgs []models.Message, md *glamour.TermRenderer, spinner string) string {
	if len(msgs) == 0 {
		return welcomeText()
	}

	var content strings.Builder
	for _, msg := range msgs {
		timeStr := TimeStyle.Render("[" + msg.Timestamp.Format("15:04:05") + "]")

		if msg.Sender == models.SenderUser {
			body := msg.Content
			for _, name := range msg.Attachments {
				body += "\n" + AttachmentStyle.Render("📎 "+name)
			}
			content.WriteString(MessageStyle.Render(
				UserStyle.Render("You") + " " + timeStr + "\n" + body + "\n",
			))
			continue
		}

		switch msg.State {
		case models.StateLoading:
			content.WriteString(MessageStyle.Render(
				spinner + LoadingStyle.Render(" Assistant is typing..."),
			))
			content.WriteString("\n")
		case models.StateError:
			content.WriteString(MessageStyle.Render(
				AssistantStyle.Render("Assistant") + " " + timeStr + "\n" +
					ErrorStyle.Render(msg.ErrorMessage),
			))
			content.WriteString("\n")
		default:
			content.WriteString(MessageStyle.Render(
				AssistantStyle.Render("Assistant") + " " + timeStr + "\n" +
					renderMarkdown(md, msg.Content) + renderSources(msg.Sources),
			))
			content.WriteString("\n")
		}
	}
	return content.String()
}

func renderMarkdown(md *glamour.TermRenderer, s string) string {
	if md == nil {
		return s + "\n"
	}
	out, err := md.Render(s)
	if err != nil {
		return s + "\n"
	}
	return strings.TrimLeft(out, "\n")
}

func renderSources(sources []models.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(HelpStyle.Render("Sources:") + "\n")
	for i, s := range sources {
		b.WriteString(SourceStyle.Render(fmt.Sprintf("[%d] %s - %s", i+1, s.Title, s.URL)) + "\n")
		if s.Snippet != "" {
			b.WriteString(HelpStyle.Render("    "+s.Snippet) + "\n")
		}
	}
	return b.String()
}
