package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"ragchat/internal/chat"
	"ragchat/internal/models"
	"ragchat/internal/observability"
)

type FocusState int

const (
	FocusSidebar FocusState = iota
	FocusChat
)

// Options tweaks the model; zero values fall back to defaults.
type Options struct {
	SidebarWidth   int
	RenderMarkdown bool
}

// Model represents the main application state. All chat state lives in the
// controller; the model only holds widgets.
type Model struct {
	ctx        context.Context
	ctrl       *chat.Controller
	viewport   viewport.Model
	textarea   textarea.Model
	convList   list.Model
	spinner    spinner.Model
	markdown   *glamour.TermRenderer
	useMD      bool
	confirming bool
	ready      bool
	focus      FocusState
	width      int
	height     int

	sidebarWidth int
}

// convItem is a sidebar row; pending marks a conversation still waiting for
// its reply.
type convItem struct {
	models.Summary
	pending bool
}

func (c convItem) Description() string {
	if c.pending {
		return "waiting for reply..."
	}
	return c.Summary.Description()
}

// SettledMsg carries the result of a submission back to the event loop
type SettledMsg struct {
	Outcome chat.Outcome
}

// NewModel creates a new UI model over ctrl
func NewModel(ctx context.Context, ctrl *chat.Controller, opts Options) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.Focus()

	vp := viewport.New(50, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = LoadingStyle

	if opts.SidebarWidth <= 0 {
		opts.SidebarWidth = 30
	}

	// If no conversations exist, start with an empty one
	if len(ctrl.CurrentConversations()) == 0 {
		ctrl.OnNewConversation()
	}

	convList := list.New(nil, list.NewDefaultDelegate(), opts.SidebarWidth, 20)
	convList.Title = "Conversations"
	convList.SetShowStatusBar(false)
	convList.SetFilteringEnabled(false)
	convList.SetShowHelp(false)

	m := &Model{
		ctx:          ctx,
		ctrl:         ctrl,
		textarea:     ta,
		viewport:     vp,
		convList:     convList,
		spinner:      sp,
		useMD:        opts.RenderMarkdown,
		focus:        FocusChat,
		sidebarWidth: opts.SidebarWidth,
	}
	m.updateConversationList()
	m.updateViewport()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles UI events and state changes
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		clCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chatWidth := msg.Width - m.sidebarWidth - 2
		chatHeight := msg.Height - 8

		if !m.ready {
			m.viewport = viewport.New(chatWidth, chatHeight)
			m.ready = true
		} else {
			m.viewport.Width = chatWidth
			m.viewport.Height = chatHeight
		}
		m.textarea.SetWidth(chatWidth - 2)
		m.convList.SetSize(m.sidebarWidth-2, chatHeight+5)
		m.newRenderer(chatWidth - 6)
		m.updateViewport()

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}
		if !m.ctrl.Authorized() {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			if m.focus == FocusSidebar {
				m.focus = FocusChat
				m.textarea.Focus()
			} else {
				m.focus = FocusSidebar
				m.textarea.Blur()
			}
			return m, nil
		case tea.KeyCtrlN:
			m.ctrl.OnNewConversation()
			m.updateConversationList()
			m.updateViewport()
			m.focus = FocusChat
			m.textarea.Focus()
			return m, nil
		case tea.KeyCtrlR:
			if !m.ctrl.IsSubmitting() {
				m.confirming = true
			}
			return m, nil
		case tea.KeyEnter:
			if m.focus == FocusSidebar {
				// Switch to selected conversation
				if selectedItem, ok := m.convList.SelectedItem().(convItem); ok {
					m.ctrl.OnSelectConversation(selectedItem.ID)
					m.updateConversationList()
					m.updateViewport()
					m.focus = FocusChat
					m.textarea.Focus()
				}
				return m, nil
			}
			sub, ok := m.ctrl.BeginSubmit(m.textarea.Value(), nil)
			if !ok {
				return m, nil
			}
			observability.WithFields("conversation_id", sub.ConversationID(), "message_id", sub.User().ID).
				Debug("submission started")
			m.textarea.Reset()
			m.updateConversationList()
			m.updateViewport()
			return m, m.await(sub)
		}

	case SettledMsg:
		if msg.Outcome.Err != nil {
			observability.Logger().Debug("submission settled with error", "conversation_id", msg.Outcome.ConversationID)
		}
		m.updateConversationList()
		m.updateViewport()
		return m, nil

	case spinner.TickMsg:
		m.spinner, spCmd = m.spinner.Update(msg)
		if m.ctrl.IsSubmitting() {
			m.updateViewport()
		}
		return m, spCmd
	}

	// Update child components
	if m.focus == FocusChat {
		m.textarea, tiCmd = m.textarea.Update(msg)
	}
	if m.focus == FocusSidebar {
		m.convList, clCmd = m.convList.Update(msg)
	}
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, clCmd)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirming = false
		m.ctrl.OnReset(chat.ConfirmFunc(func(string) bool { return true }))
		m.updateConversationList()
		m.updateViewport()
	case "n", "N", "esc":
		m.confirming = false
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) await(sub *chat.Submission) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return SettledMsg{Outcome: sub.Await(ctx)}
	}
}

func (m *Model) newRenderer(width int) {
	if !m.useMD || width <= 0 {
		m.markdown = nil
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		observability.Logger().Warn("markdown renderer unavailable", "error", err)
		m.markdown = nil
		return
	}
	m.markdown = r
}

func (m *Model) updateConversationList() {
	convs := m.ctrl.CurrentConversations()
	items := make([]list.Item, len(convs))
	for i, conv := range convs {
		items[i] = convItem{Summary: conv, pending: m.ctrl.IsSubmittingIn(conv.ID)}
	}
	m.convList.SetItems(items)

	// Select current conversation in list
	for i, conv := range convs {
		if conv.Selected {
			m.convList.Select(i)
			break
		}
	}
}

func (m *Model) updateViewport() {
	m.viewport.SetContent(renderTranscript(m.ctrl.Transcript(), m.markdown, m.spinner.View()))
	m.viewport.GotoBottom()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if !m.ctrl.Authorized() {
		return "\n  " + ErrorStyle.Render("Sign in to use the chat.") + "\n  " +
			HelpStyle.Render("Run ragchat with --email and --password. Press Esc to quit.")
	}

	// Create sidebar
	sidebarContent := m.convList.View()
	var sidebar string
	if m.focus == FocusSidebar {
		sidebar = SidebarFocusedStyle.Width(m.sidebarWidth).Height(m.height - 1).Render(sidebarContent)
	} else {
		sidebar = SidebarStyle.Width(m.sidebarWidth).Height(m.height - 1).Render(sidebarContent)
	}

	// Create chat area
	chatWidth := m.width - m.sidebarWidth - 2
	header := "RAG Chat"
	if u := m.ctrl.User(); u != nil {
		header = fmt.Sprintf("RAG Chat · %s (%s)", u.Name, u.Role)
	}
	chatHeader := TitleStyle.Width(chatWidth).Render(header)

	status := ""
	switch {
	case m.confirming:
		status = ConfirmStyle.Render(chat.ResetPrompt + " (y/n)")
	case m.ctrl.Err() != nil:
		status = ErrorStyle.Render("Error: " + m.ctrl.Err().Error())
	case m.ctrl.IsSubmitting():
		status = m.spinner.View() + LoadingStyle.Render(" Waiting for the answer, sending is disabled")
	}

	chatArea := ChatStyle.Width(chatWidth).Render(
		fmt.Sprintf("%s\n%s\n%s\n%s", chatHeader, m.viewport.View(), status, m.textarea.View()),
	)

	// Combine sidebar and chat area
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chatArea)
}
