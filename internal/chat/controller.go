// Package chat holds the client-side state of a chat session: one message
// store and submission pipeline per conversation, the conversation registry
// that drives the sidebar, and the Controller that views talk to.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"ragchat/internal/auth"
	"ragchat/internal/backend"
	"ragchat/internal/models"
	"ragchat/internal/observability"
)

// ResetPrompt is the question put to the user before a reset.
const ResetPrompt = "会話履歴をリセットしますか？この操作は元に戻せません。"

// Confirmer answers a yes/no question on behalf of the user.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Archive persists conversations. The controller stays the source of truth.
type Archive interface {
	SaveConversation(summary models.Summary, messages []models.Message) error
	LoadConversations() ([]models.Conversation, error)
}

type session struct {
	store    *Store
	pipeline *Pipeline
}

// Controller owns every conversation of one chat view. Views read snapshots
// and call the On* methods; nothing else mutates chat state.
type Controller struct {
	auth    auth.Provider
	client  backend.Client
	archive Archive
	timeout time.Duration
	now     func() time.Time

	registry *Registry

	mu       sync.Mutex
	sessions map[string]*session
}

type Option func(*Controller)

func WithArchive(a Archive) Option {
	return func(c *Controller) { c.archive = a }
}

// WithTimeout bounds every send. Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func New(provider auth.Provider, client backend.Client, opts ...Option) *Controller {
	c := &Controller{
		auth:     provider,
		client:   client,
		timeout:  DefaultTimeout,
		now:      time.Now,
		registry: NewRegistry(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.registry.now = c.now
	return c
}

// Authorized reports whether a user is signed in. Views render nothing of
// the chat otherwise.
func (c *Controller) Authorized() bool {
	return c.auth != nil && c.auth.State().User != nil
}

func (c *Controller) User() *auth.User {
	if c.auth == nil {
		return nil
	}
	return c.auth.State().User
}

// Restore seeds the registry from the archive. It does nothing when the
// controller has no archive or already holds conversations.
func (c *Controller) Restore() error {
	if c.archive == nil || c.registry.Len() > 0 {
		return nil
	}
	convs, err := c.archive.LoadConversations()
	if err != nil {
		return errors.Wrap(err, "loading archived conversations")
	}
	for _, conv := range convs {
		if !c.registry.add(conv.Summary) {
			continue
		}
		c.mu.Lock()
		c.sessions[conv.ID] = c.newSession(conv.ID, NewStore(conv.Messages...))
		c.mu.Unlock()
	}
	if len(convs) > 0 {
		c.registry.Select(convs[0].ID)
	}
	observability.Logger().Info("restored conversations", "count", len(convs))
	return nil
}

func (c *Controller) newSession(id string, store *Store) *session {
	p := NewPipeline(id, store, c.client)
	p.timeout = c.timeout
	p.now = c.now
	p.onSettled = c.settled
	return &session{store: store, pipeline: p}
}

func (c *Controller) session(id string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok && id != "" {
		s = c.newSession(id, NewStore())
		c.sessions[id] = s
	}
	return s
}

func (c *Controller) current() *session {
	id := c.registry.Selected()
	if id == "" {
		return nil
	}
	return c.session(id)
}

// CurrentID is the selected conversation id, empty before the first one
// exists.
func (c *Controller) CurrentID() string {
	return c.registry.Selected()
}

// CurrentMessages returns the selected conversation's history.
func (c *Controller) CurrentMessages() []models.Message {
	s := c.current()
	if s == nil {
		return nil
	}
	return s.store.Messages()
}

// Messages returns the history of any conversation.
func (c *Controller) Messages(id string) []models.Message {
	c.mu.Lock()
	s, ok := c.sessions[id]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return s.store.Messages()
}

// Transcript is CurrentMessages plus a loading placeholder for the reply
// while one is pending. The placeholder is never stored.
func (c *Controller) Transcript() []models.Message {
	s := c.current()
	if s == nil {
		return nil
	}
	if !s.pipeline.InFlight() {
		return s.store.Messages()
	}
	view := NewStore(s.store.Messages()...)
	_ = view.Append(models.Message{Sender: models.SenderSystem, Content: "…", Timestamp: c.now()})
	view.MarkTrailingState(models.StateLoading, "")
	return view.Messages()
}

func (c *Controller) CurrentConversations() []models.Summary {
	return c.registry.Summaries()
}

// IsSubmitting reports whether the selected conversation has a send in
// flight. Views disable their send control while it is true.
func (c *Controller) IsSubmitting() bool {
	s := c.current()
	return s != nil && s.pipeline.InFlight()
}

// IsSubmittingIn is IsSubmitting for any conversation, selected or not.
func (c *Controller) IsSubmittingIn(id string) bool {
	c.mu.Lock()
	s, ok := c.sessions[id]
	c.mu.Unlock()
	return ok && s.pipeline.InFlight()
}

// Err is the error banner of the selected conversation.
func (c *Controller) Err() error {
	s := c.current()
	if s == nil {
		return nil
	}
	return s.pipeline.Err()
}

func (c *Controller) OnNewConversation() string {
	id := c.registry.Create()
	c.session(id)
	observability.WithFields("conversation_id", id).Info("created conversation")
	return id
}

// OnSelectConversation switches the displayed conversation. Unknown ids are
// ignored. Other conversations, including ones with a send in flight, are
// left as they are.
func (c *Controller) OnSelectConversation(id string) bool {
	if !c.registry.Select(id) {
		observability.Logger().Debug("ignoring select of unknown conversation", "conversation_id", id)
		return false
	}
	return true
}

// BeginSubmit starts a send on the selected conversation, creating one if
// none exists yet. The returned submission is bound to that conversation
// even if the user switches away before it settles.
func (c *Controller) BeginSubmit(content string, attachments []backend.Attachment) (*Submission, bool) {
	s := c.current()
	if s == nil {
		c.OnNewConversation()
		s = c.current()
	}
	return s.pipeline.Begin(content, attachments)
}

// OnSubmit sends content and waits for the reply. It returns false when the
// input was rejected (empty, or a send already in flight).
func (c *Controller) OnSubmit(ctx context.Context, content string, attachments []backend.Attachment) (Outcome, bool) {
	sub, ok := c.BeginSubmit(content, attachments)
	if !ok {
		return Outcome{}, false
	}
	return sub.Await(ctx), true
}

func (c *Controller) settled(out Outcome) {
	if out.Err == nil {
		c.registry.UpdateSummary(out.ConversationID, SummaryUpdate{
			Title:       models.TitleFrom(out.User.Content),
			LastMessage: out.User.Content,
			Timestamp:   c.now(),
		})
	}
	c.save(out.ConversationID)
}

// OnReset clears the selected conversation after confirm agrees. It
// refuses while a send is in flight.
func (c *Controller) OnReset(confirm Confirmer) bool {
	s := c.current()
	if s == nil || s.pipeline.InFlight() {
		return false
	}
	if confirm == nil || !confirm.Confirm(ResetPrompt) {
		return false
	}
	s.store.Reset()
	s.pipeline.ClearErr()

	id := c.registry.Selected()
	observability.Logger().Info("reset conversation", "conversation_id", id)
	c.save(id)
	return true
}

func (c *Controller) save(id string) {
	if c.archive == nil {
		return
	}
	summary, ok := c.registry.Summary(id)
	if !ok {
		return
	}
	log := observability.WithFields("conversation_id", id)
	msgs := c.Messages(id)
	if err := c.archive.SaveConversation(summary, msgs); err != nil {
		log.Error("failed to archive conversation", "error", err)
		return
	}
	log.Debug("archived conversation", "messages", len(msgs))
}
