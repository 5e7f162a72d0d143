package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"ragchat/internal/backend"
	"ragchat/internal/models"
	"ragchat/internal/observability"
)

// DefaultTimeout bounds a single send when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// Outcome is the settled result of one submission.
type Outcome struct {
	ConversationID string
	User           models.Message
	Reply          *models.Message
	Err            error
	Latency        time.Duration
}

// Pipeline runs the request/response cycle for one conversation. At most one
// submission is in flight at a time.
type Pipeline struct {
	conversationID string
	store          *Store
	client         backend.Client
	timeout        time.Duration
	now            func() time.Time
	newID          func() string
	onSettled      func(Outcome)

	mu       sync.Mutex
	inFlight bool
	err      error
}

func NewPipeline(conversationID string, store *Store, client backend.Client) *Pipeline {
	return &Pipeline{
		conversationID: conversationID,
		store:          store,
		client:         client,
		timeout:        DefaultTimeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// Submission is a started send. The user message is already in the store.
type Submission struct {
	p     *Pipeline
	store *Store
	req   backend.Request
	user  models.Message

	once    sync.Once
	outcome Outcome
}

// Begin validates the input, appends the user message and marks the
// pipeline busy. It returns false, changing nothing, when the input is
// empty or a submission is already in flight.
func (p *Pipeline) Begin(content string, attachments []backend.Attachment) (*Submission, bool) {
	content = strings.TrimSpace(content)
	if content == "" && len(attachments) == 0 {
		return nil, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inFlight {
		return nil, false
	}

	user := models.Message{
		ID:          p.newID(),
		Content:     content,
		Sender:      models.SenderUser,
		Timestamp:   p.now(),
		Attachments: attachmentNames(attachments),
	}
	if err := p.store.Append(user); err != nil {
		return nil, false
	}

	p.inFlight = true
	p.err = nil

	return &Submission{
		p:     p,
		store: p.store,
		user:  user,
		req: backend.Request{
			ConversationID: p.conversationID,
			Content:        content,
			Attachments:    attachments,
			History:        p.store.Messages(),
		},
	}, true
}

// Submit is Begin followed by Await.
func (p *Pipeline) Submit(ctx context.Context, content string, attachments []backend.Attachment) (Outcome, bool) {
	sub, ok := p.Begin(content, attachments)
	if !ok {
		return Outcome{}, false
	}
	return sub.Await(ctx), true
}

// User is the message Begin appended.
func (s *Submission) User() models.Message { return s.user.Clone() }

func (s *Submission) ConversationID() string { return s.p.conversationID }

// Await performs the send and settles its result into the store captured
// by Begin. Calling it again returns the same outcome.
func (s *Submission) Await(ctx context.Context) Outcome {
	s.once.Do(func() {
		s.outcome = s.p.settle(ctx, s)
	})
	return s.outcome
}

func (p *Pipeline) settle(ctx context.Context, s *Submission) Outcome {
	ctx = observability.WithConversationID(ctx, p.conversationID)
	log := observability.LoggerFromContext(ctx).With("message_id", s.user.ID)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := p.now()
	resp, err := p.client.Send(ctx, s.req)

	out := Outcome{
		ConversationID: p.conversationID,
		User:           s.user,
		Latency:        p.now().Sub(start),
	}

	if err == nil && resp == nil {
		resp = &backend.Response{}
	}
	if err == nil {
		reply := models.Message{
			ID:        p.newID(),
			Content:   resp.Content,
			Sender:    models.SenderSystem,
			Timestamp: p.now(),
			Sources:   resp.Sources,
		}
		if appendErr := s.store.Append(reply); appendErr != nil {
			err = &backend.Error{Message: "empty response from backend"}
		} else {
			out.Reply = &reply
		}
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = &backend.Error{Message: "request timed out after " + p.timeout.String()}
	}
	out.Err = err

	p.mu.Lock()
	p.err = err
	p.inFlight = false
	p.mu.Unlock()

	if err != nil {
		log.Error("submission failed", "error", err, "latency", out.Latency)
	} else {
		log.Info("submission settled", "reply_id", out.Reply.ID, "sources", len(out.Reply.Sources), "latency", out.Latency)
	}

	if p.onSettled != nil {
		p.onSettled(out)
	}
	return out
}

func (p *Pipeline) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// Err is the error banner of the last settled submission, nil if it
// succeeded or none has run.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Pipeline) ClearErr() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = nil
}

func attachmentNames(atts []backend.Attachment) []string {
	if len(atts) == 0 {
		return nil
	}
	names := make([]string, len(atts))
	for i, a := range atts {
		names[i] = a.Name
	}
	return names
}
