package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"ragchat/internal/models"
)

// MaxResponseSize caps how much of a reply body is read.
const MaxResponseSize = 10 * 1024 * 1024

// HTTPClient talks to the RAG service's chat endpoint.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.client = c }
}

// WithRequestsPerMinute paces outgoing requests. Zero or less disables pacing.
func WithRequestsPerMinute(n int) HTTPOption {
	return func(h *HTTPClient) {
		if n <= 0 {
			h.limiter = nil
			return
		}
		h.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type chatRequest struct {
	ConversationID string        `json:"conversationId"`
	Content        string        `json:"content"`
	Attachments    []Attachment  `json:"attachments"`
	History        []chatMessage `json:"history,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Content string          `json:"content"`
	Sources []models.Source `json:"sources,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (h *HTTPClient) endpoint(conversationID string) string {
	if conversationID == "" {
		return h.baseURL + "/api/chat"
	}
	return h.baseURL + "/api/chat/" + url.PathEscape(conversationID)
}

func (h *HTTPClient) Send(ctx context.Context, req Request) (*Response, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "waiting for rate limiter")
		}
	}

	body := chatRequest{
		ConversationID: req.ConversationID,
		Content:        req.Content,
		Attachments:    req.Attachments,
	}
	if body.Attachments == nil {
		body.Attachments = []Attachment{}
	}
	for _, m := range req.History {
		body.History = append(body.History, chatMessage{Role: m.Sender.String(), Content: m.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encoding chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint(req.ConversationID), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "building chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "sending chat request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "reading chat response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.Unmarshal(data, &e)
		return nil, &Error{Status: resp.StatusCode, Message: e.Message}
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "decoding chat response")
	}
	return &Response{Content: out.Content, Sources: out.Sources}, nil
}
