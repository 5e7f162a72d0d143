package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"ragchat/internal/models"
)

const systemPrompt = "You are a helpful AI assistant. Provide clear, concise, and helpful responses."

// OpenAIClient answers directly from a chat completion model, without
// retrieval, so its replies never carry sources.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAIClient(apiKey, model string, maxTokens int) *OpenAIClient {
	return NewOpenAIClientWithConfig(openai.DefaultConfig(apiKey), model, maxTokens)
}

func NewOpenAIClientWithConfig(cfg openai.ClientConfig, model string, maxTokens int) *OpenAIClient {
	return &OpenAIClient{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (o *OpenAIClient) Send(ctx context.Context, req Request) (*Response, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		Messages:  completionMessages(req),
		MaxTokens: o.maxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &Error{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return nil, errors.Wrap(err, "creating chat completion")
	}

	if len(resp.Choices) == 0 {
		return nil, &Error{Message: "no response from API"}
	}

	return &Response{Content: resp.Choices[0].Message.Content}, nil
}

func completionMessages(req Request) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
	}

	history := req.History
	if len(history) == 0 {
		history = []models.Message{{Sender: models.SenderUser, Content: req.Content}}
	}
	for i, msg := range history {
		role := openai.ChatMessageRoleAssistant
		if msg.Sender == models.SenderUser {
			role = openai.ChatMessageRoleUser
		}
		content := msg.Content
		if i == len(history)-1 && len(req.Attachments) > 0 {
			content += attachmentNote(req.Attachments)
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: content,
		})
	}
	return messages
}

func attachmentNote(atts []Attachment) string {
	names := make([]string, 0, len(atts))
	for _, a := range atts {
		names = append(names, fmt.Sprintf("%s (%s, %d bytes)", a.Name, a.ContentType, len(a.Data)))
	}
	return "\n\nAttached files: " + strings.Join(names, ", ")
}
