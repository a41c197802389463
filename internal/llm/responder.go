package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/roomchat/internal/config"
	"github.com/comigor/roomchat/internal/logger"
	"github.com/comigor/roomchat/internal/reply"
)

const defaultSystemPrompt = "You are a helpful AI assistant in a chatroom. Please respond to the user's message accurately and concisely."

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Responder writes replies with a chat completion model.
type Responder struct {
	client       Client
	model        string
	systemPrompt string
}

// NewResponder wraps client. An empty system prompt selects the default one.
func NewResponder(client Client, cfg config.AssistantConfig) *Responder {
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	return &Responder{client: client, model: cfg.Model, systemPrompt: prompt}
}

// Reply asks the model to answer content. The image marker is replaced by a
// short description of the upload.
func (r *Responder) Reply(ctx context.Context, content string) (string, error) {
	user := content
	if content == reply.ImageMarker {
		user = "The user uploaded an image without a caption. Acknowledge it briefly."
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: r.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		logger.L.Error("LLM call failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	logger.L.Debug("LLM response received", "model", r.model)
	return text, nil
}

// NewFromConfig picks the responder named by cfg.Provider.
func NewFromConfig(cfg config.AssistantConfig) reply.Responder {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewResponder(NewClient(cfg), cfg)
	case config.ProviderEcho, "":
		return reply.Echo{Name: cfg.Name}
	default:
		logger.L.Warn("Unsupported assistant provider; using echo replies", "provider", cfg.Provider)
		return reply.Echo{Name: cfg.Name}
	}
}
