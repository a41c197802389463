package llm

import (
	"github.com/sashabaranov/go-openai"

	"github.com/comigor/roomchat/internal/config"
)

// NewClient creates an OpenAI-compatible client for the assistant backend.
func NewClient(cfg config.AssistantConfig) *openai.Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return openai.NewClientWithConfig(config)
}
