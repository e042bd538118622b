package openai

import (
	"context"
	"errors"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// NewChatModel builds an eino chat model for any OpenAI compatible endpoint.
func NewChatModel(ctx context.Context, cfg Config) (*einoopenai.ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature
	mc := &einoopenai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}
	if cfg.BaseURL != "" {
		mc.BaseURL = cfg.BaseURL
	}
	return einoopenai.NewChatModel(ctx, mc)
}
