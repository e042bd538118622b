package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tidwall/gjson"

	"stock-trader/internal/api"
	"stock-trader/internal/trace"
)

const (
	defaultEndpoint = "https://api.anthropic.com/v1/messages"
	apiVersion      = "2023-06-01"
)

type Config struct {
	APIKey      string
	Model       string
	Endpoint    string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// ChatModel calls the Anthropic Messages API. It implements the Generate
// half of an eino chat model so it can back the analyst graph.
type ChatModel struct {
	cfg    Config
	client *api.Client
}

func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY missing")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	client := api.NewClient(
		api.WithBaseURL(cfg.Endpoint),
		api.WithTimeout(cfg.Timeout),
		api.WithHeader("x-api-key", cfg.APIKey),
		api.WithHeader("anthropic-version", apiVersion),
	)
	return &ChatModel{cfg: cfg, client: client}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate sends system messages as the top-level system prompt and the rest
// as the conversation.
func (c *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	temperature := c.cfg.Temperature
	common := model.GetCommonOptions(&model.Options{Temperature: &temperature}, opts...)

	var system []string
	msgs := make([]message, 0, len(input))
	for _, m := range input {
		switch m.Role {
		case schema.System:
			system = append(system, m.Content)
		case schema.Assistant:
			msgs = append(msgs, message{Role: "assistant", Content: m.Content})
		default:
			msgs = append(msgs, message{Role: "user", Content: m.Content})
		}
	}

	reqBody := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": c.cfg.MaxTokens,
		"messages":   msgs,
	}
	if len(system) > 0 {
		reqBody["system"] = strings.Join(system, "\n\n")
	}
	if common.Temperature != nil {
		reqBody["temperature"] = *common.Temperature
	}

	resp, err := c.client.POST(ctx, "", reqBody)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("claude http %d: %s", se.StatusCode, gjson.GetBytes(se.Body, "error.message").String())
		}
		return nil, err
	}
	body := resp.Body

	var parts []string
	for _, block := range gjson.GetBytes(body, "content").Array() {
		if block.Get("type").String() == "text" {
			parts = append(parts, block.Get("text").String())
		}
	}
	if len(parts) == 0 {
		return nil, errors.New("claude response has no text content")
	}
	return schema.AssistantMessage(strings.Join(parts, ""), nil), nil
}
