// Package messagegen composes delay messages. OpenAI writes them when a key
// is configured; Template renders the fixed fallback text otherwise.
package messagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"delaynotify/internal/core/domain/services"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	maxMessageTokens   = 220
	maxMessageRunes    = 600
)

const systemPrompt = "You write short, friendly delivery delay notifications for customers of a logistics company. " +
	"Write two or three plain sentences. Mention the route, the expected delay and the traffic condition. " +
	"Apologise once. Do not invent facts, links, phone numbers or compensation."

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// LLM generates the delay message with a chat model.
type LLM struct {
	model llms.Model
}

func NewOpenAI(cfg OpenAIConfig) (*LLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	return NewLLM(model), nil
}

// NewLLM wraps any langchaingo model.
func NewLLM(model llms.Model) *LLM {
	return &LLM{model: model}
}

func (g *LLM) Generate(ctx context.Context, in services.MessageInput) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt(in)),
	}

	resp, err := g.model.GenerateContent(ctx, messages,
		llms.WithTemperature(0.4),
		llms.WithMaxTokens(maxMessageTokens),
	)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", errors.New("openai returned an empty message")
	}
	if runes := []rune(text); len(runes) > maxMessageRunes {
		text = string(runes[:maxMessageRunes])
	}
	return text, nil
}

func userPrompt(in services.MessageInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer name: %s\n", in.CustomerName)
	fmt.Fprintf(&b, "Origin: %s\n", in.Origin)
	fmt.Fprintf(&b, "Destination: %s\n", in.Destination)
	fmt.Fprintf(&b, "Expected delay: %d minutes\n", in.DelayMinutes)
	if in.Condition != "" {
		fmt.Fprintf(&b, "Traffic condition: %s\n", in.Condition)
	}
	return b.String()
}
