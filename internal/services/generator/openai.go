package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/mcoot/wordcraft/internal/model"
)

const systemPrompt = "You are a MUD game master creating accessible game spaces."

const userPrompt = `Create an immersive room for a text-based MUD at coordinates %s.
Write a vivid, screen-reader friendly description in 2-3 sentences.
Mention 2-3 exits using the words north, south, east, west, up or down.
Hint at one puzzle or challenge.`

// OpenAIConfig configures the chat-completion describer
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // optional, for compatible endpoints
	Model       string
	MaxTokens   int
	Temperature float32
}

// DefaultOpenAIConfig returns the settings rooms were designed around
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:       openai.GPT4,
		MaxTokens:   500,
		Temperature: 0.7,
	}
}

// OpenAIDescriber asks a chat-completion model for room prose
type OpenAIDescriber struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAIDescriber creates a describer for the given endpoint
func NewOpenAIDescriber(cfg OpenAIConfig) *OpenAIDescriber {
	defaults := DefaultOpenAIConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaults.Temperature
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIDescriber{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

// Describe requests a description for the coordinate
func (d *OpenAIDescriber) Describe(ctx context.Context, coord model.Coordinate) (string, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       d.cfg.Model,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(userPrompt, coord.Key())},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyDescription
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
