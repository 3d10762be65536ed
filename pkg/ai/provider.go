// Package ai wraps the chat completion service consumed by the assistant
// session controller and the description generator. It owns the error
// boundary: every failure leaving this package carries a classified kind.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ayuoyi/AsiliConnect/pkg/config"
	openai "github.com/sashabaranov/go-openai"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

const systemPrompt = `You are FarmBot, an assistant for a farmer-to-buyer marketplace. ` +
	`Help farmers and buyers with crop management, market prices, weather, soil health ` +
	`and selling produce. Keep answers practical and short, and redirect unrelated ` +
	`questions back to farming topics.`

// Provider performs chat completions against the configured service.
type Provider struct {
	client    *openai.Client
	chatModel string
	maxTokens int
	timeout   time.Duration
}

// NewProvider validates the configuration and builds the client.
func NewProvider(cfg config.AIConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Provider{
		client:    openai.NewClientWithConfig(clientConfig),
		chatModel: chatModel,
		maxTokens: maxTokens,
		timeout:   timeout,
	}, nil
}

// Probe issues a minimal completion to verify connectivity and credentials.
func (p *Provider) Probe(ctx context.Context) error {
	_, err := p.Chat(ctx, []Message{{Role: RoleUser, Content: "ping"}})
	return err
}

// Chat completes the conversation and returns the reply text. History is
// expected to be pre-truncated by the caller.
func (p *Provider) Chat(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	llmMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	llmMessages = append(llmMessages, openai.ChatCompletionMessage{
		Role:    RoleSystem,
		Content: systemPrompt,
	})
	for _, msg := range messages {
		llmMessages = append(llmMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.chatModel,
		Messages:  llmMessages,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", Classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", Classify(fmt.Errorf("empty completion response"))
	}
	return resp.Choices[0].Message.Content, nil
}
