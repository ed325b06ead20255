// Package openai talks to OpenAI-compatible chat completion APIs, including
// Perplexity's sonar models.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ai-resume-saas/internal/llm"
)

const PerplexityBaseURL = "https://api.perplexity.ai/"

// Config selects the endpoint and model.
type Config struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
	// Extra client options, e.g. option.WithHTTPClient in tests.
	Options []option.RequestOption
}

// Provider implements llm.Provider over openai-go.
type Provider struct {
	client *openai.Client
	name   string
	model  string
}

// New builds a Provider. Retries are left to the caller.
func New(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("LLM_MODEL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("LLM_API_KEY is required")
	}
	name := cfg.Name
	if name == "" {
		name = "openai"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	opts = append(opts, cfg.Options...)

	return &Provider{
		client: openai.NewClient(opts...),
		name:   name,
		model:  cfg.Model,
	}, nil
}

// Name identifies the provider in logs and metrics.
func (p *Provider) Name() string { return p.name }

// Chat sends one completion request and returns the first choice's content.
func (p *Provider) Chat(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:    openai.F(messages),
		Model:       openai.F(p.model),
		Temperature: openai.F(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.F(int64(req.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion model=%s: %w", p.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion model=%s: no choices", p.model)
	}
	return resp.Choices[0].Message.Content, nil
}

var _ llm.Provider = (*Provider)(nil)
