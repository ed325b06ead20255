// Package gemini implements llm.Provider on Google's genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"ai-resume-saas/internal/llm"
)

// Provider implements llm.Provider for Gemini models.
type Provider struct {
	client *genai.Client
	model  string
}

// New builds a Gemini provider.
func New(ctx context.Context, apiKey, model string) (*Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("API key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("LLM_MODEL is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client, model: model}, nil
}

// Name identifies the provider in logs and metrics.
func (p *Provider) Name() string { return "gemini" }

// Chat sends one GenerateContent call.
func (p *Provider) Chat(ctx context.Context, req llm.Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content model=%s: %w", p.model, err)
	}
	return resp.Text(), nil
}

var _ llm.Provider = (*Provider)(nil)
