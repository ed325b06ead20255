package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ai-resume-saas/internal/shared/metrics"
)

const defaultTimeout = 25 * time.Second

// Options tunes a Client.
type Options struct {
	// Timeout bounds each provider call. Zero means 25s.
	Timeout time.Duration
	// MaxRPS paces outbound calls across the process. Zero disables pacing.
	MaxRPS float64
}

// Client wraps a Provider with timeouts, pacing and output parsing.
type Client struct {
	provider Provider
	timeout  time.Duration
	pacer    *rate.Limiter
}

// NewClient builds a Client around provider.
func NewClient(provider Provider, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	c := &Client{provider: provider, timeout: opts.Timeout}
	if opts.MaxRPS > 0 {
		burst := int(opts.MaxRPS)
		if burst < 1 {
			burst = 1
		}
		c.pacer = rate.NewLimiter(rate.Limit(opts.MaxRPS), burst)
	}
	return c
}

// Complete sends req and parses the answer as JSON. Markdown code fences
// around the payload are tolerated.
func (c *Client) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	req.JSON = true
	text, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}
	cleaned := CleanJSONBlock(text)
	if cleaned == "" {
		return nil, &MalformedOutputError{Raw: text, Cause: errors.New("empty response")}
	}
	if !json.Valid([]byte(cleaned)) {
		return nil, &MalformedOutputError{Raw: text, Cause: errors.New("invalid json")}
	}
	return json.RawMessage(cleaned), nil
}

// Generate sends req and returns the trimmed prose answer.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	text, err := c.call(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) call(ctx context.Context, req Request) (string, error) {
	if c == nil || c.provider == nil {
		return "", fmt.Errorf("%w: no provider configured", ErrUpstreamUnavailable)
	}
	name := c.provider.Name()

	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %s: pacing: %v", ErrUpstreamUnavailable, name, err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.provider.Chat(callCtx, req)
	if err != nil {
		metrics.ObserveLLMCall(name, metrics.OutcomeUpstream, time.Since(start))
		return "", fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, name, err)
	}
	metrics.ObserveLLMCall(name, metrics.OutcomeSuccess, time.Since(start))
	return text, nil
}

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Skip a language tag such as "json" on the fence line.
	if idx := strings.Index(text, "\n"); idx >= 0 {
		tag := strings.TrimSpace(text[:idx])
		if len(tag) < 20 && !strings.ContainsAny(tag, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
