// Package llm is the single point of contact with the external reasoning
// service. Callers hand it a prompt and get back parsed JSON or prose.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable covers transport, timeout and provider-side failures.
	ErrUpstreamUnavailable = errors.New("reasoning service unavailable")
	// ErrMalformedOutput means the provider answered but not with parseable JSON.
	ErrMalformedOutput = errors.New("malformed model output")
)

// Request is one chat-style call. System is optional.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	// JSON asks providers that support it to constrain output to JSON.
	JSON bool
}

// Provider sends a Request to a concrete backend and returns the raw text.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req Request) (string, error)
}

// MalformedOutputError carries the raw text for server-side diagnostics.
// It must never be echoed to clients.
type MalformedOutputError struct {
	Raw   string
	Cause error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", ErrMalformedOutput, e.Cause)
	}
	return ErrMalformedOutput.Error()
}

func (e *MalformedOutputError) Unwrap() error { return ErrMalformedOutput }

// RawOutput returns the raw provider text from a malformed-output error, if any.
func RawOutput(err error) (string, bool) {
	var m *MalformedOutputError
	if errors.As(err, &m) {
		return m.Raw, true
	}
	return "", false
}
