package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ai-resume-saas/internal/llm"
	"ai-resume-saas/internal/shared/metrics"
	"ai-resume-saas/internal/shared/telemetry"
)

const (
	defaultEnrichWorkers = 3
	defaultEnrichTimeout = 15 * time.Second
	enrichTemperature    = 0.4
)

// Completer is the structured completion contract the pipeline depends on.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (json.RawMessage, error)
}

// Enricher recommends one resource per skill with bounded concurrency.
type Enricher struct {
	llm     Completer
	workers int
	timeout time.Duration
}

// NewEnricher constructs an Enricher. Non-positive values fall back to 3 workers and 15s.
func NewEnricher(c Completer, workers int, timeout time.Duration) *Enricher {
	if workers <= 0 {
		workers = defaultEnrichWorkers
	}
	if timeout <= 0 {
		timeout = defaultEnrichTimeout
	}
	return &Enricher{llm: c, workers: workers, timeout: timeout}
}

// Enrich returns exactly one recommendation per skill, in input order.
// Failed items carry the placeholder title and url.
func (e *Enricher) Enrich(ctx context.Context, skills []string) []ResourceRecommendation {
	out := make([]ResourceRecommendation, len(skills))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, skill := range skills {
		g.Go(func() error {
			out[i] = e.recommend(ctx, skill)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

type resourcePayload struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (e *Enricher) recommend(ctx context.Context, skill string) ResourceRecommendation {
	rec, err := e.fetch(ctx, skill)
	if err != nil {
		metrics.IncEnrichment(metrics.OutcomePlaceholder)
		fields := map[string]any{"skill": skill, "stage": "enrich", "err": err}
		if raw, ok := llm.RawOutput(err); ok {
			fields["raw"] = raw
		}
		telemetry.Warn("analysis.enrich_failed", fields)
		return placeholderFor(skill)
	}
	metrics.IncEnrichment(metrics.OutcomeSuccess)
	return rec
}

func (e *Enricher) fetch(ctx context.Context, skill string) (ResourceRecommendation, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.llm.Complete(callCtx, llm.Request{
		System:      llm.SystemJSONOnly,
		Prompt:      llm.ResourcePrompt(llm.ResourcePromptData{Skill: skill}),
		Temperature: enrichTemperature,
	})
	if err != nil {
		return ResourceRecommendation{}, err
	}

	var p resourcePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return ResourceRecommendation{}, &llm.MalformedOutputError{Raw: string(raw), Cause: err}
	}
	p.Title = strings.TrimSpace(p.Title)
	p.URL = strings.TrimSpace(p.URL)
	if p.Title == "" || p.URL == "" {
		return ResourceRecommendation{}, &llm.MalformedOutputError{Raw: string(raw), Cause: errors.New("title or url missing")}
	}
	return ResourceRecommendation{Skill: skill, Title: p.Title, URL: p.URL}, nil
}
