package analysis

import (
	"context"
	"errors"
	"time"

	"ai-resume-saas/internal/llm"
	"ai-resume-saas/internal/shared/metrics"
	"ai-resume-saas/internal/shared/telemetry"
)

const defaultBudget = 55 * time.Second

// Service runs the full request pipeline: resolve, analyze, enrich.
type Service struct {
	resolver *Resolver
	analyzer *Analyzer
	budget   time.Duration
}

// NewService constructs a Service. A non-positive budget means 55s.
func NewService(resolver *Resolver, analyzer *Analyzer, budget time.Duration) *Service {
	if budget <= 0 {
		budget = defaultBudget
	}
	return &Service{resolver: resolver, analyzer: analyzer, budget: budget}
}

// Analyze resolves the text for req on behalf of identity and analyzes it.
func (s *Service) Analyze(ctx context.Context, identity string, req Request) (Result, error) {
	if identity == "" {
		return emptyResult(), ErrUnauthenticated
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	text, err := s.resolver.Resolve(ctx, req, identity)
	if err != nil {
		s.finish(identity, req, "resolve", start, err)
		return emptyResult(), err
	}

	res, err := s.analyzer.Analyze(ctx, text)
	s.finish(identity, req, "analyze", start, err)
	if err != nil {
		return emptyResult(), err
	}
	return res, nil
}

func (s *Service) finish(identity string, req Request, stage string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := outcomeFor(err)
	metrics.IncAnalysis(outcome)
	metrics.ObserveAnalysisDuration(elapsed)

	fields := map[string]any{
		"identity":   identity,
		"resume_id":  req.ResumeID,
		"stage":      stage,
		"outcome":    outcome,
		"latency_ms": elapsed.Milliseconds(),
	}
	switch outcome {
	case metrics.OutcomeSuccess:
		telemetry.Info("analysis.complete", fields)
	case metrics.OutcomeInvalid, metrics.OutcomeNotFound:
		fields["err"] = err
		telemetry.Info("analysis.rejected", fields)
	default:
		fields["err"] = err
		if raw, ok := llm.RawOutput(err); ok {
			fields["raw"] = raw
		}
		telemetry.Error("analysis.failed", fields)
	}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInputTooShort):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrNotFoundOrUnauthorized):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrDependencyUnavailable):
		return metrics.OutcomeDependency
	case errors.Is(err, llm.ErrMalformedOutput):
		return metrics.OutcomeMalformed
	case errors.Is(err, llm.ErrUpstreamUnavailable):
		return metrics.OutcomeUpstream
	default:
		return metrics.OutcomeError
	}
}
