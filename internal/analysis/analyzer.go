package analysis

import (
	"context"
	"errors"

	"ai-resume-saas/internal/llm"
	"ai-resume-saas/internal/shared/telemetry"
)

const primaryTemperature = 0.2

// AnalyzerOptions tunes the primary analysis call.
type AnalyzerOptions struct {
	// RetryMalformed allows one extra primary call with a stricter JSON reminder.
	RetryMalformed bool
}

// Analyzer runs the primary analysis and, when skills are missing, enrichment.
type Analyzer struct {
	llm            Completer
	enricher       *Enricher
	retryMalformed bool
}

// NewAnalyzer constructs an Analyzer. A nil enricher skips enrichment.
func NewAnalyzer(c Completer, enricher *Enricher, opts AnalyzerOptions) *Analyzer {
	return &Analyzer{llm: c, enricher: enricher, retryMalformed: opts.RetryMalformed}
}

// Analyze scores text. On error the returned Result is empty with no links.
func (a *Analyzer) Analyze(ctx context.Context, text string) (Result, error) {
	res, err := a.primary(ctx, text, false)
	if err != nil && a.retryMalformed && errors.Is(err, llm.ErrMalformedOutput) {
		telemetry.Warn("analysis.retry_malformed", map[string]any{"stage": "primary", "err": err})
		res, err = a.primary(ctx, text, true)
	}
	if err != nil {
		return emptyResult(), err
	}

	var links []ResourceRecommendation
	if len(res.MissingSkills) > 0 && a.enricher != nil {
		links = a.enricher.Enrich(ctx, res.MissingSkills)
	}
	return Assemble(res, links), nil
}

func (a *Analyzer) primary(ctx context.Context, text string, strict bool) (Result, error) {
	raw, err := a.llm.Complete(ctx, llm.Request{
		System:      llm.SystemStrictJSON,
		Prompt:      llm.AnalysisPrompt(llm.AnalysisPromptData{ResumeText: text, Strict: strict}),
		Temperature: primaryTemperature,
	})
	if err != nil {
		return Result{}, err
	}

	res, issues, err := decodeAnalysis(raw)
	if len(issues) > 0 {
		telemetry.Warn("analysis.schema_repair", map[string]any{"stage": "primary", "issues": issues, "repaired": err == nil})
	}
	return res, err
}
