package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"ai-resume-saas/internal/resumes"
)

// MinTextLength is the minimum number of characters worth analyzing.
const MinTextLength = 50

// RecordFinder looks up a resume scoped to its owner.
type RecordFinder interface {
	FindOne(ctx context.Context, id, owner string) (resumes.Record, error)
}

// Resolver picks the text to analyze for a request.
type Resolver struct {
	records RecordFinder
}

// NewResolver constructs a Resolver. records may be nil when only raw text is accepted.
func NewResolver(records RecordFinder) *Resolver {
	return &Resolver{records: records}
}

// Resolve returns the text to analyze for req on behalf of identity. Raw
// text wins whenever it is non-empty; the length check counts characters of
// the text exactly as supplied.
func (r *Resolver) Resolve(ctx context.Context, req Request, identity string) (string, error) {
	var text string
	switch {
	case req.ResumeText != "":
		text = req.ResumeText
	case strings.TrimSpace(req.ResumeID) != "":
		if r.records == nil {
			return "", fmt.Errorf("%w: no resume store configured", ErrDependencyUnavailable)
		}
		rec, err := r.records.FindOne(ctx, strings.TrimSpace(req.ResumeID), identity)
		if err != nil {
			if errors.Is(err, resumes.ErrNotFound) {
				return "", ErrNotFoundOrUnauthorized
			}
			return "", fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
		}
		text = rec.ExtractedText
	default:
		return "", ErrInvalidInput
	}

	if utf8.RuneCountInString(text) < MinTextLength {
		return "", ErrInputTooShort
	}
	return text, nil
}
