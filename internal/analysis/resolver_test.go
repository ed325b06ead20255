package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-resume-saas/internal/resumes"
)

func TestResolveRawTextWinsOverID(t *testing.T) {
	finder := &fakeFinder{}
	r := NewResolver(finder)

	raw := "  " + sampleResume + "\n"
	text, err := r.Resolve(context.Background(), Request{ResumeText: raw, ResumeID: "r1"}, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, raw, text)
	assert.Zero(t, finder.calls)
}

func TestResolveWhitespaceTextStillWinsOverID(t *testing.T) {
	finder := &fakeFinder{records: map[string]resumes.Record{
		"r1": {ID: "r1", UserID: "a@x.io", ExtractedText: sampleResume},
	}}

	_, err := NewResolver(finder).Resolve(context.Background(), Request{ResumeText: "   ", ResumeID: "r1"}, "a@x.io")
	assert.ErrorIs(t, err, ErrInputTooShort)
	assert.Zero(t, finder.calls, "raw text must not trigger a store lookup")
}

func TestResolveByOwnedID(t *testing.T) {
	finder := &fakeFinder{records: map[string]resumes.Record{
		"r1": {ID: "r1", UserID: "a@x.io", ExtractedText: sampleResume},
	}}
	text, err := NewResolver(finder).Resolve(context.Background(), Request{ResumeID: "r1"}, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, sampleResume, text)
}

func TestResolveForeignIDIsNotFound(t *testing.T) {
	finder := &fakeFinder{records: map[string]resumes.Record{
		"r1": {ID: "r1", UserID: "owner@x.io", ExtractedText: sampleResume},
	}}
	_, err := NewResolver(finder).Resolve(context.Background(), Request{ResumeID: "r1"}, "intruder@x.io")
	assert.ErrorIs(t, err, ErrNotFoundOrUnauthorized)
}

func TestResolveStoreErrorIsDependency(t *testing.T) {
	finder := &fakeFinder{err: errors.New("server selection timeout")}
	_, err := NewResolver(finder).Resolve(context.Background(), Request{ResumeID: "r1"}, "a@x.io")
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
	assert.NotErrorIs(t, err, ErrNotFoundOrUnauthorized)
}

func TestResolveWithoutStore(t *testing.T) {
	_, err := NewResolver(nil).Resolve(context.Background(), Request{ResumeID: "r1"}, "a@x.io")
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestResolveNeitherField(t *testing.T) {
	_, err := NewResolver(nil).Resolve(context.Background(), Request{ResumeID: "  "}, "a@x.io")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolveTooShort(t *testing.T) {
	r := NewResolver(&fakeFinder{records: map[string]resumes.Record{
		"empty": {ID: "empty", UserID: "a@x.io"},
	}})

	cases := map[string]Request{
		"short raw":         {ResumeText: "Go dev"},
		"49 chars":          {ResumeText: strings.Repeat("a", MinTextLength-1)},
		"whitespace only":   {ResumeText: "    "},
		"stored empty text": {ResumeID: "empty"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), req, "a@x.io")
			assert.ErrorIs(t, err, ErrInputTooShort)
		})
	}

	_, err := r.Resolve(context.Background(), Request{ResumeText: strings.Repeat("é", MinTextLength)}, "a@x.io")
	assert.NoError(t, err, "length counts characters, not bytes")

	padded := strings.Repeat("a", MinTextLength-2) + "  "
	text, err := r.Resolve(context.Background(), Request{ResumeText: padded}, "a@x.io")
	require.NoError(t, err, "trailing spaces count toward the minimum")
	assert.Equal(t, padded, text)
}
