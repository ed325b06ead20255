// Package assist hosts the smaller career tools built on the reasoning
// service: job matching, cover letters, interview prep and JD summaries.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"ai-resume-saas/internal/llm"
)

const (
	DefaultQuestions = 5
	MaxQuestions     = 20
)

// ErrInvalidInput reports a missing required field.
var ErrInvalidInput = errors.New("invalid input")

// Model is the reasoning-service surface the assistant needs.
type Model interface {
	Complete(ctx context.Context, req llm.Request) (json.RawMessage, error)
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// MatchResult compares a resume with a job description.
type MatchResult struct {
	MatchPercentage float64  `json:"matchPercentage"`
	MatchedSkills   []string `json:"matchedSkills"`
	MissingSkills   []string `json:"missingSkills"`
	Recommendations []string `json:"recommendations"`
}

// QA is one interview question with a sample answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Service runs assistant prompts.
type Service struct {
	model Model
}

// NewService constructs a Service.
func NewService(model Model) *Service {
	return &Service{model: model}
}

// JobMatch scores how well resumeText fits jobDescription.
func (s *Service) JobMatch(ctx context.Context, resumeText, jobDescription string) (MatchResult, error) {
	if blank(resumeText) || blank(jobDescription) {
		return MatchResult{}, fmt.Errorf("%w: resumeText and jobDescription are required", ErrInvalidInput)
	}

	raw, err := s.model.Complete(ctx, llm.Request{
		System:      llm.SystemJSONOnly,
		Prompt:      llm.JobMatchPrompt(llm.JobMatchPromptData{ResumeText: resumeText, JobDescription: jobDescription}),
		Temperature: 0.3,
	})
	if err != nil {
		return MatchResult{}, err
	}

	var out MatchResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return MatchResult{}, &llm.MalformedOutputError{Raw: string(raw), Cause: err}
	}
	out.MatchPercentage = math.Max(0, math.Min(100, out.MatchPercentage))
	out.MatchedSkills = nonNil(out.MatchedSkills)
	out.MissingSkills = nonNil(out.MissingSkills)
	out.Recommendations = nonNil(out.Recommendations)
	return out, nil
}

// CoverLetter writes a cover letter for companyName.
func (s *Service) CoverLetter(ctx context.Context, resumeText, jobDescription, companyName string) (string, error) {
	if blank(resumeText) || blank(jobDescription) || blank(companyName) {
		return "", fmt.Errorf("%w: resumeText, jobDescription and companyName are required", ErrInvalidInput)
	}
	return s.prose(ctx, llm.Request{
		Prompt: llm.CoverLetterPrompt(llm.CoverLetterPromptData{
			ResumeText:     resumeText,
			JobDescription: jobDescription,
			CompanyName:    companyName,
		}),
		Temperature: 0.7,
		MaxTokens:   800,
	})
}

// Interview generates n questions with sample answers. n defaults to 5 and is capped at 20.
func (s *Service) Interview(ctx context.Context, jobTitle, resumeText string, n int) ([]QA, error) {
	if blank(jobTitle) || blank(resumeText) {
		return nil, fmt.Errorf("%w: jobTitle and resumeText are required", ErrInvalidInput)
	}
	if n <= 0 {
		n = DefaultQuestions
	}
	if n > MaxQuestions {
		n = MaxQuestions
	}

	raw, err := s.model.Complete(ctx, llm.Request{
		System:      llm.SystemJSONOnly,
		Prompt:      llm.InterviewPrompt(llm.InterviewPromptData{JobTitle: jobTitle, ResumeText: resumeText, NumQuestions: n}),
		Temperature: 0.4,
	})
	if err != nil {
		return nil, err
	}

	questions, err := decodeQuestions(raw)
	if err != nil {
		return nil, &llm.MalformedOutputError{Raw: string(raw), Cause: err}
	}
	if len(questions) > n {
		questions = questions[:n]
	}
	return questions, nil
}

// SummarizeJD condenses a job description into key points.
func (s *Service) SummarizeJD(ctx context.Context, jobDescription string) (string, error) {
	if blank(jobDescription) {
		return "", fmt.Errorf("%w: jobDescription is required", ErrInvalidInput)
	}
	return s.prose(ctx, llm.Request{
		Prompt:      llm.SummarizeJDPrompt(llm.SummarizeJDPromptData{JobDescription: jobDescription}),
		Temperature: 0.3,
		MaxTokens:   400,
	})
}

func (s *Service) prose(ctx context.Context, req llm.Request) (string, error) {
	text, err := s.model.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", &llm.MalformedOutputError{Cause: errors.New("empty response")}
	}
	return text, nil
}

// decodeQuestions accepts a bare array or an object wrapping it under "questions".
func decodeQuestions(raw []byte) ([]QA, error) {
	raw = bytes.TrimSpace(raw)
	var items []QA
	if len(raw) > 0 && raw[0] == '{' {
		var wrapped struct {
			Questions []QA `json:"questions"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, err
		}
		items = wrapped.Questions
	} else if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	out := make([]QA, 0, len(items))
	for _, q := range items {
		q.Question = strings.TrimSpace(q.Question)
		q.Answer = strings.TrimSpace(q.Answer)
		if q.Question != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no questions in reply")
	}
	return out, nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
