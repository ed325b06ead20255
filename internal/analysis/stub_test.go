package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ai-resume-saas/internal/llm"
	"ai-resume-saas/internal/resumes"
)

const sampleResume = "Jane Doe. Backend engineer with six years of Go, Postgres and AWS. " +
	"Led migration of a monolith to services, mentored four engineers, and owned on-call for payments."

const sqlAnalysis = `{"score":72,"missingSkills":["SQL"],"strengths":["clear writing"],"improvementTips":["add metrics"],"summary":"ok"}`

// stubProvider answers primary prompts from a queue and resource prompts by skill.
type stubProvider struct {
	mu        sync.Mutex
	primary   []string
	primaryN  int
	resources map[string]string
	failSkill map[string]bool
	delay     map[string]time.Duration
	prompts   []string

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Chat(ctx context.Context, req llm.Request) (string, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxSeen.Load()
		if n <= m || s.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	s.mu.Lock()
	s.prompts = append(s.prompts, req.Prompt)
	if req.System == llm.SystemStrictJSON {
		idx := s.primaryN
		if idx >= len(s.primary) {
			idx = len(s.primary) - 1
		}
		s.primaryN++
		reply := s.primary[idx]
		s.mu.Unlock()
		return reply, nil
	}
	s.mu.Unlock()

	skill := skillFromPrompt(req.Prompt)
	if d := s.delay[skill]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.failSkill[skill] {
		return "", errors.New("upstream 503")
	}
	if reply, ok := s.resources[skill]; ok {
		return reply, nil
	}
	return `{"title":"` + skill + ` Crash Course","url":"https://learn.example.com/` + strings.ToLower(skill) + `"}`, nil
}

func skillFromPrompt(prompt string) string {
	start := strings.Index(prompt, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(prompt[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return prompt[start+1 : start+1+end]
}

func newStubClient(p *stubProvider) *llm.Client {
	return llm.NewClient(p, llm.Options{Timeout: 5 * time.Second})
}

type fakeFinder struct {
	records map[string]resumes.Record
	err     error
	calls   int
}

func (f *fakeFinder) FindOne(_ context.Context, id, owner string) (resumes.Record, error) {
	f.calls++
	if f.err != nil {
		return resumes.Record{}, f.err
	}
	rec, ok := f.records[id]
	if !ok || rec.UserID != owner {
		return resumes.Record{}, resumes.ErrNotFound
	}
	return rec, nil
}
