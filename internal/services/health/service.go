package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

const checkTimeout = 2 * time.Second

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// Report is the health payload. Components is omitted when nothing is registered.
type Report struct {
	OK         bool              `json:"ok"`
	Components map[string]string `json:"components,omitempty"`
}

// Service runs registered dependency checks.
type Service struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{checks: map[string]Check{}}
}

// Register adds a named check. A nil check is ignored.
func (s *Service) Register(name string, check Check) {
	if check == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Status runs every check with a short timeout.
func (s *Service) Status(ctx context.Context) Report {
	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)

	report := Report{OK: true}
	if len(names) == 0 {
		return report
	}
	report.Components = make(map[string]string, len(names))
	for _, name := range names {
		s.mu.RLock()
		check := s.checks[name]
		s.mu.RUnlock()

		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := check(checkCtx)
		cancel()
		if err != nil {
			report.OK = false
			report.Components[name] = "down"
			continue
		}
		report.Components[name] = "up"
	}
	return report
}
