package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// stateStore holds pending OAuth states. Each state is accepted once.
type stateStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]time.Time
}

func newStateStore(ttl time.Duration) *stateStore {
	return &stateStore{ttl: ttl, now: time.Now, items: make(map[string]time.Time)}
}

// issue creates a new state and drops any that already expired.
func (s *stateStore) issue() string {
	state := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, exp := range s.items {
		if now.After(exp) {
			delete(s.items, k)
		}
	}
	s.items[state] = now.Add(s.ttl)
	return state
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[state]
	if !ok {
		return false
	}
	delete(s.items, state)
	return !s.now().After(exp)
}

func (s *stateStore) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
