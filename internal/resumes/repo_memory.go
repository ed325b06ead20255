package resumes

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Record // id -> record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Record),
	}
}

// Create stores a record.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[rec.ID] = rec
	return rec, nil
}

// FindOne returns the record when it exists and belongs to owner.
func (r *MemoryRepo) FindOne(ctx context.Context, id, owner string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[id]
	if !ok || rec.UserID != owner {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// ListByOwner returns owner's records, newest first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, owner string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]Record, 0)
	for _, rec := range r.data {
		if rec.UserID == owner {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
