package resumes

import "context"

// Repo persists resume records. Every read filters on owner at the query level.
type Repo interface {
	// Create stores rec, assigning an ID when empty, and returns the stored record.
	Create(ctx context.Context, rec Record) (Record, error)
	// FindOne returns ErrNotFound when id is absent or owned by someone else.
	FindOne(ctx context.Context, id, owner string) (Record, error)
	// ListByOwner returns owner's records, newest first.
	ListByOwner(ctx context.Context, owner string) ([]Record, error)
}
