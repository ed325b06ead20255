package resumes

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, url, public_id, original_name, file_type, size_bytes, extracted_text, created_at`

// Create inserts a new resume record.
func (r *PGRepo) Create(ctx context.Context, rec Record) (Record, error) {
	const query = `
INSERT INTO resumes (
    id,
    user_id,
    url,
    public_id,
    original_name,
    file_type,
    size_bytes,
    extracted_text,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.UserID,
		rec.URL,
		rec.PublicID,
		rec.OriginalName,
		rec.FileType,
		rec.Size,
		rec.ExtractedText,
		rec.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// FindOne fetches a record by id scoped to owner.
func (r *PGRepo) FindOne(ctx context.Context, id, owner string) (Record, error) {
	query := `
SELECT ` + selectColumns + `
FROM resumes
WHERE id = $1 AND user_id = $2
LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// ListByOwner lists records ordered newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, owner string) ([]Record, error) {
	query := `
SELECT ` + selectColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var extracted sql.NullString
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.URL,
		&rec.PublicID,
		&rec.OriginalName,
		&rec.FileType,
		&rec.Size,
		&extracted,
		&rec.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	if extracted.Valid {
		rec.ExtractedText = extracted.String
	}
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
