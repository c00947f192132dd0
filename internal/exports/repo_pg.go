package exports

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

const selectColumns = `id, session_id, revision, template, format, file_name, size_bytes, sha256, storage_key, created_at`

// Create inserts an export record.
func (r *PGRepo) Create(ctx context.Context, record Record) error {
	if record.SessionID == "" {
		return ErrInvalidInput
	}
	const query = `
INSERT INTO exports (
    id, session_id, revision, template, format, file_name, size_bytes, sha256, storage_key, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		record.ID,
		record.SessionID,
		record.Revision,
		record.Template,
		record.Format,
		record.FileName,
		record.SizeBytes,
		record.SHA256,
		record.StorageKey,
		record.CreatedAt,
	)
	return err
}

// Get loads one export record.
func (r *PGRepo) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	query := `SELECT ` + selectColumns + ` FROM exports WHERE id = $1`
	record, err := scanRecord(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return record, err
}

// ListBySession lists a session's exports ordered newest-first.
func (r *PGRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	query := `
SELECT ` + selectColumns + `
FROM exports
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, sessionID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var record Record
	err := row.Scan(
		&record.ID,
		&record.SessionID,
		&record.Revision,
		&record.Template,
		&record.Format,
		&record.FileName,
		&record.SizeBytes,
		&record.SHA256,
		&record.StorageKey,
		&record.CreatedAt,
	)
	return record, err
}

var _ Repo = (*PGRepo)(nil)
