package exports

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrInvalidInput indicates a record is missing its session.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates no export has the requested id.
	ErrNotFound = errors.New("export not found")
)

// Repo persists export history.
type Repo interface {
	Create(ctx context.Context, record Record) error
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Record, error)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
