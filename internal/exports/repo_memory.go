package exports

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo keeps export history in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu        sync.RWMutex
	bySession map[string][]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{bySession: make(map[string][]Record)}
}

// Create stores the record.
func (r *MemoryRepo) Create(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.SessionID == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySession[record.SessionID] = append(r.bySession[record.SessionID], record)
	return nil
}

// Get returns the record with id.
func (r *MemoryRepo) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, records := range r.bySession {
		for _, record := range records {
			if record.ID == id {
				return record, nil
			}
		}
	}
	return Record{}, ErrNotFound
}

// ListBySession returns a session's exports, newest first.
func (r *MemoryRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	records := make([]Record, len(r.bySession[sessionID]))
	copy(records, r.bySession[sessionID])
	r.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit = clampLimit(limit); len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

var _ Repo = (*MemoryRepo)(nil)
