package editor

import (
	"context"
	"time"
)

// Store holds sessions. Update applies fn to the latest state and is
// serialized per session; fn returning an error leaves the session as it
// was. A successful Update bumps the revision.
//
// RecordSave keeps result as the session's last master save without
// bumping the revision. It is a no-op when the session has moved past
// result.Revision.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	RecordSave(ctx context.Context, id string, result SaveResult) error
	Delete(ctx context.Context, id string) error
}

func touch(s *Session) {
	s.Revision++
	s.UpdatedAt = time.Now().UTC()
}

func recordSave(s *Session, result SaveResult) bool {
	if s.Revision != result.Revision {
		return false
	}
	result.Replayed = false
	result.Resume = append([]byte(nil), result.Resume...)
	s.LastSave = &result
	return true
}
