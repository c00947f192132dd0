package editor

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory and is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs a MemoryStore. A zero ttl keeps sessions until
// they are deleted.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) expiry() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(m.ttl)
}

func (m *MemoryStore) live(id string) (memoryEntry, bool) {
	entry, ok := m.entries[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, id)
		return memoryEntry{}, false
	}
	return entry, true
}

// Create stores a new session.
func (m *MemoryStore) Create(ctx context.Context, s Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.entries[s.ID] = memoryEntry{session: copySession(s), expiresAt: m.expiry()}
	return nil
}

// Get returns a copy of the session.
func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.live(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	return copySession(entry.session), nil
}

// Update applies fn under the store lock and refreshes the TTL.
func (m *MemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.live(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	next := copySession(entry.session)
	if err := fn(&next); err != nil {
		return Session{}, err
	}
	touch(&next)
	m.entries[id] = memoryEntry{session: next, expiresAt: m.expiry()}
	return copySession(next), nil
}

// RecordSave stores result on the session if it is still at result.Revision.
func (m *MemoryStore) RecordSave(ctx context.Context, id string, result SaveResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.live(id)
	if !ok {
		return ErrNotFound
	}
	if recordSave(&entry.session, result) {
		m.entries[id] = entry
	}
	return nil
}

// Delete discards the session.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(id); !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

// sweep drops expired sessions. Callers hold mu.
func (m *MemoryStore) sweep() {
	now := m.now()
	for id, entry := range m.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(m.entries, id)
		}
	}
}

func copySession(s Session) Session {
	s.Document = s.Document.Clone()
	if s.LastSave != nil {
		saved := *s.LastSave
		saved.Resume = append([]byte(nil), saved.Resume...)
		s.LastSave = &saved
	}
	return s
}

var _ Store = (*MemoryStore)(nil)
