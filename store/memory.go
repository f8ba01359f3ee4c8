package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/synthpanel/synthpanel/domain"
)

// MemoryStore implements Store using an in-memory map. Records are
// deep-copied through JSON on the way in and out so callers never
// share memory with the stored copy.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
	}
}

// Put creates the record for the session id, or resets it if one
// already exists.
func (s *MemoryStore) Put(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	session.Version = 1

	stored, err := cloneSession(session)
	if err != nil {
		return err
	}
	s.sessions[session.ID] = stored
	return nil
}

// Get retrieves a session record by id. Returns (nil, nil) when no
// record exists.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.sessions[id]
	if !exists {
		return nil, nil
	}
	return cloneSession(stored)
}

// Update persists an existing record, guarded by the record version.
func (s *MemoryStore) Update(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.sessions[session.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if stored.Version != session.Version {
		return domain.ErrVersionConflict
	}

	session.Version++
	session.UpdatedAt = time.Now()

	next, err := cloneSession(session)
	if err != nil {
		return err
	}
	s.sessions[session.ID] = next
	return nil
}

// Delete removes a session record.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Close releases the store's resources.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}

func cloneSession(session *domain.Session) (*domain.Session, error) {
	b, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	var clone domain.Session
	if err := json.Unmarshal(b, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}
