package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"cnmaturity/internal/model"
)

// Store persists session records.
// Get returns nil, nil when the session does not exist or has expired.
// Save is a compare-and-set: rec.Version must be exactly one past the stored
// version, otherwise it fails with ErrVersionConflict and stores nothing.
type Store interface {
	Create(ctx context.Context, rec *model.SessionRecord) error
	Get(ctx context.Context, id string) (*model.SessionRecord, error)
	Save(ctx context.Context, rec *model.SessionRecord) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps records in a bounded, expiring LRU.
// Records are copied on the way in and out so callers never share state.
type MemoryStore struct {
	mu  sync.Mutex // makes Save's check and write atomic
	lru *expirable.LRU[string, *model.SessionRecord]
}

// NewMemoryStore creates a store holding at most capacity sessions for ttl.
// A zero ttl disables expiry.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		lru: expirable.NewLRU[string, *model.SessionRecord](capacity, nil, ttl),
	}
}

// Create stores a new record
func (s *MemoryStore) Create(ctx context.Context, rec *model.SessionRecord) error {
	s.lru.Add(rec.ID, rec.Clone())
	return nil
}

// Get returns a copy of the record, or nil when it is gone
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.SessionRecord, error) {
	rec, ok := s.lru.Get(id)
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Save replaces the record if nobody saved it since it was loaded
func (s *MemoryStore) Save(ctx context.Context, rec *model.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.lru.Peek(rec.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, rec.ID)
	}
	if cur.Version != rec.Version-1 {
		return fmt.Errorf("%w: %s stored at version %d, saving %d", ErrVersionConflict, rec.ID, cur.Version, rec.Version)
	}
	s.lru.Add(rec.ID, rec.Clone())
	return nil
}

// Delete drops the record
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.lru.Remove(id)
	return nil
}

// Len is the number of live sessions
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
