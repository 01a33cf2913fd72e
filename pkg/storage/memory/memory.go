// Package memory provides an in-memory implementation of
// storage.JobStore for testing and lightweight deployments. Records are
// lost when the process restarts; a bounded most-recent window keeps
// memory usage flat under continuous use.
package memory

import (
	"container/list"
	"context"
	"sync"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/storage"
)

// entry holds a stored job record and its metadata.
type entry struct {
	rec      *api.JobRecord
	tenantID string
	elem     *list.Element // position in insertion order
}

// Store is an in-memory JobStore retaining the most recent maxSize
// jobs. Updates do not refresh a record's position: eviction follows
// job start order, oldest first.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   *list.List // front = newest, back = oldest
	maxSize int        // 0 = unlimited
}

var _ storage.JobStore = (*Store)(nil)

// New creates an in-memory store. If maxSize is 0 the store grows
// without limit; otherwise the oldest job is evicted at capacity.
func New(maxSize int) *Store {
	return &Store{
		entries: make(map[string]*entry),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// SaveJob inserts a new job record.
func (s *Store) SaveJob(ctx context.Context, rec *api.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[rec.ID]; exists {
		return storage.ErrConflict
	}

	if s.maxSize > 0 && len(s.entries) >= s.maxSize {
		s.evictOldest()
	}

	clone := cloneRecord(rec)
	elem := s.order.PushFront(rec.ID)
	s.entries[rec.ID] = &entry{
		rec:      clone,
		tenantID: storage.GetTenant(ctx),
		elem:     elem,
	}
	return nil
}

// UpdateJob replaces the stored record for rec.ID.
func (s *Store) UpdateJob(ctx context.Context, rec *api.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[rec.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if tenantID := storage.GetTenant(ctx); tenantID != "" && e.tenantID != tenantID {
		return storage.ErrNotFound
	}

	e.rec = cloneRecord(rec)
	return nil
}

// GetJob retrieves a job record by ID, scoped by tenant when one is
// present in the context.
func (s *Store) GetJob(ctx context.Context, id string) (*api.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if tenantID := storage.GetTenant(ctx); tenantID != "" && e.tenantID != tenantID {
		return nil, storage.ErrNotFound
	}

	return cloneRecord(e.rec), nil
}

// ListJobs returns up to limit records, newest started first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]*api.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenantID := storage.GetTenant(ctx)
	var out []*api.JobRecord
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		if limit > 0 && len(out) >= limit {
			break
		}
		e := s.entries[elem.Value.(string)]
		if tenantID != "" && e.tenantID != tenantID {
			continue
		}
		out = append(out, cloneRecord(e.rec))
	}
	return out, nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// evictOldest removes the oldest entry. Must be called with s.mu held.
func (s *Store) evictOldest() {
	back := s.order.Back()
	if back == nil {
		return
	}
	id := back.Value.(string)
	s.order.Remove(back)
	delete(s.entries, id)
}

// cloneRecord deep-copies a record so callers and the store never share
// message slices.
func cloneRecord(rec *api.JobRecord) *api.JobRecord {
	clone := *rec
	clone.Messages = make([]api.Message, len(rec.Messages))
	copy(clone.Messages, rec.Messages)
	if rec.FinishedAt != nil {
		t := *rec.FinishedAt
		clone.FinishedAt = &t
	}
	if rec.Models != nil {
		clone.Models = make(map[api.Role]string, len(rec.Models))
		for k, v := range rec.Models {
			clone.Models[k] = v
		}
	}
	return &clone
}
