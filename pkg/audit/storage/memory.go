package storage

import (
	"context"
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/audit"
)

// MemoryStorage implements audit.Storage with an in-memory slice.
// Intended for tests; records are lost on process exit.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*audit.Record
}

// NewMemoryStorage creates an empty in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store persists a record.
func (s *MemoryStorage) Store(_ context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *record
	s.records = append(s.records, &cp)
	return nil
}

// Query returns records matching the filter, newest first.
func (s *MemoryStorage) Query(_ context.Context, filter audit.Filter) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*audit.Record
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if !matches(r, filter) {
			continue
		}
		cp := *r
		results = append(results, &cp)
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}

// Count returns the number of stored records.
func (s *MemoryStorage) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// DeleteBefore removes records observed before the cutoff.
func (s *MemoryStorage) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var removed int64
	for _, r := range s.records {
		if r.ObservedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return removed, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}

// matches reports whether a record satisfies the filter.
func matches(r *audit.Record, f audit.Filter) bool {
	if f.Fingerprint != "" && r.Fingerprint != f.Fingerprint {
		return false
	}
	if f.PolicyIdentity != "" && r.PolicyIdentity != f.PolicyIdentity {
		return false
	}
	if f.Decision != "" && r.Decision != f.Decision {
		return false
	}
	if !f.Since.IsZero() && r.ObservedAt.Before(f.Since) {
		return false
	}
	return true
}
