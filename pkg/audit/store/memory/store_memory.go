// Package memory holds audit records in process. It backs unit tests and
// is the default sink when no external store is configured.
package memory

import (
	"context"
	"sync"

	"trail/pkg/audit"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]audit.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]audit.Record)}
}

func key(auditableType, auditableID string) string {
	return auditableType + "/" + auditableID
}

func (s *InMemoryStore) Append(_ context.Context, record audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(record.AuditableType, record.AuditableID)
	s.records[k] = append(s.records[k], record)
	return nil
}

// Prune keeps only the most recent records for an entity. Records are
// appended in order, so the tail of the slice is the newest.
func (s *InMemoryStore) Prune(_ context.Context, auditableType, auditableID string, keep int) error {
	if keep <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(auditableType, auditableID)
	records := s.records[k]
	if len(records) > keep {
		s.records[k] = append([]audit.Record{}, records[len(records)-keep:]...)
	}
	return nil
}

func (s *InMemoryStore) ListByAuditable(_ context.Context, auditableType, auditableID string) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Record{}, s.records[key(auditableType, auditableID)]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string][]audit.Record)
}
