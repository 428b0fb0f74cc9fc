package ingestion

import (
	"context"
	"sync"

	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/storage"
)

// MemoryRecordSet is the default storage.RecordSet: a hash-keyed map
// guarded by a read/write mutex.
type MemoryRecordSet struct {
	mu      sync.RWMutex
	records map[string]*core.ContentRecord
}

var _ storage.RecordSet = (*MemoryRecordSet)(nil)

// NewMemoryRecordSet creates an empty in-memory record set.
func NewMemoryRecordSet() *MemoryRecordSet {
	return &MemoryRecordSet{records: make(map[string]*core.ContentRecord)}
}

// MemoryRecordSetFactory produces a fresh MemoryRecordSet per batch.
func MemoryRecordSetFactory() (storage.RecordSet, error) {
	return NewMemoryRecordSet(), nil
}

// Offer adds record unless its hash is already held.
func (s *MemoryRecordSet) Offer(_ context.Context, record *core.ContentRecord) (bool, error) {
	if record == nil || record.ContentHash == "" {
		return false, storage.ErrHashRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ContentHash]; ok {
		return false, nil
	}
	s.records[record.ContentHash] = record
	return true, nil
}

// Snapshot returns the held records in map order.
func (s *MemoryRecordSet) Snapshot(_ context.Context) ([]*core.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*core.ContentRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	return records, nil
}

// Len returns the number of distinct records.
func (s *MemoryRecordSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close drops the held records.
func (s *MemoryRecordSet) Close() error {
	s.mu.Lock()
	s.records = make(map[string]*core.ContentRecord)
	s.mu.Unlock()
	return nil
}
