package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/storage"
)

const maxConflictRetries = 8

// RecordSet implements storage.RecordSet on BadgerDB.
// Records are keyed by content hash; the first committed offer wins.
type RecordSet struct {
	backend *Backend
	count   atomic.Int64
	closed  atomic.Bool
	logger  *slog.Logger
}

var _ storage.RecordSet = (*RecordSet)(nil)

// NewRecordSet opens a record set. An empty dir keeps everything in memory;
// otherwise records spill to a temporary directory under dir.
func NewRecordSet(dir string, logger *slog.Logger) (*RecordSet, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backend, err := OpenBackend(dir, logger)
	if err != nil {
		return nil, err
	}
	return &RecordSet{
		backend: backend,
		logger:  logger.With("component", "recordset"),
	}, nil
}

// NewMemoryRecordSet opens an in-memory record set.
func NewMemoryRecordSet() (*RecordSet, error) {
	return NewRecordSet("", nil)
}

// Factory returns a storage.RecordSetFactory producing record sets under dir.
func Factory(dir string, logger *slog.Logger) storage.RecordSetFactory {
	return func() (storage.RecordSet, error) {
		return NewRecordSet(dir, logger)
	}
}

// Offer inserts record unless a record with the same hash is present.
// Concurrent offers of one hash conflict in badger; the loser retries and
// then observes the winner's key.
func (s *RecordSet) Offer(ctx context.Context, record *core.ContentRecord) (bool, error) {
	if s.closed.Load() {
		return false, storage.ErrStorageClosed
	}
	if record == nil || record.ContentHash == "" {
		return false, storage.ErrHashRequired
	}

	key := makeContentRecordKey(record.ContentHash)
	value := storage.MarshalContentRecord(record)

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var added bool
		err = s.backend.WithTx(func(tx *badger.Txn) error {
			_, getErr := tx.Get(key)
			if getErr == nil {
				return nil
			}
			if !errors.Is(getErr, badger.ErrKeyNotFound) {
				return getErr
			}
			added = true
			return tx.Set(key, value)
		}, true)

		if errors.Is(err, badger.ErrConflict) {
			s.logger.Debug("offer conflicted, retrying", "hash", record.ContentHash, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return false, err
		}
		if added {
			s.count.Add(1)
		}
		return added, nil
	}

	return false, fmt.Errorf("offer %s: %w", record.ContentHash, err)
}

// Snapshot returns every held record.
func (s *RecordSet) Snapshot(ctx context.Context) ([]*core.ContentRecord, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	records := make([]*core.ContentRecord, 0, s.Len())
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(contentRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.ContentRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalContentRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Len returns the number of distinct records held.
func (s *RecordSet) Len() int {
	return int(s.count.Load())
}

// Close closes the underlying database.
func (s *RecordSet) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.backend.Close()
}
