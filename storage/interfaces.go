package storage

import (
	"context"

	"github.com/poiesic/newsimport/core"
)

// RecordSet accumulates the content records of one import batch.
// Implementations must be thread-safe and support concurrent Offer calls.
type RecordSet interface {
	// Offer inserts record if no record with the same ContentHash is present.
	// Returns true if the record was added, false if an equal hash was
	// already held. Later offers never replace the held record.
	Offer(ctx context.Context, record *core.ContentRecord) (bool, error)

	// Snapshot returns every held record in no particular order.
	Snapshot(ctx context.Context) ([]*core.ContentRecord, error)

	// Len returns the number of distinct records held.
	Len() int

	// Close releases resources. The set should not be used after Close.
	Close() error
}

// RecordSetFactory creates an empty RecordSet for a new batch.
type RecordSetFactory func() (RecordSet, error)
