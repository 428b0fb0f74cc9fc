package badger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/newsimport/core"
	"github.com/poiesic/newsimport/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecordSet(t *testing.T) *RecordSet {
	t.Helper()
	set, err := NewMemoryRecordSet()
	require.NoError(t, err)
	t.Cleanup(func() { set.Close() })
	return set
}

func TestRecordSet_FirstWriterWins(t *testing.T) {
	set := newTestRecordSet(t)
	ctx := context.Background()

	added, err := set.Offer(ctx, &core.ContentRecord{ContentHash: "H1", QueryID: 1, Title: "first"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = set.Offer(ctx, &core.ContentRecord{ContentHash: "H1", QueryID: 2, Title: "second"})
	require.NoError(t, err)
	assert.False(t, added)

	records, err := set.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "first", records[0].Title)
	assert.Equal(t, int64(1), records[0].QueryID)
	assert.Equal(t, 1, set.Len())
}

func TestRecordSet_RequiresHash(t *testing.T) {
	set := newTestRecordSet(t)

	_, err := set.Offer(context.Background(), &core.ContentRecord{})
	assert.ErrorIs(t, err, storage.ErrHashRequired)

	_, err = set.Offer(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrHashRequired)
}

func TestRecordSet_ConcurrentOffers(t *testing.T) {
	set := newTestRecordSet(t)
	ctx := context.Background()

	const writers = 16
	const distinct = 25

	var wg sync.WaitGroup
	var mu sync.Mutex
	addedTotal := 0

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < distinct; i++ {
				added, err := set.Offer(ctx, &core.ContentRecord{
					ContentHash: fmt.Sprintf("H%02d", i),
					QueryID:     int64(w),
				})
				assert.NoError(t, err)
				if added {
					mu.Lock()
					addedTotal++
					mu.Unlock()
				}
			}
		}(w)
	}
	wg.Wait()

	records, err := set.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, records, distinct)
	assert.Equal(t, distinct, addedTotal)
	assert.Equal(t, distinct, set.Len())

	seen := make(map[string]bool)
	for _, r := range records {
		assert.False(t, seen[r.ContentHash], "duplicate hash %s", r.ContentHash)
		seen[r.ContentHash] = true
	}
}

func TestRecordSet_Closed(t *testing.T) {
	set, err := NewMemoryRecordSet()
	require.NoError(t, err)
	require.NoError(t, set.Close())
	require.NoError(t, set.Close())

	_, err = set.Offer(context.Background(), &core.ContentRecord{ContentHash: "H"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = set.Snapshot(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestFactory_SpillsToDisk(t *testing.T) {
	factory := Factory(t.TempDir(), nil)

	set, err := factory()
	require.NoError(t, err)
	defer set.Close()

	added, err := set.Offer(context.Background(), &core.ContentRecord{ContentHash: "H", Title: "on disk"})
	require.NoError(t, err)
	assert.True(t, added)

	records, err := set.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "on disk", records[0].Title)
}
