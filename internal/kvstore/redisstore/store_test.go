package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/linebook/internal/kvstore"
)

// Runs only when REDIS_ADDR points at a disposable server.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	store, err := New(Options{Addr: addr, Prefix: "linebook-test-" + uuid.NewString()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNew_RequiresAddress(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	key := kvstore.Key{Partition: "u1", Sort: "t1"}

	require.NoError(t, store.Put(ctx, "book_training", kvstore.Item{Key: key, Attributes: json.RawMessage(`{"total_lines":3}`)}))
	require.NoError(t, store.Increment(ctx, "book_training", key, "total_lines", 5))

	got, err := store.Get(ctx, "book_training", key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_lines":8}`, string(got.Attributes))

	require.NoError(t, store.Delete(ctx, "book_training", key))
	_, err = store.Get(ctx, "book_training", key)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	err = store.Increment(ctx, "book_training", key, "total_lines", 1)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestStore_QueryAndBatch(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	var reqs []kvstore.WriteRequest
	for i := 0; i < 5; i++ {
		reqs = append(reqs, kvstore.PutRequest(kvstore.Item{
			Key:        kvstore.Key{Partition: "u1", Sort: fmt.Sprintf("%03d", i)},
			Attributes: json.RawMessage(fmt.Sprintf(`{"n":%d,"name":"x"}`, i)),
		}))
	}
	require.NoError(t, store.BatchWrite(ctx, "activity", reqs))

	items, err := store.Query(ctx, "activity", "u1", kvstore.QueryOptions{Descending: true, Limit: 2, Projection: []string{"n"}})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "004", items[0].Key.Sort)
	assert.JSONEq(t, `{"n":4}`, string(items[0].Attributes))
	assert.Equal(t, "003", items[1].Key.Sort)

	big := make([]kvstore.WriteRequest, kvstore.MaxBatchSize+1)
	for i := range big {
		big[i] = kvstore.DeleteRequest(kvstore.Key{Partition: "u1", Sort: fmt.Sprintf("%03d", i)})
	}
	assert.ErrorIs(t, store.BatchWrite(ctx, "activity", big), kvstore.ErrBatchTooLarge)
}
