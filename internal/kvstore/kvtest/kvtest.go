// Package kvtest provides store fixtures for tests: a sqlite-backed client
// in a temporary directory and a Recorder that observes and fails calls.
package kvtest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/linebook/internal/database"
	"github.com/mrlokans/linebook/internal/kvstore"
	"github.com/mrlokans/linebook/internal/kvstore/sqlstore"
)

// NewSQLite opens a fresh sqlite database under t.TempDir and returns a
// store over it. The database is closed when the test ends.
func NewSQLite(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, _ := NewSQLiteWithDB(t)
	return store
}

// NewSQLiteWithDB is NewSQLite that also exposes the underlying database.
func NewSQLiteWithDB(t *testing.T) (*sqlstore.Store, *database.Database) {
	t.Helper()
	db, err := database.NewDatabase(database.Options{
		Path:   filepath.Join(t.TempDir(), "kv.db"),
		Silent: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlstore.New(db.DB), db
}

// BatchCall is one observed BatchWrite.
type BatchCall struct {
	Table    string
	Requests []kvstore.WriteRequest
}

// Recorder wraps a Client, records batch writes and increments, and lets a
// test fail selected calls.
type Recorder struct {
	kvstore.Client

	mu         sync.Mutex
	batches    []BatchCall
	increments []kvstore.Key

	// FailBatchAt makes the n-th BatchWrite (1-based) return FailErr.
	// Zero disables batch failures.
	FailBatchAt int
	// FailIncrement makes Increment return FailErr for keys it accepts.
	FailIncrement func(table string, key kvstore.Key) bool
	// FailQueryTable makes Query against the named table return FailErr.
	FailQueryTable string
	FailErr        error
}

// NewRecorder wraps client.
func NewRecorder(client kvstore.Client) *Recorder {
	return &Recorder{Client: client, FailErr: ErrInjected}
}

// ErrInjected is the default error returned by failing calls.
var ErrInjected = &injectedError{}

type injectedError struct{}

func (*injectedError) Error() string { return "kvtest: injected failure" }

func (r *Recorder) BatchWrite(ctx context.Context, table string, reqs []kvstore.WriteRequest) error {
	r.mu.Lock()
	r.batches = append(r.batches, BatchCall{Table: table, Requests: append([]kvstore.WriteRequest(nil), reqs...)})
	n := len(r.batches)
	r.mu.Unlock()

	if r.FailBatchAt > 0 && n == r.FailBatchAt {
		return r.FailErr
	}
	return r.Client.BatchWrite(ctx, table, reqs)
}

func (r *Recorder) Increment(ctx context.Context, table string, key kvstore.Key, field string, delta int) error {
	r.mu.Lock()
	r.increments = append(r.increments, key)
	r.mu.Unlock()

	if r.FailIncrement != nil && r.FailIncrement(table, key) {
		return r.FailErr
	}
	return r.Client.Increment(ctx, table, key, field, delta)
}

func (r *Recorder) Query(ctx context.Context, table, partition string, opts kvstore.QueryOptions) ([]kvstore.Item, error) {
	if r.FailQueryTable != "" && r.FailQueryTable == table {
		return nil, r.FailErr
	}
	return r.Client.Query(ctx, table, partition, opts)
}

// Batches returns the observed batch writes, optionally filtered by table.
func (r *Recorder) Batches(table string) []BatchCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []BatchCall
	for _, b := range r.batches {
		if table == "" || b.Table == table {
			out = append(out, b)
		}
	}
	return out
}

// Increments returns the keys passed to Increment.
func (r *Recorder) Increments() []kvstore.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]kvstore.Key(nil), r.increments...)
}

// Reset clears recorded calls and failure settings.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = nil
	r.increments = nil
	r.FailBatchAt = 0
	r.FailIncrement = nil
	r.FailQueryTable = ""
}
