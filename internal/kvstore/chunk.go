package kvstore

import (
	"context"
	"fmt"
)

// ChunkError reports which chunk of a chunked write failed. Chunks before
// Chunk were written; chunks after it were never attempted.
type ChunkError struct {
	Chunk int // zero-based index of the failing chunk
	Total int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("kvstore: batch chunk %d/%d failed: %v", e.Chunk+1, e.Total, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// WriteChunked issues reqs as sequential batch writes of at most
// MaxBatchSize requests each. It stops at the first failing chunk.
func WriteChunked(ctx context.Context, client Client, table string, reqs []WriteRequest) error {
	chunks := Chunk(reqs, MaxBatchSize)
	for i, chunk := range chunks {
		if err := client.BatchWrite(ctx, table, chunk); err != nil {
			return &ChunkError{Chunk: i, Total: len(chunks), Err: err}
		}
	}
	return nil
}
