package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxBatchSize is the per-call ceiling of BatchWrite.
const MaxBatchSize = 25

var (
	// ErrNotFound is returned when an addressed item does not exist.
	ErrNotFound = errors.New("kvstore: item not found")

	// ErrBatchTooLarge is returned by BatchWrite for more than MaxBatchSize requests.
	ErrBatchTooLarge = fmt.Errorf("kvstore: batch exceeds %d items", MaxBatchSize)
)

// Key addresses one item inside a table.
type Key struct {
	Partition string
	Sort      string
}

// Item is a stored document.
type Item struct {
	Key        Key
	Attributes json.RawMessage
}

// WriteRequest is one entry of a batch write: exactly one of Put or Delete is set.
type WriteRequest struct {
	Put    *Item
	Delete *Key
}

// QueryOptions shape the result of Query.
type QueryOptions struct {
	// Projection limits the returned attributes to the listed top-level fields.
	// An empty projection returns whole items.
	Projection []string
	// Descending reverses the sort-key order.
	Descending bool
	// Limit caps the number of returned items; zero means no cap.
	Limit int
}

// Client is the key-value store used by the repositories.
type Client interface {
	Get(ctx context.Context, table string, key Key) (Item, error)
	Put(ctx context.Context, table string, item Item) error
	Delete(ctx context.Context, table string, key Key) error
	Query(ctx context.Context, table, partition string, opts QueryOptions) ([]Item, error)
	BatchWrite(ctx context.Context, table string, reqs []WriteRequest) error
	// Increment adds delta to a numeric attribute of an existing item
	// without rewriting the rest of the item.
	Increment(ctx context.Context, table string, key Key, field string, delta int) error
	Ping(ctx context.Context) error
	Close() error
}

// PutRequest wraps an item as a batch put.
func PutRequest(item Item) WriteRequest {
	return WriteRequest{Put: &item}
}

// DeleteRequest wraps a key as a batch delete.
func DeleteRequest(key Key) WriteRequest {
	return WriteRequest{Delete: &key}
}

// Validate checks a batch against the per-call contract.
func Validate(reqs []WriteRequest) error {
	if len(reqs) > MaxBatchSize {
		return fmt.Errorf("%w: got %d", ErrBatchTooLarge, len(reqs))
	}
	for i, r := range reqs {
		if (r.Put == nil) == (r.Delete == nil) {
			return fmt.Errorf("kvstore: request %d must set exactly one of put or delete", i)
		}
	}
	return nil
}

// Project returns attrs reduced to the given top-level fields.
func Project(attrs json.RawMessage, fields []string) (json.RawMessage, error) {
	if len(fields) == 0 {
		return attrs, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(attrs, &doc); err != nil {
		return nil, fmt.Errorf("kvstore: decode attributes: %w", err)
	}
	out := make(map[string]json.RawMessage, len(fields))
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return json.Marshal(out)
}

// AddToField returns attrs with delta added to the numeric field.
// A missing field counts as zero.
func AddToField(attrs json.RawMessage, field string, delta int) (json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(attrs, &doc); err != nil {
		return nil, fmt.Errorf("kvstore: decode attributes: %w", err)
	}
	var current int
	if raw, ok := doc[field]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &current); err != nil {
			return nil, fmt.Errorf("kvstore: field %q is not numeric: %w", field, err)
		}
	}
	encoded, err := json.Marshal(current + delta)
	if err != nil {
		return nil, err
	}
	doc[field] = encoded
	return json.Marshal(doc)
}

// Marshal encodes v as the attributes of an item with the given key.
func Marshal(key Key, v any) (Item, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Item{}, fmt.Errorf("kvstore: encode item: %w", err)
	}
	return Item{Key: key, Attributes: raw}, nil
}

// Unmarshal decodes the attributes of item into v.
func Unmarshal(item Item, v any) error {
	if err := json.Unmarshal(item.Attributes, v); err != nil {
		return fmt.Errorf("kvstore: decode item %s/%s: %w", item.Key.Partition, item.Key.Sort, err)
	}
	return nil
}
