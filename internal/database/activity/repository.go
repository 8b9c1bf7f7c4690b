// Package activity persists TrainingActivity records in the
// "book_training_activity" table, keyed by (userID, timestamp).
//
// The sort key is the timestamp in Unix milliseconds, zero padded so that
// lexical order equals chronological order. Because the timestamp is part of
// the key, changing it is a delete of the old item followed by a put of the
// new one. Old activity is never pruned.
package activity

import (
	"context"
	"fmt"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/kvstore"
)

const (
	Table = "book_training_activity"

	// DefaultListLimit is used when ListActivity is called without a limit.
	DefaultListLimit = 5
)

// Repository handles training activity persistence.
type Repository struct {
	kv kvstore.Client
}

// NewRepository creates a new activity repository.
func NewRepository(kv kvstore.Client) *Repository {
	return &Repository{kv: kv}
}

// SortKey encodes a millisecond timestamp as a sortable key.
func SortKey(timestamp int64) string {
	return fmt.Sprintf("%015d", timestamp)
}

func key(userID string, timestamp int64) kvstore.Key {
	return kvstore.Key{Partition: userID, Sort: SortKey(timestamp)}
}

// ListActivity returns the most recent activity first, at most limit entries.
// A limit of zero or less means DefaultListLimit.
func (r *Repository) ListActivity(ctx context.Context, userID string, limit int) ([]entities.TrainingActivity, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	items, err := r.kv.Query(ctx, Table, userID, kvstore.QueryOptions{Descending: true, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	out := make([]entities.TrainingActivity, 0, len(items))
	for _, item := range items {
		var a entities.TrainingActivity
		if err := kvstore.Unmarshal(item, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// PutActivity stores one activity entry. An entry with the same timestamp is
// overwritten.
func (r *Repository) PutActivity(ctx context.Context, userID string, a *entities.TrainingActivity) error {
	if a == nil {
		return fmt.Errorf("activity is required")
	}
	if a.Timestamp < 0 {
		return fmt.Errorf("activity timestamp must not be negative")
	}

	record := *a
	record.UserID = userID
	item, err := kvstore.Marshal(key(userID, record.Timestamp), record)
	if err != nil {
		return err
	}
	if err := r.kv.Put(ctx, Table, item); err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

// UpdateActivityTimestamp moves an entry to a new timestamp by deleting the
// old item and writing a new one. The activity value itself is not modified.
func (r *Repository) UpdateActivityTimestamp(ctx context.Context, userID string, a *entities.TrainingActivity, timestamp int64) error {
	if a == nil {
		return fmt.Errorf("activity is required")
	}
	if err := r.kv.Delete(ctx, Table, key(userID, a.Timestamp)); err != nil {
		return fmt.Errorf("failed to delete activity %d: %w", a.Timestamp, err)
	}

	moved := *a
	moved.Timestamp = timestamp
	return r.PutActivity(ctx, userID, &moved)
}
