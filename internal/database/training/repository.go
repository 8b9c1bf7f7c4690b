// Package training persists Training records in the "book_training" table,
// keyed by (userID, trainingID).
package training

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/kvstore"
)

const Table = "book_training"

// Repository handles training persistence.
type Repository struct {
	kv kvstore.Client
}

// NewRepository creates a new training repository.
func NewRepository(kv kvstore.Client) *Repository {
	return &Repository{kv: kv}
}

func key(userID, trainingID string) kvstore.Key {
	return kvstore.Key{Partition: userID, Sort: trainingID}
}

// ListTraining returns the summaries of every training owned by userID.
func (r *Repository) ListTraining(ctx context.Context, userID string) ([]entities.TrainingSummary, error) {
	items, err := r.kv.Query(ctx, Table, userID, kvstore.QueryOptions{Projection: entities.TrainingSummaryFields})
	if err != nil {
		return nil, fmt.Errorf("failed to list trainings: %w", err)
	}

	summaries := make([]entities.TrainingSummary, 0, len(items))
	for _, item := range items {
		var s entities.TrainingSummary
		if err := kvstore.Unmarshal(item, &s); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// PutTraining writes the whole training record.
func (r *Repository) PutTraining(ctx context.Context, userID string, t *entities.Training) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("training id is required")
	}

	record := *t
	record.UserID = userID
	if record.StartedBooks == nil {
		record.StartedBooks = []string{}
	}

	item, err := kvstore.Marshal(key(userID, t.ID), record)
	if err != nil {
		return err
	}
	if err := r.kv.Put(ctx, Table, item); err != nil {
		return fmt.Errorf("failed to save training %s: %w", t.ID, err)
	}
	return nil
}

// GetTraining loads one training. It returns (nil, nil) when it does not exist.
func (r *Repository) GetTraining(ctx context.Context, userID, trainingID string) (*entities.Training, error) {
	item, err := r.kv.Get(ctx, Table, key(userID, trainingID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get training %s: %w", trainingID, err)
	}

	var t entities.Training
	if err := kvstore.Unmarshal(item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) DeleteTraining(ctx context.Context, userID, trainingID string) error {
	if err := r.kv.Delete(ctx, Table, key(userID, trainingID)); err != nil {
		return fmt.Errorf("failed to delete training %s: %w", trainingID, err)
	}
	return nil
}

// IncrementTotalLines adds delta to the cached total line count of one
// training without rewriting the rest of the record.
func (r *Repository) IncrementTotalLines(ctx context.Context, userID, trainingID string, delta int) error {
	err := r.kv.Increment(ctx, Table, key(userID, trainingID), entities.TrainingTotalLinesField, delta)
	if err != nil {
		return fmt.Errorf("failed to update total lines of training %s: %w", trainingID, err)
	}
	return nil
}
