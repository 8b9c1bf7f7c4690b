package services

import (
	"context"

	"github.com/mrlokans/linebook/internal/entities"
)

// BookStore persists books and their trees.
type BookStore interface {
	ListBooks(ctx context.Context, userID string) ([]entities.BookSummary, error)
	PutBook(ctx context.Context, userID string, book *entities.Book) error
	GetBook(ctx context.Context, userID, bookID string) (*entities.Book, error)
	GetBookSummary(ctx context.Context, userID, bookID string) (*entities.BookSummary, error)
	DeleteBook(ctx context.Context, userID, bookID string) error
}

// TrainingStore persists trainings. IncrementTotalLines must update the
// counter in place rather than rewrite the record.
type TrainingStore interface {
	ListTraining(ctx context.Context, userID string) ([]entities.TrainingSummary, error)
	PutTraining(ctx context.Context, userID string, t *entities.Training) error
	GetTraining(ctx context.Context, userID, trainingID string) (*entities.Training, error)
	DeleteTraining(ctx context.Context, userID, trainingID string) error
	IncrementTotalLines(ctx context.Context, userID, trainingID string, delta int) error
}

// ActivityStore persists training activity.
type ActivityStore interface {
	ListActivity(ctx context.Context, userID string, limit int) ([]entities.TrainingActivity, error)
	PutActivity(ctx context.Context, userID string, a *entities.TrainingActivity) error
	UpdateActivityTimestamp(ctx context.Context, userID string, a *entities.TrainingActivity, timestamp int64) error
}

// Auditor records changes. Implementations must not block the caller on
// storage.
type Auditor interface {
	LogBookSave(userID string, book entities.BookSummary, oldLineCount int, err error)
	LogBookDelete(userID, bookID string, err error)
	LogCounterSync(userID, trainingID, bookID string, delta int, err error)
	LogTraining(userID, trainingID, action string, err error)
}

// NopAuditor discards every event.
type NopAuditor struct{}

func (NopAuditor) LogBookSave(string, entities.BookSummary, int, error) {}
func (NopAuditor) LogBookDelete(string, string, error)                  {}
func (NopAuditor) LogCounterSync(string, string, string, int, error)    {}
func (NopAuditor) LogTraining(string, string, string, error)            {}
