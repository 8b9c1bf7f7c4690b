package http

import (
	"context"
	"time"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/importers"
	"github.com/mrlokans/linebook/internal/services"
)

// This file consolidates the service interfaces used by HTTP controllers.
// Each controller depends only on the operations it calls; the concrete
// implementations live in internal/services.

// BookService is the book surface of the API.
type BookService interface {
	ListBooks(ctx context.Context, userID string) ([]entities.BookSummary, error)
	GetBook(ctx context.Context, userID, bookID string) (*entities.Book, error)
	GetBookSummary(ctx context.Context, userID, bookID string) (*entities.BookSummary, error)
	CreateBook(ctx context.Context, userID string, book *entities.Book) (services.SyncResult, error)
	UpdateBook(ctx context.Context, userID string, book *entities.Book, oldLineCount int) (services.SyncResult, error)
	DeleteBook(ctx context.Context, userID, bookID string) error
	AddLine(ctx context.Context, userID, bookID string, moves []string) (*entities.Book, services.SyncResult, error)
}

// PGNImporter stores PGN text as new books.
type PGNImporter interface {
	ImportPGN(ctx context.Context, userID, text string, opts importers.Options) (importers.ImportResult, error)
}

// TrainingService is the training surface of the API.
type TrainingService interface {
	NewTraining(ctx context.Context, userID string, in services.NewTrainingInput) (*entities.Training, error)
	ListTraining(ctx context.Context, userID string) ([]entities.TrainingSummary, error)
	GetTraining(ctx context.Context, userID, trainingID string) (*entities.Training, error)
	PutTraining(ctx context.Context, userID string, t *entities.Training) error
	DeleteTraining(ctx context.Context, userID, trainingID string) error
}

// ActivityService is the activity surface of the API.
type ActivityService interface {
	Record(ctx context.Context, userID string, a *entities.TrainingActivity, now time.Time) error
	Recent(ctx context.Context, userID string, limit int, now time.Time) ([]services.RecentActivity, error)
}

// AuditReader lists recorded audit events.
type AuditReader interface {
	GetEvents(ctx context.Context, userID string, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(ctx context.Context, eventType entities.AuditEventType, userID string, limit, offset int) ([]entities.AuditEvent, int64, error)
}
