package exporters

import (
	"context"

	"github.com/mrlokans/linebook/internal/entities"
)

type BookExporter interface {
	Export(books []entities.Book) (ExportResult, error)
}

// BookReader loads books for export.
type BookReader interface {
	ListBooks(ctx context.Context, userID string) ([]entities.BookSummary, error)
	GetBook(ctx context.Context, userID, bookID string) (*entities.Book, error)
}

type ExportResult struct {
	BooksProcessed int      `json:"books_processed"`
	BooksFailed    int      `json:"books_failed"`
	GamesWritten   int      `json:"games_written"`
	Files          []string `json:"files"`
}
