package exporters

import (
	"context"
	"fmt"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/logger"
)

// StorePGNExporter loads every book of a user from the store and writes
// them as PGN files.
type StorePGNExporter struct {
	reader BookReader
	files  *PGNFileExporter
	log    *logger.Logger
}

func NewStorePGNExporter(reader BookReader, exportDir string, log *logger.Logger) *StorePGNExporter {
	log = logger.OrNop(log)
	return &StorePGNExporter{
		reader: reader,
		files:  NewPGNFileExporter(exportDir, log),
		log:    log,
	}
}

// ExportUser exports all books of userID. Books that fail to load are
// counted as failed and skipped.
func (e *StorePGNExporter) ExportUser(ctx context.Context, userID string) (ExportResult, error) {
	summaries, err := e.reader.ListBooks(ctx, userID)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to list books: %w", err)
	}

	loadFailures := 0
	books := make([]entities.Book, 0, len(summaries))
	for _, s := range summaries {
		book, err := e.reader.GetBook(ctx, userID, s.ID)
		if err != nil || book == nil {
			e.log.Warn("failed to load book for export", "user_id", userID, "book_id", s.ID, "error", err)
			loadFailures++
			continue
		}
		books = append(books, *book)
	}

	result, err := e.files.Export(books)
	result.BooksFailed += loadFailures
	if err != nil {
		return result, err
	}

	e.log.Info("export completed",
		"user_id", userID, "books", result.BooksProcessed, "failed", result.BooksFailed, "games", result.GamesWritten)
	return result, nil
}
