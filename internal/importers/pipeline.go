package importers

import (
	"context"

	"github.com/mrlokans/linebook/internal/database/books"
	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/logger"
	"github.com/mrlokans/linebook/internal/services"
)

// BookCreator stores new books and syncs training counters.
type BookCreator interface {
	CreateBook(ctx context.Context, userID string, book *entities.Book) (services.SyncResult, error)
}

// ImportResult describes one imported book.
type ImportResult struct {
	Book  entities.BookSummary `json:"book"`
	Games int                  `json:"games"`
	Sync  services.SyncResult  `json:"sync"`
}

// Pipeline handles the import workflow: parse → build book → count lines → save.
type Pipeline struct {
	books BookCreator
	log   *logger.Logger
}

// NewPipeline creates a new import pipeline saving through creator.
func NewPipeline(creator BookCreator, log *logger.Logger) *Pipeline {
	return &Pipeline{books: creator, log: logger.OrNop(log)}
}

// ImportPGN stores the PGN text as a new book of userID under a fresh id.
func (p *Pipeline) ImportPGN(ctx context.Context, userID, text string, opts Options) (ImportResult, error) {
	games, err := ParsePGN(text)
	if err != nil {
		return ImportResult{}, err
	}
	book, err := buildBook(games, opts)
	if err != nil {
		return ImportResult{}, err
	}
	books.RefreshLineCount(book)

	result, err := p.books.CreateBook(ctx, userID, book)
	if err != nil {
		return ImportResult{}, err
	}

	p.log.Info("pgn imported",
		"user_id", userID, "book_id", book.ID, "type", book.Type, "games", len(games), "lines", book.LineCount)
	return ImportResult{Book: book.Summary(), Games: len(games), Sync: result}, nil
}
