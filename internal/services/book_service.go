package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/logger"
	"github.com/mrlokans/linebook/internal/nodecodec"
	"github.com/mrlokans/linebook/internal/selection"
)

var (
	ErrBookExists     = errors.New("book already exists")
	ErrNotOpeningBook = errors.New("lines can only be added to opening books")
	ErrInvalidLine    = errors.New("invalid line")
)

// SyncResult reports how a book update propagated to dependent trainings.
type SyncResult struct {
	BookID string `json:"book_id"`
	Delta  int    `json:"delta"`
	// Updated lists trainings whose total line count moved by Delta.
	Updated []string `json:"updated"`
	// Frozen lists trainings that select the book but have already started it.
	Frozen []string            `json:"frozen"`
	Failed []TrainingSyncError `json:"failed"`
}

// TrainingSyncError is a counter update that did not go through.
type TrainingSyncError struct {
	TrainingID string `json:"training_id"`
	Error      string `json:"error"`
}

// BookService saves books and keeps the cached total line counts of
// trainings in step with them.
type BookService struct {
	books     BookStore
	trainings TrainingStore
	auditor   Auditor
	log       *logger.Logger
}

// NewBookService creates a BookService. A nil auditor or logger discards.
func NewBookService(books BookStore, trainings TrainingStore, auditor Auditor, log *logger.Logger) *BookService {
	if auditor == nil {
		auditor = NopAuditor{}
	}
	return &BookService{
		books:     books,
		trainings: trainings,
		auditor:   auditor,
		log:       logger.OrNop(log),
	}
}

func (s *BookService) ListBooks(ctx context.Context, userID string) ([]entities.BookSummary, error) {
	return s.books.ListBooks(ctx, userID)
}

func (s *BookService) GetBook(ctx context.Context, userID, bookID string) (*entities.Book, error) {
	return s.books.GetBook(ctx, userID, bookID)
}

func (s *BookService) GetBookSummary(ctx context.Context, userID, bookID string) (*entities.BookSummary, error) {
	return s.books.GetBookSummary(ctx, userID, bookID)
}

// CreateBook stores a new book, assigning an id when it has none. Trainings
// whose selection already covers the new book get its lines added. A
// caller-supplied id that is already taken fails with ErrBookExists and
// writes nothing.
func (s *BookService) CreateBook(ctx context.Context, userID string, book *entities.Book) (SyncResult, error) {
	if book.ID == "" {
		book.ID = uuid.NewString()
	} else {
		existing, err := s.books.GetBookSummary(ctx, userID, book.ID)
		if err != nil {
			return SyncResult{BookID: book.ID}, err
		}
		if existing != nil {
			return SyncResult{BookID: book.ID}, fmt.Errorf("%w: %s", ErrBookExists, book.ID)
		}
	}
	return s.UpdateBook(ctx, userID, book, 0)
}

// AddLine merges a sequence of moves into an opening book's tree, starting
// from the book's position, and saves it through UpdateBook so trainings
// pick up any new lines. Moves already in the tree are followed, not
// duplicated. A nil book means bookID does not exist.
func (s *BookService) AddLine(ctx context.Context, userID, bookID string, moves []string) (*entities.Book, SyncResult, error) {
	result := SyncResult{BookID: bookID}
	if len(moves) == 0 {
		return nil, result, fmt.Errorf("%w: no moves", ErrInvalidLine)
	}
	for _, m := range moves {
		if strings.TrimSpace(m) == "" || strings.ContainsAny(m, " \t\n") {
			return nil, result, fmt.Errorf("%w: bad move %q", ErrInvalidLine, m)
		}
	}

	book, err := s.books.GetBook(ctx, userID, bookID)
	if err != nil || book == nil {
		return nil, result, err
	}
	if book.Type != entities.BookTypeOpening {
		return nil, result, fmt.Errorf("%w: %s", ErrNotOpeningBook, bookID)
	}

	oldLineCount := book.LineCount
	if book.RootNode == nil {
		book.RootNode = &entities.Node{}
	}
	node := book.RootNode
	for _, m := range moves {
		next := node.Child(m)
		if next == nil {
			next = &entities.Node{Move: m}
			node.Children = append(node.Children, next)
		}
		node = next
	}
	book.LineCount = nodecodec.CalcNodeInfo(book.RootNode).LineCount

	result, err = s.UpdateBook(ctx, userID, book, oldLineCount)
	return book, result, err
}

// UpdateBook saves book and applies lineCount - oldLineCount to the total
// line count of every training that selects the book and has not started
// drilling it.
//
// The counter updates are independent of the book write and of each other.
// A failed update is logged, audited and reported in the result, but does
// not fail the call and is not retried. Only failures to save the book or
// to read the book and training lists are returned as errors.
func (s *BookService) UpdateBook(ctx context.Context, userID string, book *entities.Book, oldLineCount int) (SyncResult, error) {
	result := SyncResult{BookID: book.ID, Delta: book.LineCount - oldLineCount}

	err := s.books.PutBook(ctx, userID, book)
	s.auditor.LogBookSave(userID, book.Summary(), oldLineCount, err)
	if err != nil {
		return result, err
	}

	allBooks, err := s.books.ListBooks(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("book saved but counters not synced: %w", err)
	}

	if result.Delta == 0 {
		return result, nil
	}

	trainings, err := s.trainings.ListTraining(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("book saved but counters not synced: %w", err)
	}

	for _, t := range trainings {
		if !selection.Contains(allBooks, t.Selection, book.ID) {
			continue
		}
		if t.HasStarted(book.ID) {
			result.Frozen = append(result.Frozen, t.ID)
			continue
		}

		err := s.trainings.IncrementTotalLines(ctx, userID, t.ID, result.Delta)
		if err != nil {
			s.log.Warn("failed to sync training total lines",
				"user_id", userID, "training_id", t.ID, "book_id", book.ID, "delta", result.Delta, "error", err)
			s.auditor.LogCounterSync(userID, t.ID, book.ID, result.Delta, err)
			result.Failed = append(result.Failed, TrainingSyncError{TrainingID: t.ID, Error: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, t.ID)
	}

	s.log.Debug("book saved",
		"user_id", userID, "book_id", book.ID, "delta", result.Delta,
		"updated", len(result.Updated), "frozen", len(result.Frozen), "failed", len(result.Failed))
	return result, nil
}

// DeleteBook removes a book and its trees. Training totals are left as they are.
func (s *BookService) DeleteBook(ctx context.Context, userID, bookID string) error {
	err := s.books.DeleteBook(ctx, userID, bookID)
	s.auditor.LogBookDelete(userID, bookID, err)
	return err
}
