package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linebook/internal/database/books"
	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/exporters"
	"github.com/mrlokans/linebook/internal/logger"
	"github.com/mrlokans/linebook/internal/services"
)

const pgnContentType = "application/x-chess-pgn; charset=utf-8"

// BookWriteResponse is returned by create and update: the stored summary
// and what happened to the training counters.
type BookWriteResponse struct {
	Book entities.BookSummary `json:"book"`
	Sync services.SyncResult  `json:"sync"`
}

type BooksController struct {
	books BookService
	log   *logger.Logger
}

func NewBooksController(books BookService, log *logger.Logger) *BooksController {
	return &BooksController{
		books: books,
		log:   logger.OrNop(log),
	}
}

// ListBooks returns the summaries of a user's books.
// GET /api/users/:userId/books
func (controller *BooksController) ListBooks(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}

	list, err := controller.books.ListBooks(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, controller.log, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": list, "count": len(list)})
}

// CreateBook stores a new book. The line count is always recomputed from
// the submitted trees.
// POST /api/users/:userId/books
func (controller *BooksController) CreateBook(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}

	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	books.RefreshLineCount(&book)

	result, err := controller.books.CreateBook(c.Request.Context(), userID, &book)
	if err != nil {
		controller.respondWriteError(c, err, "create book")
		return
	}
	respondCreated(c, BookWriteResponse{Book: book.Summary(), Sync: result})
}

// GetBook returns a book with its trees.
// GET /api/users/:userId/books/:bookId
func (controller *BooksController) GetBook(c *gin.Context) {
	book, ok := controller.loadBook(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// UpdateBook replaces an existing book and syncs the training counters with
// the line count difference.
// PUT /api/users/:userId/books/:bookId
func (controller *BooksController) UpdateBook(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}
	bookID, ok := requireParam(c, "bookId")
	if !ok {
		return
	}

	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book payload: "+err.Error())
		return
	}
	book.ID = bookID

	stored, err := controller.books.GetBookSummary(c.Request.Context(), userID, bookID)
	if err != nil {
		respondInternalError(c, controller.log, err, "load book summary")
		return
	}
	if stored == nil {
		respondNotFound(c, "book")
		return
	}

	books.RefreshLineCount(&book)
	result, err := controller.books.UpdateBook(c.Request.Context(), userID, &book, stored.LineCount)
	if err != nil {
		controller.respondWriteError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, BookWriteResponse{Book: book.Summary(), Sync: result})
}

// DeleteBook removes a book and its trees.
// DELETE /api/users/:userId/books/:bookId
func (controller *BooksController) DeleteBook(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}
	bookID, ok := requireParam(c, "bookId")
	if !ok {
		return
	}

	if err := controller.books.DeleteBook(c.Request.Context(), userID, bookID); err != nil {
		respondInternalError(c, controller.log, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

// ExportPGN renders a book as a PGN download.
// GET /api/users/:userId/books/:bookId/pgn
func (controller *BooksController) ExportPGN(c *gin.Context) {
	book, ok := controller.loadBook(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporters.FileName(book)))
	c.Data(http.StatusOK, pgnContentType, []byte(exporters.GeneratePGN(book)))
}

// AddLineRequest is the body of AddLine.
type AddLineRequest struct {
	Moves []string `json:"moves" binding:"required"`
}

// AddLine merges a line of moves into an opening book and syncs the training
// counters with any new lines.
// POST /api/users/:userId/books/:bookId/lines
func (controller *BooksController) AddLine(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}
	bookID, ok := requireParam(c, "bookId")
	if !ok {
		return
	}

	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid line payload: "+err.Error())
		return
	}

	book, result, err := controller.books.AddLine(c.Request.Context(), userID, bookID, req.Moves)
	if err != nil {
		controller.respondWriteError(c, err, "add line")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}
	c.JSON(http.StatusOK, BookWriteResponse{Book: book.Summary(), Sync: result})
}

func (controller *BooksController) loadBook(c *gin.Context) (*entities.Book, bool) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return nil, false
	}
	bookID, ok := requireParam(c, "bookId")
	if !ok {
		return nil, false
	}

	book, err := controller.books.GetBook(c.Request.Context(), userID, bookID)
	if err != nil {
		respondInternalError(c, controller.log, err, "get book")
		return nil, false
	}
	if book == nil {
		respondNotFound(c, "book")
		return nil, false
	}
	return book, true
}

func (controller *BooksController) respondWriteError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, services.ErrBookExists):
		respondConflict(c, err.Error())
	case errors.Is(err, books.ErrInvalidBook),
		errors.Is(err, services.ErrInvalidLine),
		errors.Is(err, services.ErrNotOpeningBook):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, controller.log, err, context)
	}
}
