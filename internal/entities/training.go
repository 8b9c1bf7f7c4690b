package entities

import (
	"encoding/json"
	"slices"
)

type SelectionType string

const (
	SelectionAll           SelectionType = "all"
	SelectionOpenings      SelectionType = "openings"
	SelectionWhiteOpenings SelectionType = "white-openings"
	SelectionBlackOpenings SelectionType = "black-openings"
	SelectionEndgames      SelectionType = "endgames"
	SelectionBooks         SelectionType = "books"
)

// TrainingSelection describes which books a training drills.
type TrainingSelection struct {
	Type    SelectionType `json:"type"`
	BookIDs []string      `json:"book_ids,omitempty"` // SelectionBooks only
}

// Training is a practice session configuration over a set of books.
//
// TotalLines caches the sum of LineCount over the selected books. It is kept
// in sync by the book service when books change, except for books listed in
// StartedBooks: once a training has begun drilling a book, edits to that
// book no longer move the training's total.
type Training struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	Name           string            `json:"name"`
	Selection      TrainingSelection `json:"selection"`
	Position       json.RawMessage   `json:"position,omitempty"` // cursor owned by the training reducer
	CorrectCount   int               `json:"correct_count"`
	IncorrectCount int               `json:"incorrect_count"`
	LinesTrained   int               `json:"lines_trained"`
	TotalLines     int               `json:"total_lines"`
	StartedBooks   []string          `json:"started_books"`
	Shuffle        bool              `json:"shuffle"`
}

// HasStarted reports whether the training has begun drilling bookID.
func (t *Training) HasStarted(bookID string) bool {
	return slices.Contains(t.StartedBooks, bookID)
}

// Summary projects the training onto its listing fields.
func (t *Training) Summary() TrainingSummary {
	return TrainingSummary{
		ID:             t.ID,
		UserID:         t.UserID,
		Name:           t.Name,
		Selection:      t.Selection,
		CorrectCount:   t.CorrectCount,
		IncorrectCount: t.IncorrectCount,
		LinesTrained:   t.LinesTrained,
		TotalLines:     t.TotalLines,
		StartedBooks:   t.StartedBooks,
		Shuffle:        t.Shuffle,
	}
}

// TrainingSummary is the listing projection of a Training.
type TrainingSummary struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	Name           string            `json:"name"`
	Selection      TrainingSelection `json:"selection"`
	CorrectCount   int               `json:"correct_count"`
	IncorrectCount int               `json:"incorrect_count"`
	LinesTrained   int               `json:"lines_trained"`
	TotalLines     int               `json:"total_lines"`
	StartedBooks   []string          `json:"started_books"`
	Shuffle        bool              `json:"shuffle"`
}

// HasStarted reports whether the training has begun drilling bookID.
func (t *TrainingSummary) HasStarted(bookID string) bool {
	return slices.Contains(t.StartedBooks, bookID)
}

// TrainingSummaryFields is the attribute allow-list read when listing trainings.
var TrainingSummaryFields = []string{
	"id", "user_id", "name", "selection", "correct_count",
	"incorrect_count", "lines_trained", "total_lines", "started_books", "shuffle",
}

// TrainingTotalLinesField is the counter attribute adjusted by line-count sync.
const TrainingTotalLinesField = "total_lines"

// TrainingActivity records the outcome of one training session.
// (UserID, Timestamp) is its identity; Timestamp is Unix milliseconds.
type TrainingActivity struct {
	UserID         string `json:"user_id"`
	Timestamp      int64  `json:"timestamp"`
	Name           string `json:"name"`
	CorrectCount   int    `json:"correct_count"`
	IncorrectCount int    `json:"incorrect_count"`
}
