// Package selection resolves which books a training drills.
package selection

import "github.com/mrlokans/linebook/internal/entities"

// BooksForTraining returns the books matched by sel. For SelectionBooks the
// result follows the order of sel.BookIDs and skips ids that no longer exist;
// otherwise it keeps the order of books. Unknown selection types match nothing.
func BooksForTraining(books []entities.BookSummary, sel entities.TrainingSelection) []entities.BookSummary {
	if sel.Type == entities.SelectionBooks {
		byID := make(map[string]entities.BookSummary, len(books))
		for _, b := range books {
			byID[b.ID] = b
		}
		var out []entities.BookSummary
		for _, id := range sel.BookIDs {
			if b, ok := byID[id]; ok {
				out = append(out, b)
			}
		}
		return out
	}

	var out []entities.BookSummary
	for _, b := range books {
		if matches(b, sel.Type) {
			out = append(out, b)
		}
	}
	return out
}

// Contains reports whether bookID is among the books matched by sel.
func Contains(books []entities.BookSummary, sel entities.TrainingSelection, bookID string) bool {
	for _, b := range BooksForTraining(books, sel) {
		if b.ID == bookID {
			return true
		}
	}
	return false
}

// TotalLines sums the line counts of the matched books.
func TotalLines(books []entities.BookSummary, sel entities.TrainingSelection) int {
	total := 0
	for _, b := range BooksForTraining(books, sel) {
		total += b.LineCount
	}
	return total
}

// Valid reports whether sel names a known selection type.
func Valid(sel entities.TrainingSelection) bool {
	switch sel.Type {
	case entities.SelectionAll, entities.SelectionOpenings, entities.SelectionWhiteOpenings,
		entities.SelectionBlackOpenings, entities.SelectionEndgames:
		return true
	case entities.SelectionBooks:
		return len(sel.BookIDs) > 0
	}
	return false
}

func matches(b entities.BookSummary, t entities.SelectionType) bool {
	switch t {
	case entities.SelectionAll:
		return true
	case entities.SelectionOpenings:
		return b.Type == entities.BookTypeOpening
	case entities.SelectionWhiteOpenings:
		return b.Type == entities.BookTypeOpening && b.Color == entities.ColorWhite
	case entities.SelectionBlackOpenings:
		return b.Type == entities.BookTypeOpening && b.Color == entities.ColorBlack
	case entities.SelectionEndgames:
		return b.Type == entities.BookTypeEndgame
	}
	return false
}
