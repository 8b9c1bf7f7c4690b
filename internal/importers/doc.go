// Package importers turns PGN text into books and saves them.
//
// # Flow
//
//	PGN text → ParsePGN → []Game → BookFromPGN → entities.Book → Pipeline → BookService.CreateBook
//
// ParsePGN reads any number of games, including nested variations, NAGs
// ("$1" or suffixes like "!?"), comments and the [%csl]/[%cal] board
// annotation commands written by the PGN exporter.
//
// BookFromPGN folds the games into one book. An opening book merges every
// game into a single tree; all games must start from the same position. An
// endgame book gets one position per game. When no type is given, a PGN
// whose games all share a starting position is read as an opening book and
// anything else as an endgame book.
//
// The Pipeline recomputes line counts and stores the book through the book
// service, so trainings that already select the new book are updated.
//
// # Example Usage
//
//	pipeline := importers.NewPipeline(bookService, log)
//	result, err := pipeline.ImportPGN(ctx, userID, pgnText, importers.Options{})
package importers
