package exporters

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/logger"
	"github.com/mrlokans/linebook/internal/utils"
)

// PGNFileExporter writes one .pgn file per book into ExportDir.
type PGNFileExporter struct {
	ExportDir string
	log       *logger.Logger
}

func NewPGNFileExporter(exportDir string, log *logger.Logger) *PGNFileExporter {
	return &PGNFileExporter{ExportDir: exportDir, log: logger.OrNop(log)}
}

// FileName is the file a book is exported to, without directory.
func FileName(book *entities.Book) string {
	return utils.SanitizeFilename(book.Name) + ".pgn"
}

func (e *PGNFileExporter) Export(books []entities.Book) (ExportResult, error) {
	result := ExportResult{}
	if err := os.MkdirAll(e.ExportDir, 0755); err != nil {
		return result, fmt.Errorf("failed to create export directory: %w", err)
	}

	used := make(map[string]bool, len(books))
	for i := range books {
		book := &books[i]
		name := FileName(book)
		if used[name] {
			name = utils.SanitizeFilename(book.Name+" "+book.ID) + ".pgn"
		}
		used[name] = true

		path := filepath.Join(e.ExportDir, name)
		if err := os.WriteFile(path, []byte(GeneratePGN(book)), 0644); err != nil {
			e.log.Warn("failed to write pgn file", "book_id", book.ID, "path", path, "error", err)
			result.BooksFailed++
			continue
		}
		result.BooksProcessed++
		result.GamesWritten += GameCount(book)
		result.Files = append(result.Files, path)
	}
	return result, nil
}

var _ BookExporter = (*PGNFileExporter)(nil)
