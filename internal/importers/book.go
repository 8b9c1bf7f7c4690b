package importers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mrlokans/linebook/internal/entities"
)

const defaultBookName = "Imported book"

// The exporter names endgame games "<book> - <n>".
var gameSuffixPattern = regexp.MustCompile(`\s+-\s+\d+$`)

// Options override what BookFromPGN would otherwise read from the PGN.
type Options struct {
	Type  entities.BookType `json:"type,omitempty"`
	Name  string            `json:"name,omitempty"`
	Color entities.Color    `json:"color,omitempty"`
}

// BookFromPGN parses text and builds one book from its games. The book has
// no id and its line counts are not computed.
func BookFromPGN(text string, opts Options) (*entities.Book, error) {
	games, err := ParsePGN(text)
	if err != nil {
		return nil, err
	}
	return buildBook(games, opts)
}

func buildBook(games []Game, opts Options) (*entities.Book, error) {
	if len(games) == 0 {
		return nil, ErrNoGames
	}

	bookType := opts.Type
	if bookType == "" {
		bookType = inferType(games)
	}

	switch bookType {
	case entities.BookTypeOpening:
		return openingBook(games, opts)
	case entities.BookTypeEndgame:
		return endgameBook(games, opts)
	default:
		return nil, fmt.Errorf("%w: unknown book type %q", ErrInvalidPGN, bookType)
	}
}

func inferType(games []Game) entities.BookType {
	fen := games[0].Tags["FEN"]
	for _, g := range games[1:] {
		if g.Tags["FEN"] != fen {
			return entities.BookTypeEndgame
		}
	}
	return entities.BookTypeOpening
}

func openingBook(games []Game, opts Options) (*entities.Book, error) {
	fen := games[0].Tags["FEN"]
	root := games[0].Root
	for i, g := range games[1:] {
		if g.Tags["FEN"] != fen {
			return nil, fmt.Errorf("%w: game %d starts from a different position", ErrInvalidPGN, i+2)
		}
		mergeTree(root, g.Root)
	}

	color := opts.Color
	if color == "" {
		color = sideToMove(fen)
	}
	return &entities.Book{
		Type:     entities.BookTypeOpening,
		Name:     bookName(opts.Name, games[0].Tags["Event"]),
		Color:    color,
		Position: fen,
		RootNode: root,
	}, nil
}

func endgameBook(games []Game, opts Options) (*entities.Book, error) {
	book := &entities.Book{
		Type: entities.BookTypeEndgame,
		Name: bookName(opts.Name, gameSuffixPattern.ReplaceAllString(games[0].Tags["Event"], "")),
	}
	for i, g := range games {
		fen := g.Tags["FEN"]
		if fen == "" {
			return nil, fmt.Errorf("%w: game %d has no FEN", ErrInvalidPGN, i+1)
		}
		root := g.Root
		comment := root.Comment
		root.Comment = ""
		book.Positions = append(book.Positions, entities.EndgamePosition{
			ID:       strconv.Itoa(i + 1),
			Position: fen,
			Color:    sideToMove(fen),
			Comment:  comment,
			RootNode: root,
		})
	}
	return book, nil
}

func bookName(override, event string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	if event = strings.TrimSpace(event); event != "" && event != "?" {
		return event
	}
	return defaultBookName
}

func sideToMove(fen string) entities.Color {
	fields := strings.Fields(fen)
	if len(fields) > 1 && fields[1] == "b" {
		return entities.ColorBlack
	}
	return entities.ColorWhite
}

// mergeTree folds src into dst. Moves already in dst are followed; new ones
// are appended after the existing siblings.
func mergeTree(dst, src *entities.Node) {
	dst.Nags = mergeNags(dst.Nags, src.Nags)
	if dst.Comment == "" {
		dst.Comment = src.Comment
	}
	if dst.Annotations == nil {
		dst.Annotations = src.Annotations
	}
	for _, c := range src.Children {
		if existing := dst.Child(c.Move); existing != nil {
			mergeTree(existing, c)
			continue
		}
		dst.Children = append(dst.Children, c)
	}
}
