package exporters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrlokans/linebook/internal/entities"
)

// GeneratePGN renders a book as PGN. An opening book becomes one game; an
// endgame book becomes one game per position. Variations are nested in
// parentheses and board annotations are written as [%csl]/[%cal] comment
// commands.
func GeneratePGN(book *entities.Book) string {
	var b strings.Builder
	switch book.Type {
	case entities.BookTypeOpening:
		writeGame(&b, book.Name, book.Position, "", book.RootNode)
	case entities.BookTypeEndgame:
		for i, p := range book.Positions {
			if i > 0 {
				b.WriteString("\n")
			}
			event := fmt.Sprintf("%s - %d", book.Name, i+1)
			writeGame(&b, event, p.Position, p.Comment, p.RootNode)
		}
	}
	return b.String()
}

// GameCount is the number of games GeneratePGN writes for book.
func GameCount(book *entities.Book) int {
	if book.Type == entities.BookTypeEndgame {
		return len(book.Positions)
	}
	return 1
}

func writeGame(b *strings.Builder, event, fen, lead string, root *entities.Node) {
	writeTag(b, "Event", event)
	writeTag(b, "Result", "*")
	if fen != "" {
		writeTag(b, "SetUp", "1")
		writeTag(b, "FEN", fen)
	}
	b.WriteString("\n")

	var tokens []string
	var rootComment string
	var rootAnnotations *entities.Annotations
	if root != nil {
		rootComment, rootAnnotations = root.Comment, root.Annotations
	}
	if c := comment(joinText(lead, rootComment), rootAnnotations); c != "" {
		tokens = append(tokens, c)
	}
	if root != nil {
		tokens = append(tokens, line(root, startPly(fen), true)...)
	}
	tokens = append(tokens, "*")

	b.WriteString(strings.Join(tokens, " "))
	b.WriteString("\n")
}

func writeTag(b *strings.Builder, name, value string) {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	fmt.Fprintf(b, "[%s \"%s\"]\n", name, value)
}

// startPly is the half-move index of the side to move in fen, counted from
// white's first move. An empty or malformed FEN starts at white's move 1.
func startPly(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return 0
	}
	fullmove, err := strconv.Atoi(fields[5])
	if err != nil || fullmove < 1 {
		fullmove = 1
	}
	ply := (fullmove - 1) * 2
	if fields[1] == "b" {
		ply++
	}
	return ply
}

// line renders the continuation below parent. The first child is the main
// line; every other child is written as a variation right after it.
func line(parent *entities.Node, ply int, numbered bool) []string {
	var out []string
	for len(parent.Children) > 0 {
		main := parent.Children[0]
		out = append(out, move(main, ply, numbered)...)
		numbered = hasComment(main)

		for _, alt := range parent.Children[1:] {
			v := move(alt, ply, true)
			v = append(v, line(alt, ply+1, hasComment(alt))...)
			out = append(out, "("+strings.Join(v, " ")+")")
			numbered = true
		}

		parent = main
		ply++
	}
	return out
}

// move renders one move with its number, NAGs and comment. Black moves only
// carry a number when numbered is set.
func move(n *entities.Node, ply int, numbered bool) []string {
	var out []string
	number := ply/2 + 1
	if ply%2 == 0 {
		out = append(out, fmt.Sprintf("%d.", number))
	} else if numbered {
		out = append(out, fmt.Sprintf("%d...", number))
	}
	out = append(out, n.Move)
	for _, nag := range n.Nags {
		out = append(out, fmt.Sprintf("$%d", nag))
	}
	if c := comment(n.Comment, n.Annotations); c != "" {
		out = append(out, c)
	}
	return out
}

func hasComment(n *entities.Node) bool {
	return comment(n.Comment, n.Annotations) != ""
}

func comment(text string, a *entities.Annotations) string {
	var parts []string
	if t := strings.TrimSpace(strings.ReplaceAll(text, "}", "")); t != "" {
		parts = append(parts, t)
	}
	if a != nil {
		if len(a.Squares) > 0 {
			parts = append(parts, "[%csl "+strings.Join(a.Squares, ",")+"]")
		}
		if len(a.Arrows) > 0 {
			parts = append(parts, "[%cal "+strings.Join(a.Arrows, ",")+"]")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func joinText(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
