package entities

type BookType string

const (
	BookTypeOpening BookType = "opening"
	BookTypeEndgame BookType = "endgame"
)

type Color string

const (
	ColorWhite Color = "w"
	ColorBlack Color = "b"
)

// Book is a named collection of opening or endgame lines.
//
// Opening books carry a single move tree in RootNode, rooted at Position.
// Endgame books carry one tree per entry in Positions. The trees are never
// stored inline: the book repository strips them before writing the book
// record and persists them as SplitNode rows instead.
type Book struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Type      BookType `json:"type"`
	Name      string   `json:"name"`
	LineCount int      `json:"line_count"`

	// Opening books
	Color        Color    `json:"color,omitempty"`
	InitialMoves []string `json:"initial_moves,omitempty"`
	Position     string   `json:"position,omitempty"` // FEN after InitialMoves
	RootNode     *Node    `json:"root_node,omitempty"`

	// Endgame books
	Positions []EndgamePosition `json:"positions,omitempty"`
}

// EndgamePosition is one starting position of an endgame book.
type EndgamePosition struct {
	ID        string `json:"id"`
	Position  string `json:"position"` // FEN
	Color     Color  `json:"color"`
	Comment   string `json:"comment,omitempty"`
	LineCount int    `json:"line_count"`
	RootNode  *Node  `json:"root_node,omitempty"`
}

// BookSummary is the listing projection of a Book; it never carries trees.
type BookSummary struct {
	ID           string   `json:"id"`
	UserID       string   `json:"user_id"`
	Type         BookType `json:"type"`
	Name         string   `json:"name"`
	LineCount    int      `json:"line_count"`
	Color        Color    `json:"color,omitempty"`
	InitialMoves []string `json:"initial_moves,omitempty"`
}

// BookSummaryFields is the attribute allow-list read when listing books.
var BookSummaryFields = []string{"id", "user_id", "type", "name", "line_count", "color", "initial_moves"}

// Summary projects the book onto its listing fields.
func (b *Book) Summary() BookSummary {
	return BookSummary{
		ID:           b.ID,
		UserID:       b.UserID,
		Type:         b.Type,
		Name:         b.Name,
		LineCount:    b.LineCount,
		Color:        b.Color,
		InitialMoves: b.InitialMoves,
	}
}

// Annotations are board drawings attached to a node. Arrows are encoded as
// brush+from+to ("Ge2e4") and squares as brush+square ("Rd4").
type Annotations struct {
	Arrows  []string `json:"arrows"`
	Squares []string `json:"squares"`
}

// Node is one move in a book's move tree. Children are ordered; the first
// child is the main line. Sibling moves are unique.
type Node struct {
	Move        string       `json:"move,omitempty"` // empty for the root
	Nags        []int        `json:"nags,omitempty"`
	Comment     string       `json:"comment,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
	Children    []*Node      `json:"children,omitempty"`
}

// Child returns the child node reached by move, or nil.
func (n *Node) Child(move string) *Node {
	for _, c := range n.Children {
		if c.Move == move {
			return c
		}
	}
	return nil
}

// SplitNode is a single tree node flattened into an independently
// addressable record. Parent/child links are expressed through NodeID and
// ParentID; Index keeps sibling order.
type SplitNode struct {
	NodeID      string       `json:"node_id"`
	ParentID    string       `json:"parent_id,omitempty"`
	Index       int          `json:"index"`
	Position    string       `json:"position,omitempty"` // root records only
	Move        string       `json:"move,omitempty"`
	Nags        []int        `json:"nags"` // empty and nil must both survive storage
	Comment     string       `json:"comment,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
}
