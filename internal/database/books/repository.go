// Package books persists Book aggregates in the key-value store.
//
// A book is stored as two kinds of items: the book record itself in the
// "book" table, keyed by (userID, bookID), and one flattened node record per
// tree node in the "book_node" table, keyed by ("userID:bookID", nodeID).
// Trees are never stored inline on the book record.
//
// The store has no multi-item transactions. Every replacement deletes the old
// node records before any new item is written, and the writes are issued as
// sequential batches of at most kvstore.MaxBatchSize requests. A failure part
// way through leaves the book partially written; nothing is rolled back.
//
// # Interface Implementation
//
//	var _ services.BookStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(kv)
//	book, err := repo.GetBook(ctx, "user-1", "book-1")
package books

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/kvstore"
	"github.com/mrlokans/linebook/internal/nodecodec"
)

const (
	BookTable = "book"
	NodeTable = "book_node"
)

// ErrInvalidBook marks a book rejected before anything was written.
var ErrInvalidBook = errors.New("invalid book")

// nodeIDField is the only attribute read when collecting node keys for deletion.
const nodeIDField = "node_id"

// Repository handles book and book node persistence.
type Repository struct {
	kv kvstore.Client
}

// NewRepository creates a new books repository.
func NewRepository(kv kvstore.Client) *Repository {
	return &Repository{kv: kv}
}

// NodePartition is the partition key shared by all node records of one book.
func NodePartition(userID, bookID string) string {
	return userID + ":" + bookID
}

func bookKey(userID, bookID string) kvstore.Key {
	return kvstore.Key{Partition: userID, Sort: bookID}
}

// ListBooks returns the summaries of every book owned by userID.
func (r *Repository) ListBooks(ctx context.Context, userID string) ([]entities.BookSummary, error) {
	items, err := r.kv.Query(ctx, BookTable, userID, kvstore.QueryOptions{Projection: entities.BookSummaryFields})
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	summaries := make([]entities.BookSummary, 0, len(items))
	for _, item := range items {
		var s entities.BookSummary
		if err := kvstore.Unmarshal(item, &s); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// PutBook replaces the stored book and all of its node records.
//
// The old node records are deleted first, then the book record is written,
// then the new node records follow in sequential chunks.
func (r *Repository) PutBook(ctx context.Context, userID string, book *entities.Book) error {
	if book == nil || book.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidBook)
	}

	record, nodes, err := flatten(userID, book)
	if err != nil {
		return err
	}

	if err := r.deleteBookNodes(ctx, userID, book.ID); err != nil {
		return err
	}

	item, err := kvstore.Marshal(bookKey(userID, book.ID), record)
	if err != nil {
		return err
	}
	if err := r.kv.Put(ctx, BookTable, item); err != nil {
		return fmt.Errorf("failed to save book %s: %w", book.ID, err)
	}

	partition := NodePartition(userID, book.ID)
	reqs := make([]kvstore.WriteRequest, 0, len(nodes))
	for _, n := range nodes {
		item, err := kvstore.Marshal(kvstore.Key{Partition: partition, Sort: n.NodeID}, n)
		if err != nil {
			return err
		}
		reqs = append(reqs, kvstore.PutRequest(item))
	}
	if err := kvstore.WriteChunked(ctx, r.kv, NodeTable, reqs); err != nil {
		return fmt.Errorf("failed to save nodes of book %s: %w", book.ID, err)
	}
	return nil
}

// flatten splits the book into the tree-less record to store and its node
// records. It fails before anything is written if a node has two children
// with the same move or two positions share an id.
func flatten(userID string, book *entities.Book) (entities.Book, []entities.SplitNode, error) {
	record := *book
	record.UserID = userID
	record.RootNode = nil

	var nodes []entities.SplitNode
	switch book.Type {
	case entities.BookTypeOpening:
		if move, dup := nodecodec.DuplicateMove(book.RootNode); dup {
			return entities.Book{}, nil, fmt.Errorf("%w: book %s has duplicate move %s", ErrInvalidBook, book.ID, move)
		}
		nodes = nodecodec.SplitNode(book.Position, book.RootNode, nodecodec.OpeningRootID)
	case entities.BookTypeEndgame:
		record.Positions = make([]entities.EndgamePosition, len(book.Positions))
		for i, p := range book.Positions {
			if move, dup := nodecodec.DuplicateMove(p.RootNode); dup {
				return entities.Book{}, nil, fmt.Errorf("%w: position %s of book %s has duplicate move %s", ErrInvalidBook, p.ID, book.ID, move)
			}
			nodes = append(nodes, nodecodec.SplitNode(p.Position, p.RootNode, nodecodec.EndgameRootID(p.ID))...)
			p.RootNode = nil
			record.Positions[i] = p
		}
	default:
		return entities.Book{}, nil, fmt.Errorf("%w: unknown type %q", ErrInvalidBook, book.Type)
	}

	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if _, dup := seen[n.NodeID]; dup {
			return entities.Book{}, nil, fmt.Errorf("%w: book %s has duplicate node %s", ErrInvalidBook, book.ID, n.NodeID)
		}
		seen[n.NodeID] = struct{}{}
	}
	return record, nodes, nil
}

// GetBook loads a book with its trees. It returns (nil, nil) when the book
// does not exist. A failure reading the node records fails the whole call.
func (r *Repository) GetBook(ctx context.Context, userID, bookID string) (*entities.Book, error) {
	item, err := r.kv.Get(ctx, BookTable, bookKey(userID, bookID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %s: %w", bookID, err)
	}

	var book entities.Book
	if err := kvstore.Unmarshal(item, &book); err != nil {
		return nil, err
	}

	nodes, err := r.ListNodes(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	switch book.Type {
	case entities.BookTypeOpening:
		book.RootNode, err = combine(nodes, nodecodec.OpeningRootID)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild book %s: %w", bookID, err)
		}
	case entities.BookTypeEndgame:
		for i := range book.Positions {
			book.Positions[i].RootNode, err = combine(nodes, nodecodec.EndgameRootID(book.Positions[i].ID))
			if err != nil {
				return nil, fmt.Errorf("failed to rebuild position %s of book %s: %w", book.Positions[i].ID, bookID, err)
			}
		}
	}
	return &book, nil
}

// combine rebuilds one tree. A tree that was saved without any nodes comes
// back as nil.
func combine(nodes []entities.SplitNode, rootID string) (*entities.Node, error) {
	present := false
	for _, n := range nodes {
		if nodecodec.InTree(n.NodeID, rootID) {
			present = true
			break
		}
	}
	if !present {
		return nil, nil
	}
	root, _, err := nodecodec.CombineNode(nodes, rootID)
	return root, err
}

// GetBookSummary loads the listing projection of one book, or nil.
func (r *Repository) GetBookSummary(ctx context.Context, userID, bookID string) (*entities.BookSummary, error) {
	item, err := r.kv.Get(ctx, BookTable, bookKey(userID, bookID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %s: %w", bookID, err)
	}

	var summary entities.BookSummary
	if err := kvstore.Unmarshal(item, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListNodes returns the stored node records of a book in node id order.
func (r *Repository) ListNodes(ctx context.Context, userID, bookID string) ([]entities.SplitNode, error) {
	items, err := r.kv.Query(ctx, NodeTable, NodePartition(userID, bookID), kvstore.QueryOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes of book %s: %w", bookID, err)
	}

	nodes := make([]entities.SplitNode, 0, len(items))
	for _, item := range items {
		var n entities.SplitNode
		if err := kvstore.Unmarshal(item, &n); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// DeleteBook removes the node records of a book and then the book record.
func (r *Repository) DeleteBook(ctx context.Context, userID, bookID string) error {
	if err := r.deleteBookNodes(ctx, userID, bookID); err != nil {
		return err
	}
	if err := r.kv.Delete(ctx, BookTable, bookKey(userID, bookID)); err != nil {
		return fmt.Errorf("failed to delete book %s: %w", bookID, err)
	}
	return nil
}

func (r *Repository) deleteBookNodes(ctx context.Context, userID, bookID string) error {
	partition := NodePartition(userID, bookID)
	items, err := r.kv.Query(ctx, NodeTable, partition, kvstore.QueryOptions{Projection: []string{nodeIDField}})
	if err != nil {
		return fmt.Errorf("failed to list nodes of book %s: %w", bookID, err)
	}
	if len(items) == 0 {
		return nil
	}

	reqs := make([]kvstore.WriteRequest, len(items))
	for i, item := range items {
		reqs[i] = kvstore.DeleteRequest(item.Key)
	}
	if err := kvstore.WriteChunked(ctx, r.kv, NodeTable, reqs); err != nil {
		return fmt.Errorf("failed to delete nodes of book %s: %w", bookID, err)
	}
	return nil
}

// RefreshLineCount recomputes the line counts of book from its trees.
// Endgame books sum the counts of their positions.
func RefreshLineCount(book *entities.Book) {
	switch book.Type {
	case entities.BookTypeOpening:
		book.LineCount = nodecodec.CalcNodeInfo(book.RootNode).LineCount
	case entities.BookTypeEndgame:
		total := 0
		for i := range book.Positions {
			p := &book.Positions[i]
			p.LineCount = nodecodec.CalcNodeInfo(p.RootNode).LineCount
			total += p.LineCount
		}
		book.LineCount = total
	}
}
