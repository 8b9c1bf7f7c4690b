package books

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/kvstore"
	"github.com/mrlokans/linebook/internal/kvstore/kvtest"
)

const (
	testUser = "user-1"
	startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	e4FEN    = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	rookFEN  = "8/8/8/4k3/8/8/4K3/R7 w - - 0 1"
	pawnFEN  = "8/8/8/4k3/8/4P3/4K3/8 w - - 0 1"
)

func setupTestRepo(t *testing.T) (*Repository, *kvtest.Recorder) {
	t.Helper()
	rec := kvtest.NewRecorder(kvtest.NewSQLite(t))
	return NewRepository(rec), rec
}

func openingBook(id string, root *entities.Node) *entities.Book {
	return &entities.Book{
		ID:           id,
		Type:         entities.BookTypeOpening,
		Name:         "Open Sicilian",
		Color:        entities.ColorBlack,
		InitialMoves: []string{"e4"},
		Position:     e4FEN,
		RootNode:     root,
	}
}

func sicilianTree() *entities.Node {
	return &entities.Node{
		Comment: "Answer 1.e4",
		Children: []*entities.Node{
			{
				Move: "c5",
				Nags: []int{3},
				Annotations: &entities.Annotations{
					Arrows:  []string{"Gc5d4"},
					Squares: []string{"Rd4"},
				},
				Children: []*entities.Node{
					{Move: "Nf3", Children: []*entities.Node{{Move: "d6"}, {Move: "Nc6", Comment: "Old main line"}}},
					{Move: "c3", Children: []*entities.Node{{Move: "Nf6"}}},
				},
			},
		},
	}
}

// fanTree has a root with n-1 leaf children, n nodes in total.
func fanTree(n int) *entities.Node {
	root := &entities.Node{}
	for i := 0; i < n-1; i++ {
		root.Children = append(root.Children, &entities.Node{Move: fmt.Sprintf("m%03d", i)})
	}
	return root
}

func nodeIDs(t *testing.T, repo *Repository, bookID string) []string {
	t.Helper()
	nodes, err := repo.ListNodes(context.Background(), testUser, bookID)
	require.NoError(t, err)
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.NodeID)
	}
	return ids
}

func TestRepository_OpeningRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)

	book := openingBook("sicilian", sicilianTree())
	RefreshLineCount(book)
	require.NoError(t, repo.PutBook(ctx, testUser, book))

	got, err := repo.GetBook(ctx, testUser, "sicilian")
	require.NoError(t, err)
	require.NotNil(t, got)

	want := *book
	want.UserID = testUser
	assert.Equal(t, &want, got)
	assert.Equal(t, 3, got.LineCount)
}

func TestRepository_EndgameRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)

	book := &entities.Book{
		ID:   "basic-endgames",
		Type: entities.BookTypeEndgame,
		Name: "Basic endgames",
		Positions: []entities.EndgamePosition{
			{
				ID:       "1",
				Position: rookFEN,
				Color:    entities.ColorWhite,
				Comment:  "Box the king",
				RootNode: &entities.Node{Children: []*entities.Node{
					{Move: "Ra4", Children: []*entities.Node{{Move: "Kd5"}, {Move: "Kf5"}}},
				}},
			},
			{
				ID:       "10",
				Position: pawnFEN,
				Color:    entities.ColorWhite,
				RootNode: &entities.Node{Children: []*entities.Node{{Move: "Kd3", Nags: []int{1}}}},
			},
			{
				ID:       "11",
				Position: pawnFEN,
				Color:    entities.ColorBlack,
			},
		},
	}
	RefreshLineCount(book)
	assert.Equal(t, 3, book.LineCount)
	require.NoError(t, repo.PutBook(ctx, testUser, book))

	got, err := repo.GetBook(ctx, testUser, "basic-endgames")
	require.NoError(t, err)
	require.NotNil(t, got)

	want := *book
	want.UserID = testUser
	assert.Equal(t, &want, got)
	assert.Equal(t, 2, got.Positions[0].LineCount)
	assert.Nil(t, got.Positions[2].RootNode)

	assert.Contains(t, nodeIDs(t, repo, "basic-endgames"), "<position-10>/1")
}

func TestRepository_BookRecordHasNoTree(t *testing.T) {
	ctx := context.Background()
	rec := kvtest.NewRecorder(kvtest.NewSQLite(t))
	repo := NewRepository(rec)

	require.NoError(t, repo.PutBook(ctx, testUser, openingBook("sicilian", sicilianTree())))

	item, err := rec.Get(ctx, BookTable, kvstore.Key{Partition: testUser, Sort: "sicilian"})
	require.NoError(t, err)
	assert.NotContains(t, string(item.Attributes), "root_node")
	assert.NotContains(t, string(item.Attributes), "children")
}

func TestRepository_SecondPutLeavesNoStragglers(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)

	require.NoError(t, repo.PutBook(ctx, testUser, openingBook("sicilian", sicilianTree())))
	require.Len(t, nodeIDs(t, repo, "sicilian"), 7)

	smaller := &entities.Node{Children: []*entities.Node{{Move: "e5"}}}
	require.NoError(t, repo.PutBook(ctx, testUser, openingBook("sicilian", smaller)))

	assert.Equal(t, []string{"<root>", "<root>/1"}, nodeIDs(t, repo, "sicilian"))

	got, err := repo.GetBook(ctx, testUser, "sicilian")
	require.NoError(t, err)
	assert.Equal(t, smaller, got.RootNode)
}

func TestRepository_ChunksNodeWrites(t *testing.T) {
	ctx := context.Background()
	repo, rec := setupTestRepo(t)

	const n = 60
	require.NoError(t, repo.PutBook(ctx, testUser, openingBook("wide", fanTree(n))))

	batches := rec.Batches(NodeTable)
	require.Len(t, batches, 3)

	seen := map[string]int{}
	for _, b := range batches {
		assert.LessOrEqual(t, len(b.Requests), kvstore.MaxBatchSize)
		for _, r := range b.Requests {
			require.NotNil(t, r.Put)
			seen[r.Put.Key.Sort]++
		}
	}
	assert.Len(t, seen, n)
	for id, count := range seen {
		assert.Equal(t, 1, count, "node %s written more than once", id)
	}

	t.Run("replacement deletes in chunks first", func(t *testing.T) {
		rec.Reset()
		require.NoError(t, repo.PutBook(ctx, testUser, openingBook("wide", fanTree(30))))

		batches := rec.Batches(NodeTable)
		require.Len(t, batches, 5)
		for _, b := range batches[:3] {
			require.NotNil(t, b.Requests[0].Delete)
		}
		for _, b := range batches[3:] {
			require.NotNil(t, b.Requests[0].Put)
		}
		assert.Len(t, nodeIDs(t, repo, "wide"), 30)
	})
}

func TestRepository_FailedChunkAbortsTheRest(t *testing.T) {
	ctx := context.Background()
	repo, rec := setupTestRepo(t)

	rec.FailBatchAt = 2
	err := repo.PutBook(ctx, testUser, openingBook("wide", fanTree(60)))
	require.Error(t, err)

	var chunkErr *kvstore.ChunkError
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, 1, chunkErr.Chunk)
	assert.ErrorIs(t, err, kvtest.ErrInjected)

	assert.Len(t, rec.Batches(NodeTable), 2)
	assert.Len(t, nodeIDs(t, repo, "wide"), kvstore.MaxBatchSize)

	// The book record was written before the nodes and stays behind.
	summary, err := repo.GetBookSummary(ctx, testUser, "wide")
	require.NoError(t, err)
	assert.NotNil(t, summary)
}

func TestRepository_DuplicateNodesFailBeforeWriting(t *testing.T) {
	ctx := context.Background()
	repo, rec := setupTestRepo(t)

	root := &entities.Node{Children: []*entities.Node{{Move: "e4"}, {Move: "e4"}}}
	err := repo.PutBook(ctx, testUser, openingBook("dup", root))
	require.ErrorIs(t, err, ErrInvalidBook)

	deep := &entities.Node{Children: []*entities.Node{
		{Move: "e4", Children: []*entities.Node{{Move: "e5"}, {Move: "c5"}, {Move: "e5"}}},
	}}
	err = repo.PutBook(ctx, testUser, openingBook("dup", deep))
	require.ErrorIs(t, err, ErrInvalidBook)

	err = repo.PutBook(ctx, testUser, &entities.Book{
		ID:   "dup",
		Type: entities.BookTypeEndgame,
		Positions: []entities.EndgamePosition{
			{ID: "1", Position: rookFEN, RootNode: &entities.Node{}},
			{ID: "1", Position: pawnFEN, RootNode: &entities.Node{}},
		},
	})
	require.ErrorIs(t, err, ErrInvalidBook)

	assert.Empty(t, rec.Batches(""))
	got, err := repo.GetBook(ctx, testUser, "dup")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_DeepLine(t *testing.T) {
	ctx := context.Background()
	repo, rec := setupTestRepo(t)

	const plies = 200
	root := &entities.Node{}
	n := root
	for i := 0; i < plies; i++ {
		next := &entities.Node{Move: fmt.Sprintf("Kd%d", i%8+1)}
		n.Children = []*entities.Node{next}
		n = next
	}
	book := &entities.Book{
		ID:   "deep",
		Type: entities.BookTypeEndgame,
		Name: "Long king walk",
		Positions: []entities.EndgamePosition{
			{ID: "6b8f7c1e-4a0d-4a57-8d2e-0f5c9e3b7a21", Position: rookFEN, Color: entities.ColorWhite, RootNode: root},
		},
	}
	RefreshLineCount(book)
	require.NoError(t, repo.PutBook(ctx, testUser, book))

	for _, b := range rec.Batches(NodeTable) {
		for _, r := range b.Requests {
			assert.LessOrEqual(t, len(r.Put.Key.Sort), 64)
		}
	}

	got, err := repo.GetBook(ctx, testUser, "deep")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, root, got.Positions[0].RootNode)
	assert.Equal(t, 1, got.LineCount)
}

func TestRepository_EmptySlicesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)

	root := &entities.Node{
		Nags: []int{},
		Children: []*entities.Node{
			{Move: "e4", Nags: []int{}, Annotations: &entities.Annotations{Arrows: []string{}}},
			{Move: "d4"},
		},
	}
	require.NoError(t, repo.PutBook(ctx, testUser, openingBook("empty", root)))

	got, err := repo.GetBook(ctx, testUser, "empty")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, root, got.RootNode)
	assert.NotNil(t, got.RootNode.Children[0].Nags)
	assert.Nil(t, got.RootNode.Children[1].Nags)
}

func TestRepository_PutBookValidation(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)

	assert.ErrorIs(t, repo.PutBook(ctx, testUser, &entities.Book{Type: entities.BookTypeOpening}), ErrInvalidBook)
	assert.ErrorIs(t, repo.PutBook(ctx, testUser, &entities.Book{ID: "x", Type: "middlegame"}), ErrInvalidBook)
	assert.ErrorIs(t, repo.PutBook(ctx, testUser, nil), ErrInvalidBook)
}

func TestRepository_GetBook(t *testing.T) {
	ctx := context.Background()

	t.Run("missing book is nil without error", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		got, err := repo.GetBook(ctx, testUser, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)

		summary, err := repo.GetBookSummary(ctx, testUser, "nope")
		require.NoError(t, err)
		assert.Nil(t, summary)
	})

	t.Run("node query failure fails the call", func(t *testing.T) {
		repo, rec := setupTestRepo(t)
		require.NoError(t, repo.PutBook(ctx, testUser, openingBook("sicilian", sicilianTree())))

		rec.FailQueryTable = NodeTable
		got, err := repo.GetBook(ctx, testUser, "sicilian")
		assert.ErrorIs(t, err, kvtest.ErrInjected)
		assert.Nil(t, got)
	})

	t.Run("book saved without a tree", func(t *testing.T) {
		repo, _ := setupTestRepo(t)
		require.NoError(t, repo.PutBook(ctx, testUser, openingBook("empty", nil)))

		got, err := repo.GetBook(ctx, testUser, "empty")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.RootNode)
	})
}

func TestRepository_DeleteBook(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)

	require.NoError(t, repo.PutBook(ctx, testUser, openingBook("wide", fanTree(40))))
	require.NoError(t, repo.PutBook(ctx, testUser, openingBook("keep", sicilianTree())))

	require.NoError(t, repo.DeleteBook(ctx, testUser, "wide"))

	assert.Empty(t, nodeIDs(t, repo, "wide"))
	got, err := repo.GetBook(ctx, testUser, "wide")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Len(t, nodeIDs(t, repo, "keep"), 7)

	t.Run("node failure keeps the book record", func(t *testing.T) {
		rec := kvtest.NewRecorder(kvtest.NewSQLite(t))
		repo := NewRepository(rec)
		require.NoError(t, repo.PutBook(ctx, testUser, openingBook("wide", fanTree(40))))

		rec.Reset()
		rec.FailBatchAt = 1
		require.Error(t, repo.DeleteBook(ctx, testUser, "wide"))

		summary, err := repo.GetBookSummary(ctx, testUser, "wide")
		require.NoError(t, err)
		assert.NotNil(t, summary)
	})

	t.Run("deleting a missing book is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.DeleteBook(ctx, testUser, "never-existed"))
	})
}

func TestRepository_ListBooks(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)

	empty, err := repo.ListBooks(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a := openingBook("a-sicilian", sicilianTree())
	RefreshLineCount(a)
	require.NoError(t, repo.PutBook(ctx, testUser, a))
	require.NoError(t, repo.PutBook(ctx, "user-2", openingBook("b-other", sicilianTree())))

	list, err := repo.ListBooks(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entities.BookSummary{
		ID:           "a-sicilian",
		UserID:       testUser,
		Type:         entities.BookTypeOpening,
		Name:         "Open Sicilian",
		LineCount:    3,
		Color:        entities.ColorBlack,
		InitialMoves: []string{"e4"},
	}, list[0])
}

func TestRefreshLineCount(t *testing.T) {
	book := openingBook("x", nil)
	book.LineCount = 99
	RefreshLineCount(book)
	assert.Zero(t, book.LineCount)

	book.RootNode = fanTree(11)
	RefreshLineCount(book)
	assert.Equal(t, 10, book.LineCount)
}
