package nodecodec

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/linebook/internal/entities"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func leaf(move string) *entities.Node {
	return &entities.Node{Move: move}
}

// italian: 1.e4 e5 2.Nf3 Nc6 (2...d6) 3.Bc4, 1.d4
func italianTree() *entities.Node {
	return &entities.Node{
		Comment: "Start",
		Children: []*entities.Node{
			{
				Move: "e4",
				Nags: []int{1},
				Children: []*entities.Node{
					{
						Move: "e5",
						Children: []*entities.Node{
							{
								Move:        "Nf3",
								Annotations: &entities.Annotations{Arrows: []string{"Gf3e5"}, Squares: []string{"Re5"}},
								Children: []*entities.Node{
									{Move: "Nc6", Children: []*entities.Node{leaf("Bc4")}},
									{Move: "d6", Comment: "Philidor"},
								},
							},
						},
					},
				},
			},
			leaf("d4"),
		},
	}
}

// deepTree builds a tree with width branches at each of depth levels.
func deepTree(width, depth int) *entities.Node {
	var build func(level int) []*entities.Node
	build = func(level int) []*entities.Node {
		if level == depth {
			return nil
		}
		var out []*entities.Node
		for i := 0; i < width; i++ {
			out = append(out, &entities.Node{Move: fmt.Sprintf("m%d_%d", level, i), Children: build(level + 1)})
		}
		return out
	}
	return &entities.Node{Children: build(0)}
}

func TestSplitNode_IDsAndOrder(t *testing.T) {
	records := SplitNode(startFEN, italianTree(), OpeningRootID)
	require.Len(t, records, 8)

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.NodeID
	}
	assert.Equal(t, []string{
		"<root>",
		"<root>/1",
		"<root>/2",
		"<root>/3",
		"<root>/4",
		"<root>/5",
		"<root>/6",
		"<root>/7",
	}, ids)

	assert.Equal(t, startFEN, records[0].Position)
	assert.Empty(t, records[0].ParentID)
	assert.Empty(t, records[1].Position)
	assert.Equal(t, "d6", records[6].Move)
	assert.Equal(t, "<root>/3", records[6].ParentID)
	assert.Equal(t, 1, records[6].Index)
	assert.Equal(t, "d4", records[7].Move)
	assert.Equal(t, "<root>", records[7].ParentID)
}

func TestSplitNode_DeepLineKeepsShortIDs(t *testing.T) {
	const plies = 300
	root := &entities.Node{}
	n := root
	for i := 0; i < plies; i++ {
		next := &entities.Node{Move: fmt.Sprintf("Kd%d", i%8+1)}
		n.Children = []*entities.Node{next}
		n = next
	}

	rootID := EndgameRootID("3f0c5f6e-6f2b-4d57-9b1e-2a41d1c0a9b4")
	records := SplitNode("8/8/8/8/8/8/8/K6k w - - 0 1", root, rootID)
	require.Len(t, records, plies+1)
	for _, r := range records {
		assert.LessOrEqual(t, len(r.NodeID), len(rootID)+4)
	}

	got, _, err := CombineNode(records, rootID)
	require.NoError(t, err)
	assert.Equal(t, root, got)
	assert.Equal(t, plies, CalcNodeInfo(got).MaxDepth)
}

func TestDuplicateMove(t *testing.T) {
	_, dup := DuplicateMove(italianTree())
	assert.False(t, dup)
	_, dup = DuplicateMove(nil)
	assert.False(t, dup)

	tree := italianTree()
	nf3 := tree.Child("e4").Child("e5").Child("Nf3")
	nf3.Children = append(nf3.Children, &entities.Node{Move: "d6"})
	move, dup := DuplicateMove(tree)
	assert.True(t, dup)
	assert.Equal(t, "d6", move)

	// The same move on different branches is fine.
	_, dup = DuplicateMove(&entities.Node{Children: []*entities.Node{
		{Move: "e4", Children: []*entities.Node{leaf("Nf3")}},
		{Move: "d4", Children: []*entities.Node{leaf("Nf3")}},
	}})
	assert.False(t, dup)
}

func TestSplitNode_NilRoot(t *testing.T) {
	assert.Empty(t, SplitNode(startFEN, nil, OpeningRootID))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tree *entities.Node
	}{
		{"root only", &entities.Node{Comment: "empty"}},
		{"annotated", italianTree()},
		{"wide and deep", deepTree(3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := SplitNode(startFEN, tt.tree, OpeningRootID)
			got, position, err := CombineNode(records, OpeningRootID)
			require.NoError(t, err)
			assert.Equal(t, startFEN, position)
			assert.Equal(t, tt.tree, got)
		})
	}
}

func TestCombineNode_SharedTable(t *testing.T) {
	a := SplitNode("fen-a", italianTree(), EndgameRootID("1"))
	b := SplitNode("fen-b", deepTree(2, 2), EndgameRootID("10"))

	// Reverse the shared slice: combination must not depend on record order.
	mixed := append(append([]entities.SplitNode{}, b...), a...)
	for i, j := 0, len(mixed)-1; i < j; i, j = i+1, j-1 {
		mixed[i], mixed[j] = mixed[j], mixed[i]
	}

	gotA, posA, err := CombineNode(mixed, EndgameRootID("1"))
	require.NoError(t, err)
	assert.Equal(t, "fen-a", posA)
	assert.Equal(t, italianTree(), gotA)

	gotB, posB, err := CombineNode(mixed, EndgameRootID("10"))
	require.NoError(t, err)
	assert.Equal(t, "fen-b", posB)
	assert.Equal(t, deepTree(2, 2), gotB)
}

func TestCombineNode_Errors(t *testing.T) {
	records := SplitNode(startFEN, italianTree(), OpeningRootID)

	_, _, err := CombineNode(records, EndgameRootID("1"))
	assert.Error(t, err)

	// Drop "<root>/2" (e5) so its child is orphaned.
	broken := append(append([]entities.SplitNode{}, records[:2]...), records[3:]...)
	_, _, err = CombineNode(broken, OpeningRootID)
	assert.Error(t, err)
}

func TestInTree(t *testing.T) {
	assert.True(t, InTree("<position-1>", "<position-1>"))
	assert.True(t, InTree("<position-1>/4", "<position-1>"))
	assert.False(t, InTree("<position-10>/4", "<position-1>"))
	assert.False(t, InTree("<root>/1", "<position-1>"))
}

func TestCalcNodeInfo(t *testing.T) {
	tests := []struct {
		name string
		tree *entities.Node
		want NodeInfo
	}{
		{"nil", nil, NodeInfo{}},
		{"root only", &entities.Node{}, NodeInfo{NodeCount: 1}},
		{"italian", italianTree(), NodeInfo{LineCount: 3, NodeCount: 8, MaxDepth: 5}},
		{"3 wide 4 deep", deepTree(3, 4), NodeInfo{LineCount: 81, NodeCount: 121, MaxDepth: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalcNodeInfo(tt.tree))
		})
	}
}
