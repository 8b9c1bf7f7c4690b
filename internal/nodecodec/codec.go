// Package nodecodec maps move trees onto flat node records and back.
//
// A tree is identified by a root id. The root record's NodeID is the root id
// itself and every descendant's NodeID is the root id followed by "/<n>",
// where n is the node's pre-order position in the tree. Ids stay short no
// matter how deep a line goes, and several trees can share one table as long
// as their root ids differ. The tree shape lives in ParentID and Index.
package nodecodec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mrlokans/linebook/internal/entities"
)

// OpeningRootID is the root id of an opening book's single tree.
const OpeningRootID = "<root>"

// EndgameRootID returns the root id of one endgame position's tree.
func EndgameRootID(positionID string) string {
	return "<position-" + positionID + ">"
}

// NodeInfo summarises a tree.
type NodeInfo struct {
	LineCount int `json:"line_count"`
	NodeCount int `json:"node_count"`
	MaxDepth  int `json:"max_depth"`
}

func nodeID(rootID string, n int) string {
	return rootID + "/" + strconv.Itoa(n)
}

// SplitNode flattens root into records in pre-order. The root record carries
// position. A nil root yields no records.
func SplitNode(position string, root *entities.Node, rootID string) []entities.SplitNode {
	if root == nil {
		return nil
	}
	var out []entities.SplitNode
	var walk func(n *entities.Node, id, parentID string, index int)
	walk = func(n *entities.Node, id, parentID string, index int) {
		out = append(out, entities.SplitNode{
			NodeID:      id,
			ParentID:    parentID,
			Index:       index,
			Move:        n.Move,
			Nags:        n.Nags,
			Comment:     n.Comment,
			Annotations: n.Annotations,
		})
		for i, c := range n.Children {
			walk(c, nodeID(rootID, len(out)), id, i)
		}
	}
	walk(root, rootID, "", 0)
	out[0].Position = position
	return out
}

// DuplicateMove returns a move that occurs twice among the children of one
// node, if any.
func DuplicateMove(root *entities.Node) (string, bool) {
	if root == nil {
		return "", false
	}
	seen := make(map[string]struct{}, len(root.Children))
	for _, c := range root.Children {
		if _, dup := seen[c.Move]; dup {
			return c.Move, true
		}
		seen[c.Move] = struct{}{}
		if move, dup := DuplicateMove(c); dup {
			return move, true
		}
	}
	return "", false
}

// InTree reports whether nodeID belongs to the tree rooted at rootID.
func InTree(nodeID, rootID string) bool {
	return nodeID == rootID || strings.HasPrefix(nodeID, rootID+"/")
}

// CombineNode rebuilds the tree rooted at rootID from nodes. Records of other
// trees are ignored. It also returns the position stored on the root record.
func CombineNode(nodes []entities.SplitNode, rootID string) (*entities.Node, string, error) {
	type entry struct {
		record entities.SplitNode
		node   *entities.Node
	}

	byID := make(map[string]*entry)
	var root *entry
	for _, rec := range nodes {
		if !InTree(rec.NodeID, rootID) {
			continue
		}
		e := &entry{
			record: rec,
			node: &entities.Node{
				Move:        rec.Move,
				Nags:        rec.Nags,
				Comment:     rec.Comment,
				Annotations: rec.Annotations,
			},
		}
		byID[rec.NodeID] = e
		if rec.NodeID == rootID {
			root = e
		}
	}
	if root == nil {
		return nil, "", fmt.Errorf("tree %s has no root record", rootID)
	}

	children := make(map[string][]*entry)
	for id, e := range byID {
		if id == rootID {
			continue
		}
		if _, ok := byID[e.record.ParentID]; !ok {
			return nil, "", fmt.Errorf("node %s references missing parent %s", id, e.record.ParentID)
		}
		children[e.record.ParentID] = append(children[e.record.ParentID], e)
	}
	for parentID, kids := range children {
		sort.Slice(kids, func(i, j int) bool { return kids[i].record.Index < kids[j].record.Index })
		parent := byID[parentID].node
		for _, k := range kids {
			parent.Children = append(parent.Children, k.node)
		}
	}

	return root.node, root.record.Position, nil
}

// CalcNodeInfo counts the lines (leaves below the root), nodes and depth of
// a tree. A root without children has no lines.
func CalcNodeInfo(root *entities.Node) NodeInfo {
	var info NodeInfo
	if root == nil {
		return info
	}
	var walk func(n *entities.Node, depth int)
	walk = func(n *entities.Node, depth int) {
		info.NodeCount++
		if depth > info.MaxDepth {
			info.MaxDepth = depth
		}
		if len(n.Children) == 0 && depth > 0 {
			info.LineCount++
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return info
}
