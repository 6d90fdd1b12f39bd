package search

import (
	"math"

	"github.com/domino14/tetrad/move"
	"github.com/domino14/tetrad/tetromino"
)

// Node is one edge of the evaluation tree: the move that leads to it and
// everything below it. Leaves carry the heuristic score of the whole line
// from the root. Interior nodes carry the minimax value of their subtree
// under the policy the tree was built with, or -Inf if nothing below them
// is valid. Invalid edges carry -Inf and have no children.
type Node struct {
	Move     move.Move `yaml:"move"`
	Valid    bool      `yaml:"valid"`
	Score    float64   `yaml:"score"`
	Children []*Node   `yaml:"children,omitempty"`
}

// Tree is the full enumeration for one grid and one lookahead sequence.
type Tree struct {
	Root   *Node             `yaml:"root"`
	Depth  int               `yaml:"depth"`
	Cols   int               `yaml:"cols"`
	Pieces []tetromino.Piece `yaml:"-"`
}

// Child returns the edge for (col, rot) below n, in enumeration order.
func (n *Node) Child(col, rot int) *Node {
	i := col*tetromino.NumRotations + rot
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Leaves counts the scored leaves under n.
func (n *Node) Leaves() int {
	if len(n.Children) == 0 {
		if n.Valid {
			return 1
		}
		return 0
	}
	total := 0
	for _, c := range n.Children {
		total += c.Leaves()
	}
	return total
}

// Resolve folds the tree with minimax under the given policy. Invalid
// edges are skipped; among equal scores the first edge visited wins. A node
// without any valid child resolves to -Inf with an empty route.
func Resolve(t *Tree, p Policy) move.Route {
	if t == nil || t.Root == nil {
		return move.NoRoute()
	}
	return resolveNode(t.Root, 0, t.Depth, p)
}

func resolveNode(n *Node, ply, depth int, p Policy) move.Route {
	if ply == depth {
		return move.Route{Score: n.Score}
	}
	maximize := p.Maximizes(ply)
	best := move.NoRoute()
	found := false
	for _, c := range n.Children {
		if !c.Valid {
			continue
		}
		sub := resolveNode(c, ply+1, depth, p)
		if !found || better(sub.Score, best.Score, maximize) {
			best = move.Prepend(c.Move, sub)
			found = true
		}
	}
	return best
}

// foldScore is the value a node resolves to given its scored children.
func foldScore(children []*Node, maximize bool) float64 {
	score := math.Inf(-1)
	found := false
	for _, c := range children {
		if c.Valid && (!found || better(c.Score, score, maximize)) {
			score = c.Score
			found = true
		}
	}
	return score
}

func invalidNode(m move.Move) *Node {
	return &Node{Move: m, Score: math.Inf(-1)}
}

// Line is one root edge with the best continuation below it.
type Line struct {
	Move  move.Move
	Valid bool
	Route move.Route
}

// RootLines resolves every root edge on its own, in enumeration order.
// Below the root the policy's roles are the same as in Resolve.
func RootLines(t *Tree, p Policy) []Line {
	if t == nil || t.Root == nil {
		return nil
	}
	lines := make([]Line, len(t.Root.Children))
	for i, c := range t.Root.Children {
		l := Line{Move: c.Move, Valid: c.Valid, Route: move.NoRoute()}
		if c.Valid {
			l.Route = move.Prepend(c.Move, resolveNode(c, 1, t.Depth, p))
		}
		lines[i] = l
	}
	return lines
}
