// Package search finds where to put the upcoming pieces. It enumerates
// every (column, rotation) for each piece of the lookahead, scores the
// boards at the end of each line and folds the scores back with minimax.
package search

import (
	"errors"
	"fmt"

	"github.com/kamstrup/intmap"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tetrad/board"
	"github.com/domino14/tetrad/equity"
	"github.com/domino14/tetrad/move"
	"github.com/domino14/tetrad/placement"
	"github.com/domino14/tetrad/tetromino"
	"github.com/domino14/tetrad/zobrist"
)

var (
	ErrNilGrid          = errors.New("no grid to search")
	ErrEmptySequence    = errors.New("no pieces to place")
	ErrLookaheadTooDeep = errors.New("lookahead is deeper than allowed")
	ErrNoLegalMove      = errors.New("no legal move for the current piece")
)

// Stats describe the work done by the last call.
type Stats struct {
	Nodes     int
	Leaves    int
	CacheHits int
}

func (s *Stats) add(o Stats) {
	s.Nodes += o.Nodes
	s.Leaves += o.Leaves
	s.CacheHits += o.CacheHits
}

// Solver runs placement searches. Configure it once and call it as often
// as needed; a Solver is not safe for concurrent use, but every call only
// reads the grid it is given.
type Solver struct {
	calc         equity.Calculator
	policy       Policy
	threads      int
	maxLookahead int
	leafCache    bool

	zobrist *zobrist.Zobrist
	stats   Stats
}

// NewSolver returns a single-threaded MinFirst solver. A nil calculator
// means the standard heuristic.
func NewSolver(calc equity.Calculator) *Solver {
	if calc == nil {
		calc = equity.NewHeuristicCalculator()
	}
	return &Solver{
		calc:      calc,
		threads:   1,
		leafCache: true,
	}
}

func (s *Solver) SetPolicy(p Policy) {
	s.policy = p
}

func (s *Solver) Policy() Policy {
	return s.policy
}

// SetThreads sets how many goroutines share the root edges. Values below 1
// are treated as 1.
func (s *Solver) SetThreads(t int) {
	s.threads = max(t, 1)
}

// SetMaxLookahead caps the number of pieces a call may search. Zero or
// less removes the cap.
func (s *Solver) SetMaxLookahead(n int) {
	s.maxLookahead = n
}

func (s *Solver) SetLeafCache(on bool) {
	s.leafCache = on
}

// Stats returns the counters of the last Evaluate or FindBestMove.
func (s *Solver) Stats() Stats {
	return s.stats
}

func (s *Solver) validate(g *board.Grid, pieces []tetromino.Piece) error {
	if g == nil {
		return ErrNilGrid
	}
	if len(pieces) == 0 {
		return ErrEmptySequence
	}
	if s.maxLookahead > 0 && len(pieces) > s.maxLookahead {
		return fmt.Errorf("%d pieces, at most %d: %w", len(pieces), s.maxLookahead, ErrLookaheadTooDeep)
	}
	return nil
}

func (s *Solver) hasher(g *board.Grid) *zobrist.Zobrist {
	if s.zobrist != nil {
		rows, cols := s.zobrist.Dims()
		if rows == g.Rows() && cols == g.Cols() {
			return s.zobrist
		}
	}
	s.zobrist = &zobrist.Zobrist{}
	s.zobrist.Initialize(g.Rows(), g.Cols())
	return s.zobrist
}

func (s *Solver) newSearcher(g *board.Grid, pieces []tetromino.Piece) *searcher {
	sr := &searcher{
		sim:    placement.NewSimulator(g),
		calc:   s.calc,
		pieces: pieces,
		cols:   g.Cols(),
		policy: s.policy,
		z:      s.hasher(g),
	}
	if s.leafCache {
		sr.cache = intmap.New[uint64, float64](1024)
	}
	return sr
}

// Evaluate builds the whole evaluation tree for pieces on g. The tree has
// one level per piece and cols*4 edges per node, columns outer and
// rotations inner. g is not modified.
func (s *Solver) Evaluate(g *board.Grid, pieces []tetromino.Piece) (*Tree, error) {
	s.stats = Stats{}
	if err := s.validate(g, pieces); err != nil {
		return nil, err
	}
	sr := s.newSearcher(g, pieces)
	root := &Node{Valid: true}
	sr.expand(0, 0, root)
	s.stats = sr.stats
	return &Tree{Root: root, Depth: len(pieces), Cols: g.Cols(), Pieces: pieces}, nil
}

// FindBestMove returns the minimax route for pieces on g: one move per
// piece, and the score of the leaf it ends at. It computes the same result
// as Resolve(Evaluate(g, pieces)) without building the tree. If the first
// piece cannot be placed anywhere the route is empty with a -Inf score and
// the error is ErrNoLegalMove.
func (s *Solver) FindBestMove(g *board.Grid, pieces []tetromino.Piece) (move.Route, error) {
	s.stats = Stats{}
	if err := s.validate(g, pieces); err != nil {
		return move.NoRoute(), err
	}
	var route move.Route
	if s.threads > 1 {
		route = s.parallelBest(g, pieces)
	} else {
		sr := s.newSearcher(g, pieces)
		route = sr.best(0, 0)
		s.stats = sr.stats
	}
	if route.Empty() {
		return route, ErrNoLegalMove
	}
	return route, nil
}

type rootEdge struct {
	route move.Route
	valid bool
}

// parallelBest hands root edges out round-robin to the workers. Every
// worker has its own simulator and cache, and the root is folded in
// enumeration order afterwards, so the route matches a serial search.
func (s *Solver) parallelBest(g *board.Grid, pieces []tetromino.Piece) move.Route {
	numEdges := g.Cols() * tetromino.NumRotations
	results := make([]rootEdge, numEdges)
	searchers := make([]*searcher, s.threads)
	for t := range searchers {
		searchers[t] = s.newSearcher(g, pieces)
	}

	eg := errgroup.Group{}
	for t := 0; t < s.threads; t++ {
		t := t
		sr := searchers[t]
		eg.Go(func() error {
			for i := t; i < numEdges; i += s.threads {
				col, rot := i/tetromino.NumRotations, i%tetromino.NumRotations
				route, ok := sr.edge(0, 0, col, rot)
				results[i] = rootEdge{route: route, valid: ok}
			}
			return nil
		})
	}
	// workers never fail
	_ = eg.Wait()

	for _, sr := range searchers {
		s.stats.add(sr.stats)
	}
	maximize := s.policy.Maximizes(0)
	best := move.NoRoute()
	found := false
	for i, r := range results {
		if !r.valid {
			continue
		}
		if !found || better(r.route.Score, best.Score, maximize) {
			m := move.Move{Col: i / tetromino.NumRotations, Rotation: i % tetromino.NumRotations}
			best = move.Prepend(m, r.route)
			found = true
		}
	}
	return best
}

// searcher is the state of one depth-first walk.
type searcher struct {
	sim    *placement.Simulator
	calc   equity.Calculator
	pieces []tetromino.Piece
	cols   int
	policy Policy
	z      *zobrist.Zobrist
	// leaf scores keyed by the hash of the virtual cells; nil when off.
	cache *intmap.Map[uint64, float64]
	stats Stats
}

// piece returns the piece for ply rotated rot times from its base
// orientation.
func (sr *searcher) piece(ply, rot int) tetromino.Piece {
	p := sr.pieces[ply]
	p.Rotation = 0
	return p.Rotated(rot)
}

func (sr *searcher) leaf(key uint64) float64 {
	sr.stats.Leaves++
	if sr.cache != nil {
		if v, ok := sr.cache.Get(key); ok {
			sr.stats.CacheHits++
			return v
		}
	}
	v := sr.calc.Equity(sr.sim.Features())
	if sr.cache != nil {
		sr.cache.Put(key, v)
	}
	return v
}

func (sr *searcher) best(ply int, key uint64) move.Route {
	if ply == len(sr.pieces) {
		return move.Route{Score: sr.leaf(key)}
	}
	maximize := sr.policy.Maximizes(ply)
	best := move.NoRoute()
	found := false
	for col := 0; col < sr.cols; col++ {
		for rot := 0; rot < tetromino.NumRotations; rot++ {
			sub, ok := sr.edge(ply, key, col, rot)
			if !ok {
				continue
			}
			if !found || better(sub.Score, best.Score, maximize) {
				best = move.Prepend(move.Move{Col: col, Rotation: rot}, sub)
				found = true
			}
		}
	}
	return best
}

// edge drops the ply's piece at (col, rot), resolves the subtree and takes
// the piece back out. ok is false if the piece could not be placed.
func (sr *searcher) edge(ply int, key uint64, col, rot int) (move.Route, bool) {
	sr.stats.Nodes++
	pl, ok := sr.sim.Drop(sr.piece(ply, rot), col)
	defer sr.sim.Undo()
	if !ok {
		return move.Route{}, false
	}
	return sr.best(ply+1, sr.z.AddCells(key, pl.Cells[:])), true
}

func (sr *searcher) expand(ply int, key uint64, n *Node) {
	if ply == len(sr.pieces) {
		n.Score = sr.leaf(key)
		return
	}
	n.Children = make([]*Node, 0, sr.cols*tetromino.NumRotations)
	for col := 0; col < sr.cols; col++ {
		for rot := 0; rot < tetromino.NumRotations; rot++ {
			m := move.Move{Col: col, Rotation: rot}
			sr.stats.Nodes++
			pl, ok := sr.sim.Drop(sr.piece(ply, rot), col)
			if !ok {
				n.Children = append(n.Children, invalidNode(m))
				sr.sim.Undo()
				continue
			}
			child := &Node{Move: m, Valid: true}
			sr.expand(ply+1, sr.z.AddCells(key, pl.Cells[:]), child)
			sr.sim.Undo()
			n.Children = append(n.Children, child)
		}
	}
	n.Score = foldScore(n.Children, sr.policy.Maximizes(ply))
}
