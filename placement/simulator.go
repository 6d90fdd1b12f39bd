// Package placement simulates dropping pieces onto a grid without touching
// the grid itself. Cells that would be filled are kept in a virtual
// occupancy set that later pieces in the same sequence collide with.
package placement

import (
	"github.com/kamstrup/intmap"

	"github.com/domino14/tetrad/board"
	"github.com/domino14/tetrad/tetromino"
)

// Step asks for a piece, in whatever rotation it carries, to be dropped
// with its anchor at column Col.
type Step struct {
	Piece tetromino.Piece
	Col   int
}

// Placement is where a dropped piece came to rest.
type Placement struct {
	// Piece is the dropped piece with its anchor at the resting position.
	Piece    tetromino.Piece
	Col      int
	RowShift int
	Cells    [tetromino.CellCount]board.Pos
}

type frame struct {
	placement Placement
	valid     bool
}

// Simulator layers virtual placements over a read-only grid.
type Simulator struct {
	grid    *board.Grid
	virtual *intmap.Map[int, tetromino.Shape]
	frames  []frame
	// number of invalid frames on the stack; the sequence is invalid while
	// this is non-zero.
	invalid int
}

// NewSimulator wraps g. g is only ever read.
func NewSimulator(g *board.Grid) *Simulator {
	return &Simulator{
		grid:    g,
		virtual: intmap.New[int, tetromino.Shape](64),
		frames:  make([]frame, 0, 8),
	}
}

// Simulate drops every step in order and returns the simulator holding the
// result.
func Simulate(g *board.Grid, steps []Step) *Simulator {
	s := NewSimulator(g)
	for _, st := range steps {
		s.Drop(st.Piece, st.Col)
	}
	return s
}

func (s *Simulator) Grid() *board.Grid {
	return s.grid
}

// Depth is the number of pieces dropped so far, valid or not.
func (s *Simulator) Depth() int {
	return len(s.frames)
}

// Invalid is true if any piece in the sequence could not be placed.
func (s *Simulator) Invalid() bool {
	return s.invalid > 0
}

func (s *Simulator) key(row, col int) int {
	return row*s.grid.Cols() + col
}

// Occupied reports real or virtual occupancy. Out-of-bounds cells are not
// occupied.
func (s *Simulator) Occupied(row, col int) bool {
	if s.grid.Occupied(row, col) {
		return true
	}
	if !s.grid.InBounds(row, col) {
		return false
	}
	_, ok := s.virtual.Get(s.key(row, col))
	return ok
}

// Collides is like board.Grid.Collides but also counts virtual cells.
func (s *Simulator) Collides(cells []board.Pos) bool {
	if s.grid.Collides(cells) {
		return true
	}
	for _, p := range cells {
		if _, ok := s.virtual.Get(s.key(p.Row, p.Col)); ok {
			return true
		}
	}
	return false
}

// Drop moves the piece's anchor to col and lets it fall until the next row
// down would collide. If the piece collides before falling at all, the
// frame is recorded as invalid and the sequence stays invalid until it is
// undone. ok reports whether this piece was placed.
func (s *Simulator) Drop(p tetromino.Piece, col int) (Placement, bool) {
	if s.invalid > 0 {
		s.frames = append(s.frames, frame{})
		s.invalid++
		return Placement{}, false
	}
	colShift := col - p.Col
	cells := p.CellsAt(0, colShift)
	if s.Collides(cells[:]) {
		s.frames = append(s.frames, frame{})
		s.invalid++
		return Placement{}, false
	}
	rowShift := 0
	for {
		next := p.CellsAt(rowShift+1, colShift)
		if s.Collides(next[:]) {
			break
		}
		rowShift++
		cells = next
	}
	for _, c := range cells {
		s.virtual.Put(s.key(c.Row, c.Col), p.Shape)
	}
	dropped := p
	dropped.Row += rowShift
	dropped.Col = col
	pl := Placement{Piece: dropped, Col: col, RowShift: rowShift, Cells: cells}
	s.frames = append(s.frames, frame{placement: pl, valid: true})
	return pl, true
}

// Undo removes the most recent drop.
func (s *Simulator) Undo() {
	if len(s.frames) == 0 {
		return
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	if !f.valid {
		s.invalid--
		return
	}
	for _, c := range f.placement.Cells {
		s.virtual.Del(s.key(c.Row, c.Col))
	}
}

// Reset undoes everything.
func (s *Simulator) Reset() {
	s.virtual.Clear()
	s.frames = s.frames[:0]
	s.invalid = 0
}

// placements returns the valid placements so far, in drop order.
func (s *Simulator) placements() []Placement {
	out := make([]Placement, 0, len(s.frames))
	for _, f := range s.frames {
		if f.valid {
			out = append(out, f.placement)
		}
	}
	return out
}

// VirtualCount is the number of virtually occupied cells.
func (s *Simulator) VirtualCount() int {
	return s.virtual.Len()
}

// Resolve materialises the simulation: a copy of the grid with every
// virtual cell set and the full rows cleared. The row count does not
// change. The grid itself is untouched.
func (s *Simulator) Resolve() *board.Grid {
	g := s.grid.Copy()
	for _, pl := range s.placements() {
		g.SetCells(pl.Cells[:], pl.Piece.Shape.Color())
	}
	full := make([]int, 0, 4)
	for r := 0; r < g.Rows(); r++ {
		if g.IsRowFull(r) {
			full = append(full, r)
		}
	}
	g.ClearRows(full)
	return g
}
