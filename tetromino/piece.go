package tetromino

import (
	"fmt"

	"github.com/domino14/tetrad/board"
)

// Piece is a shape with a rotation state and an anchor. The anchor is the
// top-left corner of the shape's bounding box.
type Piece struct {
	Shape    Shape
	Rotation int
	Row      int
	Col      int
}

// Collider is anything that can say whether a set of cells is blocked.
type Collider interface {
	Collides(cells []board.Pos) bool
}

// Spawn places a new piece at the top of a grid with the given number of
// columns.
func Spawn(s Shape, cols int) Piece {
	return Piece{Shape: s, Row: 0, Col: cols/2 - 2}
}

// SpawnAll spawns one piece per shape.
func SpawnAll(shapes []Shape, cols int) []Piece {
	pieces := make([]Piece, len(shapes))
	for i, s := range shapes {
		pieces[i] = Spawn(s, cols)
	}
	return pieces
}

func (p Piece) String() string {
	return fmt.Sprintf("%v r%d @%d,%d", p.Shape, p.Rotation, p.Row, p.Col)
}

// Rotated advances the rotation state by n (mod 4). It does not check the
// result against any grid.
func (p Piece) Rotated(n int) Piece {
	p.Rotation = wrapRotation(p.Rotation + n)
	return p
}

// Cells returns the absolute positions of the piece.
func (p Piece) Cells() [CellCount]board.Pos {
	return p.CellsAt(0, 0)
}

// CellsAt returns the absolute positions of the piece if its anchor were
// moved by rowShift and colShift.
func (p Piece) CellsAt(rowShift, colShift int) [CellCount]board.Pos {
	cells := p.Shape.Offsets(p.Rotation)
	for i := range cells {
		cells[i].Row += p.Row + rowShift
		cells[i].Col += p.Col + colShift
	}
	return cells
}

// TryRotate rotates the piece once clockwise. If the rotated piece is
// blocked it tries a kick one column left, then one column right. ok is
// false if none of these fit, and the piece is returned unchanged.
func (p Piece) TryRotate(c Collider) (Piece, bool) {
	r := p.Rotated(1)
	for _, kick := range [...]int{0, -1, 1} {
		cells := r.CellsAt(0, kick)
		if !c.Collides(cells[:]) {
			r.Col += kick
			return r, true
		}
	}
	return p, false
}

// Shift moves the piece dx columns if it fits.
func (p Piece) Shift(c Collider, dx int) (Piece, bool) {
	cells := p.CellsAt(0, dx)
	if c.Collides(cells[:]) {
		return p, false
	}
	p.Col += dx
	return p, true
}
