package board

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestCollidesOutOfBounds(t *testing.T) {
	is := is.New(t)
	g := NewGrid(22, 10)

	for _, p := range []Pos{
		{-1, 0}, {0, -1}, {22, 0}, {0, 10}, {-5, -5}, {22, 10}, {100, 3},
	} {
		is.True(g.Collides([]Pos{p})) // out of bounds must collide
	}
	is.True(!g.Collides([]Pos{{0, 0}, {21, 9}, {10, 5}}))
	is.True(!g.Collides(nil))
}

func TestCollidesOccupied(t *testing.T) {
	is := is.New(t)
	g := NewGrid(4, 4)
	g.SetCells([]Pos{{3, 1}}, 2)
	is.True(g.Collides([]Pos{{0, 0}, {3, 1}}))
	is.True(!g.Collides([]Pos{{3, 0}, {3, 2}}))
}

func TestColumnHeights(t *testing.T) {
	is := is.New(t)
	g, err := FromRows([]string{
		"....",
		".I..",
		".I.O",
		"TI.O",
	})
	is.NoErr(err)
	is.Equal(g.ColumnHeight(0), 1)
	is.Equal(g.ColumnHeight(1), 3)
	is.Equal(g.ColumnHeight(2), 0)
	is.Equal(g.ColumnHeight(3), 2)
	is.Equal(g.ColumnHeight(-1), 0)
	is.Equal(g.ColumnHeight(4), 0)
	is.Equal(g.Heights(), []int{1, 3, 0, 2})
}

func TestSetCellsReturnsTouchedRows(t *testing.T) {
	is := is.New(t)
	g := NewGrid(5, 3)
	rows := g.SetCells([]Pos{{4, 0}, {2, 1}, {4, 1}, {2, 2}}, 3)
	is.Equal(rows, []int{2, 4})
	is.Equal(g.FullRows(rows), []int{})

	rows = g.SetCells([]Pos{{4, 2}}, 3)
	is.Equal(g.FullRows(rows), []int{4})
	is.True(g.IsRowFull(4))
	is.True(!g.IsRowFull(2))
	is.True(!g.IsRowFull(-1))
}

func TestClearRows(t *testing.T) {
	is := is.New(t)
	g, err := FromRows([]string{
		"...",
		"I..",
		"OOO",
		".T.",
		"SSS",
	})
	is.NoErr(err)
	g.ClearRows([]int{4, 2})

	is.Equal(g.Rows(), 5)
	is.Equal(g.Strings(), []string{
		"...",
		"...",
		"...",
		"I..",
		".T.",
	})
}

func TestClearRowsShiftsByNumberCleared(t *testing.T) {
	is := is.New(t)
	g, err := FromRows([]string{
		"J..",
		".L.",
		"ZZZ",
		"ZZZ",
		"..T",
	})
	is.NoErr(err)
	g.ClearRows([]int{2, 3})
	is.Equal(g.Rows(), 5)
	// the two rows above the cleared pair moved down by two.
	is.Equal(g.Strings(), []string{
		"...",
		"...",
		"J..",
		".L.",
		"..T",
	})
	g.ClearRows(nil)
	is.Equal(g.OccupiedCount(), 3)
}

func TestFromRowsRagged(t *testing.T) {
	is := is.New(t)
	_, err := FromRows([]string{"...", ".."})
	is.True(errors.Is(err, ErrRaggedGrid))
}

func TestCopyIsIndependent(t *testing.T) {
	is := is.New(t)
	g := NewGrid(3, 3)
	c := g.Copy()
	c.SetCells([]Pos{{0, 0}}, 1)
	is.True(!g.Occupied(0, 0))
	is.True(c.Occupied(0, 0))
	is.True(!g.Equal(c))
	g.CopyFrom(c)
	is.True(g.Equal(c))
}

func TestDisplayTextSkipsHiddenRows(t *testing.T) {
	is := is.New(t)
	g, err := FromRows([]string{
		"I.",
		"..",
		".O",
	})
	is.NoErr(err)
	is.Equal(g.ToDisplayText(1), "   01\n"+
		" 0|..|\n"+
		" 1|.O|\n"+
		"  +--+\n")
}
