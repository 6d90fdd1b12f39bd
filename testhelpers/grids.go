// Package testhelpers builds the grids the package tests share.
package testhelpers

import (
	"strings"

	"github.com/domino14/tetrad/board"
)

// Standard playfield: 20 visible rows, 2 hidden spawn rows, 10 columns.
const (
	VisibleRows = 20
	HiddenRows  = 2
	Rows        = VisibleRows + HiddenRows
	Cols        = 10
)

// EmptyGrid returns an empty standard grid.
func EmptyGrid() *board.Grid {
	return board.NewGrid(Rows, Cols)
}

// MustGrid parses text rows (top first) and panics on error.
func MustGrid(rows ...string) *board.Grid {
	g, err := board.FromRows(rows)
	if err != nil {
		panic(err)
	}
	return g
}

// BottomRows returns a standard-size grid whose lowest rows are the given
// text rows; everything above them is empty.
func BottomRows(rows ...string) *board.Grid {
	if len(rows) > Rows {
		panic("too many rows")
	}
	all := make([]string, 0, Rows)
	for i := 0; i < Rows-len(rows); i++ {
		all = append(all, strings.Repeat(".", Cols))
	}
	all = append(all, rows...)
	return MustGrid(all...)
}

// GridWithGap returns a standard grid whose bottom row is full except for
// a single empty cell at gapCol.
func GridWithGap(gapCol int) *board.Grid {
	row := []byte(strings.Repeat("#", Cols))
	row[gapCol] = '.'
	return BottomRows(string(row))
}
