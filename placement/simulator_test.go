package placement

import (
	"math"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tetrad/board"
	"github.com/domino14/tetrad/testhelpers"
	"github.com/domino14/tetrad/tetromino"
)

func TestSinglePieceOnEmptyGrid(t *testing.T) {
	is := is.New(t)
	g := testhelpers.EmptyGrid()

	for s := 0; s < tetromino.NumShapes; s++ {
		for rot := 0; rot < tetromino.NumRotations; rot++ {
			p := tetromino.Spawn(tetromino.Shape(s), g.Cols()).Rotated(rot)
			for col := 0; col < g.Cols(); col++ {
				start := p.CellsAt(0, col-p.Col)
				legal := !g.Collides(start[:])

				sim := NewSimulator(g)
				pl, ok := sim.Drop(p, col)
				is.Equal(ok, legal)
				if !legal {
					is.True(sim.Invalid())
					continue
				}
				is.True(!sim.Invalid())

				// The piece rests on the floor and the aggregate height is
				// the height of its footprint in each column it covers.
				top := map[int]int{}
				lowest := 0
				for _, c := range pl.Cells {
					if r, seen := top[c.Col]; !seen || c.Row < r {
						top[c.Col] = c.Row
					}
					lowest = max(lowest, c.Row)
				}
				is.Equal(lowest, g.Rows()-1)
				expected := 0
				for _, r := range top {
					expected += g.Rows() - r
				}
				is.Equal(sim.AggregateHeight(), float64(expected))
			}
		}
	}
}

func TestFlatIAtColumnThree(t *testing.T) {
	is := is.New(t)
	g := testhelpers.EmptyGrid()

	p := tetromino.Spawn(tetromino.I, g.Cols())
	sim := Simulate(g, []Step{{Piece: p, Col: 3}})
	is.True(!sim.Invalid())

	pls := sim.placements()
	is.Equal(len(pls), 1)
	is.Equal(pls[0].Cells, [tetromino.CellCount]board.Pos{{Row: 21, Col: 3}, {Row: 21, Col: 4}, {Row: 21, Col: 5}, {Row: 21, Col: 6}})
	is.Equal(pls[0].RowShift, 20)

	is.Equal(sim.AggregateHeight(), 4.0)
	is.Equal(sim.Holes(), 0)
	is.Equal(sim.LinesCleared(), 0)
	is.Equal(sim.Bumpiness(), 2.0)
	is.Equal(sim.Heights(), []int{0, 0, 0, 1, 1, 1, 1, 0, 0, 0})

	f := sim.Features()
	is.Equal(f, Features{AggregateHeight: 4, LinesCleared: 0, Holes: 0, Bumpiness: 2, Valid: true})
}

func TestFillingTheGapClearsALine(t *testing.T) {
	is := is.New(t)
	g := testhelpers.GridWithGap(5)
	before := g.Copy()

	// A vertical I lives in column 2 of its box.
	p := tetromino.Spawn(tetromino.I, g.Cols()).Rotated(1)
	sim := Simulate(g, []Step{{Piece: p, Col: 3}})
	is.True(!sim.Invalid())
	is.Equal(sim.LinesCleared(), 1)
	is.Equal(sim.Holes(), 0)
	is.Equal(sim.AggregateHeight(), 13.0)

	resolved := sim.Resolve()
	is.Equal(resolved.Rows(), g.Rows())
	is.Equal(resolved.Heights(), []int{0, 0, 0, 0, 0, 3, 0, 0, 0, 0})
	is.Equal(resolved.OccupiedCount(), 3)

	// the caller's grid never changes.
	is.True(g.Equal(before))
}

func TestLaterPiecesCollideWithEarlierOnes(t *testing.T) {
	is := is.New(t)
	g := testhelpers.EmptyGrid()
	o := tetromino.Spawn(tetromino.O, g.Cols())

	sim := NewSimulator(g)
	first, ok := sim.Drop(o, 0)
	is.True(ok)
	second, ok := sim.Drop(o, 0)
	is.True(ok)
	is.Equal(first.Cells[0], board.Pos{Row: 20, Col: 0})
	is.Equal(second.Cells[0], board.Pos{Row: 18, Col: 0})
	is.Equal(second.Piece.Row, 18)
	is.Equal(sim.ColumnHeight(0), 4)
	is.Equal(sim.VirtualCount(), 8)
	is.Equal(sim.Depth(), 2)

	sim.Undo()
	is.Equal(sim.ColumnHeight(0), 2)
	is.Equal(sim.VirtualCount(), 4)
	is.Equal(g.OccupiedCount(), 0)
}

func TestInvalidSequenceSentinels(t *testing.T) {
	is := is.New(t)
	g := testhelpers.EmptyGrid()
	i := tetromino.Spawn(tetromino.I, g.Cols())

	sim := NewSimulator(g)
	_, ok := sim.Drop(i, 0)
	is.True(ok)
	// A flat I anchored at column 7 sticks out past the right wall.
	_, ok = sim.Drop(i, 7)
	is.True(!ok)
	is.True(sim.Invalid())
	// Once invalid, the whole sequence stays invalid.
	_, ok = sim.Drop(i, 0)
	is.True(!ok)

	is.True(math.IsInf(sim.AggregateHeight(), 1))
	is.True(math.IsInf(sim.Bumpiness(), 1))
	is.Equal(sim.LinesCleared(), -1)
	is.Equal(sim.Holes(), -1)
	is.True(!sim.Features().Valid)

	sim.Undo()
	sim.Undo()
	is.True(!sim.Invalid())
	is.Equal(sim.AggregateHeight(), 4.0)

	sim.Reset()
	is.Equal(sim.Depth(), 0)
	is.Equal(sim.AggregateHeight(), 0.0)
}

func TestBlockedSpawnIsInvalid(t *testing.T) {
	is := is.New(t)
	g := testhelpers.EmptyGrid()
	g.SetCells([]board.Pos{{Row: 1, Col: 4}}, 1)

	sim := NewSimulator(g)
	_, ok := sim.Drop(tetromino.Spawn(tetromino.I, g.Cols()), 3)
	is.True(!ok)
	is.True(sim.Invalid())
}

func TestHolesCountRealAndVirtual(t *testing.T) {
	is := is.New(t)
	g := testhelpers.BottomRows(
		"#.........",
		"..........",
		"..........",
	)
	sim := NewSimulator(g)
	is.Equal(sim.Holes(), 2)

	// A flat S leaves an empty cell under its right overhang.
	_, ok := sim.Drop(tetromino.Spawn(tetromino.S, g.Cols()), 4)
	is.True(ok)
	is.Equal(sim.Holes(), 3)
	is.Equal(sim.Heights(), []int{3, 0, 0, 0, 1, 2, 2, 0, 0, 0})
	is.Equal(sim.Bumpiness(), 3.0+0+0+1+1+0+2+0+0)
}
