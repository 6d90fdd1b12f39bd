package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"

	"github.com/domino14/tetrad/board"
	"github.com/domino14/tetrad/move"
	"github.com/domino14/tetrad/search"
	"github.com/domino14/tetrad/testhelpers"
	"github.com/domino14/tetrad/tetromino"
)

func seeded(b byte) *frand.RNG {
	var seed [32]byte
	seed[0] = b
	return frand.NewCustom(seed[:], 1024, 12)
}

func TestNewGame(t *testing.T) {
	is := is.New(t)
	g := NewGame(DefaultRules(), seeded(1))
	is.Equal(g.Grid().Rows(), 22)
	is.Equal(g.Grid().Cols(), 10)
	is.Equal(g.Turn(), 1)
	is.Equal(g.ActorOnTurn(), ActorPlayer)
	is.Equal(g.Playing(), PlayStatePlaying)
	is.Equal(g.Current().Row, 0)
	is.Equal(g.Current().Col, 3)

	la := g.Lookahead(3)
	is.Equal(len(la), 3)
	is.Equal(la[0].Shape, g.Current().Shape)
	is.Equal(la[1].Shape, g.Next(1)[0])
	is.Equal(g.Lookahead(0), nil)
}

func TestSameSeedSameGame(t *testing.T) {
	is := is.New(t)
	g1 := NewGame(DefaultRules(), seeded(7))
	g2 := NewGame(DefaultRules(), seeded(7))
	solver := search.NewSolver(nil)
	solver.SetPolicy(search.Self)

	for i := 0; i < 20; i++ {
		is.Equal(g1.Current().Shape, g2.Current().Shape)
		r1, _, err := g1.PlayBest(solver, 1)
		is.NoErr(err)
		r2, _, err := g2.PlayBest(solver, 1)
		is.NoErr(err)
		is.Equal(r1, r2)
	}
	is.True(g1.Grid().Equal(g2.Grid()))
	is.Equal(g1.PiecesPlaced(), 20)
}

func TestPlayMoveClearsAndScores(t *testing.T) {
	is := is.New(t)
	g := NewGame(DefaultRules(), seeded(2))
	is.NoErr(g.LoadGrid(testhelpers.GridWithGap(5)))
	g.SetCurrent(tetromino.I)

	cleared, err := g.PlayMove(move.Move{Col: 3, Rotation: 1})
	is.NoErr(err)
	is.Equal(cleared, 1)
	is.Equal(g.PointsFor(ActorPlayer), 100)
	is.Equal(g.LinesFor(ActorPlayer), 1)
	is.Equal(g.PointsFor(ActorBot), 0)
	is.Equal(g.Turn(), 2)
	is.Equal(g.ActorOnTurn(), ActorBot)
	is.Equal(g.Grid().Heights(), []int{0, 0, 0, 0, 0, 3, 0, 0, 0, 0})
}

func TestFourLinesScoreForTheBot(t *testing.T) {
	is := is.New(t)
	g := NewGame(DefaultRules(), seeded(3))
	row := "#####.####"
	is.NoErr(g.LoadGrid(testhelpers.BottomRows(row, row, row, row)))

	// the player's turn goes by without clearing anything.
	g.SetCurrent(tetromino.O)
	cleared, err := g.PlayMove(move.Move{Col: 0, Rotation: 0})
	is.NoErr(err)
	is.Equal(cleared, 0)

	g.SetCurrent(tetromino.I)
	cleared, err = g.PlayMove(move.Move{Col: 3, Rotation: 1})
	is.NoErr(err)
	is.Equal(cleared, 4)
	is.Equal(g.PointsFor(ActorBot), 800)
	is.Equal(g.LinesFor(ActorBot), 4)
	is.Equal(g.TotalPoints(), 800)
	is.Equal(g.TotalLines(), 4)
	// only the O is left, moved down four rows.
	is.Equal(g.Grid().OccupiedCount(), 4)
	is.Equal(g.Grid().Heights()[0], 2)
}

func TestBadMoves(t *testing.T) {
	is := is.New(t)
	g := NewGame(DefaultRules(), seeded(4))
	g.SetCurrent(tetromino.I)

	_, err := g.PlayMove(move.Move{Col: 7, Rotation: 0})
	is.True(errors.Is(err, move.ErrBadMove))
	_, err = g.PlayMove(move.Move{Col: 0, Rotation: 4})
	is.True(errors.Is(err, move.ErrBadMove))
	is.Equal(g.Turn(), 1)
}

func TestGameOverWhenSpawnIsBlocked(t *testing.T) {
	is := is.New(t)
	g := NewGame(DefaultRules(), seeded(5))

	grid := board.NewGrid(22, 10)
	var tower []board.Pos
	for r := 1; r < 22; r++ {
		tower = append(tower, board.Pos{Row: r, Col: 4})
	}
	grid.SetCells(tower, 8)
	is.NoErr(g.LoadGrid(grid))

	g.SetCurrent(tetromino.O)
	_, err := g.PlayMove(move.Move{Col: 0, Rotation: 0})
	is.NoErr(err)
	is.Equal(g.Playing(), PlayStateGameOver)

	_, err = g.PlayMove(move.Move{Col: 0, Rotation: 0})
	is.True(errors.Is(err, ErrGameOver))
	_, _, err = g.PlayBest(search.NewSolver(nil), 1)
	is.True(errors.Is(err, ErrGameOver))
	is.True(!g.Shift(1))
	is.True(strings.Contains(g.ToDisplayText(), "Game over."))
}

func TestInteractiveControl(t *testing.T) {
	is := is.New(t)
	g := NewGame(DefaultRules(), seeded(6))
	g.SetCurrent(tetromino.T)

	// walk to the left wall
	for g.Shift(-1) {
	}
	is.Equal(g.Current().Col, 0)
	is.True(g.Rotate())
	is.Equal(g.Current().Rotation, 1)

	locked, _, err := g.Tick()
	is.NoErr(err)
	is.True(!locked)
	is.Equal(g.Current().Row, 1)

	_, err = g.Drop()
	is.NoErr(err)
	is.Equal(g.PiecesPlaced(), 1)
	is.Equal(g.Grid().OccupiedCount(), 4)
	// a T rotated once is three tall and stands in its box's middle column.
	is.Equal(g.Grid().ColumnHeight(1), 3)
}

func TestLoadGridChecksSize(t *testing.T) {
	is := is.New(t)
	g := NewGame(DefaultRules(), seeded(8))
	is.True(g.LoadGrid(board.NewGrid(20, 10)) != nil)
}

func TestDisplay(t *testing.T) {
	is := is.New(t)
	g := NewGame(DefaultRules(), seeded(9))
	text := g.ToDisplayText()
	is.True(strings.Contains(text, "Turn 1 (player)"))
	is.True(strings.Contains(text, "Next:  "))
	is.True(strings.HasPrefix(text, "   0123456789"))
	is.Equal(PieceShapes(tetromino.SpawnAll([]tetromino.Shape{tetromino.T, tetromino.I}, 10)), "TI")
	is.True(strings.HasPrefix(g.QueueText(2), "current: "))
}
