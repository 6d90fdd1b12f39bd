// Package game is the turn layer around a single playfield: it spawns
// pieces from the bag, locks them, clears rows and keeps score for the
// player and the bot, who take alternate turns on the same board.
package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/tetrad/board"
	"github.com/domino14/tetrad/move"
	"github.com/domino14/tetrad/placement"
	"github.com/domino14/tetrad/search"
	"github.com/domino14/tetrad/tetromino"
)

var ErrGameOver = errors.New("game is over")

type PlayState int

const (
	PlayStatePlaying PlayState = iota
	PlayStateGameOver
)

// Actor is whoever places the piece on a given turn.
type Actor int

const (
	ActorPlayer Actor = iota
	ActorBot
)

func (a Actor) String() string {
	if a == ActorBot {
		return "bot"
	}
	return "player"
}

// Game is a single game in progress.
type Game struct {
	rules   Rules
	grid    *board.Grid
	bag     *tetromino.Bag
	current tetromino.Piece
	playing PlayState

	// turn starts at 1; odd turns are the player's.
	turn   int
	placed int
	points [2]int
	lines  [2]int
}

// NewGame starts a game and spawns its first piece. A nil rng draws from a
// fresh random source.
func NewGame(rules Rules, rng *frand.RNG) *Game {
	g := &Game{
		rules: rules,
		grid:  board.NewGrid(rules.TotalRows(), rules.Cols),
		bag:   tetromino.NewBag(rng),
		turn:  1,
	}
	g.spawn(g.bag.Next())
	return g
}

func (g *Game) spawn(s tetromino.Shape) {
	g.current = tetromino.Spawn(s, g.rules.Cols)
	cells := g.current.Cells()
	if g.grid.Collides(cells[:]) {
		g.playing = PlayStateGameOver
		log.Debug().Int("turn", g.turn).Str("piece", s.String()).Msg("spawn-blocked")
	}
}

func (g *Game) Rules() Rules {
	return g.rules
}

// Grid is the live grid. Callers must not modify it.
func (g *Game) Grid() *board.Grid {
	return g.grid
}

// Current is the falling piece.
func (g *Game) Current() tetromino.Piece {
	return g.current
}

func (g *Game) Playing() PlayState {
	return g.playing
}

func (g *Game) Turn() int {
	return g.turn
}

// PiecesPlaced counts locked pieces.
func (g *Game) PiecesPlaced() int {
	return g.placed
}

func (g *Game) ActorOnTurn() Actor {
	if g.turn%2 == 1 {
		return ActorPlayer
	}
	return ActorBot
}

func (g *Game) PointsFor(a Actor) int {
	return g.points[a]
}

func (g *Game) LinesFor(a Actor) int {
	return g.lines[a]
}

func (g *Game) TotalPoints() int {
	return g.points[ActorPlayer] + g.points[ActorBot]
}

func (g *Game) TotalLines() int {
	return g.lines[ActorPlayer] + g.lines[ActorBot]
}

// Next returns the n shapes after the current piece.
func (g *Game) Next(n int) []tetromino.Shape {
	if n <= 0 {
		return nil
	}
	return g.bag.Peek(n)
}

// Lookahead is the current piece followed by the next n-1 pieces, each at
// its spawn position, ready to hand to a search.
func (g *Game) Lookahead(n int) []tetromino.Piece {
	if n <= 0 {
		return nil
	}
	shapes := append([]tetromino.Shape{g.current.Shape}, g.Next(n-1)...)
	return tetromino.SpawnAll(shapes, g.rules.Cols)
}

// SetCurrent replaces the falling piece with a freshly spawned one of shape
// s. It does not check for collisions.
func (g *Game) SetCurrent(s tetromino.Shape) {
	g.current = tetromino.Spawn(s, g.rules.Cols)
}

// LoadGrid replaces the playfield. The grid must have the game's
// dimensions.
func (g *Game) LoadGrid(grid *board.Grid) error {
	if grid.Rows() != g.grid.Rows() || grid.Cols() != g.grid.Cols() {
		return fmt.Errorf("grid is %dx%d, game needs %dx%d",
			grid.Rows(), grid.Cols(), g.grid.Rows(), g.grid.Cols())
	}
	g.grid.CopyFrom(grid)
	return nil
}

// PlayMove places the current piece the way the search models it: rotated
// from its spawn orientation, moved to the column and dropped straight
// down. It returns the number of rows cleared.
func (g *Game) PlayMove(m move.Move) (int, error) {
	if g.playing == PlayStateGameOver {
		return 0, ErrGameOver
	}
	if m.Rotation < 0 || m.Rotation >= tetromino.NumRotations {
		return 0, fmt.Errorf("rotation %d: %w", m.Rotation, move.ErrBadMove)
	}
	p := tetromino.Spawn(g.current.Shape, g.rules.Cols).Rotated(m.Rotation)
	sim := placement.NewSimulator(g.grid)
	pl, ok := sim.Drop(p, m.Col)
	if !ok {
		return 0, fmt.Errorf("%s does not fit: %w", m.ShortDescription(), move.ErrBadMove)
	}
	return g.lock(pl.Cells), nil
}

// PlayBest asks the solver for a route over the next lookahead pieces and
// plays its first move.
func (g *Game) PlayBest(solver *search.Solver, lookahead int) (move.Route, int, error) {
	if g.playing == PlayStateGameOver {
		return move.NoRoute(), 0, ErrGameOver
	}
	route, err := solver.FindBestMove(g.grid, g.Lookahead(lookahead))
	if err != nil {
		return route, 0, err
	}
	first, _ := route.First()
	cleared, err := g.PlayMove(first)
	return route, cleared, err
}

// Shift moves the falling piece dx columns if it fits.
func (g *Game) Shift(dx int) bool {
	if g.playing == PlayStateGameOver {
		return false
	}
	p, ok := g.current.Shift(g.grid, dx)
	g.current = p
	return ok
}

// Rotate turns the falling piece clockwise, kicking it one column left or
// right if it does not fit in place.
func (g *Game) Rotate() bool {
	if g.playing == PlayStateGameOver {
		return false
	}
	p, ok := g.current.TryRotate(g.grid)
	g.current = p
	return ok
}

// Tick lets the falling piece fall one row. If it cannot fall it locks,
// and locked is true.
func (g *Game) Tick() (locked bool, cleared int, err error) {
	if g.playing == PlayStateGameOver {
		return false, 0, ErrGameOver
	}
	next := g.current.CellsAt(1, 0)
	if !g.grid.Collides(next[:]) {
		g.current.Row++
		return false, 0, nil
	}
	return true, g.lock(g.current.Cells()), nil
}

// Drop hard-drops the falling piece from where it is now and locks it.
func (g *Game) Drop() (int, error) {
	if g.playing == PlayStateGameOver {
		return 0, ErrGameOver
	}
	sim := placement.NewSimulator(g.grid)
	pl, ok := sim.Drop(g.current, g.current.Col)
	if !ok {
		return 0, fmt.Errorf("%v: %w", g.current, move.ErrBadMove)
	}
	return g.lock(pl.Cells), nil
}

// lock writes cells into the grid, scores any cleared rows for whoever is
// on turn, then advances the turn and spawns the next piece.
func (g *Game) lock(cells [tetromino.CellCount]board.Pos) int {
	touched := g.grid.SetCells(cells[:], g.current.Shape.Color())
	full := g.grid.FullRows(touched)
	actor := g.ActorOnTurn()
	if len(full) > 0 {
		g.points[actor] += pointsFor(len(full))
		g.lines[actor] += len(full)
		g.grid.ClearRows(full)
	}
	log.Debug().
		Int("turn", g.turn).
		Str("actor", actor.String()).
		Str("piece", g.current.Shape.String()).
		Int("cleared", len(full)).
		Msg("piece-locked")
	g.turn++
	g.placed++
	g.spawn(g.bag.Next())
	return len(full)
}
