package move

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrBadMove = errors.New("bad move")

// Move is where a piece goes: the target column of its anchor and the
// number of clockwise rotations from its base orientation.
type Move struct {
	Col      int
	Rotation int
}

// ShortDescription is the compact notation used by the shell and the logs,
// for example "c3r1".
func (m Move) ShortDescription() string {
	return fmt.Sprintf("c%dr%d", m.Col, m.Rotation)
}

func (m Move) String() string {
	return m.ShortDescription()
}

// FromString parses either the short "c3r1" form or two fields "3 1".
func FromString(s string) (Move, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	var col, rot string
	if strings.HasPrefix(s, "c") {
		body := s[1:]
		idx := strings.IndexByte(body, 'r')
		if idx < 0 {
			return Move{}, fmt.Errorf("%q: %w", s, ErrBadMove)
		}
		col, rot = body[:idx], body[idx+1:]
	} else {
		fields := strings.Fields(s)
		if len(fields) != 2 {
			return Move{}, fmt.Errorf("%q: %w", s, ErrBadMove)
		}
		col, rot = fields[0], fields[1]
	}
	return FromFields(col, rot)
}

// FromFields parses a column and a rotation count.
func FromFields(col, rot string) (Move, error) {
	c, err := strconv.Atoi(col)
	if err != nil {
		return Move{}, fmt.Errorf("column %q: %w", col, ErrBadMove)
	}
	r, err := strconv.Atoi(rot)
	if err != nil {
		return Move{}, fmt.Errorf("rotation %q: %w", rot, ErrBadMove)
	}
	if r < 0 || r > 3 {
		return Move{}, fmt.Errorf("rotation %d out of range: %w", r, ErrBadMove)
	}
	return Move{Col: c, Rotation: r}, nil
}

// Route is the line of play chosen by the search: one move per lookahead
// piece, and the score of the leaf it leads to.
type Route struct {
	Moves []Move
	Score float64
}

// NoRoute is what a search returns when nothing could be placed.
func NoRoute() Route {
	return Route{Score: math.Inf(-1)}
}

// Empty is true when the route has no moves.
func (r Route) Empty() bool {
	return len(r.Moves) == 0
}

// First returns the move for the current piece.
func (r Route) First() (Move, bool) {
	if len(r.Moves) == 0 {
		return Move{}, false
	}
	return r.Moves[0], true
}

// Prepend returns a new route with m in front of sub's moves and sub's
// score.
func Prepend(m Move, sub Route) Route {
	moves := make([]Move, 0, len(sub.Moves)+1)
	moves = append(moves, m)
	moves = append(moves, sub.Moves...)
	return Route{Moves: moves, Score: sub.Score}
}

func (r Route) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Route; val %.6f\n", r.Score)
	for i, m := range r.Moves {
		fmt.Fprintf(&sb, "%d: %s\n", i+1, m.ShortDescription())
	}
	return sb.String()
}

// NLBString has no line breaks, for logs.
func (r Route) NLBString() string {
	parts := make([]string, len(r.Moves))
	for i, m := range r.Moves {
		parts[i] = m.ShortDescription()
	}
	return fmt.Sprintf("Route; val %.6f; %s", r.Score, strings.Join(parts, " "))
}
