package search

import (
	"fmt"
	"strings"
)

// Policy decides which plies maximise the score and which minimise it.
type Policy int

const (
	// MinFirst is the head-to-head framing: ply 0 minimises, ply 1
	// maximises and so on. It is the zero value.
	MinFirst Policy = iota
	// MaxFirst flips the alternation so the first piece is placed to
	// maximise.
	MaxFirst
	// Self maximises at every ply.
	Self
)

func (p Policy) String() string {
	switch p {
	case MinFirst:
		return "min-first"
	case MaxFirst:
		return "max-first"
	case Self:
		return "self"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// Maximizes reports whether the given ply picks the largest score.
func (p Policy) Maximizes(ply int) bool {
	switch p {
	case Self:
		return true
	case MaxFirst:
		return ply%2 == 0
	default:
		return ply%2 == 1
	}
}

// ParsePolicy accepts the names printed by String.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min-first", "min":
		return MinFirst, nil
	case "max-first", "max":
		return MaxFirst, nil
	case "self":
		return Self, nil
	}
	return MinFirst, fmt.Errorf("unknown search policy %q", s)
}

// better is the strict comparison used when folding children, so an equal
// score never displaces an earlier edge.
func better(candidate, incumbent float64, maximize bool) bool {
	if maximize {
		return candidate > incumbent
	}
	return candidate < incumbent
}
