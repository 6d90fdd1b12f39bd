package equity

import (
	"math"

	"github.com/samber/lo"

	"github.com/domino14/tetrad/placement"
)

// Heuristic weights. These are a fixed policy of the engine and decide the
// ranking between close candidates, so they must not be rounded.
const (
	AggregateHeightWeight = -0.510066
	LinesClearedWeight    = 0.760666
	HolesWeight           = -0.35663
	BumpinessWeight       = -0.184483
)

// Term is one weighted feature of a linear evaluation.
type Term struct {
	Name    string
	Weight  float64
	Feature func(f placement.Features) float64
}

// Value is the weighted contribution of this term.
func (t Term) Value(f placement.Features) float64 {
	return t.Weight * t.Feature(f)
}

// HeuristicCalculator scores a board with a fixed linear combination of
// aggregate height, cleared lines, holes and bumpiness.
type HeuristicCalculator struct {
	terms []Term
}

// NewHeuristicCalculator returns the calculator with the engine's weights.
func NewHeuristicCalculator() *HeuristicCalculator {
	return &HeuristicCalculator{
		terms: []Term{
			{
				Name:    "aggregate-height",
				Weight:  AggregateHeightWeight,
				Feature: func(f placement.Features) float64 { return float64(f.AggregateHeight) },
			},
			{
				Name:    "lines-cleared",
				Weight:  LinesClearedWeight,
				Feature: func(f placement.Features) float64 { return float64(f.LinesCleared) },
			},
			{
				Name:    "holes",
				Weight:  HolesWeight,
				Feature: func(f placement.Features) float64 { return float64(f.Holes) },
			},
			{
				Name:    "bumpiness",
				Weight:  BumpinessWeight,
				Feature: func(f placement.Features) float64 { return float64(f.Bumpiness) },
			},
		},
	}
}

// Terms returns the weighted terms in evaluation order.
func (h *HeuristicCalculator) Terms() []Term {
	return h.terms
}

// Equity implements Calculator. An invalid placement scores -Inf so the
// search can never pick it.
func (h *HeuristicCalculator) Equity(f placement.Features) float64 {
	if !f.Valid {
		return math.Inf(-1)
	}
	return lo.SumBy(h.terms, func(t Term) float64 {
		return t.Value(f)
	})
}

// Breakdown returns each term's contribution, for diagnostics.
func (h *HeuristicCalculator) Breakdown(f placement.Features) map[string]float64 {
	return lo.SliceToMap(h.terms, func(t Term) (string, float64) {
		return t.Name, t.Value(f)
	})
}
