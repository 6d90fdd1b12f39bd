package equity

import (
	"github.com/domino14/tetrad/placement"
)

// Calculator turns the measurements of a simulated board into a single
// score. Higher is better for the side that made the placement.
type Calculator interface {
	Equity(f placement.Features) float64
}
