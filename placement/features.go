package placement

import (
	"math"
)

// Features are the board measurements the evaluator scores. All of them
// count real and virtual occupancy together.
type Features struct {
	AggregateHeight int
	LinesCleared    int
	Holes           int
	Bumpiness       int
	Valid           bool
}

// Features computes all four measurements in one pass. If the sequence is
// invalid only Valid is meaningful (it is false).
func (s *Simulator) Features() Features {
	if s.Invalid() {
		return Features{}
	}
	rows, cols := s.grid.Rows(), s.grid.Cols()
	var f Features
	f.Valid = true
	prevHeight := 0
	for c := 0; c < cols; c++ {
		height := 0
		covered := false
		for r := 0; r < rows; r++ {
			if s.Occupied(r, c) {
				if !covered {
					height = rows - r
					covered = true
				}
			} else if covered {
				f.Holes++
			}
		}
		f.AggregateHeight += height
		if c > 0 {
			f.Bumpiness += abs(height - prevHeight)
		}
		prevHeight = height
	}
	f.LinesCleared = s.fullRows()
	return f
}

func (s *Simulator) fullRows() int {
	rows, cols := s.grid.Rows(), s.grid.Cols()
	n := 0
	for r := 0; r < rows; r++ {
		full := true
		for c := 0; c < cols; c++ {
			if !s.Occupied(r, c) {
				full = false
				break
			}
		}
		if full {
			n++
		}
	}
	return n
}

// ColumnHeight is board.Grid.ColumnHeight over real and virtual cells.
func (s *Simulator) ColumnHeight(col int) int {
	rows := s.grid.Rows()
	for r := 0; r < rows; r++ {
		if s.Occupied(r, col) {
			return rows - r
		}
	}
	return 0
}

// Heights returns every column height, left to right.
func (s *Simulator) Heights() []int {
	heights := make([]int, s.grid.Cols())
	for c := range heights {
		heights[c] = s.ColumnHeight(c)
	}
	return heights
}

// AggregateHeight is the sum of the column heights, or +Inf if the
// sequence is invalid.
func (s *Simulator) AggregateHeight() float64 {
	if s.Invalid() {
		return math.Inf(1)
	}
	sum := 0
	for _, h := range s.Heights() {
		sum += h
	}
	return float64(sum)
}

// LinesCleared counts the full rows, or returns -1 if the sequence is
// invalid.
func (s *Simulator) LinesCleared() int {
	if s.Invalid() {
		return -1
	}
	return s.fullRows()
}

// Holes counts empty cells with an occupied cell somewhere above them in
// the same column, or returns -1 if the sequence is invalid.
func (s *Simulator) Holes() int {
	if s.Invalid() {
		return -1
	}
	return s.Features().Holes
}

// Bumpiness sums the absolute height differences of neighbouring columns,
// or returns +Inf if the sequence is invalid.
func (s *Simulator) Bumpiness() float64 {
	if s.Invalid() {
		return math.Inf(1)
	}
	heights := s.Heights()
	sum := 0
	for c := 1; c < len(heights); c++ {
		sum += abs(heights[c] - heights[c-1])
	}
	return float64(sum)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
