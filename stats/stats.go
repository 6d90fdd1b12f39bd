// Package stats summarises samples collected over many games.
package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Sample keeps every value pushed to it.
type Sample struct {
	values []float64
}

func (s *Sample) Push(val float64) {
	s.values = append(s.values, val)
}

func (s *Sample) Len() int {
	return len(s.values)
}

func (s *Sample) Values() []float64 {
	return s.values
}

func (s *Sample) Mean() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return stat.Mean(s.values, nil)
}

// Stdev is the sample standard deviation; zero with fewer than two values.
func (s *Sample) Stdev() float64 {
	if len(s.values) < 2 {
		return 0
	}
	return stat.StdDev(s.values, nil)
}

func (s *Sample) StandardError() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.Stdev() / math.Sqrt(float64(len(s.values)))
}

// ConfidenceInterval returns the half-width of the interval around the mean
// at the given confidence, in percent.
func (s *Sample) ConfidenceInterval(pct float64) float64 {
	return ZVal(pct) * s.StandardError()
}

func (s *Sample) Min() float64 {
	if len(s.values) == 0 {
		return 0
	}
	m := s.values[0]
	for _, v := range s.values[1:] {
		m = min(m, v)
	}
	return m
}

func (s *Sample) Max() float64 {
	if len(s.values) == 0 {
		return 0
	}
	m := s.values[0]
	for _, v := range s.values[1:] {
		m = max(m, v)
	}
	return m
}

// Fprint draws a histogram of the sample. Nothing is drawn for an empty
// sample, and a sample of identical values is a single line.
func (s *Sample) Fprint(w io.Writer, bins, width int) error {
	if len(s.values) == 0 {
		return nil
	}
	if s.Min() == s.Max() {
		_, err := fmt.Fprintf(w, "%g: %d\n", s.values[0], len(s.values))
		return err
	}
	h := histogram.Hist(bins, s.values)
	return histogram.Fprint(w, h, histogram.Linear(width))
}

// ZVal returns the two-tailed Z-value for a confidence interval given in
// percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}
