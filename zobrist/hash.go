package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/tetrad/board"
)

const bignum = 1<<63 - 2

// Zobrist hashes a set of occupied cells. Two sets hash the same no matter
// the order their cells were added in.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	posTable []uint64
	rows     int
	cols     int
}

// Initialize builds random keys for every cell of a rows x cols grid.
func (z *Zobrist) Initialize(rows, cols int) {
	z.InitializeWith(frand.New(), rows, cols)
}

// InitializeWith is Initialize with a caller-supplied rng, for
// reproducible keys.
func (z *Zobrist) InitializeWith(rng *frand.RNG, rows, cols int) {
	z.rows = rows
	z.cols = cols
	z.posTable = make([]uint64, rows*cols)
	for i := range z.posTable {
		z.posTable[i] = rng.Uint64n(bignum) + 1
	}
}

// Dims returns the grid dimensions the keys were built for.
func (z *Zobrist) Dims() (int, int) {
	return z.rows, z.cols
}

// AddCells toggles the given cells into key. Calling it again with the
// same cells removes them.
func (z *Zobrist) AddCells(key uint64, cells []board.Pos) uint64 {
	for _, p := range cells {
		key ^= z.posTable[p.Row*z.cols+p.Col]
	}
	return key
}
