// Package tetromino has the seven piece shapes, their rotation states and
// the piece bag that feeds a game.
package tetromino

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domino14/tetrad/board"
)

// Shape is one of the seven canonical tetrominoes.
type Shape uint8

const (
	I Shape = iota
	O
	T
	S
	Z
	J
	L

	NumShapes = 7
)

const (
	NumRotations = 4
	CellCount    = 4
)

var ErrUnknownShape = errors.New("unknown shape")

const shapeLetters = "IOTSZJL"

func (s Shape) String() string {
	if int(s) >= NumShapes {
		return "?"
	}
	return string(shapeLetters[s])
}

// Color is the tag a locked piece of this shape leaves in the grid.
func (s Shape) Color() board.Cell {
	return board.Cell(s) + 1
}

// ParseShape reads a single shape letter, case-insensitively.
func ParseShape(str string) (Shape, error) {
	if len(str) != 1 {
		return 0, fmt.Errorf("%q: %w", str, ErrUnknownShape)
	}
	i := strings.IndexByte(shapeLetters, strings.ToUpper(str)[0])
	if i < 0 {
		return 0, fmt.Errorf("%q: %w", str, ErrUnknownShape)
	}
	return Shape(i), nil
}

// ParseShapes reads a run of shape letters such as "TIO".
func ParseShapes(str string) ([]Shape, error) {
	shapes := make([]Shape, 0, len(str))
	for _, ch := range str {
		s, err := ParseShape(string(ch))
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}

// Base orientations, inside each shape's bounding box. Rotation state 0 is
// the spawn orientation.
var baseMatrices = [NumShapes][]string{
	I: {
		"....",
		"XXXX",
		"....",
		"....",
	},
	O: {
		"XX",
		"XX",
	},
	T: {
		".X.",
		"XXX",
		"...",
	},
	S: {
		".XX",
		"XX.",
		"...",
	},
	Z: {
		"XX.",
		".XX",
		"...",
	},
	J: {
		"X..",
		"XXX",
		"...",
	},
	L: {
		"..X",
		"XXX",
		"...",
	},
}

// offsetTable maps shape x rotation to the filled cells relative to the top
// left of the bounding box, in row-major order.
var offsetTable [NumShapes][NumRotations][CellCount]board.Pos

var distinctRotations [NumShapes]int

func init() {
	for s := 0; s < NumShapes; s++ {
		m := parseMatrix(baseMatrices[s])
		seen := map[[CellCount]board.Pos]bool{}
		for rot := 0; rot < NumRotations; rot++ {
			offsetTable[s][rot] = matrixOffsets(m)
			// Distinct up to translation; the O shape only has one state.
			seen[normalize(offsetTable[s][rot])] = true
			m = rotateClockwise(m)
		}
		distinctRotations[s] = len(seen)
	}
}

func parseMatrix(rows []string) [][]bool {
	m := make([][]bool, len(rows))
	for r, row := range rows {
		m[r] = make([]bool, len(row))
		for c := range row {
			m[r][c] = row[c] == 'X'
		}
	}
	return m
}

func rotateClockwise(m [][]bool) [][]bool {
	n := len(m)
	out := make([][]bool, n)
	for r := 0; r < n; r++ {
		out[r] = make([]bool, n)
		for c := 0; c < n; c++ {
			out[r][c] = m[n-1-c][r]
		}
	}
	return out
}

func matrixOffsets(m [][]bool) [CellCount]board.Pos {
	var offsets [CellCount]board.Pos
	i := 0
	for r := range m {
		for c := range m[r] {
			if m[r][c] {
				offsets[i] = board.Pos{Row: r, Col: c}
				i++
			}
		}
	}
	if i != CellCount {
		panic("shape does not have four cells")
	}
	return offsets
}

func normalize(offsets [CellCount]board.Pos) [CellCount]board.Pos {
	minRow, minCol := offsets[0].Row, offsets[0].Col
	for _, p := range offsets {
		minRow = min(minRow, p.Row)
		minCol = min(minCol, p.Col)
	}
	for i := range offsets {
		offsets[i].Row -= minRow
		offsets[i].Col -= minCol
	}
	return offsets
}

// Offsets returns the relative cells of the shape in the given rotation
// state. The rotation is taken mod 4.
func (s Shape) Offsets(rotation int) [CellCount]board.Pos {
	return offsetTable[s][wrapRotation(rotation)]
}

// DistinctRotations is the number of rotation states that differ in
// footprint: 1 for O, 2 for I, S and Z, 4 for the rest.
func (s Shape) DistinctRotations() int {
	return distinctRotations[s]
}

func wrapRotation(r int) int {
	return ((r % NumRotations) + NumRotations) % NumRotations
}
