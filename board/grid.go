package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Cell is the content of one grid square. Empty is zero; any other value is
// an opaque tag (usually the colour of the piece that locked there).
type Cell uint8

const Empty Cell = 0

var ErrRaggedGrid = errors.New("all grid rows must have the same length")

// Pos is an absolute (row, col) coordinate. Row 0 is the top of the grid.
type Pos struct {
	Row int
	Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Grid is a fixed-size occupancy table. It has no notion of hidden rows;
// those are a display offset applied by the caller.
type Grid struct {
	rows  int
	cols  int
	cells []Cell
}

// NewGrid makes an empty rows x cols grid.
func NewGrid(rows, cols int) *Grid {
	if rows < 0 || cols < 0 {
		panic("negative grid dimensions")
	}
	return &Grid{rows: rows, cols: cols, cells: make([]Cell, rows*cols)}
}

func (g *Grid) Rows() int {
	return g.rows
}

func (g *Grid) Cols() int {
	return g.cols
}

// InBounds returns true if the position lies within the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Get returns the cell at row, col. ok is false if the position is outside
// the grid.
func (g *Grid) Get(row, col int) (c Cell, ok bool) {
	if !g.InBounds(row, col) {
		return Empty, false
	}
	return g.cells[row*g.cols+col], true
}

// Occupied is true for an in-bounds, non-empty cell.
func (g *Grid) Occupied(row, col int) bool {
	c, ok := g.Get(row, col)
	return ok && c != Empty
}

// Collides returns true if any of the positions is out of bounds or
// already occupied.
func (g *Grid) Collides(cells []Pos) bool {
	for _, p := range cells {
		if !g.InBounds(p.Row, p.Col) || g.cells[p.Row*g.cols+p.Col] != Empty {
			return true
		}
	}
	return false
}

// IsRowFull returns true if every cell in the row is occupied.
func (g *Grid) IsRowFull(row int) bool {
	if row < 0 || row >= g.rows {
		return false
	}
	for _, c := range g.cells[row*g.cols : (row+1)*g.cols] {
		if c == Empty {
			return false
		}
	}
	return true
}

// ColumnHeight is the height of the stack in a column, counted from the
// floor up to the topmost occupied cell. An empty column has height 0.
func (g *Grid) ColumnHeight(col int) int {
	if col < 0 || col >= g.cols {
		return 0
	}
	for row := 0; row < g.rows; row++ {
		if g.cells[row*g.cols+col] != Empty {
			return g.rows - row
		}
	}
	return 0
}

// Heights returns every column height, left to right.
func (g *Grid) Heights() []int {
	heights := make([]int, g.cols)
	for col := range heights {
		heights[col] = g.ColumnHeight(col)
	}
	return heights
}

// SetCells writes val into every position and returns the distinct rows
// that were touched, in ascending order. Out-of-bounds positions panic.
func (g *Grid) SetCells(cells []Pos, val Cell) []int {
	touched := make([]int, 0, 4)
	for _, p := range cells {
		if !g.InBounds(p.Row, p.Col) {
			panic(fmt.Sprintf("set out of bounds at %v", p))
		}
		g.cells[p.Row*g.cols+p.Col] = val
		found := false
		for _, r := range touched {
			if r == p.Row {
				found = true
				break
			}
		}
		if !found {
			touched = append(touched, p.Row)
		}
	}
	sort.Ints(touched)
	return touched
}

// FullRows filters the given rows down to the ones that are full.
func (g *Grid) FullRows(rows []int) []int {
	full := make([]int, 0, len(rows))
	for _, r := range rows {
		if g.IsRowFull(r) {
			full = append(full, r)
		}
	}
	return full
}

// ClearRows removes the given rows and prepends the same number of empty
// rows at the top, so everything above a cleared row moves down.
func (g *Grid) ClearRows(rows []int) {
	if len(rows) == 0 {
		return
	}
	remove := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r >= 0 && r < g.rows {
			remove[r] = true
		}
	}
	// Walk bottom-up, copying kept rows down to the write cursor.
	dst := g.rows - 1
	for src := g.rows - 1; src >= 0; src-- {
		if remove[src] {
			continue
		}
		if dst != src {
			copy(g.cells[dst*g.cols:(dst+1)*g.cols], g.cells[src*g.cols:(src+1)*g.cols])
		}
		dst--
	}
	for ; dst >= 0; dst-- {
		clear(g.cells[dst*g.cols : (dst+1)*g.cols])
	}
}

// Copy returns a deep copy of the grid.
func (g *Grid) Copy() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{rows: g.rows, cols: g.cols, cells: cells}
}

// CopyFrom copies the contents of other into g. The dimensions must match.
func (g *Grid) CopyFrom(other *Grid) {
	if g.rows != other.rows || g.cols != other.cols {
		panic("grid dimensions do not match")
	}
	copy(g.cells, other.cells)
}

// Equal compares dimensions and cell contents.
func (g *Grid) Equal(other *Grid) bool {
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// OccupiedCount is the number of non-empty cells.
func (g *Grid) OccupiedCount() int {
	n := 0
	for _, c := range g.cells {
		if c != Empty {
			n++
		}
	}
	return n
}

// FromRows parses a grid from text rows, top row first. A '.' is empty;
// any other rune is occupied. Letters keep a stable tag per letter so a
// round trip through Strings preserves them.
func FromRows(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return NewGrid(0, 0), nil
	}
	cols := len([]rune(rows[0]))
	g := NewGrid(len(rows), cols)
	for r, line := range rows {
		runes := []rune(line)
		if len(runes) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w",
				r, len(runes), cols, ErrRaggedGrid)
		}
		for c, ch := range runes {
			g.cells[r*cols+c] = cellFromRune(ch)
		}
	}
	return g, nil
}

// Strings is the inverse of FromRows.
func (g *Grid) Strings() []string {
	out := make([]string, g.rows)
	var sb strings.Builder
	for r := 0; r < g.rows; r++ {
		sb.Reset()
		for c := 0; c < g.cols; c++ {
			sb.WriteRune(runeFromCell(g.cells[r*g.cols+c]))
		}
		out[r] = sb.String()
	}
	return out
}

// Tag runes; index+1 is the cell value. Matches the shape order used by
// the tetromino package so locked pieces print as their letter.
const tagRunes = "IOTSZJL"

func cellFromRune(ch rune) Cell {
	if ch == '.' || ch == ' ' {
		return Empty
	}
	if i := strings.IndexRune(tagRunes, ch); i >= 0 {
		return Cell(i + 1)
	}
	return Cell(len(tagRunes) + 1)
}

func runeFromCell(c Cell) rune {
	if c == Empty {
		return '.'
	}
	if int(c) <= len(tagRunes) {
		return rune(tagRunes[c-1])
	}
	return '#'
}

// ToDisplayText renders the grid for a terminal, skipping the top
// hiddenRows rows.
func (g *Grid) ToDisplayText(hiddenRows int) string {
	if hiddenRows < 0 || hiddenRows > g.rows {
		hiddenRows = 0
	}
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < g.cols; c++ {
		fmt.Fprintf(&sb, "%d", c%10)
	}
	sb.WriteString("\n")
	for r := hiddenRows; r < g.rows; r++ {
		fmt.Fprintf(&sb, "%2d|", r-hiddenRows)
		for c := 0; c < g.cols; c++ {
			sb.WriteRune(runeFromCell(g.cells[r*g.cols+c]))
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("  +")
	sb.WriteString(strings.Repeat("-", g.cols))
	sb.WriteString("+\n")
	return sb.String()
}
