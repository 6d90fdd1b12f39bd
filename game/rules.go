package game

import (
	"github.com/domino14/tetrad/config"
)

// Rules are the dimensions of the playfield.
type Rules struct {
	// Rows is the number of visible rows.
	Rows int
	Cols int
	// HiddenRows sit above the visible rows; pieces spawn there.
	HiddenRows int
}

func DefaultRules() Rules {
	return Rules{Rows: 20, Cols: 10, HiddenRows: 2}
}

// NewRules reads the playfield dimensions from the configuration.
func NewRules(cfg *config.Config) Rules {
	return Rules{
		Rows:       cfg.GetInt(config.ConfigBoardRows),
		Cols:       cfg.GetInt(config.ConfigBoardCols),
		HiddenRows: cfg.GetInt(config.ConfigHiddenRows),
	}
}

// TotalRows is the height of the grid including the hidden rows.
func (r Rules) TotalRows() int {
	return r.Rows + r.HiddenRows
}

// PointsForLines is the score for clearing 0 to 4 rows with one piece.
var PointsForLines = [...]int{0, 100, 300, 500, 800}

func pointsFor(lines int) int {
	if lines < 0 || lines >= len(PointsForLines) {
		return 0
	}
	return PointsForLines[lines]
}
