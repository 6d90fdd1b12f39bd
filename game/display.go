package game

import (
	"fmt"
	"strings"

	"github.com/domino14/tetrad/tetromino"
)

const queuePreview = 5

func addText(lines []string, row int, hpad int, text string) {
	if row < 0 || row >= len(lines) {
		return
	}
	lines[row] = lines[row] + strings.Repeat(" ", hpad) + text
}

// ToDisplayText draws the playfield with the falling piece in it, and a
// side panel with the turn, the scores and the next pieces.
func (g *Game) ToDisplayText() string {
	view := g.grid.Copy()
	if g.playing == PlayStatePlaying {
		cells := g.current.Cells()
		view.SetCells(cells[:], g.current.Shape.Color())
	}
	bt := view.ToDisplayText(g.rules.HiddenRows)
	lines := strings.Split(bt, "\n")
	hpadding := 3
	vpadding := 1

	// the board's column widths are all equal, so pad every row to the
	// header's width before adding the panel.
	width := 0
	for _, l := range lines {
		width = max(width, len(l))
	}
	for i := range lines {
		lines[i] += strings.Repeat(" ", width-len(lines[i]))
	}

	next := g.Next(queuePreview)
	names := make([]string, len(next))
	for i, s := range next {
		names[i] = s.String()
	}

	row := vpadding
	addText(lines, row, hpadding, fmt.Sprintf("Turn %d (%s)", g.turn, g.ActorOnTurn()))
	row += 2
	addText(lines, row, hpadding, fmt.Sprintf("Player: %d pts, %d lines",
		g.points[ActorPlayer], g.lines[ActorPlayer]))
	row++
	addText(lines, row, hpadding, fmt.Sprintf("Bot:    %d pts, %d lines",
		g.points[ActorBot], g.lines[ActorBot]))
	row++
	addText(lines, row, hpadding, fmt.Sprintf("Total:  %d pts, %d lines",
		g.TotalPoints(), g.TotalLines()))
	row += 2
	addText(lines, row, hpadding, "Piece: "+g.current.String())
	row++
	addText(lines, row, hpadding, "Next:  "+strings.Join(names, " "))
	if g.playing == PlayStateGameOver {
		row += 2
		addText(lines, row, hpadding, "Game over.")
	}

	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Join(lines, "\n")
}

// QueueText lists the current piece and the next n pieces.
func (g *Game) QueueText(n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "current: %v\n", g.current.Shape)
	for i, s := range g.Next(n) {
		fmt.Fprintf(&sb, "%d: %v (%d distinct rotations)\n", i+1, s, s.DistinctRotations())
	}
	return sb.String()
}

// PieceShapes is a compact listing such as "TIO".
func PieceShapes(pieces []tetromino.Piece) string {
	var sb strings.Builder
	for _, p := range pieces {
		sb.WriteString(p.Shape.String())
	}
	return sb.String()
}
