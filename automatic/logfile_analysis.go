package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/domino14/tetrad/stats"
)

const histogramBins = 10

// AnalyzeLogFile reads an autoplay log and summarises it: how long games
// lasted, how many lines were cleared and by whom, and a histogram of lines
// per game.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	r := csv.NewReader(file)

	// Record looks like:
	// gameID,pieces,lines,points,playerLines,botLines,toppedOut

	pieces := &stats.Sample{}
	lines := &stats.Sample{}
	points := &stats.Sample{}
	playerLines := 0
	botLines := 0
	toppedOut := 0
	gamesPlayed := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "gameID" {
			continue
		}
		nums := make([]int, 5)
		for i := range nums {
			nums[i], err = strconv.Atoi(record[i+1])
			if err != nil {
				return "", fmt.Errorf("game %v: %w", record[0], err)
			}
		}
		pieces.Push(float64(nums[0]))
		lines.Push(float64(nums[1]))
		points.Push(float64(nums[2]))
		playerLines += nums[3]
		botLines += nums[4]
		if record[6] == "true" {
			toppedOut++
		}
		gamesPlayed++
	}
	if gamesPlayed == 0 {
		return "No games played.\n", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", gamesPlayed)
	fmt.Fprintf(&sb, "Topped out: %d (%.3f%%)\n", toppedOut, 100.0*float64(toppedOut)/float64(gamesPlayed))
	fmt.Fprintf(&sb, "Pieces per game: %.3f ± %.3f  Stdev: %.3f\n",
		pieces.Mean(), pieces.ConfidenceInterval(95), pieces.Stdev())
	fmt.Fprintf(&sb, "Lines per game: %.3f ± %.3f  Stdev: %.3f  Max: %.0f\n",
		lines.Mean(), lines.ConfidenceInterval(95), lines.Stdev(), lines.Max())
	fmt.Fprintf(&sb, "Points per game: %.3f  Stdev: %.3f\n", points.Mean(), points.Stdev())
	fmt.Fprintf(&sb, "Lines by player: %d, by bot: %d\n", playerLines, botLines)
	sb.WriteString("Lines per game:\n")
	if err := lines.Fprint(&sb, histogramBins, 40); err != nil {
		return "", err
	}
	return sb.String(), nil
}
