package shell

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"github.com/domino14/tetrad/automatic"
	"github.com/domino14/tetrad/board"
	"github.com/domino14/tetrad/bot"
	"github.com/domino14/tetrad/config"
	"github.com/domino14/tetrad/game"
	"github.com/domino14/tetrad/move"
	"github.com/domino14/tetrad/search"
	"github.com/domino14/tetrad/tetromino"
)

const (
	defaultQueueLen     = 5
	defaultEvalLines    = 10
	defaultAutoplayLog  = "/tmp/tetrad-autoplay.txt"
	defaultAutoplayRuns = 100
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) display() *Response {
	return msg(sc.game.ToDisplayText())
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	var rng *frand.RNG
	if s := cmd.options.String("seed"); s != "" {
		seed, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		if len(seed) != 32 {
			return nil, fmt.Errorf("seed must be 32 bytes, got %d", len(seed))
		}
		rng = frand.NewCustom(seed, 1024, 12)
	}
	sc.rules = game.NewRules(sc.config)
	sc.game = game.NewGame(sc.rules, rng)
	return sc.display(), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return sc.display(), nil
}

func (sc *ShellController) queue(cmd *shellcmd) (*Response, error) {
	n := defaultQueueLen
	if len(cmd.args) > 0 {
		var err error
		n, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	return msg(sc.game.QueueText(n)), nil
}

func (sc *ShellController) piece(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: piece <I|O|T|S|Z|J|L>")
	}
	s, err := tetromino.ParseShape(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.game.SetCurrent(s)
	return sc.display(), nil
}

// readGridFile reads a playfield, top row first. Blank lines and lines
// starting with ';' are skipped. A file with only the visible rows gets
// empty hidden rows added on top.
func readGridFile(path string, rules game.Rules) (*board.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == rules.Rows {
		empty := strings.Repeat(".", rules.Cols)
		hidden := make([]string, rules.HiddenRows)
		for i := range hidden {
			hidden[i] = empty
		}
		rows = append(hidden, rows...)
	}
	return board.FromRows(rows)
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <gridfile>")
	}
	g, err := readGridFile(cmd.args[0], sc.rules)
	if err != nil {
		return nil, err
	}
	if err := sc.game.LoadGrid(g); err != nil {
		return nil, err
	}
	return sc.display(), nil
}

// searchSettings reads -lookahead and -policy, falling back to the
// configuration and the solver's policy.
func (sc *ShellController) searchSettings(cmd *shellcmd) (int, search.Policy, error) {
	lookahead, err := cmd.options.IntDefault("lookahead", sc.config.GetInt(config.ConfigLookahead))
	if err != nil {
		return 0, 0, err
	}
	policy := sc.solver.Policy()
	if p := cmd.options.String("policy"); p != "" {
		policy, err = search.ParsePolicy(p)
		if err != nil {
			return 0, 0, err
		}
	}
	return lookahead, policy, nil
}

func (sc *ShellController) statsLine(elapsed time.Duration) string {
	st := sc.solver.Stats()
	return fmt.Sprintf("nodes %d, leaves %d, cache hits %d, %v",
		st.Nodes, st.Leaves, st.CacheHits, elapsed.Round(time.Microsecond))
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	if sc.game.Playing() == game.PlayStateGameOver {
		return nil, game.ErrGameOver
	}
	lookahead, policy, err := sc.searchSettings(cmd)
	if err != nil {
		return nil, err
	}
	saved := sc.solver.Policy()
	sc.solver.SetPolicy(policy)
	defer sc.solver.SetPolicy(saved)

	pieces := sc.game.Lookahead(lookahead)
	start := time.Now()
	route, err := sc.solver.FindBestMove(sc.game.Grid(), pieces)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pieces: %s (%s)\n", game.PieceShapes(pieces), policy)
	sb.WriteString(route.String())
	sb.WriteString(sc.statsLine(time.Since(start)))
	return msg(sb.String()), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if sc.game.Playing() == game.PlayStateGameOver {
		return nil, game.ErrGameOver
	}
	lookahead, policy, err := sc.searchSettings(cmd)
	if err != nil {
		return nil, err
	}
	top, err := cmd.options.IntDefault("top", defaultEvalLines)
	if err != nil {
		return nil, err
	}
	saved := sc.solver.Policy()
	sc.solver.SetPolicy(policy)
	defer sc.solver.SetPolicy(saved)

	pieces := sc.game.Lookahead(lookahead)
	start := time.Now()
	tree, err := sc.solver.Evaluate(sc.game.Grid(), pieces)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	var lines []search.Line
	for _, l := range search.RootLines(tree, policy) {
		if l.Valid {
			lines = append(lines, l)
		}
	}
	maximize := policy.Maximizes(0)
	sort.SliceStable(lines, func(i, j int) bool {
		if maximize {
			return lines[i].Route.Score > lines[j].Route.Score
		}
		return lines[i].Route.Score < lines[j].Route.Score
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Pieces: %s (%s), %d valid root moves\n",
		game.PieceShapes(pieces), policy, len(lines))
	fmt.Fprintf(&sb, "%-4s%-8s%-12s%s\n", "#", "Move", "Score", "Line")
	for i, l := range lines {
		if i >= top {
			break
		}
		parts := make([]string, len(l.Route.Moves))
		for k, m := range l.Route.Moves {
			parts[k] = m.ShortDescription()
		}
		fmt.Fprintf(&sb, "%-4d%-8s%-12.6f%s\n", i+1, l.Move.ShortDescription(),
			l.Route.Score, strings.Join(parts, " "))
	}
	sb.WriteString(sc.statsLine(elapsed))

	if out := cmd.options.String("out"); out != "" {
		data, err := yaml.Marshal(tree)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return nil, err
		}
		fmt.Fprintf(&sb, "\ntree written to %s", out)
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) afterPlacement(cleared int, prefix string) *Response {
	var sb strings.Builder
	if prefix != "" {
		sb.WriteString(prefix)
		sb.WriteString("\n")
	}
	if cleared > 0 {
		fmt.Fprintf(&sb, "Cleared %d line(s)!\n", cleared)
	}
	sb.WriteString(sc.game.ToDisplayText())
	return msg(sb.String())
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: play <c3r1 | col rot>")
	}
	m, err := move.FromString(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	cleared, err := sc.game.PlayMove(m)
	if err != nil {
		return nil, err
	}
	return sc.afterPlacement(cleared, ""), nil
}

func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	lookahead, err := cmd.options.IntDefault("lookahead", sc.config.GetInt(config.ConfigLookahead))
	if err != nil {
		return nil, err
	}
	route, cleared, err := sc.game.PlayBest(sc.solver, lookahead)
	if err != nil {
		return nil, err
	}
	first, _ := route.First()
	return sc.afterPlacement(cleared, fmt.Sprintf("Played %s (%s)",
		first.ShortDescription(), route.NLBString())), nil
}

// botplay asks the bot service for a move instead of the local solver.
func (sc *ShellController) botplay(cmd *shellcmd) (*Response, error) {
	if sc.game.Playing() == game.PlayStateGameOver {
		return nil, game.ErrGameOver
	}
	lookahead, policy, err := sc.searchSettings(cmd)
	if err != nil {
		return nil, err
	}
	client, err := bot.Connect(sc.config)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(),
		bot.DefaultAttempts*sc.config.GetDuration(config.ConfigBotTimeout))
	defer cancel()
	route, err := client.RequestMove(ctx, sc.game.Grid(), sc.game.Lookahead(lookahead), policy)
	if err != nil {
		return nil, err
	}
	first, ok := route.First()
	if !ok {
		return nil, search.ErrNoLegalMove
	}
	cleared, err := sc.game.PlayMove(first)
	if err != nil {
		return nil, err
	}
	return sc.afterPlacement(cleared, "Bot played "+route.NLBString()), nil
}

func (sc *ShellController) shift(dx int) (*Response, error) {
	if sc.game.Playing() == game.PlayStateGameOver {
		return nil, game.ErrGameOver
	}
	sc.game.Shift(dx)
	return sc.display(), nil
}

func (sc *ShellController) rotate(cmd *shellcmd) (*Response, error) {
	if sc.game.Playing() == game.PlayStateGameOver {
		return nil, game.ErrGameOver
	}
	sc.game.Rotate()
	return sc.display(), nil
}

func (sc *ShellController) tick(cmd *shellcmd) (*Response, error) {
	_, cleared, err := sc.game.Tick()
	if err != nil {
		return nil, err
	}
	return sc.afterPlacement(cleared, ""), nil
}

func (sc *ShellController) drop(cmd *shellcmd) (*Response, error) {
	cleared, err := sc.game.Drop()
	if err != nil {
		return nil, err
	}
	return sc.afterPlacement(cleared, ""), nil
}

func (sc *ShellController) stopAutoplay() {
	if sc.autoplayCancel != nil {
		sc.autoplayCancel()
		sc.autoplayCancel = nil
	}
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 && cmd.args[0] == "stop" {
		if automatic.IsPlaying.Value() == 0 {
			return nil, errors.New("automatic game runner is not running")
		}
		sc.stopAutoplay()
		return msg("stopping autoplay"), nil
	}
	numGames := defaultAutoplayRuns
	if len(cmd.args) > 0 {
		var err error
		numGames, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	threads, err := cmd.options.IntDefault("threads", 1)
	if err != nil {
		return nil, err
	}
	outputFile := cmd.options.String("out")
	if outputFile == "" {
		outputFile = defaultAutoplayLog
	}
	var seeds [][32]byte
	if path := cmd.options.String("seeds"); path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			seeds = automatic.GenerateSeeds(numGames)
			if err := automatic.SaveSeeds(seeds, path); err != nil {
				return nil, err
			}
		} else {
			seeds, err = automatic.LoadSeeds(path)
			if err != nil {
				return nil, err
			}
		}
	}
	if automatic.IsPlaying.Value() > 0 {
		return nil, automatic.ErrAlreadyPlaying
	}

	ctx, cancel := context.WithCancel(context.Background())
	sc.autoplayCancel = cancel
	done := make(chan error, 1)
	sc.autoplayDone = done
	go func() {
		defer cancel()
		err := automatic.StartAutoplay(ctx, sc.config, numGames, threads, outputFile, seeds)
		if err != nil {
			log.Err(err).Msg("autoplay-failed")
		} else {
			log.Info().Int("games", int(automatic.AutoplayCounter.Value())).
				Str("log", outputFile).Msg("autoplay-done")
		}
		done <- err
	}()
	return msg(fmt.Sprintf("autoplaying %d games on %d threads; log in %s",
		numGames, threads, outputFile)), nil
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: analyze <autoplay log>")
	}
	out, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(out), nil
}

// searchKeys are settings that take effect on the solver right away.
var searchKeys = map[string]bool{
	config.ConfigSearchPolicy:    true,
	config.ConfigSearchThreads:   true,
	config.ConfigMaxLookahead:    true,
	config.ConfigSearchLeafCache: true,
}

func (sc *ShellController) settingsText() string {
	settings := sc.config.SanitizedSettings()
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%-22s%v\n", k, settings[k])
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.settingsText()), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		v, ok := sc.config.SanitizedSettings()[key]
		if !ok {
			return nil, fmt.Errorf("no setting named %s", key)
		}
		return msg(fmt.Sprintf("%v", v)), nil
	}
	value := strings.Join(cmd.args[1:], " ")
	old := sc.config.Get(key)
	sc.config.Set(key, value)
	if searchKeys[key] {
		if err := sc.configureSolver(); err != nil {
			sc.config.Set(key, old)
			return nil, err
		}
	}
	return msg("set " + key + " to " + value), nil
}

func (sc *ShellController) setConfig(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: setconfig <key> <value>")
	}
	r, err := sc.set(cmd)
	if err != nil {
		return nil, err
	}
	if err := sc.config.Write(); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return msg(r.message + " and saved to " + sc.config.ConfigFileUsed()), nil
}
