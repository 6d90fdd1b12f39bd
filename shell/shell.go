// Package shell is the interactive front end: a readline loop that plays a
// game against the bot, runs searches on the current position and drives
// autoplay runs.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tetrad/config"
	"github.com/domino14/tetrad/game"
	"github.com/domino14/tetrad/search"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("sending quit signal")
)

type ShellController struct {
	l      *readline.Instance
	out    io.Writer
	config *config.Config

	game   *game.Game
	rules  game.Rules
	solver *search.Solver

	autoplayCancel context.CancelFunc
	autoplayDone   chan error
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController sets up readline and a fresh game from the
// configuration.
func NewShellController(cfg *config.Config) (*ShellController, error) {
	sc, err := newController(cfg, nil)
	if err != nil {
		return nil, err
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mtetrad>\033[0m ",
		HistoryFile:     cfg.HistoryFile(),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc, nil
}

// newController builds a controller without a terminal; output goes to
// out.
func newController(cfg *config.Config, out io.Writer) (*ShellController, error) {
	sc := &ShellController{
		out:    out,
		config: cfg,
		rules:  game.NewRules(cfg),
	}
	if err := sc.configureSolver(); err != nil {
		return nil, err
	}
	sc.game = game.NewGame(sc.rules, nil)
	return sc, nil
}

// configureSolver rebuilds the solver from the current settings.
func (sc *ShellController) configureSolver() error {
	policy, err := search.ParsePolicy(sc.config.GetString(config.ConfigSearchPolicy))
	if err != nil {
		return err
	}
	solver := search.NewSolver(nil)
	solver.SetPolicy(policy)
	solver.SetThreads(sc.config.GetInt(config.ConfigSearchThreads))
	solver.SetMaxLookahead(sc.config.GetInt(config.ConfigMaxLookahead))
	solver.SetLeafCache(sc.config.GetBool(config.ConfigSearchLeafCache))
	sc.solver = solver
	return nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into a command, its arguments and its
// -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		f := fields[idx]
		if strings.HasPrefix(f, "-") && len(f) > 1 {
			if _, err := strconv.Atoi(f); err == nil {
				// negative numbers are arguments.
				args = append(args, f)
				continue
			}
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := f[1:]
			options[key] = append(options[key], fields[idx+1])
			idx++
			continue
		}
		args = append(args, f)
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		sig <- syscall.SIGINT
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "show":
		return sc.show(cmd)
	case "queue":
		return sc.queue(cmd)
	case "piece":
		return sc.piece(cmd)
	case "load":
		return sc.load(cmd)
	case "best":
		return sc.best(cmd)
	case "eval":
		return sc.eval(cmd)
	case "play":
		return sc.play(cmd)
	case "aiplay":
		return sc.aiplay(cmd)
	case "botplay":
		return sc.botplay(cmd)
	case "left", "l":
		return sc.shift(-1)
	case "right", "r":
		return sc.shift(1)
	case "rotate", "u":
		return sc.rotate(cmd)
	case "down", "d":
		return sc.tick(cmd)
	case "drop", "space":
		return sc.drop(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "analyze":
		return sc.analyze(cmd)
	case "set":
		return sc.set(cmd)
	case "setconfig":
		return sc.setConfig(cmd)
	case "script":
		return sc.script(cmd)
	default:
		log.Debug().Msgf("you said: %v", strconv.Quote(line))
		return nil, fmt.Errorf("unknown command %q; try `help`", cmd.cmd)
	}
}

// Execute runs a single command line, as from the command-line arguments.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil {
		if !errors.Is(err, errQuit) {
			sc.showError(err)
		}
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	// a one-shot autoplay has to finish before the process exits.
	if sc.autoplayDone != nil {
		if err := <-sc.autoplayDone; err != nil {
			sc.showError(err)
		}
		sc.autoplayDone = nil
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line, sig)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	sc.stopAutoplay()
	log.Debug().Msgf("Exiting readline loop...")
}
