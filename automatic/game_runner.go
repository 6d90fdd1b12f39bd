// Package automatic plays games where the solver places every piece, for
// measuring how the search and its settings hold up over many games.
package automatic

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/tetrad/config"
	"github.com/domino14/tetrad/game"
	"github.com/domino14/tetrad/search"
)

// LogHeader is the first line of an autoplay log.
const LogHeader = "gameID,pieces,lines,points,playerLines,botLines,toppedOut\n"

// GameRunner is the master struct here for the automatic game logic.
type GameRunner struct {
	game      *game.Game
	solver    *search.Solver
	config    *config.Config
	rules     game.Rules
	lookahead int
	maxPieces int
	gameID    string

	logchan  chan string
	gamechan chan string
}

// NewGameRunner sets up a runner from the configuration. logchan may be
// nil.
func NewGameRunner(logchan chan string, cfg *config.Config) (*GameRunner, error) {
	policy, err := search.ParsePolicy(cfg.GetString(config.ConfigSearchPolicy))
	if err != nil {
		return nil, err
	}
	solver := search.NewSolver(nil)
	solver.SetPolicy(policy)
	solver.SetMaxLookahead(cfg.GetInt(config.ConfigMaxLookahead))
	solver.SetLeafCache(cfg.GetBool(config.ConfigSearchLeafCache))

	return &GameRunner{
		solver:    solver,
		config:    cfg,
		rules:     game.NewRules(cfg),
		lookahead: cfg.GetInt(config.ConfigLookahead),
		maxPieces: cfg.GetInt(config.ConfigAutoplayMaxPieces),
		logchan:   logchan,
	}, nil
}

// Init starts a new game. A nil rng draws from a fresh random source.
func (r *GameRunner) Init(rng *frand.RNG) {
	r.game = game.NewGame(r.rules, rng)
	r.gameID = hex.EncodeToString(frand.Bytes(6))
}

func (r *GameRunner) Game() *game.Game {
	return r.game
}

func (r *GameRunner) GameID() string {
	return r.gameID
}

// PlayBestTurn asks the solver for the piece on turn and plays it.
func (r *GameRunner) PlayBestTurn() error {
	route, cleared, err := r.game.PlayBest(r.solver, r.lookahead)
	if err != nil {
		return err
	}
	st := r.solver.Stats()
	log.Debug().
		Str("game", r.gameID).
		Int("turn", r.game.Turn()-1).
		Str("route", route.NLBString()).
		Int("cleared", cleared).
		Int("nodes", st.Nodes).
		Int("cache-hits", st.CacheHits).
		Msg("autoplay-turn")
	return nil
}

// PlayGame plays the current game until it tops out or reaches the piece
// limit, then logs a line for it.
func (r *GameRunner) PlayGame() error {
	for r.game.Playing() == game.PlayStatePlaying {
		if r.maxPieces > 0 && r.game.PiecesPlaced() >= r.maxPieces {
			break
		}
		err := r.PlayBestTurn()
		if errors.Is(err, search.ErrNoLegalMove) || errors.Is(err, game.ErrGameOver) {
			break
		}
		if err != nil {
			return err
		}
	}
	toppedOut := r.game.Playing() == game.PlayStateGameOver
	log.Debug().Str("game", r.gameID).
		Int("pieces", r.game.PiecesPlaced()).
		Int("lines", r.game.TotalLines()).
		Bool("topped-out", toppedOut).
		Msg("autoplay-game-over")

	if r.logchan != nil {
		r.logchan <- fmt.Sprintf("%v,%v,%v,%v,%v,%v,%v\n",
			r.gameID,
			r.game.PiecesPlaced(),
			r.game.TotalLines(),
			r.game.TotalPoints(),
			r.game.LinesFor(game.ActorPlayer),
			r.game.LinesFor(game.ActorBot),
			toppedOut)
	}
	if r.gamechan != nil {
		r.gamechan <- fmt.Sprintf("# game %s\n%s\n\n", r.gameID, r.game.ToDisplayText())
	}
	return nil
}
