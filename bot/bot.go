// Package bot serves the search over NATS request/reply. A request carries
// a grid and the pieces to place; the reply is the route the search found.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cespare/xxhash"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tetrad/board"
	"github.com/domino14/tetrad/config"
	"github.com/domino14/tetrad/move"
	"github.com/domino14/tetrad/search"
	"github.com/domino14/tetrad/tetromino"
)

// MaxMemo is how many responses the bot remembers before starting over.
const MaxMemo = 4096

var ErrGridTooLarge = errors.New("grid is larger than the bot accepts")

// Request asks for a route. Rows are the grid from the top, '.' for an
// empty cell; Pieces are shape letters such as "TIO", current piece first.
type Request struct {
	Rows   []string `json:"rows"`
	Pieces string   `json:"pieces"`
	Policy string   `json:"policy,omitempty"`
}

// Move is the wire form of a move.
type Move struct {
	Col      int `json:"col"`
	Rotation int `json:"rotation"`
}

// Response is the reply to a Request. Score is absent when there is no
// route.
type Response struct {
	Moves       []Move   `json:"moves,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Error       string   `json:"error,omitempty"`
	NoLegalMove bool     `json:"no_legal_move,omitempty"`
}

type Bot struct {
	config *config.Config
	solver *search.Solver
	policy search.Policy

	mu   sync.Mutex
	memo map[uint64][]byte
}

func NewBot(cfg *config.Config) (*Bot, error) {
	policy, err := search.ParsePolicy(cfg.GetString(config.ConfigSearchPolicy))
	if err != nil {
		return nil, err
	}
	solver := search.NewSolver(nil)
	solver.SetMaxLookahead(cfg.GetInt(config.ConfigMaxLookahead))
	solver.SetThreads(cfg.GetInt(config.ConfigSearchThreads))
	solver.SetLeafCache(cfg.GetBool(config.ConfigSearchLeafCache))
	return &Bot{
		config: cfg,
		solver: solver,
		policy: policy,
		memo:   make(map[uint64][]byte),
	}, nil
}

func errorResponse(message string, err error) *Response {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &Response{Error: msg}
}

// Deserialize checks a request and turns it into search inputs. Grids
// over the bot-max-rows by bot-max-cols limit are refused.
func (bot *Bot) Deserialize(data []byte) (*Request, *board.Grid, []tetromino.Piece, search.Policy, error) {
	req := &Request{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, nil, nil, 0, err
	}
	maxRows := bot.config.GetInt(config.ConfigBotMaxRows)
	maxCols := bot.config.GetInt(config.ConfigBotMaxCols)
	if len(req.Rows) > maxRows {
		return nil, nil, nil, 0, fmt.Errorf("%d rows, at most %d: %w",
			len(req.Rows), maxRows, ErrGridTooLarge)
	}
	if len(req.Rows) > 0 {
		if cols := utf8.RuneCountInString(req.Rows[0]); cols > maxCols {
			return nil, nil, nil, 0, fmt.Errorf("%d columns, at most %d: %w",
				cols, maxCols, ErrGridTooLarge)
		}
	}
	g, err := board.FromRows(req.Rows)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	shapes, err := tetromino.ParseShapes(req.Pieces)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	policy := bot.policy
	if req.Policy != "" {
		policy, err = search.ParsePolicy(req.Policy)
		if err != nil {
			return nil, nil, nil, 0, err
		}
	}
	return req, g, tetromino.SpawnAll(shapes, g.Cols()), policy, nil
}

func memoKey(req *Request, policy search.Policy) uint64 {
	d := xxhash.New()
	d.Write([]byte(strings.Join(req.Rows, "/")))
	d.Write([]byte{'|'})
	d.Write([]byte(strings.ToUpper(req.Pieces)))
	d.Write([]byte{'|'})
	d.Write([]byte(policy.String()))
	return d.Sum64()
}

func (bot *Bot) handle(g *board.Grid, pieces []tetromino.Piece, policy search.Policy) *Response {
	bot.solver.SetPolicy(policy)
	route, err := bot.solver.FindBestMove(g, pieces)
	if errors.Is(err, search.ErrNoLegalMove) {
		return &Response{NoLegalMove: true}
	}
	if err != nil {
		return errorResponse("Could not search", err)
	}
	st := bot.solver.Stats()
	log.Info().
		Str("route", route.NLBString()).
		Int("nodes", st.Nodes).
		Int("leaves", st.Leaves).
		Int("cache-hits", st.CacheHits).
		Msg("generated-route")

	resp := &Response{Moves: make([]Move, len(route.Moves))}
	for i, m := range route.Moves {
		resp.Moves[i] = Move{Col: m.Col, Rotation: m.Rotation}
	}
	// a line that tops out after the first piece has no finite score.
	if !math.IsInf(route.Score, -1) {
		score := route.Score
		resp.Score = &score
	}
	return resp
}

// Handle answers one encoded request with one encoded response. Answers
// to repeated requests come from the memo.
func (bot *Bot) Handle(data []byte) []byte {
	bot.mu.Lock()
	defer bot.mu.Unlock()

	req, g, pieces, policy, err := bot.Deserialize(data)
	if err != nil {
		return encode(errorResponse("Could not parse request", err))
	}
	key := memoKey(req, policy)
	if cached, ok := bot.memo[key]; ok {
		log.Debug().Uint64("key", key).Msg("memo-hit")
		return cached
	}
	resp := bot.handle(g, pieces, policy)
	out := encode(resp)
	if resp.Error == "" {
		if len(bot.memo) >= MaxMemo {
			clear(bot.memo)
		}
		bot.memo[key] = out
	}
	return out
}

// MemoLen is the number of remembered responses.
func (bot *Bot) MemoLen() int {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	return len(bot.memo)
}

func encode(resp *Response) []byte {
	out, err := json.Marshal(resp)
	if err != nil {
		return []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	return out
}

// Main serves requests on channel until ctx is done.
func Main(ctx context.Context, channel string, bot *Bot) error {
	nc, err := nats.Connect(bot.config.GetString(config.ConfigNatsURL))
	if err != nil {
		return err
	}
	defer nc.Close()

	_, err = nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Msgf("RECV: %d bytes", len(m.Data))
		if err := m.Respond(bot.Handle(m.Data)); err != nil {
			log.Err(err).Msg("respond-error")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}

	log.Info().Msgf("Listening on [%s]", channel)
	<-ctx.Done()
	log.Info().Msg("draining")
	return nc.Drain()
}

// RouteFromResponse turns a response into a route. A response without a
// score gets -Inf.
func RouteFromResponse(resp *Response) move.Route {
	route := move.NoRoute()
	if resp.Score != nil {
		route.Score = *resp.Score
	}
	for _, m := range resp.Moves {
		route.Moves = append(route.Moves, move.Move{Col: m.Col, Rotation: m.Rotation})
	}
	return route
}
