package bot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tetrad/board"
	"github.com/domino14/tetrad/config"
	"github.com/domino14/tetrad/move"
	"github.com/domino14/tetrad/search"
	"github.com/domino14/tetrad/tetromino"
)

const DefaultAttempts = 3

type Client struct {
	// NATS connection
	nc       *nats.Conn
	channel  string
	timeout  time.Duration
	attempts uint
}

func NewClient(nc *nats.Conn, cfg *config.Config) *Client {
	return &Client{
		nc:       nc,
		channel:  cfg.GetString(config.ConfigBotChannel),
		timeout:  cfg.GetDuration(config.ConfigBotTimeout),
		attempts: DefaultAttempts,
	}
}

// Connect dials the configured NATS server.
func Connect(cfg *config.Config) (*Client, error) {
	nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		return nil, err
	}
	return NewClient(nc, cfg), nil
}

func (c *Client) Close() {
	c.nc.Close()
}

func MakeRequest(g *board.Grid, pieces []tetromino.Piece, policy search.Policy) ([]byte, error) {
	shapes := make([]byte, len(pieces))
	for i, p := range pieces {
		shapes[i] = p.Shape.String()[0]
	}
	req := Request{Rows: g.Strings(), Pieces: string(shapes), Policy: policy.String()}
	return json.Marshal(&req)
}

// ParseResponse decodes a reply. A reply without any legal move is
// ErrNoLegalMove, like a local search.
func ParseResponse(data []byte) (move.Route, error) {
	resp := Response{}
	if err := json.Unmarshal(data, &resp); err != nil {
		return move.NoRoute(), err
	}
	if resp.Error != "" {
		return move.NoRoute(), errors.New("Bot returned: " + resp.Error)
	}
	if resp.NoLegalMove {
		return move.NoRoute(), search.ErrNoLegalMove
	}
	return RouteFromResponse(&resp), nil
}

func transient(err error) bool {
	return errors.Is(err, nats.ErrTimeout) || errors.Is(err, nats.ErrNoResponders)
}

// RequestMove sends a position to the bot and gets a route back. Timeouts
// and missing responders are retried with backoff.
func (c *Client) RequestMove(ctx context.Context, g *board.Grid, pieces []tetromino.Piece,
	policy search.Policy) (move.Route, error) {

	data, err := MakeRequest(g, pieces, policy)
	if err != nil {
		return move.NoRoute(), err
	}
	var res *nats.Msg
	err = retry.Do(
		func() error {
			var err error
			res, err = c.nc.Request(c.channel, data, c.timeout)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.RetryIf(transient),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Msg("bot-request-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		if c.nc.LastError() != nil {
			log.Error().Msgf("%v for request", c.nc.LastError())
		}
		log.Error().Msgf("%v for request", err)
		return move.NoRoute(), err
	}
	log.Debug().Msgf("res: %v", string(res.Data))
	return ParseResponse(res.Data)
}
