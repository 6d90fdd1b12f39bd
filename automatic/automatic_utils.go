package automatic

// Data collection for self-play games.

import (
	"context"
	"errors"
	"expvar"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/tetrad/config"
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

var (
	AutoplayCounter *expvar.Int
	IsPlaying       *expvar.Int
)

func init() {
	AutoplayCounter = expvar.NewInt("autoplayCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// CompVsComp plays out a single game with the given rng.
func (r *GameRunner) CompVsComp(rng *frand.RNG) error {
	r.Init(rng)
	return r.PlayGame()
}

// StartAutoplay plays numGames games on threads goroutines and writes one
// CSV line per game to outputFilename. If seeds are given, game i is
// dealt from seeds[i % len(seeds)], so runs can be repeated. If the
// autoplay-boards-file setting is set, the final board of every game is
// written there too. It returns when every game has finished or ctx is
// done.
func StartAutoplay(ctx context.Context, cfg *config.Config, numGames, threads int,
	outputFilename string, seeds [][32]byte) error {

	if IsPlaying.Value() > 0 {
		return ErrAlreadyPlaying
	}
	threads = max(threads, 1)

	logfile, err := os.Create(outputFilename)
	if err != nil {
		return err
	}
	defer logfile.Close()

	var boardfile *os.File
	var gameChan chan string
	if path := cfg.GetString(config.ConfigAutoplayBoards); path != "" {
		boardfile, err = os.Create(path)
		if err != nil {
			return err
		}
		defer boardfile.Close()
		gameChan = make(chan string, 10)
	}
	log.Debug().Msgf("Starting %v games, %v threads", numGames, threads)

	AutoplayCounter.Set(0)
	jobs := make(chan int, 100)
	logChan := make(chan string, 100)

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(jobs)
		for i := 0; i < numGames; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return nil
			}
			if (i+1)%1000 == 0 {
				log.Info().Int("queued", i+1).Msg("autoplay-progress")
			}
		}
		log.Info().Msg("Finished queueing all jobs.")
		return nil
	})

	workers := errgroup.Group{}
	for i := 0; i < threads; i++ {
		workers.Go(func() error {
			r, err := NewGameRunner(logChan, cfg)
			if err != nil {
				return err
			}
			r.gamechan = gameChan
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for i := range jobs {
				var rng *frand.RNG
				if len(seeds) > 0 {
					seed := seeds[i%len(seeds)]
					rng = frand.NewCustom(seed[:], 1024, 12)
				}
				if err := r.CompVsComp(rng); err != nil {
					return err
				}
				AutoplayCounter.Add(1)
			}
			return nil
		})
	}

	eg.Go(func() error {
		err := workers.Wait()
		close(logChan)
		if gameChan != nil {
			close(gameChan)
		}
		log.Info().Msg("All games finished.")
		return err
	})

	eg.Go(func() error {
		// keep draining after a write error so the workers never block.
		var werr error
		if _, err := logfile.WriteString(LogHeader); err != nil {
			werr = err
		}
		for msg := range logChan {
			if werr != nil {
				continue
			}
			if _, err := logfile.WriteString(msg); err != nil {
				werr = err
			}
		}
		return werr
	})

	if gameChan != nil {
		eg.Go(func() error {
			var werr error
			for board := range gameChan {
				if werr != nil {
					continue
				}
				if _, err := boardfile.WriteString(board); err != nil {
					werr = err
				}
			}
			return werr
		})
	}

	return eg.Wait()
}
