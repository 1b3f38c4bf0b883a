package automatic

import (
	"context"
	"errors"
	"expvar"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/jieqi/config"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// Options describe a batch of games.
type Options struct {
	NumGames int
	// Threads is the worker count; 0 uses the configured count, or one per
	// CPU.
	Threads        int
	First, Second  string
	OutputFilename string
	// Seeds, if any, are used in turn, one per game.
	Seeds [][32]byte
	// Alternate swaps colours every other game.
	Alternate bool
}

// StartCompVCompGames plays a batch of games and writes one CSV line per
// game. It blocks until the batch is done or ctx is cancelled; a cancelled
// batch keeps the lines of the games that finished.
func StartCompVCompGames(ctx context.Context, cfg *config.Config, opts Options) error {
	if IsPlaying.Value() > 0 {
		return ErrAlreadyPlaying
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = cfg.GetInt(config.ConfigAutoplayThreads)
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	threads = max(1, min(threads, opts.NumGames))
	ttFraction := cfg.GetFloat64(config.ConfigTTFractionOfMemory) / float64(2*threads)

	logfile, err := os.Create(opts.OutputFilename)
	if err != nil {
		return err
	}
	log.Debug().Msgf("Starting %v games, %v threads", opts.NumGames, threads)

	CVCCounter.Set(0)
	jobs := make(chan int, 100)
	logChan := make(chan string, 100)
	loggerDone := make(chan error, 1)

	go func() {
		_, err := logfile.WriteString(LogHeader)
		for msg := range logChan {
			if err == nil {
				_, err = logfile.WriteString(msg)
			}
		}
		if cerr := logfile.Close(); err == nil {
			err = cerr
		}
		log.Info().Msg("Exiting game logger goroutine!")
		loggerDone <- err
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.NumGames; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return nil
			}
			if (i+1)%1000 == 0 {
				log.Info().Msgf("Queued %v jobs", i+1)
			}
		}
		log.Info().Msg("Finished queueing all jobs.")
		return nil
	})

	for t := 0; t < threads; t++ {
		g.Go(func() error {
			r := NewGameRunner(logChan, cfg)
			if err := r.Init(opts.First, opts.Second, ttFraction); err != nil {
				return err
			}
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for i := range jobs {
				var seed *[32]byte
				if len(opts.Seeds) > 0 {
					seed = &opts.Seeds[i%len(opts.Seeds)]
				}
				r.StartGame(seed, opts.Alternate && i%2 == 1)
				if err := r.PlayGame(gctx); err != nil {
					return err
				}
				CVCCounter.Add(1)
			}
			return nil
		})
	}

	err = g.Wait()
	close(logChan)
	log.Info().Int64("games", CVCCounter.Value()).Msg("All games finished.")
	if lerr := <-loggerDone; lerr != nil && err == nil {
		err = lerr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
