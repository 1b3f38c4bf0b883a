// Package automatic plays computer-vs-computer jieqi games in bulk and
// summarizes the results.
package automatic

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/config"
	"github.com/domino14/jieqi/game"
	"github.com/domino14/jieqi/strategy"
)

// LogHeader is the first line of a games CSV.
const LogHeader = "gameID,red,black,winner,plies,reason\n"

// GameRunner plays games between two strategies. It owns its players and
// their search tables, so each worker needs its own runner.
type GameRunner struct {
	game    *game.Game
	config  *config.Config
	logchan chan string

	names   [2]string
	players [2]*strategy.Player
	// swapped means names[1] plays red this game.
	swapped bool
}

// NewGameRunner just instantiates a game runner; Init picks the players.
func NewGameRunner(logchan chan string, cfg *config.Config) *GameRunner {
	return &GameRunner{logchan: logchan, config: cfg}
}

// Init loads the two strategies. ttFraction is the share of system memory
// each player's transposition table may use.
func (r *GameRunner) Init(first, second string, ttFraction float64) error {
	for idx, name := range []string{first, second} {
		pol, err := strategy.Lookup(r.config, name)
		if err != nil {
			return err
		}
		p, err := strategy.NewPlayer(pol, nil)
		if err != nil {
			return err
		}
		p.SetMaxDepth(r.config.GetInt(config.ConfigMaxDepth))
		p.SetTimeLimit(time.Duration(r.config.GetFloat64(config.ConfigTimeLimit) * float64(time.Second)))
		p.SetTTFractionOfMemory(ttFraction)
		r.names[idx] = name
		r.players[idx] = p
	}
	return nil
}

// StartGame sets up a fresh game. With a seed, the bags and any random
// choices of the players are reproducible.
func (r *GameRunner) StartGame(seed *[32]byte, swapped bool) {
	var rng *frand.RNG
	if seed != nil {
		rng = frand.NewCustom(seed[:], 1024, 12)
	} else {
		rng = frand.New()
	}
	r.game = game.NewGame(rng)
	r.game.SetMaxPlies(r.config.GetInt(config.ConfigAutoplayMaxPlies))
	r.swapped = swapped
	for _, p := range r.players {
		p.SetRNG(frand.NewCustom(rng.Bytes(32), 1024, 12))
	}
}

// playerFor is the index into players of whoever plays c.
func (r *GameRunner) playerFor(c board.Color) int {
	idx := int(c)
	if r.swapped {
		idx = 1 - idx
	}
	return idx
}

// PlayTurn has the side to move pick and play a move.
func (r *GameRunner) PlayTurn(ctx context.Context) (game.Turn, error) {
	p := r.players[r.playerFor(r.game.Turn())]
	m, err := p.BestMove(ctx, r.game.Position())
	if err != nil {
		return game.Turn{}, err
	}
	return r.game.Play(m)
}

// PlayGame plays the current game to the end and logs it.
func (r *GameRunner) PlayGame(ctx context.Context) error {
	for r.game.Playing() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.PlayTurn(ctx); err != nil {
			return fmt.Errorf("game %s ply %d: %w", r.game.Uid(), r.game.Plies()+1, err)
		}
	}
	log.Debug().Str("game", r.game.Uid()).Str("result", r.game.Result().String()).
		Int("plies", r.game.Plies()).Msg("game-over")
	if r.logchan != nil {
		r.logchan <- r.logLine()
	}
	return nil
}

func (r *GameRunner) logLine() string {
	red, black := r.names[r.playerFor(board.Red)], r.names[r.playerFor(board.Black)]
	winner := "draw"
	switch r.game.Result() {
	case board.RedWin:
		winner = "red"
	case board.BlackWin:
		winner = "black"
	}
	return fmt.Sprintf("%s,%s,%s,%s,%d,%s\n", r.game.Uid(), red, black, winner,
		r.game.Plies(), r.game.EndReason())
}

func (r *GameRunner) Game() *game.Game {
	return r.game
}
