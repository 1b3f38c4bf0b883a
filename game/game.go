// Package game plays real jieqi games: unlike a search, a game knows what
// every face-down piece actually is. Identities are dealt from a shuffled
// per-side bag the moment a piece is turned over or captured.
package game

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/hidden"
)

const (
	DefaultMaxPlies = 200
	// RepetitionLimit is the number of times a board may appear before the
	// game is drawn.
	RepetitionLimit = 3
)

var ErrGameOver = errors.New("game is over")

// EndReason says why a game stopped.
type EndReason uint8

const (
	NotEnded EndReason = iota
	KingCaptured
	NoLegalMoves
	Repetition
	MaxPliesReached
)

func (e EndReason) String() string {
	switch e {
	case KingCaptured:
		return "king-captured"
	case NoLegalMoves:
		return "no-legal-moves"
	case Repetition:
		return "repetition"
	case MaxPliesReached:
		return "max-plies"
	}
	return "not-ended"
}

// Game is a game in progress. It owns its Position; callers that search it
// should work on a copy or leave it as they found it.
type Game struct {
	uid string
	pos *board.Position
	rng *frand.RNG
	// bags[c] holds the identities of c's face-down pieces, dealt from the
	// end.
	bags [2][]board.PieceType

	history  []Turn
	seen     map[uint64]int
	maxPlies int

	result    board.GameResult
	endReason EndReason
}

// NewGame starts a game from the opening position. A nil rng uses the
// process-wide generator.
func NewGame(rng *frand.RNG) *Game {
	if rng == nil {
		rng = frand.New()
	}
	g := &Game{pos: board.NewStartingPosition(), rng: rng}
	for c := board.Red; c <= board.Black; c++ {
		for t := board.Advisor; t < board.NoType; t++ {
			for i := 0; i < board.Census[t]; i++ {
				g.bags[c] = append(g.bags[c], t)
			}
		}
		g.shuffle(c)
	}
	g.start()
	return g
}

// NewGameFromPosition continues from pos, which is copied. Bags are filled
// with identities consistent with what has been seen; when more identities
// remain than face-down pieces, a random subset is kept.
func NewGameFromPosition(pos *board.Position, rng *frand.RNG) (*Game, error) {
	if err := pos.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = frand.New()
	}
	g := &Game{pos: pos.Copy(), rng: rng}
	for c := board.Red; c <= board.Black; c++ {
		d := hidden.FromPosition(pos, c)
		for t := board.Advisor; t < board.NoType; t++ {
			for i := 0; i < d.Remaining(t); i++ {
				g.bags[c] = append(g.bags[c], t)
			}
		}
		n := pos.Hidden(c)
		if len(g.bags[c]) < n {
			return nil, fmt.Errorf("%w: %s has %d face-down pieces but only %d identities left",
				board.ErrInvalidPosition, c, n, len(g.bags[c]))
		}
		g.shuffle(c)
		g.bags[c] = g.bags[c][len(g.bags[c])-n:]
	}
	g.start()
	return g, nil
}

func (g *Game) shuffle(c board.Color) {
	bag := g.bags[c]
	g.rng.Shuffle(len(bag), func(i, j int) {
		bag[i], bag[j] = bag[j], bag[i]
	})
}

func (g *Game) start() {
	g.uid = newGameID(g.rng)
	g.maxPlies = DefaultMaxPlies
	g.seen = map[uint64]int{}
	g.history = nil
	g.result = board.Ongoing
	g.endReason = NotEnded
	g.seen[g.boardKey()]++
	g.checkEnd()
}

func (g *Game) boardKey() uint64 {
	return xxhash.Sum64String(g.pos.BoardString())
}

func (g *Game) Uid() string {
	return g.uid
}

// Position is the live position. Do not apply moves to it directly.
func (g *Game) Position() *board.Position {
	return g.pos
}

func (g *Game) Turn() board.Color {
	return g.pos.Turn()
}

// Plies is the number of moves played so far.
func (g *Game) Plies() int {
	return len(g.history)
}

func (g *Game) SetMaxPlies(n int) {
	g.maxPlies = n
	g.checkEnd()
}

func (g *Game) Playing() bool {
	return g.result == board.Ongoing
}

func (g *Game) Result() board.GameResult {
	return g.result
}

func (g *Game) EndReason() EndReason {
	return g.endReason
}

// Bag returns a copy of the identities c has left face down.
func (g *Game) Bag(c board.Color) []board.PieceType {
	return append([]board.PieceType(nil), g.bags[c]...)
}

func (g *Game) deal(c board.Color) board.PieceType {
	n := len(g.bags[c])
	if n == 0 {
		return board.NoType
	}
	t := g.bags[c][n-1]
	g.bags[c] = g.bags[c][:n-1]
	return t
}

// Play makes move m for the side to move. Any declared identity on m is
// ignored: face-down pieces turn out to be whatever the bag deals.
func (g *Game) Play(m board.Move) (Turn, error) {
	if !g.Playing() {
		return Turn{}, ErrGameOver
	}
	m = g.pos.Normalize(m.Base())
	if !g.pos.IsLegal(m) {
		return Turn{}, fmt.Errorf("%w: %s", board.ErrIllegalMove, m)
	}
	mover := g.pos.Turn()
	reveal, capturedAs := board.NoType, board.NoType
	if m.IsReveal() {
		reveal = g.deal(mover)
	}
	if target := g.pos.PieceAt(m.To()); target.Hidden() {
		capturedAs = g.deal(mover.Other())
	}
	u := g.pos.ApplyKnown(m, reveal, capturedAs)

	turn := Turn{
		Ply:      len(g.history) + 1,
		Color:    mover,
		Move:     m,
		Captured: u.Captured(),
		FEN:      g.pos.FEN(),
	}
	if reveal != board.NoType {
		turn.Move = m.WithDeclared(reveal)
	}
	if u.Captured().Hidden() {
		turn.CapturedAs = capturedAs
	} else if !u.Captured().IsEmpty() {
		turn.CapturedAs = u.Captured().Type()
	} else {
		turn.CapturedAs = board.NoType
	}
	g.history = append(g.history, turn)
	g.seen[g.boardKey()]++
	g.checkEnd()

	log.Debug().Str("game", g.uid).Int("ply", turn.Ply).Str("move", turn.Move.String()).
		Str("result", g.result.String()).Msg("move-played")
	return turn, nil
}

func (g *Game) checkEnd() {
	if g.result != board.Ongoing {
		return
	}
	r := g.pos.Result()
	switch {
	case r != board.Ongoing:
		g.result = r
		g.endReason = NoLegalMoves
		if g.pos.KingSquare(board.Red) == board.NoSquare || g.pos.KingSquare(board.Black) == board.NoSquare {
			g.endReason = KingCaptured
		}
	case g.seen[g.boardKey()] >= RepetitionLimit:
		g.result = board.Draw
		g.endReason = Repetition
	case g.maxPlies > 0 && len(g.history) >= g.maxPlies:
		g.result = board.Draw
		g.endReason = MaxPliesReached
	}
}

// Resign ends the game in favour of c's opponent.
func (g *Game) Resign(c board.Color) {
	if !g.Playing() {
		return
	}
	g.result = board.WinFor(c.Other())
	g.endReason = NoLegalMoves
}
