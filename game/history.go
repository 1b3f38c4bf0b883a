package game

import (
	"fmt"
	"strings"

	"github.com/domino14/jieqi/board"
)

// Turn is one played move. Reveals carry the dealt identity as their
// declared type, so replaying History through ApplyKnown reproduces the
// game.
type Turn struct {
	Ply      int
	Color    board.Color
	Move     board.Move
	Captured board.Piece
	// CapturedAs is the identity of the captured piece, NoType if nothing
	// was taken.
	CapturedAs board.PieceType
	FEN        string
}

func (t Turn) String() string {
	s := fmt.Sprintf("%d. %s %s", t.Ply, t.Color, t.Move)
	if t.CapturedAs != board.NoType {
		s += "x" + t.CapturedAs.String()
	}
	return s
}

// History returns the turns played so far.
func (g *Game) History() []Turn {
	return append([]Turn(nil), g.history...)
}

// LastTurn is the most recent turn, if any.
func (g *Game) LastTurn() (Turn, bool) {
	if len(g.history) == 0 {
		return Turn{}, false
	}
	return g.history[len(g.history)-1], true
}

// MoveList is the history as space-separated moves.
func (g *Game) MoveList() string {
	parts := make([]string, len(g.history))
	for i, t := range g.history {
		parts[i] = t.Move.String()
	}
	return strings.Join(parts, " ")
}
