package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/jieqi/board"
)

const bignum = 1<<63 - 2

// captured counts can run from 0 to 16 for the unknown bucket.
const maxCaptured = 17

// generate a zobrist hash for a jieqi position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
//
// Captured pieces are part of the key because they change the hidden-piece
// pool, and with it the value of every reveal.
type Zobrist struct {
	blackToMove uint64

	posTable      [board.NumSquares][board.NumPieceCodes]uint64
	capturedTable [2][board.NumTypes + 1][maxCaptured]uint64
}

func (z *Zobrist) Initialize() {
	for i := 0; i < board.NumSquares; i++ {
		for j := 0; j < board.NumPieceCodes; j++ {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	for c := 0; c < 2; c++ {
		for k := 0; k <= board.NumTypes; k++ {
			for n := 0; n < maxCaptured; n++ {
				z.capturedTable[c][k][n] = frand.Uint64n(bignum) + 1
			}
		}
	}
	z.blackToMove = frand.Uint64n(bignum) + 1
}

func capturedCount(pos *board.Position, c board.Color, kind board.PieceType) int {
	if kind == board.NoType {
		return pos.CapturedUnknown(c)
	}
	return pos.CapturedKnown(c, kind)
}

// Hash computes the key of pos from scratch.
func (z *Zobrist) Hash(pos *board.Position) uint64 {
	key := uint64(0)
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		p := pos.PieceAt(sq)
		if p.IsEmpty() {
			continue
		}
		key ^= z.posTable[sq][p]
	}
	for c := board.Red; c <= board.Black; c++ {
		for k := board.PieceType(0); k <= board.NoType; k++ {
			key ^= z.capturedTable[c][k][capturedCount(pos, c, k)]
		}
	}
	if pos.Turn() == board.Black {
		key ^= z.blackToMove
	}
	return key
}

// AddMove updates key for a move that has just been applied to pos. u is
// the token Apply returned.
func (z *Zobrist) AddMove(key uint64, pos *board.Position, u board.Undo) uint64 {
	m := u.Move()
	moved := u.Moved()
	placed := pos.PieceAt(m.To())
	key ^= z.posTable[m.From()][moved]
	key ^= z.posTable[m.To()][placed]

	if captured := u.Captured(); !captured.IsEmpty() {
		key ^= z.posTable[m.To()][captured]
		opp := moved.Color().Other()
		kind := captured.Type()
		if captured.Hidden() {
			kind = u.CapturedAs()
		}
		n := capturedCount(pos, opp, kind)
		key ^= z.capturedTable[opp][kind][n-1]
		key ^= z.capturedTable[opp][kind][n]
	}

	key ^= z.blackToMove
	return key
}
