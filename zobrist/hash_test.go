package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/jieqi/board"
)

func playAll(t *testing.T, z *Zobrist, pos *board.Position, moves ...string) uint64 {
	t.Helper()
	is := is.New(t)
	h := z.Hash(pos)
	for _, s := range moves {
		m, err := board.ParseMove(s)
		is.NoErr(err)
		m = pos.Normalize(m)
		is.True(pos.IsLegal(m))
		u := pos.Apply(m)
		h = z.AddMove(h, pos, u)
		is.Equal(h, z.Hash(pos))
	}
	return h
}

func TestIncrementalMatchesFull(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()

	pos := board.NewStartingPosition()
	// a cannon reveal, a capture of a face-down piece, then a recapture
	playAll(t, z, pos, "+b2b9", "+a9b9", "+h2h9", "+i9h9")
	is.Equal(pos.Turn(), board.Red)
}

func TestPlayAndUnplay(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()

	pos := board.NewStartingPosition()
	h := z.Hash(pos)
	m, err := board.ParseMove("+b2b9")
	is.NoErr(err)
	u := pos.Apply(m)
	h1 := z.AddMove(h, pos, u)
	is.True(h1 != h)
	pos.UndoMove(u)
	is.Equal(z.Hash(pos), h)
}

func TestRevealIdentityChangesKey(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()

	m, err := board.ParseMove("+a0a1")
	is.NoErr(err)

	p1 := board.NewStartingPosition()
	h := z.Hash(p1)
	u1 := p1.ApplyAs(m, board.Rook)
	k1 := z.AddMove(h, p1, u1)

	p2 := board.NewStartingPosition()
	u2 := p2.ApplyAs(m, board.Pawn)
	k2 := z.AddMove(h, p2, u2)

	is.True(k1 != k2)
	is.Equal(k1, z.Hash(p1))
	is.Equal(k2, z.Hash(p2))
}

func TestCapturedPoolInKey(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()

	// same board, different captured piles
	a, err := board.ParseFEN("4k4/9/9/9/9/9/9/9/9/4K4 R:- r r")
	is.NoErr(err)
	b, err := board.ParseFEN("4k4/9/9/9/9/9/9/9/9/4K4 C:- r r")
	is.NoErr(err)
	is.True(z.Hash(a) != z.Hash(b))
}
