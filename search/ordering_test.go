package search

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/jieqi/board"
)

func mustMove(t *testing.T, s string) board.Move {
	t.Helper()
	m, err := board.ParseMove(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMVVLVA(t *testing.T) {
	is := is.New(t)
	// rook takes cannon
	pos, err := board.ParseFEN("4k4/9/9/9/4c4/3PR4/9/9/9/3K5 -:- r r")
	is.NoErr(err)
	byRook := MVVLVA(pos, mustMove(t, "e4e5"))
	is.Equal(byRook, 450*10-900)
}

func TestOrderingPriorities(t *testing.T) {
	is := is.New(t)
	pos, err := board.ParseFEN("4k4/9/9/9/4c4/4R4/9/9/9/3K5 -:- r r")
	is.NoErr(err)
	moves := pos.LegalMoves(nil)
	mo := NewMoveOrderer()

	capture := mustMove(t, "e4e5")
	killer := mustMove(t, "e4a4")
	ttMove := mustMove(t, "e4e3")
	mo.storeCutoff(killer, pos.PieceAt(killer.From()), 2, 4, board.NullMove)
	is.Equal(mo.Killers(2)[0], killer)
	is.Equal(mo.HistoryScore(pos.PieceAt(killer.From()), killer.To()), 16)

	scores := mo.ScoreMoves(pos, moves, nil, 2, ttMove, board.NullMove)
	for i := range moves {
		PickMove(moves, scores, i)
	}
	is.Equal(moves[0], ttMove)
	is.Equal(moves[1], capture)
	is.Equal(moves[2], killer)
	for i := 1; i < len(scores); i++ {
		is.True(scores[i-1] >= scores[i])
	}
}

func TestCounterMoveAndReveal(t *testing.T) {
	is := is.New(t)
	pos := board.NewStartingPosition()
	moves := pos.LegalMoves(nil)
	mo := NewMoveOrderer()
	prev := mustMove(t, "+b7b0")
	counter := mustMove(t, "+h0g2")
	mo.storeCutoff(counter, pos.PieceAt(counter.From()), 5, 1, prev)

	scores := mo.ScoreMoves(pos, moves, nil, 0, board.NullMove, prev)
	for i := range moves {
		PickMove(moves, scores, i)
	}
	// captures first, then the countermove: killers for ply 0 are empty
	i := 0
	for pos.PieceAt(moves[i].To()) != board.Empty {
		i++
	}
	is.Equal(moves[i], counter)

	// with the tables empty a reveal sorts ahead of a king step
	mo.Clear()
	reveal := mustMove(t, "+a0a1")
	kingStep := mustMove(t, "e0e1")
	is.True(mo.scoreMove(pos, reveal, 0, board.NullMove, board.NullMove) >
		mo.scoreMove(pos, kingStep, 0, board.NullMove, board.NullMove))
}

func TestHistoryAging(t *testing.T) {
	is := is.New(t)
	mo := NewMoveOrderer()
	pos := board.NewStartingPosition()
	m := mustMove(t, "e0e1")
	mover := pos.PieceAt(m.From())
	for i := 0; i < 70; i++ {
		mo.storeCutoff(m, mover, 1, 128, board.NullMove)
	}
	is.True(mo.HistoryScore(mover, m.To()) <= historyLimit)
	is.True(mo.HistoryScore(mover, m.To()) > 0)
}

func TestSaturatedHistoryBelowKillers(t *testing.T) {
	is := is.New(t)
	mo := NewMoveOrderer()
	pos := board.NewStartingPosition()
	busy := mustMove(t, "e0e1")
	for i := 0; i < 200; i++ {
		mo.storeCutoff(busy, pos.PieceAt(busy.From()), 10, 128, board.NullMove)
	}
	killer := mustMove(t, "+a0a1")
	mo.storeCutoff(killer, pos.PieceAt(killer.From()), 2, 1, board.NullMove)
	prev := mustMove(t, "+b7b0")
	counter := mustMove(t, "+i0i1")
	mo.storeCutoff(counter, pos.PieceAt(counter.From()), 20, 1, prev)

	busyScore := mo.scoreMove(pos, busy, 2, board.NullMove, counter)
	is.True(busyScore > 0)
	is.True(busyScore < mo.scoreMove(pos, counter, 2, board.NullMove, counter))
	is.True(busyScore < mo.scoreMove(pos, killer, 2, board.NullMove, counter))
}
