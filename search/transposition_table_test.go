package search

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/jieqi/board"
)

func TestTTableEntry(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.SetSingleThreadedMode()
	// Assure minimum size of 2^16 elems
	tt.Reset(0)
	is.Equal(tt.sizePowerOf2, minSizePowerOf2)

	m := board.NewMove(board.SquareAt(0, 0), board.SquareAt(1, 0))
	tt.store(9409641586937047728, TableEntry{
		score:      12,
		play:       m,
		depth:      23,
		flagAndGen: TTUpper << 6,
	})

	te := tt.lookup(9409641586937047728)
	is.True(te.valid())
	is.Equal(te.depth, int8(23))
	is.Equal(te.flag(), uint8(TTUpper))
	is.Equal(te.score, int32(12))
	is.Equal(te.move(), m)

	is.Equal(tt.t2collisions.Load(), uint64(0))
	// same slot, different key
	te = tt.lookup(9409641586937047728 + (1 << 40))
	is.Equal(te, TableEntry{})
	is.Equal(tt.t2collisions.Load(), uint64(1))

	// another lookup, but this isn't a collision. collision count should not go up.
	te = tt.lookup(9409641586937047728 + 1)
	is.Equal(te, TableEntry{})
	is.Equal(tt.lookups.Load(), uint64(3))
	is.Equal(tt.t2collisions.Load(), uint64(1))
}

func TestTTableReplacement(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.SetSizePowerOf2(minSizePowerOf2)

	deep := uint64(12345)
	other := deep + (1 << 32)
	tt.store(deep, TableEntry{score: 1, depth: 8, flagAndGen: TTExact << 6})

	// a shallower, different position doesn't evict a deeper one from this generation
	tt.store(other, TableEntry{score: 2, depth: 3, flagAndGen: TTExact << 6})
	is.Equal(tt.lookup(deep).score, int32(1))
	is.True(!tt.lookup(other).valid())

	// once the generation moves on, it does
	tt.NewGeneration()
	tt.store(other, TableEntry{score: 2, depth: 3, flagAndGen: TTLower << 6})
	te := tt.lookup(other)
	is.True(te.valid())
	is.Equal(te.flag(), uint8(TTLower))
	is.Equal(te.generation(), uint8(1))
	is.True(!tt.lookup(deep).valid())

	// the same position is always overwritten
	tt.store(other, TableEntry{score: 5, depth: 1, flagAndGen: TTExact << 6})
	is.Equal(tt.lookup(other).score, int32(5))

	// resizing clears everything
	tt.SetSizePowerOf2(minSizePowerOf2)
	is.True(!tt.lookup(other).valid())
	is.Equal(tt.created.Load(), uint64(0))
}

func TestMateScoreAdjustment(t *testing.T) {
	is := is.New(t)
	mate := MateScore - 7
	stored := scoreToTT(mate, 3)
	is.Equal(int(stored), MateScore-4)
	is.Equal(scoreFromTT(stored, 5), MateScore-9)
	is.Equal(scoreFromTT(scoreToTT(-mate, 3), 3), -mate)
	is.Equal(scoreFromTT(scoreToTT(250, 9), 2), 250)
}
