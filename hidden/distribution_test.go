package hidden

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/jieqi/board"
)

func TestOpeningDistribution(t *testing.T) {
	is := is.New(t)
	pos := board.NewStartingPosition()
	d := FromPosition(pos, board.Red)
	is.Equal(d.Total(), 15)
	is.Equal(d.Remaining(board.King), 0)
	is.Equal(d.Remaining(board.Pawn), 5)
	is.Equal(d.ExpectedValue(), 256)

	outcomes := d.PossibleTypes()
	is.Equal(len(outcomes), 6)
	sum := 0.0
	for _, o := range outcomes {
		is.True(o.Type != board.King)
		sum += o.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 2.0/15, d.Probability(board.Rook), 1e-9)
}

func TestExhaustedTypeExcluded(t *testing.T) {
	is := is.New(t)
	pos, err := board.ParseFEN("xxxxkxxxx/9/1x5x1/x1x1x1x1x/9/9/X1X1X1X1X/1X5X1/9/RXXXKXXXR -:- r r")
	is.NoErr(err)
	d := FromPosition(pos, board.Red)
	is.Equal(d.Remaining(board.Rook), 0)
	is.Equal(d.Probability(board.Rook), 0.0)
	for _, o := range d.PossibleTypes() {
		is.True(o.Type != board.Rook)
	}
	is.Equal(d.Total(), 13)

	// black is untouched
	is.Equal(FromPosition(pos, board.Black).Total(), 15)
}

func TestUnknownCapturesScalePool(t *testing.T) {
	is := is.New(t)
	pos := board.NewStartingPosition()
	m, err := board.ParseMove("+b2b9")
	is.NoErr(err)
	pos.Apply(m)

	d := FromPosition(pos, board.Black)
	is.Equal(d.Total(), 14)
	is.Equal(d.Remaining(board.Pawn), 4)
	is.Equal(d.Remaining(board.Rook), 2)
	is.Equal(d.Remaining(board.Advisor), 2)

	// red revealed a cannon
	r := FromPosition(pos, board.Red)
	is.Equal(r.Remaining(board.Cannon), 1)
	is.Equal(r.Total(), 14)
}

func TestNoHiddenPieces(t *testing.T) {
	is := is.New(t)
	pos, err := board.ParseFEN("4k4/9/9/9/9/9/9/9/9/4K4 -:- r r")
	is.NoErr(err)
	d := FromPosition(pos, board.Red)
	is.Equal(len(d.PossibleTypes()), 0)
	is.Equal(d.Probability(board.Pawn), 0.0)
}

func TestEmptyPoolValue(t *testing.T) {
	is := is.New(t)
	d := Distribution{}
	is.Equal(d.ExpectedValue(), DefaultExpectedValue)
}
