package equity

import (
	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/hidden"
)

// Snapshot is what every calculator sees of a position. The hidden-piece
// expected values are computed once per evaluation.
type Snapshot struct {
	Pos      *board.Position
	HiddenEV [2]int
}

func NewSnapshot(pos *board.Position) *Snapshot {
	return &Snapshot{
		Pos: pos,
		HiddenEV: [2]int{
			hidden.FromPosition(pos, board.Red).ExpectedValue(),
			hidden.FromPosition(pos, board.Black).ExpectedValue(),
		},
	}
}

// EquityCalculator computes one term of the static evaluation. Equity is
// always Red's value minus Black's; the Evaluator flips the sign for Black.
type EquityCalculator interface {
	Name() string
	Equity(s *Snapshot) int
}

// HiddenValuation selects how a face-down piece is valued.
type HiddenValuation uint8

const (
	// HiddenExpected values a face-down piece at the discounted average of
	// its side's remaining pool.
	HiddenExpected HiddenValuation = iota
	// HiddenFixed values every face-down piece at board.HiddenValue.
	HiddenFixed
)

func (h HiddenValuation) String() string {
	if h == HiddenFixed {
		return "fixed"
	}
	return "expected"
}

// pieceValue is the value of the face-down or revealed piece on sq.
func (h HiddenValuation) pieceValue(s *Snapshot, sq board.Square) int {
	pc := s.Pos.PieceAt(sq)
	if !pc.Hidden() {
		return pc.Type().Value()
	}
	if h == HiddenFixed {
		return board.HiddenValue
	}
	return s.HiddenEV[pc.Color()]
}
