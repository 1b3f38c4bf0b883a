package equity

import (
	"github.com/domino14/jieqi/board"
)

// CoverBonus is what a face-down piece on sq is worth for staying covered.
// Corner and cannon-square pieces sit idle behind their own back rank until
// they are turned over, while covered pieces on the pawn line and around the
// palace still screen their camp.
func CoverBonus(sq board.Square) int {
	switch board.StartType(sq) {
	case board.Rook:
		return -50
	case board.Cannon:
		return -20
	case board.Horse:
		return -10
	case board.Advisor, board.Elephant:
		return 10
	case board.Pawn:
		if c := sq.Col(); c == 0 || c == board.NumCols-1 {
			return 30
		}
		return 50
	}
	return 0
}

// HiddenCalculator values every face-down piece on the board, wherever it
// stands.
type HiddenCalculator struct {
	Valuation HiddenValuation
}

func (HiddenCalculator) Name() string { return "hidden" }

func (h HiddenCalculator) Equity(s *Snapshot) int {
	v := 0
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		pc := s.Pos.PieceAt(sq)
		if pc.Hidden() {
			v += sign(pc.Color()) * h.Valuation.pieceValue(s, sq)
		}
	}
	return v
}

// CoverCalculator sums CoverBonus over the face-down pieces. It is the
// placement term for covered pieces, as PSTCalculator is for revealed ones.
type CoverCalculator struct{}

func (CoverCalculator) Name() string { return "cover" }

func (CoverCalculator) Equity(s *Snapshot) int {
	v := 0
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		pc := s.Pos.PieceAt(sq)
		if pc.Hidden() {
			v += sign(pc.Color()) * CoverBonus(sq)
		}
	}
	return v
}
