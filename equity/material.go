package equity

import (
	"github.com/domino14/jieqi/board"
)

// pst is a piece-square table from Red's side; row 0 is Red's back rank.
type pst [board.NumRows][board.NumCols]int

var pstTables = [board.NumTypes]pst{
	board.King: {
		{0, 0, 0, 5, 10, 5, 0, 0, 0},
		{0, 0, 0, 5, 10, 5, 0, 0, 0},
		{0, 0, 0, 5, 5, 5, 0, 0, 0},
	},
	board.Advisor: {
		{0, 0, 0, 5, 0, 5, 0, 0, 0},
		{0, 0, 0, 0, 5, 0, 0, 0, 0},
		{0, 0, 0, 5, 0, 5, 0, 0, 0},
		{0, 0, 5, 5, 5, 5, 5, 0, 0},
		{0, 5, 5, 10, 10, 10, 5, 5, 0},
		{5, 5, 10, 10, 15, 10, 10, 5, 5},
		{5, 10, 10, 15, 15, 15, 10, 10, 5},
		{5, 10, 15, 15, 20, 15, 15, 10, 5},
		{5, 10, 15, 20, 20, 20, 15, 10, 5},
		{0, 5, 10, 15, 25, 15, 10, 5, 0},
	},
	board.Elephant: {
		{0, 0, 5, 0, 0, 0, 5, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0},
		{5, 0, 0, 0, 10, 0, 0, 0, 5},
		{0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 5, 0, 0, 0, 5, 0, 0},
		{5, 5, 10, 10, 15, 10, 10, 5, 5},
		{5, 10, 10, 15, 15, 15, 10, 10, 5},
		{5, 10, 15, 15, 20, 15, 15, 10, 5},
		{5, 10, 15, 20, 20, 20, 15, 10, 5},
		{0, 5, 10, 15, 25, 15, 10, 5, 0},
	},
	board.Horse: {
		{0, 0, 5, 10, 10, 10, 5, 0, 0},
		{0, 5, 10, 15, 15, 15, 10, 5, 0},
		{5, 10, 15, 20, 20, 20, 15, 10, 5},
		{5, 10, 15, 20, 25, 20, 15, 10, 5},
		{5, 10, 15, 20, 25, 20, 15, 10, 5},
		{5, 10, 15, 20, 25, 20, 15, 10, 5},
		{10, 15, 20, 25, 30, 25, 20, 15, 10},
		{10, 15, 20, 25, 30, 25, 20, 15, 10},
		{5, 10, 15, 20, 25, 20, 15, 10, 5},
		{0, 5, 10, 15, 20, 15, 10, 5, 0},
	},
	board.Rook: {
		{10, 10, 10, 15, 15, 15, 10, 10, 10},
		{10, 15, 15, 20, 20, 20, 15, 15, 10},
		{10, 15, 15, 20, 20, 20, 15, 15, 10},
		{10, 15, 15, 20, 20, 20, 15, 15, 10},
		{10, 15, 15, 20, 20, 20, 15, 15, 10},
		{15, 20, 20, 25, 25, 25, 20, 20, 15},
		{15, 20, 20, 25, 25, 25, 20, 20, 15},
		{20, 25, 25, 30, 30, 30, 25, 25, 20},
		{20, 25, 25, 30, 30, 30, 25, 25, 20},
		{15, 20, 20, 25, 25, 25, 20, 20, 15},
	},
	board.Cannon: {
		{10, 10, 10, 15, 15, 15, 10, 10, 10},
		{10, 15, 15, 20, 20, 20, 15, 15, 10},
		{15, 20, 20, 25, 25, 25, 20, 20, 15},
		{15, 20, 20, 25, 25, 25, 20, 20, 15},
		{15, 20, 20, 25, 25, 25, 20, 20, 15},
		{15, 20, 20, 25, 25, 25, 20, 20, 15},
		{15, 20, 20, 25, 25, 25, 20, 20, 15},
		{15, 20, 20, 25, 25, 25, 20, 20, 15},
		{10, 15, 15, 20, 20, 20, 15, 15, 10},
		{5, 10, 10, 15, 15, 15, 10, 10, 5},
	},
	board.Pawn: {
		{0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0},
		{5, 0, 10, 0, 15, 0, 10, 0, 5},
		{10, 0, 15, 0, 20, 0, 15, 0, 10},
		{15, 20, 25, 30, 35, 30, 25, 20, 15},
		{20, 25, 30, 35, 40, 35, 30, 25, 20},
		{25, 30, 35, 40, 45, 40, 35, 30, 25},
		{30, 35, 40, 45, 50, 45, 40, 35, 30},
		{15, 20, 25, 30, 30, 30, 25, 20, 15},
	},
}

// PSTValue is the placement bonus for a revealed t of color c on sq.
func PSTValue(t board.PieceType, c board.Color, sq board.Square) int {
	row := sq.Row()
	if c == board.Black {
		row = board.NumRows - 1 - row
	}
	return pstTables[t][row][sq.Col()]
}

func sign(c board.Color) int {
	if c == board.Red {
		return 1
	}
	return -1
}

// MaterialCalculator counts revealed material. Kings are left out; their
// loss is scored by the search as a terminal result.
type MaterialCalculator struct{}

func (MaterialCalculator) Name() string { return "material" }

func (MaterialCalculator) Equity(s *Snapshot) int {
	v := 0
	for t := board.Advisor; t < board.NoType; t++ {
		v += (s.Pos.Revealed(board.Red, t) - s.Pos.Revealed(board.Black, t)) * board.PieceValues[t]
	}
	return v
}

// PSTCalculator sums piece-square bonuses of revealed pieces.
type PSTCalculator struct{}

func (PSTCalculator) Name() string { return "pst" }

func (PSTCalculator) Equity(s *Snapshot) int {
	v := 0
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		pc := s.Pos.PieceAt(sq)
		if pc.IsEmpty() || pc.Hidden() {
			continue
		}
		v += sign(pc.Color()) * PSTValue(pc.Type(), pc.Color(), sq)
	}
	return v
}
