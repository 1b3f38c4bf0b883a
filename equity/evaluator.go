package equity

import (
	"github.com/samber/lo"

	"github.com/domino14/jieqi/board"
)

// Term is one named component of an evaluation, from the evaluated side's
// point of view.
type Term struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Evaluator sums a list of calculators. It keeps scratch buffers, so each
// search owns its own Evaluator.
type Evaluator struct {
	calculators []EquityCalculator
	valuation   HiddenValuation
}

// NewEvaluator builds the standard evaluation: material, piece-square
// tables, face-down pieces, their cover bonus and capture potential.
func NewEvaluator(hv HiddenValuation) *Evaluator {
	return &Evaluator{
		valuation: hv,
		calculators: []EquityCalculator{
			MaterialCalculator{},
			PSTCalculator{},
			HiddenCalculator{Valuation: hv},
			CoverCalculator{},
			&CapturePotentialCalculator{Valuation: hv},
		},
	}
}

// NewCustomEvaluator sums exactly the given calculators.
func NewCustomEvaluator(hv HiddenValuation, calcs ...EquityCalculator) *Evaluator {
	return &Evaluator{valuation: hv, calculators: calcs}
}

func (e *Evaluator) Valuation() HiddenValuation {
	return e.valuation
}

// Evaluate scores pos for side; positive is good for side.
func (e *Evaluator) Evaluate(pos *board.Position, side board.Color) int {
	s := NewSnapshot(pos)
	red := lo.SumBy(e.calculators, func(c EquityCalculator) int {
		return c.Equity(s)
	})
	return sign(side) * red
}

// Breakdown returns the individual terms of Evaluate.
func (e *Evaluator) Breakdown(pos *board.Position, side board.Color) []Term {
	s := NewSnapshot(pos)
	return lo.Map(e.calculators, func(c EquityCalculator, _ int) Term {
		return Term{Name: c.Name(), Value: sign(side) * c.Equity(s)}
	})
}

// PieceValue values the piece on sq the way the evaluation does.
func (e *Evaluator) PieceValue(pos *board.Position, sq board.Square) int {
	return e.valuation.pieceValue(NewSnapshot(pos), sq)
}
