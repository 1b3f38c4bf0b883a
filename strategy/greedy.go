package strategy

import (
	"github.com/domino14/jieqi/board"
)

const (
	greedyRevealBonus = 50
	greedyPawnAdvance = 20
)

// GreedyScore is a one-ply heuristic: material taken, a tenth of the trade
// margin, a bonus for turning a piece over, central files and pawn advance.
func GreedyScore(pos *board.Position, m board.Move) float64 {
	from, to := m.From(), m.To()
	mover := pos.PieceAt(from)
	score := 0.0

	if target := pos.PieceAt(to); !target.IsEmpty() && target.Color() != mover.Color() {
		victim := float64(greedyValue(target))
		attacker := float64(greedyValue(mover))
		score += victim + (victim-attacker)*0.1
	}
	if m.IsReveal() {
		score += greedyRevealBonus
	}
	dc := to.Col() - 4
	if dc < 0 {
		dc = -dc
	}
	score += 10 - float64(dc)*2

	if pos.MovementType(from) == board.Pawn {
		progress := to.Row() - from.Row()
		if mover.Color() == board.Black {
			progress = -progress
		}
		score += float64(progress * greedyPawnAdvance)
	}
	return score
}

func greedyValue(pc board.Piece) int {
	if pc.Hidden() {
		return board.HiddenValue
	}
	return pc.Type().Value()
}
