package search

import (
	"github.com/domino14/jieqi/board"
)

// Move ordering priorities
const (
	TTMoveScore      = 20_000_000
	CaptureBase      = 10_000_000
	KillerScore      = 800_000
	CounterMoveScore = 600_000
	RevealBonus      = 300

	// history is halved once an entry passes this, which keeps it below
	// CounterMoveScore.
	historyLimit = 300_000
)

// history is indexed by the mover's kind; face-down movers get their own row.
const historyKinds = board.NumTypes + 1

// MVVLVA scores a capture by victim value times ten minus attacker value.
// Face-down pieces count at the flat hidden value.
func MVVLVA(pos *board.Position, m board.Move) int {
	victim := pieceValue(pos.PieceAt(m.To()))
	attacker := pieceValue(pos.PieceAt(m.From()))
	return victim*10 - attacker
}

func pieceValue(p board.Piece) int {
	if p.IsEmpty() {
		return 0
	}
	return p.Type().Value()
}

func historyKind(p board.Piece) int {
	if p.Hidden() {
		return board.NumTypes
	}
	return int(p.Type())
}

// MoveOrderer holds the killer, history and countermove tables of one
// search. They are cleared when a search starts and carried from one
// iterative-deepening depth to the next.
type MoveOrderer struct {
	killers     [MaxPly][MaxKillers]board.Move
	history     [historyKinds][board.NumSquares]int
	counterMove [board.NumSquares][board.NumSquares]board.Move

	useKillers bool
	useHistory bool
}

func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{useKillers: true, useHistory: true}
}

// Clear resets every table for a new search.
func (mo *MoveOrderer) Clear() {
	mo.killers = [MaxPly][MaxKillers]board.Move{}
	mo.history = [historyKinds][board.NumSquares]int{}
	mo.counterMove = [board.NumSquares][board.NumSquares]board.Move{}
}

// ScoreMoves fills scores with an ordering score for each move. prev is the
// opponent's last move, or board.NullMove at the root.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves []board.Move, scores []int,
	ply int, ttMove, prev board.Move) []int {

	scores = scores[:0]
	counter := board.NullMove
	if mo.useKillers && prev != board.NullMove {
		counter = mo.counterMove[prev.From()][prev.To()]
	}
	for _, m := range moves {
		scores = append(scores, mo.scoreMove(pos, m, ply, ttMove, counter))
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove, counter board.Move) int {
	score := 0
	if m == ttMove {
		score += TTMoveScore
	}
	if !pos.PieceAt(m.To()).IsEmpty() {
		score += CaptureBase + MVVLVA(pos, m)
	}
	if mo.useKillers {
		if m == counter {
			score += CounterMoveScore
		}
		if ply < MaxPly && (m == mo.killers[ply][0] || m == mo.killers[ply][1]) {
			score += KillerScore
		}
	}
	if mo.useHistory {
		score += mo.history[historyKind(pos.PieceAt(m.From()))][m.To()]
	}
	if m.IsReveal() {
		score += RevealBonus
	}
	return score
}

// PickMove selects the best remaining move and moves it to position index.
func PickMove(moves []board.Move, scores []int, index int) {
	best := index
	for j := index + 1; j < len(moves); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves[index], moves[best] = moves[best], moves[index]
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// storeCutoff records a quiet move that caused a beta cutoff. mover is the
// piece that made the move, looked up before the move was played.
func (mo *MoveOrderer) storeCutoff(m board.Move, mover board.Piece, ply, depth int, prev board.Move) {
	if mo.useKillers {
		if ply < MaxPly && m != mo.killers[ply][0] {
			mo.killers[ply][1] = mo.killers[ply][0]
			mo.killers[ply][0] = m
		}
		if prev != board.NullMove {
			mo.counterMove[prev.From()][prev.To()] = m
		}
	}
	if mo.useHistory {
		h := &mo.history[historyKind(mover)][m.To()]
		*h += depth * depth
		if *h > historyLimit {
			for i := range mo.history {
				for j := range mo.history[i] {
					mo.history[i][j] /= 2
				}
			}
		}
	}
}

// Killers returns the two killer moves stored for ply.
func (mo *MoveOrderer) Killers(ply int) [MaxKillers]board.Move {
	return mo.killers[ply]
}

// HistoryScore is the accumulated cutoff score for mover reaching to.
func (mo *MoveOrderer) HistoryScore(mover board.Piece, to board.Square) int {
	return mo.history[historyKind(mover)][to]
}
