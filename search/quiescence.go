package search

import (
	"context"

	"github.com/domino14/jieqi/board"
)

// A capture whose victim, plus this margin, cannot lift the stand-pat
// score back to alpha is not searched.
const deltaMargin = 200

// quiesce searches captures only, until the position is quiet, so that the
// static evaluation is never taken in the middle of an exchange. In check,
// every evasion is searched instead.
func (s *Solver) quiesce(ctx context.Context, nodeKey uint64, α, β, ply, qdepth int) (int, error) {
	if err := s.countNode(ctx); err != nil {
		return 0, err
	}
	pos := s.pos
	onTurn := pos.Turn()
	if pos.KingSquare(onTurn) == board.NoSquare {
		return -MateScore + ply, nil
	}
	inCheck := pos.InCheck(onTurn)

	var moves []board.Move
	standPat := -Infinity
	bestValue := -Infinity
	if inCheck {
		moves = pos.LegalMoves(s.moveBufs[ply][:0])
		s.moveBufs[ply] = moves
		if len(moves) == 0 {
			return -MateScore + ply, nil
		}
		if qdepth >= s.quiescenceDepth {
			return s.evaluator.Evaluate(pos, onTurn), nil
		}
	} else {
		standPat = s.evaluator.Evaluate(pos, onTurn)
		if standPat >= β || qdepth >= s.quiescenceDepth {
			return standPat, nil
		}
		// Not even winning a rook would help.
		if standPat+board.Rook.Value()+deltaMargin < α {
			return standPat, nil
		}
		α = max(α, standPat)
		bestValue = standPat
		moves = pos.LegalCaptures(s.moveBufs[ply][:0])
		s.moveBufs[ply] = moves
	}

	scores := s.scoreBufs[ply][:0]
	for _, m := range moves {
		sc := 0
		if !pos.PieceAt(m.To()).IsEmpty() {
			sc = CaptureBase + MVVLVA(pos, m)
		}
		scores = append(scores, sc)
	}
	s.scoreBufs[ply] = scores

	for i := range moves {
		PickMove(moves, scores, i)
		m := moves[i]
		if !inCheck {
			victim := pieceValue(pos.PieceAt(m.To()))
			if standPat+victim+deltaMargin < α {
				continue
			}
		}
		// capturing reveals are played at face value here; chance nodes
		// belong to the main search.
		u := pos.Apply(m)
		childKey := s.zobrist.AddMove(nodeKey, pos, u)
		value, err := s.quiesce(ctx, childKey, -β, -α, ply+1, qdepth+1)
		pos.UndoMove(u)
		if err != nil {
			return 0, err
		}
		value = -value
		if value > bestValue {
			bestValue = value
		}
		α = max(α, bestValue)
		if α >= β {
			break
		}
	}
	return bestValue, nil
}
