package search

import (
	"context"
	"math"

	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/hidden"
)

// Late move reductions start after this many moves, from this depth on.
const (
	lmrFullDepthMoves = 4
	lmrMinDepth       = 3
)

// mateThreshold separates mate scores from ordinary evaluations.
const mateThreshold = MateScore - 2*MaxPly

func scoreToTT(score, ply int) int32 {
	switch {
	case score >= mateThreshold:
		score += ply
	case score <= -mateThreshold:
		score -= ply
	}
	return int32(score)
}

func scoreFromTT(score int32, ply int) int {
	s := int(score)
	switch {
	case s >= mateThreshold:
		s -= ply
	case s <= -mateThreshold:
		s += ply
	}
	return s
}

// countNode bumps the node counter and, every few thousand nodes, checks
// whether the search has been cancelled or run out of time.
func (s *Solver) countNode(ctx context.Context) error {
	if s.nodes.Add(1)&nodeCheckMask == 0 {
		return ctx.Err()
	}
	return nil
}

// negamax returns the value of the position for the side to move. ext is
// the number of extension plies already spent on this path; prev is the
// move that led here.
func (s *Solver) negamax(ctx context.Context, nodeKey uint64, depth, ply, ext int,
	α, β int, prev board.Move, pv *PVLine) (int, error) {

	if err := s.countNode(ctx); err != nil {
		return 0, err
	}
	pos := s.pos
	onTurn := pos.Turn()
	if ply >= MaxPly {
		return s.evaluator.Evaluate(pos, onTurn), nil
	}
	if pos.KingSquare(onTurn) == board.NoSquare {
		return -MateScore + ply, nil
	}

	alphaOrig := α
	ttMove := board.NullMove

	if s.transpositionTableOptim {
		ttEntry := s.ttable.lookup(nodeKey)
		if ttEntry.valid() && int(ttEntry.depth) >= depth {
			score := scoreFromTT(ttEntry.score, ply)
			flag := ttEntry.flag()
			if flag == TTExact {
				return score, nil
			} else if flag == TTLower {
				α = max(α, score)
			} else if flag == TTUpper {
				β = min(β, score)
			}
			if α >= β {
				return score, nil
			}
		}
		if ttEntry.valid() {
			// search hash move first.
			ttMove = ttEntry.move()
		}
	}

	inCheck := pos.InCheck(onTurn)
	searchDepth := depth
	if inCheck && s.checkExtensionOptim && ext < s.maxExtensions {
		searchDepth++
		ext++
	}

	if searchDepth <= 0 {
		if s.quiescenceOptim {
			return s.quiesce(ctx, nodeKey, α, β, ply, 0)
		}
		return s.evaluator.Evaluate(pos, onTurn), nil
	}

	moves := pos.LegalMoves(s.moveBufs[ply][:0])
	s.moveBufs[ply] = moves
	if len(moves) == 0 {
		// No legal moves loses, checkmate or not. Faster mates score higher.
		return -MateScore + ply, nil
	}
	scores := s.orderer.ScoreMoves(pos, moves, s.scoreBufs[ply], ply, ttMove, prev)
	s.scoreBufs[ply] = scores
	pvNode := β-α > 1

	childPV := PVLine{}
	bestValue := -Infinity
	bestMove := board.NullMove
	for i := range moves {
		PickMove(moves, scores, i)
		m := moves[i]
		mover := pos.PieceAt(m.From())
		isCapture := !pos.PieceAt(m.To()).IsEmpty()

		value, err := s.searchMove(ctx, nodeKey, m, moveContext{
			index:     i,
			depth:     searchDepth,
			ply:       ply,
			ext:       ext,
			inCheck:   inCheck,
			pvNode:    pvNode,
			fullFirst: i == 0,
		}, α, β, &childPV)
		if err != nil {
			return 0, err
		}

		if value > bestValue {
			bestValue = value
			bestMove = m
			pv.Update(m, childPV, value)
		}
		α = max(α, bestValue)
		if bestValue >= β {
			if !isCapture {
				s.orderer.storeCutoff(m, mover, ply, searchDepth, prev)
			}
			break // beta cut-off
		}
		childPV.Clear() // clear the child node's pv for the next child node
	}

	if s.transpositionTableOptim {
		var flag uint8
		if bestValue <= alphaOrig {
			flag = TTUpper
		} else if bestValue >= β {
			flag = TTLower
		} else {
			flag = TTExact
		}
		s.ttable.store(nodeKey, TableEntry{
			score:      scoreToTT(bestValue, ply),
			play:       bestMove,
			depth:      int8(min(depth, math.MaxInt8)),
			flagAndGen: flag << 6,
		})
	}
	return bestValue, nil
}

// moveContext describes the node a move is searched from. fullFirst
// searches the move with the whole window straight away.
type moveContext struct {
	index     int
	depth     int
	ply       int
	ext       int
	inCheck   bool
	pvNode    bool
	fullFirst bool
}

// searchMove plays m and returns its value from the mover's point of view.
// Undeclared reveals go through the chance layer when it is on.
func (s *Solver) searchMove(ctx context.Context, nodeKey uint64, m board.Move, mc moveContext,
	α, β int, childPV *PVLine) (int, error) {

	childDepth := mc.depth - 1
	childExt := mc.ext
	// With chance nodes on, reveals are resolved by the chance layer and
	// are not extended.
	if m.IsReveal() && s.revealExtensionOptim && !s.chanceOptim && childExt < s.maxExtensions {
		childDepth++
		childExt++
	}
	if m.IsReveal() && m.Declared() == board.NoType && s.chanceOptim {
		return s.chance(ctx, nodeKey, m, childDepth, mc.ply, childExt, childPV)
	}

	pos := s.pos
	isCapture := !pos.PieceAt(m.To()).IsEmpty()
	u := pos.Apply(m)
	childKey := s.zobrist.AddMove(nodeKey, pos, u)
	defer pos.UndoMove(u)

	if mc.fullFirst {
		v, err := s.negamax(ctx, childKey, childDepth, mc.ply+1, childExt, -β, -α, m, childPV)
		return -v, err
	}

	reduction := 0
	if s.lmrOptim && mc.index >= lmrFullDepthMoves && mc.depth >= lmrMinDepth &&
		!isCapture && !mc.inCheck && !m.IsReveal() && !pos.GivesCheck() {

		reduction = 1 + mc.index/8
		if !mc.pvNode {
			reduction++
		}
		reduction = max(0, min(reduction, childDepth-1))
	}

	nullβ := α + 1
	if !s.pvsOptim {
		nullβ = β
	}
	v, err := s.negamax(ctx, childKey, childDepth-reduction, mc.ply+1, childExt, -nullβ, -α, m, childPV)
	if err != nil {
		return 0, err
	}
	score := -v
	if score > α && reduction > 0 {
		childPV.Clear()
		v, err = s.negamax(ctx, childKey, childDepth, mc.ply+1, childExt, -nullβ, -α, m, childPV)
		if err != nil {
			return 0, err
		}
		score = -v
	}
	if score > α && score < β && nullβ != β {
		childPV.Clear()
		v, err = s.negamax(ctx, childKey, childDepth, mc.ply+1, childExt, -β, -α, m, childPV)
		if err != nil {
			return 0, err
		}
		score = -v
	}
	return score, nil
}

// chance values a reveal as the probability-weighted mean over every
// identity the piece may have. Each outcome is searched with a full window;
// pruning happens only inside the outcomes' subtrees.
func (s *Solver) chance(ctx context.Context, nodeKey uint64, m board.Move, childDepth, ply, childExt int,
	childPV *PVLine) (int, error) {

	pos := s.pos
	outcomes := hidden.FromPosition(pos, pos.Turn()).PossibleTypes()
	if len(outcomes) == 0 {
		u := pos.Apply(m)
		childKey := s.zobrist.AddMove(nodeKey, pos, u)
		v, err := s.negamax(ctx, childKey, childDepth, ply+1, childExt, -Infinity, Infinity, m, childPV)
		pos.UndoMove(u)
		return -v, err
	}

	expected := 0.0
	bestP := -1.0
	wins, losses := 0, 0
	outcomePV := PVLine{}
	for _, o := range outcomes {
		u := pos.ApplyAs(m, o.Type)
		childKey := s.zobrist.AddMove(nodeKey, pos, u)
		outcomePV.Clear()
		v, err := s.negamax(ctx, childKey, childDepth, ply+1, childExt, -Infinity, Infinity, m, &outcomePV)
		pos.UndoMove(u)
		if err != nil {
			return 0, err
		}
		score := -v
		if score >= mateThreshold {
			wins++
		} else if score <= -mateThreshold {
			losses++
		}
		expected += o.Probability * float64(score)
		if o.Probability > bestP {
			bestP = o.Probability
			childPV.Moves = append(childPV.Moves[:0], outcomePV.Moves...)
		}
	}
	return expectedScore(expected, wins, losses, len(outcomes)), nil
}

// expectedScore rounds a chance node's mean. Unless every outcome is a mate
// of the same sign the result is held inside the ordinary score range, so
// it is never mistaken for a mate score when stored in the table.
func expectedScore(expected float64, wins, losses, n int) int {
	v := int(math.Round(expected))
	if wins == n || losses == n {
		return v
	}
	return max(-(mateThreshold - 1), min(v, mateThreshold-1))
}
