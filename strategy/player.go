package strategy

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/equity"
	"github.com/domino14/jieqi/search"
)

var ErrNoMoves = errors.New("no legal moves")

const (
	DefaultMaxDepth  = 50
	DefaultTimeLimit = time.Second
)

// Player picks moves according to one Policy. It owns a Solver and its
// tables, so a Player must not be shared between goroutines.
type Player struct {
	policy    Policy
	evaluator *equity.Evaluator
	solver    *search.Solver
	rng       *frand.RNG

	maxDepth   int
	timeLimit  time.Duration
	ttFraction float64
}

// NewPlayer builds a player. A nil rng draws from the process-wide
// generator.
func NewPlayer(p Policy, rng *frand.RNG) (*Player, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	hv, err := p.Valuation()
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = frand.New()
	}
	return &Player{
		policy:     p,
		evaluator:  equity.NewEvaluator(hv),
		solver:     &search.Solver{},
		rng:        rng,
		maxDepth:   DefaultMaxDepth,
		timeLimit:  DefaultTimeLimit,
		ttFraction: search.DefaultTTFractionOfMemory,
	}, nil
}

func (p *Player) Policy() Policy {
	return p.policy
}

// SetMaxDepth caps the search depth when the policy leaves it open.
func (p *Player) SetMaxDepth(d int) {
	p.maxDepth = d
}

// SetTimeLimit is the budget used when the policy has none of its own.
func (p *Player) SetTimeLimit(d time.Duration) {
	p.timeLimit = d
}

// SetRNG replaces the generator behind random scores and noise, so seeded
// games replay the same way.
func (p *Player) SetRNG(rng *frand.RNG) {
	p.rng = rng
}

func (p *Player) SetTTFractionOfMemory(f float64) {
	p.ttFraction = f
}

func (p *Player) configureSolver(pos *board.Position) error {
	s := p.solver
	if err := s.Init(pos, p.evaluator); err != nil {
		return err
	}
	pol := p.policy
	s.SetTTFractionOfMemory(p.ttFraction)
	s.SetTimeLimit(pol.TimeBudget(p.timeLimit))
	s.SetChanceNodes(pol.Kind == KindExpectimax && pol.Chance)
	s.SetQuiescence(pol.Quiescence)
	if pol.QuiescenceDepth > 0 {
		s.SetQuiescenceDepth(pol.QuiescenceDepth)
	}
	s.SetLMROptim(pol.LMR)
	s.SetPVSOptim(pol.PVS)
	s.SetTranspositionTableOptim(pol.TranspositionTable)
	s.SetCheckExtension(pol.CheckExtension)
	s.SetRevealExtension(pol.RevealExtension)
	s.SetMaxExtensions(pol.MaxExtensions)
	return nil
}

func (p *Player) depth() int {
	if p.policy.Depth > 0 {
		return p.policy.Depth
	}
	return p.maxDepth
}

// SelectMoves returns up to n scored moves for the side to move, best
// first; n <= 0 asks for all of them. pos is searched in place and left as
// it was found.
func (p *Player) SelectMoves(ctx context.Context, pos *board.Position, n int) (*search.Result, error) {
	var res *search.Result
	var err error
	switch p.policy.Kind {
	case KindRandom:
		res, err = p.scoreEach(pos, func(board.Move) float64 {
			return p.rng.Float64() * 1000
		})
	case KindGreedy:
		res, err = p.scoreEach(pos, func(m board.Move) float64 {
			return GreedyScore(pos, m)
		})
	default:
		if err = p.configureSolver(pos); err != nil {
			return nil, err
		}
		want := n
		if p.policy.Randomness > 0 {
			// noise can reorder anything, so every score must be exact
			want = 0
		}
		res, err = p.solver.Solve(ctx, p.depth(), want)
	}
	if err != nil {
		return nil, err
	}
	p.addNoise(res)
	if n > 0 && len(res.Moves) > n {
		res.Moves = res.Moves[:n]
	}
	log.Debug().Str("strategy", p.policy.Name).Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).Int("moves", len(res.Moves)).Msg("moves-selected")
	return res, nil
}

// scoreEach ranks every legal move with a one-ply scorer.
func (p *Player) scoreEach(pos *board.Position, score func(board.Move) float64) (*search.Result, error) {
	tstart := time.Now()
	if err := pos.Validate(); err != nil {
		return nil, err
	}
	res := &search.Result{Outcome: pos.Result()}
	if res.Outcome != board.Ongoing {
		res.Terminal = true
		return res, nil
	}
	for _, m := range pos.LegalMoves(nil) {
		res.Moves = append(res.Moves, search.ScoredMove{Move: m, Score: int(score(m))})
	}
	sortScored(res.Moves)
	if len(res.Moves) > 0 {
		res.PV = []board.Move{res.Moves[0].Move}
	}
	res.Nodes = uint64(len(res.Moves))
	res.Elapsed = time.Since(tstart)
	return res, nil
}

func (p *Player) addNoise(res *search.Result) {
	if p.policy.Randomness <= 0 || len(res.Moves) == 0 {
		return
	}
	for i := range res.Moves {
		res.Moves[i].Score += int(p.rng.Float64() * p.policy.Randomness * 100)
	}
	sortScored(res.Moves)
	if len(res.PV) == 0 || res.PV[0] != res.Moves[0].Move {
		res.PV = []board.Move{res.Moves[0].Move}
	}
}

func sortScored(moves []search.ScoredMove) {
	slices.SortStableFunc(moves, func(a, b search.ScoredMove) int {
		return b.Score - a.Score
	})
}

// BestMove is the top move of SelectMoves.
func (p *Player) BestMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	res, err := p.SelectMoves(ctx, pos, 1)
	if err != nil {
		return board.NullMove, err
	}
	best, ok := res.Best()
	if !ok {
		return board.NullMove, ErrNoMoves
	}
	return best.Move, nil
}
