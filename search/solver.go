package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/equity"
	"github.com/domino14/jieqi/zobrist"
)

const (
	MateScore = 100_000
	Infinity  = 1_000_000
	// MaxPly bounds the main search; quiescence may go a few plies deeper.
	MaxPly     = 64
	MaxKillers = 2

	DefaultMaxExtensions   = 2
	DefaultQuiescenceDepth = 6
	maxQuiescenceDepth     = 16

	DefaultTTFractionOfMemory = 0.05

	nodeCheckMask = 4095
)

// PVLine is a principal variation.
type PVLine struct {
	Moves []board.Move
	score int
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = nil
}

// Update the principal variation line with a new best move,
// and a new line of best play after the best move.
func (pvLine *PVLine) Update(m board.Move, newPVLine PVLine, score int) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, m)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
	pvLine.score = score
}

func (pvLine PVLine) NLBString() string {
	// no line breaks
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d; ", pvLine.score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&sb, "%d: %s; ", i+1, m)
	}
	return sb.String()
}

// ScoredMove is a root move with its search value for the side to move.
type ScoredMove struct {
	Move  board.Move `json:"move"`
	Score int        `json:"score"`
}

// Result is what Solve hands back: the scored root moves, best first, from
// the deepest iteration that ran to completion.
type Result struct {
	Moves    []ScoredMove
	PV       []board.Move
	Depth    int
	Nodes    uint64
	Elapsed  time.Duration
	Terminal bool
	Outcome  board.GameResult
}

// Best returns the top move, if there is one.
func (r *Result) Best() (ScoredMove, bool) {
	if len(r.Moves) == 0 {
		return ScoredMove{}, false
	}
	return r.Moves[0], true
}

// NPS is the node rate of the search.
func (r *Result) NPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Nodes) / r.Elapsed.Seconds()
}

// Solver searches jieqi positions with principal variation search and an
// expectimax layer over reveals. A Solver is not safe for concurrent use;
// run one per goroutine.
type Solver struct {
	zobrist   *zobrist.Zobrist
	pos       *board.Position
	evaluator *equity.Evaluator
	orderer   *MoveOrderer
	ttable    *TranspositionTable

	iterativeDeepeningOptim bool
	transpositionTableOptim bool
	pvsOptim                bool
	lmrOptim                bool
	quiescenceOptim         bool
	chanceOptim             bool
	checkExtensionOptim     bool
	revealExtensionOptim    bool

	maxExtensions      int
	quiescenceDepth    int
	timeLimit          time.Duration
	ttFractionOfMemory float64

	// allScores searches every root move with a full window.
	allScores bool

	rootMoves []ScoredMove
	moveBufs  [MaxPly + maxQuiescenceDepth + 1][]board.Move
	scoreBufs [MaxPly + maxQuiescenceDepth + 1][]int

	principalVariation PVLine
	nodes              atomic.Uint64
}

// Init initializes the solver for a position. The solver searches pos in
// place and leaves it as it found it.
func (s *Solver) Init(pos *board.Position, evaluator *equity.Evaluator) error {
	if pos == nil {
		return fmt.Errorf("%w: nil position", board.ErrInvalidPosition)
	}
	if s.zobrist == nil {
		s.zobrist = &zobrist.Zobrist{}
		s.zobrist.Initialize()
	}
	s.pos = pos
	s.evaluator = evaluator
	if s.evaluator == nil {
		s.evaluator = equity.NewEvaluator(equity.HiddenExpected)
	}
	s.orderer = NewMoveOrderer()
	s.iterativeDeepeningOptim = true
	s.transpositionTableOptim = true
	s.pvsOptim = true
	s.lmrOptim = true
	s.quiescenceOptim = true
	s.chanceOptim = true
	s.checkExtensionOptim = true
	s.revealExtensionOptim = true
	s.maxExtensions = DefaultMaxExtensions
	s.quiescenceDepth = DefaultQuiescenceDepth
	s.ttFractionOfMemory = DefaultTTFractionOfMemory
	if s.ttable == nil {
		s.ttable = &TranspositionTable{}
		s.ttable.SetSingleThreadedMode()
	}
	return nil
}

// rootKey hashes the position being searched.
func (s *Solver) rootKey() uint64 {
	return s.zobrist.Hash(s.pos)
}

// prepare readies the tables for a fresh search.
func (s *Solver) prepare() {
	s.orderer.Clear()
	s.nodes.Store(0)
	s.principalVariation.Clear()
	if !s.transpositionTableOptim {
		return
	}
	if s.ttable.table == nil {
		s.ttable.Reset(s.ttFractionOfMemory)
	} else {
		s.ttable.SetSizePowerOf2(s.ttable.sizePowerOf2)
	}
}

func (s *Solver) generateRootMoves() {
	moves := s.pos.LegalMoves(nil)
	scores := s.orderer.ScoreMoves(s.pos, moves, nil, 0, board.NullMove, board.NullMove)
	s.rootMoves = s.rootMoves[:0]
	for i := range moves {
		PickMove(moves, scores, i)
		s.rootMoves = append(s.rootMoves, ScoredMove{Move: moves[i]})
	}
}

// staticScores fills in a one-ply look at every root move: the evaluation
// after the move, from the mover's point of view.
func (s *Solver) staticScores() {
	onTurn := s.pos.Turn()
	for i := range s.rootMoves {
		u := s.pos.Apply(s.rootMoves[i].Move)
		s.rootMoves[i].Score = s.evaluator.Evaluate(s.pos, onTurn)
		s.pos.UndoMove(u)
	}
	slices.SortStableFunc(s.rootMoves, func(a, b ScoredMove) int {
		return b.Score - a.Score
	})
}

// searchRoot searches every root move to depth and scores it. On error the
// root moves are left as the previous iteration had them.
func (s *Solver) searchRoot(ctx context.Context, rootKey uint64, depth int) ([]ScoredMove, PVLine, error) {
	pos := s.pos
	inCheck := pos.InCheck(pos.Turn())
	ext := 0
	if inCheck && s.checkExtensionOptim && s.maxExtensions > 0 {
		depth++
		ext++
	}
	scored := make([]ScoredMove, len(s.rootMoves))
	pv := PVLine{}
	childPV := PVLine{}
	α, β := -Infinity, Infinity
	best := -Infinity
	for i, rm := range s.rootMoves {
		first := i == 0 || s.allScores
		if s.allScores {
			α = -Infinity
		}
		value, err := s.searchMove(ctx, rootKey, rm.Move, moveContext{
			index:     i,
			depth:     depth,
			ply:       0,
			ext:       ext,
			inCheck:   inCheck,
			pvNode:    true,
			fullFirst: first,
		}, α, β, &childPV)
		if err != nil {
			return nil, PVLine{}, err
		}
		scored[i] = ScoredMove{Move: rm.Move, Score: value}
		if value > best {
			best = value
			pv.Update(rm.Move, childPV, value)
		}
		α = max(α, best)
		childPV.Clear()
	}
	slices.SortStableFunc(scored, func(a, b ScoredMove) int {
		return b.Score - a.Score
	})
	return scored, pv, nil
}

func (s *Solver) iterativelyDeepen(ctx context.Context, maxDepth int) (int, error) {
	rootKey := s.rootKey()
	start := 1
	if !s.iterativeDeepeningOptim {
		start = max(maxDepth, 1)
	}
	completed := 0
	for d := start; d <= maxDepth; d++ {
		log.Debug().Int("depth", d).Msg("deepening-iteratively")
		if s.transpositionTableOptim {
			s.ttable.NewGeneration()
		}
		scored, pv, err := s.searchRoot(ctx, rootKey, d)
		if err != nil {
			return completed, err
		}
		// Sort top layer of moves by value for the next time around.
		s.rootMoves = scored
		s.principalVariation = pv
		completed = d
		log.Debug().Int("depth", d).Int("val", pv.score).Str("pv", pv.NLBString()).Msg("best-val")
	}
	return completed, nil
}

// Solve searches the position to at most maxDepth plies and returns the n
// best root moves, or all of them if n <= 0. When a time limit is set, the
// search stops once it runs out and reports the last depth it completed.
func (s *Solver) Solve(ctx context.Context, maxDepth, n int) (*Result, error) {
	tstart := time.Now()
	if err := s.pos.Validate(); err != nil {
		return nil, err
	}
	res := &Result{Outcome: s.pos.Result()}
	if res.Outcome != board.Ongoing {
		res.Terminal = true
		return res, nil
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	maxDepth = min(maxDepth, MaxPly-1)
	s.quiescenceDepth = min(s.quiescenceDepth, maxQuiescenceDepth)
	s.allScores = n != 1

	s.prepare()
	s.generateRootMoves()
	if len(s.rootMoves) == 0 {
		res.Terminal = true
		res.Outcome = board.WinFor(s.pos.Turn().Other())
		return res, nil
	}
	s.staticScores()
	log.Debug().Int("max-depth", maxDepth).Int("root-moves", len(s.rootMoves)).
		Dur("time-limit", s.timeLimit).Msg("pvs-solve-config")

	if s.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeLimit)
		defer cancel()
	}

	g := &errgroup.Group{}
	done := make(chan bool)

	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	var depth int
	g.Go(func() error {
		var err error
		depth, err = s.iterativelyDeepen(ctx, maxDepth)
		done <- true
		return err
	})

	err := g.Wait()
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, err
		}
		// The interrupted depth is thrown away; what was completed stands.
		log.Debug().Int("completed-depth", depth).Msg("search-time-exceeded")
	}

	res.Moves = s.legalOnly(s.rootMoves)
	if n > 0 && len(res.Moves) > n {
		res.Moves = res.Moves[:n]
	}
	res.PV = slices.Clone(s.principalVariation.Moves)
	if len(res.PV) == 0 && len(res.Moves) > 0 {
		res.PV = []board.Move{res.Moves[0].Move}
	}
	res.Depth = depth
	res.Nodes = s.nodes.Load()
	res.Elapsed = time.Since(tstart)

	log.Debug().
		Uint64("ttable-created", s.ttable.created.Load()).
		Uint64("ttable-lookups", s.ttable.lookups.Load()).
		Uint64("ttable-hits", s.ttable.hits.Load()).
		Uint64("ttable-t2collisions", s.ttable.t2collisions.Load()).
		Uint64("nodes", res.Nodes).
		Int("depth", depth).
		Float64("time-elapsed-sec", res.Elapsed.Seconds()).
		Msg("solve-returning")

	return res, nil
}

// legalOnly drops anything that is not a legal move in the root position.
func (s *Solver) legalOnly(moves []ScoredMove) []ScoredMove {
	legal := s.pos.LegalMoves(nil)
	return lo.Filter(moves, func(sm ScoredMove, _ int) bool {
		return slices.Contains(legal, sm.Move.Base())
	})
}

// ScoreMove searches a single root move to depth with a full window and
// returns its value for the side to move.
func (s *Solver) ScoreMove(ctx context.Context, m board.Move, depth int) (int, error) {
	if !s.pos.IsLegal(m) {
		return 0, fmt.Errorf("%w: %s", board.ErrIllegalMove, m)
	}
	s.prepare()
	if s.transpositionTableOptim {
		s.ttable.NewGeneration()
	}
	pv := PVLine{}
	return s.searchMove(ctx, s.rootKey(), m, moveContext{depth: max(depth, 1), pvNode: true, fullFirst: true},
		-Infinity, Infinity, &pv)
}

// Nodes is the number of nodes visited by the last search.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

func (s *Solver) Position() *board.Position {
	return s.pos
}

func (s *Solver) SetIterativeDeepening(id bool) {
	s.iterativeDeepeningOptim = id
}

func (s *Solver) SetKillerPlayOptim(k bool) {
	s.orderer.useKillers = k
}

func (s *Solver) SetHistoryOptim(h bool) {
	s.orderer.useHistory = h
}

func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

func (s *Solver) SetTranspositionTable(tt *TranspositionTable) {
	s.ttable = tt
}

func (s *Solver) SetTTFractionOfMemory(f float64) {
	s.ttFractionOfMemory = f
}

func (s *Solver) SetZobrist(z *zobrist.Zobrist) {
	s.zobrist = z
}

func (s *Solver) SetPVSOptim(p bool) {
	s.pvsOptim = p
}

func (s *Solver) SetLMROptim(l bool) {
	s.lmrOptim = l
}

func (s *Solver) SetQuiescence(q bool) {
	s.quiescenceOptim = q
}

func (s *Solver) SetQuiescenceDepth(d int) {
	s.quiescenceDepth = max(0, min(d, maxQuiescenceDepth))
}

// SetChanceNodes turns the expectimax layer on or off. Off, an undeclared
// reveal is assumed to turn up the piece its square started with.
func (s *Solver) SetChanceNodes(c bool) {
	s.chanceOptim = c
}

func (s *Solver) SetCheckExtension(c bool) {
	s.checkExtensionOptim = c
}

// SetRevealExtension searches reveal moves a ply deeper. It has no effect
// while chance nodes are on.
func (s *Solver) SetRevealExtension(r bool) {
	s.revealExtensionOptim = r
}

func (s *Solver) SetMaxExtensions(n int) {
	s.maxExtensions = max(0, n)
}

// SetTimeLimit bounds the wall-clock time of Solve. Zero means no limit.
func (s *Solver) SetTimeLimit(d time.Duration) {
	s.timeLimit = d
}
