package strategy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/cache"
	"github.com/domino14/jieqi/config"
	"github.com/domino14/jieqi/equity"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

const forcedCaptureFEN = "4k4/9/9/9/4c4/4R4/9/9/9/3K5 -:- r r"

func seededRNG(b byte) *frand.RNG {
	seed := make([]byte, 32)
	seed[0] = b
	return frand.NewCustom(seed, 1024, 12)
}

func TestPresets(t *testing.T) {
	is := is.New(t)
	ps := Presets()
	for _, name := range []string{"random", "greedy", "pvs", "expectimax", "expectimax-fast", "fixed-value"} {
		_, ok := ps[name]
		is.True(ok)
	}
	is.Equal(ps["pvs"].Kind, KindPVS)
	is.True(!ps["pvs"].Chance)

	fast := ps["expectimax-fast"]
	is.Equal(fast.Kind, KindExpectimax)
	is.True(fast.Chance)
	is.True(fast.LMR)
	is.Equal(fast.Depth, 4)
	is.Equal(fast.QuiescenceDepth, 4)
	is.Equal(fast.Description, "shallow expectimax for batch self-play")

	hv, err := ps["fixed-value"].Valuation()
	is.NoErr(err)
	is.Equal(hv, equity.HiddenFixed)

	// a copy; callers can't spoil the presets
	delete(ps, "pvs")
	_, ok := Presets()["pvs"]
	is.True(ok)
}

func TestLookup(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	p, err := Lookup(cfg, "expectimax")
	is.NoErr(err)
	is.Equal(p.Kind, KindExpectimax)

	_, err = Lookup(cfg, "alphago")
	is.True(errors.Is(err, ErrUnknownStrategy))

	names, err := Names(cfg)
	is.NoErr(err)
	is.Equal(names[0], "expectimax")
}

func TestStrategyFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "mine.yaml")
	err := os.WriteFile(path, []byte(`
strategies:
  - name: deep
    base: expectimax
    depth: 9
  - name: deeper
    base: deep
    quiescence: false
  - name: greedy
    kind: greedy
`), 0o644)
	is.NoErr(err)

	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigStrategyFile, path)
	defer cache.Forget("strategyfile:" + path)

	deep, err := Lookup(cfg, "deeper")
	is.NoErr(err)
	is.Equal(deep.Kind, KindExpectimax)
	is.Equal(deep.Depth, 9)
	is.True(!deep.Quiescence)
	is.True(deep.Chance)
	is.Equal(deep.Base, "deep")

	// the file replaces presets by name
	g, err := Lookup(cfg, "greedy")
	is.NoErr(err)
	is.Equal(g.Randomness, 0.0)
}

func TestBadPolicies(t *testing.T) {
	is := is.New(t)
	_, err := ParsePolicies(strings.NewReader(`
strategies:
  - name: x
    kind: minimax
`), nil)
	is.True(errors.Is(err, ErrBadPolicy))

	_, err = ParsePolicies(strings.NewReader(`
strategies:
  - name: x
    kind: greedy
    randomness: 2
`), nil)
	is.True(errors.Is(err, ErrBadPolicy))

	_, err = ParsePolicies(strings.NewReader(`
strategies:
  - name: x
    base: nowhere
`), Presets())
	is.True(errors.Is(err, ErrUnknownStrategy))
}

func TestKindYAML(t *testing.T) {
	is := is.New(t)
	k, err := ParseKind("Expectimax")
	is.NoErr(err)
	is.Equal(k, KindExpectimax)
	is.Equal(k.String(), "expectimax")
	is.True(k.Searches())
	is.True(!KindGreedy.Searches())
}

func TestGreedyPrefersCapture(t *testing.T) {
	is := is.New(t)
	pos, err := board.ParseFEN(forcedCaptureFEN)
	is.NoErr(err)
	p, err := NewPlayer(Presets()["greedy"], seededRNG(1))
	is.NoErr(err)
	m, err := p.BestMove(context.Background(), pos)
	is.NoErr(err)
	is.Equal(m.String(), "e4e5")
}

func TestGreedyScore(t *testing.T) {
	is := is.New(t)
	pos := board.NewStartingPosition()
	mv := func(s string) board.Move {
		m, err := board.ParseMove(s)
		is.NoErr(err)
		return m
	}
	// face-down pawn on e3 steps to the centre file: reveal, centre, advance
	is.Equal(GreedyScore(pos, mv("+e3e4")), 50.0+10+20)
	// face-down cannon on b2 takes the face-down horse on b9
	is.Equal(GreedyScore(pos, mv("+b2b9")), 320.0+0+50+4)
}

func TestRandomIsSeeded(t *testing.T) {
	is := is.New(t)
	pos := board.NewStartingPosition()
	var firsts []board.Move
	for i := 0; i < 2; i++ {
		p, err := NewPlayer(Presets()["random"], seededRNG(7))
		is.NoErr(err)
		res, err := p.SelectMoves(context.Background(), pos, 0)
		is.NoErr(err)
		is.Equal(len(res.Moves), 44)
		for _, sm := range res.Moves {
			is.True(pos.IsLegal(sm.Move))
		}
		firsts = append(firsts, res.Moves[0].Move)
	}
	is.Equal(firsts[0], firsts[1])
}

func TestSearchPlayers(t *testing.T) {
	is := is.New(t)
	for _, name := range []string{"pvs", "expectimax"} {
		pol := Presets()[name]
		pol.Depth = 3
		p, err := NewPlayer(pol, nil)
		is.NoErr(err)
		p.SetTTFractionOfMemory(0)

		pos, err := board.ParseFEN(forcedCaptureFEN)
		is.NoErr(err)
		res, err := p.SelectMoves(context.Background(), pos, 1)
		is.NoErr(err)
		is.Equal(len(res.Moves), 1)
		is.Equal(res.Moves[0].Move.String(), "e4e5")
		is.Equal(res.Depth, 3)
		is.Equal(pos.FEN(), forcedCaptureFEN)
	}
}

func TestExpectimaxOpeningFinishesDepthOne(t *testing.T) {
	is := is.New(t)
	for _, name := range []string{"expectimax", "expectimax-fast", "fixed-value"} {
		pol := Presets()[name]
		is.True(!pol.RevealExtension)
		p, err := NewPlayer(pol, nil)
		is.NoErr(err)
		p.SetTTFractionOfMemory(0)
		pos := board.NewStartingPosition()
		res, err := p.SelectMoves(context.Background(), pos, 1)
		is.NoErr(err)
		// depth 0 would be the static one-ply ranking
		is.True(res.Depth >= 1)
		is.Equal(len(res.Moves), 1)
		is.True(res.Elapsed < 2*pol.TimeBudget(DefaultTimeLimit))
		is.Equal(pos.FEN(), board.StartingFEN)
	}
}

func TestNoiseStaysLegal(t *testing.T) {
	is := is.New(t)
	pol := Presets()["pvs"]
	pol.Depth = 2
	pol.Randomness = 1
	p, err := NewPlayer(pol, seededRNG(3))
	is.NoErr(err)
	p.SetTTFractionOfMemory(0)
	pos := board.NewStartingPosition()
	res, err := p.SelectMoves(context.Background(), pos, 3)
	is.NoErr(err)
	is.Equal(len(res.Moves), 3)
	for i, sm := range res.Moves {
		is.True(pos.IsLegal(sm.Move))
		if i > 0 {
			is.True(res.Moves[i-1].Score >= sm.Score)
		}
	}
	is.Equal(res.PV[0], res.Moves[0].Move)
}

func TestTerminal(t *testing.T) {
	is := is.New(t)
	pos, err := board.ParseFEN("R3k4/R8/9/9/9/9/9/9/9/3K5 -:- b r")
	is.NoErr(err)
	for _, name := range []string{"random", "expectimax"} {
		p, err := NewPlayer(Presets()[name], nil)
		is.NoErr(err)
		p.SetTTFractionOfMemory(0)
		_, err = p.BestMove(context.Background(), pos)
		is.True(errors.Is(err, ErrNoMoves))
	}
}
