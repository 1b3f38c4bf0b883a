package automatic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/config"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigAutoplayMaxPlies, 60)
	cfg.Set(config.ConfigTimeLimit, 0.05)
	cfg.Set(config.ConfigMaxDepth, 2)
	return cfg
}

func TestSeedsRoundTrip(t *testing.T) {
	is := is.New(t)
	seeds := GenerateSeeds(5)
	is.True(seeds[0] != seeds[1])
	path := filepath.Join(t.TempDir(), "seeds.txt")
	is.NoErr(SaveSeeds(seeds, path))
	loaded, err := LoadSeeds(path)
	is.NoErr(err)
	is.Equal(loaded, seeds)
}

func TestLoadSeedsBadLength(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "seeds.txt")
	is.NoErr(os.WriteFile(path, []byte("# comment\nAAAA\n"), 0o644))
	_, err := LoadSeeds(path)
	is.True(errors.Is(err, ErrBadSeed))

	is.NoErr(os.WriteFile(path, []byte("# only a comment\n"), 0o644))
	_, err = LoadSeeds(path)
	is.True(errors.Is(err, ErrBadSeed))
}

func TestPlayRandomGame(t *testing.T) {
	is := is.New(t)
	logchan := make(chan string, 1)
	r := NewGameRunner(logchan, testConfig())
	is.NoErr(r.Init("random", "random", 0))
	seed := GenerateSeeds(1)[0]
	r.StartGame(&seed, false)
	is.NoErr(r.PlayGame(context.Background()))

	g := r.Game()
	is.True(!g.Playing())
	is.True(g.Plies() <= 60)
	line := <-logchan
	fields := strings.Split(strings.TrimSpace(line), ",")
	is.Equal(len(fields), 6)
	is.Equal(fields[0], g.Uid())
	is.Equal(fields[1], "random")
	is.Equal(fields[4], fmt.Sprint(g.Plies()))
	for c := board.Red; c <= board.Black; c++ {
		is.Equal(len(g.Bag(c)), g.Position().Hidden(c))
	}
}

func TestSeededGamesReplay(t *testing.T) {
	is := is.New(t)
	seed := GenerateSeeds(1)[0]
	var lists []string
	for i := 0; i < 2; i++ {
		r := NewGameRunner(nil, testConfig())
		is.NoErr(r.Init("random", "greedy", 0))
		r.StartGame(&seed, false)
		is.NoErr(r.PlayGame(context.Background()))
		lists = append(lists, r.Game().MoveList())
	}
	is.Equal(lists[0], lists[1])
}

func TestSwappedColours(t *testing.T) {
	is := is.New(t)
	logchan := make(chan string, 1)
	r := NewGameRunner(logchan, testConfig())
	is.NoErr(r.Init("random", "greedy", 0))
	r.StartGame(nil, true)
	is.NoErr(r.PlayGame(context.Background()))
	fields := strings.Split(<-logchan, ",")
	is.Equal(fields[1], "greedy")
	is.Equal(fields[2], "random")
}

func TestCancelledGame(t *testing.T) {
	is := is.New(t)
	r := NewGameRunner(nil, testConfig())
	is.NoErr(r.Init("random", "random", 0))
	r.StartGame(nil, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.PlayGame(ctx)
	is.Equal(err, context.Canceled)
}

func TestCompVCompBatch(t *testing.T) {
	is := is.New(t)
	out := filepath.Join(t.TempDir(), "games.csv")
	err := StartCompVCompGames(context.Background(), testConfig(), Options{
		NumGames:       4,
		Threads:        2,
		First:          "random",
		Second:         "greedy",
		OutputFilename: out,
		Seeds:          GenerateSeeds(2),
		Alternate:      true,
	})
	is.NoErr(err)
	is.Equal(CVCCounter.Value(), int64(4))
	is.Equal(IsPlaying.Value(), int64(0))

	f, err := os.Open(out)
	is.NoErr(err)
	defer f.Close()
	sum, err := SummarizeLog(f)
	is.NoErr(err)
	is.Equal(sum.Games, 4)
	is.Equal(sum.Strategies(), []string{"greedy", "random"})
	is.Equal(sum.RedWins+sum.BlackWins+sum.Draws, 4)
}

func TestUnknownStrategyFailsBatch(t *testing.T) {
	is := is.New(t)
	out := filepath.Join(t.TempDir(), "games.csv")
	err := StartCompVCompGames(context.Background(), testConfig(), Options{
		NumGames:       2,
		Threads:        1,
		First:          "random",
		Second:         "nobody",
		OutputFilename: out,
	})
	is.True(err != nil)
	is.Equal(IsPlaying.Value(), int64(0))
}

func TestAnalyzeLogFile(t *testing.T) {
	is := is.New(t)
	var sb strings.Builder
	sb.WriteString(LogHeader)
	for i := 0; i < 1200; i++ {
		winner := "red"
		switch i % 4 {
		case 1:
			winner = "black"
		case 2:
			winner = "draw"
		}
		// expectimax is red in even games
		red, black := "expectimax", "greedy"
		if i%2 == 1 {
			red, black = black, red
		}
		fmt.Fprintf(&sb, "g%d,%s,%s,%s,%d,%s\n", i, red, black, winner, 40+i%50, "no-legal-moves")
	}
	path := filepath.Join(t.TempDir(), "games.csv")
	is.NoErr(os.WriteFile(path, []byte(sb.String()), 0o644))

	report, err := AnalyzeLogFile(path)
	is.NoErr(err)
	is.True(strings.Contains(report, "Games played: 1,200"))
	is.True(strings.Contains(report, "Red wins: 600 (50.000%)"))
	is.True(strings.Contains(report, "Ended by no-legal-moves: 1,200"))
	is.True(strings.Contains(report, "Game length histogram"))

	f, err := os.Open(path)
	is.NoErr(err)
	defer f.Close()
	sum, err := SummarizeLog(f)
	is.NoErr(err)
	// i%4==0: expectimax red wins; i%4==1: expectimax black wins;
	// i%4==2: draw; i%4==3: greedy red wins.
	rate, hw, ok := sum.Score("expectimax")
	is.True(ok)
	assert.InDelta(t, (600+150)/1200.0, rate, 1e-9)
	assert.True(t, hw > 0 && hw < 0.05)
}
