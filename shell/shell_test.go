package shell

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/jieqi/automatic"
	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/config"
)

const forcedCaptureFEN = "4k4/9/9/9/4c4/4R4/9/9/9/3K5 -:- r r"

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func newTestController() (*ShellController, *bytes.Buffer) {
	var buf bytes.Buffer
	sc := NewShellController(config.DefaultConfig(), "", "test")
	sc.out = &buf
	return sc, &buf
}

func run(t *testing.T, sc *ShellController, line string) (*Response, error) {
	t.Helper()
	cmd, err := extractFields(line)
	if err != nil {
		t.Fatal(err)
	}
	return sc.dispatch(cmd)
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -file /path/to/log.txt",
			&shellcmd{"autoplay", nil, CmdOptions{"file": {"/path/to/log.txt"}}},
			nil},
		{"autoplay stop",
			&shellcmd{"autoplay", []string{"stop"}, CmdOptions{}},
			nil},
		{"autoplay random greedy -file foo.txt ",
			&shellcmd{"autoplay",
				[]string{"random", "greedy"},
				CmdOptions{"file": {"foo.txt"}}},
			nil,
		},
		{"autoplay random greedy -file",
			nil, errWrongOptionSyntax},
		{"fen 4k4/9/9/9/9/9/9/9/9/3K5 -:- r r",
			&shellcmd{"fen", []string{"4k4/9/9/9/9/9/9/9/9/3K5", "-:-", "r", "r"}, CmdOptions{}},
			nil},
		{`best -fen "4k4/9/9/9/9/9/9/9/9/3K5 -:- r r" -n 3`,
			&shellcmd{"best", nil, CmdOptions{
				"fen": {"4k4/9/9/9/9/9/9/9/9/3K5 -:- r r"},
				"n":   {"3"},
			}},
			nil},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func TestCmdOptions(t *testing.T) {
	is := is.New(t)
	opts := CmdOptions{"n": {"3"}, "json": {"True"}, "time": {"0.5"}}
	n, err := opts.Int("n")
	is.NoErr(err)
	is.Equal(n, 3)
	_, err = opts.Int("depth")
	is.True(err != nil)
	d, err := opts.IntDefault("depth", 9)
	is.NoErr(err)
	is.Equal(d, 9)
	f, err := opts.Float64Default("time", 1)
	is.NoErr(err)
	is.Equal(f, 0.5)
	is.True(opts.Bool("json"))
	is.True(!opts.Bool("missing"))
	is.Equal(opts.String("missing"), "")
}

func TestBestJSON(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	r, err := run(t, sc, `best -fen "`+forcedCaptureFEN+`" -strategy greedy -json true`)
	is.NoErr(err)
	assert.Contains(t, r.message, `"moves":[{"move":"e4e5"`)
	assert.Contains(t, r.message, `"total":1`)
	// the current position is untouched
	is.Equal(sc.pos.FEN(), board.StartingFEN)
}

func TestBestText(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	_, err := run(t, sc, "fen "+forcedCaptureFEN)
	is.NoErr(err)
	r, err := run(t, sc, "best -strategy pvs -depth 3 -time 5 -n 2")
	is.NoErr(err)
	lines := strings.Split(r.message, "\n")
	is.True(len(lines) >= 3)
	is.True(strings.HasPrefix(lines[0], "e4e5 "))
	is.True(strings.HasPrefix(lines[2], "nodes="))
	is.Equal(sc.pos.FEN(), forcedCaptureFEN)
}

func TestBestUnknownStrategy(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	_, err := run(t, sc, "best -strategy nobody")
	is.True(err != nil)
}

func TestScore(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	r, err := run(t, sc, "score -json true")
	is.NoErr(err)
	assert.Contains(t, r.message, `"side":"red"`)
	assert.Contains(t, r.message, `"terms":[{"name":`)

	r, err = run(t, sc, "score -hidden fixed")
	is.NoErr(err)
	is.True(strings.HasPrefix(r.message, "evaluation (red to move):"))
}

func TestPlayUndo(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	_, err := run(t, sc, "play +b2b9 h9g7")
	is.NoErr(err)
	is.Equal(len(sc.undos), 2)
	is.Equal(sc.pos.Turn(), board.Red)
	is.Equal(sc.pos.Hidden(board.Black), 13)

	_, err = run(t, sc, "undo")
	is.NoErr(err)
	_, err = run(t, sc, "undo")
	is.NoErr(err)
	is.Equal(sc.pos.FEN(), board.StartingFEN)

	_, err = run(t, sc, "undo")
	is.True(err != nil)
}

func TestPlayIllegal(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	_, err := run(t, sc, "play a0a5")
	is.True(errors.Is(err, board.ErrIllegalMove))
	is.Equal(len(sc.undos), 0)

	_, err = run(t, sc, "play zz")
	is.True(err != nil)

	_, err = run(t, sc, "play +a0a1=R +a6a5 +i0i1=R +i6i5")
	is.NoErr(err)
	_, err = run(t, sc, "play +b0c2=R")
	is.True(errors.Is(err, board.ErrIllegalMove))
	is.Equal(len(sc.undos), 4)
}

func TestFEN(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	r, err := run(t, sc, "fen")
	is.NoErr(err)
	is.Equal(r.message, board.StartingFEN)

	_, err = run(t, sc, "fen nonsense")
	is.True(errors.Is(err, board.ErrInvalidPosition))
	is.Equal(sc.pos.FEN(), board.StartingFEN)

	r, err = run(t, sc, "moves -fen \""+forcedCaptureFEN+"\"")
	is.NoErr(err)
	assert.Contains(t, r.message, "e4e5")
}

func TestStandardModeSwitch(t *testing.T) {
	is := is.New(t)
	sc, buf := newTestController()
	sig := make(chan os.Signal, 1)

	is.True(sc.standardModeSwitch("show", sig))
	assert.Contains(t, buf.String(), "a b c d e f g h i")

	buf.Reset()
	is.True(sc.standardModeSwitch("frobnicate", sig))
	assert.Contains(t, buf.String(), "Error: unknown command")

	is.True(!sc.standardModeSwitch("exit", sig))
	is.Equal(len(sig), 1)
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	r, err := run(t, sc, "help")
	is.NoErr(err)
	assert.Contains(t, r.message, "autoplay stop")
	r, err = run(t, sc, "help best")
	is.NoErr(err)
	assert.Contains(t, r.message, "-strategy")
	r, err = run(t, sc, "help nothing")
	is.NoErr(err)
	assert.Contains(t, r.message, "There is no help text")
}

func TestSetAndStrategies(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	_, err := run(t, sc, "set max-depth 7")
	is.NoErr(err)
	is.Equal(sc.config.GetInt(config.ConfigMaxDepth), 7)

	_, err = run(t, sc, "set strategy greedy")
	is.NoErr(err)
	is.Equal(sc.config.GetString(config.ConfigStrategy), "greedy")

	_, err = run(t, sc, "set strategy nobody")
	is.True(err != nil)
	_, err = run(t, sc, "set debug true")
	is.True(err != nil)

	r, err := run(t, sc, "strategies")
	is.NoErr(err)
	assert.Contains(t, r.message, "expectimax-fast")
}

func TestAutoplay(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	sc.config.Set(config.ConfigAutoplayMaxPlies, 40)
	dir := t.TempDir()
	out := filepath.Join(dir, "games.csv")
	seedFile := filepath.Join(dir, "seeds.txt")
	_, err := run(t, sc, "seeds 2 "+seedFile)
	is.NoErr(err)
	_, err = run(t, sc, "autoplay -red random -black random -games 2 -threads 1 -seeds "+seedFile+" -file "+out)
	is.NoErr(err)
	sc.waitAutoplay()
	is.True(sc.autoplayDone == nil)
	is.Equal(automatic.CVCCounter.Value(), int64(2))

	r, err := run(t, sc, "analyze "+out)
	is.NoErr(err)
	assert.Contains(t, r.message, "Games played: 2")

	_, err = run(t, sc, "autoplay stop")
	is.True(err != nil)
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := newTestController()
	script := `
local json = require("json")
jieqi_fen("` + forcedCaptureFEN + `")
local res = jieqi_best_table("-strategy greedy")
assert(res.moves[1].move == "e4e5", "best move")
local t = json.decode(jieqi_best("-strategy greedy -json true"))
assert(t.total == 1, "total")
local out = jieqi_play("e4e5")
assert(string.find(out, "ERROR") == nil, out)
`
	path := filepath.Join(t.TempDir(), "test.lua")
	is.NoErr(os.WriteFile(path, []byte(script), 0o644))
	_, err := run(t, sc, "script "+path)
	is.NoErr(err)
	is.Equal(sc.pos.Turn(), board.Black)
	is.Equal(len(sc.undos), 1)

	bad := filepath.Join(t.TempDir(), "bad.lua")
	is.NoErr(os.WriteFile(bad, []byte(`assert(jieqi_play("a0a5") == "ok")`), 0o644))
	_, err = run(t, sc, "script "+bad)
	is.True(err != nil)
}

func TestAutocomplete(t *testing.T) {
	sc, _ := newTestController()
	c := NewShellCompleter(sc)

	matches, n := c.Do([]rune("be"), 2)
	assert.Equal(t, 2, n)
	assert.Contains(t, matches, []rune("st"))

	line := []rune("play +b2")
	matches, n = c.Do(line, len(line))
	assert.Equal(t, 3, n)
	assert.Contains(t, matches, []rune("b9"))

	line = []rune("best -strategy exp")
	matches, _ = c.Do(line, len(line))
	assert.Contains(t, matches, []rune("ectimax"))
	assert.Contains(t, matches, []rune("ectimax-fast"))
}
