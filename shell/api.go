package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/jieqi/automatic"
	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/config"
	"github.com/domino14/jieqi/equity"
	"github.com/domino14/jieqi/search"
	"github.com/domino14/jieqi/strategy"
)

const defaultAutoplayFile = "/tmp/jieqi_games.csv"

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Float64Default(key string, defaultF float64) (float64, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultF, nil
	}
	return strconv.ParseFloat(v[0], 64)
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

// positionFor is the position given with -fen, or the current one.
func (sc *ShellController) positionFor(cmd *shellcmd) (*board.Position, error) {
	if fen := cmd.options.String("fen"); fen != "" {
		return board.ParseFEN(fen)
	}
	return sc.pos, nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	var sb strings.Builder
	if len(cmd.args) == 0 {
		usage(&sb)
	} else {
		usageTopic(&sb, cmd.args[0])
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	sc.pos = board.NewStartingPosition()
	sc.undos = nil
	return sc.show(cmd)
}

func (sc *ShellController) setFEN(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.pos.FEN()), nil
	}
	pos, err := board.ParseFEN(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	sc.pos = pos
	sc.undos = nil
	return sc.show(cmd)
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	var sb strings.Builder
	sb.WriteString(sc.pos.String())
	fmt.Fprintf(&sb, "fen: %s\n", sc.pos.FEN())
	fmt.Fprintf(&sb, "to move: %s", sc.pos.Turn())
	if r := sc.pos.Result(); r != board.Ongoing {
		fmt.Fprintf(&sb, "\nresult: %s", r)
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	pos, err := sc.positionFor(cmd)
	if err != nil {
		return nil, err
	}
	moves := lo.Map(pos.LegalMoves(nil), func(m board.Move, _ int) string {
		return m.String()
	})
	slices.Sort(moves)
	return msg(fmt.Sprintf("Legal moves (%d):\n%s", len(moves), strings.Join(moves, " "))), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: play <move> [<move> ...]")
	}
	for _, s := range cmd.args {
		m, err := board.ParseMove(s)
		if err != nil {
			return nil, err
		}
		m = sc.pos.Normalize(m)
		if !sc.pos.IsLegal(m) {
			return nil, fmt.Errorf("%w: %s", board.ErrIllegalMove, s)
		}
		sc.undos = append(sc.undos, sc.pos.Apply(m))
	}
	return sc.show(cmd)
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if len(sc.undos) == 0 {
		return nil, errors.New("nothing to undo")
	}
	sc.pos.UndoMove(sc.undos[len(sc.undos)-1])
	sc.undos = sc.undos[:len(sc.undos)-1]
	return sc.show(cmd)
}

// newPlayer builds a player for the named policy, with shell options
// applied over it.
func (sc *ShellController) newPlayer(cmd *shellcmd) (*strategy.Player, error) {
	name := cmd.options.String("strategy")
	if name == "" {
		name = sc.config.GetString(config.ConfigStrategy)
	}
	pol, err := strategy.Lookup(sc.config, name)
	if err != nil {
		return nil, err
	}
	depth, err := cmd.options.IntDefault("depth", 0)
	if err != nil {
		return nil, err
	}
	if depth > 0 {
		pol.Depth = depth
	}
	secs, err := cmd.options.Float64Default("time", 0)
	if err != nil {
		return nil, err
	}
	if secs > 0 {
		pol.TimeLimit = secs
	}
	p, err := strategy.NewPlayer(pol, nil)
	if err != nil {
		return nil, err
	}
	p.SetMaxDepth(sc.config.GetInt(config.ConfigMaxDepth))
	p.SetTimeLimit(time.Duration(sc.config.GetFloat64(config.ConfigTimeLimit) * float64(time.Second)))
	p.SetTTFractionOfMemory(sc.config.GetFloat64(config.ConfigTTFractionOfMemory))
	return p, nil
}

type jsonMove struct {
	Move  string  `json:"move"`
	Score float64 `json:"score"`
}

type bestResponse struct {
	Moves     []jsonMove `json:"moves"`
	Total     int        `json:"total"`
	Nodes     uint64     `json:"nodes"`
	Depth     int        `json:"depth"`
	ElapsedMs int64      `json:"elapsed_ms"`
	NPS       float64    `json:"nps"`
	PV        []string   `json:"pv"`
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	pos, err := sc.positionFor(cmd)
	if err != nil {
		return nil, err
	}
	n, err := cmd.options.IntDefault("n", 1)
	if err != nil {
		return nil, err
	}
	p, err := sc.newPlayer(cmd)
	if err != nil {
		return nil, err
	}
	res, err := p.SelectMoves(context.Background(), pos, n)
	if err != nil {
		return nil, err
	}
	if cmd.options.Bool("json") {
		return bestJSON(res)
	}
	if res.Terminal {
		return msg("game over: " + res.Outcome.String()), nil
	}
	var sb strings.Builder
	for _, sm := range res.Moves {
		fmt.Fprintf(&sb, "%s %.1f\n", sm.Move, float64(sm.Score))
	}
	fmt.Fprintf(&sb, "nodes=%d depth=%d time=%dms nps=%.0f",
		res.Nodes, res.Depth, res.Elapsed.Milliseconds(), res.NPS())
	if len(res.PV) > 1 {
		fmt.Fprintf(&sb, "\npv: %s", strings.Join(lo.Map(res.PV, func(m board.Move, _ int) string {
			return m.String()
		}), " "))
	}
	return msg(sb.String()), nil
}

func bestJSON(res *search.Result) (*Response, error) {
	br := bestResponse{
		Moves: lo.Map(res.Moves, func(sm search.ScoredMove, _ int) jsonMove {
			return jsonMove{Move: sm.Move.String(), Score: float64(sm.Score)}
		}),
		Total:     len(res.Moves),
		Nodes:     res.Nodes,
		Depth:     res.Depth,
		ElapsedMs: res.Elapsed.Milliseconds(),
		NPS:       res.NPS(),
		PV: lo.Map(res.PV, func(m board.Move, _ int) string {
			return m.String()
		}),
	}
	if br.Moves == nil {
		br.Moves = []jsonMove{}
	}
	bts, err := json.Marshal(br)
	if err != nil {
		return nil, err
	}
	return msg(string(bts)), nil
}

type scoreResponse struct {
	Side  string        `json:"side"`
	Score float64       `json:"score"`
	Terms []equity.Term `json:"terms"`
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	pos, err := sc.positionFor(cmd)
	if err != nil {
		return nil, err
	}
	hv := equity.HiddenExpected
	if cmd.options.String("hidden") == "fixed" {
		hv = equity.HiddenFixed
	}
	ev := equity.NewEvaluator(hv)
	side := pos.Turn()
	sr := scoreResponse{
		Side:  side.String(),
		Score: float64(ev.Evaluate(pos, side)),
		Terms: ev.Breakdown(pos, side),
	}
	if cmd.options.Bool("json") {
		bts, err := json.Marshal(sr)
		if err != nil {
			return nil, err
		}
		return msg(string(bts)), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "evaluation (%s to move): %.1f", sr.Side, sr.Score)
	for _, t := range sr.Terms {
		fmt.Fprintf(&sb, "\n  %-10s %d", t.Name, t.Value)
	}
	return msg(sb.String()), nil
}

// autoplayRunning reports whether a batch is still going, collecting the
// result of one that finished.
func (sc *ShellController) autoplayRunning() bool {
	if sc.autoplayDone == nil {
		return false
	}
	select {
	case err := <-sc.autoplayDone:
		sc.finishAutoplay(err)
		return false
	default:
		return true
	}
}

func (sc *ShellController) waitAutoplay() {
	if sc.autoplayDone == nil {
		return
	}
	sc.finishAutoplay(<-sc.autoplayDone)
}

func (sc *ShellController) finishAutoplay(err error) {
	if err != nil {
		log.Err(err).Msg("autoplay-failed")
	} else {
		log.Info().Int64("games", automatic.CVCCounter.Value()).Msg("autoplay-done")
	}
	sc.autoplayCancel()
	sc.autoplayCancel = nil
	sc.autoplayDone = nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 && cmd.args[0] == "stop" {
		if !sc.autoplayRunning() {
			return nil, errors.New("no autoplay is running")
		}
		sc.autoplayCancel()
		sc.waitAutoplay()
		return msg("autoplay stopped"), nil
	}
	if sc.autoplayRunning() {
		return nil, automatic.ErrAlreadyPlaying
	}
	games, err := cmd.options.IntDefault("games", 100)
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", 0)
	if err != nil {
		return nil, err
	}
	def := sc.config.GetString(config.ConfigStrategy)
	opts := automatic.Options{
		NumGames:       games,
		Threads:        threads,
		First:          lo.CoalesceOrEmpty(cmd.options.String("red"), def),
		Second:         lo.CoalesceOrEmpty(cmd.options.String("black"), def),
		OutputFilename: lo.CoalesceOrEmpty(cmd.options.String("file"), defaultAutoplayFile),
		Alternate:      cmd.options.String("alternate") != "false",
	}
	for _, name := range []string{opts.First, opts.Second} {
		if _, err := strategy.Lookup(sc.config, name); err != nil {
			return nil, err
		}
	}
	if seedFile := cmd.options.String("seeds"); seedFile != "" {
		opts.Seeds, err = automatic.LoadSeeds(seedFile)
		if err != nil {
			return nil, err
		}
	}
	if secs := cmd.options.String("time"); secs != "" {
		if _, err := strconv.ParseFloat(secs, 64); err != nil {
			return nil, err
		}
		sc.config.Set(config.ConfigTimeLimit, secs)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sc.autoplayCancel = cancel
	sc.autoplayDone = make(chan error, 1)
	go func(done chan<- error) {
		done <- automatic.StartCompVCompGames(ctx, sc.config, opts)
	}(sc.autoplayDone)

	return msg(fmt.Sprintf("playing %d games, %s vs %s; writing to %s",
		opts.NumGames, opts.First, opts.Second, opts.OutputFilename)), nil
}

func (sc *ShellController) seeds(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: seeds <count> <file>")
	}
	n, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, errors.New("seed count must be positive")
	}
	if err := automatic.SaveSeeds(automatic.GenerateSeeds(n), cmd.args[1]); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("wrote %d seeds to %s", n, cmd.args[1])), nil
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: analyze <games.csv>")
	}
	report, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(report), nil
}

func (sc *ShellController) strategies(cmd *shellcmd) (*Response, error) {
	all, err := strategy.Policies(sc.config)
	if err != nil {
		return nil, err
	}
	names, err := strategy.Names(sc.config)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, name := range names {
		p := all[name]
		fmt.Fprintf(&sb, "%-16s %-10s %s\n", name, p.Kind, p.Description)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

// settable are the config keys the set command may change.
var settable = []string{
	config.ConfigStrategy,
	config.ConfigStrategyFile,
	config.ConfigTimeLimit,
	config.ConfigMaxDepth,
	config.ConfigTTFractionOfMemory,
	config.ConfigAutoplayThreads,
	config.ConfigAutoplayMaxPlies,
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		var sb strings.Builder
		for _, k := range settable {
			fmt.Fprintf(&sb, "%s: %v\n", k, sc.config.Get(k))
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	}
	key := cmd.args[0]
	if !slices.Contains(settable, key) {
		return nil, fmt.Errorf("cannot set %s; settable: %s", key, strings.Join(settable, ", "))
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	value := cmd.args[1]
	switch key {
	case config.ConfigTimeLimit, config.ConfigTTFractionOfMemory:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		sc.config.Set(key, f)
	case config.ConfigMaxDepth, config.ConfigAutoplayThreads, config.ConfigAutoplayMaxPlies:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		sc.config.Set(key, i)
	case config.ConfigStrategy:
		if _, err := strategy.Lookup(sc.config, value); err != nil {
			return nil, err
		}
		sc.config.Set(key, value)
	case config.ConfigStrategyFile:
		old := sc.config.GetString(key)
		sc.config.Set(key, value)
		if _, err := strategy.Policies(sc.config); err != nil {
			sc.config.Set(key, old)
			return nil, err
		}
	}
	return msg("set " + key + " to " + value), nil
}
