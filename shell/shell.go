package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/config"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errUnknownCommand    = errors.New("unknown command")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

// ShellController runs commands against a current position. Search state
// lives in the commands that need it; the controller only keeps the
// position, its undo stack and any running batch of games.
type ShellController struct {
	l        *readline.Instance
	out      io.Writer
	config   *config.Config
	execPath string
	version  string

	pos   *board.Position
	undos []board.Undo

	autoplayCancel context.CancelFunc
	autoplayDone   chan error
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController makes a controller on the opening position. The
// readline instance is only created when Loop runs.
func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	return &ShellController{
		out:      os.Stdout,
		config:   cfg,
		execPath: execPath,
		version:  gitVersion,
		pos:      board.NewStartingPosition(),
	}
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// isOption tells "-time" from arguments that merely start with a dash,
// like the "-:-" captured field of a FEN.
func isOption(f string) bool {
	if len(f) < 2 || f[0] != '-' {
		return false
	}
	c := f[1]
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		if isOption(fields[idx]) {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := fields[idx][1:]
			options[key] = append(options[key], fields[idx+1])
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// dispatch runs one parsed command.
func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "fen":
		return sc.setFEN(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "moves":
		return sc.moves(cmd)
	case "play":
		return sc.play(cmd)
	case "undo":
		return sc.undo(cmd)
	case "best":
		return sc.best(cmd)
	case "score":
		return sc.score(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "seeds":
		return sc.seeds(cmd)
	case "analyze":
		return sc.analyze(cmd)
	case "strategies":
		return sc.strategies(cmd)
	case "set":
		return sc.set(cmd)
	case "script":
		return sc.script(cmd)
	}
	return nil, fmt.Errorf("%w: %s", errUnknownCommand, cmd.cmd)
}

// standardModeSwitch handles one line; it returns false when the shell
// should exit.
func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) bool {
	cmd, err := extractFields(line)
	if errors.Is(err, errNoData) {
		return true
	}
	if err != nil {
		sc.showError(err)
		return true
	}
	if cmd.cmd == "exit" {
		sig <- syscall.SIGINT
		return false
	}
	resp, err := sc.dispatch(cmd)
	if err != nil {
		sc.showError(err)
		return true
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return true
}

// Execute runs a single command line, as given on the command line of the
// binary.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	sc.standardModeSwitch(line, sig)
	// a one-shot autoplay should finish before the process exits
	sc.waitAutoplay()
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mjieqi>\033[0m ",
		HistoryFile:     "/tmp/jieqi_readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		log.Error().Err(err).Msg("could not start readline")
		sig <- syscall.SIGINT
		return
	}
	sc.l = l
	sc.out = l.Stdout()
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if !sc.standardModeSwitch(line, sig) {
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops anything still running in the background.
func (sc *ShellController) Cleanup() {
	if sc.autoplayCancel != nil {
		sc.autoplayCancel()
	}
	sc.waitAutoplay()
}
