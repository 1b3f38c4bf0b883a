package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/domino14/jieqi/board"
	"github.com/domino14/jieqi/config"
	"github.com/domino14/jieqi/strategy"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"best": {
		Options: []string{"-fen", "-strategy", "-time", "-depth", "-n", "-json"},
	},
	"score": {
		Options: []string{"-fen", "-hidden", "-json"},
	},
	"moves": {
		Options: []string{"-fen"},
	},
	"autoplay": {
		Options: []string{"-red", "-black", "-games", "-threads", "-file", "-seeds", "-time", "-alternate"},
		Args:    []string{"stop"},
	},
	"set": {
		Args: settable,
	},
	"help": {
		Args: []string{"best", "score", "autoplay", "script", "fen", "play", "set"},
	},
}

var commandNames = []string{
	"help", "new", "fen", "show", "s", "moves", "play", "undo", "best",
	"score", "autoplay", "seeds", "analyze", "strategies", "set", "script", "exit",
}

var boolValues = []string{"true", "false"}

// strategyNames falls back to the built-in presets if the strategy file
// can't be read.
func (c *ShellCompleter) strategyNames() []string {
	names, err := strategy.Names(c.sc.config)
	if err != nil {
		return lo.Keys(strategy.Presets())
	}
	return names
}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if isOption(lastCompleteField) {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "json", "alternate":
				completions = boolValues
			case "strategy", "red", "black":
				completions = c.strategyNames()
			case "hidden":
				completions = []string{"expected", "fixed"}
			}
		}

		// play offers the legal moves of the current position
		if cmdName == "play" && completions == nil {
			completions = lo.Map(c.sc.pos.LegalMoves(nil), func(m board.Move, _ int) string {
				return m.String()
			})
		}
		settingValue := len(fields) == 2 && endsWithSpace || len(fields) == 3 && !endsWithSpace
		if cmdName == "set" && completions == nil && settingValue && fields[1] == config.ConfigStrategy {
			completions = c.strategyNames()
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			// Return only the part that needs to be added
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
