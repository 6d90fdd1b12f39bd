package shell

import (
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/tetrad/config"
	"github.com/domino14/tetrad/tetromino"
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
	Options []string // Available options for this command (e.g., "-lookahead")
	Args    []string // Possible argument values (for non-option arguments)
}

var settingKeys = []string{
	config.ConfigDebug, config.ConfigBoardRows, config.ConfigBoardCols,
	config.ConfigHiddenRows, config.ConfigLookahead, config.ConfigMaxLookahead,
	config.ConfigSearchPolicy, config.ConfigSearchThreads,
	config.ConfigSearchLeafCache, config.ConfigNatsURL, config.ConfigBotChannel,
	config.ConfigBotTimeout, config.ConfigBotMaxRows, config.ConfigBotMaxCols,
	config.ConfigAutoplayMaxPieces, config.ConfigAutoplayBoards,
	config.ConfigShellHistoryFile,
}

var commandMetadata = map[string]CommandMetadata{
	"new":       {Options: []string{"-seed"}},
	"best":      {Options: []string{"-lookahead", "-policy"}},
	"eval":      {Options: []string{"-lookahead", "-policy", "-top", "-out"}},
	"aiplay":    {Options: []string{"-lookahead"}},
	"botplay":   {Options: []string{"-lookahead", "-policy"}},
	"autoplay":  {Options: []string{"-threads", "-out", "-seeds"}, Args: []string{"stop"}},
	"piece":     {Args: shapeNames()},
	"set":       {Args: settingKeys},
	"setconfig": {Args: settingKeys},
	"help":      {Args: []string{"best", "eval", "autoplay", "play", "set", "script"}},
}

// Common command names for command completion
var commandNames = []string{
	"help", "new", "show", "queue", "piece", "load", "left", "right",
	"rotate", "down", "drop", "play", "aiplay", "botplay", "best", "eval",
	"autoplay", "analyze", "set", "setconfig", "script", "exit",
}

var policyValues = []string{"min-first", "max-first", "self"}

func shapeNames() []string {
	names := make([]string, tetromino.NumShapes)
	for i := range names {
		names[i] = tetromino.Shape(i).String()
	}
	sort.Strings(names)
	return names
}

// Do implements the readline.AutoComplete interface
// It provides context-aware autocomplete based on what's been typed
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Get the text up to the cursor position
	text := string(line[:pos])

	// Parse the line using shellquote to handle quoted strings properly
	fields, err := shellquote.Split(text)
	if err != nil {
		// If we can't parse, fall back to simple space splitting
		fields = strings.Fields(text)
	}

	// Check if we're in the middle of typing a word or just after a space
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

		// Get the last complete field to check context
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch {
		case lastCompleteField == "-policy":
			completions = policyValues
		case (cmdName == "set" || cmdName == "setconfig") &&
			lastCompleteField == config.ConfigSearchPolicy:
			completions = policyValues
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

	// Filter completions based on prefix
	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			// Return only the part that needs to be added
			suffix := completion[len(prefix):]
			matches = append(matches, []rune(suffix))
		}
	}

	return matches, len(prefix)
}
