package shell

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/domino14/tetrad/game"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("tetrad_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

type handler func(sc *ShellController, cmd *shellcmd) (*Response, error)

// scriptCommands are the commands a script can call as tetrad_<name>.
var scriptCommands = map[string]handler{
	"new":       (*ShellController).newGame,
	"show":      (*ShellController).show,
	"queue":     (*ShellController).queue,
	"piece":     (*ShellController).piece,
	"load":      (*ShellController).load,
	"best":      (*ShellController).best,
	"eval":      (*ShellController).eval,
	"play":      (*ShellController).play,
	"aiplay":    (*ShellController).aiplay,
	"botplay":   (*ShellController).botplay,
	"rotate":    (*ShellController).rotate,
	"down":      (*ShellController).tick,
	"drop":      (*ShellController).drop,
	"autoplay":  (*ShellController).autoplay,
	"help":      (*ShellController).help,
	"analyze":   (*ShellController).analyze,
	"set":       (*ShellController).set,
	"setconfig": (*ShellController).setConfig,
	"left": func(sc *ShellController, cmd *shellcmd) (*Response, error) {
		return sc.shift(-1)
	},
	"right": func(sc *ShellController, cmd *shellcmd) (*Response, error) {
		return sc.shift(1)
	},
}

// luaCommand wraps a shell command as a lua function taking the rest of the
// command line as its one argument.
func luaCommand(name string, h handler) lua.LGFunction {
	return func(L *lua.LState) int {
		lv := L.OptString(1, "")
		sc := getShell(L)
		cmd, err := extractFields(strings.TrimSpace(name + " " + lv))
		if err == nil {
			var r *Response
			r, err = h(sc, cmd)
			if err == nil {
				message := ""
				if r != nil {
					message = r.message
				}
				L.Push(lua.LString(message))
				// return number of results pushed to stack.
				return 1
			}
		}
		log.Err(err).Str("command", name).Msg("error-executing-script-command")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
}

// Score pushes the total points, the total lines and whether the game is
// still going.
func Score(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LNumber(sc.game.TotalPoints()))
	L.Push(lua.LNumber(sc.game.TotalLines()))
	L.Push(lua.LBool(sc.game.Playing() == game.PlayStatePlaying))
	return 3
}

// Grid pushes the playfield as a table of row strings, top row first.
func Grid(L *lua.LState) int {
	sc := getShell(L)
	tbl := L.NewTable()
	for _, row := range sc.game.Grid().Strings() {
		tbl.Append(lua.LString(row))
	}
	L.Push(tbl)
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("tetrad_shell", lsc)
	for name, h := range scriptCommands {
		L.SetGlobal("tetrad_"+name, L.NewFunction(luaCommand(name, h)))
	}
	L.SetGlobal("tetrad_score", L.NewFunction(Score))
	L.SetGlobal("tetrad_grid", L.NewFunction(Grid))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
