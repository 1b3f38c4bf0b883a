package shell

import (
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("jieqi_shell")
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

// runLine runs "name <arg>" through the shell's dispatcher.
func runLine(L *lua.LState, name string) (*Response, error) {
	lv := L.OptString(1, "")
	cmd, err := extractFields(name + " " + lv)
	if err != nil {
		return nil, err
	}
	return getShell(L).dispatch(cmd)
}

// command exposes a shell command to Lua. The function takes the rest of
// the command line as one string and returns the command's output, or a
// string starting with "ERROR: ".
func command(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		r, err := runLine(L, name)
		if err != nil {
			log.Err(err).Str("command", name).Msg("error-executing-script-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			L.Push(lua.LString(""))
			return 1
		}
		L.Push(lua.LString(r.message))
		// return number of results pushed to stack.
		return 1
	}
}

// BestTable runs best with JSON output and returns it decoded into a Lua
// table, or nil and an error message.
func BestTable(L *lua.LState) int {
	lv := L.OptString(1, "")
	cmd, err := extractFields("best " + lv + " -json true")
	if err == nil {
		var r *Response
		r, err = getShell(L).best(cmd)
		if err == nil {
			var val lua.LValue
			val, err = luajson.Decode(L, []byte(r.message))
			if err == nil {
				L.Push(val)
				return 1
			}
		}
	}
	log.Err(err).Msg("error-executing-best-table")
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

var scriptCommands = []string{
	"new", "fen", "show", "moves", "play", "undo", "best", "score", "set", "analyze",
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("jieqi_shell", lsc)
	for _, name := range scriptCommands {
		L.SetGlobal("jieqi_"+name, L.NewFunction(command(name)))
	}
	L.SetGlobal("jieqi_best_table", L.NewFunction(BestTable))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
