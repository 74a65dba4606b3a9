package main

import (
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/reusee/klang/klang"
	"github.com/reusee/klang/klangvm"
)

// REPL reads statements line by line, running each on one VM.
type REPL func(vm *klangvm.VM) error

func (Module) REPL(
	report Report,
) REPL {
	return func(vm *klangvm.VM) error {
		var historyFile string
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, ".klang_history")
		}
		rl, err := readline.NewEx(&readline.Config{
			Prompt:      "> ",
			HistoryFile: historyFile,
		})
		if err != nil {
			return wrap(err)
		}
		defer rl.Close()
		for {
			line, err := rl.Readline()
			if err != nil { // Ctrl-C or Ctrl-D
				break
			}
			if line == "" {
				continue
			}
			report(klang.Exec(vm, line))
		}
		return nil
	}
}
