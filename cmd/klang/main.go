package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/reusee/dscope"
	"github.com/reusee/klang/cmds"
	"github.com/reusee/klang/klangconfigs"
	"github.com/reusee/klang/logs"
	"github.com/reusee/klang/modes"
	"golang.org/x/term"
)

type action int

const (
	actionNone action = iota
	actionRun
	actionDisasm
	actionREPL
)

var (
	todo   action
	target string
)

func init() {
	cmds.Define("run", cmds.Func(func(file string) {
		todo = actionRun
		target = file
	}).Desc("run a program"))
	cmds.Define("disasm", cmds.Func(func(file string) {
		todo = actionDisasm
		target = file
	}).Desc("print the compiled chunk of a program"))
	cmds.Define("repl", cmds.Func(func() {
		todo = actionREPL
	}).Desc("read and run statements interactively"))
	cmds.Fallback(func(arg string) error {
		if !strings.HasSuffix(arg, ".klang") {
			return fmt.Errorf("unknown command: %s", arg)
		}
		todo = actionRun
		target = arg
		return nil
	})
}

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	var err error
	scope.Call(func(
		level klangconfigs.LogLevel,
		report Report,
		runFile RunFile,
		disassembleFile DisassembleFile,
		repl REPL,
		newVM NewVM,
		logger logs.Logger,
	) {
		logs.SetDefaultLevel(slog.Level(level))

		if todo == actionNone {
			// programs piped in run, a terminal gets a prompt
			if term.IsTerminal(int(os.Stdin.Fd())) {
				todo = actionREPL
			} else {
				todo = actionRun
				target = "-"
			}
		}
		logger.Debug("start", "action", todo, "target", target)

		switch todo {

		case actionRun:
			err = withSource(target, func(name string, f *os.File) error {
				return runFile(ctx, name, f)
			})

		case actionDisasm:
			err = withSource(target, func(name string, f *os.File) error {
				return disassembleFile(name, f)
			})

		case actionREPL:
			vm, e := newVM("<repl>", strings.NewReader(""))
			if e != nil {
				err = e
				return
			}
			err = repl(vm)

		}

		report(err)
	})

	if err != nil {
		os.Exit(1)
	}
}

// withSource opens path, or stdin for "-".
func withSource(path string, fn func(name string, f *os.File) error) error {
	if path == "-" {
		return fn("<stdin>", os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return wrap(err)
	}
	defer f.Close()
	return fn(path, f)
}

func (a action) String() string {
	switch a {
	case actionRun:
		return "run"
	case actionDisasm:
		return "disasm"
	case actionREPL:
		return "repl"
	}
	return "none"
}
