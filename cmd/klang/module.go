package main

import (
	"io"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/klang/debugs"
	"github.com/reusee/klang/klangconfigs"
	"github.com/reusee/klang/logs"
)

type Module struct {
	dscope.Module
	Logs    logs.Module
	Configs klangconfigs.Module
	Debugs  debugs.Module
}

// Stdout receives program output.
type Stdout io.Writer

func (Module) Stdout() Stdout {
	return os.Stdout
}

// Stderr receives reported errors and disassembly.
type Stderr io.Writer

func (Module) Stderr() Stderr {
	return os.Stderr
}
