package main

import (
	"context"
	"io"

	"github.com/reusee/klang/cmds"
	"github.com/reusee/klang/debugs"
	"github.com/reusee/klang/klangconfigs"
	"github.com/reusee/klang/logs"
)

var tapFlag = cmds.Switch("-tap", "open a starlark prompt over the VM after running")

// RunFile compiles and runs one program to completion.
type RunFile func(ctx context.Context, name string, src io.Reader) error

func (Module) RunFile(
	logger logs.Logger,
	newSpan logs.NewSpan,
	newVM NewVM,
	disasm klangconfigs.Disassemble,
	stderr Stderr,
	tap debugs.Tap,
) RunFile {
	return func(ctx context.Context, name string, src io.Reader) (err error) {
		ctx, _ = newSpan(ctx, "", "run "+name)
		defer func() {
			if err != nil {
				err = logs.WrapSpan(ctx, err)
			}
		}()

		vm, err := newVM(name, src)
		if err != nil {
			return err
		}

		if disasm {
			if err := vm.Main.Disassemble(stderr); err != nil {
				return wrap(err)
			}
		}

		if *tapFlag {
			defer tap(ctx, name, vm)
		}

		steps := 0
		for interrupt, err := range vm.Run {
			if err != nil {
				return err
			}
			steps++
			logger.DebugContext(ctx, "trace",
				"at", interrupt.String(),
				"scopes", interrupt.Scopes,
				"frames", interrupt.Frames,
				"stack", len(interrupt.Stack),
			)
		}
		if vm.Trace {
			logger.DebugContext(ctx, "done", "steps", steps)
		}

		return nil
	}
}
