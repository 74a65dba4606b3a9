package debugs

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/reusee/klang/klangvm"
	"github.com/reusee/klang/logs"
	"github.com/reusee/starlarkutil"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Tap opens a starlark prompt over the state of a stopped VM.
type Tap func(ctx context.Context, what string, vm *klangvm.VM)

func (Module) Tap(
	logger logs.Logger,
) Tap {
	return func(ctx context.Context, what string, vm *klangvm.VM) {
		mappings := tapGlobals(vm)
		logger.InfoContext(ctx, "tap: "+what,
			"globals", slices.Sorted(maps.Keys(mappings)),
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		thread := &starlark.Thread{
			Name: "repl",
		}
		repl.REPLOptions(&syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
		}, thread, mappings)
	}
}

func tapGlobals(vm *klangvm.VM) starlark.StringDict {
	mappings := make(starlark.StringDict)

	mappings["vars"] = toStarlarkValue(vm.Globals().Vars)
	mappings["stack"] = toStarlarkValue(vm.Globals().Stack)

	fns := starlark.NewDict(len(vm.Functions))
	for name, fn := range vm.Functions {
		fns.SetKey(starlark.String(name), toStarlarkValue(fn))
	}
	mappings["functions"] = fns

	mappings["natives"] = toStarlarkValue(slices.Sorted(maps.Keys(vm.Natives)))

	mappings["disasm"] = starlarkutil.MakeFunc("disasm", func(name string) string {
		chunk := vm.Main
		if name != "" {
			fn, ok := vm.Functions[name]
			if !ok {
				return "no function " + name
			}
			chunk = fn.Chunk
		}
		buf := new(strings.Builder)
		if err := chunk.Disassemble(buf); err != nil {
			return err.Error()
		}
		return buf.String()
	})

	return mappings
}
