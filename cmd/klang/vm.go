package main

import (
	"io"
	"os"

	"github.com/reusee/klang/klang"
	"github.com/reusee/klang/klangconfigs"
	"github.com/reusee/klang/klangvm"
	"github.com/reusee/klang/logs"
)

// NewVM compiles a program and prepares a VM for it, running preloads first.
type NewVM func(name string, src io.Reader) (*klangvm.VM, error)

func (Module) NewVM(
	logger logs.Logger,
	stdout Stdout,
	sandbox klangconfigs.Sandbox,
	trace klangconfigs.Trace,
	preload klangconfigs.Preload,
) NewVM {
	return func(name string, src io.Reader) (*klangvm.VM, error) {
		vm, err := klang.NewVM(name, src)
		if err != nil {
			return nil, err
		}
		vm.Stdout = stdout
		if sandbox {
			klang.Sandbox(vm)
		}

		main := vm.Main
		for _, path := range preload {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, wrap(err)
			}
			logger.Debug("preload", "path", path)
			vm.File = path
			if err := klang.Exec(vm, string(content)); err != nil {
				return nil, err
			}
		}
		vm.File = name
		vm.Load(main)

		vm.Trace = bool(trace)
		return vm, nil
	}
}
