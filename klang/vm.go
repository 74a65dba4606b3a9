package klang

import (
	"io"

	"github.com/reusee/klang/klangvm"
)

func NewVM(name string, source io.Reader) (*klangvm.VM, error) {
	chunk, err := Compile(name, source)
	if err != nil {
		return nil, err
	}
	vm := klangvm.NewVM(name, chunk)
	for _, fn := range NativeFuncs {
		vm.DefineNative(fn)
	}
	return vm, nil
}

// Sandbox removes the natives that touch files or stdin.
func Sandbox(vm *klangvm.VM) {
	for _, name := range hostNatives {
		delete(vm.Natives, name)
	}
}

var hostNatives = []string{
	"readFile",
	"writeFile",
	"read",
}

// Exec compiles src as a separate chunk and runs it on vm, keeping its globals and functions.
func Exec(vm *klangvm.VM, src string) error {
	chunk, err := CompileString(vm.File, src)
	if err != nil {
		return err
	}
	vm.Load(chunk)
	return vm.Exec()
}
