package klangvm

import "fmt"

type NativeFunc struct {
	Name  string
	Arity int
	// a nil result pushes nothing
	Func func(vm *VM, args []Value) (Value, error)
}

func (n NativeFunc) Call(vm *VM, args []Value) (Value, error) {
	if n.Func == nil {
		return nil, fmt.Errorf("native function %s is missing", n.Name)
	}
	return n.Func(vm, args)
}
