package klang

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/reusee/klang/klangvm"
)

var NativeFuncs = []klangvm.NativeFunc{
	math1("sin", math.Sin),
	math1("cos", math.Cos),
	math1("tan", math.Tan),
	math1("sqrt", math.Sqrt),
	math1("ln", math.Log),
	math1("log", math.Log10),
	math1("round", math.Round),
	math1("abs", math.Abs),
	math2("pow", math.Pow),
	math2("min", math.Min),
	math2("max", math.Max),

	{
		Name: "pi",
		Func: func(*klangvm.VM, []klangvm.Value) (klangvm.Value, error) {
			return klangvm.Number(math.Pi), nil
		},
	},

	{
		Name: "random",
		Func: func(*klangvm.VM, []klangvm.Value) (klangvm.Value, error) {
			return klangvm.Number(rand.Float64()), nil
		},
	},

	{
		Name:  "range",
		Arity: 2,
		Func: func(_ *klangvm.VM, args []klangvm.Value) (klangvm.Value, error) {
			lo, err := number(args[0])
			if err != nil {
				return nil, err
			}
			hi, err := number(args[1])
			if err != nil {
				return nil, err
			}
			if hi <= lo {
				return nil, fmt.Errorf("empty range %v..%v", lo, hi)
			}
			return klangvm.Number(lo + rand.Float64()*(hi-lo)), nil
		},
	},

	{
		Name: "randbool",
		Func: func(*klangvm.VM, []klangvm.Value) (klangvm.Value, error) {
			return klangvm.Bool(rand.IntN(2) == 1), nil
		},
	},

	{
		Name: "time",
		Func: func(*klangvm.VM, []klangvm.Value) (klangvm.Value, error) {
			return klangvm.Number(float64(time.Now().UnixNano()) / 1e9), nil
		},
	},

	{
		Name:  "sleep",
		Arity: 1,
		Func: func(_ *klangvm.VM, args []klangvm.Value) (klangvm.Value, error) {
			secs, err := number(args[0])
			if err != nil {
				return nil, err
			}
			time.Sleep(time.Duration(secs * float64(time.Second)))
			return nil, nil
		},
	},

	{
		Name:  "readFile",
		Arity: 1,
		Func: func(_ *klangvm.VM, args []klangvm.Value) (klangvm.Value, error) {
			path, ok := args[0].(klangvm.Str)
			if !ok {
				return nil, fmt.Errorf("path must be string, got %s", args[0].Kind())
			}
			content, err := os.ReadFile(string(path))
			if err != nil {
				return nil, err
			}
			return klangvm.Str(content), nil
		},
	},

	{
		Name:  "writeFile",
		Arity: 2,
		Func: func(_ *klangvm.VM, args []klangvm.Value) (klangvm.Value, error) {
			path, ok := args[0].(klangvm.Str)
			if !ok {
				return nil, fmt.Errorf("path must be string, got %s", args[0].Kind())
			}
			if err := os.WriteFile(string(path), []byte(klangvm.Format(args[1])), 0644); err != nil {
				return nil, err
			}
			return nil, nil
		},
	},

	{
		Name:  "get",
		Arity: 2,
		Func: func(_ *klangvm.VM, args []klangvm.Value) (klangvm.Value, error) {
			list, ok := args[0].(klangvm.List)
			if !ok {
				return nil, fmt.Errorf("can only index list, got %s", args[0].Kind())
			}
			f, err := number(args[1])
			if err != nil {
				return nil, err
			}
			idx := int(f)
			if float64(idx) != f || idx < 0 || idx >= len(list) {
				return nil, fmt.Errorf("index %v out of range for list of length %d", f, len(list))
			}
			return list[idx], nil
		},
	},

	{
		Name:  "len",
		Arity: 1,
		Func: func(_ *klangvm.VM, args []klangvm.Value) (klangvm.Value, error) {
			switch v := args[0].(type) {
			case klangvm.List:
				return klangvm.Number(len(v)), nil
			case klangvm.Str:
				return klangvm.Number(len([]rune(string(v)))), nil
			}
			return nil, fmt.Errorf("no length for %s", args[0].Kind())
		},
	},

	{
		Name: "read",
		Func: func(vm *klangvm.VM, _ []klangvm.Value) (klangvm.Value, error) {
			line, err := vm.ReadLine()
			if err != nil {
				return nil, err
			}
			return klangvm.Str(line), nil
		},
	},
}

func number(v klangvm.Value) (float64, error) {
	n, ok := v.(klangvm.Number)
	if !ok {
		return 0, fmt.Errorf("expecting number, got %s", v.Kind())
	}
	return float64(n), nil
}

func math1(name string, fn func(float64) float64) klangvm.NativeFunc {
	return klangvm.NativeFunc{
		Name:  name,
		Arity: 1,
		Func: func(_ *klangvm.VM, args []klangvm.Value) (klangvm.Value, error) {
			x, err := number(args[0])
			if err != nil {
				return nil, err
			}
			return klangvm.Number(fn(x)), nil
		},
	}
}

func math2(name string, fn func(float64, float64) float64) klangvm.NativeFunc {
	return klangvm.NativeFunc{
		Name:  name,
		Arity: 2,
		Func: func(_ *klangvm.VM, args []klangvm.Value) (klangvm.Value, error) {
			x, err := number(args[0])
			if err != nil {
				return nil, err
			}
			y, err := number(args[1])
			if err != nil {
				return nil, err
			}
			return klangvm.Number(fn(x, y)), nil
		},
	}
}
