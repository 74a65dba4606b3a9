package debugs

import (
	"fmt"
	"math"

	"github.com/reusee/klang/klangvm"
	"go.starlark.net/starlark"
)

func toStarlarkValue(v any) starlark.Value {
	switch v := v.(type) {

	case nil:
		return starlark.None
	case klangvm.NoneType:
		return starlark.None

	case klangvm.Bool:
		return starlark.Bool(v)
	case bool:
		return starlark.Bool(v)

	case klangvm.Str:
		return starlark.String(v)
	case string:
		return starlark.String(v)

	case klangvm.Number:
		// integral numbers read better as ints at the prompt
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return starlark.MakeInt64(int64(f))
		}
		return starlark.Float(f)
	case int:
		return starlark.MakeInt(v)
	case float64:
		return starlark.Float(v)

	case klangvm.List:
		elems := make([]starlark.Value, len(v))
		for i, e := range v {
			elems[i] = toStarlarkValue(e)
		}
		return starlark.NewList(elems)
	case []klangvm.Value:
		return toStarlarkValue(klangvm.List(v))
	case []string:
		elems := make([]starlark.Value, len(v))
		for i, e := range v {
			elems[i] = starlark.String(e)
		}
		return starlark.NewList(elems)

	case map[string]klangvm.Value:
		d := starlark.NewDict(len(v))
		for k, val := range v {
			d.SetKey(starlark.String(k), toStarlarkValue(val))
		}
		return d

	case *klangvm.Function:
		d := starlark.NewDict(3)
		d.SetKey(starlark.String("name"), starlark.String(v.Name))
		d.SetKey(starlark.String("params"), toStarlarkValue(v.Params))
		d.SetKey(starlark.String("instructions"), starlark.MakeInt(len(v.Chunk.Code)))
		return d

	}

	panic(fmt.Errorf("unsupported type for starlark: %T", v))
}
