package klangvm

import (
	"math"
	"strconv"
	"strings"
)

type Value interface {
	Kind() string
}

type Number float64

type Bool bool

type Str string

type List []Value

type NoneType struct{}

var None = NoneType{}

func (Number) Kind() string {
	return "number"
}

func (Bool) Kind() string {
	return "bool"
}

func (Str) Kind() string {
	return "string"
}

func (List) Kind() string {
	return "list"
}

func (NoneType) Kind() string {
	return "none"
}

// Format renders a value the way print shows it.
func Format(v Value) string {
	switch v := v.(type) {
	case Number:
		return formatNumber(float64(v))
	case Bool:
		if v {
			return "true"
		}
		return "false"
	case Str:
		return string(v)
	case List:
		var b strings.Builder
		b.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Format(elem))
		}
		b.WriteByte(']')
		return b.String()
	case NoneType, nil:
		return "None"
	}
	return "?"
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Equal compares values of the same kind. Mismatched kinds, lists and none never compare equal.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Number:
		if b, ok := b.(Number); ok {
			return a == b
		}
	case Bool:
		if b, ok := b.(Bool); ok {
			return a == b
		}
	case Str:
		if b, ok := b.(Str); ok {
			return a == b
		}
	}
	return false
}

func kindOf(v Value) string {
	if v == nil {
		return "none"
	}
	return v.Kind()
}
