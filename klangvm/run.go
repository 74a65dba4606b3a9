package klangvm

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

func (v *VM) Run(yield func(*Interrupt, error) bool) {
	for !v.halted {
		if v.IP >= len(v.Current.Code) {
			if len(v.Frames) == 0 {
				return
			}
			// function bodies end with EndFn, falling off one returns nothing
			v.returnFrom(nil)
			continue
		}

		inst := v.Current.Code[v.IP]
		if v.Trace {
			if !yield(&Interrupt{
				Chunk:       v.Current,
				IP:          v.IP,
				Instruction: inst,
				Scopes:      len(v.Scopes),
				Frames:      len(v.Frames),
				Stack:       slices.Clone(v.innermost().Stack),
			}, nil) {
				return
			}
		}
		v.pc = v.IP
		v.IP++

		if err := v.exec(inst); err != nil {
			yield(nil, err)
			return
		}
	}
}

func (v *VM) exec(inst Instruction) error {
	switch inst.Op {

	case OpConstant:
		v.push(v.Current.constant(inst.Arg))

	case OpLoad:
		name := v.Current.name(inst.Arg)
		val, ok := v.Get(name)
		if !ok {
			return v.errorf(UndefinedVariable, "undefined variable %s", name)
		}
		v.push(val)

	case OpStore:
		val, ok := v.innermost().pop()
		if !ok {
			val = None
		}
		v.Set(v.Current.name(inst.Arg), val)

	case OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual,
		OpAnd, OpOr:
		right, err := v.pop()
		if err != nil {
			return err
		}
		left, err := v.pop()
		if err != nil {
			return err
		}
		res, err := v.binary(inst.Op, left, right)
		if err != nil {
			return err
		}
		v.push(res)

	case OpNot:
		val, err := v.pop()
		if err != nil {
			return err
		}
		b, ok := val.(Bool)
		if !ok {
			return v.errorf(TypeMismatch, "can only use ! on bool, got %s", kindOf(val))
		}
		v.push(!b)

	case OpNegate:
		val, err := v.pop()
		if err != nil {
			return err
		}
		n, ok := val.(Number)
		if !ok {
			return v.errorf(TypeMismatch, "can only negate number, got %s", kindOf(val))
		}
		v.push(-n)

	case OpJump:
		return v.jump(inst.Arg)

	case OpJumpIf:
		var cond Value
		if inst.Flag {
			val, err := v.pop()
			if err != nil {
				return err
			}
			cond = val
		} else {
			val, ok := v.innermost().peek()
			if !ok {
				return v.errorf(StackUnderflow, "cannot peek an empty stack")
			}
			cond = val
		}
		if b, ok := cond.(Bool); ok && bool(b) {
			return v.jump(inst.Arg)
		}

	case OpScope:
		v.openScope()

	case OpEndScope:
		v.closeScope()

	case OpFn:
		return v.defineFunction()

	case OpCall:
		return v.call(v.Current.name(inst.Arg))

	case OpReturn:
		var ret Value
		if inst.Flag {
			val, ok := v.innermost().pop()
			if !ok {
				val = None
			}
			ret = val
		}
		if len(v.Frames) == 0 {
			v.halted = true
			return nil
		}
		v.returnFrom(ret)

	case OpEndFn:
		if len(v.Frames) > 0 {
			v.returnFrom(nil)
		}

	case OpNativeCall:
		return v.callNative(v.Current.name(inst.Arg), inst.N)

	case OpRange:
		return v.makeRange(inst.Flag)

	case OpList:
		n := inst.Arg
		if n > len(v.innermost().Stack) {
			return v.errorf(StackUnderflow, "list of %d elements from a stack of %d", n, len(v.innermost().Stack))
		}
		list := make(List, n)
		for i := n - 1; i >= 0; i-- {
			list[i], _ = v.innermost().pop()
		}
		v.push(list)

	case OpFor:
		return v.forStep()

	case OpPrint:
		return v.print()

	case OpEOF:

	default:
		return v.errorf(InvalidBytecode, "unknown opcode %s", inst.Op)
	}

	return nil
}

func (v *VM) jump(offset int) error {
	target := v.IP + offset
	if target < 0 || target > len(v.Current.Code) {
		return v.errorf(OutOfBoundsJump, "jump to %d is outside of [0, %d]", target, len(v.Current.Code))
	}
	v.IP = target
	return nil
}

func (v *VM) binary(op OpCode, left, right Value) (Value, error) {
	switch op {
	case OpEqual:
		return Bool(Equal(left, right)), nil
	case OpNotEqual:
		return Bool(!Equal(left, right)), nil
	case OpAnd, OpOr:
		l, lok := left.(Bool)
		r, rok := right.(Bool)
		if !lok || !rok {
			return nil, v.errorf(TypeMismatch, "%s expects bool operands, got %s and %s", op, kindOf(left), kindOf(right))
		}
		if op == OpAnd {
			return l && r, nil
		}
		return l || r, nil
	}

	l, lok := left.(Number)
	r, rok := right.(Number)
	if !lok || !rok {
		return nil, v.errorf(TypeMismatch, "%s expects number operands, got %s and %s", op, kindOf(left), kindOf(right))
	}
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return nil, v.errorf(DivisionByZero, "division by zero")
		}
		return l / r, nil
	case OpMod:
		if r == 0 {
			return nil, v.errorf(DivisionByZero, "modulo by zero")
		}
		return Number(math.Mod(float64(l), float64(r))), nil
	case OpLess:
		return Bool(l < r), nil
	case OpLessEqual:
		return Bool(l <= r), nil
	case OpGreater:
		return Bool(l > r), nil
	case OpGreaterEqual:
		return Bool(l >= r), nil
	}
	return nil, v.errorf(InvalidBytecode, "%s is not a binary operator", op)
}

func (v *VM) defineFunction() error {
	code := v.Current.Code
	i := v.IP

	var params []string
	for i < len(code) && code[i].Op == OpStore {
		params = append(params, v.Current.name(code[i].Arg))
		i++
	}
	if i >= len(code) || code[i].Op != OpScope {
		return v.errorf(InvalidBytecode, "function body must start with a scope")
	}
	i++

	start := i
	depth := 1
	for ; i < len(code); i++ {
		switch code[i].Op {
		case OpScope, OpFor:
			depth++
		case OpEndScope:
			depth--
		}
		if depth == 0 {
			break
		}
	}
	if depth != 0 {
		return v.errorf(InvalidBytecode, "unterminated function body")
	}
	end := i
	if end+1 >= len(code) || code[end+1].Op != OpStore {
		return v.errorf(InvalidBytecode, "function body must be followed by its name")
	}
	name := v.Current.name(code[end+1].Arg)

	body := &Chunk{
		Name:      name,
		Code:      make([]Instruction, 0, end-start+1),
		Lines:     make([]int, 0, end-start+1),
		Constants: v.Current.Constants,
		Names:     v.Current.Names,
	}
	body.Code = append(body.Code, code[start:end]...)
	body.Code = append(body.Code, Instruction{Op: OpEndFn})
	body.Lines = append(body.Lines, v.Current.Lines[start:end]...)
	body.Lines = append(body.Lines, v.Current.Line(end))

	v.Functions[name] = &Function{
		Name:   name,
		Params: params,
		Chunk:  body,
	}
	v.IP = end + 2
	return nil
}

func (v *VM) call(name string) error {
	fn, ok := v.Functions[name]
	if !ok {
		return v.errorf(UnknownFunction, "undefined function %s", name)
	}

	scope := NewScope()
	caller := v.innermost()
	for i := len(fn.Params) - 1; i >= 0; i-- {
		val, ok := caller.pop()
		if !ok {
			return v.errorf(ArityMismatch, "not enough arguments for %s, expecting %d", name, len(fn.Params))
		}
		scope.Vars[fn.Params[i]] = val
	}

	v.Frames = append(v.Frames, Frame{
		Fun:      fn,
		Caller:   v.Current,
		ReturnIP: v.IP,
		Base:     len(v.Scopes),
	})
	v.Scopes = append(v.Scopes, scope)
	v.Current = fn.Chunk
	v.IP = 0
	return nil
}

func (v *VM) returnFrom(ret Value) {
	frame := v.Frames[len(v.Frames)-1]
	v.Frames = v.Frames[:len(v.Frames)-1]
	for len(v.Scopes) > frame.Base {
		v.closeScope()
	}
	v.Current = frame.Caller
	v.IP = frame.ReturnIP
	if ret != nil {
		v.push(ret)
	}
}

func (v *VM) callNative(name string, n int) error {
	stack := v.innermost().Stack
	if n > len(stack) {
		return v.errorf(StackUnderflow, "@%s needs %d arguments, stack has %d", name, n, len(stack))
	}
	args := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i], _ = v.innermost().pop()
	}

	fn, ok := v.Natives[name]
	if !ok {
		return v.errorf(UnknownNativeFunction, "undefined native function %s", name)
	}
	if fn.Arity != n {
		return v.errorf(NativeArityMismatch, "@%s expects %d arguments, got %d", name, fn.Arity, n)
	}

	res, err := fn.Call(v, args)
	if err != nil {
		e := v.errorf(NativeError, "@%s: %v", name, err)
		e.Cause = err
		return e
	}
	if res != nil {
		v.push(res)
	}
	return nil
}

func (v *VM) number(what string) (int, error) {
	val, err := v.pop()
	if err != nil {
		return 0, err
	}
	n, ok := val.(Number)
	if !ok {
		return 0, v.errorf(TypeMismatch, "range %s must be number, got %s", what, kindOf(val))
	}
	f := math.Trunc(float64(n))
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, v.errorf(TypeMismatch, "range %s out of integer range, got %s", what, Format(n))
	}
	return int(f), nil
}

// MaxRangeLen bounds the number of elements a range may materialize.
const MaxRangeLen = 1 << 24

func (v *VM) makeRange(hasStep bool) error {
	step := 1
	if hasStep {
		n, err := v.number("step")
		if err != nil {
			return err
		}
		step = n
	}
	end, err := v.number("end")
	if err != nil {
		return err
	}
	start, err := v.number("start")
	if err != nil {
		return err
	}
	if step <= 0 {
		return v.errorf(TypeMismatch, "range step must be positive, got %d", step)
	}

	var list List
	if end > start {
		// float math, the int difference may overflow
		n := math.Ceil((float64(end) - float64(start)) / float64(step))
		if n > MaxRangeLen {
			return v.errorf(TypeMismatch, "range of %s elements exceeds %d", Format(Number(n)), MaxRangeLen)
		}
		list = make(List, 0, int(n))
	}
	for i := start; i < end; i += step {
		list = append(list, Number(i))
	}
	v.push(list)
	return nil
}

func (v *VM) forStep() error {
	val, err := v.pop()
	if err != nil {
		return err
	}
	list, ok := val.(List)
	if !ok {
		return v.errorf(TypeMismatch, "can only iterate over list, got %s", kindOf(val))
	}

	enclosing := v.innermost()
	v.openScope()
	if len(list) > 0 {
		v.push(Bool(false))
		v.push(list[0])
		enclosing.push(list[1:])
	} else {
		v.push(Bool(true))
		v.push(None)
	}

	if v.IP < len(v.Current.Code) && v.Current.Code[v.IP].Op == OpScope {
		v.IP++
	}
	return nil
}

func (v *VM) print() error {
	val, err := v.pop()
	if err != nil {
		return err
	}
	base, ok := val.(Str)
	if !ok {
		return v.errorf(TypeMismatch, "can only print string, got %s", kindOf(val))
	}

	text := string(base)
	end := len(text)
	for range placeholders(text) {
		arg, err := v.pop()
		if err != nil {
			return err
		}
		idx := strings.LastIndex(text[:end], "{}")
		if idx < 0 {
			break
		}
		text = text[:idx] + Format(arg) + text[idx+2:]
		end = idx
	}

	fmt.Fprintln(v.Stdout, text)
	return nil
}

// placeholders counts balanced brace pairs.
func placeholders(s string) int {
	depth := 0
	n := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
				n++
			}
		}
	}
	return n
}
