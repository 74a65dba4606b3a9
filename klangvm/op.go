package klangvm

import "fmt"

type OpCode uint8

const (
	OpConstant OpCode = iota + 1
	OpLoad
	OpStore
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
	OpNot
	OpNegate
	OpJump
	OpJumpIf
	OpScope
	OpEndScope
	OpCall
	OpNativeCall
	OpFn
	OpEndFn
	OpReturn
	OpRange
	OpList
	OpFor
	OpPrint
	OpEOF
)

var opNames = map[OpCode]string{
	OpConstant:     "Constant",
	OpLoad:         "Load",
	OpStore:        "Store",
	OpAdd:          "Add",
	OpSub:          "Sub",
	OpMul:          "Mul",
	OpDiv:          "Div",
	OpMod:          "Mod",
	OpEqual:        "Equal",
	OpNotEqual:     "NotEqual",
	OpLess:         "Less",
	OpLessEqual:    "LessEqual",
	OpGreater:      "Greater",
	OpGreaterEqual: "GreaterEqual",
	OpAnd:          "And",
	OpOr:           "Or",
	OpNot:          "Not",
	OpNegate:       "Negate",
	OpJump:         "Jump",
	OpJumpIf:       "JumpIf",
	OpScope:        "Scope",
	OpEndScope:     "EndScope",
	OpCall:         "Call",
	OpNativeCall:   "NativeCall",
	OpFn:           "Fn",
	OpEndFn:        "EndFn",
	OpReturn:       "Return",
	OpRange:        "Range",
	OpList:         "List",
	OpFor:          "For",
	OpPrint:        "Print",
	OpEOF:          "EOF",
}

func (o OpCode) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Instruction is one bytecode instruction.
//
// Arg holds the constant or name pool index for Constant, Load, Store, Call and NativeCall,
// the relative offset for Jump and JumpIf, and the element count for List.
// N holds the argument count of NativeCall.
// Flag selects pop mode for JumpIf, a value for Return, and a step for Range.
type Instruction struct {
	Op   OpCode
	Arg  int
	N    int
	Flag bool
}

func (i Instruction) String() string {
	switch i.Op {
	case OpConstant, OpLoad, OpStore, OpCall:
		return fmt.Sprintf("%s %d", i.Op, i.Arg)
	case OpNativeCall:
		return fmt.Sprintf("%s %d %d", i.Op, i.Arg, i.N)
	case OpJump:
		return fmt.Sprintf("%s %+d", i.Op, i.Arg)
	case OpJumpIf:
		if i.Flag {
			return fmt.Sprintf("%s %+d pop", i.Op, i.Arg)
		}
		return fmt.Sprintf("%s %+d", i.Op, i.Arg)
	case OpList:
		return fmt.Sprintf("%s %d", i.Op, i.Arg)
	case OpReturn:
		if i.Flag {
			return "Return value"
		}
		return "Return"
	case OpRange:
		if i.Flag {
			return "Range step"
		}
		return "Range"
	}
	return i.Op.String()
}
