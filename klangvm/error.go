package klangvm

import "fmt"

type ErrorKind string

func (e ErrorKind) Error() string {
	return string(e)
}

const (
	StackUnderflow        ErrorKind = "StackUnderflow"
	TypeMismatch          ErrorKind = "TypeMismatch"
	DivisionByZero        ErrorKind = "DivisionByZero"
	UndefinedVariable     ErrorKind = "UndefinedVariable"
	UnknownFunction       ErrorKind = "UnknownFunction"
	ArityMismatch         ErrorKind = "ArityMismatch"
	OutOfBoundsJump       ErrorKind = "OutOfBoundsJump"
	NativeArityMismatch   ErrorKind = "NativeArityMismatch"
	UnknownNativeFunction ErrorKind = "UnknownNativeFunction"
	NativeError           ErrorKind = "NativeError"
	InvalidBytecode       ErrorKind = "InvalidBytecode"
	ScannerError          ErrorKind = "ScannerError"
	ParserError           ErrorKind = "ParserError"
)

type Error struct {
	Kind    ErrorKind
	File    string
	Line    int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s at line %d: %s", e.Kind, e.File, e.Line, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}
