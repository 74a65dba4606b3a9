package klangvm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type VM struct {
	File      string
	Main      *Chunk
	Current   *Chunk
	IP        int
	Scopes    []*Scope
	Frames    []Frame
	Functions map[string]*Function
	Natives   map[string]NativeFunc
	Stdout    io.Writer
	Stdin     io.Reader
	Trace     bool

	// index of the executing instruction
	pc     int
	halted bool
	stdin  *bufio.Reader
}

func NewVM(file string, main *Chunk) *VM {
	return &VM{
		File:      file,
		Main:      main,
		Current:   main,
		Scopes:    []*Scope{NewScope()},
		Functions: make(map[string]*Function),
		Natives:   make(map[string]NativeFunc),
		Stdout:    os.Stdout,
		Stdin:     os.Stdin,
	}
}

// Load replaces the top-level chunk, keeping globals and defined functions.
func (v *VM) Load(chunk *Chunk) {
	v.Main = chunk
	v.Current = chunk
	v.IP = 0
	v.pc = 0
	v.halted = false
	v.Frames = v.Frames[:0]
	for i := 1; i < len(v.Scopes); i++ {
		v.Scopes[i] = nil
	}
	v.Scopes = v.Scopes[:1]
	v.Scopes[0].Stack = v.Scopes[0].Stack[:0]
}

func (v *VM) DefineNative(fn NativeFunc) {
	v.Natives[fn.Name] = fn
}

func (v *VM) Globals() *Scope {
	return v.Scopes[0]
}

// Get looks a name up from the innermost scope outwards.
func (v *VM) Get(name string) (Value, bool) {
	for i := len(v.Scopes) - 1; i >= 0; i-- {
		if val, ok := v.Scopes[i].Vars[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Set overwrites the outermost existing binding, or binds in the innermost scope.
func (v *VM) Set(name string, val Value) {
	for _, scope := range v.Scopes[:len(v.Scopes)-1] {
		if _, ok := scope.Vars[name]; ok {
			scope.Vars[name] = val
			return
		}
	}
	v.innermost().Vars[name] = val
}

// Exec runs the loaded chunk to completion and returns the first error.
func (v *VM) Exec() error {
	for _, err := range v.Run {
		if err != nil {
			return err
		}
	}
	return nil
}

func (v *VM) ReadLine() (string, error) {
	if v.stdin == nil {
		v.stdin = bufio.NewReader(v.Stdin)
	}
	line, err := v.stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (v *VM) innermost() *Scope {
	return v.Scopes[len(v.Scopes)-1]
}

func (v *VM) push(val Value) {
	v.innermost().push(val)
}

func (v *VM) pop() (Value, error) {
	val, ok := v.innermost().pop()
	if !ok {
		return nil, v.errorf(StackUnderflow, "cannot pop an empty stack")
	}
	return val, nil
}

func (v *VM) openScope() {
	v.Scopes = append(v.Scopes, NewScope())
}

func (v *VM) closeScope() {
	if len(v.Scopes) <= 1 {
		return
	}
	v.Scopes[len(v.Scopes)-1] = nil
	v.Scopes = v.Scopes[:len(v.Scopes)-1]
}

func (v *VM) errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		File:    v.File,
		Line:    v.Current.Line(v.pc),
		Message: fmt.Sprintf(format, args...),
	}
}
