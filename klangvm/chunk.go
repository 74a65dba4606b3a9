package klangvm

import (
	"fmt"
	"io"
)

type Chunk struct {
	Name      string
	Code      []Instruction
	Lines     []int
	Constants []Value
	Names     []string
}

func (c *Chunk) Line(ip int) int {
	if ip >= 0 && ip < len(c.Lines) {
		return c.Lines[ip]
	}
	if len(c.Lines) > 0 {
		return c.Lines[len(c.Lines)-1]
	}
	return 0
}

func (c *Chunk) name(idx int) string {
	if idx >= 0 && idx < len(c.Names) {
		return c.Names[idx]
	}
	return fmt.Sprintf("<name %d>", idx)
}

func (c *Chunk) constant(idx int) Value {
	if idx >= 0 && idx < len(c.Constants) {
		return c.Constants[idx]
	}
	return None
}

// Describe renders an instruction with its pool operands resolved.
func (c *Chunk) Describe(inst Instruction) string {
	switch inst.Op {
	case OpConstant:
		v := c.constant(inst.Arg)
		if s, ok := v.(Str); ok {
			return fmt.Sprintf("Constant %q", string(s))
		}
		return fmt.Sprintf("Constant %s", Format(v))
	case OpLoad, OpStore, OpCall:
		return fmt.Sprintf("%s %s", inst.Op, c.name(inst.Arg))
	case OpNativeCall:
		return fmt.Sprintf("%s @%s %d", inst.Op, c.name(inst.Arg), inst.N)
	}
	return inst.String()
}

func (c *Chunk) Disassemble(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", c.Name); err != nil {
		return err
	}
	for i, inst := range c.Code {
		if _, err := fmt.Fprintf(w, "%04d %4d %s\n", i, c.Line(i), c.Describe(inst)); err != nil {
			return err
		}
	}
	return nil
}
