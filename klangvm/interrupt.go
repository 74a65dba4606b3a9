package klangvm

import "fmt"

// Interrupt is yielded before each instruction when the VM traces.
type Interrupt struct {
	Chunk       *Chunk
	IP          int
	Instruction Instruction
	Scopes      int
	Frames      int
	Stack       []Value
}

func (i *Interrupt) String() string {
	return fmt.Sprintf("%s:%04d %s", i.Chunk.Name, i.IP, i.Chunk.Describe(i.Instruction))
}
