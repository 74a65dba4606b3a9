package main

import (
	"io"

	"github.com/reusee/klang/klang"
)

// DisassembleFile prints the compiled chunk of a program without running it.
type DisassembleFile func(name string, src io.Reader) error

func (Module) DisassembleFile(
	stdout Stdout,
) DisassembleFile {
	return func(name string, src io.Reader) error {
		chunk, err := klang.Compile(name, src)
		if err != nil {
			return err
		}
		if err := chunk.Disassemble(stdout); err != nil {
			return wrap(err)
		}
		return nil
	}
}
