package klang

import (
	"io"

	"github.com/reusee/klang/klangvm"
)

func Compile(name string, source io.Reader) (*klangvm.Chunk, error) {
	src, err := io.ReadAll(source)
	if err != nil {
		return nil, err
	}
	return CompileString(name, string(src))
}

func CompileString(name string, src string) (*klangvm.Chunk, error) {
	stmts, err := Parse(name, src)
	if err != nil {
		return nil, err
	}
	return CompileStmts(name, stmts), nil
}
