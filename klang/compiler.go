package klang

import (
	"github.com/reusee/klang/klangvm"
)

type compiler struct {
	name      string
	code      []klangvm.Instruction
	lines     []int
	constants []klangvm.Value
	constMap  map[klangvm.Value]int
	names     []string
	nameMap   map[string]int
}

func newCompiler(name string) *compiler {
	return &compiler{
		name:     name,
		constMap: make(map[klangvm.Value]int),
		nameMap:  make(map[string]int),
	}
}

// CompileStmts lowers a statement list into a chunk ending with a single EOF.
func CompileStmts(name string, stmts []Stmt) *klangvm.Chunk {
	c := newCompiler(name)
	line := 1
	for _, stmt := range stmts {
		c.compileStmt(stmt)
		line = stmt.Pos()
	}
	c.emit(klangvm.Instruction{Op: klangvm.OpEOF}, line)
	return c.toChunk()
}

func (c *compiler) toChunk() *klangvm.Chunk {
	return &klangvm.Chunk{
		Name:      c.name,
		Code:      c.code,
		Lines:     c.lines,
		Constants: c.constants,
		Names:     c.names,
	}
}

func (c *compiler) addConst(val klangvm.Value) int {
	if idx, ok := c.constMap[val]; ok {
		return idx
	}
	idx := len(c.constants)
	c.constants = append(c.constants, val)
	c.constMap[val] = idx
	return idx
}

func (c *compiler) addName(name string) int {
	if idx, ok := c.nameMap[name]; ok {
		return idx
	}
	idx := len(c.names)
	c.names = append(c.names, name)
	c.nameMap[name] = idx
	return idx
}

func (c *compiler) emit(inst klangvm.Instruction, line int) int {
	c.code = append(c.code, inst)
	c.lines = append(c.lines, line)
	return len(c.code) - 1
}

func (c *compiler) emitOp(op klangvm.OpCode, line int) int {
	return c.emit(klangvm.Instruction{Op: op}, line)
}

func (c *compiler) emitNamed(op klangvm.OpCode, name string, line int) int {
	return c.emit(klangvm.Instruction{Op: op, Arg: c.addName(name)}, line)
}

func (c *compiler) emitConst(val klangvm.Value, line int) int {
	return c.emit(klangvm.Instruction{Op: klangvm.OpConstant, Arg: c.addConst(val)}, line)
}

func (c *compiler) currentIP() int {
	return len(c.code)
}

// patchJump makes the jump at ip land on target.
func (c *compiler) patchJump(ip int, target int) {
	c.code[ip].Arg = target - ip - 1
}

func (c *compiler) compileStmts(stmts []Stmt) {
	for _, stmt := range stmts {
		c.compileStmt(stmt)
	}
}

func (c *compiler) compileStmt(stmt Stmt) {
	line := stmt.Pos()
	switch s := stmt.(type) {

	case *PrintStmt:
		c.compileString(s.Text)
		c.emitOp(klangvm.OpPrint, line)

	case *BlockStmt:
		c.compileBlock(s)

	case *IfStmt:
		c.compileIf(s)

	case *LetStmt:
		if s.Init != nil {
			c.compileExpr(s.Init)
		} else {
			c.emitConst(klangvm.None, line)
		}
		c.emitNamed(klangvm.OpStore, s.Name, line)

	case *WhileStmt:
		c.compileWhile(s)

	case *ForStmt:
		c.compileFor(s)

	case *FnStmt:
		c.emitOp(klangvm.OpFn, line)
		for _, param := range s.Params {
			c.emitNamed(klangvm.OpStore, param, line)
		}
		c.compileBlock(s.Body)
		c.emitNamed(klangvm.OpStore, s.Name, line)

	case *ReturnStmt:
		if s.Value != nil {
			c.compileExpr(s.Value)
		}
		c.emit(klangvm.Instruction{Op: klangvm.OpReturn, Flag: s.Value != nil}, line)

	case *ExprStmt:
		c.compileExpr(s.X)

	}
}

func (c *compiler) compileBlock(block *BlockStmt) {
	c.emitOp(klangvm.OpScope, block.Pos())
	c.compileStmts(block.Stmts)
	c.emitOp(klangvm.OpEndScope, block.Pos())
}

func (c *compiler) compileIf(s *IfStmt) {
	line := s.Pos()
	c.compileExpr(s.Cond)
	c.emitOp(klangvm.OpNot, line)
	// peek when an else follows, its Not consumes the condition
	skipThen := c.emit(klangvm.Instruction{Op: klangvm.OpJumpIf, Flag: s.Else == nil}, line)
	c.compileBlock(s.Then)
	c.patchJump(skipThen, c.currentIP())

	if s.Else != nil {
		c.emitOp(klangvm.OpNot, line)
		skipElse := c.emit(klangvm.Instruction{Op: klangvm.OpJumpIf, Flag: true}, line)
		c.compileBlock(s.Else)
		c.patchJump(skipElse, c.currentIP())
	}
}

func (c *compiler) compileWhile(s *WhileStmt) {
	line := s.Pos()
	start := c.currentIP()
	c.compileExpr(s.Cond)
	c.emitOp(klangvm.OpNot, line)
	exit := c.emit(klangvm.Instruction{Op: klangvm.OpJumpIf, Flag: true}, line)
	c.compileBlock(s.Body)
	loop := c.emitOp(klangvm.OpJump, line)
	c.patchJump(loop, start)
	c.patchJump(exit, c.currentIP())
}

func (c *compiler) compileFor(s *ForStmt) {
	line := s.Pos()
	c.compileExpr(s.Iter)
	start := c.emitOp(klangvm.OpFor, line)
	// skipped by For, which opens the iteration scope itself
	c.emitOp(klangvm.OpScope, line)
	c.emitNamed(klangvm.OpStore, s.Var, line)
	exit := c.emit(klangvm.Instruction{Op: klangvm.OpJumpIf, Flag: true}, line)
	c.compileStmts(s.Body.Stmts)
	c.emitOp(klangvm.OpEndScope, s.Body.Pos())
	loop := c.emitOp(klangvm.OpJump, line)
	c.patchJump(loop, start)
	c.patchJump(exit, c.currentIP())
	// closes the scope opened by the final pass
	c.emitOp(klangvm.OpEndScope, line)
}

var binaryOps = map[TokenType]klangvm.OpCode{
	TokenPlus:         klangvm.OpAdd,
	TokenMinus:        klangvm.OpSub,
	TokenStar:         klangvm.OpMul,
	TokenSlash:        klangvm.OpDiv,
	TokenPercent:      klangvm.OpMod,
	TokenEqualEqual:   klangvm.OpEqual,
	TokenBangEqual:    klangvm.OpNotEqual,
	TokenLess:         klangvm.OpLess,
	TokenLessEqual:    klangvm.OpLessEqual,
	TokenGreater:      klangvm.OpGreater,
	TokenGreaterEqual: klangvm.OpGreaterEqual,
	TokenAnd:          klangvm.OpAnd,
	TokenOr:           klangvm.OpOr,
}

func (c *compiler) compileExpr(expr Expr) {
	line := expr.Pos()
	switch e := expr.(type) {

	case *AssignExpr:
		c.compileExpr(e.Value)
		c.emitNamed(klangvm.OpStore, e.Name, line)

	case *BinaryExpr:
		c.compileExpr(e.Left)
		c.compileExpr(e.Right)
		c.emitOp(binaryOps[e.Op], line)

	case *UnaryExpr:
		c.compileExpr(e.X)
		if e.Op == TokenBang {
			c.emitOp(klangvm.OpNot, line)
		} else {
			c.emitOp(klangvm.OpNegate, line)
		}

	case *CallExpr:
		for _, arg := range e.Args {
			c.compileExpr(arg)
		}
		if e.Native {
			c.emit(klangvm.Instruction{
				Op:  klangvm.OpNativeCall,
				Arg: c.addName(e.Name),
				N:   len(e.Args),
			}, line)
		} else {
			c.emitNamed(klangvm.OpCall, e.Name, line)
		}

	case *GroupingExpr:
		c.compileExpr(e.X)

	case *Literal:
		c.emitConst(e.Value, line)

	case *StringLit:
		c.compileString(e)

	case *RangeExpr:
		c.compileExpr(e.Start)
		c.compileExpr(e.End)
		if e.Step != nil {
			c.compileExpr(e.Step)
		}
		c.emit(klangvm.Instruction{Op: klangvm.OpRange, Flag: e.Step != nil}, line)

	case *ListExpr:
		for _, elem := range e.Elems {
			c.compileExpr(elem)
		}
		c.emit(klangvm.Instruction{Op: klangvm.OpList, Arg: len(e.Elems)}, line)

	case *VarExpr:
		c.emitNamed(klangvm.OpLoad, e.Name, line)

	}
}

func (c *compiler) compileString(s *StringLit) {
	for _, part := range s.Parts {
		c.compileExpr(part)
	}
	c.emitConst(klangvm.Str(s.Text), s.Pos())
}
