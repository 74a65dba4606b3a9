package klang

import (
	"fmt"

	"github.com/reusee/klang/klangvm"
)

type parser struct {
	file    string
	tokens  []Token
	current int
}

func Parse(file string, src string) ([]Stmt, error) {
	tokens, err := Scan(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{
		file:   file,
		tokens: tokens,
	}
	return p.program()
}

func (p *parser) errorf(format string, args ...any) error {
	return &klangvm.Error{
		Kind:    klangvm.ParserError,
		File:    p.file,
		Line:    p.peek().Line,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) peek() Token {
	return p.tokens[p.current]
}

func (p *parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *parser) atEnd() bool {
	return p.peek().Type == TokenEOF
}

func (p *parser) check(t TokenType) bool {
	return p.peek().Type == t
}

func (p *parser) advance() Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) match(types ...TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(t TokenType, what string) (Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return Token{}, p.errorf("expecting %s %s, got %s", t, what, describe(p.peek()))
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of file"
	case TokenIdentifier, TokenNumber:
		return tok.Lexeme
	case TokenString:
		return fmt.Sprintf("%q", tok.Lexeme)
	}
	return "'" + tok.Type.String() + "'"
}

func (p *parser) program() ([]Stmt, error) {
	var stmts []Stmt
	for !p.atEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *parser) declaration() (Stmt, error) {
	switch {
	case p.match(TokenLet):
		return p.letDecl()
	case p.match(TokenFn):
		return p.fnDecl()
	}
	return p.statement()
}

func (p *parser) letDecl() (Stmt, error) {
	line := Line(p.previous().Line)
	name, err := p.consume(TokenIdentifier, "after let")
	if err != nil {
		return nil, err
	}
	var init Expr
	if p.match(TokenEqual) {
		init, err = p.logical()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenSemicolon, "after variable declaration"); err != nil {
		return nil, err
	}
	return &LetStmt{
		Line: line,
		Name: name.Lexeme,
		Init: init,
	}, nil
}

func (p *parser) fnDecl() (Stmt, error) {
	line := Line(p.previous().Line)
	name, err := p.consume(TokenIdentifier, "as function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenLeftParen, "after function name"); err != nil {
		return nil, err
	}
	var params []string
	if !p.check(TokenRightParen) {
		for {
			param, err := p.consume(TokenIdentifier, "as parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param.Lexeme)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.consume(TokenRightParen, "after parameters"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &FnStmt{
		Line:   line,
		Name:   name.Lexeme,
		Params: params,
		Body:   body,
	}, nil
}

func (p *parser) statement() (Stmt, error) {
	switch {
	case p.match(TokenPrint):
		return p.printStmt()
	case p.check(TokenLeftBrace):
		return p.block()
	case p.match(TokenIf):
		return p.ifStmt()
	case p.match(TokenWhile):
		return p.whileStmt()
	case p.match(TokenFor):
		return p.forStmt()
	case p.match(TokenReturn):
		return p.returnStmt()
	}
	return p.exprStmt()
}

func (p *parser) printStmt() (Stmt, error) {
	line := Line(p.previous().Line)
	if _, err := p.consume(TokenLeftParen, "after print"); err != nil {
		return nil, err
	}
	if !p.match(TokenString) {
		return nil, p.errorf("can only print a string literal, got %s", describe(p.peek()))
	}
	text, err := p.stringLit(p.previous())
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenRightParen, "after print argument"); err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenSemicolon, "after print"); err != nil {
		return nil, err
	}
	return &PrintStmt{
		Line: line,
		Text: text,
	}, nil
}

func (p *parser) block() (*BlockStmt, error) {
	open, err := p.consume(TokenLeftBrace, "to open a block")
	if err != nil {
		return nil, err
	}
	var stmts []Stmt
	for !p.check(TokenRightBrace) && !p.atEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.consume(TokenRightBrace, "to close the block"); err != nil {
		return nil, err
	}
	return &BlockStmt{
		Line:  Line(open.Line),
		Stmts: stmts,
	}, nil
}

func (p *parser) ifStmt() (Stmt, error) {
	line := Line(p.previous().Line)
	cond, err := p.logical()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{
		Line: line,
		Cond: cond,
		Then: then,
	}
	if p.match(TokenElse) {
		if p.check(TokenIf) {
			// else if chains nest into a single-statement block
			elseLine := Line(p.peek().Line)
			p.advance()
			nested, err := p.ifStmt()
			if err != nil {
				return nil, err
			}
			stmt.Else = &BlockStmt{
				Line:  elseLine,
				Stmts: []Stmt{nested},
			}
		} else {
			stmt.Else, err = p.block()
			if err != nil {
				return nil, err
			}
		}
	}
	return stmt, nil
}

func (p *parser) whileStmt() (Stmt, error) {
	line := Line(p.previous().Line)
	cond, err := p.logical()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{
		Line: line,
		Cond: cond,
		Body: body,
	}, nil
}

func (p *parser) forStmt() (Stmt, error) {
	line := Line(p.previous().Line)
	name, err := p.consume(TokenIdentifier, "as loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenIn, "after loop variable"); err != nil {
		return nil, err
	}
	iter, err := p.logical()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ForStmt{
		Line: line,
		Var:  name.Lexeme,
		Iter: iter,
		Body: body,
	}, nil
}

func (p *parser) returnStmt() (Stmt, error) {
	line := Line(p.previous().Line)
	var value Expr
	if !p.check(TokenSemicolon) {
		var err error
		value, err = p.logical()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenSemicolon, "after return"); err != nil {
		return nil, err
	}
	return &ReturnStmt{
		Line:  line,
		Value: value,
	}, nil
}

func (p *parser) exprStmt() (Stmt, error) {
	line := Line(p.peek().Line)
	expr, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenSemicolon, "after expression"); err != nil {
		return nil, err
	}
	return &ExprStmt{
		Line: line,
		X:    expr,
	}, nil
}

func (p *parser) assignment() (Expr, error) {
	expr, err := p.logical()
	if err != nil {
		return nil, err
	}
	if p.match(TokenEqual) {
		line := Line(p.previous().Line)
		target, ok := expr.(*VarExpr)
		if !ok {
			return nil, p.errorf("invalid assignment target")
		}
		value, err := p.logical()
		if err != nil {
			return nil, err
		}
		return &AssignExpr{
			Line:  line,
			Name:  target.Name,
			Value: value,
		}, nil
	}
	return expr, nil
}

// binary parses left (op right)? where right recurses into next, so operators associate to the right.
func (p *parser) binary(operand func() (Expr, error), next func() (Expr, error), ops ...TokenType) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	if p.match(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{
			Line:  Line(op.Line),
			Op:    op.Type,
			Left:  left,
			Right: right,
		}, nil
	}
	return left, nil
}

func (p *parser) logical() (Expr, error) {
	return p.binary(p.equality, p.logical, TokenAnd, TokenOr)
}

func (p *parser) equality() (Expr, error) {
	return p.binary(p.comparison, p.comparison, TokenEqualEqual, TokenBangEqual)
}

func (p *parser) comparison() (Expr, error) {
	return p.binary(p.term, p.term, TokenGreater, TokenGreaterEqual, TokenLess, TokenLessEqual)
}

func (p *parser) term() (Expr, error) {
	return p.binary(p.factor, p.term, TokenPlus, TokenMinus)
}

func (p *parser) factor() (Expr, error) {
	return p.binary(p.rangeExpr, p.factor, TokenStar, TokenSlash, TokenPercent)
}

func (p *parser) rangeExpr() (Expr, error) {
	start, err := p.unary()
	if err != nil {
		return nil, err
	}
	if !p.match(TokenRange) {
		return start, nil
	}
	line := Line(p.previous().Line)
	end, err := p.unary()
	if err != nil {
		return nil, err
	}
	expr := &RangeExpr{
		Line:  line,
		Start: start,
		End:   end,
	}
	if p.match(TokenRange) {
		expr.Step, err = p.unary()
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *parser) unary() (Expr, error) {
	if p.match(TokenBang, TokenMinus) {
		op := p.previous()
		x, err := p.call()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			Line: Line(op.Line),
			Op:   op.Type,
			X:    x,
		}, nil
	}
	return p.call()
}

func (p *parser) call() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	if !p.match(TokenLeftParen) {
		return expr, nil
	}
	callee, ok := expr.(*VarExpr)
	if !ok {
		return nil, p.errorf("can only call a function by name")
	}
	args, err := p.arguments(TokenRightParen)
	if err != nil {
		return nil, err
	}
	return &CallExpr{
		Line: callee.Line,
		Name: callee.Name,
		Args: args,
	}, nil
}

func (p *parser) arguments(closing TokenType) ([]Expr, error) {
	var args []Expr
	if !p.check(closing) {
		for {
			arg, err := p.logical()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.consume(closing, "after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) primary() (Expr, error) {
	tok := p.peek()
	line := Line(tok.Line)
	switch {

	case p.match(TokenTrue):
		return &Literal{Line: line, Value: klangvm.Bool(true)}, nil

	case p.match(TokenFalse):
		return &Literal{Line: line, Value: klangvm.Bool(false)}, nil

	case p.match(TokenNumber):
		return &Literal{Line: line, Value: klangvm.Number(tok.Number)}, nil

	case p.match(TokenString):
		// only print consumes the interpolated values
		if len(tok.Parts) > 0 {
			return nil, p.errorf("interpolation is only allowed in print")
		}
		return &StringLit{Line: line, Text: tok.Lexeme}, nil

	case p.match(TokenIdentifier):
		return &VarExpr{Line: line, Name: tok.Lexeme}, nil

	case p.match(TokenLeftBracket):
		elems, err := p.arguments(TokenRightBracket)
		if err != nil {
			return nil, err
		}
		return &ListExpr{Line: line, Elems: elems}, nil

	case p.match(TokenLeftParen):
		x, err := p.logical()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenRightParen, "after expression"); err != nil {
			return nil, err
		}
		return &GroupingExpr{Line: line, X: x}, nil

	case p.match(TokenAt):
		name, err := p.consume(TokenIdentifier, "as native function name")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenLeftParen, "after native function name"); err != nil {
			return nil, err
		}
		args, err := p.arguments(TokenRightParen)
		if err != nil {
			return nil, err
		}
		return &CallExpr{Line: line, Name: name.Lexeme, Args: args, Native: true}, nil

	}
	return nil, p.errorf("expecting expression, got %s", describe(tok))
}

func (p *parser) stringLit(tok Token) (*StringLit, error) {
	lit := &StringLit{
		Line: Line(tok.Line),
		Text: tok.Lexeme,
	}
	for _, src := range tok.Parts {
		tokens, err := scanFrom(p.file, src, tok.Line)
		if err != nil {
			return nil, err
		}
		sub := &parser{
			file:   p.file,
			tokens: tokens,
		}
		expr, err := sub.logical()
		if err != nil {
			return nil, err
		}
		if !sub.atEnd() {
			return nil, sub.errorf("unexpected %s in interpolation", describe(sub.peek()))
		}
		lit.Parts = append(lit.Parts, expr)
	}
	return lit, nil
}
