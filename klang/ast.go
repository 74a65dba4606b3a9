package klang

import "github.com/reusee/klang/klangvm"

type Node interface {
	Pos() int
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

type Line int

func (l Line) Pos() int {
	return int(l)
}

type (
	PrintStmt struct {
		Line
		Text *StringLit
	}

	BlockStmt struct {
		Line
		Stmts []Stmt
	}

	IfStmt struct {
		Line
		Cond Expr
		Then *BlockStmt
		Else *BlockStmt
	}

	LetStmt struct {
		Line
		Name string
		Init Expr
	}

	WhileStmt struct {
		Line
		Cond Expr
		Body *BlockStmt
	}

	ForStmt struct {
		Line
		Var  string
		Iter Expr
		Body *BlockStmt
	}

	FnStmt struct {
		Line
		Name   string
		Params []string
		Body   *BlockStmt
	}

	ReturnStmt struct {
		Line
		Value Expr
	}

	ExprStmt struct {
		Line
		X Expr
	}
)

func (*PrintStmt) stmtNode()  {}
func (*BlockStmt) stmtNode()  {}
func (*IfStmt) stmtNode()     {}
func (*LetStmt) stmtNode()    {}
func (*WhileStmt) stmtNode()  {}
func (*ForStmt) stmtNode()    {}
func (*FnStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode() {}
func (*ExprStmt) stmtNode()   {}

type (
	AssignExpr struct {
		Line
		Name  string
		Value Expr
	}

	BinaryExpr struct {
		Line
		Op    TokenType
		Left  Expr
		Right Expr
	}

	UnaryExpr struct {
		Line
		Op TokenType
		X  Expr
	}

	CallExpr struct {
		Line
		Name   string
		Args   []Expr
		Native bool
	}

	GroupingExpr struct {
		Line
		X Expr
	}

	Literal struct {
		Line
		Value klangvm.Value
	}

	// StringLit holds text with a {} placeholder per interpolated expression.
	StringLit struct {
		Line
		Text  string
		Parts []Expr
	}

	RangeExpr struct {
		Line
		Start Expr
		End   Expr
		Step  Expr
	}

	ListExpr struct {
		Line
		Elems []Expr
	}

	VarExpr struct {
		Line
		Name string
	}
)

func (*AssignExpr) exprNode()   {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*CallExpr) exprNode()     {}
func (*GroupingExpr) exprNode() {}
func (*Literal) exprNode()      {}
func (*StringLit) exprNode()    {}
func (*RangeExpr) exprNode()    {}
func (*ListExpr) exprNode()     {}
func (*VarExpr) exprNode()      {}
