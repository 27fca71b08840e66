// Package ast defines the expression and statement node types produced by
// the parser and consumed by the compiler.
package ast

import "github.com/cwbudde/luabc/internal/token"

// Expr is implemented by every expression node.
type Expr interface {
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
}

// BinOp is a binary operator application. Op is restricted to the
// arithmetic, concatenation, comparison, and logical token kinds.
type BinOp struct {
	Op    token.Kind
	Left  Expr
	Right Expr
}

// UnaryOp is a prefix unary operator application: not, #, or unary -.
type UnaryOp struct {
	Op      token.Kind
	Operand Expr
}

// Ident is a variable reference.
type Ident struct {
	Name string
}

// Number is a numeric literal.
type Number struct {
	Value float64
}

// String is a string literal.
type String struct {
	Value string
}

// Boolean is a literal true/false.
type Boolean struct {
	Value bool
}

// FuncCall is a call expression: name(args...).
type FuncCall struct {
	Name string
	Args []Expr
}

func (BinOp) exprNode()    {}
func (UnaryOp) exprNode()  {}
func (Ident) exprNode()    {}
func (Number) exprNode()   {}
func (String) exprNode()   {}
func (Boolean) exprNode()  {}
func (FuncCall) exprNode() {}

// Assign is a multi-target assignment: targets := values, evaluated
// left-to-right and stored right-to-left (see the compiler package).
type Assign struct {
	Targets []Ident
	Values  []Expr
}

// If is an if/elseif/else chain. ElseifConds and ElseifBodies are always
// the same length; ElseBody is nil when there is no else arm.
type If struct {
	Cond         Expr
	ThenBody     []Stmt
	ElseifConds  []Expr
	ElseifBodies [][]Stmt
	ElseBody     []Stmt
}

// While is a pre-tested loop.
type While struct {
	Cond Expr
	Body []Stmt
}

// FuncDecl is a statement-position function declaration.
type FuncDecl struct {
	Name   string
	Params []Ident
	Body   []Stmt
}

// Return exits the enclosing function, optionally carrying a value. A nil
// Value means the function returns Nil. Only meaningful inside a function
// body; the compiler rejects a top-level Return (see internal/bytecode).
type Return struct {
	Value Expr
}

func (Assign) stmtNode()   {}
func (If) stmtNode()       {}
func (While) stmtNode()    {}
func (FuncDecl) stmtNode() {}
func (Return) stmtNode()   {}
