// Package ast defines the abstract syntax tree for runic.
package ast

import (
	"runic/internal/span"
	"runic/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Program (top-level AST root)
// ============================================================

// Program is a parsed source text.
type Program struct {
	NodeBase
	Body []Stmt
}

// ============================================================
// Expressions
// ============================================================

// Ident is an identifier reference.
type Ident struct {
	ExprBase
	Name string
}

// NumberLit is a numeric literal. All runic numbers are float64.
type NumberLit struct {
	ExprBase
	Value float64
}

// StringLit is a string literal.
type StringLit struct {
	ExprBase
	Value string
}

// BoolLit is true or false.
type BoolLit struct {
	ExprBase
	Value bool
}

// UndefinedLit is the literal undefined.
type UndefinedLit struct {
	ExprBase
}

// Unary is a prefix operation: -x, not x, ~x, ++x, --x.
type Unary struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// Binary is an arithmetic or bitwise operation: a + b, a & b.
type Binary struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// Logical is `a and b` or `a or b`.
type Logical struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// Relational is a comparison: a < b, a == b.
type Relational struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// Call is a function call: f(a, b).
type Call struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// VarDecl is `let x = e;`, `mut x = e;` or `mut x;`.
type VarDecl struct {
	StmtBase
	Name    string
	Init    Expr // nil only for mut
	Mutable bool
}

// Assign is `x = e;`. Compound forms are desugared by the parser.
type Assign struct {
	StmtBase
	Target *Ident
	Value  Expr
}

// Block is `{ ... }`. Executing a block opens a new scope.
type Block struct {
	StmtBase
	Stmts []Stmt
}

// If is one link of an if/elif/else chain. The elif and else branches hang
// off Alternate; else is an If whose condition is the literal true.
type If struct {
	StmtBase
	Condition  Expr
	Consequent *Block
	Alternate  *If // may be nil
}

// While is `while cond { body }`.
type While struct {
	StmtBase
	Condition Expr
	Body      *Block
}

// FuncDecl is `def name(params) { body }`.
type FuncDecl struct {
	StmtBase
	Name   string
	Params []string
	Body   *Block
}

// Return is `return e;` or `return;`.
type Return struct {
	StmtBase
	Value Expr // may be nil
}

// Echo is `echo a, b, c;`.
type Echo struct {
	StmtBase
	Values []Expr
}

// Halt stops the innermost enclosing loop.
type Halt struct {
	StmtBase
}

// Skip abandons the current iteration of the innermost enclosing loop.
type Skip struct {
	StmtBase
}
