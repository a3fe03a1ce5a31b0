package compiler

import (
	"fmt"
	"strings"
)

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	Pos() (line, col int)
	String() string
}

// Ident is a reference to a named variable or function.
type Ident struct {
	Name      string
	Line, Col int
}

func (*Ident) exprNode()         {}
func (e *Ident) Pos() (int, int) { return e.Line, e.Col }
func (e *Ident) String() string  { return e.Name }

// IntegerLit is a compile-time integer constant.
type IntegerLit struct {
	Value     int64
	Line, Col int
}

func (*IntegerLit) exprNode()         {}
func (e *IntegerLit) Pos() (int, int) { return e.Line, e.Col }
func (e *IntegerLit) String() string  { return fmt.Sprintf("%d", e.Value) }

// FloatLit is a compile-time floating point constant.
type FloatLit struct {
	Value     float64
	Line, Col int
}

func (*FloatLit) exprNode()         {}
func (e *FloatLit) Pos() (int, int) { return e.Line, e.Col }
func (e *FloatLit) String() string {
	s := fmt.Sprintf("%g", e.Value)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0" // keep the literal re-lexable as a float
	}
	return s
}

// StringLit is a string constant "..."
type StringLit struct {
	Value     string
	Line, Col int
}

func (*StringLit) exprNode()         {}
func (e *StringLit) Pos() (int, int) { return e.Line, e.Col }
func (e *StringLit) String() string  { return fmt.Sprintf("%q", e.Value) }

// BooleanLit is true or false.
type BooleanLit struct {
	Value     bool
	Line, Col int
}

func (*BooleanLit) exprNode()         {}
func (e *BooleanLit) Pos() (int, int) { return e.Line, e.Col }
func (e *BooleanLit) String() string  { return fmt.Sprintf("%t", e.Value) }

// PrefixExpr represents Op Right (e.g., -x, !done).
type PrefixExpr struct {
	Op        string
	Right     Expr
	Line, Col int
}

func (*PrefixExpr) exprNode()         {}
func (e *PrefixExpr) Pos() (int, int) { return e.Line, e.Col }
func (e *PrefixExpr) String() string  { return fmt.Sprintf("(%s%s)", e.Op, e.Right) }

// InfixExpr represents a binary operation: Left Op Right.
// The logical operators && and || are InfixExprs too; the code generator
// gives them short-circuit evaluation.
type InfixExpr struct {
	Op        string
	Left      Expr
	Right     Expr
	Line, Col int
}

func (*InfixExpr) exprNode()         {}
func (e *InfixExpr) Pos() (int, int) { return e.Line, e.Col }
func (e *InfixExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// CallExpr represents name(args).
type CallExpr struct {
	Fn        *Ident
	Args      []Expr
	Line, Col int
}

func (*CallExpr) exprNode()         {}
func (e *CallExpr) Pos() (int, int) { return e.Line, e.Col }
func (e *CallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Fn, strings.Join(args, ", "))
}

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	Pos() (line, col int)
	String() string
}

// LetStmt represents  let name: type = expr;
type LetStmt struct {
	Name      *Ident
	TypeName  string
	Value     Expr
	Line, Col int
}

func (*LetStmt) stmtNode()         {}
func (s *LetStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *LetStmt) String() string {
	return fmt.Sprintf("LetStmt(%s: %s = %s)", s.Name, s.TypeName, s.Value)
}

// Param is one typed function parameter.
type Param struct {
	Name     string
	TypeName string
}

func (p Param) String() string { return p.Name + ": " + p.TypeName }

// FnStmt represents  fn name(params) -> type { body }
type FnStmt struct {
	Name       *Ident
	Params     []Param
	ReturnType string
	Body       *BlockStmt
	Line, Col  int
}

func (*FnStmt) stmtNode()         {}
func (s *FnStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *FnStmt) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("FnStmt(%s(%s) -> %s, body=%s)",
		s.Name, strings.Join(params, ", "), s.ReturnType, s.Body)
}

// BlockStmt represents { statement; ... }
type BlockStmt struct {
	Stmts     []Stmt
	Line, Col int
}

func (*BlockStmt) stmtNode()         {}
func (s *BlockStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *BlockStmt) String() string  { return fmt.Sprintf("BlockStmt(len=%d)", len(s.Stmts)) }

// ReturnStmt represents  return expr;  or  return;
type ReturnStmt struct {
	Value     Expr // nil for a bare return
	Line, Col int
}

func (*ReturnStmt) stmtNode()         {}
func (s *ReturnStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "ReturnStmt()"
	}
	return fmt.Sprintf("ReturnStmt(%s)", s.Value)
}

// AssignStmt represents  name = expr;
type AssignStmt struct {
	Name      *Ident
	Value     Expr
	Line, Col int
}

func (*AssignStmt) stmtNode()         {}
func (s *AssignStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *AssignStmt) String() string  { return fmt.Sprintf("AssignStmt(%s = %s)", s.Name, s.Value) }

// IfStmt represents  if cond { } [else { }]
type IfStmt struct {
	Condition   Expr
	Consequence *BlockStmt
	Alternative *BlockStmt // may be nil
	Line, Col   int
}

func (*IfStmt) stmtNode()         {}
func (s *IfStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *IfStmt) String() string {
	if s.Alternative != nil {
		return fmt.Sprintf("IfStmt(if %s then %s else %s)", s.Condition, s.Consequence, s.Alternative)
	}
	return fmt.Sprintf("IfStmt(if %s then %s)", s.Condition, s.Consequence)
}

// WhileStmt represents  while cond { }
type WhileStmt struct {
	Condition Expr
	Body      *BlockStmt
	Line, Col int
}

func (*WhileStmt) stmtNode()         {}
func (s *WhileStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *WhileStmt) String() string {
	return fmt.Sprintf("WhileStmt(while %s do %s)", s.Condition, s.Body)
}

// ForStmt represents  for (let ...; cond; assign) { }
// The header is exactly three clauses; the parser rejects anything else.
type ForStmt struct {
	Init      *LetStmt
	Condition Expr
	Post      *AssignStmt
	Body      *BlockStmt
	Line, Col int
}

func (*ForStmt) stmtNode()         {}
func (s *ForStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *ForStmt) String() string {
	return fmt.Sprintf("ForStmt(init=%s, cond=%s, post=%s, body=%s)", s.Init, s.Condition, s.Post, s.Body)
}

// BreakStmt represents break;
type BreakStmt struct {
	Line, Col int
}

func (*BreakStmt) stmtNode()         {}
func (s *BreakStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *BreakStmt) String() string  { return "BreakStmt" }

// ContinueStmt represents continue;
type ContinueStmt struct {
	Line, Col int
}

func (*ContinueStmt) stmtNode()         {}
func (s *ContinueStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *ContinueStmt) String() string  { return "ContinueStmt" }

// ExprStmt represents an expression evaluated for its side effects
// (e.g. a function call).
type ExprStmt struct {
	Expr      Expr
	Line, Col int
}

func (*ExprStmt) stmtNode()         {}
func (s *ExprStmt) Pos() (int, int) { return s.Line, s.Col }
func (s *ExprStmt) String() string  { return fmt.Sprintf("ExprStmt(%s)", s.Expr) }

// Program is the AST root: an ordered sequence of top-level statements.
type Program struct {
	Stmts []Stmt
}

func (p *Program) String() string {
	parts := make([]string, len(p.Stmts))
	for i, s := range p.Stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, "\n")
}
