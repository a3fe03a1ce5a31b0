package compiler

import (
	"fmt"

	"goforg/pkg/ir"
)

// generator walks the AST and lowers it through an ir.Builder. Semantic and
// type errors are recorded on the ErrorList and lowering continues with
// fallback values, so one mistake does not mask independent ones. Internal
// errors abort the unit.
type generator struct {
	b    ir.Builder
	errs *ErrorList
	env  *Env

	fn      *ir.Func
	retType ir.Type

	// Innermost loop targets for break and continue. Break always branches
	// to the exit block; continue branches to the condition block for while
	// and the increment block for for.
	breakTargets    []*ir.Block
	continueTargets []*ir.Block

	labels int
	err    error
}

// Generate lowers prog into b's module. User-facing problems land on errs;
// the returned error is non-nil only for internal invariant violations.
func Generate(prog *Program, b ir.Builder, errs *ErrorList) error {
	g := &generator{b: b, errs: errs, env: NewEnv()}

	printf := b.DeclareFunction("printf", ir.Int,
		[]ir.ParamSpec{{Name: "format", Type: ir.Str}}, true, true)
	g.env.Define("printf", printf, ir.Int)

	// Declare every signature before compiling any body so functions can
	// call each other and themselves regardless of declaration order.
	var fns []*FnStmt
	for _, stmt := range prog.Stmts {
		fn, ok := stmt.(*FnStmt)
		if !ok {
			line, col := stmt.Pos()
			g.errs.Add(Semantic, line, col, "only function declarations are allowed at the top level")
			continue
		}
		if g.declareFn(fn) {
			fns = append(fns, fn)
		}
	}
	for _, fn := range fns {
		g.genFnBody(fn)
		if g.err != nil {
			return g.err
		}
	}
	return nil
}

func (g *generator) internalf(line, col int, format string, args ...any) {
	g.errs.Add(Internal, line, col, format, args...)
	g.err = fmt.Errorf(format, args...)
}

func (g *generator) newBlock(name string) *ir.Block {
	g.labels++
	return g.b.NewBlock(g.fn, fmt.Sprintf("%s.%d", name, g.labels))
}

func (g *generator) zeroValue(t ir.Type) ir.Value {
	switch t {
	case ir.Float:
		return g.b.ConstFloat(0)
	case ir.Bool:
		return g.b.ConstBool(false)
	case ir.Str:
		return g.b.GlobalString("")
	default:
		return g.b.ConstInt(0)
	}
}

// declareFn registers the function's signature in the global scope. Returns
// false when the declaration itself is unusable.
func (g *generator) declareFn(s *FnStmt) bool {
	name := s.Name.Name
	if g.b.Module().Func(name) != nil {
		g.errs.Add(Semantic, s.Line, s.Col, "function '%s' is already defined", name)
		return false
	}
	ret, ok := ir.Primitive(s.ReturnType)
	if !ok {
		g.internalf(s.Line, s.Col, "unknown return type '%s' for function '%s'", s.ReturnType, name)
		return false
	}
	params := make([]ir.ParamSpec, 0, len(s.Params))
	for _, p := range s.Params {
		pt, ok := ir.Primitive(p.TypeName)
		if !ok {
			g.internalf(s.Line, s.Col, "unknown type '%s' for parameter '%s'", p.TypeName, p.Name)
			return false
		}
		if pt == ir.Void {
			g.errs.Add(TypeError, s.Line, s.Col, "parameter '%s' cannot have type void", p.Name)
			pt = ir.Int
		}
		params = append(params, ir.ParamSpec{Name: p.Name, Type: pt})
	}
	fn := g.b.DeclareFunction(name, ret, params, false, false)
	g.env.Define(name, fn, ret)
	return true
}

func (g *generator) genFnBody(s *FnStmt) {
	f := g.b.Module().Func(s.Name.Name)
	entry := g.b.NewBlock(f, "entry")
	g.b.PositionAtEnd(entry)
	g.fn = f
	g.retType = f.Ret

	g.env.EnterScope("fn " + s.Name.Name)
	// Parameters get stack slots so assignment works uniformly.
	for _, p := range f.Params {
		slot := g.b.Alloca(p.Typ)
		g.b.Store(p, slot)
		g.env.Define(p.Name, slot, p.Typ)
	}
	g.genBlock(s.Body)
	g.env.ExitScope()
	if g.err != nil {
		return
	}
	// A fall-through path returns the function's zero value.
	if !g.b.Block().Terminated() {
		if g.retType == ir.Void {
			g.b.RetVoid()
		} else {
			g.b.Ret(g.zeroValue(g.retType))
		}
	}
}

func (g *generator) genBlock(blk *BlockStmt) {
	g.env.EnterScope("block")
	for _, stmt := range blk.Stmts {
		if g.err != nil {
			break
		}
		g.genStmt(stmt)
		// Statements after return/break/continue are unreachable; emitting
		// them would append past a terminator.
		if g.b.Block().Terminated() {
			break
		}
	}
	g.env.ExitScope()
}

func (g *generator) genStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *LetStmt:
		g.genLet(s)
	case *AssignStmt:
		g.genAssign(s)
	case *ReturnStmt:
		g.genReturn(s)
	case *IfStmt:
		g.genIf(s)
	case *WhileStmt:
		g.genWhile(s)
	case *ForStmt:
		g.genFor(s)
	case *BreakStmt:
		if len(g.breakTargets) == 0 {
			g.errs.Add(Semantic, s.Line, s.Col, "break used outside of a loop")
			return
		}
		g.b.Br(g.breakTargets[len(g.breakTargets)-1])
	case *ContinueStmt:
		if len(g.continueTargets) == 0 {
			g.errs.Add(Semantic, s.Line, s.Col, "continue used outside of a loop")
			return
		}
		g.b.Br(g.continueTargets[len(g.continueTargets)-1])
	case *BlockStmt:
		g.genBlock(s)
	case *ExprStmt:
		g.genExpr(s.Expr)
	case *FnStmt:
		g.errs.Add(Semantic, s.Line, s.Col, "function '%s' must be declared at the top level", s.Name.Name)
	default:
		line, col := stmt.Pos()
		g.internalf(line, col, "unhandled statement %T", stmt)
	}
}

func (g *generator) genLet(s *LetStmt) {
	declared, ok := ir.Primitive(s.TypeName)
	if !ok {
		g.internalf(s.Line, s.Col, "unknown type '%s' in let-binding", s.TypeName)
		return
	}
	if declared == ir.Void {
		g.errs.Add(TypeError, s.Line, s.Col, "variable '%s' cannot have type void", s.Name.Name)
		declared = ir.Int
	}
	v := g.genExpr(s.Value)
	slot := g.b.Alloca(declared)
	if v.Type() != declared {
		g.errs.Add(TypeError, s.Line, s.Col,
			"cannot assign %s to '%s' declared as %s", v.Type(), s.Name.Name, declared)
	} else {
		g.b.Store(v, slot)
	}
	g.env.Define(s.Name.Name, slot, declared)
}

func (g *generator) genAssign(s *AssignStmt) {
	v := g.genExpr(s.Value)
	bind, ok := g.env.Lookup(s.Name.Name)
	if !ok {
		g.errs.AddWithSuggestion(Semantic, s.Line, s.Col,
			fmt.Sprintf("declare it first: let %s: %s = ...;", s.Name.Name, v.Type()),
			"undefined variable '%s'", s.Name.Name)
		return
	}
	if _, isFn := bind.Value.(*ir.Func); isFn {
		g.errs.Add(Semantic, s.Line, s.Col, "cannot assign to function '%s'", s.Name.Name)
		return
	}
	if v.Type() != bind.Type {
		g.errs.Add(TypeError, s.Line, s.Col,
			"cannot assign %s to '%s' of type %s", v.Type(), s.Name.Name, bind.Type)
		return
	}
	g.b.Store(v, bind.Value)
}

func (g *generator) genReturn(s *ReturnStmt) {
	if s.Value == nil {
		if g.retType != ir.Void {
			g.errs.Add(TypeError, s.Line, s.Col,
				"missing return value in function returning %s", g.retType)
			g.b.Ret(g.zeroValue(g.retType))
			return
		}
		g.b.RetVoid()
		return
	}
	v := g.genExpr(s.Value)
	if g.retType == ir.Void {
		g.errs.Add(TypeError, s.Line, s.Col, "unexpected return value in void function")
		g.b.RetVoid()
		return
	}
	if v.Type() != g.retType {
		g.errs.Add(TypeError, s.Line, s.Col,
			"cannot return %s from function returning %s", v.Type(), g.retType)
		v = g.zeroValue(g.retType)
	}
	g.b.Ret(v)
}

// genCondition lowers a loop or branch condition, insisting on bool.
func (g *generator) genCondition(e Expr, what string) ir.Value {
	v := g.genExpr(e)
	if v.Type() != ir.Bool {
		line, col := e.Pos()
		g.errs.Add(TypeError, line, col, "%s condition must be bool, got %s", what, v.Type())
		return g.b.ConstBool(false)
	}
	return v
}

func (g *generator) genIf(s *IfStmt) {
	cond := g.genCondition(s.Condition, "if")
	then := g.newBlock("then")
	merge := g.newBlock("merge")
	var els *ir.Block
	if s.Alternative != nil {
		els = g.newBlock("else")
		g.b.CondBr(cond, then, els)
	} else {
		g.b.CondBr(cond, then, merge)
	}

	g.b.PositionAtEnd(then)
	g.genBlock(s.Consequence)
	// An arm ending in return/break/continue already has its terminator;
	// branching it to merge as well would corrupt the block.
	if !g.b.Block().Terminated() {
		g.b.Br(merge)
	}

	if els != nil {
		g.b.PositionAtEnd(els)
		g.genBlock(s.Alternative)
		if !g.b.Block().Terminated() {
			g.b.Br(merge)
		}
	}
	g.b.PositionAtEnd(merge)
}

func (g *generator) genWhile(s *WhileStmt) {
	cond := g.newBlock("while.cond")
	body := g.newBlock("while.body")
	end := g.newBlock("while.end")

	g.b.Br(cond)
	g.b.PositionAtEnd(cond)
	g.b.CondBr(g.genCondition(s.Condition, "while"), body, end)

	g.breakTargets = append(g.breakTargets, end)
	g.continueTargets = append(g.continueTargets, cond)
	g.b.PositionAtEnd(body)
	g.genBlock(s.Body)
	if !g.b.Block().Terminated() {
		g.b.Br(cond)
	}
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.continueTargets = g.continueTargets[:len(g.continueTargets)-1]

	g.b.PositionAtEnd(end)
}

func (g *generator) genFor(s *ForStmt) {
	if s.Init == nil || s.Post == nil || s.Body == nil {
		return // parse error already reported
	}
	// The loop variable lives in its own scope around the whole loop.
	g.env.EnterScope("for")
	g.genLet(s.Init)

	cond := g.newBlock("for.cond")
	body := g.newBlock("for.body")
	post := g.newBlock("for.post")
	end := g.newBlock("for.end")

	g.b.Br(cond)
	g.b.PositionAtEnd(cond)
	g.b.CondBr(g.genCondition(s.Condition, "for"), body, end)

	g.breakTargets = append(g.breakTargets, end)
	g.continueTargets = append(g.continueTargets, post)
	g.b.PositionAtEnd(body)
	g.genBlock(s.Body)
	if !g.b.Block().Terminated() {
		g.b.Br(post)
	}
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.continueTargets = g.continueTargets[:len(g.continueTargets)-1]

	g.b.PositionAtEnd(post)
	g.genAssign(s.Post)
	g.b.Br(cond)

	g.b.PositionAtEnd(end)
	g.env.ExitScope()
}

func (g *generator) genExpr(e Expr) ir.Value {
	if g.err != nil {
		return g.b.ConstInt(0)
	}
	switch e := e.(type) {
	case *IntegerLit:
		return g.b.ConstInt(e.Value)
	case *FloatLit:
		return g.b.ConstFloat(e.Value)
	case *BooleanLit:
		return g.b.ConstBool(e.Value)
	case *StringLit:
		return g.b.GlobalString(e.Value)
	case *Ident:
		return g.genIdent(e)
	case *PrefixExpr:
		return g.genPrefix(e)
	case *InfixExpr:
		return g.genInfix(e)
	case *CallExpr:
		return g.genCall(e)
	default:
		line, col := e.Pos()
		g.internalf(line, col, "unhandled expression %T", e)
		return g.b.ConstInt(0)
	}
}

func (g *generator) genIdent(e *Ident) ir.Value {
	if e.Name == "<error>" {
		// Parser placeholder, already reported as a syntax error.
		return g.b.ConstInt(0)
	}
	bind, ok := g.env.Lookup(e.Name)
	if !ok {
		g.errs.AddWithSuggestion(Semantic, e.Line, e.Col,
			fmt.Sprintf("declare it first: let %s: int = ...;", e.Name),
			"undefined variable '%s'", e.Name)
		return g.b.ConstInt(0)
	}
	if _, isFn := bind.Value.(*ir.Func); isFn {
		g.errs.Add(Semantic, e.Line, e.Col, "'%s' is a function; call it with arguments", e.Name)
		return g.b.ConstInt(0)
	}
	return g.b.Load(bind.Value)
}

func (g *generator) genPrefix(e *PrefixExpr) ir.Value {
	v := g.genExpr(e.Right)
	switch e.Op {
	case "-":
		switch v.Type() {
		case ir.Int:
			return g.b.Bin(ir.OpSub, ir.Int, g.b.ConstInt(0), v)
		case ir.Float:
			return g.b.Bin(ir.OpSub, ir.Float, g.b.ConstFloat(0), v)
		}
		g.errs.Add(TypeError, e.Line, e.Col, "operator '-' requires a numeric operand, got %s", v.Type())
		return g.b.ConstInt(0)
	case "!":
		if v.Type() != ir.Bool {
			g.errs.Add(TypeError, e.Line, e.Col, "operator '!' requires a bool operand, got %s", v.Type())
			return g.b.ConstBool(false)
		}
		return g.b.Cmp(ir.PredEQ, v, g.b.ConstBool(false))
	default:
		g.internalf(e.Line, e.Col, "unhandled prefix operator %q", e.Op)
		return g.b.ConstInt(0)
	}
}

var arithOps = map[string]ir.Op{
	"+": ir.OpAdd,
	"-": ir.OpSub,
	"*": ir.OpMul,
	"/": ir.OpDiv,
}

var cmpPreds = map[string]ir.Pred{
	"==": ir.PredEQ,
	"!=": ir.PredNE,
	"<":  ir.PredLT,
	"<=": ir.PredLE,
	">":  ir.PredGT,
	">=": ir.PredGE,
}

func (g *generator) genInfix(e *InfixExpr) ir.Value {
	if e.Op == "&&" || e.Op == "||" {
		return g.genLogical(e)
	}
	l := g.genExpr(e.Left)
	r := g.genExpr(e.Right)
	lt, rt := l.Type(), r.Type()
	if lt != rt {
		g.errs.Add(TypeError, e.Line, e.Col, "type mismatch: %s %s %s", lt, e.Op, rt)
		return g.b.ConstInt(0)
	}

	numeric := lt == ir.Int || lt == ir.Float
	switch e.Op {
	case "+", "-", "*", "/":
		if !numeric {
			g.errs.Add(TypeError, e.Line, e.Col, "operator '%s' requires numeric operands, got %s", e.Op, lt)
			return g.b.ConstInt(0)
		}
		return g.b.Bin(arithOps[e.Op], lt, l, r)
	case "%":
		if lt != ir.Int {
			g.errs.Add(TypeError, e.Line, e.Col, "operator '%%' requires int operands, got %s", lt)
			return g.b.ConstInt(0)
		}
		return g.b.Bin(ir.OpRem, ir.Int, l, r)
	case "^":
		if !numeric {
			g.errs.Add(TypeError, e.Line, e.Col, "operator '^' requires numeric operands, got %s", lt)
			return g.b.ConstInt(0)
		}
		return g.b.Bin(ir.OpPow, lt, l, r)
	case "<", ">", "<=", ">=":
		if !numeric {
			g.errs.Add(TypeError, e.Line, e.Col, "operator '%s' requires numeric operands, got %s", e.Op, lt)
			return g.b.ConstBool(false)
		}
		return g.b.Cmp(cmpPreds[e.Op], l, r)
	case "==", "!=":
		if lt == ir.Str || lt == ir.Void {
			g.errs.Add(TypeError, e.Line, e.Col, "operator '%s' cannot compare %s values", e.Op, lt)
			return g.b.ConstBool(false)
		}
		return g.b.Cmp(cmpPreds[e.Op], l, r)
	default:
		g.internalf(e.Line, e.Col, "unhandled infix operator %q", e.Op)
		return g.b.ConstInt(0)
	}
}

// genLogical lowers && and || with short-circuit control flow: the result
// lives in a bool slot, and the right operand's block only runs when the
// left operand does not already decide the answer.
func (g *generator) genLogical(e *InfixExpr) ir.Value {
	l := g.genExpr(e.Left)
	if l.Type() != ir.Bool {
		g.errs.Add(TypeError, e.Line, e.Col, "operator '%s' requires bool operands, got %s", e.Op, l.Type())
		l = g.b.ConstBool(false)
	}
	slot := g.b.Alloca(ir.Bool)
	g.b.Store(l, slot)

	rhs := g.newBlock("logic.rhs")
	end := g.newBlock("logic.end")
	if e.Op == "&&" {
		g.b.CondBr(l, rhs, end)
	} else {
		g.b.CondBr(l, end, rhs)
	}

	g.b.PositionAtEnd(rhs)
	r := g.genExpr(e.Right)
	if r.Type() != ir.Bool {
		g.errs.Add(TypeError, e.Line, e.Col, "operator '%s' requires bool operands, got %s", e.Op, r.Type())
		r = g.b.ConstBool(false)
	}
	g.b.Store(r, slot)
	g.b.Br(end)

	g.b.PositionAtEnd(end)
	return g.b.Load(slot)
}

func (g *generator) genCall(e *CallExpr) ir.Value {
	name := e.Fn.Name
	if name == "<error>" {
		for _, a := range e.Args {
			g.genExpr(a)
		}
		return g.b.ConstInt(0)
	}
	bind, ok := g.env.Lookup(name)
	if !ok {
		g.errs.Add(Semantic, e.Line, e.Col, "undefined function '%s'", name)
		for _, a := range e.Args {
			g.genExpr(a)
		}
		return g.b.ConstInt(0)
	}
	fn, isFn := bind.Value.(*ir.Func)
	if !isFn {
		g.errs.Add(Semantic, e.Line, e.Col, "'%s' is not a function", name)
		return g.b.ConstInt(0)
	}
	if fn.Builtin && fn.Name == "printf" {
		return g.genPrintf(e, fn)
	}

	if len(e.Args) != len(fn.Params) {
		g.errs.Add(Semantic, e.Line, e.Col,
			"function '%s' expects %d argument(s), got %d", name, len(fn.Params), len(e.Args))
		for _, a := range e.Args {
			g.genExpr(a)
		}
		return g.zeroValue(fn.Ret)
	}
	args := make([]ir.Value, 0, len(e.Args))
	for i, a := range e.Args {
		v := g.genExpr(a)
		if v.Type() != fn.Params[i].Typ {
			line, col := a.Pos()
			g.errs.Add(TypeError, line, col,
				"argument %d to '%s' must be %s, got %s", i+1, name, fn.Params[i].Typ, v.Type())
			v = g.zeroValue(fn.Params[i].Typ)
		}
		args = append(args, v)
	}
	return g.b.Call(fn, args)
}

// genPrintf checks the format string against the argument list at compile
// time. The format must be a literal so the specifiers are known here.
func (g *generator) genPrintf(e *CallExpr, fn *ir.Func) ir.Value {
	if len(e.Args) == 0 {
		g.errs.Add(Semantic, e.Line, e.Col, "printf expects a format string")
		return g.b.ConstInt(0)
	}
	lit, ok := e.Args[0].(*StringLit)
	if !ok {
		g.errs.Add(Semantic, e.Line, e.Col, "printf format must be a string literal")
		for _, a := range e.Args {
			g.genExpr(a)
		}
		return g.b.ConstInt(0)
	}

	var want []ir.Type
	format := lit.Value
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 >= len(format) {
			g.errs.Add(Semantic, lit.Line, lit.Col, "format string ends with a lone '%%'")
			break
		}
		i++
		switch format[i] {
		case 'i':
			want = append(want, ir.Int)
		case 'f':
			want = append(want, ir.Float)
		case 's':
			want = append(want, ir.Str)
		case '%':
		default:
			g.errs.Add(Semantic, lit.Line, lit.Col, "unknown format specifier '%%%c'", format[i])
		}
	}

	rest := e.Args[1:]
	if len(rest) != len(want) {
		g.errs.Add(Semantic, e.Line, e.Col,
			"format string needs %d argument(s), got %d", len(want), len(rest))
	}
	args := []ir.Value{g.b.GlobalString(format)}
	for i, a := range rest {
		v := g.genExpr(a)
		if i < len(want) && v.Type() != want[i] {
			line, col := a.Pos()
			g.errs.Add(Semantic, line, col,
				"format specifier %d expects %s, got %s", i+1, want[i], v.Type())
			v = g.zeroValue(want[i])
		}
		args = append(args, v)
	}
	return g.b.Call(fn, args)
}
