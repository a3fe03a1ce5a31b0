// Package ir is the target-independent intermediate representation produced
// by the code generator and consumed by an execution backend. A Module holds
// functions; a function holds basic blocks; a basic block is a straight-line
// instruction sequence ending in exactly one terminator (br, condbr, or ret).
package ir

import (
	"fmt"
	"strings"
)

// Type is one of the closed set of primitive type tags. There are no
// user-defined or composite types.
type Type int

const (
	Void Type = iota
	Int
	Float
	Bool
	Str
)

var typeNames = [...]string{
	Void:  "void",
	Int:   "int",
	Float: "float",
	Bool:  "bool",
	Str:   "str",
}

func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Primitive maps a source-level type name to its Type tag.
func Primitive(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return Type(t), true
		}
	}
	return Void, false
}

// Value is anything an instruction can take as an operand.
type Value interface {
	Type() Type
	operand() string
}

// Const is an immediate constant.
type Const struct {
	Typ      Type
	IntVal   int64
	FloatVal float64
	BoolVal  bool
}

func (c *Const) Type() Type { return c.Typ }
func (c *Const) operand() string {
	switch c.Typ {
	case Int:
		return fmt.Sprintf("int %d", c.IntVal)
	case Float:
		return fmt.Sprintf("float %g", c.FloatVal)
	case Bool:
		return fmt.Sprintf("bool %t", c.BoolVal)
	}
	return c.Typ.String()
}

// Global is a module-level string constant.
type Global struct {
	Name string
	Init string
}

func (g *Global) Type() Type      { return Str }
func (g *Global) operand() string { return "@" + g.Name }

// Param is a function parameter.
type Param struct {
	Name  string
	Typ   Type
	Index int
}

func (p *Param) Type() Type      { return p.Typ }
func (p *Param) operand() string { return "%" + p.Name }

// Op identifies an instruction kind.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpPow
	OpCmp
	OpAlloca
	OpLoad
	OpStore
	OpCall
	OpBr
	OpCondBr
	OpRet
)

var opNames = [...]string{
	OpAdd:    "add",
	OpSub:    "sub",
	OpMul:    "mul",
	OpDiv:    "div",
	OpRem:    "rem",
	OpPow:    "pow",
	OpCmp:    "cmp",
	OpAlloca: "alloca",
	OpLoad:   "load",
	OpStore:  "store",
	OpCall:   "call",
	OpBr:     "br",
	OpCondBr: "condbr",
	OpRet:    "ret",
}

func (op Op) String() string {
	if int(op) >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Pred is a comparison predicate for OpCmp.
type Pred string

const (
	PredEQ Pred = "eq"
	PredNE Pred = "ne"
	PredLT Pred = "lt"
	PredLE Pred = "le"
	PredGT Pred = "gt"
	PredGE Pred = "ge"
)

// Instr is a single IR instruction. Result-producing instructions are also
// Values; their Typ is the result type. For OpAlloca, Typ is the element type
// of the slot. Terminators (br, condbr, ret) and store produce no result.
type Instr struct {
	Op       Op
	Typ      Type
	Name     string // SSA-style result name, e.g. "%3"; "" for void results
	Operands []Value
	Pred     Pred   // OpCmp only
	Callee   *Func  // OpCall only
	Then     *Block // OpBr target / OpCondBr true target
	Else     *Block // OpCondBr false target
}

func (in *Instr) Type() Type      { return in.Typ }
func (in *Instr) operand() string { return in.Name }

// IsTerminator reports whether the instruction ends a basic block.
func (in *Instr) IsTerminator() bool {
	return in.Op == OpBr || in.Op == OpCondBr || in.Op == OpRet
}

func (in *Instr) text() string {
	var sb strings.Builder
	if in.Name != "" {
		fmt.Fprintf(&sb, "%s = ", in.Name)
	}
	switch in.Op {
	case OpCmp:
		fmt.Fprintf(&sb, "cmp %s %s %s, %s", in.Pred, in.Operands[0].Type(),
			in.Operands[0].operand(), in.Operands[1].operand())
	case OpAlloca:
		fmt.Fprintf(&sb, "alloca %s", in.Typ)
	case OpLoad:
		fmt.Fprintf(&sb, "load %s %s", in.Typ, in.Operands[0].operand())
	case OpStore:
		fmt.Fprintf(&sb, "store %s %s, %s", in.Operands[0].Type(),
			in.Operands[0].operand(), in.Operands[1].operand())
	case OpCall:
		args := make([]string, len(in.Operands))
		for i, a := range in.Operands {
			args[i] = a.operand()
		}
		fmt.Fprintf(&sb, "call %s @%s(%s)", in.Typ, in.Callee.Name, strings.Join(args, ", "))
	case OpBr:
		fmt.Fprintf(&sb, "br %s", in.Then.Name)
	case OpCondBr:
		fmt.Fprintf(&sb, "condbr %s, %s, %s", in.Operands[0].operand(), in.Then.Name, in.Else.Name)
	case OpRet:
		if len(in.Operands) == 0 {
			sb.WriteString("ret void")
		} else {
			fmt.Fprintf(&sb, "ret %s %s", in.Operands[0].Type(), in.Operands[0].operand())
		}
	default:
		fmt.Fprintf(&sb, "%s %s %s, %s", in.Op, in.Typ,
			in.Operands[0].operand(), in.Operands[1].operand())
	}
	return sb.String()
}

// Block is a basic block: a named straight-line instruction sequence.
type Block struct {
	Name   string
	Instrs []*Instr
	Parent *Func
}

// Terminated reports whether the block already ends in a terminator.
func (b *Block) Terminated() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	return b.Instrs[len(b.Instrs)-1].IsTerminator()
}

// Func is a function: a declared signature plus, unless it is an external
// builtin, a list of basic blocks. A Func used as an operand (e.g. stored in
// a symbol table) has its return type as its value type.
type Func struct {
	Name     string
	Params   []*Param
	Ret      Type
	Variadic bool
	Builtin  bool // declared only; no blocks
	Blocks   []*Block
}

func (f *Func) Type() Type      { return f.Ret }
func (f *Func) operand() string { return "@" + f.Name }

// Module is one compilation unit's worth of IR.
type Module struct {
	Name    string
	Funcs   []*Func
	Globals []*Global

	byName map[string]*Func
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name, byName: make(map[string]*Func)}
}

func (m *Module) addFunc(f *Func) {
	m.Funcs = append(m.Funcs, f)
	m.byName[f.Name] = f
}

// Func returns the named function, or nil.
func (m *Module) Func(name string) *Func { return m.byName[name] }

// String dumps the whole module as readable IR text.
func (m *Module) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %s\n", m.Name)
	for _, g := range m.Globals {
		fmt.Fprintf(&sb, "\n@%s = str %q\n", g.Name, g.Init)
	}
	for _, f := range m.Funcs {
		sb.WriteByte('\n')
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = fmt.Sprintf("%s %%%s", p.Typ, p.Name)
		}
		if f.Variadic {
			params = append(params, "...")
		}
		if f.Builtin {
			fmt.Fprintf(&sb, "declare %s @%s(%s)\n", f.Ret, f.Name, strings.Join(params, ", "))
			continue
		}
		fmt.Fprintf(&sb, "define %s @%s(%s) {\n", f.Ret, f.Name, strings.Join(params, ", "))
		for _, b := range f.Blocks {
			fmt.Fprintf(&sb, "%s:\n", b.Name)
			for _, in := range b.Instrs {
				fmt.Fprintf(&sb, "  %s\n", in.text())
			}
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}
