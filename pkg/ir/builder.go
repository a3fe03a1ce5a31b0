package ir

import "fmt"

// ParamSpec describes one parameter when declaring a function.
type ParamSpec struct {
	Name string
	Type Type
}

// Builder is the contract the code generator emits through. It covers
// declaring function signatures, creating and positioning basic blocks, and
// emitting typed instructions. Backends provide an implementation; the
// generator depends on nothing beyond this interface.
type Builder interface {
	Module() *Module

	// DeclareFunction adds a function with the given signature to the module.
	// builtin functions carry no blocks and are resolved by the backend.
	DeclareFunction(name string, ret Type, params []ParamSpec, variadic, builtin bool) *Func

	// NewBlock appends a fresh, empty basic block to f.
	NewBlock(f *Func, name string) *Block
	// PositionAtEnd makes b the block subsequent instructions append to.
	PositionAtEnd(b *Block)
	// Block returns the block the builder is currently positioned at.
	Block() *Block

	ConstInt(v int64) Value
	ConstFloat(v float64) Value
	ConstBool(v bool) Value
	// GlobalString interns s as a module-level string constant.
	GlobalString(s string) Value

	// Alloca reserves a slot for one value of type t in the current function.
	Alloca(t Type) Value
	Load(slot Value) Value
	Store(val, slot Value)

	// Bin emits an arithmetic instruction with the given result type.
	Bin(op Op, t Type, l, r Value) Value
	// Cmp emits a comparison; the result is always Bool.
	Cmp(pred Pred, l, r Value) Value
	Call(fn *Func, args []Value) Value

	Br(dst *Block)
	CondBr(cond Value, then, els *Block)
	Ret(v Value)
	RetVoid()
}

// ModuleBuilder is the reference Builder producing an in-memory Module.
type ModuleBuilder struct {
	mod     *Module
	cur     *Block
	nextVal int
	strings map[string]*Global // interned string constants
}

// NewBuilder returns a ModuleBuilder writing into a fresh module.
func NewBuilder(moduleName string) *ModuleBuilder {
	return &ModuleBuilder{
		mod:     NewModule(moduleName),
		strings: make(map[string]*Global),
	}
}

func (mb *ModuleBuilder) Module() *Module { return mb.mod }

func (mb *ModuleBuilder) DeclareFunction(name string, ret Type, params []ParamSpec, variadic, builtin bool) *Func {
	f := &Func{Name: name, Ret: ret, Variadic: variadic, Builtin: builtin}
	for i, p := range params {
		f.Params = append(f.Params, &Param{Name: p.Name, Typ: p.Type, Index: i})
	}
	mb.mod.addFunc(f)
	return f
}

func (mb *ModuleBuilder) NewBlock(f *Func, name string) *Block {
	b := &Block{Name: name, Parent: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

func (mb *ModuleBuilder) PositionAtEnd(b *Block) { mb.cur = b }

func (mb *ModuleBuilder) Block() *Block { return mb.cur }

func (mb *ModuleBuilder) nextName() string {
	mb.nextVal++
	return fmt.Sprintf("%%%d", mb.nextVal)
}

// emit appends in to the current block.
func (mb *ModuleBuilder) emit(in *Instr) *Instr {
	if mb.cur == nil {
		panic("ir: builder is not positioned at a block")
	}
	mb.cur.Instrs = append(mb.cur.Instrs, in)
	return in
}

func (mb *ModuleBuilder) ConstInt(v int64) Value     { return &Const{Typ: Int, IntVal: v} }
func (mb *ModuleBuilder) ConstFloat(v float64) Value { return &Const{Typ: Float, FloatVal: v} }
func (mb *ModuleBuilder) ConstBool(v bool) Value     { return &Const{Typ: Bool, BoolVal: v} }

func (mb *ModuleBuilder) GlobalString(s string) Value {
	if g, ok := mb.strings[s]; ok {
		return g
	}
	g := &Global{Name: fmt.Sprintf("str.%d", len(mb.mod.Globals)), Init: s}
	mb.mod.Globals = append(mb.mod.Globals, g)
	mb.strings[s] = g
	return g
}

func (mb *ModuleBuilder) Alloca(t Type) Value {
	return mb.emit(&Instr{Op: OpAlloca, Typ: t, Name: mb.nextName()})
}

func (mb *ModuleBuilder) Load(slot Value) Value {
	return mb.emit(&Instr{Op: OpLoad, Typ: slot.Type(), Name: mb.nextName(), Operands: []Value{slot}})
}

func (mb *ModuleBuilder) Store(val, slot Value) {
	mb.emit(&Instr{Op: OpStore, Typ: Void, Operands: []Value{val, slot}})
}

func (mb *ModuleBuilder) Bin(op Op, t Type, l, r Value) Value {
	return mb.emit(&Instr{Op: op, Typ: t, Name: mb.nextName(), Operands: []Value{l, r}})
}

func (mb *ModuleBuilder) Cmp(pred Pred, l, r Value) Value {
	return mb.emit(&Instr{Op: OpCmp, Typ: Bool, Name: mb.nextName(), Pred: pred, Operands: []Value{l, r}})
}

func (mb *ModuleBuilder) Call(fn *Func, args []Value) Value {
	in := &Instr{Op: OpCall, Typ: fn.Ret, Callee: fn, Operands: args}
	if fn.Ret != Void {
		in.Name = mb.nextName()
	}
	return mb.emit(in)
}

func (mb *ModuleBuilder) Br(dst *Block) {
	mb.emit(&Instr{Op: OpBr, Typ: Void, Then: dst})
}

func (mb *ModuleBuilder) CondBr(cond Value, then, els *Block) {
	mb.emit(&Instr{Op: OpCondBr, Typ: Void, Operands: []Value{cond}, Then: then, Else: els})
}

func (mb *ModuleBuilder) Ret(v Value) {
	mb.emit(&Instr{Op: OpRet, Typ: Void, Operands: []Value{v}})
}

func (mb *ModuleBuilder) RetVoid() {
	mb.emit(&Instr{Op: OpRet, Typ: Void})
}
