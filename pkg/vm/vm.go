// Package vm executes IR modules directly: a tree-walking register machine
// that steps through basic blocks, keeping per-call frames for instruction
// results and alloca cells. It implements the backend contract the code
// generator targets, without any native lowering.
package vm

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"goforg/pkg/ir"
)

// maxCallDepth bounds recursion so runaway programs fail with a diagnostic
// instead of exhausting the Go stack.
const maxCallDepth = 10000

// value is one runtime datum. The typ field selects which payload is live.
type value struct {
	typ ir.Type
	i   int64
	f   float64
	b   bool
	s   string
}

func zeroValue(t ir.Type) value { return value{typ: t} }

// frame is one function activation: instruction results and alloca cells.
type frame struct {
	params []value
	regs   map[ir.Value]value
	cells  map[ir.Value]*value
}

// Machine interprets a single IR module. Output from the print builtin goes
// to out.
type Machine struct {
	mod   *ir.Module
	out   io.Writer
	depth int
}

func New(mod *ir.Module, out io.Writer) *Machine {
	if out == nil {
		out = os.Stdout
	}
	return &Machine{mod: mod, out: out}
}

// Run executes the module's main function and returns its integer result.
func (m *Machine) Run() (int64, error) {
	main := m.mod.Func("main")
	if main == nil {
		return 0, fmt.Errorf("no 'main' function defined")
	}
	if len(main.Params) != 0 {
		return 0, fmt.Errorf("'main' must not take parameters")
	}
	ret, err := m.call(main, nil)
	if err != nil {
		return 0, err
	}
	if ret.typ == ir.Int {
		return ret.i, nil
	}
	return 0, nil
}

func (m *Machine) call(f *ir.Func, args []value) (value, error) {
	if f.Builtin {
		return m.callBuiltin(f, args)
	}
	if len(f.Blocks) == 0 {
		return value{}, fmt.Errorf("function '%s' has no body", f.Name)
	}
	m.depth++
	defer func() { m.depth-- }()
	if m.depth > maxCallDepth {
		return value{}, fmt.Errorf("call depth exceeded in '%s'", f.Name)
	}

	fr := &frame{
		params: args,
		regs:   make(map[ir.Value]value),
		cells:  make(map[ir.Value]*value),
	}
	blk := f.Blocks[0]
	for {
		next, ret, done, err := m.execBlock(blk, fr)
		if err != nil {
			return value{}, err
		}
		if done {
			return ret, nil
		}
		blk = next
	}
}

// execBlock runs one basic block to its terminator. It returns either the
// next block to enter or, for a return, the function's result.
func (m *Machine) execBlock(blk *ir.Block, fr *frame) (*ir.Block, value, bool, error) {
	for _, in := range blk.Instrs {
		switch in.Op {
		case ir.OpBr:
			return in.Then, value{}, false, nil
		case ir.OpCondBr:
			cond, err := m.eval(in.Operands[0], fr)
			if err != nil {
				return nil, value{}, false, err
			}
			if cond.b {
				return in.Then, value{}, false, nil
			}
			return in.Else, value{}, false, nil
		case ir.OpRet:
			if len(in.Operands) == 0 {
				return nil, zeroValue(ir.Void), true, nil
			}
			v, err := m.eval(in.Operands[0], fr)
			return nil, v, true, err
		default:
			if err := m.step(in, fr); err != nil {
				return nil, value{}, false, err
			}
		}
	}
	return nil, value{}, false, fmt.Errorf("block '%s' in '%s' has no terminator",
		blk.Name, blk.Parent.Name)
}

func (m *Machine) step(in *ir.Instr, fr *frame) error {
	switch in.Op {
	case ir.OpAlloca:
		cell := zeroValue(in.Typ)
		fr.cells[in] = &cell

	case ir.OpLoad:
		cell, ok := fr.cells[in.Operands[0]]
		if !ok {
			return fmt.Errorf("load from an unallocated slot in '%s'", in.Name)
		}
		fr.regs[in] = *cell

	case ir.OpStore:
		v, err := m.eval(in.Operands[0], fr)
		if err != nil {
			return err
		}
		cell, ok := fr.cells[in.Operands[1]]
		if !ok {
			return fmt.Errorf("store to an unallocated slot")
		}
		*cell = v

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpRem, ir.OpPow:
		l, err := m.eval(in.Operands[0], fr)
		if err != nil {
			return err
		}
		r, err := m.eval(in.Operands[1], fr)
		if err != nil {
			return err
		}
		v, err := arith(in.Op, in.Typ, l, r)
		if err != nil {
			return err
		}
		fr.regs[in] = v

	case ir.OpCmp:
		l, err := m.eval(in.Operands[0], fr)
		if err != nil {
			return err
		}
		r, err := m.eval(in.Operands[1], fr)
		if err != nil {
			return err
		}
		fr.regs[in] = value{typ: ir.Bool, b: compare(in.Pred, l, r)}

	case ir.OpCall:
		args := make([]value, len(in.Operands))
		for i, op := range in.Operands {
			v, err := m.eval(op, fr)
			if err != nil {
				return err
			}
			args[i] = v
		}
		ret, err := m.call(in.Callee, args)
		if err != nil {
			return err
		}
		fr.regs[in] = ret

	default:
		return fmt.Errorf("cannot execute %s", in.Op)
	}
	return nil
}

func (m *Machine) eval(v ir.Value, fr *frame) (value, error) {
	switch v := v.(type) {
	case *ir.Const:
		switch v.Typ {
		case ir.Float:
			return value{typ: ir.Float, f: v.FloatVal}, nil
		case ir.Bool:
			return value{typ: ir.Bool, b: v.BoolVal}, nil
		default:
			return value{typ: ir.Int, i: v.IntVal}, nil
		}
	case *ir.Global:
		return value{typ: ir.Str, s: v.Init}, nil
	case *ir.Param:
		if v.Index >= len(fr.params) {
			return value{}, fmt.Errorf("parameter '%s' has no argument", v.Name)
		}
		return fr.params[v.Index], nil
	case *ir.Instr:
		r, ok := fr.regs[v]
		if !ok {
			return value{}, fmt.Errorf("use of %s before its definition", v.Op)
		}
		return r, nil
	default:
		return value{}, fmt.Errorf("cannot evaluate operand %T", v)
	}
}

func arith(op ir.Op, t ir.Type, l, r value) (value, error) {
	if t == ir.Float {
		switch op {
		case ir.OpAdd:
			return value{typ: ir.Float, f: l.f + r.f}, nil
		case ir.OpSub:
			return value{typ: ir.Float, f: l.f - r.f}, nil
		case ir.OpMul:
			return value{typ: ir.Float, f: l.f * r.f}, nil
		case ir.OpDiv:
			if r.f == 0 {
				return value{}, fmt.Errorf("division by zero")
			}
			return value{typ: ir.Float, f: l.f / r.f}, nil
		case ir.OpPow:
			return value{typ: ir.Float, f: math.Pow(l.f, r.f)}, nil
		}
		return value{}, fmt.Errorf("cannot apply %s to float", op)
	}
	switch op {
	case ir.OpAdd:
		return value{typ: ir.Int, i: l.i + r.i}, nil
	case ir.OpSub:
		return value{typ: ir.Int, i: l.i - r.i}, nil
	case ir.OpMul:
		return value{typ: ir.Int, i: l.i * r.i}, nil
	case ir.OpDiv:
		if r.i == 0 {
			return value{}, fmt.Errorf("division by zero")
		}
		return value{typ: ir.Int, i: l.i / r.i}, nil
	case ir.OpRem:
		if r.i == 0 {
			return value{}, fmt.Errorf("division by zero")
		}
		return value{typ: ir.Int, i: l.i % r.i}, nil
	case ir.OpPow:
		return value{typ: ir.Int, i: ipow(l.i, r.i)}, nil
	}
	return value{}, fmt.Errorf("cannot apply %s to int", op)
}

// ipow is integer exponentiation. Negative exponents truncate toward zero,
// so anything with |base| > 1 collapses to 0.
func ipow(base, exp int64) int64 {
	if exp < 0 {
		switch base {
		case 1:
			return 1
		case -1:
			if exp%2 == 0 {
				return 1
			}
			return -1
		default:
			return 0
		}
	}
	var result int64 = 1
	for ; exp > 0; exp-- {
		result *= base
	}
	return result
}

func compare(pred ir.Pred, l, r value) bool {
	if l.typ == ir.Bool {
		switch pred {
		case ir.PredEQ:
			return l.b == r.b
		case ir.PredNE:
			return l.b != r.b
		}
		return false
	}
	var cmp int
	if l.typ == ir.Float {
		switch {
		case l.f < r.f:
			cmp = -1
		case l.f > r.f:
			cmp = 1
		}
	} else {
		switch {
		case l.i < r.i:
			cmp = -1
		case l.i > r.i:
			cmp = 1
		}
	}
	switch pred {
	case ir.PredEQ:
		return cmp == 0
	case ir.PredNE:
		return cmp != 0
	case ir.PredLT:
		return cmp < 0
	case ir.PredLE:
		return cmp <= 0
	case ir.PredGT:
		return cmp > 0
	case ir.PredGE:
		return cmp >= 0
	}
	return false
}

func (m *Machine) callBuiltin(f *ir.Func, args []value) (value, error) {
	if f.Name != "printf" {
		return value{}, fmt.Errorf("unknown builtin '%s'", f.Name)
	}
	if len(args) == 0 {
		return value{}, fmt.Errorf("printf called without a format string")
	}
	n, err := m.printf(args[0].s, args[1:])
	return value{typ: ir.Int, i: int64(n)}, err
}

// printf renders %i, %f, %s and %% against args and returns the number of
// bytes written.
func (m *Machine) printf(format string, args []value) (int, error) {
	var sb strings.Builder
	k := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			sb.WriteByte(c)
			continue
		}
		i++
		verb := format[i]
		if verb == '%' {
			sb.WriteByte('%')
			continue
		}
		if k >= len(args) {
			return 0, fmt.Errorf("printf: missing argument for '%%%c'", verb)
		}
		arg := args[k]
		k++
		switch verb {
		case 'i':
			sb.WriteString(strconv.FormatInt(arg.i, 10))
		case 'f':
			sb.WriteString(strconv.FormatFloat(arg.f, 'f', 6, 64))
		case 's':
			sb.WriteString(arg.s)
		default:
			return 0, fmt.Errorf("printf: unknown specifier '%%%c'", verb)
		}
	}
	return io.WriteString(m.out, sb.String())
}
