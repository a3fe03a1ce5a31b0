package compiler

import "goforg/pkg/ir"

// Binding is what a name resolves to: the generated storage (or function)
// value and its resolved type.
type Binding struct {
	Value ir.Value
	Type  ir.Type
}

// frame is one level of the lexical scope chain. Frames reference their
// parent by arena index rather than by pointer.
type frame struct {
	records map[string]Binding
	parent  int // index into Env.frames; -1 for the global frame
	label   string
}

// Env is the hierarchical symbol table. All frames live in a single arena
// slice owned by the Env; the current scope is an index into it. Lookup walks
// parent indices outward; Define always writes into the current frame, so
// inner definitions silently shadow outer ones.
//
// The global frame is created once per compilation and persists for the whole
// unit; block and function frames are entered and left as the generator walks
// the tree.
type Env struct {
	frames []frame
	cur    int
}

// NewEnv returns an Env holding only the global frame.
func NewEnv() *Env {
	return &Env{
		frames: []frame{{records: make(map[string]Binding), parent: -1, label: "global"}},
	}
}

// EnterScope pushes a new frame whose parent is the current scope and makes
// it current. label is used for debugging only.
func (e *Env) EnterScope(label string) {
	e.frames = append(e.frames, frame{
		records: make(map[string]Binding),
		parent:  e.cur,
		label:   label,
	})
	e.cur = len(e.frames) - 1
}

// ExitScope makes the parent of the current frame current. The frame itself
// stays in the arena; it is simply no longer reachable for definitions.
func (e *Env) ExitScope() {
	if parent := e.frames[e.cur].parent; parent >= 0 {
		e.cur = parent
	}
}

// Define inserts name into the current frame, overwriting any binding at this
// frame only, and returns the stored value.
func (e *Env) Define(name string, value ir.Value, typ ir.Type) ir.Value {
	e.frames[e.cur].records[name] = Binding{Value: value, Type: typ}
	return value
}

// Lookup searches the current frame and then each ancestor in order,
// returning the first binding found.
func (e *Env) Lookup(name string) (Binding, bool) {
	for i := e.cur; i >= 0; i = e.frames[i].parent {
		if b, ok := e.frames[i].records[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// ScopeLabel returns the label of the current frame.
func (e *Env) ScopeLabel() string { return e.frames[e.cur].label }

// Depth returns how many frames deep the current scope is; the global frame
// is depth 1.
func (e *Env) Depth() int {
	n := 0
	for i := e.cur; i >= 0; i = e.frames[i].parent {
		n++
	}
	return n
}
