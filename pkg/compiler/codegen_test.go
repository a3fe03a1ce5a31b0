package compiler

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"goforg/pkg/ir"
)

func compileSrc(t *testing.T, src string) (*ir.Module, *ErrorList) {
	t.Helper()
	mod, errs, err := Compile(src, "test")
	be.Err(t, err, nil)
	return mod, errs
}

// wellFormed checks the basic-block discipline: every block ends in exactly
// one terminator and has none before it.
func wellFormed(t *testing.T, mod *ir.Module) {
	t.Helper()
	for _, f := range mod.Funcs {
		for _, blk := range f.Blocks {
			if len(blk.Instrs) == 0 {
				t.Errorf("%s: block %s is empty", f.Name, blk.Name)
				continue
			}
			for i, in := range blk.Instrs {
				last := i == len(blk.Instrs)-1
				if in.IsTerminator() != last {
					t.Errorf("%s: block %s has a terminator problem at instr %d",
						f.Name, blk.Name, i)
				}
			}
		}
	}
}

func TestGenFloatIntoInt(t *testing.T) {
	_, errs := compileSrc(t, `
fn main() -> int {
    let x: int = 3.14;
    return 0;
}
`)
	// exactly one Type error, and no Internal error alongside it
	be.Equal(t, errs.CountOf(TypeError), 1)
	be.Equal(t, errs.CountOf(Internal), 0)
	be.Equal(t, errs.Count(), 1)
	if !strings.Contains(errs.String(), "cannot assign float to 'x' declared as int") {
		t.Errorf("unexpected diagnostics:\n%s", errs.String())
	}
}

func TestGenUndefinedVariable(t *testing.T) {
	_, errs := compileSrc(t, `
fn main() -> int {
    return y;
}
`)
	be.Equal(t, errs.CountOf(Semantic), 1)
	if !strings.Contains(errs.String(), "undefined variable 'y'") {
		t.Errorf("unexpected diagnostics:\n%s", errs.String())
	}
}

func TestGenBreakContinueOutsideLoop(t *testing.T) {
	_, errs := compileSrc(t, `
fn main() -> int {
    break;
    continue;
    return 0;
}
`)
	be.Equal(t, errs.CountOf(Semantic), 2)
	all := errs.String()
	be.True(t, strings.Contains(all, "break used outside of a loop"))
	be.True(t, strings.Contains(all, "continue used outside of a loop"))
}

func TestGenFactorial(t *testing.T) {
	mod, errs := compileSrc(t, `
fn factorial(n: int) -> int {
    if n <= 1 {
        return 1;
    } else {
        return n * factorial(n - 1);
    }
}

fn main() -> int {
    return factorial(5);
}
`)
	be.Equal(t, errs.HasErrors(), false)
	wellFormed(t, mod)

	fact := mod.Func("factorial")
	be.True(t, fact != nil)
	be.Equal(t, fact.Ret, ir.Int)
	be.Equal(t, len(fact.Params), 1)
	be.True(t, mod.Func("main") != nil)
}

func TestGenMutualRecursion(t *testing.T) {
	mod, errs := compileSrc(t, `
fn isEven(n: int) -> bool {
    if n == 0 {
        return true;
    }
    return isOdd(n - 1);
}

fn isOdd(n: int) -> bool {
    if n == 0 {
        return false;
    }
    return isEven(n - 1);
}

fn main() -> int {
    if isEven(10) {
        return 1;
    }
    return 0;
}
`)
	be.Equal(t, errs.HasErrors(), false)
	wellFormed(t, mod)
}

// A function whose body can fall off the end gets an implicit return of the
// zero value for its type.
func TestGenImplicitReturn(t *testing.T) {
	mod, errs := compileSrc(t, `
fn nothing() -> void {
    let x: int = 1;
}

fn number() -> int {
    let x: int = 1;
}

fn main() -> int {
    nothing();
    return number();
}
`)
	be.Equal(t, errs.HasErrors(), false)
	wellFormed(t, mod)

	for _, name := range []string{"nothing", "number"} {
		f := mod.Func(name)
		last := f.Blocks[len(f.Blocks)-1]
		be.Equal(t, last.Instrs[len(last.Instrs)-1].Op, ir.OpRet)
	}
}

// Both arms returning must not produce a block with two terminators.
func TestGenIfBothArmsTerminate(t *testing.T) {
	mod, errs := compileSrc(t, `
fn pick(flag: bool) -> int {
    if flag {
        return 1;
    } else {
        return 2;
    }
}

fn main() -> int {
    return pick(true);
}
`)
	be.Equal(t, errs.HasErrors(), false)
	wellFormed(t, mod)
}

func TestGenLoopsWellFormed(t *testing.T) {
	mod, errs := compileSrc(t, `
fn main() -> int {
    let total: int = 0;
    for (let i: int = 0; i < 3; i = i + 1) {
        for (let j: int = 0; j < 10; j = j + 1) {
            if j == 2 {
                break;
            }
            if j == 1 {
                continue;
            }
            total = total + 1;
        }
    }
    while total > 0 {
        total = total - 1;
        break;
    }
    return total;
}
`)
	be.Equal(t, errs.HasErrors(), false)
	wellFormed(t, mod)
}

func TestGenShortCircuitBlocks(t *testing.T) {
	mod, errs := compileSrc(t, `
fn main() -> int {
    let x: int = 0;
    if x != 0 && 10 / x > 1 {
        return 1;
    }
    return 0;
}
`)
	be.Equal(t, errs.HasErrors(), false)
	wellFormed(t, mod)

	// the right operand must live in its own block
	found := false
	for _, blk := range mod.Func("main").Blocks {
		if strings.HasPrefix(blk.Name, "logic.rhs") {
			found = true
		}
	}
	be.True(t, found)
}

func TestGenConditionMustBeBool(t *testing.T) {
	_, errs := compileSrc(t, `
fn main() -> int {
    if 1 {
        return 1;
    }
    return 0;
}
`)
	be.Equal(t, errs.CountOf(TypeError), 1)
	be.True(t, strings.Contains(errs.String(), "if condition must be bool, got int"))
}

func TestGenReturnTypeMismatch(t *testing.T) {
	_, errs := compileSrc(t, `
fn main() -> int {
    return 1.5;
}
`)
	be.Equal(t, errs.CountOf(TypeError), 1)
	be.True(t, strings.Contains(errs.String(), "cannot return float from function returning int"))
}

func TestGenCallArityMismatch(t *testing.T) {
	_, errs := compileSrc(t, `
fn add(a: int, b: int) -> int {
    return a + b;
}

fn main() -> int {
    return add(1);
}
`)
	be.Equal(t, errs.CountOf(Semantic), 1)
	be.True(t, strings.Contains(errs.String(), "function 'add' expects 2 argument(s), got 1"))
}

func TestGenCallArgumentTypeMismatch(t *testing.T) {
	_, errs := compileSrc(t, `
fn double(n: int) -> int {
    return n * 2;
}

fn main() -> int {
    return double(1.5);
}
`)
	be.Equal(t, errs.CountOf(TypeError), 1)
	be.True(t, strings.Contains(errs.String(), "argument 1 to 'double' must be int, got float"))
}

func TestGenUndefinedFunction(t *testing.T) {
	_, errs := compileSrc(t, `
fn main() -> int {
    return missing(1);
}
`)
	be.Equal(t, errs.CountOf(Semantic), 1)
	be.True(t, strings.Contains(errs.String(), "undefined function 'missing'"))
}

func TestGenDuplicateFunction(t *testing.T) {
	_, errs := compileSrc(t, `
fn twice() -> int { return 1; }
fn twice() -> int { return 2; }
fn main() -> int { return twice(); }
`)
	be.Equal(t, errs.CountOf(Semantic), 1)
	be.True(t, strings.Contains(errs.String(), "function 'twice' is already defined"))
}

func TestGenTopLevelStatement(t *testing.T) {
	_, errs := compileSrc(t, `
let x: int = 1;
fn main() -> int { return 0; }
`)
	be.Equal(t, errs.CountOf(Semantic), 1)
	be.True(t, strings.Contains(errs.String(), "only function declarations are allowed at the top level"))
}

func TestGenPrintfDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"arity", `printf("%i %i\n", 1);`, "format string needs 2 argument(s), got 1"},
		{"argument type", `printf("%i\n", 1.5);`, "format specifier 1 expects int, got float"},
		{"unknown specifier", `printf("%d\n", 1);`, "unknown format specifier '%d'"},
		{"non-literal format", `let f: str = "%i"; printf(f, 1);`, "printf format must be a string literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := compileSrc(t, "fn main() -> int {\n"+tt.body+"\nreturn 0;\n}\n")
			be.True(t, errs.CountOf(Semantic) >= 1)
			if !strings.Contains(errs.String(), tt.want) {
				t.Errorf("diagnostics missing %q:\n%s", tt.want, errs.String())
			}
		})
	}
}

// One mistake must not stop the generator from finding later, independent
// mistakes.
func TestGenCollectsMultipleErrors(t *testing.T) {
	_, errs := compileSrc(t, `
fn main() -> int {
    let x: int = 3.14;
    let y: float = "nope";
    return z;
}
`)
	be.Equal(t, errs.CountOf(TypeError), 2)
	be.Equal(t, errs.CountOf(Semantic), 1)
	be.Equal(t, errs.CountOf(Internal), 0)
}

func TestGenTypeMismatchInfix(t *testing.T) {
	_, errs := compileSrc(t, `
fn main() -> int {
    let x: int = 1 + 2.5;
    return x;
}
`)
	be.True(t, errs.CountOf(TypeError) >= 1)
	be.True(t, strings.Contains(errs.String(), "type mismatch: int + float"))
}

func TestGenVariadicPrintfDeclared(t *testing.T) {
	mod, errs := compileSrc(t, `
fn main() -> int {
    printf("x = %i\n", 42);
    return 0;
}
`)
	be.Equal(t, errs.HasErrors(), false)
	p := mod.Func("printf")
	be.True(t, p != nil)
	be.True(t, p.Variadic)
	be.True(t, p.Builtin)
	be.Equal(t, len(p.Blocks), 0)
}
