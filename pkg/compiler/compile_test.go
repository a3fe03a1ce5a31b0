package compiler

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"goforg/pkg/ir"
)

func TestCompilePipeline(t *testing.T) {
	mod, errs, err := Compile(`
fn main() -> int {
    printf("hello\n");
    return 0;
}
`, "hello.forg")
	be.Err(t, err, nil)
	be.Equal(t, errs.HasErrors(), false)
	be.True(t, mod.Func("main") != nil)
	be.True(t, strings.Contains(mod.String(), "@str.0"))
}

// Errors from every phase accumulate on the same list, tagged with the file.
func TestCompileCollectsAllPhases(t *testing.T) {
	_, errs, err := Compile(`
fn main() -> int {
    let a: int = @;
    let x int = 1;
    return y;
}
`, "bad.forg")
	be.Err(t, err, nil)
	be.True(t, errs.CountOf(Lexical) >= 1)
	be.True(t, errs.CountOf(Syntax) >= 1)
	be.True(t, errs.CountOf(Semantic) >= 1)
	be.True(t, strings.Contains(errs.String(), "bad.forg:"))
}

func TestCompileInto(t *testing.T) {
	errs := NewErrorList("unit.forg")
	b := ir.NewBuilder("unit")
	err := CompileInto("fn main() -> int { return 7; }", b, errs)
	be.Err(t, err, nil)
	be.Equal(t, errs.HasErrors(), false)
	be.Equal(t, b.Module().Name, "unit")
}
