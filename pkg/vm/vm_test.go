package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"goforg/pkg/compiler"
	"goforg/pkg/vm"
)

// run compiles src and executes it, returning main's result and the
// produced output.
func run(t *testing.T, src string) (int64, string, error) {
	t.Helper()
	mod, errs, err := compiler.Compile(src, "test")
	be.Err(t, err, nil)
	if errs.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", errs.String())
	}
	var out bytes.Buffer
	ret, err := vm.New(mod, &out).Run()
	return ret, out.String(), err
}

func TestRunFactorial(t *testing.T) {
	ret, _, err := run(t, `
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
	be.Err(t, err, nil)
	be.Equal(t, ret, int64(120))
}

func TestRunNestedLoopBreak(t *testing.T) {
	_, out, err := run(t, `
fn main() -> int {
    for (let i: int = 0; i < 3; i = i + 1) {
        for (let j: int = 0; j < 10; j = j + 1) {
            if j == 2 {
                break;
            }
            printf("%i %i\n", i, j);
        }
    }
    return 0;
}
`)
	be.Err(t, err, nil)
	// break leaves only the inner loop, so the outer one still runs 3 times
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	be.Equal(t, len(lines), 6)
	be.Equal(t, lines[0], "0 0")
	be.Equal(t, lines[5], "2 1")
}

func TestRunPrintfFormatting(t *testing.T) {
	_, out, err := run(t, `
fn main() -> int {
    printf("int=%i float=%f str=%s pct=%%\n", 42, 1.5, "ok");
    return 0;
}
`)
	be.Err(t, err, nil)
	be.Equal(t, out, "int=42 float=1.500000 str=ok pct=%\n")
}

func TestRunArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"10 / 3", "3"},
		{"10 % 3", "1"},
		{"2 ^ 10", "1024"},
		{"2 ^ 0", "1"},
		{"2 ^ -1", "0"},
		{"-2 ^ 2", "-4"},
		{"2 ^ 3 ^ 2", "512"},
	}
	for _, tt := range tests {
		_, out, err := run(t, "fn main() -> int {\n    printf(\"%i\", "+tt.expr+");\n    return 0;\n}\n")
		be.Err(t, err, nil)
		be.Equal(t, out, tt.want)
	}
}

func TestRunFloatPow(t *testing.T) {
	_, out, err := run(t, `
fn main() -> int {
    printf("%f", 2.0 ^ 0.5);
    return 0;
}
`)
	be.Err(t, err, nil)
	be.Equal(t, out, "1.414214")
}

func TestRunComparisonsAndLogic(t *testing.T) {
	_, out, err := run(t, `
fn main() -> int {
    if 1 < 2 && 2 <= 2 && 3 > 2 && 2 >= 2 && 1 == 1 && 1 != 2 {
        printf("all\n");
    }
    if false || !false {
        printf("or\n");
    }
    return 0;
}
`)
	be.Err(t, err, nil)
	be.Equal(t, out, "all\nor\n")
}

func TestRunShortCircuitSkipsRight(t *testing.T) {
	_, out, err := run(t, `
fn loud(v: bool) -> bool {
    printf("eval\n");
    return v;
}

fn main() -> int {
    if false && loud(true) {
        printf("no\n");
    }
    if true || loud(true) {
        printf("yes\n");
    }
    return 0;
}
`)
	be.Err(t, err, nil)
	// loud must never run
	be.Equal(t, out, "yes\n")
}

func TestRunDivisionByZero(t *testing.T) {
	_, _, err := run(t, `
fn main() -> int {
    let x: int = 0;
    return 1 / x;
}
`)
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "division by zero"))
}

func TestRunCallDepthLimit(t *testing.T) {
	_, _, err := run(t, `
fn forever(n: int) -> int {
    return forever(n + 1);
}

fn main() -> int {
    return forever(0);
}
`)
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "call depth exceeded"))
}

func TestRunNoMain(t *testing.T) {
	_, _, err := run(t, `
fn helper() -> int {
    return 1;
}
`)
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "no 'main' function"))
}

func TestRunVoidFunction(t *testing.T) {
	_, out, err := run(t, `
fn announce(n: int) -> void {
    printf("n=%i\n", n);
}

fn main() -> int {
    announce(3);
    announce(4);
    return 0;
}
`)
	be.Err(t, err, nil)
	be.Equal(t, out, "n=3\nn=4\n")
}

func TestRunParamsAreLocal(t *testing.T) {
	ret, _, err := run(t, `
fn bump(n: int) -> int {
    n = n + 1;
    return n;
}

fn main() -> int {
    let n: int = 10;
    bump(n);
    return n;
}
`)
	be.Err(t, err, nil)
	be.Equal(t, ret, int64(10))
}
