package mdtest_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"goforg/pkg/compiler"
	"goforg/pkg/mdtest"
	"goforg/pkg/vm"
)

func TestExtractCases(t *testing.T) {
	src := []byte("# Doc\n\n## Test: adds\n\n```forg\nfn main() -> int { return 0; }\n```\n\n```output\nok\n```\n")
	cases, err := mdtest.ExtractCases(src, "doc.md")
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 1)
	be.Equal(t, cases[0].Name, "adds")
	be.Equal(t, cases[0].Source, "fn main() -> int { return 0; }\n")
	be.Equal(t, cases[0].Output, "ok\n")
}

func TestExtractCasesMissingSource(t *testing.T) {
	src := []byte("## Test: empty\n\n```output\nnope\n```\n")
	_, err := mdtest.ExtractCases(src, "doc.md")
	be.Err(t, err)
}

// TestCorpus compiles and runs every case under testdata. Cases with an
// errors block must produce each listed diagnostic and are never executed;
// all others must compile cleanly and print the expected output.
func TestCorpus(t *testing.T) {
	cases, err := mdtest.LoadDir("testdata")
	be.Err(t, err, nil)
	be.True(t, len(cases) > 0)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			mod, errs, ierr := compiler.Compile(tc.Source, tc.File)
			be.Err(t, ierr, nil)

			if len(tc.Errors) > 0 {
				be.True(t, errs.HasErrors())
				all := errs.String()
				for _, want := range tc.Errors {
					if !strings.Contains(all, want) {
						t.Errorf("diagnostics missing %q:\n%s", want, all)
					}
				}
				return
			}

			if errs.HasErrors() {
				t.Fatalf("unexpected diagnostics:\n%s", errs.String())
			}
			var out bytes.Buffer
			_, err := vm.New(mod, &out).Run()
			be.Err(t, err, nil)
			be.Equal(t, out.String(), tc.Output)
		})
	}
}
