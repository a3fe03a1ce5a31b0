package compiler

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestCompilerErrorFormat(t *testing.T) {
	e := CompilerError{Category: TypeError, Message: "cannot assign float to 'x'", Line: 3, Col: 9}
	be.Equal(t, e.Error(), "Type Error at 3:9: cannot assign float to 'x'")

	e.File = "main.forg"
	be.Equal(t, e.Error(), "Type Error at main.forg:3:9: cannot assign float to 'x'")
}

func TestCompilerErrorSuggestion(t *testing.T) {
	e := CompilerError{
		Category:   Lexical,
		Message:    "unterminated string literal",
		Line:       1,
		Col:        5,
		Suggestion: "add a closing double quote",
	}
	out := e.Error()
	if !strings.Contains(out, "Suggestion: add a closing double quote") {
		t.Errorf("missing suggestion in %q", out)
	}
}

func TestErrorListOrdering(t *testing.T) {
	errs := NewErrorList("test")
	errs.Add(Syntax, 1, 1, "first")
	errs.Add(Semantic, 2, 1, "second")
	errs.Add(TypeError, 3, 1, "third")

	be.Equal(t, errs.Count(), 3)
	got := errs.Errors()
	be.Equal(t, got[0].Message, "first")
	be.Equal(t, got[1].Message, "second")
	be.Equal(t, got[2].Message, "third")
}

func TestErrorListCountOf(t *testing.T) {
	errs := NewErrorList("test")
	be.Equal(t, errs.HasErrors(), false)

	errs.Add(Syntax, 1, 1, "a")
	errs.Add(Syntax, 1, 2, "b")
	errs.Add(TypeError, 1, 3, "c")

	be.True(t, errs.HasErrors())
	be.Equal(t, errs.CountOf(Syntax), 2)
	be.Equal(t, errs.CountOf(TypeError), 1)
	be.Equal(t, errs.CountOf(Runtime), 0)
}

func TestCategoryNames(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{Lexical, "Lexical Error"},
		{Syntax, "Syntax Error"},
		{Semantic, "Semantic Error"},
		{TypeError, "Type Error"},
		{Runtime, "Runtime Error"},
		{Internal, "Internal Compiler Error"},
	}
	for _, tt := range tests {
		be.Equal(t, tt.cat.String(), tt.want)
	}
}
