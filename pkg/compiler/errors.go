package compiler

import (
	"fmt"
	"strings"
)

// Category classifies a compiler diagnostic.
type Category int

const (
	Lexical Category = iota
	Syntax
	Semantic
	TypeError
	Runtime
	Internal
)

var categoryNames = [...]string{
	Lexical:   "Lexical Error",
	Syntax:    "Syntax Error",
	Semantic:  "Semantic Error",
	TypeError: "Type Error",
	Runtime:   "Runtime Error",
	Internal:  "Internal Compiler Error",
}

func (c Category) String() string {
	if int(c) >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// CompilerError is a single user-facing diagnostic. Diagnostics are collected,
// never raised: every phase keeps going past recoverable errors so one pass
// reports as many independent problems as possible.
type CompilerError struct {
	Category   Category
	Message    string
	Line       int
	Col        int
	File       string // optional source file name
	Suggestion string // optional suggested fix
}

func (e CompilerError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s at ", e.Category)
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteByte(':')
	}
	fmt.Fprintf(&sb, "%d:%d: %s", e.Line, e.Col, e.Message)
	if e.Suggestion != "" {
		fmt.Fprintf(&sb, "\n  Suggestion: %s", e.Suggestion)
	}
	return sb.String()
}

// ErrorList is an ordered diagnostic collector. One list is created per
// compilation unit and threaded by pointer through the lexer, parser, and code
// generator; there is no process-wide accumulator.
type ErrorList struct {
	errors []CompilerError
	file   string
}

// NewErrorList returns an empty collector. file may be "" for inline sources.
func NewErrorList(file string) *ErrorList {
	return &ErrorList{file: file}
}

// Add records a diagnostic at the given position.
func (el *ErrorList) Add(cat Category, line, col int, format string, args ...any) {
	el.errors = append(el.errors, CompilerError{
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Col:      col,
		File:     el.file,
	})
}

// AddWithSuggestion records a diagnostic carrying a suggested fix.
func (el *ErrorList) AddWithSuggestion(cat Category, line, col int, suggestion, format string, args ...any) {
	el.errors = append(el.errors, CompilerError{
		Category:   cat,
		Message:    fmt.Sprintf(format, args...),
		Line:       line,
		Col:        col,
		File:       el.file,
		Suggestion: suggestion,
	})
}

// HasErrors reports whether any diagnostic has been recorded.
func (el *ErrorList) HasErrors() bool { return len(el.errors) > 0 }

// Count returns the number of recorded diagnostics.
func (el *ErrorList) Count() int { return len(el.errors) }

// Errors returns the recorded diagnostics in collection order.
func (el *ErrorList) Errors() []CompilerError { return el.errors }

// CountOf returns how many diagnostics of the given category were recorded.
func (el *ErrorList) CountOf(cat Category) int {
	n := 0
	for _, e := range el.errors {
		if e.Category == cat {
			n++
		}
	}
	return n
}

// String returns all diagnostics, one per line, in collection order.
func (el *ErrorList) String() string {
	var sb strings.Builder
	for _, e := range el.errors {
		sb.WriteString(e.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}
