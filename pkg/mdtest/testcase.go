// Package mdtest extracts executable test cases from markdown files. A case
// starts at a heading of the form "Test: <name>" and collects the fenced
// code blocks that follow it: a "forg" block holds the program, an "output"
// block the expected stdout, and an "errors" block the expected diagnostics
// (one substring per line).
package mdtest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type Case struct {
	Name   string
	File   string
	Source string
	Output string
	Errors []string
}

// ExtractCases parses markdown and returns the cases it declares, in
// document order.
func ExtractCases(src []byte, file string) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var cases []Case
	var cur *Case
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			title := string(n.Text(src))
			if name, ok := strings.CutPrefix(title, "Test: "); ok {
				cases = append(cases, Case{Name: name, File: file})
				cur = &cases[len(cases)-1]
			} else {
				cur = nil
			}
		case *ast.FencedCodeBlock:
			if cur == nil {
				return ast.WalkContinue, nil
			}
			body := blockText(n, src)
			switch string(n.Language(src)) {
			case "forg":
				cur.Source = body
			case "output":
				cur.Output = body
			case "errors":
				cur.Errors = splitLines(body)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	for _, c := range cases {
		if c.Source == "" {
			return nil, fmt.Errorf("%s: case %q has no forg block", file, c.Name)
		}
	}
	return cases, nil
}

// LoadDir reads every .md file under dir and concatenates their cases,
// sorted by file name for stable ordering.
func LoadDir(dir string) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var cases []Case
	for _, name := range files {
		src, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		cs, err := ExtractCases(src, name)
		if err != nil {
			return nil, err
		}
		cases = append(cases, cs...)
	}
	return cases, nil
}

func blockText(n *ast.FencedCodeBlock, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return sb.String()
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
