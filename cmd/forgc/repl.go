package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"goforg/pkg/compiler"
	"goforg/pkg/vm"
)

// replCmd runs the interactive session. Function definitions accumulate;
// anything else is wrapped into a throwaway main and executed against the
// definitions entered so far.
func replCmd() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("forg repl; enter statements or fn definitions, :quit to exit")
	var defs []string
	for {
		input, err := line.Prompt(">> ")
		if err != nil { // io.EOF or liner.ErrPromptAborted
			fmt.Println()
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case ":quit", ":q", "exit":
			return nil
		case ":reset":
			defs = nil
			fmt.Println("definitions cleared")
			continue
		case ":defs":
			for _, d := range defs {
				fmt.Println(d)
			}
			continue
		}

		if strings.HasPrefix(input, "fn ") {
			input = readBalanced(line, input)
			if checkDef(append(append([]string{}, defs...), input)) {
				defs = append(defs, input)
			}
			continue
		}
		evalLine(defs, input)
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".forgc_history"
	}
	return filepath.Join(home, ".forgc_history")
}

// readBalanced keeps prompting until the braces opened on the first line are
// all closed, so multi-line function bodies work.
func readBalanced(line *liner.State, first string) string {
	depth := strings.Count(first, "{") - strings.Count(first, "}")
	parts := []string{first}
	for depth > 0 {
		more, err := line.Prompt(".. ")
		if err != nil {
			break
		}
		parts = append(parts, more)
		depth += strings.Count(more, "{") - strings.Count(more, "}")
	}
	return strings.Join(parts, "\n")
}

// checkDef compiles the accumulated definitions plus an empty main, purely
// to validate the newest one.
func checkDef(defs []string) bool {
	src := strings.Join(defs, "\n") + "\nfn main() -> int { return 0; }\n"
	_, errs, err := compiler.Compile(src, "repl")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	if errs.HasErrors() {
		fmt.Fprintln(os.Stderr, errs.String())
		return false
	}
	return true
}

func evalLine(defs []string, input string) {
	if !strings.HasSuffix(input, ";") && !strings.HasSuffix(input, "}") {
		input += ";"
	}
	src := strings.Join(defs, "\n") + "\nfn main() -> int {\n" + input + "\nreturn 0;\n}\n"
	mod, errs, err := compiler.Compile(src, "repl")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if errs.HasErrors() {
		fmt.Fprintln(os.Stderr, errs.String())
		return
	}
	var out bytes.Buffer
	if _, err := vm.New(mod, &out).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Print(out.String())
}
