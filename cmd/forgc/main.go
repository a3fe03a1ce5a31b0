// Command forgc compiles and runs Forg programs.
//
//	forgc run file.forg        compile and execute
//	forgc check file.forg      compile only, report diagnostics
//	forgc build [-o out] file  compile and write the IR listing
//	forgc eval 'stmt'          compile and execute a single statement
//	forgc repl                 interactive session
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"goforg/pkg/compiler"
	"goforg/pkg/ir"
	"goforg/pkg/vm"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: forgc <command> [arguments]

commands:
  run <file>            compile and execute a program
  check <file>          compile a program and report diagnostics
  build [-o out] <file> compile a program and write its IR listing
  eval <statement>      compile and execute a single statement
  repl                  start an interactive session
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "check":
		err = checkCmd(os.Args[2:])
	case "build":
		err = buildCmd(os.Args[2:])
	case "eval":
		err = evalCmd(os.Args[2:])
	case "repl":
		err = replCmd()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "forgc: unknown command %q\n", os.Args[1])
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "forgc: %v\n", err)
		os.Exit(1)
	}
}

// compileFile runs the pipeline on one file and prints any diagnostics.
// The returned module is only safe to execute when clean is true.
func compileFile(path string) (*ir.Module, bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	mod, errs, err := compiler.Compile(string(src), path)
	if err != nil {
		return nil, false, err
	}
	if errs.HasErrors() {
		fmt.Fprintln(os.Stderr, errs.String())
		return mod, false, nil
	}
	return mod, true, nil
}

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("run expects exactly one source file")
	}
	mod, clean, err := compileFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if !clean {
		os.Exit(1)
	}
	ret, err := vm.New(mod, os.Stdout).Run()
	if err != nil {
		return err
	}
	if ret != 0 {
		os.Exit(int(ret & 0x7f))
	}
	return nil
}

func checkCmd(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("check expects exactly one source file")
	}
	_, clean, err := compileFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if !clean {
		os.Exit(1)
	}
	fmt.Println("ok")
	return nil
}

func buildCmd(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	out := fs.String("o", "", "write the IR listing to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("build expects exactly one source file")
	}
	mod, clean, err := compileFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if !clean {
		os.Exit(1)
	}
	listing := mod.String()
	if *out == "" {
		fmt.Print(listing)
		return nil
	}
	if !strings.HasSuffix(listing, "\n") {
		listing += "\n"
	}
	return os.WriteFile(*out, []byte(listing), 0o644)
}

// evalCmd wraps its arguments into a throwaway main and executes it, the
// same trick the repl uses for one-off statements.
func evalCmd(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("eval expects a statement to execute")
	}
	input := strings.TrimSpace(strings.Join(args, " "))
	if !strings.HasSuffix(input, ";") && !strings.HasSuffix(input, "}") {
		input += ";"
	}
	src := "fn main() -> int {\n" + input + "\nreturn 0;\n}\n"
	mod, errs, err := compiler.Compile(src, "eval")
	if err != nil {
		return err
	}
	if errs.HasErrors() {
		fmt.Fprintln(os.Stderr, errs.String())
		os.Exit(1)
	}
	_, err = vm.New(mod, os.Stdout).Run()
	return err
}
