package compiler

import "goforg/pkg/ir"

// Compile runs the full pipeline on one compilation unit: tokenize, parse,
// then lower into a fresh IR module. The module is always returned so tools
// can inspect partial output, but it must not be executed unless
// errs.HasErrors() is false. The error return is reserved for internal
// generator failures.
func Compile(src, file string) (*ir.Module, *ErrorList, error) {
	errs := NewErrorList(file)
	b := ir.NewBuilder(file)
	err := CompileInto(src, b, errs)
	return b.Module(), errs, err
}

// CompileInto lowers src through a caller-supplied builder, so a different
// backend can receive the instruction stream directly.
func CompileInto(src string, b ir.Builder, errs *ErrorList) error {
	prog := Parse(src, errs)
	return Generate(prog, b, errs)
}
