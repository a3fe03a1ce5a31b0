package compiler

import (
	"fmt"
	"strings"
)

// Print renders a Program back to parseable source text in a canonical layout:
// four-space indentation, one statement per line, parenthesization taken from
// the AST shape. Parsing the output again yields a structurally equal Program.
func Print(p *Program) string {
	var sb strings.Builder
	for _, s := range p.Stmts {
		printStmt(&sb, s, 0)
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("    ", depth))
}

func printStmt(sb *strings.Builder, s Stmt, depth int) {
	switch n := s.(type) {
	case *LetStmt:
		indent(sb, depth)
		fmt.Fprintf(sb, "let %s: %s = %s;\n", n.Name, n.TypeName, printExpr(n.Value))

	case *AssignStmt:
		indent(sb, depth)
		fmt.Fprintf(sb, "%s = %s;\n", n.Name, printExpr(n.Value))

	case *ReturnStmt:
		indent(sb, depth)
		if n.Value == nil {
			sb.WriteString("return;\n")
		} else {
			fmt.Fprintf(sb, "return %s;\n", printExpr(n.Value))
		}

	case *FnStmt:
		indent(sb, depth)
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.String()
		}
		fmt.Fprintf(sb, "fn %s(%s) -> %s {\n", n.Name, strings.Join(params, ", "), n.ReturnType)
		printBlock(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString("}\n")

	case *BlockStmt:
		indent(sb, depth)
		sb.WriteString("{\n")
		printBlock(sb, n, depth+1)
		indent(sb, depth)
		sb.WriteString("}\n")

	case *IfStmt:
		indent(sb, depth)
		fmt.Fprintf(sb, "if %s {\n", printExpr(n.Condition))
		printBlock(sb, n.Consequence, depth+1)
		indent(sb, depth)
		if n.Alternative != nil {
			sb.WriteString("} else {\n")
			printBlock(sb, n.Alternative, depth+1)
			indent(sb, depth)
		}
		sb.WriteString("}\n")

	case *WhileStmt:
		indent(sb, depth)
		fmt.Fprintf(sb, "while %s {\n", printExpr(n.Condition))
		printBlock(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString("}\n")

	case *ForStmt:
		indent(sb, depth)
		fmt.Fprintf(sb, "for (let %s: %s = %s; %s; %s = %s) {\n",
			n.Init.Name, n.Init.TypeName, printExpr(n.Init.Value),
			printExpr(n.Condition),
			n.Post.Name, printExpr(n.Post.Value))
		printBlock(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString("}\n")

	case *BreakStmt:
		indent(sb, depth)
		sb.WriteString("break;\n")

	case *ContinueStmt:
		indent(sb, depth)
		sb.WriteString("continue;\n")

	case *ExprStmt:
		indent(sb, depth)
		fmt.Fprintf(sb, "%s;\n", printExpr(n.Expr))
	}
}

func printBlock(sb *strings.Builder, b *BlockStmt, depth int) {
	for _, s := range b.Stmts {
		printStmt(sb, s, depth)
	}
}

func printExpr(e Expr) string {
	switch n := e.(type) {
	case *Ident:
		return n.Name
	case *IntegerLit:
		return n.String()
	case *FloatLit:
		return n.String()
	case *StringLit:
		return n.String()
	case *BooleanLit:
		return n.String()
	case *PrefixExpr:
		return fmt.Sprintf("(%s%s)", n.Op, printExpr(n.Right))
	case *InfixExpr:
		return fmt.Sprintf("(%s %s %s)", printExpr(n.Left), n.Op, printExpr(n.Right))
	case *CallExpr:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = printExpr(a)
		}
		return fmt.Sprintf("%s(%s)", n.Fn, strings.Join(args, ", "))
	}
	return ""
}
