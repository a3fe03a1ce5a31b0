package compiler

import "strconv"

// Operator binding powers, lowest to highest. Assignment sits at the bottom
// of the ladder but is consumed at statement level, so it never appears in
// the infix table. The logical operators slot between assignment and
// equality; exponentiation binds tighter than the multiplicative group and
// tighter than a leading minus on its base.
const (
	precLowest = iota
	precAssign
	precOr      // ||
	precAnd     // &&
	precEquals  // == !=
	precCompare // < > <= >=
	precSum     // + -
	precProduct // * / %
	precPower   // ^
	precPrefix  // -x !x
	precCall    // fn(...)
)

var precedences = map[TokenType]int{
	OR_OR:    precOr,
	AND_AND:  precAnd,
	EQ:       precEquals,
	NOT_EQ:   precEquals,
	LT:       precCompare,
	GT:       precCompare,
	LT_EQ:    precCompare,
	GT_EQ:    precCompare,
	PLUS:     precSum,
	MINUS:    precSum,
	ASTERISK: precProduct,
	SLASH:    precProduct,
	PERCENT:  precProduct,
	POW:      precPower,
	LPAREN:   precCall,
}

// Parser consumes the Lexer's token stream and builds a Program.
//
// Grammar:
//
//	program    = statement* EOF
//	statement  = letStmt | fnStmt | returnStmt | assignStmt | ifStmt
//	           | whileStmt | forStmt | breakStmt | continueStmt
//	           | blockStmt | exprStmt
//	letStmt    = "let" IDENT ":" TYPE "=" expression ";"
//	fnStmt     = "fn" IDENT "(" params ")" "->" TYPE blockStmt
//	forStmt    = "for" "(" letStmt expression ";" IDENT "=" expression ")" blockStmt
//	expression = Pratt climb over the precedences table; "(" resets to lowest
//
// The parser never aborts on the first error: unexpected tokens are recorded
// on the ErrorList and the parser resynchronizes at the next statement
// boundary (";", "}", or EOF), so one pass reports every independent error.
type Parser struct {
	lex  *Lexer
	errs *ErrorList

	curTok  Token
	peekTok Token
}

// NewParser returns a Parser reading from lex and reporting to errs.
func NewParser(lex *Lexer, errs *ErrorList) *Parser {
	p := &Parser{lex: lex, errs: errs}
	// Prime curTok and peekTok.
	p.next()
	p.next()
	return p
}

// Parse lexes and parses src in one call.
func Parse(src string, errs *ErrorList) *Program {
	return NewParser(NewLexer(src, errs), errs).ParseProgram()
}

func (p *Parser) next() {
	p.curTok = p.peekTok
	p.peekTok = p.lex.NextToken()
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekTok.Type]; ok {
		return prec
	}
	return precLowest
}

// expectPeek consumes the next token if it matches tt, otherwise records a
// syntax error and leaves the position unchanged.
func (p *Parser) expectPeek(tt TokenType) bool {
	if p.peekTok.Type == tt {
		p.next()
		return true
	}
	p.errorExpected(tt, p.peekTok)
	return false
}

func (p *Parser) errorExpected(want TokenType, got Token) {
	p.errs.Add(Syntax, got.Line, got.Col, "expected %s, got %s instead", want, got.Type)
}

// synchronize skips tokens until a safe statement boundary so that one bad
// statement does not poison the rest of the file.
func (p *Parser) synchronize() {
	for p.curTok.Type != SEMICOLON && p.curTok.Type != RBRACE && p.curTok.Type != EOF {
		p.next()
	}
}

// ParseProgram parses the whole unit. Statement parsers are called with
// curTok at the first token of the statement and return with curTok at its
// last token.
func (p *Parser) ParseProgram() *Program {
	prog := &Program{}
	for p.curTok.Type != EOF {
		if stmt := p.parseStatement(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
		p.next()
	}
	return prog
}

func (p *Parser) parseStatement() Stmt {
	switch p.curTok.Type {
	case LET:
		return p.parseLetStatement()
	case FN:
		return p.parseFnStatement()
	case RETURN:
		return p.parseReturnStatement()
	case IF:
		return p.parseIfStatement()
	case WHILE:
		return p.parseWhileStatement()
	case FOR:
		return p.parseForStatement()
	case BREAK:
		stmt := &BreakStmt{Line: p.curTok.Line, Col: p.curTok.Col}
		if !p.expectPeek(SEMICOLON) {
			p.synchronize()
		}
		return stmt
	case CONTINUE:
		stmt := &ContinueStmt{Line: p.curTok.Line, Col: p.curTok.Col}
		if !p.expectPeek(SEMICOLON) {
			p.synchronize()
		}
		return stmt
	case LBRACE:
		return p.parseBlockStatement()
	case IDENT:
		if p.peekTok.Type == ASSIGN {
			return p.parseAssignStatement()
		}
		return p.parseExpressionStatement()
	case ILLEGAL:
		// The lexer has already reported this character.
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() *LetStmt {
	stmt := &LetStmt{Line: p.curTok.Line, Col: p.curTok.Col}
	if !p.expectPeek(IDENT) {
		p.synchronize()
		return nil
	}
	stmt.Name = &Ident{Name: p.curTok.Literal, Line: p.curTok.Line, Col: p.curTok.Col}
	if !p.expectPeek(COLON) {
		p.synchronize()
		return nil
	}
	if !p.expectPeek(TYPE) {
		p.synchronize()
		return nil
	}
	stmt.TypeName = p.curTok.Literal
	if !p.expectPeek(ASSIGN) {
		p.synchronize()
		return nil
	}
	p.next()
	stmt.Value = p.parseExpression(precLowest)
	if !p.expectPeek(SEMICOLON) {
		p.synchronize()
	}
	return stmt
}

func (p *Parser) parseAssignStatement() *AssignStmt {
	stmt := &AssignStmt{
		Name: &Ident{Name: p.curTok.Literal, Line: p.curTok.Line, Col: p.curTok.Col},
		Line: p.curTok.Line,
		Col:  p.curTok.Col,
	}
	p.next() // the '='
	p.next()
	stmt.Value = p.parseExpression(precLowest)
	if !p.expectPeek(SEMICOLON) {
		p.synchronize()
	}
	return stmt
}

func (p *Parser) parseReturnStatement() *ReturnStmt {
	stmt := &ReturnStmt{Line: p.curTok.Line, Col: p.curTok.Col}
	if p.peekTok.Type == SEMICOLON {
		p.next()
		return stmt
	}
	p.next()
	stmt.Value = p.parseExpression(precLowest)
	if !p.expectPeek(SEMICOLON) {
		p.synchronize()
	}
	return stmt
}

func (p *Parser) parseFnStatement() *FnStmt {
	stmt := &FnStmt{Line: p.curTok.Line, Col: p.curTok.Col}
	if !p.expectPeek(IDENT) {
		p.synchronize()
		return nil
	}
	stmt.Name = &Ident{Name: p.curTok.Literal, Line: p.curTok.Line, Col: p.curTok.Col}
	if !p.expectPeek(LPAREN) {
		p.synchronize()
		return nil
	}
	params, ok := p.parseFnParams()
	if !ok {
		p.synchronize()
		return nil
	}
	stmt.Params = params
	if !p.expectPeek(ARROW) {
		p.synchronize()
		return nil
	}
	if !p.expectPeek(TYPE) {
		p.synchronize()
		return nil
	}
	stmt.ReturnType = p.curTok.Literal
	if !p.expectPeek(LBRACE) {
		p.synchronize()
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

// parseFnParams parses "(" (IDENT ":" TYPE ("," IDENT ":" TYPE)*)? ")".
// curTok must be the opening parenthesis.
func (p *Parser) parseFnParams() ([]Param, bool) {
	var params []Param
	if p.peekTok.Type == RPAREN {
		p.next()
		return params, true
	}
	for {
		if !p.expectPeek(IDENT) {
			return nil, false
		}
		param := Param{Name: p.curTok.Literal}
		if !p.expectPeek(COLON) {
			return nil, false
		}
		if !p.expectPeek(TYPE) {
			return nil, false
		}
		param.TypeName = p.curTok.Literal
		params = append(params, param)
		if p.peekTok.Type != COMMA {
			break
		}
		p.next()
	}
	if !p.expectPeek(RPAREN) {
		return nil, false
	}
	return params, true
}

// parseBlockStatement parses { statement* }. curTok must be the opening
// brace; on return curTok is the closing brace, or EOF if the brace was
// missing (reported as a single syntax error referencing end-of-file).
func (p *Parser) parseBlockStatement() *BlockStmt {
	block := &BlockStmt{Line: p.curTok.Line, Col: p.curTok.Col}
	p.next()
	for p.curTok.Type != RBRACE && p.curTok.Type != EOF {
		if stmt := p.parseStatement(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		p.next()
	}
	if p.curTok.Type == EOF {
		p.errorExpected(RBRACE, p.curTok)
	}
	return block
}

func (p *Parser) parseIfStatement() *IfStmt {
	stmt := &IfStmt{Line: p.curTok.Line, Col: p.curTok.Col}
	p.next()
	stmt.Condition = p.parseExpression(precLowest)
	if !p.expectPeek(LBRACE) {
		p.synchronize()
		return nil
	}
	stmt.Consequence = p.parseBlockStatement()
	if p.peekTok.Type == ELSE {
		p.next()
		if !p.expectPeek(LBRACE) {
			p.synchronize()
			return stmt
		}
		stmt.Alternative = p.parseBlockStatement()
	}
	return stmt
}

func (p *Parser) parseWhileStatement() *WhileStmt {
	stmt := &WhileStmt{Line: p.curTok.Line, Col: p.curTok.Col}
	p.next()
	stmt.Condition = p.parseExpression(precLowest)
	if !p.expectPeek(LBRACE) {
		p.synchronize()
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

// parseForStatement parses for (let ...; cond; ident = expr) { body }.
// The header is exactly three clauses; anything else is a malformed
// for-header.
func (p *Parser) parseForStatement() *ForStmt {
	stmt := &ForStmt{Line: p.curTok.Line, Col: p.curTok.Col}
	if !p.expectPeek(LPAREN) {
		p.synchronize()
		return nil
	}
	if p.peekTok.Type != LET {
		p.errs.Add(Syntax, p.peekTok.Line, p.peekTok.Col,
			"malformed for-header: expected a let-binding, got %s instead", p.peekTok.Type)
		p.synchronize()
		return nil
	}
	p.next()
	stmt.Init = p.parseLetStatement() // consumes the first ';'
	if stmt.Init == nil {
		p.synchronize()
		return nil
	}

	p.next()
	stmt.Condition = p.parseExpression(precLowest)
	if p.peekTok.Type != SEMICOLON {
		p.errs.Add(Syntax, p.peekTok.Line, p.peekTok.Col,
			"malformed for-header: expected %s after the condition, got %s instead",
			SEMICOLON, p.peekTok.Type)
		p.synchronize()
		return nil
	}
	p.next()

	if p.peekTok.Type != IDENT {
		p.errs.Add(Syntax, p.peekTok.Line, p.peekTok.Col,
			"malformed for-header: expected an assignment, got %s instead", p.peekTok.Type)
		p.synchronize()
		return nil
	}
	p.next()
	post := &AssignStmt{
		Name: &Ident{Name: p.curTok.Literal, Line: p.curTok.Line, Col: p.curTok.Col},
		Line: p.curTok.Line,
		Col:  p.curTok.Col,
	}
	if !p.expectPeek(ASSIGN) {
		p.synchronize()
		return nil
	}
	p.next()
	post.Value = p.parseExpression(precLowest)
	stmt.Post = post

	if !p.expectPeek(RPAREN) {
		p.synchronize()
		return nil
	}
	if !p.expectPeek(LBRACE) {
		p.synchronize()
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseExpressionStatement() *ExprStmt {
	stmt := &ExprStmt{Line: p.curTok.Line, Col: p.curTok.Col}
	stmt.Expr = p.parseExpression(precLowest)
	if !p.expectPeek(SEMICOLON) {
		p.synchronize()
	}
	return stmt
}

// parseExpression implements precedence climbing: having parsed a prefix, it
// keeps consuming infix operators that bind tighter than minPrec, recursing
// into the right-hand operand at the operator's own precedence (one lower for
// the right-associative ^).
func (p *Parser) parseExpression(minPrec int) Expr {
	left := p.parsePrefix()

	for p.peekTok.Type != SEMICOLON && minPrec < p.peekPrecedence() {
		if p.peekTok.Type == LPAREN {
			p.next()
			left = p.parseCallExpr(left)
			continue
		}
		p.next()
		left = p.parseInfixExpr(left)
	}
	return left
}

func (p *Parser) parsePrefix() Expr {
	tok := p.curTok
	switch tok.Type {
	case INT:
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errs.Add(Syntax, tok.Line, tok.Col, "could not parse %q as an integer", tok.Literal)
		}
		return &IntegerLit{Value: v, Line: tok.Line, Col: tok.Col}

	case FLOAT:
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errs.Add(Syntax, tok.Line, tok.Col, "could not parse %q as a float", tok.Literal)
		}
		return &FloatLit{Value: v, Line: tok.Line, Col: tok.Col}

	case STRING:
		return &StringLit{Value: tok.Literal, Line: tok.Line, Col: tok.Col}

	case TRUE, FALSE:
		return &BooleanLit{Value: tok.Type == TRUE, Line: tok.Line, Col: tok.Col}

	case IDENT:
		return &Ident{Name: tok.Literal, Line: tok.Line, Col: tok.Col}

	case MINUS, BANG:
		expr := &PrefixExpr{Op: tok.Literal, Line: tok.Line, Col: tok.Col}
		p.next()
		// The operand binds below ^ so that -base^exp reads -(base^exp).
		expr.Right = p.parseExpression(precProduct)
		return expr

	case LPAREN:
		p.next()
		expr := p.parseExpression(precLowest) // parens reset precedence
		p.expectPeek(RPAREN)
		return expr

	default:
		p.errs.Add(Syntax, tok.Line, tok.Col, "expected an expression, got %s instead", tok.Type)
		// Explicit placeholder: downstream consumers never see a hole.
		return &Ident{Name: "<error>", Line: tok.Line, Col: tok.Col}
	}
}

func (p *Parser) parseInfixExpr(left Expr) Expr {
	tok := p.curTok
	expr := &InfixExpr{Op: tok.Literal, Left: left, Line: tok.Line, Col: tok.Col}
	prec := precedences[tok.Type]
	if tok.Type == POW {
		prec-- // right-associative
	}
	p.next()
	expr.Right = p.parseExpression(prec)
	return expr
}

// parseCallExpr parses name(args). curTok is the opening parenthesis and
// left the callee expression, which must be a bare identifier.
func (p *Parser) parseCallExpr(left Expr) Expr {
	fn, ok := left.(*Ident)
	if !ok {
		p.errs.Add(Syntax, p.curTok.Line, p.curTok.Col, "expected a function name before '('")
		fn = &Ident{Name: "<error>", Line: p.curTok.Line, Col: p.curTok.Col}
	}
	call := &CallExpr{Fn: fn, Line: p.curTok.Line, Col: p.curTok.Col}

	if p.peekTok.Type == RPAREN {
		p.next()
		return call
	}
	for {
		p.next()
		call.Args = append(call.Args, p.parseExpression(precLowest))
		if p.peekTok.Type != COMMA {
			break
		}
		p.next()
	}
	p.expectPeek(RPAREN)
	return call
}
