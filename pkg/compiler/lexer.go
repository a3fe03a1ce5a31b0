package compiler

import "unicode"

// Lexer holds all mutable state for a single scanning pass over src.
// It produces a lazy, forward-only token stream via NextToken; restarting
// requires constructing a new Lexer from the original text. Lexical problems
// are recorded on the injected ErrorList and scanning continues, so a single
// pass surfaces every independent lexical error.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based column on line
	errs *ErrorList
}

// NewLexer returns a Lexer over src reporting lexical errors to errs.
func NewLexer(src string, errs *ErrorList) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1, errs: errs}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// scanIdent collects a full identifier, keyword, or type-name token.
// The first character (letter) must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	return Token{Type: LookupIdent(lexeme), Literal: lexeme, Line: line, Col: col}
}

// scanNumber collects a maximal digit run with at most one decimal point.
// A second decimal point is a lexical error; the token produced up to that
// point is returned and scanning resumes at the extra dot.
func (l *Lexer) scanNumber() Token {
	line, col := l.line, l.col
	start := l.pos
	sawDot := false
	for l.pos < len(l.src) {
		r := l.peek()
		if unicode.IsDigit(r) {
			l.advance()
			continue
		}
		if r == '.' && unicode.IsDigit(l.peek2()) {
			if sawDot {
				l.errs.Add(Lexical, l.line, l.col, "number contains more than one decimal point")
				// swallow the malformed tail so it does not cascade
				for l.pos < len(l.src) && (unicode.IsDigit(l.peek()) || l.peek() == '.') {
					l.advance()
				}
				break
			}
			sawDot = true
			l.advance()
			continue
		}
		break
	}
	lexeme := string(l.src[start:l.pos])
	tt := INT
	if sawDot {
		tt = FLOAT
	}
	return Token{Type: tt, Literal: lexeme, Line: line, Col: col}
}

// scanString collects a string literal "..." honoring \n, \t, \", and \\
// escapes. Reaching end-of-input before the closing quote is a lexical error.
func (l *Lexer) scanString() Token {
	line, col := l.line, l.col
	l.advance() // consume opening "
	var val []rune

	for l.pos < len(l.src) {
		r := l.peek()
		if r == '"' {
			l.advance() // consume closing "
			return Token{Type: STRING, Literal: string(val), Line: line, Col: col}
		}
		if r == '\\' {
			l.advance() // consume backslash
			switch next := l.peek(); next {
			case 'n':
				val = append(val, '\n')
			case 't':
				val = append(val, '\t')
			case '"':
				val = append(val, '"')
			case '\\':
				val = append(val, '\\')
			default:
				l.errs.Add(Lexical, l.line, l.col, "unknown escape sequence \\%c", next)
				val = append(val, next)
			}
			l.advance()
			continue
		}
		val = append(val, r)
		l.advance()
	}

	l.errs.AddWithSuggestion(Lexical, line, col,
		"add a closing double quote", "unterminated string literal")
	return Token{Type: STRING, Literal: string(val), Line: line, Col: col}
}

// NextToken skips whitespace and comments and returns the next Token.
// After the input is exhausted it keeps returning the EOF token.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		break
	}

	if l.pos >= len(l.src) {
		return Token{Type: EOF, Literal: "", Line: l.line, Col: l.col}
	}

	ch := l.peek()
	line, col := l.line, l.col

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdent()
	}
	if unicode.IsDigit(ch) {
		return l.scanNumber()
	}
	if ch == '"' {
		return l.scanString()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '{':
		return Token{LBRACE, "{", line, col}
	case '}':
		return Token{RBRACE, "}", line, col}
	case '(':
		return Token{LPAREN, "(", line, col}
	case ')':
		return Token{RPAREN, ")", line, col}
	case ';':
		return Token{SEMICOLON, ";", line, col}
	case ',':
		return Token{COMMA, ",", line, col}
	case ':':
		return Token{COLON, ":", line, col}
	case '+':
		return Token{PLUS, "+", line, col}
	case '-':
		if l.peek() == '>' { // lookahead: distinguish - vs ->
			l.advance()
			return Token{ARROW, "->", line, col}
		}
		return Token{MINUS, "-", line, col}
	case '*':
		return Token{ASTERISK, "*", line, col}
	case '/':
		return Token{SLASH, "/", line, col}
	case '%':
		return Token{PERCENT, "%", line, col}
	case '^':
		return Token{POW, "^", line, col}
	case '&':
		if l.peek() == '&' {
			l.advance()
			return Token{AND_AND, "&&", line, col}
		}
	case '|':
		if l.peek() == '|' {
			l.advance()
			return Token{OR_OR, "||", line, col}
		}
	case '!':
		if l.peek() == '=' {
			l.advance()
			return Token{NOT_EQ, "!=", line, col}
		}
		return Token{BANG, "!", line, col}
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{LT_EQ, "<=", line, col}
		}
		return Token{LT, "<", line, col}
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{GT_EQ, ">=", line, col}
		}
		return Token{GT, ">", line, col}
	case '=':
		if l.peek() == '=' {
			l.advance()
			return Token{EQ, "==", line, col}
		}
		return Token{ASSIGN, "=", line, col}
	}

	// Anything else becomes an ILLEGAL token carrying the offending character,
	// so downstream consumers can tell invalid input from end of program.
	l.errs.Add(Lexical, line, col, "unexpected character %q", ch)
	return Token{Type: ILLEGAL, Literal: string(ch), Line: line, Col: col}
}

// Lex tokenizes src in one pass and returns all tokens including the final EOF
// token. Lexical errors are recorded on errs; tokenization always completes.
func Lex(src string, errs *ErrorList) []Token {
	l := NewLexer(src, errs)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}
