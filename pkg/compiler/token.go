package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF     TokenType = iota // sentinel: end of input
	ILLEGAL                  // character the lexer could not classify

	// Literals
	IDENT  // variable / function name
	INT    // decimal integer literal
	FLOAT  // decimal literal with a fractional part
	STRING // string literal "..."

	// Arithmetic operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	POW      // ^

	// Assignment / comparison  (order matters: ASSIGN before EQ)
	ASSIGN // =

	EQ     // ==
	NOT_EQ // !=
	LT     // <
	GT     // >
	LT_EQ  // <=
	GT_EQ  // >=

	// Logical operators
	AND_AND // &&
	OR_OR   // ||
	BANG    // !

	// Punctuation
	COLON     // :
	COMMA     // ,
	SEMICOLON // ;
	ARROW     // ->

	// Paired delimiters
	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }

	// Keywords
	LET      // "let"
	FN       // "fn"
	RETURN   // "return"
	IF       // "if"
	ELSE     // "else"
	TRUE     // "true"
	FALSE    // "false"
	WHILE    // "while"
	BREAK    // "break"
	CONTINUE // "continue"
	FOR      // "for"

	// Type names: int, float, bool, str, void
	TYPE
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:       "EOF",
	ILLEGAL:   "ILLEGAL",
	IDENT:     "IDENT",
	INT:       "INT",
	FLOAT:     "FLOAT",
	STRING:    "STRING",
	PLUS:      "PLUS",
	MINUS:     "MINUS",
	ASTERISK:  "ASTERISK",
	SLASH:     "SLASH",
	PERCENT:   "PERCENT",
	POW:       "POW",
	ASSIGN:    "ASSIGN",
	EQ:        "EQ",
	NOT_EQ:    "NOT_EQ",
	LT:        "LT",
	GT:        "GT",
	LT_EQ:     "LT_EQ",
	GT_EQ:     "GT_EQ",
	AND_AND:   "AND_AND",
	OR_OR:     "OR_OR",
	BANG:      "BANG",
	COLON:     "COLON",
	COMMA:     "COMMA",
	SEMICOLON: "SEMICOLON",
	ARROW:     "ARROW",
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LBRACE:    "LBRACE",
	RBRACE:    "RBRACE",
	LET:       "LET",
	FN:        "FN",
	RETURN:    "RETURN",
	IF:        "IF",
	ELSE:      "ELSE",
	TRUE:      "TRUE",
	FALSE:     "FALSE",
	WHILE:     "WHILE",
	BREAK:     "BREAK",
	CONTINUE:  "CONTINUE",
	FOR:       "FOR",
	TYPE:      "TYPE",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
// Immutable once produced.
type Token struct {
	Type    TokenType
	Literal string // the exact source text that was matched
	Line    int    // 1-based source line
	Col     int    // 1-based character position within the line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d, col %d", t.Type, t.Literal, t.Line, t.Col)
}

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"let":      LET,
	"fn":       FN,
	"return":   RETURN,
	"if":       IF,
	"else":     ELSE,
	"true":     TRUE,
	"false":    FALSE,
	"while":    WHILE,
	"break":    BREAK,
	"continue": CONTINUE,
	"for":      FOR,
}

// altKeywords is the alternate keyword spelling set carried over from the
// original language surface. Each entry lexes exactly like its counterpart.
var altKeywords = map[string]TokenType{
	"lit":       LET,
	"be":        ASSIGN,
	"rn":        SEMICOLON,
	"bruh":      FN,
	"pause":     RETURN,
	"sus":       IF,
	"imposter":  ELSE,
	"wee":       WHILE,
	"yeet":      BREAK,
	"anothaone": CONTINUE,
	"dab":       FOR,
}

// typeKeywords are the primitive type names; they lex as a single TYPE token
// whose literal is the name itself.
var typeKeywords = map[string]bool{
	"int":   true,
	"float": true,
	"bool":  true,
	"str":   true,
	"void":  true,
}

// LookupIdent classifies an identifier run as a keyword, an alternate keyword,
// a type name, or a plain identifier.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	if tt, ok := altKeywords[ident]; ok {
		return tt
	}
	if typeKeywords[ident] {
		return TYPE
	}
	return IDENT
}
