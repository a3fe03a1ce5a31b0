package compiler

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestLexIntegers(t *testing.T) {
	errs := NewErrorList("test")
	toks := Lex("42 123 0", errs)
	be.Equal(t, errs.HasErrors(), false)

	want := []string{"42", "123", "0"}
	be.Equal(t, len(toks), len(want)+1) // plus EOF
	for i, lit := range want {
		be.Equal(t, toks[i].Type, INT)
		be.Equal(t, toks[i].Literal, lit)
	}
	be.Equal(t, toks[len(toks)-1].Type, EOF)
}

func TestEOFRepeats(t *testing.T) {
	errs := NewErrorList("test")
	lex := NewLexer("x", errs)
	be.Equal(t, lex.NextToken().Type, IDENT)
	for i := 0; i < 5; i++ {
		be.Equal(t, lex.NextToken().Type, EOF)
	}
}

func TestLexOperators(t *testing.T) {
	src := `= == != < > <= >= && || ! + - * / % ^ -> : , ; ( ) { }`
	want := []TokenType{
		ASSIGN, EQ, NOT_EQ, LT, GT, LT_EQ, GT_EQ, AND_AND, OR_OR, BANG,
		PLUS, MINUS, ASTERISK, SLASH, PERCENT, POW, ARROW,
		COLON, COMMA, SEMICOLON, LPAREN, RPAREN, LBRACE, RBRACE, EOF,
	}
	errs := NewErrorList("test")
	toks := Lex(src, errs)
	be.Equal(t, errs.HasErrors(), false)
	be.Equal(t, len(toks), len(want))
	for i, tt := range want {
		be.Equal(t, toks[i].Type, tt)
	}
}

func TestLexKeywordsAndTypes(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"let", LET},
		{"fn", FN},
		{"return", RETURN},
		{"if", IF},
		{"else", ELSE},
		{"while", WHILE},
		{"for", FOR},
		{"break", BREAK},
		{"continue", CONTINUE},
		{"true", TRUE},
		{"false", FALSE},
		{"int", TYPE},
		{"float", TYPE},
		{"bool", TYPE},
		{"str", TYPE},
		{"void", TYPE},
		{"letx", IDENT},
		{"main", IDENT},
	}
	for _, tt := range tests {
		be.Equal(t, LookupIdent(tt.ident), tt.want)
	}
}

// The alternate keyword spellings lex exactly like their counterparts, so
// "lit x: int be 1 rn" is the same statement as "let x: int = 1;".
func TestLexAltKeywords(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"lit", LET},
		{"be", ASSIGN},
		{"rn", SEMICOLON},
		{"bruh", FN},
		{"pause", RETURN},
		{"sus", IF},
		{"imposter", ELSE},
		{"wee", WHILE},
		{"yeet", BREAK},
		{"anothaone", CONTINUE},
		{"dab", FOR},
	}
	for _, tt := range tests {
		be.Equal(t, LookupIdent(tt.ident), tt.want)
	}

	errs := NewErrorList("test")
	toks := Lex("lit x: int be 1 rn", errs)
	be.Equal(t, errs.HasErrors(), false)
	want := []TokenType{LET, IDENT, COLON, TYPE, ASSIGN, INT, SEMICOLON, EOF}
	be.Equal(t, len(toks), len(want))
	for i, tt := range want {
		be.Equal(t, toks[i].Type, tt)
	}
}

func TestLexComments(t *testing.T) {
	errs := NewErrorList("test")
	toks := Lex("a // the rest is ignored\nb", errs)
	be.Equal(t, errs.HasErrors(), false)
	be.Equal(t, toks[0].Literal, "a")
	be.Equal(t, toks[1].Literal, "b")
	be.Equal(t, toks[1].Line, 2)
}

func TestLexPositions(t *testing.T) {
	errs := NewErrorList("test")
	toks := Lex("let x\n  = 1;", errs)
	be.Equal(t, toks[0].Line, 1)
	be.Equal(t, toks[0].Col, 1)
	be.Equal(t, toks[1].Col, 5) // x
	be.Equal(t, toks[2].Line, 2)
	be.Equal(t, toks[2].Col, 3) // =
}

func TestLexIllegalCharacter(t *testing.T) {
	errs := NewErrorList("test")
	toks := Lex("a @ b", errs)
	// an unknown character becomes an ILLEGAL token, not a silent skip
	be.Equal(t, toks[1].Type, ILLEGAL)
	be.Equal(t, toks[1].Literal, "@")
	be.Equal(t, toks[2].Type, IDENT)
	be.Equal(t, errs.CountOf(Lexical), 1)
}

func TestLexDoubleDecimalPoint(t *testing.T) {
	errs := NewErrorList("test")
	toks := Lex("1.2.3 + 4", errs)
	be.Equal(t, errs.CountOf(Lexical), 1)
	// tokenization continues past the malformed number
	be.Equal(t, toks[0].Type, FLOAT)
	be.Equal(t, toks[1].Type, PLUS)
	be.Equal(t, toks[2].Type, INT)
	be.Equal(t, toks[2].Literal, "4")
}

func TestLexStringEscapes(t *testing.T) {
	errs := NewErrorList("test")
	toks := Lex(`"a\nb\t\"c\"\\"`, errs)
	be.Equal(t, errs.HasErrors(), false)
	be.Equal(t, toks[0].Type, STRING)
	be.Equal(t, toks[0].Literal, "a\nb\t\"c\"\\")
}

func TestLexUnterminatedString(t *testing.T) {
	errs := NewErrorList("test")
	toks := Lex(`"no closing quote`, errs)
	be.Equal(t, toks[0].Type, STRING)
	be.Equal(t, errs.CountOf(Lexical), 1)
	e := errs.Errors()[0]
	be.Equal(t, e.Suggestion, "add a closing double quote")
}

func TestLexFloats(t *testing.T) {
	errs := NewErrorList("test")
	toks := Lex("3.14 0.5 10.0", errs)
	be.Equal(t, errs.HasErrors(), false)
	for i, lit := range []string{"3.14", "0.5", "10.0"} {
		be.Equal(t, toks[i].Type, FLOAT)
		be.Equal(t, toks[i].Literal, lit)
	}
}
