package lexer

import (
	"runic/internal/token"
	"testing"
)

func expectKinds(t *testing.T, source string, expected []token.Kind) []token.Token {
	t.Helper()
	tokens := Tokenize(source)

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
	return tokens
}

func TestTokenizeDeclaration(t *testing.T) {
	tokens := expectKinds(t, `let x = 1 + 2;`, []token.Kind{
		token.KW_LET, token.IDENT, token.ASSIGN,
		token.NUMBER, token.PLUS, token.NUMBER, token.SEMICOLON, token.EOF,
	})

	lexemes := []string{"let", "x", "=", "1", "+", "2", ";", ""}
	for i, lex := range lexemes {
		if tokens[i].Lexeme != lex {
			t.Errorf("token[%d]: expected lexeme %q, got %q", i, lex, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeKeywords(t *testing.T) {
	source := `let mut if elif else while def return echo halt skip and or not true false undefined`
	expectKinds(t, source, []token.Kind{
		token.KW_LET, token.KW_MUT, token.KW_IF, token.KW_ELIF, token.KW_ELSE,
		token.KW_WHILE, token.KW_DEF, token.KW_RETURN, token.KW_ECHO,
		token.KW_HALT, token.KW_SKIP,
		token.KW_AND, token.KW_OR, token.KW_NOT,
		token.KW_TRUE, token.KW_FALSE, token.KW_UNDEFINED,
		token.EOF,
	})
}

func TestTokenizeKeywordPrefixIsIdent(t *testing.T) {
	tokens := expectKinds(t, `letter iffy echoes`, []token.Kind{
		token.IDENT, token.IDENT, token.IDENT, token.EOF,
	})
	if tokens[0].Lexeme != "letter" {
		t.Errorf("expected 'letter', got %q", tokens[0].Lexeme)
	}
}

func TestTokenizeOperators(t *testing.T) {
	source := `+ - * / % ** & | ^ ~ == != < <= > >= = += -= *= /= ++ --`
	expectKinds(t, source, []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.POW,
		token.AMP, token.PIPE, token.CARET, token.TILDE,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE,
		token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.INC, token.DEC,
		token.EOF,
	})
}

func TestTokenizeGreedyWithoutSpaces(t *testing.T) {
	expectKinds(t, `a<=b**2==c`, []token.Kind{
		token.IDENT, token.LTE, token.IDENT, token.POW, token.NUMBER, token.EQ, token.IDENT,
		token.EOF,
	})
}

func TestTokenizeDelimiters(t *testing.T) {
	expectKinds(t, `( ) { } , ;`, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.COMMA, token.SEMICOLON,
		token.EOF,
	})
}

func TestTokenizeString(t *testing.T) {
	tokens := expectKinds(t, `"hello" "line1\nline2" "say \"hi\""`, []token.Kind{
		token.STRING, token.STRING, token.STRING, token.EOF,
	})
	if tokens[0].Lexeme != "hello" {
		t.Errorf("expected 'hello', got %q", tokens[0].Lexeme)
	}
	if tokens[1].Lexeme != "line1\nline2" {
		t.Errorf("expected 'line1\\nline2', got %q", tokens[1].Lexeme)
	}
	if tokens[2].Lexeme != `say "hi"` {
		t.Errorf("expected escaped quotes, got %q", tokens[2].Lexeme)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	tokens := expectKinds(t, `echo "oops`, []token.Kind{
		token.KW_ECHO, token.INVALID, token.EOF,
	})
	if tokens[1].Lexeme != `"oops` {
		t.Errorf("expected partial text, got %q", tokens[1].Lexeme)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tokens := expectKinds(t, `42 3.14 1.2.3`, []token.Kind{
		token.NUMBER, token.NUMBER, token.NUMBER, token.INVALID, token.NUMBER, token.EOF,
	})
	if tokens[1].Lexeme != "3.14" {
		t.Errorf("expected '3.14', got %q", tokens[1].Lexeme)
	}
	if tokens[2].Lexeme != "1.2" {
		t.Errorf("expected '1.2', got %q", tokens[2].Lexeme)
	}
}

func TestTokenizeComments(t *testing.T) {
	source := `let x = 1; // the answer
// whole line
x`
	expectKinds(t, source, []token.Kind{
		token.KW_LET, token.IDENT, token.ASSIGN, token.NUMBER, token.SEMICOLON,
		token.IDENT, token.EOF,
	})
}

func TestTokenizeInvalid(t *testing.T) {
	tokens := expectKinds(t, `a @ b ! é`, []token.Kind{
		token.IDENT, token.INVALID, token.IDENT, token.INVALID, token.INVALID, token.EOF,
	})
	if tokens[4].Lexeme != "é" {
		t.Errorf("expected whole rune in INVALID token, got %q", tokens[4].Lexeme)
	}
}

func TestTokenPositions(t *testing.T) {
	source := "let x = 1;\nmut y;"
	tokens := Tokenize(source)

	// 'let' at 1:1
	if tokens[0].Span.Start.Line != 1 || tokens[0].Span.Start.Column != 1 {
		t.Errorf("'let' position: expected 1:1, got %s", tokens[0].Span.Start)
	}
	// 'mut' at 2:1
	if tokens[5].Span.Start.Line != 2 || tokens[5].Span.Start.Column != 1 {
		t.Errorf("'mut' position: expected 2:1, got %s", tokens[5].Span.Start)
	}
	// 'y' at 2:5
	if tokens[6].Span.Start.Line != 2 || tokens[6].Span.Start.Column != 5 {
		t.Errorf("'y' position: expected 2:5, got %s", tokens[6].Span.Start)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	expectKinds(t, "  \n\t ", []token.Kind{token.EOF})
}
