// Package lexer turns runic source text into tokens.
//
// Tokenizing never fails: characters the language does not know become
// INVALID tokens and the parser rejects them.
package lexer

import (
	"runic/internal/span"
	"runic/internal/token"
	"unicode/utf8"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)
}

// New creates a new Lexer for the given source text.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		col:    1,
	}
}

// Tokenize is shorthand for New(source).Tokenize().
func Tokenize(source string) []token.Token {
	return New(source).Tokenize()
}

// Tokenize scans the entire source. The result always ends with an EOF token.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens
}

// ---- internal helpers ----

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

func (l *Lexer) emit(kind token.Kind, lexeme string, start span.Position) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Span: l.makeSpan(start)}
}

// skipTrivia skips whitespace, newlines and // comments.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.source) {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekNext() == '/':
			for l.pos < len(l.source) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	l.skipTrivia()

	start := l.curPos()
	if l.pos >= len(l.source) {
		return l.emit(token.EOF, "", start)
	}

	ch := l.peek()
	switch {
	case ch == '"':
		return l.readString(start)
	case isDigit(ch):
		return l.readNumber(start)
	case isIdentStart(ch):
		return l.readIdentifier(start)
	default:
		return l.readOperator(start)
	}
}

// readString reads a double-quoted string literal. The lexeme is the decoded
// contents; an unterminated literal becomes an INVALID token.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // opening "
	var value []byte

	for l.pos < len(l.source) {
		ch := l.advance()
		switch ch {
		case '"':
			return l.emit(token.STRING, string(value), start)
		case '\\':
			if l.pos >= len(l.source) {
				break
			}
			esc := l.advance()
			switch esc {
			case 'n':
				value = append(value, '\n')
			case 't':
				value = append(value, '\t')
			default:
				value = append(value, esc)
			}
		default:
			value = append(value, ch)
		}
	}

	return l.emit(token.INVALID, `"`+string(value), start)
}

// readNumber reads a numeric literal with at most one decimal point.
func (l *Lexer) readNumber(start span.Position) token.Token {
	numStart := l.pos
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.emit(token.NUMBER, l.source[numStart:l.pos], start)
}

func (l *Lexer) readIdentifier(start span.Position) token.Token {
	identStart := l.pos
	for isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := l.source[identStart:l.pos]
	return l.emit(token.LookupIdent(lexeme), lexeme, start)
}

// twoChar lists the operators matched greedily before their one-character prefix.
var twoChar = map[string]token.Kind{
	"==": token.EQ,
	"!=": token.NEQ,
	"<=": token.LTE,
	">=": token.GTE,
	"+=": token.PLUS_ASSIGN,
	"-=": token.MINUS_ASSIGN,
	"*=": token.STAR_ASSIGN,
	"/=": token.SLASH_ASSIGN,
	"++": token.INC,
	"--": token.DEC,
	"**": token.POW,
}

var oneChar = map[byte]token.Kind{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.STAR,
	'/': token.SLASH,
	'%': token.PERCENT,
	'&': token.AMP,
	'|': token.PIPE,
	'^': token.CARET,
	'~': token.TILDE,
	'<': token.LT,
	'>': token.GT,
	'=': token.ASSIGN,
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	',': token.COMMA,
	';': token.SEMICOLON,
}

func (l *Lexer) readOperator(start span.Position) token.Token {
	if l.pos+1 < len(l.source) {
		pair := l.source[l.pos : l.pos+2]
		if kind, ok := twoChar[pair]; ok {
			l.advance()
			l.advance()
			return l.emit(kind, pair, start)
		}
	}

	if kind, ok := oneChar[l.peek()]; ok {
		ch := l.advance()
		return l.emit(kind, string(ch), start)
	}

	// keep multi-byte characters in a single INVALID token
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	from := l.pos
	for i := 0; i < size; i++ {
		l.advance()
	}
	return l.emit(token.INVALID, l.source[from:l.pos], start)
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
