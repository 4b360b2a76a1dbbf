// Package token defines the token kinds produced by the lexer.
package token

import (
	"fmt"
	"runic/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	INVALID Kind = iota
	EOF

	// Literals
	IDENT  // count, _tmp
	NUMBER // 12, 3.5
	STRING // "hello"

	// Arithmetic
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	POW     // **

	// Bitwise
	AMP   // &
	PIPE  // |
	CARET // ^
	TILDE // ~

	// Relational
	EQ  // ==
	NEQ // !=
	LT  // <
	LTE // <=
	GT  // >
	GTE // >=

	// Assignment
	ASSIGN       // =
	PLUS_ASSIGN  // +=
	MINUS_ASSIGN // -=
	STAR_ASSIGN  // *=
	SLASH_ASSIGN // /=

	INC // ++
	DEC // --

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	SEMICOLON // ;

	// Keywords
	KW_LET
	KW_MUT
	KW_IF
	KW_ELIF
	KW_ELSE
	KW_WHILE
	KW_DEF
	KW_RETURN
	KW_ECHO
	KW_HALT
	KW_SKIP
	KW_AND
	KW_OR
	KW_NOT
	KW_TRUE
	KW_FALSE
	KW_UNDEFINED
)

var kindNames = map[Kind]string{
	INVALID: "INVALID",
	EOF:     "EOF",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	POW:     "**",

	AMP:   "&",
	PIPE:  "|",
	CARET: "^",
	TILDE: "~",

	EQ:  "==",
	NEQ: "!=",
	LT:  "<",
	LTE: "<=",
	GT:  ">",
	GTE: ">=",

	ASSIGN:       "=",
	PLUS_ASSIGN:  "+=",
	MINUS_ASSIGN: "-=",
	STAR_ASSIGN:  "*=",
	SLASH_ASSIGN: "/=",
	INC:          "++",
	DEC:          "--",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	COMMA:     ",",
	SEMICOLON: ";",

	KW_LET:       "let",
	KW_MUT:       "mut",
	KW_IF:        "if",
	KW_ELIF:      "elif",
	KW_ELSE:      "else",
	KW_WHILE:     "while",
	KW_DEF:       "def",
	KW_RETURN:    "return",
	KW_ECHO:      "echo",
	KW_HALT:      "halt",
	KW_SKIP:      "skip",
	KW_AND:       "and",
	KW_OR:        "or",
	KW_NOT:       "not",
	KW_TRUE:      "true",
	KW_FALSE:     "false",
	KW_UNDEFINED: "undefined",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_LET && k <= KW_UNDEFINED
}

var keywords = map[string]Kind{
	"let":       KW_LET,
	"mut":       KW_MUT,
	"if":        KW_IF,
	"elif":      KW_ELIF,
	"else":      KW_ELSE,
	"while":     KW_WHILE,
	"def":       KW_DEF,
	"return":    KW_RETURN,
	"echo":      KW_ECHO,
	"halt":      KW_HALT,
	"skip":      KW_SKIP,
	"and":       KW_AND,
	"or":        KW_OR,
	"not":       KW_NOT,
	"true":      KW_TRUE,
	"false":     KW_FALSE,
	"undefined": KW_UNDEFINED,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token is a lexical token: its kind, literal text and source location.
// For STRING tokens Lexeme holds the decoded contents without quotes.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
