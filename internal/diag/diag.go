// Package diag defines the error kinds reported by the runic toolchain and the
// Diagnostic type used for front-end (lexing/parsing) failures.
package diag

import (
	"errors"
	"fmt"
	"runic/internal/span"
)

// Kind classifies a failure. Every kind is fatal to the run.
type Kind int

const (
	SyntaxError Kind = iota
	InvalidToken
	UndeclaredVariable
	ImmutableReassignment
	Redeclaration
	TypeMismatch
	UnknownCallee
	ArityMismatch
)

var kindNames = map[Kind]string{
	SyntaxError:           "SyntaxError",
	InvalidToken:          "InvalidToken",
	UndeclaredVariable:    "UndeclaredVariable",
	ImmutableReassignment: "ImmutableReassignment",
	Redeclaration:         "Redeclaration",
	TypeMismatch:          "TypeMismatch",
	UnknownCallee:         "UnknownCallee",
	ArityMismatch:         "ArityMismatch",
}

// stable error codes, E1xxx lexical, E2xxx syntax, E3xxx runtime
var kindCodes = map[Kind]string{
	InvalidToken:          "E1001",
	SyntaxError:           "E2001",
	UndeclaredVariable:    "E3001",
	ImmutableReassignment: "E3002",
	Redeclaration:         "E3003",
	TypeMismatch:          "E3004",
	UnknownCallee:         "E3005",
	ArityMismatch:         "E3006",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code returns the stable error code for k, e.g. "E3002".
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return "E0000"
}

// Diagnostic describes a front-end error at a source location.
// It implements error so the parser can return it directly.
type Diagnostic struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Span    span.Span `json:"span"`
	Hint    string    `json:"hint,omitempty"`
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	msg := fmt.Sprintf("[%s] %s at %s: %s", d.Kind.Code(), d.Kind, d.Span.Start, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

func (d Diagnostic) Error() string { return d.String() }

// ErrorKind reports the diagnostic's kind.
func (d Diagnostic) ErrorKind() Kind { return d.Kind }

// Errorf creates a diagnostic of the given kind at s.
func Errorf(kind Kind, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    s,
	}
}

// Kinded is implemented by every error the toolchain produces.
type Kinded interface {
	error
	ErrorKind() Kind
}

// KindOf extracts the kind of err, unwrapping as needed.
func KindOf(err error) (Kind, bool) {
	var k Kinded
	if errors.As(err, &k) {
		return k.ErrorKind(), true
	}
	return 0, false
}
