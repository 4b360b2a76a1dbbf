package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runic/internal/diag"
	"runic/internal/runtime"
	"runic/internal/span"
	"runic/internal/token"
)

// ---- output helpers ----

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

func printDiagsText(w io.Writer, errs []error) {
	for _, err := range errs {
		fmt.Fprintln(w, err.Error())
	}
}

// errorsToSlice renders diagnostics and runtime errors for JSON output.
// nil errors are skipped.
func errorsToSlice(errs ...error) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(errs))
	for _, err := range errs {
		if err == nil {
			continue
		}
		result = append(result, errorToMap(err))
	}
	return result
}

func errorToMap(err error) map[string]interface{} {
	var (
		message, hint string
		at            span.Span
	)
	var d diag.Diagnostic
	var rerr *runtime.RuntimeError
	switch {
	case errors.As(err, &d):
		message, hint, at = d.Message, d.Hint, d.Span
	case errors.As(err, &rerr):
		message, hint, at = rerr.Message, rerr.Hint, rerr.Span
	default:
		return map[string]interface{}{"message": err.Error()}
	}

	kind, _ := diag.KindOf(err)
	result := map[string]interface{}{
		"code":    kind.Code(),
		"kind":    kind.String(),
		"message": message,
		"line":    at.Start.Line,
		"column":  at.Start.Column,
		"offset":  at.Start.Offset,
	}
	if hint != "" {
		result["hint"] = hint
	}
	return result
}

// ---- token output helpers ----

func printTokensText(w io.Writer, tokens []token.Token) {
	for _, tok := range tokens {
		lexeme := tok.Lexeme
		if tok.Kind == token.STRING {
			lexeme = fmt.Sprintf("%q", tok.Lexeme)
		}
		fmt.Fprintf(w, "%-12s %-20s %d:%d\n", tok.Kind, lexeme, tok.Span.Start.Line, tok.Span.Start.Column)
	}
}

func printTokensJSON(w io.Writer, tokens []token.Token, diags []error) error {
	type tokenJSON struct {
		Kind   string `json:"kind"`
		Lexeme string `json:"lexeme"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
		Offset int    `json:"offset"`
	}

	toks := make([]tokenJSON, 0, len(tokens))
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:   tok.Kind.String(),
			Lexeme: tok.Lexeme,
			Line:   tok.Span.Start.Line,
			Column: tok.Span.Start.Column,
			Offset: tok.Span.Start.Offset,
		})
	}

	output := map[string]interface{}{
		"tokens":      toks,
		"diagnostics": errorsToSlice(diags...),
	}
	return printJSON(w, output)
}
