package runtime

import (
	"fmt"
	"io"
	"strings"
)

// echo is the language's only output primitive. It writes the textual forms
// of vals, concatenated without separators, as one line.
func echo(w io.Writer, vals []Value) (TextVal, error) {
	line := ValuesString(vals, "")
	if _, err := fmt.Fprintln(w, line); err != nil {
		return "", err
	}
	return TextVal(line), nil
}

// ValuesString formats a slice of values with a separator.
func ValuesString(vals []Value, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, sep)
}
