// Package runtime implements the interpreter and runtime value system for runic.
package runtime

import (
	"fmt"
	"math"
	"runic/internal/ast"
	"strconv"
)

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// NumberVal is the only numeric type; all arithmetic is float64.
type NumberVal float64

func (v NumberVal) TypeName() string { return "Number" }
func (v NumberVal) String() string   { return formatNumber(float64(v)) }

// TextVal represents a string value.
type TextVal string

func (v TextVal) TypeName() string { return "Text" }
func (v TextVal) String() string   { return string(v) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return "Boolean" }
func (v BoolVal) String() string   { return strconv.FormatBool(bool(v)) }

// UndefinedVal is the value of `undefined` and of `mut x;`.
type UndefinedVal struct{}

func (v UndefinedVal) TypeName() string { return "Undefined" }
func (v UndefinedVal) String() string   { return "undefined" }

// ---- Callable values ----

// FuncVal represents a user-defined function (closure).
type FuncVal struct {
	Name    string
	Params  []string
	Body    *ast.Block
	Closure *Environment
}

func (v *FuncVal) TypeName() string { return "Function" }
func (v *FuncVal) String() string   { return fmt.Sprintf("<def %s>", v.Name) }

// formatNumber renders f as the shortest decimal text that reads back to f.
// Integral values print without a fraction: 3, not 3.0.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		return "0" // also -0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ---- Equality ----

// valuesEqual compares same-kind values. Undefined is unequal to every other
// kind; any other mixed pair cannot be compared and reports ok=false.
func valuesEqual(a, b Value) (equal bool, ok bool) {
	switch av := a.(type) {
	case NumberVal:
		if bv, isNum := b.(NumberVal); isNum {
			return av == bv, true
		}
	case TextVal:
		if bv, isText := b.(TextVal); isText {
			return av == bv, true
		}
	case BoolVal:
		if bv, isBool := b.(BoolVal); isBool {
			return av == bv, true
		}
	case UndefinedVal:
		_, isUndef := b.(UndefinedVal)
		return isUndef, true
	case *FuncVal:
		if bv, isFn := b.(*FuncVal); isFn {
			return av == bv, true
		}
	}
	if _, isUndef := b.(UndefinedVal); isUndef {
		return false, true
	}
	return false, false
}
