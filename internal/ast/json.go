package ast

import (
	"runic/internal/span"
	"runic/internal/token"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// Every node carries a "kind" field naming its variant.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return m("Program", n.Span, "body", stmtSlice(n.Body))

	// ---- Expressions ----
	case *Ident:
		return m("Ident", n.Span, "name", n.Name)
	case *NumberLit:
		return m("NumberLit", n.Span, "value", n.Value)
	case *StringLit:
		return m("StringLit", n.Span, "value", n.Value)
	case *BoolLit:
		return m("BoolLit", n.Span, "value", n.Value)
	case *UndefinedLit:
		return m("UndefinedLit", n.Span)
	case *Unary:
		return m("Unary", n.Span, "op", opStr(n.Op), "operand", NodeToMap(n.Operand))
	case *Binary:
		return m("Binary", n.Span,
			"op", opStr(n.Op),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *Logical:
		return m("Logical", n.Span,
			"op", opStr(n.Op),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *Relational:
		return m("Relational", n.Span,
			"op", opStr(n.Op),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *Call:
		return m("Call", n.Span,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args))

	// ---- Statements ----
	case *ExprStmt:
		return m("ExprStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *VarDecl:
		result := m("VarDecl", n.Span, "name", n.Name, "mutable", n.Mutable)
		if n.Init != nil {
			result["init"] = NodeToMap(n.Init)
		}
		return result
	case *Assign:
		return m("Assign", n.Span,
			"target", NodeToMap(n.Target),
			"value", NodeToMap(n.Value))
	case *Block:
		return m("Block", n.Span, "stmts", stmtSlice(n.Stmts))
	case *If:
		result := m("If", n.Span,
			"condition", NodeToMap(n.Condition),
			"consequent", NodeToMap(n.Consequent))
		if n.Alternate != nil {
			result["alternate"] = NodeToMap(n.Alternate)
		}
		return result
	case *While:
		return m("While", n.Span,
			"condition", NodeToMap(n.Condition),
			"body", NodeToMap(n.Body))
	case *FuncDecl:
		return m("FuncDecl", n.Span,
			"name", n.Name,
			"params", n.Params,
			"body", NodeToMap(n.Body))
	case *Return:
		result := m("Return", n.Span)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result
	case *Echo:
		return m("Echo", n.Span, "values", exprSlice(n.Values))
	case *Halt:
		return m("Halt", n.Span)
	case *Skip:
		return m("Skip", n.Span)

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func opStr(kind token.Kind) string {
	return kind.String()
}
