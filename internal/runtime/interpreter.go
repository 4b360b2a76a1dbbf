package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runic/internal/ast"
	"runic/internal/diag"
	"runic/internal/span"
	"runic/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone     ExecSignal = iota
	SigReturn              // return from function
	SigBreak               // halt
	SigContinue            // skip
)

// ExecResult carries a control flow signal and the statement's value.
// For SigReturn the value is the returned one.
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

func valueResult(v Value) ExecResult {
	return ExecResult{Signal: SigNone, Value: v}
}

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error during interpretation.
type RuntimeError struct {
	Kind    diag.Kind
	Message string
	Span    span.Span
	Hint    string
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("[%s] %s at %s: %s", e.Kind.Code(), e.Kind, e.Span.Start, e.Message)
	if e.Hint != "" {
		msg += " (hint: " + e.Hint + ")"
	}
	return msg
}

// ErrorKind reports the error's kind.
func (e *RuntimeError) ErrorKind() diag.Kind { return e.Kind }

func runtimeErr(kind diag.Kind, s span.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: s}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it. It keeps no per-run state:
// every scope is passed in explicitly, so one Interpreter may evaluate
// many programs against different environments.
type Interpreter struct {
	output io.Writer
	logger *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger routes call tracing to l. Tracing is emitted at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInterpreter creates a new interpreter writing echo output to output.
func NewInterpreter(output io.Writer, opts ...Option) *Interpreter {
	i := &Interpreter{
		output: output,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run evaluates stmts in a fresh root environment.
func (i *Interpreter) Run(stmts []ast.Stmt) (Value, error) {
	return i.Evaluate(stmts, NewEnvironment(nil))
}

// Evaluate executes stmts in order against env and returns the value of the
// last one, or Undefined for an empty program. A top-level return ends
// evaluation with its value. The first error aborts evaluation; echo output
// written before it stays written.
func (i *Interpreter) Evaluate(stmts []ast.Stmt, env *Environment) (Value, error) {
	var last Value = UndefinedVal{}
	for _, stmt := range stmts {
		result, err := i.execStmt(stmt, env)
		if err != nil {
			return nil, err
		}
		switch result.Signal {
		case SigReturn:
			return result.Value, nil
		case SigBreak:
			return nil, runtimeErr(diag.SyntaxError, stmt.GetSpan(), "'halt' outside of a loop")
		case SigContinue:
			return nil, runtimeErr(diag.SyntaxError, stmt.GetSpan(), "'skip' outside of a loop")
		}
		last = result.Value
	}
	return last, nil
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt, env *Environment) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		val, err := i.evalExpr(s.Expr, env)
		if err != nil {
			return ExecResult{}, err
		}
		return valueResult(val), nil

	case *ast.VarDecl:
		return i.execVarDecl(s, env)

	case *ast.Assign:
		return i.execAssign(s, env)

	case *ast.Block:
		return i.execBlock(s.Stmts, NewEnvironment(env))

	case *ast.If:
		return i.execIf(s, env)

	case *ast.While:
		return i.execWhile(s, env)

	case *ast.FuncDecl:
		return i.execFuncDecl(s, env)

	case *ast.Return:
		var val Value = UndefinedVal{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value, env)
			if err != nil {
				return ExecResult{}, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.Echo:
		return i.execEcho(s, env)

	case *ast.Halt:
		return ExecResult{Signal: SigBreak, Value: UndefinedVal{}}, nil

	case *ast.Skip:
		return ExecResult{Signal: SigContinue, Value: UndefinedVal{}}, nil

	default:
		return ExecResult{}, runtimeErr(diag.SyntaxError, stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execVarDecl(s *ast.VarDecl, env *Environment) (ExecResult, error) {
	if env.HasLocal(s.Name) {
		return ExecResult{}, runtimeErr(diag.Redeclaration, s.GetSpan(),
			"'%s' is already declared in this scope", s.Name)
	}

	var val Value = UndefinedVal{}
	if s.Init != nil {
		v, err := i.evalExpr(s.Init, env)
		if err != nil {
			return ExecResult{}, err
		}
		val = v
	}

	if err := env.Define(s.Name, val, s.Mutable); err != nil {
		return ExecResult{}, i.bindingErr(err, s.Name, s.GetSpan(), env)
	}
	return valueResult(val), nil
}

func (i *Interpreter) execAssign(s *ast.Assign, env *Environment) (ExecResult, error) {
	val, err := i.evalExpr(s.Value, env)
	if err != nil {
		return ExecResult{}, err
	}
	if err := env.Assign(s.Target.Name, val); err != nil {
		return ExecResult{}, i.bindingErr(err, s.Target.Name, s.GetSpan(), env)
	}
	return valueResult(val), nil
}

// bindingErr converts an Environment error into a RuntimeError.
func (i *Interpreter) bindingErr(err error, name string, s span.Span, env *Environment) error {
	switch {
	case errors.Is(err, ErrRedeclared):
		return runtimeErr(diag.Redeclaration, s, "'%s' is already declared in this scope", name)
	case errors.Is(err, ErrImmutable):
		e := runtimeErr(diag.ImmutableReassignment, s, "cannot assign to immutable '%s'", name)
		e.Hint = fmt.Sprintf("declare it with 'mut %s' to allow reassignment", name)
		return e
	case errors.Is(err, ErrUndeclared):
		e := runtimeErr(diag.UndeclaredVariable, s, "'%s' is not declared", name)
		e.Hint = didYouMean(name, env.Names())
		return e
	default:
		return err
	}
}

// execIf runs one link of a conditional chain. Its value is its own
// condition; a signal raised inside the chosen branch propagates.
func (i *Interpreter) execIf(s *ast.If, env *Environment) (ExecResult, error) {
	cond, err := i.evalCondition(s.Condition, env, "if")
	if err != nil {
		return ExecResult{}, err
	}

	if cond {
		result, err := i.execBlock(s.Consequent.Stmts, NewEnvironment(env))
		if err != nil || result.Signal != SigNone {
			return result, err
		}
	} else if s.Alternate != nil {
		result, err := i.execIf(s.Alternate, env)
		if err != nil || result.Signal != SigNone {
			return result, err
		}
	}
	return valueResult(BoolVal(cond)), nil
}

// execWhile evaluates to false when the condition ends the loop and to
// true when the body halts it.
func (i *Interpreter) execWhile(s *ast.While, env *Environment) (ExecResult, error) {
	for {
		cond, err := i.evalCondition(s.Condition, env, "while")
		if err != nil {
			return ExecResult{}, err
		}
		if !cond {
			return valueResult(BoolVal(false)), nil
		}

		result, err := i.execBlock(s.Body.Stmts, NewEnvironment(env))
		if err != nil {
			return ExecResult{}, err
		}
		switch result.Signal {
		case SigBreak:
			return valueResult(BoolVal(true)), nil
		case SigReturn:
			return result, nil // propagate return
		}
		// SigContinue: just continue the loop
	}
}

func (i *Interpreter) evalCondition(expr ast.Expr, env *Environment, construct string) (bool, error) {
	val, err := i.evalExpr(expr, env)
	if err != nil {
		return false, err
	}
	b, ok := val.(BoolVal)
	if !ok {
		return false, runtimeErr(diag.TypeMismatch, expr.GetSpan(),
			"%s condition must be a Boolean, got %s", construct, val.TypeName())
	}
	return bool(b), nil
}

// execBlock runs stmts in blockEnv. The result is the last statement's value,
// or the first control signal raised.
func (i *Interpreter) execBlock(stmts []ast.Stmt, blockEnv *Environment) (ExecResult, error) {
	var last Value = UndefinedVal{}
	for _, stmt := range stmts {
		result, err := i.execStmt(stmt, blockEnv)
		if err != nil {
			return ExecResult{}, err
		}
		if result.Signal != SigNone {
			return result, nil // propagate signal
		}
		last = result.Value
	}
	return valueResult(last), nil
}

func (i *Interpreter) execFuncDecl(s *ast.FuncDecl, env *Environment) (ExecResult, error) {
	fn := &FuncVal{
		Name:    s.Name,
		Params:  s.Params,
		Body:    s.Body,
		Closure: env,
	}
	if err := env.Define(s.Name, fn, false); err != nil {
		return ExecResult{}, i.bindingErr(err, s.Name, s.GetSpan(), env)
	}
	return valueResult(fn), nil
}

func (i *Interpreter) execEcho(s *ast.Echo, env *Environment) (ExecResult, error) {
	vals := make([]Value, len(s.Values))
	for idx, expr := range s.Values {
		v, err := i.evalExpr(expr, env)
		if err != nil {
			return ExecResult{}, err
		}
		vals[idx] = v
	}
	text, err := echo(i.output, vals)
	if err != nil {
		return ExecResult{}, fmt.Errorf("echo at %s: %w", s.GetSpan().Start, err)
	}
	return valueResult(text), nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLit:
		return NumberVal(e.Value), nil
	case *ast.StringLit:
		return TextVal(e.Value), nil
	case *ast.BoolLit:
		return BoolVal(e.Value), nil
	case *ast.UndefinedLit:
		return UndefinedVal{}, nil
	case *ast.Ident:
		return i.evalIdent(e, env)
	case *ast.Unary:
		return i.evalUnary(e, env)
	case *ast.Binary:
		return i.evalBinary(e, env)
	case *ast.Logical:
		return i.evalLogical(e, env)
	case *ast.Relational:
		return i.evalRelational(e, env)
	case *ast.Call:
		return i.evalCall(e, env)
	default:
		return nil, runtimeErr(diag.SyntaxError, expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

func (i *Interpreter) evalIdent(e *ast.Ident, env *Environment) (Value, error) {
	val, ok := env.Get(e.Name)
	if !ok {
		return nil, i.bindingErr(ErrUndeclared, e.Name, e.GetSpan(), env)
	}
	return val, nil
}

func (i *Interpreter) evalUnary(e *ast.Unary, env *Environment) (Value, error) {
	operand, err := i.evalExpr(e.Operand, env)
	if err != nil {
		return nil, err
	}

	if e.Op == token.KW_NOT {
		b, ok := operand.(BoolVal)
		if !ok {
			return nil, runtimeErr(diag.TypeMismatch, e.GetSpan(),
				"operator 'not' needs a Boolean, got %s", operand.TypeName())
		}
		return !b, nil
	}

	n, ok := operand.(NumberVal)
	if !ok {
		return nil, runtimeErr(diag.TypeMismatch, e.GetSpan(),
			"operator '%s' needs a Number, got %s", e.Op, operand.TypeName())
	}
	switch e.Op {
	case token.MINUS:
		return -n, nil
	case token.TILDE:
		return NumberVal(^int64(n)), nil
	case token.INC:
		return n + 1, nil
	case token.DEC:
		return n - 1, nil
	default:
		return nil, runtimeErr(diag.SyntaxError, e.GetSpan(), "unknown unary operator: %s", e.Op)
	}
}

func (i *Interpreter) evalOperands(left, right ast.Expr, env *Environment) (Value, Value, error) {
	l, err := i.evalExpr(left, env)
	if err != nil {
		return nil, nil, err
	}
	r, err := i.evalExpr(right, env)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func numberOperands(op token.Kind, l, r Value, s span.Span) (float64, float64, error) {
	ln, lok := l.(NumberVal)
	rn, rok := r.(NumberVal)
	if !lok || !rok {
		return 0, 0, runtimeErr(diag.TypeMismatch, s,
			"operator '%s' needs Number operands, got %s and %s", op, l.TypeName(), r.TypeName())
	}
	return float64(ln), float64(rn), nil
}

func (i *Interpreter) evalBinary(e *ast.Binary, env *Environment) (Value, error) {
	l, r, err := i.evalOperands(e.Left, e.Right, env)
	if err != nil {
		return nil, err
	}
	a, b, err := numberOperands(e.Op, l, r, e.GetSpan())
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.PLUS:
		return NumberVal(a + b), nil
	case token.MINUS:
		return NumberVal(a - b), nil
	case token.STAR:
		return NumberVal(a * b), nil
	case token.SLASH:
		return NumberVal(a / b), nil
	case token.PERCENT:
		return NumberVal(math.Mod(a, b)), nil
	case token.POW:
		return NumberVal(math.Pow(a, b)), nil
	case token.AMP:
		return NumberVal(int64(a) & int64(b)), nil
	case token.PIPE:
		return NumberVal(int64(a) | int64(b)), nil
	case token.CARET:
		return NumberVal(int64(a) ^ int64(b)), nil
	default:
		return nil, runtimeErr(diag.SyntaxError, e.GetSpan(), "unknown binary operator: %s", e.Op)
	}
}

// evalLogical evaluates both operands; and/or never short-circuit.
func (i *Interpreter) evalLogical(e *ast.Logical, env *Environment) (Value, error) {
	l, r, err := i.evalOperands(e.Left, e.Right, env)
	if err != nil {
		return nil, err
	}
	lb, lok := l.(BoolVal)
	rb, rok := r.(BoolVal)
	if !lok || !rok {
		return nil, runtimeErr(diag.TypeMismatch, e.GetSpan(),
			"operator '%s' needs Boolean operands, got %s and %s", e.Op, l.TypeName(), r.TypeName())
	}
	if e.Op == token.KW_AND {
		return lb && rb, nil
	}
	return lb || rb, nil
}

func (i *Interpreter) evalRelational(e *ast.Relational, env *Environment) (Value, error) {
	l, r, err := i.evalOperands(e.Left, e.Right, env)
	if err != nil {
		return nil, err
	}

	if e.Op == token.EQ || e.Op == token.NEQ {
		eq, ok := valuesEqual(l, r)
		if !ok {
			return nil, runtimeErr(diag.TypeMismatch, e.GetSpan(),
				"cannot compare %s with %s", l.TypeName(), r.TypeName())
		}
		return BoolVal(eq == (e.Op == token.EQ)), nil
	}

	a, b, err := numberOperands(e.Op, l, r, e.GetSpan())
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case token.LT:
		return BoolVal(a < b), nil
	case token.LTE:
		return BoolVal(a <= b), nil
	case token.GT:
		return BoolVal(a > b), nil
	case token.GTE:
		return BoolVal(a >= b), nil
	default:
		return nil, runtimeErr(diag.SyntaxError, e.GetSpan(), "unknown relational operator: %s", e.Op)
	}
}

// ============================================================
// Calls
// ============================================================

func (i *Interpreter) evalCall(e *ast.Call, env *Environment) (Value, error) {
	fn, err := i.resolveCallee(e, env)
	if err != nil {
		return nil, err
	}
	if len(e.Args) != len(fn.Params) {
		return nil, runtimeErr(diag.ArityMismatch, e.GetSpan(),
			"%s() expects %d argument(s), got %d", fn.Name, len(fn.Params), len(e.Args))
	}

	// Arguments are evaluated in the caller's scope
	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := i.evalExpr(argExpr, env)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	return i.callFunc(fn, args)
}

func (i *Interpreter) resolveCallee(e *ast.Call, env *Environment) (*FuncVal, error) {
	var callee Value
	if ident, ok := e.Callee.(*ast.Ident); ok {
		val, found := env.Get(ident.Name)
		if !found {
			err := runtimeErr(diag.UnknownCallee, e.GetSpan(), "'%s' is not a declared function", ident.Name)
			err.Hint = didYouMean(ident.Name, env.FuncNames())
			return nil, err
		}
		callee = val
	} else {
		val, err := i.evalExpr(e.Callee, env)
		if err != nil {
			return nil, err
		}
		callee = val
	}

	fn, ok := callee.(*FuncVal)
	if !ok {
		return nil, runtimeErr(diag.UnknownCallee, e.GetSpan(),
			"cannot call a value of type %s", callee.TypeName())
	}
	return fn, nil
}

// callFunc runs fn's body in a new frame parented to its captured scope.
// The call's value is the returned value, else the body's last value.
func (i *Interpreter) callFunc(fn *FuncVal, args []Value) (Value, error) {
	frame := NewEnvironment(fn.Closure)
	for idx, param := range fn.Params {
		// params are distinct (checked at parse time) so Define cannot fail
		_ = frame.Define(param, args[idx], false)
	}

	i.logger.Debug("function call",
		slog.String("function", fn.Name),
		slog.Int("argument-count", len(args)),
		slog.Int("frame-depth", frame.Depth()))

	result, err := i.execBlock(fn.Body.Stmts, frame)
	if err != nil {
		return nil, err
	}

	i.logger.Debug("function return",
		slog.String("function", fn.Name),
		slog.Bool("explicit", result.Signal == SigReturn),
		slog.String("value", result.Value.String()))

	return result.Value, nil
}
