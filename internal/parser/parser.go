// Package parser implements the syntax analysis for runic.
// It uses precedence climbing over a binding-power table for expressions and
// recursive descent for statements. Parsing stops at the first error.
package parser

import (
	"fmt"
	"runic/internal/ast"
	"runic/internal/diag"
	"runic/internal/span"
	"runic/internal/token"
	"strconv"
	"strings"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // or
	bpAnd        = 20 // and
	bpBitwise    = 30 // & | ^
	bpRelational = 40 // > < >= <= == !=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * / % **
	bpPrefix     = 70 // - not ~ ++ --
)

// infixBP maps every binary operator to its left binding power.
// Operators absent from the table end an expression.
var infixBP = map[token.Kind]int{
	token.KW_OR:   bpOr,
	token.KW_AND:  bpAnd,
	token.AMP:     bpBitwise,
	token.PIPE:    bpBitwise,
	token.CARET:   bpBitwise,
	token.GT:      bpRelational,
	token.LT:      bpRelational,
	token.GTE:     bpRelational,
	token.LTE:     bpRelational,
	token.EQ:      bpRelational,
	token.NEQ:     bpRelational,
	token.PLUS:    bpAdditive,
	token.MINUS:   bpAdditive,
	token.STAR:    bpMultiply,
	token.SLASH:   bpMultiply,
	token.PERCENT: bpMultiply,
	token.POW:     bpMultiply,
}

var prefixOps = map[token.Kind]bool{
	token.MINUS:  true,
	token.KW_NOT: true,
	token.TILDE:  true,
	token.INC:    true,
	token.DEC:    true,
}

// compoundOps maps compound assignment tokens to their binary operator.
var compoundOps = map[token.Kind]token.Kind{
	token.PLUS_ASSIGN:  token.PLUS,
	token.MINUS_ASSIGN: token.MINUS,
	token.STAR_ASSIGN:  token.STAR,
	token.SLASH_ASSIGN: token.SLASH,
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens    []token.Token
	pos       int
	loopDepth int // enclosing loops in the current function body
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a whole token stream into top-level statements.
func Parse(tokens []token.Token) ([]ast.Stmt, error) {
	prog, err := New(tokens).ParseProgram()
	if err != nil {
		return nil, err
	}
	return prog.Body, nil
}

// ParseProgram consumes the whole input. The returned error is a
// diag.Diagnostic of kind SyntaxError or InvalidToken.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	startPos := p.peek().Span.Start

	p.skipSemicolons()
	for !p.isAtEnd() {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, stmt)
		p.skipSemicolons()
	}

	prog.Span = span.Span{Start: startPos, End: p.peek().Span.End}
	return prog, nil
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		if len(p.tokens) > 0 {
			last := p.tokens[len(p.tokens)-1].Span
			return token.Token{Kind: token.EOF, Span: span.Span{Start: last.End, End: last.End}}
		}
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) skipSemicolons() {
	for p.check(token.SEMICOLON) {
		p.advance()
	}
}

// expect consumes a token of the given kind or fails with a message naming
// what the construct needed, e.g. "expected ';' after echo".
func (p *Parser) expect(kind token.Kind, context string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, p.unexpected(p.peek(), fmt.Sprintf("expected '%s' %s", kind, context))
}

// unexpected builds the error for tok. INVALID tokens are reported as such
// regardless of what the parser was looking for.
func (p *Parser) unexpected(tok token.Token, msg string) error {
	if tok.Kind == token.INVALID {
		return InvalidTokenError(tok)
	}
	return diag.Errorf(diag.SyntaxError, tok.Span, "%s, got %s", msg, describe(tok))
}

// InvalidTokenError describes an INVALID token produced by the lexer.
func InvalidTokenError(tok token.Token) diag.Diagnostic {
	if strings.HasPrefix(tok.Lexeme, `"`) {
		return diag.Errorf(diag.InvalidToken, tok.Span, "unterminated string literal")
	}
	return diag.Errorf(diag.InvalidToken, tok.Span, "unexpected character '%s'", tok.Lexeme)
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return fmt.Sprintf("identifier '%s'", tok.Lexeme)
	case token.NUMBER:
		return fmt.Sprintf("number %s", tok.Lexeme)
	case token.STRING:
		return fmt.Sprintf("string %q", tok.Lexeme)
	default:
		return fmt.Sprintf("'%s'", tok.Kind)
	}
}

// ============================================================
// Statement parsing
// ============================================================

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.peekKind() {
	case token.KW_LET, token.KW_MUT:
		return p.parseVarDecl()
	case token.KW_IF:
		return p.parseIf()
	case token.KW_WHILE:
		return p.parseWhile()
	case token.KW_DEF:
		return p.parseFuncDecl()
	case token.KW_RETURN:
		return p.parseReturn()
	case token.KW_ECHO:
		return p.parseEcho()
	case token.KW_HALT, token.KW_SKIP:
		return p.parseLoopControl()
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseSimpleStmt()
	}
}

// parseVarDecl parses: (let | mut) IDENT [ = expr ] ;
func (p *Parser) parseVarDecl() (ast.Stmt, error) {
	start := p.advance() // 'let' or 'mut'
	stmt := &ast.VarDecl{Mutable: start.Kind == token.KW_MUT}

	nameTok, err := p.expect(token.IDENT, fmt.Sprintf("after '%s'", start.Kind))
	if err != nil {
		return nil, err
	}
	stmt.Name = nameTok.Lexeme

	if p.check(token.ASSIGN) {
		p.advance()
		if stmt.Init, err = p.parseExpr(bpNone); err != nil {
			return nil, err
		}
	} else if !stmt.Mutable {
		tok := p.peek()
		if tok.Kind == token.SEMICOLON {
			return nil, diag.Errorf(diag.SyntaxError, nameTok.Span,
				"'let %s' needs an initializer; use 'mut' to declare it undefined", stmt.Name)
		}
		return nil, p.unexpected(tok, "expected '=' after variable name")
	}

	if _, err := p.expect(token.SEMICOLON, "after variable declaration"); err != nil {
		return nil, err
	}
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt, nil
}

// parseIf parses: if cond block { elif cond block } [ else block ]
// The chain is linked through Alternate; else becomes `if true`.
func (p *Parser) parseIf() (ast.Stmt, error) {
	start := p.advance() // 'if'
	root, err := p.parseIfTail(start)
	if err != nil {
		return nil, err
	}

	current := root
	for p.check(token.KW_ELIF) {
		elifTok := p.advance()
		next, err := p.parseIfTail(elifTok)
		if err != nil {
			return nil, err
		}
		current.Alternate = next
		current = next
	}

	if p.check(token.KW_ELSE) {
		elseTok := p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		current.Alternate = &ast.If{
			StmtBase:   makeStmtBase(elseTok.Span.Start, p.prevEnd()),
			Condition:  &ast.BoolLit{ExprBase: makeExprBase(elseTok.Span.Start, elseTok.Span.End), Value: true},
			Consequent: body,
		}
	}

	root.Span = p.makeSpan(start.Span.Start)
	return root, nil
}

// parseIfTail parses the `cond block` following 'if' or 'elif'.
func (p *Parser) parseIfTail(kw token.Token) (*ast.If, error) {
	cond, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.If{
		StmtBase:   makeStmtBase(kw.Span.Start, p.prevEnd()),
		Condition:  cond,
		Consequent: body,
	}, nil
}

// parseWhile parses: while cond block
func (p *Parser) parseWhile() (ast.Stmt, error) {
	start := p.advance() // 'while'
	cond, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}

	p.loopDepth++
	body, err := p.parseBlock()
	p.loopDepth--
	if err != nil {
		return nil, err
	}

	return &ast.While{
		StmtBase:  makeStmtBase(start.Span.Start, p.prevEnd()),
		Condition: cond,
		Body:      body,
	}, nil
}

// parseFuncDecl parses: def IDENT ( params ) block
func (p *Parser) parseFuncDecl() (ast.Stmt, error) {
	start := p.advance() // 'def'
	nameTok, err := p.expect(token.IDENT, "after 'def'")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}

	// halt/skip never cross a function boundary
	outer := p.loopDepth
	p.loopDepth = 0
	body, err := p.parseBlock()
	p.loopDepth = outer
	if err != nil {
		return nil, err
	}

	return &ast.FuncDecl{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Name:     nameTok.Lexeme,
		Params:   params,
		Body:     body,
	}, nil
}

// parseParamList parses: ( ident, ident, ... )
func (p *Parser) parseParamList() ([]string, error) {
	if _, err := p.expect(token.LPAREN, "after function name"); err != nil {
		return nil, err
	}

	var params []string
	seen := make(map[string]bool)
	if !p.check(token.RPAREN) {
		for {
			nameTok, err := p.expect(token.IDENT, "in parameter list")
			if err != nil {
				return nil, err
			}
			if seen[nameTok.Lexeme] {
				return nil, diag.Errorf(diag.SyntaxError, nameTok.Span, "duplicate parameter '%s'", nameTok.Lexeme)
			}
			seen[nameTok.Lexeme] = true
			params = append(params, nameTok.Lexeme)

			if !p.check(token.COMMA) {
				break
			}
			p.advance() // ','
		}
	}

	if _, err := p.expect(token.RPAREN, "after parameters"); err != nil {
		return nil, err
	}
	return params, nil
}

// parseReturn parses: return [expr] ;
func (p *Parser) parseReturn() (ast.Stmt, error) {
	start := p.advance() // 'return'
	stmt := &ast.Return{}

	if !p.check(token.SEMICOLON) {
		value, err := p.parseExpr(bpNone)
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}

	if _, err := p.expect(token.SEMICOLON, "after return value"); err != nil {
		return nil, err
	}
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt, nil
}

// parseEcho parses: echo expr { , expr } ;
func (p *Parser) parseEcho() (ast.Stmt, error) {
	start := p.advance() // 'echo'
	stmt := &ast.Echo{}

	for {
		value, err := p.parseExpr(bpNone)
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, value)
		if !p.check(token.COMMA) {
			break
		}
		p.advance() // ','
	}

	if _, err := p.expect(token.SEMICOLON, "after echo"); err != nil {
		return nil, err
	}
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt, nil
}

// parseLoopControl parses: halt ; | skip ;
func (p *Parser) parseLoopControl() (ast.Stmt, error) {
	kw := p.advance()
	if p.loopDepth == 0 {
		return nil, diag.Errorf(diag.SyntaxError, kw.Span, "'%s' outside of a loop", kw.Kind)
	}
	if _, err := p.expect(token.SEMICOLON, fmt.Sprintf("after '%s'", kw.Kind)); err != nil {
		return nil, err
	}

	base := makeStmtBase(kw.Span.Start, p.prevEnd())
	if kw.Kind == token.KW_HALT {
		return &ast.Halt{StmtBase: base}, nil
	}
	return &ast.Skip{StmtBase: base}, nil
}

// parseBlock parses: { stmts }
func (p *Parser) parseBlock() (*ast.Block, error) {
	start, err := p.expect(token.LBRACE, "to open block")
	if err != nil {
		return nil, err
	}
	block := &ast.Block{}

	p.skipSemicolons()
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
		p.skipSemicolons()
	}

	if _, err := p.expect(token.RBRACE, "to close block"); err != nil {
		return nil, err
	}
	block.Span = p.makeSpan(start.Span.Start)
	return block, nil
}

// parseSimpleStmt parses an assignment or an expression statement.
// An expression statement may drop its ';' when it closes a block or the program.
func (p *Parser) parseSimpleStmt() (ast.Stmt, error) {
	expr, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}

	if _, compound := compoundOps[p.peekKind()]; compound || p.check(token.ASSIGN) {
		return p.parseAssignRest(expr)
	}

	if p.check(token.SEMICOLON) {
		p.advance()
	} else if !p.check(token.RBRACE) && !p.isAtEnd() {
		return nil, p.unexpected(p.peek(), "expected ';' after expression")
	}

	return &ast.ExprStmt{
		StmtBase: makeStmtBase(expr.GetSpan().Start, p.prevEnd()),
		Expr:     expr,
	}, nil
}

// parseAssignRest parses the `= expr ;` (or `op= expr ;`) after a target.
func (p *Parser) parseAssignRest(target ast.Expr) (ast.Stmt, error) {
	opTok := p.advance()
	ident, ok := target.(*ast.Ident)
	if !ok {
		return nil, diag.Errorf(diag.SyntaxError, target.GetSpan(), "invalid assignment target")
	}

	value, err := p.parseExpr(bpNone)
	if err != nil {
		return nil, err
	}

	// Desugar: target op= rhs -> target = target op rhs
	if binOp, ok := compoundOps[opTok.Kind]; ok {
		value = &ast.Binary{
			ExprBase: makeExprBase(ident.Span.Start, value.GetSpan().End),
			Op:       binOp,
			Left:     ident,
			Right:    value,
		}
	}

	if _, err := p.expect(token.SEMICOLON, "after assignment"); err != nil {
		return nil, err
	}
	return &ast.Assign{
		StmtBase: makeStmtBase(ident.Span.Start, p.prevEnd()),
		Target:   ident,
		Value:    value,
	}, nil
}

// ============================================================
// Expression parsing (precedence climbing)
// ============================================================

// parseExpr parses an expression whose operators all bind tighter than minBP.
func (p *Parser) parseExpr(minBP int) (ast.Expr, error) {
	left, err := p.nud()
	if err != nil {
		return nil, err
	}

	for {
		opTok := p.peek()
		bp, ok := infixBP[opTok.Kind]
		if !ok || bp <= minBP {
			break
		}
		p.advance()
		// passing bp (not bp-1) makes every level left-associative
		right, err := p.parseExpr(bp)
		if err != nil {
			return nil, err
		}
		left = makeInfix(opTok.Kind, left, right)
	}

	return left, nil
}

// makeInfix builds the node family matching op.
func makeInfix(op token.Kind, left, right ast.Expr) ast.Expr {
	base := makeExprBase(left.GetSpan().Start, right.GetSpan().End)
	switch infixBP[op] {
	case bpOr, bpAnd:
		return &ast.Logical{ExprBase: base, Op: op, Left: left, Right: right}
	case bpRelational:
		return &ast.Relational{ExprBase: base, Op: op, Left: left, Right: right}
	default:
		return &ast.Binary{ExprBase: base, Op: op, Left: left, Right: right}
	}
}

// nud parses a prefix operation or a primary expression.
func (p *Parser) nud() (ast.Expr, error) {
	tok := p.peek()

	if prefixOps[tok.Kind] {
		p.advance()
		operand, err := p.parseExpr(bpPrefix)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       tok.Kind,
			Operand:  operand,
		}, nil
	}

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, diag.Errorf(diag.SyntaxError, tok.Span, "malformed number '%s'", tok.Lexeme)
		}
		return &ast.NumberLit{ExprBase: makeExprBase(tok.Span.Start, tok.Span.End), Value: val}, nil

	case token.STRING:
		p.advance()
		return &ast.StringLit{ExprBase: makeExprBase(tok.Span.Start, tok.Span.End), Value: tok.Lexeme}, nil

	case token.KW_TRUE, token.KW_FALSE:
		p.advance()
		return &ast.BoolLit{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Kind == token.KW_TRUE,
		}, nil

	case token.KW_UNDEFINED:
		p.advance()
		return &ast.UndefinedLit{ExprBase: makeExprBase(tok.Span.Start, tok.Span.End)}, nil

	case token.IDENT:
		p.advance()
		ident := &ast.Ident{ExprBase: makeExprBase(tok.Span.Start, tok.Span.End), Name: tok.Lexeme}
		if p.check(token.LPAREN) {
			return p.parseCall(ident)
		}
		return ident, nil

	case token.LPAREN:
		p.advance() // '('
		expr, err := p.parseExpr(bpNone)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "to close parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.unexpected(tok, "expected expression")
	}
}

// parseCall parses: callee ( args )
func (p *Parser) parseCall(callee *ast.Ident) (ast.Expr, error) {
	p.advance() // '('
	var args []ast.Expr

	if !p.check(token.RPAREN) {
		for {
			arg, err := p.parseExpr(bpNone)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.check(token.COMMA) {
				break
			}
			p.advance() // ','
		}
	}

	end, err := p.expect(token.RPAREN, "after arguments")
	if err != nil {
		return nil, err
	}
	return &ast.Call{
		ExprBase: makeExprBase(callee.Span.Start, end.Span.End),
		Callee:   callee,
		Args:     args,
	}, nil
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
