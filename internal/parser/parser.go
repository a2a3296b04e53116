// Package parser implements Patakha's hand-written recursive-descent parser
// with panic-mode error recovery (spec.md §4.2), grounded on the shape of
// the teacher's recursive-descent expression parser
// (CWBudde-go-dws/internal/parser) generalized to Patakha's grammar.
package parser

import (
	"strconv"

	"github.com/patakha-lang/patakha/internal/ast"
	"github.com/patakha-lang/patakha/internal/diag"
	"github.com/patakha-lang/patakha/internal/lexer"
	"github.com/patakha-lang/patakha/internal/token"
)

// precedence levels, tight to loose per spec.md §4.2 (assignment is handled
// separately at the statement level, never inside parseExpression).
const (
	_ int = iota
	lowest
	logicalOr
	logicalAnd
	equality
	relational
	additive
	multiplicative
	unary
	postfix
)

var binPrecedence = map[token.Type]int{
	token.OR_OR:      logicalOr,
	token.AND_AND:    logicalAnd,
	token.EQ:         equality,
	token.NOT_EQ:     equality,
	token.LESS:       relational,
	token.GREATER:    relational,
	token.LESS_EQ:    relational,
	token.GREATER_EQ: relational,
	token.PLUS:       additive,
	token.MINUS:      additive,
	token.STAR:       multiplicative,
	token.SLASH:      multiplicative,
	token.PERCENT:    multiplicative,
}

// syncSet is the set of token kinds the parser resynchronizes on after a
// syntax error (spec.md §4.2 "Error recovery"): statement-starting keywords
// and '}'.
var syncSet = map[token.Type]bool{
	token.AGAR: true, token.TABTAK: true, token.JABTAK: true, token.KAR: true,
	token.SWITCH: true, token.TOD: true, token.JARI: true, token.NIKAL: true,
	token.BOL: true, token.RBRACE: true, token.BHAI: true, token.DECIMAL: true,
	token.TEXT: true, token.BOOLTYPE: true, token.IMPORT: true, token.EOF: true,
	token.SHURU: true, token.BASS: true, token.KAKSHA: true, token.STRUCT: true,
}

// Parser consumes a token stream and produces an AST plus diagnostics.
type Parser struct {
	lex  *lexer.Lexer
	sink *diag.Sink

	cur, peek                           token.Token
	curNewlineBefore, peekNewlineBefore bool
}

// New creates a Parser reading from lex, reporting diagnostics to sink.
func New(lex *lexer.Lexer, sink *diag.Sink) *Parser {
	p := &Parser{lex: lex, sink: sink}
	p.advance()
	p.advance()
	return p
}

// readLogical reads the next non-newline token, reporting whether at least
// one NEWLINE token was skipped to reach it.
func (p *Parser) readLogical() (token.Token, bool) {
	sawNewline := false
	for {
		tok := p.lex.NextToken()
		if tok.Type == token.NEWLINE {
			sawNewline = true
			continue
		}
		return tok, sawNewline
	}
}

func (p *Parser) advance() {
	p.cur, p.curNewlineBefore = p.peek, p.peekNewlineBefore
	p.peek, p.peekNewlineBefore = p.readLogical()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) errorf(format string, args ...any) {
	p.sink.Errorf(p.cur.Pos, format, args...)
}

// synchronize discards tokens up to the next synchronization point (spec.md
// §4.2 GLOSSARY "Sync point"): a statement-starting keyword or '}'.
func (p *Parser) synchronize() {
	for !syncSet[p.cur.Type] {
		p.advance()
	}
}

func (p *Parser) expect(t token.Type) token.Token {
	if p.cur.Type != t {
		p.errorf("unexpected token %q, expected %s", p.cur.Literal, t)
		tok := p.cur
		p.synchronize()
		return tok
	}
	tok := p.cur
	p.advance()
	return tok
}

// consumeTerminator enforces spec.md §4.2's statement terminator policy: an
// explicit ';', a newline before the current token, or the end of a block.
func (p *Parser) consumeTerminator() {
	if p.curIs(token.SEMICOLON) {
		p.advance()
		return
	}
	if p.curIs(token.RBRACE) || p.curIs(token.EOF) {
		return
	}
	if p.curNewlineBefore {
		return
	}
	p.errorf("missing statement terminator before %q", p.cur.Literal)
	p.synchronize()
}

// Parse runs the full grammar and returns the program AST plus a non-empty
// diagnostic list when errors occurred (spec.md §4.2 "Result").
func Parse(lex *lexer.Lexer, sink *diag.Sink) *ast.Program {
	p := New(lex, sink)
	return p.parseProgram()
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}

	for !p.curIs(token.SHURU) && !p.curIs(token.EOF) {
		decl := p.parseTopLevelDecl()
		if decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
	}

	if p.curIs(token.SHURU) {
		mainTok := p.cur
		p.advance()
		prog.Main = p.parseMainBlock(mainTok)
	} else {
		p.errorf("expected 'shuru' to start the main block")
	}

	for _, le := range p.lex.Errors() {
		p.sink.Errorf(le.Pos, "%s", le.Message)
	}

	return prog
}

// parseMainBlock parses the statements between shuru and bass without
// requiring an explicit '{' — the main block is its own delimiter pair.
func (p *Parser) parseMainBlock(tok token.Token) *ast.BlockStmt {
	block := &ast.BlockStmt{Tok: tok}
	for !p.curIs(token.BASS) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	if p.curIs(token.BASS) {
		p.advance()
	} else {
		p.errorf("expected 'bass' to end the main block")
	}
	return block
}

func (p *Parser) parseTopLevelDecl() ast.Decl {
	switch p.cur.Type {
	case token.IMPORT:
		return p.parseImportDecl()
	case token.KAKSHA, token.STRUCT:
		return p.parseAggregateDecl()
	case token.BHAI, token.DECIMAL, token.TEXT, token.BOOLTYPE, token.KHALI:
		return p.parseFuncOrVarDecl()
	default:
		p.errorf("unexpected token %q at top level", p.cur.Literal)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseImportDecl() *ast.ImportDecl {
	tok := p.cur
	p.advance()
	pathTok := p.expect(token.STRING)
	d := &ast.ImportDecl{Tok: tok, Path: pathTok.Literal}
	p.consumeTerminator()
	return d
}

func (p *Parser) parseAggregateDecl() *ast.AggregateDecl {
	tok := p.cur
	isClass := p.curIs(token.KAKSHA)
	p.advance()
	nameTok := p.expect(token.IDENT)
	p.expect(token.LBRACE)

	d := &ast.AggregateDecl{Tok: tok, Name: nameTok.Literal, IsClass: isClass}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		fieldType := p.parseTypeRef()
		fieldName := p.expect(token.IDENT)
		d.Fields = append(d.Fields, ast.Param{Type: fieldType, Name: fieldName.Literal})
		p.consumeTerminator()
	}
	p.expect(token.RBRACE)
	return d
}

func (p *Parser) typeTokenSet() bool {
	switch p.cur.Type {
	case token.BHAI, token.DECIMAL, token.TEXT, token.BOOLTYPE, token.KHALI:
		return true
	default:
		return false
	}
}

func (p *Parser) parseTypeRef() *ast.TypeRef {
	if p.typeTokenSet() || p.curIs(token.IDENT) {
		tok := p.cur
		p.advance()
		return &ast.TypeRef{Tok: tok, Name: tok.Literal}
	}
	p.errorf("expected a type, got %q", p.cur.Literal)
	tok := p.cur
	return &ast.TypeRef{Tok: tok, Name: "<error>"}
}

// parseFuncOrVarDecl disambiguates `type name (` (function) from
// `type name [= expr]` (variable) with one token of extra lookahead.
func (p *Parser) parseFuncOrVarDecl() ast.Decl {
	typ := p.parseTypeRef()
	nameTok := p.expect(token.IDENT)

	if p.curIs(token.LPAREN) {
		return p.parseFuncDecl(typ, nameTok)
	}
	return p.parseVarDeclTail(typ, nameTok)
}

func (p *Parser) parseFuncDecl(ret *ast.TypeRef, nameTok token.Token) *ast.FuncDecl {
	d := &ast.FuncDecl{Tok: nameTok, ReturnType: ret, Name: nameTok.Literal}
	p.expect(token.LPAREN)
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		pt := p.parseTypeRef()
		pn := p.expect(token.IDENT)
		d.Params = append(d.Params, ast.Param{Type: pt, Name: pn.Literal})
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	d.Body = p.parseBlock()
	return d
}

func (p *Parser) parseVarDeclTail(typ *ast.TypeRef, nameTok token.Token) *ast.VarDecl {
	d := &ast.VarDecl{Tok: nameTok, Type: typ, Name: nameTok.Literal}
	if p.curIs(token.LBRACK) {
		p.advance()
		lenTok := p.expect(token.INT)
		n, err := strconv.Atoi(lenTok.Literal)
		if err != nil || n <= 0 {
			p.sink.Errorf(lenTok.Pos, "array length must be a positive integer literal")
			n = 0
		}
		d.ArrayLen = n
		p.expect(token.RBRACK)
	}
	if p.curIs(token.ASSIGN) {
		p.advance()
		d.Init = p.parseExpression(lowest)
	}
	p.consumeTerminator()
	return d
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	tok := p.expect(token.LBRACE)
	b := &ast.BlockStmt{Tok: tok}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			b.Statements = append(b.Statements, stmt)
		}
	}
	p.expect(token.RBRACE)
	return b
}

// parseBlockOrSingle accepts either a brace-delimited block or, for
// convenience, treats a bare statement-starting construct as a single
// statement block (Patakha requires braces for compound bodies; this helper
// just normalizes `{ ... }` bodies uniformly).
func (p *Parser) parseBlockOrSingle() *ast.BlockStmt {
	if p.curIs(token.LBRACE) {
		return p.parseBlock()
	}
	tok := p.cur
	stmt := p.parseStatement()
	b := &ast.BlockStmt{Tok: tok}
	if stmt != nil {
		b.Statements = append(b.Statements, stmt)
	}
	return b
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.AGAR:
		return p.parseIf()
	case token.TABTAK:
		return p.parseWhile()
	case token.JABTAK:
		return p.parseFor()
	case token.KAR:
		return p.parseDoWhile()
	case token.SWITCH:
		return p.parseSwitch()
	case token.TOD:
		tok := p.cur
		p.advance()
		p.consumeTerminator()
		return &ast.BreakStmt{Tok: tok}
	case token.JARI:
		tok := p.cur
		p.advance()
		p.consumeTerminator()
		return &ast.ContinueStmt{Tok: tok}
	case token.NIKAL:
		return p.parseReturn()
	case token.BOL:
		return p.parsePrint()
	case token.BHAI, token.DECIMAL, token.TEXT, token.BOOLTYPE:
		decl := p.parseFuncOrVarDecl()
		if vd, ok := decl.(*ast.VarDecl); ok {
			return vd
		}
		if fd, ok := decl.(*ast.FuncDecl); ok {
			// Nested function declarations are not part of this language;
			// surface as an error but keep the body for recovery.
			p.sink.Errorf(fd.Pos(), "nested function declarations are not supported")
			return &ast.ExprStmt{Tok: fd.Tok}
		}
		return nil
	case token.KAKSHA, token.STRUCT:
		p.errorf("aggregate declarations are only allowed at top level")
		p.synchronize()
		return nil
	case token.IMPORT:
		p.errorf("import must appear at top level, before 'shuru'")
		p.synchronize()
		return nil
	case token.SEMICOLON:
		p.advance()
		return nil
	default:
		return p.parseSimpleStatement()
	}
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.cur
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpression(lowest)
	p.expect(token.RPAREN)
	then := p.parseBlockOrSingle()

	stmt := &ast.IfStmt{Tok: tok, Condition: cond, Then: then}
	if p.curIs(token.NAHI) {
		p.advance()
		if p.curIs(token.AGAR) {
			stmt.Else = p.parseIf()
		} else {
			stmt.Else = p.parseBlockOrSingle()
		}
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.cur
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpression(lowest)
	p.expect(token.RPAREN)
	body := p.parseBlockOrSingle()
	return &ast.WhileStmt{Tok: tok, Condition: cond, Body: body}
}

func (p *Parser) parseFor() ast.Statement {
	tok := p.cur
	p.advance()
	p.expect(token.LPAREN)

	var init ast.Statement
	if !p.curIs(token.SEMICOLON) {
		init = p.parseSimpleStatementNoTerminator()
	}
	// spec.md §4.2: separators inside jabtak(...) require a literal ';'.
	p.expect(token.SEMICOLON)

	var cond ast.Expression
	if !p.curIs(token.SEMICOLON) {
		cond = p.parseExpression(lowest)
	}
	p.expect(token.SEMICOLON)

	var post ast.Statement
	if !p.curIs(token.RPAREN) {
		post = p.parseSimpleStatementNoTerminator()
	}
	p.expect(token.RPAREN)

	body := p.parseBlockOrSingle()
	return &ast.ForStmt{Tok: tok, Init: init, Condition: cond, Post: post, Body: body}
}

func (p *Parser) parseDoWhile() ast.Statement {
	tok := p.cur
	p.advance()
	body := p.parseBlockOrSingle()
	p.expect(token.TABTAK)
	p.expect(token.LPAREN)
	cond := p.parseExpression(lowest)
	p.expect(token.RPAREN)
	p.consumeTerminator()
	return &ast.DoWhileStmt{Tok: tok, Body: body, Condition: cond}
}

func (p *Parser) parseSwitch() ast.Statement {
	tok := p.cur
	p.advance()
	p.expect(token.LPAREN)
	disc := p.parseExpression(lowest)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	stmt := &ast.SwitchStmt{Tok: tok, Discriminant: disc}
	seenDefault := false
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		clause := &ast.CaseClause{Tok: p.cur}
		if p.curIs(token.CASE) {
			p.advance()
			clause.Label = p.parseExpression(lowest)
			p.expect(token.COLON)
		} else if p.curIs(token.DEFAULT) {
			if seenDefault {
				p.errorf("duplicate 'default' arm in switch")
			}
			seenDefault = true
			clause.IsDefault = true
			p.advance()
			p.expect(token.COLON)
		} else {
			p.errorf("expected 'case' or 'default' in switch body")
			p.synchronize()
			continue
		}
		for !p.curIs(token.CASE) && !p.curIs(token.DEFAULT) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			s := p.parseStatement()
			if s != nil {
				clause.Body = append(clause.Body, s)
			}
		}
		stmt.Cases = append(stmt.Cases, clause)
	}
	p.expect(token.RBRACE)
	return stmt
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.cur
	p.advance()
	var val ast.Expression
	if !p.curIs(token.SEMICOLON) && !p.curIs(token.RBRACE) && !p.curNewlineBefore {
		val = p.parseExpression(lowest)
	}
	p.consumeTerminator()
	return &ast.ReturnStmt{Tok: tok, Value: val}
}

func (p *Parser) parsePrint() ast.Statement {
	tok := p.cur
	p.advance()
	p.expect(token.LPAREN)
	val := p.parseExpression(lowest)
	p.expect(token.RPAREN)
	p.consumeTerminator()
	return &ast.PrintStmt{Tok: tok, Value: val}
}

var compoundOps = map[token.Type]string{
	token.PLUS_ASSIGN:    "+",
	token.MINUS_ASSIGN:   "-",
	token.STAR_ASSIGN:    "*",
	token.SLASH_ASSIGN:   "/",
	token.PERCENT_ASSIGN: "%",
}

// parseSimpleStatement parses an assignment, compound-assignment,
// increment/decrement, or bare expression statement, then consumes its
// terminator.
func (p *Parser) parseSimpleStatement() ast.Statement {
	stmt := p.parseSimpleStatementNoTerminator()
	p.consumeTerminator()
	return stmt
}

// parseSimpleStatementNoTerminator is the same as parseSimpleStatement but
// leaves the terminator for the caller — used for jabtak(...) init/post
// clauses, which are delimited by literal ';'/')' rather than the usual
// terminator policy.
func (p *Parser) parseSimpleStatementNoTerminator() ast.Statement {
	tok := p.cur

	if p.curIs(token.INC) || p.curIs(token.DEC) {
		op := p.cur.Literal
		p.advance()
		target := p.parseUnary()
		if !ast.IsLValue(target) {
			p.sink.Errorf(tok.Pos, "invalid assignment target for %q", op)
		}
		return &ast.IncDecStmt{Tok: tok, Target: target, Operator: op}
	}

	expr := p.parseExpression(lowest)

	switch p.cur.Type {
	case token.ASSIGN:
		p.advance()
		val := p.parseExpression(lowest)
		return &ast.AssignStmt{Tok: tok, Target: expr, Value: val}
	case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN:
		op := compoundOps[p.cur.Type]
		opTok := p.cur
		p.advance()
		if !ast.IsLValue(expr) {
			p.sink.Errorf(tok.Pos, "invalid assignment target for %q=", op)
		}
		rhs := p.parseExpression(lowest)
		// Desugar x OP= e into x = x OP e (spec.md §4.2 "Assignment sugar").
		return &ast.AssignStmt{Tok: tok, Target: expr, Value: &ast.BinaryExpr{
			Tok: opTok, Left: expr, Operator: op, Right: rhs,
		}}
	case token.INC, token.DEC:
		op := p.cur.Literal
		p.advance()
		if !ast.IsLValue(expr) {
			p.sink.Errorf(tok.Pos, "invalid assignment target for %q", op)
		}
		return &ast.IncDecStmt{Tok: tok, Target: expr, Operator: op}
	default:
		return &ast.ExprStmt{Tok: tok, Expr: expr}
	}
}

// ---- expression parsing (precedence climbing) -----------------------------

func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parseUnary()

	for {
		prec, ok := binPrecedence[p.cur.Type]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.cur
		p.advance()
		right := p.parseExpression(prec + 1)

		if opTok.Type == token.AND_AND || opTok.Type == token.OR_OR {
			left = &ast.LogicalExpr{Tok: opTok, Left: left, Operator: opTok.Literal, Right: right}
		} else {
			left = &ast.BinaryExpr{Tok: opTok, Left: left, Operator: opTok.Literal, Right: right}
		}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.cur.Type {
	case token.MINUS, token.NOT:
		tok := p.cur
		op := tok.Literal
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Tok: tok, Operator: op, Right: operand}
	case token.INC, token.DEC:
		tok := p.cur
		op := tok.Literal
		p.advance()
		target := p.parseUnary()
		if !ast.IsLValue(target) {
			p.sink.Errorf(tok.Pos, "invalid operand for prefix %q", op)
		}
		return &ast.IncDecExpr{Tok: tok, Target: target, Operator: op, Prefix: true}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.cur.Type {
		case token.LBRACK:
			tok := p.cur
			p.advance()
			idx := p.parseExpression(lowest)
			p.expect(token.RBRACK)
			expr = &ast.IndexExpr{Tok: tok, Array: expr, Index: idx}
		case token.DOT:
			tok := p.cur
			p.advance()
			fieldTok := p.expect(token.IDENT)
			expr = &ast.FieldExpr{Tok: tok, Object: expr, Field: fieldTok.Literal}
		case token.INC, token.DEC:
			tok := p.cur
			op := tok.Literal
			if !ast.IsLValue(expr) {
				p.sink.Errorf(tok.Pos, "invalid operand for postfix %q", op)
			}
			p.advance()
			expr = &ast.IncDecExpr{Tok: tok, Target: expr, Operator: op, Prefix: false}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.cur.Type {
	case token.INT:
		tok := p.cur
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorf("malformed integer literal %q", tok.Literal)
		}
		p.advance()
		return &ast.IntegerLiteral{Tok: tok, Value: v}
	case token.FLOAT:
		tok := p.cur
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf("malformed float literal %q", tok.Literal)
		}
		p.advance()
		return &ast.FloatLiteral{Tok: tok, Value: v}
	case token.STRING:
		tok := p.cur
		p.advance()
		return &ast.StringLiteral{Tok: tok, Value: tok.Literal}
	case token.TRUE, token.FALSE:
		tok := p.cur
		p.advance()
		return &ast.BoolLiteral{Tok: tok, Value: tok.Type == token.TRUE}
	case token.BATA:
		tok := p.cur
		p.advance()
		if p.curIs(token.LPAREN) {
			p.advance()
			p.expect(token.RPAREN)
		}
		return &ast.InputExpr{Tok: tok}
	case token.BHAI, token.DECIMAL, token.BOOLTYPE, token.TEXT:
		return p.parseCast()
	case token.LPAREN:
		p.advance()
		expr := p.parseExpression(lowest)
		p.expect(token.RPAREN)
		return expr
	case token.IDENT:
		tok := p.cur
		p.advance()
		if p.curIs(token.LPAREN) {
			return p.parseCallTail(tok)
		}
		return &ast.Identifier{Tok: tok, Value: tok.Literal}
	default:
		p.errorf("unexpected token %q in expression", p.cur.Literal)
		tok := p.cur
		p.advance()
		return &ast.ErrorNode{Tok: tok, Msg: "unexpected token in expression"}
	}
}

// parseCast parses a primitive-type cast expression: bhai(x), decimal(x),
// bool(x) (spec.md §4.3).
func (p *Parser) parseCast() ast.Expression {
	tok := p.cur
	target := tok.Literal
	p.advance()
	p.expect(token.LPAREN)
	inner := p.parseExpression(lowest)
	p.expect(token.RPAREN)
	return &ast.CastExpr{Tok: tok, Target: target, Inner: inner}
}

func (p *Parser) parseCallTail(nameTok token.Token) ast.Expression {
	call := &ast.CallExpr{Tok: nameTok, Callee: nameTok.Literal}
	p.expect(token.LPAREN)
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		call.Args = append(call.Args, p.parseExpression(lowest))
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return call
}
