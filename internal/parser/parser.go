// Package parser implements a recursive-descent, precedence-climbing
// parser that turns a token stream into an AST.
package parser

import (
	"strconv"

	"github.com/cwbudde/luabc/internal/ast"
	"github.com/cwbudde/luabc/internal/diag"
	"github.com/cwbudde/luabc/internal/token"
)

// Parser consumes a token slice with one-token lookahead.
type Parser struct {
	toks   []token.Token
	idx    int
	cur    token.Token
	source string
	file   string
}

// New builds a Parser over a complete token stream (as produced by
// lexer.Tokenize, including the trailing Eof). source and file are used
// only to render diagnostics.
func New(toks []token.Token, source, file string) *Parser {
	p := &Parser{toks: toks, source: source, file: file}
	if len(toks) > 0 {
		p.cur = toks[0]
	}
	return p
}

func (p *Parser) peek() token.Token {
	if p.idx+1 < len(p.toks) {
		return p.toks[p.idx+1]
	}
	return token.Token{Kind: token.Eof}
}

func (p *Parser) advance() {
	if p.idx+1 < len(p.toks) {
		p.idx++
		p.cur = p.toks[p.idx]
	}
}

func (p *Parser) matches(kind token.Kind) bool {
	return p.cur.Kind == kind
}

// eat consumes the current token if it has the expected kind, otherwise it
// reports a fatal syntax error naming the expected and actual kinds.
func (p *Parser) eat(kind token.Kind) error {
	if !p.matches(kind) {
		return p.errorf("expected %s, found %s", kind, p.cur.Kind)
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(msg string, args ...any) error {
	return diag.New(diag.Syntax, p.cur.Pos, p.source, p.file, msg, args...)
}

// Parse parses the whole token stream as a program: a statement list
// terminated by Eof.
func (p *Parser) Parse() ([]ast.Stmt, error) {
	stmts, err := p.stmtList()
	if err != nil {
		return nil, err
	}
	if !p.matches(token.Eof) {
		return nil, p.errorf("unexpected token %s after program", p.cur.Kind)
	}
	return stmts, nil
}

var stmtListTerminators = map[token.Kind]bool{
	token.Eof:    true,
	token.Elseif: true,
	token.Else:   true,
	token.End:    true,
}

// stmtList = { stmt }, bounded above by {Eof, Elseif, Else, End}.
func (p *Parser) stmtList() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !stmtListTerminators[p.cur.Kind] {
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// stmt = assign_stmt | if_stmt | while_stmt | func_decl_stmt | return_stmt
func (p *Parser) stmt() (ast.Stmt, error) {
	switch p.cur.Kind {
	case token.If:
		return p.ifStmt()
	case token.While:
		return p.whileStmt()
	case token.Function:
		return p.funcDeclStmt()
	case token.Return:
		return p.returnStmt()
	case token.Ident:
		return p.assignStmt()
	default:
		return nil, p.errorf("unexpected token %s at statement position", p.cur.Kind)
	}
}

// func_decl_stmt = 'function' ident '(' [ident_list] ')' stmt_list 'end'
func (p *Parser) funcDeclStmt() (ast.Stmt, error) {
	if err := p.eat(token.Function); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.Lpar); err != nil {
		return nil, err
	}

	var params []ast.Ident
	if !p.matches(token.Rpar) {
		params, err = p.identList()
		if err != nil {
			return nil, err
		}
	}
	if err := p.eat(token.Rpar); err != nil {
		return nil, err
	}

	body, err := p.stmtList()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.End); err != nil {
		return nil, err
	}

	return ast.FuncDecl{Name: name.Name, Params: params, Body: body}, nil
}

// return_stmt = 'return' [ expr ]
func (p *Parser) returnStmt() (ast.Stmt, error) {
	if err := p.eat(token.Return); err != nil {
		return nil, err
	}
	if stmtListTerminators[p.cur.Kind] {
		return ast.Return{}, nil
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	return ast.Return{Value: value}, nil
}

// assign_stmt = ident_list '=' expr_list
func (p *Parser) assignStmt() (ast.Stmt, error) {
	targets, err := p.identList()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.Assign); err != nil {
		return nil, err
	}
	values, err := p.exprList()
	if err != nil {
		return nil, err
	}
	return ast.Assign{Targets: targets, Values: values}, nil
}

// if_stmt = 'if' expr 'then' stmt_list {'elseif' expr 'then' stmt_list} ['else' stmt_list] 'end'
func (p *Parser) ifStmt() (ast.Stmt, error) {
	if err := p.eat(token.If); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.Then); err != nil {
		return nil, err
	}
	thenBody, err := p.stmtList()
	if err != nil {
		return nil, err
	}

	var elseifConds []ast.Expr
	var elseifBodies [][]ast.Stmt
	for p.matches(token.Elseif) {
		p.advance()
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.eat(token.Then); err != nil {
			return nil, err
		}
		body, err := p.stmtList()
		if err != nil {
			return nil, err
		}
		elseifConds = append(elseifConds, cond)
		elseifBodies = append(elseifBodies, body)
	}

	var elseBody []ast.Stmt
	if p.matches(token.Else) {
		p.advance()
		elseBody, err = p.stmtList()
		if err != nil {
			return nil, err
		}
	}

	if err := p.eat(token.End); err != nil {
		return nil, err
	}

	return ast.If{
		Cond:         cond,
		ThenBody:     thenBody,
		ElseifConds:  elseifConds,
		ElseifBodies: elseifBodies,
		ElseBody:     elseBody,
	}, nil
}

// while_stmt = 'while' expr 'do' stmt_list 'end'
func (p *Parser) whileStmt() (ast.Stmt, error) {
	if err := p.eat(token.While); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.Do); err != nil {
		return nil, err
	}
	body, err := p.stmtList()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.End); err != nil {
		return nil, err
	}
	return ast.While{Cond: cond, Body: body}, nil
}

// ident_list = ident { ',' ident }
func (p *Parser) identList() ([]ast.Ident, error) {
	first, err := p.ident()
	if err != nil {
		return nil, err
	}
	res := []ast.Ident{first}
	for p.matches(token.Comma) {
		p.advance()
		id, err := p.ident()
		if err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, nil
}

func (p *Parser) ident() (ast.Ident, error) {
	name := p.cur.Literal
	if err := p.eat(token.Ident); err != nil {
		return ast.Ident{}, err
	}
	return ast.Ident{Name: name}, nil
}

// expr_list = expr { ',' expr }
func (p *Parser) exprList() ([]ast.Expr, error) {
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	res := []ast.Expr{first}
	for p.matches(token.Comma) {
		p.advance()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

// expr = expr6 { 'or' expr6 }
func (p *Parser) expr() (ast.Expr, error) {
	node, err := p.expr6()
	if err != nil {
		return nil, err
	}
	for p.matches(token.Or) {
		p.advance()
		right, err := p.expr6()
		if err != nil {
			return nil, err
		}
		node = ast.BinOp{Op: token.Or, Left: node, Right: right}
	}
	return node, nil
}

// expr6 = expr5 { 'and' expr5 }
func (p *Parser) expr6() (ast.Expr, error) {
	node, err := p.expr5()
	if err != nil {
		return nil, err
	}
	for p.matches(token.And) {
		p.advance()
		right, err := p.expr5()
		if err != nil {
			return nil, err
		}
		node = ast.BinOp{Op: token.And, Left: node, Right: right}
	}
	return node, nil
}

var comparisonOps = map[token.Kind]bool{
	token.Lt: true, token.Gt: true, token.Le: true,
	token.Ge: true, token.Eq: true, token.UnEq: true,
}

// expr5 = expr4 { ('<'|'>'|'<='|'>='|'=='|'~=') expr4 }
func (p *Parser) expr5() (ast.Expr, error) {
	node, err := p.expr4()
	if err != nil {
		return nil, err
	}
	for comparisonOps[p.cur.Kind] {
		op := p.cur.Kind
		p.advance()
		right, err := p.expr4()
		if err != nil {
			return nil, err
		}
		node = ast.BinOp{Op: op, Left: node, Right: right}
	}
	return node, nil
}

// expr4 = expr3 ['..' expr4] -- right-associative
func (p *Parser) expr4() (ast.Expr, error) {
	node, err := p.expr3()
	if err != nil {
		return nil, err
	}
	if p.matches(token.Concat) {
		p.advance()
		right, err := p.expr4()
		if err != nil {
			return nil, err
		}
		return ast.BinOp{Op: token.Concat, Left: node, Right: right}, nil
	}
	return node, nil
}

// expr3 = expr2 { ('+'|'-') expr2 }
func (p *Parser) expr3() (ast.Expr, error) {
	node, err := p.expr2()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == token.Plus || p.cur.Kind == token.Minus {
		op := p.cur.Kind
		p.advance()
		right, err := p.expr2()
		if err != nil {
			return nil, err
		}
		node = ast.BinOp{Op: op, Left: node, Right: right}
	}
	return node, nil
}

// expr2 = expr1 { ('*'|'/'|'//'|'%') expr1 }
func (p *Parser) expr2() (ast.Expr, error) {
	node, err := p.expr1()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == token.Mul || p.cur.Kind == token.RealDiv ||
		p.cur.Kind == token.IntDiv || p.cur.Kind == token.Mod {
		op := p.cur.Kind
		p.advance()
		right, err := p.expr1()
		if err != nil {
			return nil, err
		}
		node = ast.BinOp{Op: op, Left: node, Right: right}
	}
	return node, nil
}

// expr1 = {('not'|'#'|'-')} expr0 -- unary prefix, right-associative
func (p *Parser) expr1() (ast.Expr, error) {
	if p.cur.Kind == token.Not || p.cur.Kind == token.Len || p.cur.Kind == token.Minus {
		op := p.cur.Kind
		p.advance()
		operand, err := p.expr1()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Op: op, Operand: operand}, nil
	}
	return p.expr0()
}

// expr0 = factor ['^' expr0] -- right-associative
func (p *Parser) expr0() (ast.Expr, error) {
	node, err := p.factor()
	if err != nil {
		return nil, err
	}
	if p.matches(token.Pow) {
		p.advance()
		right, err := p.expr0()
		if err != nil {
			return nil, err
		}
		return ast.BinOp{Op: token.Pow, Left: node, Right: right}, nil
	}
	return node, nil
}

// factor = ident | number | string | '(' expr ')' | 'false' | 'true' | call
func (p *Parser) factor() (ast.Expr, error) {
	switch p.cur.Kind {
	case token.Ident:
		if p.peek().Kind == token.Lpar {
			return p.functionCall()
		}
		node := ast.Ident{Name: p.cur.Literal}
		p.advance()
		return node, nil
	case token.Number:
		node := ast.Number{Value: parseNumber(p.cur.Literal)}
		p.advance()
		return node, nil
	case token.String:
		node := ast.String{Value: p.cur.Literal}
		p.advance()
		return node, nil
	case token.Lpar:
		p.advance()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.eat(token.Rpar); err != nil {
			return nil, err
		}
		return inner, nil
	case token.False:
		p.advance()
		return ast.Boolean{Value: false}, nil
	case token.True:
		p.advance()
		return ast.Boolean{Value: true}, nil
	default:
		return nil, p.errorf("unexpected token %s in expression", p.cur.Kind)
	}
}

// parseNumber converts a lexeme already validated by the lexer (digits with
// an optional '.' fraction) into its float64 value. The lexer guarantees
// this always succeeds.
func parseNumber(lit string) float64 {
	v, _ := strconv.ParseFloat(lit, 64)
	return v
}

// call = ident '(' expr_list ')'
func (p *Parser) functionCall() (ast.Expr, error) {
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.eat(token.Lpar); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if !p.matches(token.Rpar) {
		args, err = p.exprList()
		if err != nil {
			return nil, err
		}
	}
	if err := p.eat(token.Rpar); err != nil {
		return nil, err
	}
	return ast.FuncCall{Name: name.Name, Args: args}, nil
}
