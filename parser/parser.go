// Package parser implements the Lox recursive-descent grammar from the
// language's authoritative grammar, with statement-boundary error
// recovery so a single run can surface more than one syntax error.
package parser

import (
	"errors"
	"fmt"

	"github.com/loxlang/golox/ast"
	"github.com/loxlang/golox/token"
)

// Parser walks a flat token slice left to right, producing AST nodes.
type Parser struct {
	tokens  []token.Token
	current int
	errs    []error
}

// NewParser creates a parser over tokens, which must end in a single
// token.EOF.
func NewParser(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseError is a single syntax error located at a token.
type ParseError struct {
	Token token.Token
	Msg   string
}

func (e ParseError) Error() string {
	if e.Token.Kind == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Msg)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Msg)
}

// parsePanic is the internal control-flow signal used to unwind out of a
// partially parsed declaration back to declaration's synchronize-and-
// continue recovery, the same way the standard library's own go/parser recovers from
// a bad production without leaking panics past the package boundary.
type parsePanic struct{ err ParseError }

// ParseDecl parses a whole program: zero or more declarations followed
// by EOF.
func (p *Parser) ParseDecl() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, errors.Join(p.errs...)
}

// ParseExpr parses a single expression on its own, outside any
// statement. The driver and the REPL do not call it; they parse whole
// programs with ParseDecl.
func (p *Parser) ParseExpr() (expr ast.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			pp, ok := r.(parsePanic)
			if !ok {
				panic(r)
			}
			err = errors.Join(append(p.errs, pp.err)...)
		}
	}()
	expr = p.expression()
	return expr, errors.Join(p.errs...)
}

func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			pp, ok := r.(parsePanic)
			if !ok {
				panic(r)
			}
			p.errs = append(p.errs, pp.err)
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.match(token.CLASS):
		return p.classDecl()
	case p.match(token.FUN):
		return p.function("function")
	case p.match(token.VAR):
		return p.varDecl()
	default:
		return p.statement()
	}
}

// classDecl = "class" IDENTIFIER ( "<" IDENTIFIER )? "{" function* "}" ;
func (p *Parser) classDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect class name.")

	var superclass *ast.Variable
	if p.match(token.LESS) {
		p.consume(token.IDENTIFIER, "Expect superclass name.")
		superclass = ast.NewVariable(p.previous())
	}

	p.consume(token.LEFTBRACE, "Expect '{' before class body.")

	var methods []*ast.Function
	for !p.check(token.RIGHTBRACE) && !p.isAtEnd() {
		methods = append(methods, p.function("method"))
	}

	p.consume(token.RIGHTBRACE, "Expect '}' after class body.")

	return &ast.Class{Name: name, Superclass: superclass, Methods: methods}
}

// function = IDENTIFIER "(" parameters? ")" block ;
func (p *Parser) function(kind string) *ast.Function {
	name := p.consume(token.IDENTIFIER, "Expect "+kind+" name.")
	p.consume(token.LEFTPAREN, "Expect '(' after "+kind+" name.")

	var params []token.Token
	if !p.check(token.RIGHTPAREN) {
		for {
			if len(params) >= 255 {
				p.reportError(p.peek(), "Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(token.IDENTIFIER, "Expect parameter name."))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHTPAREN, "Expect ')' after parameters.")

	p.consume(token.LEFTBRACE, "Expect '{' before "+kind+" body.")
	body := p.block()

	return &ast.Function{Name: name, Params: params, Body: body}
}

// varDecl = "var" IDENTIFIER ( "=" expression )? ";" ;
func (p *Parser) varDecl() ast.Stmt {
	name := p.consume(token.IDENTIFIER, "Expect variable name.")

	var initializer ast.Expr
	if p.match(token.EQUAL) {
		initializer = p.expression()
	}

	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	return &ast.Var{Name: name, Initializer: initializer}
}

// statement = exprStmt | forStmt | ifStmt | printStmt | returnStmt
//           | whileStmt | block ;
func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.LEFTBRACE):
		return &ast.Block{Stmts: p.block()}
	default:
		return p.exprStmt()
	}
}

// forStmt = "for" "(" ( varDecl | exprStmt | ";" )
//           expression? ";" expression? ")" statement ;
//
// Desugared at parse time into a while loop: the init clause (if any)
// and the loop become a block, and the increment (if any) is appended
// to the end of the loop body.
func (p *Parser) forStmt() ast.Stmt {
	p.consume(token.LEFTPAREN, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		initializer = nil
	case p.match(token.VAR):
		initializer = p.varDecl()
	default:
		initializer = p.exprStmt()
	}

	var condition ast.Expr
	if !p.check(token.SEMICOLON) {
		condition = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

	var increment ast.Expr
	if !p.check(token.RIGHTPAREN) {
		increment = p.expression()
	}
	p.consume(token.RIGHTPAREN, "Expect ')' after for clauses.")

	body := p.statement()

	if increment != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.Expression{Expr: increment}}}
	}

	if condition == nil {
		condition = ast.NewLiteral(true, p.previous())
	}
	body = &ast.While{Cond: condition, Body: body}

	if initializer != nil {
		body = &ast.Block{Stmts: []ast.Stmt{initializer, body}}
	}

	return body
}

// ifStmt = "if" "(" expression ")" statement ( "else" statement )? ;
func (p *Parser) ifStmt() ast.Stmt {
	p.consume(token.LEFTPAREN, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(token.RIGHTPAREN, "Expect ')' after if condition.")

	thenBranch := p.statement()
	var elseBranch ast.Stmt
	if p.match(token.ELSE) {
		elseBranch = p.statement()
	}

	return &ast.If{Cond: condition, Then: thenBranch, Else: elseBranch}
}

// printStmt = "print" expression ";" ;
func (p *Parser) printStmt() ast.Stmt {
	value := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	return &ast.Print{Expr: value}
}

// returnStmt = "return" expression? ";" ;
func (p *Parser) returnStmt() ast.Stmt {
	keyword := p.previous()

	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}

	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	return &ast.Return{Keyword: keyword, Value: value}
}

// whileStmt = "while" "(" expression ")" statement ;
func (p *Parser) whileStmt() ast.Stmt {
	p.consume(token.LEFTPAREN, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(token.RIGHTPAREN, "Expect ')' after condition.")
	body := p.statement()

	return &ast.While{Cond: condition, Body: body}
}

// block = "{" declaration* "}" ;
func (p *Parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RIGHTBRACE) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(token.RIGHTBRACE, "Expect '}' after block.")
	return stmts
}

// exprStmt = expression ";" ;
func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.Expression{Expr: expr}
}

// expression = assignment ;
func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment = ( call "." )? IDENTIFIER "=" assignment | logic_or ;
func (p *Parser) assignment() ast.Expr {
	expr := p.or()

	if p.match(token.EQUAL) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.Variable:
			return ast.NewAssign(target.Name, value)
		case *ast.Get:
			return ast.NewSet(target.Obj, target.Name, value)
		default:
			// The parser is still at a known, consistent position, so
			// this is reported without synchronizing.
			p.reportError(equals, "Invalid assignment target.")
			return expr
		}
	}

	return expr
}

// logic_or = logic_and ( "or" logic_and )* ;
func (p *Parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.OR) {
		op := p.previous()
		right := p.and()
		expr = ast.NewLogical(expr, op, right)
	}
	return expr
}

// logic_and = equality ( "and" equality )* ;
func (p *Parser) and() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		op := p.previous()
		right := p.equality()
		expr = ast.NewLogical(expr, op, right)
	}
	return expr
}

// equality = comparison ( ( "!=" | "==" ) comparison )* ;
func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BANGEQUAL) || p.match(token.EQUALEQUAL) {
		op := p.previous()
		right := p.comparison()
		expr = ast.NewBinary(expr, op, right)
	}
	return expr
}

// comparison = term ( ( ">" | ">=" | "<" | "<=" ) term )* ;
func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.GREATER) || p.match(token.GREATEREQUAL) || p.match(token.LESS) || p.match(token.LESSEQUAL) {
		op := p.previous()
		right := p.term()
		expr = ast.NewBinary(expr, op, right)
	}
	return expr
}

// term = factor ( ( "-" | "+" ) factor )* ;
func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.MINUS) || p.match(token.PLUS) {
		op := p.previous()
		right := p.factor()
		expr = ast.NewBinary(expr, op, right)
	}
	return expr
}

// factor = unary ( ( "/" | "*" ) unary )* ;
func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.SLASH) || p.match(token.STAR) {
		op := p.previous()
		right := p.unary()
		expr = ast.NewBinary(expr, op, right)
	}
	return expr
}

// unary = ( "!" | "-" ) unary | call ;
func (p *Parser) unary() ast.Expr {
	if p.match(token.BANG) || p.match(token.MINUS) {
		op := p.previous()
		right := p.unary()
		return ast.NewUnary(op, right)
	}
	return p.call()
}

// call = primary ( "(" arguments? ")" | "." IDENTIFIER )* ;
func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for {
		switch {
		case p.match(token.LEFTPAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			name := p.consume(token.IDENTIFIER, "Expect property name after '.'.")
			expr = ast.NewGet(expr, name)
		default:
			return expr
		}
	}
}

// arguments = expression ( "," expression )* ;
func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RIGHTPAREN) {
		for {
			if len(args) >= 255 {
				p.reportError(p.peek(), "Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	paren := p.consume(token.RIGHTPAREN, "Expect ')' after arguments.")
	return ast.NewCall(callee, paren, args)
}

// primary = "true" | "false" | "nil" | "this" | NUMBER | STRING | IDENTIFIER
//         | "(" expression ")" | "super" "." IDENTIFIER ;
func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE):
		return ast.NewLiteral(false, p.previous())
	case p.match(token.TRUE):
		return ast.NewLiteral(true, p.previous())
	case p.match(token.NIL):
		return ast.NewLiteral(nil, p.previous())
	case p.match(token.NUMBER) || p.match(token.STRING):
		tok := p.previous()
		return ast.NewLiteral(tok.Literal, tok)
	case p.match(token.SUPER):
		keyword := p.previous()
		p.consume(token.DOT, "Expect '.' after 'super'.")
		method := p.consume(token.IDENTIFIER, "Expect superclass method name.")
		return ast.NewSuper(keyword, method)
	case p.match(token.THIS):
		return ast.NewThis(p.previous())
	case p.match(token.IDENTIFIER):
		return ast.NewVariable(p.previous())
	case p.match(token.LEFTPAREN):
		expr := p.expression()
		p.consume(token.RIGHTPAREN, "Expect ')' after expression.")
		return ast.NewGrouping(expr)
	default:
		panic(p.fail(p.peek(), "Expect expression."))
	}
}

// synchronize discards tokens until it reaches a statement boundary: a
// semicolon, or a token that starts a new declaration or statement.
func (p *Parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}

		switch p.peek().Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}

		p.advance()
	}
}

func (p *Parser) reportError(t token.Token, msg string) {
	p.errs = append(p.errs, ParseError{Token: t, Msg: msg})
}

// fail builds the panic value consume uses to unwind to the nearest
// synchronize point; the recovering declaration records the error.
func (p *Parser) fail(t token.Token, msg string) parsePanic {
	err := ParseError{Token: t, Msg: msg}
	return parsePanic{err: err}
}

func (p *Parser) consume(kind token.Kind, msg string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	panic(p.fail(p.peek(), msg))
}

func (p *Parser) match(kind token.Kind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}
