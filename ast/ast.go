// Package ast defines the expression and statement node types produced
// by the parser and walked by the resolver and interpreter.
package ast

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/loxlang/golox/token"
)

// Node is implemented by every expression and statement variant.
type Node interface {
	fmt.Stringer
	Base() token.Token
}

// Expr is a Node that yields a value when evaluated. Every Expr carries a
// stable identity assigned at construction time: the resolver's side
// table is keyed on this id rather than on node pointer identity, so
// that two structurally equal but distinct nodes never collide.
type Expr interface {
	Node
	ID() int64
	exprNode()
}

// Stmt is a Node executed for its side effects.
type Stmt interface {
	Node
	stmtNode()
}

var idSupply int64

// nextID hands out a fresh, monotonically increasing expression id.
// A single Lox program runs on one thread, but several parsers can run
// at once in the same process (embedded interpreters, parallel tests),
// so the shared counter is advanced atomically.
func nextID() int64 {
	return atomic.AddInt64(&idSupply, 1)
}

// ---- expressions ----

type Assign struct {
	id    int64
	Name  token.Token
	Value Expr
}

func NewAssign(name token.Token, value Expr) *Assign {
	return &Assign{id: nextID(), Name: name, Value: value}
}

func (a *Assign) ID() int64          { return a.id }
func (a *Assign) exprNode()          {}
func (a *Assign) Base() token.Token  { return a.Name }
func (a *Assign) String() string {
	return parenthesize("assign", stringToken(a.Name), a.Value)
}

type Binary struct {
	id    int64
	Left  Expr
	Op    token.Token
	Right Expr
}

func NewBinary(left Expr, op token.Token, right Expr) *Binary {
	return &Binary{id: nextID(), Left: left, Op: op, Right: right}
}

func (b *Binary) ID() int64         { return b.id }
func (b *Binary) exprNode()         {}
func (b *Binary) Base() token.Token { return b.Op }
func (b *Binary) String() string {
	return parenthesize(b.Op.Lexeme, b.Left, b.Right)
}

type Call struct {
	id     int64
	Callee Expr
	Paren  token.Token
	Args   []Expr
}

func NewCall(callee Expr, paren token.Token, args []Expr) *Call {
	return &Call{id: nextID(), Callee: callee, Paren: paren, Args: args}
}

func (c *Call) ID() int64         { return c.id }
func (c *Call) exprNode()         {}
func (c *Call) Base() token.Token { return c.Paren }
func (c *Call) String() string {
	return parenthesize("call", append([]fmt.Stringer{c.Callee}, exprsToStringers(c.Args)...)...)
}

type Get struct {
	id   int64
	Obj  Expr
	Name token.Token
}

func NewGet(obj Expr, name token.Token) *Get {
	return &Get{id: nextID(), Obj: obj, Name: name}
}

func (g *Get) ID() int64         { return g.id }
func (g *Get) exprNode()         {}
func (g *Get) Base() token.Token { return g.Name }
func (g *Get) String() string {
	return parenthesize("get", g.Obj, stringToken(g.Name))
}

type Grouping struct {
	id    int64
	Inner Expr
}

func NewGrouping(inner Expr) *Grouping {
	return &Grouping{id: nextID(), Inner: inner}
}

func (g *Grouping) ID() int64         { return g.id }
func (g *Grouping) exprNode()         {}
func (g *Grouping) Base() token.Token { return g.Inner.Base() }
func (g *Grouping) String() string {
	return parenthesize("group", g.Inner)
}

type Literal struct {
	id    int64
	Value any
	Token token.Token
}

func NewLiteral(value any, tok token.Token) *Literal {
	return &Literal{id: nextID(), Value: value, Token: tok}
}

func (l *Literal) ID() int64         { return l.id }
func (l *Literal) exprNode()         {}
func (l *Literal) Base() token.Token { return l.Token }
func (l *Literal) String() string {
	if l.Value == nil {
		return "nil"
	}
	return fmt.Sprintf("%v", l.Value)
}

type Logical struct {
	id    int64
	Left  Expr
	Op    token.Token
	Right Expr
}

func NewLogical(left Expr, op token.Token, right Expr) *Logical {
	return &Logical{id: nextID(), Left: left, Op: op, Right: right}
}

func (l *Logical) ID() int64         { return l.id }
func (l *Logical) exprNode()         {}
func (l *Logical) Base() token.Token { return l.Op }
func (l *Logical) String() string {
	return parenthesize(l.Op.Lexeme, l.Left, l.Right)
}

type Set struct {
	id    int64
	Obj   Expr
	Name  token.Token
	Value Expr
}

func NewSet(obj Expr, name token.Token, value Expr) *Set {
	return &Set{id: nextID(), Obj: obj, Name: name, Value: value}
}

func (s *Set) ID() int64         { return s.id }
func (s *Set) exprNode()         {}
func (s *Set) Base() token.Token { return s.Name }
func (s *Set) String() string {
	return parenthesize("set", s.Obj, stringToken(s.Name), s.Value)
}

type Super struct {
	id      int64
	Keyword token.Token
	Method  token.Token
}

func NewSuper(keyword, method token.Token) *Super {
	return &Super{id: nextID(), Keyword: keyword, Method: method}
}

func (s *Super) ID() int64         { return s.id }
func (s *Super) exprNode()         {}
func (s *Super) Base() token.Token { return s.Keyword }
func (s *Super) String() string {
	return parenthesize("super", stringToken(s.Method))
}

type This struct {
	id      int64
	Keyword token.Token
}

func NewThis(keyword token.Token) *This {
	return &This{id: nextID(), Keyword: keyword}
}

func (t *This) ID() int64         { return t.id }
func (t *This) exprNode()         {}
func (t *This) Base() token.Token { return t.Keyword }
func (t *This) String() string    { return "this" }

type Unary struct {
	id    int64
	Op    token.Token
	Right Expr
}

func NewUnary(op token.Token, right Expr) *Unary {
	return &Unary{id: nextID(), Op: op, Right: right}
}

func (u *Unary) ID() int64         { return u.id }
func (u *Unary) exprNode()         {}
func (u *Unary) Base() token.Token { return u.Op }
func (u *Unary) String() string {
	return parenthesize(u.Op.Lexeme, u.Right)
}

type Variable struct {
	id   int64
	Name token.Token
}

func NewVariable(name token.Token) *Variable {
	return &Variable{id: nextID(), Name: name}
}

func (v *Variable) ID() int64         { return v.id }
func (v *Variable) exprNode()         {}
func (v *Variable) Base() token.Token { return v.Name }
func (v *Variable) String() string    { return v.Name.Lexeme }

// ---- statements ----

type Block struct {
	Stmts []Stmt
}

func (b *Block) stmtNode()         {}
func (b *Block) Base() token.Token {
	if len(b.Stmts) == 0 {
		return token.Token{}
	}
	return b.Stmts[0].Base()
}
func (b *Block) String() string {
	return parenthesize("block", stmtsToStringers(b.Stmts)...)
}

type Class struct {
	Name       token.Token
	Superclass *Variable
	Methods    []*Function
}

func (c *Class) stmtNode()         {}
func (c *Class) Base() token.Token { return c.Name }
func (c *Class) String() string {
	elems := []fmt.Stringer{stringToken(c.Name)}
	if c.Superclass != nil {
		elems = append(elems, c.Superclass)
	}
	for _, m := range c.Methods {
		elems = append(elems, m)
	}
	return parenthesize("class", elems...)
}

type Expression struct {
	Expr Expr
}

func (e *Expression) stmtNode()         {}
func (e *Expression) Base() token.Token { return e.Expr.Base() }
func (e *Expression) String() string {
	return parenthesize("expr", e.Expr)
}

type Function struct {
	Name   token.Token
	Params []token.Token
	Body   []Stmt
}

func (f *Function) stmtNode()         {}
func (f *Function) Base() token.Token { return f.Name }
func (f *Function) String() string {
	elems := []fmt.Stringer{stringToken(f.Name)}
	elems = append(elems, stmtsToStringers(f.Body)...)
	return parenthesize("fun", elems...)
}

type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

func (i *If) stmtNode()         {}
func (i *If) Base() token.Token { return i.Cond.Base() }
func (i *If) String() string {
	if i.Else == nil {
		return parenthesize("if", i.Cond, i.Then)
	}
	return parenthesize("if", i.Cond, i.Then, i.Else)
}

type Print struct {
	Expr Expr
}

func (p *Print) stmtNode()         {}
func (p *Print) Base() token.Token { return p.Expr.Base() }
func (p *Print) String() string {
	return parenthesize("print", p.Expr)
}

type Return struct {
	Keyword token.Token
	Value   Expr
}

func (r *Return) stmtNode()         {}
func (r *Return) Base() token.Token { return r.Keyword }
func (r *Return) String() string {
	if r.Value == nil {
		return parenthesize("return")
	}
	return parenthesize("return", r.Value)
}

type Var struct {
	Name        token.Token
	Initializer Expr
}

func (v *Var) stmtNode()         {}
func (v *Var) Base() token.Token { return v.Name }
func (v *Var) String() string {
	if v.Initializer == nil {
		return parenthesize("var", stringToken(v.Name))
	}
	return parenthesize("var", stringToken(v.Name), v.Initializer)
}

type While struct {
	Cond Expr
	Body Stmt
}

func (w *While) stmtNode()         {}
func (w *While) Base() token.Token { return w.Cond.Base() }
func (w *While) String() string {
	return parenthesize("while", w.Cond, w.Body)
}

var (
	_ Expr = (*Assign)(nil)
	_ Expr = (*Binary)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*Get)(nil)
	_ Expr = (*Grouping)(nil)
	_ Expr = (*Literal)(nil)
	_ Expr = (*Logical)(nil)
	_ Expr = (*Set)(nil)
	_ Expr = (*Super)(nil)
	_ Expr = (*This)(nil)
	_ Expr = (*Unary)(nil)
	_ Expr = (*Variable)(nil)

	_ Stmt = (*Block)(nil)
	_ Stmt = (*Class)(nil)
	_ Stmt = (*Expression)(nil)
	_ Stmt = (*Function)(nil)
	_ Stmt = (*If)(nil)
	_ Stmt = (*Print)(nil)
	_ Stmt = (*Return)(nil)
	_ Stmt = (*Var)(nil)
	_ Stmt = (*While)(nil)
)

// stringToken wraps a token so it can be passed to parenthesize, printing
// its lexeme rather than its full debug form.
type stringToken token.Token

func (s stringToken) String() string { return s.Lexeme }

// parenthesize renders a head symbol and its children the way the
// teacher's pretty printer does: "(head child child ...)".
func parenthesize(head string, elems ...fmt.Stringer) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(head)
	for _, e := range elems {
		b.WriteString(" ")
		b.WriteString(e.String())
	}
	b.WriteString(")")
	return b.String()
}

func exprsToStringers(exprs []Expr) []fmt.Stringer {
	out := make([]fmt.Stringer, len(exprs))
	for i, e := range exprs {
		out[i] = e
	}
	return out
}

func stmtsToStringers(stmts []Stmt) []fmt.Stringer {
	out := make([]fmt.Stringer, len(stmts))
	for i, s := range stmts {
		out[i] = s
	}
	return out
}
