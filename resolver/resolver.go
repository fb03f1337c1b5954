// Package resolver performs the static pass between parsing and
// evaluation: it walks the AST once and records, for every variable
// reference, exactly how many enclosing scopes to skip at run time.
// This mirrors the teacher's nameresolve.Resolver (same declare/define/
// scope-stack shape), generalized from renaming to unique identifiers
// into recording scope *distance*, which is what Lox's closures need.
package resolver

import (
	"errors"
	"fmt"

	"github.com/loxlang/golox/ast"
	"github.com/loxlang/golox/token"
)

type functionKind int

const (
	noFunction functionKind = iota
	inFunction
	inInitializer
	inMethod
)

type classKind int

const (
	noClass classKind = iota
	inClass
	inSubclass
)

// Locals is the side table the evaluator consults: expression identity
// to the number of enclosing environments to skip.
type Locals map[int64]int

// Resolver walks a program once, before evaluation, binding every
// Variable, Assign, This, and Super node to its scope depth.
type Resolver struct {
	scopes          []map[string]bool
	locals          Locals
	currentFunction functionKind
	currentClass    classKind
	errs            []error
}

func New() *Resolver {
	return &Resolver{locals: make(Locals)}
}

// ResolveError is a resolution-time semantic error: self-reading
// initializers, duplicate locals, misplaced return/this/super, and
// classes that inherit from themselves.
type ResolveError struct {
	Token token.Token
	Msg   string
}

func (e ResolveError) Error() string {
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Msg)
}

// Resolve walks program and returns the scope-depth side table. A
// non-nil error means at least one resolution error occurred; the
// caller must not proceed to evaluation (spec: had_error aborts the
// run before the evaluator runs).
func (r *Resolver) Resolve(program []ast.Stmt) (Locals, error) {
	r.resolveStmts(program)
	return r.locals, errors.Join(r.errs...)
}

func (r *Resolver) error(t token.Token, msg string) {
	r.errs = append(r.errs, ResolveError{Token: t, Msg: msg})
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()
	case *ast.Class:
		r.resolveClass(s)
	case *ast.Expression:
		r.resolveExpr(s.Expr)
	case *ast.Function:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, inFunction)
	case *ast.If:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.Print:
		r.resolveExpr(s.Expr)
	case *ast.Return:
		if r.currentFunction == noFunction {
			r.error(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == inInitializer {
				r.error(s.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}
	case *ast.Var:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *ast.While:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Body)
	default:
		panic(fmt.Sprintf("resolver: unhandled statement %T", stmt))
	}
}

func (r *Resolver) resolveClass(s *ast.Class) {
	enclosingClass := r.currentClass
	r.currentClass = inClass

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.error(s.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = inSubclass
		r.resolveExpr(s.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, m := range s.Methods {
		kind := inMethod
		if m.Name.Lexeme == "init" {
			kind = inInitializer
		}
		r.resolveFunction(m, kind)
	}

	r.endScope()

	if s.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosingClass
}

func (r *Resolver) resolveFunction(fn *ast.Function, kind functionKind) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *ast.Get:
		r.resolveExpr(e.Obj)
	case *ast.Grouping:
		r.resolveExpr(e.Inner)
	case *ast.Literal:
		// nothing to resolve
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Obj)
	case *ast.Super:
		switch r.currentClass {
		case noClass:
			r.error(e.Keyword, "Can't use 'super' outside of a class.")
		case inClass:
			r.error(e.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, e.Keyword)
	case *ast.This:
		if r.currentClass == noClass {
			r.error(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, e.Keyword)
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				r.error(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)
	default:
		panic(fmt.Sprintf("resolver: unhandled expression %T", expr))
	}
}

func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[expr.ID()] = len(r.scopes) - 1 - i
			return
		}
	}
	// Not found in any scope: resolved to global at run time.
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.error(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}
