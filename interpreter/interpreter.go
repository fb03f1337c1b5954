// Package interpreter tree-walks the resolved AST and produces the
// program's observable side effects (print output, runtime errors). It
// mirrors the teacher's eval.Evaluator in shape: a single struct holding
// whatever state a walk needs, dispatched over the same ast node set the
// parser and resolver already understand.
package interpreter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/loxlang/golox/ast"
	"github.com/loxlang/golox/reporter"
	"github.com/loxlang/golox/resolver"
	"github.com/loxlang/golox/token"
)

// Interpreter holds the state of one evaluation run: the fixed global
// scope, the current lexical scope, the resolver's scope-depth side
// table, and where diagnostics and print output go.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  resolver.Locals
	rep     *reporter.Reporter
	out     io.Writer
}

// New creates an Interpreter with the standard global bindings
// installed and ready to run one or more top-level programs against
// the same globals, matching the REPL's need to keep state across
// lines.
func New(rep *reporter.Reporter, out io.Writer) *Interpreter {
	globals := NewEnvironment(nil)
	globals.Define("clock", &NativeFn{
		NameStr: "clock",
		ArityN:  0,
		Fn: func(_ *Interpreter, _ []Value) (Value, error) {
			return Number(float64(time.Now().UnixNano()) / 1e9), nil
		},
	})
	return &Interpreter{globals: globals, env: globals, rep: rep, out: out}
}

// Interpret runs one resolved program against the interpreter's
// current environment. It reports and stops at the first runtime
// error; a syntax-level controlReturn escaping to the top level would
// indicate a resolver bug (top-level return is rejected there) and is
// deliberately left unhandled rather than papered over.
func (in *Interpreter) Interpret(stmts []ast.Stmt, locals resolver.Locals) {
	in.locals = locals
	for _, stmt := range stmts {
		if err := in.execute(stmt); err != nil {
			var rerr reporter.RuntimeError
			if errors.As(err, &rerr) {
				in.rep.Runtime(rerr)
			}
			return
		}
	}
}

func (in *Interpreter) execute(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Block:
		return in.executeBlockStmts(s.Stmts, NewEnvironment(in.env))
	case *ast.Class:
		return in.executeClass(s)
	case *ast.Expression:
		_, err := in.evaluate(s.Expr)
		return err
	case *ast.Function:
		in.env.Define(s.Name.Lexeme, &UserFn{Declaration: s, Closure: in.env})
		return nil
	case *ast.If:
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return err
		}
		if truthy(cond) {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
		return nil
	case *ast.Print:
		v, err := in.evaluate(s.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(in.out, v.String())
		return nil
	case *ast.Return:
		var value Value = NilValue{}
		if s.Value != nil {
			v, err := in.evaluate(s.Value)
			if err != nil {
				return err
			}
			value = v
		}
		return controlReturn{Value: value}
	case *ast.Var:
		var value Value = NilValue{}
		if s.Initializer != nil {
			v, err := in.evaluate(s.Initializer)
			if err != nil {
				return err
			}
			value = v
		}
		in.env.Define(s.Name.Lexeme, value)
		return nil
	case *ast.While:
		for {
			cond, err := in.evaluate(s.Cond)
			if err != nil {
				return err
			}
			if !truthy(cond) {
				return nil
			}
			if err := in.execute(s.Body); err != nil {
				return err
			}
		}
	default:
		panic(fmt.Sprintf("interpreter: unhandled statement %T", stmt))
	}
}

func (in *Interpreter) executeBlockStmts(stmts []ast.Stmt, env *Environment) error {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, stmt := range stmts {
		if err := in.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) executeClass(s *ast.Class) error {
	var superclass *Class
	if s.Superclass != nil {
		v, err := in.evaluate(s.Superclass)
		if err != nil {
			return err
		}
		sc, ok := v.(*Class)
		if !ok {
			return reporter.RuntimeError{Token: s.Superclass.Name, Msg: "Superclass must be a class."}
		}
		superclass = sc
	}

	in.env.Define(s.Name.Lexeme, NilValue{})

	methodEnv := in.env
	if s.Superclass != nil {
		methodEnv = NewEnvironment(in.env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*UserFn, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &UserFn{
			Declaration:   m,
			Closure:       methodEnv,
			IsInitializer: m.Name.Lexeme == "init",
		}
	}

	class := &Class{NameStr: s.Name.Lexeme, Superclass: superclass, Methods: methods}
	return in.env.Assign(s.Name, class)
}

func (in *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalValue(e), nil
	case *ast.Grouping:
		return in.evaluate(e.Inner)
	case *ast.Unary:
		return in.evalUnary(e)
	case *ast.Binary:
		return in.evalBinary(e)
	case *ast.Logical:
		return in.evalLogical(e)
	case *ast.Variable:
		return in.lookUpVariable(e.Name, e)
	case *ast.Assign:
		return in.evalAssign(e)
	case *ast.Call:
		return in.evalCall(e)
	case *ast.Get:
		return in.evalGet(e)
	case *ast.Set:
		return in.evalSet(e)
	case *ast.This:
		return in.lookUpVariable(e.Keyword, e)
	case *ast.Super:
		return in.evalSuper(e)
	default:
		panic(fmt.Sprintf("interpreter: unhandled expression %T", expr))
	}
}

func literalValue(e *ast.Literal) Value {
	switch v := e.Value.(type) {
	case nil:
		return NilValue{}
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case string:
		return String(v)
	default:
		panic(fmt.Sprintf("interpreter: unhandled literal payload %T", e.Value))
	}
}

func (in *Interpreter) lookUpVariable(name token.Token, expr ast.Expr) (Value, error) {
	if distance, ok := in.locals[expr.ID()]; ok {
		return in.env.GetAt(distance, name.Lexeme), nil
	}
	return in.globals.Get(name)
}

func (in *Interpreter) evalUnary(e *ast.Unary) (Value, error) {
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op.Kind {
	case token.BANG:
		return Bool(!truthy(right)), nil
	case token.MINUS:
		n, ok := right.(Number)
		if !ok {
			return nil, reporter.RuntimeError{Token: e.Op, Msg: "Operand must be a number."}
		}
		return -n, nil
	default:
		panic("interpreter: unreachable unary operator " + e.Op.Lexeme)
	}
}

func (in *Interpreter) evalLogical(e *ast.Logical) (Value, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op.Kind == token.OR {
		if truthy(left) {
			return left, nil
		}
	} else if !truthy(left) {
		return left, nil
	}
	return in.evaluate(e.Right)
}

func (in *Interpreter) evalBinary(e *ast.Binary) (Value, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.GREATER, token.GREATEREQUAL, token.LESS, token.LESSEQUAL, token.MINUS, token.SLASH, token.STAR:
		ln, lok := left.(Number)
		rn, rok := right.(Number)
		if !lok || !rok {
			return nil, reporter.RuntimeError{Token: e.Op, Msg: "Operands must be numbers."}
		}
		switch e.Op.Kind {
		case token.GREATER:
			return Bool(ln > rn), nil
		case token.GREATEREQUAL:
			return Bool(ln >= rn), nil
		case token.LESS:
			return Bool(ln < rn), nil
		case token.LESSEQUAL:
			return Bool(ln <= rn), nil
		case token.MINUS:
			return ln - rn, nil
		case token.SLASH:
			return ln / rn, nil
		case token.STAR:
			return ln * rn, nil
		}
	case token.PLUS:
		if ln, lok := left.(Number); lok {
			if rn, rok := right.(Number); rok {
				return ln + rn, nil
			}
		}
		if ls, lok := left.(String); lok {
			if rs, rok := right.(String); rok {
				return ls + rs, nil
			}
		}
		return nil, reporter.RuntimeError{Token: e.Op, Msg: "Operands must be two numbers or two strings."}
	case token.BANGEQUAL:
		return Bool(!valuesEqual(left, right)), nil
	case token.EQUALEQUAL:
		return Bool(valuesEqual(left, right)), nil
	}
	panic("interpreter: unreachable binary operator " + e.Op.Lexeme)
}

func (in *Interpreter) evalAssign(e *ast.Assign) (Value, error) {
	value, err := in.evaluate(e.Value)
	if err != nil {
		return nil, err
	}
	if distance, ok := in.locals[e.ID()]; ok {
		in.env.AssignAt(distance, e.Name, value)
		return value, nil
	}
	if err := in.globals.Assign(e.Name, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (in *Interpreter) evalCall(e *ast.Call) (Value, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		v, err := in.evaluate(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, reporter.RuntimeError{Token: e.Paren, Msg: "Can only call functions and classes."}
	}
	if len(args) != callable.Arity() {
		return nil, reporter.RuntimeError{
			Token: e.Paren,
			Msg:   fmt.Sprintf("Expected %d arguments but got %d.", callable.Arity(), len(args)),
		}
	}
	return callable.Call(in, args)
}

func (in *Interpreter) evalGet(e *ast.Get) (Value, error) {
	obj, err := in.evaluate(e.Obj)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, reporter.RuntimeError{Token: e.Name, Msg: "Only instances have properties."}
	}
	return inst.Get(e.Name)
}

func (in *Interpreter) evalSet(e *ast.Set) (Value, error) {
	obj, err := in.evaluate(e.Obj)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, reporter.RuntimeError{Token: e.Name, Msg: "Only instances have fields."}
	}
	value, err := in.evaluate(e.Value)
	if err != nil {
		return nil, err
	}
	inst.Set(e.Name, value)
	return value, nil
}

func (in *Interpreter) evalSuper(e *ast.Super) (Value, error) {
	distance := in.locals[e.ID()]
	superclass, _ := in.env.GetAt(distance, "super").(*Class)
	instance, _ := in.env.GetAt(distance-1, "this").(*Instance)

	method := superclass.FindMethod(e.Method.Lexeme)
	if method == nil {
		return nil, reporter.RuntimeError{Token: e.Method, Msg: fmt.Sprintf("Undefined property '%s'.", e.Method.Lexeme)}
	}
	return &BoundMethod{Method: method, Receiver: instance}, nil
}
