package interpreter

import (
	"errors"
	"fmt"

	"github.com/loxlang/golox/ast"
	"github.com/loxlang/golox/reporter"
	"github.com/loxlang/golox/token"
)

// NativeFn is a builtin such as clock, implemented in Go rather than
// Lox. Its Fn closure never returns a controlReturn; it either succeeds
// or reports a genuine runtime error.
type NativeFn struct {
	NameStr string
	ArityN  int
	Fn      func(in *Interpreter, args []Value) (Value, error)
}

func (f *NativeFn) String() string                                  { return fmt.Sprintf("<native fn %s>", f.NameStr) }
func (f *NativeFn) Arity() int                                      { return f.ArityN }
func (f *NativeFn) Call(in *Interpreter, args []Value) (Value, error) { return f.Fn(in, args) }

// UserFn is a Lox function or method declaration paired with the
// environment it closed over at the point it was declared.
type UserFn struct {
	Declaration   *ast.Function
	Closure       *Environment
	IsInitializer bool
}

func (f *UserFn) String() string { return fmt.Sprintf("<fn %s>", f.Declaration.Name.Lexeme) }
func (f *UserFn) Arity() int     { return len(f.Declaration.Params) }

func (f *UserFn) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.Closure)
	for i, param := range f.Declaration.Params {
		env.Define(param.Lexeme, args[i])
	}
	return runBody(in, f.Declaration.Body, env, f.IsInitializer, nil)
}

// BoundMethod pairs a method's UserFn with the instance it was looked
// up on. Each property access on an instance produces a fresh
// BoundMethod; `this` inside it always refers back to Receiver, never
// to whatever instance a later call happens to be made through.
type BoundMethod struct {
	Method   *UserFn
	Receiver *Instance
}

func (b *BoundMethod) String() string { return b.Method.String() }
func (b *BoundMethod) Arity() int     { return b.Method.Arity() }

// Call binds `this` in its own scope between the method's closure and
// the call's parameter scope, mirroring the extra beginScope the
// resolver pushes for a class body before it resolves each method: a
// reference to `this` inside the body is one scope further out than
// the method's own parameters, and (for a subclass) `super` is one
// scope further out still.
func (b *BoundMethod) Call(in *Interpreter, args []Value) (Value, error) {
	thisEnv := NewEnvironment(b.Method.Closure)
	thisEnv.Define("this", b.Receiver)

	callEnv := NewEnvironment(thisEnv)
	for i, param := range b.Method.Declaration.Params {
		callEnv.Define(param.Lexeme, args[i])
	}
	return runBody(in, b.Method.Declaration.Body, callEnv, b.Method.IsInitializer, thisEnv)
}

// runBody executes a function or method body in env, turning a
// controlReturn into its carried value. thisEnv is the scope holding
// `this`, used for an initializer's implicit return; it is nil for a
// plain function call, where isInitializer is always false.
func runBody(in *Interpreter, body []ast.Stmt, env *Environment, isInitializer bool, thisEnv *Environment) (Value, error) {
	err := in.executeBlockStmts(body, env)
	if err != nil {
		var ret controlReturn
		if errors.As(err, &ret) {
			if isInitializer {
				return thisEnv.GetAt(0, "this"), nil
			}
			return ret.Value, nil
		}
		return nil, err
	}
	if isInitializer {
		return thisEnv.GetAt(0, "this"), nil
	}
	return NilValue{}, nil
}

// Class is a Lox class: a name, an optional superclass, and its own
// (non-inherited) methods. Calling a Class instantiates it.
type Class struct {
	NameStr    string
	Superclass *Class
	Methods    map[string]*UserFn
}

func (c *Class) String() string { return c.NameStr }

// FindMethod looks up name on c, falling back to the superclass chain.
func (c *Class) FindMethod(name string) *UserFn {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(in *Interpreter, args []Value) (Value, error) {
	instance := &Instance{Class: c, Fields: make(map[string]Value)}
	if init := c.FindMethod("init"); init != nil {
		bound := &BoundMethod{Method: init, Receiver: instance}
		if _, err := bound.Call(in, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is a live object: a class pointer and its own field map.
// Fields always shadow methods of the same name on lookup.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func (i *Instance) String() string { return i.Class.NameStr + " instance" }

func (i *Instance) Get(name token.Token) (Value, error) {
	if v, ok := i.Fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := i.Class.FindMethod(name.Lexeme); m != nil {
		return &BoundMethod{Method: m, Receiver: i}, nil
	}
	return nil, reporter.RuntimeError{Token: name, Msg: fmt.Sprintf("Undefined property '%s'.", name.Lexeme)}
}

func (i *Instance) Set(name token.Token, value Value) {
	i.Fields[name.Lexeme] = value
}
