package interpreter

import (
	"fmt"

	"github.com/loxlang/golox/reporter"
	"github.com/loxlang/golox/token"
)

// Environment is a lexical scope: a flat map of bindings plus an
// optional link to the enclosing scope. Blocks and calls each push a
// fresh Environment; closures hold onto the one that was current at
// their declaration site, which is what keeps a captured variable alive
// past the block that declared it.
type Environment struct {
	parent *Environment
	values map[string]Value
}

// NewEnvironment creates a child scope of parent. parent may be nil for
// the global environment.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, values: make(map[string]Value)}
}

// Define binds name in this environment, overwriting any prior binding.
// Redefinition is always legal here; the resolver is what rejects
// shadowing within a single block scope.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Ancestor walks up distance parent links; distance 0 is e itself.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.parent
	}
	return env
}

// GetAt reads name from exactly distance scopes up. The resolver
// guarantees the binding exists there; a miss is a bug in the resolver,
// not a user-facing error.
func (e *Environment) GetAt(distance int, name string) Value {
	return e.Ancestor(distance).values[name]
}

// AssignAt overwrites name in exactly distance scopes up.
func (e *Environment) AssignAt(distance int, name token.Token, value Value) {
	e.Ancestor(distance).values[name.Lexeme] = value
}

func undefinedVariable(name token.Token) error {
	return reporter.RuntimeError{Token: name, Msg: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme)}
}

// Get walks up the chain from e until it finds name, for globals and
// any variable the resolver left unresolved (i.e. anything global).
func (e *Environment) Get(name token.Token) (Value, error) {
	if v, ok := e.values[name.Lexeme]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, undefinedVariable(name)
}

// Assign walks up the chain until it finds a scope that already binds
// name, then overwrites it there. It does not create a new binding.
func (e *Environment) Assign(name token.Token, value Value) error {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = value
		return nil
	}
	if e.parent != nil {
		return e.parent.Assign(name, value)
	}
	return undefinedVariable(name)
}
