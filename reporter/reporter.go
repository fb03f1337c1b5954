// Package reporter collects diagnostics for one interpreter run. It is
// instance-scoped rather than global so that several Lox interpreters
// can be embedded in the same process without stepping on each other's
// had_error / had_runtime_error flags.
package reporter

import (
	"fmt"
	"io"

	"github.com/loxlang/golox/token"
)

// Reporter accumulates had_error / had_runtime_error state for a single
// run and writes formatted diagnostics to an output stream.
type Reporter struct {
	w               io.Writer
	HadError        bool
	HadRuntimeError bool
}

// New creates a Reporter that writes diagnostics to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// ScanError reports a lexical error at the given line.
func (r *Reporter) ScanError(line int, msg string) {
	r.report(line, "", msg)
}

// TokenError reports a parse or resolution error located at a token.
func (r *Reporter) TokenError(t token.Token, msg string) {
	if t.Kind == token.EOF {
		r.report(t.Line, " at end", msg)
		return
	}
	r.report(t.Line, fmt.Sprintf(" at '%s'", t.Lexeme), msg)
}

func (r *Reporter) report(line int, where, msg string) {
	fmt.Fprintf(r.w, "[line %d] Error%s: %s\n", line, where, msg)
	r.HadError = true
}

// RuntimeError is raised by the evaluator when a type mismatch, undefined
// binding, arity mismatch, or similar domain error prevents a statement
// from completing. It carries the offending token so the reporter can
// print the failing source line.
type RuntimeError struct {
	Token token.Token
	Msg   string
}

func (e RuntimeError) Error() string {
	return e.Msg
}

// Runtime reports an uncaught RuntimeError and sets had_runtime_error.
func (r *Reporter) Runtime(err RuntimeError) {
	fmt.Fprintf(r.w, "%s\n[line %d]\n", err.Msg, err.Token.Line)
	r.HadRuntimeError = true
}

// ResetLine clears had_error between REPL input lines. had_runtime_error
// is intentionally left alone: a runtime error is not fatal to the REPL
// session, but it is still informative history for the caller.
func (r *Reporter) ResetLine() {
	r.HadError = false
}
