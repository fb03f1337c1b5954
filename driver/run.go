// Package driver wires the scanner, parser, resolver, and interpreter
// into the single linear pipeline the CLI and REPL both drive: lex,
// parse, resolve, evaluate, stopping before evaluation if any earlier
// stage reported an error. It plays the same role as the teacher's
// driver.PassRunner, but Lox's stages are not interchangeable passes
// over a shared ast.Node list — each has its own input and output type
// — so the pipeline here is a fixed sequence of calls rather than a
// slice of a common Pass interface.
package driver

import (
	"errors"
	"io"

	"github.com/loxlang/golox/interpreter"
	"github.com/loxlang/golox/lexer"
	"github.com/loxlang/golox/parser"
	"github.com/loxlang/golox/reporter"
	"github.com/loxlang/golox/resolver"
)

// Interpreter is the long-lived facade the CLI holds onto: one Reporter
// and one evaluator whose globals persist across calls, so a REPL
// session accumulates top-level variables, functions, and classes the
// way the book's repl does.
type Interpreter struct {
	Reporter *reporter.Reporter
	eval     *interpreter.Interpreter
}

// New creates an Interpreter that reports diagnostics to errOut and
// sends `print` output to stdout.
func New(stdout, errOut io.Writer) *Interpreter {
	rep := reporter.New(errOut)
	return &Interpreter{
		Reporter: rep,
		eval:     interpreter.New(rep, stdout),
	}
}

// RunSource lexes, parses, resolves, and evaluates one chunk of source
// against the interpreter's persistent global environment. Static
// errors (scan, parse, resolve) are all reported before evaluation is
// ever attempted, mirroring the had_error gate between the book's
// static and dynamic phases.
func (in *Interpreter) RunSource(source string) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		in.reportJoined(err)
		return
	}

	stmts, err := parser.NewParser(tokens).ParseDecl()
	if err != nil {
		in.reportJoined(err)
	}
	if in.Reporter.HadError {
		return
	}

	locals, err := resolver.New().Resolve(stmts)
	if err != nil {
		in.reportJoined(err)
		return
	}
	if in.Reporter.HadError {
		return
	}

	in.eval.Interpret(stmts, locals)
}

// reportJoined unwraps an errors.Join tree and reports each leaf
// through the Reporter so every accumulated parse or resolve error
// reaches the user, not just the first.
func (in *Interpreter) reportJoined(err error) {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			in.reportJoined(e)
		}
		return
	}
	in.reportOne(err)
}

func (in *Interpreter) reportOne(err error) {
	var perr parser.ParseError
	if errors.As(err, &perr) {
		in.Reporter.TokenError(perr.Token, perr.Msg)
		return
	}
	var rerr resolver.ResolveError
	if errors.As(err, &rerr) {
		in.Reporter.TokenError(rerr.Token, rerr.Msg)
		return
	}
	var serr lexer.ScanError
	if errors.As(err, &serr) {
		in.Reporter.ScanError(serr.Line, serr.Msg)
		return
	}
	in.Reporter.ScanError(0, err.Error())
}
