package interpreter_test

import (
	"bytes"
	"testing"

	"github.com/loxlang/golox/interpreter"
	"github.com/loxlang/golox/lexer"
	"github.com/loxlang/golox/parser"
	"github.com/loxlang/golox/reporter"
	"github.com/loxlang/golox/resolver"
)

// run lexes, parses, resolves, and evaluates source against a fresh
// Interpreter, returning everything written to stdout. It fails the
// test immediately if any stage reports an error, since every case in
// this file is expected to run clean end to end.
func run(t *testing.T, source string) string {
	t.Helper()

	tokens, err := lexer.Lex(source)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	stmts, err := parser.NewParser(tokens).ParseDecl()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	locals, err := resolver.New().Resolve(stmts)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	var errBuf, outBuf bytes.Buffer
	rep := reporter.New(&errBuf)
	in := interpreter.New(rep, &outBuf)
	in.Interpret(stmts, locals)

	if rep.HadRuntimeError {
		t.Fatalf("unexpected runtime error: %s", errBuf.String())
	}
	return outBuf.String()
}

func TestEndToEndScenarios(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "literals and arithmetic",
			source: `print "one"; print true; print 2 + 1;`,
			want:   "one\ntrue\n3\n",
		},
		{
			name:   "variables",
			source: `var a = 1; var b = 2; print a + b;`,
			want:   "3\n",
		},
		{
			name:   "recursive fibonacci",
			source: `fun fib(n){ if(n<2) return n; return fib(n-1)+fib(n-2);} for(var i=0;i<8;i=i+1) print fib(i);`,
			want:   "0\n1\n1\n2\n3\n5\n8\n13\n",
		},
		{
			name:   "block scoping shadows outer bindings",
			source: `var a="global a"; { var a="outer a"; { var a="inner a"; print a; } print a; } print a;`,
			want:   "inner a\nouter a\nglobal a\n",
		},
		{
			name:   "single inheritance with super",
			source: `class A{method(){print "A";}} class B<A{method(){super.method(); print "B";}} B().method();`,
			want:   "A\nB\n",
		},
		{
			name:   "instance fields and this",
			source: `class Cake{taste(){var adj="delicious"; print this.flavor+" cake is "+adj+"!";}} var c=Cake(); c.flavor="German chocolate"; c.taste();`,
			want:   "German chocolate cake is delicious!\n",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := run(t, tc.source); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClosureCapturesByReference(t *testing.T) {
	t.Parallel()

	source := `
fun makeCounter() {
  var count = 0;
  fun increment() {
    count = count + 1;
    print count;
  }
  return increment;
}
var counter = makeCounter();
counter();
counter();
counter();
`
	want := "1\n2\n3\n"
	if got := run(t, source); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestClosuresFromSameScopeShareState(t *testing.T) {
	t.Parallel()

	source := `
var counters = nil;
fun makeCounter() {
  var count = 0;
  fun increment() { count = count + 1; return count; }
  fun current() { return count; }
  print increment();
  print increment();
  print current();
}
makeCounter();
`
	want := "1\n2\n2\n"
	if got := run(t, source); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestClassWithoutInitializerAcceptsNewFields(t *testing.T) {
	t.Parallel()

	source := `
class Box {}
var b = Box();
b.value = 10;
print b.value;
`
	want := "10\n"
	if got := run(t, source); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestInitializerReturnsThisImplicitly(t *testing.T) {
	t.Parallel()

	source := `
class Point {
  init(x, y) {
    this.x = x;
    this.y = y;
  }
}
var p = Point(3, 4);
print p.x;
print p.y;
`
	want := "3\n4\n"
	if got := run(t, source); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLogicalOperatorsShortCircuitAndReturnOperandValue(t *testing.T) {
	t.Parallel()

	source := `
print "hi" or 2;
print nil or "yes";
print false and "unreached";
print 1 and 2;
`
	want := "hi\nyes\nfalse\n2\n"
	if got := run(t, source); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNumberStringificationDropsTrailingZero(t *testing.T) {
	t.Parallel()

	source := `print 1 + 1; print 7 / 2; print 10 - 10;`
	want := "2\n3.5\n0\n"
	if got := run(t, source); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRuntimeErrorOnTypeMismatchStopsExecution(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex(`print 1 + "two";`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.NewParser(tokens).ParseDecl()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	locals, err := resolver.New().Resolve(stmts)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	var errBuf, outBuf bytes.Buffer
	rep := reporter.New(&errBuf)
	in := interpreter.New(rep, &outBuf)
	in.Interpret(stmts, locals)

	if !rep.HadRuntimeError {
		t.Fatal("expected a runtime error for adding a number to a string")
	}
	if outBuf.Len() != 0 {
		t.Fatalf("expected no output before the failing statement, got %q", outBuf.String())
	}
}

func TestCallingNonCallableReportsRuntimeError(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex(`var x = 1; x();`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.NewParser(tokens).ParseDecl()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	locals, err := resolver.New().Resolve(stmts)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	var errBuf, outBuf bytes.Buffer
	rep := reporter.New(&errBuf)
	in := interpreter.New(rep, &outBuf)
	in.Interpret(stmts, locals)

	if !rep.HadRuntimeError {
		t.Fatal("expected a runtime error for calling a number")
	}
}

func TestWrongArityReportsExpectedAndGotCounts(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex(`fun f(a, b) { return a + b; } f(1);`)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.NewParser(tokens).ParseDecl()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	locals, err := resolver.New().Resolve(stmts)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	var errBuf, outBuf bytes.Buffer
	rep := reporter.New(&errBuf)
	in := interpreter.New(rep, &outBuf)
	in.Interpret(stmts, locals)

	if !rep.HadRuntimeError {
		t.Fatal("expected a runtime error for wrong arity")
	}
	if want := "Expected 2 arguments but got 1."; !bytes.Contains(errBuf.Bytes(), []byte(want)) {
		t.Fatalf("expected error output to contain %q, got %q", want, errBuf.String())
	}
}

func TestClockIsCallableWithZeroArity(t *testing.T) {
	t.Parallel()

	source := `print clock() >= 0;`
	want := "true\n"
	if got := run(t, source); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
