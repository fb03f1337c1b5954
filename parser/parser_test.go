package parser_test

import (
	"testing"

	"github.com/loxlang/golox/ast"
	"github.com/loxlang/golox/lexer"
	"github.com/loxlang/golox/parser"
)

func parse(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	tokens, err := lexer.Lex(source)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.NewParser(tokens).ParseDecl()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return stmts
}

func TestParseExpressionPrecedence(t *testing.T) {
	t.Parallel()

	stmts := parse(t, "print 1 + 2 * 3;")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}

	got := stmts[0].String()
	want := "(print (+ 1 (* 2 3)))"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseForDesugarsToWhile(t *testing.T) {
	t.Parallel()

	stmts := parse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}

	block, ok := stmts[0].(*ast.Block)
	if !ok {
		t.Fatalf("expected desugared for loop to be a block, got %T", stmts[0])
	}
	if len(block.Stmts) != 2 {
		t.Fatalf("expected init + while, got %d statements", len(block.Stmts))
	}
	if _, ok := block.Stmts[0].(*ast.Var); !ok {
		t.Fatalf("expected first statement to be the initializer, got %T", block.Stmts[0])
	}
	loop, ok := block.Stmts[1].(*ast.While)
	if !ok {
		t.Fatalf("expected second statement to be a while loop, got %T", block.Stmts[1])
	}
	body, ok := loop.Body.(*ast.Block)
	if !ok {
		t.Fatalf("expected while body to be a block with the increment appended, got %T", loop.Body)
	}
	if len(body.Stmts) != 2 {
		t.Fatalf("expected body + increment, got %d statements", len(body.Stmts))
	}
}

func TestParseClassWithSuperclass(t *testing.T) {
	t.Parallel()

	stmts := parse(t, "class B < A { method() { return 1; } }")
	class, ok := stmts[0].(*ast.Class)
	if !ok {
		t.Fatalf("expected a class declaration, got %T", stmts[0])
	}
	if class.Superclass == nil || class.Superclass.Name.Lexeme != "A" {
		t.Fatalf("expected superclass A, got %v", class.Superclass)
	}
	if len(class.Methods) != 1 || class.Methods[0].Name.Lexeme != "method" {
		t.Fatalf("expected single method named 'method', got %v", class.Methods)
	}
}

func TestInvalidAssignmentTargetReportsWithoutAbortingParse(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex("1 + 2 = 3; print \"still parsed\";")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.NewParser(tokens).ParseDecl()
	if err == nil {
		t.Fatal("expected an 'Invalid assignment target' error")
	}
	if len(stmts) != 2 {
		t.Fatalf("expected both statements to still be parsed, got %d", len(stmts))
	}
}

func TestSynchronizeRecoversAtNextStatement(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex("var = ; print \"after error\";")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.NewParser(tokens).ParseDecl()
	if err == nil {
		t.Fatal("expected a syntax error for the malformed var declaration")
	}

	var sawPrint bool
	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.Print); ok {
			sawPrint = true
		}
	}
	if !sawPrint {
		t.Fatalf("expected synchronize to recover in time to parse the print statement, got %v", stmts)
	}
}

func TestTooManyArgumentsReportsButContinues(t *testing.T) {
	t.Parallel()

	var src string
	src = "f("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ", "
		}
		src += "1"
	}
	src += ");"

	tokens, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.NewParser(tokens).ParseDecl()
	if err == nil {
		t.Fatal("expected a 'more than 255 arguments' error")
	}
	if len(stmts) != 1 {
		t.Fatalf("expected parsing to continue after the arity error, got %d statements", len(stmts))
	}
}
