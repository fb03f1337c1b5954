package lexer_test

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"

	"github.com/loxlang/golox/lexer"
	"github.com/loxlang/golox/token"
	"github.com/loxlang/golox/utils"
)

func TestGolden(t *testing.T) {
	t.Parallel()

	testfiles, err := utils.FindSourceFiles("../testdata")
	if err != nil {
		t.Fatalf("failed to find test files: %v", err)
	}

	for _, testfile := range testfiles {
		source, err := os.ReadFile(testfile)
		if err != nil {
			t.Fatalf("failed to read %s: %v", testfile, err)
		}

		tokens, err := lexer.Lex(string(source))
		if err != nil {
			t.Fatalf("%s returned error: %v", testfile, err)
		}

		var b strings.Builder
		for _, tok := range tokens {
			b.WriteString(tok.String())
			b.WriteString("\n")
		}

		g := goldie.New(t)
		g.Assert(t, testfile, []byte(b.String()))
	}
}

func TestUnterminatedStringReportsError(t *testing.T) {
	t.Parallel()

	_, err := lexer.Lex(`var s = "unterminated`)
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
}

func TestUnexpectedCharacterAccumulates(t *testing.T) {
	t.Parallel()

	// Two bad characters on two different lines should both be reported
	// in a single pass, not just the first.
	_, err := lexer.Lex("@\n$\n")
	if err == nil {
		t.Fatal("expected an error")
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected a joined error, got %T", err)
	}
	if got := len(joined.Unwrap()); got != 2 {
		t.Fatalf("expected 2 accumulated errors, got %d", got)
	}
}

func TestTokenSequenceMatchesExpectedStructurally(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex(`!= <= "hi"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []token.Token{
		{Kind: token.BANGEQUAL, Lexeme: "!=", Literal: nil, Line: 1},
		{Kind: token.LESSEQUAL, Lexeme: "<=", Literal: nil, Line: 1},
		{Kind: token.STRING, Lexeme: `"hi"`, Literal: "hi", Line: 1},
		{Kind: token.EOF, Lexeme: "", Literal: nil, Line: 1},
	}

	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Fatalf("token sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestNumberLiteral(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Lex("1.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected NUMBER + EOF, got %d tokens", len(tokens))
	}
	if tokens[0].Literal != 1.5 {
		t.Fatalf("expected literal 1.5, got %v", tokens[0].Literal)
	}
}
