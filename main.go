package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/peterh/liner"

	"github.com/loxlang/golox/driver"
	"github.com/loxlang/golox/lexer"
	"github.com/loxlang/golox/parser"
)

const (
	exitOK      = 0
	exitError   = 65
	exitRuntime = 70
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		if err := runPrompt(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	switch args[0] {
	case "run":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: golox run <file>")
			os.Exit(1)
		}
		os.Exit(runFile(args[1]))
	case "repl":
		if err := runPrompt(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "debug":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: golox debug <lex|parse> <file>")
			os.Exit(1)
		}
		os.Exit(runDebug(args[1], args[2]))
	default:
		fmt.Fprintln(os.Stderr, "usage: golox [run <file>|repl|debug <lex|parse> <file>]")
		os.Exit(1)
	}
}

var historyFile = filepath.Join(xdg.DataHome, "golox", "history")

func runPrompt() error {
	line := liner.NewLiner()
	defer func() {
		if err := os.MkdirAll(filepath.Dir(historyFile), os.ModePerm); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if f, err := os.Create(historyFile); err == nil {
			defer f.Close()
			if _, err := line.WriteHistory(f); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
		line.Close()
	}()

	if f, err := os.Open(historyFile); err == nil {
		defer f.Close()
		if _, err := line.ReadHistory(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	in := driver.New(os.Stdout, os.Stderr)
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line.AppendHistory(input)
		in.RunSource(input)
		in.Reporter.ResetLine()
	}
}

func runFile(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	in := driver.New(os.Stdout, os.Stderr)
	in.RunSource(string(source))

	switch {
	case in.Reporter.HadRuntimeError:
		return exitRuntime
	case in.Reporter.HadError:
		return exitError
	default:
		return exitOK
	}
}

// runDebug runs just the scanner or just the scanner+parser over path
// and prints the intermediate representation, for inspecting what the
// earlier pipeline stages produced without evaluating anything.
func runDebug(stage, path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	tokens, lexErr := lexer.Lex(string(source))
	if lexErr != nil {
		fmt.Fprintln(os.Stderr, lexErr)
	}

	switch stage {
	case "lex":
		for _, tok := range tokens {
			fmt.Println(tok.String())
		}
	case "parse":
		stmts, parseErr := parser.NewParser(tokens).ParseDecl()
		if parseErr != nil {
			fmt.Fprintln(os.Stderr, parseErr)
		}
		for _, stmt := range stmts {
			fmt.Println(stmt.String())
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: golox debug <lex|parse> <file>")
		return 1
	}

	if lexErr != nil {
		return exitError
	}
	return exitOK
}
