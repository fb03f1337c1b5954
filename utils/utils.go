// Package utils holds small shared helpers used by the interpreter's
// own test suites: locating fixture source files and loading YAML
// scenario tables, in the same shape the teacher's utils package uses.
package utils

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestData is one row of a YAML scenario table: a labeled program plus
// the expected rendering at one or more pipeline stages ("lexer",
// "parser", "resolver", "stdout").
type TestData struct {
	Label    string
	Enable   bool
	Input    string
	Expected map[string]string
}

// ReadTestData parses a YAML scenario table and drops disabled rows.
func ReadTestData(s []byte) []TestData {
	var data []TestData
	if err := yaml.Unmarshal(s, &data); err != nil {
		panic(err)
	}

	i := 0
	for _, d := range data {
		if d.Enable {
			data[i] = d
			i++
		}
	}
	return data[:i]
}

// FindSourceFiles returns every .lox fixture under dir, sorted, for
// golden-file tests to iterate over.
func FindSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".lox" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
