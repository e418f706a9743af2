package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/minicc/minic/checker"
	"github.com/minicc/minic/mir"
	"github.com/minicc/minic/parser"
)

// runDefault scans dir for `.minic` files and, for each one, lexes, parses,
// checks and lowers it, printing the AST and MIR dump to stderr. This is the
// bare compiler's no-argument behavior; it never consults minic.toml or the
// build cache.
func runDefault(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fatal := false

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".minic" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if !dumpFile(path) {
			fatal = true
		}
	}

	if fatal {
		os.Exit(1)
	}
}

func dumpFile(path string) bool {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return false
	}

	p := parser.New(string(source))
	file := p.ParseFile()

	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return false
	}

	if err := checker.NewChecker().CheckFile(file); err != nil {
		fmt.Fprintf(os.Stderr, "type error in %s: %v\n", path, err)
		return false
	}

	lowered := mir.LowerFile(file)

	fmt.Fprintf(os.Stderr, "%s\n", path)
	fmt.Fprintln(os.Stderr, file.String())
	fmt.Fprintln(os.Stderr, lowered.String())

	return true
}
