package main

import (
	"fmt"
	"os"

	"github.com/minicc/minic/build"
	"github.com/minicc/minic/checker"
	"github.com/minicc/minic/module"
)

func runBuild(dir string) {
	b := build.NewBuilder(dir)

	results, err := b.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Built %d module(s)\n", len(results))
}

// runCheck type-checks every module in dir without lowering it to MIR.
func runCheck(dir string) {
	modules, err := module.NewLoader().LoadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check error: %v\n", err)
		os.Exit(1)
	}

	fatal := false

	for _, mod := range modules {
		if err := checker.NewChecker().CheckFile(mod.File); err != nil {
			fmt.Fprintf(os.Stderr, "type error in %s: %v\n", mod.Path, err)
			fatal = true
			continue
		}
		fmt.Printf("  %s type-checks successfully\n", mod.Name)
	}

	if fatal {
		os.Exit(1)
	}
}
