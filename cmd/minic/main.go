// Command minic is the compiler driver: lex, parse, check and lower every
// `.minic` file it finds, dumping the resulting AST and MIR.
//
// With no arguments it behaves as the bare compiler does: scan the current
// directory for `.minic` files and dump each one's AST and MIR to stderr.
// Two subcommands add project-aware behavior on top of that: `build` reads
// minic.toml and uses the on-disk build cache to skip rewriting the MIR
// dump of unchanged files, and `check` runs the lexer/parser/checker only,
// without lowering.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		runDefault(".")
		return
	}

	switch os.Args[1] {
	case "build":
		dir := "."
		if len(os.Args) > 2 {
			dir = os.Args[2]
		}
		runBuild(dir)
	case "check":
		dir := "."
		if len(os.Args) > 2 {
			dir = os.Args[2]
		}
		runCheck(dir)
	case "help", "-h", "--help":
		printUsage()
	default:
		// Not a recognized subcommand: treat it as a directory to scan, so
		// `minic somedir` still works the way the bare driver does.
		runDefault(os.Args[1])
	}
}

func printUsage() {
	fmt.Println("minic - the minic compiler driver")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  minic [dir]          Scan dir (default: .) for .minic files, dump AST and MIR")
	fmt.Println("  minic build [dir]    Check and lower a minic.toml project, using the build cache")
	fmt.Println("  minic check [dir]    Type-check the .minic files in dir without lowering")
}
