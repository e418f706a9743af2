// Package module discovers and loads the `.minic` source files that make
// up a project: minic has no import system, so a "module" here is just a
// single source file identified by its path and content hash.
package module

import "github.com/minicc/minic/ast"

// Module is one parsed `.minic` source file.
type Module struct {
	Path        string   // absolute file path
	Name        string   // file name without extension
	File        *ast.File // parsed AST
	ContentHash string   // SHA-256 hash of the source content
}
