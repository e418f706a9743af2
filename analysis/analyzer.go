// Package analysis produces editor-facing diagnostics for a minic file
// without ever aborting: unlike the checker, which the build driver treats
// as fatal, analysis collects every problem it finds and keeps going, so an
// LSP client sees all of a file's errors at once rather than just the
// first.
package analysis

import (
	"fmt"

	"github.com/minicc/minic/ast"
)

type Analyzer struct {
	symbols      *SymbolTable
	diagnostics  []Diagnostic
	currentScope *Scope
}

// Analyze walks file and returns both the symbol table built from it and
// any diagnostics (undefined locals, duplicate procs) found along the way.
func Analyze(file *ast.File) (*SymbolTable, []Diagnostic) {
	a := &Analyzer{symbols: NewSymbolTable()}

	global := NewScope(nil)
	a.symbols.AddScope(global)
	a.currentScope = global

	for _, item := range file.Items {
		a.analyzeItem(item)
	}

	return a.symbols, a.diagnostics
}

func (a *Analyzer) diagnose(r ast.Range, format string, args ...any) {
	a.diagnostics = append(a.diagnostics, Diagnostic{
		Range:    r,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (a *Analyzer) analyzeItem(item ast.Item) {
	proc, ok := item.(*ast.Proc)
	if !ok {
		return
	}

	if existing := a.currentScope.LookupLocal(proc.Name); existing != nil {
		a.diagnose(ast.Range{}, "proc %s already declared", proc.Name)
	} else {
		a.currentScope.Define(proc.Name, &Symbol{Name: proc.Name, Kind: SymbolKindProc})
	}

	a.analyzeBlock(proc.Body)
}

func (a *Analyzer) analyzeBlock(block *ast.Block) {
	scope := NewScope(a.currentScope)
	a.symbols.AddScope(scope)

	outer := a.currentScope
	a.currentScope = scope

	for _, stmt := range block.Stmts {
		a.analyzeStmt(stmt)
	}

	a.currentScope = outer
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LocalDef:
		a.analyzeExpr(s.Value)
		a.currentScope.Define(s.Name, &Symbol{Name: s.Name, Kind: SymbolKindLocal})
	case *ast.LocalSet:
		if sym := a.currentScope.Lookup(s.Name); sym == nil {
			a.diagnose(ast.Range{}, "undefined: %s", s.Name)
		}
		a.analyzeExpr(s.NewValue)
	case *ast.Loop:
		a.analyzeBlock(s.Body)
	case *ast.If:
		a.analyzeExpr(s.Condition)
		a.analyzeBlock(s.TrueBranch)
		a.analyzeBlock(s.FalseBranch)
	case *ast.Break, *ast.Continue:
		// nothing to analyze
	}
}

func (a *Analyzer) analyzeExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Local:
		if sym := a.currentScope.Lookup(e.Name); sym != nil {
			sym.References = append(sym.References, e.Rng)
		} else {
			a.diagnose(e.Rng, "undefined: %s", e.Name)
		}
	case *ast.Add:
		a.analyzeExpr(e.Lhs)
		a.analyzeExpr(e.Rhs)
	case *ast.Equal:
		a.analyzeExpr(e.Lhs)
		a.analyzeExpr(e.Rhs)
	case *ast.Int:
		// literal, nothing to analyze
	}
}
