package server

import (
	"strings"

	"github.com/minicc/minic/analysis"
	"github.com/minicc/minic/ast"
	"github.com/minicc/minic/parser"
)

// Document is one open text document the editor is tracking.
type Document struct {
	URI         string
	Version     int
	Content     string
	File        *ast.File
	Symbols     *analysis.SymbolTable
	Diagnostics []analysis.Diagnostic
}

// Parse re-parses the document content and records parse errors as
// diagnostics. A failed parse leaves File nil; Analyze then has nothing to
// walk and simply keeps whatever diagnostics Parse already produced.
func (d *Document) Parse() {
	p := parser.New(d.Content)
	file := p.ParseFile()

	d.Diagnostics = nil
	for _, err := range p.Errors() {
		d.Diagnostics = append(d.Diagnostics, analysis.Diagnostic{
			Severity: analysis.SeverityError,
			Message:  err,
		})
	}

	if len(p.Errors()) == 0 {
		d.File = file
	} else {
		d.File = nil
	}
}

// Analyze runs the non-fatal analysis pass over the parsed file, if any.
func (d *Document) Analyze() {
	if d.File == nil {
		return
	}

	symbols, diags := analysis.Analyze(d.File)
	d.Symbols = symbols
	d.Diagnostics = append(d.Diagnostics, diags...)
}

// Update replaces the document's content and re-parses and re-analyzes it.
func (d *Document) Update(content string, version int) {
	d.Content = content
	d.Version = version
	d.Parse()
	d.Analyze()
}

// offsetToPosition converts a byte offset in content into a 0-based
// (line, character) pair, the coordinate system LSP positions use.
func offsetToPosition(content string, offset int) (line, character int) {
	if offset > len(content) {
		offset = len(content)
	}

	prefix := content[:offset]
	line = strings.Count(prefix, "\n")

	if idx := strings.LastIndexByte(prefix, '\n'); idx != -1 {
		character = len(prefix) - idx - 1
	} else {
		character = len(prefix)
	}

	return line, character
}

// positionToOffset is the inverse of offsetToPosition.
func positionToOffset(content string, line, character int) int {
	lines := strings.SplitAfter(content, "\n")
	if line >= len(lines) {
		return len(content)
	}

	offset := 0
	for i := 0; i < line; i++ {
		offset += len(lines[i])
	}

	if character > len(lines[line]) {
		character = len(lines[line])
	}

	return offset + character
}
