package parser

import (
	"fmt"
	"strconv"

	"github.com/minicc/minic/ast"
	"github.com/minicc/minic/lexer"
)

// Parser is a recursive-descent parser over a token stream. It never
// recovers from a syntax error mid-file: the first one it hits aborts
// parsing and is recorded in errors.
type Parser struct {
	l      *lexer.Lexer
	source string

	cur  lexer.Token
	peek lexer.Token

	errors []string
}

// New constructs a Parser over source and primes the two-token lookahead.
func New(source string) *Parser {
	p := &Parser{l: lexer.New(source), source: source}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

// Errors returns the syntax errors accumulated while parsing. A non-empty
// result means the returned *ast.File, if any, is incomplete.
func (p *Parser) Errors() []string {
	return p.errors
}

// bail is the sentinel panic value used to unwind the recursive descent
// back to ParseFile once a syntax error has been recorded.
type bail struct{}

// ParseFile parses the entire source as a sequence of top-level items.
// Check Errors() after calling this; on error the returned file may be nil
// or partially built.
func (p *Parser) ParseFile() (file *ast.File) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bail); ok {
				return
			}
			panic(r)
		}
	}()

	f := &ast.File{}
	for p.cur.Kind != lexer.EOF {
		f.Items = append(f.Items, p.parseItem())
	}
	return f
}

func (p *Parser) parseItem() ast.Item {
	switch p.cur.Kind {
	case lexer.PROC:
		return p.parseProc()
	default:
		p.errorf("item")
		panic(bail{})
	}
}

func (p *Parser) parseProc() *ast.Proc {
	p.next() // consume 'proc'

	name := p.expectLiteral(lexer.IDENT, "procedure name")
	p.expect(lexer.LPAREN, "(")
	p.expect(lexer.RPAREN, ")")
	body := p.parseBlock()

	return &ast.Proc{Name: name, Body: body}
}

func (p *Parser) parseBlock() *ast.Block {
	p.expect(lexer.LBRACE, "{")

	block := &ast.Block{}
	for p.cur.Kind != lexer.RBRACE {
		if p.cur.Kind == lexer.EOF {
			p.errorf("}")
			panic(bail{})
		}
		block.Stmts = append(block.Stmts, p.parseStmt())
	}
	p.next() // consume '}'

	return block
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Kind {
	case lexer.VAR:
		return p.parseLocalDef()
	case lexer.SET:
		return p.parseLocalSet()
	case lexer.LOOP:
		return p.parseLoop()
	case lexer.IF:
		return p.parseIf()
	case lexer.BREAK:
		return p.parseBreak()
	case lexer.CONTINUE:
		return p.parseContinue()
	default:
		p.errorf("statement")
		panic(bail{})
	}
}

func (p *Parser) parseLocalDef() *ast.LocalDef {
	p.next() // consume 'var'

	name := p.expectLiteral(lexer.IDENT, "local name")
	ty := p.parseType()
	p.expect(lexer.EQ, "=")
	value := p.parseExpr()

	return &ast.LocalDef{Name: name, Type: ty, Value: value}
}

func (p *Parser) parseLocalSet() *ast.LocalSet {
	p.next() // consume 'set'

	name := p.expectLiteral(lexer.IDENT, "local name")
	p.expect(lexer.EQ, "=")
	value := p.parseExpr()

	return &ast.LocalSet{Name: name, NewValue: value}
}

func (p *Parser) parseType() ast.Type {
	switch p.cur.Kind {
	case lexer.U64:
		p.next()
		return ast.U64Type{}
	default:
		p.errorf("type")
		panic(bail{})
	}
}

func (p *Parser) parseLoop() *ast.Loop {
	p.next() // consume 'loop'
	return &ast.Loop{Body: p.parseBlock()}
}

func (p *Parser) parseIf() *ast.If {
	p.next() // consume 'if'

	cond := p.parseExpr()
	trueBranch := p.parseBlock()
	p.expect(lexer.ELSE, "else")
	falseBranch := p.parseBlock()

	return &ast.If{Condition: cond, TrueBranch: trueBranch, FalseBranch: falseBranch}
}

func (p *Parser) parseBreak() *ast.Break {
	start := p.cur.Start
	end := p.cur.End
	p.next()
	return &ast.Break{Rng: ast.Range{Start: start, End: end}}
}

func (p *Parser) parseContinue() *ast.Continue {
	start := p.cur.Start
	end := p.cur.End
	p.next()
	return &ast.Continue{Rng: ast.Range{Start: start, End: end}}
}

func (p *Parser) parseExpr() ast.Expr {
	switch p.cur.Kind {
	case lexer.IDENT:
		return p.parseLocalExpr()
	case lexer.INT:
		return p.parseIntExpr()
	case lexer.PLUS:
		return p.parseAddExpr()
	case lexer.EQ:
		return p.parseEqualExpr()
	default:
		p.errorf("expression")
		panic(bail{})
	}
}

func (p *Parser) parseLocalExpr() *ast.Local {
	tok := p.cur
	p.next()
	return &ast.Local{Name: tok.Literal(p.source), Rng: ast.Range{Start: tok.Start, End: tok.End}}
}

func (p *Parser) parseIntExpr() *ast.Int {
	tok := p.cur
	p.next()

	value, err := strconv.ParseUint(tok.Literal(p.source), 10, 64)
	if err != nil {
		p.errorf("integer literal")
		panic(bail{})
	}

	return &ast.Int{Value: value, Rng: ast.Range{Start: tok.Start, End: tok.End}}
}

func (p *Parser) parseAddExpr() *ast.Add {
	start := p.cur.Start
	p.next() // consume '+'

	lhs := p.parseExpr()
	rhs := p.parseExpr()

	return &ast.Add{Lhs: lhs, Rhs: rhs, Rng: ast.Range{Start: start, End: rhs.Range().End}}
}

func (p *Parser) parseEqualExpr() *ast.Equal {
	start := p.cur.Start
	p.next() // consume '='

	lhs := p.parseExpr()
	rhs := p.parseExpr()

	return &ast.Equal{Lhs: lhs, Rhs: rhs, Rng: ast.Range{Start: start, End: rhs.Range().End}}
}

// expect advances past cur if it has the given kind, else records a syntax
// error naming what was wanted.
func (p *Parser) expect(kind lexer.TokenKind, want string) {
	if p.cur.Kind != kind {
		p.errorf(want)
		panic(bail{})
	}
	p.next()
}

// expectLiteral is expect for tokens whose literal text the caller needs,
// such as identifiers.
func (p *Parser) expectLiteral(kind lexer.TokenKind, want string) string {
	if p.cur.Kind != kind {
		p.errorf(want)
		panic(bail{})
	}
	lit := p.cur.Literal(p.source)
	p.next()
	return lit
}

// errorf records a syntax error in the same shape as a compiler that shows
// the offending token plus a window of surrounding source.
func (p *Parser) errorf(want string) {
	start := p.cur.Start - 20
	if start < 0 {
		start = 0
	}
	end := p.cur.End + 20
	if end > len(p.source) {
		end = len(p.source)
	}

	p.errors = append(p.errors, fmt.Sprintf(
		"syntax error: expected %s, got %s at %d..%d\n%s",
		want, p.cur.Kind.String(), p.cur.Start, p.cur.End, p.source[start:end],
	))
}
