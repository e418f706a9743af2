package ast

import (
	"fmt"
	"strings"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	String() string
}

// Type represents a minic type. Today there is a single primitive, U64.
type Type interface {
	Node
	typeNode()
	Equal(Type) bool
}

// U64Type is the sole primitive type in minic.
type U64Type struct{}

func (U64Type) typeNode() {}
func (U64Type) String() string {
	return "u64"
}

// Equal reports whether other is also U64Type. minic has exactly one type,
// so this is trivially true for any U64Type operand, but the method exists
// so a future second type doesn't require restructuring callers.
func (U64Type) Equal(other Type) bool {
	_, ok := other.(U64Type)
	return ok
}

// Expr is a minic expression.
type Expr interface {
	Node
	exprNode()
	Range() Range
}

// Local is a reference to a local variable by name.
type Local struct {
	Name string
	Rng  Range
}

func (l *Local) exprNode()    {}
func (l *Local) Range() Range { return l.Rng }
func (l *Local) String() string {
	return l.Name
}

// Int is a decimal unsigned 64-bit integer literal.
type Int struct {
	Value uint64
	Rng   Range
}

func (i *Int) exprNode()    {}
func (i *Int) Range() Range { return i.Rng }
func (i *Int) String() string {
	return fmt.Sprintf("%d", i.Value)
}

// Add is the prefix `+ lhs rhs` expression.
type Add struct {
	Lhs, Rhs Expr
	Rng      Range
}

func (a *Add) exprNode()    {}
func (a *Add) Range() Range { return a.Rng }
func (a *Add) String() string {
	return fmt.Sprintf("(+ %s %s)", a.Lhs.String(), a.Rhs.String())
}

// Equal is the prefix `= lhs rhs` expression.
type Equal struct {
	Lhs, Rhs Expr
	Rng      Range
}

func (e *Equal) exprNode()    {}
func (e *Equal) Range() Range { return e.Rng }
func (e *Equal) String() string {
	return fmt.Sprintf("(= %s %s)", e.Lhs.String(), e.Rhs.String())
}

// Stmt is a minic statement.
type Stmt interface {
	Node
	stmtNode()
}

// LocalDef introduces a new binding in the enclosing scope: `var name ty = value`.
type LocalDef struct {
	Name  string
	Type  Type
	Value Expr
}

func (l *LocalDef) stmtNode() {}
func (l *LocalDef) String() string {
	return fmt.Sprintf("var %s %s = %s", l.Name, l.Type.String(), l.Value.String())
}

// LocalSet reassigns an existing binding: `set name = value`.
type LocalSet struct {
	Name     string
	NewValue Expr
}

func (l *LocalSet) stmtNode() {}
func (l *LocalSet) String() string {
	return fmt.Sprintf("set %s = %s", l.Name, l.NewValue.String())
}

// Loop is an unconditional infinite loop.
type Loop struct {
	Body *Block
}

func (l *Loop) stmtNode() {}
func (l *Loop) String() string {
	return "loop " + l.Body.String()
}

// If is a two-armed conditional; the else-branch is always present, though
// it may be an empty block.
type If struct {
	Condition   Expr
	TrueBranch  *Block
	FalseBranch *Block
}

func (i *If) stmtNode() {}
func (i *If) String() string {
	return fmt.Sprintf("if %s %s else %s", i.Condition.String(), i.TrueBranch.String(), i.FalseBranch.String())
}

// Break exits the innermost enclosing loop.
type Break struct {
	Rng Range
}

func (b *Break) stmtNode() {}
func (b *Break) String() string {
	return "break"
}

// Continue jumps to the top of the innermost enclosing loop.
type Continue struct {
	Rng Range
}

func (c *Continue) stmtNode() {}
func (c *Continue) String() string {
	return "continue"
}

// Block is an ordered sequence of statements delimited lexically; each block
// introduces a fresh lexical scope.
type Block struct {
	Stmts []Stmt
}

func (b *Block) String() string {
	stmts := make([]string, len(b.Stmts))
	for i, s := range b.Stmts {
		stmts[i] = s.String()
	}

	return "{ " + strings.Join(stmts, "; ") + " }"
}

// Item is a top-level, independent declaration.
type Item interface {
	Node
	itemNode()
}

// Proc is a procedure declaration: `proc name() block`.
type Proc struct {
	Name string
	Body *Block
}

func (p *Proc) itemNode() {}
func (p *Proc) String() string {
	return fmt.Sprintf("proc %s() %s", p.Name, p.Body.String())
}

// File is the root of a parsed source file: an ordered, independent list of
// top-level items.
type File struct {
	Items []Item
}

func (f *File) String() string {
	items := make([]string, len(f.Items))
	for i, it := range f.Items {
		items[i] = it.String()
	}

	return strings.Join(items, "\n")
}
