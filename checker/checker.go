package checker

import (
	"fmt"

	"github.com/minicc/minic/ast"
	"github.com/minicc/minic/types"
)

// Checker performs the one type rule minic has: a local's declared type
// must agree with both its initializer and every later assignment.
type Checker struct {
	env    *types.Env
	errors []string
}

func NewChecker() *Checker {
	return &Checker{env: types.NewEnv()}
}

func (c *Checker) error(msg string) {
	c.errors = append(c.errors, msg)
}

// CheckFile type-checks every procedure in file and returns an aggregated
// error if any of them failed.
func (c *Checker) CheckFile(file *ast.File) error {
	for _, item := range file.Items {
		c.checkItem(item)
	}

	if len(c.errors) > 0 {
		return fmt.Errorf("type errors: %v", c.errors)
	}

	return nil
}

func (c *Checker) checkItem(item ast.Item) {
	switch it := item.(type) {
	case *ast.Proc:
		c.checkProc(it)
	default:
		c.error(fmt.Sprintf("unknown item type: %T", item))
	}
}

func (c *Checker) checkProc(proc *ast.Proc) {
	c.env.PushScope()
	c.checkBlock(proc.Body)
	c.env.PopScope()
}

func (c *Checker) checkBlock(block *ast.Block) {
	c.env.PushScope()
	for _, stmt := range block.Stmts {
		c.checkStmt(stmt)
	}
	c.env.PopScope()
}

func (c *Checker) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LocalDef:
		c.checkLocalDef(s)
	case *ast.LocalSet:
		c.checkLocalSet(s)
	case *ast.Loop:
		c.checkBlock(s.Body)
	case *ast.If:
		c.checkExpr(s.Condition)
		c.checkBlock(s.TrueBranch)
		c.checkBlock(s.FalseBranch)
	case *ast.Break, *ast.Continue:
		// no type information to check
	default:
		c.error(fmt.Sprintf("unknown statement type: %T", stmt))
	}
}

func (c *Checker) checkLocalDef(def *ast.LocalDef) {
	valueType := c.checkExpr(def.Value)
	if valueType != nil && !def.Type.Equal(valueType) {
		c.error(fmt.Sprintf("local %q declared as %s but initialized with %s", def.Name, def.Type.String(), valueType.String()))
	}
	c.env.Define(def.Name, def.Type)
}

func (c *Checker) checkLocalSet(set *ast.LocalSet) {
	declType, ok := c.env.Lookup(set.Name)
	if !ok {
		c.error(fmt.Sprintf("undefined local %q", set.Name))
		return
	}

	valueType := c.checkExpr(set.NewValue)
	if valueType != nil && !declType.Equal(valueType) {
		c.error(fmt.Sprintf("local %q is %s, cannot assign %s", set.Name, declType.String(), valueType.String()))
	}
}

// checkExpr returns the static type of expr, or nil if it could not be
// determined (e.g. an undefined variable, already reported as an error).
func (c *Checker) checkExpr(expr ast.Expr) ast.Type {
	switch e := expr.(type) {
	case *ast.Local:
		typ, ok := c.env.Lookup(e.Name)
		if !ok {
			c.error(fmt.Sprintf("undefined local %q", e.Name))
			return nil
		}
		return typ
	case *ast.Int:
		return ast.U64Type{}
	case *ast.Add:
		c.checkExpr(e.Lhs)
		c.checkExpr(e.Rhs)
		return ast.U64Type{}
	case *ast.Equal:
		c.checkExpr(e.Lhs)
		c.checkExpr(e.Rhs)
		return ast.U64Type{}
	default:
		c.error(fmt.Sprintf("unknown expression type: %T", expr))
		return nil
	}
}
