package mir

import (
	"fmt"
	"os"

	"github.com/minicc/minic/ast"
)

// binding is what a name resolves to inside a procedure body: the register
// holding its current value and its static type.
type binding struct {
	Reg  Reg
	Type ast.Type
}

// lowerer walks one procedure's AST and accumulates its Body. Labels are
// allocated lazily, keyed by the instruction index they mark, so that a
// loop or if that turns out to need no extra label past the one its
// structure already requires doesn't get one.
type lowerer struct {
	body *Body

	scope []map[string]binding

	nextReg   uint32
	nextLabel uint32

	// breakFixups holds, for each loop currently being lowered, the
	// instruction indices of Br placeholders emitted for a break inside it.
	breakFixups [][]int

	// loopTops holds, for each loop currently being lowered, the label at
	// its top, which continue branches back to directly.
	loopTops []Label
}

func newLowerer() *lowerer {
	return &lowerer{body: NewBody()}
}

// LowerFile lowers every procedure in file into a Mir. It assumes file has
// already passed type checking: an undefined variable here is treated as a
// fatal internal error rather than reported gracefully.
func LowerFile(file *ast.File) *Mir {
	m := NewMir()

	for _, item := range file.Items {
		proc, ok := item.(*ast.Proc)
		if !ok {
			continue
		}

		l := newLowerer()
		l.pushScope()
		l.lowerBlock(proc.Body)
		l.popScope()

		m.Procs[proc.Name] = l.body
	}

	return m
}

func (l *lowerer) pushScope() {
	l.scope = append(l.scope, make(map[string]binding))
}

func (l *lowerer) popScope() {
	l.scope = l.scope[:len(l.scope)-1]
}

func (l *lowerer) define(name string, reg Reg, typ ast.Type) {
	l.scope[len(l.scope)-1][name] = binding{Reg: reg, Type: typ}
}

func (l *lowerer) lookup(name string) (binding, bool) {
	for i := len(l.scope) - 1; i >= 0; i-- {
		if b, ok := l.scope[i][name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

// emit appends instr to the body and returns the index it now lives at.
func (l *lowerer) emit(instr Instr) int {
	idx := len(l.body.Instrs)
	l.body.Instrs = append(l.body.Instrs, instr)
	return idx
}

func (l *lowerer) allocReg() Reg {
	r := Reg(l.nextReg)
	l.nextReg++
	return r
}

// allocLabel returns the label recorded for index, allocating a new one if
// this is the first request for that position. Two requests for the same
// index — one from an if's branch target, say, and another from a
// fallthrough — collapse onto the same label instead of creating two.
func (l *lowerer) allocLabel(index int) Label {
	if label, ok := l.body.Labels[index]; ok {
		return label
	}

	label := Label(l.nextLabel)
	l.nextLabel++
	l.body.Labels[index] = label
	return label
}

func (l *lowerer) lowerBlock(block *ast.Block) {
	l.pushScope()
	for _, stmt := range block.Stmts {
		l.lowerStmt(stmt)
	}
	l.popScope()
}

func (l *lowerer) lowerStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LocalDef:
		l.lowerLocalDef(s)
	case *ast.LocalSet:
		l.lowerLocalSet(s)
	case *ast.Loop:
		l.lowerLoop(s)
	case *ast.If:
		l.lowerIf(s)
	case *ast.Break:
		l.lowerBreak(s)
	case *ast.Continue:
		l.lowerContinue(s)
	default:
		fatalf("unknown statement type %T", stmt)
	}
}

// lowerLocalDef lowers the initializer, then ensures the binding gets its
// own register so a later LocalSet can mutate it without aliasing whatever
// register the initializer expression returned. A fresh register from the
// initializer (e.g. a literal or arithmetic result) is reused directly; a
// bare Local reference returns someone else's register, so a Store copies
// it into a freshly allocated one.
func (l *lowerer) lowerLocalDef(def *ast.LocalDef) {
	reg, _, allocatedNew := l.lowerExpr(def.Value)

	if !allocatedNew {
		fresh := l.allocReg()
		l.emit(Store{Dst: fresh, Src: reg})
		reg = fresh
	}

	l.define(def.Name, reg, def.Type)
}

func (l *lowerer) lowerLocalSet(set *ast.LocalSet) {
	b, ok := l.lookup(set.Name)
	if !ok {
		fatalf("undefined variable %q", set.Name)
	}

	src, _, _ := l.lowerExpr(set.NewValue)
	l.emit(Store{Dst: b.Reg, Src: src})
}

// lowerLoop lowers `loop { body }`. The loop's top label is allocated
// before the body so continue can target it immediately; the bottom label
// is allocated only if some break inside the loop actually needs it.
func (l *lowerer) lowerLoop(loop *ast.Loop) {
	l.breakFixups = append(l.breakFixups, nil)

	top := l.allocLabel(len(l.body.Instrs))
	l.loopTops = append(l.loopTops, top)

	l.lowerBlock(loop.Body)
	l.emit(Br{Target: top})

	fixups := l.breakFixups[len(l.breakFixups)-1]
	l.breakFixups = l.breakFixups[:len(l.breakFixups)-1]
	l.loopTops = l.loopTops[:len(l.loopTops)-1]

	if len(fixups) == 0 {
		// avoid allocating a label at the bottom of the loop if nothing breaks to it
		return
	}

	bottom := l.allocLabel(len(l.body.Instrs))
	for _, idx := range fixups {
		br, ok := l.body.Instrs[idx].(Br)
		if !ok || br.Target != PlaceholderLabel {
			fatalf("internal error: break fixup at %d is not a placeholder Br", idx)
		}
		l.body.Instrs[idx] = Br{Target: bottom}
	}
}

func (l *lowerer) lowerBreak(b *ast.Break) {
	if len(l.breakFixups) == 0 {
		fatalf("break outside of a loop")
	}

	idx := l.emit(Br{Target: PlaceholderLabel})
	top := len(l.breakFixups) - 1
	l.breakFixups[top] = append(l.breakFixups[top], idx)
}

func (l *lowerer) lowerContinue(c *ast.Continue) {
	if len(l.loopTops) == 0 {
		fatalf("continue outside of a loop")
	}

	l.emit(Br{Target: l.loopTops[len(l.loopTops)-1]})
}

// lowerIf lowers `if cond trueBranch else falseBranch`. The layout is:
// evaluate the condition, emit a CondBr placeholder to the true branch,
// fall through into the false branch, emit a Br placeholder past the true
// branch, then the true branch. If the condition is non-zero, control
// jumps straight to the true branch and falls through past everything
// afterward; if it's zero, control falls into the false branch and then
// jumps over the true branch.
func (l *lowerer) lowerIf(stmt *ast.If) {
	cond, typ, _ := l.lowerExpr(stmt.Condition)
	if !(ast.U64Type{}).Equal(typ) {
		fatalf("type mismatch: if condition has type %s, want u64", typ)
	}
	condBrIdx := l.emit(CondBr{Cond: cond, Target: PlaceholderLabel})

	l.lowerBlock(stmt.FalseBranch)
	skipIdx := l.emit(Br{Target: PlaceholderLabel})

	trueTop := l.allocLabel(len(l.body.Instrs))
	l.body.Instrs[condBrIdx] = CondBr{Cond: cond, Target: trueTop}

	l.lowerBlock(stmt.TrueBranch)
	trueBottom := l.allocLabel(len(l.body.Instrs))
	l.body.Instrs[skipIdx] = Br{Target: trueBottom}
}

// lowerExpr lowers expr and returns the register holding its value, its
// static type, and whether that register was freshly allocated by this
// call (as opposed to a bare Local reference returning a register some
// earlier instruction already owns). Callers that bind the result to a
// name (LocalDef) need allocatedNew to decide whether they must copy the
// value into a register of their own; callers that only consume the value
// (LocalSet, Add, Equal, If) can ignore it.
func (l *lowerer) lowerExpr(expr ast.Expr) (reg Reg, typ ast.Type, allocatedNew bool) {
	switch e := expr.(type) {
	case *ast.Local:
		b, ok := l.lookup(e.Name)
		if !ok {
			fatalf("undefined variable %q", e.Name)
		}
		return b.Reg, b.Type, false
	case *ast.Int:
		dst := l.allocReg()
		l.emit(StoreConst{Dst: dst, Value: e.Value})
		return dst, ast.U64Type{}, true
	case *ast.Add:
		lhs, _, _ := l.lowerExpr(e.Lhs)
		rhs, _, _ := l.lowerExpr(e.Rhs)
		dst := l.allocReg()
		l.emit(Add{Dst: dst, Lhs: lhs, Rhs: rhs})
		return dst, ast.U64Type{}, true
	case *ast.Equal:
		lhs, _, _ := l.lowerExpr(e.Lhs)
		rhs, _, _ := l.lowerExpr(e.Rhs)
		dst := l.allocReg()
		l.emit(CmpEq{Dst: dst, Lhs: lhs, Rhs: rhs})
		return dst, ast.U64Type{}, true
	default:
		fatalf("unknown expression type %T", expr)
		panic("unreachable")
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
