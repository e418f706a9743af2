package mir

import (
	"testing"

	"github.com/minicc/minic/ast"
)

func lowerSingleProc(t *testing.T, body *ast.Block) *Body {
	t.Helper()
	file := &ast.File{Items: []ast.Item{&ast.Proc{Name: "main", Body: body}}}
	m := LowerFile(file)
	b, ok := m.Procs["main"]
	if !ok {
		t.Fatal("expected a lowered body for main")
	}
	return b
}

func TestLowerLocalDefAndAdd(t *testing.T) {
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.LocalDef{Name: "x", Type: ast.U64Type{}, Value: &ast.Add{
			Lhs: &ast.Int{Value: 1}, Rhs: &ast.Int{Value: 2},
		}},
	}}

	b := lowerSingleProc(t, body)

	if len(b.Instrs) != 3 {
		t.Fatalf("expected 3 instructions, got %d: %s", len(b.Instrs), b.Plain())
	}

	if _, ok := b.Instrs[0].(StoreConst); !ok {
		t.Errorf("instr 0 = %T, want StoreConst", b.Instrs[0])
	}
	if _, ok := b.Instrs[1].(StoreConst); !ok {
		t.Errorf("instr 1 = %T, want StoreConst", b.Instrs[1])
	}
	add, ok := b.Instrs[2].(Add)
	if !ok {
		t.Fatalf("instr 2 = %T, want Add", b.Instrs[2])
	}
	if add.Lhs != 0 || add.Rhs != 1 || add.Dst != 2 {
		t.Errorf("Add regs wrong: %+v", add)
	}
}

func TestLowerLocalSetEmitsStore(t *testing.T) {
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.LocalDef{Name: "x", Type: ast.U64Type{}, Value: &ast.Int{Value: 1}},
		&ast.LocalSet{Name: "x", NewValue: &ast.Int{Value: 2}},
	}}

	b := lowerSingleProc(t, body)

	store, ok := b.Instrs[2].(Store)
	if !ok {
		t.Fatalf("instr 2 = %T, want Store", b.Instrs[2])
	}
	if store.Dst != 0 {
		t.Errorf("Store.Dst = %d, want 0 (x's original register)", store.Dst)
	}
}

func TestLowerLoopWithoutBreakOmitsBottomLabel(t *testing.T) {
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Loop{Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.LocalDef{Name: "x", Type: ast.U64Type{}, Value: &ast.Int{Value: 1}},
		}}},
	}}

	b := lowerSingleProc(t, body)

	// top label at index 0, Br back to it as the last instruction; no label
	// past the end since nothing breaks out.
	if _, ok := b.Labels[0]; !ok {
		t.Fatal("expected a label at index 0 for the loop top")
	}
	if _, ok := b.Labels[len(b.Instrs)]; ok {
		t.Error("did not expect a trailing label when the loop has no break")
	}

	last, ok := b.Instrs[len(b.Instrs)-1].(Br)
	if !ok || last.Target != 0 {
		t.Errorf("expected final instruction to Br back to label 0, got %+v", b.Instrs[len(b.Instrs)-1])
	}
}

func TestLowerLoopWithBreakPatchesBottomLabel(t *testing.T) {
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Loop{Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.Break{},
		}}},
	}}

	b := lowerSingleProc(t, body)

	brk, ok := b.Instrs[0].(Br)
	if !ok {
		t.Fatalf("instr 0 = %T, want Br", b.Instrs[0])
	}
	if brk.Target == PlaceholderLabel {
		t.Error("break's Br was never patched")
	}

	bottomLabel, ok := b.Labels[len(b.Instrs)]
	if !ok {
		t.Fatal("expected a trailing label for the loop bottom")
	}
	if brk.Target != bottomLabel {
		t.Errorf("break targets %v, want bottom label %v", brk.Target, bottomLabel)
	}
}

func TestLowerNestedLoopBreakTargetsInnerLoop(t *testing.T) {
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Loop{Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.Loop{Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.Break{},
			}}},
		}}},
	}}

	b := lowerSingleProc(t, body)

	// The inner break should not have patched all the way out: the outer
	// loop has no break of its own, so it should still lack a trailing label.
	innerBreak, ok := b.Instrs[0].(Br)
	if !ok {
		t.Fatalf("instr 0 = %T, want Br", b.Instrs[0])
	}
	if innerBreak.Target == PlaceholderLabel {
		t.Fatal("inner break was never patched")
	}

	// The inner loop's bottom is index 2, just past its back-edge at index 1.
	if innerBottom, ok := b.Labels[2]; !ok || innerBreak.Target != innerBottom {
		t.Errorf("inner break targets %v, want the inner loop's bottom label at index 2", innerBreak.Target)
	}
	if _, ok := b.Labels[len(b.Instrs)]; ok {
		t.Error("did not expect a trailing label for the outer loop, which has no break")
	}

	// outer loop's Br-back is the very last instruction, targeting label 0.
	outerBack, ok := b.Instrs[len(b.Instrs)-1].(Br)
	if !ok || outerBack.Target != 0 {
		t.Errorf("expected outer loop back-edge to label 0, got %+v", b.Instrs[len(b.Instrs)-1])
	}
}

func TestLowerContinueBranchesToLoopTop(t *testing.T) {
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Loop{Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.Continue{},
		}}},
	}}

	b := lowerSingleProc(t, body)

	cont, ok := b.Instrs[0].(Br)
	if !ok || cont.Target != 0 {
		t.Errorf("expected continue to Br to label 0 immediately, got %+v", b.Instrs[0])
	}
}

// TestLowerIfPatchesAllThreeBranches checks the §4.8 layout: condition,
// CondBr to the true branch, the false branch falls through immediately
// after, a Br skips past the true branch, then the true branch.
func TestLowerIfPatchesAllThreeBranches(t *testing.T) {
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.If{
			Condition: &ast.Equal{Lhs: &ast.Int{Value: 1}, Rhs: &ast.Int{Value: 1}},
			TrueBranch: &ast.Block{Stmts: []ast.Stmt{
				&ast.LocalDef{Name: "a", Type: ast.U64Type{}, Value: &ast.Int{Value: 3}},
			}},
			FalseBranch: &ast.Block{Stmts: []ast.Stmt{
				&ast.LocalDef{Name: "b", Type: ast.U64Type{}, Value: &ast.Int{Value: 4}},
			}},
		},
	}}

	b := lowerSingleProc(t, body)

	var condBr CondBr
	condBrIdx := -1
	for i, instr := range b.Instrs {
		if cb, ok := instr.(CondBr); ok {
			condBr = cb
			condBrIdx = i
			break
		}
	}
	if condBrIdx == -1 {
		t.Fatalf("expected a CondBr instruction: %s", b.Plain())
	}

	if condBr.Target == PlaceholderLabel {
		t.Errorf("CondBr target not patched: %+v", condBr)
	}

	for _, instr := range b.Instrs {
		if br, ok := instr.(Br); ok && br.Target == PlaceholderLabel {
			t.Error("found an unpatched Br placeholder")
		}
	}

	// The false branch's StoreConst{Value: 4} must appear immediately after
	// the CondBr (fall-through), and the true branch's StoreConst{Value: 3}
	// must appear after the skip Br, at the CondBr's patched target.
	falseStore, ok := b.Instrs[condBrIdx+1].(StoreConst)
	if !ok || falseStore.Value != 4 {
		t.Fatalf("instr after CondBr = %+v, want the false branch's StoreConst{Value: 4}", b.Instrs[condBrIdx+1])
	}

	skipBr, ok := b.Instrs[condBrIdx+2].(Br)
	if !ok {
		t.Fatalf("instr after false branch = %T, want the skip Br", b.Instrs[condBrIdx+2])
	}

	trueTopIdx := condBrIdx + 3
	if label, ok := b.Labels[trueTopIdx]; !ok || label != condBr.Target {
		t.Errorf("expected CondBr target to label the true branch's first instruction at index %d", trueTopIdx)
	}

	trueStore, ok := b.Instrs[trueTopIdx].(StoreConst)
	if !ok || trueStore.Value != 3 {
		t.Fatalf("instr at true branch top = %+v, want StoreConst{Value: 3}", b.Instrs[trueTopIdx])
	}

	if label, ok := b.Labels[len(b.Instrs)]; !ok || label != skipBr.Target {
		t.Error("expected the skip Br to target the trailing label after the true branch")
	}
}

// TestLowerLocalDefBareReferenceForcesCopy covers Scenario B: binding a
// name directly to another name's value must allocate a fresh register via
// a Store, so later mutating one does not alias the other.
func TestLowerLocalDefBareReferenceForcesCopy(t *testing.T) {
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.LocalDef{Name: "x", Type: ast.U64Type{}, Value: &ast.Int{Value: 5}},
		&ast.LocalDef{Name: "y", Type: ast.U64Type{}, Value: &ast.Local{Name: "x"}},
	}}

	b := lowerSingleProc(t, body)

	if len(b.Instrs) != 2 {
		t.Fatalf("expected 2 instructions, got %d: %s", len(b.Instrs), b.Plain())
	}

	if _, ok := b.Instrs[0].(StoreConst); !ok {
		t.Fatalf("instr 0 = %T, want StoreConst", b.Instrs[0])
	}

	store, ok := b.Instrs[1].(Store)
	if !ok {
		t.Fatalf("instr 1 = %T, want Store", b.Instrs[1])
	}
	if store.Src != 0 {
		t.Errorf("Store.Src = %d, want 0 (x's register)", store.Src)
	}
	if store.Dst == store.Src {
		t.Errorf("Store.Dst = %d, want a fresh register distinct from x's", store.Dst)
	}
}

func TestLowerShadowingInNestedBlock(t *testing.T) {
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.LocalDef{Name: "x", Type: ast.U64Type{}, Value: &ast.Int{Value: 1}},
		&ast.Loop{Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.LocalDef{Name: "x", Type: ast.U64Type{}, Value: &ast.Int{Value: 2}},
			&ast.Break{},
		}}},
	}}

	b := lowerSingleProc(t, body)

	// two distinct StoreConst registers for the two x bindings, not a
	// collision or a Store into the outer one.
	outer, ok := b.Instrs[0].(StoreConst)
	if !ok || outer.Value != 1 {
		t.Fatalf("instr 0 = %+v, want StoreConst{Value: 1}", b.Instrs[0])
	}
	inner, ok := b.Instrs[1].(StoreConst)
	if !ok || inner.Value != 2 || inner.Dst == outer.Dst {
		t.Fatalf("instr 1 = %+v, want a distinct StoreConst{Value: 2}", b.Instrs[1])
	}
}
