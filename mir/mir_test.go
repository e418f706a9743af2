package mir

import (
	"strings"
	"testing"
)

func TestRegString(t *testing.T) {
	r := Reg(3)
	if got := r.String(); !strings.Contains(got, "%3") {
		t.Errorf("Reg.String() = %q, want to contain %%3", got)
	}
}

func TestLabelString(t *testing.T) {
	l := Label(7)
	if got := l.String(); !strings.Contains(got, "#007") {
		t.Errorf("Label.String() = %q, want to contain #007", got)
	}
}

func TestLabelPlaceholderString(t *testing.T) {
	if got := PlaceholderLabel.String(); !strings.Contains(got, "#???") {
		t.Errorf("PlaceholderLabel.String() = %q", got)
	}
}

func TestBodyPlainRendersStoreConstAndAdd(t *testing.T) {
	b := NewBody()
	b.Instrs = append(b.Instrs,
		StoreConst{Dst: 0, Value: 1},
		StoreConst{Dst: 1, Value: 2},
		Add{Dst: 2, Lhs: 0, Rhs: 1},
	)

	plain := b.Plain()
	if strings.Contains(plain, "\x1b[") {
		t.Errorf("Plain() should not contain ANSI escapes: %q", plain)
	}

	for _, want := range []string{"%0 = 1", "%1 = 2", "%2 = add %0, %1"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Plain() = %q, want to contain %q", plain, want)
		}
	}
}

func TestBodyPlainRendersLabels(t *testing.T) {
	b := NewBody()
	b.Instrs = append(b.Instrs, StoreConst{Dst: 0, Value: 1}, Br{Target: 0})
	b.Labels[0] = 0

	plain := b.Plain()
	if !strings.Contains(plain, "#000: %0 = 1") {
		t.Errorf("Plain() = %q, want label #000 inline with first instruction", plain)
	}
}

func TestBodyPlainRendersTrailingLabel(t *testing.T) {
	b := NewBody()
	b.Instrs = append(b.Instrs, StoreConst{Dst: 0, Value: 1})
	b.Labels[1] = 0

	plain := b.Plain()
	if !strings.Contains(plain, "#000:\n]]") {
		t.Errorf("Plain() = %q, want trailing label before closing ]]", plain)
	}
}

func TestBodyPlainRendersCmpEq(t *testing.T) {
	b := NewBody()
	b.Instrs = append(b.Instrs, CmpEq{Dst: 2, Lhs: 0, Rhs: 1})

	plain := b.Plain()
	if !strings.Contains(plain, "%2 = cmp_eq %0, %1") {
		t.Errorf("Plain() = %q, want to contain %%2 = cmp_eq %%0, %%1", plain)
	}
}

func TestBodyPlainRendersCondBr(t *testing.T) {
	b := NewBody()
	b.Instrs = append(b.Instrs, CondBr{Cond: 2, Target: 0})

	plain := b.Plain()
	if !strings.Contains(plain, "cond_br #000, %2") {
		t.Errorf("Plain() = %q, want to contain cond_br #000, %%2", plain)
	}
}

func TestMirStringOrdersProcsByName(t *testing.T) {
	m := NewMir()
	m.Procs["zeta"] = NewBody()
	m.Procs["alpha"] = NewBody()

	rendered := m.String()
	if strings.Index(rendered, "alpha") > strings.Index(rendered, "zeta") {
		t.Errorf("expected alpha before zeta in %q", rendered)
	}
}
