// Package mir implements minic's mid-level intermediate representation: a
// flat, per-procedure list of register instructions addressed by integer
// index, with labels recorded at the positions forward branches target.
//
// Unlike a basic-block CFG, control flow here is encoded entirely through
// Br/CondBr instructions pointing at label positions that are backpatched
// once the branch target is known. This mirrors how a single-pass lowering
// of `loop`/`if`/`break` naturally falls out of a recursive walk of the AST.
package mir

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Reg names a virtual register. Each Reg is allocated once, by the
// instruction that first computes its value; Store may later write a new
// value into a register allocated earlier, which is how a mutable local
// or a loop-carried value stays live across control flow.
type Reg uint32

func (r Reg) String() string {
	return fmt.Sprintf("\x1b[34m%%%d\x1b[0m", uint32(r))
}

// Label names a branch target. PlaceholderLabel marks a Br/CondBr target
// that has not been resolved yet; every placeholder must be backpatched
// before lowering finishes.
type Label uint32

const PlaceholderLabel Label = math.MaxUint32

func (l Label) String() string {
	if l == PlaceholderLabel {
		return "\x1b[35m#???\x1b[0m"
	}
	return fmt.Sprintf("\x1b[35m#%03d\x1b[0m", uint32(l))
}

// Instr is one MIR instruction.
type Instr interface {
	instrNode()
	String() string
}

// StoreConst writes an integer constant into Dst.
type StoreConst struct {
	Dst   Reg
	Value uint64
}

func (StoreConst) instrNode() {}
func (s StoreConst) String() string {
	return fmt.Sprintf("%s = \x1b[36m%d\x1b[0m", s.Dst, s.Value)
}

// Store copies the value in Src into the already-allocated register Dst.
// It is how a `set` statement and a loop-carried variable become visible
// to code emitted after them, since registers are otherwise write-once.
type Store struct {
	Dst Reg
	Src Reg
}

func (Store) instrNode() {}
func (s Store) String() string {
	return fmt.Sprintf("%s = %s", s.Dst, s.Src)
}

// Br is an unconditional jump to Target.
type Br struct {
	Target Label
}

func (Br) instrNode() {}
func (b Br) String() string {
	return fmt.Sprintf("\x1b[32mbr\x1b[0m %s", b.Target)
}

// CondBr jumps to Target if Cond is non-zero; otherwise execution falls
// through to the instruction immediately after it.
type CondBr struct {
	Cond   Reg
	Target Label
}

func (CondBr) instrNode() {}
func (c CondBr) String() string {
	return fmt.Sprintf("\x1b[32mcond_br\x1b[0m %s, %s", c.Target, c.Cond)
}

// Add computes Dst = Lhs + Rhs.
type Add struct {
	Dst      Reg
	Lhs, Rhs Reg
}

func (Add) instrNode() {}
func (a Add) String() string {
	return fmt.Sprintf("%s = \x1b[32madd\x1b[0m %s, %s", a.Dst, a.Lhs, a.Rhs)
}

// CmpEq computes Dst = (Lhs == Rhs) as 1 or 0.
type CmpEq struct {
	Dst      Reg
	Lhs, Rhs Reg
}

func (CmpEq) instrNode() {}
func (c CmpEq) String() string {
	return fmt.Sprintf("%s = \x1b[32mcmp_eq\x1b[0m %s, %s", c.Dst, c.Lhs, c.Rhs)
}

// Body is the lowered form of a single procedure: an ordered instruction
// list plus the labels recorded at the positions they were allocated for.
type Body struct {
	Instrs []Instr
	Labels map[int]Label
}

func NewBody() *Body {
	return &Body{Labels: make(map[int]Label)}
}

// String renders the body the way a compiler's debug dump would: labels
// inline at the instruction index they mark, plus a trailing label if one
// was allocated past the last instruction.
func (b *Body) String() string {
	var sb strings.Builder
	sb.WriteString("MIR[[\n")

	for i, instr := range b.Instrs {
		sb.WriteString("    ")
		if label, ok := b.Labels[i]; ok {
			sb.WriteString(label.String())
			sb.WriteString(": ")
		} else {
			sb.WriteString("     ")
		}
		sb.WriteString(instr.String())
		sb.WriteString("\n")
	}

	if label, ok := b.Labels[len(b.Instrs)]; ok {
		sb.WriteString("    ")
		sb.WriteString(label.String())
		sb.WriteString(":\n")
	}

	sb.WriteString("]]")
	return sb.String()
}

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Plain renders the body like String but with ANSI color codes stripped,
// so tests can assert on it without embedding escape sequences.
func (b *Body) Plain() string {
	return ansiEscape.ReplaceAllString(b.String(), "")
}

// Mir is the lowered form of an entire file: one Body per procedure, keyed
// by procedure name.
type Mir struct {
	Procs map[string]*Body
}

func NewMir() *Mir {
	return &Mir{Procs: make(map[string]*Body)}
}

func (m *Mir) String() string {
	names := make([]string, 0, len(m.Procs))
	for name := range m.Procs {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(name)
		sb.WriteString(" ")
		sb.WriteString(m.Procs[name].String())
	}
	return sb.String()
}
