package builder

import (
	"github.com/xDarkicex/nand/gate"
)

// Go has no operator overloading, so the DSL's bitwise/arithmetic
// lifting (Not/BitAnd/BitOr/BitXor/Mul/Add on V and VVec) is exposed as
// named methods instead. Every formula here is the literal two- to
// four-NAND construction from the original combinational-logic module.

// Not returns NAND(v, v), i.e. the logical inverse of v.
func (v V) Not() V {
	b := current()
	return b.nand(v, v)
}

// And returns a AND b, built as NAND(NAND(a,b), NAND(a,b)).
func (a V) And(b V) V {
	bld := current()
	n := bld.nand(a, b)
	return bld.nand(n, n)
}

// Or returns a OR b, built as NAND(NOT a, NOT b).
func (a V) Or(b V) V {
	return current().nand(a.Not(), b.Not())
}

// Xor returns a XOR b, built as NAND(NAND(a,x), NAND(b,x)) with
// x = NAND(a,b): four NANDs in all.
func (a V) Xor(b V) V {
	bld := current()
	x := bld.nand(a, b)
	return bld.nand(bld.nand(a, x), bld.nand(b, x))
}

// Repeat returns an n-wide VVec with every wire equal to v, mirroring
// the original's V * usize broadcast-repeat.
func (v V) Repeat(n int) VVec {
	vs := make([]V, n)
	for i := range vs {
		vs[i] = v
	}
	return current().vvFrom(vs)
}

// Concat prepends v as bit 0 of vv, returning a new, wider VVec.
func (v V) Concat(vv VVec) VVec {
	b := current()
	rest := b.vvGet(vv)
	out := make([]V, 0, len(rest)+1)
	out = append(out, v)
	out = append(out, rest...)
	return b.vvFrom(out)
}

// Name attaches a waveform-capture name to v's driving gate.
func (v V) Name(s string) V {
	current().name(v, s)
	return v
}

// Pin marks v's driving gate as pinned.
func (v V) Pin() V {
	current().pin(v)
	return v
}

// Output declares v as a single-bit output port.
func (v V) Output() gate.Output {
	return current().output(current().vvFrom([]V{v}))
}

// Len returns the number of wires in vv.
func (vv VVec) Len() int {
	return len(current().vvGet(vv))
}

// AsSlice returns a defensive copy of vv's underlying wires.
func (vv VVec) AsSlice() []V {
	src := current().vvGet(vv)
	out := make([]V, len(src))
	copy(out, src)
	return out
}

// At returns the i'th wire of vv (bit 0 is the least significant / first
// entry).
func (vv VVec) At(i int) V {
	return current().vvGet(vv)[i]
}

// Slice returns the half-open sub-range [lo, hi) of vv as a new VVec.
func (vv VVec) Slice(lo, hi int) VVec {
	b := current()
	src := b.vvGet(vv)
	return b.vvFrom(src[lo:hi])
}

// Concat appends other after vv, bit 0 of vv remaining bit 0 of the
// result.
func (vv VVec) Concat(other VVec) VVec {
	b := current()
	out := append(append([]V{}, b.vvGet(vv)...), b.vvGet(other)...)
	return b.vvFrom(out)
}

// ConcatV appends a single wire after vv.
func (vv VVec) ConcatV(v V) VVec {
	b := current()
	out := append(append([]V{}, b.vvGet(vv)...), v)
	return b.vvFrom(out)
}

func (vv VVec) zipmap(other VVec, f func(a, b V) V) VVec {
	b := current()
	as := b.vvGet(vv)
	bs := b.vvGet(other)
	if len(as) != len(bs) {
		panic(gate.NewError("VVec", "width mismatch in elementwise op"))
	}
	out := make([]V, len(as))
	for i := range as {
		out[i] = f(as[i], bs[i])
	}
	return b.vvFrom(out)
}

// Not returns the bitwise inverse of vv.
func (vv VVec) Not() VVec {
	b := current()
	src := b.vvGet(vv)
	out := make([]V, len(src))
	for i, v := range src {
		out[i] = v.Not()
	}
	return b.vvFrom(out)
}

// And returns the elementwise AND of vv and other; both must be the
// same width.
func (vv VVec) And(other VVec) VVec {
	return vv.zipmap(other, func(a, b V) V { return a.And(b) })
}

// Or returns the elementwise OR of vv and other; both must be the same
// width.
func (vv VVec) Or(other VVec) VVec {
	return vv.zipmap(other, func(a, b V) V { return a.Or(b) })
}

// Xor returns the elementwise XOR of vv and other; both must be the
// same width.
func (vv VVec) Xor(other VVec) VVec {
	return vv.zipmap(other, func(a, b V) V { return a.Xor(b) })
}

// AndBroadcast ANDs every wire of vv with the single wire v (e.g. a
// tristate-style enable mask).
func (vv VVec) AndBroadcast(v V) VVec {
	b := current()
	src := b.vvGet(vv)
	out := make([]V, len(src))
	for i, w := range src {
		out[i] = w.And(v)
	}
	return b.vvFrom(out)
}

// combine folds vs pairwise into a single wire using a balanced binary
// tree, matching the original's combine() helper: this keeps the gate
// depth logarithmic instead of linear as width grows.
func combine(vs []V, f func(a, b V) V) V {
	if len(vs) == 1 {
		return vs[0]
	}
	mid := len(vs) / 2
	left := combine(vs[:mid], f)
	right := combine(vs[mid:], f)
	return f(left, right)
}

// AndV reduces vv to a single wire with AND across every bit.
func (vv VVec) AndV() V {
	return combine(current().vvGet(vv), func(a, b V) V { return a.And(b) })
}

// OrV reduces vv to a single wire with OR across every bit.
func (vv VVec) OrV() V {
	return combine(current().vvGet(vv), func(a, b V) V { return a.Or(b) })
}

// Eq returns a single wire that is 1 iff vv and other are bitwise equal.
func (vv VVec) Eq(other VVec) V {
	return vv.Xor(other).Not().AndV()
}

// EqConstant returns a single wire that is 1 iff vv equals the binary
// expansion of n (bit 0 is the least significant bit).
func (vv VVec) EqConstant(n uint64) V {
	b := current()
	src := b.vvGet(vv)
	bits := make([]V, len(src))
	for i, w := range src {
		bit := (n >> uint(i)) & 1
		if bit == 1 {
			bits[i] = w
		} else {
			bits[i] = w.Not()
		}
	}
	return combine(bits, func(a, c V) V { return a.And(c) })
}

// Name attaches a waveform-capture name to every wire in vv, suffixed
// by bit index.
func (vv VVec) Name(s string) VVec {
	b := current()
	for i, w := range b.vvGet(vv) {
		w.Name(indexedName(s, i))
	}
	return vv
}

func indexedName(base string, i int) string {
	digits := []byte(base)
	digits = append(digits, '[')
	digits = append(digits, []byte(itoa(i))...)
	digits = append(digits, ']')
	return string(digits)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// Output declares vv as an output port.
func (vv VVec) Output() gate.Output {
	return current().output(vv)
}

// Constant materializes a bits-wide VVec whose value is the binary
// expansion of value: each 0 bit is the shared Zero wire, each 1 bit a
// fresh One() gate.
func Constant(bits int, value uint64) VVec {
	vs := make([]V, bits)
	for i := range vs {
		if (value>>uint(i))&1 == 1 {
			vs[i] = One()
		} else {
			vs[i] = Zero()
		}
	}
	return current().vvFrom(vs)
}

// IfElse selects between two VVecs of equal width based on a single
// select wire: whenTrue when sel is 1, whenFalse when sel is 0.
func IfElse(sel V, whenTrue, whenFalse VVec) VVec {
	return whenTrue.AndBroadcast(sel).Or(whenFalse.AndBroadcast(sel.Not()))
}

// CondArm is one priority-ordered branch of a Cond multiplexer.
type CondArm struct {
	When V
	Then VVec
}

// Cond builds a priority multiplexer: arms are tested in order, and the
// result is the Then value of the first arm whose When wire is 1.
// otherwise is used if no arm matches, mirroring the original's
// scan-based cond() combinator.
func Cond(otherwise VVec, arms ...CondArm) VVec {
	result := otherwise
	taken := Zero()

	for _, arm := range arms {
		active := arm.When.And(taken.Not())
		result = IfElse(active, arm.Then, result)
		taken = taken.Or(arm.When)
	}

	return result
}

// OrM performs an elementwise OR-reduction across a matrix of
// equal-width VVec rows, mirroring the original's VVecMatrix::orm (used
// to combine several bus drivers into a single bus wire).
func OrM(rows ...VVec) VVec {
	if len(rows) == 0 {
		panic(gate.NewError("OrM", "at least one row required"))
	}
	result := rows[0]
	for _, r := range rows[1:] {
		result = result.Or(r)
	}
	return result
}
