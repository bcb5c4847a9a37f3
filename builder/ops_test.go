package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xDarkicex/nand/gate"
)

func bit(v int) V {
	if v != 0 {
		return One()
	}
	return Zero()
}

func TestNandTruthTable(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{0, 0, 1},
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
	}

	for _, c := range cases {
		_, got := Build(construct, func() int {
			out := Nand(bit(c.a), bit(c.b))
			return constFold(out)
		})
		assert.Equal(t, c.want, got, "NAND(%d,%d)", c.a, c.b)
	}
}

func TestAndOrXorTruthTables(t *testing.T) {
	cases := []struct{ a, b, and, or, xor int }{
		{0, 0, 0, 0, 0},
		{0, 1, 0, 1, 1},
		{1, 0, 0, 1, 1},
		{1, 1, 1, 1, 0},
	}

	for _, c := range cases {
		_, gotAnd := Build(construct, func() int { return constFold(bit(c.a).And(bit(c.b))) })
		assert.Equal(t, c.and, gotAnd, "AND(%d,%d)", c.a, c.b)

		_, gotOr := Build(construct, func() int { return constFold(bit(c.a).Or(bit(c.b))) })
		assert.Equal(t, c.or, gotOr, "OR(%d,%d)", c.a, c.b)

		_, gotXor := Build(construct, func() int { return constFold(bit(c.a).Xor(bit(c.b))) })
		assert.Equal(t, c.xor, gotXor, "XOR(%d,%d)", c.a, c.b)
	}
}

func TestVVecEqConstant(t *testing.T) {
	_, got := Build(construct, func() int {
		vv := Constant(4, 10)
		return constFold(vv.EqConstant(10))
	})
	assert.Equal(t, 1, got)

	_, got = Build(construct, func() int {
		vv := Constant(4, 10)
		return constFold(vv.EqConstant(11))
	})
	assert.Equal(t, 0, got)
}

func TestVVecEq(t *testing.T) {
	_, got := Build(construct, func() int {
		a := Constant(4, 5)
		b := Constant(4, 5)
		return constFold(a.Eq(b))
	})
	assert.Equal(t, 1, got)
}

func TestVVecConcatAndSlice(t *testing.T) {
	Build(construct, func() gate.Output {
		lo := Constant(2, 0b01)
		hi := Constant(2, 0b10)
		full := lo.Concat(hi)

		assert.Equal(t, 4, full.Len())
		assert.Equal(t, lo.At(0), full.At(0))
		assert.Equal(t, hi.At(0), full.At(2))

		sub := full.Slice(1, 3)
		assert.Equal(t, 2, sub.Len())

		return full.Output()
	})
}

func TestIfElseAndCond(t *testing.T) {
	_, got := Build(construct, func() int {
		sel := One()
		a := Constant(4, 3)
		b := Constant(4, 9)
		r := IfElse(sel, a, b)
		return constFoldVec(r)
	})
	assert.Equal(t, 3, got)

	_, got = Build(construct, func() int {
		r := Cond(Constant(4, 0),
			CondArm{When: Zero(), Then: Constant(4, 1)},
			CondArm{When: One(), Then: Constant(4, 2)},
		)
		return constFoldVec(r)
	})
	assert.Equal(t, 2, got)
}

func TestOrM(t *testing.T) {
	_, got := Build(construct, func() int {
		r := OrM(Constant(4, 0b0001), Constant(4, 0b0010), Constant(4, 0b0100))
		return constFoldVec(r)
	})
	assert.Equal(t, 0b0111, got)
}

// constFold evaluates a wire that was built entirely from Zero()/One()
// constants, for tests that want a plain int back without standing up a
// full simulator. It walks the raw gate table directly.
func constFold(v V) int {
	b := current()
	return evalConst(b, b.resolve(v.id), map[uint32]int{0: 0})
}

func constFoldVec(vv VVec) int {
	b := current()
	bits := b.vvGet(vv)
	total := 0
	for i, bitV := range bits {
		total |= constFold(bitV) << uint(i)
	}
	return total
}

func evalConst(b *Builder, gid uint32, memo map[uint32]int) int {
	if val, ok := memo[gid]; ok {
		return val
	}
	g := b.gates[gid]
	av := evalConst(b, b.resolve(g.a), memo)
	bv := evalConst(b, b.resolve(g.b), memo)
	result := 1 - (av & bv)
	memo[gid] = result
	return result
}
