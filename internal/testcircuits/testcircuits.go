// Package testcircuits provides small, unexported example circuits
// (an adder, an incrementer, a decoder, a ROM, a D-flip-flop) built
// entirely on top of package builder's public DSL. They exist only to
// give the simulator test suite realistic multi-gate netlists to
// exercise; they are not part of this module's public API.
package testcircuits

import (
	"github.com/xDarkicex/nand/builder"
)

// Increment returns a+1, discarding any final carry out of the top bit.
func Increment(a builder.VVec) builder.VVec {
	c := builder.One()
	bits := a.AsSlice()
	out := make([]builder.V, len(bits))

	for i, bit := range bits {
		s := c.Xor(bit)
		c = c.And(bit)
		out[i] = s
	}

	return builder.VVecFrom(out...)
}

// Adder is a ripple-carry full adder: it returns a+b+carryIn as a
// same-width sum plus the final carry out.
func Adder(a, b builder.VVec, carryIn builder.V) (builder.VVec, builder.V) {
	as := a.AsSlice()
	bs := b.AsSlice()
	if len(as) != len(bs) {
		panic("testcircuits: Adder operands must be equal width")
	}

	c := carryIn
	sum := make([]builder.V, len(as))

	for i := range as {
		sAB := as[i].Xor(bs[i])
		s := sAB.Xor(c)
		c = as[i].And(bs[i]).Or(sAB.And(c))
		sum[i] = s
	}

	return builder.VVecFrom(sum...), c
}

// Decoder expands an n-bit address into a 2^n-wide one-hot select
// vector: bit i of the result is 1 iff addr equals i.
func Decoder(addr builder.VVec) builder.VVec {
	bits := addr.AsSlice()
	notBits := make([]builder.V, len(bits))
	for i, b := range bits {
		notBits[i] = b.Not()
	}

	width := 1 << uint(len(bits))
	out := make([]builder.V, width)

	for index := 0; index < width; index++ {
		terms := make([]builder.V, len(bits))
		for bit := range bits {
			if index&(1<<uint(bit)) != 0 {
				terms[bit] = bits[bit]
			} else {
				terms[bit] = notBits[bit]
			}
		}
		out[index] = builder.VVecFrom(terms...).AndV()
	}

	return builder.VVecFrom(out...)
}

// Rom returns a bits-wide VVec driven by data[addr], gated by busSel so
// multiple bus drivers can be OR-combined onto a shared bus.
func Rom(bits int, data []uint64, addr builder.VVec, busSel builder.V) builder.VVec {
	dec := Decoder(addr)

	out := make([]builder.V, bits)
	for bit := 0; bit < bits; bit++ {
		var contributors []builder.V
		for index, word := range data {
			if word&(1<<uint(bit)) != 0 {
				contributors = append(contributors, dec.At(index))
			}
		}
		if len(contributors) == 0 {
			out[bit] = builder.Zero()
		} else {
			out[bit] = builder.VVecFrom(contributors...).OrV()
		}
	}

	return builder.VVecFrom(out...).AndBroadcast(busSel)
}

// Flipflop is a level-sensitive latch's pair of cross-coupled outputs.
type Flipflop struct {
	Q, QN builder.V
}

// DFlipflop is a D-latch: while e is asserted, q tracks d; rstn low
// forces the latch into its reset state asynchronously.
func DFlipflop(d, e, rstn builder.V) Flipflop {
	sn := builder.Nand(d, e)
	rn := builder.Nand(sn, e).And(rstn)

	qn := builder.NewV()
	q := builder.Nand(sn, qn)
	builder.Set(qn, builder.Nand(rn, q))

	return Flipflop{Q: q, QN: qn}
}

// RisingEdge returns a pulse on every low-to-high transition of a, as
// many ticks wide as the delay chain is long (five), built from five
// pinned inverter stages so the optimizer cannot collapse the deliberate
// propagation delay that makes edge detection possible.
func RisingEdge(a builder.V) builder.V {
	b := a.Not().Pin()
	b = b.Not().Pin()
	b = b.Not().Pin()
	b = b.Not().Pin()
	b = b.Not().Pin()
	return a.And(b)
}
