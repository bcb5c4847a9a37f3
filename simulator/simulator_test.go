package simulator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xDarkicex/nand/builder"
	"github.com/xDarkicex/nand/gate"
	"github.com/xDarkicex/nand/internal/testcircuits"
	"github.com/xDarkicex/nand/simulator"
)

type ports struct {
	a, b gate.Input
	out  gate.Output
}

func buildNandCircuit[S simulator.Simulator](construct func([]gate.Gate, gate.Input, []gate.Output, ...simulator.Option) S) (S, ports) {
	return builder.Build(
		func(gates []gate.Gate, in gate.Input, outs []gate.Output) S {
			return construct(gates, in, outs)
		},
		func() ports {
			ai, a := builder.Input(1)
			bi, b := builder.Input(1)
			out := builder.Nand(a.At(0), b.At(0)).Output()
			return ports{a: ai, b: bi, out: out}
		},
	)
}

func TestNandTruthTableDualBuffer(t *testing.T) {
	sim, p := buildNandCircuit(simulator.NewDualBuffer)
	runNandTruthTable(t, sim, p)
}

func TestNandTruthTableChangeList(t *testing.T) {
	sim, p := buildNandCircuit(simulator.NewChangeList)
	runNandTruthTable(t, sim, p)
}

func runNandTruthTable(t *testing.T, sim simulator.Simulator, p ports) {
	t.Helper()
	cases := []struct{ a, b, want uint64 }{
		{0, 0, 1},
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
	}

	for _, c := range cases {
		sim.Set(p.a, c.a)
		sim.Set(p.b, c.b)
		_, settled := sim.StepUntilSettled(10)
		require.True(t, settled)
		got := simulator.Get[uint8](sim, p.out)
		assert.Equal(t, uint8(c.want), got, "NAND(%d,%d)", c.a, c.b)
	}
}

type adderPorts struct {
	a, b gate.Input
	cin  gate.Input
	sum  gate.Output
	cout gate.Output
}

func buildFourBitAdder[S simulator.Simulator](construct func([]gate.Gate, gate.Input, []gate.Output, ...simulator.Option) S) (S, adderPorts) {
	return builder.Build(
		func(gates []gate.Gate, in gate.Input, outs []gate.Output) S {
			return construct(gates, in, outs)
		},
		func() adderPorts {
			ai, a := builder.Input(4)
			bi, b := builder.Input(4)
			ci, cinVec := builder.Input(1)
			sum, cout := testcircuits.Adder(a, b, cinVec.At(0))
			return adderPorts{a: ai, b: bi, cin: ci, sum: sum.Output(), cout: cout.Output()}
		},
	)
}

func TestFourBitAdder(t *testing.T) {
	sim, p := buildFourBitAdder(simulator.NewDualBuffer)

	for a := uint64(0); a < 16; a++ {
		for b := uint64(0); b < 16; b++ {
			sim.Set(p.a, a)
			sim.Set(p.b, b)
			sim.Set(p.cin, 0)
			_, settled := sim.StepUntilSettled(20)
			require.True(t, settled)

			want := a + b
			gotSum := simulator.Get[uint8](sim, p.sum)
			gotCarry := simulator.Get[uint8](sim, p.cout)
			got := uint64(gotSum) | uint64(gotCarry)<<4

			assert.Equal(t, want, got, "adder(%d,%d)", a, b)
		}
	}
}

type romPorts struct {
	addr gate.Input
	out  gate.Output
}

func TestEightByEightRom(t *testing.T) {
	data := []uint64{3, 200, 7, 99, 1, 250, 42, 17}

	sim, p := builder.Build(
		func(gates []gate.Gate, in gate.Input, outs []gate.Output) *simulator.DualBuffer {
			return simulator.NewDualBuffer(gates, in, outs)
		},
		func() romPorts {
			ai, addr := builder.Input(3)
			out := testcircuits.Rom(8, data, addr, builder.One())
			return romPorts{addr: ai, out: out.Output()}
		},
	)

	for i, want := range data {
		sim.Set(p.addr, uint64(i))
		_, settled := sim.StepUntilSettled(20)
		require.True(t, settled)
		got := simulator.Get[uint8](sim, p.out)
		assert.Equal(t, uint8(want), got, "rom[%d]", i)
	}
}

type dffPorts struct {
	d, clk, rstn gate.Input
	q            gate.Output
}

func TestDFlipflopRisingEdgeSample(t *testing.T) {
	sim, p := builder.Build(
		func(gates []gate.Gate, in gate.Input, outs []gate.Output) *simulator.DualBuffer {
			return simulator.NewDualBuffer(gates, in, outs)
		},
		func() dffPorts {
			di, d := builder.Input(1)
			ci, clk := builder.Input(1)
			ri, rstn := builder.Input(1)

			edge := testcircuits.RisingEdge(clk.At(0))
			ff := testcircuits.DFlipflop(d.At(0), edge, rstn.At(0))

			return dffPorts{d: di, clk: ci, rstn: ri, q: ff.Q.Output()}
		},
	)

	sim.Set(p.rstn, 0)
	sim.Set(p.clk, 0)
	sim.Set(p.d, 0)
	sim.StepUntilSettled(20)

	sim.Set(p.rstn, 1)
	sim.StepUntilSettled(20)

	sim.Set(p.d, 1)
	sim.StepUntilSettled(20)

	sim.Set(p.clk, 1)
	_, settled := sim.StepUntilSettled(40)
	require.True(t, settled)

	got := simulator.Get[uint8](sim, p.q)
	assert.Equal(t, uint8(1), got, "D-flip-flop should sample d=1 on the rising clock edge")
}

func TestGetNamedAfterSnapshots(t *testing.T) {
	sim, p := builder.Build(
		func(gates []gate.Gate, in gate.Input, outs []gate.Output) *simulator.DualBuffer {
			return simulator.NewDualBuffer(gates, in, outs)
		},
		func() gate.Input {
			ai, a := builder.Input(1)
			a.At(0).Name("probe")
			return ai
		},
	)

	sim.Clear()

	for _, bit := range []uint64{1, 0, 1} {
		sim.Set(p, bit)
		sim.StepUntilSettled(10)
		sim.Snapshot()
	}

	got, err := sim.GetNamed("probe")
	require.NoError(t, err)
	assert.Equal(t, true, got)

	_, err = sim.GetNamed("nonexistent")
	assert.Error(t, err)
}

func TestOptimizerDeterminismThroughSimulator(t *testing.T) {
	build := func() (*simulator.DualBuffer, adderPorts) {
		return buildFourBitAdder(simulator.NewDualBuffer)
	}

	sim1, p1 := build()
	sim2, p2 := build()

	countA := sim1.NumGates()
	countB := sim2.NumGates()
	assert.Equal(t, countA, countB, "optimizing the same circuit twice must yield the same gate count")

	sim1.Set(p1.a, 6)
	sim1.Set(p1.b, 9)
	sim1.Set(p1.cin, 0)
	sim1.StepUntilSettled(20)

	sim2.Set(p2.a, 6)
	sim2.Set(p2.b, 9)
	sim2.Set(p2.cin, 0)
	sim2.StepUntilSettled(20)

	assert.Equal(t, simulator.Get[uint8](sim1, p1.sum), simulator.Get[uint8](sim2, p2.sum))
}
