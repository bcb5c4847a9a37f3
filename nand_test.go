package nand_test

import (
	"fmt"

	"github.com/xDarkicex/nand"
)

type andGatePorts struct {
	a, b nand.Input
	out  nand.Output
}

// ExampleBuild declares a single two-input AND gate (one NAND plus an
// inverter), drives both inputs high, and reads the settled output.
func ExampleBuild() {
	sim, ports := nand.Build(
		func(gates []nand.Gate, in nand.Input, outs []nand.Output) *nand.DualBuffer {
			return nand.NewDualBuffer(gates, in, outs)
		},
		func() andGatePorts {
			ai, a := nand.DeclareIn(1)
			bi, b := nand.DeclareIn(1)
			out := a.At(0).And(b.At(0)).Output()
			return andGatePorts{a: ai, b: bi, out: out}
		},
	)

	sim.Set(ports.a, 1)
	sim.Set(ports.b, 1)
	sim.StepUntilSettled(10)

	fmt.Println(nand.Get[uint8](sim, ports.out))
	// Output: 1
}
