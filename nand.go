package nand

import (
	"github.com/xDarkicex/nand/builder"
	"github.com/xDarkicex/nand/gate"
	"github.com/xDarkicex/nand/simulator"
)

// Re-exported construction DSL, so a caller building a small circuit
// can depend on package nand alone.
type (
	V          = builder.V
	VVec       = builder.VVec
	CondArm    = builder.CondArm
	BuildOpt   = builder.Option
	Simulator  = simulator.Simulator
	Gate       = gate.Gate
	Input      = gate.Input
	Output     = gate.Output
	DualBuffer = simulator.DualBuffer
	ChangeList = simulator.ChangeList
)

var (
	Zero       = builder.Zero
	One        = builder.One
	NewV       = builder.NewV
	NewVVec    = builder.NewVVec
	VVecFrom   = builder.VVecFrom
	Nand       = builder.Nand
	DeclareIn  = builder.Input
	DeclareOut = builder.Output
	Set        = builder.Set
	Name       = builder.Name
	Pin        = builder.Pin
	IfElse     = builder.IfElse
	Cond       = builder.Cond
	OrM        = builder.OrM
	Constant   = builder.Constant

	NewDualBuffer = simulator.NewDualBuffer
	NewChangeList = simulator.NewChangeList
)

// Get reads a simulator output port and decodes it as T. It is a
// top-level re-export of simulator.Get: generic functions cannot be
// aliased with a `var`, so this is a thin wrapper rather than a direct
// assignment.
func Get[T simulator.Unsigned](s Simulator, out Output) T {
	return simulator.Get[T](s, out)
}

// Build runs f with a fresh builder bound, finalizes the resulting
// netlist, and hands it to construct to produce a ready simulator. It
// is a top-level re-export of builder.Build for the same reason Get is:
// generic functions aren't assignable to vars.
func Build[R any, S builder.Simulator](construct func([]gate.Gate, gate.Input, []gate.Output) S, f func() R, opts ...BuildOpt) (S, R) {
	return builder.Build(construct, f, opts...)
}
