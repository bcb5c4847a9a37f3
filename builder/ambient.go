package builder

import (
	"sync"

	"github.com/xDarkicex/nand/gate"
)

// ambient holds the single in-flight Builder. Go has no thread-locals;
// Build binds this slot for the duration of the supplied construction
// function and panics on any attempt to nest or race a second build.
var ambient struct {
	mu sync.Mutex
	b  *Builder
}

func bindAmbient(b *Builder) {
	ambient.mu.Lock()
	defer ambient.mu.Unlock()

	if ambient.b != nil {
		panic(gate.NewError("Build", "a build is already in progress on this builder slot"))
	}
	ambient.b = b
}

func unbindAmbient() {
	ambient.mu.Lock()
	defer ambient.mu.Unlock()
	ambient.b = nil
}

func current() *Builder {
	ambient.mu.Lock()
	defer ambient.mu.Unlock()

	b := ambient.b
	if b == nil {
		panic(gate.NewError("builder", "no build in progress: call this only from within builder.Build"))
	}
	return b
}

// Simulator is the minimal construction contract a simulator
// implementation must satisfy to be usable with Build. Defined here
// (rather than imported from package simulator) so that package builder
// does not depend on package simulator.
type Simulator interface {
	NumGates() int
}

// Build runs f with a fresh Builder bound as the ambient builder, then
// finalizes the accumulated netlist and hands it to construct to produce
// a ready simulator of type S. R is the caller's own result type
// (typically a struct of gate.Input/gate.Output ports) returned by f.
//
// This mirrors build_simulator::<S, R> from the original circuit DSL:
// the generic type parameters let a single call site pick both the
// simulator implementation and the shape of the port bundle it gets
// back, without an intermediate builder handle threaded through every
// circuit function.
func Build[R any, S Simulator](construct func([]gate.Gate, gate.Input, []gate.Output) S, f func() R, opts ...Option) (S, R) {
	b := New(opts...)
	bindAmbient(b)
	defer unbindAmbient()

	result := f()
	gates := b.finalize()

	// construct's Input/[]Output parameters are a convenience for
	// callers who want a single construct function that also wires up
	// ports; every port a circuit actually declares is already baked
	// into each gate's Meta (InputID/OutputID), which is what
	// simulator construction reads from.
	sim := construct(gates, gate.Input{}, nil)
	return sim, result
}

// Zero returns the constant-0 wire shared by the whole build.
func Zero() V { return V{id: 0} }

// One returns a constant-1 wire. Every call during a build returns a
// fresh NAND(zero, zero) gate; the optimizer's structural deduplication
// later coalesces all of them into a single shared gate.
func One() V { return current().one() }

// NewV allocates an undriven wire handle. It must be bound exactly once
// with Set before the build finishes.
func NewV() V { return current().v() }

// NewVVec allocates n undriven wire handles as one interned vector.
func NewVVec(n int) VVec { return current().vv(n) }

// VVecFrom interns an existing slice of V handles into a VVec.
func VVecFrom(vs ...V) VVec { return current().vvFrom(vs) }

// Nand materializes a two-input NAND gate and returns its output wire.
func Nand(a, b V) V { return current().nand(a, b) }

// Input declares a new input port of the given bit width and
// returns both the port descriptor (for the caller's result bundle) and
// the VVec of wires driven by the simulator on each Set call.
func Input(size int) (gate.Input, VVec) { return current().input(size) }

// Output declares vv as an output port and returns its descriptor.
func Output(vv VVec) gate.Output { return current().output(vv) }

// Set binds the undriven wire l to the value carried by r. Each V may be
// Set exactly once; setting an already-driven V panics.
func Set(l, r V) { current().set(l, r) }

// Name attaches a waveform-capture name to v's driving gate.
func Name(v V, s string) { current().name(v, s) }

// Pin marks v's driving gate as pinned, preventing the optimizer from
// removing or coalescing it.
func Pin(v V) { current().pin(v) }
