// Package simulator implements the two synchronous gate-level
// evaluation models: DualBuffer (double-buffered, parallel) and
// ChangeList (event-driven). Both consume a finalized netlist from
// package builder, run it through package optimizer, and expose the
// same Simulator contract.
package simulator

import (
	"fmt"
	"math/bits"

	"github.com/xDarkicex/nand/gate"
)

// Simulator is the contract shared by every evaluation model. Get is
// deliberately not a method here (Go methods can't carry their own type
// parameter); use the free function Get instead.
type Simulator interface {
	// Set drives an input port with the low Width() bits of value.
	Set(in gate.Input, value uint64)

	// GetBits reads the current state of an output port as a plain
	// uint64, widening from however many bits the port has.
	GetBits(out gate.Output) uint64

	// Step advances the simulation by exactly one synchronous tick.
	Step()

	// StepBy advances the simulation by n ticks.
	StepBy(n int)

	// StepUntilSettled steps until two consecutive states are
	// identical (DualBuffer) or no gate changed (ChangeList), or until
	// maxSteps is reached. It returns the number of steps taken and
	// whether the simulation settled.
	StepUntilSettled(maxSteps int) (int, bool)

	// Snapshot appends the current value of every named gate (as a
	// '█'/'▁' glyph) to that gate's waveform trace.
	Snapshot()

	// Show renders every named gate's accumulated waveform trace.
	Show()

	// Clear empties every named gate's waveform trace.
	Clear()

	// NumGates returns the number of gates retained after
	// optimization.
	NumGates() int

	// GetNamed reads the current value of a single named gate,
	// independent of any output port.
	GetNamed(name string) (bool, error)
}

// Unsigned bounds the integer types Get can decode a port into.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Get reads an output port and decodes it as T, mirroring the
// original's generic get::<R: TryFrom<u64>>. It panics with a
// *gate.Error if the port is wider than T can hold -- a contract
// violation, not a recoverable runtime condition.
func Get[T Unsigned](s Simulator, out gate.Output) T {
	bits := s.GetBits(out)

	width := out.Width()
	if width > 64 {
		panic(gate.NewError("Get", fmt.Sprintf("output width %d exceeds 64 bits", width)))
	}

	bitSize := unsignedBitSize[T]()
	if width > bitSize {
		panic(gate.NewError("Get", fmt.Sprintf("output width %d overflows target type (%d bits)", width, bitSize)))
	}

	return T(bits)
}

func unsignedBitSize[T Unsigned]() int {
	return bits.Len64(uint64(^T(0)))
}

// namedTrace is one entry in a waveform capture table: the gate's
// resolved state-array position, its name, and the accumulated glyph
// string built up by successive Snapshot calls.
type namedTrace struct {
	index int
	name  string
	trace []rune
}

func (t *namedTrace) push(v bool) {
	if v {
		t.trace = append(t.trace, '█')
	} else {
		t.trace = append(t.trace, '▁')
	}
}

func (t *namedTrace) clear() {
	t.trace = t.trace[:0]
}

func (t *namedTrace) String() string {
	return string(t.trace)
}

// buildIndexMaps sorts gates (inputs first, mirroring the original's
// sort_by_key(Reverse(is_input))) and computes the ID->position maps
// every evaluation model needs after optimization leaves gate IDs
// sparse.
func buildIndexMaps(gates []gate.Gate) (ordered []gate.Gate, indexOf map[uint32]int, nInputs int) {
	ordered = make([]gate.Gate, len(gates))
	copy(ordered, gates)

	// Stable partition: inputs first, in their original relative
	// order, then everything else in its original relative order.
	inputs := make([]gate.Gate, 0, len(ordered))
	rest := make([]gate.Gate, 0, len(ordered))
	for _, g := range ordered {
		if g.IsInput() {
			inputs = append(inputs, g)
		} else {
			rest = append(rest, g)
		}
	}
	ordered = append(inputs, rest...)
	nInputs = len(inputs)

	indexOf = make(map[uint32]int, len(ordered))
	for i, g := range ordered {
		indexOf[g.ID] = i
	}

	return ordered, indexOf, nInputs
}

func buildPortMaps(ordered []gate.Gate, indexOf map[uint32]int) (inputMap, outputMap map[uint32]int) {
	inputMap = make(map[uint32]int)
	outputMap = make(map[uint32]int)

	for _, g := range ordered {
		if g.Meta == nil {
			continue
		}
		if g.Meta.InputID != nil {
			inputMap[*g.Meta.InputID] = indexOf[g.ID]
		}
		if g.Meta.OutputID != nil {
			outputMap[*g.Meta.OutputID] = indexOf[g.ID]
		}
	}

	return inputMap, outputMap
}

func buildNamedTraces(ordered []gate.Gate, indexOf map[uint32]int) []*namedTrace {
	var names []*namedTrace
	for _, g := range ordered {
		if g.Meta == nil {
			continue
		}
		for _, n := range g.Meta.Names {
			names = append(names, &namedTrace{index: indexOf[g.ID], name: n})
		}
	}
	return names
}

func findTrace(names []*namedTrace, name string) (*namedTrace, error) {
	for _, t := range names {
		if t.name == name {
			return t, nil
		}
	}
	return nil, gate.NewError("GetNamed", fmt.Sprintf("unknown name %q", name))
}

func bitsFromPort(state []uint8, portMap map[uint32]int, ids []uint32) uint64 {
	var r uint64
	for bit, id := range ids {
		idx, ok := portMap[id]
		if !ok {
			panic(gate.NewError("Get", fmt.Sprintf("unknown output gate %d", id)))
		}
		r |= uint64(state[idx]) << uint(bit)
	}
	return r
}

func setPort(state []uint8, portMap map[uint32]int, ids []uint32, value uint64) []int {
	touched := make([]int, 0, len(ids))
	for bit, id := range ids {
		idx, ok := portMap[id]
		if !ok {
			panic(gate.NewError("Set", fmt.Sprintf("unknown input gate %d", id)))
		}
		b := uint8((value >> uint(bit)) & 1)
		state[idx] = b
		touched = append(touched, idx)
	}
	return touched
}
