// Package gate defines the data model shared by the builder, optimizer,
// and simulator packages: a NAND node, its optional metadata, and the
// Input/Output port descriptors the builder hands to a simulator.
package gate

// Gate is a single two-input NAND node. Its semantic output is
// !(state[A] & state[B]). IDs are dense and start at 0 before
// optimization; after optimization they may be sparse (see the
// optimizer package), so consumers must index by an ID->position map
// rather than assuming ID equals array position.
type Gate struct {
	ID   uint32
	A, B uint32
	Meta *Meta
}

// Meta holds the optional, per-gate data that makes a gate externally
// observable: a pin flag, human names for waveform capture, and the
// input/output port tags the builder attaches to declared ports.
type Meta struct {
	Pinned   bool
	Names    []string
	InputID  *uint32
	OutputID *uint32
}

// IsInput reports whether this gate is a declared input port.
func (g Gate) IsInput() bool {
	return g.Meta != nil && g.Meta.InputID != nil
}

// IsOutput reports whether this gate is a declared output port.
func (g Gate) IsOutput() bool {
	return g.Meta != nil && g.Meta.OutputID != nil
}

// IsIO reports whether this gate is an input or output port.
func (g Gate) IsIO() bool {
	return g.IsInput() || g.IsOutput()
}

// IsPinned reports whether the optimizer must preserve this gate's
// identity: it was explicitly pinned, it carries a name, or it is IO.
func (g Gate) IsPinned() bool {
	if g.Meta == nil {
		return false
	}
	return g.Meta.Pinned || len(g.Meta.Names) > 0 || g.IsIO()
}

// AddName appends a waveform-capture name to the gate, allocating Meta
// if this is the gate's first name.
func (g *Gate) AddName(name string) {
	g.ensureMeta().Names = append(g.ensureMeta().Names, name)
}

// Pin marks the gate as pinned, preventing the optimizer from removing
// or coalescing it.
func (g *Gate) Pin() {
	g.ensureMeta().Pinned = true
}

func (g *Gate) ensureMeta() *Meta {
	if g.Meta == nil {
		g.Meta = &Meta{}
	}
	return g.Meta
}

// Input is an ordered list of gate IDs for a declared input port. Bit 0
// is the first entry (least significant).
type Input struct {
	Gates []uint32
}

// Width returns the number of bits in the input.
func (i Input) Width() int {
	return len(i.Gates)
}

// Output is an ordered list of gate IDs marked as an output port. Bit 0
// is the first entry (least significant).
type Output struct {
	Gates []uint32
}

// Width returns the number of bits in the output.
func (o Output) Width() int {
	return len(o.Gates)
}
