// Package builder implements the deferred-evaluation netlist construction
// DSL: V and VVec wire handles, forward references via an
// Uninit -> Ref -> Gate resolution chain, VVec interning, and an ambient
// single-slot builder binding so circuit code can call free functions
// (Nand, Input, Output, ...) without threading a builder argument through
// every expression.
package builder

import (
	"fmt"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/xDarkicex/nand/gate"
)

// V is a handle naming one logical bit-wire under construction. It is an
// opaque index into the builder's values table, not necessarily a gate
// ID -- the underlying value may still be unresolved until a forward
// reference is bound with Set.
type V struct {
	id uint32
}

// VVec is an ordered, interned tuple of V handles. Two VVecs built from
// the same sequence of V IDs, in the same order, are identical handles.
type VVec struct {
	id uint32
}

type valueKind uint8

const (
	uninitKind valueKind = iota
	refKind
	gateKind
)

// value is one entry in the builder's indirection table: a V starts
// Uninit, becomes a Ref to another V once Set, or is a Gate from the
// moment Nand/Input materializes it.
type value struct {
	kind valueKind
	ref  uint32
}

// rawGate mirrors gate.Gate but stores A/B as *unresolved V IDs* --
// finalize() chases each through the values table to get real gate IDs.
// This indirection is what lets circuit code refer to a wire before its
// driver exists (loops whose body references their own prior state).
type rawGate struct {
	a, b uint32
	meta *gate.Meta
}

// Builder accumulates a growing NAND netlist: a values table for V
// resolution, an interning table for VVecs, and the raw gate list. It is
// not shareable across goroutines; see Build and the ambient binding in
// ambient.go.
type Builder struct {
	id  uuid.UUID
	log logr.Logger

	values []value
	gates  []rawGate

	vecs     [][]V
	vecIndex map[string]uint32

	pendingUninit mapset.Set[uint32]
}

// Option configures a Builder at construction time.
type Option func(*Builder)

// WithLogger attaches a structured logger for build diagnostics. The
// default is logr.Discard(), so callers pay nothing unless they opt in.
func WithLogger(log logr.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// WithID overrides the build's correlation ID (normally a fresh random
// UUID), useful for deterministic test output.
func WithID(id uuid.UUID) Option {
	return func(b *Builder) { b.id = id }
}

// New creates a Builder with the hard-wired zero gate (ID 0) already
// reserved as the first input: its raw inputs are (0, 0) and the
// simulator never writes it, so it reads 0 forever.
func New(opts ...Option) *Builder {
	b := &Builder{
		id:            uuid.New(),
		log:           logr.Discard(),
		vecIndex:      make(map[string]uint32),
		pendingUninit: mapset.NewThreadUnsafeSet[uint32](),
	}

	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithValues("build", b.id.String())

	zeroID := uint32(0)
	b.values = append(b.values, value{kind: gateKind, ref: 0})
	b.gates = append(b.gates, rawGate{a: 0, b: 0, meta: &gate.Meta{InputID: &zeroID}})

	return b
}

// resolve chases a V's indirection chain down to a raw gate index.
// Chasing an Uninit V is the "uninitialized wire" fatal contract
// violation: every V reachable from the final netlist must have been
// Set by the time it's resolved.
func (b *Builder) resolve(vid uint32) uint32 {
	seen := 0
	for {
		v := b.values[vid]
		switch v.kind {
		case uninitKind:
			panic(gate.NewError("resolve", fmt.Sprintf("V(%d) was never driven (uninitialized wire)", vid)))
		case refKind:
			vid = v.ref
			seen++
			if seen > len(b.values) {
				panic(gate.NewError("resolve", "Ref chain cycle detected"))
			}
		case gateKind:
			return v.ref
		}
	}
}

func (b *Builder) v() V {
	vid := uint32(len(b.values))
	b.values = append(b.values, value{kind: uninitKind})
	b.pendingUninit.Add(vid)
	return V{id: vid}
}

func (b *Builder) vv(n int) VVec {
	vs := make([]V, n)
	for i := range vs {
		vs[i] = b.v()
	}
	return b.vvFrom(vs)
}

func vecKey(vs []V) string {
	var sb strings.Builder
	for i, v := range vs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(v.id), 10))
	}
	return sb.String()
}

func (b *Builder) vvFrom(vs []V) VVec {
	key := vecKey(vs)
	if id, ok := b.vecIndex[key]; ok {
		return VVec{id: id}
	}

	id := uint32(len(b.vecs))
	cp := make([]V, len(vs))
	copy(cp, vs)
	b.vecs = append(b.vecs, cp)
	b.vecIndex[key] = id

	return VVec{id: id}
}

func (b *Builder) vvGet(vv VVec) []V {
	return b.vecs[vv.id]
}

func (b *Builder) makeGate(a, b2 uint32) (uint32, V) {
	vid := uint32(len(b.values))
	gid := uint32(len(b.gates))

	b.values = append(b.values, value{kind: gateKind, ref: gid})
	b.gates = append(b.gates, rawGate{a: a, b: b2})

	return gid, V{id: vid}
}

func (b *Builder) nand(a, c V) V {
	_, v := b.makeGate(a.id, c.id)
	return v
}

func (b *Builder) one() V {
	return b.nand(V{id: 0}, V{id: 0})
}

func (b *Builder) input(size int) (gate.Input, VVec) {
	if size < 1 {
		panic(gate.NewError("Builder.input", "input width must be >= 1"))
	}

	ids := make([]uint32, size)
	vs := make([]V, size)

	for i := range ids {
		gid, v := b.makeGate(0, 0)
		meta := gid
		b.gates[gid].meta = &gate.Meta{InputID: &meta}
		ids[i] = gid
		vs[i] = v
	}

	b.log.V(1).Info("declared input", "width", size, "firstGate", ids[0])

	return gate.Input{Gates: ids}, b.vvFrom(vs)
}

func (b *Builder) output(vv VVec) gate.Output {
	vs := b.vvGet(vv)
	ids := make([]uint32, len(vs))

	for i, v := range vs {
		gid := b.resolve(v.id)
		g := &b.gates[gid]

		if g.meta != nil && g.meta.OutputID != nil {
			ids[i] = *g.meta.OutputID
			continue
		}

		if g.meta == nil {
			g.meta = &gate.Meta{}
		}
		out := gid
		g.meta.OutputID = &out
		ids[i] = gid
	}

	b.log.V(1).Info("declared output", "width", len(ids))

	return gate.Output{Gates: ids}
}

func (b *Builder) set(l, r V) {
	cur := b.values[l.id]
	if cur.kind != uninitKind {
		panic(gate.NewError("Builder.set", fmt.Sprintf("V(%d) set twice", l.id)))
	}

	b.values[l.id] = value{kind: refKind, ref: r.id}
	b.pendingUninit.Remove(l.id)
}

func (b *Builder) name(v V, s string) {
	gid := b.resolve(v.id)
	b.gates[gid].meta = ensureMeta(b.gates[gid].meta)
	b.gates[gid].meta.Names = append(b.gates[gid].meta.Names, s)
}

func (b *Builder) pin(v V) {
	gid := b.resolve(v.id)
	b.gates[gid].meta = ensureMeta(b.gates[gid].meta)
	b.gates[gid].meta.Pinned = true
}

func ensureMeta(m *gate.Meta) *gate.Meta {
	if m == nil {
		return &gate.Meta{}
	}
	return m
}

// finalize resolves every raw gate's A/B wire references down to gate
// IDs, producing the flat, immutable gate list handed to the optimizer.
// Called once, at the end of Build.
func (b *Builder) finalize() []gate.Gate {
	if !b.pendingUninit.IsEmpty() {
		ids := b.pendingUninit.ToSlice()
		panic(gate.NewError("Builder.finalize", fmt.Sprintf("%d wire(s) never driven: %v", len(ids), ids)))
	}

	gates := make([]gate.Gate, len(b.gates))
	for i, rg := range b.gates {
		gates[i] = gate.Gate{
			ID:   uint32(i),
			A:    b.resolve(rg.a),
			B:    b.resolve(rg.b),
			Meta: rg.meta,
		}
	}

	b.log.V(1).Info("finalized netlist", "gates", len(gates))

	return gates
}
