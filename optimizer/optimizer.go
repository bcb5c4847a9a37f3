// Package optimizer implements the peephole netlist optimizer: five
// ordered rewrite rules, run to a fixed point, that shrink a finalized
// gate list without changing its observable behavior. Pinned gates
// (named, IO, or explicitly pinned) keep their identity; everything
// else is fair game for removal or coalescing.
package optimizer

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"

	"github.com/xDarkicex/nand/gate"
)

// Option configures an optimization pass.
type Option func(*config)

type config struct {
	log logr.Logger
}

// WithLogger attaches a structured logger for pass diagnostics.
func WithLogger(log logr.Logger) Option {
	return func(c *config) { c.log = log }
}

// Optimize runs the five rewrite rules to a fixed point and returns the
// resulting gate list. Gate IDs may become sparse: removed gates are
// deleted outright rather than recompacted, so callers must index by an
// ID->position map rather than assuming ID equals array position.
func Optimize(gates []gate.Gate, opts ...Option) []gate.Gate {
	cfg := config{log: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]gate.Gate, len(gates))
	copy(out, gates)

	cfg.log.V(1).Info("pruning", "gates", len(out))

	for {
		lenBefore := len(out)

		collapseConstantInputs(out)
		canonicalizeOne(out)
		out = removeDeadGates(out)
		out = dedupStructural(out)
		out = collapseDoubleNegation(out)

		if len(out) == lenBefore {
			break
		}
	}

	cfg.log.V(1).Info("pruned", "gates", len(out))

	return out
}

// collapseConstantInputs rewrites any unpinned NAND(a, 0) or NAND(0, b)
// to NAND(0, 0), exposing further simplification opportunities (rule 1
// of 5).
func collapseConstantInputs(gates []gate.Gate) {
	for i := range gates {
		g := &gates[i]
		if g.IsPinned() {
			continue
		}
		if g.A == 0 || g.B == 0 {
			g.A, g.B = 0, 0
		}
	}
}

// canonicalizeOne finds the first unpinned (0, 0) gate -- the hardwired
// constant-1 idiom NAND(0, 0) -- and rewrites every other unpinned
// gate's reference to it as a self-reference, turning NAND(a, 1) into
// NAND(a, a) (rule 2 of 5). Repeated passes of the outer loop eventually
// coalesce every constant-1 gate down to the one canonical survivor via
// dedupStructural.
func canonicalizeOne(gates []gate.Gate) {
	var one uint32
	found := false

	for _, g := range gates {
		if !g.IsPinned() && g.A == 0 && g.B == 0 {
			one = g.ID
			found = true
			break
		}
	}
	if !found {
		return
	}

	for i := range gates {
		g := &gates[i]
		if g.IsPinned() {
			continue
		}
		if g.B == one {
			g.B = g.A
		}
		if g.A == one {
			g.A = g.B
		}
	}
}

func referencedIDs(gates []gate.Gate) mapset.Set[uint32] {
	refs := mapset.NewThreadUnsafeSet[uint32]()
	for _, g := range gates {
		refs.Add(g.A)
		refs.Add(g.B)
	}
	return refs
}

// removeDeadGates drops every unpinned gate whose output no other
// surviving gate reads (rule 3 of 5). Liveness is tracked with a set
// rather than a per-candidate linear scan.
func removeDeadGates(gates []gate.Gate) []gate.Gate {
	refs := referencedIDs(gates)

	for i := len(gates) - 1; i >= 0; i-- {
		cur := gates[i]
		if cur.IsPinned() {
			continue
		}
		if !refs.Contains(cur.ID) {
			gates = removeGate(gates, i, 0)
			refs = referencedIDs(gates)
		}
	}

	return gates
}

func pairKey(a, b uint32) (uint32, uint32) {
	if a <= b {
		return a, b
	}
	return b, a
}

// dedupStructural coalesces two gates with the same unordered (A, B)
// input pair into one (rule 4 of 5). The surviving earlier gate only
// needs to be non-IO (it may still be named); the later duplicate being
// removed must be fully non-pinned, matching the rule's asymmetric
// "non-pinned, non-IO gate g ... earlier non-IO gate g'" wording. A
// signature->ID map replaces the original's nested linear search.
func dedupStructural(gates []gate.Gate) []gate.Gate {
	seen := make(map[[2]uint32]uint32)

	for i := 0; i < len(gates); i++ {
		cur := gates[i]
		if cur.IsIO() {
			continue
		}

		lo, hi := pairKey(cur.A, cur.B)
		key := [2]uint32{lo, hi}

		if nid, ok := seen[key]; ok {
			if nid != cur.ID && !cur.IsPinned() {
				gates = removeGate(gates, i, nid)
				i--
			}
			continue
		}

		seen[key] = cur.ID
	}

	return gates
}

// collapseDoubleNegation removes NAND(a, a) chains that feed directly
// into another NAND(a, a): !!a simplifies to a (rule 5 of 5).
func collapseDoubleNegation(gates []gate.Gate) []gate.Gate {
	byID := make(map[uint32]gate.Gate, len(gates))
	for _, g := range gates {
		byID[g.ID] = g
	}

	for i := 0; i < len(gates); i++ {
		cur := gates[i]
		if cur.A != cur.B || cur.IsPinned() {
			continue
		}

		inner, ok := byID[cur.A]
		if !ok || inner.IsPinned() || inner.A != inner.B {
			continue
		}

		gates = removeGate(gates, i, inner.A)
		byID = make(map[uint32]gate.Gate, len(gates))
		for _, g := range gates {
			byID[g.ID] = g
		}
		i--
	}

	return gates
}

// removeGate rewrites every reference to the gate at index (its own ID
// field, and any other gate's A/B referencing it) to nid, then deletes
// it from the slice.
func removeGate(gates []gate.Gate, index int, nid uint32) []gate.Gate {
	oid := gates[index].ID

	for i := range gates {
		if gates[i].ID == oid {
			gates[i].ID = nid
		}
		if gates[i].A == oid {
			gates[i].A = nid
		}
		if gates[i].B == oid {
			gates[i].B = nid
		}
	}

	return append(gates[:index], gates[index+1:]...)
}
