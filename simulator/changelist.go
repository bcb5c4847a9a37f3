package simulator

import (
	"github.com/go-logr/logr"

	"github.com/xDarkicex/nand/gate"
	"github.com/xDarkicex/nand/optimizer"
)

// changeListGate is one gate's evaluation data in the event-driven
// model: its two input indices and the list of gate indices that must
// be re-examined when its own output changes (its fanout).
type changeListGate struct {
	a, b   int
	fanout []int
}

// ChangeList is the event-driven evaluation model: a single state
// vector plus a dirty list. Step only re-evaluates gates reachable from
// the previous tick's changes, propagating along each gate's
// precomputed fanout list instead of scanning every gate every tick.
type ChangeList struct {
	log logr.Logger

	state    []uint8
	dirty    []int
	newDirty []int

	ordered  []gate.Gate
	gates    []changeListGate
	inputMap map[uint32]int
	output   map[uint32]int
	names    []*namedTrace
}

// NewChangeList optimizes gates and constructs a ChangeList ready to
// simulate. This is the construct function to pass to builder.Build.
func NewChangeList(gates []gate.Gate, _ gate.Input, _ []gate.Output, opts ...Option) *ChangeList {
	cfg := applyOptions(opts)

	optimized := optimizer.Optimize(gates, optimizer.WithLogger(cfg.log))
	ordered, indexOf, _ := buildIndexMaps(optimized)
	inputMap, outputMap := buildPortMaps(ordered, indexOf)

	fanoutOf := make([][]int, len(ordered))
	for i, g := range ordered {
		if g.IsInput() {
			continue
		}
		fanoutOf[indexOf[g.A]] = append(fanoutOf[indexOf[g.A]], i)
		if g.B != g.A {
			fanoutOf[indexOf[g.B]] = append(fanoutOf[indexOf[g.B]], i)
		}
	}

	clGates := make([]changeListGate, len(ordered))
	initialDirty := make([]int, 0, len(ordered))
	for i, g := range ordered {
		clGates[i] = changeListGate{
			a:      indexOf[g.A],
			b:      indexOf[g.B],
			fanout: fanoutOf[i],
		}
		if !g.IsInput() {
			initialDirty = append(initialDirty, i)
		}
	}

	sim := &ChangeList{
		log:      cfg.log,
		state:    make([]uint8, len(ordered)),
		dirty:    initialDirty,
		ordered:  ordered,
		gates:    clGates,
		inputMap: inputMap,
		output:   outputMap,
		names:    buildNamedTraces(ordered, indexOf),
	}

	cfg.log.V(1).Info("change-list simulator ready", "gates", len(ordered))

	return sim
}

func (s *ChangeList) Set(in gate.Input, value uint64) {
	touched := setPort(s.state, s.inputMap, in.Gates, value)
	for _, idx := range touched {
		s.dirty = append(s.dirty, s.gates[idx].fanout...)
	}
}

func (s *ChangeList) GetBits(out gate.Output) uint64 {
	return bitsFromPort(s.state, s.output, out.Gates)
}

// Step re-evaluates every gate on the current dirty list; any gate
// whose output actually changes pushes its fanout onto the next tick's
// dirty list.
func (s *ChangeList) Step() {
	s.newDirty = s.newDirty[:0]

	for _, idx := range s.dirty {
		g := s.gates[idx]
		val := (s.state[g.a] & s.state[g.b]) ^ 1
		if val != s.state[idx] {
			s.state[idx] = val
			s.newDirty = append(s.newDirty, g.fanout...)
		}
	}

	s.dirty, s.newDirty = s.newDirty, s.dirty
}

func (s *ChangeList) StepBy(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

func (s *ChangeList) StepUntilSettled(maxSteps int) (int, bool) {
	for i := 1; i <= maxSteps; i++ {
		s.Step()
		if len(s.dirty) == 0 {
			s.log.V(1).Info("settled", "steps", i)
			return i, true
		}
	}
	s.log.V(1).Info("not settled", "maxSteps", maxSteps)
	return maxSteps, false
}

func (s *ChangeList) Snapshot() {
	for _, t := range s.names {
		t.push(s.state[t.index] != 0)
	}
}

func (s *ChangeList) Show() {
	showTraces(s.names, len(s.ordered))
}

func (s *ChangeList) Clear() {
	for _, t := range s.names {
		t.clear()
	}
}

func (s *ChangeList) NumGates() int { return len(s.ordered) }

func (s *ChangeList) GetNamed(name string) (bool, error) {
	t, err := findTrace(s.names, name)
	if err != nil {
		return false, err
	}
	return s.state[t.index] != 0, nil
}
