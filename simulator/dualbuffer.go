package simulator

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"github.com/xDarkicex/nand/gate"
	"github.com/xDarkicex/nand/optimizer"
)

// stepChunkSize bounds how many gates each goroutine evaluates per
// Step call, mirroring the original's par_chunks_mut(256) tuning.
const stepChunkSize = 256

// DualBuffer is the double-buffered evaluation model: two full state
// arrays are kept, one being read while the other is written, and the
// roles swap every Step. Because every gate's read side is always the
// previous tick's complete state, a Step can safely evaluate all gates
// concurrently.
type DualBuffer struct {
	log logr.Logger

	curOut int
	state  [2][]uint8

	ordered  []gate.Gate
	wires    [][2]int // per-gate (A index, B index), parallel to ordered
	nInputs  int
	inputMap map[uint32]int
	output   map[uint32]int
	names    []*namedTrace
}

// NewDualBuffer optimizes gates and constructs a DualBuffer ready to
// simulate. This is the construct function to pass to builder.Build.
func NewDualBuffer(gates []gate.Gate, _ gate.Input, _ []gate.Output, opts ...Option) *DualBuffer {
	cfg := applyOptions(opts)

	optimized := optimizer.Optimize(gates, optimizer.WithLogger(cfg.log))
	ordered, indexOf, nInputs := buildIndexMaps(optimized)
	inputMap, outputMap := buildPortMaps(ordered, indexOf)

	wires := make([][2]int, len(ordered))
	for i, g := range ordered {
		wires[i] = [2]int{indexOf[g.A], indexOf[g.B]}
	}

	sim := &DualBuffer{
		log:      cfg.log,
		state:    [2][]uint8{make([]uint8, len(ordered)), make([]uint8, len(ordered))},
		ordered:  ordered,
		wires:    wires,
		nInputs:  nInputs,
		inputMap: inputMap,
		output:   outputMap,
		names:    buildNamedTraces(ordered, indexOf),
	}

	cfg.log.V(1).Info("dual-buffer simulator ready", "gates", len(ordered), "inputs", nInputs)

	return sim
}

func (s *DualBuffer) Set(in gate.Input, value uint64) {
	touched := setPort(s.state[s.curOut], s.inputMap, in.Gates, value)
	other := s.state[1-s.curOut]
	cur := s.state[s.curOut]
	for _, idx := range touched {
		other[idx] = cur[idx]
	}
}

func (s *DualBuffer) GetBits(out gate.Output) uint64 {
	return bitsFromPort(s.state[s.curOut], s.output, out.Gates)
}

// Step evaluates every non-input gate in parallel, chunked by
// stepChunkSize, reading entirely from the previous tick's buffer and
// writing entirely into the other one.
func (s *DualBuffer) Step() {
	s.curOut = 1 - s.curOut
	in := s.state[1-s.curOut]
	out := s.state[s.curOut]

	tail := out[s.nInputs:]
	wires := s.wires[s.nInputs:]

	var g errgroup.Group
	for offset := 0; offset < len(tail); offset += stepChunkSize {
		offset := offset
		end := offset + stepChunkSize
		if end > len(tail) {
			end = len(tail)
		}
		g.Go(func() error {
			for i := offset; i < end; i++ {
				w := wires[i]
				tail[i] = (in[w[0]] & in[w[1]]) ^ 1
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *DualBuffer) StepBy(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

func (s *DualBuffer) StepUntilSettled(maxSteps int) (int, bool) {
	for i := 1; i <= maxSteps; i++ {
		s.Step()
		if statesEqual(s.state[0], s.state[1]) {
			s.log.V(1).Info("settled", "steps", i)
			return i, true
		}
	}
	s.log.V(1).Info("not settled", "maxSteps", maxSteps)
	return maxSteps, false
}

func statesEqual(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *DualBuffer) Snapshot() {
	state := s.state[s.curOut]
	for _, t := range s.names {
		t.push(state[t.index] != 0)
	}
}

func (s *DualBuffer) Show() {
	showTraces(s.names, len(s.ordered))
}

func (s *DualBuffer) Clear() {
	for _, t := range s.names {
		t.clear()
	}
}

func (s *DualBuffer) NumGates() int { return len(s.ordered) }

func (s *DualBuffer) GetNamed(name string) (bool, error) {
	t, err := findTrace(s.names, name)
	if err != nil {
		return false, err
	}
	return s.state[s.curOut][t.index] != 0, nil
}

// showTraces renders the named-gate waveform table with tablewriter,
// highlighting the trailing gate-count summary the way the original's
// show() prints "gates: N" as its last line.
func showTraces(names []*namedTrace, numGates int) {
	if len(names) == 0 {
		fmt.Println("(no named gates)")
	} else {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"name", "trace"})
		table.SetAutoWrapText(false)
		for _, t := range names {
			table.Append([]string{t.name, t.String()})
		}
		table.Render()
	}

	summary := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("gates: %s\n", summary(numGates))
}
