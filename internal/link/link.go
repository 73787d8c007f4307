// Package link assembles a FunctionGraph into a single callable.
//
// FGraphToFunc does the generic part of turning a graph into code: it
// orders the nodes, assigns storage to every variable, converts literals,
// asks a conversion function for one kernel per node and chains the
// kernels into one Func. What each node computes is decided entirely by
// the conversion function passed in.
package link

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/jit"
	"github.com/born-ml/jitlink/internal/tensor"
)

// Assembly errors.
var (
	ErrNilGraph      = errors.New("link: nil function graph")
	ErrOrder         = errors.New("link: invalid evaluation order")
	ErrStorageLength = errors.New("link: storage length does not match graph")
	ErrNodeOutputs   = errors.New("link: node returned wrong number of outputs")
)

// DefaultName labels assembled functions that were not given a name.
const DefaultName = "funcified_fgraph"

// storageMu guards Cell.Value across every assembled program.
var storageMu sync.RWMutex

// Cell is one storage slot. Assembled programs store into Value after each
// call; use Load when programs sharing the cell may be running.
type Cell struct {
	Value any
}

// Load returns the cell's value, synchronized with running programs.
func (c *Cell) Load() any {
	storageMu.RLock()
	defer storageMu.RUnlock()
	return c.Value
}

// StorageMap maps variables to their storage cells.
//
// Programs assembled over the same map may be called concurrently. The map
// itself is read and extended by FGraphToFunc, so assemblies sharing a map
// must not run at the same time.
type StorageMap map[*graph.Variable]*Cell

// ConvertFunc produces the kernel for one node.
type ConvertFunc func(ctx context.Context, op graph.Op, node *graph.Apply, storage StorageMap) (jit.Func, error)

// TypifyFunc converts a literal into the runtime representation kernels expect.
type TypifyFunc func(data any, dtype tensor.DataType) (any, error)

// Options tune assembly. All fields are optional.
type Options struct {
	Order         []*graph.Apply // evaluation order; defaults to fg.Toposort()
	InputStorage  []*Cell        // one cell per graph input
	OutputStorage []*Cell        // one cell per graph output
	StorageMap    StorageMap     // shared storage, pre-filled cells act as literals
	Name          string         // label for logs and errors
	Logger        *zap.Logger
}

type step struct {
	node *graph.Apply
	fn   jit.Func
	in   []int
	out  []int
}

// FGraphToFunc assembles fg into one Func. The returned Func takes one
// argument per graph input and returns one value per graph output.
func FGraphToFunc(ctx context.Context, fg *graph.FunctionGraph, convert ConvertFunc, typify TypifyFunc, opts Options) (jit.Func, error) {
	if fg == nil {
		return nil, ErrNilGraph
	}
	name := opts.Name
	if name == "" {
		name = DefaultName
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	storage := opts.StorageMap
	if storage == nil {
		storage = make(StorageMap)
	}
	prefilled := func(v *graph.Variable) bool {
		cell, ok := storage[v]
		return ok && cell != nil && cell.Load() != nil
	}
	if err := fg.ValidateWith(prefilled); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	order := opts.Order
	if order == nil {
		order = fg.Toposort()
	} else if err := checkOrder(fg, order); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if opts.InputStorage != nil {
		if len(opts.InputStorage) != len(fg.Inputs) {
			return nil, fmt.Errorf("%s: inputs: %w: want %d, got %d", name, ErrStorageLength, len(fg.Inputs), len(opts.InputStorage))
		}
		for i, in := range fg.Inputs {
			storage[in] = opts.InputStorage[i]
		}
	}
	if opts.OutputStorage != nil && len(opts.OutputStorage) != len(fg.Outputs) {
		return nil, fmt.Errorf("%s: outputs: %w: want %d, got %d", name, ErrStorageLength, len(fg.Outputs), len(opts.OutputStorage))
	}

	a := &assembler{
		slots:    make(map[*graph.Variable]int),
		computed: make(map[int]bool),
		storage:  storage,
		typify:   typify,
	}

	inputIdx := make([]int, len(fg.Inputs))
	for i, in := range fg.Inputs {
		inputIdx[i] = a.slot(in)
		a.computed[inputIdx[i]] = true
	}

	steps := make([]step, 0, len(order))
	for _, node := range order {
		s := step{node: node, in: make([]int, len(node.Inputs)), out: make([]int, len(node.Outputs))}
		for i, v := range node.Inputs {
			idx, err := a.input(v)
			if err != nil {
				return nil, fmt.Errorf("%s: node %s: %w", name, node, err)
			}
			s.in[i] = idx
		}
		for i, v := range node.Outputs {
			s.out[i] = a.slot(v)
			a.computed[s.out[i]] = true
		}

		fn, err := convert(ctx, node.Op, node, storage)
		if err != nil {
			return nil, fmt.Errorf("%s: node %s: %w", name, node, err)
		}
		s.fn = fn
		steps = append(steps, s)
	}

	outputIdx := make([]int, len(fg.Outputs))
	for i, out := range fg.Outputs {
		idx, err := a.input(out)
		if err != nil {
			return nil, fmt.Errorf("%s: output %s: %w", name, out, err)
		}
		outputIdx[i] = idx
	}

	log.Debug("assembled function graph",
		zap.String("name", name),
		zap.Int("nodes", len(steps)),
		zap.Int("inputs", len(fg.Inputs)),
		zap.Int("outputs", len(fg.Outputs)),
	)

	prog := &program{
		name:      name,
		template:  a.values,
		steps:     steps,
		inputIdx:  inputIdx,
		outputIdx: outputIdx,
		cells:     a.cells(),
		outCells:  opts.OutputStorage,
	}
	return prog.run, nil
}

// checkOrder verifies that order lists every graph node exactly once with
// each node after the nodes producing its inputs.
func checkOrder(fg *graph.FunctionGraph, order []*graph.Apply) error {
	want := fg.Toposort()
	inGraph := make(map[*graph.Apply]bool, len(want))
	for _, node := range want {
		inGraph[node] = true
	}

	done := make(map[*graph.Apply]bool, len(order))
	for _, node := range order {
		if !inGraph[node] {
			return fmt.Errorf("%w: node %s is not part of the graph", ErrOrder, node)
		}
		if done[node] {
			return fmt.Errorf("%w: node %s listed twice", ErrOrder, node)
		}
		for _, in := range node.Inputs {
			if in.Owner != nil && inGraph[in.Owner] && !done[in.Owner] {
				return fmt.Errorf("%w: node %s runs before %s", ErrOrder, node, in.Owner)
			}
		}
		done[node] = true
	}
	if len(done) != len(want) {
		return fmt.Errorf("%w: %d of %d nodes listed", ErrOrder, len(done), len(want))
	}
	return nil
}

// assembler assigns a slot index to every variable and collects literals.
type assembler struct {
	slots    map[*graph.Variable]int
	values   []any
	computed map[int]bool
	storage  StorageMap
	typify   TypifyFunc
}

func (a *assembler) slot(v *graph.Variable) int {
	if idx, ok := a.slots[v]; ok {
		return idx
	}
	idx := len(a.values)
	a.slots[v] = idx
	a.values = append(a.values, nil)
	return idx
}

// input returns the slot for a variable being read, binding literals for
// constants and pre-filled storage cells.
func (a *assembler) input(v *graph.Variable) (int, error) {
	idx := a.slot(v)
	if a.computed[idx] {
		return idx, nil
	}

	var data any
	var stored any
	cell, ok := a.storage[v]
	if ok && cell != nil {
		stored = cell.Load()
	}
	switch {
	case v.IsConstant():
		data = v.Data
	case stored != nil:
		data = stored
	default:
		return 0, fmt.Errorf("variable %s has no value: %w", v, graph.ErrMissingInput)
	}

	val, err := a.typify(data, v.Type.DType)
	if err != nil {
		return 0, fmt.Errorf("literal %s: %w", v, err)
	}
	a.values[idx] = val
	a.computed[idx] = true
	return idx, nil
}

// cells gives every variable of the graph a storage cell and pairs slot
// indices with the cells that mirror them.
func (a *assembler) cells() map[int]*Cell {
	out := make(map[int]*Cell, len(a.slots))
	for v, idx := range a.slots {
		cell := a.storage[v]
		if cell == nil {
			cell = &Cell{Value: a.values[idx]}
			a.storage[v] = cell
		}
		out[idx] = cell
	}
	return out
}

// program is an assembled graph. Each call works on its own copy of the
// slot values; storage cells are refreshed after every successful call.
type program struct {
	name      string
	template  []any
	steps     []step
	inputIdx  []int
	outputIdx []int
	cells     map[int]*Cell
	outCells  []*Cell
}

func (p *program) run(args ...any) ([]any, error) {
	if len(args) != len(p.inputIdx) {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", p.name, jit.ErrArity, len(p.inputIdx), len(args))
	}

	values := make([]any, len(p.template))
	copy(values, p.template)
	for i, idx := range p.inputIdx {
		values[idx] = args[i]
	}

	for _, s := range p.steps {
		in := make([]any, len(s.in))
		for i, idx := range s.in {
			in[i] = values[idx]
		}
		outs, err := s.fn(in...)
		if err != nil {
			return nil, fmt.Errorf("%s: node %s: %w", p.name, s.node, err)
		}
		if len(outs) != len(s.out) {
			return nil, fmt.Errorf("%s: node %s: %w: want %d, got %d", p.name, s.node, ErrNodeOutputs, len(s.out), len(outs))
		}
		for i, idx := range s.out {
			values[idx] = outs[i]
		}
	}

	results := make([]any, len(p.outputIdx))
	for i, idx := range p.outputIdx {
		results[i] = values[idx]
	}

	storageMu.Lock()
	for idx, cell := range p.cells {
		cell.Value = values[idx]
	}
	for i, cell := range p.outCells {
		if cell != nil {
			cell.Value = results[i]
		}
	}
	storageMu.Unlock()

	return results, nil
}
