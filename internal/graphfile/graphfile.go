// Package graphfile reads function graphs from YAML documents.
//
// A document names its inputs, constants, nodes and outputs:
//
//	name: scaled_sum
//	inputs:
//	  - {name: x, dtype: float64}
//	  - {name: y, dtype: float64}
//	constants:
//	  - {name: k, dtype: float64, value: 2.5}
//	nodes:
//	  - {op: scalar, scalar: add, inputs: [x, y], outputs: [s]}
//	  - {op: elemwise, scalar: mul, inputs: [s, k], outputs: [out]}
//	outputs: [out]
//
// Composite nodes carry a nested document under "graph" instead of a
// scalar name. Elemwise nodes accept either form.
package graphfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/graph/elemwise"
	"github.com/born-ml/jitlink/internal/graph/scalar"
	"github.com/born-ml/jitlink/internal/tensor"
)

// Errors reported while building a graph.
var (
	ErrUnknownName   = errors.New("unknown variable")
	ErrDuplicateName = errors.New("duplicate variable")
	ErrUnknownOp     = errors.New("unknown op kind")
	ErrBadValue      = errors.New("invalid constant value")
	ErrOutputs       = errors.New("node must have exactly one output")
)

// Document is the YAML form of a function graph.
type Document struct {
	Name      string     `yaml:"name,omitempty"`
	Inputs    []Port     `yaml:"inputs"`
	Constants []Constant `yaml:"constants,omitempty"`
	Nodes     []Node     `yaml:"nodes"`
	Outputs   []string   `yaml:"outputs"`
}

// Port declares a graph input.
type Port struct {
	Name  string `yaml:"name"`
	DType string `yaml:"dtype,omitempty"` // defaults to float64
}

// Constant declares a literal. Value is a scalar or a flat list.
type Constant struct {
	Name  string `yaml:"name"`
	DType string `yaml:"dtype,omitempty"`
	Value any    `yaml:"value"`
}

// Node applies one op.
type Node struct {
	Op      string    `yaml:"op"`               // scalar, elemwise or composite
	Scalar  string    `yaml:"scalar,omitempty"` // scalar op name
	Graph   *Document `yaml:"graph,omitempty"`  // inner graph of a composite
	Inputs  []string  `yaml:"inputs"`
	Outputs []string  `yaml:"outputs"`
	DType   string    `yaml:"dtype,omitempty"` // output dtype; defaults to the upcast of inputs
}

// Load reads and builds the graph stored at path.
func Load(path string) (*graph.FunctionGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()

	fg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fg, nil
}

// Parse decodes a document from r and builds its graph.
func Parse(r io.Reader) (*graph.FunctionGraph, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return doc.Build()
}

// Build turns the document into a validated FunctionGraph. All problems
// found are reported together.
func (doc *Document) Build() (*graph.FunctionGraph, error) {
	b := builder{scope: make(map[string]*graph.Variable)}

	inputs := make([]*graph.Variable, 0, len(doc.Inputs))
	for i, p := range doc.Inputs {
		dt, err := parseDType(p.DType)
		if err != nil {
			b.fail(fmt.Errorf("input %d (%s): %w", i, p.Name, err))
			continue
		}
		v := graph.NewVariable(p.Name, graph.Type{DType: dt})
		if b.define(fmt.Sprintf("input %d", i), v) {
			inputs = append(inputs, v)
		}
	}

	for i, c := range doc.Constants {
		v, err := buildConstant(c)
		if err != nil {
			b.fail(fmt.Errorf("constant %d (%s): %w", i, c.Name, err))
			continue
		}
		b.define(fmt.Sprintf("constant %d", i), v)
	}

	for i, n := range doc.Nodes {
		b.node(i, n)
	}

	outputs := make([]*graph.Variable, 0, len(doc.Outputs))
	for _, name := range doc.Outputs {
		if v, ok := b.lookup("outputs", name); ok {
			outputs = append(outputs, v)
		}
	}

	if b.err != nil {
		return nil, b.err
	}

	fg := graph.NewFunctionGraph(inputs, outputs)
	fg.Name = doc.Name
	if err := fg.Validate(); err != nil {
		return nil, err
	}
	return fg, nil
}

type builder struct {
	scope map[string]*graph.Variable
	err   error
}

func (b *builder) fail(err error) {
	b.err = multierr.Append(b.err, err)
}

func (b *builder) define(where string, v *graph.Variable) bool {
	if v.Name == "" {
		b.fail(fmt.Errorf("%s: empty name", where))
		return false
	}
	if _, ok := b.scope[v.Name]; ok {
		b.fail(fmt.Errorf("%s: %q: %w", where, v.Name, ErrDuplicateName))
		return false
	}
	b.scope[v.Name] = v
	return true
}

func (b *builder) lookup(where, name string) (*graph.Variable, bool) {
	v, ok := b.scope[name]
	if !ok {
		b.fail(fmt.Errorf("%s: %q: %w", where, name, ErrUnknownName))
	}
	return v, ok
}

func (b *builder) node(i int, n Node) {
	where := fmt.Sprintf("node %d (%s)", i, n.Op)

	op, err := buildOp(n)
	if err != nil {
		b.fail(fmt.Errorf("%s: %w", where, err))
	}
	if len(n.Outputs) != 1 {
		b.fail(fmt.Errorf("%s: %w, got %d", where, ErrOutputs, len(n.Outputs)))
	}

	inputs := make([]*graph.Variable, 0, len(n.Inputs))
	ok := true
	for _, name := range n.Inputs {
		v, found := b.lookup(where, name)
		ok = ok && found
		inputs = append(inputs, v)
	}
	if err != nil || !ok || len(n.Outputs) != 1 {
		return
	}

	var out *graph.Variable
	if n.DType != "" {
		dt, err := tensor.ParseDataType(n.DType)
		if err != nil {
			b.fail(fmt.Errorf("%s: %w", where, err))
			return
		}
		out = graph.NewApply(op, inputs, graph.Type{DType: dt}).Out(0)
	} else {
		out = graph.Call(op, inputs...)
	}
	out.Name = n.Outputs[0]
	b.define(where, out)
}

func buildOp(n Node) (graph.Op, error) {
	switch n.Op {
	case "scalar":
		return scalarOp(n)
	case "composite":
		return compositeOp(n.Graph)
	case "elemwise":
		inner, err := scalarOp(n)
		if err != nil {
			return nil, err
		}
		return elemwise.New(inner), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, n.Op)
	}
}

// scalarOp builds the scalar op named by n.Scalar, or a composite when n
// carries a nested graph.
func scalarOp(n Node) (graph.Op, error) {
	if n.Graph != nil {
		if n.Scalar != "" {
			return nil, errors.New("scalar and graph are mutually exclusive")
		}
		return compositeOp(n.Graph)
	}
	if n.Scalar == "" {
		return nil, errors.New("missing scalar op name")
	}
	return scalar.ByName(n.Scalar)
}

func compositeOp(doc *Document) (graph.Op, error) {
	if doc == nil {
		return nil, errors.New("composite needs a graph")
	}
	inner, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("composite graph: %w", err)
	}
	return scalar.NewComposite(inner.Inputs, inner.Outputs)
}

func parseDType(name string) (tensor.DataType, error) {
	if name == "" {
		return tensor.Float64, nil
	}
	return tensor.ParseDataType(name)
}

func buildConstant(c Constant) (*graph.Variable, error) {
	dt, err := parseDType(c.DType)
	if err != nil {
		return nil, err
	}

	var data any
	switch v := c.Value.(type) {
	case int, float64, bool:
		data = v
	case []any:
		data, err = listValue(v, dt)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrBadValue, c.Value)
	}
	return graph.NewConstant(c.Name, graph.Type{DType: dt}, data), nil
}

// listValue converts a YAML list to []int64 for integer dtypes and
// []float64 otherwise.
func listValue(items []any, dt tensor.DataType) (any, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty list", ErrBadValue)
	}
	if !dt.IsFloat() && dt != tensor.Bool {
		ints := make([]int64, len(items))
		for i, item := range items {
			n, ok := item.(int)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T, want int", ErrBadValue, i, item)
			}
			ints[i] = int64(n)
		}
		return ints, nil
	}

	floats := make([]float64, len(items))
	for i, item := range items {
		switch n := item.(type) {
		case int:
			floats[i] = float64(n)
		case float64:
			floats[i] = n
		case bool:
			if n {
				floats[i] = 1
			}
		default:
			return nil, fmt.Errorf("%w: element %d is %T, want number", ErrBadValue, i, item)
		}
	}
	return floats, nil
}
