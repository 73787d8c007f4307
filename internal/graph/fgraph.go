package graph

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Graph validation errors.
var (
	ErrCycle          = errors.New("graph contains a cycle")
	ErrMissingInput   = errors.New("variable is not computed by the graph and is not an input")
	ErrOwnedInput     = errors.New("graph input is produced by a node")
	ErrDuplicateInput = errors.New("duplicate graph input")
	ErrNilVariable    = errors.New("nil variable")
)

// FunctionGraph is a subgraph with designated inputs and outputs.
// Its nodes are every Apply reachable backwards from the outputs.
type FunctionGraph struct {
	Name    string
	Inputs  []*Variable
	Outputs []*Variable
}

// NewFunctionGraph creates a function graph over the given inputs and outputs.
func NewFunctionGraph(inputs, outputs []*Variable) *FunctionGraph {
	return &FunctionGraph{Inputs: inputs, Outputs: outputs}
}

// OpName lets a FunctionGraph label nodes and diagnostics like an Op.
func (fg *FunctionGraph) OpName() string {
	if fg.Name != "" {
		return fg.Name
	}
	return "FunctionGraph"
}

// Toposort returns the nodes in execution order.
// Dependencies come before dependents; ties keep output order.
func (fg *FunctionGraph) Toposort() []*Apply {
	visited := make(map[*Apply]bool)
	result := make([]*Apply, 0)

	var visit func(node *Apply)
	visit = func(node *Apply) {
		if visited[node] {
			return
		}
		visited[node] = true

		// Visit dependencies first
		for _, in := range node.Inputs {
			if in != nil && in.Owner != nil && !fg.isInput(in) {
				visit(in.Owner)
			}
		}

		result = append(result, node)
	}

	for _, out := range fg.Outputs {
		if out != nil && out.Owner != nil && !fg.isInput(out) {
			visit(out.Owner)
		}
	}

	return result
}

// Nodes is an alias of Toposort kept for callers that do not care about order.
func (fg *FunctionGraph) Nodes() []*Apply {
	return fg.Toposort()
}

// Variables returns every variable the graph touches: inputs, node inputs
// and node outputs, each once.
func (fg *FunctionGraph) Variables() []*Variable {
	seen := make(map[*Variable]bool)
	var vars []*Variable
	add := func(v *Variable) {
		if v != nil && !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	for _, in := range fg.Inputs {
		add(in)
	}
	for _, node := range fg.Toposort() {
		for _, in := range node.Inputs {
			add(in)
		}
		for _, out := range node.Outputs {
			add(out)
		}
	}
	for _, out := range fg.Outputs {
		add(out)
	}
	return vars
}

// Validate checks that the graph is a DAG whose free variables are all
// declared inputs or constants. Every problem found is reported.
func (fg *FunctionGraph) Validate() error {
	return fg.ValidateWith(nil)
}

// ValidateWith is Validate with an extra predicate for free variables that
// are bound some other way, e.g. through pre-filled storage.
func (fg *FunctionGraph) ValidateWith(bound func(*Variable) bool) error {
	var err error

	seen := make(map[*Variable]bool)
	for i, in := range fg.Inputs {
		switch {
		case in == nil:
			err = multierr.Append(err, fmt.Errorf("input %d: %w", i, ErrNilVariable))
		case seen[in]:
			err = multierr.Append(err, fmt.Errorf("input %s: %w", in, ErrDuplicateInput))
		case in.Owner != nil:
			err = multierr.Append(err, fmt.Errorf("input %s: %w", in, ErrOwnedInput))
		}
		seen[in] = true
	}

	const (
		white = iota
		grey
		black
	)
	state := make(map[*Apply]int)
	reported := make(map[*Variable]bool)

	var check func(v *Variable)
	var walk func(node *Apply)
	check = func(v *Variable) {
		if v == nil {
			err = multierr.Append(err, ErrNilVariable)
			return
		}
		if fg.isInput(v) || v.IsConstant() {
			return
		}
		if v.Owner == nil && bound != nil && bound(v) {
			return
		}
		if v.Owner == nil {
			if !reported[v] {
				reported[v] = true
				err = multierr.Append(err, fmt.Errorf("variable %s: %w", v, ErrMissingInput))
			}
			return
		}
		walk(v.Owner)
	}
	walk = func(node *Apply) {
		switch state[node] {
		case grey:
			err = multierr.Append(err, fmt.Errorf("node %s: %w", node, ErrCycle))
			return
		case black:
			return
		}
		state[node] = grey
		for _, in := range node.Inputs {
			check(in)
		}
		state[node] = black
	}

	for _, out := range fg.Outputs {
		check(out)
	}

	return err
}

func (fg *FunctionGraph) isInput(v *Variable) bool {
	for _, in := range fg.Inputs {
		if in == v {
			return true
		}
	}
	return false
}
