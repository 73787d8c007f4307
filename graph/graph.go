// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the symbolic graph jitlink compiles.
//
// A graph is built from Variables and Apply nodes. Each node applies an Op
// to input variables and owns its output variables. A FunctionGraph fixes
// which variables are inputs and which are outputs.
//
// Scalar ops (Add, Mul, ...) operate on single numbers. Elemwise lifts a
// scalar op over arrays and Composite fuses a subgraph of scalar ops into
// one op.
//
// Example:
//
//	x := graph.NewVariable("x", graph.Float64Type)
//	y := graph.NewVariable("y", graph.Float64Type)
//	sum := graph.Call(graph.Elemwise(graph.NewAdd()), x, y)
//	fg := graph.NewFunctionGraph([]*graph.Variable{x, y}, []*graph.Variable{sum})
package graph

import (
	"io"

	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/graph/elemwise"
	"github.com/born-ml/jitlink/internal/graph/scalar"
	"github.com/born-ml/jitlink/internal/graphfile"
)

// Core graph types.
type (
	Op            = graph.Op
	Type          = graph.Type
	Variable      = graph.Variable
	Apply         = graph.Apply
	FunctionGraph = graph.FunctionGraph
)

// Scalar op types.
type (
	ScalarOp   = scalar.ScalarOp
	Scalar     = scalar.Op
	NFuncSpec  = scalar.NFuncSpec
	Composite  = scalar.Composite
	ElemwiseOp = elemwise.Elemwise
)

// Common variable types.
var (
	Float64Type = graph.Float64Type
	Int64Type   = graph.Int64Type
)

// Validation errors.
var (
	ErrCycle          = graph.ErrCycle
	ErrMissingInput   = graph.ErrMissingInput
	ErrOwnedInput     = graph.ErrOwnedInput
	ErrDuplicateInput = graph.ErrDuplicateInput
)

// NewVariable creates a free variable.
func NewVariable(name string, typ Type) *Variable {
	return graph.NewVariable(name, typ)
}

// NewConstant creates a variable bound to data.
func NewConstant(name string, typ Type, data any) *Variable {
	return graph.NewConstant(name, typ, data)
}

// Call applies a single-output op and returns its output.
func Call(op Op, inputs ...*Variable) *Variable {
	return graph.Call(op, inputs...)
}

// NewApply creates a node with one output per type.
func NewApply(op Op, inputs []*Variable, outputs ...Type) *Apply {
	return graph.NewApply(op, inputs, outputs...)
}

// NewFunctionGraph creates a graph from its inputs and outputs.
func NewFunctionGraph(inputs, outputs []*Variable) *FunctionGraph {
	return graph.NewFunctionGraph(inputs, outputs)
}

// ScalarByName builds a named scalar op such as "add" or "subtract".
func ScalarByName(name string) (Scalar, error) {
	return scalar.ByName(name)
}

// NewAdd returns the scalar addition op.
func NewAdd() Scalar { return scalar.NewAdd() }

// NewSub returns the scalar subtraction op.
func NewSub() Scalar { return scalar.NewSub() }

// NewMul returns the scalar multiplication op.
func NewMul() Scalar { return scalar.NewMul() }

// NewTrueDiv returns the scalar division op.
func NewTrueDiv() Scalar { return scalar.NewTrueDiv() }

// NewNeg returns the scalar negation op.
func NewNeg() Scalar { return scalar.NewNeg() }

// NewComposite fuses the subgraph between inputs and outputs into one op.
func NewComposite(inputs, outputs []*Variable) (*Composite, error) {
	return scalar.NewComposite(inputs, outputs)
}

// Elemwise lifts a scalar op over arrays.
func Elemwise(op Op) *ElemwiseOp {
	return elemwise.New(op)
}

// Load reads a graph from a YAML file.
func Load(path string) (*FunctionGraph, error) {
	return graphfile.Load(path)
}

// Parse reads a graph from a YAML document.
func Parse(r io.Reader) (*FunctionGraph, error) {
	return graphfile.Parse(r)
}
