package graph

import (
	"fmt"
	"reflect"
	"strings"
)

// Op is any operation descriptor that can label an Apply node.
type Op interface {
	OpName() string
}

// IsNil reports whether op is nil or a nil pointer wrapped in the interface.
func IsNil(op Op) bool {
	if op == nil {
		return true
	}
	v := reflect.ValueOf(op)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Apply is a node of the graph: one application of an Op.
type Apply struct {
	Op      Op
	Inputs  []*Variable
	Outputs []*Variable
}

// NewApply creates a node applying op to inputs, with one output variable
// per entry of outputs.
func NewApply(op Op, inputs []*Variable, outputs ...Type) *Apply {
	node := &Apply{
		Op:     op,
		Inputs: inputs,
	}
	node.Outputs = make([]*Variable, len(outputs))
	for i, typ := range outputs {
		v := NewVariable("", typ)
		v.Owner = node
		v.Index = i
		node.Outputs[i] = v
	}
	return node
}

// Call applies a single-output op and returns its output variable.
// The output type is the upcast of the input types.
func Call(op Op, inputs ...*Variable) *Variable {
	types := make([]Type, len(inputs))
	for i, in := range inputs {
		types[i] = in.Type
	}
	return NewApply(op, inputs, Upcast(types...)).Outputs[0]
}

// Out returns the i-th output variable.
func (a *Apply) Out(i int) *Variable {
	return a.Outputs[i]
}

// String renders the node as op(inputs) -> outputs.
func (a *Apply) String() string {
	ins := make([]string, len(a.Inputs))
	for i, v := range a.Inputs {
		ins[i] = v.String()
	}
	outs := make([]string, len(a.Outputs))
	for i, v := range a.Outputs {
		outs[i] = v.String()
	}
	return fmt.Sprintf("%s(%s) -> %s", a.Op.OpName(), strings.Join(ins, ", "), strings.Join(outs, ", "))
}
