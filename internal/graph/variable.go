package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/born-ml/jitlink/internal/tensor"
)

// Type describes the values a Variable can hold.
type Type struct {
	DType tensor.DataType
}

// String returns the dtype name.
func (t Type) String() string {
	return t.DType.String()
}

// Float64Type and Int64Type are the default scalar types.
var (
	Float64Type = Type{DType: tensor.Float64}
	Int64Type   = Type{DType: tensor.Int64}
)

// Variable is an edge of the graph: a graph input, a constant, or the
// output of an Apply node.
type Variable struct {
	ID    uuid.UUID
	Name  string
	Type  Type
	Owner *Apply // nil for inputs and constants
	Index int    // position in Owner.Outputs

	constant bool
	Data     any // literal value, constants only
}

// NewVariable creates a free variable, typically a graph input.
func NewVariable(name string, typ Type) *Variable {
	return &Variable{ID: uuid.New(), Name: name, Type: typ}
}

// NewConstant creates a variable bound to a literal value.
func NewConstant(name string, typ Type, data any) *Variable {
	return &Variable{ID: uuid.New(), Name: name, Type: typ, constant: true, Data: data}
}

// IsConstant reports whether v carries a literal value.
func (v *Variable) IsConstant() bool {
	return v.constant
}

// String returns the variable name, or a short id for anonymous variables.
func (v *Variable) String() string {
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("v_%s", v.ID.String()[:8])
}

// Upcast returns the type that can represent values of all given types.
// Integers mixed with floats promote to Float64, except Int32 with Float32.
func Upcast(types ...Type) Type {
	if len(types) == 0 {
		return Float64Type
	}
	out := types[0].DType
	for _, t := range types[1:] {
		out = tensor.Upcast(out, t.DType)
	}
	return Type{DType: out}
}
