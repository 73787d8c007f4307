// Package elemwise defines the op that lifts a scalar op over arrays.
package elemwise

import (
	"fmt"

	"github.com/born-ml/jitlink/internal/graph"
)

// Elemwise applies Scalar independently to every element of its
// (broadcast) array inputs.
type Elemwise struct {
	Scalar graph.Op
}

// New wraps a scalar op.
func New(scalar graph.Op) *Elemwise {
	return &Elemwise{Scalar: scalar}
}

// OpName returns "Elemwise{<scalar>}".
func (e *Elemwise) OpName() string {
	if graph.IsNil(e.Scalar) {
		return "Elemwise{}"
	}
	return fmt.Sprintf("Elemwise{%s}", e.Scalar.OpName())
}
