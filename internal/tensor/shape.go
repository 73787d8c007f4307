package tensor

import (
	"fmt"
	"slices"
)

// Shape lists the dimensions of a tensor, outermost first.
// Shape{} is a scalar.
type Shape []int

// NumElements returns the product of the dimensions (1 for a scalar).
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate rejects non-positive dimensions.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d <= 0 }); i >= 0 {
		return fmt.Errorf("dimension %d of %v is %d, must be positive", i, []int(s), s[i])
	}
	return nil
}

// Equal reports whether both shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns an independent copy. Cloning nil yields an empty shape.
func (s Shape) Clone() Shape {
	return append(Shape{}, s...)
}

// ComputeStrides returns row-major element strides: the last dimension is
// contiguous and each earlier stride spans everything after it.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}
