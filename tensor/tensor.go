// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/jitlink/internal/tensor"
)

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Bool    DataType = tensor.Bool
)

// Shape represents the dimensions of a tensor.
// Shape{} is a scalar.
type Shape = tensor.Shape

// RawTensor is a dense array with a runtime data type.
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromFloat64s creates a Float64 tensor from a copy of values.
func FromFloat64s(values []float64, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat64s(values, shape)
}

// FromInt64s creates an Int64 tensor from a copy of values.
func FromInt64s(values []int64, shape Shape) (*RawTensor, error) {
	return tensor.FromInt64s(values, shape)
}

// ParseDataType parses names like "float64" or "int".
func ParseDataType(name string) (DataType, error) {
	return tensor.ParseDataType(name)
}

// BroadcastShapes returns the NumPy broadcast of a and b.
func BroadcastShapes(a, b Shape) (Shape, error) {
	out, _, err := tensor.BroadcastShapes(a, b)
	return out, err
}
