package tensor

import (
	"fmt"
	"strings"
	"unsafe"
)

// RawTensor is a dense row-major array with a runtime data type.
// Elements live in a single byte buffer and are reinterpreted through the
// typed views (AsFloat64, AsInt64, ...).
type RawTensor struct {
	data  []byte
	shape Shape
	dtype DataType
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is zero-initialized.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		data:  make([]byte, shape.NumElements()*dtype.Size()),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromFloat64s creates a Float64 tensor holding a copy of values.
func FromFloat64s(values []float64, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(values) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(values))
	}
	t, err := NewRaw(shape, Float64)
	if err != nil {
		return nil, err
	}
	copy(t.AsFloat64(), values)
	return t, nil
}

// FromInt64s creates an Int64 tensor holding a copy of values.
func FromInt64s(values []int64, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(values) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(values))
	}
	t, err := NewRaw(shape, Int64)
	if err != nil {
		return nil, err
	}
	copy(t.AsInt64(), values)
	return t, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	r.mustBe(Float32)
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	r.mustBe(Float64)
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	r.mustBe(Int32)
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	r.mustBe(Int64)
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	r.mustBe(Bool)
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*bool)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

func (r *RawTensor) mustBe(dt DataType) {
	if r.dtype != dt {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, dt))
	}
}

// At returns element i (flat, row-major) converted to float64.
func (r *RawTensor) At(i int) float64 {
	switch r.dtype {
	case Float32:
		return float64(r.AsFloat32()[i])
	case Float64:
		return r.AsFloat64()[i]
	case Int32:
		return float64(r.AsInt32()[i])
	case Int64:
		return float64(r.AsInt64()[i])
	case Bool:
		if r.AsBool()[i] {
			return 1
		}
		return 0
	default:
		panic("unknown data type")
	}
}

// Item returns element i as the Go scalar matching the dtype
// (float64 for float types, int64 for integer types, bool for Bool).
func (r *RawTensor) Item(i int) any {
	switch r.dtype {
	case Float32:
		return float64(r.AsFloat32()[i])
	case Float64:
		return r.AsFloat64()[i]
	case Int32:
		return int64(r.AsInt32()[i])
	case Int64:
		return r.AsInt64()[i]
	case Bool:
		return r.AsBool()[i]
	default:
		panic("unknown data type")
	}
}

// SetAt stores v at flat index i, converting to the tensor's dtype.
func (r *RawTensor) SetAt(i int, v float64) {
	switch r.dtype {
	case Float32:
		r.AsFloat32()[i] = float32(v)
	case Float64:
		r.AsFloat64()[i] = v
	case Int32:
		r.AsInt32()[i] = int32(v)
	case Int64:
		r.AsInt64()[i] = int64(v)
	case Bool:
		r.AsBool()[i] = v != 0
	default:
		panic("unknown data type")
	}
}

// Cast returns a copy of the tensor converted to dtype.
// Casting to the current dtype still copies.
func (r *RawTensor) Cast(dtype DataType) (*RawTensor, error) {
	out, err := NewRaw(r.shape, dtype)
	if err != nil {
		return nil, err
	}
	if dtype == r.dtype {
		copy(out.data, r.data)
		return out, nil
	}
	if dtype == Int64 && r.dtype == Int32 {
		src := r.AsInt32()
		dst := out.AsInt64()
		for i, v := range src {
			dst[i] = int64(v)
		}
		return out, nil
	}
	for i := 0; i < r.NumElements(); i++ {
		out.SetAt(i, r.At(i))
	}
	return out, nil
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{data: data, shape: r.shape.Clone(), dtype: r.dtype}
}

// String renders the tensor as dtype, shape and a flat element list.
func (r *RawTensor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%v[", r.dtype, []int(r.shape))
	for i := 0; i < r.NumElements(); i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprint(&b, r.Item(i))
	}
	b.WriteString("]")
	return b.String()
}
