package funcify

import (
	"fmt"
	"reflect"

	"github.com/born-ml/jitlink/internal/numlib"
	"github.com/born-ml/jitlink/internal/tensor"
)

// TypifyHandler converts one kind of literal data.
type TypifyHandler func(data any, opts TypifyOptions) (any, error)

// TypifyOptions carry the optional target dtype.
type TypifyOptions struct {
	DType    tensor.DataType
	HasDType bool
}

// TypifyOption sets one field of TypifyOptions.
type TypifyOption func(*TypifyOptions)

// WithDType asks for data converted to dt.
func WithDType(dt tensor.DataType) TypifyOption {
	return func(o *TypifyOptions) {
		o.DType = dt
		o.HasDType = true
	}
}

// Typify converts literal data into the value kernels consume.
// Data with no registered conversion is returned unchanged.
func (d *Dispatcher) Typify(data any, opts ...TypifyOption) (any, error) {
	d.freeze.Do(d.freezeRegistries)

	var o TypifyOptions
	for _, opt := range opts {
		opt(&o)
	}

	h, ok := d.typifiers.Lookup(data)
	if !ok {
		return data, nil
	}
	return h(data, o)
}

// typifyFunc adapts Typify to the constant conversion callback of link.
func (d *Dispatcher) typifyFunc(data any, dtype tensor.DataType) (any, error) {
	return d.Typify(data, WithDType(dtype))
}

func (d *Dispatcher) registerTypifiers() {
	for _, sample := range []any{
		int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		float32(0), float64(0), false,
	} {
		must(d.typifiers.Register(reflect.TypeOf(sample), typifyScalar))
	}

	must(RegisterTypify[[]float64](d, func(data any, o TypifyOptions) (any, error) {
		v := data.([]float64)
		return sliceTensor(len(v), func(i int) float64 { return v[i] }, tensor.Float64, o)
	}))
	must(RegisterTypify[[]float32](d, func(data any, o TypifyOptions) (any, error) {
		v := data.([]float32)
		return sliceTensor(len(v), func(i int) float64 { return float64(v[i]) }, tensor.Float32, o)
	}))
	must(RegisterTypify[[]int64](d, func(data any, o TypifyOptions) (any, error) {
		v := data.([]int64)
		return intSliceTensor(v, o)
	}))
	must(RegisterTypify[[]int](d, func(data any, o TypifyOptions) (any, error) {
		v := data.([]int)
		ints := make([]int64, len(v))
		for i, x := range v {
			ints[i] = int64(x)
		}
		return intSliceTensor(ints, o)
	}))
	must(RegisterTypify[*tensor.RawTensor](d, typifyTensor))
}

func typifyScalar(data any, o TypifyOptions) (any, error) {
	s, err := numlib.ToScalar(data)
	if err != nil {
		return nil, err
	}
	if !o.HasDType {
		if _, ok := data.(bool); ok {
			return data, nil
		}
		if s.IsInt {
			return s.Int, nil
		}
		return s.Float, nil
	}
	return convertScalar(s, o.DType)
}

// convertScalar renders s in dtype's precision using the runtime scalar
// kinds int64, float64 and bool.
func convertScalar(s numlib.Scalar, dt tensor.DataType) (any, error) {
	switch dt {
	case tensor.Float64:
		return s.Float, nil
	case tensor.Float32:
		return float64(float32(s.Float)), nil
	case tensor.Int64:
		if s.IsInt {
			return s.Int, nil
		}
		return int64(s.Float), nil
	case tensor.Int32:
		if s.IsInt {
			return int64(int32(s.Int)), nil
		}
		return int64(int32(s.Float)), nil
	case tensor.Bool:
		return s.Float != 0, nil
	default:
		return nil, fmt.Errorf("typify: unsupported dtype %v", dt)
	}
}

func sliceTensor(n int, at func(int) float64, natural tensor.DataType, o TypifyOptions) (any, error) {
	t, err := tensor.NewRaw(tensor.Shape{n}, natural)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		t.SetAt(i, at(i))
	}
	return castTo(t, o)
}

func intSliceTensor(v []int64, o TypifyOptions) (any, error) {
	t, err := tensor.FromInt64s(v, tensor.Shape{len(v)})
	if err != nil {
		return nil, err
	}
	return castTo(t, o)
}

func typifyTensor(data any, o TypifyOptions) (any, error) {
	t := data.(*tensor.RawTensor)
	if t == nil || !o.HasDType || t.DType() == o.DType {
		return t, nil
	}
	return t.Cast(o.DType)
}

func castTo(t *tensor.RawTensor, o TypifyOptions) (*tensor.RawTensor, error) {
	if !o.HasDType || t.DType() == o.DType {
		return t, nil
	}
	return t.Cast(o.DType)
}
