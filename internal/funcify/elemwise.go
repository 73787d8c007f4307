package funcify

import (
	"context"
	"fmt"
	"math"

	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/graph/elemwise"
	"github.com/born-ml/jitlink/internal/jit"
	"github.com/born-ml/jitlink/internal/numlib"
	"github.com/born-ml/jitlink/internal/parallel"
	"github.com/born-ml/jitlink/internal/tensor"
)

// funcifyElemwise lifts the wrapped scalar op's kernel over arrays.
// Without vectorization the scalar kernel itself is returned.
//
// The vectorized kernel returns a tensor whose dtype follows the upcast of
// its tensor arguments: float results stay Float32 when that upcast is
// Float32, integer results stay Int32 when it is Int32 and every value
// fits. Other float or integer results are Float64 or Int64.
// An empty result takes the input upcast.
func funcifyElemwise(ctx context.Context, d *Dispatcher, op graph.Op, o Options) (*jit.Kernel, error) {
	e := op.(*elemwise.Elemwise)
	if graph.IsNil(e.Scalar) {
		return nil, &UnsupportedOpError{Op: e.Scalar}
	}

	inner, err := d.Funcify(ctx, e.Scalar, WithNode(o.Node), WithVectorize(o.Vectorize))
	if err != nil {
		return nil, err
	}
	if !o.Vectorize {
		return inner, nil
	}

	return d.compiler.Compile(ctx, e.OpName(), vectorize(inner, d.cfg.Parallel),
		jit.WithSignature(jit.Signature{NumIn: inner.Signature().NumIn, NumOut: 1}))
}

// vectorize broadcasts tensor arguments against each other and calls k once
// per output element. Calls with scalars only go straight to k.
func vectorize(k *jit.Kernel, cfg parallel.Config) jit.Func {
	return func(args ...any) ([]any, error) {
		shapes := make([]tensor.Shape, len(args))
		arrays := false
		var in tensor.DataType
		for i, arg := range args {
			if t, ok := arg.(*tensor.RawTensor); ok && t != nil {
				shapes[i] = t.Shape()
				if arrays {
					in = tensor.Upcast(in, t.DType())
				} else {
					in = t.DType()
				}
				arrays = true
			} else {
				shapes[i] = tensor.Shape{}
			}
		}
		if !arrays {
			return k.Call(args...)
		}

		outShape, err := tensor.BroadcastAll(shapes...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.Name(), err)
		}
		outStrides := outShape.ComputeStrides()
		inStrides := make([][]int, len(args))
		for i := range args {
			inStrides[i] = tensor.BroadcastStrides(shapes[i], outShape)
		}

		n := outShape.NumElements()
		items := make([]any, n)
		err = parallel.ForErr(n, func(idx int) error {
			elems := make([]any, len(args))
			for i, arg := range args {
				if t, ok := arg.(*tensor.RawTensor); ok && t != nil {
					elems[i] = t.Item(tensor.FlatIndex(idx, outStrides, inStrides[i]))
				} else {
					elems[i] = arg
				}
			}
			outs, err := k.Call(elems...)
			if err != nil {
				return fmt.Errorf("element %d: %w", idx, err)
			}
			items[idx] = outs[0]
			return nil
		}, cfg)
		if err != nil {
			return nil, err
		}

		out, err := collect(items, outShape, in)
		if err != nil {
			return nil, err
		}
		return []any{out}, nil
	}
}

// collect packs per-element results into a tensor typed by resultDType.
func collect(items []any, shape tensor.Shape, in tensor.DataType) (*tensor.RawTensor, error) {
	dt := resultDType(items, in)
	out, err := tensor.NewRaw(shape, dt)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		switch dt {
		case tensor.Int64:
			out.AsInt64()[i] = item.(int64)
		case tensor.Int32:
			out.AsInt32()[i] = int32(item.(int64))
		case tensor.Bool:
			out.AsBool()[i] = item.(bool)
		default:
			s, err := numlib.ToScalar(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.SetAt(i, s.Float)
		}
	}
	return out, nil
}

// resultDType picks the output dtype from the element results and the
// upcast of the tensor inputs.
func resultDType(items []any, in tensor.DataType) tensor.DataType {
	if len(items) == 0 {
		return in
	}
	ints, bools, fitsInt32 := true, true, true
	for _, item := range items {
		switch v := item.(type) {
		case int64:
			bools = false
			if v < math.MinInt32 || v > math.MaxInt32 {
				fitsInt32 = false
			}
		case bool:
			ints = false
		default:
			ints, bools = false, false
		}
	}
	switch {
	case ints && in == tensor.Int32 && fitsInt32:
		return tensor.Int32
	case ints:
		return tensor.Int64
	case bools:
		return tensor.Bool
	case in == tensor.Float32:
		return tensor.Float32
	default:
		return tensor.Float64
	}
}
