package funcify

import (
	"context"
	"fmt"

	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/graph/scalar"
	"github.com/born-ml/jitlink/internal/jit"
	"github.com/born-ml/jitlink/internal/numlib"
)

var scalarSignature = jit.Signature{NumIn: jit.Variadic, NumOut: 1}

// funcifyScalarOp builds the kernel for any op embedding scalar.ScalarOp.
// Kernels are cached per numeric function, so every Add shares one.
func funcifyScalarOp(ctx context.Context, d *Dispatcher, op graph.Op, _ Options) (*jit.Kernel, error) {
	sop, ok := op.(scalar.Op)
	if !ok {
		return nil, &UnsupportedOpError{Op: op}
	}
	spec := sop.Base().NFunc
	if spec == nil {
		return nil, fmt.Errorf("%s: %w", op.OpName(), ErrNoNFunc)
	}

	return d.compiler.CompileCached(ctx, "scalar:"+spec.Name, spec.Name, func() (jit.Func, error) {
		u, err := numlib.Lookup(spec.Name)
		if err != nil {
			return nil, err
		}
		return foldKernel(u), nil
	}, jit.WithSignature(scalarSignature))
}

// foldKernel applies u across any number of arguments.
//
// A unary u takes exactly one argument. Otherwise the first argument seeds
// the accumulator and every later argument is combined as u(arg, acc), so
// subtract(10, 3, 1) is 1 - (3 - 10) = 8.
func foldKernel(u *numlib.Ufunc) jit.Func {
	return func(args ...any) ([]any, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%s: %w: need at least one argument", u.Name, numlib.ErrArity)
		}
		if u.Nin == 1 {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s: %w: want 1, got %d", u.Name, numlib.ErrArity, len(args))
			}
			r, err := u.Call(args[0])
			if err != nil {
				return nil, err
			}
			return []any{r}, nil
		}

		acc, err := canonical(args[0])
		if err != nil {
			return nil, fmt.Errorf("%s: argument 0: %w", u.Name, err)
		}
		for _, arg := range args[1:] {
			if acc, err = u.Call(arg, acc); err != nil {
				return nil, err
			}
		}
		return []any{acc}, nil
	}
}

// canonical returns v as int64 or float64.
func canonical(v any) (any, error) {
	s, err := numlib.ToScalar(v)
	if err != nil {
		return nil, err
	}
	if s.IsInt {
		return s.Int, nil
	}
	return s.Float, nil
}
