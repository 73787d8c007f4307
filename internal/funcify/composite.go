package funcify

import (
	"context"
	"fmt"

	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/graph/scalar"
	"github.com/born-ml/jitlink/internal/jit"
)

// funcifyComposite compiles the inner graph and exposes its first output
// only. The remaining outputs are computed and dropped.
func funcifyComposite(ctx context.Context, d *Dispatcher, op graph.Op, o Options) (*jit.Kernel, error) {
	c := op.(*scalar.Composite)
	if c.FGraph == nil || len(c.FGraph.Outputs) == 0 {
		return nil, fmt.Errorf("%s: %w", c.OpName(), ErrNoOutputs)
	}

	inner, err := d.Funcify(ctx, c.FGraph, WithVectorize(o.Vectorize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.OpName(), err)
	}

	first := func(args ...any) ([]any, error) {
		outs, err := inner.Call(args...)
		if err != nil {
			return nil, err
		}
		return outs[:1], nil
	}

	return d.compiler.Compile(ctx, c.OpName(), first, jit.WithSignature(jit.Signature{
		NumIn:  len(c.FGraph.Inputs),
		NumOut: 1,
	}))
}
