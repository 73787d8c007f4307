package funcify

import (
	"context"

	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/jit"
	"github.com/born-ml/jitlink/internal/link"
)

// funcifyFunctionGraph assembles the whole graph into one kernel, converting
// every node through the dispatcher itself.
func funcifyFunctionGraph(ctx context.Context, d *Dispatcher, op graph.Op, o Options) (*jit.Kernel, error) {
	fg := op.(*graph.FunctionGraph)

	name := fg.Name
	if name == "" {
		name = link.DefaultName
	}

	fn, err := link.FGraphToFunc(ctx, fg, d.convertFunc(o), d.typifyFunc, link.Options{
		Order:         o.Order,
		InputStorage:  o.InputStorage,
		OutputStorage: o.OutputStorage,
		StorageMap:    o.StorageMap,
		Name:          name,
		Logger:        d.logger,
	})
	if err != nil {
		return nil, err
	}

	return d.compiler.Compile(ctx, name, fn, jit.WithSignature(jit.Signature{
		NumIn:  len(fg.Inputs),
		NumOut: len(fg.Outputs),
	}))
}
