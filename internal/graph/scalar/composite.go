package scalar

import (
	"fmt"
	"strings"

	"github.com/born-ml/jitlink/internal/graph"
)

// Composite is a scalar op whose semantics are given by an inner graph of
// scalar ops, fused into one node.
type Composite struct {
	ScalarOp
	FGraph *graph.FunctionGraph
}

// NewComposite fuses the graph between inputs and outputs into one op.
func NewComposite(inputs, outputs []*graph.Variable) (*Composite, error) {
	fg := graph.NewFunctionGraph(inputs, outputs)
	if err := fg.Validate(); err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}

	names := make([]string, 0)
	for _, node := range fg.Toposort() {
		names = append(names, node.Op.OpName())
	}
	name := fmt.Sprintf("Composite{%s}", strings.Join(names, ","))
	fg.Name = name

	return &Composite{ScalarOp: ScalarOp{Name: name}, FGraph: fg}, nil
}

// NumOutputs returns the number of outputs of the inner graph.
func (c *Composite) NumOutputs() int {
	return len(c.FGraph.Outputs)
}
