package funcify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/graph/elemwise"
	"github.com/born-ml/jitlink/internal/graph/scalar"
	"github.com/born-ml/jitlink/internal/tensor"
)

// sumAndProduct builds Composite{add,mul} with outputs (x+y, x*y).
func sumAndProduct(t *testing.T) *scalar.Composite {
	t.Helper()
	x := graph.NewVariable("x", graph.Int64Type)
	y := graph.NewVariable("y", graph.Int64Type)
	sum := graph.Call(scalar.NewAdd(), x, y)
	prod := graph.Call(scalar.NewMul(), x, y)

	c, err := scalar.NewComposite([]*graph.Variable{x, y}, []*graph.Variable{sum, prod})
	require.NoError(t, err)
	return c
}

func TestCompositeReturnsFirstOutput(t *testing.T) {
	d := newTestDispatcher(t)
	c := sumAndProduct(t)

	k, err := d.Funcify(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, c.OpName(), k.Name())

	outs, err := k.Call(2, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(5)}, outs)
}

func TestCompositeArity(t *testing.T) {
	d := newTestDispatcher(t)
	k, err := d.Funcify(context.Background(), sumAndProduct(t))
	require.NoError(t, err)

	_, err = k.Call(1)
	assert.Error(t, err)
}

func TestCompositeWithoutOutputs(t *testing.T) {
	d := newTestDispatcher(t)
	c := &scalar.Composite{
		ScalarOp: scalar.ScalarOp{Name: "Composite{}"},
		FGraph:   graph.NewFunctionGraph(nil, nil),
	}

	k, err := d.Funcify(context.Background(), c)
	assert.Nil(t, k)
	assert.ErrorIs(t, err, ErrNoOutputs)

	_, err = d.Funcify(context.Background(), &scalar.Composite{ScalarOp: scalar.ScalarOp{Name: "nil graph"}})
	assert.ErrorIs(t, err, ErrNoOutputs)
}

func TestCompositeUnderElemwise(t *testing.T) {
	d := newTestDispatcher(t)
	k, err := d.Funcify(context.Background(), elemwise.New(sumAndProduct(t)))
	require.NoError(t, err)

	a, err := tensor.FromInt64s([]int64{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)
	outs, err := k.Call(a, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12, 13}, outs[0].(*tensor.RawTensor).AsInt64())
}

func TestCompositeNestedInGraph(t *testing.T) {
	d := newTestDispatcher(t)
	c := sumAndProduct(t)

	a := graph.NewVariable("a", graph.Int64Type)
	b := graph.NewVariable("b", graph.Int64Type)
	fused := graph.Call(c, a, b)
	neg := graph.Call(scalar.NewNeg(), fused)

	k, err := d.Funcify(context.Background(), graph.NewFunctionGraph([]*graph.Variable{a, b}, []*graph.Variable{neg}))
	require.NoError(t, err)

	outs, err := k.Call(4, 6)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(-10)}, outs)
}
