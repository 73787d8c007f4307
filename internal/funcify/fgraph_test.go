package funcify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/graph/elemwise"
	"github.com/born-ml/jitlink/internal/graph/scalar"
	"github.com/born-ml/jitlink/internal/link"
	"github.com/born-ml/jitlink/internal/tensor"
)

// scaledSum builds (x + y) * 2.5 with the factor as a constant.
func scaledSum() (*graph.FunctionGraph, *graph.Variable) {
	x := graph.NewVariable("x", graph.Float64Type)
	y := graph.NewVariable("y", graph.Float64Type)
	k := graph.NewConstant("k", graph.Float64Type, 2.5)
	sum := graph.Call(scalar.NewAdd(), x, y)
	out := graph.Call(scalar.NewMul(), sum, k)
	return graph.NewFunctionGraph([]*graph.Variable{x, y}, []*graph.Variable{out}), sum
}

func TestFunctionGraphKernel(t *testing.T) {
	d := newTestDispatcher(t)
	fg, _ := scaledSum()

	k, err := d.Funcify(context.Background(), fg)
	require.NoError(t, err)
	assert.Equal(t, link.DefaultName, k.Name())
	assert.Equal(t, 2, k.Signature().NumIn)
	assert.Equal(t, 1, k.Signature().NumOut)

	outs, err := k.Call(1.0, 3.0)
	require.NoError(t, err)
	assert.Equal(t, []any{10.0}, outs)
}

func TestFunctionGraphName(t *testing.T) {
	d := newTestDispatcher(t)
	fg, _ := scaledSum()
	fg.Name = "scaled_sum"

	k, err := d.Funcify(context.Background(), fg)
	require.NoError(t, err)
	assert.Equal(t, "scaled_sum", k.Name())
}

func TestFunctionGraphConstantTypify(t *testing.T) {
	d := newTestDispatcher(t)
	x := graph.NewVariable("x", graph.Int64Type)
	c := graph.NewConstant("c", graph.Int64Type, 3.9)
	out := graph.Call(scalar.NewAdd(), x, c)

	k, err := d.Funcify(context.Background(), graph.NewFunctionGraph([]*graph.Variable{x}, []*graph.Variable{out}))
	require.NoError(t, err)

	outs, err := k.Call(1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), outs[0])
}

func TestFunctionGraphStorage(t *testing.T) {
	d := newTestDispatcher(t)
	fg, sum := scaledSum()

	in := []*link.Cell{{}, {}}
	out := []*link.Cell{{}}
	sm := link.StorageMap{}

	k, err := d.Funcify(context.Background(), fg,
		WithInputStorage(in),
		WithOutputStorage(out),
		WithStorageMap(sm),
	)
	require.NoError(t, err)

	_, err = k.Call(2.0, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, in[0].Value)
	assert.Equal(t, 10.0, out[0].Value)
	require.Contains(t, sm, sum)
	assert.Equal(t, 4.0, sm[sum].Value)
}

func TestFunctionGraphOrder(t *testing.T) {
	d := newTestDispatcher(t)
	fg, _ := scaledSum()
	nodes := fg.Toposort()
	require.Len(t, nodes, 2)

	_, err := d.Funcify(context.Background(), fg, WithOrder(nodes))
	require.NoError(t, err)

	_, err = d.Funcify(context.Background(), fg, WithOrder(nodes[:1]))
	assert.ErrorIs(t, err, link.ErrOrder)
}

func TestFunctionGraphUnsupportedNode(t *testing.T) {
	d := newTestDispatcher(t)
	x := graph.NewVariable("x", graph.Float64Type)
	out := graph.Call(&opaqueOp{name: "mystery"}, x)

	_, err := d.Funcify(context.Background(), graph.NewFunctionGraph([]*graph.Variable{x}, []*graph.Variable{out}))
	assert.ErrorIs(t, err, ErrUnsupportedOp)
}

func TestFunctionGraphElemwise(t *testing.T) {
	x := graph.NewVariable("x", graph.Float64Type)
	y := graph.NewVariable("y", graph.Float64Type)
	out := graph.Call(elemwise.New(scalar.NewMaximum()), x, y)
	fg := graph.NewFunctionGraph([]*graph.Variable{x, y}, []*graph.Variable{out})

	a, err := tensor.FromFloat64s([]float64{1, 5, 3, 7}, tensor.Shape{2, 2})
	require.NoError(t, err)
	b, err := tensor.FromFloat64s([]float64{4, 4}, tensor.Shape{1, 2})
	require.NoError(t, err)

	t.Run("vectorized", func(t *testing.T) {
		k, err := newTestDispatcher(t).Funcify(context.Background(), fg)
		require.NoError(t, err)
		outs, err := k.Call(a, b)
		require.NoError(t, err)
		assert.Equal(t, []float64{4, 5, 4, 7}, outs[0].(*tensor.RawTensor).AsFloat64())
	})

	t.Run("legacy", func(t *testing.T) {
		k, err := newTestDispatcher(t).Funcify(context.Background(), fg, WithVectorize(false))
		require.NoError(t, err)
		_, err = k.Call(a, b)
		assert.Error(t, err)

		outs, err := k.Call(1.0, 2.0)
		require.NoError(t, err)
		assert.Equal(t, []any{2.0}, outs)
	})
}
