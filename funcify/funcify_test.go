// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package funcify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/jitlink/funcify"
	"github.com/born-ml/jitlink/graph"
	"github.com/born-ml/jitlink/tensor"
)

func TestFuncifyScalar(t *testing.T) {
	k, err := funcify.Funcify(context.Background(), graph.NewAdd())
	require.NoError(t, err)

	outs, err := k.Call(2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(9), outs[0])
}

func TestFuncifyGraph(t *testing.T) {
	x := graph.NewVariable("x", graph.Float64Type)
	y := graph.NewVariable("y", graph.Float64Type)
	sum := graph.Call(graph.Elemwise(graph.NewAdd()), x, y)
	fg := graph.NewFunctionGraph([]*graph.Variable{x, y}, []*graph.Variable{sum})

	d := funcify.New(funcify.DefaultConfig())
	k, err := d.Funcify(context.Background(), fg)
	require.NoError(t, err)

	a, err := tensor.FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	b, err := tensor.FromFloat64s([]float64{10, 20, 30}, tensor.Shape{3})
	require.NoError(t, err)

	outs, err := k.Call(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, outs[0].(*tensor.RawTensor).AsFloat64())
}

type custom struct{}

func (custom) OpName() string { return "custom" }

func TestFuncifyUnsupported(t *testing.T) {
	_, err := funcify.Funcify(context.Background(), custom{})
	assert.ErrorIs(t, err, funcify.ErrUnsupportedOp)
}

func TestTypifyPassThrough(t *testing.T) {
	got, err := funcify.Typify("opaque")
	require.NoError(t, err)
	assert.Equal(t, "opaque", got)

	got, err = funcify.Typify(3, funcify.WithDType(tensor.Float64))
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
}

type offset struct{ by int64 }

func (offset) OpName() string { return "offset" }

type celsius float64

func TestRegisterExtensions(t *testing.T) {
	d := funcify.New(funcify.DefaultConfig())

	err := funcify.Register[offset](d, func(ctx context.Context, d *funcify.Dispatcher, op graph.Op, o funcify.Options) (*funcify.Kernel, error) {
		by := op.(offset).by
		return d.Compiler().Compile(ctx, "offset", func(args ...any) ([]any, error) {
			return []any{args[0].(int64) + by}, nil
		})
	})
	require.NoError(t, err)

	err = funcify.RegisterTypify[celsius](d, func(data any, o funcify.TypifyOptions) (any, error) {
		return int64(data.(celsius)) + 273, nil
	})
	require.NoError(t, err)

	x := graph.NewVariable("x", graph.Int64Type)
	temp := graph.NewConstant("temp", graph.Int64Type, celsius(20))
	sum := graph.Call(graph.NewAdd(), x, temp)
	out := graph.Call(offset{by: 1000}, sum)
	fg := graph.NewFunctionGraph([]*graph.Variable{x}, []*graph.Variable{out})

	k, err := d.Funcify(context.Background(), fg)
	require.NoError(t, err)

	outs, err := k.Call(int64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(1300), outs[0])

	got, err := d.Typify(celsius(-273))
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}
