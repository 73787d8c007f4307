// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/jitlink/tensor"
)

func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.FromInt64s([]int64{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(tensor.Shape{2, 2}))
	assert.Equal(t, tensor.Int64, raw.DType())
	assert.Equal(t, 4, raw.NumElements())
	assert.Equal(t, "int64[2 2][1 2 3 4]", raw.String())
}

func TestParseDataType(t *testing.T) {
	dt, err := tensor.ParseDataType("float")
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, dt)
}

func TestBroadcastShapes(t *testing.T) {
	out, err := tensor.BroadcastShapes(tensor.Shape{2, 3}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, out)

	_, err = tensor.BroadcastShapes(tensor.Shape{2}, tensor.Shape{3})
	assert.Error(t, err)
}
