// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the array values jitlink kernels consume and
// produce.
//
// # Overview
//
// A RawTensor is a dense row-major array with a runtime DataType. Kernels
// built from elementwise ops broadcast RawTensor arguments against each
// other following NumPy rules; scalars take part as zero-dimensional
// values.
//
// # Basic Usage
//
//	x, _ := tensor.FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	y, _ := tensor.FromFloat64s([]float64{10, 20, 30}, tensor.Shape{3})
//
//	out, _ := tensor.BroadcastShapes(x.Shape(), y.Shape()) // [2 3]
package tensor
