// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package funcify compiles graph ops into callable kernels.
//
// Funcify chooses a conversion by the runtime type of the op: function
// graphs, scalar ops, elementwise ops and composite ops are supported out
// of the box. The returned Kernel is called with one argument per input
// and returns its outputs as a slice.
//
// Example:
//
//	k, err := funcify.Funcify(ctx, graph.NewAdd())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outs, _ := k.Call(2, 3, 4) // outs[0] == int64(9)
package funcify

import (
	"context"

	"github.com/born-ml/jitlink/internal/funcify"
	"github.com/born-ml/jitlink/internal/graph"
	"github.com/born-ml/jitlink/internal/jit"
)

// Dispatcher owns the conversion registries.
type Dispatcher = funcify.Dispatcher

// Config holds dispatcher-wide defaults.
type Config = funcify.Config

// Kernel is a compiled callable.
type Kernel = jit.Kernel

// UnsupportedOpError reports an op without a registered conversion.
type UnsupportedOpError = funcify.UnsupportedOpError

// Options configure one Funcify call.
type (
	Option        = funcify.Option
	FuncifyOption = funcify.FuncifyOption
	TypifyOption  = funcify.TypifyOption
	Options       = funcify.Options
	TypifyOptions = funcify.TypifyOptions
)

// Handler builds the kernel for one op; TypifyHandler converts one kind
// of literal.
type (
	Handler       = funcify.Handler
	TypifyHandler = funcify.TypifyHandler
)

// Errors.
var (
	ErrUnsupportedOp = funcify.ErrUnsupportedOp
	ErrNoNFunc       = funcify.ErrNoNFunc
	ErrNoOutputs     = funcify.ErrNoOutputs
)

// Dispatcher and call options.
var (
	WithLogger        = funcify.WithLogger
	WithTracer        = funcify.WithTracer
	WithCompiler      = funcify.WithCompiler
	WithNode          = funcify.WithNode
	WithOrder         = funcify.WithOrder
	WithInputStorage  = funcify.WithInputStorage
	WithOutputStorage = funcify.WithOutputStorage
	WithStorageMap    = funcify.WithStorageMap
	WithVectorize     = funcify.WithVectorize
	WithDType         = funcify.WithDType
)

// DefaultConfig returns vectorization on and CPU-count parallelism.
func DefaultConfig() Config {
	return funcify.DefaultConfig()
}

// New creates a dispatcher with the built-in conversions.
func New(cfg Config, opts ...Option) *Dispatcher {
	return funcify.New(cfg, opts...)
}

// Default returns the process-wide dispatcher.
func Default() *Dispatcher {
	return funcify.Default()
}

// Funcify compiles op with the default dispatcher.
func Funcify(ctx context.Context, op graph.Op, opts ...FuncifyOption) (*Kernel, error) {
	return funcify.Default().Funcify(ctx, op, opts...)
}

// Typify converts literal data with the default dispatcher.
func Typify(data any, opts ...TypifyOption) (any, error) {
	return funcify.Default().Typify(data, opts...)
}

// Register adds a conversion for ops of type T to d. It must be called
// before d is first used.
func Register[T any](d *Dispatcher, h Handler) error {
	return funcify.Register[T](d, h)
}

// RegisterTypify adds a literal conversion for data of type T to d. Like
// Register it must be called before d is first used.
func RegisterTypify[T any](d *Dispatcher, h TypifyHandler) error {
	return funcify.RegisterTypify[T](d, h)
}
