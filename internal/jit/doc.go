// Package jit is the compile facility behind jitlink kernels.
//
// Compile turns an ordinary Func into a Kernel: an opaque handle with a
// stable identity, a checked calling convention and call statistics.
// Compilation is eager; everything that can be checked without arguments is
// checked when Compile returns. CompileCached memoizes kernels by key so a
// kernel shared by many graph nodes is built once.
//
// Calling convention: every kernel takes its arguments as a variadic list of
// values (Go scalars or *tensor.RawTensor) and returns its outputs as a
// slice, even when there is only one.
package jit
