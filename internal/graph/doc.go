// Package graph defines the symbolic computation graph that jitlink compiles.
//
// A graph is built from Variables connected by Apply nodes. Each Apply
// records the Op it applies, the input Variables it consumes and the output
// Variables it produces. A FunctionGraph marks a subset of Variables as the
// inputs and outputs of a function and owns the traversal order used when
// the graph is turned into a kernel.
//
// Ops are plain descriptor values. The graph package does not know how to
// evaluate them; evaluation is attached later by dispatching on the Op's
// runtime type.
package graph
