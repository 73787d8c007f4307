// Package funcify turns graph ops into compiled kernels.
//
// It has two entry points, both dispatching on the runtime type of their
// argument:
//
//   - Typify converts literal data into the value representation kernels
//     consume. Types without a registered conversion pass through unchanged.
//   - Funcify returns a compiled kernel implementing an op. Ops without a
//     registered handler fail with an *UnsupportedOpError.
//
// Handlers for FunctionGraph, ScalarOp (and every op embedding it),
// Composite and Elemwise are registered by New. Further handlers may be
// added with Register before the dispatcher is first used.
//
// Example:
//
//	d := funcify.New(funcify.DefaultConfig())
//	k, err := d.Funcify(ctx, scalar.NewAdd())
//	if err != nil {
//	    return err
//	}
//	outs, err := k.Call(2, 3, 4) // outs[0] == int64(9)
package funcify
