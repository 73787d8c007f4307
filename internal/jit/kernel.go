package jit

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Errors reported by the compile facility and by compiled kernels.
var (
	ErrNilFunc   = errors.New("jit: nil function")
	ErrSignature = errors.New("jit: invalid signature")
	ErrArity     = errors.New("jit: wrong number of arguments")
	ErrOutputs   = errors.New("jit: wrong number of outputs")
)

// Func is the calling convention shared by all kernels.
type Func func(args ...any) ([]any, error)

// Variadic marks a signature slot that accepts any count.
const Variadic = -1

// Signature fixes the argument and output counts of a kernel.
type Signature struct {
	NumIn  int
	NumOut int
}

// AnySignature accepts any number of arguments and outputs.
var AnySignature = Signature{NumIn: Variadic, NumOut: Variadic}

func (s Signature) validate() error {
	if s.NumIn < Variadic || s.NumOut < Variadic {
		return fmt.Errorf("%w: %+v", ErrSignature, s)
	}
	return nil
}

// String renders the signature as (in) -> (out), "*" for variadic.
func (s Signature) String() string {
	count := func(n int) string {
		if n == Variadic {
			return "*"
		}
		return fmt.Sprint(n)
	}
	return fmt.Sprintf("(%s) -> (%s)", count(s.NumIn), count(s.NumOut))
}

// Kernel is a compiled function handle.
type Kernel struct {
	id    uuid.UUID
	name  string
	sig   Signature
	fn    Func
	calls atomic.Int64
}

// ID returns the kernel's unique identity.
func (k *Kernel) ID() uuid.UUID { return k.id }

// Name returns the name given at compile time.
func (k *Kernel) Name() string { return k.name }

// Signature returns the checked signature.
func (k *Kernel) Signature() Signature { return k.sig }

// Calls returns how many times the kernel has been invoked.
func (k *Kernel) Calls() int64 { return k.calls.Load() }

// Call invokes the kernel. Argument and output counts are checked against
// the signature; errors from the kernel body are returned unchanged.
func (k *Kernel) Call(args ...any) ([]any, error) {
	k.calls.Add(1)
	if k.sig.NumIn != Variadic && len(args) != k.sig.NumIn {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", k.name, ErrArity, k.sig.NumIn, len(args))
	}
	outs, err := k.fn(args...)
	if err != nil {
		return nil, err
	}
	if k.sig.NumOut != Variadic && len(outs) != k.sig.NumOut {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", k.name, ErrOutputs, k.sig.NumOut, len(outs))
	}
	return outs, nil
}

// Func returns the kernel as a plain Func, e.g. to nest it in another kernel.
func (k *Kernel) Func() Func {
	return k.Call
}

// String returns name, signature and short id.
func (k *Kernel) String() string {
	return fmt.Sprintf("%s%s#%s", k.name, k.sig, k.id.String()[:8])
}
