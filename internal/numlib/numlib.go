// Package numlib is the standard numeric library kernels are built from.
//
// Functions are looked up by name, the way a scalar op's NFuncSpec names
// them. Each Ufunc works on Go scalars: integer-only arguments stay int64
// when the function has an integer implementation, everything else is
// computed in float64.
package numlib

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Errors returned by lookups and calls.
var (
	ErrUnknownFunc = errors.New("unknown numeric function")
	ErrNotScalar   = errors.New("argument is not a scalar")
	ErrArity       = errors.New("wrong number of arguments")
	ErrDomain      = errors.New("argument outside function domain")
)

// Ufunc is a named scalar function.
type Ufunc struct {
	Name string
	Nin  int
	Nout int

	f64 func(args []float64) float64
	i64 func(args []int64) (int64, error) // optional
}

// HasIntImpl reports whether integer arguments are computed exactly.
func (u *Ufunc) HasIntImpl() bool {
	return u.i64 != nil
}

// Call applies the function to exactly Nin scalar arguments.
func (u *Ufunc) Call(args ...any) (any, error) {
	if len(args) != u.Nin {
		return nil, fmt.Errorf("%s: %w: want %d, got %d", u.Name, ErrArity, u.Nin, len(args))
	}

	allInt := u.i64 != nil
	floats := make([]float64, len(args))
	ints := make([]int64, len(args))
	for i, arg := range args {
		s, err := ToScalar(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", u.Name, i, err)
		}
		floats[i] = s.Float
		ints[i] = s.Int
		if !s.IsInt {
			allInt = false
		}
	}

	if allInt {
		return u.i64(ints)
	}
	return u.f64(floats), nil
}

// Scalar is a numeric argument normalized for dispatch.
type Scalar struct {
	Float float64
	Int   int64
	IsInt bool
}

// ToScalar normalizes any Go numeric value. Bools count as integers.
func ToScalar(v any) (Scalar, error) {
	switch x := v.(type) {
	case float64:
		return Scalar{Float: x}, nil
	case float32:
		return Scalar{Float: float64(x)}, nil
	case int:
		return intScalar(int64(x)), nil
	case int8:
		return intScalar(int64(x)), nil
	case int16:
		return intScalar(int64(x)), nil
	case int32:
		return intScalar(int64(x)), nil
	case int64:
		return intScalar(x), nil
	case uint8:
		return intScalar(int64(x)), nil
	case uint16:
		return intScalar(int64(x)), nil
	case uint32:
		return intScalar(int64(x)), nil
	case uint:
		return intScalar(int64(x)), nil //nolint:gosec // values beyond int64 wrap like numpy casts
	case uint64:
		return intScalar(int64(x)), nil //nolint:gosec // values beyond int64 wrap like numpy casts
	case bool:
		if x {
			return intScalar(1), nil
		}
		return intScalar(0), nil
	default:
		return Scalar{}, fmt.Errorf("%w: %T", ErrNotScalar, v)
	}
}

func intScalar(i int64) Scalar {
	return Scalar{Float: float64(i), Int: i, IsInt: true}
}

var funcs = map[string]*Ufunc{}

func register(u *Ufunc) {
	if u.Nout == 0 {
		u.Nout = 1
	}
	funcs[u.Name] = u
}

// Lookup returns the function registered under name.
func Lookup(name string) (*Ufunc, error) {
	u, ok := funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunc, name)
	}
	return u, nil
}

// Names returns all function names, sorted.
func Names() []string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unary(name string, f func(float64) float64) {
	register(&Ufunc{Name: name, Nin: 1, f64: func(a []float64) float64 { return f(a[0]) }})
}

func init() {
	register(&Ufunc{
		Name: "add", Nin: 2,
		f64: func(a []float64) float64 { return a[0] + a[1] },
		i64: func(a []int64) (int64, error) { return a[0] + a[1], nil },
	})
	register(&Ufunc{
		Name: "subtract", Nin: 2,
		f64: func(a []float64) float64 { return a[0] - a[1] },
		i64: func(a []int64) (int64, error) { return a[0] - a[1], nil },
	})
	register(&Ufunc{
		Name: "multiply", Nin: 2,
		f64: func(a []float64) float64 { return a[0] * a[1] },
		i64: func(a []int64) (int64, error) { return a[0] * a[1], nil },
	})
	register(&Ufunc{
		Name: "true_divide", Nin: 2,
		f64: func(a []float64) float64 { return a[0] / a[1] },
	})
	register(&Ufunc{
		Name: "power", Nin: 2,
		f64: func(a []float64) float64 { return math.Pow(a[0], a[1]) },
		i64: intPow,
	})
	register(&Ufunc{
		Name: "maximum", Nin: 2,
		f64: func(a []float64) float64 { return nanAware(a[0], a[1], math.Max) },
		i64: func(a []int64) (int64, error) { return max(a[0], a[1]), nil },
	})
	register(&Ufunc{
		Name: "minimum", Nin: 2,
		f64: func(a []float64) float64 { return nanAware(a[0], a[1], math.Min) },
		i64: func(a []int64) (int64, error) { return min(a[0], a[1]), nil },
	})
	register(&Ufunc{
		Name: "negative", Nin: 1,
		f64: func(a []float64) float64 { return -a[0] },
		i64: func(a []int64) (int64, error) { return -a[0], nil },
	})
	register(&Ufunc{
		Name: "absolute", Nin: 1,
		f64: func(a []float64) float64 { return math.Abs(a[0]) },
		i64: func(a []int64) (int64, error) {
			if a[0] < 0 {
				return -a[0], nil
			}
			return a[0], nil
		},
	})
	unary("exp", math.Exp)
	unary("log", math.Log)
	unary("sqrt", math.Sqrt)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tanh", math.Tanh)
}

// intPow computes a**b for b >= 0 by repeated squaring.
func intPow(a []int64) (int64, error) {
	base, exp := a[0], a[1]
	if exp < 0 {
		return 0, fmt.Errorf("power: %w: integers to negative integer powers are not allowed", ErrDomain)
	}
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result, nil
}

// nanAware propagates NaN from either side.
func nanAware(a, b float64, f func(float64, float64) float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return f(a, b)
}
