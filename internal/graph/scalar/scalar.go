// Package scalar defines the scalar operation descriptors.
//
// Every scalar op embeds ScalarOp. Ops that correspond to a function of the
// standard numeric library carry an NFuncSpec naming it; the kernel for the
// op is found by that name.
package scalar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/jitlink/internal/graph"
)

// NFuncSpec names the numeric-library function implementing an op.
type NFuncSpec struct {
	Name string // function name, e.g. "add"
	Nin  int    // inputs the function accepts
	Nout int    // outputs the function returns
}

// ScalarOp is the base descriptor for operations on scalars.
type ScalarOp struct {
	Name  string
	NFunc *NFuncSpec
}

// OpName returns the op's display name.
func (op *ScalarOp) OpName() string {
	return op.Name
}

// Base returns the embedded ScalarOp. Named ops inherit it.
func (op *ScalarOp) Base() *ScalarOp {
	return op
}

// Op is implemented by every scalar op through its embedded ScalarOp.
type Op interface {
	graph.Op
	Base() *ScalarOp
}

func base(name, nfunc string, nin int) ScalarOp {
	return ScalarOp{Name: name, NFunc: &NFuncSpec{Name: nfunc, Nin: nin, Nout: 1}}
}

// Binary ops.
type (
	Add     struct{ ScalarOp }
	Sub     struct{ ScalarOp }
	Mul     struct{ ScalarOp }
	TrueDiv struct{ ScalarOp }
	Pow     struct{ ScalarOp }
	Maximum struct{ ScalarOp }
	Minimum struct{ ScalarOp }
)

// Unary ops.
type (
	Neg  struct{ ScalarOp }
	Abs  struct{ ScalarOp }
	Exp  struct{ ScalarOp }
	Log  struct{ ScalarOp }
	Sqrt struct{ ScalarOp }
	Sin  struct{ ScalarOp }
	Cos  struct{ ScalarOp }
	Tanh struct{ ScalarOp }
)

func NewAdd() *Add         { return &Add{base("add", "add", 2)} }
func NewSub() *Sub         { return &Sub{base("sub", "subtract", 2)} }
func NewMul() *Mul         { return &Mul{base("mul", "multiply", 2)} }
func NewTrueDiv() *TrueDiv { return &TrueDiv{base("true_div", "true_divide", 2)} }
func NewPow() *Pow         { return &Pow{base("pow", "power", 2)} }
func NewMaximum() *Maximum { return &Maximum{base("maximum", "maximum", 2)} }
func NewMinimum() *Minimum { return &Minimum{base("minimum", "minimum", 2)} }
func NewNeg() *Neg         { return &Neg{base("neg", "negative", 1)} }
func NewAbs() *Abs         { return &Abs{base("abs", "absolute", 1)} }
func NewExp() *Exp         { return &Exp{base("exp", "exp", 1)} }
func NewLog() *Log         { return &Log{base("log", "log", 1)} }
func NewSqrt() *Sqrt       { return &Sqrt{base("sqrt", "sqrt", 1)} }
func NewSin() *Sin         { return &Sin{base("sin", "sin", 1)} }
func NewCos() *Cos         { return &Cos{base("cos", "cos", 1)} }
func NewTanh() *Tanh       { return &Tanh{base("tanh", "tanh", 1)} }

var constructors = map[string]func() Op{
	"add":      func() Op { return NewAdd() },
	"sub":      func() Op { return NewSub() },
	"mul":      func() Op { return NewMul() },
	"true_div": func() Op { return NewTrueDiv() },
	"pow":      func() Op { return NewPow() },
	"maximum":  func() Op { return NewMaximum() },
	"minimum":  func() Op { return NewMinimum() },
	"neg":      func() Op { return NewNeg() },
	"abs":      func() Op { return NewAbs() },
	"exp":      func() Op { return NewExp() },
	"log":      func() Op { return NewLog() },
	"sqrt":     func() Op { return NewSqrt() },
	"sin":      func() Op { return NewSin() },
	"cos":      func() Op { return NewCos() },
	"tanh":     func() Op { return NewTanh() },
}

// aliases maps numeric-library names onto op names.
var aliases = map[string]string{
	"subtract":    "sub",
	"multiply":    "mul",
	"true_divide": "true_div",
	"div":         "true_div",
	"power":       "pow",
	"negative":    "neg",
	"absolute":    "abs",
	"max":         "maximum",
	"min":         "minimum",
}

// ByName builds a named scalar op. Both op names ("sub") and numeric
// library names ("subtract") are accepted.
func ByName(name string) (Op, error) {
	key := strings.ToLower(name)
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	ctor, ok := constructors[key]
	if !ok {
		return nil, fmt.Errorf("unknown scalar op %q", name)
	}
	return ctor(), nil
}

// Names returns the sorted op names accepted by ByName.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
