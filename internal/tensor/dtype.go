// Package tensor provides the array values that compiled kernels consume and produce.
package tensor

import (
	"fmt"
	"strings"
)

// DataType is the runtime element type of a RawTensor.
type DataType int

// Element types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Bool
)

type dtypeInfo struct {
	name  string
	size  int
	float bool
}

var dtypes = [...]dtypeInfo{
	Float32: {"float32", 4, true},
	Float64: {"float64", 8, true},
	Int32:   {"int32", 4, false},
	Int64:   {"int64", 8, false},
	Bool:    {"bool", 1, false},
}

// Short names accepted by ParseDataType besides the canonical ones.
var dtypeAliases = map[string]DataType{
	"float":  Float64,
	"double": Float64,
	"int":    Int64,
	"long":   Int64,
}

func (dt DataType) info() (dtypeInfo, bool) {
	if dt < 0 || int(dt) >= len(dtypes) {
		return dtypeInfo{}, false
	}
	return dtypes[dt], true
}

// Size returns the element width in bytes. It panics on an unknown type.
func (dt DataType) Size() int {
	info, ok := dt.info()
	if !ok {
		panic(fmt.Sprintf("tensor: unknown data type %d", int(dt)))
	}
	return info.size
}

// IsFloat reports whether elements are floating point.
func (dt DataType) IsFloat() bool {
	info, _ := dt.info()
	return info.float
}

// String returns the canonical name, e.g. "float64".
func (dt DataType) String() string {
	if info, ok := dt.info(); ok {
		return info.name
	}
	return "unknown"
}

// Upcast returns the narrowest type that holds values of both a and b.
// Integers mixed with floats promote to Float64, except Int32 with Float32.
func Upcast(a, b DataType) DataType {
	if a == b {
		return a
	}
	rank := func(dt DataType) int {
		switch dt {
		case Bool:
			return 0
		case Int32:
			return 1
		case Int64:
			return 2
		case Float32:
			return 3
		default:
			return 4
		}
	}
	if a.IsFloat() != b.IsFloat() {
		// int64 does not fit float32
		if a == Int64 || b == Int64 || a == Float64 || b == Float64 {
			return Float64
		}
	}
	if rank(a) > rank(b) {
		return a
	}
	return b
}

// ParseDataType is the inverse of String. Matching ignores case and also
// accepts "float", "double", "int" and "long".
func ParseDataType(name string) (DataType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for dt, info := range dtypes {
		if info.name == key {
			return DataType(dt), nil
		}
	}
	if dt, ok := dtypeAliases[key]; ok {
		return dt, nil
	}
	return 0, fmt.Errorf("unknown data type %q", name)
}
