package funcify

import (
	"errors"
	"fmt"

	"github.com/born-ml/jitlink/internal/graph"
)

// Errors returned by Funcify.
var (
	ErrUnsupportedOp = errors.New("unsupported operation")
	ErrNoNFunc       = errors.New("scalar op has no numeric function")
	ErrNoOutputs     = errors.New("composite op has no outputs")
)

// UnsupportedOpError reports an op no handler is registered for.
type UnsupportedOpError struct {
	Op graph.Op
}

// Error implements the error interface.
func (e *UnsupportedOpError) Error() string {
	if graph.IsNil(e.Op) {
		return fmt.Sprintf("no kernel conversion for nil op (%T)", e.Op)
	}
	return fmt.Sprintf("no kernel conversion for op %s (%T)", e.Op.OpName(), e.Op)
}

// Is makes errors.Is(err, ErrUnsupportedOp) hold.
func (e *UnsupportedOpError) Is(target error) bool {
	return target == ErrUnsupportedOp
}
