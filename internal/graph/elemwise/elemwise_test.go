package elemwise

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/jitlink/internal/graph/scalar"
)

func TestOpName(t *testing.T) {
	assert.Equal(t, "Elemwise{add}", New(scalar.NewAdd()).OpName())
	assert.Equal(t, "Elemwise{neg}", New(scalar.NewNeg()).OpName())
	assert.Equal(t, "Elemwise{}", New(nil).OpName())
	assert.Equal(t, "Elemwise{}", New((*scalar.Add)(nil)).OpName())
}

func TestWrapsComposite(t *testing.T) {
	c := &scalar.Composite{ScalarOp: scalar.ScalarOp{Name: "Composite{add}"}}
	assert.Equal(t, "Elemwise{Composite{add}}", New(c).OpName())
}
