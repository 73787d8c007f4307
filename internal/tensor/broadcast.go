package tensor

import (
	"errors"
	"fmt"
)

// ErrBroadcast reports shapes that cannot be broadcast together.
var ErrBroadcast = errors.New("shapes cannot be broadcast")

// BroadcastShapes combines two shapes under NumPy rules: align on the
// right, treat missing dimensions as 1, and let a 1 stretch to match.
// The flag reports whether either side had to be stretched or padded.
//
//	(3, 1) with (3, 5) -> (3, 5), true
//	(5)    with (3, 5) -> (3, 5), true
//	(3, 5) with (3, 5) -> (3, 5), false
//	(3, 4) with (3, 5) -> ErrBroadcast
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	rank := max(len(a), len(b))
	out := make(Shape, rank)
	stretched := len(a) != len(b)

	for axis := rank - 1; axis >= 0; axis-- {
		da := padded(a, rank, axis)
		db := padded(b, rank, axis)
		switch {
		case da == db:
			out[axis] = da
		case da == 1:
			out[axis], stretched = db, true
		case db == 1:
			out[axis], stretched = da, true
		default:
			return nil, false, fmt.Errorf("%w: %v and %v differ on axis %d (%d vs %d)",
				ErrBroadcast, []int(a), []int(b), axis, da, db)
		}
	}
	return out, stretched, nil
}

// BroadcastAll broadcasts any number of shapes together. With no shapes the
// result is the scalar shape.
func BroadcastAll(shapes ...Shape) (Shape, error) {
	out := Shape{}
	for _, s := range shapes {
		next, _, err := BroadcastShapes(out, s)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// padded returns dimension axis of s left-padded with ones to rank.
func padded(s Shape, rank, axis int) int {
	i := axis - (rank - len(s))
	if i < 0 {
		return 1
	}
	return s[i]
}

// BroadcastStrides returns strides for reading a tensor of shape in as if it
// had shape out. Padded and stretched axes get stride 0 so every position
// along them reads the same element.
func BroadcastStrides(in, out Shape) []int {
	own := in.ComputeStrides()
	strides := make([]int, len(out))
	for axis := range out {
		i := axis - (len(out) - len(in))
		if i >= 0 && in[i] != 1 {
			strides[axis] = own[i]
		}
	}
	return strides
}

// FlatIndex converts flat position pos of the broadcast output into the flat
// position of the input whose strides came from BroadcastStrides.
func FlatIndex(pos int, outStrides, inStrides []int) int {
	idx := 0
	for axis, stride := range outStrides {
		idx += pos / stride * inStrides[axis]
		pos %= stride
	}
	return idx
}
