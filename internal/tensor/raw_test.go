package tensor

import (
	"testing"
)

func TestRawTensorAsInt64(t *testing.T) {
	raw, _ := NewRaw(Shape{3, 2}, Int64)
	data := raw.AsInt64()

	if len(data) != 6 {
		t.Errorf("AsInt64 length = %d, want 6", len(data))
	}

	// Modify and verify zero-copy
	data[0] = 42
	if raw.AsInt64()[0] != 42 {
		t.Error("AsInt64 should return zero-copy slice")
	}
}

func TestRawTensorAsBool(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Bool)
	data := raw.AsBool()

	if len(data) != 4 {
		t.Errorf("AsBool length = %d, want 4", len(data))
	}

	data[0] = true
	if raw.AsBool()[0] != true {
		t.Error("AsBool should return zero-copy slice")
	}
}

func TestRawTensorWrongViewPanics(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float32)
	defer func() {
		if recover() == nil {
			t.Error("AsFloat64 on a float32 tensor should panic")
		}
	}()
	_ = raw.AsFloat64()
}

func TestFromFloat64sLengthMismatch(t *testing.T) {
	if _, err := FromFloat64s([]float64{1, 2, 3}, Shape{2, 2}); err == nil {
		t.Error("expected error for 3 values in shape [2 2]")
	}
}

func TestRawTensorAtSetAt(t *testing.T) {
	for _, dt := range []DataType{Float32, Float64, Int32, Int64} {
		t.Run(dt.String(), func(t *testing.T) {
			raw, err := NewRaw(Shape{3}, dt)
			if err != nil {
				t.Fatal(err)
			}
			raw.SetAt(1, 7)
			if got := raw.At(1); got != 7 {
				t.Errorf("At(1) = %v, want 7", got)
			}
		})
	}
}

func TestRawTensorItem(t *testing.T) {
	f, _ := FromFloat64s([]float64{1.5}, Shape{})
	if got, ok := f.Item(0).(float64); !ok || got != 1.5 {
		t.Errorf("Item(0) = %#v, want float64 1.5", f.Item(0))
	}

	i, _ := FromInt64s([]int64{4}, Shape{1})
	if got, ok := i.Item(0).(int64); !ok || got != 4 {
		t.Errorf("Item(0) = %#v, want int64 4", i.Item(0))
	}
}

func TestRawTensorCast(t *testing.T) {
	src, _ := FromFloat64s([]float64{1.9, -2.5, 3}, Shape{3})

	out, err := src.Cast(Int64)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{1, -2, 3}
	for i, v := range out.AsInt64() {
		if v != want[i] {
			t.Errorf("Cast[%d] = %d, want %d", i, v, want[i])
		}
	}

	same, _ := src.Cast(Float64)
	same.AsFloat64()[0] = 100
	if src.AsFloat64()[0] != 1.9 {
		t.Error("Cast to the same dtype must copy")
	}
}

func TestRawTensorClone(t *testing.T) {
	src, _ := FromInt64s([]int64{1, 2}, Shape{2})
	c := src.Clone()
	c.AsInt64()[0] = 9
	if src.AsInt64()[0] != 1 {
		t.Error("Clone must not share memory")
	}
}

func TestRawTensorString(t *testing.T) {
	src, _ := FromInt64s([]int64{1, 2, 3, 4}, Shape{2, 2})
	if got, want := src.String(), "int64[2 2][1 2 3 4]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
