package tensor

import "fmt"

// FromSlice creates a RawTensor from a Go slice and shape.
// The slice length must match the shape's element count.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	var dummy T
	dtype := inferDataType(dummy)

	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}

	switch src := any(data).(type) {
	case []float32:
		copy(raw.AsFloat32(), src)
	case []float64:
		copy(raw.AsFloat64(), src)
	case []int32:
		copy(raw.AsInt32(), src)
	case []int64:
		copy(raw.AsInt64(), src)
	case []uint8:
		copy(raw.AsUint8(), src)
	case []bool:
		copy(raw.AsBool(), src)
	}

	return raw, nil
}

// Scalar creates a zero-dimensional tensor holding a single value.
func Scalar[T DType](value T, device Device) (*RawTensor, error) {
	return FromSlice([]T{value}, Shape{}, device)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return NewRaw(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
// Only float32 and float64 are supported.
func Ones(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return Full(shape, 1.0, dtype, device)
}

// Full creates a tensor filled with the given value.
// Only float32 and float64 are supported.
func Full(shape Shape, value float64, dtype DataType, device Device) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}

	switch dtype {
	case Float32:
		dst := raw.AsFloat32()
		v := float32(value)
		for i := range dst {
			dst[i] = v
		}
	case Float64:
		dst := raw.AsFloat64()
		for i := range dst {
			dst[i] = value
		}
	default:
		return nil, fmt.Errorf("full: unsupported dtype %s (only float32/float64)", dtype)
	}

	return raw, nil
}

// OnesLike creates a ones tensor with the same shape, dtype and device as t.
func OnesLike(t *RawTensor) (*RawTensor, error) {
	return Ones(t.Shape(), t.DType(), t.Device())
}

// ZerosLike creates a zeros tensor with the same shape, dtype and device as t.
func ZerosLike(t *RawTensor) (*RawTensor, error) {
	return NewRaw(t.Shape(), t.DType(), t.Device())
}

// Arange creates a 1D float tensor with values [start, start+1, ..., end-1].
func Arange(start, end int, dtype DataType, device Device) (*RawTensor, error) {
	if end <= start {
		return nil, fmt.Errorf("arange: end %d must be greater than start %d", end, start)
	}

	n := end - start
	raw, err := NewRaw(Shape{n}, dtype, device)
	if err != nil {
		return nil, err
	}

	switch dtype {
	case Float32:
		dst := raw.AsFloat32()
		for i := range dst {
			dst[i] = float32(start + i)
		}
	case Float64:
		dst := raw.AsFloat64()
		for i := range dst {
			dst[i] = float64(start + i)
		}
	default:
		return nil, fmt.Errorf("arange: unsupported dtype %s (only float32/float64)", dtype)
	}

	return raw, nil
}
