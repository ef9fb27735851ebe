package cpu

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/flint-ml/flint/internal/tensor"
)

// Cast converts a tensor to a different float data type. Float16 round-trips
// through IEEE 754 half-precision bit patterns.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}

	result, err := tensor.NewRaw(x.Shape(), dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cast: %v", err))
	}

	// Read source as float64.
	n := x.NumElements()
	src := make([]float64, n)
	switch x.DType() {
	case tensor.Float32:
		for i, v := range x.AsFloat32() {
			src[i] = float64(v)
		}
	case tensor.Float64:
		copy(src, x.AsFloat64())
	case tensor.Float16:
		for i, bits := range x.AsFloat16Bits() {
			src[i] = float64(float16.Frombits(bits).Float32())
		}
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %s", x.DType()))
	}

	switch dtype {
	case tensor.Float32:
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(v)
		}
	case tensor.Float64:
		copy(result.AsFloat64(), src)
	case tensor.Float16:
		dst := result.AsFloat16Bits()
		for i, v := range src {
			dst[i] = float16.Fromfloat32(float32(v)).Bits()
		}
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", dtype))
	}

	return result
}
