package cpu

import (
	"fmt"

	"github.com/flint-ml/flint/internal/tensor"
)

// Sum reduces all elements to a scalar (empty shape).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		var sum float32
		for _, v := range x.AsFloat32() {
			sum += v
		}
		result.AsFloat32()[0] = sum
	case tensor.Float64:
		var sum float64
		for _, v := range x.AsFloat64() {
			sum += v
		}
		result.AsFloat64()[0] = sum
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s (only float32/float64)", x.DType()))
	}

	return result
}

// SumDim reduces along one dimension. With keepDim the reduced dimension
// stays as size 1, otherwise it is removed.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("sumdim: dimension %d out of range for %dD tensor", dim, ndim))
	}

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, ndim-1)
		for i, d := range shape {
			if i != dim {
				outShape = append(outShape, d)
			}
		}
	}

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sumdim: %v", err))
	}

	// outer × reduced × inner decomposition of the flat layout.
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < ndim; i++ {
		inner *= shape[i]
	}
	reduced := shape[dim]

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for o := 0; o < outer; o++ {
			for r := 0; r < reduced; r++ {
				base := (o*reduced + r) * inner
				out := o * inner
				for i := 0; i < inner; i++ {
					dst[out+i] += src[base+i]
				}
			}
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for o := 0; o < outer; o++ {
			for r := 0; r < reduced; r++ {
				base := (o*reduced + r) * inner
				out := o * inner
				for i := 0; i < inner; i++ {
					dst[out+i] += src[base+i]
				}
			}
		}
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s (only float32/float64)", x.DType()))
	}

	return result
}
