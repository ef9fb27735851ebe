package cpu

import (
	"fmt"

	"github.com/flint-ml/flint/internal/tensor"
)

// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions do not match: %v @ %v", aShape, bShape))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	result, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		matmulFloat32(a.AsFloat32(), b.AsFloat32(), result.AsFloat32(), m, k, n)
	case tensor.Float64:
		matmulFloat64(a.AsFloat64(), b.AsFloat64(), result.AsFloat64(), m, k, n)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s (only float32/float64)", a.DType()))
	}

	return result
}

// matmulFloat32 uses the ikj loop order so the inner loop walks both
// operands sequentially.
func matmulFloat32(a, b, c []float32, m, k, n int) {
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			av := a[i*k+p]
			if av == 0 {
				continue
			}
			bRow := b[p*n : (p+1)*n]
			cRow := c[i*n : (i+1)*n]
			for j, bv := range bRow {
				cRow[j] += av * bv
			}
		}
	}
}

func matmulFloat64(a, b, c []float64, m, k, n int) {
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			av := a[i*k+p]
			if av == 0 {
				continue
			}
			bRow := b[p*n : (p+1)*n]
			cRow := c[i*n : (i+1)*n]
			for j, bv := range bRow {
				cRow[j] += av * bv
			}
		}
	}
}

// Reshape returns a tensor with the same data under a new shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	// Copy rather than view: downstream kernels assume non-aliased results.
	result, err := t.Clone().WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose permutes tensor dimensions. With no axes given, all dimensions
// are reversed (the usual matrix transpose for 2D tensors).
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %dD tensor", len(axes), ndim))
	}

	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: axis %d out of range for %dD tensor", ax, ndim))
		}
		outShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(outShape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	// Gather: out[idx] = in[permuted idx].
	srcStrides := shape.ComputeStrides()
	idx := make([]int, ndim)
	n := t.NumElements()

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := 0; i < n; i++ {
			off := 0
			for d, ax := range axes {
				off += idx[d] * srcStrides[ax]
			}
			dst[i] = src[off]
			nextIndex(idx, outShape)
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := 0; i < n; i++ {
			off := 0
			for d, ax := range axes {
				off += idx[d] * srcStrides[ax]
			}
			dst[i] = src[off]
			nextIndex(idx, outShape)
		}
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s (only float32/float64)", t.DType()))
	}

	return result
}

// Expand broadcasts a tensor to a larger shape by materializing the
// repeated elements.
func (cpu *CPUBackend) Expand(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	outShape, _, err := tensor.BroadcastShapes(t.Shape(), shape)
	if err != nil || !outShape.Equal(shape) {
		panic(fmt.Sprintf("expand: cannot broadcast %v to %v", t.Shape(), shape))
	}

	result, err := tensor.NewRaw(shape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("expand: %v", err))
	}

	strides := broadcastStrides(t.Shape(), shape)
	idx := make([]int, len(shape))

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := range dst {
			dst[i] = src[offsetOf(idx, strides)]
			nextIndex(idx, shape)
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := range dst {
			dst[i] = src[offsetOf(idx, strides)]
			nextIndex(idx, shape)
		}
	default:
		panic(fmt.Sprintf("expand: unsupported dtype %s (only float32/float64)", t.DType()))
	}

	return result
}
