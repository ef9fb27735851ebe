package cpu

import "github.com/flint-ml/flint/internal/tensor"

// broadcastStrides returns the effective row-major strides of shape when
// read through outShape: broadcast dimensions (size 1 against a larger
// output dimension, or missing leading dimensions) get stride 0.
func broadcastStrides(shape, outShape tensor.Shape) []int {
	real := shape.ComputeStrides()
	strides := make([]int, len(outShape))
	offset := len(outShape) - len(shape)

	for i := range outShape {
		src := i - offset
		if src < 0 || (shape[src] == 1 && outShape[i] > 1) {
			strides[i] = 0
		} else {
			strides[i] = real[src]
		}
	}
	return strides
}

// offsetOf converts a multi-dimensional index to a flat offset.
func offsetOf(idx, strides []int) int {
	off := 0
	for i, v := range idx {
		off += v * strides[i]
	}
	return off
}

// nextIndex advances a multi-dimensional index in row-major order.
func nextIndex(idx []int, shape tensor.Shape) {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < shape[i] {
			return
		}
		idx[i] = 0
	}
}
