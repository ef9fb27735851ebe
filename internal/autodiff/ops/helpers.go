package ops

import "github.com/flint-ml/flint/internal/tensor"

// reduceBroadcast reduces a gradient to the shape of the operand it belongs
// to, undoing any forward-pass broadcasting.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(backend tensor.Backend, grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	gradShape := grad.Shape()

	if gradShape.Equal(targetShape) {
		return grad
	}

	// Scalar target: collapse everything.
	if len(targetShape) == 0 {
		return backend.Sum(grad)
	}

	// Broadcasting aligns shapes from the right: sum away the extra leading
	// dimensions first.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Then sum along dimensions the operand held as size 1.
	for i, dim := range targetShape {
		if dim == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// broadcastTo expands a gradient back up to a larger operand shape.
// Used by reduction VJPs, where every input element received weight 1.
func broadcastTo(backend tensor.Backend, grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}
	return backend.Expand(grad, targetShape)
}

// keepDimShape rebuilds the keepDim-style shape of a reduction output, so a
// squeezed gradient can be broadcast against the input.
func keepDimShape(input tensor.Shape, dim int) tensor.Shape {
	shape := input.Clone()
	if dim < 0 {
		dim = len(shape) + dim
	}
	shape[dim] = 1
	return shape
}
