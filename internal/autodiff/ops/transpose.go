package ops

import "github.com/flint-ml/flint/internal/tensor"

// transpose: output = permute(x, axes). Empty axes reverse all dimensions.
//
// Backward: the gradient is permuted back with the inverse axes, so
// grad_x[i] lands where x[i] came from.
func init() {
	register(Transpose, Definition{
		NumInputs: 1,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(Transpose, ctx, 1); err != nil {
				return nil, err
			}
			if err := checkFloat(Transpose, ctx.Inputs[0]); err != nil {
				return nil, err
			}
			return ctx.Backend.Transpose(ctx.Inputs[0], ctx.Axes...), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			axes := ctx.Axes
			ndim := len(ctx.Inputs[0].Shape())
			if len(axes) == 0 {
				// Reversal is its own inverse.
				return []*tensor.RawTensor{ctx.Backend.Transpose(outputGrad)}, nil
			}

			inverse := make([]int, ndim)
			for i, ax := range axes {
				inverse[ax] = i
			}
			return []*tensor.RawTensor{ctx.Backend.Transpose(outputGrad, inverse...)}, nil
		},
	})
}
