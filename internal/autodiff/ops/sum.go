package ops

import "github.com/flint-ml/flint/internal/tensor"

// sum: output = Σx over all elements (scalar result).
//
// Backward: every element contributed with weight 1, so the scalar
// gradient is broadcast back to the input shape.
func init() {
	register(Sum, Definition{
		NumInputs: 1,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(Sum, ctx, 1); err != nil {
				return nil, err
			}
			if err := checkFloat(Sum, ctx.Inputs[0]); err != nil {
				return nil, err
			}
			return ctx.Backend.Sum(ctx.Inputs[0]), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			return []*tensor.RawTensor{
				broadcastTo(ctx.Backend, outputGrad, ctx.Inputs[0].Shape()),
			}, nil
		},
	})
}

// mean: output = Σx / N (scalar result).
//
// Backward: broadcast and scale by 1/N.
func init() {
	register(Mean, Definition{
		NumInputs: 1,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(Mean, ctx, 1); err != nil {
				return nil, err
			}
			x := ctx.Inputs[0]
			if err := checkFloat(Mean, x); err != nil {
				return nil, err
			}
			return ctx.Backend.MulScalar(ctx.Backend.Sum(x), 1/float64(x.NumElements())), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			x := ctx.Inputs[0]
			grad := broadcastTo(ctx.Backend, outputGrad, x.Shape())
			return []*tensor.RawTensor{
				ctx.Backend.MulScalar(grad, 1/float64(x.NumElements())),
			}, nil
		},
	})
}
