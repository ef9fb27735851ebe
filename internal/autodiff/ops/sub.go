package ops

import "github.com/flint-ml/flint/internal/tensor"

// sub: output = a - b, with broadcasting.
//
// Backward:
//   - grad_a = outputGrad
//   - grad_b = -outputGrad
func init() {
	register(Sub, Definition{
		NumInputs: 2,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(Sub, ctx, 2); err != nil {
				return nil, err
			}
			if err := checkBroadcastable(Sub, ctx.Inputs[0], ctx.Inputs[1]); err != nil {
				return nil, err
			}
			return ctx.Backend.Sub(ctx.Inputs[0], ctx.Inputs[1]), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			a, b := ctx.Inputs[0], ctx.Inputs[1]
			return []*tensor.RawTensor{
				reduceBroadcast(ctx.Backend, outputGrad, a.Shape()),
				reduceBroadcast(ctx.Backend, ctx.Backend.Neg(outputGrad), b.Shape()),
			}, nil
		},
	})
}
