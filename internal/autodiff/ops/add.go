package ops

import "github.com/flint-ml/flint/internal/tensor"

// add: output = a + b, with broadcasting.
//
// Backward:
//   - d(a+b)/da = 1, so grad_a = outputGrad (reduced to a's shape)
//   - d(a+b)/db = 1, so grad_b = outputGrad (reduced to b's shape)
func init() {
	register(Add, Definition{
		NumInputs: 2,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(Add, ctx, 2); err != nil {
				return nil, err
			}
			if err := checkBroadcastable(Add, ctx.Inputs[0], ctx.Inputs[1]); err != nil {
				return nil, err
			}
			return ctx.Backend.Add(ctx.Inputs[0], ctx.Inputs[1]), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			a, b := ctx.Inputs[0], ctx.Inputs[1]
			return []*tensor.RawTensor{
				reduceBroadcast(ctx.Backend, outputGrad, a.Shape()),
				reduceBroadcast(ctx.Backend, outputGrad, b.Shape()),
			}, nil
		},
	})
}
