package ops

import "github.com/flint-ml/flint/internal/tensor"

// mul: output = a * b, element-wise with broadcasting.
//
// Backward:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a
func init() {
	register(Mul, Definition{
		NumInputs: 2,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(Mul, ctx, 2); err != nil {
				return nil, err
			}
			if err := checkBroadcastable(Mul, ctx.Inputs[0], ctx.Inputs[1]); err != nil {
				return nil, err
			}
			return ctx.Backend.Mul(ctx.Inputs[0], ctx.Inputs[1]), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			a, b := ctx.Inputs[0], ctx.Inputs[1]
			gradA := reduceBroadcast(ctx.Backend, ctx.Backend.Mul(outputGrad, b), a.Shape())
			gradB := reduceBroadcast(ctx.Backend, ctx.Backend.Mul(outputGrad, a), b.Shape())
			return []*tensor.RawTensor{gradA, gradB}, nil
		},
	})
}
