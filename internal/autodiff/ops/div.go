package ops

import "github.com/flint-ml/flint/internal/tensor"

// div: output = a / b, element-wise with broadcasting.
//
// Backward:
//   - d(a/b)/da = 1/b,     so grad_a = outputGrad / b
//   - d(a/b)/db = -a/b²,   so grad_b = -outputGrad * output / b
func init() {
	register(Div, Definition{
		NumInputs: 2,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(Div, ctx, 2); err != nil {
				return nil, err
			}
			if err := checkBroadcastable(Div, ctx.Inputs[0], ctx.Inputs[1]); err != nil {
				return nil, err
			}
			return ctx.Backend.Div(ctx.Inputs[0], ctx.Inputs[1]), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			backend := ctx.Backend
			a, b := ctx.Inputs[0], ctx.Inputs[1]

			gradA := reduceBroadcast(backend, backend.Div(outputGrad, b), a.Shape())

			// -outputGrad * (a/b) / b reuses the forward output for a/b².
			gradB := backend.Neg(backend.Div(backend.Mul(outputGrad, ctx.Output), b))
			gradB = reduceBroadcast(backend, gradB, b.Shape())

			return []*tensor.RawTensor{gradA, gradB}, nil
		},
	})
}
