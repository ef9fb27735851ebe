package ops

import "github.com/flint-ml/flint/internal/tensor"

// Element-wise operations against a scalar constant held in ctx.Scalar.
// The constant is not a graph input and receives no gradient.

// add_scalar: output = x + c. Backward: grad_x = outputGrad.
func init() {
	register(AddScalar, Definition{
		NumInputs: 1,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(AddScalar, ctx, 1); err != nil {
				return nil, err
			}
			if err := checkFloat(AddScalar, ctx.Inputs[0]); err != nil {
				return nil, err
			}
			return ctx.Backend.AddScalar(ctx.Inputs[0], ctx.Scalar), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			return []*tensor.RawTensor{outputGrad}, nil
		},
	})
}

// mul_scalar: output = c * x. Backward: grad_x = c * outputGrad.
func init() {
	register(MulScalar, Definition{
		NumInputs: 1,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(MulScalar, ctx, 1); err != nil {
				return nil, err
			}
			if err := checkFloat(MulScalar, ctx.Inputs[0]); err != nil {
				return nil, err
			}
			return ctx.Backend.MulScalar(ctx.Inputs[0], ctx.Scalar), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			return []*tensor.RawTensor{ctx.Backend.MulScalar(outputGrad, ctx.Scalar)}, nil
		},
	})
}

// pow_scalar: output = x^c. Backward: grad_x = outputGrad * c * x^(c-1).
func init() {
	register(PowScalar, Definition{
		NumInputs: 1,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(PowScalar, ctx, 1); err != nil {
				return nil, err
			}
			if err := checkFloat(PowScalar, ctx.Inputs[0]); err != nil {
				return nil, err
			}
			return ctx.Backend.PowScalar(ctx.Inputs[0], ctx.Scalar), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			b := ctx.Backend
			local := b.MulScalar(b.PowScalar(ctx.Inputs[0], ctx.Scalar-1), ctx.Scalar)
			return []*tensor.RawTensor{b.Mul(outputGrad, local)}, nil
		},
	})
}
