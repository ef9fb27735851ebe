package ops

import "github.com/flint-ml/flint/internal/tensor"

// Element-wise unary math operations. Each forward delegates to the
// backend kernel; the VJP is the textbook local derivative contracted
// with the incoming gradient.

// sin: d(sin x)/dx = cos x.
func init() {
	register(Sin, Definition{
		NumInputs: 1,
		Forward:   unaryForward(Sin, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor { return b.Sin(x) }),
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			b := ctx.Backend
			return []*tensor.RawTensor{b.Mul(outputGrad, b.Cos(ctx.Inputs[0]))}, nil
		},
	})
}

// cos: d(cos x)/dx = -sin x.
func init() {
	register(Cos, Definition{
		NumInputs: 1,
		Forward:   unaryForward(Cos, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor { return b.Cos(x) }),
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			b := ctx.Backend
			return []*tensor.RawTensor{b.Neg(b.Mul(outputGrad, b.Sin(ctx.Inputs[0])))}, nil
		},
	})
}

// exp: d(e^x)/dx = e^x, reusing the forward output.
func init() {
	register(Exp, Definition{
		NumInputs: 1,
		Forward:   unaryForward(Exp, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor { return b.Exp(x) }),
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			return []*tensor.RawTensor{ctx.Backend.Mul(outputGrad, ctx.Output)}, nil
		},
	})
}

// log: d(ln x)/dx = 1/x.
func init() {
	register(Log, Definition{
		NumInputs: 1,
		Forward:   unaryForward(Log, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor { return b.Log(x) }),
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			return []*tensor.RawTensor{ctx.Backend.Div(outputGrad, ctx.Inputs[0])}, nil
		},
	})
}

// sqrt: d(√x)/dx = 1/(2√x), reusing the forward output.
func init() {
	register(Sqrt, Definition{
		NumInputs: 1,
		Forward:   unaryForward(Sqrt, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor { return b.Sqrt(x) }),
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			b := ctx.Backend
			return []*tensor.RawTensor{b.Div(outputGrad, b.MulScalar(ctx.Output, 2))}, nil
		},
	})
}

// neg: d(-x)/dx = -1.
func init() {
	register(Neg, Definition{
		NumInputs: 1,
		Forward:   unaryForward(Neg, func(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor { return b.Neg(x) }),
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			return []*tensor.RawTensor{ctx.Backend.Neg(outputGrad)}, nil
		},
	})
}

// unaryForward wraps a single-operand kernel with arity and dtype checks.
func unaryForward(tag Tag, kernel func(tensor.Backend, *tensor.RawTensor) *tensor.RawTensor) Forward {
	return func(ctx *Context) (*tensor.RawTensor, error) {
		if err := checkArity(tag, ctx, 1); err != nil {
			return nil, err
		}
		if err := checkFloat(tag, ctx.Inputs[0]); err != nil {
			return nil, err
		}
		return kernel(ctx.Backend, ctx.Inputs[0]), nil
	}
}
