package ops

import (
	"github.com/pkg/errors"

	"github.com/flint-ml/flint/internal/tensor"
)

// select: output[i] = x[i] if condition[i] else y[i].
//
// Backward: gradient is routed through the branch actually taken and is
// zero elsewhere. The condition is boolean and receives no gradient.
//
//	grad_x = where(cond, outputGrad, 0)
//	grad_y = where(cond, 0, outputGrad)
func init() {
	register(Select, Definition{
		NumInputs: 3,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(Select, ctx, 3); err != nil {
				return nil, err
			}
			cond, x, y := ctx.Inputs[0], ctx.Inputs[1], ctx.Inputs[2]
			if cond.DType() != tensor.Bool {
				return nil, errors.Errorf("select: condition dtype is %s, not bool", cond.DType())
			}
			if !cond.Shape().Equal(x.Shape()) || !x.Shape().Equal(y.Shape()) {
				return nil, errors.Errorf("select: shape mismatch: cond %v, x %v, y %v",
					cond.Shape(), x.Shape(), y.Shape())
			}
			if err := checkFloat(Select, x); err != nil {
				return nil, err
			}
			return ctx.Backend.Where(cond, x, y), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			cond := ctx.Inputs[0]
			zeros, err := tensor.ZerosLike(outputGrad)
			if err != nil {
				return nil, err
			}
			gradX := ctx.Backend.Where(cond, outputGrad, zeros)
			gradY := ctx.Backend.Where(cond, zeros, outputGrad)
			return []*tensor.RawTensor{nil, gradX, gradY}, nil
		},
	})
}
