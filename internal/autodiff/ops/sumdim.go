package ops

import (
	"github.com/pkg/errors"

	"github.com/flint-ml/flint/internal/tensor"
)

// sumdim: output = sum(x, dim), optionally keeping the reduced dimension.
//
// Backward: re-insert the reduced dimension when it was squeezed, then
// broadcast the gradient back to the input shape.
func init() {
	register(SumDim, Definition{
		NumInputs: 1,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(SumDim, ctx, 1); err != nil {
				return nil, err
			}
			x := ctx.Inputs[0]
			if err := checkFloat(SumDim, x); err != nil {
				return nil, err
			}
			ndim := len(x.Shape())
			dim := ctx.Dim
			if dim < 0 {
				dim = ndim + dim
			}
			if dim < 0 || dim >= ndim {
				return nil, errors.Errorf("sumdim: dimension %d out of range for %dD tensor", ctx.Dim, ndim)
			}
			return ctx.Backend.SumDim(x, dim, ctx.KeepDim), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			x := ctx.Inputs[0]
			grad := outputGrad
			if !ctx.KeepDim {
				grad = ctx.Backend.Reshape(grad, keepDimShape(x.Shape(), ctx.Dim))
			}
			return []*tensor.RawTensor{
				broadcastTo(ctx.Backend, grad, x.Shape()),
			}, nil
		},
	})
}
