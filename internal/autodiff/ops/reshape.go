package ops

import (
	"github.com/pkg/errors"

	"github.com/flint-ml/flint/internal/tensor"
)

// reshape: output = x viewed under ctx.Shape.
//
// Backward: reshape the gradient back to the input's shape. Element order
// is unchanged, so no values move.
func init() {
	register(Reshape, Definition{
		NumInputs: 1,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(Reshape, ctx, 1); err != nil {
				return nil, err
			}
			x := ctx.Inputs[0]
			if ctx.Shape.NumElements() != x.NumElements() {
				return nil, errors.Errorf("reshape: cannot reshape %v to %v", x.Shape(), ctx.Shape)
			}
			return ctx.Backend.Reshape(x, ctx.Shape), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			return []*tensor.RawTensor{
				ctx.Backend.Reshape(outputGrad, ctx.Inputs[0].Shape()),
			}, nil
		},
	})
}
