package ops

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/flint-ml/flint/internal/tensor"
)

// dropout: in training mode, zero each element with probability p and scale
// survivors by 1/(1-p) (inverted dropout); in evaluation mode, identity.
// ctx.Training is the mode snapshot taken when the operation ran, so the
// backward rule replays the branch the forward pass took.
//
// Backward: the saved mask routes gradient only through surviving elements.
func init() {
	register(Dropout, Definition{
		NumInputs: 1,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(Dropout, ctx, 1); err != nil {
				return nil, err
			}
			x := ctx.Inputs[0]
			if err := checkFloat(Dropout, x); err != nil {
				return nil, err
			}
			p := ctx.Scalar
			if p < 0 || p >= 1 {
				return nil, errors.Errorf("dropout: rate %v out of range [0, 1)", p)
			}

			if !ctx.Training || p == 0 {
				return x.Clone(), nil
			}

			mask, err := tensor.NewRaw(x.Shape(), x.DType(), x.Device())
			if err != nil {
				return nil, err
			}
			scale := 1 / (1 - p)
			switch x.DType() {
			case tensor.Float32:
				m := mask.AsFloat32()
				for i := range m {
					if rand.Float64() >= p {
						m[i] = float32(scale)
					}
				}
			case tensor.Float64:
				m := mask.AsFloat64()
				for i := range m {
					if rand.Float64() >= p {
						m[i] = scale
					}
				}
			}
			ctx.Saved = append(ctx.Saved, mask)
			return ctx.Backend.Mul(x, mask), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			if len(ctx.Saved) == 0 {
				// Evaluation mode or p == 0: identity.
				return []*tensor.RawTensor{outputGrad}, nil
			}
			return []*tensor.RawTensor{ctx.Backend.Mul(outputGrad, ctx.Saved[0])}, nil
		},
	})
}
