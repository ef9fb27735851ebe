package ops

import (
	"github.com/pkg/errors"

	"github.com/flint-ml/flint/internal/tensor"
)

// matmul: output = a @ b for 2D operands.
//
// Backward:
//   - d(A@B)/dA = outputGrad @ B^T
//   - d(A@B)/dB = A^T @ outputGrad
func init() {
	register(MatMul, Definition{
		NumInputs: 2,
		Forward: func(ctx *Context) (*tensor.RawTensor, error) {
			if err := checkArity(MatMul, ctx, 2); err != nil {
				return nil, err
			}
			a, b := ctx.Inputs[0], ctx.Inputs[1]
			aShape, bShape := a.Shape(), b.Shape()
			if len(aShape) != 2 || len(bShape) != 2 {
				return nil, errors.Errorf("matmul: expected 2D operands, got %v and %v", aShape, bShape)
			}
			if aShape[1] != bShape[0] {
				return nil, errors.Errorf("matmul: inner dimensions do not match: %v @ %v", aShape, bShape)
			}
			if a.DType() != b.DType() {
				return nil, errors.Errorf("matmul: dtype mismatch: %s vs %s", a.DType(), b.DType())
			}
			return ctx.Backend.MatMul(a, b), nil
		},
		VJP: func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
			backend := ctx.Backend
			a, b := ctx.Inputs[0], ctx.Inputs[1]

			gradA := backend.MatMul(outputGrad, backend.Transpose(b))
			gradB := backend.MatMul(backend.Transpose(a), outputGrad)

			return []*tensor.RawTensor{gradA, gradB}, nil
		},
	})
}
