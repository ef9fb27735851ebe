package autodiff

import (
	"github.com/flint-ml/flint/internal/autodiff/ops"
	"github.com/flint-ml/flint/internal/tensor"
)

// Named operation wrappers. Each records a node when any operand requires
// gradient; otherwise the result is a constant.

// Add performs element-wise addition with broadcasting.
func (g *Graph) Add(a, b *Value) (*Value, error) {
	return g.apply(ops.Add, &ops.Context{}, []*Value{a, b})
}

// Sub performs element-wise subtraction with broadcasting.
func (g *Graph) Sub(a, b *Value) (*Value, error) {
	return g.apply(ops.Sub, &ops.Context{}, []*Value{a, b})
}

// Mul performs element-wise multiplication with broadcasting.
func (g *Graph) Mul(a, b *Value) (*Value, error) {
	return g.apply(ops.Mul, &ops.Context{}, []*Value{a, b})
}

// Div performs element-wise division with broadcasting.
func (g *Graph) Div(a, b *Value) (*Value, error) {
	return g.apply(ops.Div, &ops.Context{}, []*Value{a, b})
}

// MatMul performs 2D matrix multiplication.
func (g *Graph) MatMul(a, b *Value) (*Value, error) {
	return g.apply(ops.MatMul, &ops.Context{}, []*Value{a, b})
}

// Transpose permutes dimensions; with no axes, reverses them all.
func (g *Graph) Transpose(x *Value, axes ...int) (*Value, error) {
	return g.apply(ops.Transpose, &ops.Context{Axes: axes}, []*Value{x})
}

// Reshape views the value under a new shape with the same element count.
func (g *Graph) Reshape(x *Value, shape tensor.Shape) (*Value, error) {
	return g.apply(ops.Reshape, &ops.Context{Shape: shape}, []*Value{x})
}

// Sum reduces all elements to a scalar.
func (g *Graph) Sum(x *Value) (*Value, error) {
	return g.apply(ops.Sum, &ops.Context{}, []*Value{x})
}

// SumDim sums along one dimension.
func (g *Graph) SumDim(x *Value, dim int, keepDim bool) (*Value, error) {
	return g.apply(ops.SumDim, &ops.Context{Dim: dim, KeepDim: keepDim}, []*Value{x})
}

// Mean reduces all elements to their scalar mean.
func (g *Graph) Mean(x *Value) (*Value, error) {
	return g.apply(ops.Mean, &ops.Context{}, []*Value{x})
}

// Sin computes the element-wise sine.
func (g *Graph) Sin(x *Value) (*Value, error) {
	return g.apply(ops.Sin, &ops.Context{}, []*Value{x})
}

// Cos computes the element-wise cosine.
func (g *Graph) Cos(x *Value) (*Value, error) {
	return g.apply(ops.Cos, &ops.Context{}, []*Value{x})
}

// Exp computes the element-wise exponential.
func (g *Graph) Exp(x *Value) (*Value, error) {
	return g.apply(ops.Exp, &ops.Context{}, []*Value{x})
}

// Log computes the element-wise natural logarithm.
func (g *Graph) Log(x *Value) (*Value, error) {
	return g.apply(ops.Log, &ops.Context{}, []*Value{x})
}

// Sqrt computes the element-wise square root.
func (g *Graph) Sqrt(x *Value) (*Value, error) {
	return g.apply(ops.Sqrt, &ops.Context{}, []*Value{x})
}

// Neg computes the element-wise negation.
func (g *Graph) Neg(x *Value) (*Value, error) {
	return g.apply(ops.Neg, &ops.Context{}, []*Value{x})
}

// AddScalar adds a scalar constant element-wise.
func (g *Graph) AddScalar(x *Value, c float64) (*Value, error) {
	return g.apply(ops.AddScalar, &ops.Context{Scalar: c}, []*Value{x})
}

// MulScalar multiplies by a scalar constant element-wise.
func (g *Graph) MulScalar(x *Value, c float64) (*Value, error) {
	return g.apply(ops.MulScalar, &ops.Context{Scalar: c}, []*Value{x})
}

// PowScalar raises elements to a scalar exponent.
func (g *Graph) PowScalar(x *Value, exponent float64) (*Value, error) {
	return g.apply(ops.PowScalar, &ops.Context{Scalar: exponent}, []*Value{x})
}

// Select chooses elements from x where cond is true, else from y. The
// condition carries no gradient; each element's gradient is routed to the
// branch actually taken.
func (g *Graph) Select(cond, x, y *Value) (*Value, error) {
	return g.apply(ops.Select, &ops.Context{}, []*Value{cond, x, y})
}

// Dropout applies inverted dropout with rate p in training mode and is the
// identity in evaluation mode.
func (g *Graph) Dropout(x *Value, p float64) (*Value, error) {
	return g.apply(ops.Dropout, &ops.Context{Scalar: p}, []*Value{x})
}
