package tensor

// Backend is the kernel interface the autodiff core computes through.
// A backend supplies forward value computation only; derivative rules are
// expressed in the autodiff layer in terms of these same kernels.
//
// Kernels allocate their results and never mutate operands. Contract
// violations (incompatible shapes, unsupported dtypes) panic: the autodiff
// layer validates its own API surface before kernels run.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations.
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Expand(t *RawTensor, shape Shape) *RawTensor

	// Element-wise operations against a scalar constant.
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor
	PowScalar(x *RawTensor, exponent float64) *RawTensor

	// Element-wise unary math.
	Neg(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Sin(x *RawTensor) *RawTensor
	Cos(x *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Comparison (returns a Bool tensor) and conditional selection.
	Greater(a, b *RawTensor) *RawTensor
	Where(condition, x, y *RawTensor) *RawTensor

	// Type conversion.
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
