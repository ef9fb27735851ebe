// Package ops defines the differentiable operations: for each operation
// tag, a forward evaluator and a vector-Jacobian-product rule.
//
// The forward evaluator is a pure function from input payloads to an output
// payload; the VJP rule maps (saved context, incoming gradient) to one
// gradient per input, nil for inputs that carry no gradient. Both are
// resolved from the registry at node-creation time, never during backward.
package ops

import (
	"github.com/pkg/errors"

	"github.com/flint-ml/flint/internal/tensor"
)

// Tag identifies an operation kind.
type Tag string

// Registered operation tags.
const (
	Add       Tag = "add"
	Sub       Tag = "sub"
	Mul       Tag = "mul"
	Div       Tag = "div"
	MatMul    Tag = "matmul"
	Transpose Tag = "transpose"
	Reshape   Tag = "reshape"
	Sum       Tag = "sum"
	SumDim    Tag = "sumdim"
	Mean      Tag = "mean"
	Sin       Tag = "sin"
	Cos       Tag = "cos"
	Exp       Tag = "exp"
	Log       Tag = "log"
	Sqrt      Tag = "sqrt"
	Neg       Tag = "neg"
	AddScalar Tag = "add_scalar"
	MulScalar Tag = "mul_scalar"
	PowScalar Tag = "pow_scalar"
	Select    Tag = "select"
	Dropout   Tag = "dropout"
)

// Context is the saved-for-backward record of one executed operation.
// Forward fills Output (and Saved, when the VJP needs derived quantities
// like a dropout mask); the attribute fields are set by the caller before
// Forward runs.
type Context struct {
	Backend tensor.Backend
	Inputs  []*tensor.RawTensor
	Output  *tensor.RawTensor
	Saved   []*tensor.RawTensor

	// Operation attributes. Which fields are meaningful depends on the tag.
	Dim      int          // sumdim
	KeepDim  bool         // sumdim
	Axes     []int        // transpose
	Shape    tensor.Shape // reshape target; original shape saved by forward
	Scalar   float64      // scalar operand, exponent, or dropout rate
	Training bool         // mode flag snapshot, read by mode-sensitive ops
}

// Forward computes the operation's output payload from ctx.Inputs.
type Forward func(ctx *Context) (*tensor.RawTensor, error)

// VJP computes one gradient per input from the incoming output gradient.
// Entries are nil for inputs that do not participate in differentiation.
type VJP func(ctx *Context, outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error)

// Definition pairs an operation's forward evaluator with its backward rule.
type Definition struct {
	NumInputs int
	Forward   Forward
	VJP       VJP
}

var registry = map[Tag]Definition{}

// register adds an operation definition. Called from per-op init functions;
// duplicate registration is a programming error.
func register(tag Tag, def Definition) {
	if _, ok := registry[tag]; ok {
		panic("ops: duplicate registration for " + string(tag))
	}
	registry[tag] = def
}

// Lookup returns the definition for a tag.
func Lookup(tag Tag) (Definition, error) {
	def, ok := registry[tag]
	if !ok {
		return Definition{}, errors.Errorf("ops: unknown operation %q", tag)
	}
	return def, nil
}

// Tags returns all registered operation tags.
func Tags() []Tag {
	tags := make([]Tag, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	return tags
}

// checkArity validates the input count for a tag.
func checkArity(tag Tag, ctx *Context, want int) error {
	if len(ctx.Inputs) != want {
		return errors.Errorf("%s: expected %d inputs, got %d", tag, want, len(ctx.Inputs))
	}
	return nil
}

// checkBroadcastable validates that two operands broadcast together.
func checkBroadcastable(tag Tag, a, b *tensor.RawTensor) error {
	if _, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape()); err != nil {
		return errors.WithMessagef(err, "%s", tag)
	}
	if a.DType() != b.DType() {
		return errors.Errorf("%s: dtype mismatch: %s vs %s", tag, a.DType(), b.DType())
	}
	return nil
}

// checkFloat validates that an operand has a computable float dtype.
func checkFloat(tag Tag, x *tensor.RawTensor) error {
	if x.DType() != tensor.Float32 && x.DType() != tensor.Float64 {
		return errors.Errorf("%s: unsupported dtype %s (only float32/float64)", tag, x.DType())
	}
	return nil
}
