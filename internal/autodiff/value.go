package autodiff

import "github.com/flint-ml/flint/internal/tensor"

// Value is a differentiable wrapper around a tensor payload.
//
// A Value is either a leaf (created by the caller via Graph.Leaf or
// Detach) or derived (produced by an operation, in which case it holds
// the arena index of its producer node). The gradient accumulator is
// written exclusively by the backward engine.
//
// Invariant: a Value with requiresGrad == false never has a producer and
// is treated as a constant during backward.
type Value struct {
	graph      *Graph
	payload    *tensor.RawTensor
	grad       *tensor.RawTensor
	producer   int // arena index of the producing node; -1 for leaves
	requires   bool
	retainGrad bool
}

// Payload returns the numeric payload.
func (v *Value) Payload() *tensor.RawTensor {
	return v.payload
}

// Shape returns the payload's shape.
func (v *Value) Shape() tensor.Shape {
	return v.payload.Shape()
}

// DType returns the payload's data type.
func (v *Value) DType() tensor.DataType {
	return v.payload.DType()
}

// RequiresGrad reports whether gradients flow into this value.
func (v *Value) RequiresGrad() bool {
	return v.requires
}

// IsLeaf reports whether the value was created directly by the caller
// rather than produced by a recorded operation.
func (v *Value) IsLeaf() bool {
	return v.producer < 0
}

// Grad returns the accumulated gradient, or nil when no backward pass has
// deposited one (including values with requiresGrad == false and
// intermediates that did not opt in via RetainGrad).
func (v *Value) Grad() *tensor.RawTensor {
	return v.grad
}

// RetainGrad opts a non-leaf value into keeping its gradient after a
// backward pass. Leaves always keep theirs.
func (v *Value) RetainGrad() {
	v.retainGrad = true
}

// ZeroGrad clears the accumulated gradient.
func (v *Value) ZeroGrad() {
	v.grad = nil
}

// Detach returns a new leaf sharing this value's payload with
// requiresGrad == false and no producer. It severs graph connectivity:
// no gradient ever flows through the detached value, however its numeric
// payload is reused downstream.
func (v *Value) Detach() *Value {
	return &Value{
		graph:    v.graph,
		payload:  v.payload,
		producer: -1,
	}
}

// Backward runs a backward pass from this value on its owning graph.
// See Graph.Backward.
func (v *Value) Backward(headGradient *tensor.RawTensor, retainGraph bool) error {
	return v.graph.Backward(v, headGradient, retainGraph)
}
