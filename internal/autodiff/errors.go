package autodiff

import "github.com/pkg/errors"

// Error taxonomy for the autodiff contract. All are programming-contract
// violations detected synchronously: a backward pass either fully succeeds
// or fails atomically with one of these, leaving no partial gradient state.
// Match with errors.Is; returned errors may carry wrapped detail.
var (
	// ErrNotDifferentiable: backward called on a value that does not
	// require gradient.
	ErrNotDifferentiable = errors.New("value does not require gradient")

	// ErrAmbiguousHeadGradient: backward called on a non-scalar value
	// without an explicit head gradient.
	ErrAmbiguousHeadGradient = errors.New("non-scalar value requires an explicit head gradient")

	// ErrShapeMismatch: a head gradient or a backward-rule-produced
	// gradient does not match the expected shape.
	ErrShapeMismatch = errors.New("gradient shape mismatch")

	// ErrGraphConsumed: second backward over a graph whose nodes were
	// released by a previous pass without retainGraph.
	ErrGraphConsumed = errors.New("graph already consumed (run backward with retainGraph to keep it)")

	// ErrInvalidPayload: leaf construction from a nil or malformed payload.
	ErrInvalidPayload = errors.New("invalid payload")
)
