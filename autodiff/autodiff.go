// Copyright 2026 Flint ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides the public API for reverse-mode automatic
// differentiation.
//
// Operations on Values are recorded as nodes of a dynamically built
// computation graph; Backward replays the record in reverse topological
// order, applying each operation's vector-Jacobian-product rule and
// accumulating gradients into the leaves.
//
// Example:
//
//	import (
//	    "github.com/flint-ml/flint/autodiff"
//	    "github.com/flint-ml/flint/backend/cpu"
//	    "github.com/flint-ml/flint/tensor"
//	)
//
//	func main() {
//	    g := autodiff.NewGraph(cpu.New())
//
//	    payload, _ := tensor.FromSlice([]float32{0, 1, 2, 3}, tensor.Shape{4, 1}, tensor.CPU)
//	    x, _ := g.Leaf(payload, true)
//
//	    // y = 2 * xᵀ @ x
//	    xt, _ := g.Transpose(x)
//	    xtx, _ := g.MatMul(xt, x)
//	    y, _ := g.MulScalar(xtx, 2)
//
//	    _ = g.Backward(y, nil, false)
//	    fmt.Println(x.Grad()) // 4 * x
//	}
package autodiff

import (
	"github.com/flint-ml/flint/internal/autodiff"
	"github.com/flint-ml/flint/internal/autodiff/ops"
	"github.com/flint-ml/flint/internal/tensor"
)

// Graph is one autodiff execution context: a node arena plus the
// training/evaluation mode flag.
type Graph = autodiff.Graph

// Value is a differentiable wrapper around a tensor payload.
type Value = autodiff.Value

// Mode is the training/evaluation flag read by mode-sensitive operations.
type Mode = autodiff.Mode

// Mode constants.
const (
	Evaluation Mode = autodiff.Evaluation
	Training   Mode = autodiff.Training
)

// Tag identifies an operation kind for Graph.Apply.
type Tag = ops.Tag

// Contract violation errors, matched with errors.Is.
var (
	ErrNotDifferentiable     = autodiff.ErrNotDifferentiable
	ErrAmbiguousHeadGradient = autodiff.ErrAmbiguousHeadGradient
	ErrShapeMismatch         = autodiff.ErrShapeMismatch
	ErrGraphConsumed         = autodiff.ErrGraphConsumed
	ErrInvalidPayload        = autodiff.ErrInvalidPayload
)

// NewGraph creates an empty graph computing through the given backend.
func NewGraph(backend tensor.Backend) *Graph {
	return autodiff.NewGraph(backend)
}
