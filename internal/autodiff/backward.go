package autodiff

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/flint-ml/flint/internal/tensor"
)

// Backward propagates gradients from y to every reachable leaf.
//
// headGradient seeds the pass: it stands for "how the eventual scalar
// objective varies with y" and must match y's shape. When nil, y must be
// scalar and the seed defaults to ones, treating y itself as the loss.
//
// Contributions are additive: a value consumed by several downstream
// nodes receives the sum of every path's gradient. Only leaves (and
// values opted in via RetainGrad) keep their gradient after the pass;
// a repeated pass over the same nodes overwrites, it does not double.
//
// Unless retainGraph is set, every visited node is released afterwards
// and a second pass over it fails with ErrGraphConsumed.
//
// The pass is atomic: on any error no gradient accumulator is touched.
func (g *Graph) Backward(y *Value, headGradient *tensor.RawTensor, retainGraph bool) error {
	if y == nil {
		return errors.WithMessage(ErrNotDifferentiable, "backward: nil value")
	}
	if !y.requires {
		return errors.WithMessage(ErrNotDifferentiable, "backward")
	}

	seed, err := g.seedGradient(y, headGradient)
	if err != nil {
		return err
	}

	// Staged gradients: deposited per-Value during the pass, flushed into
	// the accumulators only on success.
	staged := map[*Value]*tensor.RawTensor{y: seed}

	if y.producer >= 0 {
		reached, err := g.reachableFrom(y.producer)
		if err != nil {
			return err
		}
		klog.V(2).Infof("autodiff: backward from node %d over %d reachable nodes (retain=%v)",
			y.producer, len(reached), retainGraph)

		if err := g.propagate(y.producer, reached, staged); err != nil {
			return err
		}
		if !retainGraph {
			for idx := range reached {
				n := g.nodes[idx]
				n.released = true
				n.ctx = nil
			}
		}
	}

	for v, grad := range staged {
		if (v.IsLeaf() && v.requires) || v.retainGrad {
			v.grad = grad.Clone()
		}
	}
	return nil
}

// seedGradient validates the head gradient, defaulting to ones for a
// scalar target.
func (g *Graph) seedGradient(y *Value, head *tensor.RawTensor) (*tensor.RawTensor, error) {
	if head == nil {
		if !y.payload.IsScalar() {
			return nil, errors.WithMessagef(ErrAmbiguousHeadGradient, "target shape %v", y.Shape())
		}
		seed, err := tensor.OnesLike(y.payload)
		if err != nil {
			return nil, err
		}
		return seed, nil
	}
	if !head.Shape().Equal(y.Shape()) {
		return nil, errors.WithMessagef(ErrShapeMismatch,
			"head gradient shape %v, target shape %v", head.Shape(), y.Shape())
	}
	if head.DType() != y.DType() {
		return nil, errors.WithMessagef(ErrShapeMismatch,
			"head gradient dtype %s, target dtype %s", head.DType(), y.DType())
	}
	return head, nil
}

// reachableFrom collects the node set reachable from root along input
// producer links, failing if any node was released by an earlier pass.
func (g *Graph) reachableFrom(root int) (map[int]bool, error) {
	reached := make(map[int]bool)
	stack := []int{root}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[idx] {
			continue
		}
		n := g.nodes[idx]
		if n.released {
			return nil, errors.WithMessagef(ErrGraphConsumed, "node %d (%s)", idx, n.tag)
		}
		reached[idx] = true
		for _, in := range n.inputs {
			if in.producer >= 0 && !reached[in.producer] {
				stack = append(stack, in.producer)
			}
		}
	}
	return reached, nil
}

// propagate runs the VJP rules in reverse topological order.
//
// Ordering is enforced by pending-consumer counts: a node's backward rule
// runs only once every reachable node consuming its output has fully
// deposited its contribution. This generalizes plain reverse-execution
// order to diamond-shaped graphs, where a value feeds multiple consumers.
func (g *Graph) propagate(root int, reached map[int]bool, staged map[*Value]*tensor.RawTensor) error {
	// pending[idx] = number of distinct reachable consumers of node idx's
	// output. The root has none within the reachable set.
	pending := make(map[int]int, len(reached))
	for idx := range reached {
		for _, p := range consumedProducers(g.nodes[idx], reached) {
			pending[p]++
		}
	}

	queue := []int{root}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		n := g.nodes[idx]

		outGrad, ok := staged[n.out]
		if !ok {
			return errors.Errorf("autodiff: internal: node %d (%s) scheduled without an output gradient", idx, n.tag)
		}

		grads, err := n.vjp(n.ctx, outGrad)
		if err != nil {
			return errors.WithMessagef(err, "backward through %s (node %d)", n.tag, idx)
		}
		if len(grads) != len(n.inputs) {
			return errors.Errorf("autodiff: internal: %s produced %d gradients for %d inputs",
				n.tag, len(grads), len(n.inputs))
		}

		for i, in := range n.inputs {
			grad := grads[i]
			if !in.requires || grad == nil {
				continue
			}
			if !grad.Shape().Equal(in.Shape()) {
				return errors.WithMessagef(ErrShapeMismatch,
					"%s input %d: gradient shape %v, operand shape %v", n.tag, i, grad.Shape(), in.Shape())
			}
			if existing, ok := staged[in]; ok {
				staged[in] = g.backend.Add(existing, grad)
			} else {
				staged[in] = grad
			}
		}

		for _, p := range consumedProducers(n, reached) {
			pending[p]--
			if pending[p] == 0 {
				queue = append(queue, p)
			}
		}
	}
	return nil
}

// consumedProducers returns the distinct reachable producer nodes feeding
// n's inputs. A node consuming the same value through two operands still
// counts as one consumer: its single VJP call deposits both contributions.
func consumedProducers(n *node, reached map[int]bool) []int {
	producers := make([]int, 0, len(n.inputs))
	for _, in := range n.inputs {
		if in.producer < 0 || !reached[in.producer] {
			continue
		}
		dup := false
		for _, p := range producers {
			if p == in.producer {
				dup = true
				break
			}
		}
		if !dup {
			producers = append(producers, in.producer)
		}
	}
	return producers
}
