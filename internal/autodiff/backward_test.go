package autodiff_test

import (
	"errors"
	"math"
	"testing"

	"github.com/flint-ml/flint/internal/autodiff"
	"github.com/flint-ml/flint/internal/tensor"
)

func assertFloat32s(t *testing.T, got *tensor.RawTensor, want []float32, context string) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: gradient is nil", context)
	}
	data := got.AsFloat32()
	if len(data) != len(want) {
		t.Fatalf("%s: gradient has %d elements, want %d", context, len(data), len(want))
	}
	for i, w := range want {
		if math.Abs(float64(data[i]-w)) > 1e-5 {
			t.Errorf("%s: gradient[%d] = %f, want %f", context, i, data[i], w)
		}
	}
}

// TestBackward_QuadraticForm tests y = 2·xᵀ·x, whose gradient is 4·x.
func TestBackward_QuadraticForm(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{0, 1, 2, 3}, tensor.Shape{4, 1}, true)

	xt, err := g.Transpose(x)
	if err != nil {
		t.Fatalf("Transpose: %v", err)
	}
	xtx, err := g.MatMul(xt, x)
	if err != nil {
		t.Fatalf("MatMul: %v", err)
	}
	y, err := g.MulScalar(xtx, 2)
	if err != nil {
		t.Fatalf("MulScalar: %v", err)
	}

	// y is [1,1]: a single element counts as scalar, no head gradient needed.
	if err := g.Backward(y, nil, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}

	assertFloat32s(t, x.Grad(), []float32{0, 4, 8, 12}, "d(2xᵀx)/dx")
}

// TestBackward_ControlFlow tests a piecewise-linear function whose graph
// depends on runtime values: b doubles until |b| reaches a threshold, then
// one of two branches scales it. Since f is locally linear in a,
// gradient(a) == f(a)/a exactly.
func TestBackward_ControlFlow(t *testing.T) {
	f := func(t *testing.T, a float32) (fa float32, grad float32) {
		t.Helper()
		g := newGraph()
		v := leafFloat32(t, g, []float32{a}, tensor.Shape{}, true)

		b := v
		for math.Abs(float64(b.Payload().AsFloat32()[0])) < 1000 {
			var err error
			b, err = g.MulScalar(b, 2)
			if err != nil {
				t.Fatalf("MulScalar: %v", err)
			}
		}

		c := b
		if b.Payload().AsFloat32()[0] <= 0 {
			var err error
			c, err = g.MulScalar(b, 100)
			if err != nil {
				t.Fatalf("MulScalar: %v", err)
			}
		}

		if err := g.Backward(c, nil, false); err != nil {
			t.Fatalf("Backward: %v", err)
		}
		return c.Payload().AsFloat32()[0], v.Grad().AsFloat32()[0]
	}

	for _, a := range []float32{0.5, -0.7, 3.14, -123} {
		fa, grad := f(t, a)
		if want := fa / a; grad != want {
			t.Errorf("a = %f: gradient = %f, want f(a)/a = %f", a, grad, want)
		}
	}
}

// TestBackward_HeadGradientChainRule tests y = 2x, z = y·x with an explicit
// head gradient h: gradient(x) must equal h ⊙ dz/dx = h ⊙ 4x.
func TestBackward_HeadGradientChainRule(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2, 3, 4}, tensor.Shape{4}, true)

	y, err := g.MulScalar(x, 2)
	if err != nil {
		t.Fatalf("MulScalar: %v", err)
	}
	z, err := g.Mul(y, x)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}

	head, err := tensor.FromSlice([]float32{10, 1, 0.1, 2}, tensor.Shape{4}, tensor.CPU)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if err := g.Backward(z, head, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}

	// h ⊙ 4x
	assertFloat32s(t, x.Grad(), []float32{40, 8, 1.2, 32}, "head-gradient chain rule")
}

// TestBackward_DiamondAccumulation tests that a value consumed by two
// downstream operations accumulates the sum of both paths' contributions.
func TestBackward_DiamondAccumulation(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2, 3}, tensor.Shape{3}, true)

	u, err := g.MulScalar(x, 2)
	if err != nil {
		t.Fatalf("MulScalar: %v", err)
	}
	v, err := g.MulScalar(x, 3)
	if err != nil {
		t.Fatalf("MulScalar: %v", err)
	}
	w, err := g.Add(u, v)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	s, err := g.Sum(w)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}

	if err := g.Backward(s, nil, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}

	// d(2x+3x)/dx = 5 per element, not 2 or 3.
	assertFloat32s(t, x.Grad(), []float32{5, 5, 5}, "diamond accumulation")
}

// TestBackward_SameOperandTwice tests a node consuming one value through
// both operands: y = x·x gives gradient 2x.
func TestBackward_SameOperandTwice(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1.5, -2, 4}, tensor.Shape{3}, true)

	y, err := g.Mul(x, x)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if err := g.Backward(mustSum(t, g, y), nil, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}

	assertFloat32s(t, x.Grad(), []float32{3, -4, 8}, "d(x²)/dx")
}

// TestBackward_DetachLaw tests that a detached value never receives a
// gradient, however often its payload is reused downstream.
func TestBackward_DetachLaw(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{2, 3}, tensor.Shape{2}, true)

	v, err := g.MulScalar(x, 2)
	if err != nil {
		t.Fatalf("MulScalar: %v", err)
	}
	d := v.Detach()

	// d is reused twice downstream; x also flows in directly.
	p, err := g.Mul(d, x)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	q, err := g.Mul(d, p)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if err := g.Backward(mustSum(t, g, q), nil, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}

	if d.Grad() != nil {
		t.Error("detached value received a gradient")
	}
	if v.Grad() != nil {
		t.Error("gradient flowed through a detached value to its origin")
	}
	// d = 2x numerically, q = d²·x, so dq/dx with d constant is d² = 4x².
	assertFloat32s(t, x.Grad(), []float32{16, 36}, "gradient with detached factor")
}

// TestBackward_GraphConsumed tests that a second pass over a non-retained
// graph fails, and that retention allows identical repeated passes.
func TestBackward_GraphConsumed(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2}, tensor.Shape{2}, true)
	y, err := g.Mul(x, x)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	s := mustSum(t, g, y)

	if err := g.Backward(s, nil, false); err != nil {
		t.Fatalf("first Backward: %v", err)
	}
	if err := g.Backward(s, nil, false); !errors.Is(err, autodiff.ErrGraphConsumed) {
		t.Errorf("second Backward error = %v, want ErrGraphConsumed", err)
	}
}

// TestBackward_RetainGraph tests retained re-runs produce identical gradients.
func TestBackward_RetainGraph(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2}, tensor.Shape{2}, true)
	y, err := g.Mul(x, x)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	s := mustSum(t, g, y)

	if err := g.Backward(s, nil, true); err != nil {
		t.Fatalf("first Backward: %v", err)
	}
	first := append([]float32(nil), x.Grad().AsFloat32()...)

	if err := g.Backward(s, nil, true); err != nil {
		t.Fatalf("second Backward: %v", err)
	}
	assertFloat32s(t, x.Grad(), first, "retained re-run")

	// A retained graph still honors a final non-retained pass.
	if err := g.Backward(s, nil, false); err != nil {
		t.Fatalf("third Backward: %v", err)
	}
	if err := g.Backward(s, nil, false); !errors.Is(err, autodiff.ErrGraphConsumed) {
		t.Errorf("Backward after release error = %v, want ErrGraphConsumed", err)
	}
}

// TestBackward_ScalarDefaultSeed tests that omitting the head gradient on a
// scalar target behaves exactly like passing ones.
func TestBackward_ScalarDefaultSeed(t *testing.T) {
	run := func(t *testing.T, head *tensor.RawTensor) []float32 {
		t.Helper()
		g := newGraph()
		x := leafFloat32(t, g, []float32{1, 2, 3}, tensor.Shape{3}, true)
		y, err := g.Mul(x, x)
		if err != nil {
			t.Fatalf("Mul: %v", err)
		}
		s := mustSum(t, g, y)
		if err := g.Backward(s, head, false); err != nil {
			t.Fatalf("Backward: %v", err)
		}
		return x.Grad().AsFloat32()
	}

	ones, err := tensor.Ones(tensor.Shape{}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("Ones: %v", err)
	}

	defaulted := run(t, nil)
	explicit := run(t, ones)
	for i := range defaulted {
		if defaulted[i] != explicit[i] {
			t.Errorf("gradient[%d]: default seed %f != explicit ones %f", i, defaulted[i], explicit[i])
		}
	}
}

// TestBackward_AmbiguousHeadGradient tests the non-scalar-without-head failure.
func TestBackward_AmbiguousHeadGradient(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2}, tensor.Shape{2}, true)
	y, err := g.Mul(x, x)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}

	if err := g.Backward(y, nil, false); !errors.Is(err, autodiff.ErrAmbiguousHeadGradient) {
		t.Errorf("Backward(non-scalar, nil head) error = %v, want ErrAmbiguousHeadGradient", err)
	}
	// The failed pass must not deposit anything.
	if x.Grad() != nil {
		t.Error("failed pass left a partial gradient")
	}
}

// TestBackward_NotDifferentiable tests backward on a constant.
func TestBackward_NotDifferentiable(t *testing.T) {
	g := newGraph()
	c := leafFloat32(t, g, []float32{1}, tensor.Shape{}, false)

	if err := g.Backward(c, nil, false); !errors.Is(err, autodiff.ErrNotDifferentiable) {
		t.Errorf("Backward(constant) error = %v, want ErrNotDifferentiable", err)
	}
}

// TestBackward_HeadShapeMismatch tests head gradient validation.
func TestBackward_HeadShapeMismatch(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2}, tensor.Shape{2}, true)
	y, err := g.Mul(x, x)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}

	head, err := tensor.Ones(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("Ones: %v", err)
	}
	if err := g.Backward(y, head, false); !errors.Is(err, autodiff.ErrShapeMismatch) {
		t.Errorf("Backward(bad head shape) error = %v, want ErrShapeMismatch", err)
	}
	if x.Grad() != nil {
		t.Error("failed pass left a partial gradient")
	}
}

// TestBackward_IntermediateGradients tests that intermediates discard their
// gradient by default and keep it after RetainGrad.
func TestBackward_IntermediateGradients(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{3}, tensor.Shape{}, true)

	y, err := g.MulScalar(x, 2)
	if err != nil {
		t.Fatalf("MulScalar: %v", err)
	}
	z, err := g.Mul(y, y)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	y.RetainGrad()

	if err := g.Backward(z, nil, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}

	// dz/dy = 2y = 12; dz/dx = 8x = 24.
	assertFloat32s(t, y.Grad(), []float32{12}, "retained intermediate")
	assertFloat32s(t, x.Grad(), []float32{24}, "leaf below retained intermediate")
	if z.Grad() != nil {
		t.Error("non-retained intermediate kept its gradient")
	}
}

// TestBackward_LeafTarget tests backward directly on a scalar leaf.
func TestBackward_LeafTarget(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{7}, tensor.Shape{}, true)

	if err := g.Backward(x, nil, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}
	assertFloat32s(t, x.Grad(), []float32{1}, "dx/dx")
}

// TestBackward_SelectRoutesGradient tests that select routes gradient only
// through the taken branch.
func TestBackward_SelectRoutesGradient(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2, 3, 4}, tensor.Shape{4}, true)
	y := leafFloat32(t, g, []float32{10, 20, 30, 40}, tensor.Shape{4}, true)

	condPayload, err := tensor.FromSlice([]bool{true, false, true, false}, tensor.Shape{4}, tensor.CPU)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	cond, err := g.Constant(condPayload)
	if err != nil {
		t.Fatalf("Constant: %v", err)
	}

	z, err := g.Select(cond, x, y)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := g.Backward(mustSum(t, g, z), nil, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}

	assertFloat32s(t, x.Grad(), []float32{1, 0, 1, 0}, "taken-branch gradient")
	assertFloat32s(t, y.Grad(), []float32{0, 1, 0, 1}, "untaken-branch gradient")
}

// TestBackward_Reductions tests gradients of sum, sumdim and mean.
func TestBackward_Reductions(t *testing.T) {
	t.Run("SumDim", func(t *testing.T) {
		g := newGraph()
		x := leafFloat32(t, g, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, true)

		s, err := g.SumDim(x, 1, false)
		if err != nil {
			t.Fatalf("SumDim: %v", err)
		}
		if !s.Shape().Equal(tensor.Shape{2}) {
			t.Fatalf("SumDim shape = %v, want [2]", s.Shape())
		}

		head, err := tensor.FromSlice([]float32{1, 10}, tensor.Shape{2}, tensor.CPU)
		if err != nil {
			t.Fatalf("FromSlice: %v", err)
		}
		if err := g.Backward(s, head, false); err != nil {
			t.Fatalf("Backward: %v", err)
		}
		assertFloat32s(t, x.Grad(), []float32{1, 1, 1, 10, 10, 10}, "sumdim broadcast-back")
	})

	t.Run("Mean", func(t *testing.T) {
		g := newGraph()
		x := leafFloat32(t, g, []float32{1, 2, 3, 4}, tensor.Shape{4}, true)

		m, err := g.Mean(x)
		if err != nil {
			t.Fatalf("Mean: %v", err)
		}
		if got := m.Payload().AsFloat32()[0]; got != 2.5 {
			t.Fatalf("Mean = %f, want 2.5", got)
		}
		if err := g.Backward(m, nil, false); err != nil {
			t.Fatalf("Backward: %v", err)
		}
		assertFloat32s(t, x.Grad(), []float32{0.25, 0.25, 0.25, 0.25}, "mean gradient")
	})
}

// TestBackward_BroadcastOperands tests gradient reduction over broadcast
// forward shapes.
func TestBackward_BroadcastOperands(t *testing.T) {
	g := newGraph()
	a := leafFloat32(t, g, []float32{1, 2, 3}, tensor.Shape{3, 1}, true)
	b := leafFloat32(t, g, []float32{10, 20, 30, 40}, tensor.Shape{4}, true)

	c, err := g.Mul(a, b) // [3,1] * [4] -> [3,4]
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if !c.Shape().Equal(tensor.Shape{3, 4}) {
		t.Fatalf("broadcast result shape = %v, want [3 4]", c.Shape())
	}

	if err := g.Backward(mustSum(t, g, c), nil, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}

	// grad_a[i] = Σ_j b[j] = 100; grad_b[j] = Σ_i a[i] = 6.
	assertFloat32s(t, a.Grad(), []float32{100, 100, 100}, "broadcast grad reduced to [3,1]")
	assertFloat32s(t, b.Grad(), []float32{6, 6, 6, 6}, "broadcast grad reduced to [4]")
}
