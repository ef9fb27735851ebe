package autodiff_test

import (
	"errors"
	"testing"

	"github.com/flint-ml/flint/internal/autodiff"
	"github.com/flint-ml/flint/internal/backend/cpu"
	"github.com/flint-ml/flint/internal/tensor"
)

func newGraph() *autodiff.Graph {
	return autodiff.NewGraph(cpu.New())
}

func mustSum(t *testing.T, g *autodiff.Graph, v *autodiff.Value) *autodiff.Value {
	t.Helper()
	s, err := g.Sum(v)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	return s
}

func leafFloat32(t *testing.T, g *autodiff.Graph, data []float32, shape tensor.Shape, requiresGrad bool) *autodiff.Value {
	t.Helper()
	payload, err := tensor.FromSlice(data, shape, tensor.CPU)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	v, err := g.Leaf(payload, requiresGrad)
	if err != nil {
		t.Fatalf("Leaf: %v", err)
	}
	return v
}

// TestLeaf_NilPayload tests that a nil payload is rejected.
func TestLeaf_NilPayload(t *testing.T) {
	g := newGraph()
	_, err := g.Leaf(nil, true)
	if !errors.Is(err, autodiff.ErrInvalidPayload) {
		t.Errorf("Leaf(nil) error = %v, want ErrInvalidPayload", err)
	}
}

// TestLeaf_NonFloatRequiresGrad tests that integer payloads cannot require gradient.
func TestLeaf_NonFloatRequiresGrad(t *testing.T) {
	g := newGraph()
	payload, _ := tensor.FromSlice([]int32{1, 2}, tensor.Shape{2}, tensor.CPU)

	_, err := g.Leaf(payload, true)
	if !errors.Is(err, autodiff.ErrInvalidPayload) {
		t.Errorf("Leaf(int32, requiresGrad) error = %v, want ErrInvalidPayload", err)
	}

	// Without gradient requirements the same payload is a fine constant.
	if _, err := g.Leaf(payload, false); err != nil {
		t.Errorf("Leaf(int32, no grad) error = %v, want nil", err)
	}
}

// TestLeaf_Properties tests leaf flags and accessors.
func TestLeaf_Properties(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2, 3}, tensor.Shape{3}, true)

	if !x.IsLeaf() {
		t.Error("leaf value should report IsLeaf")
	}
	if !x.RequiresGrad() {
		t.Error("leaf created with requiresGrad should report RequiresGrad")
	}
	if x.Grad() != nil {
		t.Error("fresh leaf should have no gradient")
	}
	if !x.Shape().Equal(tensor.Shape{3}) {
		t.Errorf("Shape() = %v, want [3]", x.Shape())
	}
}

// TestApply_RecordsNodeOnlyWhenTracked tests the recording rule: a node is
// created iff any input requires gradient.
func TestApply_RecordsNodeOnlyWhenTracked(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2}, tensor.Shape{2}, true)
	c := leafFloat32(t, g, []float32{3, 4}, tensor.Shape{2}, false)

	y, err := g.Add(x, c)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if g.NumNodes() != 1 {
		t.Errorf("NumNodes() = %d after tracked op, want 1", g.NumNodes())
	}
	if !y.RequiresGrad() || y.IsLeaf() {
		t.Error("result of tracked op should require grad and have a producer")
	}

	z, err := g.Add(c, c)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if g.NumNodes() != 1 {
		t.Errorf("NumNodes() = %d after constant op, want 1 (no new node)", g.NumNodes())
	}
	if z.RequiresGrad() || !z.IsLeaf() {
		t.Error("result of constant op should be a constant")
	}
}

// TestDetach_SeversGraph tests that Detach produces an untracked constant
// sharing the payload.
func TestDetach_SeversGraph(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2}, tensor.Shape{2}, true)

	y, err := g.MulScalar(x, 2)
	if err != nil {
		t.Fatalf("MulScalar: %v", err)
	}

	d := y.Detach()
	if d.RequiresGrad() {
		t.Error("detached value should not require grad")
	}
	if !d.IsLeaf() {
		t.Error("detached value should have no producer")
	}
	if d.Payload() != y.Payload() {
		t.Error("detached value should share the payload")
	}
}

// TestNoGrad_SuspendsRecording tests the scoped recording suspension.
func TestNoGrad_SuspendsRecording(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2}, tensor.Shape{2}, true)

	var y *autodiff.Value
	g.NoGrad(func() {
		var err error
		y, err = g.Mul(x, x)
		if err != nil {
			t.Fatalf("Mul: %v", err)
		}
	})

	if g.NumNodes() != 0 {
		t.Errorf("NumNodes() = %d inside NoGrad, want 0", g.NumNodes())
	}
	if y.RequiresGrad() {
		t.Error("NoGrad result should be a constant")
	}

	// Recording resumes afterwards.
	if _, err := g.Mul(x, x); err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if g.NumNodes() != 1 {
		t.Errorf("NumNodes() = %d after NoGrad, want 1", g.NumNodes())
	}
}

// TestGraph_Reset tests that Reset clears recorded nodes.
func TestGraph_Reset(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2}, tensor.Shape{2}, true)

	y, err := g.Mul(x, x)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if g.NumNodes() != 1 {
		t.Fatalf("NumNodes() = %d, want 1", g.NumNodes())
	}

	g.Reset()
	if g.NumNodes() != 0 {
		t.Errorf("NumNodes() = %d after Reset, want 0", g.NumNodes())
	}
	if err := g.Backward(y, nil, false); !errors.Is(err, autodiff.ErrGraphConsumed) {
		t.Errorf("Backward after Reset error = %v, want ErrGraphConsumed", err)
	}
}

// TestMode_DefaultAndToggle tests the training/evaluation flag.
func TestMode_DefaultAndToggle(t *testing.T) {
	g := newGraph()
	if g.Mode() != autodiff.Evaluation {
		t.Errorf("default mode = %v, want evaluation", g.Mode())
	}
	g.SetMode(autodiff.Training)
	if g.Mode() != autodiff.Training {
		t.Errorf("mode after SetMode = %v, want training", g.Mode())
	}
}

// TestDropout_EvaluationIdentity tests that dropout is the identity in
// evaluation mode.
func TestDropout_EvaluationIdentity(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1, 2, 3, 4}, tensor.Shape{4}, true)

	y, err := g.Dropout(x, 0.5)
	if err != nil {
		t.Fatalf("Dropout: %v", err)
	}
	for i, v := range y.Payload().AsFloat32() {
		if v != x.Payload().AsFloat32()[i] {
			t.Errorf("evaluation dropout[%d] = %f, want %f", i, v, x.Payload().AsFloat32()[i])
		}
	}

	if err := g.Backward(mustSum(t, g, y), nil, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}
	for i, v := range x.Grad().AsFloat32() {
		if v != 1 {
			t.Errorf("evaluation dropout grad[%d] = %f, want 1", i, v)
		}
	}
}

// TestDropout_TrainingMaskAndGrad tests that training-mode dropout zeroes or
// scales each element, and routes gradient through the same mask.
func TestDropout_TrainingMaskAndGrad(t *testing.T) {
	g := newGraph()
	g.SetMode(autodiff.Training)
	x := leafFloat32(t, g, []float32{1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{8}, true)

	y, err := g.Dropout(x, 0.5)
	if err != nil {
		t.Fatalf("Dropout: %v", err)
	}

	out := y.Payload().AsFloat32()
	for i, v := range out {
		if v != 0 && v != 2 {
			t.Errorf("training dropout[%d] = %f, want 0 or 2 (survivors scaled by 1/(1-p))", i, v)
		}
	}

	if err := g.Backward(mustSum(t, g, y), nil, false); err != nil {
		t.Fatalf("Backward: %v", err)
	}
	for i, gv := range x.Grad().AsFloat32() {
		if gv != out[i] {
			t.Errorf("training dropout grad[%d] = %f, want %f (same mask as forward)", i, gv, out[i])
		}
	}
}

// TestApply_UnknownTag tests Apply with an unregistered tag.
func TestApply_UnknownTag(t *testing.T) {
	g := newGraph()
	x := leafFloat32(t, g, []float32{1}, tensor.Shape{1}, true)
	if _, err := g.Apply("no-such-op", x); err == nil {
		t.Error("Apply with unknown tag should fail")
	}
}

// TestApply_CrossGraphInput tests that values cannot cross graphs.
func TestApply_CrossGraphInput(t *testing.T) {
	g1, g2 := newGraph(), newGraph()
	x := leafFloat32(t, g1, []float32{1}, tensor.Shape{1}, true)
	y := leafFloat32(t, g2, []float32{1}, tensor.Shape{1}, true)

	if _, err := g1.Add(x, y); err == nil {
		t.Error("Add across graphs should fail")
	}
}
