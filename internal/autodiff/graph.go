// Package autodiff implements reverse-mode automatic differentiation over
// a dynamically recorded computation graph.
//
// A Graph is an arena of operation nodes built implicitly as operations
// execute on Values. Host control flow (loops, branches) needs no special
// handling: each taken operation appends one node, so the recorded graph
// is exactly the path the program executed, rebuilt fresh per invocation.
// Backward walks that record from a chosen output to the leaves, applying
// each node's vector-Jacobian-product rule and accumulating gradients.
//
// Usage:
//
//	g := autodiff.NewGraph(cpu.New())
//	x, _ := g.Leaf(payload, true)
//	y, _ := g.Mul(x, x)
//	err := g.Backward(y, nil, false)
//	grad := x.Grad() // dy/dx = 2x
package autodiff

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/flint-ml/flint/internal/autodiff/ops"
	"github.com/flint-ml/flint/internal/tensor"
)

// node records one executed elementary operation: its identity, operand
// Values, saved backward context and the VJP rule resolved at creation
// time. Nodes are immutable after creation except for release at the end
// of a non-retained backward pass.
type node struct {
	tag      ops.Tag
	inputs   []*Value
	out      *Value
	ctx      *ops.Context
	vjp      ops.VJP
	released bool
}

// Graph is one execution context: the node arena, the training/evaluation
// mode flag and the recording switch. A Graph must not be shared between
// goroutines without external synchronization; independent concurrent
// work should use independent Graphs.
type Graph struct {
	backend   tensor.Backend
	nodes     []*node
	mode      Mode
	recording bool
}

// NewGraph creates an empty graph computing through the given backend.
// Recording is on and the mode defaults to Evaluation.
func NewGraph(backend tensor.Backend) *Graph {
	return &Graph{
		backend:   backend,
		nodes:     make([]*node, 0, 64),
		recording: true,
	}
}

// Backend returns the kernel backend the graph computes through.
func (g *Graph) Backend() tensor.Backend {
	return g.backend
}

// SetMode sets the training/evaluation flag read by mode-sensitive
// operations. It persists until the next call.
func (g *Graph) SetMode(mode Mode) {
	g.mode = mode
}

// Mode returns the current training/evaluation flag.
func (g *Graph) Mode() Mode {
	return g.mode
}

// NumNodes returns the number of recorded nodes.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// Reset drops all recorded nodes, making the graph reusable for a fresh
// forward pass. Values produced before the reset keep their payloads but
// can no longer be differentiated.
func (g *Graph) Reset() {
	for _, n := range g.nodes {
		n.out.producer = -1
		n.ctx = nil
		n.released = true
	}
	g.nodes = g.nodes[:0]
}

// NoGrad runs fn with recording suspended: operations executed inside
// produce constant values with no producer, exactly as if every input had
// been detached.
func (g *Graph) NoGrad(fn func()) {
	prev := g.recording
	g.recording = false
	defer func() { g.recording = prev }()
	fn()
}

// Leaf creates a leaf value from a payload. Gradients are accumulated
// into leaves with requiresGrad during backward passes.
func (g *Graph) Leaf(payload *tensor.RawTensor, requiresGrad bool) (*Value, error) {
	if payload == nil {
		return nil, errors.WithMessage(ErrInvalidPayload, "nil payload")
	}
	if payload.NumElements() == 0 {
		return nil, errors.WithMessagef(ErrInvalidPayload, "empty payload with shape %v", payload.Shape())
	}
	if requiresGrad && payload.DType() != tensor.Float32 && payload.DType() != tensor.Float64 {
		return nil, errors.WithMessagef(ErrInvalidPayload,
			"dtype %s cannot accumulate gradients (only float32/float64)", payload.DType())
	}

	return &Value{
		graph:    g,
		payload:  payload,
		producer: -1,
		requires: requiresGrad,
	}, nil
}

// Constant creates a leaf that never receives gradients.
func (g *Graph) Constant(payload *tensor.RawTensor) (*Value, error) {
	return g.Leaf(payload, false)
}

// Apply executes the operation registered under tag on the given inputs.
// The named wrappers (Add, MatMul, ...) are the usual entry points; Apply
// is the seam for operations with no dedicated wrapper.
func (g *Graph) Apply(tag ops.Tag, inputs ...*Value) (*Value, error) {
	return g.apply(tag, &ops.Context{}, inputs)
}

// apply runs one operation: forward evaluation, then node recording when
// any input requires gradient and recording is on.
func (g *Graph) apply(tag ops.Tag, ctx *ops.Context, inputs []*Value) (*Value, error) {
	def, err := ops.Lookup(tag)
	if err != nil {
		return nil, err
	}

	payloads := make([]*tensor.RawTensor, len(inputs))
	track := false
	for i, in := range inputs {
		if in == nil {
			return nil, errors.Errorf("%s: nil input at index %d", tag, i)
		}
		if in.graph != g {
			return nil, errors.Errorf("%s: input %d belongs to a different graph", tag, i)
		}
		payloads[i] = in.payload
		track = track || in.requires
	}

	ctx.Backend = g.backend
	ctx.Inputs = payloads
	ctx.Training = g.mode == Training

	out, err := def.Forward(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Output = out

	result := &Value{
		graph:    g,
		payload:  out,
		producer: -1,
	}

	// No differentiable input: the result is a constant and no node is
	// recorded. This is what makes Detach and NoGrad regions free.
	if !track || !g.recording {
		return result, nil
	}

	result.requires = true
	result.producer = len(g.nodes)
	g.nodes = append(g.nodes, &node{
		tag:    tag,
		inputs: append([]*Value(nil), inputs...),
		out:    result,
		ctx:    ctx,
		vjp:    def.VJP,
	})
	klog.V(2).Infof("autodiff: recorded node %d: %s%v -> %v", result.producer, tag, shapesOf(payloads), out.Shape())

	return result, nil
}

func shapesOf(payloads []*tensor.RawTensor) []tensor.Shape {
	shapes := make([]tensor.Shape, len(payloads))
	for i, p := range payloads {
		shapes[i] = p.Shape()
	}
	return shapes
}
