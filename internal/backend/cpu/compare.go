package cpu

import (
	"fmt"

	"github.com/flint-ml/flint/internal/tensor"
)

// Greater performs element-wise a > b, returning a Bool tensor.
func (cpu *CPUBackend) Greater(a, b *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("greater: shape mismatch: %v vs %v", a.Shape(), b.Shape()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("greater: dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}

	result, err := tensor.NewRaw(a.Shape(), tensor.Bool, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("greater: %v", err))
	}
	dst := result.AsBool()

	switch a.DType() {
	case tensor.Float32:
		ad, bd := a.AsFloat32(), b.AsFloat32()
		for i := range dst {
			dst[i] = ad[i] > bd[i]
		}
	case tensor.Float64:
		ad, bd := a.AsFloat64(), b.AsFloat64()
		for i := range dst {
			dst[i] = ad[i] > bd[i]
		}
	default:
		panic(fmt.Sprintf("greater: unsupported dtype %s (only float32/float64)", a.DType()))
	}

	return result
}

// Where selects elements: out[i] = x[i] if condition[i] else y[i].
// The condition must be a Bool tensor of the same shape as x and y.
func (cpu *CPUBackend) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	if condition.DType() != tensor.Bool {
		panic(fmt.Sprintf("where: condition dtype is %s, not bool", condition.DType()))
	}
	if !condition.Shape().Equal(x.Shape()) || !x.Shape().Equal(y.Shape()) {
		panic(fmt.Sprintf("where: shape mismatch: cond %v, x %v, y %v",
			condition.Shape(), x.Shape(), y.Shape()))
	}
	if x.DType() != y.DType() {
		panic(fmt.Sprintf("where: dtype mismatch: %s vs %s", x.DType(), y.DType()))
	}

	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("where: %v", err))
	}
	cond := condition.AsBool()

	switch x.DType() {
	case tensor.Float32:
		xd, yd, dst := x.AsFloat32(), y.AsFloat32(), result.AsFloat32()
		for i := range dst {
			if cond[i] {
				dst[i] = xd[i]
			} else {
				dst[i] = yd[i]
			}
		}
	case tensor.Float64:
		xd, yd, dst := x.AsFloat64(), y.AsFloat64(), result.AsFloat64()
		for i := range dst {
			if cond[i] {
				dst[i] = xd[i]
			} else {
				dst[i] = yd[i]
			}
		}
	default:
		panic(fmt.Sprintf("where: unsupported dtype %s (only float32/float64)", x.DType()))
	}

	return result
}
