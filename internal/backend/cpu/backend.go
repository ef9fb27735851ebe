// Package cpu implements the pure-Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/flint-ml/flint/internal/tensor"
)

// CPUBackend implements tensor.Backend with hand-rolled Go loops.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{device: tensor.CPU}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// binary applies a broadcast-aware element-wise binary operation.
func (cpu *CPUBackend) binary(
	name string,
	a, b *tensor.RawTensor,
	f32 func(float32, float32) float32,
	f64 func(float64, float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		dst := result.AsFloat32()
		if !needsBroadcast {
			ad, bd := a.AsFloat32(), b.AsFloat32()
			for i := range dst {
				dst[i] = f32(ad[i], bd[i])
			}
			break
		}
		ad, bd := a.AsFloat32(), b.AsFloat32()
		aStride := broadcastStrides(a.Shape(), outShape)
		bStride := broadcastStrides(b.Shape(), outShape)
		idx := make([]int, len(outShape))
		for i := range dst {
			dst[i] = f32(ad[offsetOf(idx, aStride)], bd[offsetOf(idx, bStride)])
			nextIndex(idx, outShape)
		}
	case tensor.Float64:
		dst := result.AsFloat64()
		if !needsBroadcast {
			ad, bd := a.AsFloat64(), b.AsFloat64()
			for i := range dst {
				dst[i] = f64(ad[i], bd[i])
			}
			break
		}
		ad, bd := a.AsFloat64(), b.AsFloat64()
		aStride := broadcastStrides(a.Shape(), outShape)
		bStride := broadcastStrides(b.Shape(), outShape)
		idx := make([]int, len(outShape))
		for i := range dst {
			dst[i] = f64(ad[offsetOf(idx, aStride)], bd[offsetOf(idx, bStride)])
			nextIndex(idx, outShape)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64)", name, a.DType()))
	}

	return result
}
