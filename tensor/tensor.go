// Copyright 2026 Flint ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the numeric payload type.
//
// It re-exports the internal tensor types:
//   - RawTensor: flat buffer + shape + strides + runtime dtype
//   - Shape, DataType, Device: core type definitions
//   - Backend: the kernel interface compute backends implement
//
// Example:
//
//	x, _ := tensor.FromSlice([]float32{0, 1, 2, 3}, tensor.Shape{4, 1}, tensor.CPU)
package tensor

import (
	"github.com/flint-ml/flint/internal/tensor"
)

// DType is a constraint for the Go element types a tensor can be built from.
type DType = tensor.DType

// DataType is the runtime element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// RawTensor is the low-level tensor representation.
type RawTensor = tensor.RawTensor

// Backend is the kernel interface compute backends implement.
type Backend = tensor.Backend

// NewRaw creates a zero-initialized tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice creates a tensor from a Go slice and shape.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}

// Scalar creates a zero-dimensional tensor holding a single value.
func Scalar[T DType](value T, device Device) (*RawTensor, error) {
	return tensor.Scalar(value, device)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Zeros(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Ones(shape, dtype, device)
}

// Full creates a tensor filled with the given value.
func Full(shape Shape, value float64, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Full(shape, value, dtype, device)
}

// OnesLike creates a ones tensor shaped like t.
func OnesLike(t *RawTensor) (*RawTensor, error) {
	return tensor.OnesLike(t)
}

// ZerosLike creates a zeros tensor shaped like t.
func ZerosLike(t *RawTensor) (*RawTensor, error) {
	return tensor.ZerosLike(t)
}

// Arange creates a 1D tensor with values [start, ..., end-1].
func Arange(start, end int, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Arange(start, end, dtype, device)
}

// BroadcastShapes applies NumPy-style broadcasting rules to two shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
