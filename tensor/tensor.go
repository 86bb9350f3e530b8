// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides tensors whose storage lives in host memory or in a
// WebGPU buffer.
//
// Tensors placed with To move to the GPU when one is present. Without a GPU
// they stay CPU-resident and every operation still succeeds.
//
// Example:
//
//	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	if tensor.GPUAvailable() {
//	    x, _ = x.To(0)
//	}
//	host, _ := x.ToHost()
package tensor

import (
	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/born-ml/bridge/internal/tensor"
)

// Tensor is a dense tensor on the CPU or a WebGPU device.
type Tensor = tensor.Tensor

// RawTensor is the low-level storage behind a Tensor.
type RawTensor = tensor.RawTensor

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// DataType represents runtime type information for tensors.
type DataType = tensor.DataType

// DType is a constraint for tensor data types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents where a tensor's storage lives.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Errors.
var (
	ErrReleased           = tensor.ErrReleased
	ErrUnsupportedCapsule = tensor.ErrUnsupportedCapsule
)

// GPUAvailable reports whether tensors can be placed on a GPU.
func GPUAvailable() bool {
	return tensor.GPUAvailable()
}

// FromSlice creates a CPU tensor holding a copy of values.
func FromSlice[T DType](values []T, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(values, shape)
}

// Zeros creates a zero-filled CPU tensor.
func Zeros(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.Zeros(shape, dtype)
}

// FromHost creates a CPU tensor holding a copy of a host array.
func FromHost(a *ndarray.Array) (*Tensor, error) {
	return tensor.FromHost(a)
}

// Data returns a view of a CPU tensor's elements.
func Data[T DType](t *Tensor) ([]T, error) {
	return tensor.Data[T](t)
}

// FromCapsule consumes a capsule and places the result on device.
func FromCapsule(c *dlpack.Capsule, device int) (*Tensor, error) {
	return tensor.FromCapsule(c, device)
}
