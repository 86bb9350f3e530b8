// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gpuarray holds arrays in WebGPU device buffers.
//
// Devices are opened lazily by index and cached for the life of the process.
// Every call returns ErrUnavailable (wrapped) when no adapter can be opened.
//
// Example:
//
//	dev, err := gpuarray.Open(0)
//	if err != nil {
//	    return err // no GPU
//	}
//	a, _ := gpuarray.FromSlice(dev, []float32{1, 2, 3}, ndarray.Shape{3})
//	defer a.Release()
//	host, _ := a.Download()
package gpuarray

import (
	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/gpuarray"
	"github.com/born-ml/bridge/internal/ndarray"
)

// Array is a dense array in a device buffer.
type Array = gpuarray.Array

// Device is an opened WebGPU device.
type Device = gpuarray.Device

// AdapterInfo describes the adapter behind a device.
type AdapterInfo = gpuarray.AdapterInfo

// MaxDevices bounds the device index.
const MaxDevices = gpuarray.MaxDevices

// Errors.
var (
	ErrUnavailable    = gpuarray.ErrUnavailable
	ErrReleased       = gpuarray.ErrReleased
	ErrForeignCapsule = gpuarray.ErrForeignCapsule
)

// Open returns the device at index, opening it on first use.
func Open(index int) (*Device, error) {
	return gpuarray.Open(index)
}

// IsAvailable reports whether device 0 can be opened.
func IsAvailable() bool {
	return gpuarray.IsAvailable()
}

// Upload copies a host array into a new device buffer.
func Upload(dev *Device, host *ndarray.Array) (*Array, error) {
	return gpuarray.Upload(dev, host)
}

// FromSlice uploads values with the given shape.
func FromSlice[T ndarray.DType](dev *Device, values []T, shape ndarray.Shape) (*Array, error) {
	return gpuarray.FromSlice(dev, values, shape)
}

// FromCapsule consumes a capsule exported by an array on dev.
func FromCapsule(dev *Device, c *dlpack.Capsule) (*Array, error) {
	return gpuarray.FromCapsule(dev, c)
}
