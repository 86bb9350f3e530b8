// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dlpack exposes the capsule values exchange on the zero-copy path.
//
// A producer implements Exporter. A consumer calls Consume exactly once and
// then owns the memory; an unconsumed capsule must be Released so the
// producer's deleter runs.
package dlpack

import "github.com/born-ml/bridge/internal/dlpack"

// Capsule owns an exported tensor until a consumer takes it.
type Capsule = dlpack.Capsule

// Tensor describes exported memory.
type Tensor = dlpack.Tensor

// Exporter is implemented by values that can export their memory as a capsule.
type Exporter = dlpack.Exporter

// Device locates a buffer.
type Device = dlpack.Device

// DeviceType is the DLPack device type code.
type DeviceType = dlpack.DeviceType

// DataType describes one element.
type DataType = dlpack.DataType

// Device type codes.
const (
	CPU    DeviceType = dlpack.CPU
	CUDA   DeviceType = dlpack.CUDA
	Vulkan DeviceType = dlpack.Vulkan
	Metal  DeviceType = dlpack.Metal
	WebGPU DeviceType = dlpack.WebGPU
)

// ErrConsumed is returned when a capsule is consumed twice.
var ErrConsumed = dlpack.ErrConsumed

// NewCapsule wraps t. The deleter, if any, runs when the capsule is released
// without being consumed.
func NewCapsule(t *Tensor, deleter func()) *Capsule {
	return dlpack.NewCapsule(t, deleter)
}
