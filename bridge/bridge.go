// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bridge converts array values between Go numeric frameworks.
//
// Given a value produced by one framework, bridge detects which framework
// produced it and converts it into another framework's native type. It first
// tries a zero-copy DLPack capsule exchange and falls back to a roundtrip
// through host memory.
//
// # Frameworks
//
//   - NDArray: *ndarray.Array, host memory (the common format)
//   - WebGPU: *gpuarray.Array, WebGPU device buffers
//   - Tensor: *tensor.Tensor, GPU when available, CPU otherwise
//   - Gorgonia: *gorgonia.org/tensor.Dense, host memory
//
// # Basic Usage
//
//	a, _ := ndarray.FromSlice([]float32{1, 2, 3, 4}, ndarray.Shape{2, 2})
//
//	out, err := bridge.Convert(a, bridge.Gorgonia)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dense := out.(*gtensor.Dense)
//
// Convert uses a registry built on first use with default options. Build
// one explicitly with Init to choose the logger, device or zero-copy policy.
//
// # Errors
//
// Unknown inputs fail with ErrUnknownFramework. Failures on the host path
// fail with ErrMemoryConversion. Init fails with ErrRegistryIntegrity when the
// conversion matrix is incomplete. Zero-copy failures are never returned: they
// are logged at warning level and the host path runs instead.
package bridge

import (
	"fmt"
	"sync"

	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/converters"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/charmbracelet/log"
)

// Framework identifies a supported array framework.
type Framework = framework.ID

// Supported frameworks.
const (
	NDArray  Framework = framework.NDArray
	WebGPU   Framework = framework.WebGPU
	Tensor   Framework = framework.Tensor
	Gorgonia Framework = framework.Gorgonia
)

// Device is a device index hint for GPU-capable frameworks.
type Device = framework.Device

// DefaultDevice is device 0.
const DefaultDevice Device = framework.DefaultDevice

// Registry holds one converter per framework and the validated route matrix.
type Registry = convert.Registry

// Converter is the capability interface every framework implements.
type Converter = convert.Converter

// Route is one validated (source, target) conversion path.
type Route = convert.Route

// Option configures a Registry.
type Option = convert.Option

// Errors.
var (
	ErrUnknownFramework  = convert.ErrUnknownFramework
	ErrMemoryConversion  = convert.ErrMemoryConversion
	ErrRegistryIntegrity = convert.ErrRegistryIntegrity
	ErrUnknownID         = framework.ErrUnknownID
	ErrInvalidDevice     = framework.ErrInvalidDevice
)

// Error types.
type (
	UnknownFrameworkError  = convert.UnknownFrameworkError
	MemoryConversionError  = convert.MemoryConversionError
	RegistryIntegrityError = convert.RegistryIntegrityError
)

// WithLogger sets the logger for fallback warnings and debug traces.
func WithLogger(l *log.Logger) Option { return convert.WithLogger(l) }

// WithZeroCopy enables or disables the capsule path.
func WithZeroCopy(enabled bool) Option { return convert.WithZeroCopy(enabled) }

// WithDevice sets the default device for GPU-capable targets.
func WithDevice(dev Device) Option { return convert.WithDevice(dev) }

// Frameworks returns every supported framework in order.
func Frameworks() []Framework { return framework.All() }

// ParseFramework resolves a framework name such as "tensor".
func ParseFramework(name string) (Framework, error) { return framework.ParseID(name) }

// Init builds and validates a registry over the built-in converters.
func Init(opts ...Option) (*Registry, error) {
	return convert.Init(converters.All(), opts...)
}

// InitWith builds and validates a registry over the given converters.
func InitWith(convs []Converter, opts ...Option) (*Registry, error) {
	return convert.Init(convs, opts...)
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return Init()
})

// Default returns the process-wide registry, building it on first use.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// Detect reports which framework produced value.
func Detect(value any) (Framework, error) {
	r, err := Default()
	if err != nil {
		return 0, err
	}
	return r.Detect(value)
}

// Convert converts value into target's native type on the default device.
func Convert(value any, target Framework) (any, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return r.Convert(value, target)
}

// ConvertOn converts value into target's native type on dev.
func ConvertOn(value any, target Framework, dev Device) (any, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return r.ConvertOn(value, target, dev)
}

// ConvertAs converts value and asserts the result type.
//
//	dense, err := bridge.ConvertAs[*gtensor.Dense](a, bridge.Gorgonia)
func ConvertAs[T any](value any, target Framework) (T, error) {
	var zero T
	out, err := Convert(value, target)
	if err != nil {
		return zero, err
	}
	typed, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("bridge: %s produced %T, not %T", target, out, zero)
	}
	return typed, nil
}
