// Package tensor provides a tensor type whose storage lives either in host
// memory or in a WebGPU buffer. Tensors move to the GPU when one is present,
// and otherwise stay CPU-resident.
package tensor

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/born-ml/bridge/internal/gpuarray"
	"github.com/born-ml/bridge/internal/ndarray"
)

// Shape represents the dimensions of a tensor.
type Shape = ndarray.Shape

// DataType represents runtime type information for tensors.
type DataType = ndarray.DataType

// DType is a constraint for supported tensor data types.
type DType = ndarray.DType

// Supported data types for tensors.
const (
	Float32 = ndarray.Float32
	Float64 = ndarray.Float64
	Int32   = ndarray.Int32
	Int64   = ndarray.Int64
	Uint8   = ndarray.Uint8
	Bool    = ndarray.Bool
)

// Device represents where a tensor's storage lives.
type Device int

// Supported devices.
const (
	CPU Device = iota
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// ErrReleased is returned when using a tensor after Release.
var ErrReleased = errors.New("tensor: released")

// tensorBuffer is a reference-counted shared host buffer.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
}

// newTensorBuffer wraps data with refCount = 1.
func newTensorBuffer(data []byte) *tensorBuffer {
	buf := &tensorBuffer{data: data}
	buf.refCount.Store(1)
	return buf
}

func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and drops the data at 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.data = nil
	}
}

// RawTensor is the untyped storage of a tensor: exactly one of host or gpu is set.
type RawTensor struct {
	host  *tensorBuffer
	gpu   *gpuarray.Array
	shape Shape
	dtype DataType
}

// newHostRaw takes ownership of data.
func newHostRaw(shape Shape, dtype DataType, data []byte) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if want := shape.NumElements() * dtype.Size(); want == 0 || len(data) != want {
		return nil, fmt.Errorf("shape %v of %s requires %d bytes, but got %d", shape, dtype, want, len(data))
	}
	return &RawTensor{
		host:  newTensorBuffer(data),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

func newGPURaw(a *gpuarray.Array) *RawTensor {
	return &RawTensor{gpu: a, shape: a.Shape().Clone(), dtype: a.DType()}
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns where the storage lives.
func (r *RawTensor) Device() Device {
	if r.gpu != nil {
		return WebGPU
	}
	return CPU
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// hostData returns the host bytes of a CPU tensor.
func (r *RawTensor) hostData() ([]byte, error) {
	if r.host == nil || r.host.data == nil {
		return nil, ErrReleased
	}
	return r.host.data, nil
}

// Clone creates a copy of the RawTensor. Host storage is shared with reference
// counting; device storage is duplicated on the same device.
func (r *RawTensor) Clone() (*RawTensor, error) {
	if r.gpu != nil {
		dup, err := r.gpu.CopyTo(r.gpu.Device())
		if err != nil {
			return nil, err
		}
		return newGPURaw(dup), nil
	}
	if r.host == nil {
		return nil, ErrReleased
	}
	r.host.addRef()
	return &RawTensor{host: r.host, shape: r.shape.Clone(), dtype: r.dtype}, nil
}

// Release drops this tensor's reference to its storage.
func (r *RawTensor) Release() {
	if r.host != nil {
		r.host.release()
		r.host = nil
	}
	if r.gpu != nil {
		r.gpu.Release()
		r.gpu = nil
	}
}
