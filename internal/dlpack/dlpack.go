// Package dlpack implements a DLPack-style exchange token for handing array
// memory from one framework to another without a host copy.
//
// A producer exports a Capsule describing its buffer (device, element type,
// shape, strides and a data handle). A consumer inspects the capsule with Peek,
// and takes ownership with Consume. A capsule can be consumed once.
package dlpack

import (
	"errors"
	"fmt"
	"sync"
)

// DeviceType is the DLPack device type code.
type DeviceType int32

// Device type codes, numbered as in dlpack.h.
const (
	CPU    DeviceType = 1
	CUDA   DeviceType = 2
	Vulkan DeviceType = 7
	Metal  DeviceType = 8
	WebGPU DeviceType = 15
)

// String returns a human-readable device type name.
func (d DeviceType) String() string {
	switch d {
	case CPU:
		return "cpu"
	case CUDA:
		return "cuda"
	case Vulkan:
		return "vulkan"
	case Metal:
		return "metal"
	case WebGPU:
		return "webgpu"
	default:
		return fmt.Sprintf("device_type(%d)", int32(d))
	}
}

// Device locates a buffer.
type Device struct {
	Type DeviceType
	ID   int
}

// String returns "type:id".
func (d Device) String() string {
	return fmt.Sprintf("%s:%d", d.Type, d.ID)
}

// TypeCode is the DLPack element type class.
type TypeCode uint8

// Element type classes, numbered as in dlpack.h.
const (
	Int   TypeCode = 0
	UInt  TypeCode = 1
	Float TypeCode = 2
	Bool  TypeCode = 6
)

// DataType describes one element.
type DataType struct {
	Code  TypeCode
	Bits  uint8
	Lanes uint16
}

// Size returns the element size in bytes.
func (dt DataType) Size() int {
	lanes := int(dt.Lanes)
	if lanes == 0 {
		lanes = 1
	}
	return (int(dt.Bits) + 7) / 8 * lanes
}

// String returns a compact name such as "float32".
func (dt DataType) String() string {
	var base string
	switch dt.Code {
	case Int:
		base = "int"
	case UInt:
		base = "uint"
	case Float:
		base = "float"
	case Bool:
		return "bool"
	default:
		base = fmt.Sprintf("code%d_", dt.Code)
	}
	return fmt.Sprintf("%s%d", base, dt.Bits)
}

// Tensor is the buffer description a capsule carries.
type Tensor struct {
	Device Device
	DType  DataType
	Shape  []int64
	// Strides are in elements. Nil means compact row-major.
	Strides    []int64
	ByteOffset uint64

	// Data is the host memory of a CPU tensor.
	Data []byte
	// Handle is the producer's device buffer for non-CPU tensors.
	Handle any
}

// NumElements returns the number of elements described by Shape.
func (t *Tensor) NumElements() int {
	n := 1
	for _, d := range t.Shape {
		n *= int(d)
	}
	return n
}

// ByteSize returns the size of the described data in bytes.
func (t *Tensor) ByteSize() int {
	return t.NumElements() * t.DType.Size()
}

// IsContiguous reports whether the strides describe compact row-major layout.
func (t *Tensor) IsContiguous() bool {
	if t.Strides == nil {
		return true
	}
	if len(t.Strides) != len(t.Shape) {
		return false
	}
	expected := int64(1)
	for i := len(t.Shape) - 1; i >= 0; i-- {
		if t.Shape[i] != 1 && t.Strides[i] != expected {
			return false
		}
		expected *= t.Shape[i]
	}
	return true
}

// HostBytes returns the host bytes of a contiguous CPU tensor, offset applied.
func (t *Tensor) HostBytes() ([]byte, error) {
	if t.Device.Type != CPU {
		return nil, fmt.Errorf("dlpack: tensor on %s has no host bytes", t.Device)
	}
	if !t.IsContiguous() {
		return nil, errors.New("dlpack: tensor is not contiguous")
	}
	end := int(t.ByteOffset) + t.ByteSize()
	if end > len(t.Data) {
		return nil, fmt.Errorf("dlpack: data holds %d bytes, need %d", len(t.Data), end)
	}
	return t.Data[t.ByteOffset:end], nil
}

// ErrConsumed is returned when a capsule is consumed twice.
var ErrConsumed = errors.New("dlpack: capsule already consumed")

// Capsule owns an exported Tensor until a consumer takes it.
type Capsule struct {
	mu       sync.Mutex
	tensor   *Tensor
	deleter  func()
	consumed bool
}

// NewCapsule wraps t. The deleter, if any, runs when the capsule is released
// without being consumed.
func NewCapsule(t *Tensor, deleter func()) *Capsule {
	return &Capsule{tensor: t, deleter: deleter}
}

// Peek returns the tensor description without taking ownership.
// It returns nil once the capsule has been consumed.
func (c *Capsule) Peek() *Tensor {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return nil
	}
	return c.tensor
}

// Consume takes ownership of the tensor. The second call fails with ErrConsumed.
func (c *Capsule) Consume() (*Tensor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return nil, ErrConsumed
	}
	c.consumed = true
	return c.tensor, nil
}

// Consumed reports whether the capsule was handed to a consumer.
func (c *Capsule) Consumed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consumed
}

// Release runs the deleter when the capsule was never consumed. Safe to call
// more than once.
func (c *Capsule) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return
	}
	c.consumed = true
	if c.deleter != nil {
		c.deleter()
		c.deleter = nil
	}
}

// Exporter is implemented by values that can export their memory as a capsule.
type Exporter interface {
	// DLPack exports the value. The capsule aliases the value's memory.
	DLPack() (*Capsule, error)
	// DLPackDevice reports where the memory lives.
	DLPackDevice() Device
}
