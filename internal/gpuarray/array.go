package gpuarray

import (
	"errors"
	"fmt"

	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/ndarray"
)

// ErrReleased is returned when using an array after Release.
var ErrReleased = errors.New("gpuarray: array released")

// ErrForeignCapsule is returned when a capsule cannot be imported without a copy.
var ErrForeignCapsule = errors.New("gpuarray: capsule not importable on this device")

// Array is a dense, row-major array stored in a WebGPU buffer.
type Array struct {
	dev   *Device
	buf   *buffer
	shape ndarray.Shape
	dtype ndarray.DataType
}

// Upload copies a host array into a new buffer on dev.
func Upload(dev *Device, host *ndarray.Array) (*Array, error) {
	buf, err := dev.upload(host.Data())
	if err != nil {
		return nil, err
	}
	return &Array{
		dev:   dev,
		buf:   buf,
		shape: host.Shape().Clone(),
		dtype: host.DType(),
	}, nil
}

// FromSlice uploads values to dev.
func FromSlice[T ndarray.DType](dev *Device, values []T, shape ndarray.Shape) (*Array, error) {
	host, err := ndarray.FromSlice(values, shape)
	if err != nil {
		return nil, err
	}
	return Upload(dev, host)
}

// Shape returns the array's shape.
func (a *Array) Shape() ndarray.Shape {
	return a.shape
}

// DType returns the array's data type.
func (a *Array) DType() ndarray.DataType {
	return a.dtype
}

// Device returns the device holding the array.
func (a *Array) Device() *Device {
	return a.dev
}

// ByteSize returns the logical size in bytes. The buffer may be padded.
func (a *Array) ByteSize() int {
	return a.shape.NumElements() * a.dtype.Size()
}

// Download copies the array to host memory.
func (a *Array) Download() (*ndarray.Array, error) {
	if a.buf == nil {
		return nil, ErrReleased
	}
	data, err := a.dev.readback(a.buf, a.ByteSize())
	if err != nil {
		return nil, err
	}
	return ndarray.Wrap(a.shape, a.dtype, data)
}

// CopyTo returns a copy of the array on dev. A copy within one device stays on
// the GPU; across logical devices the data goes through the host.
func (a *Array) CopyTo(dev *Device) (*Array, error) {
	if a.buf == nil {
		return nil, ErrReleased
	}
	if dev == a.dev {
		buf, err := dev.duplicate(a.buf)
		if err != nil {
			return nil, err
		}
		return &Array{dev: dev, buf: buf, shape: a.shape.Clone(), dtype: a.dtype}, nil
	}
	host, err := a.Download()
	if err != nil {
		return nil, err
	}
	return Upload(dev, host)
}

// Release drops this array's reference to its buffer.
func (a *Array) Release() {
	if a.buf != nil {
		a.buf.release()
		a.buf = nil
	}
}

// String returns a short description, not the contents.
func (a *Array) String() string {
	return fmt.Sprintf("gpuarray.Array(shape=%v, dtype=%s, device=%s)", a.shape, a.dtype, a.dev)
}

// DLPackDevice reports the WebGPU device holding the array.
func (a *Array) DLPackDevice() dlpack.Device {
	return dlpack.Device{Type: dlpack.WebGPU, ID: a.dev.index}
}

// DLPack exports the array. The capsule shares the buffer; the reference it
// holds is dropped if the capsule is released unconsumed.
func (a *Array) DLPack() (*dlpack.Capsule, error) {
	if a.buf == nil {
		return nil, ErrReleased
	}
	a.buf.addRef()
	handle := &Array{dev: a.dev, buf: a.buf, shape: a.shape.Clone(), dtype: a.dtype}
	return dlpack.NewCapsule(&dlpack.Tensor{
		Device: a.DLPackDevice(),
		DType:  a.dtype.DLPack(),
		Shape:  a.shape.Int64(),
		Handle: handle,
	}, handle.Release), nil
}

// FromCapsule takes a capsule holding a buffer on dev without copying.
func FromCapsule(dev *Device, c *dlpack.Capsule) (*Array, error) {
	peek := c.Peek()
	if peek == nil {
		return nil, dlpack.ErrConsumed
	}
	if peek.Device.Type != dlpack.WebGPU {
		return nil, fmt.Errorf("%w: memory on %s", ErrForeignCapsule, peek.Device)
	}
	handle, ok := peek.Handle.(*Array)
	if !ok || handle.buf == nil {
		return nil, fmt.Errorf("%w: handle %T", ErrForeignCapsule, peek.Handle)
	}
	if handle.dev != dev {
		return nil, fmt.Errorf("%w: buffer on %s, want %s", ErrForeignCapsule, handle.dev, dev)
	}
	if !peek.IsContiguous() {
		return nil, fmt.Errorf("%w: strided layout", ErrForeignCapsule)
	}

	if _, err := c.Consume(); err != nil {
		return nil, err
	}
	return handle, nil
}

// Compile-time check that *Array implements dlpack.Exporter.
var _ dlpack.Exporter = (*Array)(nil)
