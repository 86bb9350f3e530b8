package tensor

import (
	"bytes"
	"fmt"

	"github.com/born-ml/bridge/internal/gpuarray"
	"github.com/born-ml/bridge/internal/ndarray"
)

// Tensor is a dense tensor stored on the CPU or on a WebGPU device.
//
// Example:
//
//	t, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	if tensor.GPUAvailable() {
//		t, _ = t.To(0) // upload to device 0
//	}
type Tensor struct {
	raw *RawTensor
}

// New creates a Tensor from a RawTensor.
func New(raw *RawTensor) *Tensor {
	return &Tensor{raw: raw}
}

// GPUAvailable reports whether a WebGPU device can be opened.
func GPUAvailable() bool {
	return gpuarray.IsAvailable()
}

// FromSlice creates a CPU tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](values []T, shape Shape) (*Tensor, error) {
	host, err := ndarray.FromSlice(values, shape)
	if err != nil {
		return nil, err
	}
	raw, err := newHostRaw(host.Shape(), host.DType(), host.Data())
	if err != nil {
		return nil, err
	}
	return New(raw), nil
}

// Zeros creates a zero-filled CPU tensor.
func Zeros(shape Shape, dtype DataType) (*Tensor, error) {
	host, err := ndarray.New(shape, dtype)
	if err != nil {
		return nil, err
	}
	raw, err := newHostRaw(host.Shape(), host.DType(), host.Data())
	if err != nil {
		return nil, err
	}
	return New(raw), nil
}

// FromHost creates a CPU tensor holding a copy of a.
func FromHost(a *ndarray.Array) (*Tensor, error) {
	raw, err := newHostRaw(a.Shape(), a.DType(), bytes.Clone(a.Data()))
	if err != nil {
		return nil, err
	}
	return New(raw), nil
}

// Raw returns the underlying RawTensor.
func (t *Tensor) Raw() *RawTensor {
	return t.raw
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.raw.Shape()
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.raw.DType()
}

// Device returns where the tensor's storage lives.
func (t *Tensor) Device() Device {
	return t.raw.Device()
}

// DeviceIndex returns the WebGPU device index, or -1 for CPU tensors.
func (t *Tensor) DeviceIndex() int {
	if t.raw.gpu == nil {
		return -1
	}
	return t.raw.gpu.Device().Index()
}

// IsGPU reports whether the storage is in device memory.
func (t *Tensor) IsGPU() bool {
	return t.raw.Device() == WebGPU
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.raw.NumElements()
}

// ToHost copies the tensor into a host array.
func (t *Tensor) ToHost() (*ndarray.Array, error) {
	if t.raw.gpu != nil {
		return t.raw.gpu.Download()
	}
	data, err := t.raw.hostData()
	if err != nil {
		return nil, err
	}
	return ndarray.FromBytes(t.raw.shape, t.raw.dtype, data)
}

// To returns the tensor on WebGPU device index. It returns t itself when the
// tensor is already there.
func (t *Tensor) To(index int) (*Tensor, error) {
	if t.DeviceIndex() == index {
		return t, nil
	}
	dev, err := gpuarray.Open(index)
	if err != nil {
		return nil, err
	}
	if t.raw.gpu != nil {
		moved, err := t.raw.gpu.CopyTo(dev)
		if err != nil {
			return nil, err
		}
		return New(newGPURaw(moved)), nil
	}
	data, err := t.raw.hostData()
	if err != nil {
		return nil, err
	}
	host, err := ndarray.Wrap(t.raw.shape, t.raw.dtype, data)
	if err != nil {
		return nil, err
	}
	up, err := gpuarray.Upload(dev, host)
	if err != nil {
		return nil, err
	}
	return New(newGPURaw(up)), nil
}

// CPU returns the tensor in host memory. It returns t itself for CPU tensors.
func (t *Tensor) CPU() (*Tensor, error) {
	if t.raw.gpu == nil {
		return t, nil
	}
	host, err := t.raw.gpu.Download()
	if err != nil {
		return nil, err
	}
	raw, err := newHostRaw(host.Shape(), host.DType(), host.Data())
	if err != nil {
		return nil, err
	}
	return New(raw), nil
}

// Clone returns a copy of the tensor on the same device.
func (t *Tensor) Clone() (*Tensor, error) {
	raw, err := t.raw.Clone()
	if err != nil {
		return nil, err
	}
	return New(raw), nil
}

// Release drops the tensor's storage.
func (t *Tensor) Release() {
	t.raw.Release()
}

// String returns a short description, not the contents.
func (t *Tensor) String() string {
	if t.IsGPU() {
		return fmt.Sprintf("tensor.Tensor(shape=%v, dtype=%s, device=WebGPU:%d)", t.Shape(), t.DType(), t.DeviceIndex())
	}
	return fmt.Sprintf("tensor.Tensor(shape=%v, dtype=%s, device=CPU)", t.Shape(), t.DType())
}

// Data returns the elements of a CPU tensor as []T without copying.
func Data[T DType](t *Tensor) ([]T, error) {
	if t.IsGPU() {
		return nil, fmt.Errorf("tensor: data is on WebGPU:%d, call CPU first", t.DeviceIndex())
	}
	data, err := t.raw.hostData()
	if err != nil {
		return nil, err
	}
	host, err := ndarray.Wrap(t.raw.shape, t.raw.dtype, data)
	if err != nil {
		return nil, err
	}
	return ndarray.View[T](host)
}
