package tensor

import (
	"errors"
	"fmt"

	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/gpuarray"
	"github.com/born-ml/bridge/internal/ndarray"
)

// ErrUnsupportedCapsule is returned for capsules on devices tensors cannot hold.
var ErrUnsupportedCapsule = errors.New("tensor: unsupported capsule")

// DLPackDevice reports where the storage lives.
func (t *Tensor) DLPackDevice() dlpack.Device {
	if t.raw.gpu != nil {
		return t.raw.gpu.DLPackDevice()
	}
	return dlpack.Device{Type: dlpack.CPU}
}

// DLPack exports the tensor's storage without copying.
func (t *Tensor) DLPack() (*dlpack.Capsule, error) {
	if t.raw.gpu != nil {
		return t.raw.gpu.DLPack()
	}
	data, err := t.raw.hostData()
	if err != nil {
		return nil, err
	}
	host, err := ndarray.Wrap(t.raw.shape, t.raw.dtype, data)
	if err != nil {
		return nil, err
	}
	return host.DLPack()
}

// FromCapsule imports a CPU or WebGPU capsule without copying. device is the
// WebGPU device index a device capsule must already be on.
func FromCapsule(c *dlpack.Capsule, device int) (*Tensor, error) {
	peek := c.Peek()
	if peek == nil {
		return nil, dlpack.ErrConsumed
	}

	switch peek.Device.Type {
	case dlpack.CPU:
		host, err := ndarray.FromCapsule(c)
		if err != nil {
			return nil, err
		}
		raw, err := newHostRaw(host.Shape(), host.DType(), host.Data())
		if err != nil {
			return nil, err
		}
		return New(raw), nil

	case dlpack.WebGPU:
		dev, err := gpuarray.Open(device)
		if err != nil {
			return nil, err
		}
		a, err := gpuarray.FromCapsule(dev, c)
		if err != nil {
			return nil, err
		}
		return New(newGPURaw(a)), nil

	default:
		return nil, fmt.Errorf("%w: memory on %s", ErrUnsupportedCapsule, peek.Device)
	}
}

// Compile-time check that *Tensor implements dlpack.Exporter.
var _ dlpack.Exporter = (*Tensor)(nil)
