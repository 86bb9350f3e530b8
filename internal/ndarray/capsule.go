package ndarray

import (
	"errors"
	"fmt"

	"github.com/born-ml/bridge/internal/dlpack"
)

// ErrNotHostCapsule is returned when importing a capsule whose memory is not
// host memory, or whose layout cannot be aliased.
var ErrNotHostCapsule = errors.New("ndarray: capsule is not compact host memory")

// DLPackDevice reports host memory.
func (a *Array) DLPackDevice() dlpack.Device {
	return dlpack.Device{Type: dlpack.CPU, ID: 0}
}

// DLPack exports the array. The capsule aliases the array's bytes.
func (a *Array) DLPack() (*dlpack.Capsule, error) {
	return dlpack.NewCapsule(&dlpack.Tensor{
		Device: a.DLPackDevice(),
		DType:  a.dtype.DLPack(),
		Shape:  a.shape.Int64(),
		Data:   a.data,
	}, nil), nil
}

// FromCapsule imports a host capsule without copying. Capsules that live on a
// device, or that are strided, are rejected before being consumed so the
// producer keeps ownership.
func FromCapsule(c *dlpack.Capsule) (*Array, error) {
	peek := c.Peek()
	if peek == nil {
		return nil, dlpack.ErrConsumed
	}
	if peek.Device.Type != dlpack.CPU {
		return nil, fmt.Errorf("%w: memory on %s", ErrNotHostCapsule, peek.Device)
	}
	if !peek.IsContiguous() {
		return nil, fmt.Errorf("%w: strided layout", ErrNotHostCapsule)
	}
	dtype, err := DataTypeFromDLPack(peek.DType)
	if err != nil {
		return nil, err
	}

	t, err := c.Consume()
	if err != nil {
		return nil, err
	}
	data, err := t.HostBytes()
	if err != nil {
		return nil, err
	}
	return Wrap(ShapeFromInt64(t.Shape), dtype, data)
}

// Compile-time check that *Array implements dlpack.Exporter.
var _ dlpack.Exporter = (*Array)(nil)
