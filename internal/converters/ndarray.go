package converters

import (
	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/ndarray"
)

type ndarrayConverter struct{}

// NDArray returns the converter for *ndarray.Array, the common format itself.
func NDArray() convert.Converter {
	return ndarrayConverter{}
}

func (ndarrayConverter) Framework() framework.ID {
	return framework.NDArray
}

func (ndarrayConverter) ToHost(v convert.Value, _ framework.Device) (*ndarray.Array, error) {
	a, ok := v.(*ndarray.Array)
	if !ok {
		return nil, unexpected(framework.NDArray, v)
	}
	return a.Clone(), nil
}

func (ndarrayConverter) FromHost(a *ndarray.Array, _ framework.Device) (convert.Value, error) {
	return a.Clone(), nil
}

func (ndarrayConverter) FromCapsule(c *dlpack.Capsule, _ framework.Device) (convert.Value, error) {
	a, err := ndarray.FromCapsule(c)
	if err != nil {
		return nil, unsupported(framework.NDArray, err)
	}
	return a, nil
}

// MoveToDevice is a no-op: host arrays have no device.
func (ndarrayConverter) MoveToDevice(v convert.Value, _ framework.Device) (convert.Value, error) {
	if _, ok := v.(*ndarray.Array); !ok {
		return nil, unexpected(framework.NDArray, v)
	}
	return v, nil
}
