package converters

import (
	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/born-ml/bridge/internal/tensor"
)

type tensorConverter struct {
	// gpu reports whether tensors should be placed on a WebGPU device.
	gpu func() bool
}

// Tensor returns the converter for *tensor.Tensor. Results go to the
// requested WebGPU device when one is available and stay on the CPU otherwise.
func Tensor() convert.Converter {
	return tensorConverter{gpu: tensor.GPUAvailable}
}

func (tensorConverter) Framework() framework.ID {
	return framework.Tensor
}

func (tensorConverter) ToHost(v convert.Value, _ framework.Device) (*ndarray.Array, error) {
	t, ok := v.(*tensor.Tensor)
	if !ok {
		return nil, unexpected(framework.Tensor, v)
	}
	return t.ToHost()
}

func (c tensorConverter) FromHost(a *ndarray.Array, dev framework.Device) (convert.Value, error) {
	t, err := tensor.FromHost(a)
	if err != nil {
		return nil, err
	}
	return c.place(t, dev)
}

func (tensorConverter) FromCapsule(capsule *dlpack.Capsule, dev framework.Device) (convert.Value, error) {
	t, err := tensor.FromCapsule(capsule, int(dev))
	if err != nil {
		return nil, unsupported(framework.Tensor, err)
	}
	return t, nil
}

func (c tensorConverter) MoveToDevice(v convert.Value, dev framework.Device) (convert.Value, error) {
	t, ok := v.(*tensor.Tensor)
	if !ok {
		return nil, unexpected(framework.Tensor, v)
	}
	return c.place(t, dev)
}

func (c tensorConverter) place(t *tensor.Tensor, dev framework.Device) (*tensor.Tensor, error) {
	if !c.gpu() {
		return t.CPU()
	}
	return t.To(int(dev))
}
