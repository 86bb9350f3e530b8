package converters

import (
	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/gpuarray"
	"github.com/born-ml/bridge/internal/ndarray"
)

type webgpuConverter struct{}

// WebGPU returns the converter for *gpuarray.Array. Every result lives on a
// WebGPU device, so conversions into it fail when no adapter is present.
func WebGPU() convert.Converter {
	return webgpuConverter{}
}

func (webgpuConverter) Framework() framework.ID {
	return framework.WebGPU
}

func (webgpuConverter) ToHost(v convert.Value, _ framework.Device) (*ndarray.Array, error) {
	a, ok := v.(*gpuarray.Array)
	if !ok {
		return nil, unexpected(framework.WebGPU, v)
	}
	return a.Download()
}

func (webgpuConverter) FromHost(a *ndarray.Array, dev framework.Device) (convert.Value, error) {
	d, err := gpuarray.Open(int(dev))
	if err != nil {
		return nil, err
	}
	return gpuarray.Upload(d, a)
}

func (webgpuConverter) FromCapsule(c *dlpack.Capsule, dev framework.Device) (convert.Value, error) {
	if peek := c.Peek(); peek != nil && peek.Device.Type != dlpack.WebGPU {
		return nil, unsupported(framework.WebGPU, gpuarray.ErrForeignCapsule)
	}
	d, err := gpuarray.Open(int(dev))
	if err != nil {
		return nil, unsupported(framework.WebGPU, err)
	}
	a, err := gpuarray.FromCapsule(d, c)
	if err != nil {
		return nil, unsupported(framework.WebGPU, err)
	}
	return a, nil
}

func (webgpuConverter) MoveToDevice(v convert.Value, dev framework.Device) (convert.Value, error) {
	a, ok := v.(*gpuarray.Array)
	if !ok {
		return nil, unexpected(framework.WebGPU, v)
	}
	if a.Device().Index() == int(dev) {
		return a, nil
	}
	d, err := gpuarray.Open(int(dev))
	if err != nil {
		return nil, err
	}
	return a.CopyTo(d)
}
