package converters

import (
	"fmt"

	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/ndarray"
	gorgonia "gorgonia.org/tensor"
)

type gorgoniaConverter struct{}

// Gorgonia returns the converter for gorgonia.org/tensor dense tensors.
// Dense tensors cannot export capsules, so they always leave through the host.
func Gorgonia() convert.Converter {
	return gorgoniaConverter{}
}

func (gorgoniaConverter) Framework() framework.ID {
	return framework.Gorgonia
}

func (gorgoniaConverter) ToHost(v convert.Value, _ framework.Device) (*ndarray.Array, error) {
	d, ok := v.(*gorgonia.Dense)
	if !ok {
		return nil, unexpected(framework.Gorgonia, v)
	}
	if d.IsMaterializable() {
		m, ok := d.Materialize().(*gorgonia.Dense)
		if !ok {
			return nil, fmt.Errorf("gorgonia converter: materialized view is %T", d.Materialize())
		}
		d = m
	}

	shape := ndarray.Shape(d.Shape().Clone())
	switch d.Dtype() {
	case gorgonia.Float32:
		return denseToHost[float32](d, shape)
	case gorgonia.Float64:
		return denseToHost[float64](d, shape)
	case gorgonia.Int32:
		return denseToHost[int32](d, shape)
	case gorgonia.Int64:
		return denseToHost[int64](d, shape)
	case gorgonia.Uint8:
		return denseToHost[uint8](d, shape)
	case gorgonia.Bool:
		return denseToHost[bool](d, shape)
	default:
		return nil, fmt.Errorf("gorgonia converter: dtype %v not supported", d.Dtype())
	}
}

func (gorgoniaConverter) FromHost(a *ndarray.Array, _ framework.Device) (convert.Value, error) {
	return hostToDense(a, true)
}

// FromCapsule backs a dense tensor with the capsule's host memory.
func (gorgoniaConverter) FromCapsule(c *dlpack.Capsule, _ framework.Device) (convert.Value, error) {
	a, err := ndarray.FromCapsule(c)
	if err != nil {
		return nil, unsupported(framework.Gorgonia, err)
	}
	return hostToDense(a, false)
}

// MoveToDevice is a no-op: gorgonia dense tensors live in host memory.
func (gorgoniaConverter) MoveToDevice(v convert.Value, _ framework.Device) (convert.Value, error) {
	if _, ok := v.(*gorgonia.Dense); !ok {
		return nil, unexpected(framework.Gorgonia, v)
	}
	return v, nil
}

func denseToHost[T ndarray.DType](d *gorgonia.Dense, shape ndarray.Shape) (*ndarray.Array, error) {
	switch data := d.Data().(type) {
	case T:
		return ndarray.FromSlice([]T{data}, shape)
	case []T:
		return ndarray.FromSlice(data, shape)
	default:
		return nil, fmt.Errorf("gorgonia converter: data is %T", data)
	}
}

// hostToDense builds a dense tensor over a's elements, copying when copied is set.
func hostToDense(a *ndarray.Array, copied bool) (*gorgonia.Dense, error) {
	switch a.DType() {
	case ndarray.Float32:
		return newDense[float32](a, copied)
	case ndarray.Float64:
		return newDense[float64](a, copied)
	case ndarray.Int32:
		return newDense[int32](a, copied)
	case ndarray.Int64:
		return newDense[int64](a, copied)
	case ndarray.Uint8:
		return newDense[uint8](a, copied)
	case ndarray.Bool:
		return newDense[bool](a, copied)
	default:
		return nil, fmt.Errorf("gorgonia converter: dtype %s not supported", a.DType())
	}
}

func newDense[T ndarray.DType](a *ndarray.Array, copied bool) (*gorgonia.Dense, error) {
	var values []T
	var err error
	if copied {
		values, err = ndarray.ToSlice[T](a)
	} else {
		values, err = ndarray.View[T](a)
	}
	if err != nil {
		return nil, err
	}
	if len(a.Shape()) == 0 {
		return gorgonia.New(gorgonia.FromScalar(values[0])), nil
	}
	return gorgonia.New(gorgonia.WithShape(a.Shape()...), gorgonia.WithBacking(values)), nil
}
