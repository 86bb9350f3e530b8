// Package adapter wraps functions so their array arguments arrive in the
// framework they declare, whatever framework the caller holds.
//
// Example:
//
//	blur := adapter.Declare(reg, framework.Gorgonia, adapter.Output(framework.NDArray)).
//		Wrap(func(args ...any) (any, error) {
//			img := args[0].(*gorgonia.Dense)
//			...
//		})
//	out, err := blur(gpuArray) // arrives as *gorgonia.Dense, returns *ndarray.Array
package adapter

import (
	"fmt"

	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/framework"
)

// Func is the shape of an adaptable function.
type Func func(args ...any) (any, error)

// Adapter holds the declared frameworks of a call site. It is immutable and
// can wrap any number of functions.
type Adapter struct {
	reg    *convert.Registry
	input  framework.ID
	output *framework.ID
	params map[int]framework.ID
	device *framework.Device
}

// Option configures an Adapter.
type Option func(*Adapter)

// Output converts array results into id.
func Output(id framework.ID) Option {
	return func(a *Adapter) {
		a.output = &id
	}
}

// Param declares the framework of the i-th argument, overriding the input framework.
func Param(i int, id framework.ID) Option {
	return func(a *Adapter) {
		a.params[i] = id
	}
}

// OnDevice places converted values on dev instead of the registry's device.
func OnDevice(dev framework.Device) Option {
	return func(a *Adapter) {
		a.device = &dev
	}
}

// Declare creates an adapter whose array arguments are converted into input.
func Declare(reg *convert.Registry, input framework.ID, opts ...Option) *Adapter {
	a := &Adapter{
		reg:    reg,
		input:  input,
		params: map[int]framework.ID{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NDArray declares host array inputs.
func NDArray(reg *convert.Registry, opts ...Option) *Adapter {
	return Declare(reg, framework.NDArray, opts...)
}

// WebGPU declares GPU array inputs.
func WebGPU(reg *convert.Registry, opts ...Option) *Adapter {
	return Declare(reg, framework.WebGPU, opts...)
}

// Tensor declares tensor inputs.
func Tensor(reg *convert.Registry, opts ...Option) *Adapter {
	return Declare(reg, framework.Tensor, opts...)
}

// Gorgonia declares gorgonia dense inputs.
func Gorgonia(reg *convert.Registry, opts ...Option) *Adapter {
	return Declare(reg, framework.Gorgonia, opts...)
}

// Input returns the framework arguments are converted into.
func (a *Adapter) Input() framework.ID {
	return a.input
}

// paramFramework returns the declared framework of argument i.
func (a *Adapter) paramFramework(i int) framework.ID {
	if id, ok := a.params[i]; ok {
		return id
	}
	return a.input
}

func (a *Adapter) dev() framework.Device {
	if a.device != nil {
		return *a.device
	}
	return a.reg.Device()
}

// convertArgs converts every recognized array argument. Other arguments pass through.
func (a *Adapter) convertArgs(args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, arg := range args {
		if !a.reg.Probe().Recognizes(arg) {
			out[i] = arg
			continue
		}
		v, err := a.reg.ConvertOn(arg, a.paramFramework(i), a.dev())
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (a *Adapter) convertResult(result any) (any, error) {
	if a.output == nil || !a.reg.Probe().Recognizes(result) {
		return result, nil
	}
	return a.reg.ConvertOn(result, *a.output, a.dev())
}

// Wrap returns fn with argument and result conversion applied. Conversion
// errors are returned unchanged and fn is not called.
func (a *Adapter) Wrap(fn Func) Func {
	return func(args ...any) (any, error) {
		converted, err := a.convertArgs(args)
		if err != nil {
			return nil, err
		}
		result, err := fn(converted...)
		if err != nil {
			return nil, err
		}
		return a.convertResult(result)
	}
}

// Wrap1 adapts a typed single-argument function. The argument is converted
// into the adapter's input framework and must then have type In.
func Wrap1[In any](a *Adapter, fn func(In) (any, error)) func(any) (any, error) {
	wrapped := a.Wrap(func(args ...any) (any, error) {
		in, ok := args[0].(In)
		if !ok {
			var zero In
			return nil, fmt.Errorf("adapter: argument is %T, want %T", args[0], zero)
		}
		return fn(in)
	})
	return func(arg any) (any, error) {
		return wrapped(arg)
	}
}
