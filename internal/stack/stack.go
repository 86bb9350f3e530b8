// Package stack assembles 2-D slices into 3-D volumes and splits them back,
// in any registered framework.
package stack

import (
	"errors"
	"fmt"

	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/born-ml/bridge/internal/parallel"
)

// ErrInvalidStack is returned for inputs Stack and Unstack cannot handle.
var ErrInvalidStack = errors.New("invalid stack input")

// StackError describes why an input was rejected.
type StackError struct {
	Op     string
	Reason string
}

// Error implements the error interface.
func (e *StackError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrInvalidStack, e.Reason)
}

// Unwrap returns ErrInvalidStack for errors.Is() compatibility.
func (e *StackError) Unwrap() error {
	return ErrInvalidStack
}

func invalid(op, format string, args ...any) error {
	return &StackError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// Stack combines same-framework 2-D slices of equal shape and dtype into one
// 3-D value of that framework. Axis 0 follows input order.
func Stack(reg *convert.Registry, slices []convert.Value, dev framework.Device) (convert.Value, error) {
	if len(slices) == 0 {
		return nil, invalid("stack", "no slices")
	}
	first, err := reg.Detect(slices[0])
	if err != nil {
		return nil, err
	}
	for i, s := range slices[1:] {
		id, err := reg.Detect(s)
		if err != nil {
			return nil, err
		}
		if id != first {
			return nil, invalid("stack", "slice %d is %s, slice 0 is %s", i+1, id, first)
		}
	}
	return stackAs("stack", reg, slices, first, dev)
}

// StackAs is like Stack but accepts slices from any mix of frameworks and
// returns the volume in target.
func StackAs(reg *convert.Registry, slices []convert.Value, target framework.ID, dev framework.Device) (convert.Value, error) {
	if len(slices) == 0 {
		return nil, invalid("stack", "no slices")
	}
	return stackAs("stack", reg, slices, target, dev)
}

func stackAs(op string, reg *convert.Registry, slices []convert.Value, target framework.ID, dev framework.Device) (convert.Value, error) {
	hosts := make([]*ndarray.Array, len(slices))
	err := parallel.ForErr(len(slices), func(i int) error {
		v, err := reg.Convert(slices[i], framework.NDArray)
		if err != nil {
			return err
		}
		hosts[i] = v.(*ndarray.Array)
		return nil
	}, parallel.DefaultConfig())
	if err != nil {
		return nil, err
	}

	shape, dtype := hosts[0].Shape(), hosts[0].DType()
	if len(shape) != 2 {
		return nil, invalid(op, "slice 0 has %d dimensions, want 2", len(shape))
	}
	for i, h := range hosts[1:] {
		if !h.Shape().Equal(shape) {
			return nil, invalid(op, "slice %d has shape %v, slice 0 has %v", i+1, h.Shape(), shape)
		}
		if h.DType() != dtype {
			return nil, invalid(op, "slice %d has dtype %s, slice 0 has %s", i+1, h.DType(), dtype)
		}
	}

	volume, err := ndarray.New(ndarray.Shape{len(hosts), shape[0], shape[1]}, dtype)
	if err != nil {
		return nil, err
	}
	step := hosts[0].ByteSize()
	dst := volume.Data()
	parallel.For(len(hosts), func(i int) {
		copy(dst[i*step:(i+1)*step], hosts[i].Data())
	}, parallel.DefaultConfig())

	return reg.ConvertOn(volume, target, dev)
}

// Unstack splits a 3-D value along axis 0 into 2-D slices of the same
// framework, in order.
func Unstack(reg *convert.Registry, volume convert.Value, dev framework.Device) ([]convert.Value, error) {
	id, err := reg.Detect(volume)
	if err != nil {
		return nil, err
	}
	return UnstackAs(reg, volume, id, dev)
}

// UnstackAs is like Unstack but returns the slices in target.
func UnstackAs(reg *convert.Registry, volume convert.Value, target framework.ID, dev framework.Device) ([]convert.Value, error) {
	v, err := reg.Convert(volume, framework.NDArray)
	if err != nil {
		return nil, err
	}
	host := v.(*ndarray.Array)
	if len(host.Shape()) != 3 {
		return nil, invalid("unstack", "volume has %d dimensions, want 3", len(host.Shape()))
	}

	out := make([]convert.Value, host.Shape()[0])
	err = parallel.ForErr(len(out), func(i int) error {
		slice, err := host.Index(i)
		if err != nil {
			return err
		}
		out[i], err = reg.ConvertOn(slice, target, dev)
		return err
	}, parallel.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return out, nil
}
