// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bridge

import "github.com/born-ml/bridge/internal/adapter"

// Adapter converts a function's array arguments and result at the call site.
type Adapter = adapter.Adapter

// AdapterOption configures an Adapter.
type AdapterOption = adapter.Option

// Func is the shape of functions an Adapter wraps.
type Func = adapter.Func

// Output converts array results to id.
func Output(id Framework) AdapterOption { return adapter.Output(id) }

// Param overrides the framework of argument i.
func Param(i int, id Framework) AdapterOption { return adapter.Param(i, id) }

// OnDevice places converted values on dev.
func OnDevice(dev Device) AdapterOption { return adapter.OnDevice(dev) }

// Declare returns an adapter over the default registry that converts array
// arguments to input.
//
//	sum := bridge.MustDeclare(bridge.Tensor, bridge.Output(bridge.NDArray)).Wrap(fn)
func Declare(input Framework, opts ...AdapterOption) (*Adapter, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return adapter.Declare(r, input, opts...), nil
}

// MustDeclare is like Declare but panics if the default registry is invalid.
func MustDeclare(input Framework, opts ...AdapterOption) *Adapter {
	a, err := Declare(input, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Wrap1 wraps a single-argument function with a typed parameter.
func Wrap1[In any](a *Adapter, fn func(In) (any, error)) func(any) (any, error) {
	return adapter.Wrap1(a, fn)
}
