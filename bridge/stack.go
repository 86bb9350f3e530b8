// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bridge

import "github.com/born-ml/bridge/internal/stack"

// ErrInvalidStack is returned for empty, mismatched or non-2-D stack inputs.
var ErrInvalidStack = stack.ErrInvalidStack

// StackError describes an invalid stack or unstack input.
type StackError = stack.StackError

// Stack stacks same-framework 2-D arrays of equal shape and dtype into one
// 3-D array of that framework. Axis 0 follows input order.
func Stack(slices []any, dev Device) (any, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return stack.Stack(r, slices, dev)
}

// StackAs stacks 2-D arrays from any mix of frameworks into one 3-D array
// in target's framework.
func StackAs(slices []any, target Framework, dev Device) (any, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return stack.StackAs(r, slices, target, dev)
}

// Unstack splits a 3-D array along its first axis, keeping its framework.
func Unstack(volume any, dev Device) ([]any, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return stack.Unstack(r, volume, dev)
}

// UnstackAs splits a 3-D array into 2-D arrays in target's framework.
func UnstackAs(volume any, target Framework, dev Device) ([]any, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return stack.UnstackAs(r, volume, target, dev)
}
