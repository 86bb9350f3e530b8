// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ndarray is the host-resident dense array every framework converts
// through. Arrays are row-major, carry one of six element types, and export
// their memory as a DLPack capsule.
//
// Example:
//
//	a, _ := ndarray.FromSlice([]float32{1, 2, 3, 4}, ndarray.Shape{2, 2})
//	row, _ := a.Index(1) // copy of the second row
//	values, _ := ndarray.View[float32](row)
package ndarray

import (
	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/ndarray"
)

// Array is a dense host array.
type Array = ndarray.Array

// Shape represents the dimensions of an array.
type Shape = ndarray.Shape

// DataType is the runtime element type of an array.
type DataType = ndarray.DataType

// DType is a constraint for supported element types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = ndarray.DType

// Data type constants.
const (
	Float32 DataType = ndarray.Float32
	Float64 DataType = ndarray.Float64
	Int32   DataType = ndarray.Int32
	Int64   DataType = ndarray.Int64
	Uint8   DataType = ndarray.Uint8
	Bool    DataType = ndarray.Bool
)

// Errors.
var (
	ErrDTypeMismatch  = ndarray.ErrDTypeMismatch
	ErrNotHostCapsule = ndarray.ErrNotHostCapsule
)

// New allocates a zero-filled array.
func New(shape Shape, dtype DataType) (*Array, error) {
	return ndarray.New(shape, dtype)
}

// FromSlice creates an array holding a copy of values.
func FromSlice[T DType](values []T, shape Shape) (*Array, error) {
	return ndarray.FromSlice(values, shape)
}

// FromBytes creates an array holding a copy of little-endian data.
func FromBytes(shape Shape, dtype DataType, data []byte) (*Array, error) {
	return ndarray.FromBytes(shape, dtype, data)
}

// View interprets the array's storage as []T without copying.
func View[T DType](a *Array) ([]T, error) {
	return ndarray.View[T](a)
}

// ToSlice returns the elements as a freshly allocated []T.
func ToSlice[T DType](a *Array) ([]T, error) {
	return ndarray.ToSlice[T](a)
}

// FromCapsule consumes a host capsule and returns an array aliasing its memory.
func FromCapsule(c *dlpack.Capsule) (*Array, error) {
	return ndarray.FromCapsule(c)
}
