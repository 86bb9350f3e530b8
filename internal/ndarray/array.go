package ndarray

import (
	"bytes"
	"errors"
	"fmt"
	"unsafe"
)

// ErrDTypeMismatch is returned when a typed view does not match the array's dtype.
var ErrDTypeMismatch = errors.New("ndarray: dtype mismatch")

// Array is a dense, row-major, host-resident array.
type Array struct {
	data  []byte
	shape Shape
	dtype DataType
}

// New allocates a zero-filled array.
func New(shape Shape, dtype DataType) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("ndarray: unknown dtype %d", int(dtype))
	}
	return &Array{
		data:  make([]byte, shape.NumElements()*dtype.Size()),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromBytes creates an array holding a copy of data.
func FromBytes(shape Shape, dtype DataType, data []byte) (*Array, error) {
	a, err := New(shape, dtype)
	if err != nil {
		return nil, err
	}
	if len(data) != len(a.data) {
		return nil, fmt.Errorf("shape %v of %s requires %d bytes, but got %d", shape, dtype, len(a.data), len(data))
	}
	copy(a.data, data)
	return a, nil
}

// Wrap creates an array that aliases data without copying.
func Wrap(shape Shape, dtype DataType, data []byte) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if want := shape.NumElements() * dtype.Size(); len(data) != want || want == 0 {
		return nil, fmt.Errorf("shape %v of %s requires %d bytes, but got %d", shape, dtype, want, len(data))
	}
	return &Array{data: data, shape: shape.Clone(), dtype: dtype}, nil
}

// FromSlice creates an array from a Go slice. The slice is copied.
func FromSlice[T DType](values []T, shape Shape) (*Array, error) {
	if shape.NumElements() != len(values) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(values))
	}
	a, err := New(shape, dataTypeOf[T]())
	if err != nil {
		return nil, err
	}
	copy(a.data, asBytes(values))
	return a, nil
}

// Shape returns the array's shape.
func (a *Array) Shape() Shape {
	return a.shape
}

// DType returns the array's data type.
func (a *Array) DType() DataType {
	return a.dtype
}

// NumElements returns the total number of elements.
func (a *Array) NumElements() int {
	return a.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (a *Array) ByteSize() int {
	return len(a.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory.
func (a *Array) Data() []byte {
	return a.data
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return &Array{
		data:  bytes.Clone(a.data),
		shape: a.shape.Clone(),
		dtype: a.dtype,
	}
}

// Equal reports whether both arrays have the same shape, dtype and bytes.
func (a *Array) Equal(other *Array) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.dtype == other.dtype && a.shape.Equal(other.shape) && bytes.Equal(a.data, other.data)
}

// Index returns a copy of the i-th sub-array along axis 0.
func (a *Array) Index(i int) (*Array, error) {
	if len(a.shape) == 0 {
		return nil, errors.New("ndarray: cannot index a scalar")
	}
	if i < 0 || i >= a.shape[0] {
		return nil, fmt.Errorf("ndarray: index %d out of range [0, %d)", i, a.shape[0])
	}
	sub := a.shape[1:].Clone()
	step := sub.NumElements() * a.dtype.Size()
	return &Array{
		data:  bytes.Clone(a.data[i*step : (i+1)*step]),
		shape: sub,
		dtype: a.dtype,
	}, nil
}

// String returns a short description, not the contents.
func (a *Array) String() string {
	return fmt.Sprintf("ndarray.Array(shape=%v, dtype=%s)", a.shape, a.dtype)
}

// View interprets the data as []T without copying.
func View[T DType](a *Array) ([]T, error) {
	if want := dataTypeOf[T](); a.dtype != want {
		return nil, fmt.Errorf("%w: array is %s, requested %s", ErrDTypeMismatch, a.dtype, want)
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&a.data[0])), a.NumElements()), nil
}

// ToSlice returns the elements as a freshly allocated []T.
func ToSlice[T DType](a *Array) ([]T, error) {
	view, err := View[T](a)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(view))
	copy(out, view)
	return out, nil
}

// asBytes reinterprets a typed slice as bytes without copying.
func asBytes[T DType](values []T) []byte {
	if len(values) == 0 {
		return nil
	}
	var zero T
	//nolint:gosec // unsafe.Slice for zero-copy conversion
	return unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*int(unsafe.Sizeof(zero)))
}

// Bytes reinterprets a typed slice as bytes without copying.
func Bytes[T DType](values []T) []byte {
	return asBytes(values)
}
