package ndarray

import (
	"errors"
	"testing"

	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSliceAndView(t *testing.T) {
	a, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)

	assert.Equal(t, Float32, a.DType())
	assert.Equal(t, Shape{2, 3}, a.Shape())
	assert.Equal(t, 6, a.NumElements())
	assert.Equal(t, 24, a.ByteSize())

	view, err := View[float32](a)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, view)

	// View is zero-copy
	view[0] = 42
	again, err := View[float32](a)
	require.NoError(t, err)
	assert.Equal(t, float32(42), again[0])

	_, err = View[int64](a)
	assert.True(t, errors.Is(err, ErrDTypeMismatch))
}

func TestFromSliceShapeMismatch(t *testing.T) {
	_, err := FromSlice([]int32{1, 2, 3}, Shape{2, 2})
	assert.Error(t, err)
}

func TestNewRejectsInvalidShape(t *testing.T) {
	_, err := New(Shape{2, 0}, Float32)
	assert.Error(t, err)

	_, err = New(Shape{2}, DataType(99))
	assert.Error(t, err)
}

func TestEveryDataType(t *testing.T) {
	for _, dt := range DataTypes {
		a, err := New(Shape{3, 2}, dt)
		require.NoError(t, err, dt.String())
		assert.Equal(t, 6*dt.Size(), a.ByteSize())

		back, err := DataTypeFromDLPack(dt.DLPack())
		require.NoError(t, err)
		assert.Equal(t, dt, back)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a, err := FromSlice([]uint8{1, 2, 3, 4}, Shape{4})
	require.NoError(t, err)

	b := a.Clone()
	require.True(t, a.Equal(b))

	b.Data()[0] = 9
	assert.False(t, a.Equal(b))
	assert.Equal(t, uint8(1), a.Data()[0])
}

func TestIndex(t *testing.T) {
	a, err := FromSlice([]int64{1, 2, 3, 4, 5, 6}, Shape{3, 2})
	require.NoError(t, err)

	row, err := a.Index(1)
	require.NoError(t, err)
	assert.Equal(t, Shape{2}, row.Shape())
	values, err := ToSlice[int64](row)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, values)

	view, err := View[int64](row)
	require.NoError(t, err)
	view[0] = 99
	orig, err := ToSlice[int64](a)
	require.NoError(t, err)
	assert.Equal(t, int64(3), orig[2])

	_, err = a.Index(3)
	assert.Error(t, err)
}

func TestCapsuleRoundTripAliases(t *testing.T) {
	a, err := FromSlice([]float64{1.5, 2.5}, Shape{2})
	require.NoError(t, err)

	capsule, err := a.DLPack()
	require.NoError(t, err)

	b, err := FromCapsule(capsule)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	// Zero-copy: both share memory.
	view, _ := View[float64](b)
	view[0] = -1
	orig, _ := View[float64](a)
	assert.Equal(t, -1.0, orig[0])

	_, err = FromCapsule(capsule)
	assert.ErrorIs(t, err, dlpack.ErrConsumed)
}

func TestFromCapsuleRejectsDeviceMemory(t *testing.T) {
	capsule := dlpack.NewCapsule(&dlpack.Tensor{
		Device: dlpack.Device{Type: dlpack.WebGPU},
		DType:  Float32.DLPack(),
		Shape:  []int64{4},
	}, nil)

	_, err := FromCapsule(capsule)
	require.ErrorIs(t, err, ErrNotHostCapsule)
	assert.False(t, capsule.Consumed(), "rejected capsule stays with the producer")
}
