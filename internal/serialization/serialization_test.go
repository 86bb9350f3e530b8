package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArrays(t *testing.T) map[string]*ndarray.Array {
	t.Helper()
	f32, err := ndarray.FromSlice([]float32{1, 2, 3, 4, 5, 6}, ndarray.Shape{2, 3})
	require.NoError(t, err)
	i64, err := ndarray.FromSlice([]int64{-7, 9}, ndarray.Shape{2})
	require.NoError(t, err)
	u8, err := ndarray.FromSlice([]uint8{1, 2, 3}, ndarray.Shape{3})
	require.NoError(t, err)
	mask, err := ndarray.FromSlice([]bool{true, false}, ndarray.Shape{1, 2})
	require.NoError(t, err)
	return map[string]*ndarray.Array{
		"layer.weight": f32,
		"ids":          i64,
		"pixels":       u8,
		"mask":         mask,
	}
}

// encode builds a raw stream from a header object and data section.
func encode(t *testing.T, header map[string]any, data []byte) []byte {
	t.Helper()
	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(headerJSON))))
	buf.Write(headerJSON)
	buf.Write(data)
	return buf.Bytes()
}

func TestRoundTripFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arrays.safetensors")
	arrays := testArrays(t)
	meta := map[string]string{"format": "pt", "source": "test"}

	require.NoError(t, WriteSafeTensors(path, arrays, meta))

	f, err := ReadSafeTensors(path)
	require.NoError(t, err)
	assert.Equal(t, meta, f.Metadata)
	assert.Equal(t, []string{"ids", "layer.weight", "mask", "pixels"}, f.Names())
	for name, want := range arrays {
		assert.True(t, want.Equal(f.Arrays[name]), name)
	}
}

func TestWriteLayout(t *testing.T) {
	var buf bytes.Buffer
	a, err := ndarray.FromSlice([]float32{1, 2}, ndarray.Shape{2})
	require.NoError(t, err)
	b, err := ndarray.FromSlice([]float32{3}, ndarray.Shape{1})
	require.NoError(t, err)
	require.NoError(t, WriteTo(&buf, map[string]*ndarray.Array{"b": b, "a": a}, nil))

	raw := buf.Bytes()
	size := binary.LittleEndian.Uint64(raw[:8])
	assert.Zero(t, size%headerAlignment)

	var header Header
	require.NoError(t, json.Unmarshal(raw[8:8+size], &header))
	assert.Nil(t, header.Metadata)
	assert.Equal(t, TensorInfo{DType: DTypeF32, Shape: []int64{2}, DataOffsets: [2]int64{0, 8}}, header.Tensors["a"])
	assert.Equal(t, TensorInfo{DType: DTypeF32, Shape: []int64{1}, DataOffsets: [2]int64{8, 12}}, header.Tensors["b"])
	assert.Len(t, raw, 8+int(size)+12)
}

func TestReadCopiesData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, testArrays(t), nil))
	raw := buf.Bytes()

	f, err := ReadFrom(bytes.NewReader(raw))
	require.NoError(t, err)
	for i := range raw {
		raw[i] = 0
	}
	got, err := ndarray.ToSlice[float32](f.Arrays["layer.weight"])
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, got)
}

func TestReadRejectsMalformed(t *testing.T) {
	eight := make([]byte, 8)
	tests := []struct {
		name   string
		header map[string]any
		data   []byte
		want   error
	}{
		{
			name:   "out of bounds",
			header: map[string]any{"x": TensorInfo{DType: DTypeF32, Shape: []int64{4}, DataOffsets: [2]int64{0, 16}}},
			data:   eight,
			want:   ErrOutOfBounds,
		},
		{
			name:   "negative offset",
			header: map[string]any{"x": TensorInfo{DType: DTypeU8, Shape: []int64{1}, DataOffsets: [2]int64{-1, 0}}},
			data:   eight,
			want:   ErrNegativeOffset,
		},
		{
			name:   "size mismatch",
			header: map[string]any{"x": TensorInfo{DType: DTypeF32, Shape: []int64{3}, DataOffsets: [2]int64{0, 8}}},
			data:   eight,
			want:   ErrSizeMismatch,
		},
		{
			name: "overlap",
			header: map[string]any{
				"x": TensorInfo{DType: DTypeF32, Shape: []int64{2}, DataOffsets: [2]int64{0, 8}},
				"y": TensorInfo{DType: DTypeF32, Shape: []int64{1}, DataOffsets: [2]int64{4, 8}},
			},
			data: eight,
			want: ErrOffsetOverlap,
		},
		{
			name:   "half precision",
			header: map[string]any{"x": TensorInfo{DType: "F16", Shape: []int64{4}, DataOffsets: [2]int64{0, 8}}},
			data:   eight,
			want:   ErrUnsupportedDType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrom(bytes.NewReader(encode(t, tt.header, tt.data)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestReadRejectsTruncatedStreams(t *testing.T) {
	_, err := ReadFrom(bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)

	var huge bytes.Buffer
	require.NoError(t, binary.Write(&huge, binary.LittleEndian, uint64(MaxHeaderSize+1)))
	_, err = ReadFrom(&huge)
	assert.ErrorIs(t, err, ErrHeaderTooLarge)

	var short bytes.Buffer
	require.NoError(t, binary.Write(&short, binary.LittleEndian, uint64(64)))
	short.WriteString("{}")
	_, err = ReadFrom(&short)
	assert.Error(t, err)

	_, err = ReadFrom(bytes.NewReader(encode(t, map[string]any{"x": "not an object"}, nil)))
	assert.Error(t, err)
}

func TestWriteRejectsBadNames(t *testing.T) {
	a, err := ndarray.FromSlice([]uint8{1}, ndarray.Shape{1})
	require.NoError(t, err)

	for _, name := range []string{"", "__metadata__", "a\x00b"} {
		err := WriteTo(&bytes.Buffer{}, map[string]*ndarray.Array{name: a}, nil)
		assert.ErrorIs(t, err, ErrInvalidTensorName, "%q", name)
	}
	assert.Error(t, WriteTo(&bytes.Buffer{}, map[string]*ndarray.Array{"nil": nil}, nil))
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadSafeTensors(filepath.Join(t.TempDir(), "missing.safetensors"))
	assert.Error(t, err)
}
