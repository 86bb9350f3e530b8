package probe

import (
	"errors"
	"testing"

	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/gpuarray"
	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/born-ml/bridge/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gorgonia "gorgonia.org/tensor"
)

// Array shares its name with the ndarray type but lives in another package.
type Array struct{}

type panicky struct{}

func (panicky) DLPack() (*dlpack.Capsule, error) { panic("boom") }
func (panicky) DLPackDevice() dlpack.Device      { panic("boom") }

// onDevice claims memory on a WebGPU device.
type onDevice struct{}

func (onDevice) DLPack() (*dlpack.Capsule, error) { return nil, errors.New("not exported") }
func (onDevice) DLPackDevice() dlpack.Device      { return dlpack.Device{Type: dlpack.WebGPU, ID: 1} }

func TestDetectDefault(t *testing.T) {
	p := Default()

	nd, err := ndarray.FromSlice([]float32{1}, ndarray.Shape{1})
	require.NoError(t, err)
	tt, err := tensor.FromSlice([]float32{1}, tensor.Shape{1})
	require.NoError(t, err)
	dense := gorgonia.New(gorgonia.WithShape(2), gorgonia.WithBacking([]float32{1, 2}))

	tests := []struct {
		name  string
		value any
		want  framework.ID
	}{
		{"ndarray", nd, framework.NDArray},
		{"webgpu", (*gpuarray.Array)(nil), framework.WebGPU},
		{"tensor", tt, framework.Tensor},
		{"gorgonia", dense, framework.Gorgonia},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Detect(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	p := Default()

	for _, v := range []any{nil, 42, "x", []float32{1}, &Array{}, Array{}} {
		_, err := p.Detect(v)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownFramework), "%T", v)

		var ufe *UnknownFrameworkError
		assert.ErrorAs(t, err, &ufe)
	}
}

func TestDefaultCoversClosedSet(t *testing.T) {
	seen := map[framework.ID]bool{}
	for _, sig := range Default().Signatures() {
		seen[sig.Framework] = true
	}
	for _, id := range framework.All() {
		assert.True(t, seen[id], "no signature for %s", id)
	}
}

func TestSignatureOfAndOrder(t *testing.T) {
	sig, err := SignatureOf(framework.Gorgonia, (*Array)(nil))
	require.NoError(t, err)
	assert.Equal(t, "github.com/born-ml/bridge/internal/probe", sig.PkgPath)
	assert.Equal(t, "Array", sig.TypeName)

	_, err = SignatureOf(framework.NDArray, Array{})
	assert.Error(t, err)

	// The first matching signature wins.
	p := New(sig, Signature{Framework: framework.Tensor, PkgPath: sig.PkgPath, TypeName: sig.TypeName})
	got, err := p.Detect(&Array{})
	require.NoError(t, err)
	assert.Equal(t, framework.Gorgonia, got)
}

func TestSupportsZeroCopy(t *testing.T) {
	p := Default()

	nd, err := ndarray.FromSlice([]int32{1, 2}, ndarray.Shape{2})
	require.NoError(t, err)
	assert.False(t, p.SupportsZeroCopy(nd), "host memory")

	tt, err := tensor.FromSlice([]int32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	assert.Equal(t, tt.IsGPU(), p.SupportsZeroCopy(tt))

	assert.True(t, p.SupportsZeroCopy(onDevice{}))

	dense := gorgonia.New(gorgonia.WithShape(2), gorgonia.WithBacking([]int32{1, 2}))
	assert.False(t, p.SupportsZeroCopy(dense))

	assert.False(t, p.SupportsZeroCopy(nil))
	assert.False(t, p.SupportsZeroCopy((*ndarray.Array)(nil)))
	assert.False(t, p.SupportsZeroCopy(panicky{}))
	assert.False(t, p.SupportsZeroCopy(3.5))
}
