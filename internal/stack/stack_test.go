package stack

import (
	"errors"
	"testing"

	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/converters"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/logging"
	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *convert.Registry {
	t.Helper()
	r, err := convert.Init(converters.All(), convert.WithLogger(logging.Discard()))
	require.NoError(t, err)
	return r
}

// slices returns n 2-D float32 slices of shape rows x cols; slice k holds k*100 + i.
func slices(t *testing.T, n, rows, cols int) []*ndarray.Array {
	t.Helper()
	out := make([]*ndarray.Array, n)
	for k := range out {
		values := make([]float32, rows*cols)
		for i := range values {
			values[i] = float32(k*100 + i)
		}
		a, err := ndarray.FromSlice(values, ndarray.Shape{rows, cols})
		require.NoError(t, err)
		out[k] = a
	}
	return out
}

func in(t *testing.T, r *convert.Registry, id framework.ID, arrays []*ndarray.Array) []convert.Value {
	t.Helper()
	out := make([]convert.Value, len(arrays))
	for i, a := range arrays {
		v, err := r.Convert(a.Clone(), id)
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func toHost(t *testing.T, r *convert.Registry, v convert.Value) *ndarray.Array {
	t.Helper()
	h, err := r.Convert(v, framework.NDArray)
	require.NoError(t, err)
	return h.(*ndarray.Array)
}

func TestStackOrderAndShape(t *testing.T) {
	r := newRegistry(t)
	s := slices(t, 3, 4, 5)

	vol, err := Stack(r, in(t, r, framework.NDArray, s), 0)
	require.NoError(t, err)

	host := vol.(*ndarray.Array)
	assert.Equal(t, ndarray.Shape{3, 4, 5}, host.Shape())
	for k := range s {
		slice, err := host.Index(k)
		require.NoError(t, err)
		assert.True(t, s[k].Equal(slice), "slice %d", k)
	}
}

func TestRoundTrips(t *testing.T) {
	r := newRegistry(t)
	s := slices(t, 5, 10, 10)

	for _, id := range []framework.ID{framework.NDArray, framework.Tensor, framework.Gorgonia} {
		t.Run(id.String(), func(t *testing.T) {
			vol, err := Stack(r, in(t, r, id, s), 0)
			require.NoError(t, err)
			got, err := r.Detect(vol)
			require.NoError(t, err)
			assert.Equal(t, id, got)

			parts, err := Unstack(r, vol, 0)
			require.NoError(t, err)
			require.Len(t, parts, len(s))
			for k, p := range parts {
				pid, err := r.Detect(p)
				require.NoError(t, err)
				assert.Equal(t, id, pid)
				assert.True(t, s[k].Equal(toHost(t, r, p)), "slice %d", k)
			}

			again, err := Stack(r, parts, 0)
			require.NoError(t, err)
			assert.True(t, toHost(t, r, vol).Equal(toHost(t, r, again)))
		})
	}
}

func TestStackAsMixedFrameworks(t *testing.T) {
	r := newRegistry(t)
	s := slices(t, 3, 2, 2)

	mixed := []convert.Value{
		in(t, r, framework.NDArray, s[:1])[0],
		in(t, r, framework.Gorgonia, s[1:2])[0],
		in(t, r, framework.Tensor, s[2:])[0],
	}

	_, err := Stack(r, mixed, 0)
	require.ErrorIs(t, err, ErrInvalidStack)

	vol, err := StackAs(r, mixed, framework.Tensor, 0)
	require.NoError(t, err)
	id, err := r.Detect(vol)
	require.NoError(t, err)
	assert.Equal(t, framework.Tensor, id)

	parts, err := UnstackAs(r, vol, framework.Gorgonia, 0)
	require.NoError(t, err)
	for k, p := range parts {
		pid, _ := r.Detect(p)
		assert.Equal(t, framework.Gorgonia, pid)
		assert.True(t, s[k].Equal(toHost(t, r, p)))
	}
}

func TestStackRejectsInvalidInput(t *testing.T) {
	r := newRegistry(t)

	vec, err := ndarray.FromSlice([]float32{1, 2}, ndarray.Shape{2})
	require.NoError(t, err)
	ints, err := ndarray.FromSlice([]int32{1, 2, 3, 4}, ndarray.Shape{2, 2})
	require.NoError(t, err)
	wide := slices(t, 1, 2, 3)[0]
	square := slices(t, 2, 2, 2)

	tests := []struct {
		name   string
		slices []convert.Value
	}{
		{"empty", nil},
		{"not 2-D", []convert.Value{vec}},
		{"shape mismatch", []convert.Value{square[0], wide}},
		{"dtype mismatch", []convert.Value{square[0], ints}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Stack(r, tc.slices, 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidStack))

			var se *StackError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestUnstackRejectsNon3D(t *testing.T) {
	r := newRegistry(t)
	_, err := Unstack(r, slices(t, 1, 2, 2)[0], 0)
	assert.ErrorIs(t, err, ErrInvalidStack)
}

func TestStackUnknownValue(t *testing.T) {
	r := newRegistry(t)
	_, err := Stack(r, []convert.Value{"x"}, 0)
	assert.ErrorIs(t, err, convert.ErrUnknownFramework)
}
