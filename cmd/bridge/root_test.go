package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/born-ml/bridge/internal/serialization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command tree with an isolated config directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeInput(t *testing.T) string {
	t.Helper()
	a, err := ndarray.FromSlice([]float32{1, 2, 3, 4, 5, 6}, ndarray.Shape{2, 3})
	require.NoError(t, err)
	b, err := ndarray.FromSlice([]float32{7, 8, 9, 10, 11, 12}, ndarray.Shape{2, 3})
	require.NoError(t, err)
	ids, err := ndarray.FromSlice([]int64{1, 2, 3}, ndarray.Shape{3})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "in.safetensors")
	require.NoError(t, serialization.WriteSafeTensors(path, map[string]*ndarray.Array{
		"slice.0": a,
		"slice.1": b,
		"ids":     ids,
	}, map[string]string{"format": "test"}))
	return path
}

func TestGetVersionString(t *testing.T) {
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	t.Cleanup(func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	})

	assert.Equal(t, "dev (built from source)", getVersionString())

	Version, Commit, BuildDate = "v1.2.3", "abc1234", "2025-06-15T10:00:00Z"
	assert.Equal(t, "v1.2.3 (commit: abc1234, built: 2025-06-15T10:00:00Z)", getVersionString())
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (built from source)")
}

func TestFrameworksCommand(t *testing.T) {
	out, err := run(t, "frameworks")
	require.NoError(t, err)
	for _, name := range []string{"ndarray", "webgpu", "tensor", "gorgonia", "*tensor.Dense"} {
		assert.Contains(t, out, name)
	}
}

func TestMatrixCommand(t *testing.T) {
	out, err := run(t, "matrix")
	require.NoError(t, err)
	assert.Contains(t, out, "16 of 16 routes")
}

func TestConvertCommand(t *testing.T) {
	in := writeInput(t)
	outPath := filepath.Join(t.TempDir(), "out.safetensors")

	out, err := run(t, "convert", in, "--to", "gorgonia", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "slice.0")
	assert.Contains(t, out, "gorgonia")
	assert.Contains(t, out, "wrote 3 arrays")

	f, err := serialization.ReadSafeTensors(outPath)
	require.NoError(t, err)
	assert.Equal(t, "gorgonia", f.Metadata["bridge.target"])
	assert.Equal(t, "test", f.Metadata["format"])
	got, err := ndarray.ToSlice[int64](f.Arrays["ids"])
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestConvertCommandErrors(t *testing.T) {
	in := writeInput(t)

	_, err := run(t, "convert", in, "--to", "torch")
	assert.Error(t, err)

	_, err = run(t, "convert", filepath.Join(t.TempDir(), "missing.safetensors"), "--to", "tensor")
	assert.Error(t, err)

	_, err = run(t, "convert", in)
	assert.Error(t, err)
}

func TestStackCommand(t *testing.T) {
	in := writeInput(t)
	outPath := filepath.Join(t.TempDir(), "volume.safetensors")

	out, err := run(t, "stack", in, "--out", outPath, "--via", "tensor")
	require.NoError(t, err)
	assert.Contains(t, out, "stacked 2 slices")

	f, err := serialization.ReadSafeTensors(outPath)
	require.NoError(t, err)
	require.Contains(t, f.Arrays, "volume")
	assert.Equal(t, ndarray.Shape{2, 2, 3}, f.Arrays["volume"].Shape())
	assert.Equal(t, "slice.0,slice.1", f.Metadata["bridge.stacked_from"])

	values, err := ndarray.ToSlice[float32](f.Arrays["volume"])
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, values)
}

func TestConfigShow(t *testing.T) {
	t.Setenv("BRIDGE_ZERO_COPY", "false")
	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "zero_copy = false")
	assert.Contains(t, out, "(using defaults)")
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.cue")
	require.NoError(t, os.WriteFile(path, []byte(`default_device: 3`), 0o600))

	out, err := run(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "default_device = 3")
	assert.Contains(t, out, path)

	_, err = run(t, "--log-level", "loud", "config", "show")
	assert.Error(t, err)
}
