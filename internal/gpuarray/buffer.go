package gpuarray

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// storageUsage is the usage of every array buffer.
const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// alignedSize rounds n up to the 4-byte copy alignment WebGPU requires.
func alignedSize(n int) uint64 {
	return (uint64(n) + 3) &^ 3
}

// buffer is a reference-counted device buffer shared by aliasing arrays.
type buffer struct {
	raw  *wgpu.Buffer
	size uint64
	refs atomic.Int32
}

func newBuffer(raw *wgpu.Buffer, size uint64) *buffer {
	b := &buffer{raw: raw, size: size}
	b.refs.Store(1)
	return b
}

func (b *buffer) addRef() {
	b.refs.Add(1)
}

// release frees the device buffer once the last reference is dropped.
func (b *buffer) release() {
	if b.refs.Add(-1) == 0 {
		b.raw.Release()
	}
}

// upload creates a storage buffer holding data.
func (d *Device) upload(data []byte) (buf *buffer, err error) {
	defer guard("upload", &err)

	size := alignedSize(len(data))
	if size == 0 {
		return nil, errors.New("gpuarray: empty upload")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Create buffer with MappedAtCreation for initial data upload
	raw := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            storageUsage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	if raw == nil {
		return nil, fmt.Errorf("gpuarray: allocate %d bytes on %s", size, d)
	}

	mappedPtr := raw.GetMappedRange(0, size)
	if mappedPtr == nil {
		raw.Release()
		return nil, fmt.Errorf("gpuarray: map %d bytes on %s", size, d)
	}
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mapped, data)
	raw.Unmap()

	return newBuffer(raw, size), nil
}

// readback copies n bytes of buf to host memory through a staging buffer,
// since storage buffers can't be mapped directly.
func (d *Device) readback(buf *buffer, n int) (out []byte, err error) {
	defer guard("readback", &err)

	d.mu.Lock()
	defer d.mu.Unlock()

	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  buf.size,
	})
	if staging == nil {
		return nil, fmt.Errorf("gpuarray: allocate staging buffer on %s", d)
	}
	defer staging.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(buf.raw, 0, staging, 0, buf.size)
	cmd := encoder.Finish(nil)
	d.queue.Submit(cmd)

	if err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, buf.size); err != nil {
		return nil, fmt.Errorf("gpuarray: map staging buffer: %w", err)
	}

	mappedPtr := staging.GetMappedRange(0, buf.size)
	if mappedPtr == nil {
		staging.Unmap()
		return nil, errors.New("gpuarray: staging buffer has no mapped range")
	}
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*byte)(mappedPtr), buf.size)
	out = make([]byte, n)
	copy(out, mapped[:n])
	staging.Unmap()

	return out, nil
}

// duplicate copies buf into a new buffer on the same device.
func (d *Device) duplicate(buf *buffer) (dst *buffer, err error) {
	defer guard("copy", &err)

	d.mu.Lock()
	defer d.mu.Unlock()

	raw := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: storageUsage,
		Size:  buf.size,
	})
	if raw == nil {
		return nil, fmt.Errorf("gpuarray: allocate %d bytes on %s", buf.size, d)
	}

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(buf.raw, 0, raw, 0, buf.size)
	cmd := encoder.Finish(nil)
	d.queue.Submit(cmd)

	return newBuffer(raw, buf.size), nil
}
