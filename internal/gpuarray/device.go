// Package gpuarray implements device-resident arrays on WebGPU.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// Devices are opened lazily by index and cached for the life of the process.
// Every index is a logical device on the default adapter.
package gpuarray

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// ErrUnavailable is returned when no WebGPU adapter or native library is present.
var ErrUnavailable = errors.New("gpuarray: webgpu not available")

// MaxDevices bounds the device index space.
const MaxDevices = 8

// Device is an opened WebGPU device with its queue.
type Device struct {
	index    int
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	info     AdapterInfo

	// mu serializes queue submission and buffer mapping.
	mu sync.Mutex
}

// AdapterInfo describes the adapter backing a device.
type AdapterInfo struct {
	Vendor       string
	Architecture string
	Device       string
	Description  string
}

var (
	devicesMu sync.Mutex
	devices   = map[int]*Device{}
	// probeErr caches the first native load failure.
	probeErr error
)

// Open returns the device at index, opening it on first use.
func Open(index int) (*Device, error) {
	if index < 0 || index >= MaxDevices {
		return nil, fmt.Errorf("gpuarray: device index %d out of range [0, %d)", index, MaxDevices)
	}

	devicesMu.Lock()
	defer devicesMu.Unlock()

	if d, ok := devices[index]; ok {
		return d, nil
	}
	if probeErr != nil {
		return nil, probeErr
	}

	d, err := openDevice(index)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			probeErr = err
		}
		return nil, err
	}
	devices[index] = d
	return d, nil
}

// IsAvailable reports whether device 0 can be opened.
func IsAvailable() bool {
	_, err := Open(0)
	return err == nil
}

// openDevice creates the instance, adapter, device and queue.
func openDevice(index int) (d *Device, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = fmt.Errorf("%w: native library: %v", ErrUnavailable, r)
		}
	}()

	if initErr := wgpu.Init(); initErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, initErr)
	}

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrUnavailable, err)
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: request adapter: %w", ErrUnavailable, err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: request device %d: %w", ErrUnavailable, index, err)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: device %d has no queue", ErrUnavailable, index)
	}

	d = &Device{
		index:    index,
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    queue,
	}

	// Adapter info is optional.
	if info, infoErr := adapter.GetInfo(); infoErr == nil && info != nil {
		d.info = AdapterInfo{
			Vendor:       info.Vendor,
			Architecture: info.Architecture,
			Device:       info.Device,
			Description:  info.Description,
		}
	}
	return d, nil
}

// Index returns the device index.
func (d *Device) Index() int {
	return d.index
}

// Info returns the adapter description.
func (d *Device) Info() AdapterInfo {
	return d.info
}

// String returns "webgpu:<index>".
func (d *Device) String() string {
	return fmt.Sprintf("webgpu:%d", d.index)
}

// guard converts a native panic into an error. Use with a named error return.
func guard(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("gpuarray: %s: %v", op, r)
	}
}
