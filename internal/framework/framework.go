// Package framework declares the closed set of array frameworks bridge converts between.
package framework

import (
	"errors"
	"fmt"
	"strings"
)

// ID identifies an array framework.
type ID uint8

// Supported frameworks. The order is the canonical iteration order.
const (
	NDArray  ID = iota // host array library, the common format
	WebGPU             // GPU array library (go-webgpu buffers)
	Tensor             // born-style tensor library, GPU-capable with a CPU mode
	Gorgonia           // gorgonia.org/tensor dense tensors
	numIDs
)

// Capability describes what a framework can hold.
type Capability struct {
	// GPU reports that the framework can place data in device memory.
	// A GPU-capable framework may still support a CPU-resident mode.
	GPU bool
}

// capabilities is the build-time configuration surface. Adding a framework
// means adding an ID, a name and an entry here.
var capabilities = [numIDs]Capability{
	NDArray:  {GPU: false},
	WebGPU:   {GPU: true},
	Tensor:   {GPU: true},
	Gorgonia: {GPU: false},
}

var names = [numIDs]string{
	NDArray:  "ndarray",
	WebGPU:   "webgpu",
	Tensor:   "tensor",
	Gorgonia: "gorgonia",
}

// ErrUnknownID is returned by ParseID for names outside the closed set.
var ErrUnknownID = errors.New("unknown framework id")

// String returns the framework name.
func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("framework(%d)", uint8(id))
	}
	return names[id]
}

// Valid reports whether id belongs to the closed set.
func (id ID) Valid() bool {
	return id < numIDs
}

// Capability returns the capability entry for id.
func (id ID) Capability() Capability {
	if !id.Valid() {
		return Capability{}
	}
	return capabilities[id]
}

// IsGPU reports whether id is GPU-capable.
func (id ID) IsGPU() bool {
	return id.Capability().GPU
}

// ParseID resolves a framework name (case-insensitive).
func ParseID(s string) (ID, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == want {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownID, s, strings.Join(names[:], ", "))
}

// All returns every framework in canonical order.
func All() []ID {
	ids := make([]ID, 0, numIDs)
	for i := ID(0); i < numIDs; i++ {
		ids = append(ids, i)
	}
	return ids
}

// CPU returns the CPU-only frameworks.
func CPU() []ID {
	return filter(false)
}

// GPU returns the GPU-capable frameworks.
func GPU() []ID {
	return filter(true)
}

// Count returns the size of the closed set.
func Count() int {
	return int(numIDs)
}

func filter(gpu bool) []ID {
	var ids []ID
	for _, id := range All() {
		if capabilities[id].GPU == gpu {
			ids = append(ids, id)
		}
	}
	return ids
}

// Device is a device hint: the index of the device a GPU-capable framework
// should place data on. CPU frameworks ignore it.
type Device int

// DefaultDevice is the first device of the runtime.
const DefaultDevice Device = 0

// ErrInvalidDevice is returned for device hints that name no device.
var ErrInvalidDevice = errors.New("invalid device hint")

// Valid reports whether d is a device index.
func (d Device) Valid() bool {
	return d >= 0
}

// String returns a human-readable device name.
func (d Device) String() string {
	return fmt.Sprintf("device:%d", int(d))
}
