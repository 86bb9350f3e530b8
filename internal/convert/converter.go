// Package convert dispatches conversions between array frameworks.
//
// Every framework registers one Converter. Convert first tries to hand the
// source's memory to the target through a DLPack capsule; if that path is
// unavailable or fails for any reason, it falls back to a roundtrip through
// the host common format (*ndarray.Array).
package convert

import (
	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/ndarray"
)

// Value is a framework-native array handle.
type Value = any

// Converter implements the four conversion primitives of one framework.
// Implementations are stateless and safe for concurrent use. None of the
// methods mutate their input.
type Converter interface {
	// Framework returns the framework this converter handles.
	Framework() framework.ID

	// ToHost copies v into the common format. GPU-resident input is copied to the host.
	ToHost(v Value, dev framework.Device) (*ndarray.Array, error)

	// FromHost builds a native value from the common format, placing it on
	// dev when the framework is GPU-capable.
	FromHost(a *ndarray.Array, dev framework.Device) (Value, error)

	// FromCapsule imports a capsule without copying. It returns an error
	// wrapping ErrZeroCopyUnsupported when the capsule cannot be taken as is,
	// and must not consume the capsule in that case.
	FromCapsule(c *dlpack.Capsule, dev framework.Device) (Value, error)

	// MoveToDevice places v on dev. It may return v itself when already placed.
	MoveToDevice(v Value, dev framework.Device) (Value, error)
}
