package convert

import (
	"errors"
	"fmt"

	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/probe"
)

var (
	// ErrUnknownFramework is returned when the source value matches no framework.
	ErrUnknownFramework = probe.ErrUnknownFramework

	// ErrMemoryConversion is returned when the host roundtrip fails.
	ErrMemoryConversion = errors.New("memory conversion failed")

	// ErrRegistryIntegrity is returned by Init when the conversion matrix is incomplete.
	ErrRegistryIntegrity = errors.New("registry integrity check failed")

	// ErrZeroCopyUnsupported is returned by Converter.FromCapsule when a capsule
	// cannot be imported without a copy. It never escapes Convert.
	ErrZeroCopyUnsupported = errors.New("zero-copy conversion unsupported")
)

// UnknownFrameworkError is the detailed form of ErrUnknownFramework.
type UnknownFrameworkError = probe.UnknownFrameworkError

// Stage names the step of a host roundtrip that failed.
type Stage string

// Roundtrip stages.
const (
	StageToHost   Stage = "to_host"
	StageFromHost Stage = "from_host"
	StageMove     Stage = "move_to_device"
)

// MemoryConversionError reports a failed host roundtrip.
type MemoryConversionError struct {
	Source framework.ID
	Target framework.ID
	Stage  Stage
	Err    error
}

// Error implements the error interface.
func (e *MemoryConversionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s at %s: %v", ErrMemoryConversion, e.Source, e.Target, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MemoryConversionError) Unwrap() error {
	return e.Err
}

// Is reports ErrMemoryConversion for errors.Is() compatibility.
func (e *MemoryConversionError) Is(target error) bool {
	return target == ErrMemoryConversion
}

// RegistryIntegrityError names the first hole the validator found.
type RegistryIntegrityError struct {
	Framework framework.ID
	Missing   string
}

// Error implements the error interface.
func (e *RegistryIntegrityError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrRegistryIntegrity, e.Framework, e.Missing)
}

// Unwrap returns ErrRegistryIntegrity for errors.Is() compatibility.
func (e *RegistryIntegrityError) Unwrap() error {
	return ErrRegistryIntegrity
}
