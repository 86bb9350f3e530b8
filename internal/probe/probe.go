// Package probe identifies which framework produced a value and whether the
// value can export its memory as a zero-copy capsule.
//
// Detection matches the dynamic type of a value against signatures of
// (package path, type name). The probe never imports framework packages, so a
// framework linked out of the build is simply never matched.
package probe

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
)

// ErrUnknownFramework is returned when a value matches no signature.
var ErrUnknownFramework = errors.New("unknown framework")

// UnknownFrameworkError names the type that could not be identified.
type UnknownFrameworkError struct {
	Type string
}

// Error implements the error interface.
func (e *UnknownFrameworkError) Error() string {
	return fmt.Sprintf("%s: no framework recognizes %s", ErrUnknownFramework, e.Type)
}

// Unwrap returns ErrUnknownFramework for errors.Is() compatibility.
func (e *UnknownFrameworkError) Unwrap() error {
	return ErrUnknownFramework
}

// Signature identifies the array type of one framework.
type Signature struct {
	Framework framework.ID
	// PkgPath is the import path of the package declaring the type.
	PkgPath string
	// TypeName is the unqualified type name. Values are matched as *TypeName.
	TypeName string
}

func (s Signature) String() string {
	return fmt.Sprintf("%s: *%s.%s", s.Framework, s.PkgPath, s.TypeName)
}

// Default signatures, in detection order.
var defaultSignatures = []Signature{
	{Framework: framework.NDArray, PkgPath: "github.com/born-ml/bridge/internal/ndarray", TypeName: "Array"},
	{Framework: framework.WebGPU, PkgPath: "github.com/born-ml/bridge/internal/gpuarray", TypeName: "Array"},
	{Framework: framework.Tensor, PkgPath: "github.com/born-ml/bridge/internal/tensor", TypeName: "Tensor"},
	{Framework: framework.Gorgonia, PkgPath: "gorgonia.org/tensor", TypeName: "Dense"},
}

// Probe detects frameworks by signature. It is immutable and safe for
// concurrent use.
type Probe struct {
	signatures []Signature
}

// New creates a probe that checks signatures in the given order.
func New(signatures ...Signature) *Probe {
	return &Probe{signatures: append([]Signature(nil), signatures...)}
}

// Default returns a probe for every framework in the closed set.
func Default() *Probe {
	return New(defaultSignatures...)
}

// SignatureOf derives the signature of a pointer sample, such as (*T)(nil).
func SignatureOf(id framework.ID, sample any) (Signature, error) {
	t := reflect.TypeOf(sample)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Name() == "" {
		return Signature{}, fmt.Errorf("probe: sample %T is not a pointer to a named type", sample)
	}
	return Signature{Framework: id, PkgPath: t.Elem().PkgPath(), TypeName: t.Elem().Name()}, nil
}

// Signatures returns the signatures in detection order.
func (p *Probe) Signatures() []Signature {
	return append([]Signature(nil), p.signatures...)
}

// Detect returns the framework that produced value.
func (p *Probe) Detect(value any) (framework.ID, error) {
	t := reflect.TypeOf(value)
	if t == nil {
		return 0, &UnknownFrameworkError{Type: "<nil>"}
	}
	if t.Kind() == reflect.Pointer {
		elem := t.Elem()
		for _, sig := range p.signatures {
			if elem.PkgPath() == sig.PkgPath && elem.Name() == sig.TypeName {
				return sig.Framework, nil
			}
		}
	}
	return 0, &UnknownFrameworkError{Type: t.String()}
}

// Recognizes reports whether Detect would succeed.
func (p *Probe) Recognizes(value any) bool {
	_, err := p.Detect(value)
	return err == nil
}

// SupportsZeroCopy reports whether value can export its device memory as a
// capsule. Host-resident exporters report false. It never fails: nil values,
// typed nil pointers and exporters that panic report false.
func (p *Probe) SupportsZeroCopy(value any) (ok bool) {
	if isNil(value) {
		return false
	}
	exporter, isExporter := value.(dlpack.Exporter)
	if !isExporter {
		return false
	}

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	dev := exporter.DLPackDevice()
	return dev.Type != 0 && dev.Type != dlpack.CPU
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
