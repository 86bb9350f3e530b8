package convert

import (
	"errors"
	"fmt"

	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
)

// zeroCopyResult is the outcome of the capsule path: either a served value
// or the reason the dispatcher falls back to the host roundtrip.
type zeroCopyResult struct {
	value  Value
	reason error
}

func (z zeroCopyResult) served() bool {
	return z.reason == nil
}

// Convert converts value into the target framework on the registry's device.
func (r *Registry) Convert(value Value, target framework.ID) (Value, error) {
	return r.ConvertOn(value, target, r.device)
}

// ConvertOn converts value into the target framework, placing the result on dev.
//
// The source framework is detected first. Same-framework requests only move
// the value. Otherwise the capsule path is tried when the source can export
// one; any failure there is logged and the host roundtrip runs instead.
func (r *Registry) ConvertOn(value Value, target framework.ID, dev framework.Device) (Value, error) {
	source, err := r.probe.Detect(value)
	if err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, fmt.Errorf("convert: target %w: %s", framework.ErrUnknownID, target)
	}
	if !dev.Valid() {
		return nil, fmt.Errorf("convert: %w: %d", framework.ErrInvalidDevice, int(dev))
	}

	rt, ok := r.routes[routeKey{source, target}]
	if !ok {
		// Unreachable after validation.
		return nil, &RegistryIntegrityError{Framework: source, Missing: fmt.Sprintf("no route to %s", target)}
	}

	if source == target {
		out, err := rt.move(value, dev)
		if err != nil {
			return nil, &MemoryConversionError{Source: source, Target: target, Stage: StageMove, Err: err}
		}
		return out, nil
	}

	if r.zeroCopy && r.probe.SupportsZeroCopy(value) {
		res := r.tryZeroCopy(rt, value, dev)
		if res.served() {
			r.logger.Debug("converted", "source", source, "target", target, "tier", "zero-copy")
			return res.value, nil
		}
		r.logger.Warn("zero-copy conversion failed, using host roundtrip",
			"source", source, "target", target, "err", res.reason)
	}

	out, err := r.hostRoundtrip(rt, value, dev)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("converted", "source", source, "target", target, "tier", "host")
	return out, nil
}

// tryZeroCopy exports a capsule from value and imports it into the target.
// It never returns an error or panics: every failure becomes a fallback reason.
func (r *Registry) tryZeroCopy(rt route, value Value, dev framework.Device) (res zeroCopyResult) {
	defer func() {
		if p := recover(); p != nil {
			res = zeroCopyResult{reason: fmt.Errorf("panic: %v", p)}
		}
	}()

	exporter, ok := value.(dlpack.Exporter)
	if !ok {
		return zeroCopyResult{reason: ErrZeroCopyUnsupported}
	}
	capsule, err := exporter.DLPack()
	if err != nil {
		return zeroCopyResult{reason: fmt.Errorf("export: %w", err)}
	}
	if capsule == nil {
		return zeroCopyResult{reason: errors.New("export: nil capsule")}
	}
	// Frees the producer's reference when the target declined the capsule.
	defer capsule.Release()

	imported, err := rt.fromCapsule(capsule, dev)
	if err != nil {
		return zeroCopyResult{reason: fmt.Errorf("import: %w", err)}
	}
	placed, err := rt.move(imported, dev)
	if err != nil {
		if rel, ok := imported.(interface{ Release() }); ok {
			rel.Release()
		}
		return zeroCopyResult{reason: fmt.Errorf("move: %w", err)}
	}
	return zeroCopyResult{value: placed}
}

// hostRoundtrip copies value to the common format and builds the target from it.
func (r *Registry) hostRoundtrip(rt route, value Value, dev framework.Device) (Value, error) {
	host, err := rt.toHost(value, dev)
	if err != nil {
		return nil, &MemoryConversionError{Source: rt.source, Target: rt.target, Stage: StageToHost, Err: err}
	}
	out, err := rt.fromHost(host, dev)
	if err != nil {
		return nil, &MemoryConversionError{Source: rt.source, Target: rt.target, Stage: StageFromHost, Err: err}
	}
	return out, nil
}
