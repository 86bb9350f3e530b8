package convert

import (
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/logging"
	"github.com/born-ml/bridge/internal/probe"
	"github.com/charmbracelet/log"
)

type options struct {
	logger   *log.Logger
	probe    *probe.Probe
	zeroCopy bool
	device   framework.Device
}

func defaultOptions() options {
	return options{
		logger:   logging.Default(),
		probe:    probe.Default(),
		zeroCopy: true,
		device:   framework.DefaultDevice,
	}
}

// Option configures a Registry.
type Option func(*options)

// WithLogger sets the logger for fallback warnings and debug traces.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProbe replaces the default framework probe.
func WithProbe(p *probe.Probe) Option {
	return func(o *options) {
		if p != nil {
			o.probe = p
		}
	}
}

// WithZeroCopy enables or disables the capsule path. Disabled registries
// always use the host roundtrip.
func WithZeroCopy(enabled bool) Option {
	return func(o *options) {
		o.zeroCopy = enabled
	}
}

// WithDevice sets the device used by Convert. Negative hints are ignored.
func WithDevice(dev framework.Device) Option {
	return func(o *options) {
		if dev.Valid() {
			o.device = dev
		}
	}
}
