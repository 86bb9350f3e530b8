package config

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/gpuarray"
	"github.com/born-ml/bridge/internal/logging"
)

var (
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidDevice is returned for device indexes outside the device table.
	ErrInvalidDevice = errors.New("invalid default device")
	// ErrInvalidLogLevel is returned for unknown level names.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Config is the effective bridge configuration.
type Config struct {
	// DefaultDevice is the device index conversions place values on.
	DefaultDevice int `json:"default_device" mapstructure:"default_device" toml:"default_device"`
	// ZeroCopy enables the capsule path.
	ZeroCopy bool `json:"zero_copy" mapstructure:"zero_copy" toml:"zero_copy"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" mapstructure:"log_level" toml:"log_level"`
}

// InvalidConfigError collects every field error of a Config.
type InvalidConfigError struct {
	FieldErrors []error
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		DefaultDevice: int(framework.DefaultDevice),
		ZeroCopy:      true,
		LogLevel:      "warn",
	}
}

// Validate checks constraints the schema also enforces, for configs built in code.
func (c Config) Validate() error {
	var errs []error
	if c.DefaultDevice < 0 || c.DefaultDevice >= gpuarray.MaxDevices {
		errs = append(errs, fmt.Errorf("%w: %d (must be in [0, %d))", ErrInvalidDevice, c.DefaultDevice, gpuarray.MaxDevices))
	}
	if !slices.Contains(logging.Levels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("%w: %q (valid: %v)", ErrInvalidLogLevel, c.LogLevel, logging.Levels))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Options maps the config to registry options. Log records go to w.
func (c Config) Options(w io.Writer) ([]convert.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logger, err := logging.New(w, c.LogLevel)
	if err != nil {
		return nil, err
	}
	return []convert.Option{
		convert.WithLogger(logger),
		convert.WithZeroCopy(c.ZeroCopy),
		convert.WithDevice(framework.Device(c.DefaultDevice)),
	}, nil
}
