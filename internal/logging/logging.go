// Package logging builds the structured loggers used across bridge.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Prefix is the default logger prefix.
const Prefix = "bridge"

// Levels lists the accepted level names.
var Levels = []string{"debug", "info", "warn", "error"}

// New returns a logger writing to w at the named level.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: Prefix,
		Level:  lvl,
	}), nil
}

// Default returns the warn-level stderr logger.
func Default() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: Prefix,
		Level:  log.WarnLevel,
	})
}

// Discard returns a logger that drops every record.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
