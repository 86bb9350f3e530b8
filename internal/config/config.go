// Package config loads bridge settings from defaults, an optional CUE file and
// BRIDGE_* environment variables, in increasing priority.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "bridge"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "bridge"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, as in BRIDGE_LOG_LEVEL.
	EnvPrefix = "BRIDGE"
)

//go:embed config_schema.cue
var configSchema string

// LoadOptions selects where configuration is read from.
type LoadOptions struct {
	// ConfigFilePath, when set, is the only file read. It must exist.
	ConfigFilePath string
	// ConfigDirPath overrides the platform config directory.
	ConfigDirPath string
}

// ConfigDir returns the bridge configuration directory.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// Load resolves the effective configuration. It returns the path of the file
// that was read, or "" when only defaults and environment applied.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("default_device", defaults.DefaultDevice)
	v.SetDefault("zero_copy", defaults.ZeroCopy)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		if err := loadCUEIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", err
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir := opts.ConfigDirPath
		if cfgDir == "" {
			dir, err := ConfigDir()
			if err != nil {
				return nil, "", err
			}
			cfgDir = dir
		}

		// The config dir wins over the current directory.
		fileName := ConfigFileName + "." + ConfigFileExt
		for _, path := range []string{filepath.Join(cfgDir, fileName), fileName} {
			if !fileExists(path) {
				continue
			}
			if err := loadCUEIntoViper(v, path); err != nil {
				return nil, "", err
			}
			resolvedPath = path
			break
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return fmt.Errorf("%s: %w", path, userValue.Err())
	}

	// Unify with schema to validate against #Config definition
	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// TOML renders the config for display.
func (c Config) TOML() (string, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(out), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
