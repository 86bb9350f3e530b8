package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/bridge/internal/config"
	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/converters"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	cfgFile  string
	logLevel string

	cfg     *config.Config
	cfgPath string
}

// load resolves the configuration once flags are parsed.
func (a *app) load() error {
	cfg, path, err := config.Load(config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg, a.cfgPath = cfg, path
	return nil
}

// registry builds a validated registry from the effective configuration.
// Log records go to w.
func (a *app) registry(w io.Writer, extra ...convert.Option) (*convert.Registry, error) {
	opts, err := a.cfg.Options(w)
	if err != nil {
		return nil, err
	}
	return convert.Init(converters.All(), append(opts, extra...)...)
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "bridge",
		Short: "Convert arrays between Go numeric frameworks",
		Long: TitleStyle.Render("bridge") + SubtitleStyle.Render(" - Convert arrays between Go numeric frameworks") + `

bridge detects which framework produced an array and converts it into any
other framework, trying a zero-copy DLPack capsule first and falling back
to a roundtrip through host memory.

` + SubtitleStyle.Render("Examples:") + `
  bridge frameworks                            List frameworks and availability
  bridge matrix                                Validate and print the route matrix
  bridge convert in.safetensors --to tensor    Convert every array of a file
  bridge stack in.safetensors --out vol.safetensors
  bridge config show                           Show the effective configuration`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/bridge/bridge.cue)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newFrameworksCommand(a),
		newMatrixCommand(a),
		newConvertCommand(a),
		newStackCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command with fang styling.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", TitleStyle.Render("bridge"), getVersionString())
			return nil
		},
	}
}
