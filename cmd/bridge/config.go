package main

import (
	"fmt"

	"github.com/born-ml/bridge/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect bridge configuration",
		Long: `Inspect bridge configuration.

Settings come from defaults, then bridge.cue in the config directory or the
current directory (or --config), then BRIDGE_* environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.cfg.TOML()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			source := SubtitleStyle.Render("(using defaults)")
			if a.cfgPath != "" {
				source = a.cfgPath
			}
			fmt.Fprintf(w, "# %s: %s\n", KeyStyle.Render("config file"), source)
			fmt.Fprint(w, out)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	})

	return cfgCmd
}
