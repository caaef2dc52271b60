// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/monorepo/internal/config"
)

// newConfigCommand creates the `monorepo config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage monorepo configuration",
		Long: `Manage monorepo configuration.

Configuration is stored in:
  - Linux: ~/.config/monorepo/config.cue
  - macOS: ~/Library/Application Support/monorepo/config.cue
  - Windows: %APPDATA%\monorepo\config.cue

A config.cue in the working directory is used when the user file is absent.
MONOREPO_* environment variables override file values
(e.g., MONOREPO_OUTPUT_FORMAT=json).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return app.fail(err, flags.verbose)
			}
			fmt.Fprintf(app.stdout, "%s %s\n", constraintStyle.Render("Configuration file:"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return app.fail(err, flags.verbose)
			}
			fmt.Fprintln(app.stdout, filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags)
			if err != nil {
				return app.fail(err, flags.verbose)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlagValues) error {
	opts := config.LoadOptions{ConfigFilePath: flags.configPath}
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if r, ok := app.Config.(config.Resolver); ok {
		cfg, path, err = r.Resolve(ctx, opts)
	} else {
		cfg, err = app.Config.Load(ctx, opts)
	}
	if err != nil {
		return app.fail(err, flags.verbose)
	}

	keyStyle := packageStyle
	valueStyle := constraintStyle
	w := app.stdout

	fmt.Fprintln(w, titleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), mutedStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	cacheDir := cfg.Git.CacheDir
	if cacheDir == "" {
		cacheDir = "(default)"
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("manifest"), valueStyle.Render(cfg.Manifest))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("dev"), valueStyle.Render(fmt.Sprint(cfg.Dev)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("verbose"), valueStyle.Render(fmt.Sprint(cfg.Verbose)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("git.cache_dir"), valueStyle.Render(cacheDir))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("output.format"), valueStyle.Render(cfg.Output.Format.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("watch.debounce"), valueStyle.Render(cfg.Watch.Debounce.String()))
	return nil
}
