// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/monorepo/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the `monorepo` command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Merge the requirements of monorepo members into the root manifest",
		Long: titleStyle.Render("monorepo") + mutedStyle.Render(" - merge member requirements into a root composer.json") + `

The root manifest declares its members under extra.modera-monorepo.include.
Every member's require and require-dev are unioned with the root's own
requirements and written back into the root manifest, so a single install
resolves the whole repository.

` + mutedStyle.Render("Examples:") + `
  monorepo merge                    Patch composer.json in place
  monorepo merge --dry-run -f json  Print the merged requirements as JSON
  monorepo merge --check            Exit 2 when composer.json is out of date
  monorepo merge --watch            Re-merge whenever a member changes
  monorepo inspect                  Show members and merged requirements
  monorepo config show              Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/monorepo/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.manifest, "manifest", "m", "", "root manifest path (default composer.json)")
	rootCmd.PersistentFlags().StringVarP(&flags.format, "format", "f", "", "output format: text, json, yaml or toml")

	rootCmd.AddCommand(newMergeCommand(app, flags))
	rootCmd.AddCommand(newInspectCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))
	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if code := exitCode(err); code != 0 {
		os.Exit(code)
	}
}
