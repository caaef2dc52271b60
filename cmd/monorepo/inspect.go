// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/invowk/monorepo/internal/standalone"
)

func newInspectCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var noDev bool
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show members and merged requirements without writing",
		Long: `Show the members of the monorepo and the requirements a merge would
write. The root manifest is never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := app.loadConfig(ctx, flags)
			if err != nil {
				return app.fail(err, flags.verbose)
			}
			logger := app.newLogger(cfg.Verbose)

			host := standalone.New(logger, nil)
			res, err := host.Update(ctx, cfg.Manifest, standalone.UpdateOptions{
				Dev:    cfg.Dev && !noDev,
				DryRun: true,
			})
			if err != nil {
				return app.fail(err, cfg.Verbose)
			}
			if res.Summary == nil {
				logger.Warn("Root manifest has no modera-monorepo configuration", "manifest", cfg.Manifest)
				return nil
			}
			return writeSummary(app.stdout, res.Summary, cfg.Output.Format)
		},
	}
	inspectCmd.Flags().BoolVar(&noDev, "no-dev", false, "skip development requirements")
	return inspectCmd
}
