// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/invowk/monorepo/internal/config"
	"github.com/invowk/monorepo/internal/gitdist"
	"github.com/invowk/monorepo/internal/standalone"
	"github.com/invowk/monorepo/internal/watch"
	"github.com/invowk/monorepo/pkg/manifest"
	"github.com/invowk/monorepo/pkg/monorepo"
)

// ErrManifestOutdated is returned by merge --check when the root manifest
// differs from the merge result.
var ErrManifestOutdated = errors.New("root manifest is out of date")

// mergeFlags holds the flags of the merge command.
type mergeFlags struct {
	dryRun  bool
	noDev   bool
	check   bool
	watch   bool
	members []string
}

func newMergeCommand(app *App, flags *rootFlagValues) *cobra.Command {
	mf := &mergeFlags{}
	mergeCmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge member requirements into the root manifest",
		Long: `Merge member requirements into the root manifest.

Every manifest matched by extra.modera-monorepo.include is read, its require
and require-dev constraints are unioned with the root's, and the root's
require and require-dev keys are rewritten in place. Other content of the
root manifest is left byte-for-byte untouched.

Registry members are given with --member name=url[@ref]; they are fetched
with git and their members take part in the merge like local ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMerge(cmd.Context(), app, flags, mf)
		},
	}

	mergeCmd.Flags().BoolVarP(&mf.dryRun, "dry-run", "n", false, "compute the merge without writing the root manifest")
	mergeCmd.Flags().BoolVar(&mf.noDev, "no-dev", false, "skip development requirements")
	mergeCmd.Flags().BoolVar(&mf.check, "check", false, "exit with status 2 if the root manifest is not up to date")
	mergeCmd.Flags().BoolVarP(&mf.watch, "watch", "w", false, "re-run the merge whenever a member manifest changes")
	mergeCmd.Flags().StringArrayVar(&mf.members, "member", nil, "registry member as name=url[@ref] (repeatable)")
	mergeCmd.MarkFlagsMutuallyExclusive("check", "watch")

	return mergeCmd
}

func runMerge(ctx context.Context, app *App, flags *rootFlagValues, mf *mergeFlags) error {
	cfg, err := app.loadConfig(ctx, flags)
	if err != nil {
		return app.fail(err, flags.verbose)
	}
	logger := app.newLogger(cfg.Verbose)

	host, err := app.newHost(ctx, cfg, logger, mf.members)
	if err != nil {
		return app.fail(err, cfg.Verbose)
	}
	opts := standalone.UpdateOptions{
		Dev:    cfg.Dev && !mf.noDev,
		DryRun: mf.dryRun || mf.check,
	}

	update := func(ctx context.Context) error {
		res, err := host.Update(ctx, cfg.Manifest, opts)
		if err != nil {
			return err
		}
		if res.Summary == nil {
			logger.Warn("Root manifest has no modera-monorepo configuration, nothing merged", "manifest", cfg.Manifest)
			return nil
		}
		if mf.check {
			return checkManifest(res.Summary)
		}
		return writeSummary(app.stdout, res.Summary, cfg.Output.Format)
	}

	if err := update(ctx); err != nil {
		if errors.Is(err, ErrManifestOutdated) {
			fmt.Fprintln(app.stderr, warningStyle.Render(err.Error()))
			return &ExitError{Code: exitOutdated, Err: err}
		}
		return app.fail(err, cfg.Verbose)
	}
	if !mf.watch {
		return nil
	}
	return app.watchManifests(ctx, cfg, logger, func(ctx context.Context) error {
		if err := update(ctx); err != nil {
			_ = app.fail(err, cfg.Verbose)
			return err
		}
		return nil
	})
}

// newHost creates the standalone host, downloading through git and offering
// every --member spec as a registry candidate.
func (a *App) newHost(ctx context.Context, cfg *config.Config, logger *log.Logger, members []string) (*standalone.Host, error) {
	cacheDir := cfg.Git.CacheDir
	if cacheDir == "" {
		var err error
		if cacheDir, err = gitdist.DefaultCacheDir(); err != nil {
			return nil, fmt.Errorf("failed to resolve git cache directory: %w", err)
		}
	}
	fetcher := gitdist.NewFetcher(cacheDir, logger)
	host := standalone.New(logger, fetcher)

	for _, raw := range members {
		spec, err := gitdist.ParseMemberSpec(raw)
		if err != nil {
			return nil, err
		}
		candidate, err := fetcher.Describe(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to describe registry member %s: %w", spec, err)
		}
		logger.Debug("Registry member", "package", candidate.Package.String(), "url", spec.URL)
		host.AddCandidate(candidate)
	}
	return host, nil
}

// checkManifest compares the root manifest on disk with what the merge in
// s would write.
func checkManifest(s *monorepo.Summary) error {
	data, err := os.ReadFile(s.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.ManifestPath, err)
	}
	patched, err := monorepo.PatchManifest(data, s.Require, s.RequireDev)
	if err != nil {
		return err
	}
	if !bytes.Equal(patched, data) {
		return fmt.Errorf("%w: %s (run 'monorepo merge')", ErrManifestOutdated, s.ManifestPath)
	}
	return nil
}

// watchManifests runs onChange whenever the root manifest or a file matched
// by its include patterns changes. It blocks until ctx is cancelled.
func (a *App) watchManifests(ctx context.Context, cfg *config.Config, logger *log.Logger, onChange func(context.Context) error) error {
	path, err := filepath.Abs(cfg.Manifest)
	if err != nil {
		return a.fail(fmt.Errorf("failed to resolve manifest path: %w", err), cfg.Verbose)
	}
	baseDir := filepath.Dir(path)

	var include []string
	root, err := manifest.Load(path)
	if err != nil {
		return a.fail(err, cfg.Verbose)
	}
	if mc, err := manifest.ParseConfig(root); err == nil {
		include = mc.Include
	} else if !errors.Is(err, manifest.ErrNoMonorepoConfig) {
		return a.fail(err, cfg.Verbose)
	}

	w, err := watch.New(watch.Config{
		BaseDir:  baseDir,
		Patterns: watch.ManifestPatterns(baseDir, filepath.Base(path), include),
		Debounce: cfg.Watch.Debounce,
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Info("Manifests changed, merging", "files", len(changed))
			return onChange(ctx)
		},
		Logger: logger,
	})
	if err != nil {
		return a.fail(err, cfg.Verbose)
	}
	defer func() { _ = w.Close() }() // Best-effort cleanup

	logger.Info("Watching for manifest changes", "dir", baseDir, "debounce", cfg.Watch.Debounce)
	if err := w.Run(ctx); err != nil {
		return a.fail(err, cfg.Verbose)
	}
	return nil
}
