// SPDX-License-Identifier: MPL-2.0

package standalone

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/invowk/monorepo/pkg/manifest"
	"github.com/invowk/monorepo/pkg/monorepo"
)

type (
	// Host runs update commands through a monorepo.Plugin. One Host is kept
	// for the life of the process so registry members are downloaded once.
	Host struct {
		logger     *log.Logger
		plugin     *monorepo.Plugin
		downloader monorepo.Downloader
		registry   []monorepo.Candidate

		replayed []monorepo.Operation
	}

	// Option configures a Host.
	Option func(*hostOptions)

	hostOptions struct {
		tempDir string
	}

	// UpdateOptions selects the mode of one update command.
	UpdateOptions struct {
		// Dev includes development requirements.
		Dev bool
		// DryRun computes the merge without writing the root manifest.
		DryRun bool
	}

	// Result reports one update command.
	Result struct {
		// Summary is nil when the root manifest has no monorepo configuration.
		Summary *monorepo.Summary
		// Jobs are the install instructions of the solve request.
		Jobs []monorepo.Job
		// Operations are the operations the solver produced, in order.
		Operations []monorepo.Operation
		// Skipped counts operations the plugin handled itself.
		Skipped int
		// InPlace counts operations on packages whose files already live in
		// the source tree.
		InPlace int
		// Replayed are the origin operations forwarded by the plugin.
		Replayed []monorepo.Operation
		// Unresolved are jobs the pass-through solver has no candidate for.
		Unresolved []monorepo.Job
	}
)

// WithTempDir sets the parent of registry download directories.
func WithTempDir(dir string) Option { return func(o *hostOptions) { o.tempDir = dir } }

// New creates a Host. dl may be nil when no registry candidates are added.
func New(logger *log.Logger, dl monorepo.Downloader, opts ...Option) *Host {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var o hostOptions
	for _, opt := range opts {
		opt(&o)
	}
	h := &Host{logger: logger, downloader: dl}
	h.plugin = monorepo.NewPlugin(logger,
		monorepo.WithQuieter(h),
		monorepo.WithReplayer(h),
		monorepo.WithTempDir(o.tempDir),
	)
	return h
}

// Plugin returns the plugin driven by the host.
func (h *Host) Plugin() *monorepo.Plugin { return h.plugin }

// AddCandidate offers a registry package to every later solve.
func (h *Host) AddCandidate(c monorepo.Candidate) {
	c.Registry = true
	h.registry = append(h.registry, c)
}

// Quiet raises the log level to warnings until restore is called.
func (h *Host) Quiet() (restore func()) {
	prev := h.logger.GetLevel()
	if prev < log.WarnLevel {
		h.logger.SetLevel(log.WarnLevel)
	}
	return func() { h.logger.SetLevel(prev) }
}

// Replay records an origin package operation.
func (h *Host) Replay(_ context.Context, op monorepo.Operation) error {
	h.logger.Debug("Replaying "+op.String(), "kind", op.Kind.String())
	h.replayed = append(h.replayed, op)
	return nil
}

// Update runs one update command against the root manifest at manifestPath.
func (h *Host) Update(ctx context.Context, manifestPath string, opts UpdateOptions) (*Result, error) {
	path, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	root, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	h.replayed = nil

	repos := &RepositoryManager{}
	ev := monorepo.UpdateEvent{
		Root:         root,
		RootDir:      filepath.Dir(path),
		ManifestPath: path,
		Dev:          opts.Dev,
		DryRun:       opts.DryRun,
		Repositories: repos,
	}
	if err := h.plugin.PreUpdate(ctx, ev); err != nil {
		return nil, err
	}
	registered := h.plugin.State() == monorepo.StateRegistered

	pool, err := h.pool(repos)
	if err != nil {
		return nil, err
	}
	req := NewRequest()
	for _, l := range root.Requires {
		req.Install(l.Target, l.Constraint)
	}
	if opts.Dev {
		for _, l := range root.DevRequires {
			req.Install(l.Target, l.Constraint)
		}
	}

	if err := h.plugin.PreDependencySolving(ctx, monorepo.SolveEvent{
		Request:    req,
		Pool:       pool,
		Downloader: h.downloader,
		Dev:        opts.Dev,
	}); err != nil {
		return nil, err
	}

	res := &Result{Jobs: req.Jobs()}
	res.Operations, res.Unresolved = Solve(req, pool)
	in := h.plugin.Installer()
	for _, op := range res.Operations {
		if in.Supports(op.Package.Type) && in.IsInstalled(op.Package) {
			res.InPlace++
		}
		handled, err := h.plugin.PrePackageOperation(ctx, op)
		if err != nil {
			return nil, err
		}
		if handled {
			res.Skipped++
		} else {
			h.logger.Debug("Installing "+op.Package.String(), "dist", op.Package.Dist.Type)
		}
		if err := h.plugin.PostPackageOperation(ctx, op); err != nil {
			return nil, err
		}
	}

	if err := h.plugin.PostUpdate(ctx, ev); err != nil {
		return nil, err
	}
	if registered {
		res.Summary = h.plugin.LastRun()
	}
	res.Replayed = slices.Clone(h.replayed)
	return res, nil
}

// pool collects the virtual packages of registered repositories and the
// registry candidates.
func (h *Host) pool(repos *RepositoryManager) (Pool, error) {
	var pool Pool
	for _, r := range repos.Repositories() {
		pkgs, err := r.Packages()
		if err != nil {
			return nil, err
		}
		for _, p := range pkgs {
			pool = append(pool, monorepo.Candidate{Package: p})
		}
	}
	return append(pool, h.registry...), nil
}
