// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/invowk/monorepo/pkg/manifest"
)

type (
	// Plugin drives the monorepo lifecycle for a host. The host owns one
	// Plugin for the process and calls its hooks in order; each update
	// command gets a fresh Session.
	Plugin struct {
		logger    *log.Logger
		quieter   Quieter
		replayer  Replayer
		tempDir   string
		installer Installer

		// cache holds downloaded registry packages and their members for
		// the life of the Plugin.
		cache *manifest.Cache

		session *Session
		last    *Summary
	}

	// Option configures a Plugin.
	Option func(*Plugin)

	// MemberInfo describes one member manifest of a run.
	MemberInfo struct {
		Name        string
		VirtualName string
		Version     string
		Path        string
		Reference   string
	}

	// Summary reports what the last completed command did.
	Summary struct {
		Root         string
		ManifestPath string
		Dev          bool
		DryRun       bool
		Members      []MemberInfo
		Require      *RequirementSet
		RequireDev   *RequirementSet
		Injected     int
		Written      bool
	}
)

// WithQuieter lowers host verbosity while registry members download.
func WithQuieter(q Quieter) Option { return func(p *Plugin) { p.quieter = q } }

// WithReplayer forwards operations of origin packages to the host.
func WithReplayer(r Replayer) Option { return func(p *Plugin) { p.replayer = r } }

// WithTempDir sets the parent of download directories (default os.TempDir).
func WithTempDir(dir string) Option { return func(p *Plugin) { p.tempDir = dir } }

// NewPlugin returns a plugin logging to logger (nil discards).
func NewPlugin(logger *log.Logger, opts ...Option) *Plugin {
	p := &Plugin{
		logger: orDiscard(logger),
		cache:  manifest.NewCache(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the lifecycle position of the current command.
func (p *Plugin) State() State {
	if p.session == nil {
		return StateIdle
	}
	return p.session.State()
}

// Session returns the current command's session, or nil.
func (p *Plugin) Session() *Session { return p.session }

// LastRun returns the summary of the last PostUpdate that acted, or nil.
func (p *Plugin) LastRun() *Summary { return p.last }

// Installer returns the installer for virtual packages.
func (p *Plugin) Installer() Installer { return p.installer }

// PreUpdate registers the virtual repositories of a configured root and
// overwrites the root's in-memory requirements with the merged set. A root
// without monorepo configuration leaves the plugin idle.
//
// Every member is located and loaded before anything is registered, so a
// failure leaves the host untouched.
func (p *Plugin) PreUpdate(ctx context.Context, ev UpdateEvent) error {
	p.session = nil
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.Root == nil || !ev.Root.HasMonorepoConfig() {
		return nil
	}

	cfg, err := manifest.ParseConfig(ev.Root)
	if err != nil {
		return hookError("read monorepo configuration", ev.ManifestPath, err)
	}

	if ev.Repositories == nil {
		return hookError("register monorepo members", ev.ManifestPath, errors.New("host has no repository manager"))
	}

	s := newSession(ev, cfg)
	configs := []RepositoryConfig{{Type: RepositoryType}}
	if ev.Dev {
		configs = append(configs, RepositoryConfig{Type: DevRepositoryType, Dev: true})
	}

	cache := manifest.NewCache()
	repos := make([]*VirtualRepository, 0, len(configs))
	for _, rc := range configs {
		rc.Include = cfg.Include
		rc.Owner = ev.Root.Name
		rc.RootDir = ev.RootDir
		repo, err := NewRepository(rc, p.logger, cache)
		if err != nil {
			return hookError("create monorepo repository", ev.ManifestPath, err)
		}
		if _, err := repo.VirtualPackages(); err != nil {
			return hookError("register monorepo members", ev.ManifestPath, err)
		}
		repos = append(repos, repo)
	}

	for _, repo := range repos {
		ev.Repositories.AddRepository(repo)
		p.logger.Debug("Registered repository "+repo.Type(), "dev", repo.Dev())
	}
	s.repos = repos

	origins, err := repos[0].Origins()
	if err != nil {
		return hookError("register monorepo members", ev.ManifestPath, err)
	}
	s.prod, s.devSet = s.merge(origins)
	ev.Root.Requires = s.prod.Links(ev.Root.Name)
	if s.devSet != nil {
		ev.Root.DevRequires = s.devSet.Links(ev.Root.Name)
	}
	s.state = StateRegistered
	p.session = s
	return nil
}

// PreDependencySolving injects member requirements into the solve request.
// It acts once per command; later calls, e.g. on solver backtracking, are
// no-ops that return nil.
func (p *Plugin) PreDependencySolving(ctx context.Context, ev SolveEvent) error {
	if p.session == nil {
		p.session = detachedSession(ev.Dev)
	}
	s := p.session

	var err error
	s.solveOnce.Do(func() {
		err = p.solve(ctx, s, ev)
	})
	return err
}

func (p *Plugin) solve(ctx context.Context, s *Session, ev SolveEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.Request == nil {
		return hookError("inject monorepo requirements", "", errors.New("solve event has no request"))
	}

	var sets []*RequirementSet
	if s.prod != nil {
		sets = append(sets, s.prod, s.devSet)
	}

	if ev.Pool != nil {
		for _, c := range ev.Pool.Candidates() {
			if !p.handles(s, c, ev.Request) {
				continue
			}
			members, err := p.registryMembers(ctx, c.Package, ev.Downloader)
			if err != nil {
				return hookError("load registry members", c.Package.String(), err)
			}
			group := make([]Member, 0, len(members))
			for _, m := range members {
				group = append(group, MemberOf(m, false))
			}
			sets = append(sets, Merge(group, ExcludeSet(s.root, c.Package), ModeProd))
		}
	}

	s.injected = Inject(ev.Request, p.logger, sets...)
	if s.state == StateRegistered {
		s.state = StateInjected
	}
	return nil
}

// handles reports whether a pool candidate is a registry package carrying
// its own monorepo configuration that the request asks for.
func (p *Plugin) handles(s *Session, c Candidate, req Request) bool {
	if !c.Registry || c.Package == nil || !c.Package.HasMonorepoConfig() {
		return false
	}
	if s.root != nil && c.Package.Name == s.root.Name {
		return false
	}
	return hasJob(req, c.Package.Name)
}

// PrePackageOperation answers operations on virtual packages with the
// Installer. handled is true when the host must skip its own handling.
func (p *Plugin) PrePackageOperation(ctx context.Context, op Operation) (handled bool, err error) {
	if op.Package == nil || !p.installer.Supports(op.Package.Type) {
		return false, nil
	}
	if err := p.installer.Apply(ctx, op); err != nil {
		return false, err
	}
	p.logger.Debug("Skipping "+op.String(), "path", p.installer.InstallPath(op.Package))
	return true, nil
}

// PostPackageOperation hands the matching operation on the origin package
// of a virtual package to the Replayer, when one is configured.
func (p *Plugin) PostPackageOperation(ctx context.Context, op Operation) error {
	if op.Package == nil || !p.installer.Supports(op.Package.Type) {
		return nil
	}
	if p.replayer == nil || p.session == nil {
		return nil
	}
	vp, ok := p.session.lookup(op.Package.Name)
	if !ok {
		p.logger.Debug("No origin for "+op.Package.Name, "operation", op.Kind.String())
		return nil
	}

	var initial *manifest.Package
	if op.Kind == OpUpdate && op.Initial != nil {
		initial = vp.Origin.Clone()
		initial.Version = op.Initial.Version
	}
	originOp := op.withPackages(initial, vp.Origin)
	if err := originOp.Validate(); err != nil {
		return err
	}
	if err := p.replayer.Replay(ctx, originOp); err != nil {
		return hookError("replay "+originOp.Kind.String(), vp.Origin.String(), err)
	}
	return nil
}

// PostUpdate re-derives the merged requirements from the member manifests
// on disk and patches the root manifest. It only acts when PreUpdate
// registered a repository in this command, and always returns the plugin
// to StateIdle.
func (p *Plugin) PostUpdate(ctx context.Context, ev UpdateEvent) error {
	s := p.session
	p.session = nil
	if s == nil || !s.Registered() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := ev.ManifestPath
	if path == "" {
		path = s.manifestPath
	}

	refs, err := manifest.Locate(s.rootDir, s.root.Name, s.config.Include)
	if err != nil {
		return hookError("re-read monorepo members", path, err)
	}
	cache := manifest.NewCache()
	origins := make([]*manifest.Package, 0, len(refs))
	summary := &Summary{
		Root:         s.root.Name,
		ManifestPath: path,
		Dev:          s.dev,
		DryRun:       ev.DryRun,
		Injected:     s.injected,
	}
	for _, ref := range refs {
		o, err := cache.Load(ref.Path)
		if err != nil {
			return hookError("re-read monorepo members", ref.Path, err)
		}
		origins = append(origins, o)
		summary.Members = append(summary.Members, MemberInfo{
			Name:        o.Name,
			VirtualName: VirtualName(RepositoryType, o.Name),
			Version:     o.Version,
			Path:        ref.Path,
			Reference:   DistReference(o.Raw),
		})
	}

	p.logger.Debug("Re-read member manifests", "files", cache.Len())

	summary.Require, summary.RequireDev = s.merge(origins)
	if !ev.DryRun {
		written, err := WriteManifest(path, summary.Require, summary.RequireDev)
		if err != nil {
			return hookError("write root manifest", path, err)
		}
		summary.Written = written
		s.state = StateWritten
		p.logger.Info("Updated root manifest", "path", path, "changed", written)
	}
	p.last = summary
	return nil
}
