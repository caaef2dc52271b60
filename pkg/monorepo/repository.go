// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"crypto/sha1" //nolint:gosec // content identity, not a security boundary
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/monorepo/pkg/manifest"
)

const (
	// RepositoryType is the type of the repository holding runtime members.
	RepositoryType = "modera-monorepo"
	// DevRepositoryType is the type of the repository holding members whose
	// development requirements stand in for their runtime ones.
	DevRepositoryType = "modera-monorepo-dev"
	// PackageType is the package type given to every virtual package.
	PackageType = "modera-monorepo"

	distTypePath = "path"
)

type (
	// RepositoryConfig configures a VirtualRepository.
	RepositoryConfig struct {
		// Type prefixes every virtual package name. Required.
		Type string
		// Include lists the member glob patterns. Required.
		Include []string
		// Dev exposes each member's require-dev as its requires.
		Dev bool
		// Owner is the name of the package that declared Include.
		Owner string
		// RootDir is the directory Include is resolved against.
		RootDir string
	}

	// VirtualPackage is the installable stand-in for one member manifest.
	VirtualPackage struct {
		// Package is the synthesized record offered to the solver.
		*manifest.Package
		// Origin is the member manifest the package was synthesized from.
		Origin *manifest.Package
		// Ref is the manifest location.
		Ref manifest.Ref
		// Dev is true when Package.Requires holds the origin's require-dev.
		Dev bool
	}

	// VirtualRepository offers member manifests as virtual packages. It is
	// initialized on first use.
	VirtualRepository struct {
		cfg    RepositoryConfig
		logger *log.Logger
		cache  *manifest.Cache

		loaded   bool
		packages []*VirtualPackage
		byName   map[string]*VirtualPackage
	}
)

// NewRepository validates cfg and returns an uninitialized repository.
// A nil cache gets a fresh one.
func NewRepository(cfg RepositoryConfig, logger *log.Logger, cache *manifest.Cache) (*VirtualRepository, error) {
	if strings.TrimSpace(cfg.Type) == "" {
		return nil, &manifest.ConfigurationError{Key: "type", Reason: "is required"}
	}
	if len(cfg.Include) == 0 {
		return nil, &manifest.ConfigurationError{Key: "include", Reason: "is required"}
	}
	if cache == nil {
		cache = manifest.NewCache()
	}
	return &VirtualRepository{cfg: cfg, logger: orDiscard(logger), cache: cache}, nil
}

// Type implements Repository.
func (r *VirtualRepository) Type() string { return r.cfg.Type }

// Dev reports whether the repository exposes development requirements.
func (r *VirtualRepository) Dev() bool { return r.cfg.Dev }

// Packages implements Repository.
func (r *VirtualRepository) Packages() ([]*manifest.Package, error) {
	vps, err := r.VirtualPackages()
	if err != nil {
		return nil, err
	}
	out := make([]*manifest.Package, 0, len(vps))
	for _, vp := range vps {
		out = append(out, vp.Package)
	}
	return out, nil
}

// VirtualPackages returns the virtual packages in locator order.
func (r *VirtualRepository) VirtualPackages() ([]*VirtualPackage, error) {
	if err := r.initialize(); err != nil {
		return nil, err
	}
	return r.packages, nil
}

// Lookup returns the virtual package with the given synthesized name.
func (r *VirtualRepository) Lookup(name string) (*VirtualPackage, bool) {
	if err := r.initialize(); err != nil {
		return nil, false
	}
	vp, ok := r.byName[name]
	return vp, ok
}

// Origins returns the member manifests in locator order.
func (r *VirtualRepository) Origins() ([]*manifest.Package, error) {
	vps, err := r.VirtualPackages()
	if err != nil {
		return nil, err
	}
	out := make([]*manifest.Package, 0, len(vps))
	for _, vp := range vps {
		out = append(out, vp.Origin)
	}
	return out, nil
}

func (r *VirtualRepository) initialize() error {
	if r.loaded {
		return nil
	}

	refs, err := manifest.Locate(r.cfg.RootDir, r.cfg.Owner, r.cfg.Include)
	if err != nil {
		return err
	}

	packages := make([]*VirtualPackage, 0, len(refs))
	byName := make(map[string]*VirtualPackage, len(refs))
	for _, ref := range refs {
		r.logger.Debug("Loading "+displayRef(r.cfg.RootDir, ref)+"...")
		origin, err := r.cache.Load(ref.Path)
		if err != nil {
			return err
		}
		vp := newVirtualPackage(r.cfg.Type, r.cfg.Dev, ref, origin)
		if prev, dup := byName[vp.Name]; dup {
			return &manifest.TypeMismatchError{
				Path:     ref.Path,
				Field:    "name",
				Expected: fmt.Sprintf("a name unique within %s (already declared by %s)", r.cfg.Type, prev.Ref.Path),
			}
		}
		if !r.cfg.Dev {
			r.logger.Infof("Registering package %s as %s", origin.Name, vp.Name)
		}
		byName[vp.Name] = vp
		packages = append(packages, vp)
	}

	r.packages, r.byName, r.loaded = packages, byName, true
	return nil
}

func newVirtualPackage(repoType string, dev bool, ref manifest.Ref, origin *manifest.Package) *VirtualPackage {
	name := VirtualName(repoType, origin.Name)
	requires := origin.Requires
	if dev {
		requires = origin.DevRequires
	}
	return &VirtualPackage{
		Package: &manifest.Package{
			Name:        name,
			Version:     origin.Version,
			Type:        PackageType,
			Requires:    requires.Retarget(name),
			DevRequires: origin.DevRequires.Retarget(name),
			Replaces:    origin.Replaces,
			Extra:       origin.Extra,
			Dist: manifest.Dist{
				Type:      distTypePath,
				URL:       filepath.Dir(ref.Path),
				Reference: DistReference(origin.Raw),
			},
			Raw: origin.Raw,
		},
		Origin: origin,
		Ref:    ref,
		Dev:    dev,
	}
}

// VirtualName derives the virtual package name "{repoType}/{name}" with
// every '/' of name replaced by '-'.
func VirtualName(repoType, name string) string {
	return repoType + "/" + strings.ReplaceAll(name, "/", "-")
}

// DistReference returns the hex SHA-1 of raw manifest bytes.
func DistReference(raw []byte) string {
	sum := sha1.Sum(raw) //nolint:gosec // content identity, not a security boundary
	return hex.EncodeToString(sum[:])
}

// displayRef renders a member location as "owner:relative/path".
func displayRef(root string, ref manifest.Ref) string {
	rel, err := filepath.Rel(root, ref.Path)
	if err != nil {
		rel = ref.Path
	}
	return ref.Owner + ":" + filepath.ToSlash(rel)
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return log.New(io.Discard)
}
