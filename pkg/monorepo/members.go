// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invowk/monorepo/pkg/manifest"
)

// registryMembers downloads a registry package that carries monorepo
// configuration and loads its member manifests. The download lives in a
// temporary directory removed on every return path; loaded members are
// kept in the Plugin's cache under the package's (name, version).
func (p *Plugin) registryMembers(ctx context.Context, pkg *manifest.Package, dl Downloader) ([]*manifest.Package, error) {
	if cached, ok := p.cache.Members(pkg.Key()); ok {
		p.logger.Debug("Using cached members of "+pkg.String(), "members", len(cached))
		return cached, nil
	}
	if dl == nil {
		return nil, errors.New("host provided no downloader")
	}

	cfg, err := manifest.ParseConfig(pkg)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(p.tempDir, "monorepo-")
	if err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if err := p.download(ctx, dl, pkg, dir); err != nil {
		return nil, err
	}

	refs, err := manifest.Locate(dir, pkg.Name, cfg.Include)
	if err != nil {
		return nil, err
	}
	members := make([]*manifest.Package, 0, len(refs))
	for _, ref := range refs {
		p.logger.Debug("Loading " + displayRef(dir, ref) + "...")
		m, err := manifest.Load(ref.Path)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	p.cache.PutMembers(pkg, members)
	return members, nil
}

func (p *Plugin) download(ctx context.Context, dl Downloader, pkg *manifest.Package, dir string) error {
	if p.quieter != nil {
		restore := p.quieter.Quiet()
		defer restore()
	}
	if err := dl.Download(ctx, pkg, dir); err != nil {
		return fmt.Errorf("failed to download %s into %s: %w", pkg, filepath.Base(dir), err)
	}
	return nil
}
