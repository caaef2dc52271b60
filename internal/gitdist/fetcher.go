// SPDX-License-Identifier: MPL-2.0

package gitdist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/invowk/monorepo/pkg/manifest"
)

const (
	// DistGit is the dist type fetched with git.
	DistGit = "git"
	// DistPath is the dist type copied from a local directory.
	DistPath = "path"

	// CachePathEnv overrides the default source cache directory.
	CachePathEnv = "MONOREPO_GIT_CACHE"
)

// ErrUnsupportedDist is returned for dist types the Fetcher cannot materialize.
var ErrUnsupportedDist = errors.New("unsupported dist type")

type (
	// Fetcher downloads package sources described by manifest.Dist.
	Fetcher struct {
		// CacheDir is the base directory of the git source cache.
		CacheDir string
		// Depth limits clone history; 0 clones everything.
		Depth int

		auth   transport.AuthMethod
		logger *log.Logger
	}

	// UnsupportedDistError is returned when a package's dist type is neither
	// "git" nor "path".
	UnsupportedDistError struct {
		Package string
		Type    string
	}
)

// Error implements the error interface.
func (e *UnsupportedDistError) Error() string {
	return fmt.Sprintf("package %s: unsupported dist type %q", e.Package, e.Type)
}

// Unwrap returns ErrUnsupportedDist so callers can use errors.Is for programmatic detection.
func (e *UnsupportedDistError) Unwrap() error { return ErrUnsupportedDist }

// NewFetcher creates a Fetcher caching clones under cacheDir. A nil logger
// discards output.
func NewFetcher(cacheDir string, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	f := &Fetcher{
		CacheDir: cacheDir,
		Depth:    1,
		logger:   logger,
	}
	f.setupAuth()
	return f
}

// DefaultCacheDir returns the default source cache directory.
// It checks MONOREPO_GIT_CACHE first, then falls back to the user cache dir.
func DefaultCacheDir() (string, error) {
	return DefaultCacheDirWith(os.Getenv)
}

// DefaultCacheDirWith returns the default source cache directory using the
// provided getenv function.
func DefaultCacheDirWith(getenv func(string) string) (string, error) {
	if envPath := getenv(CachePathEnv); envPath != "" {
		return envPath, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(base, "monorepo", "git"), nil
}

// Download materializes pkg's sources into dir, which must exist.
func (f *Fetcher) Download(ctx context.Context, pkg *manifest.Package, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch pkg.Dist.Type {
	case DistPath:
		f.logger.Debug("Copying sources", "package", pkg.Name, "path", pkg.Dist.URL)
		return copyDir(pkg.Dist.URL, dir)
	case DistGit:
		src, err := f.Fetch(ctx, pkg.Dist.URL, pkg.Dist.Reference)
		if err != nil {
			return err
		}
		return copyDir(src, dir)
	default:
		return &UnsupportedDistError{Package: pkg.Name, Type: pkg.Dist.Type}
	}
}

// Fetch returns the cached checkout of url at ref, cloning it first when the
// cache has no copy.
func (f *Fetcher) Fetch(ctx context.Context, url, ref string) (string, error) {
	if url == "" {
		return "", errors.New("git dist has no url")
	}
	cachePath := f.cachePath(url, ref)
	if _, err := git.PlainOpen(cachePath); err == nil {
		f.logger.Debug("Using cached sources", "url", url, "ref", ref)
		return cachePath, nil
	}

	f.logger.Debug("Cloning", "url", url, "ref", ref)
	if err := f.clone(ctx, url, ref, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

// clone clones url at ref into dest, trying ref as a tag (with and without a
// "v" prefix) and then as a branch.
func (f *Fetcher) clone(ctx context.Context, url, ref, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	var lastErr error
	for _, name := range referenceNames(ref) {
		_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
			URL:           url,
			Auth:          f.auth,
			ReferenceName: name,
			SingleBranch:  name != "",
			Depth:         f.Depth,
		})
		if err == nil {
			return nil
		}
		lastErr = err
		// Clean up failed attempt (best-effort)
		_ = os.RemoveAll(dest)
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("failed to clone %s at %q: %w", url, ref, lastErr)
}

// referenceNames lists the references tried for ref in order. An empty ref
// clones the remote HEAD.
func referenceNames(ref string) []plumbing.ReferenceName {
	if ref == "" {
		return []plumbing.ReferenceName{""}
	}
	names := []plumbing.ReferenceName{plumbing.NewTagReferenceName(ref)}
	if noV, found := strings.CutPrefix(ref, "v"); found {
		names = append(names, plumbing.NewTagReferenceName(noV))
	} else {
		names = append(names, plumbing.NewTagReferenceName("v"+ref))
	}
	return append(names, plumbing.NewBranchReferenceName(ref))
}

// cachePath generates a cache path for a repository reference.
// e.g., "https://github.com/user/repo.git" at "v1.0" -> "<cache>/sources/github.com/user/repo/v1.0"
func (f *Fetcher) cachePath(url, ref string) string {
	path := strings.TrimPrefix(url, "https://")
	path = strings.TrimPrefix(path, "http://")
	path = strings.TrimPrefix(path, "file://")
	path = strings.TrimPrefix(path, "git@")
	path = strings.TrimPrefix(path, "ssh://")
	path = strings.TrimSuffix(path, ".git")
	path = strings.ReplaceAll(path, ":", "/")
	path = strings.TrimLeft(filepath.Clean("/"+path), `/\`)
	if ref == "" {
		ref = "HEAD"
	}
	return filepath.Join(f.CacheDir, "sources", path, filepath.Base(filepath.Clean("/"+ref)))
}

// setupAuth configures authentication based on available credentials.
func (f *Fetcher) setupAuth() {
	if sshAuth := trySSHAuth(); sshAuth != nil {
		f.auth = sshAuth
		return
	}
	if httpAuth := tryHTTPAuth(os.Getenv); httpAuth != nil {
		f.auth = httpAuth
	}
}

func trySSHAuth() transport.AuthMethod {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(homeDir, ".ssh", name)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile("git", keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}

func tryHTTPAuth(getenv func(string) string) transport.AuthMethod {
	for _, c := range []struct{ env, user string }{
		{"GITHUB_TOKEN", "x-access-token"},
		{"GITLAB_TOKEN", "gitlab-ci-token"},
		{"GIT_TOKEN", "git"},
	} {
		if token := getenv(c.env); token != "" {
			return &http.BasicAuth{Username: c.user, Password: token}
		}
	}
	return nil
}
