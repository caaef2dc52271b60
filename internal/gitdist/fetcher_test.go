// SPDX-License-Identifier: MPL-2.0

package gitdist

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/google/go-cmp/cmp"

	"github.com/invowk/monorepo/internal/testutil"
	"github.com/invowk/monorepo/pkg/manifest"
)

// newTestFetcher builds a Fetcher without probing the user's credentials.
func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	return &Fetcher{CacheDir: t.TempDir(), logger: log.New(io.Discard)}
}


// seedCache places a git repository holding files where Fetch looks for url at ref.
func seedCache(t *testing.T, f *Fetcher, url, ref string, files map[string]string) string {
	t.Helper()
	path := f.cachePath(url, ref)
	if _, err := git.PlainInit(path, false); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFiles(t, path, files)
	return path
}

func TestDownload_PathDist(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	testutil.WriteFiles(t, src, map[string]string{
		"composer.json":               `{"name": "vendor/mono"}`,
		"packages/a/composer.json":    `{"name": "vendor/a"}`,
		".git/HEAD":                   "ref: refs/heads/main\n",
		"packages/a/src/Lib.php":      "<?php\n",
		"packages/b/nested/deep.json": "{}",
	})
	if err := os.Symlink(filepath.Join(src, "composer.json"), filepath.Join(src, "link.json")); err != nil {
		t.Fatal(err)
	}

	dst := t.TempDir()
	pkg := &manifest.Package{Name: "vendor/mono", Dist: manifest.Dist{Type: DistPath, URL: src}}
	if err := newTestFetcher(t).Download(t.Context(), pkg, dst); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	for _, name := range []string{"composer.json", "packages/a/composer.json", "packages/a/src/Lib.php", "packages/b/nested/deep.json"} {
		if _, err := os.Stat(filepath.Join(dst, filepath.FromSlash(name))); err != nil {
			t.Errorf("%s not copied: %v", name, err)
		}
	}
	for _, name := range []string{".git", "link.json"} {
		if _, err := os.Lstat(filepath.Join(dst, name)); !os.IsNotExist(err) {
			t.Errorf("%s should not be copied", name)
		}
	}
}

func TestDownload_GitDistUsesCache(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t)
	url := "https://example.com/vendor/mono.git"
	seedCache(t, f, url, "v1.2.0", map[string]string{
		"composer.json":            `{"name": "vendor/mono"}`,
		"packages/a/composer.json": `{"name": "vendor/a"}`,
	})

	dst := t.TempDir()
	pkg := &manifest.Package{Name: "vendor/mono", Dist: manifest.Dist{Type: DistGit, URL: url, Reference: "v1.2.0"}}
	if err := f.Download(t.Context(), pkg, dst); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "packages", "a", "composer.json")); err != nil {
		t.Errorf("member manifest not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, ".git")); !os.IsNotExist(err) {
		t.Error(".git should not be copied")
	}
}

func TestDownload_Errors(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t)

	err := f.Download(t.Context(), &manifest.Package{Name: "vendor/x", Dist: manifest.Dist{Type: "zip"}}, t.TempDir())
	var unsupported *UnsupportedDistError
	if !errors.As(err, &unsupported) || !errors.Is(err, ErrUnsupportedDist) {
		t.Errorf("Download(zip) error = %v, want UnsupportedDistError", err)
	}

	err = f.Download(t.Context(), &manifest.Package{Name: "vendor/x", Dist: manifest.Dist{Type: DistGit}}, t.TempDir())
	if err == nil {
		t.Error("Download() with empty git url should fail")
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err = f.Download(ctx, &manifest.Package{Name: "vendor/x", Dist: manifest.Dist{Type: DistPath, URL: t.TempDir()}}, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Download() with cancelled context error = %v", err)
	}
}

func TestReferenceNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want []plumbing.ReferenceName
	}{
		{"", []plumbing.ReferenceName{""}},
		{"v1.0.0", []plumbing.ReferenceName{"refs/tags/v1.0.0", "refs/tags/1.0.0", "refs/heads/v1.0.0"}},
		{"1.0.0", []plumbing.ReferenceName{"refs/tags/1.0.0", "refs/tags/v1.0.0", "refs/heads/1.0.0"}},
		{"main", []plumbing.ReferenceName{"refs/tags/main", "refs/tags/vmain", "refs/heads/main"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, referenceNames(tt.ref)); diff != "" {
			t.Errorf("referenceNames(%q) mismatch (-want +got):\n%s", tt.ref, diff)
		}
	}
}

func TestCachePath(t *testing.T) {
	t.Parallel()

	f := &Fetcher{CacheDir: "/cache"}
	tests := []struct {
		url, ref, want string
	}{
		{"https://github.com/user/repo.git", "v1.0", "/cache/sources/github.com/user/repo/v1.0"},
		{"git@github.com:user/repo.git", "main", "/cache/sources/github.com/user/repo/main"},
		{"https://github.com/user/repo", "", "/cache/sources/github.com/user/repo/HEAD"},
		{"https://evil.example/../../etc", "../x", "/cache/sources/etc/x"},
	}
	for _, tt := range tests {
		if got := f.cachePath(tt.url, tt.ref); got != filepath.FromSlash(tt.want) {
			t.Errorf("cachePath(%q, %q) = %q, want %q", tt.url, tt.ref, got, tt.want)
		}
	}
}

func TestDefaultCacheDirWith(t *testing.T) {
	t.Parallel()

	got, err := DefaultCacheDirWith(func(key string) string {
		if key == CachePathEnv {
			return "/custom/cache"
		}
		return ""
	})
	if err != nil || got != "/custom/cache" {
		t.Errorf("DefaultCacheDirWith() = %q, %v", got, err)
	}
}

func TestTryHTTPAuth(t *testing.T) {
	t.Parallel()

	env := map[string]string{"GITLAB_TOKEN": "gl", "GIT_TOKEN": "generic"}
	auth, ok := tryHTTPAuth(func(k string) string { return env[k] }).(*http.BasicAuth)
	if !ok || auth.Username != "gitlab-ci-token" || auth.Password != "gl" {
		t.Errorf("tryHTTPAuth() = %#v", auth)
	}
	if tryHTTPAuth(func(string) string { return "" }) != nil {
		t.Error("tryHTTPAuth() without tokens should return nil")
	}
}
