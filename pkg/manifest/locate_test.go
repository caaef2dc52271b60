// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(`{"name": "x/x"}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func refPaths(root string, refs []Ref) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		rel, _ := filepath.Rel(root, r.Path)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestLocate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root,
		"packages/b/composer.json",
		"packages/a/composer.json",
		"packages/c/nested/composer.json",
		"tools/cli/composer.json",
	)
	// A directory named like a manifest is not a match.
	if err := os.MkdirAll(filepath.Join(root, "packages", "d", "composer.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "single star sorted",
			patterns: []string{"packages/*/composer.json"},
			want:     []string{"packages/a/composer.json", "packages/b/composer.json"},
		},
		{
			name:     "double star",
			patterns: []string{"packages/**/composer.json"},
			want:     []string{"packages/a/composer.json", "packages/b/composer.json", "packages/c/nested/composer.json"},
		},
		{
			name:     "pattern order then lexical",
			patterns: []string{"tools/*/composer.json", "packages/*/composer.json"},
			want:     []string{"tools/cli/composer.json", "packages/a/composer.json", "packages/b/composer.json"},
		},
		{
			name:     "overlap counted once",
			patterns: []string{"packages/b/composer.json", "packages/*/composer.json", "./packages/a/composer.json"},
			want:     []string{"packages/b/composer.json", "packages/a/composer.json"},
		},
		{
			name:     "brace alternatives",
			patterns: []string{"{tools,packages}/{cli,a}/composer.json"},
			want:     []string{"packages/a/composer.json", "tools/cli/composer.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			refs, err := Locate(root, "vendor/root", tt.patterns)
			if err != nil {
				t.Fatalf("Locate() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, refPaths(root, refs)); diff != "" {
				t.Errorf("paths mismatch (-want +got):\n%s", diff)
			}
			for _, r := range refs {
				if r.Owner != "vendor/root" || !filepath.IsAbs(r.Path) {
					t.Errorf("unexpected ref %+v", r)
				}
			}

			again, err := Locate(root, "vendor/root", tt.patterns)
			if err != nil || !cmp.Equal(refs, again) {
				t.Errorf("Locate() is not stable: %v", err)
			}
		})
	}
}

func TestLocate_AbsolutePattern(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "lib/composer.json")
	other := t.TempDir()

	refs, err := Locate(other, "vendor/root", []string{filepath.Join(root, "lib", "composer.json")})
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if len(refs) != 1 || refs[0].Path != filepath.Join(root, "lib", "composer.json") {
		t.Errorf("refs = %+v", refs)
	}
}

func TestLocate_ZeroMatches(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "packages/a/composer.json")
	if err := os.MkdirAll(filepath.Join(root, "only-dirs", "composer.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	for _, pattern := range []string{"missing/*/composer.json", "only-dirs/composer.json"} {
		_, err := Locate(root, "vendor/root", []string{"packages/*/composer.json", pattern})
		if !errors.Is(err, ErrGlobMatch) {
			t.Fatalf("Locate(%q) error = %v, want ErrGlobMatch", pattern, err)
		}
		var globErr *GlobMatchError
		if !errors.As(err, &globErr) || !strings.HasSuffix(globErr.Pattern, pattern) {
			t.Errorf("GlobMatchError.Pattern = %q, want suffix %q", globErr.Pattern, pattern)
		}
		if !strings.HasPrefix(err.Error(), "modera-monorepo: no files matched") {
			t.Errorf("unexpected message %q", err)
		}
	}
}

func TestLocate_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := Locate(t.TempDir(), "vendor/root", []string{"packages/[a/composer.json"})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Locate() error = %v, want ErrConfiguration", err)
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) && cfgErr.Key != "extra.modera-monorepo.include[0]" {
		t.Errorf("Key = %q", cfgErr.Key)
	}
}
