// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/invowk/monorepo/pkg/manifest"
)

func setOf(mode Mode, pairs ...string) *RequirementSet {
	m := Member{Name: "vendor/x", Dev: true}
	if mode == ModeDev {
		m.DevRequires = links("vendor/x", pairs...)
	} else {
		m.Requires = links("vendor/x", pairs...)
	}
	return Merge([]Member{m}, nil, mode)
}

func TestPatchManifest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		prod *RequirementSet
		dev  *RequirementSet
		want string
	}{
		{
			name: "replaces existing require only",
			in: `{
    "name": "vendor/root",
    "description": "keep   odd   spacing",
    "require": {"php": ">=8.1"},
    "require-dev": {"phpunit/phpunit": "^9"},
    "extra": {"require": "nested keys are not touched"}
}
`,
			prod: setOf(ModeProd, "libx", "^1.0|^1.2", "a/b", "^2.0"),
			want: `{
    "name": "vendor/root",
    "description": "keep   odd   spacing",
    "require": {
        "libx": "^1.0|^1.2",
        "a/b": "^2.0"
    },
    "require-dev": {"phpunit/phpunit": "^9"},
    "extra": {"require": "nested keys are not touched"}
}
`,
		},
		{
			name: "replaces both sections with tab indent",
			in:   "{\n\t\"name\": \"vendor/root\",\n\t\"require\": {},\n\t\"require-dev\": {}\n}\n",
			prod: setOf(ModeProd, "libx", "^1.0"),
			dev:  setOf(ModeDev, "mockery", "^1"),
			want: "{\n\t\"name\": \"vendor/root\",\n\t\"require\": {\n\t\t\"libx\": \"^1.0\"\n\t},\n\t\"require-dev\": {\n\t\t\"mockery\": \"^1\"\n\t}\n}\n",
		},
		{
			name: "inserts a missing key before the closing brace",
			in:   "{\n  \"name\": \"vendor/root\"\n}\n",
			prod: setOf(ModeProd, "libx", "^1.0"),
			want: "{\n  \"name\": \"vendor/root\",\n  \"require\": {\n    \"libx\": \"^1.0\"\n  }\n}\n",
		},
		{
			name: "inserts into an empty object",
			in:   "{\n}",
			prod: setOf(ModeProd, "libx", "^1.0"),
			want: "{\n    \"require\": {\n        \"libx\": \"^1.0\"\n    }\n}",
		},
		{
			name: "inserts into an empty compact object",
			in:   "{}",
			prod: setOf(ModeProd, "libx", "^1.0"),
			want: `{"require":{"libx":"^1.0"}}`,
		},
		{
			name: "keeps a minified manifest on one line",
			in:   "{\"name\":\"vendor/root\",\"require\":{\"php\":\">=8.1\"}}\n",
			prod: setOf(ModeProd, "libx", "^1.0", "a/b", "^2.0"),
			dev:  setOf(ModeDev, "mockery", "^1"),
			want: "{\"name\":\"vendor/root\",\"require\":{\"libx\":\"^1.0\",\"a/b\":\"^2.0\"},\"require-dev\":{\"mockery\":\"^1\"}}\n",
		},
		{
			name: "keeps CRLF line endings",
			in:   "{\r\n  \"name\": \"vendor/root\",\r\n  \"require\": {}\r\n}\r\n",
			prod: setOf(ModeProd, "libx", "^1.0"),
			dev:  setOf(ModeDev, "mockery", "^1"),
			want: "{\r\n  \"name\": \"vendor/root\",\r\n  \"require\": {\r\n    \"libx\": \"^1.0\"\r\n  },\r\n  \"require-dev\": {\r\n    \"mockery\": \"^1\"\r\n  }\r\n}\r\n",
		},
		{
			name: "empty set leaves a missing key absent",
			in:   "{\n    \"name\": \"vendor/root\"\n}\n",
			prod: NewRequirementSet(ModeProd),
			dev:  NewRequirementSet(ModeDev),
			want: "{\n    \"name\": \"vendor/root\"\n}\n",
		},
		{
			name: "empty set clears an existing key",
			in:   "{\n    \"require\": {\"a\": \"1\"}\n}\n",
			prod: NewRequirementSet(ModeProd),
			want: "{\n    \"require\": {}\n}\n",
		},
		{
			name: "nil sets change nothing",
			in:   "{\"require\": {\"a\": \"1\"}}",
			want: "{\"require\": {\"a\": \"1\"}}",
		},
		{
			name: "slashes and html are not escaped",
			in:   "{\n    \"require\": {}\n}",
			prod: setOf(ModeProd, "vendor/<lib>", ">=1.0 <2.0"),
			want: "{\n    \"require\": {\n        \"vendor/<lib>\": \">=1.0 <2.0\"\n    }\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := PatchManifest([]byte(tt.in), tt.prod, tt.dev)
			if err != nil {
				t.Fatalf("PatchManifest() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("PatchManifest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPatchManifest_Errors(t *testing.T) {
	t.Parallel()

	if _, err := PatchManifest([]byte(`{"name":`), NewRequirementSet(ModeProd), nil); !errors.Is(err, manifest.ErrManifestParse) {
		t.Errorf("invalid JSON error = %v, want ErrManifestParse", err)
	}
	if _, err := PatchManifest([]byte(`["a"]`), NewRequirementSet(ModeProd), nil); !errors.Is(err, manifest.ErrTypeMismatch) {
		t.Errorf("array root error = %v, want ErrTypeMismatch", err)
	}
}

func TestWriteManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "composer.json")
	if err := os.WriteFile(path, []byte("{\n    \"name\": \"vendor/root\"\n}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	prod := setOf(ModeProd, "libx", "^1.0|^1.2")
	changed, err := WriteManifest(path, prod, nil)
	if err != nil || !changed {
		t.Fatalf("WriteManifest() = %v, %v", changed, err)
	}

	p := loadPackage(t, path)
	if l, ok := p.Requires.Get("libx"); !ok || l.Constraint != "^1.0|^1.2" {
		t.Errorf("written require = %+v", p.Requires)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600 kept", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}

	changed, err = WriteManifest(path, prod, nil)
	if err != nil || changed {
		t.Errorf("second WriteManifest() = %v, %v, want unchanged", changed, err)
	}
}

func TestWriteManifest_ParseErrorNamesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "composer.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := WriteManifest(path, NewRequirementSet(ModeProd), nil)
	var parseErr *manifest.ParseError
	if !errors.As(err, &parseErr) || parseErr.Path != path {
		t.Errorf("error = %v, want *ParseError for %s", err, path)
	}
}
