// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/monorepo/internal/config"
	"github.com/invowk/monorepo/internal/testutil"
)

func TestConfigShow_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"config.cue": `output: {format: "yaml"}
watch: {debounce: "1s"}
`})
	cfgPath := filepath.Join(dir, "config.cue")

	res := runCLI(t, config.NewProvider(), "config", "show", "--config", cfgPath)
	if res.err != nil {
		t.Fatalf("config show error = %v", res.err)
	}
	for _, want := range []string{cfgPath, "yaml", "1s", "composer.json"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestConfigShow_MissingFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	res := runCLI(t, config.NewProvider(), "config", "show", "--config", missing)
	if res.err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(res.stderr, "config file not found") {
		t.Errorf("stderr missing error:\n%s", res.stderr)
	}
}

func TestConfigDump_FlagOverrides(t *testing.T) {
	t.Parallel()

	res := runCLI(t, staticProvider{cfg: config.DefaultConfig()},
		"config", "dump", "--manifest", "app/composer.json", "--format", "toml")
	if res.err != nil {
		t.Fatalf("config dump error = %v", res.err)
	}
	for _, want := range []string{`manifest: "app/composer.json"`, `format: "toml"`} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestConfigShow_StaticProvider(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Output.Format = config.FormatTOML
	res := runCLI(t, staticProvider{cfg: cfg}, "config", "show")
	if res.err != nil {
		t.Fatalf("config show error = %v", res.err)
	}
	for _, want := range []string{"(using defaults)", "output.format: toml"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, res.stdout)
		}
	}
}
