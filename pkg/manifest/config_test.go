// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, data string) *Package {
	t.Helper()
	p, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	p := mustParse(t, `{
    "name": "vendor/root",
    "extra": {
        "modera-monorepo": {
            "include": ["packages/*/composer.json", "tools/composer.json"],
            "require": {"php": ">=8.1", "Vendor/Core": "^2.0"},
            "require-dev": {"phpunit/phpunit": "^10"}
        }
    }
}`)

	cfg, err := ParseConfig(p)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if diff := cmp.Diff([]string{"packages/*/composer.json", "tools/composer.json"}, cfg.Include); diff != "" {
		t.Errorf("Include mismatch (-want +got):\n%s", diff)
	}
	wantRequire := Links{
		{Source: "vendor/root", Target: "php", Constraint: ">=8.1", Description: DescRequires},
		{Source: "vendor/root", Target: "vendor/core", Constraint: "^2.0", Description: DescRequires},
	}
	if diff := cmp.Diff(wantRequire, cfg.Require); diff != "" {
		t.Errorf("Require mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.RequireDev.Targets(); !cmp.Equal(got, []string{"phpunit/phpunit"}) {
		t.Errorf("RequireDev targets = %v", got)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
		wantKey string
	}{
		{
			name:    "no block",
			data:    `{"name": "a/b"}`,
			wantErr: ErrNoMonorepoConfig,
		},
		{
			name:    "block not an object",
			data:    `{"name": "a/b", "extra": {"modera-monorepo": true}}`,
			wantErr: ErrConfiguration,
			wantKey: "extra.modera-monorepo",
		},
		{
			name:    "missing include",
			data:    `{"name": "a/b", "extra": {"modera-monorepo": {"require": {}}}}`,
			wantErr: ErrConfiguration,
			wantKey: "extra.modera-monorepo.include",
		},
		{
			name:    "empty include",
			data:    `{"name": "a/b", "extra": {"modera-monorepo": {"include": []}}}`,
			wantErr: ErrConfiguration,
			wantKey: "extra.modera-monorepo",
		},
		{
			name:    "include of numbers",
			data:    `{"name": "a/b", "extra": {"modera-monorepo": {"include": [1]}}}`,
			wantErr: ErrConfiguration,
			wantKey: "extra.modera-monorepo",
		},
		{
			name:    "non-string baseline constraint",
			data:    `{"name": "a/b", "extra": {"modera-monorepo": {"include": ["x"], "require": {"c/d": 2}}}}`,
			wantErr: ErrConfiguration,
			wantKey: "extra.modera-monorepo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseConfig(mustParse(t, tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseConfig() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantKey == "" {
				return
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error %T is not a *ConfigurationError", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", cfgErr.Key, tt.wantKey)
			}
			if !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("message %q does not name the key", err)
			}
		})
	}
}
