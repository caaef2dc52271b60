// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"errors"
	"strings"

	"github.com/mailru/easyjson/jlexer"
	"github.com/tidwall/gjson"

	"github.com/invowk/monorepo/pkg/cueutil"
)

const (
	// ConfigKey is the "extra" key that carries the monorepo configuration.
	ConfigKey = "modera-monorepo"

	configSchemaPath = "#MonorepoConfig"
)

//go:embed config_schema.cue
var configSchema []byte

// Config is the decoded "extra.modera-monorepo" block of a package.
type Config struct {
	// Include lists the member glob patterns in declaration order.
	Include []string
	// Require is the optional baseline of runtime requirements.
	Require Links
	// RequireDev is the optional baseline of development requirements.
	RequireDev Links
}

// ParseConfig reads and validates the monorepo configuration of p.
//
// It returns ErrNoMonorepoConfig when p carries no such block, and a
// *ConfigurationError when "include" is missing or the block violates the
// schema. Baseline links are sourced from p.
func ParseConfig(p *Package) (*Config, error) {
	if !p.HasMonorepoConfig() {
		return nil, ErrNoMonorepoConfig
	}
	raw := p.Extra[ConfigKey]
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, &ConfigurationError{Key: configKeyPath(""), Reason: "must be an object"}
	}
	if !gjson.GetBytes(raw, "include").Exists() {
		return nil, &ConfigurationError{Key: configKeyPath("include"), Reason: "is required"}
	}

	if _, err := cueutil.Validate(configSchema, raw, configSchemaPath,
		cueutil.WithFilename(p.Name+"#extra."+ConfigKey)); err != nil {
		return nil, &ConfigurationError{Key: configKeyPath(""), Reason: "does not match the schema", Cause: err}
	}

	cfg, err := decodeConfig(raw)
	if err != nil {
		return nil, &ConfigurationError{Key: configKeyPath(""), Reason: "cannot be decoded", Cause: err}
	}
	cfg.Require = cfg.Require.Retarget(p.Name)
	cfg.RequireDev = cfg.RequireDev.Retarget(p.Name)
	return cfg, nil
}

// decodeConfig walks an already validated block, keeping key order.
func decodeConfig(raw []byte) (*Config, error) {
	l := &jlexer.Lexer{Data: raw}
	d := &decoder{l: l}
	cfg := &Config{}
	d.object(ConfigKey, func(key string) {
		switch key {
		case "include":
			cfg.Include = d.strings(ConfigKey + ".include")
		case "require":
			cfg.Require = d.links(ConfigKey+".require", DescRequires)
		case "require-dev":
			cfg.RequireDev = d.links(ConfigKey+".require-dev", DescDevRequires)
		default:
			l.SkipRecursive()
		}
	})
	l.Consumed()
	if err := l.Error(); err != nil {
		var mismatch *TypeMismatchError
		if errors.As(err, &mismatch) {
			return nil, mismatch
		}
		return nil, err
	}
	return cfg, nil
}

func configKeyPath(key string) string {
	parts := []string{"extra", ConfigKey}
	if key != "" {
		parts = append(parts, key)
	}
	return strings.Join(parts, ".")
}
