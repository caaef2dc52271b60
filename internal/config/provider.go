// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the config directory lookup when set.
		ConfigDirPath string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// Resolver is a Provider that also reports the file it read.
	Resolver interface {
		Provider
		// Resolve returns the configuration and the path of the file it
		// came from, or "" when only defaults and the environment applied.
		Resolve(ctx context.Context, opts LoadOptions) (*Config, string, error)
	}

	fileProvider struct{}
)

// NewProvider creates a provider reading config.cue files. MONOREPO_*
// environment variables override the file, which overrides defaults.
func NewProvider() Resolver {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := p.Resolve(ctx, opts)
	return cfg, err
}

// Resolve reads configuration and reports the file it was read from.
func (p *fileProvider) Resolve(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}
