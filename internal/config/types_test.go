// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestOutputFormat_Validate(t *testing.T) {
	t.Parallel()

	for _, f := range Formats() {
		if err := f.Validate(); err != nil {
			t.Errorf("%q.Validate() = %v", f, err)
		}
	}
	for _, f := range []OutputFormat{"", "xml", "JSON"} {
		err := f.Validate()
		var formatErr *InvalidOutputFormatError
		if !errors.As(err, &formatErr) || formatErr.Value != f {
			t.Errorf("%q.Validate() = %v, want InvalidOutputFormatError", f, err)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Manifest = " "
	cfg.Git.CacheDir = "  "
	cfg.Output.Format = "xml"
	cfg.Watch.Debounce = -time.Second

	err := cfg.Validate()
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("Validate() = %v, want InvalidConfigError", err)
	}
	if len(invalid.FieldErrors) != 4 {
		t.Errorf("FieldErrors = %v, want 4 errors", invalid.FieldErrors)
	}
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, ErrInvalidOutputFormat) {
		t.Errorf("Validate() error chain = %v", err)
	}
}
