// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"errors"
	"strings"
	"testing"

	"github.com/invowk/monorepo/internal/issue"
	"github.com/invowk/monorepo/pkg/manifest"
)

func TestHookError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		suggestion string
	}{
		{"glob", &manifest.GlobMatchError{Pattern: "/src/packages/*/composer.json"}, "/src/packages/*/composer.json"},
		{"configuration", &manifest.ConfigurationError{Key: "include", Reason: "is required"}, "extra.modera-monorepo"},
		{"parse", &manifest.ParseError{Offset: -1, Cause: errors.New("eof")}, "JSON syntax"},
		{"type mismatch", &manifest.TypeMismatchError{Field: "name", Expected: "non-empty string"}, "non-empty \"name\""},
		{"other", errors.New("network down"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := hookError("register monorepo members", "composer.json", tt.err)
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("hookError() = %T, want *issue.ActionableError", err)
			}
			if !errors.Is(err, tt.err) {
				t.Error("hook error must wrap its cause")
			}
			if ae.Operation != "register monorepo members" || ae.Resource != "composer.json" {
				t.Errorf("context = %q / %q", ae.Operation, ae.Resource)
			}
			if tt.suggestion == "" {
				if ae.HasSuggestions() {
					t.Errorf("unexpected suggestions %v", ae.Suggestions)
				}
				return
			}
			if len(ae.Suggestions) != 1 || !strings.Contains(ae.Suggestions[0], tt.suggestion) {
				t.Errorf("Suggestions = %v, want one containing %q", ae.Suggestions, tt.suggestion)
			}
		})
	}
}
