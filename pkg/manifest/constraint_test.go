// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConstraint_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		c       Constraint
		wantErr bool
	}{
		{"caret", Constraint("^1.2"), false},
		{"range", Constraint(">=1.0,<2.0"), false},
		{"union", Constraint("^1.0|^2.0"), false},
		{"empty", Constraint(""), true},
		{"whitespace", Constraint("  "), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Constraint(%q).Validate() error = %v, wantErr %v", tt.c, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidConstraint) {
				t.Errorf("error should wrap ErrInvalidConstraint, got: %v", err)
			}
		})
	}
}

func TestConstraint_Alternatives(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    Constraint
		want []Constraint
	}{
		{"single", "^1.0", []Constraint{"^1.0"}},
		{"pipe", "^1.0|^2.0", []Constraint{"^1.0", "^2.0"}},
		{"double pipe", "^1.0 || ^2.0", []Constraint{"^1.0", "^2.0"}},
		{"comma stays", ">=1.0,<2.0", []Constraint{">=1.0,<2.0"}},
		{"empty", "", []Constraint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, tt.c.Alternatives()); diff != "" {
				t.Errorf("Alternatives() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConstraint_Union(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		a, b  Constraint
		want  Constraint
	}{
		{"distinct", "^1.0", "^1.2", "^1.0|^1.2"},
		{"identical", "^1.0", "^1.0", "^1.0"},
		{"already present in union", "^1.0|^1.2", "^1.2", "^1.0|^1.2"},
		{"partially new", "^1.0", "^1.0|^2.0", "^1.0|^2.0"},
		{"equivalent ranges stay distinct", "^1.0", ">=1.0,<2.0", "^1.0|>=1.0,<2.0"},
		{"first text kept verbatim", "^1.0 || ^1.1", "^1.1", "^1.0 || ^1.1"},
		{"empty receiver", "", "^3.0", "^3.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.Union(tt.b); got != tt.want {
				t.Errorf("Constraint(%q).Union(%q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestConstraint_Contains(t *testing.T) {
	t.Parallel()

	c := Constraint("^1.0|^1.2")
	if !c.Contains("^1.2") {
		t.Error("expected ^1.2 to be contained")
	}
	if !c.Contains(" ^1.0 ") {
		t.Error("expected surrounding whitespace to be ignored")
	}
	if c.Contains("^1") {
		t.Error("containment must be literal, not semantic")
	}
}
