// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// AlternativeSeparator joins the alternatives of a unioned constraint.
const AlternativeSeparator = "|"

// ErrInvalidConstraint is the sentinel error wrapped by InvalidConstraintError.
var ErrInvalidConstraint = errors.New("invalid constraint")

type (
	// Constraint is a textual version-range expression on a dependency edge
	// (e.g., "^1.2", ">=1.0,<2.0", "^1.0|^2.0").
	//
	// Constraints are never normalized: two range-equivalent expressions
	// written differently stay distinct, and a union is a literal join of
	// alternatives.
	Constraint string

	// InvalidConstraintError is returned when a Constraint is empty or
	// whitespace-only.
	InvalidConstraintError struct {
		Value Constraint
	}
)

// Error implements the error interface.
func (e *InvalidConstraintError) Error() string {
	return fmt.Sprintf("invalid constraint %q (must not be empty)", e.Value)
}

// Unwrap returns ErrInvalidConstraint so callers can use errors.Is for programmatic detection.
func (e *InvalidConstraintError) Unwrap() error { return ErrInvalidConstraint }

// Validate returns nil if the Constraint is non-empty.
func (c Constraint) Validate() error {
	if strings.TrimSpace(string(c)) == "" {
		return &InvalidConstraintError{Value: c}
	}
	return nil
}

// String returns the string representation of the Constraint.
func (c Constraint) String() string { return string(c) }

// Alternatives splits the constraint on '|' and returns the trimmed,
// non-empty pieces in order. "^1.0 || ^2.0" yields ["^1.0", "^2.0"].
func (c Constraint) Alternatives() []Constraint {
	parts := strings.Split(string(c), AlternativeSeparator)
	out := make([]Constraint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, Constraint(p))
	}
	return out
}

// Contains reports whether alt is literally one of c's alternatives.
func (c Constraint) Contains(alt Constraint) bool {
	return slices.Contains(c.Alternatives(), Constraint(strings.TrimSpace(string(alt))))
}

// Union appends every alternative of other that c does not already contain
// verbatim. The text of c is kept as first written; new alternatives are
// joined with '|'. Union of "^1.0" and "^1.2" is "^1.0|^1.2", and union of
// "^1.0" with "^1.0" is "^1.0".
func (c Constraint) Union(other Constraint) Constraint {
	if strings.TrimSpace(string(c)) == "" {
		return other
	}
	out := c
	for _, alt := range other.Alternatives() {
		if out.Contains(alt) {
			continue
		}
		out += AlternativeSeparator + alt
	}
	return out
}
