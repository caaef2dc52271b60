// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the sentinel error wrapped by ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrGlobMatch is the sentinel error wrapped by GlobMatchError.
	ErrGlobMatch = errors.New("no files matched")
	// ErrManifestParse is the sentinel error wrapped by ParseError.
	ErrManifestParse = errors.New("malformed manifest")
	// ErrTypeMismatch is the sentinel error wrapped by TypeMismatchError.
	ErrTypeMismatch = errors.New("unexpected manifest shape")
	// ErrNoMonorepoConfig is returned by ParseConfig when the package has no
	// "modera-monorepo" extra block at all.
	ErrNoMonorepoConfig = errors.New("package has no modera-monorepo configuration")
)

type (
	// ConfigurationError is returned when a required configuration key is
	// missing or its value is not acceptable.
	ConfigurationError struct {
		// Key is the dotted path of the offending key (e.g., "extra.modera-monorepo.include").
		Key string
		// Reason describes what is wrong with the key.
		Reason string
		// Cause is the underlying error, if any.
		Cause error
	}

	// GlobMatchError is returned when an include pattern matches zero files.
	// A missing monorepo member signals misconfiguration, so this is never
	// skipped silently.
	GlobMatchError struct {
		// Pattern is the pattern as it was expanded (joined with the package root).
		Pattern string
	}

	// ParseError is returned when manifest bytes are not valid JSON.
	ParseError struct {
		// Path is the manifest file path; empty when parsing in-memory data.
		Path string
		// Offset is the byte offset of the failure, or -1 when unknown.
		Offset int
		// Cause is the underlying lexer error.
		Cause error
	}

	// TypeMismatchError is returned when a manifest is valid JSON but a field
	// does not have the shape a package record requires.
	TypeMismatchError struct {
		// Path is the manifest file path; empty when parsing in-memory data.
		Path string
		// Field is the dotted field name (e.g., "require.vendor/lib").
		Field string
		// Expected describes the required shape (e.g., "object", "non-empty string").
		Expected string
	}
)

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration key %q: %s", e.Key, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both ErrConfiguration and the cause to errors.Is/As.
func (e *ConfigurationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Cause}
}

// Error implements the error interface.
func (e *GlobMatchError) Error() string {
	return fmt.Sprintf("modera-monorepo: no files matched '%s'", e.Pattern)
}

// Unwrap returns ErrGlobMatch so callers can use errors.Is for programmatic detection.
func (e *GlobMatchError) Unwrap() error { return ErrGlobMatch }

// Error implements the error interface.
func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "<input>"
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: malformed manifest at offset %d: %v", where, e.Offset, e.Cause)
	}
	return fmt.Sprintf("%s: malformed manifest: %v", where, e.Cause)
}

// Unwrap exposes both ErrManifestParse and the cause to errors.Is/As.
func (e *ParseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrManifestParse}
	}
	return []error{ErrManifestParse, e.Cause}
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	where := e.Path
	if where == "" {
		where = "<input>"
	}
	return fmt.Sprintf("%s: field %q: expected %s", where, e.Field, e.Expected)
}

// Unwrap returns ErrTypeMismatch so callers can use errors.Is for programmatic detection.
func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
