// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Ref points at one manifest selected by an include pattern.
type Ref struct {
	// Path is the cleaned absolute path of the manifest file.
	Path string
	// Owner is the name of the package whose patterns selected the file.
	Owner string
	// Pattern is the include pattern that matched first.
	Pattern string
}

// Locate expands include patterns relative to root into manifest paths.
//
// Patterns use doublestar syntax ("*", "**", "{a,b}", "[...]"). Relative
// patterns are resolved against root; absolute patterns are used as-is.
// Only regular files count as matches. A pattern that matches nothing fails
// with *GlobMatchError, and an invalid pattern with *ConfigurationError.
//
// The result is ordered by pattern, then lexically within a pattern, and a
// file selected by several patterns appears once, at its first position.
func Locate(root, owner string, patterns []string) ([]Ref, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve package root %s: %w", root, err)
	}

	seen := make(map[string]bool)
	var refs []Ref
	for i, pattern := range patterns {
		matches, err := expand(absRoot, pattern)
		if err != nil && !errors.Is(err, doublestar.ErrBadPattern) {
			return nil, fmt.Errorf("failed to expand pattern %q: %w", pattern, err)
		}
		if err != nil {
			return nil, &ConfigurationError{
				Key:    fmt.Sprintf("%s[%d]", configKeyPath("include"), i),
				Reason: fmt.Sprintf("invalid pattern %q", pattern),
				Cause:  err,
			}
		}
		if len(matches) == 0 {
			return nil, &GlobMatchError{Pattern: displayPattern(absRoot, pattern)}
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			refs = append(refs, Ref{Path: m, Owner: owner, Pattern: pattern})
		}
	}
	return refs, nil
}

// expand returns the sorted absolute paths of regular files matching pattern.
// Patterns that stay below root are globbed through os.DirFS; absolute and
// parent-relative patterns go through the host filesystem.
func expand(root, pattern string) ([]string, error) {
	var (
		matches []string
		err     error
	)
	slashed := filepath.ToSlash(filepath.Clean(pattern))
	if !filepath.IsAbs(pattern) && fs.ValidPath(slashed) {
		if !doublestar.ValidatePattern(slashed) {
			return nil, doublestar.ErrBadPattern
		}
		var rel []string
		rel, err = doublestar.Glob(os.DirFS(root), slashed, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		for _, r := range rel {
			matches = append(matches, filepath.Join(root, filepath.FromSlash(r)))
		}
	} else {
		joined := displayPattern(root, pattern)
		if !doublestar.ValidatePathPattern(joined) {
			return nil, doublestar.ErrBadPattern
		}
		matches, err = doublestar.FilepathGlob(joined, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Clean(m))
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func displayPattern(root, pattern string) string {
	if filepath.IsAbs(pattern) {
		return pattern
	}
	return filepath.Join(root, pattern)
}
