// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"errors"

	"github.com/invowk/monorepo/internal/issue"
	"github.com/invowk/monorepo/pkg/manifest"
)

// hookError wraps err with the operation and resource that failed and a
// suggestion matching its kind. The manifest error kinds stay reachable
// through errors.Is and errors.As.
func hookError(operation, resource string, err error) error {
	ae := issue.WrapWithContext(err, operation, resource)
	if ae == nil {
		return nil
	}
	if sug := suggestionFor(err); sug != "" {
		ae.Suggestions = append(ae.Suggestions, sug)
	}
	return ae
}

func suggestionFor(err error) string {
	var globErr *manifest.GlobMatchError
	switch {
	case errors.As(err, &globErr):
		return "Check that every include pattern matches at least one manifest: " + globErr.Pattern
	case errors.Is(err, manifest.ErrConfiguration):
		return "Fix the \"extra." + manifest.ConfigKey + "\" block of the root manifest"
	case errors.Is(err, manifest.ErrManifestParse):
		return "Fix the JSON syntax of the reported manifest"
	case errors.Is(err, manifest.ErrTypeMismatch):
		return "Make sure the manifest declares a non-empty \"name\" and object-valued sections"
	}
	return ""
}
