// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"

	"github.com/invowk/monorepo/internal/issue"
)

// fatalWatchError returns an actionable error when the kernel ran out of
// watch resources, or nil when watching can continue.
func fatalWatchError(err error) error {
	var suggestion string
	switch {
	case errors.Is(err, syscall.ENOSPC):
		suggestion = "Raise the inotify watch limit: sysctl fs.inotify.max_user_watches=524288"
	case errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE):
		suggestion = "Raise the open file limit (ulimit -n) or narrow the include patterns"
	default:
		return nil
	}
	return issue.NewErrorContext().
		WithOperation(issue.OpWatchManifests).
		WithSuggestion(suggestion).
		Wrap(err).
		BuildError()
}
