// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"

	"github.com/invowk/monorepo/internal/issue"
)

// Win32 error codes after which ReadDirectoryChangesW cannot recover.
const (
	errnoTooManyOpenFiles = syscall.Errno(4)
	errnoInvalidHandle    = syscall.Errno(6)
	errnoNotEnoughMemory  = syscall.Errno(8)
)

// fatalWatchError returns an actionable error when a directory handle is
// gone or notification buffers cannot be allocated, or nil otherwise.
func fatalWatchError(err error) error {
	var suggestion string
	switch {
	case errors.Is(err, errnoInvalidHandle):
		suggestion = "A watched directory was removed; restart 'monorepo merge --watch'"
	case errors.Is(err, errnoTooManyOpenFiles), errors.Is(err, errnoNotEnoughMemory):
		suggestion = "Narrow the include patterns so fewer directories are watched"
	default:
		return nil
	}
	return issue.NewErrorContext().
		WithOperation(issue.OpWatchManifests).
		WithSuggestion(suggestion).
		Wrap(err).
		BuildError()
}
