// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/invowk/monorepo/internal/issue"
)

const verboseHint = "Run with --verbose to see the full error chain."

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before the issue help text.
// Always create via newServiceError; Err must not be nil.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError wraps err in a ServiceError that points at the matching
// issue catalog entry. ExitErrors pass through untouched.
func classifyError(err error, verbose bool) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	var id issue.Id
	if entry := issue.ForError(err); entry != nil {
		id = entry.Id()
	}
	return newServiceError(err, id, formatErrorForDisplay(err, verbose))
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors use their own formatting; verbose mode shows the chain.
// An ActionableError without suggestions points at --verbose instead.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		msg := errorStyle.Render("Error: ") + ae.Format(verbose) + "\n"
		if !verbose && !ae.HasSuggestions() {
			msg += mutedStyle.Render(verboseHint) + "\n"
		}
		return msg
	}
	return errorStyle.Render("Error: ") + err.Error() + "\n"
}

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("")
		if renderErr != nil {
			log.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// fail classifies err, renders it to the app's stderr and returns it so
// the command exits non-zero.
func (a *App) fail(err error, verbose bool) error {
	err = classifyError(err, verbose)
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(a.stderr, svcErr)
	}
	return err
}
