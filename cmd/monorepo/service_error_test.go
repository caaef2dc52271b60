// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/invowk/monorepo/internal/issue"
	"github.com/invowk/monorepo/pkg/manifest"
)

func TestNewServiceError_PanicsOnNilErr(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on nil Err, got none")
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("expected string panic, got %T", r)
		}
		if msg != "ServiceError: Err must not be nil" {
			t.Fatalf("unexpected panic message: %s", msg)
		}
	}()

	newServiceError(nil, 0, "")
}

func TestServiceError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	underlying := errors.New("underlying error")
	svcErr := newServiceError(underlying, 0, "")

	if svcErr.Error() != "underlying error" {
		t.Errorf("Error() = %q, want %q", svcErr.Error(), "underlying error")
	}
	if !errors.Is(svcErr, underlying) {
		t.Error("errors.Is should find underlying error via Unwrap")
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		wantID issue.Id
	}{
		{"glob match", &manifest.GlobMatchError{Pattern: "/p/*.json"}, issue.GlobMatchFailedId},
		{"parse", &manifest.ParseError{Offset: 3, Cause: errors.New("eof")}, issue.ManifestParseFailedId},
		{"plain", errors.New("boom"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classifyError(tt.err, false)
			var svcErr *ServiceError
			if !errors.As(got, &svcErr) {
				t.Fatalf("classifyError() = %T, want *ServiceError", got)
			}
			if svcErr.IssueID != tt.wantID {
				t.Errorf("IssueID = %d, want %d", svcErr.IssueID, tt.wantID)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error must wrap the original")
			}
			if !strings.Contains(svcErr.StyledMessage, tt.err.Error()) {
				t.Errorf("StyledMessage = %q, want it to contain %q", svcErr.StyledMessage, tt.err.Error())
			}
		})
	}
}

func TestClassifyError_PassThrough(t *testing.T) {
	t.Parallel()

	if classifyError(nil, false) != nil {
		t.Error("classifyError(nil) should be nil")
	}
	exitErr := &ExitError{Code: 1}
	if got := classifyError(exitErr, false); got != exitErr {
		t.Errorf("ExitError should pass through, got %v", got)
	}
	svcErr := newServiceError(errors.New("x"), 0, "")
	if got := classifyError(svcErr, false); got != svcErr {
		t.Errorf("ServiceError should pass through, got %v", got)
	}
}

func TestRenderServiceError(t *testing.T) {
	t.Parallel()

	t.Run("styled message only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		renderServiceError(&buf, newServiceError(errors.New("x"), 0, "styled\n"))
		if buf.String() != "styled\n" {
			t.Errorf("output = %q, want %q", buf.String(), "styled\n")
		}
	})

	t.Run("with catalog entry", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		renderServiceError(&buf, newServiceError(errors.New("x"), issue.GlobMatchFailedId, ""))
		if !strings.Contains(buf.String(), "include") {
			t.Errorf("output missing issue help text: %q", buf.String())
		}
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		renderServiceError(&buf, nil)
		if buf.Len() != 0 {
			t.Errorf("output = %q, want empty", buf.String())
		}
	})
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), exitFailure},
		{"exit error", &ExitError{Code: exitOutdated}, exitOutdated},
		{"wrapped exit error", newServiceError(&ExitError{Code: 7}, 0, ""), 7},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%s) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 3}).Error(); got != "exit status 3" {
		t.Errorf("Error() = %q", got)
	}
	cause := errors.New("cause")
	e := &ExitError{Code: 1, Err: cause}
	if e.Error() != "cause" || !errors.Is(e, cause) {
		t.Errorf("ExitError should expose its cause, got %q", e.Error())
	}
}

func TestFormatErrorForDisplay_VerboseHint(t *testing.T) {
	t.Parallel()

	bare := issue.WrapWithContext(errors.New("connection reset"), issue.OpLoadRegistryMembers, "vendor/framework")
	withSuggestion := issue.NewErrorContext().
		WithOperation(issue.OpWriteRootManifest).
		WithSuggestion("Check file permissions").
		Wrap(errors.New("EACCES")).
		Build()

	tests := []struct {
		name     string
		err      error
		verbose  bool
		wantHint bool
	}{
		{"no suggestions", bare, false, true},
		{"no suggestions verbose", bare, true, false},
		{"with suggestions", withSuggestion, false, false},
		{"plain error", errors.New("boom"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatErrorForDisplay(tt.err, tt.verbose)
			if hint := strings.Contains(got, verboseHint); hint != tt.wantHint {
				t.Errorf("hint shown = %v, want %v in %q", hint, tt.wantHint, got)
			}
			if !strings.Contains(got, tt.err.Error()) {
				t.Errorf("message %q does not contain %q", got, tt.err.Error())
			}
		})
	}
}
