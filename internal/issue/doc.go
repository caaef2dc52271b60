// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError attaches the failed operation, the resource involved and
// suggestions to an error. The catalog maps each monorepo error kind to a
// Markdown explanation rendered with glamour by the CLI.
package issue
