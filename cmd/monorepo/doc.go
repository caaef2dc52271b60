// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands of the monorepo driver.
//
// The driver runs the monorepo plugin against a root manifest with the
// reference host of internal/standalone: merge patches the root manifest,
// inspect reports what a merge would produce, and config manages the
// driver configuration.
package cmd
