// SPDX-License-Identifier: MPL-2.0

// Package standalone is a reference host for the monorepo plugin.
//
// It drives the plugin lifecycle against a root manifest on disk with a
// pass-through solver: every install job resolves to the pool candidate of
// the same name, virtual packages are always installed, and anything else is
// reported as unresolved rather than fetched. It exists to preview and apply
// merges without a full package manager.
package standalone
