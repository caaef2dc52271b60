// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs the monorepo merge when member manifests change.
//
// A Watcher observes the directory tree of the root project, filters events
// through the include patterns of the root manifest, and calls OnChange once
// per burst of changes after a quiet period. Callbacks never overlap.
package watch
