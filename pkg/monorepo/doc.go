// SPDX-License-Identifier: MPL-2.0

// Package monorepo aggregates the manifests of a multi-project source tree
// into the dependency graph of one root project.
//
// A root manifest opts in with an "extra.modera-monorepo" block whose
// "include" patterns select member manifests. During a host update command:
//
//  1. [Plugin.PreUpdate] wraps the members as virtual packages in one or two
//     [VirtualRepository] instances, registers them with the host and
//     overwrites the root's in-memory requirements with the merged set.
//  2. [Plugin.PreDependencySolving] injects every member requirement edge
//     into the solve request, once per command.
//  3. The host solves and installs; operations on virtual packages are
//     answered by the [Installer].
//  4. [Plugin.PostUpdate] re-derives the merged requirements from disk and
//     patches "require" and "require-dev" of the root manifest in place.
//
// Constraints are merged textually (see [manifest.Constraint.Union]); two
// range-equivalent expressions written differently are kept apart.
//
// The host is reached only through the small interfaces in host.go, so any
// package manager front end (or the reference host in internal/standalone)
// can drive the lifecycle.
package monorepo
