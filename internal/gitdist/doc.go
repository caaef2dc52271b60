// SPDX-License-Identifier: MPL-2.0

// Package gitdist materializes registry packages from their dist descriptor.
//
// Git dists are shallow-cloned once per (url, reference) into a source cache
// and copied into the caller's directory; path dists are copied directly.
// Fetcher implements the monorepo Downloader capability.
package gitdist
