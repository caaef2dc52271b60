// SPDX-License-Identifier: MPL-2.0

// Package manifest loads package manifests and models their dependency data.
//
// A manifest is a JSON document describing one package: its name, version,
// the packages it requires (at runtime and for development), the names it
// replaces, and free-form "extra" metadata. This package provides:
//
//   - [Parse] and [Load]: decode a manifest into a [Package], keeping the
//     declaration order of require, require-dev and replace entries
//   - [Constraint]: a textual version-range expression with literal union
//   - [Locate]: expand include glob patterns into concrete manifest paths
//   - [ParseConfig]: read and validate the "modera-monorepo" extra block
//   - [Cache]: memoize loaded packages for the process lifetime
//
// # Errors
//
// Every failure maps onto one of four kinds, each matchable with errors.Is:
//   - [ErrConfiguration]: a required configuration key is missing or invalid
//   - [ErrGlobMatch]: an include pattern matched no file
//   - [ErrManifestParse]: manifest content is not valid JSON
//   - [ErrTypeMismatch]: manifest JSON does not have the expected shape
package manifest
