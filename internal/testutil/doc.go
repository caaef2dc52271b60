// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Helpers build manifest trees on disk (WriteFiles, NewProject) and read
// them back (ReadFile).
package testutil
