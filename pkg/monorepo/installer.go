// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"context"

	"github.com/invowk/monorepo/pkg/manifest"
)

// Installer handles packages of PackageType. Their files already live in
// the source tree, so every operation is a no-op and the install path is
// the member's directory.
type Installer struct{}

// Supports reports whether packages of pkgType are handled.
func (Installer) Supports(pkgType string) bool { return pkgType == PackageType }

// InstallPath returns the directory of the member manifest.
func (Installer) InstallPath(p *manifest.Package) string { return p.Dist.URL }

// IsInstalled always reports true.
func (Installer) IsInstalled(*manifest.Package) bool { return true }

// Apply validates op and performs nothing.
func (Installer) Apply(ctx context.Context, op Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return op.Validate()
}
