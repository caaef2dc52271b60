// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"errors"
	"fmt"

	"github.com/invowk/monorepo/pkg/manifest"
)

// ErrInvalidOperation is the sentinel error wrapped by InvalidOperationError.
var ErrInvalidOperation = errors.New("invalid package operation")

const (
	// OpInstall installs Package.
	OpInstall OperationKind = iota + 1
	// OpUpdate replaces Initial with Package.
	OpUpdate
	// OpUninstall removes Package.
	OpUninstall
)

type (
	// OperationKind tags the variant of an Operation.
	OperationKind int

	// Operation is one package operation of an install plan.
	Operation struct {
		Kind OperationKind
		// Package is the installed, updated-to or removed package.
		Package *manifest.Package
		// Initial is the package being replaced; set for OpUpdate only.
		Initial *manifest.Package
	}

	// InvalidOperationError is returned when an Operation does not carry the
	// packages its kind requires.
	InvalidOperationError struct {
		Kind OperationKind
	}
)

// String returns the lower-case operation verb.
func (k OperationKind) String() string {
	switch k {
	case OpInstall:
		return "install"
	case OpUpdate:
		return "update"
	case OpUninstall:
		return "uninstall"
	default:
		return fmt.Sprintf("operation(%d)", int(k))
	}
}

// Error implements the error interface.
func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid %s operation", e.Kind)
}

// Unwrap returns ErrInvalidOperation so callers can use errors.Is for programmatic detection.
func (e *InvalidOperationError) Unwrap() error { return ErrInvalidOperation }

// InstallOperation returns an install of p.
func InstallOperation(p *manifest.Package) Operation {
	return Operation{Kind: OpInstall, Package: p}
}

// UpdateOperation returns an update from initial to target.
func UpdateOperation(initial, target *manifest.Package) Operation {
	return Operation{Kind: OpUpdate, Package: target, Initial: initial}
}

// UninstallOperation returns a removal of p.
func UninstallOperation(p *manifest.Package) Operation {
	return Operation{Kind: OpUninstall, Package: p}
}

// Validate checks that the operation carries the packages of its kind.
func (o Operation) Validate() error {
	switch o.Kind {
	case OpInstall, OpUninstall:
		if o.Package != nil {
			return nil
		}
	case OpUpdate:
		if o.Package != nil && o.Initial != nil {
			return nil
		}
	}
	return &InvalidOperationError{Kind: o.Kind}
}

// String renders the operation, e.g. "update vendor/a (1.0.0 => 1.1.0)".
func (o Operation) String() string {
	if o.Package == nil {
		return o.Kind.String()
	}
	if o.Kind == OpUpdate && o.Initial != nil {
		return fmt.Sprintf("%s %s (%s => %s)", o.Kind, o.Package.Name, o.Initial.Version, o.Package.Version)
	}
	return fmt.Sprintf("%s %s (%s)", o.Kind, o.Package.Name, o.Package.Version)
}

// withPackages returns the same kind of operation over other packages.
func (o Operation) withPackages(initial, target *manifest.Package) Operation {
	switch o.Kind {
	case OpUpdate:
		return UpdateOperation(initial, target)
	case OpUninstall:
		return UninstallOperation(target)
	default:
		return InstallOperation(target)
	}
}
