// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"context"

	"github.com/invowk/monorepo/pkg/manifest"
)

type (
	// Repository is an addable collection of installable candidates.
	Repository interface {
		// Type identifies the repository kind (e.g., "modera-monorepo").
		Type() string
		// Packages returns the candidates offered by the repository.
		Packages() ([]*manifest.Package, error)
	}

	// RepositoryManager accepts repositories for the current solve.
	RepositoryManager interface {
		AddRepository(Repository)
	}

	// Job is one install instruction already present in a solve request.
	Job struct {
		Name       string
		Constraint manifest.Constraint
	}

	// Request is the host's pending solve request.
	Request interface {
		// Install adds an install(name, constraint) instruction.
		Install(name string, c manifest.Constraint)
		// Jobs returns the install instructions currently in the request.
		Jobs() []Job
	}

	// Candidate is a package the solver may select.
	Candidate struct {
		Package *manifest.Package
		// Registry is true when the candidate comes from a package registry
		// rather than a path or virtual repository.
		Registry bool
	}

	// Pool exposes the candidates available to the solver.
	Pool interface {
		Candidates() []Candidate
	}

	// Downloader materializes a package's files into dir.
	Downloader interface {
		Download(ctx context.Context, pkg *manifest.Package, dir string) error
	}

	// Quieter is an optional host capability that lowers output verbosity
	// until the returned restore function is called.
	Quieter interface {
		Quiet() (restore func())
	}

	// Replayer is an optional host capability that dispatches a package
	// operation to the host's own installers.
	Replayer interface {
		Replay(ctx context.Context, op Operation) error
	}

	// UpdateEvent carries the state of a host update command.
	UpdateEvent struct {
		// Root is the root package. PreUpdate overwrites its requirements.
		Root *manifest.Package
		// RootDir is the directory include patterns are resolved against.
		RootDir string
		// ManifestPath is the on-disk root manifest patched by PostUpdate.
		ManifestPath string
		// Dev enables development requirements.
		Dev bool
		// DryRun computes the merge without writing the manifest.
		DryRun bool
		// Repositories receives the virtual repositories.
		Repositories RepositoryManager
	}

	// SolveEvent carries the state of one dependency solve.
	SolveEvent struct {
		Request    Request
		Pool       Pool
		Downloader Downloader
		Dev        bool
	}
)

// hasJob reports whether req holds an install job targeting name.
func hasJob(req Request, name string) bool {
	for _, j := range req.Jobs() {
		if j.Name == name {
			return true
		}
	}
	return false
}
