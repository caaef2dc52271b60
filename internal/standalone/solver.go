// SPDX-License-Identifier: MPL-2.0

package standalone

import (
	"slices"

	"github.com/invowk/monorepo/pkg/manifest"
	"github.com/invowk/monorepo/pkg/monorepo"
)

type (
	// RepositoryManager records the repositories added during an update.
	RepositoryManager struct {
		repos []monorepo.Repository
	}

	// Request is an ordered list of install jobs.
	Request struct {
		jobs []monorepo.Job
	}

	// Pool is a fixed candidate list.
	Pool []monorepo.Candidate
)

// AddRepository implements monorepo.RepositoryManager.
func (m *RepositoryManager) AddRepository(r monorepo.Repository) {
	m.repos = append(m.repos, r)
}

// Repositories returns the added repositories in order.
func (m *RepositoryManager) Repositories() []monorepo.Repository {
	return slices.Clone(m.repos)
}

// NewRequest returns an empty request.
func NewRequest() *Request { return &Request{} }

// Install implements monorepo.Request.
func (r *Request) Install(name string, c manifest.Constraint) {
	r.jobs = append(r.jobs, monorepo.Job{Name: name, Constraint: c})
}

// Jobs implements monorepo.Request.
func (r *Request) Jobs() []monorepo.Job { return slices.Clone(r.jobs) }

// Candidates implements monorepo.Pool.
func (p Pool) Candidates() []monorepo.Candidate { return p }

// Solve resolves req against pool without version selection: every virtual
// package is installed, and each job installs the first candidate of its
// name. Jobs without a candidate are returned as unresolved; repeated jobs
// for one name install it once.
func Solve(req monorepo.Request, pool monorepo.Pool) (ops []monorepo.Operation, unresolved []monorepo.Job) {
	installed := make(map[string]bool)
	install := func(p *manifest.Package) {
		if installed[p.Name] {
			return
		}
		installed[p.Name] = true
		ops = append(ops, monorepo.InstallOperation(p))
	}

	candidates := pool.Candidates()
	for _, c := range candidates {
		if c.Package.Type == monorepo.PackageType {
			install(c.Package)
		}
	}
	for _, j := range req.Jobs() {
		i := slices.IndexFunc(candidates, func(c monorepo.Candidate) bool { return c.Package.Name == j.Name })
		if i < 0 {
			if !slices.ContainsFunc(unresolved, func(u monorepo.Job) bool { return u.Name == j.Name }) {
				unresolved = append(unresolved, j)
			}
			continue
		}
		install(candidates[i].Package)
	}
	return ops, unresolved
}
