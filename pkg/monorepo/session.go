// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"sync"

	"github.com/invowk/monorepo/pkg/manifest"
)

const (
	// StateIdle means no command is in progress, or the root has no
	// monorepo configuration.
	StateIdle State = iota
	// StateRegistered means virtual repositories were registered and the
	// root requirements overwritten in memory.
	StateRegistered
	// StateInjected means member requirements were injected into the solve.
	StateInjected
	// StateWritten means the root manifest was patched. The plugin returns
	// to StateIdle right after.
	StateWritten
)

type (
	// State is the lifecycle position of a command.
	State int

	// Session holds the state of one host command, from PreUpdate to
	// PostUpdate.
	Session struct {
		root         *manifest.Package
		rootDir      string
		manifestPath string
		dev          bool
		config       *manifest.Config

		// rootMember is the root contribution captured before PreUpdate
		// overwrote the root requirements.
		rootMember Member
		repos      []*VirtualRepository
		prod       *RequirementSet
		devSet     *RequirementSet

		solveOnce sync.Once
		injected  int
		state     State
	}
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateInjected:
		return "injected"
	case StateWritten:
		return "written"
	default:
		return "idle"
	}
}

func newSession(ev UpdateEvent, cfg *manifest.Config) *Session {
	return &Session{
		root:         ev.Root,
		rootDir:      ev.RootDir,
		manifestPath: ev.ManifestPath,
		dev:          ev.Dev,
		config:       cfg,
		rootMember:   RootMember(ev.Root, cfg, ev.Dev),
	}
}

// detachedSession serves a solve that was not preceded by a PreUpdate with
// a configured root; only registry members are handled.
func detachedSession(dev bool) *Session {
	return &Session{dev: dev}
}

// State returns the lifecycle position.
func (s *Session) State() State { return s.state }

// Registered reports whether any repository was registered.
func (s *Session) Registered() bool { return len(s.repos) > 0 }

// Repositories returns the registered virtual repositories.
func (s *Session) Repositories() []*VirtualRepository { return s.repos }

// lookup finds a virtual package by name across registered repositories.
func (s *Session) lookup(name string) (*VirtualPackage, bool) {
	for _, r := range s.repos {
		if vp, ok := r.Lookup(name); ok {
			return vp, true
		}
	}
	return nil, false
}

// members returns the root contribution followed by origins, each allowed
// to contribute development requirements when the session is in dev mode.
func (s *Session) members(origins []*manifest.Package) []Member {
	out := make([]Member, 0, len(origins)+1)
	out = append(out, s.rootMember)
	for _, o := range origins {
		out = append(out, MemberOf(o, s.dev))
	}
	return out
}

// merge builds the prod view and, in dev mode, the dev view.
func (s *Session) merge(origins []*manifest.Package) (prod, dev *RequirementSet) {
	members := s.members(origins)
	exclude := ExcludeSet(s.root)
	prod = Merge(members, exclude, ModeProd)
	if s.dev {
		dev = Merge(members, exclude, ModeDev)
	}
	return prod, dev
}
