// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"maps"

	"github.com/invowk/monorepo/pkg/manifest"
)

// Mode selects which requirement view a merge reads.
type Mode int

const (
	// ModeProd merges runtime requirements of every member.
	ModeProd Mode = iota
	// ModeDev merges development requirements of dev-flagged members.
	ModeDev
)

type (
	// Member is one contributor to a merge.
	Member struct {
		// Name is the contributing package name.
		Name string
		// Requires are the runtime requirements, in declaration order.
		Requires manifest.Links
		// DevRequires are the development requirements, in declaration order.
		DevRequires manifest.Links
		// Dev allows DevRequires to contribute in ModeDev.
		Dev bool
		// Root marks the root project's own contribution. Its edges are
		// already part of the host request and are never injected.
		Root bool
	}

	// Edge is one requirement that entered a RequirementSet.
	Edge struct {
		Member string
		Root   bool
		Link   manifest.Link
	}

	// RequirementSet is an ordered mapping of package name to the union of
	// every constraint contributed for it. It also records each contributing
	// edge in merge order.
	RequirementSet struct {
		mode        Mode
		order       []string
		constraints map[string]manifest.Constraint
		edges       []Edge
	}
)

// String returns "prod" or "dev".
func (m Mode) String() string {
	if m == ModeDev {
		return "dev"
	}
	return "prod"
}

// MemberOf builds a Member from a loaded package.
func MemberOf(p *manifest.Package, dev bool) Member {
	return Member{Name: p.Name, Requires: p.Requires, DevRequires: p.DevRequires, Dev: dev}
}

// RootMember builds the root contribution. The configured baseline wins
// over the root's declared requirements when present.
func RootMember(root *manifest.Package, cfg *manifest.Config, dev bool) Member {
	m := Member{Name: root.Name, Requires: root.Requires, DevRequires: root.DevRequires, Dev: dev, Root: true}
	if cfg != nil && len(cfg.Require) > 0 {
		m.Requires = cfg.Require
	}
	if cfg != nil && len(cfg.RequireDev) > 0 {
		m.DevRequires = cfg.RequireDev
	}
	return m
}

// NewRequirementSet returns an empty set for mode.
func NewRequirementSet(mode Mode) *RequirementSet {
	return &RequirementSet{mode: mode, constraints: make(map[string]manifest.Constraint)}
}

// Merge folds members, in order, into a new set for mode. Names in exclude
// never enter the set.
func Merge(members []Member, exclude map[string]bool, mode Mode) *RequirementSet {
	s := NewRequirementSet(mode)
	for _, m := range members {
		s.Add(m, exclude)
	}
	return s
}

// Add folds one member into the set. A name already present gets the
// textual union of its constraint and the new one; a new name is appended.
func (s *RequirementSet) Add(m Member, exclude map[string]bool) {
	links := m.Requires
	if s.mode == ModeDev {
		if !m.Dev {
			return
		}
		links = m.DevRequires
	}

	for _, l := range links {
		if exclude[l.Target] {
			continue
		}
		if l.Source == "" {
			l.Source = m.Name
		}
		if c, ok := s.constraints[l.Target]; ok {
			s.constraints[l.Target] = c.Union(l.Constraint)
		} else {
			s.order = append(s.order, l.Target)
			s.constraints[l.Target] = l.Constraint
		}
		s.edges = append(s.edges, Edge{Member: m.Name, Root: m.Root, Link: l})
	}
}

// Mode returns the view the set was built for.
func (s *RequirementSet) Mode() Mode { return s.mode }

// Len returns the number of distinct names.
func (s *RequirementSet) Len() int { return len(s.order) }

// Names returns the names in first-seen order.
func (s *RequirementSet) Names() []string { return append([]string(nil), s.order...) }

// Constraint returns the merged constraint for name.
func (s *RequirementSet) Constraint(name string) (manifest.Constraint, bool) {
	c, ok := s.constraints[name]
	return c, ok
}

// Edges returns the contributing edges in merge order.
func (s *RequirementSet) Edges() []Edge { return append([]Edge(nil), s.edges...) }

// Links renders the set as links from source, in first-seen order.
func (s *RequirementSet) Links(source string) manifest.Links {
	desc := manifest.DescRequires
	if s.mode == ModeDev {
		desc = manifest.DescDevRequires
	}
	out := make(manifest.Links, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, manifest.Link{
			Source:      source,
			Target:      name,
			Constraint:  s.constraints[name],
			Description: desc,
		})
	}
	return out
}

// ExcludeSet returns the union of the replace sets of pkgs.
func ExcludeSet(pkgs ...*manifest.Package) map[string]bool {
	out := make(map[string]bool)
	for _, p := range pkgs {
		if p == nil {
			continue
		}
		maps.Copy(out, p.ReplaceSet())
	}
	return out
}
