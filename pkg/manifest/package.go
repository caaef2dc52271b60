// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"
	"slices"

	"github.com/mailru/easyjson"
)

const (
	// DefaultVersion is assigned to manifests that declare no version, so
	// downstream code never handles an absent version.
	DefaultVersion = "1.0.0"

	// DescRequires describes a runtime requirement link.
	DescRequires LinkDescription = "requires"
	// DescDevRequires describes a development requirement link.
	DescDevRequires LinkDescription = "requires (for development)"
	// DescReplaces describes a replace link.
	DescReplaces LinkDescription = "replaces"
)

type (
	// LinkDescription names the relation a Link expresses.
	LinkDescription string

	// Link is one dependency edge: Source depends on Target under Constraint.
	Link struct {
		Source      string
		Target      string
		Constraint  Constraint
		Description LinkDescription
	}

	// Links is an ordered list of dependency edges. Order is the declaration
	// order of the manifest, which merge results depend on.
	Links []Link

	// Key identifies a package record by name and version.
	Key struct {
		Name    string
		Version string
	}

	// Dist describes where an installable copy of a package lives.
	Dist struct {
		Type      string
		URL       string
		Reference string
	}

	// Package is the canonical record of one manifest.
	Package struct {
		// Name is the package name as declared (e.g., "vendor/lib").
		Name string
		// Version is the declared version, or DefaultVersion.
		Version string
		// Type is the package type (e.g., "library"); empty when undeclared.
		Type string
		// Requires are the runtime requirements in declaration order.
		Requires Links
		// DevRequires are the development requirements in declaration order.
		DevRequires Links
		// Replaces lists the names this package satisfies by itself.
		Replaces []string
		// Extra holds the raw JSON of every key of the "extra" object.
		Extra map[string]easyjson.RawMessage
		// Dist is the distribution descriptor; zero for plain manifests.
		Dist Dist
		// Raw is the exact manifest content the record was decoded from.
		Raw []byte
	}
)

// String returns the string representation of the LinkDescription.
func (d LinkDescription) String() string { return string(d) }

// String renders the link as "source requires target (constraint)".
func (l Link) String() string {
	return fmt.Sprintf("%s %s %s (%s)", l.Source, l.Description, l.Target, l.Constraint)
}

// Get returns the first link targeting name.
func (ls Links) Get(name string) (Link, bool) {
	for _, l := range ls {
		if l.Target == name {
			return l, true
		}
	}
	return Link{}, false
}

// Targets returns the link targets in order.
func (ls Links) Targets() []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Target)
	}
	return out
}

// String returns "name@version".
func (k Key) String() string { return k.Name + "@" + k.Version }

// Key returns the (name, version) identity of the package.
func (p *Package) Key() Key {
	return Key{Name: p.Name, Version: p.Version}
}

// String returns "name@version".
func (p *Package) String() string { return p.Key().String() }

// ReplaceSet returns the replaced names as a lookup set.
func (p *Package) ReplaceSet() map[string]bool {
	set := make(map[string]bool, len(p.Replaces))
	for _, name := range p.Replaces {
		set[name] = true
	}
	return set
}

// HasExtra reports whether the package declares the given extra key.
func (p *Package) HasExtra(key string) bool {
	_, ok := p.Extra[key]
	return ok
}

// HasMonorepoConfig reports whether the package carries a "modera-monorepo"
// extra block.
func (p *Package) HasMonorepoConfig() bool {
	return p != nil && p.HasExtra(ConfigKey)
}

// Clone returns a deep copy that can be mutated without affecting p.
func (p *Package) Clone() *Package {
	if p == nil {
		return nil
	}
	c := *p
	c.Requires = slices.Clone(p.Requires)
	c.DevRequires = slices.Clone(p.DevRequires)
	c.Replaces = slices.Clone(p.Replaces)
	c.Raw = slices.Clone(p.Raw)
	if p.Extra != nil {
		c.Extra = make(map[string]easyjson.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = slices.Clone(v)
		}
	}
	return &c
}

// Retarget returns a copy of ls whose links name source as their origin.
func (ls Links) Retarget(source string) Links {
	out := make(Links, len(ls))
	for i, l := range ls {
		l.Source = source
		out[i] = l
	}
	return out
}
