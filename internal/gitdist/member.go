// SPDX-License-Identifier: MPL-2.0

package gitdist

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/invowk/monorepo/pkg/manifest"
	"github.com/invowk/monorepo/pkg/monorepo"
)

// ManifestName is the manifest file read at the root of a fetched source tree.
const ManifestName = "composer.json"

// MemberSpec names a registry package by its source location, written on the
// command line as "name=url@ref".
type MemberSpec struct {
	Name string
	URL  string
	Ref  string
}

// ParseMemberSpec parses "name=url@ref". The ref is optional; the last '@'
// after the final path separator splits it so "git@host:repo" URLs work.
func ParseMemberSpec(s string) (MemberSpec, error) {
	name, rest, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	rest = strings.TrimSpace(rest)
	if !ok || name == "" || rest == "" {
		return MemberSpec{}, fmt.Errorf("invalid member %q (expected name=url@ref)", s)
	}
	spec := MemberSpec{Name: strings.ToLower(name), URL: rest}
	tail := strings.LastIndexAny(rest, "/:")
	if at := strings.LastIndex(rest, "@"); at > tail && at > 0 {
		spec.URL, spec.Ref = rest[:at], rest[at+1:]
	}
	if spec.URL == "" {
		return MemberSpec{}, fmt.Errorf("invalid member %q (empty url)", s)
	}
	return spec, nil
}

// String renders the spec in its command-line form.
func (s MemberSpec) String() string {
	if s.Ref == "" {
		return s.Name + "=" + s.URL
	}
	return s.Name + "=" + s.URL + "@" + s.Ref
}

// Describe fetches the spec's sources and returns the registry candidate
// described by the manifest at their root. The candidate's dist points back
// at the spec so a later Download fetches the same tree.
func (f *Fetcher) Describe(ctx context.Context, spec MemberSpec) (monorepo.Candidate, error) {
	src, err := f.Fetch(ctx, spec.URL, spec.Ref)
	if err != nil {
		return monorepo.Candidate{}, err
	}
	pkg, err := manifest.Load(filepath.Join(src, ManifestName))
	if err != nil {
		return monorepo.Candidate{}, err
	}
	if pkg.Name != spec.Name {
		return monorepo.Candidate{}, fmt.Errorf("member %s: manifest declares name %q", spec, pkg.Name)
	}
	if spec.Ref != "" && pkg.Version == manifest.DefaultVersion {
		pkg.Version = strings.TrimPrefix(spec.Ref, "v")
	}
	pkg.Dist = manifest.Dist{Type: DistGit, URL: spec.URL, Reference: spec.Ref}
	return monorepo.Candidate{Package: pkg, Registry: true}, nil
}
