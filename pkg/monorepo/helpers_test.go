// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/invowk/monorepo/pkg/manifest"
)

type (
	fakeRepositories struct {
		repos []Repository
	}

	fakeRequest struct {
		jobs     []Job
		installs []Job
	}

	fakePool []Candidate

	fakeDownloader struct {
		files map[string]string
		err   error
		calls int
		dirs  []string
	}

	fakeQuieter struct {
		quieted, restored int
	}

	fakeReplayer struct {
		ops []Operation
	}
)

func (f *fakeRepositories) AddRepository(r Repository) { f.repos = append(f.repos, r) }

func (f *fakeRequest) Install(name string, c manifest.Constraint) {
	f.installs = append(f.installs, Job{Name: name, Constraint: c})
	f.jobs = append(f.jobs, Job{Name: name, Constraint: c})
}

func (f *fakeRequest) Jobs() []Job { return f.jobs }

func (f fakePool) Candidates() []Candidate { return f }

func (f *fakeDownloader) Download(_ context.Context, _ *manifest.Package, dir string) error {
	f.calls++
	f.dirs = append(f.dirs, dir)
	if f.err != nil {
		return f.err
	}
	for rel, content := range f.files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeQuieter) Quiet() func() {
	f.quieted++
	return func() { f.restored++ }
}

func (f *fakeReplayer) Replay(_ context.Context, op Operation) error {
	f.ops = append(f.ops, op)
	return nil
}


func loadPackage(t *testing.T, path string) *manifest.Package {
	t.Helper()
	p, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("Load(%s) error = %v", path, err)
	}
	return p
}

func links(source string, pairs ...string) manifest.Links {
	out := make(manifest.Links, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, manifest.Link{
			Source:      source,
			Target:      pairs[i],
			Constraint:  manifest.Constraint(pairs[i+1]),
			Description: manifest.DescRequires,
		})
	}
	return out
}
