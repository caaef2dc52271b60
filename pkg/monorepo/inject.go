// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"github.com/charmbracelet/log"
)

// Inject emits install(name, constraint) into req for every member edge of
// sets, in merge order. Root edges are skipped, and a (name, constraint)
// pair is emitted once per call. It returns the number of instructions.
func Inject(req Request, logger *log.Logger, sets ...*RequirementSet) int {
	logger = orDiscard(logger)
	seen := make(map[Job]bool)
	n := 0
	for _, s := range sets {
		if s == nil {
			continue
		}
		msg := "Adding dependency"
		if s.Mode() == ModeDev {
			msg = "Adding dev dependency"
		}
		for _, e := range s.Edges() {
			if e.Root {
				continue
			}
			job := Job{Name: e.Link.Target, Constraint: e.Link.Constraint}
			if seen[job] {
				continue
			}
			seen[job] = true
			logger.Debug(msg, "link", e.Link.String())
			req.Install(job.Name, job.Constraint)
			n++
		}
	}
	return n
}
