// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mailru/easyjson/jwriter"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/invowk/monorepo/internal/config"
	"github.com/invowk/monorepo/pkg/monorepo"
)

type (
	// report is the serializable view of a monorepo.Summary. Requirement
	// lists keep merge order.
	report struct {
		Root       string
		Manifest   string
		Dev        bool
		DryRun     bool
		Written    bool
		Injected   int
		Members    []memberReport
		Require    []requirement
		RequireDev []requirement
	}

	memberReport struct {
		Name        string `toml:"name"`
		VirtualName string `toml:"virtual_name"`
		Version     string `toml:"version"`
		Path        string `toml:"path"`
		Reference   string `toml:"reference"`
	}

	requirement struct {
		Name       string
		Constraint string
	}

	// tomlReport is the TOML shape of a report. TOML tables are maps, so
	// requirements come out sorted by name.
	tomlReport struct {
		Root       string            `toml:"root"`
		Manifest   string            `toml:"manifest"`
		Dev        bool              `toml:"dev"`
		DryRun     bool              `toml:"dry_run"`
		Written    bool              `toml:"written"`
		Injected   int               `toml:"injected"`
		Require    map[string]string `toml:"require"`
		RequireDev map[string]string `toml:"require-dev,omitempty"`
		Members    []memberReport    `toml:"members"`
	}
)

func newReport(s *monorepo.Summary) report {
	r := report{
		Root:       s.Root,
		Manifest:   s.ManifestPath,
		Dev:        s.Dev,
		DryRun:     s.DryRun,
		Written:    s.Written,
		Injected:   s.Injected,
		Require:    requirements(s.Require),
		RequireDev: requirements(s.RequireDev),
	}
	for _, m := range s.Members {
		r.Members = append(r.Members, memberReport(m))
	}
	return r
}

func requirements(set *monorepo.RequirementSet) []requirement {
	if set == nil {
		return nil
	}
	out := make([]requirement, 0, set.Len())
	for _, name := range set.Names() {
		c, _ := set.Constraint(name)
		out = append(out, requirement{Name: name, Constraint: c.String()})
	}
	return out
}

// writeSummary renders s to w in the requested format.
func writeSummary(w io.Writer, s *monorepo.Summary, format config.OutputFormat) error {
	r := newReport(s)
	var (
		out []byte
		err error
	)
	switch format {
	case config.FormatJSON:
		out, err = r.json()
	case config.FormatYAML:
		out, err = r.yaml()
	case config.FormatTOML:
		out, err = r.toml()
	default:
		out = []byte(r.text())
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// json writes the report with easyjson's writer so requirement objects keep
// merge order.
func (r report) json() ([]byte, error) {
	w := &jwriter.Writer{}
	w.RawByte('{')
	w.RawString(`"root":`)
	w.String(r.Root)
	w.RawString(`,"manifest":`)
	w.String(r.Manifest)
	w.RawString(`,"dev":`)
	w.Bool(r.Dev)
	w.RawString(`,"dry_run":`)
	w.Bool(r.DryRun)
	w.RawString(`,"written":`)
	w.Bool(r.Written)
	w.RawString(`,"injected":`)
	w.Int(r.Injected)
	w.RawString(`,"members":[`)
	for i, m := range r.Members {
		if i > 0 {
			w.RawByte(',')
		}
		w.RawString(`{"name":`)
		w.String(m.Name)
		w.RawString(`,"virtual_name":`)
		w.String(m.VirtualName)
		w.RawString(`,"version":`)
		w.String(m.Version)
		w.RawString(`,"path":`)
		w.String(m.Path)
		w.RawString(`,"reference":`)
		w.String(m.Reference)
		w.RawByte('}')
	}
	w.RawByte(']')
	w.RawString(`,"require":`)
	jsonRequirements(w, r.Require)
	if r.Dev {
		w.RawString(`,"require-dev":`)
		jsonRequirements(w, r.RequireDev)
	}
	w.RawString("}\n")
	return w.BuildBytes()
}

func jsonRequirements(w *jwriter.Writer, reqs []requirement) {
	w.RawByte('{')
	for i, req := range reqs {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(req.Name)
		w.RawByte(':')
		w.String(req.Constraint)
	}
	w.RawByte('}')
}

// yaml builds a node tree by hand; mapping nodes keep insertion order.
func (r report) yaml() ([]byte, error) {
	members := &yaml.Node{Kind: yaml.SequenceNode}
	for _, m := range r.Members {
		members.Content = append(members.Content, yamlMap(
			"name", yamlStr(m.Name),
			"virtual_name", yamlStr(m.VirtualName),
			"version", yamlStr(m.Version),
			"path", yamlStr(m.Path),
			"reference", yamlStr(m.Reference),
		))
	}
	pairs := []any{
		"root", yamlStr(r.Root),
		"manifest", yamlStr(r.Manifest),
		"dev", yamlScalar("!!bool", strconv.FormatBool(r.Dev)),
		"dry_run", yamlScalar("!!bool", strconv.FormatBool(r.DryRun)),
		"written", yamlScalar("!!bool", strconv.FormatBool(r.Written)),
		"injected", yamlScalar("!!int", strconv.Itoa(r.Injected)),
		"members", members,
		"require", yamlRequirements(r.Require),
	}
	if r.Dev {
		pairs = append(pairs, "require-dev", yamlRequirements(r.RequireDev))
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(yamlMap(pairs...)); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return []byte(sb.String()), nil
}

func yamlStr(s string) *yaml.Node { return yamlScalar("!!str", s) }

func yamlScalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// yamlMap builds a mapping from alternating string keys and *yaml.Node values.
func yamlMap(pairs ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		value, _ := pairs[i+1].(*yaml.Node)
		n.Content = append(n.Content, yamlStr(key), value)
	}
	return n
}

func yamlRequirements(reqs []requirement) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	if len(reqs) == 0 {
		n.Style = yaml.FlowStyle
	}
	for _, req := range reqs {
		n.Content = append(n.Content, yamlStr(req.Name), yamlStr(req.Constraint))
	}
	return n
}

func (r report) toml() ([]byte, error) {
	tr := tomlReport{
		Root:     r.Root,
		Manifest: r.Manifest,
		Dev:      r.Dev,
		DryRun:   r.DryRun,
		Written:  r.Written,
		Injected: r.Injected,
		Require:  requirementMap(r.Require),
		Members:  r.Members,
	}
	if r.Dev {
		tr.RequireDev = requirementMap(r.RequireDev)
	}
	out, err := toml.Marshal(tr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode toml: %w", err)
	}
	return out, nil
}

func requirementMap(reqs []requirement) map[string]string {
	m := make(map[string]string, len(reqs))
	for _, req := range reqs {
		m[req.Name] = req.Constraint
	}
	return m
}

func (r report) text() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(r.Root))
	sb.WriteString(" " + mutedStyle.Render(r.Manifest) + "\n\n")

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Members (%d)", len(r.Members))) + "\n")
	if len(r.Members) == 0 {
		sb.WriteString(sectionStyle.Render(mutedStyle.Render("(none)")) + "\n")
	}
	for _, m := range r.Members {
		line := packageStyle.Render(m.Name) + " " + constraintStyle.Render(m.Version) + "  " + mutedStyle.Render(m.Path)
		sb.WriteString(sectionStyle.Render(line) + "\n")
	}

	sb.WriteString("\n")
	writeTextRequirements(&sb, "Require", r.Require)
	if r.Dev {
		sb.WriteString("\n")
		writeTextRequirements(&sb, "Require-dev", r.RequireDev)
	}

	sb.WriteString("\n")
	status := "unchanged"
	switch {
	case r.DryRun:
		status = warningStyle.Render("dry run, not written")
	case r.Written:
		status = constraintStyle.Render("written")
	}
	fmt.Fprintf(&sb, "%s %d requirement(s) injected, manifest %s\n",
		mutedStyle.Render("Summary:"), r.Injected, status)
	return sb.String()
}

func writeTextRequirements(sb *strings.Builder, title string, reqs []requirement) {
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(reqs))) + "\n")
	width := 0
	for _, req := range reqs {
		width = max(width, len(req.Name))
	}
	for _, req := range reqs {
		pad := strings.Repeat(" ", width-len(req.Name))
		sb.WriteString(sectionStyle.Render(packageStyle.Render(req.Name)+pad+"  "+constraintStyle.Render(req.Constraint)) + "\n")
	}
}

