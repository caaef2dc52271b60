// SPDX-License-Identifier: MPL-2.0

package monorepo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/invowk/monorepo/pkg/manifest"
)

const (
	requireKey    = "require"
	requireDevKey = "require-dev"

	defaultIndent = "    "
)

// WriteManifest patches the "require" key of the manifest at path with prod
// and, when dev is non-nil, the "require-dev" key with dev. It reports
// whether the file changed. Unchanged content is not rewritten.
func WriteManifest(path string, prod, dev *RequirementSet) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	patched, err := PatchManifest(data, prod, dev)
	if err != nil {
		var parseErr *manifest.ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		return false, err
	}
	if bytes.Equal(patched, data) {
		return false, nil
	}

	perm := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err := atomicWriteFile(path, patched, perm); err != nil {
		return false, err
	}
	return true, nil
}

// PatchManifest returns data with the values of the top-level "require"
// (from prod) and "require-dev" (from dev) keys replaced. A nil set leaves
// its key untouched. A missing key is inserted before the closing brace of
// the root object unless its set is empty. Every other byte is preserved.
func PatchManifest(data []byte, prod, dev *RequirementSet) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, &manifest.ParseError{Offset: -1, Cause: errors.New("invalid JSON")}
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, &manifest.TypeMismatchError{Field: "(root)", Expected: "object"}
	}

	l := detectLayout(data)
	out := data
	for _, section := range []struct {
		key string
		set *RequirementSet
	}{
		{requireKey, prod},
		{requireDevKey, dev},
	} {
		if section.set == nil {
			continue
		}
		raw, err := renderObject(section.set, l)
		if err != nil {
			return nil, err
		}
		if gjson.GetBytes(out, section.key).Exists() {
			out, err = sjson.SetRawBytes(out, section.key, raw)
			if err != nil {
				return nil, fmt.Errorf("failed to patch %q: %w", section.key, err)
			}
			continue
		}
		if section.set.Len() == 0 {
			continue
		}
		out = insertKey(out, section.key, raw, l)
	}
	return out, nil
}

// layout is the formatting style of a manifest.
type layout struct {
	// indent is one indentation level; empty when compact.
	indent string
	// newline is "\n" or "\r\n".
	newline string
	// compact is set for documents written on a single line.
	compact bool
}

// detectLayout reads the line ending and indentation of data. A document
// without line breaks is compact; an indented document with no indented
// line gets four spaces.
func detectLayout(data []byte) layout {
	l := layout{indent: defaultIndent, newline: "\n"}
	if bytes.Contains(data, []byte("\r\n")) {
		l.newline = "\r\n"
	}
	if !bytes.ContainsRune(bytes.TrimSpace(data), '\n') {
		return layout{newline: l.newline, compact: true}
	}
	for line := range bytes.SplitSeq(data, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		trimmed := bytes.TrimLeft(line, " \t")
		if len(trimmed) == len(line) || len(trimmed) == 0 {
			continue
		}
		l.indent = string(line[:len(line)-len(trimmed)])
		break
	}
	return l
}

// renderObject renders the set as a JSON object whose entries sit one level
// deeper than a top-level key, or on one line when l is compact.
func renderObject(s *RequirementSet, l layout) ([]byte, error) {
	if s.Len() == 0 {
		return []byte("{}"), nil
	}
	w := jwriter.Writer{NoEscapeHTML: true}
	w.RawByte('{')
	for i, name := range s.Names() {
		if i > 0 {
			w.RawByte(',')
		}
		c, _ := s.Constraint(name)
		if l.compact {
			w.String(name)
			w.RawByte(':')
			w.String(c.String())
			continue
		}
		w.RawString(l.newline + l.indent + l.indent)
		w.String(name)
		w.RawString(": ")
		w.String(c.String())
	}
	if !l.compact {
		w.RawString(l.newline + l.indent)
	}
	w.RawByte('}')
	return w.BuildBytes()
}

// insertKey adds "key": raw as the last member of the root object.
func insertKey(data []byte, key string, raw []byte, l layout) []byte {
	closing := bytes.LastIndexByte(data, '}')
	prev := closing - 1
	for prev >= 0 && isSpace(data[prev]) {
		prev--
	}

	w := jwriter.Writer{NoEscapeHTML: true}
	w.String(key)
	if l.compact {
		w.RawByte(':')
	} else {
		w.RawString(": ")
	}
	w.Raw(raw, nil)
	entry := w.Buffer.BuildBytes()

	var out bytes.Buffer
	out.Grow(len(data) + len(entry) + len(l.indent) + 2*len(l.newline) + 1)
	empty := prev >= 0 && data[prev] == '{'
	out.Write(data[:prev+1])
	switch {
	case l.compact && empty:
		out.Write(entry)
		out.Write(data[closing:])
	case l.compact:
		out.WriteByte(',')
		out.Write(entry)
		out.Write(data[prev+1:])
	case empty:
		out.WriteString(l.newline + l.indent)
		out.Write(entry)
		out.WriteString(l.newline)
		out.Write(data[closing:])
	default:
		out.WriteString("," + l.newline + l.indent)
		out.Write(entry)
		out.Write(data[prev+1:])
	}
	return out.Bytes()
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// atomicWriteFile writes data to path through a temporary sibling and a
// rename, so readers never observe a partial manifest.
func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
