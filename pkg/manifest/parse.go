// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jlexer"
)

const rootField = "(root)"

// decoder walks manifest JSON with a jlexer.Lexer. Shape violations are
// recorded on the lexer as *TypeMismatchError, which stops further decoding;
// anything else the lexer reports is a syntax error.
type decoder struct {
	l    *jlexer.Lexer
	path string
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return parse(data, path)
}

// Parse decodes manifest bytes into a Package. A missing version defaults to
// DefaultVersion. Malformed JSON yields a *ParseError and JSON of the wrong
// shape yields a *TypeMismatchError.
func Parse(data []byte) (*Package, error) {
	return parse(data, "")
}

func parse(data []byte, path string) (*Package, error) {
	l := &jlexer.Lexer{Data: data}
	d := &decoder{l: l, path: path}
	p := &Package{}

	if l.IsNull() {
		return nil, &TypeMismatchError{Path: path, Field: rootField, Expected: "object"}
	}
	d.object(rootField, func(key string) {
		switch key {
		case "name":
			p.Name = strings.ToLower(d.str("name", true))
		case "version":
			p.Version = d.str("version", false)
		case "type":
			p.Type = d.str("type", false)
		case "require":
			p.Requires = d.links("require", DescRequires)
		case "require-dev":
			p.DevRequires = d.links("require-dev", DescDevRequires)
		case "replace":
			p.Replaces = d.links("replace", DescReplaces).Targets()
		case "extra":
			p.Extra = d.extra()
		case "dist":
			p.Dist = d.dist()
		default:
			l.SkipRecursive()
		}
	})
	l.Consumed()

	if err := l.Error(); err != nil {
		return nil, classify(err, path)
	}
	if p.Name == "" {
		return nil, &TypeMismatchError{Path: path, Field: "name", Expected: "non-empty string"}
	}
	if p.Version == "" {
		p.Version = DefaultVersion
	}
	p.Requires = p.Requires.Retarget(p.Name)
	p.DevRequires = p.DevRequires.Retarget(p.Name)
	p.Raw = slices.Clone(data)
	return p, nil
}

// classify turns a lexer error into the package's error taxonomy.
func classify(err error, path string) error {
	var mismatch *TypeMismatchError
	if errors.As(err, &mismatch) {
		return mismatch
	}
	offset := -1
	var lexErr *jlexer.LexerError
	if errors.As(err, &lexErr) {
		offset = lexErr.Offset
	}
	return &ParseError{Path: path, Offset: offset, Cause: err}
}

func (d *decoder) mismatch(field, expected string) {
	d.l.AddError(&TypeMismatchError{Path: d.path, Field: field, Expected: expected})
}

// object iterates the members of a JSON object, calling member with each
// key after the colon has been consumed. member must consume the value.
// A null value is treated as an empty object.
func (d *decoder) object(field string, member func(key string)) {
	if d.l.IsNull() {
		d.l.Skip()
		return
	}
	if !d.l.IsDelim('{') {
		if d.l.Ok() {
			d.mismatch(field, "object")
		}
		return
	}
	d.l.Delim('{')
	for !d.l.IsDelim('}') {
		key := strings.Clone(d.l.UnsafeFieldName(false))
		d.l.WantColon()
		member(key)
		d.l.WantComma()
	}
	d.l.Delim('}')
}

// str consumes one value that must be a string. Optional fields accept null.
func (d *decoder) str(field string, required bool) string {
	v := d.l.Interface()
	if !d.l.Ok() {
		return ""
	}
	if v == nil && !required {
		return ""
	}
	s, ok := v.(string)
	if !ok || (required && strings.TrimSpace(s) == "") {
		d.mismatch(field, "non-empty string")
		return ""
	}
	return s
}

// links decodes a {name: constraint} object in declaration order. Names are
// lower-cased; a repeated name keeps its first position and its last value.
func (d *decoder) links(field string, desc LinkDescription) Links {
	var out Links
	d.object(field, func(key string) {
		target := strings.ToLower(key)
		c := Constraint(d.str(field+"."+key, true))
		for i := range out {
			if out[i].Target == target {
				out[i].Constraint = c
				return
			}
		}
		out = append(out, Link{Target: target, Constraint: c, Description: desc})
	})
	return out
}

func (d *decoder) extra() map[string]easyjson.RawMessage {
	extra := make(map[string]easyjson.RawMessage)
	d.object("extra", func(key string) {
		extra[key] = slices.Clone(d.l.Raw())
	})
	return extra
}

func (d *decoder) dist() Dist {
	var dist Dist
	d.object("dist", func(key string) {
		switch key {
		case "type":
			dist.Type = d.str("dist.type", false)
		case "url":
			dist.URL = d.str("dist.url", false)
		case "reference":
			dist.Reference = d.str("dist.reference", false)
		default:
			d.l.SkipRecursive()
		}
	})
	return dist
}

// strings decodes a JSON array of strings. null yields nil.
func (d *decoder) strings(field string) []string {
	if d.l.IsNull() {
		d.l.Skip()
		return nil
	}
	if !d.l.IsDelim('[') {
		if d.l.Ok() {
			d.mismatch(field, "array")
		}
		return nil
	}
	var out []string
	d.l.Delim('[')
	for !d.l.IsDelim(']') {
		out = append(out, d.str(field, true))
		d.l.WantComma()
	}
	d.l.Delim(']')
	return out
}
