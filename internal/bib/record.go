// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/bibexport/pkg/types"
)

// DuplicateFieldError signals a field map or override configuration bug:
// two fields of the same name without explicit duplicate allowance. It
// aborts the record, never the corpus export.
type DuplicateFieldError struct {
	Field   string
	Citekey string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field %q on record %q", e.Field, e.Citekey)
}

// CopyRequest asks the caller to copy an attachment file; the engine only
// records the request, it never touches the filesystem.
type CopyRequest struct {
	Source string
	Dest   string
}

// Record is one bibliography entry under construction. Its field set is
// populated from the static field map, mutated by override directives,
// and serialized exactly once.
type Record struct {
	// Type is the reference type, mutable until assembly: an override
	// directive may retarget it.
	Type string

	// Citekey is the record key, consumed as-is.
	Citekey string

	engine *Engine
	item   *types.Item
	raw    bool

	fields []*Field
	index  map[string]*Field

	warnings []string
	copies   []CopyRequest
}

func newRecord(e *Engine, item *types.Item) *Record {
	return &Record{
		Type:    e.schema.TypeFor(e.cfg.Dialect, item.ItemType),
		Citekey: item.Key(),
		engine:  e,
		item:    item,
		raw:     item.Raw(),
		index:   make(map[string]*Field),
	}
}

// Item returns the originating item, read-only.
func (r *Record) Item() *types.Item {
	return r.item
}

// Warnings returns non-fatal diagnostics accumulated so far.
func (r *Record) Warnings() []string {
	return r.warnings
}

func (r *Record) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// variableRe matches identifier-shaped values that may reference a
// bibliography @string variable.
var variableRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Add inserts a field after resolving its text. Empty payloads are a
// silent no-op unless the resolved text was preset, and never collide:
// the duplicate check runs only for fields that actually produce text.
// A name collision without AllowDuplicates is a DuplicateFieldError.
// ReplaceExisting removes any same-named field first.
func (r *Record) Add(f *Field) error {
	if f.ReplaceExisting {
		r.Remove(f.Name)
	}

	if !f.resolvedSet {
		if f.empty() {
			return nil
		}
		if !r.resolve(f) {
			return nil
		}
	}

	key := strings.ToLower(f.Name)
	if _, exists := r.index[key]; exists && !f.AllowDuplicates {
		return &DuplicateFieldError{Field: f.Name, Citekey: r.Citekey}
	}

	if r.engine.cfg.Normalize {
		f.resolved = norm.NFC.String(f.resolved)
	}

	r.fields = append(r.fields, f)
	r.index[key] = f
	return nil
}

// resolve computes the field's final text. It reports false when the
// encoder produced nothing and the add must be abandoned.
func (r *Record) resolve(f *Field) bool {
	cfg := r.engine.cfg

	if kind, ok := cfg.FieldEncoding[strings.ToLower(f.Name)]; ok {
		f.Encoder = KindFromName(kind)
	}

	// Numbers and @string variable references stay bare.
	if n, ok := f.Value.(Number); ok {
		f.SetResolved(strconv.Itoa(int(n)))
		return true
	}
	if src, ok := f.sourceText(); ok && cfg.PreserveBibTeXVariables &&
		f.Encoder == EncodeLatex && variableRe.MatchString(src) {
		f.SetResolved(src)
		return true
	}

	text, ok, final := r.encode(f)
	if !ok || text == "" {
		return false
	}

	if src, hasSrc := f.sourceText(); hasSrc && f.BareIfNoWhitespace &&
		!strings.ContainsAny(src, " \t\r\n") {
		f.SetResolved(text)
		return true
	}

	if !final && f.PreserveCaps && !r.raw {
		text = protectCaps(text, cfg.PreserveCaps)
	}
	f.SetResolved("{" + text + "}")
	return true
}

// Remove deletes a field by name from both the lookup and the ordered
// sequence, returning the removed field or nil.
func (r *Record) Remove(name string) *Field {
	key := strings.ToLower(name)
	f, ok := r.index[key]
	if !ok {
		return nil
	}
	delete(r.index, key)
	for i, g := range r.fields {
		if g == f {
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			break
		}
	}
	return f
}

// Has reports whether a field of that name is present.
func (r *Record) Has(name string) bool {
	_, ok := r.index[strings.ToLower(name)]
	return ok
}

// assemble applies the global post-processing steps that run after all
// fields are resolved.
func (r *Record) assemble() {
	switch r.engine.cfg.DOIandURL {
	case types.PreferDOI:
		if r.Has("doi") && r.Has("url") {
			r.Remove("url")
		}
	case types.PreferURL:
		if r.Has("doi") && r.Has("url") {
			r.Remove("doi")
		}
	}

	// A record is never fully empty.
	if len(r.fields) == 0 {
		f := &Field{Name: "type", Value: Text{S: r.Type}}
		_ = r.Add(f)
	}
}

// serialize renders the record in the wire format:
//
//	@type{key,
//	  name = value,
//	  ...
//	}
//
// followed by exactly one blank line. In testing mode fields sort by their
// rendered "name = value" text for reproducible bytes.
func (r *Record) serialize() string {
	lines := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		lines = append(lines, "  "+f.Name+" = "+f.resolved)
	}
	if r.engine.cfg.Testing {
		sort.Strings(lines)
	}

	var b strings.Builder
	b.WriteString("@")
	b.WriteString(r.Type)
	b.WriteString("{")
	b.WriteString(r.Citekey)
	b.WriteString(",\n")
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n}\n\n")
	return b.String()
}
