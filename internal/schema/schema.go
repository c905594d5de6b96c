// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema loads the declarative field map, type map, and CSL
// variable table the exporter is configured with. The tables ship embedded
// in the binary; a user-supplied YAML file can replace them wholesale.
package schema

import (
	_ "embed"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibexport/pkg/types"
)

//go:embed maps.yaml
var embedded []byte

// FieldTemplate declares how one item attribute becomes a record field.
type FieldTemplate struct {
	// Item is the item attribute the value is read from.
	Item string `yaml:"item"`

	// Name is the output field name.
	Name string `yaml:"name"`

	// Encoder optionally overrides the default latex encoder
	// (verbatim, url, date...).
	Encoder string `yaml:"encoder,omitempty"`

	// Bare emits the value without braces when it contains no whitespace.
	Bare bool `yaml:"bare,omitempty"`

	// Caps marks the field eligible for capitalization preservation.
	Caps bool `yaml:"caps,omitempty"`
}

// CSLVar maps a CSL variable name onto each dialect's native field.
// An empty target means the variable has no home in that dialect.
type CSLVar struct {
	BibTeX   string `yaml:"bibtex"`
	BibLaTeX string `yaml:"biblatex"`

	// Kind is the value kind: empty for plain text, or creator, date,
	// verbatim, url.
	Kind string `yaml:"kind,omitempty"`
}

// Target returns the native field name for a dialect.
func (v CSLVar) Target(d types.Dialect) string {
	if d == types.BibLaTeX {
		return v.BibLaTeX
	}
	return v.BibTeX
}

type dialectTables struct {
	Types  map[string]string `yaml:"types"`
	Fields []FieldTemplate   `yaml:"fields"`
}

// Schema holds all declarative tables for both dialects. It is immutable
// after loading and safe for concurrent readers.
type Schema struct {
	BibTeX   dialectTables     `yaml:"bibtex"`
	BibLaTeX dialectTables     `yaml:"biblatex"`
	CSL      map[string]CSLVar `yaml:"csl"`
}

// Load parses the embedded tables.
func Load() (*Schema, error) {
	return parse(embedded)
}

// LoadFile parses replacement tables from a YAML file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	if len(s.BibTeX.Fields) == 0 || len(s.BibLaTeX.Fields) == 0 {
		return nil, fmt.Errorf("schema missing field maps")
	}
	return &s, nil
}

func (s *Schema) tables(d types.Dialect) dialectTables {
	if d == types.BibLaTeX {
		return s.BibLaTeX
	}
	return s.BibTeX
}

// TypeFor maps an item type to the dialect's reference type, falling back
// to the table's default entry and finally to "misc".
func (s *Schema) TypeFor(d types.Dialect, itemType string) string {
	t := s.tables(d)
	if ref, ok := t.Types[itemType]; ok {
		return ref
	}
	if ref, ok := t.Types["default"]; ok {
		return ref
	}
	return "misc"
}

// Fields returns the ordered field map for a dialect. Callers must not
// mutate the returned slice.
func (s *Schema) Fields(d types.Dialect) []FieldTemplate {
	return s.tables(d).Fields
}

// CSLVariable looks up a CSL variable by name.
func (s *Schema) CSLVariable(name string) (CSLVar, bool) {
	v, ok := s.CSL[name]
	return v, ok
}
