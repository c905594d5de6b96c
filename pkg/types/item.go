// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RawTag marks an item whose field values are already valid LaTeX and must
// pass through the exporter without escaping. The tag itself is never
// emitted.
const RawTag = "#LaTeX"

// Creator is one author, editor, or other contributor on an item.
type Creator struct {
	// Family is the family (last) name. A value wrapped in double quotes
	// is treated as an unbreakable literal.
	Family string `json:"family,omitempty" yaml:"family,omitempty"`

	// Given is the given (first) name, possibly with initials.
	Given string `json:"given,omitempty" yaml:"given,omitempty"`

	// Name is a single literal name for organizations and corporate
	// authors ("Mesh Intelligence Inc."). When set, Family and Given are
	// ignored.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Role is the creator role: author, editor, translator, and so on.
	Role string `json:"role,omitempty" yaml:"role,omitempty"`

	// Suffix is a generational suffix (Jr., III).
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// Attachment is one file attached to an item.
type Attachment struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	MimeType string `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
}

// OverrideFormat says how an override directive's payload is interpreted.
type OverrideFormat string

const (
	// FormatPlain payloads go through the normal encoder for the target
	// field.
	FormatPlain OverrideFormat = "plain"

	// FormatRaw payloads are already escaped and are emitted unchanged.
	FormatRaw OverrideFormat = "raw"

	// FormatKeyValue payloads are pre-assembled field text, typically
	// option lists ("useprefix=true"), stored without encoding or
	// bracing.
	FormatKeyValue OverrideFormat = "key-value"
)

// OverrideVocabulary says which field vocabulary a directive name belongs to.
type OverrideVocabulary string

const (
	// VocabBibTeX directives name the output field directly.
	VocabBibTeX OverrideVocabulary = "bibtex"

	// VocabCSL directives use Citation Style Language variable names and
	// are remapped to the dialect's native field name before insertion.
	VocabCSL OverrideVocabulary = "csl"
)

// OverrideDirective is one user-supplied field instruction carried on an
// item. A directive sets, renames, retypes, or deletes a field in the
// produced record. Names may be compound ("article.journal"), scoping the
// directive to records of that reference type.
type OverrideDirective struct {
	Name       string             `json:"name" yaml:"name"`
	Value      string             `json:"value" yaml:"value"`
	Format     OverrideFormat     `json:"format,omitempty" yaml:"format,omitempty"`
	Vocabulary OverrideVocabulary `json:"vocabulary,omitempty" yaml:"vocabulary,omitempty"`
}

// Item is one normalized bibliographic item, the input to the exporter.
// The exporter borrows the item and never mutates it.
type Item struct {
	// ID identifies the item for caching and diagnostics.
	ID string `json:"id" yaml:"id"`

	// ItemType is the source item type (journalArticle, book, thesis...),
	// mapped to a reference type through the type map.
	ItemType string `json:"item_type" yaml:"item_type"`

	// Citekey is the record key, assigned externally and consumed as-is.
	// When empty the item ID is used.
	Citekey string `json:"citekey,omitempty" yaml:"citekey,omitempty"`

	// Fields holds scalar item attributes (title, publicationTitle,
	// volume, DOI, url...) keyed by attribute name.
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Date is the publication date as entered, parsed during encoding.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	Creators    []Creator    `json:"creators,omitempty" yaml:"creators,omitempty"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty" yaml:"attachments,omitempty"`

	// Language is the item language as entered ("en", "german").
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	DateAdded    time.Time `json:"date_added,omitempty" yaml:"date_added,omitempty"`
	DateModified time.Time `json:"date_modified,omitempty" yaml:"date_modified,omitempty"`

	// Overrides are user field directives applied after the static field
	// map has populated the record.
	Overrides []OverrideDirective `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Raw reports whether the item carries the raw-LaTeX marker tag.
func (it *Item) Raw() bool {
	for _, t := range it.Tags {
		if t == RawTag {
			return true
		}
	}
	return false
}

// Key returns the citekey, falling back to the item ID.
func (it *Item) Key() string {
	if it.Citekey != "" {
		return it.Citekey
	}
	return it.ID
}
