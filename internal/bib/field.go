// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bib is the record-encoding engine: it turns one normalized
// bibliographic item into one serialized BibTeX/BibLaTeX record. Field
// values flow through a closed set of encoders, user override directives
// are merged with the declarative field map, and the assembled record is
// emitted in a byte-stable wire format.
package bib

import (
	"strings"

	"github.com/pdiddy/bibexport/internal/dates"
	"github.com/pdiddy/bibexport/pkg/types"
)

// EncoderKind selects which encoder resolves a field's value. The set is
// closed: every switch over it is exhaustive and a new kind is a
// compile-time visible addition.
type EncoderKind int

const (
	// EncodeLatex is the default text encoder.
	EncodeLatex EncoderKind = iota

	// EncodeRaw emits the value unchanged.
	EncodeRaw

	// EncodeDate builds an ISO-like date string.
	EncodeDate

	// EncodeURL encodes verbatim and optionally wraps in \url{}.
	EncodeURL

	// EncodeVerbatim escapes only structural characters.
	EncodeVerbatim

	// EncodeCreators renders a creator list joined by " and ".
	EncodeCreators

	// EncodeTags renders a comma-joined keyword list.
	EncodeTags

	// EncodeAttachments renders a semicolon-joined file list.
	EncodeAttachments
)

// kindNames maps configuration strings to encoder kinds.
var kindNames = map[string]EncoderKind{
	"latex":       EncodeLatex,
	"text":        EncodeLatex,
	"raw":         EncodeRaw,
	"date":        EncodeDate,
	"url":         EncodeURL,
	"verbatim":    EncodeVerbatim,
	"creators":    EncodeCreators,
	"tags":        EncodeTags,
	"attachments": EncodeAttachments,
}

// KindFromName resolves a configuration string to an encoder kind.
// Unknown names fall back to the latex encoder.
func KindFromName(name string) EncoderKind {
	if k, ok := kindNames[strings.ToLower(name)]; ok {
		return k
	}
	return EncodeLatex
}

// Value is the closed variant of payloads a field can carry.
type Value interface{ isValue() }

// Number is an integer payload, emitted bare.
type Number int

// Text is a plain text payload. KeepBraces marks text that must keep an
// extra outer brace pair through the latex encoder.
type Text struct {
	S          string
	KeepBraces bool
}

// TextList is an ordered list of text payloads, encoded element-wise.
type TextList struct {
	Items      []string
	KeepBraces bool
}

// DateValue is a pre-structured date, bypassing the parsing service.
type DateValue struct {
	Date dates.Date
}

// Creators is an ordered creator list payload.
type Creators []types.Creator

// Tags is an ordered tag list payload.
type Tags []string

// Attachments is an ordered attachment list payload.
type Attachments []types.Attachment

func (Number) isValue()      {}
func (Text) isValue()        {}
func (TextList) isValue()    {}
func (DateValue) isValue()   {}
func (Creators) isValue()    {}
func (Tags) isValue()        {}
func (Attachments) isValue() {}

// Field is one candidate output entry of a record.
type Field struct {
	// Name is the output field name, unique within a record
	// (case-insensitive).
	Name string

	// Value is the untransformed payload. A nil Value with no preset
	// resolved text is never stored.
	Value Value

	// Encoder selects how Value is resolved.
	Encoder EncoderKind

	// Separator joins list elements in the latex encoder (default "").
	Separator string

	// AllowDuplicates permits another field of the same name.
	AllowDuplicates bool

	// ReplaceExisting removes any same-named field before insertion.
	ReplaceExisting bool

	// BareIfNoWhitespace stores the value without braces when the source
	// contains no whitespace.
	BareIfNoWhitespace bool

	// PreserveCaps marks the field eligible for capitalization
	// protection.
	PreserveCaps bool

	resolved    string
	resolvedSet bool
}

// SetResolved presets the final text, bypassing encoding and emptiness
// checks. Once set the text is final for this field instance.
func (f *Field) SetResolved(text string) {
	f.resolved = text
	f.resolvedSet = true
}

// Resolved returns the final text produced for this field.
func (f *Field) Resolved() string {
	return f.resolved
}

// empty reports whether the payload carries nothing usable. Numeric zero
// is not empty.
func (f *Field) empty() bool {
	switch v := f.Value.(type) {
	case nil:
		return true
	case Number:
		return false
	case Text:
		return strings.TrimSpace(v.S) == ""
	case TextList:
		return len(v.Items) == 0
	case DateValue:
		return v.Date.IsZero()
	case Creators:
		return len(v) == 0
	case Tags:
		return len(v) == 0
	case Attachments:
		return len(v) == 0
	default:
		return true
	}
}

// sourceText returns the raw text behind a text-like payload, used for
// whitespace and variable checks.
func (f *Field) sourceText() (string, bool) {
	if t, ok := f.Value.(Text); ok {
		return t.S, true
	}
	return "", false
}
