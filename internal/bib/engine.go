// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pdiddy/bibexport/internal/dates"
	"github.com/pdiddy/bibexport/internal/schema"
	"github.com/pdiddy/bibexport/pkg/types"
)

// PostscriptResult is the outcome of a finishing hook, consumed by the
// assembler rather than thrown past it.
type PostscriptResult struct {
	// Cache permits the serialized record to be persisted.
	Cache bool
}

// Postscript is a caller-supplied finishing hook run after assembly. It
// may mutate the record's fields. A returned error is logged as a record
// warning and otherwise ignored; assembly proceeds with the fields as they
// stood when the hook returned.
type Postscript func(*Record, *types.Item) (PostscriptResult, error)

// Engine converts items into serialized records. It is immutable after
// construction apart from two shared counters, so concurrent Render calls
// are safe.
type Engine struct {
	cfg        types.ExportConfig
	schema     *schema.Schema
	postscript Postscript
	collator   *collate.Collator

	// pathCounter numbers synthetic attachment paths in testing mode;
	// shared across concurrent records.
	pathCounter atomic.Int64

	// juniorComma is set when any creator suffix requests
	// comma-before-suffix formatting, document-wide.
	juniorComma atomic.Bool
}

// New builds an engine from an immutable configuration, the declarative
// tables, and an optional finishing hook.
func New(cfg types.ExportConfig, s *schema.Schema, postscript Postscript) *Engine {
	return &Engine{
		cfg:        cfg,
		schema:     s,
		postscript: postscript,
		collator:   collate.New(language.English, collate.Loose),
	}
}

// JuniorComma reports whether any rendered creator requested
// comma-before-suffix formatting.
func (e *Engine) JuniorComma() bool {
	return e.juniorComma.Load()
}

// Result is the output of rendering one item.
type Result struct {
	Citekey string

	// Text is the serialized record, wire-format exact.
	Text string

	// Warnings are non-fatal diagnostics (skipped attachments, unmapped
	// CSL variables, postscript failures).
	Warnings []string

	// Copies are the attachment copy requests recorded during encoding.
	Copies []CopyRequest

	// Cacheable reports whether the record may be stored in the export
	// cache.
	Cacheable bool
}

// Render runs the full pipeline for one item: static field map, override
// directives, assembly, postscript, serialization. A DuplicateFieldError
// aborts this record only.
func (e *Engine) Render(item *types.Item) (*Result, error) {
	r := newRecord(e, item)

	if err := r.populate(); err != nil {
		return nil, err
	}

	for _, name := range e.cfg.SkipFields {
		r.Remove(name)
	}

	if err := r.applyOverrides(item.Overrides); err != nil {
		return nil, err
	}

	r.assemble()

	cacheable := true
	if e.postscript != nil {
		res, err := e.postscript(r, item)
		if err != nil {
			r.warnf("postscript failed: %v", err)
			cacheable = false
		} else {
			cacheable = res.Cache
		}
	}

	return &Result{
		Citekey:   r.Citekey,
		Text:      r.serialize(),
		Warnings:  r.warnings,
		Copies:    r.copies,
		Cacheable: cacheable,
	}, nil
}

// creatorFields maps creator roles onto output field names. Roles without
// an entry are not exported.
var creatorFields = map[string]string{
	"":           "author",
	"author":     "author",
	"editor":     "editor",
	"translator": "translator",
}

// populate fills the record from the static field map, then creators,
// date, tags, and attachments.
func (r *Record) populate() error {
	e := r.engine

	for _, tpl := range e.schema.Fields(e.cfg.Dialect) {
		value, ok := r.item.Fields[tpl.Item]
		if !ok {
			continue
		}
		err := r.Add(&Field{
			Name:               tpl.Name,
			Value:              Text{S: value},
			Encoder:            KindFromName(tpl.Encoder),
			BareIfNoWhitespace: tpl.Bare,
			PreserveCaps:       tpl.Caps,
		})
		if err != nil {
			return err
		}
	}

	if err := r.populateCreators(); err != nil {
		return err
	}
	if err := r.populateDate(); err != nil {
		return err
	}
	if err := r.populateLanguage(); err != nil {
		return err
	}
	if err := r.populateTimestamps(); err != nil {
		return err
	}

	err := r.Add(&Field{Name: "keywords", Value: Tags(r.item.Tags), Encoder: EncodeTags})
	if err != nil {
		return err
	}
	return r.Add(&Field{Name: "file", Value: Attachments(r.item.Attachments), Encoder: EncodeAttachments})
}

func (r *Record) populateCreators() error {
	var order []string
	grouped := make(map[string][]types.Creator)
	for _, c := range r.item.Creators {
		field, ok := creatorFields[strings.ToLower(c.Role)]
		if !ok {
			continue
		}
		if _, seen := grouped[field]; !seen {
			order = append(order, field)
		}
		grouped[field] = append(grouped[field], c)
	}
	for _, field := range order {
		err := r.Add(&Field{Name: field, Value: Creators(grouped[field]), Encoder: EncodeCreators})
		if err != nil {
			return err
		}
	}
	return nil
}

// populateDate emits a single date field in BibLaTeX. BibTeX has no date
// field, so the parsed year and month are emitted separately, the month
// as a bare three-letter macro.
func (r *Record) populateDate() error {
	if r.item.Date == "" {
		return nil
	}

	if r.engine.cfg.Dialect == types.BibLaTeX {
		return r.Add(&Field{Name: "date", Value: Text{S: r.item.Date}, Encoder: EncodeDate})
	}

	d := dates.Parse(r.item.Date)
	if d.Year == 0 {
		return nil
	}
	if err := r.Add(&Field{Name: "year", Value: Number(d.Year)}); err != nil {
		return err
	}
	if d.Month >= 1 && d.Month <= 12 {
		f := &Field{Name: "month"}
		f.SetResolved(monthMacros[d.Month-1])
		if err := r.Add(f); err != nil {
			return err
		}
	}
	return nil
}

// populateLanguage emits the item's language attribute unless the static
// field map already produced the field from Fields["language"], which
// takes precedence.
func (r *Record) populateLanguage() error {
	if r.item.Language == "" {
		return nil
	}
	name := "language"
	if r.engine.cfg.Dialect == types.BibLaTeX {
		name = "langid"
	}
	if r.Has(name) {
		return nil
	}
	return r.Add(&Field{Name: name, Value: Text{S: r.item.Language}})
}

// populateTimestamps emits the library bookkeeping dates. BibTeX has no
// home for them, so they are BibLaTeX-only.
func (r *Record) populateTimestamps() error {
	if r.engine.cfg.Dialect != types.BibLaTeX {
		return nil
	}
	if err := r.addTimestamp("dateadded", r.item.DateAdded); err != nil {
		return err
	}
	return r.addTimestamp("datemodified", r.item.DateModified)
}

func (r *Record) addTimestamp(name string, t time.Time) error {
	if t.IsZero() || r.Has(name) {
		return nil
	}
	d := dates.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
	return r.Add(&Field{Name: name, Value: DateValue{Date: d}, Encoder: EncodeDate})
}

// monthMacros are the standard BibTeX month abbreviation macros, emitted
// bare so styles can localize them.
var monthMacros = [12]string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}
