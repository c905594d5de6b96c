// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/bibexport/internal/dates"
	"github.com/pdiddy/bibexport/internal/latex"
	"github.com/pdiddy/bibexport/pkg/types"
)

// noDate is the bibliography-string token emitted for literal, non-numeric
// dates ("n.d.", "forthcoming").
const noDate = `\bibstring{nodate}`

// encode resolves a field's payload to text. The second return is false
// when the encoder produced nothing and the add must be abandoned. The
// third return marks text that is already final LaTeX and must not be
// escaped again (the nodate token, raw passthrough).
func (r *Record) encode(f *Field) (string, bool, bool) {
	switch f.Encoder {
	case EncodeRaw:
		return r.encodeRaw(f)
	case EncodeLatex:
		return r.encodeLatex(f)
	case EncodeDate:
		return r.encodeDate(f)
	case EncodeURL:
		return r.encodeURL(f)
	case EncodeVerbatim:
		return r.encodeVerbatimField(f)
	case EncodeCreators:
		return r.encodeCreators(f)
	case EncodeTags:
		return r.encodeTags(f)
	case EncodeAttachments:
		return r.encodeAttachments(f)
	default:
		return "", false, false
	}
}

func (r *Record) encodeRaw(f *Field) (string, bool, bool) {
	switch v := f.Value.(type) {
	case Text:
		return v.S, v.S != "", true
	case Number:
		return strconv.Itoa(int(v)), true, true
	case TextList:
		return strings.Join(v.Items, f.Separator), len(v.Items) > 0, true
	default:
		return "", false, false
	}
}

func (r *Record) encodeLatex(f *Field) (string, bool, bool) {
	switch v := f.Value.(type) {
	case Number:
		return strconv.Itoa(int(v)), true, false
	case Text:
		out := r.escape(v.S)
		if v.KeepBraces {
			out = "{" + out + "}"
		}
		return out, out != "", false
	case TextList:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			enc := r.escape(item)
			if v.KeepBraces {
				enc = "{" + enc + "}"
			}
			parts = append(parts, enc)
		}
		out := strings.Join(parts, f.Separator)
		return out, out != "", false
	default:
		return "", false, false
	}
}

// escape runs text through the LaTeX escaping service, preserving a
// trailing space when the source ended in whitespace. Raw records pass
// through untouched.
func (r *Record) escape(s string) string {
	if r.raw {
		return s
	}
	out := latex.Escape(s, r.engine.cfg.Unicode)
	if s != "" && unicode.IsSpace(rune(s[len(s)-1])) && !strings.HasSuffix(out, " ") {
		out += " "
	}
	return out
}

func (r *Record) encodeDate(f *Field) (string, bool, bool) {
	var d dates.Date
	switch v := f.Value.(type) {
	case DateValue:
		d = v.Date
	case Text:
		d = dates.Parse(v.S)
	default:
		return "", false, false
	}

	if d.Literal != "" {
		return noDate, true, true
	}
	if d.Year == 0 {
		return "", false, false
	}

	out := isoDate(d.Year, d.Month, d.Day)
	if d.Open {
		out += "/"
	} else if d.EndYear != 0 {
		out += "/" + isoDate(d.EndYear, d.EndMonth, d.EndDay)
	}
	return r.escape(out), true, false
}

// isoDate builds YYYY[-MM[-DD]].
func isoDate(year, month, day int) string {
	s := fmt.Sprintf("%04d", year)
	if month == 0 {
		return s
	}
	s += fmt.Sprintf("-%02d", month)
	if day != 0 {
		s += fmt.Sprintf("-%02d", day)
	}
	return s
}

func (r *Record) encodeURL(f *Field) (string, bool, bool) {
	t, ok := f.Value.(Text)
	if !ok || t.S == "" {
		return "", false, false
	}
	out := r.verbatim(t.S)
	if r.engine.cfg.FancyURLs {
		out = `\url{` + out + `}`
	}
	return out, true, true
}

func (r *Record) encodeVerbatimField(f *Field) (string, bool, bool) {
	switch v := f.Value.(type) {
	case Text:
		out := r.verbatim(v.S)
		return out, out != "", true
	case TextList:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, r.verbatim(item))
		}
		out := strings.Join(parts, f.Separator)
		return out, out != "", true
	default:
		return "", false, false
	}
}

// verbatim escapes only structural characters: backslash and braces
// always, #, %, & additionally in the BibTeX dialect. Unless the unicode
// switch is on, every byte outside printable ASCII becomes a two-digit
// percent escape.
func (r *Record) verbatim(s string) string {
	bibtex := r.engine.cfg.Dialect != types.BibLaTeX
	unicodeOK := r.engine.cfg.Unicode

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' || c == '{' || c == '}':
			b.WriteByte('\\')
			b.WriteByte(c)
		case bibtex && (c == '#' || c == '%' || c == '&'):
			b.WriteByte('\\')
			b.WriteByte(c)
		case !unicodeOK && (c < 0x20 || c > 0x7e):
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (r *Record) encodeTags(f *Field) (string, bool, bool) {
	v, ok := f.Value.(Tags)
	if !ok {
		return "", false, false
	}

	tags := make([]string, 0, len(v))
	for _, t := range v {
		if t == "" || t == types.RawTag {
			continue
		}
		tags = append(tags, t)
	}
	if len(tags) == 0 {
		return "", false, false
	}
	if r.engine.cfg.Testing {
		sort.Strings(tags)
	}

	for i, t := range tags {
		tags[i] = escapeTag(t, r.engine.cfg.Dialect)
	}
	return strings.Join(tags, ","), true, true
}

// escapeTag backslash-escapes field-structural characters, rewrites commas
// to semicolons (the comma is the tag separator and cannot survive), and,
// when escaping leaves the tag's braces unbalanced, rewrites all its
// braces to parentheses.
func escapeTag(tag string, dialect types.Dialect) string {
	bibtex := dialect != types.BibLaTeX

	var b strings.Builder
	b.Grow(len(tag))
	for _, r := range tag {
		switch {
		case r == ',':
			b.WriteByte(';')
		case r == '\\':
			b.WriteString(`\\`)
		case r == '%':
			b.WriteString(`\%`)
		case bibtex && (r == '#' || r == '&'):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	if !bracesBalanced(out) {
		out = strings.ReplaceAll(out, "{", "(")
		out = strings.ReplaceAll(out, "}", ")")
	}
	return out
}

// bracesBalanced tracks brace depth with a counter that never goes
// negative: a closing brace at depth zero makes the string unbalanced, as
// does a non-zero depth at the end.
func bracesBalanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return false
			}
			depth--
		}
	}
	return depth == 0
}

func (r *Record) encodeAttachments(f *Field) (string, bool, bool) {
	v, ok := f.Value.(Attachments)
	if !ok || len(v) == 0 {
		return "", false, false
	}

	type resolved struct {
		title string
		path  string
		mime  string
	}

	var files []resolved
	for _, a := range v {
		path := r.attachmentPath(a)
		if path == "" {
			continue
		}
		if strings.ContainsAny(path, "{}") {
			r.warnf("file path cannot contain braces: %q", path)
			continue
		}

		title := a.Title
		if title == "" {
			title = filepath.Base(path)
		}
		mime := a.MimeType
		if mime == "" && strings.EqualFold(filepath.Ext(path), ".pdf") {
			mime = "application/pdf"
		}
		files = append(files, resolved{title: title, path: path, mime: mime})
	}
	if len(files) == 0 {
		return "", false, false
	}

	// HTML snapshots sort after everything else so viewers open the real
	// document first.
	coll := r.engine.collator
	sort.SliceStable(files, func(i, j int) bool {
		hi := strings.HasPrefix(files[i].mime, "text/html")
		hj := strings.HasPrefix(files[j].mime, "text/html")
		if hi != hj {
			return !hi
		}
		return coll.CompareString(files[i].path, files[j].path) < 0
	})

	parts := make([]string, 0, len(files))
	for _, file := range files {
		if r.engine.cfg.FileRefsOnly {
			parts = append(parts, escapeFilePart(file.path))
			continue
		}
		parts = append(parts, escapeFilePart(file.title)+":"+escapeFilePart(file.path)+":"+escapeFilePart(file.mime))
	}
	return strings.Join(parts, ";"), true, true
}

// attachmentPath resolves the path an attachment is referenced by:
// the copy destination when file export is on, else a path relative to the
// export root, else a synthetic counter path in testing mode, else the
// stored path. Returns "" when the attachment has no usable path.
func (r *Record) attachmentPath(a types.Attachment) string {
	if a.Path == "" {
		return ""
	}

	cfg := r.engine.cfg
	if cfg.ExportFileData {
		dest := filepath.ToSlash(filepath.Join("files", r.Citekey, filepath.Base(a.Path)))
		r.copies = append(r.copies, CopyRequest{Source: a.Path, Dest: dest})
		return dest
	}
	if cfg.ExportPath != "" {
		if rel, err := filepath.Rel(cfg.ExportPath, a.Path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	if cfg.Testing {
		n := r.engine.pathCounter.Add(1)
		return fmt.Sprintf("attachment-%d%s", n, filepath.Ext(a.Path))
	}
	return filepath.ToSlash(a.Path)
}

// escapeFilePart escapes the characters that delimit file list entries.
func escapeFilePart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\', '{', '}', ':', ';':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
