// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"strings"
	"testing"

	"github.com/pdiddy/bibexport/internal/dates"
	"github.com/pdiddy/bibexport/pkg/types"
)

func resolved(t *testing.T, r *Record, f *Field) string {
	t.Helper()
	if err := r.Add(f); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !r.Has(f.Name) {
		t.Fatalf("field %q was not stored", f.Name)
	}
	return r.index[strings.ToLower(f.Name)].Resolved()
}

func TestLatexEncoder(t *testing.T) {
	r := testRecord(t, types.ExportConfig{})

	got := resolved(t, r, &Field{Name: "note", Value: Text{S: "50% of $10 & more"}})
	if got != `{50\% of \$10 \& more}` {
		t.Errorf("escaped text = %q", got)
	}

	got = resolved(t, r, &Field{Name: "pages", Value: Number(42)})
	if got != "42" {
		t.Errorf("number = %q, want bare 42", got)
	}

	got = resolved(t, r, &Field{Name: "series", Value: Text{S: "Lecture Notes", KeepBraces: true}})
	if got != "{{Lecture Notes}}" {
		t.Errorf("keep-braces text = %q, want extra outer braces", got)
	}

	got = resolved(t, r, &Field{Name: "organization", Value: TextList{Items: []string{"a", "b"}}, Separator: " / "})
	if got != "{a / b}" {
		t.Errorf("list = %q", got)
	}
}

func TestLatexEncoderTrailingSpace(t *testing.T) {
	r := testRecord(t, types.ExportConfig{})
	got := resolved(t, r, &Field{Name: "note", Value: Text{S: "ends with space "}})
	if got != "{ends with space }" {
		t.Errorf("trailing space not preserved: %q", got)
	}
}

func TestDateEncoder(t *testing.T) {
	tests := []struct {
		name string
		date dates.Date
		want string
	}{
		{"year and month", dates.Date{Year: 2020, Month: 3}, "{2020-03}"},
		{"full date", dates.Date{Year: 2020, Month: 3, Day: 5}, "{2020-03-05}"},
		{"year only", dates.Date{Year: 2020}, "{2020}"},
		{"closed range", dates.Date{Year: 2020, EndYear: 2022}, "{2020/2022}"},
		{"open range", dates.Date{Year: 2020, Open: true}, "{2020/}"},
		{"literal", dates.Date{Literal: "n.d."}, `{\bibstring{nodate}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRecord(t, types.ExportConfig{})
			got := resolved(t, r, &Field{Name: "date", Value: DateValue{Date: tt.date}, Encoder: EncodeDate})
			if got != tt.want {
				t.Errorf("date = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDateEncoderAbsentYear(t *testing.T) {
	r := testRecord(t, types.ExportConfig{})
	err := r.Add(&Field{Name: "date", Value: DateValue{Date: dates.Date{Month: 3}}, Encoder: EncodeDate})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if r.Has("date") {
		t.Error("date without a year should produce no field")
	}
}

func TestURLEncoder(t *testing.T) {
	r := testRecord(t, types.ExportConfig{})
	got := resolved(t, r, &Field{Name: "url", Value: Text{S: "https://example.org/a b"}, Encoder: EncodeURL})
	if got != "{https://example.org/a b}" {
		t.Errorf("url = %q", got)
	}

	r2 := testRecord(t, types.ExportConfig{FancyURLs: true})
	got = resolved(t, r2, &Field{Name: "url", Value: Text{S: "https://example.org"}, Encoder: EncodeURL})
	if got != `{\url{https://example.org}}` {
		t.Errorf("fancy url = %q", got)
	}
}

func TestVerbatimEncoder(t *testing.T) {
	r := testRecord(t, types.ExportConfig{Dialect: types.BibTeX})
	got := resolved(t, r, &Field{Name: "doi", Value: Text{S: `10.1/a{b}#c`}, Encoder: EncodeVerbatim})
	if got != `{10.1/a\{b\}\#c}` {
		t.Errorf("bibtex verbatim = %q", got)
	}

	// BibLaTeX leaves #, %, & alone.
	r2 := testRecord(t, types.ExportConfig{Dialect: types.BibLaTeX})
	got = resolved(t, r2, &Field{Name: "doi", Value: Text{S: "10.1/a#c"}, Encoder: EncodeVerbatim})
	if got != "{10.1/a#c}" {
		t.Errorf("biblatex verbatim = %q", got)
	}
}

func TestVerbatimEncoderPercentEscapes(t *testing.T) {
	r := testRecord(t, types.ExportConfig{})
	got := resolved(t, r, &Field{Name: "doi", Value: Text{S: "café"}, Encoder: EncodeVerbatim})
	if got != "{caf%C3%A9}" {
		t.Errorf("non-ASCII bytes = %q, want percent escapes", got)
	}

	r2 := testRecord(t, types.ExportConfig{Unicode: true})
	got = resolved(t, r2, &Field{Name: "doi", Value: Text{S: "café"}, Encoder: EncodeVerbatim})
	if got != "{café}" {
		t.Errorf("unicode mode = %q, want untouched", got)
	}
}

func TestTagEncoder(t *testing.T) {
	r := testRecord(t, types.ExportConfig{})
	got := resolved(t, r, &Field{
		Name:    "keywords",
		Value:   Tags{"machine learning", types.RawTag, "", "a,b"},
		Encoder: EncodeTags,
	})
	if got != "{machine learning,a;b}" {
		t.Errorf("tags = %q", got)
	}
	if strings.Contains(got, types.RawTag) {
		t.Error("marker tag must be dropped")
	}
}

func TestTagEncoderUnbalancedBraces(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"balanced {ok}", "balanced {ok}"},
		{"open {only", "open (only"},
		{"closed} first", "closed) first"},
		{"trailing {a} {", "trailing (a) ("},
	}
	for _, tt := range tests {
		r := testRecord(t, types.ExportConfig{})
		got := resolved(t, r, &Field{Name: "keywords", Value: Tags{tt.tag}, Encoder: EncodeTags})
		want := "{" + tt.want + "}"
		if got != want {
			t.Errorf("tag %q = %q, want %q", tt.tag, got, want)
		}
		r.Remove("keywords")
	}
}

func TestTagEncoderEscaping(t *testing.T) {
	r := testRecord(t, types.ExportConfig{Dialect: types.BibTeX})
	got := resolved(t, r, &Field{Name: "keywords", Value: Tags{`50% #tag`}, Encoder: EncodeTags})
	if got != `{50\% \#tag}` {
		t.Errorf("bibtex tag escaping = %q", got)
	}
}

func TestAttachmentEncoderOrdering(t *testing.T) {
	r := testRecord(t, types.ExportConfig{Testing: true})
	got := resolved(t, r, &Field{
		Name: "file",
		Value: Attachments{
			{Path: "page.html", MimeType: "text/html"},
			{Path: "paper.pdf"},
		},
		Encoder: EncodeAttachments,
	})

	htmlIdx := strings.Index(got, "text/html")
	pdfIdx := strings.Index(got, "application/pdf")
	if pdfIdx < 0 || htmlIdx < 0 || pdfIdx > htmlIdx {
		t.Errorf("non-HTML attachment should serialize before the HTML snapshot: %q", got)
	}
}

func TestAttachmentEncoderDefaults(t *testing.T) {
	r := testRecord(t, types.ExportConfig{Testing: true})
	got := resolved(t, r, &Field{
		Name:    "file",
		Value:   Attachments{{Path: "some/dir/paper.pdf"}},
		Encoder: EncodeAttachments,
	})
	// Synthetic testing path, title defaulted from the path, PDF mimetype
	// defaulted from the extension.
	if got != "{attachment-1.pdf:attachment-1.pdf:application/pdf}" {
		t.Errorf("attachment = %q", got)
	}
}

func TestAttachmentEncoderBracePathSkipped(t *testing.T) {
	r := testRecord(t, types.ExportConfig{})
	err := r.Add(&Field{
		Name:    "file",
		Value:   Attachments{{Path: "bad{file.pdf"}},
		Encoder: EncodeAttachments,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if r.Has("file") {
		t.Error("attachment with a brace in its path must be skipped")
	}
	if len(r.Warnings()) == 0 || !strings.Contains(r.Warnings()[0], "braces") {
		t.Errorf("expected a brace warning, got %v", r.Warnings())
	}
}

func TestAttachmentEncoderFileRefsOnly(t *testing.T) {
	r := testRecord(t, types.ExportConfig{Testing: true, FileRefsOnly: true})
	got := resolved(t, r, &Field{
		Name:    "file",
		Value:   Attachments{{Path: "a.pdf"}, {Path: "b.pdf"}},
		Encoder: EncodeAttachments,
	})
	if got != "{attachment-1.pdf;attachment-2.pdf}" {
		t.Errorf("refs-only attachments = %q", got)
	}
}

func TestAttachmentEncoderCopyRequests(t *testing.T) {
	r := testRecord(t, types.ExportConfig{ExportFileData: true})
	got := resolved(t, r, &Field{
		Name:    "file",
		Value:   Attachments{{Path: "/library/storage/paper.pdf"}},
		Encoder: EncodeAttachments,
	})
	if !strings.Contains(got, "files/key1/paper.pdf") {
		t.Errorf("attachment should point at the copy destination: %q", got)
	}
	if len(r.copies) != 1 || r.copies[0].Source != "/library/storage/paper.pdf" {
		t.Errorf("copy request not recorded: %+v", r.copies)
	}
}

func TestRawEncoder(t *testing.T) {
	r := testRecord(t, types.ExportConfig{})
	got := resolved(t, r, &Field{Name: "note", Value: Text{S: `\emph{kept}`}, Encoder: EncodeRaw})
	if got != `{\emph{kept}}` {
		t.Errorf("raw = %q, want braced but unescaped", got)
	}
}
