package types

// Dialect selects which bibliography markup grammar records are produced in.
type Dialect string

const (
	BibTeX   Dialect = "bibtex"
	BibLaTeX Dialect = "biblatex"
)

// PreserveCaps selects how capitalized words in text fields are protected
// from downstream case folding.
type PreserveCaps string

const (
	// PreserveNone leaves text unprotected.
	PreserveNone PreserveCaps = "none"

	// PreserveAll brace-wraps every word containing an uppercase letter.
	PreserveAll PreserveCaps = "all"

	// PreserveInner brace-wraps only words with capitals past the first
	// letter ("eV", "pH", "BibTeX").
	PreserveInner PreserveCaps = "inner"
)

// DOIandURL selects which field survives when a record carries both a DOI
// and a URL.
type DOIandURL string

const (
	PreferDOI DOIandURL = "doi"
	PreferURL DOIandURL = "url"
	KeepBoth  DOIandURL = "both"
)

// ExportConfig holds all switches for one export run. The engine receives
// it by value at construction and never reads configuration from anywhere
// else afterwards.
type ExportConfig struct {
	// Dialect selects the output grammar: bibtex or biblatex.
	Dialect Dialect `json:"dialect" yaml:"dialect"`

	// PreserveCaps selects capitalization protection: none, all, or inner.
	PreserveCaps PreserveCaps `json:"preserve_caps" yaml:"preserve_caps"`

	// FancyURLs wraps encoded URLs in \url{} markup.
	FancyURLs bool `json:"fancy_urls" yaml:"fancy_urls"`

	// Unicode emits non-ASCII characters as-is instead of escaping them.
	Unicode bool `json:"unicode" yaml:"unicode"`

	// Testing forces deterministic output: sorted fields, sorted tags,
	// synthetic attachment paths.
	Testing bool `json:"testing" yaml:"testing"`

	// Caching persists serialized records to the export cache.
	Caching bool `json:"caching" yaml:"caching"`

	// ExportFileData requests attachment files be copied next to the
	// export; attachment paths then point at the copy destination.
	ExportFileData bool `json:"export_file_data" yaml:"export_file_data"`

	// ExportPath is the directory the export is written to; attachment
	// paths are made relative to it.
	ExportPath string `json:"export_path" yaml:"export_path"`

	// DOIandURL selects the survivor when a record has both: doi, url,
	// or both.
	DOIandURL DOIandURL `json:"doi_and_url" yaml:"doi_and_url"`

	// SkipFields lists field names removed from every record.
	SkipFields []string `json:"skip_fields" yaml:"skip_fields"`

	// PreserveBibTeXVariables passes identifier-shaped values through as
	// bare @string variable references instead of quoted text.
	PreserveBibTeXVariables bool `json:"preserve_bibtex_variables" yaml:"preserve_bibtex_variables"`

	// Normalize canonicalizes field text to Unicode NFC before storage.
	Normalize bool `json:"normalize" yaml:"normalize"`

	// FileRefsOnly renders attachments as bare paths without
	// title/mimetype metadata.
	FileRefsOnly bool `json:"file_refs_only" yaml:"file_refs_only"`

	// FieldEncoding overrides the encoder used for a field name
	// (name -> raw, latex, date, url, verbatim, creators, tags,
	// attachments).
	FieldEncoding map[string]string `json:"field_encoding" yaml:"field_encoding"`

	// Workers is the number of concurrent records encoded during a
	// corpus export (default 1).
	Workers int `json:"workers" yaml:"workers"`
}
