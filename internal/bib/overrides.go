// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"strings"

	"github.com/pdiddy/bibexport/pkg/types"
)

// identifierAliases folds alternate identifier directive names onto their
// canonical keys before any other handling.
var identifierAliases = map[string]string{
	"pubmed": "pmid",
	"pmc":    "pmcid",
}

// identifierRenames maps canonical identifier directives to their output
// field names.
var identifierRenames = map[string]string{
	"mr":            "mrnumber",
	"zbl":           "zmnumber",
	"lccn":          "lccn",
	"pmcid":         "pmcid",
	"pmid":          "pmid",
	"arxiv":         "arxiv",
	"jstor":         "jstor",
	"hdl":           "hdl",
	"googlebooksid": "googlebooks",
	"xref":          "crossref",
}

// eprintable identifiers become an eprinttype/eprint pair in BibLaTeX
// instead of their native field name.
var eprintable = map[string]bool{
	"arxiv": true, "jstor": true, "hdl": true, "googlebooks": true, "pmid": true,
}

// applyOverrides merges user directives into the record. Every surviving
// directive is an ordinary field insertion with replace semantics; there
// is no separate storage path for overridden fields.
func (r *Record) applyOverrides(directives []types.OverrideDirective) error {
	// Creator-valued CSL directives accumulate per target field and are
	// inserted after all scalar directives.
	var creatorOrder []string
	creatorLists := make(map[string][]types.Creator)

	for _, d := range directives {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}

		// A compound type.field directive applies only when its type
		// matches the record's current reference type.
		if i := strings.Index(name, "."); i >= 0 {
			if !strings.EqualFold(name[:i], r.Type) {
				continue
			}
			name = name[i+1:]
			if name == "" {
				continue
			}
		}

		if strings.EqualFold(name, "referencetype") {
			if v := strings.TrimSpace(d.Value); v != "" {
				r.Type = v
			}
			continue
		}

		if d.Vocabulary == types.VocabCSL {
			if err := r.applyCSLDirective(name, d, creatorLists, &creatorOrder); err != nil {
				return err
			}
			continue
		}

		if err := r.applyDirective(name, d); err != nil {
			return err
		}
	}

	for _, target := range creatorOrder {
		err := r.Add(&Field{
			Name:            target,
			Value:           Creators(creatorLists[target]),
			Encoder:         EncodeCreators,
			ReplaceExisting: true,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// applyCSLDirective remaps a CSL variable name through the variable table
// to the dialect's native field. Unmapped names are dropped with a
// diagnostic, never an error.
func (r *Record) applyCSLDirective(name string, d types.OverrideDirective, creatorLists map[string][]types.Creator, creatorOrder *[]string) error {
	v, ok := r.engine.schema.CSLVariable(name)
	if !ok {
		v, ok = r.engine.schema.CSLVariable(strings.ToLower(name))
	}
	if !ok {
		r.warnf("unknown CSL variable %q ignored", name)
		return nil
	}
	target := v.Target(r.engine.cfg.Dialect)
	if target == "" {
		r.warnf("CSL variable %q has no %s field", name, r.engine.cfg.Dialect)
		return nil
	}

	if v.Kind == "creator" {
		// Payload is "family||given"; a single part is all family name.
		parts := strings.SplitN(d.Value, "||", 2)
		c := types.Creator{Family: strings.TrimSpace(parts[0])}
		if len(parts) == 2 {
			c.Given = strings.TrimSpace(parts[1])
		}
		if c.Family == "" && c.Given == "" {
			return nil
		}
		if _, seen := creatorLists[target]; !seen {
			*creatorOrder = append(*creatorOrder, target)
		}
		creatorLists[target] = append(creatorLists[target], c)
		return nil
	}

	if strings.TrimSpace(d.Value) == "" {
		r.Remove(target)
		return nil
	}
	return r.Add(&Field{
		Name:            target,
		Value:           Text{S: d.Value},
		Encoder:         KindFromName(v.Kind),
		ReplaceExisting: true,
	})
}

// applyDirective handles a native-vocabulary directive: identifier
// normalization and renames, the BibLaTeX eprint rewrite, removal on
// empty payloads, and the plain replace-insert for everything else.
func (r *Record) applyDirective(name string, d types.OverrideDirective) error {
	name = strings.ToLower(name)
	if canonical, ok := identifierAliases[name]; ok {
		name = canonical
	}

	if renamed, ok := identifierRenames[name]; ok {
		if r.engine.cfg.Dialect == types.BibLaTeX && eprintable[renamed] {
			// An empty payload removes whatever the identifier would
			// have produced, the eprint pair included.
			if strings.TrimSpace(d.Value) == "" {
				r.Remove("eprinttype")
				r.Remove("eprint")
				return nil
			}
			err := r.Add(&Field{
				Name:            "eprinttype",
				Value:           Text{S: renamed},
				ReplaceExisting: true,
			})
			if err != nil {
				return err
			}
			return r.Add(&Field{
				Name:            "eprint",
				Value:           Text{S: d.Value},
				Encoder:         directiveEncoder(d.Format),
				ReplaceExisting: true,
			})
		}
		name = renamed
	}

	if strings.TrimSpace(d.Value) == "" {
		r.Remove(name)
		return nil
	}

	f := &Field{
		Name:            name,
		Value:           Text{S: d.Value},
		Encoder:         directiveEncoder(d.Format),
		ReplaceExisting: true,
	}
	// Pre-assembled payloads skip encoding and bracing entirely.
	if d.Format == types.FormatKeyValue {
		f.SetResolved(d.Value)
	}
	return r.Add(f)
}

func directiveEncoder(format types.OverrideFormat) EncoderKind {
	if format == types.FormatRaw {
		return EncodeRaw
	}
	return EncodeLatex
}
